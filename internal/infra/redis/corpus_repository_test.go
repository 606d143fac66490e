package redis

import (
	"context"
	"testing"
	"time"

	"skillquiz-service/internal/domain"
	"skillquiz-service/internal/infra/memory"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func TestCorpusRepositoryCachesInRedis(t *testing.T) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("run miniredis: %v", err)
	}
	defer mr.Close()

	client := newClient(mr)

	loader := &countingLoader{CorpusLoader: memory.NewStaticCorpusLoader(sampleCorpus())}
	repo := NewCorpusRepository(client, loader, time.Minute)

	corpus, err := repo.GetCorpus(context.Background())
	if err != nil {
		t.Fatalf("get corpus: %v", err)
	}
	if loader.calls != 1 {
		t.Fatalf("expected loader called once, got %d", loader.calls)
	}
	if len(corpus) != 3 {
		t.Fatalf("expected 3 questions, got %d", len(corpus))
	}
	if !mr.Exists(CorpusKey) {
		t.Fatalf("expected corpus cached under %s", CorpusKey)
	}

	// Second call should hit cache, loader not incremented, order preserved.
	cached, err := repo.GetCorpus(context.Background())
	if err != nil {
		t.Fatalf("get cached corpus: %v", err)
	}
	if loader.calls != 1 {
		t.Fatalf("expected cache hit, loader calls=%d", loader.calls)
	}
	for i, q := range cached {
		if q.ID != corpus[i].ID || q.CorrectAnswer != corpus[i].CorrectAnswer || len(q.Options) != len(corpus[i].Options) {
			t.Fatalf("cached question %d differs: %+v vs %+v", i, q, corpus[i])
		}
	}
}

func TestCorpusRepositoryExpires(t *testing.T) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("run miniredis: %v", err)
	}
	defer mr.Close()

	loader := &countingLoader{CorpusLoader: memory.NewStaticCorpusLoader(sampleCorpus())}
	repo := NewCorpusRepository(newClient(mr), loader, time.Minute)

	_, _ = repo.GetCorpus(context.Background())
	mr.FastForward(2 * time.Minute)
	_, _ = repo.GetCorpus(context.Background())
	if loader.calls != 2 {
		t.Fatalf("expected reload after expiry, loader calls=%d", loader.calls)
	}
}

type countingLoader struct {
	memory.CorpusLoader
	calls int
}

func (l *countingLoader) LoadCorpus(ctx context.Context) ([]domain.Question, error) {
	l.calls++
	return l.CorpusLoader.LoadCorpus(ctx)
}

func sampleCorpus() []domain.Question {
	return []domain.Question{
		{ID: 3, Prompt: "What is 2 + 2?", Options: []string{"3", "4"}, CorrectAnswer: 1, Domain: "Math", Difficulty: domain.DifficultyEasy},
		{ID: 1, Prompt: "AES stands for:", Options: []string{"a", "b", "c"}, CorrectAnswer: 0, Domain: "Cryptography", Difficulty: domain.DifficultyMedium},
		{ID: 2, Prompt: "What is 3 + 3?", Options: []string{"6", "7"}, CorrectAnswer: 0, Domain: "Math", Difficulty: domain.DifficultyHard},
	}
}

func newClient(mr *miniredis.Miniredis) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr: mr.Addr(),
	})
}
