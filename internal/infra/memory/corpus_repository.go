package memory

import (
	"context"
	"fmt"
	"math/rand"
	"os"
	"sync"
	"time"

	"skillquiz-service/internal/domain"
	"skillquiz-service/internal/questionbank"

	"golang.org/x/sync/singleflight"
)

// CorpusLoader fetches the question corpus from a backing store (e.g., Postgres).
type CorpusLoader interface {
	LoadCorpus(ctx context.Context) ([]domain.Question, error)
}

const corpusKey = "corpus"

// CorpusRepository caches the corpus with TTL to avoid repeated DB hits.
type CorpusRepository struct {
	loader CorpusLoader
	ttl    time.Duration
	clock  func() time.Time
	sf     singleflight.Group
	rnd    *rand.Rand

	mu        sync.RWMutex
	corpus    []domain.Question
	expiresAt time.Time
	loaded    bool
}

func NewCorpusRepository(loader CorpusLoader, ttl time.Duration) *CorpusRepository {
	return &CorpusRepository{
		loader: loader,
		ttl:    ttl,
		clock:  time.Now,
		rnd:    rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

func (r *CorpusRepository) GetCorpus(ctx context.Context) ([]domain.Question, error) {
	if corpus, ok := r.cached(r.clock()); ok {
		return corpus, nil
	}

	result, err, _ := r.sf.Do(corpusKey, func() (interface{}, error) {
		now := r.clock()
		if corpus, ok := r.cached(now); ok {
			return corpus, nil
		}

		corpus, err := r.loader.LoadCorpus(ctx)
		if err != nil {
			return nil, err
		}

		r.mu.Lock()
		r.corpus = corpus
		r.loaded = true
		r.expiresAt = now.Add(r.ttlWithJitter())
		r.mu.Unlock()
		return corpus, nil
	})
	if err != nil {
		return nil, err
	}
	return result.([]domain.Question), nil
}

func (r *CorpusRepository) cached(now time.Time) ([]domain.Question, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if r.loaded && (r.ttl <= 0 || r.expiresAt.After(now)) {
		return r.corpus, true
	}
	return nil, false
}

// StaticCorpusLoader is a loader backed by an in-memory slice (embedded seed, tests, demos).
type StaticCorpusLoader struct {
	corpus []domain.Question
}

func NewStaticCorpusLoader(corpus []domain.Question) *StaticCorpusLoader {
	return &StaticCorpusLoader{corpus: corpus}
}

// NewSeedCorpusLoader serves the embedded seed corpus.
func NewSeedCorpusLoader() *StaticCorpusLoader {
	return NewStaticCorpusLoader(questionbank.DefaultCorpus())
}

func (l *StaticCorpusLoader) LoadCorpus(_ context.Context) ([]domain.Question, error) {
	if err := questionbank.ValidateAll(l.corpus); err != nil {
		return nil, err
	}
	return l.corpus, nil
}

// FileCorpusLoader reads a corpus document from disk on every load, so edits
// show up once the cache expires.
type FileCorpusLoader struct {
	path string
}

func NewFileCorpusLoader(path string) *FileCorpusLoader {
	return &FileCorpusLoader{path: path}
}

func (l *FileCorpusLoader) LoadCorpus(_ context.Context) ([]domain.Question, error) {
	data, err := os.ReadFile(l.path)
	if err != nil {
		return nil, fmt.Errorf("read corpus %s: %w", l.path, err)
	}
	_, corpus, err := questionbank.Parse(data)
	return corpus, err
}

func (r *CorpusRepository) ttlWithJitter() time.Duration {
	if r.ttl <= 0 {
		return 0
	}
	// add up to 10% jitter to spread expirations
	jitterMax := int64(r.ttl) / 10
	return r.ttl + time.Duration(r.rnd.Int63n(jitterMax+1))
}
