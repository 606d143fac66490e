package redis

import (
	"context"
	"testing"
	"time"

	"skillquiz-service/internal/app"
	"skillquiz-service/internal/infra/memory"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func TestSessionStoreSetsAndClearsKeys(t *testing.T) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("run miniredis: %v", err)
	}
	defer mr.Close()

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	store := NewSessionStore(client, time.Minute)
	corpus := memory.NewCorpusRepository(memory.NewStaticCorpusLoader(sampleCorpus()), 0)
	service := app.NewQuizService(store, corpus, memory.NewProgressStore(), app.Settings{})

	id, _, err := service.Launch(context.Background(), "u1", "Math", 1)
	if err != nil {
		t.Fatalf("launch: %v", err)
	}
	key := "quiz:session:" + id
	if !mr.Exists(key) {
		t.Fatalf("expected redis key to be set")
	}
	if got, _ := mr.Get(key); got != "u1" {
		t.Fatalf("expected marker to hold learner id, got %q", got)
	}

	service.Close(context.Background(), id)
	if mr.Exists(key) {
		t.Fatalf("expected redis key to be removed")
	}
	if store.Len() != 0 {
		t.Fatalf("expected store empty after close")
	}
}
