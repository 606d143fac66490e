package memory

import (
	"context"
	"testing"

	"skillquiz-service/internal/app"
)

func TestSessionStoreLifecycle(t *testing.T) {
	store := NewSessionStore()
	service := app.NewQuizService(store, NewCorpusRepository(NewStaticCorpusLoader(sampleCorpus()), 0), NewProgressStore(), app.Settings{})

	id, _, err := service.Launch(context.Background(), "u1", "Math", 1)
	if err != nil {
		t.Fatalf("launch: %v", err)
	}
	if _, ok := store.Get(id); !ok {
		t.Fatalf("expected session present")
	}
	if store.Len() != 1 || store.IDs()[0] != id {
		t.Fatalf("expected exactly the launched session, got %v", store.IDs())
	}

	store.Delete(id)
	if _, ok := store.Get(id); ok {
		t.Fatalf("expected session removed")
	}
}
