package redis

import (
	"context"
	"testing"

	"skillquiz-service/internal/domain"

	miniredis "github.com/alicebob/miniredis/v2"
)

func TestProgressStoreAppliesCompletionsAtomically(t *testing.T) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("run miniredis: %v", err)
	}
	defer mr.Close()

	ctx := context.Background()
	store := NewProgressStore(newClient(mr))

	fresh, err := store.Get(ctx, "u1")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if fresh.CurrentLevel != 1 || fresh.TotalCredits != 0 {
		t.Fatalf("unexpected fresh ledger %+v", fresh)
	}

	p, err := store.ApplyCompletion(ctx, "u1", domain.Completion{Level: 1, Passed: true, CreditsEarned: 50})
	if err != nil {
		t.Fatalf("apply: %v", err)
	}
	if p.TotalCredits != 50 || p.CurrentLevel != 2 || p.Completed != 1 || p.Streak != 1 {
		t.Fatalf("unexpected ledger %+v", p)
	}

	// Replaying a lower level does not lower the unlocked level.
	p, _ = store.ApplyCompletion(ctx, "u1", domain.Completion{Level: 1, Passed: true, CreditsEarned: 50})
	if p.TotalCredits != 100 || p.CurrentLevel != 2 || p.Streak != 2 {
		t.Fatalf("unexpected ledger after replay %+v", p)
	}

	p, _ = store.ApplyCompletion(ctx, "u1", domain.Completion{Level: 2, Passed: false})
	if p.Streak != 0 || p.TotalCredits != 100 || p.Completed != 2 {
		t.Fatalf("fail should reset streak only, got %+v", p)
	}
	if p.UpdatedAt.IsZero() {
		t.Fatalf("expected updatedAt to be stored")
	}
	if mr.HGet("quiz:progress:u1", "totalCredits") != "100" {
		t.Fatalf("expected credits in hash")
	}
}
