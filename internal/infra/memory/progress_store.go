package memory

import (
	"context"
	"sync"
	"time"

	"skillquiz-service/internal/domain"
)

// ProgressStore keeps learner ledgers in process memory.
type ProgressStore struct {
	clock func() time.Time

	mu     sync.Mutex
	ledger map[string]domain.Progress
}

func NewProgressStore() *ProgressStore {
	return &ProgressStore{
		clock:  time.Now,
		ledger: make(map[string]domain.Progress),
	}
}

func (s *ProgressStore) Get(_ context.Context, userID string) (domain.Progress, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if p, ok := s.ledger[userID]; ok {
		return p, nil
	}
	return domain.NewProgress(userID), nil
}

func (s *ProgressStore) ApplyCompletion(_ context.Context, userID string, c domain.Completion) (domain.Progress, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.ledger[userID]
	if !ok {
		p = domain.NewProgress(userID)
	}
	p = p.Apply(c, s.clock())
	s.ledger[userID] = p
	return p, nil
}

// CompletionLog is an in-memory CompletionRecorder.
type CompletionLog struct {
	mu      sync.Mutex
	entries []domain.Completion
}

func NewCompletionLog() *CompletionLog {
	return &CompletionLog{}
}

func (l *CompletionLog) RecordCompletion(_ context.Context, c domain.Completion) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.entries = append(l.entries, c)
	return nil
}

// Entries returns a copy of everything recorded so far.
func (l *CompletionLog) Entries() []domain.Completion {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]domain.Completion, len(l.entries))
	copy(out, l.entries)
	return out
}
