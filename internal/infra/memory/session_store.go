package memory

import (
	"sync"

	"skillquiz-service/internal/app"
)

// SessionStore is an in-memory implementation of app.SessionRepository.
type SessionStore struct {
	mu       sync.RWMutex
	sessions map[string]*app.Run
}

func NewSessionStore() *SessionStore {
	return &SessionStore{
		sessions: make(map[string]*app.Run),
	}
}

func (s *SessionStore) Save(run *app.Run) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[run.ID()] = run
}

func (s *SessionStore) Get(id string) (*app.Run, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	run, ok := s.sessions[id]
	return run, ok
}

func (s *SessionStore) Delete(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, id)
}

func (s *SessionStore) IDs() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	ids := make([]string, 0, len(s.sessions))
	for id := range s.sessions {
		ids = append(ids, id)
	}
	return ids
}

func (s *SessionStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}
