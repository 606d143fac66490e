package redis

import (
	"context"
	"sync"
	"time"

	"skillquiz-service/internal/app"

	"github.com/redis/go-redis/v9"
)

// SessionStore is a Redis-aware implementation of SessionRepository.
// Notes:
//   - Runs hold a live engine session, timers and subscriber channels, so
//     they stay in a local map; nothing about them is serialized.
//   - Redis carries a liveness marker per run (value: the learner id) so other
//     instances and operators can see which sessions are hosted where.
type SessionStore struct {
	client   *redis.Client
	ttl      time.Duration
	mu       sync.RWMutex
	sessions map[string]*app.Run
}

func NewSessionStore(client *redis.Client, ttl time.Duration) *SessionStore {
	return &SessionStore{
		client:   client,
		ttl:      ttl,
		sessions: make(map[string]*app.Run),
	}
}

func (s *SessionStore) Save(run *app.Run) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[run.ID()] = run
	// best-effort liveness marker
	_ = s.client.Set(context.Background(), s.key(run.ID()), run.UserID(), s.ttl).Err()
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
	if _, ok := s.sessions[id]; !ok {
		return
	}
	delete(s.sessions, id)
	_ = s.client.Del(context.Background(), s.key(id)).Err()
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

func (s *SessionStore) key(id string) string {
	return "quiz:session:" + id
}
