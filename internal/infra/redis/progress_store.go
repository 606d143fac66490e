package redis

import (
	"context"
	"strconv"
	"time"

	"skillquiz-service/internal/domain"

	"github.com/redis/go-redis/v9"
)

// applyCompletion folds one completion into the ledger hash atomically.
// KEYS[1] ledger hash; ARGV: passed (1|0), level, credits, updatedAt.
var applyCompletion = redis.NewScript(`
local cur = tonumber(redis.call('HGET', KEYS[1], 'currentLevel') or '1')
if ARGV[1] == '1' then
  redis.call('HINCRBY', KEYS[1], 'totalCredits', ARGV[3])
  redis.call('HINCRBY', KEYS[1], 'completed', 1)
  redis.call('HINCRBY', KEYS[1], 'streak', 1)
  local unlocked = tonumber(ARGV[2]) + 1
  if unlocked > cur then cur = unlocked end
else
  redis.call('HSET', KEYS[1], 'streak', 0)
end
redis.call('HSET', KEYS[1], 'currentLevel', cur)
redis.call('HSET', KEYS[1], 'updatedAt', ARGV[4])
return cur
`)

// ProgressStore keeps learner ledgers as hashes: HSET quiz:progress:{userID} field value.
type ProgressStore struct {
	client *redis.Client
	clock  func() time.Time
}

func NewProgressStore(client *redis.Client) *ProgressStore {
	return &ProgressStore{client: client, clock: time.Now}
}

func (s *ProgressStore) Get(ctx context.Context, userID string) (domain.Progress, error) {
	fields, err := s.client.HGetAll(ctx, s.key(userID)).Result()
	if err != nil {
		return domain.Progress{}, err
	}
	p := domain.NewProgress(userID)
	if len(fields) == 0 {
		return p, nil
	}
	p.CurrentLevel = atoi(fields["currentLevel"], 1)
	p.TotalCredits = atoi(fields["totalCredits"], 0)
	p.Completed = atoi(fields["completed"], 0)
	p.Streak = atoi(fields["streak"], 0)
	if ts, err := time.Parse(time.RFC3339Nano, fields["updatedAt"]); err == nil {
		p.UpdatedAt = ts
	}
	return p, nil
}

func (s *ProgressStore) ApplyCompletion(ctx context.Context, userID string, c domain.Completion) (domain.Progress, error) {
	passed := "0"
	if c.Passed {
		passed = "1"
	}
	args := []interface{}{passed, c.Level, c.CreditsEarned, s.clock().UTC().Format(time.RFC3339Nano)}
	if err := applyCompletion.Run(ctx, s.client, []string{s.key(userID)}, args...).Err(); err != nil {
		return domain.Progress{}, err
	}
	return s.Get(ctx, userID)
}

func (s *ProgressStore) key(userID string) string {
	return "quiz:progress:" + userID
}

func atoi(raw string, fallback int) int {
	if v, err := strconv.Atoi(raw); err == nil {
		return v
	}
	return fallback
}
