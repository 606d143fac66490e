package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"math/rand"
	"time"

	"skillquiz-service/internal/domain"

	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/singleflight"
)

// CorpusLoader fetches the question corpus from a backing store (e.g., Postgres).
type CorpusLoader interface {
	LoadCorpus(ctx context.Context) ([]domain.Question, error)
}

// CorpusKey holds the cached corpus as a list of JSON questions in corpus order:
// RPUSH quiz:corpus {question}...
const CorpusKey = "quiz:corpus"

// CorpusRepository caches the corpus in Redis and falls back to a loader on cache miss.
type CorpusRepository struct {
	client *redis.Client
	loader CorpusLoader
	ttl    time.Duration
	sf     singleflight.Group
	rnd    *rand.Rand
}

func NewCorpusRepository(client *redis.Client, loader CorpusLoader, ttl time.Duration) *CorpusRepository {
	return &CorpusRepository{
		client: client,
		loader: loader,
		ttl:    ttl,
		rnd:    rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

func (r *CorpusRepository) GetCorpus(ctx context.Context) ([]domain.Question, error) {
	if corpus, ok := r.cached(ctx); ok {
		return corpus, nil
	}

	result, err, _ := r.sf.Do(CorpusKey, func() (interface{}, error) {
		// Re-check cache in case another goroutine filled it.
		if corpus, ok := r.cached(ctx); ok {
			return corpus, nil
		}

		corpus, err := r.loader.LoadCorpus(ctx)
		if err != nil {
			return nil, err
		}

		entries := make([]interface{}, 0, len(corpus))
		for _, q := range corpus {
			raw, err := json.Marshal(q)
			if err != nil {
				return nil, fmt.Errorf("marshal question %d: %w", q.ID, err)
			}
			entries = append(entries, raw)
		}

		ttl := r.ttlWithJitter()
		_, _ = r.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Del(ctx, CorpusKey)
			if len(entries) > 0 {
				pipe.RPush(ctx, CorpusKey, entries...)
			}
			if ttl > 0 {
				pipe.Expire(ctx, CorpusKey, ttl)
			}
			return nil
		})

		return corpus, nil
	})
	if err != nil {
		return nil, err
	}
	return result.([]domain.Question), nil
}

// cached decodes the list; a decode failure is treated as a miss so the loader repopulates it.
func (r *CorpusRepository) cached(ctx context.Context) ([]domain.Question, bool) {
	raw, err := r.client.LRange(ctx, CorpusKey, 0, -1).Result()
	if err != nil || len(raw) == 0 {
		return nil, false
	}
	corpus := make([]domain.Question, 0, len(raw))
	for _, entry := range raw {
		var q domain.Question
		if err := json.Unmarshal([]byte(entry), &q); err != nil {
			return nil, false
		}
		corpus = append(corpus, q)
	}
	return corpus, true
}

func (r *CorpusRepository) ttlWithJitter() time.Duration {
	if r.ttl <= 0 {
		return 0
	}
	jitterMax := int64(r.ttl) / 10
	return r.ttl + time.Duration(r.rnd.Int63n(jitterMax+1))
}
