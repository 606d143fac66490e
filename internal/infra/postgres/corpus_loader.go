package postgres

import (
	"context"
	"encoding/json"
	"fmt"

	"skillquiz-service/internal/domain"
	"skillquiz-service/internal/questionbank"

	"github.com/jackc/pgx/v4/pgxpool"
)

// CorpusLoader loads the question corpus from Postgres in authored order.
type CorpusLoader struct {
	pool *pgxpool.Pool
}

func NewCorpusLoader(pool *pgxpool.Pool) *CorpusLoader {
	return &CorpusLoader{pool: pool}
}

func (l *CorpusLoader) LoadCorpus(ctx context.Context) ([]domain.Question, error) {
	rows, err := l.pool.Query(ctx, `
		SELECT id, prompt, options, correct_answer, domain, difficulty
		FROM quiz_questions
		ORDER BY position, id`)
	if err != nil {
		return nil, fmt.Errorf("load corpus: %w", err)
	}
	defer rows.Close()

	var corpus []domain.Question
	for rows.Next() {
		var (
			q          domain.Question
			rawOptions []byte
			difficulty string
		)
		if err := rows.Scan(&q.ID, &q.Prompt, &rawOptions, &q.CorrectAnswer, &q.Domain, &difficulty); err != nil {
			return nil, fmt.Errorf("scan question: %w", err)
		}
		if err := json.Unmarshal(rawOptions, &q.Options); err != nil {
			return nil, fmt.Errorf("unmarshal options of question %d: %w", q.ID, err)
		}
		q.Difficulty = domain.Difficulty(difficulty)
		if err := questionbank.Validate(q); err != nil {
			return nil, err
		}
		corpus = append(corpus, q)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("load corpus: %w", err)
	}
	return corpus, nil
}
