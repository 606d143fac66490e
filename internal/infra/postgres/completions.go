package postgres

import (
	"context"
	"fmt"
	"time"

	"skillquiz-service/internal/domain"

	"github.com/uptrace/bun"
)

type completionRow struct {
	bun.BaseModel `bun:"table:quiz_completions"`

	SessionID     string    `bun:"session_id,pk"`
	UserID        string    `bun:"user_id,notnull"`
	Domain        string    `bun:"domain,notnull"`
	Level         int       `bun:"level,notnull"`
	Score         int       `bun:"score,notnull"`
	Total         int       `bun:"total,notnull"`
	Passed        bool      `bun:"passed,notnull"`
	CreditsEarned int       `bun:"credits_earned,notnull"`
	FinishedAt    time.Time `bun:"finished_at,notnull"`
}

// CompletionRecorder appends finished sessions to quiz_completions.
type CompletionRecorder struct {
	db *bun.DB
}

func NewCompletionRecorder(db *bun.DB) *CompletionRecorder {
	return &CompletionRecorder{db: db}
}

// RecordCompletion upserts by session id, so a retried session keeps its latest result.
func (r *CompletionRecorder) RecordCompletion(ctx context.Context, c domain.Completion) error {
	row := &completionRow{
		SessionID:     c.SessionID,
		UserID:        c.UserID,
		Domain:        c.DomainName,
		Level:         c.Level,
		Score:         c.Score,
		Total:         c.Total,
		Passed:        c.Passed,
		CreditsEarned: c.CreditsEarned,
		FinishedAt:    c.FinishedAt,
	}
	_, err := r.db.NewInsert().
		Model(row).
		On("CONFLICT (session_id) DO UPDATE").
		Set("score = EXCLUDED.score").
		Set("total = EXCLUDED.total").
		Set("passed = EXCLUDED.passed").
		Set("credits_earned = EXCLUDED.credits_earned").
		Set("finished_at = EXCLUDED.finished_at").
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("record completion: %w", err)
	}
	return nil
}

// History returns a learner's most recent completions, newest first.
func (r *CompletionRecorder) History(ctx context.Context, userID string, limit int) ([]domain.Completion, error) {
	var rows []completionRow
	err := r.db.NewSelect().
		Model(&rows).
		Where("user_id = ?", userID).
		OrderExpr("finished_at DESC").
		Limit(limit).
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("load history: %w", err)
	}
	out := make([]domain.Completion, len(rows))
	for i, row := range rows {
		out[i] = domain.Completion{
			SessionID:     row.SessionID,
			UserID:        row.UserID,
			DomainName:    row.Domain,
			Level:         row.Level,
			Score:         row.Score,
			Total:         row.Total,
			Passed:        row.Passed,
			CreditsEarned: row.CreditsEarned,
			FinishedAt:    row.FinishedAt,
		}
	}
	return out, nil
}
