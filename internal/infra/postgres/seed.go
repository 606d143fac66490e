package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"skillquiz-service/internal/domain"
	"skillquiz-service/internal/questionbank"

	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/driver/pgdriver"
)

type questionRow struct {
	bun.BaseModel `bun:"table:quiz_questions"`

	ID            int      `bun:"id,pk"`
	Position      int      `bun:"position,notnull"`
	Domain        string   `bun:"domain,notnull"`
	Difficulty    string   `bun:"difficulty,notnull"`
	Prompt        string   `bun:"prompt,notnull"`
	Options       []string `bun:"options,type:jsonb,notnull"`
	CorrectAnswer int      `bun:"correct_answer,notnull"`
}

// OpenBun opens a bun handle over the pgdriver connector.
func OpenBun(dsn string) *bun.DB {
	sqldb := sql.OpenDB(pgdriver.NewConnector(pgdriver.WithDSN(dsn)))
	return bun.NewDB(sqldb, pgdialect.New())
}

// SeedCorpus replaces quiz_questions with corpus, keeping its order in position.
func SeedCorpus(ctx context.Context, db *bun.DB, corpus []domain.Question) (int, error) {
	if err := questionbank.ValidateAll(corpus); err != nil {
		return 0, err
	}
	rows := make([]questionRow, len(corpus))
	for i, q := range corpus {
		rows[i] = questionRow{
			ID:            q.ID,
			Position:      i,
			Domain:        q.Domain,
			Difficulty:    string(q.Difficulty),
			Prompt:        q.Prompt,
			Options:       q.Options,
			CorrectAnswer: q.CorrectAnswer,
		}
	}

	err := db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		if _, err := tx.NewDelete().Model((*questionRow)(nil)).Where("TRUE").Exec(ctx); err != nil {
			return err
		}
		if len(rows) == 0 {
			return nil
		}
		_, err := tx.NewInsert().Model(&rows).Exec(ctx)
		return err
	})
	if err != nil {
		return 0, fmt.Errorf("seed corpus: %w", err)
	}
	return len(rows), nil
}
