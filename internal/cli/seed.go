package cli

import (
	"fmt"
	"os"

	"skillquiz-service/internal/config"
	"skillquiz-service/internal/domain"
	"skillquiz-service/internal/infra/postgres"
	"skillquiz-service/internal/logging"
	"skillquiz-service/internal/questionbank"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// NewSeedCmd loads the question corpus into Postgres.
func NewSeedCmd(configPath *string) *cobra.Command {
	var file string
	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Replace the stored question corpus with the seed (or --file) corpus",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(*configPath)
			if err != nil {
				return err
			}
			if cfg.Postgres.URL == "" {
				return fmt.Errorf("postgres url not configured")
			}
			logger := logging.New(logging.Options{Level: cfg.Log.Level, File: cfg.Log.File})
			defer logger.Sync()

			if file == "" {
				file = cfg.Corpus.File
			}
			corpus, err := readCorpus(file)
			if err != nil {
				return err
			}

			ctx := cmd.Context()
			if err := runMigrations(ctx, cfg, logger); err != nil {
				return err
			}
			db := postgres.OpenBun(cfg.Postgres.URL)
			defer db.Close()

			n, err := postgres.SeedCorpus(ctx, db, corpus)
			if err != nil {
				return err
			}
			logger.Info("corpus seeded", zap.Int("questions", n), zap.String("source", sourceName(file)))
			return nil
		},
	}
	cmd.Flags().StringVar(&file, "file", "", "corpus YAML file (defaults to corpus.file, then the embedded seed)")
	return cmd
}

func readCorpus(file string) ([]domain.Question, error) {
	if file == "" {
		return questionbank.DefaultCorpus(), nil
	}
	data, err := os.ReadFile(file)
	if err != nil {
		return nil, err
	}
	_, corpus, err := questionbank.Parse(data)
	return corpus, err
}

func sourceName(file string) string {
	if file == "" {
		return "embedded"
	}
	return file
}
