package cli

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"skillquiz-service/internal/app"
	"skillquiz-service/internal/config"
	"skillquiz-service/internal/domain"
	"skillquiz-service/internal/infra/memory"
	"skillquiz-service/internal/infra/postgres"
	redisstore "skillquiz-service/internal/infra/redis"
	"skillquiz-service/internal/logging"
	"skillquiz-service/internal/metrics"
	"skillquiz-service/internal/questionbank"
	transport "skillquiz-service/internal/transport/http"

	"github.com/jackc/pgx/v4/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// NewStartCmd builds the CLI subcommand to start the server.
func NewStartCmd(configPath, port *string) *cobra.Command {
	return &cobra.Command{
		Use:   "start",
		Short: "Start the quiz server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer(cmd.Context(), *configPath, *port)
		},
	}
}

func runServer(ctx context.Context, configPath, portFlag string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	logger := logging.New(logging.Options{Level: cfg.Log.Level, File: cfg.Log.File})
	defer logger.Sync()

	if cfg.Postgres.URL != "" {
		if err := runMigrations(ctx, cfg, logger); err != nil {
			return err
		}
	}

	finalPort := portFlag
	if finalPort == "" {
		finalPort = cfg.Server.Port
	}
	if finalPort == "" {
		finalPort = "8080"
	}

	var redisClient *redis.Client
	if cfg.Redis.Addr != "" {
		redisClient = redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		defer redisClient.Close()
	}
	redisTTL := config.TTLDuration(cfg.Redis.TTL, 30*time.Minute)

	var opts []app.Option
	var loader memory.CorpusLoader = memory.NewSeedCorpusLoader()
	if cfg.Corpus.File != "" {
		loader = memory.NewFileCorpusLoader(cfg.Corpus.File)
		if domains, err := fileDomains(cfg.Corpus.File); err == nil && len(domains) > 0 {
			opts = append(opts, app.WithDomains(domains))
		}
	}
	if cfg.Postgres.URL != "" {
		pool, err := pgxpool.Connect(ctx, cfg.Postgres.URL)
		if err != nil {
			return err
		}
		defer pool.Close()
		loader = postgres.NewCorpusLoader(pool)

		db := postgres.OpenBun(cfg.Postgres.URL)
		defer db.Close()
		opts = append(opts, app.WithRecorder(postgres.NewCompletionRecorder(db)))
	}

	corpusTTL := config.TTLDuration(cfg.Corpus.TTL, 10*time.Minute)
	var corpus app.CorpusRepository
	var sessions app.SessionRepository
	var progress app.ProgressRepository
	if redisClient != nil {
		corpus = redisstore.NewCorpusRepository(redisClient, loader, corpusTTL)
		sessions = redisstore.NewSessionStore(redisClient, redisTTL)
		progress = redisstore.NewProgressStore(redisClient)
	} else {
		corpus = memory.NewCorpusRepository(loader, corpusTTL)
		sessions = memory.NewSessionStore()
		progress = memory.NewProgressStore()
	}

	m := metrics.New()
	opts = append(opts, app.WithLogger(logger), app.WithMetrics(m))
	service := app.NewQuizService(sessions, corpus, progress, app.Settings{
		QuestionLimit: cfg.Quiz.QuestionLimit,
		TimeBudget:    cfg.Quiz.TimeBudget,
		TickInterval:  config.TTLDuration(cfg.Quiz.TickInterval, time.Second),
		SettleDelay:   config.TTLDuration(cfg.Quiz.SettleDelay, 1500*time.Millisecond),
		EnforceUnlock: cfg.Quiz.EnforceUnlock,
	}, opts...)

	server := &http.Server{
		Addr: ":" + finalPort,
		Handler: transport.NewRouter(service, transport.RouterOptions{
			AllowedOrigins: cfg.Server.AllowedOrigins,
			Metrics:        m.Handler(),
			Logger:         logger,
		}),
		ReadHeaderTimeout: 15 * time.Second,
	}

	go func() {
		logger.Info("starting quiz service", zap.String("addr", server.Addr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("failed to start server", zap.Error(err))
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	select {
	case <-stop:
		logger.Info("shutting down server")
	case <-ctx.Done():
		logger.Info("context canceled, shutting down server")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	service.Shutdown(shutdownCtx)
	return server.Shutdown(shutdownCtx)
}

func fileDomains(path string) ([]domain.QuizDomain, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	domains, _, err := questionbank.Parse(data)
	return domains, err
}
