package app

import (
	"context"
	"errors"
	"fmt"
	"time"

	"skillquiz-service/internal/domain"
	"skillquiz-service/internal/engine"
	"skillquiz-service/internal/level"
	"skillquiz-service/internal/metrics"
	"skillquiz-service/internal/questionbank"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// SessionRepository abstracts where hosted runs live (in-memory, Redis-marked, etc).
type SessionRepository interface {
	Save(run *Run)
	Get(id string) (*Run, bool)
	Delete(id string)
	IDs() []string
	Len() int
}

// CorpusRepository loads the question corpus (from cache/backing store).
type CorpusRepository interface {
	GetCorpus(ctx context.Context) ([]domain.Question, error)
}

// ProgressRepository is the learner ledger the host updates on completion.
type ProgressRepository interface {
	Get(ctx context.Context, userID string) (domain.Progress, error)
	ApplyCompletion(ctx context.Context, userID string, c domain.Completion) (domain.Progress, error)
}

// CompletionRecorder keeps an audit trail of finished sessions.
type CompletionRecorder interface {
	RecordCompletion(ctx context.Context, c domain.Completion) error
}

// Settings are the host's timing and selection knobs.
type Settings struct {
	QuestionLimit int
	TimeBudget    int
	// TickInterval is the clock cadence; zero leaves ticking to the caller.
	TickInterval time.Duration
	// SettleDelay is the pause between a timeout and the automatic advance.
	SettleDelay   time.Duration
	EnforceUnlock bool
}

// Option customizes a QuizService.
type Option func(*QuizService)

func WithLogger(l *zap.Logger) Option { return func(s *QuizService) { s.logger = l } }

func WithMetrics(m *metrics.Metrics) Option { return func(s *QuizService) { s.metrics = m } }

func WithRecorder(r CompletionRecorder) Option { return func(s *QuizService) { s.recorder = r } }

func WithDomains(d []domain.QuizDomain) Option { return func(s *QuizService) { s.domains = d } }

// WithClock is for deterministic timestamps in tests.
func WithClock(now func() time.Time) Option { return func(s *QuizService) { s.now = now } }

// QuizService hosts quiz sessions: it launches them, forwards learner
// intents and clock ticks into the engine, and settles completions into the
// progress ledger.
type QuizService struct {
	sessions SessionRepository
	corpus   CorpusRepository
	progress ProgressRepository
	recorder CompletionRecorder
	settings Settings
	domains  []domain.QuizDomain
	logger   *zap.Logger
	metrics  *metrics.Metrics
	now      func() time.Time
}

func NewQuizService(sessions SessionRepository, corpus CorpusRepository, progress ProgressRepository, settings Settings, opts ...Option) *QuizService {
	s := &QuizService{
		sessions: sessions,
		corpus:   corpus,
		progress: progress,
		settings: settings,
		domains:  questionbank.DefaultDomains(),
		logger:   zap.NewNop(),
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.metrics == nil {
		s.metrics = metrics.New()
	}
	s.logger = s.logger.Named("quiz")
	return s
}

// Launch starts a session for userID on (domainName, lvl) and returns its id and first view.
func (s *QuizService) Launch(ctx context.Context, userID, domainName string, lvl int) (string, engine.View, error) {
	if userID == "" {
		return "", engine.View{}, domain.ErrMissingUser
	}
	if lvl < 1 {
		return "", engine.View{}, domain.ErrInvalidLevel
	}
	if s.settings.EnforceUnlock {
		p, err := s.progress.Get(ctx, userID)
		if err != nil {
			return "", engine.View{}, err
		}
		if lvl > p.CurrentLevel {
			return "", engine.View{}, domain.ErrLevelLocked
		}
	}

	questions, fallback, err := s.selectQuestions(ctx, domainName, s.settings.QuestionLimit)
	if err != nil {
		return "", engine.View{}, err
	}
	if fallback {
		s.metrics.BankFallbacks.WithLabelValues(domainName).Inc()
	}

	run := newRun(uuid.NewString(), userID, s.now())
	run.session = engine.New(engine.Config{
		Questions:     questions,
		DomainName:    domainName,
		Level:         lvl,
		CreditsReward: level.CreditReward(lvl),
		TimeBudget:    s.settings.TimeBudget,
	}, run.captureResult)
	s.sessions.Save(run)
	s.metrics.SessionsStarted.WithLabelValues(domainName).Inc()
	s.metrics.ActiveSessions.Set(float64(s.sessions.Len()))

	s.logger.Info("quiz session launched",
		zap.String("session", run.id),
		zap.String("user", userID),
		zap.String("domain", domainName),
		zap.Int("level", lvl),
		zap.Int("questions", len(questions)),
		zap.Bool("fallback", fallback))

	run.mu.Lock()
	view := run.session.View()
	res, done := run.takeResultLocked()
	if !done {
		s.startClockLocked(run)
	}
	run.mu.Unlock()

	if done {
		s.settle(ctx, run, res)
	}
	return run.id, view, nil
}

// SelectAnswer records the learner's pending choice.
func (s *QuizService) SelectAnswer(ctx context.Context, id string, option int) (engine.View, error) {
	return s.apply(ctx, id, func(run *Run) {
		run.session.SelectAnswer(option)
	})
}

// Submit locks the current question with the pending choice.
func (s *QuizService) Submit(ctx context.Context, id string) (engine.View, error) {
	return s.apply(ctx, id, func(run *Run) {
		run.session.Submit()
	})
}

// Next advances past a locked question.
func (s *QuizService) Next(ctx context.Context, id string) (engine.View, error) {
	return s.apply(ctx, id, func(run *Run) {
		run.cancelSettleLocked()
		run.session.Advance()
	})
}

// Retry starts the session over from the first question.
func (s *QuizService) Retry(ctx context.Context, id string) (engine.View, error) {
	return s.apply(ctx, id, func(run *Run) {
		run.cancelSettleLocked()
		run.session.Reset()
		run.paused = false
	})
}

// Pause stops delivering clock ticks to the session.
func (s *QuizService) Pause(ctx context.Context, id string) (engine.View, error) {
	return s.apply(ctx, id, func(run *Run) {
		run.paused = true
	})
}

// Resume continues the countdown where it was paused.
func (s *QuizService) Resume(ctx context.Context, id string) (engine.View, error) {
	return s.apply(ctx, id, func(run *Run) {
		run.paused = false
	})
}

// Tick delivers one clock signal. When it runs the countdown out, the
// session advances on its own after the settle delay.
func (s *QuizService) Tick(ctx context.Context, id string) (engine.View, error) {
	var (
		timedOut bool
		index    int
	)
	view, err := s.apply(ctx, id, func(run *Run) {
		if run.paused {
			return
		}
		timedOut = run.session.Tick()
		index = run.session.Index()
		if timedOut && s.settings.SettleDelay > 0 {
			run.cancelSettleLocked()
			run.settle = time.AfterFunc(s.settings.SettleDelay, func() {
				s.advanceAfterTimeout(id, index)
			})
		}
	})
	if err != nil {
		return view, err
	}
	if timedOut {
		s.metrics.Timeouts.Inc()
		if s.settings.SettleDelay <= 0 {
			return s.advanceAfterTimeout(id, index)
		}
	}
	return view, nil
}

// advanceAfterTimeout moves on from question index unless the learner already did.
func (s *QuizService) advanceAfterTimeout(id string, index int) (engine.View, error) {
	return s.apply(context.Background(), id, func(run *Run) {
		if run.session.State() == engine.PhaseLocked && run.session.Index() == index {
			run.settle = nil
			run.session.Advance()
		}
	})
}

// Close discards the session and stops its clock. Closing an unknown or
// already closed session is not an error.
func (s *QuizService) Close(_ context.Context, id string) {
	run, ok := s.sessions.Get(id)
	if !ok {
		return
	}
	run.mu.Lock()
	if !run.closed {
		run.closed = true
		run.cancelSettleLocked()
		run.stopClockLocked()
		run.session.Close()
		run.broadcastLocked(Update{View: run.session.View()})
		run.closeSubscribersLocked()
	}
	run.mu.Unlock()

	s.sessions.Delete(id)
	s.metrics.ActiveSessions.Set(float64(s.sessions.Len()))
	s.logger.Debug("quiz session closed", zap.String("session", id))
}

// View returns the current snapshot of a session.
func (s *QuizService) View(_ context.Context, id string) (engine.View, error) {
	run, ok := s.sessions.Get(id)
	if !ok {
		return engine.View{}, domain.ErrSessionNotFound
	}
	run.mu.Lock()
	defer run.mu.Unlock()
	return run.session.View(), nil
}

// Result returns the completion result of a finished session.
func (s *QuizService) Result(_ context.Context, id string) (engine.Result, bool, error) {
	run, ok := s.sessions.Get(id)
	if !ok {
		return engine.Result{}, false, domain.ErrSessionNotFound
	}
	run.mu.Lock()
	defer run.mu.Unlock()
	res, done := run.session.Result()
	return res, done, nil
}

// Subscribe returns a channel that receives every state change of a session.
// The caller must invoke the returned cancel function to avoid leaks.
func (s *QuizService) Subscribe(_ context.Context, id string) (<-chan Update, func(), error) {
	run, ok := s.sessions.Get(id)
	if !ok {
		return nil, nil, domain.ErrSessionNotFound
	}
	ch, cancel := run.subscribe()
	return ch, cancel, nil
}

// Progress returns the learner's ledger.
func (s *QuizService) Progress(ctx context.Context, userID string) (domain.Progress, error) {
	if userID == "" {
		return domain.Progress{}, domain.ErrMissingUser
	}
	return s.progress.Get(ctx, userID)
}

// Levels lists levels 1..upTo with their unlock state for userID.
func (s *QuizService) Levels(ctx context.Context, userID string, upTo int) ([]level.Tier, error) {
	if upTo <= 0 {
		upTo = level.MaxVisible
	}
	unlocked := 1
	if userID != "" {
		p, err := s.progress.Get(ctx, userID)
		if err != nil {
			return nil, err
		}
		unlocked = p.CurrentLevel
	}
	return level.Catalog(1, upTo, unlocked), nil
}

// Domains returns the domain catalog.
func (s *QuizService) Domains() []domain.QuizDomain {
	out := make([]domain.QuizDomain, len(s.domains))
	copy(out, s.domains)
	return out
}

// QuestionPreview is a question without its answer key.
type QuestionPreview struct {
	ID         int               `json:"id"`
	Prompt     string            `json:"question"`
	Options    []string          `json:"options"`
	Difficulty domain.Difficulty `json:"difficulty"`
	Domain     string            `json:"domain"`
}

// Preview shows what a session for domainName would be served.
func (s *QuizService) Preview(ctx context.Context, domainName string, limit int) ([]QuestionPreview, bool, error) {
	questions, fallback, err := s.selectQuestions(ctx, domainName, limit)
	if err != nil {
		return nil, false, err
	}
	out := make([]QuestionPreview, len(questions))
	for i, q := range questions {
		out[i] = QuestionPreview{ID: q.ID, Prompt: q.Prompt, Options: q.Options, Difficulty: q.Difficulty, Domain: q.Domain}
	}
	return out, fallback, nil
}

// Shutdown closes every hosted session.
func (s *QuizService) Shutdown(ctx context.Context) {
	for _, id := range s.sessions.IDs() {
		s.Close(ctx, id)
	}
}

func (s *QuizService) selectQuestions(ctx context.Context, domainName string, limit int) ([]domain.Question, bool, error) {
	corpus, err := s.corpus.GetCorpus(ctx)
	if err != nil {
		return nil, false, fmt.Errorf("%w: %v", domain.ErrCorpusUnavailable, err)
	}
	qs, fallback := questionbank.New(corpus, s.logger).Lookup(domainName, limit)
	return qs, fallback, nil
}

// apply runs fn against the run under its lock, publishes the resulting
// view and settles a completion if fn produced one.
func (s *QuizService) apply(ctx context.Context, id string, fn func(run *Run)) (engine.View, error) {
	run, ok := s.sessions.Get(id)
	if !ok {
		return engine.View{}, domain.ErrSessionNotFound
	}

	run.mu.Lock()
	if run.closed {
		run.mu.Unlock()
		return engine.View{}, domain.ErrSessionNotFound
	}
	fn(run)
	view := run.session.View()
	res, done := run.takeResultLocked()
	update := Update{View: view}
	if done {
		update.Result = &res
		run.stopClockLocked()
	} else if run.stopClock == nil && !view.Complete {
		// Retry after completion needs the clock back.
		s.startClockLocked(run)
	}
	run.broadcastLocked(update)
	run.mu.Unlock()

	if done {
		s.settle(ctx, run, res)
	}
	return view, nil
}

func (s *QuizService) startClockLocked(run *Run) {
	if s.settings.TickInterval <= 0 {
		return
	}
	ctx, cancel := context.WithCancel(context.Background())
	run.stopClock = cancel
	go s.runClock(ctx, run.id, s.settings.TickInterval)
}

func (s *QuizService) runClock(ctx context.Context, id string, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if _, err := s.Tick(ctx, id); errors.Is(err, domain.ErrSessionNotFound) {
				return
			}
		}
	}
}

// settle applies a completion to the ledger outside the engine. Ledger
// failures are logged; the learner's result stands either way.
func (s *QuizService) settle(ctx context.Context, run *Run, res engine.Result) {
	ctx = context.WithoutCancel(ctx)
	c := domain.Completion{
		SessionID:     run.id,
		UserID:        run.userID,
		DomainName:    res.DomainName,
		Level:         res.Level,
		Score:         res.Score,
		Total:         res.Total,
		Passed:        res.Passed,
		CreditsEarned: res.CreditsEarned,
		FinishedAt:    s.now(),
	}

	progress, err := s.progress.ApplyCompletion(ctx, run.userID, c)
	if err != nil {
		s.logger.Error("apply completion to progress", zap.String("session", run.id), zap.Error(err))
	}
	if s.recorder != nil {
		if err := s.recorder.RecordCompletion(ctx, c); err != nil {
			s.logger.Error("record completion", zap.String("session", run.id), zap.Error(err))
		}
	}
	s.metrics.Completed(res.DomainName, res.Passed, res.CreditsEarned)

	s.logger.Info("quiz session completed",
		zap.String("session", run.id),
		zap.String("user", run.userID),
		zap.String("domain", res.DomainName),
		zap.Int("level", res.Level),
		zap.Int("score", res.Score),
		zap.Int("total", res.Total),
		zap.Bool("passed", res.Passed),
		zap.Int("credits", res.CreditsEarned),
		zap.Int("totalCredits", progress.TotalCredits))
}
