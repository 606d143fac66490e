// Package engine implements the timed quiz session state machine.
//
// A Session advances only when its owner calls one of its methods: a learner
// intent (SelectAnswer, Submit, Advance, Reset, Close) or a clock signal
// (Tick). It owns no goroutines and does no blocking work, so tests drive it
// by calling Tick synchronously. A Session is not safe for concurrent use;
// the host serializes calls.
package engine

import (
	"skillquiz-service/internal/domain"
	"skillquiz-service/internal/level"
)

// DefaultTimeBudget is the countdown, in ticks, each question starts with.
const DefaultTimeBudget = 30

// Phase is the coarse state of a session.
type Phase int

const (
	PhaseAwaitingAnswer Phase = iota
	PhaseLocked
	PhaseComplete
	PhaseClosed
)

func (p Phase) String() string {
	switch p {
	case PhaseAwaitingAnswer:
		return "awaiting_answer"
	case PhaseLocked:
		return "locked"
	case PhaseComplete:
		return "complete"
	case PhaseClosed:
		return "closed"
	}
	return "unknown"
}

// Config describes a session at launch.
type Config struct {
	Questions     []domain.Question
	DomainName    string
	Level         int
	CreditsReward int // carried as given; not checked against level.CreditReward
	TimeBudget    int
}

// Answer is the locked outcome of one question.
type Answer struct {
	QuestionID int  `json:"questionId"`
	Selected   *int `json:"selected"`
	Correct    bool `json:"correct"`
	TimedOut   bool `json:"timedOut"`
}

// Result is emitted once per lifecycle when the last question is advanced past.
type Result struct {
	DomainName    string   `json:"domain"`
	Level         int      `json:"level"`
	Score         int      `json:"score"`
	Total         int      `json:"total"`
	Passed        bool     `json:"passed"`
	Accuracy      int      `json:"accuracy"`
	CreditsReward int      `json:"creditsReward"`
	CreditsEarned int      `json:"creditsEarned"`
	Answers       []Answer `json:"answers"`
}

// Session is one run of a quiz over a fixed question sequence.
type Session struct {
	questions     []domain.Question
	domainName    string
	level         int
	creditsReward int
	budget        int
	onComplete    func(Result)

	index        int
	selected     int
	hasSelection bool
	locked       bool
	timedOut     bool
	score        int
	remaining    int
	complete     bool
	closed       bool
	answers      []Answer
	result       Result
}

// New builds a session in AwaitingAnswer(0). onComplete may be nil.
// A session with no questions completes immediately with 0/0.
func New(cfg Config, onComplete func(Result)) *Session {
	budget := cfg.TimeBudget
	if budget <= 0 {
		budget = DefaultTimeBudget
	}
	s := &Session{
		questions:     cfg.Questions,
		domainName:    cfg.DomainName,
		level:         cfg.Level,
		creditsReward: cfg.CreditsReward,
		budget:        budget,
		onComplete:    onComplete,
	}
	s.start()
	return s
}

func (s *Session) start() {
	s.index = 0
	s.clearQuestion()
	s.score = 0
	s.complete = false
	s.answers = make([]Answer, 0, len(s.questions))
	s.result = Result{}
	if len(s.questions) == 0 {
		s.finish()
	}
}

func (s *Session) clearQuestion() {
	s.selected = 0
	s.hasSelection = false
	s.locked = false
	s.timedOut = false
	s.remaining = s.budget
}

// State reports the current phase.
func (s *Session) State() Phase {
	switch {
	case s.closed:
		return PhaseClosed
	case s.complete:
		return PhaseComplete
	case s.locked:
		return PhaseLocked
	default:
		return PhaseAwaitingAnswer
	}
}

func (s *Session) awaiting() bool {
	return s.State() == PhaseAwaitingAnswer
}

// SelectAnswer marks option as the pending answer. A later call before
// Submit replaces it. Ignored once the question is locked or when option
// is out of range.
func (s *Session) SelectAnswer(option int) bool {
	if !s.awaiting() {
		return false
	}
	if option < 0 || option >= len(s.questions[s.index].Options) {
		return false
	}
	s.selected = option
	s.hasSelection = true
	return true
}

// Submit locks the current question with the pending answer. Ignored when
// nothing is selected.
func (s *Session) Submit() bool {
	if !s.awaiting() || !s.hasSelection {
		return false
	}
	s.lock(false)
	return true
}

// Tick consumes one second of the current question's countdown. It returns
// true when this tick ran the countdown out and locked the question.
// Ticks are inert while locked, complete or closed.
func (s *Session) Tick() bool {
	if !s.awaiting() {
		return false
	}
	s.remaining--
	if s.remaining > 0 {
		return false
	}
	s.remaining = 0
	s.lock(true)
	return true
}

// lock finalizes the current question. Scoring happens here and only here.
func (s *Session) lock(timedOut bool) {
	q := s.questions[s.index]
	answer := Answer{QuestionID: q.ID, TimedOut: timedOut}
	if s.hasSelection {
		sel := s.selected
		answer.Selected = &sel
		answer.Correct = q.IsCorrect(sel)
	}
	if answer.Correct {
		s.score++
	}
	s.answers = append(s.answers, answer)
	s.locked = true
	s.timedOut = timedOut
}

// Advance moves past a locked question, either to the next one or to
// completion. Completion fires the onComplete callback.
func (s *Session) Advance() bool {
	if s.State() != PhaseLocked {
		return false
	}
	if s.index+1 < len(s.questions) {
		s.index++
		s.clearQuestion()
		return true
	}
	s.finish()
	return true
}

func (s *Session) finish() {
	s.complete = true
	total := len(s.questions)
	passed := level.Passed(s.score, total)
	earned := 0
	if passed {
		earned = s.creditsReward
	}
	answers := make([]Answer, len(s.answers))
	copy(answers, s.answers)
	s.result = Result{
		DomainName:    s.domainName,
		Level:         s.level,
		Score:         s.score,
		Total:         total,
		Passed:        passed,
		Accuracy:      level.Accuracy(s.score, total),
		CreditsReward: s.creditsReward,
		CreditsEarned: earned,
		Answers:       answers,
	}
	if s.onComplete != nil {
		s.onComplete(s.result)
	}
}

// Reset starts the session over from the first question ("try again").
// It begins a new lifecycle, so a later completion reports again.
func (s *Session) Reset() {
	if s.closed {
		return
	}
	s.start()
}

// Close discards the session. Every later call, Tick included, is a no-op.
func (s *Session) Close() {
	if s.closed {
		return
	}
	s.closed = true
	s.clearQuestion()
	s.remaining = 0
}

// Result returns the completion result once the session is complete.
func (s *Session) Result() (Result, bool) {
	if !s.complete {
		return Result{}, false
	}
	return s.result, true
}

// Score is the running count of correct answers.
func (s *Session) Score() int { return s.score }

// Index is the 0-based position of the active question.
func (s *Session) Index() int { return s.index }

// Remaining is the countdown left on the active question.
func (s *Session) Remaining() int { return s.remaining }

// Total is the length of the question sequence.
func (s *Session) Total() int { return len(s.questions) }

// Selected returns the pending or locked selection for the active question.
func (s *Session) Selected() (int, bool) { return s.selected, s.hasSelection }
