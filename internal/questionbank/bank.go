package questionbank

import (
	"fmt"

	"skillquiz-service/internal/domain"

	"go.uber.org/zap"
)

// DefaultLimit is how many questions a session is launched with when no limit is given.
const DefaultLimit = 5

// Bank serves ordered slices of a read-only question corpus.
type Bank struct {
	corpus []domain.Question
	logger *zap.Logger
}

// New wraps corpus. The slice is copied so later edits by the caller do not leak in.
func New(corpus []domain.Question, logger *zap.Logger) *Bank {
	if logger == nil {
		logger = zap.NewNop()
	}
	owned := make([]domain.Question, len(corpus))
	copy(owned, corpus)
	return &Bank{corpus: owned, logger: logger.Named("questionbank")}
}

// Select returns up to limit questions tagged with domainName, in corpus order.
// When the domain has no authored questions it falls back to the head of the
// whole corpus so a session is never launched empty.
func (b *Bank) Select(domainName string, limit int) []domain.Question {
	qs, _ := b.Lookup(domainName, limit)
	return qs
}

// Lookup is Select that also reports whether the cross-domain fallback was used.
func (b *Bank) Lookup(domainName string, limit int) ([]domain.Question, bool) {
	if limit <= 0 {
		limit = DefaultLimit
	}

	matched := make([]domain.Question, 0, limit)
	for _, q := range b.corpus {
		if q.Domain != domainName {
			continue
		}
		matched = append(matched, q)
		if len(matched) == limit {
			break
		}
	}
	if len(matched) > 0 {
		return matched, false
	}

	n := min(limit, len(b.corpus))
	fallback := make([]domain.Question, n)
	copy(fallback, b.corpus[:n])
	if n > 0 {
		// Serving unrelated content is a UX smell; keep it visible in logs.
		b.logger.Warn("no questions authored for domain, serving cross-domain fallback",
			zap.String("domain", domainName),
			zap.Int("served", n))
	}
	return fallback, true
}

// Domains lists the distinct domain tags present in the corpus, in corpus order.
func (b *Bank) Domains() []string {
	seen := make(map[string]struct{})
	var out []string
	for _, q := range b.corpus {
		if _, ok := seen[q.Domain]; ok {
			continue
		}
		seen[q.Domain] = struct{}{}
		out = append(out, q.Domain)
	}
	return out
}

// Count returns how many questions are authored for domainName.
func (b *Bank) Count(domainName string) int {
	n := 0
	for _, q := range b.corpus {
		if q.Domain == domainName {
			n++
		}
	}
	return n
}

// Len is the corpus size.
func (b *Bank) Len() int {
	return len(b.corpus)
}

// Validate checks a corpus record against the question invariants.
func Validate(q domain.Question) error {
	if len(q.Options) < 2 {
		return fmt.Errorf("%w: question %d has %d options", domain.ErrInvalidQuestion, q.ID, len(q.Options))
	}
	if q.CorrectAnswer < 0 || q.CorrectAnswer >= len(q.Options) {
		return fmt.Errorf("%w: question %d correct answer %d out of range", domain.ErrInvalidQuestion, q.ID, q.CorrectAnswer)
	}
	if !q.Difficulty.Valid() {
		return fmt.Errorf("%w: question %d difficulty %q", domain.ErrInvalidQuestion, q.ID, q.Difficulty)
	}
	return nil
}

// ValidateAll validates every record and returns the first failure.
func ValidateAll(corpus []domain.Question) error {
	for _, q := range corpus {
		if err := Validate(q); err != nil {
			return err
		}
	}
	return nil
}
