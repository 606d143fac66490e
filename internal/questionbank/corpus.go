package questionbank

import (
	_ "embed"
	"fmt"

	"skillquiz-service/internal/domain"

	"gopkg.in/yaml.v3"
)

//go:embed corpus.yaml
var seedYAML []byte

type seedFile struct {
	Domains   []domain.QuizDomain `yaml:"domains"`
	Questions []domain.Question   `yaml:"questions"`
}

// Parse decodes a corpus document (same layout as the embedded seed) and validates every question.
func Parse(data []byte) ([]domain.QuizDomain, []domain.Question, error) {
	var f seedFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, nil, fmt.Errorf("decode corpus: %w", err)
	}
	if err := ValidateAll(f.Questions); err != nil {
		return nil, nil, err
	}
	return f.Domains, f.Questions, nil
}

// DefaultCorpus returns the built-in seed questions.
func DefaultCorpus() []domain.Question {
	_, qs := mustSeed()
	return qs
}

// DefaultDomains returns the platform's domain catalog.
func DefaultDomains() []domain.QuizDomain {
	ds, _ := mustSeed()
	return ds
}

func mustSeed() ([]domain.QuizDomain, []domain.Question) {
	ds, qs, err := Parse(seedYAML)
	if err != nil {
		panic(fmt.Sprintf("embedded corpus: %v", err))
	}
	return ds, qs
}
