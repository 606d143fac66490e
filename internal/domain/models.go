package domain

import "time"

// Difficulty labels how hard a question is.
type Difficulty string

const (
	DifficultyEasy   Difficulty = "easy"
	DifficultyMedium Difficulty = "medium"
	DifficultyHard   Difficulty = "hard"
)

// Valid reports whether d is one of the known difficulty tags.
func (d Difficulty) Valid() bool {
	switch d {
	case DifficultyEasy, DifficultyMedium, DifficultyHard:
		return true
	}
	return false
}

// Question models an MCQ question with exactly one correct option.
// Questions are immutable once loaded into the bank.
type Question struct {
	ID            int        `json:"id" yaml:"id"`
	Prompt        string     `json:"question" yaml:"question"`
	Options       []string   `json:"options" yaml:"options"`
	CorrectAnswer int        `json:"correctAnswer" yaml:"correctAnswer"`
	Domain        string     `json:"domain" yaml:"domain"`
	Difficulty    Difficulty `json:"difficulty" yaml:"difficulty"`
}

// IsCorrect reports whether option is the correct answer index.
func (q Question) IsCorrect(option int) bool {
	return option == q.CorrectAnswer
}

// QuizDomain is a category a learner can pick on the quizzes page.
type QuizDomain struct {
	ID                  int    `json:"id" yaml:"id"`
	Name                string `json:"name" yaml:"name"`
	Icon                string `json:"icon" yaml:"icon"`
	AdvertisedQuestions int    `json:"questions" yaml:"questions"`
}

// Progress is the learner's ledger kept by the host outside any session.
type Progress struct {
	UserID       string    `json:"userId"`
	CurrentLevel int       `json:"currentLevel"`
	TotalCredits int       `json:"totalCredits"`
	Completed    int       `json:"completed"`
	Streak       int       `json:"streak"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// NewProgress returns the ledger of a learner who has not finished any quiz.
func NewProgress(userID string) Progress {
	return Progress{UserID: userID, CurrentLevel: 1}
}

// Apply folds a completion into the ledger. Passing raises the unlocked
// level and grows the streak; failing resets the streak.
func (p Progress) Apply(c Completion, now time.Time) Progress {
	if p.CurrentLevel < 1 {
		p.CurrentLevel = 1
	}
	if c.Passed {
		p.TotalCredits += c.CreditsEarned
		p.Completed++
		if c.Level+1 > p.CurrentLevel {
			p.CurrentLevel = c.Level + 1
		}
		p.Streak++
	} else {
		p.Streak = 0
	}
	p.UpdatedAt = now
	return p
}

// Completion is the record the host keeps for one finished session.
type Completion struct {
	SessionID     string    `json:"sessionId"`
	UserID        string    `json:"userId"`
	DomainName    string    `json:"domain"`
	Level         int       `json:"level"`
	Score         int       `json:"score"`
	Total         int       `json:"total"`
	Passed        bool      `json:"passed"`
	CreditsEarned int       `json:"creditsEarned"`
	FinishedAt    time.Time `json:"finishedAt"`
}
