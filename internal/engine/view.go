package engine

import "skillquiz-service/internal/domain"

// OptionState is how an option should be highlighted.
type OptionState string

const (
	OptionNeutral   OptionState = "neutral"
	OptionSelected  OptionState = "selected"
	OptionCorrect   OptionState = "correct"
	OptionIncorrect OptionState = "incorrect"
)

// OptionView is one answer option as the host renders it.
type OptionView struct {
	Index int         `json:"index"`
	Text  string      `json:"text"`
	State OptionState `json:"state"`
}

// QuestionView is the active question without its answer key.
type QuestionView struct {
	ID         int               `json:"id"`
	Prompt     string            `json:"question"`
	Difficulty domain.Difficulty `json:"difficulty"`
}

// View is a read-only snapshot for rendering.
type View struct {
	Phase         string        `json:"phase"`
	DomainName    string        `json:"domain"`
	Level         int           `json:"level"`
	CreditsReward int           `json:"creditsReward"`
	Index         int           `json:"index"`
	Total         int           `json:"total"`
	Question      *QuestionView `json:"question,omitempty"`
	Options       []OptionView  `json:"options,omitempty"`
	Remaining     int           `json:"remaining"`
	Score         int           `json:"score"`
	Answered      int           `json:"answered"`
	Progress      int           `json:"progress"`
	Locked        bool          `json:"locked"`
	TimedOut      bool          `json:"timedOut"`
	Complete      bool          `json:"complete"`
	Closed        bool          `json:"closed"`
	Passed        bool          `json:"passed"`
}

// Classify returns the highlight for option given the selection and lock state.
func Classify(option, correct int, selected *int, locked bool) OptionState {
	isSelected := selected != nil && *selected == option
	if locked {
		switch {
		case option == correct:
			return OptionCorrect
		case isSelected:
			return OptionIncorrect
		}
		return OptionNeutral
	}
	if isSelected {
		return OptionSelected
	}
	return OptionNeutral
}

// View snapshots the session.
func (s *Session) View() View {
	v := View{
		Phase:         s.State().String(),
		DomainName:    s.domainName,
		Level:         s.level,
		CreditsReward: s.creditsReward,
		Index:         s.index,
		Total:         len(s.questions),
		Remaining:     s.remaining,
		Score:         s.score,
		Locked:        s.locked,
		TimedOut:      s.timedOut,
		Complete:      s.complete,
		Closed:        s.closed,
	}
	if s.complete {
		v.Passed = s.result.Passed
		v.Answered = len(s.questions)
		if v.Total > 0 {
			v.Progress = 100
		}
		return v
	}
	if s.closed || len(s.questions) == 0 {
		return v
	}

	v.Answered = s.index
	if s.locked {
		v.Answered++
	}
	v.Progress = (s.index + 1) * 100 / len(s.questions)

	q := s.questions[s.index]
	v.Question = &QuestionView{ID: q.ID, Prompt: q.Prompt, Difficulty: q.Difficulty}

	var selected *int
	if s.hasSelection {
		sel := s.selected
		selected = &sel
	}
	v.Options = make([]OptionView, len(q.Options))
	for i, text := range q.Options {
		v.Options[i] = OptionView{Index: i, Text: text, State: Classify(i, q.CorrectAnswer, selected, s.locked)}
	}
	return v
}
