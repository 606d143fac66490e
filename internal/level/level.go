// Package level maps a level number to its question count and credit reward.
package level

// PassThreshold is the share of correct answers a session needs to pass.
const PassThreshold = 0.7

// MaxVisible is how many levels the quizzes page lists at once.
const MaxVisible = 10

// RequiredQuestions returns how many questions a level asks for.
// Levels below 1 are a caller error and are not guarded.
func RequiredQuestions(level int) int {
	switch {
	case level <= 5:
		return 10 + 10*level
	case level <= 50:
		return 100
	default:
		return 100 + 200*(level-50)
	}
}

// CreditReward returns the credits granted for passing a level.
func CreditReward(level int) int {
	return 50 * level
}

// Passed reports whether score out of total meets PassThreshold.
// An empty session (0/0) never passes.
func Passed(score, total int) bool {
	if total <= 0 {
		return false
	}
	// 10*score >= 7*total is score/total >= 0.7 without float rounding.
	return 10*score >= 7*total
}

// Accuracy returns score/total as a rounded percentage, 0 for an empty session.
func Accuracy(score, total int) int {
	if total <= 0 {
		return 0
	}
	return (200*score + total) / (2 * total)
}

// Tier is one row of the level table.
type Tier struct {
	Level             int  `json:"level"`
	RequiredQuestions int  `json:"questions"`
	Credits           int  `json:"credits"`
	Unlocked          bool `json:"unlocked"`
}

// Catalog lists levels from..to inclusive, marking levels up to unlockedUpTo as unlocked.
func Catalog(from, to, unlockedUpTo int) []Tier {
	if from < 1 {
		from = 1
	}
	if to < from {
		return nil
	}
	tiers := make([]Tier, 0, to-from+1)
	for l := from; l <= to; l++ {
		tiers = append(tiers, Tier{
			Level:             l,
			RequiredQuestions: RequiredQuestions(l),
			Credits:           CreditReward(l),
			Unlocked:          l <= unlockedUpTo,
		})
	}
	return tiers
}
