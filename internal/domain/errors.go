package domain

import "errors"

var (
	// ErrSessionNotFound is returned when a quiz session has not been launched or was closed.
	ErrSessionNotFound = errors.New("quiz session not found")
	// ErrInvalidLevel is returned when a session is requested for a level below 1.
	ErrInvalidLevel = errors.New("level must be at least 1")
	// ErrLevelLocked is returned when a learner launches a level they have not unlocked.
	ErrLevelLocked = errors.New("level not unlocked")
	// ErrInvalidQuestion marks a corpus record that breaks the question invariants.
	ErrInvalidQuestion = errors.New("invalid question")
	// ErrCorpusUnavailable indicates the question corpus could not be loaded.
	ErrCorpusUnavailable = errors.New("question corpus unavailable")
	// ErrMissingUser is returned when an operation needs a learner id and none was given.
	ErrMissingUser = errors.New("user id required")
)
