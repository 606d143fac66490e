package app

import (
	"context"
	"sync"
	"time"

	"skillquiz-service/internal/engine"
)

// Update is pushed to subscribers after every state change. Result is set
// only on the update that completed the session.
type Update struct {
	View   engine.View    `json:"view"`
	Result *engine.Result `json:"result,omitempty"`
}

// Run is a hosted session: the engine session plus what the host needs
// around it (owner, clock, settle timer, subscribers).
type Run struct {
	id        string
	userID    string
	createdAt time.Time

	mu          sync.Mutex
	session     *engine.Session
	paused      bool
	closed      bool
	stopClock   context.CancelFunc
	settle      *time.Timer
	pending     *engine.Result
	subscribers map[chan Update]struct{}
}

func newRun(id, userID string, now time.Time) *Run {
	return &Run{
		id:          id,
		userID:      userID,
		createdAt:   now,
		subscribers: make(map[chan Update]struct{}),
	}
}

// ID is the session id handed to the client.
func (r *Run) ID() string { return r.id }

// UserID is the learner the run belongs to.
func (r *Run) UserID() string { return r.userID }

// CreatedAt is when the run was launched.
func (r *Run) CreatedAt() time.Time { return r.createdAt }

// captureResult is the engine's completion callback. It only parks the
// result; the service applies it once the engine call has returned.
func (r *Run) captureResult(res engine.Result) {
	r.pending = &res
}

func (r *Run) takeResultLocked() (engine.Result, bool) {
	if r.pending == nil {
		return engine.Result{}, false
	}
	res := *r.pending
	r.pending = nil
	return res, true
}

func (r *Run) cancelSettleLocked() {
	if r.settle != nil {
		r.settle.Stop()
		r.settle = nil
	}
}

func (r *Run) stopClockLocked() {
	if r.stopClock != nil {
		r.stopClock()
		r.stopClock = nil
	}
}

func (r *Run) subscribe() (<-chan Update, func()) {
	ch := make(chan Update, 8)

	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		close(ch)
		return ch, func() {}
	}
	r.subscribers[ch] = struct{}{}
	initial := Update{View: r.session.View()}
	r.mu.Unlock()

	ch <- initial

	cancel := func() {
		r.mu.Lock()
		if _, ok := r.subscribers[ch]; ok {
			delete(r.subscribers, ch)
			close(ch)
		}
		r.mu.Unlock()
	}
	return ch, cancel
}

func (r *Run) broadcastLocked(u Update) {
	for ch := range r.subscribers {
		select {
		case ch <- u:
		default:
			// Slow reader: drop its oldest update so the newest state always lands.
			select {
			case <-ch:
			default:
			}
			ch <- u
		}
	}
}

func (r *Run) closeSubscribersLocked() {
	for ch := range r.subscribers {
		delete(r.subscribers, ch)
		close(ch)
	}
}
