package typing

import (
	"context"
	"math/rand"
	"time"
)

const (
	// DefaultStepInterval is the reveal tick used for the typing animation.
	DefaultStepInterval = 35 * time.Millisecond

	minRunLength = 2
	maxRunLength = 4
)

// State is the ephemeral view of one in-progress reveal. It exists only
// while an assistant reply is being revealed and is discarded on completion.
type State struct {
	IsTyping bool    `json:"is_typing"`
	Partial  string  `json:"partial"`
	Full     string  `json:"-"`
	Progress float64 `json:"progress"`
}

// Revealer animates an already-known reply text by exposing 2-4 additional
// characters per step. This is presentation only, no streaming is involved:
// the full text is fixed at construction and Partial is always a prefix of it.
type Revealer struct {
	full []rune
	pos  int
	rng  *rand.Rand
}

func NewRevealer(full string) *Revealer {
	return &Revealer{
		full: []rune(full),
		rng:  rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

// Step reveals the next randomized run of characters and returns the
// resulting state. Calling Step after completion is a no-op.
func (r *Revealer) Step() State {
	if r.pos < len(r.full) {
		run := minRunLength + r.rng.Intn(maxRunLength-minRunLength+1)
		r.pos += run
		if r.pos > len(r.full) {
			r.pos = len(r.full)
		}
	}
	return r.State()
}

func (r *Revealer) Done() bool {
	return r.pos >= len(r.full)
}

func (r *Revealer) State() State {
	progress := 1.0
	if len(r.full) > 0 {
		progress = float64(r.pos) / float64(len(r.full))
	}
	return State{
		IsTyping: !r.Done(),
		Partial:  string(r.full[:r.pos]),
		Full:     string(r.full),
		Progress: progress,
	}
}

// Run steps the reveal on a fixed tick until it completes or the context is
// cancelled, delivering every state to onStep. The ticker is always released.
func (r *Revealer) Run(ctx context.Context, interval time.Duration, onStep func(State)) State {
	if interval <= 0 {
		interval = DefaultStepInterval
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for !r.Done() {
		select {
		case <-ctx.Done():
			return r.State()
		case <-ticker.C:
			state := r.Step()
			if onStep != nil {
				onStep(state)
			}
		}
	}
	return r.State()
}
