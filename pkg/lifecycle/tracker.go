package lifecycle

import (
	"context"
	"fmt"
	"log"
	"sync"
)

// Status mirrors the tenant row's provisioning state.
type Status string

const (
	StatusCreating Status = "creating"
	StatusActive   Status = "active"
	StatusError    Status = "error"
)

// ErrorKind classifies why an activation attempt failed.
type ErrorKind string

const (
	ErrorKindNone           ErrorKind = ""
	ErrorKindUnreachable    ErrorKind = "activation_unreachable"
	ErrorKindPartialFailure ErrorKind = "activation_partial_failure"
)

const (
	progressCap       = 90
	escalationFloor   = 80
	escalationTickMax = 5
)

// ActivationResult is what the remote provisioning job reports back.
type ActivationResult struct {
	Success       bool
	StorageFolder string
	Detail        string
}

// Gateway is the narrow surface the tracker needs: read the tenant row,
// kick the provisioning job, and write the last-resort error transition.
type Gateway interface {
	FetchStatus(ctx context.Context) (Status, string, error)
	InvokeActivation(ctx context.Context) (*ActivationResult, error)
	MarkError(ctx context.Context, message string) error
}

// Snapshot is the tracker state handed to the presentation layer.
type Snapshot struct {
	Status           Status
	Progress         int
	ErrorKind        ErrorKind
	ErrorMessage     string
	CanProceedAnyway bool
	Dismissed        bool
}

// Tracker drives the creating -> active | error machine for one tenant.
//
// The progress value is a smoothing heuristic, not a real signal: it climbs
// on a fixed tick (+10 below 30, +5 below 60, +2 after) and is clamped at 90
// until the row actually flips to active, at which point it is forced to 100.
// A secondary counter starts once progress passes 80; after it exceeds 5
// ticks the "continue anyway" affordance unlocks.
type Tracker struct {
	gw     Gateway
	logger *log.Logger

	mu         sync.Mutex
	status     Status
	progress   int
	escalation int
	errKind    ErrorKind
	errMessage string
	invoked    bool
	dismissed  bool
}

func NewTracker(gw Gateway, logger *log.Logger) *Tracker {
	if logger == nil {
		logger = log.Default()
	}
	return &Tracker{
		gw:     gw,
		logger: logger,
		status: StatusCreating,
	}
}

// Observe refreshes the tracker from the tenant row. The first time it sees
// the row in creating state it invokes the activation job, exactly once for
// the lifetime of this tracker. The job itself is idempotent: invoking it
// against an already-active tenant returns success without side effects.
func (t *Tracker) Observe(ctx context.Context) (Snapshot, error) {
	status, errMessage, err := t.gw.FetchStatus(ctx)
	if err != nil {
		return t.Snapshot(), err
	}

	t.mu.Lock()
	t.applyStatusLocked(status, errMessage)
	shouldActivate := status == StatusCreating && !t.invoked
	if shouldActivate {
		t.invoked = true
	}
	t.mu.Unlock()

	if shouldActivate {
		t.activate(ctx)
	}
	return t.Snapshot(), nil
}

func (t *Tracker) activate(ctx context.Context) {
	result, err := t.gw.InvokeActivation(ctx)

	var kind ErrorKind
	var message string
	switch {
	case err != nil:
		kind = ErrorKindUnreachable
		message = "provisioning service unreachable, please retry later"
		t.logger.Printf("[ERROR] activation call failed: %v", err)
	case !result.Success:
		kind = ErrorKindPartialFailure
		message = "provisioning did not complete"
		if result.Detail != "" {
			message = fmt.Sprintf("provisioning did not complete: %s", result.Detail)
		}
		t.logger.Printf("[ERROR] activation reported failure: %s", result.Detail)
	default:
		// The job updated the row itself; re-fetch to observe the flip.
		status, errMessage, ferr := t.gw.FetchStatus(ctx)
		if ferr != nil {
			t.logger.Printf("[WARN] re-fetch after activation failed: %v", ferr)
			return
		}
		t.mu.Lock()
		t.applyStatusLocked(status, errMessage)
		t.mu.Unlock()
		return
	}

	t.mu.Lock()
	t.status = StatusError
	t.errKind = kind
	t.errMessage = message
	t.mu.Unlock()

	// Last-resort client-side transition to error. Best effort: a failure
	// here is logged and swallowed, the local state still flips.
	if merr := t.gw.MarkError(ctx, message); merr != nil {
		t.logger.Printf("[WARN] failed to persist error status: %v", merr)
	}
	if status, errMessage, ferr := t.gw.FetchStatus(ctx); ferr == nil {
		t.mu.Lock()
		t.applyStatusLocked(status, errMessage)
		t.mu.Unlock()
	}
}

func (t *Tracker) applyStatusLocked(status Status, errMessage string) {
	t.status = status
	switch status {
	case StatusActive:
		t.progress = 100
	case StatusError:
		if errMessage != "" {
			t.errMessage = errMessage
		}
	}
}

// Tick advances the progress estimator by one interval.
func (t *Tracker) Tick() Snapshot {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.status == StatusCreating {
		switch {
		case t.progress < 30:
			t.progress += 10
		case t.progress < 60:
			t.progress += 5
		default:
			t.progress += 2
		}
		if t.progress > progressCap {
			t.progress = progressCap
		}
		if t.progress > escalationFloor {
			t.escalation++
		}
	}
	return t.snapshotLocked()
}

// Dismiss records the user's choice to enter the app despite incomplete
// provisioning. Purely local, not a state transition.
func (t *Tracker) Dismiss() {
	t.mu.Lock()
	t.dismissed = true
	t.mu.Unlock()
}

func (t *Tracker) Snapshot() Snapshot {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.snapshotLocked()
}

func (t *Tracker) snapshotLocked() Snapshot {
	return Snapshot{
		Status:           t.status,
		Progress:         t.progress,
		ErrorKind:        t.errKind,
		ErrorMessage:     t.errMessage,
		CanProceedAnyway: t.status == StatusCreating && t.escalation > escalationTickMax,
		Dismissed:        t.dismissed,
	}
}
