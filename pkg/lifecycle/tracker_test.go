package lifecycle

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

type stubGateway struct {
	status        Status
	errMessage    string
	fetchErr      error
	invokeResult  *ActivationResult
	invokeErr     error
	invokeCount   int
	markedMessage string
	markErr       error
}

func (g *stubGateway) FetchStatus(ctx context.Context) (Status, string, error) {
	return g.status, g.errMessage, g.fetchErr
}

func (g *stubGateway) InvokeActivation(ctx context.Context) (*ActivationResult, error) {
	g.invokeCount++
	return g.invokeResult, g.invokeErr
}

func (g *stubGateway) MarkError(ctx context.Context, message string) error {
	g.markedMessage = message
	if g.markErr == nil {
		g.status = StatusError
		g.errMessage = message
	}
	return g.markErr
}

func TestProgressEstimator(t *testing.T) {
	gw := &stubGateway{status: StatusCreating}
	tr := NewTracker(gw, nil)

	prev := 0
	for i := 0; i < 50; i++ {
		snap := tr.Tick()
		if snap.Progress < prev {
			t.Fatalf("progress went backwards: %d -> %d", prev, snap.Progress)
		}
		if snap.Progress > 90 {
			t.Fatalf("progress exceeded 90 while creating: %d", snap.Progress)
		}
		prev = snap.Progress
	}
	assert.Equal(t, 90, prev)
}

func TestProgressIncrementBands(t *testing.T) {
	gw := &stubGateway{status: StatusCreating}
	tr := NewTracker(gw, nil)

	// +10 per tick up to 30, +5 up to 60, +2 after, clamped at 90.
	wantSteps := []int{10, 20, 30, 35, 40, 45, 50, 55, 60, 62, 64}
	for i, want := range wantSteps {
		snap := tr.Tick()
		assert.Equal(t, want, snap.Progress, "tick %d", i+1)
	}
}

func TestProgressForcedTo100OnActive(t *testing.T) {
	gw := &stubGateway{status: StatusCreating, invokeResult: &ActivationResult{Success: true}}
	tr := NewTracker(gw, nil)

	tr.Tick()
	gw.status = StatusActive
	snap, err := tr.Observe(context.Background())
	assert.NoError(t, err)
	assert.Equal(t, StatusActive, snap.Status)
	assert.Equal(t, 100, snap.Progress)

	// Further ticks are no-ops once terminal.
	snap = tr.Tick()
	assert.Equal(t, 100, snap.Progress)
}

func TestActivationInvokedExactlyOnce(t *testing.T) {
	gw := &stubGateway{status: StatusCreating, invokeResult: &ActivationResult{Success: true}}
	tr := NewTracker(gw, nil)

	for i := 0; i < 3; i++ {
		_, err := tr.Observe(context.Background())
		assert.NoError(t, err)
	}
	assert.Equal(t, 1, gw.invokeCount)
}

func TestActivationTransportFailureMarksError(t *testing.T) {
	gw := &stubGateway{status: StatusCreating, invokeErr: errors.New("connection refused")}
	tr := NewTracker(gw, nil)

	snap, err := tr.Observe(context.Background())
	assert.NoError(t, err)
	assert.Equal(t, StatusError, snap.Status)
	assert.Equal(t, ErrorKindUnreachable, snap.ErrorKind)
	assert.NotEmpty(t, gw.markedMessage)
}

func TestActivationPartialFailureCarriesDetail(t *testing.T) {
	gw := &stubGateway{
		status:       StatusCreating,
		invokeResult: &ActivationResult{Success: false, Detail: "storage bucket missing"},
	}
	tr := NewTracker(gw, nil)

	snap, err := tr.Observe(context.Background())
	assert.NoError(t, err)
	assert.Equal(t, StatusError, snap.Status)
	assert.Equal(t, ErrorKindPartialFailure, snap.ErrorKind)
	assert.Contains(t, snap.ErrorMessage, "storage bucket missing")
}

func TestMarkErrorFailureIsSwallowed(t *testing.T) {
	gw := &stubGateway{
		status:    StatusCreating,
		invokeErr: errors.New("timeout"),
		markErr:   errors.New("db down"),
	}
	tr := NewTracker(gw, nil)

	snap, err := tr.Observe(context.Background())
	assert.NoError(t, err)
	assert.Equal(t, StatusError, snap.Status)
}

func TestTimeoutEscalation(t *testing.T) {
	gw := &stubGateway{status: StatusCreating}
	tr := NewTracker(gw, nil)

	// Drive progress to the 90 clamp. The escalation counter only runs
	// past the 80 mark, and the affordance needs more than 5 such ticks.
	sawEscalationTooEarly := false
	var ticksPast80 int
	for i := 0; i < 30; i++ {
		snap := tr.Tick()
		if snap.Progress > 80 {
			ticksPast80++
		}
		if snap.CanProceedAnyway && ticksPast80 <= 5 {
			sawEscalationTooEarly = true
		}
		if snap.CanProceedAnyway {
			break
		}
	}

	assert.False(t, sawEscalationTooEarly, "continue-anyway offered before threshold")
	assert.True(t, tr.Snapshot().CanProceedAnyway, "continue-anyway never offered")

	// Dismissal is local only, the machine stays in creating.
	tr.Dismiss()
	snap := tr.Snapshot()
	assert.True(t, snap.Dismissed)
	assert.Equal(t, StatusCreating, snap.Status)
}

func TestNoEscalationOnceActive(t *testing.T) {
	gw := &stubGateway{status: StatusCreating, invokeResult: &ActivationResult{Success: true}}
	tr := NewTracker(gw, nil)

	for i := 0; i < 40; i++ {
		tr.Tick()
	}
	gw.status = StatusActive
	_, err := tr.Observe(context.Background())
	assert.NoError(t, err)
	assert.False(t, tr.Snapshot().CanProceedAnyway)
}
