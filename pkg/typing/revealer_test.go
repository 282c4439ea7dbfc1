package typing

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestRevealPrefixInvariant(t *testing.T) {
	full := "According to your notes, the meeting is on Thursday at 10am."
	r := NewRevealer(full)

	prevLen := 0
	for !r.Done() {
		state := r.Step()
		if !strings.HasPrefix(full, state.Partial) {
			t.Fatalf("partial %q is not a prefix of full text", state.Partial)
		}
		run := len([]rune(state.Partial)) - prevLen
		if !r.Done() && (run < 2 || run > 4) {
			t.Fatalf("reveal run length %d outside [2,4]", run)
		}
		wantProgress := float64(len([]rune(state.Partial))) / float64(len([]rune(full)))
		assert.InDelta(t, wantProgress, state.Progress, 1e-9)
		prevLen = len([]rune(state.Partial))
	}

	state := r.State()
	assert.Equal(t, full, state.Partial)
	assert.Equal(t, 1.0, state.Progress)
	assert.False(t, state.IsTyping)
}

func TestRevealerIsIndependentPerMessage(t *testing.T) {
	first := NewRevealer("first assistant reply")
	for !first.Done() {
		first.Step()
	}

	// A fresh revealer carries no partial state from a previous message.
	second := NewRevealer("a different reply")
	state := second.State()
	assert.Equal(t, "", state.Partial)
	assert.Equal(t, 0.0, state.Progress)
	assert.True(t, state.IsTyping)
}

func TestRevealEmptyText(t *testing.T) {
	r := NewRevealer("")
	assert.True(t, r.Done())
	state := r.Step()
	assert.Equal(t, "", state.Partial)
	assert.Equal(t, 1.0, state.Progress)
	assert.False(t, state.IsTyping)
}

func TestRunCompletesAndStops(t *testing.T) {
	r := NewRevealer("short reply text")
	var steps int
	state := r.Run(context.Background(), time.Millisecond, func(State) { steps++ })
	assert.True(t, r.Done())
	assert.Equal(t, "short reply text", state.Partial)
	assert.Greater(t, steps, 0)
}

func TestRunHonorsCancellation(t *testing.T) {
	r := NewRevealer(strings.Repeat("x", 10000))
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	state := r.Run(ctx, time.Millisecond, nil)
	assert.False(t, r.Done())
	assert.Less(t, state.Progress, 1.0)
}
