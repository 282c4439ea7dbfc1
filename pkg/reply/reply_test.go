package reply

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestDeriveTitle(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    string
	}{
		{
			name:    "three short words kept verbatim",
			content: "Hello world",
			want:    "Hello world",
		},
		{
			name:    "first three words only",
			content: "What should I cook tonight for dinner",
			want:    "What should I",
		},
		{
			name:    "long joined words get truncated with ellipsis",
			content: "Congratulations extraordinarily magnificent achievement",
			want:    "Congratulations extr...",
		},
		{
			name:    "empty content falls back",
			content: "   ",
			want:    "New chat",
		},
		{
			name:    "single word",
			content: "Hi",
			want:    "Hi",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := DeriveTitle(tt.content)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestTitleNeverExceedsLimit(t *testing.T) {
	got := DeriveTitle("aaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaa bbb ccc")
	assert.Equal(t, 23, len([]rune(got))) // 20 chars + "..."
}

func TestReplySetsAreDisjoint(t *testing.T) {
	business := make(map[string]bool, len(businessReplies))
	for _, r := range businessReplies {
		business[r] = true
	}
	for _, r := range personalReplies {
		assert.False(t, business[r], "reply shared between modes: %q", r)
	}
	assert.Len(t, personalReplies, 7)
	assert.Len(t, businessReplies, 7)
}

func TestPickRespectsModeAndAttachment(t *testing.T) {
	personal := make(map[string]bool, len(personalReplies))
	for _, r := range personalReplies {
		personal[r] = true
	}

	for i := 0; i < 20; i++ {
		got := Pick(ModePersonal, "")
		assert.True(t, personal[got], "unexpected personal reply: %q", got)
	}

	got := Pick(ModeBusiness, "report.pdf")
	assert.Contains(t, got, "report.pdf")
}

func TestParseModeDefaultsToPersonal(t *testing.T) {
	assert.Equal(t, ModePersonal, ParseMode(""))
	assert.Equal(t, ModePersonal, ParseMode("something-else"))
	assert.Equal(t, ModeBusiness, ParseMode("business"))
}

func TestProcessingDelayRange(t *testing.T) {
	for i := 0; i < 100; i++ {
		d := ProcessingDelay(time.Second, 2*time.Second)
		assert.GreaterOrEqual(t, d, time.Second)
		assert.Less(t, d, 2*time.Second)
	}

	// Zero bounds fall back to the default 1-2s range.
	for i := 0; i < 100; i++ {
		d := ProcessingDelay(0, 0)
		assert.GreaterOrEqual(t, d, DefaultMinDelay)
		assert.Less(t, d, DefaultMaxDelay)
	}

	// Degenerate range collapses to the lower bound.
	assert.Equal(t, 5*time.Millisecond, ProcessingDelay(5*time.Millisecond, 5*time.Millisecond))
}

func TestWelcomeMessagesDiffer(t *testing.T) {
	assert.NotEqual(t, WelcomeMessage(ModePersonal), WelcomeMessage(ModeBusiness))
	assert.NotEmpty(t, WelcomeMessage(ModePersonal))
}
