package reply

import (
	"fmt"
	"math/rand"
	"strings"
	"time"
)

// Mode selects which assistant persona answers. Closed set, two variants.
type Mode string

const (
	ModePersonal Mode = "personal"
	ModeBusiness Mode = "business"
)

const (
	titleWordCount = 3
	titleMaxLen    = 20
)

// Simulated assistant latency range before the reply starts revealing,
// used when the caller passes no bounds of its own.
const (
	DefaultMinDelay = 1 * time.Second
	DefaultMaxDelay = 2 * time.Second
)

// ParseMode returns the mode for s, defaulting to personal.
func ParseMode(s string) Mode {
	if Mode(s) == ModeBusiness {
		return ModeBusiness
	}
	return ModePersonal
}

var welcomeByMode = map[Mode]string{
	ModePersonal: "Hi there! I'm your personal assistant. Ask me anything: notes, ideas, plans, I'm all ears.",
	ModeBusiness: "Welcome! I'm your business assistant. I can help with meetings, reports, drafts and decisions.",
}

// WelcomeMessage is the assistant message that seeds every new session.
func WelcomeMessage(mode Mode) string {
	return welcomeByMode[ParseMode(string(mode))]
}

var personalReplies = [7]string{
	"That's a great question! Let me think about that for a moment, here's what I'd suggest.",
	"I hear you. Based on what you've told me, I'd start with the simplest option first.",
	"Interesting! There are a couple of angles here, let me walk you through them.",
	"Good point. If it were me, I'd break this down into smaller steps and tackle them one by one.",
	"Thanks for sharing that. Here's a thought: have you considered approaching it from the other side?",
	"I can definitely help with that. Let's start with what matters most to you.",
	"That sounds doable! A quick plan: gather what you have, sort it out, then decide.",
}

var businessReplies = [7]string{
	"Understood. From a business perspective, I'd prioritize impact over effort here.",
	"Noted. Let me outline the key considerations and a recommended next step.",
	"Good question. The short answer: measure it first, then commit resources.",
	"I'd suggest framing this as a cost-benefit decision. Here's a quick breakdown.",
	"From what you describe, the main risk is scope creep. A tight milestone plan helps.",
	"Let's structure this: objective, stakeholders, timeline, and a fallback option.",
	"That aligns well with standard practice. I'd document it and circulate for review.",
}

var rng = rand.New(rand.NewSource(time.Now().UnixNano()))

// Pick returns a canned assistant reply for the mode, appending a note about
// the attachment when one was sent along.
func Pick(mode Mode, attachmentName string) string {
	var set [7]string
	if ParseMode(string(mode)) == ModeBusiness {
		set = businessReplies
	} else {
		set = personalReplies
	}
	text := set[rng.Intn(len(set))]
	if attachmentName != "" {
		text += fmt.Sprintf(" I also received your file %q and took it into account.", attachmentName)
	}
	return text
}

// ProcessingDelay returns a uniformly random simulated latency in
// [min, max). A non-positive min falls back to the default range, and a
// max at or below min collapses the delay to exactly min.
func ProcessingDelay(min, max time.Duration) time.Duration {
	if min <= 0 {
		min, max = DefaultMinDelay, DefaultMaxDelay
	}
	if max <= min {
		return min
	}
	return min + time.Duration(rng.Int63n(int64(max-min)))
}

// DeriveTitle builds a session title from the first message: the first three
// words joined by spaces, truncated to 20 characters plus an ellipsis when
// the joined string runs longer.
func DeriveTitle(content string) string {
	words := strings.Fields(content)
	if len(words) == 0 {
		return "New chat"
	}
	if len(words) > titleWordCount {
		words = words[:titleWordCount]
	}
	title := strings.Join(words, " ")
	runes := []rune(title)
	if len(runes) > titleMaxLen {
		return string(runes[:titleMaxLen]) + "..."
	}
	return title
}
