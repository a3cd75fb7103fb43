// Package orchestrator decides what the system is allowed to say next and
// what exactly is sent to the runtime. Everything here is a pure function
// over message history; classification is a cheap rule-based heuristic kept
// behind this boundary so it can be swapped for a learned classifier
// without touching callers.
package orchestrator

import (
	"strings"

	"github.com/Marcoby-Dev-Ops/nexus-agent-runtime/internal/domain"
)

// Intent is the tag attached to the latest user message. It is recomputed
// per turn and never persisted.
type Intent string

const (
	IntentInform       Intent = "inform"
	IntentDecide       Intent = "decide"
	IntentExecute      Intent = "execute"
	IntentExplore      Intent = "explore"
	IntentTroubleshoot Intent = "troubleshoot"
)

var executeCues = []string{
	"do it",
	"go ahead",
	"execute",
	"run the",
	"send the",
	"create the",
	"set up",
	"deploy",
	"apply the",
	"make it happen",
	"start the",
}

var decideCues = []string{
	"should i",
	"should we",
	"which one",
	"which of",
	"what's better",
	"what is better",
	"recommend",
	"decide",
	"choose",
	"pros and cons",
	"trade-off",
	"tradeoff",
}

var troubleshootCues = []string{
	"error",
	"failing",
	"failed",
	"broken",
	"not working",
	"doesn't work",
	"bug",
	"fix ",
	"crash",
}

var exploreCues = []string{
	"what is",
	"what are",
	"how does",
	"how do",
	"tell me about",
	"explain",
	"overview",
	"walk me through",
}

// DetectIntent inspects the most recent user message for keyword and
// structural cues and returns a single intent tag. Ambiguous phrasing
// resolves to IntentInform.
func DetectIntent(messages []domain.Message) Intent {
	last := strings.ToLower(domain.LastUserContent(messages))
	if last == "" {
		return IntentInform
	}

	switch {
	case containsAny(last, executeCues):
		return IntentExecute
	case containsAny(last, decideCues), isEitherOrQuestion(last):
		return IntentDecide
	case containsAny(last, troubleshootCues):
		return IntentTroubleshoot
	case containsAny(last, exploreCues):
		return IntentExplore
	default:
		return IntentInform
	}
}

// isEitherOrQuestion catches "A or B?" phrasing that asks the system to
// choose between options without any decision keyword.
func isEitherOrQuestion(s string) bool {
	return strings.HasSuffix(strings.TrimSpace(s), "?") && strings.Contains(s, " or ")
}

func containsAny(s string, cues []string) bool {
	for _, cue := range cues {
		if strings.Contains(s, cue) {
			return true
		}
	}
	return false
}
