package orchestrator

import (
	"strings"

	"github.com/Marcoby-Dev-Ops/nexus-agent-runtime/internal/domain"
)

// Phase is a conversation's current stage in the discovery → synthesis →
// execution progression.
type Phase string

const (
	PhaseDiscovery Phase = "discovery"
	PhaseSynthesis Phase = "synthesis"
	PhaseExecution Phase = "execution"
)

// PhaseResult pairs a phase with its fixed progress percentage.
type PhaseResult struct {
	Phase    Phase `json:"phase"`
	Progress int   `json:"progress"`
}

var phaseProgress = map[Phase]int{
	PhaseDiscovery: 0,
	PhaseSynthesis: 50,
	PhaseExecution: 100,
}

var synthesisCues = []string{
	"option",
	"compare",
	"summar",
	"plan",
	"proposal",
	"trade-off",
	"tradeoff",
	"recommend",
	"draft",
}

var commitCues = []string{
	"go ahead",
	"do it",
	"approved",
	"let's do",
	"lets do",
	"proceed",
	"ship it",
	"execute",
	"confirmed",
	"sounds good, go",
}

// DeterminePhase walks the full message history and returns the current
// phase with its progress percentage. The phase is a projection recomputed
// from scratch every call, never an incremented counter, so a conversation
// that re-opens discovery-style questions legitimately moves backward.
func DeterminePhase(messages []domain.Message) PhaseResult {
	users := userMessages(messages)
	if len(users) == 0 {
		return PhaseResult{Phase: PhaseDiscovery, Progress: phaseProgress[PhaseDiscovery]}
	}

	last := strings.ToLower(users[len(users)-1])

	// An explicit commit after at least one exchange moves to execution.
	if len(users) > 1 && containsAny(last, commitCues) {
		return PhaseResult{Phase: PhaseExecution, Progress: phaseProgress[PhaseExecution]}
	}

	// A fresh open question pulls the conversation back to discovery
	// regardless of how far it had progressed.
	if isDiscoveryQuestion(last) {
		return PhaseResult{Phase: PhaseDiscovery, Progress: phaseProgress[PhaseDiscovery]}
	}

	if len(users) >= 3 || containsAny(last, synthesisCues) {
		return PhaseResult{Phase: PhaseSynthesis, Progress: phaseProgress[PhaseSynthesis]}
	}

	return PhaseResult{Phase: PhaseDiscovery, Progress: phaseProgress[PhaseDiscovery]}
}

// isDiscoveryQuestion treats interrogative openers and bare questions as
// discovery signals, unless the message also commits to action.
func isDiscoveryQuestion(s string) bool {
	s = strings.TrimSpace(s)
	if containsAny(s, commitCues) {
		return false
	}

	for _, opener := range []string{"what ", "how ", "why ", "who ", "when ", "where ", "tell me"} {
		if strings.HasPrefix(s, opener) {
			return true
		}
	}
	return strings.HasSuffix(s, "?") && !containsAny(s, synthesisCues)
}

func userMessages(messages []domain.Message) []string {
	var out []string
	for _, m := range messages {
		if m.Role == "user" {
			out = append(out, m.Content)
		}
	}
	return out
}
