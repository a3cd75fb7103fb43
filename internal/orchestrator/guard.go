package orchestrator

import "strings"

var unconditionalActionCues = []string{
	"just do it",
	"don't ask",
	"dont ask",
	"do not ask",
	"no questions",
	"without asking",
	"skip the questions",
	"stop asking",
}

// ShouldRefuseDirectExecutionInDiscovery is the one point where the
// orchestrator can veto a turn. It returns true only when the conversation
// is still in discovery and the last user message explicitly demands
// unconditional direct action. Callers must respond with a clarifying
// message instead of forwarding the turn to the runtime; the signal itself
// is control flow, not an error.
func ShouldRefuseDirectExecutionInDiscovery(phase Phase, lastUserMessage string) bool {
	if phase != PhaseDiscovery {
		return false
	}
	return containsAny(strings.ToLower(lastUserMessage), unconditionalActionCues)
}
