package orchestrator

import "github.com/Marcoby-Dev-Ops/nexus-agent-runtime/internal/domain"

// ModelWayMetadata packages intent and phase for the caller's UI. Pure data
// assembly, no side effects.
type ModelWayMetadata struct {
	ConversationID string `json:"conversation_id"`
	Intent         Intent `json:"intent"`
	Phase          Phase  `json:"phase"`
	Progress       int    `json:"progress"`
}

// BuildModelWayMetadata assembles the per-turn metadata object.
func BuildModelWayMetadata(intent Intent, phase PhaseResult, conversationID string) ModelWayMetadata {
	return ModelWayMetadata{
		ConversationID: conversationID,
		Intent:         intent,
		Phase:          phase.Phase,
		Progress:       phase.Progress,
	}
}

// BuildRuntimeMessages produces the exact message list sent to the runtime:
// exactly one system message, the caller-supplied context, placed first,
// followed by the original messages with any client-origin system-role
// messages removed. A client can never override or append to the
// authoritative system prompt.
func BuildRuntimeMessages(messages []domain.Message, contextSystemMessage string) []domain.Message {
	out := make([]domain.Message, 0, len(messages)+1)
	out = append(out, domain.Message{Role: "system", Content: contextSystemMessage})

	for _, m := range messages {
		if m.Role == "system" {
			continue
		}
		out = append(out, m)
	}
	return out
}
