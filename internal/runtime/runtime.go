// Package runtime defines the capability contract every chat-completion
// backend adapter must satisfy, plus the response shape both adapters share.
package runtime

import (
	"context"

	"github.com/Marcoby-Dev-Ops/nexus-agent-runtime/internal/domain"
)

// Info identifies which adapter is active and where it points. Immutable
// once an adapter is constructed.
type Info struct {
	ID                 string `json:"id"`
	BaseURL            string `json:"base_url"`
	ChatCompletionsURL string `json:"chat_completions_url"`
	HealthURL          string `json:"health_url"`
}

// Capabilities are declared by each adapter, not inferred. Callers use them
// to decide whether to request streaming or tool calling.
type Capabilities struct {
	Chat      bool `json:"chat"`
	Streaming bool `json:"streaming"`
	Tools     bool `json:"tools"`
}

// Runtime is the contract every adapter must expose.
type Runtime interface {
	RuntimeInfo() Info
	Capabilities() Capabilities

	// ChatCompletions executes one chat-completion call. For stream=false
	// the response body is the provider's native JSON completion; for
	// stream=true it is a live text/event-stream body consumable
	// incrementally. The adapter performs no retry and imposes no timeout
	// of its own; cancellation is the caller's concern via ctx.
	ChatCompletions(ctx context.Context, req *domain.ChatRequest) (*Response, error)
}
