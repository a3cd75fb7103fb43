// Package mockruntime implements a deterministic, network-free runtime
// adapter for testing and local development. Its responses are structurally
// compatible with the production adapter's wire shapes so callers can treat
// both uniformly.
package mockruntime

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/Marcoby-Dev-Ops/nexus-agent-runtime/internal/domain"
	"github.com/Marcoby-Dev-Ops/nexus-agent-runtime/internal/runtime"
)

const (
	// RuntimeID identifies this adapter in runtime info.
	RuntimeID = "mock"

	// ResponsePrefix is the literal marker every mock completion starts with.
	ResponsePrefix = "MOCK_RESPONSE: "

	defaultBaseURL = "http://mock.invalid/v1"
	defaultModel   = "mock-model"

	// completionID and createdAt are fixed so repeated calls with the same
	// request produce byte-identical bodies.
	completionID = "chatcmpl-mock"
	createdAt    = int64(1700000000)
)

// Option configures the adapter.
type Option func(*Runtime)

// WithDefaultModel sets the model echoed when a request does not name one.
func WithDefaultModel(model string) Option {
	return func(r *Runtime) {
		r.defaultModel = model
	}
}

// WithBaseURL overrides the informational base URL. The adapter never
// dials it.
func WithBaseURL(baseURL string) Option {
	return func(r *Runtime) {
		r.baseURL = strings.TrimSuffix(baseURL, "/")
	}
}

// Runtime is the deterministic adapter.
type Runtime struct {
	baseURL      string
	defaultModel string
}

// New creates a deterministic adapter.
func New(opts ...Option) *Runtime {
	r := &Runtime{
		baseURL:      defaultBaseURL,
		defaultModel: defaultModel,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// RuntimeInfo reports informational URLs only; no request is ever issued.
func (r *Runtime) RuntimeInfo() runtime.Info {
	return runtime.Info{
		ID:                 RuntimeID,
		BaseURL:            r.baseURL,
		ChatCompletionsURL: r.baseURL + "/chat/completions",
		HealthURL:          strings.TrimSuffix(r.baseURL, "/v1") + "/health",
	}
}

// Capabilities mirrors the production adapter so the mock can stand in for
// it everywhere.
func (r *Runtime) Capabilities() runtime.Capabilities {
	return runtime.Capabilities{Chat: true, Streaming: true, Tools: true}
}

// ChatCompletions synthesizes a canned response echoing the last user
// message. No I/O is performed.
func (r *Runtime) ChatCompletions(ctx context.Context, req *domain.ChatRequest) (*runtime.Response, error) {
	model := req.Model
	if model == "" {
		model = r.defaultModel
	}

	content := ResponsePrefix + req.LastUserMessage()
	if len(req.Tools) > 0 {
		content += " tools:" + strings.Join(req.Tools, ",")
	}

	if req.Stream {
		return r.streamResponse(model, content), nil
	}
	return r.jsonResponse(model, content)
}

func (r *Runtime) jsonResponse(model, content string) (*runtime.Response, error) {
	completion := domain.ChatCompletion{
		ID:      completionID,
		Object:  "chat.completion",
		Created: createdAt,
		Model:   model,
		Choices: []domain.Choice{
			{
				Index:        0,
				Message:      domain.Message{Role: "assistant", Content: content},
				FinishReason: "stop",
			},
		},
	}

	body, err := json.Marshal(&completion)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal mock completion: %w", err)
	}

	header := make(http.Header)
	header.Set("Content-Type", "application/json")

	return &runtime.Response{
		StatusCode: http.StatusOK,
		Header:     header,
		Body:       io.NopCloser(bytes.NewReader(body)),
	}, nil
}

func (r *Runtime) streamResponse(model, content string) *runtime.Response {
	chunk := func(delta domain.Delta, finish *string) []byte {
		b, _ := json.Marshal(&domain.ChatCompletionChunk{
			ID:      completionID,
			Object:  "chat.completion.chunk",
			Created: createdAt,
			Model:   model,
			Choices: []domain.ChunkChoice{{Index: 0, Delta: delta, FinishReason: finish}},
		})
		return b
	}

	stop := "stop"
	var buf bytes.Buffer
	fmt.Fprintf(&buf, "data: %s\n\n", chunk(domain.Delta{Role: "assistant", Content: content}, nil))
	fmt.Fprintf(&buf, "data: %s\n\n", chunk(domain.Delta{}, &stop))
	buf.WriteString("data: [DONE]\n\n")

	header := make(http.Header)
	header.Set("Content-Type", "text/event-stream")

	return &runtime.Response{
		StatusCode: http.StatusOK,
		Header:     header,
		Body:       io.NopCloser(bytes.NewReader(buf.Bytes())),
	}
}
