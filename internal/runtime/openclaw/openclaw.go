// Package openclaw implements the production runtime adapter bridging to an
// external OpenAI-compatible chat-completions service.
package openclaw

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
	RuntimeID = "openclaw"

	defaultBaseURL = "https://api.openclaw.ai/v1"
	versionPath    = "/v1"
)

// Option configures the adapter.
type Option func(*Runtime)

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(httpClient *http.Client) Option {
	return func(r *Runtime) {
		r.httpClient = httpClient
	}
}

// WithDefaultModel sets the model used when a request does not name one.
func WithDefaultModel(model string) Option {
	return func(r *Runtime) {
		r.defaultModel = model
	}
}

// Runtime is the production adapter. It holds only configuration and is
// safe for concurrent use; all per-request state lives on the stack.
type Runtime struct {
	baseURL      string
	apiKey       string
	defaultModel string
	httpClient   *http.Client
}

// New creates a production adapter. The base URL is normalized once here so
// every derived URL carries the versioned path segment exactly once.
func New(baseURL, apiKey string, opts ...Option) *Runtime {
	r := &Runtime{
		baseURL:    NormalizeBaseURL(baseURL),
		apiKey:     apiKey,
		httpClient: http.DefaultClient,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// NormalizeBaseURL trims trailing slashes and appends the versioned path
// segment if absent. The operation is idempotent: a URL already ending in
// the segment is returned unchanged.
func NormalizeBaseURL(raw string) string {
	s := strings.TrimRight(strings.TrimSpace(raw), "/")
	if s == "" {
		return defaultBaseURL
	}
	if !strings.HasSuffix(s, versionPath) {
		s += versionPath
	}
	return s
}

// RuntimeInfo exposes the normalized base URL and the fully qualified
// chat-completions and health URLs so operators can verify wiring without
// issuing a request.
func (r *Runtime) RuntimeInfo() runtime.Info {
	return runtime.Info{
		ID:                 RuntimeID,
		BaseURL:            r.baseURL,
		ChatCompletionsURL: r.baseURL + "/chat/completions",
		HealthURL:          strings.TrimSuffix(r.baseURL, versionPath) + "/health",
	}
}

// Capabilities reports the full feature set; this adapter is the
// full-featured backend.
func (r *Runtime) Capabilities() runtime.Capabilities {
	return runtime.Capabilities{Chat: true, Streaming: true, Tools: true}
}

// ChatCompletions performs the network call. Non-streaming responses carry
// the provider's native JSON body; streaming responses wrap the live
// event-stream body without reshaping. Transport errors propagate with no
// retry; retry, if any, is the caller's responsibility.
func (r *Runtime) ChatCompletions(ctx context.Context, req *domain.ChatRequest) (*runtime.Response, error) {
	wireReq := *req
	if wireReq.Model == "" {
		wireReq.Model = r.defaultModel
	}

	body, err := json.Marshal(&wireReq)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, r.baseURL+"/chat/completions", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	r.setHeaders(httpReq)

	resp, err := r.httpClient.Do(httpReq)
	if err != nil {
		return nil, &domain.TransportError{Err: err}
	}

	if resp.StatusCode != http.StatusOK {
		defer resp.Body.Close()
		respBody, _ := io.ReadAll(resp.Body)
		return nil, &domain.TransportError{StatusCode: resp.StatusCode, Body: string(respBody)}
	}

	return &runtime.Response{
		StatusCode: resp.StatusCode,
		Header:     resp.Header,
		Body:       resp.Body,
	}, nil
}

func (r *Runtime) setHeaders(req *http.Request) {
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+r.apiKey)
	req.Header.Set("User-Agent", "nexus-agent-runtime/1.0")
}
