package runtime

import (
	"context"
	"errors"
	"io"
	"net/http"
	"strings"
	"testing"

	"github.com/Marcoby-Dev-Ops/nexus-agent-runtime/internal/domain"
)

type fullAdapter struct{}

func (fullAdapter) RuntimeInfo() Info          { return Info{ID: "full"} }
func (fullAdapter) Capabilities() Capabilities { return Capabilities{Chat: true} }
func (fullAdapter) ChatCompletions(ctx context.Context, req *domain.ChatRequest) (*Response, error) {
	return nil, nil
}

type noInfoAdapter struct{}

func (noInfoAdapter) Capabilities() Capabilities { return Capabilities{} }
func (noInfoAdapter) ChatCompletions(ctx context.Context, req *domain.ChatRequest) (*Response, error) {
	return nil, nil
}

type noCapabilitiesAdapter struct{}

func (noCapabilitiesAdapter) RuntimeInfo() Info { return Info{} }
func (noCapabilitiesAdapter) ChatCompletions(ctx context.Context, req *domain.ChatRequest) (*Response, error) {
	return nil, nil
}

type noChatAdapter struct{}

func (noChatAdapter) RuntimeInfo() Info          { return Info{} }
func (noChatAdapter) Capabilities() Capabilities { return Capabilities{} }

func TestAssertRuntimeContract(t *testing.T) {
	tests := []struct {
		name        string
		candidate   any
		wantMissing string
	}{
		{name: "conformant", candidate: fullAdapter{}},
		{name: "missing RuntimeInfo", candidate: noInfoAdapter{}, wantMissing: "RuntimeInfo"},
		{name: "missing Capabilities", candidate: noCapabilitiesAdapter{}, wantMissing: "Capabilities"},
		{name: "missing ChatCompletions", candidate: noChatAdapter{}, wantMissing: "ChatCompletions"},
		// An empty candidate fails on the first entry of the required list.
		{name: "empty candidate", candidate: struct{}{}, wantMissing: "RuntimeInfo"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := AssertRuntimeContract(tt.candidate)
			if tt.wantMissing == "" {
				if err != nil {
					t.Fatalf("AssertRuntimeContract() = %v, want nil", err)
				}
				return
			}

			if err == nil {
				t.Fatal("AssertRuntimeContract() = nil, want error")
			}
			var cerr *domain.ContractError
			if !errors.As(err, &cerr) {
				t.Fatalf("error type = %T, want *domain.ContractError", err)
			}
			if cerr.Method != tt.wantMissing {
				t.Errorf("missing method = %q, want %q", cerr.Method, tt.wantMissing)
			}
			if !strings.Contains(err.Error(), tt.wantMissing+"()") {
				t.Errorf("error message %q does not name %s()", err.Error(), tt.wantMissing)
			}
		})
	}
}

func TestResponse_Events(t *testing.T) {
	body := strings.Join([]string{
		`data: {"n":1}`,
		"",
		`data: {"n":2}`,
		"",
		"data: [DONE]",
		"",
	}, "\n")

	resp := &Response{
		StatusCode: http.StatusOK,
		Header:     http.Header{"Content-Type": []string{"text/event-stream"}},
		Body:       io.NopCloser(strings.NewReader(body)),
	}

	var frames []string
	for result := range resp.Events() {
		if result.Err != nil {
			t.Fatalf("unexpected stream error: %v", result.Err)
		}
		frames = append(frames, string(result.Data))
	}

	if len(frames) != 2 {
		t.Fatalf("got %d frames, want 2 (terminator must not be emitted)", len(frames))
	}
	if frames[0] != `{"n":1}` || frames[1] != `{"n":2}` {
		t.Errorf("frames = %v", frames)
	}
}

func TestResponse_ContentType(t *testing.T) {
	resp := &Response{
		Header: http.Header{"Content-Type": []string{"application/json; charset=utf-8"}},
	}
	if got := resp.ContentType(); got != "application/json" {
		t.Errorf("ContentType() = %q, want application/json", got)
	}
}
