package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/Marcoby-Dev-Ops/nexus-agent-runtime/internal/config"
	"github.com/Marcoby-Dev-Ops/nexus-agent-runtime/internal/domain"
	"github.com/Marcoby-Dev-Ops/nexus-agent-runtime/internal/knowledge"
	"github.com/Marcoby-Dev-Ops/nexus-agent-runtime/internal/metrics"
	"github.com/Marcoby-Dev-Ops/nexus-agent-runtime/internal/orchestrator"
	"github.com/Marcoby-Dev-Ops/nexus-agent-runtime/internal/runtime"
	"github.com/Marcoby-Dev-Ops/nexus-agent-runtime/internal/runtime/registry"
)

// RuntimeResolver returns the adapter a turn should run against. The
// default resolver is the registry's cached singleton.
type RuntimeResolver func() (runtime.Runtime, error)

// Handler serves the agent API.
type Handler struct {
	cfg       *config.Config
	knowledge *knowledge.Service
	resolve   RuntimeResolver
}

// NewHandler creates the API handler. A nil resolver uses the registry.
func NewHandler(cfg *config.Config, svc *knowledge.Service, resolve RuntimeResolver) *Handler {
	if resolve == nil {
		resolve = func() (runtime.Runtime, error) {
			return registry.Get(&registry.Options{Config: cfg})
		}
	}
	return &Handler{cfg: cfg, knowledge: svc, resolve: resolve}
}

// chatTurnRequest is the inbound payload for one conversation turn.
type chatTurnRequest struct {
	UserID         string           `json:"user_id"`
	AgentID        string           `json:"agent_id,omitempty"`
	ConversationID string           `json:"conversation_id,omitempty"`
	Model          string           `json:"model,omitempty"`
	Messages       []domain.Message `json:"messages"`
	Tools          []string         `json:"tools,omitempty"`
	Stream         bool             `json:"stream,omitempty"`
}

// chatTurnResponse wraps a non-streaming completion with the turn's
// orchestration metadata.
type chatTurnResponse struct {
	Completion    json.RawMessage               `json:"completion,omitempty"`
	Refusal       string                        `json:"refusal,omitempty"`
	ModelWay      orchestrator.ModelWayMetadata `json:"model_way"`
	ContextDigest string                        `json:"context_digest,omitempty"`
	TokenEstimate int                           `json:"token_estimate,omitempty"`
}

const discoveryRefusalMessage = "Before I act on that, I need a little more context. " +
	"Can you tell me more about what outcome you're after?"

// Chat handles POST /v1/agent/chat: classify the turn, assemble context,
// and forward to the configured runtime, streaming or whole-response.
func (h *Handler) Chat(w http.ResponseWriter, r *http.Request) {
	var req chatTurnRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, fmt.Errorf("invalid request body: %w", err))
		return
	}
	if len(req.Messages) == 0 {
		writeError(w, http.StatusBadRequest, errors.New("messages must not be empty"))
		return
	}

	ctx := r.Context()
	AddLogField(ctx, "conversation_id", req.ConversationID)

	intent := orchestrator.DetectIntent(req.Messages)
	phase := orchestrator.DeterminePhase(req.Messages)
	metrics.RecordIntent(string(intent))
	AddLogField(ctx, "intent", string(intent))
	AddLogField(ctx, "phase", string(phase.Phase))

	modelWay := orchestrator.BuildModelWayMetadata(intent, phase, req.ConversationID)

	// The guard is control flow, not an error: a vetoed turn gets a
	// clarifying response instead of a runtime call.
	if orchestrator.ShouldRefuseDirectExecutionInDiscovery(phase.Phase, domain.LastUserContent(req.Messages)) {
		metrics.RecordGuardRefusal()
		writeJSON(w, http.StatusOK, chatTurnResponse{
			Refusal:  discoveryRefusalMessage,
			ModelWay: modelWay,
		})
		return
	}

	kc, err := h.knowledge.AssembleKnowledgeContext(ctx, knowledge.AssembleOptions{
		UserID:         req.UserID,
		AgentID:        req.AgentID,
		ConversationID: req.ConversationID,
		IncludeShort:   true,
		IncludeMedium:  true,
		IncludeLong:    true,
		MaxBlocks:      h.cfg.Context.MaxBlocks,
		Model:          h.model(req.Model),
	})
	if err != nil {
		AddError(ctx, err)
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	metrics.RecordContextAssembly(len(kc.ContextBlocks), kc.TokenEstimate)

	rt, err := h.resolve()
	if err != nil {
		AddError(ctx, err)
		writeError(w, http.StatusInternalServerError, err)
		return
	}

	start := time.Now()
	resp, err := rt.ChatCompletions(ctx, &domain.ChatRequest{
		Model:    h.model(req.Model),
		Messages: orchestrator.BuildRuntimeMessages(req.Messages, kc.SystemContext),
		Tools:    req.Tools,
		Stream:   req.Stream,
	})
	status := "ok"
	if err != nil {
		status = "error"
	}
	metrics.RecordRuntimeCall(rt.RuntimeInfo().ID, req.Stream, status, time.Since(start).Seconds())
	if err != nil {
		AddError(ctx, err)
		writeError(w, http.StatusBadGateway, err)
		return
	}
	defer resp.Close()

	if req.Stream {
		h.streamResponse(w, r, resp, kc.ContextDigest)
		return
	}

	var completion json.RawMessage
	if err := resp.DecodeJSON(&completion); err != nil {
		AddError(ctx, err)
		writeError(w, http.StatusBadGateway, fmt.Errorf("failed to decode completion: %w", err))
		return
	}

	writeJSON(w, http.StatusOK, chatTurnResponse{
		Completion:    completion,
		ModelWay:      modelWay,
		ContextDigest: kc.ContextDigest,
		TokenEstimate: kc.TokenEstimate,
	})
}

// streamResponse copies the runtime's event stream to the client as it
// arrives. Orchestration metadata travels in headers since the body is the
// raw frame sequence.
func (h *Handler) streamResponse(w http.ResponseWriter, r *http.Request, resp *runtime.Response, digest string) {
	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("X-Context-Digest", digest)
	w.WriteHeader(http.StatusOK)

	flusher, _ := w.(http.Flusher)
	buf := make([]byte, 4096)
	for {
		n, err := resp.Body.Read(buf)
		if n > 0 {
			if _, werr := w.Write(buf[:n]); werr != nil {
				return
			}
			if flusher != nil {
				flusher.Flush()
			}
		}
		if err != nil {
			if !errors.Is(err, io.EOF) {
				AddError(r.Context(), err)
			}
			return
		}
	}
}

// Context handles GET /v1/agent/context.
func (h *Handler) Context(w http.ResponseWriter, r *http.Request) {
	kc, err := h.assembleFromQuery(r)
	if err != nil {
		AddError(r.Context(), err)
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	writeJSON(w, http.StatusOK, kc)
}

// Chips handles GET /v1/agent/chips.
func (h *Handler) Chips(w http.ResponseWriter, r *http.Request) {
	kc, err := h.assembleFromQuery(r)
	if err != nil {
		AddError(r.Context(), err)
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string][]string{
		"chips": knowledge.BuildContextChips(kc.ContextBlocks),
	})
}

func (h *Handler) assembleFromQuery(r *http.Request) (*domain.KnowledgeContext, error) {
	q := r.URL.Query()

	// Horizons default to all included; an explicit "false" excludes one.
	include := func(name string) bool { return q.Get(name) != "false" }

	return h.knowledge.AssembleKnowledgeContext(r.Context(), knowledge.AssembleOptions{
		UserID:         q.Get("user_id"),
		AgentID:        q.Get("agent_id"),
		ConversationID: q.Get("conversation_id"),
		IncludeShort:   include("short"),
		IncludeMedium:  include("medium"),
		IncludeLong:    include("long"),
		MaxBlocks:      h.cfg.Context.MaxBlocks,
		Model:          h.model(""),
	})
}

// RuntimeInfo handles GET /v1/runtime: which adapter is active and where
// it points, without issuing an upstream request.
func (h *Handler) RuntimeInfo(w http.ResponseWriter, r *http.Request) {
	rt, err := h.resolve()
	if err != nil {
		AddError(r.Context(), err)
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"runtime":      rt.RuntimeInfo(),
		"capabilities": rt.Capabilities(),
	})
}

// Health handles GET /healthz.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *Handler) model(requested string) string {
	if requested != "" {
		return requested
	}
	return h.cfg.Context.DefaultModel
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, map[string]any{
		"error": map[string]string{"message": err.Error()},
	})
}
