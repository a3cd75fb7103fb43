// Package registry resolves configuration into exactly one validated,
// ready-to-use runtime adapter.
//
// Selection is a closed tagged-variant mapping from the configured runtime
// kind to an adapter constructor; every constructed adapter passes the
// capability contract before being handed out. A process-wide cached
// instance is replaced only through the explicit reset path, so concurrent
// reads never race with an implicit write.
package registry

import (
	"log/slog"
	"strings"
	"sync"

	"github.com/Marcoby-Dev-Ops/nexus-agent-runtime/internal/config"
	"github.com/Marcoby-Dev-Ops/nexus-agent-runtime/internal/runtime"
	"github.com/Marcoby-Dev-Ops/nexus-agent-runtime/internal/runtime/mockruntime"
	"github.com/Marcoby-Dev-Ops/nexus-agent-runtime/internal/runtime/openclaw"
)

// KindMock selects the deterministic adapter.
const KindMock = "mock"

// productionAliases are the recognized spellings for the production
// adapter. Unrecognized values also resolve to production; that fallback is
// a deliberate fail-open default, not an error.
var productionAliases = map[string]bool{
	"openclaw":        true,
	"openclawgateway": true,
}

func normalizeKind(kind string) string {
	s := strings.ToLower(strings.TrimSpace(kind))
	s = strings.ReplaceAll(s, "-", "")
	s = strings.ReplaceAll(s, "_", "")
	return s
}

// Create resolves cfg into a contract-certified adapter. A request for the
// mock adapter in a production-flagged environment without the explicit
// override is silently downgraded to the production adapter; it never
// fails for that reason.
func Create(cfg *config.Config) (runtime.Runtime, error) {
	kind := normalizeKind(cfg.Runtime.Kind)

	useMock := kind == KindMock
	if useMock && cfg.IsProduction() && !cfg.AllowMockRuntime {
		slog.Warn("mock runtime requested in production without ALLOW_MOCK_RUNTIME, using production adapter")
		useMock = false
	}
	if !useMock && kind != "" && kind != KindMock && !productionAliases[kind] {
		slog.Debug("unrecognized runtime kind, falling back to production adapter",
			slog.String("kind", cfg.Runtime.Kind))
	}

	var rt runtime.Runtime
	if useMock {
		var opts []mockruntime.Option
		if cfg.Mock.BaseURL != "" {
			opts = append(opts, mockruntime.WithBaseURL(cfg.Mock.BaseURL))
		}
		if cfg.Mock.DefaultModel != "" {
			opts = append(opts, mockruntime.WithDefaultModel(cfg.Mock.DefaultModel))
		}
		rt = mockruntime.New(opts...)
	} else {
		rt = openclaw.New(cfg.OpenClaw.BaseURL, cfg.OpenClaw.APIKey)
	}

	// Certify once at construction time; a failed construction is never
	// cached, so callers can never observe a usable-but-broken adapter.
	if err := runtime.AssertRuntimeContract(rt); err != nil {
		return nil, err
	}
	return rt, nil
}

var (
	mu     sync.Mutex
	cached runtime.Runtime
)

// Options controls Get. A nil Options (or Reset=false) returns the cached
// instance when one exists.
type Options struct {
	// Reset discards the cached instance and rebuilds from Config.
	Reset bool
	// Config supplies the configuration for (re)construction. When nil,
	// configuration is loaded from the environment.
	Config *config.Config
}

// Get returns the process-wide runtime instance, constructing it on first
// use. Repeated calls without Reset return the identical instance.
func Get(opts *Options) (runtime.Runtime, error) {
	mu.Lock()
	defer mu.Unlock()

	if opts == nil {
		opts = &Options{}
	}

	if cached != nil && !opts.Reset {
		return cached, nil
	}

	cfg := opts.Config
	if cfg == nil {
		loaded, err := config.Load()
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}

	rt, err := Create(cfg)
	if err != nil {
		return nil, err
	}
	cached = rt
	return cached, nil
}

// Reset discards the cached instance. Primarily for tests.
func Reset() {
	mu.Lock()
	defer mu.Unlock()
	cached = nil
}
