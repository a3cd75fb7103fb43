package runtime

import (
	"context"

	"github.com/Marcoby-Dev-Ops/nexus-agent-runtime/internal/domain"
)

// RequiredMethod names one operation of the runtime contract together with
// a presence probe. Probes are single-method interface assertions, so the
// check is reflection-free and runs once at adapter construction, never per
// request.
type RequiredMethod struct {
	Name  string
	Probe func(candidate any) bool
}

// RequiredRuntimeMethods is the ordered contract. The list is a package
// variable rather than a fixed enumeration so additional operations can be
// appended without touching the checker.
var RequiredRuntimeMethods = []RequiredMethod{
	{
		Name: "RuntimeInfo",
		Probe: func(c any) bool {
			_, ok := c.(interface{ RuntimeInfo() Info })
			return ok
		},
	},
	{
		Name: "Capabilities",
		Probe: func(c any) bool {
			_, ok := c.(interface{ Capabilities() Capabilities })
			return ok
		},
	},
	{
		Name: "ChatCompletions",
		Probe: func(c any) bool {
			_, ok := c.(interface {
				ChatCompletions(ctx context.Context, req *domain.ChatRequest) (*Response, error)
			})
			return ok
		},
	},
}

// AssertRuntimeContract verifies that candidate exposes every required
// operation, in order, and fails on the first absent one with an error
// naming it. Conformant candidates return nil with no side effects.
func AssertRuntimeContract(candidate any) error {
	for _, m := range RequiredRuntimeMethods {
		if !m.Probe(candidate) {
			return &domain.ContractError{Method: m.Name}
		}
	}
	return nil
}
