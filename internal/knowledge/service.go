// Package knowledge assembles the bounded, ordered context payload that
// becomes the conversation's single system message.
package knowledge

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/Marcoby-Dev-Ops/nexus-agent-runtime/internal/domain"
	"github.com/Marcoby-Dev-Ops/nexus-agent-runtime/internal/storage"
	"github.com/Marcoby-Dev-Ops/nexus-agent-runtime/internal/tokens"
)

// DefaultAgentID is the agent every unrecognized or absent agent identifier
// resolves to.
const DefaultAgentID = "nexus"

// DefaultMaxBlocks caps the assembled block list when the caller does not
// set a limit.
const DefaultMaxBlocks = 12

const (
	defaultWorkItemLimit = 5
	defaultMessageLimit  = 6
)

// AssembleOptions selects what goes into one context assembly.
type AssembleOptions struct {
	UserID         string
	AgentID        string
	ConversationID string
	IncludeShort   bool
	IncludeMedium  bool
	IncludeLong    bool
	MaxBlocks      int
	Model          string
}

// Service builds knowledge context from an injected read interface. It
// never writes to the store.
type Service struct {
	store     storage.Reader
	estimator tokens.Estimator
	knownIDs  map[string]bool
}

// NewService creates a context assembly service.
func NewService(store storage.Reader, estimator tokens.Estimator) *Service {
	return &Service{
		store:     store,
		estimator: estimator,
		knownIDs:  map[string]bool{DefaultAgentID: true},
	}
}

// NormalizeAgentID maps unrecognized or absent agent identifiers to the
// default agent.
func (s *Service) NormalizeAgentID(agentID string) string {
	agentID = strings.ToLower(strings.TrimSpace(agentID))
	if !s.knownIDs[agentID] {
		return DefaultAgentID
	}
	return agentID
}

// AssembleKnowledgeContext fetches all context sources concurrently, renders
// them into blocks in a fixed order, and computes the digest, token estimate
// and horizon usage. For fixed store contents, identical options always
// yield an identical digest and block ordering.
func (s *Service) AssembleKnowledgeContext(ctx context.Context, opts AssembleOptions) (*domain.KnowledgeContext, error) {
	agentID := s.NormalizeAgentID(opts.AgentID)

	maxBlocks := opts.MaxBlocks
	if maxBlocks <= 0 {
		maxBlocks = DefaultMaxBlocks
	}

	var horizons []domain.Horizon
	if opts.IncludeShort {
		horizons = append(horizons, domain.HorizonShort)
	}
	if opts.IncludeMedium {
		horizons = append(horizons, domain.HorizonMedium)
	}
	if opts.IncludeLong {
		horizons = append(horizons, domain.HorizonLong)
	}

	var (
		agent     *domain.AgentIdentity
		user      *domain.UserProfile
		workItems []domain.WorkItem
		messages  []domain.StoredMessage
		facts     []domain.Fact
	)

	// All fetches are independent reads; issue them concurrently and join
	// before assembly. Block order is fixed below, not arrival order.
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		agent, err = s.store.AgentIdentity(gctx, agentID)
		return err
	})
	g.Go(func() error {
		var err error
		user, err = s.store.UserProfile(gctx, opts.UserID)
		return err
	})
	g.Go(func() error {
		var err error
		workItems, err = s.store.OpenWorkItems(gctx, opts.UserID, defaultWorkItemLimit)
		return err
	})
	g.Go(func() error {
		if opts.ConversationID == "" {
			return nil
		}
		var err error
		messages, err = s.store.RecentMessages(gctx, opts.ConversationID, defaultMessageLimit)
		return err
	})
	g.Go(func() error {
		if len(horizons) == 0 {
			return nil
		}
		var err error
		facts, err = s.store.Facts(gctx, "user", opts.UserID, horizons)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("knowledge fetch failed: %w", err)
	}

	var blocks []domain.ContextBlock
	if agent != nil {
		blocks = append(blocks, renderAgentBlock(*agent))
	}
	if user != nil {
		blocks = append(blocks, renderUserBlock(*user))
	}
	if len(workItems) > 0 {
		blocks = append(blocks, renderWorkItemsBlock(workItems))
	}
	if len(messages) > 0 {
		blocks = append(blocks, renderConversationBlock(messages))
	}
	blocks = append(blocks, renderFactBlocks(facts)...)

	if len(blocks) > maxBlocks {
		blocks = blocks[:maxBlocks]
	}

	systemContext := joinBlocks(blocks)
	estimate, _ := s.estimator.EstimateTokens(opts.Model, systemContext)

	return &domain.KnowledgeContext{
		Resolved:      domain.ResolvedParties{AgentID: agentID},
		ContextBlocks: blocks,
		ContextDigest: digest(systemContext),
		HorizonUsage:  countHorizons(blocks),
		TokenEstimate: estimate,
		SystemContext: systemContext,
	}, nil
}

func renderAgentBlock(agent domain.AgentIdentity) domain.ContextBlock {
	var b strings.Builder
	fmt.Fprintf(&b, "You are %s, %s.", agent.Name, agent.Role)
	if agent.Description != "" {
		b.WriteString(" ")
		b.WriteString(agent.Description)
	}
	return domain.ContextBlock{
		ID:      "agent-identity",
		Domain:  "identity",
		Horizon: domain.HorizonNone,
		Content: b.String(),
	}
}

func renderUserBlock(user domain.UserProfile) domain.ContextBlock {
	var b strings.Builder
	fmt.Fprintf(&b, "You are speaking with %s", user.Name)
	if user.Role != "" {
		fmt.Fprintf(&b, ", %s", user.Role)
	}
	if user.CompanyName != "" {
		fmt.Fprintf(&b, " at %s", user.CompanyName)
	}
	if user.CompanyIndustry != "" {
		fmt.Fprintf(&b, " (%s)", user.CompanyIndustry)
	}
	b.WriteString(".")
	return domain.ContextBlock{
		ID:      "user-identity",
		Domain:  "identity",
		Horizon: domain.HorizonNone,
		Content: b.String(),
	}
}

func renderWorkItemsBlock(items []domain.WorkItem) domain.ContextBlock {
	var b strings.Builder
	b.WriteString("Active work items:")
	for i, item := range items {
		fmt.Fprintf(&b, "\n%d. [P%d] %s (%s)", i+1, item.Priority, item.Title, item.Status)
	}
	return domain.ContextBlock{
		ID:      "active-work-items",
		Domain:  "work",
		Horizon: domain.HorizonNone,
		Content: b.String(),
	}
}

func renderConversationBlock(messages []domain.StoredMessage) domain.ContextBlock {
	var b strings.Builder
	b.WriteString("Recent conversation:")
	// Store order is newest first; render oldest first so the transcript
	// reads top to bottom.
	for i := len(messages) - 1; i >= 0; i-- {
		fmt.Fprintf(&b, "\n%s: %s", messages[i].Role, messages[i].Content)
	}
	return domain.ContextBlock{
		ID:      "recent-conversation",
		Domain:  "conversation",
		Horizon: domain.HorizonNone,
		Content: b.String(),
	}
}

// renderFactBlocks groups facts by horizon then domain, preserving the
// store's deterministic ordering within each group.
func renderFactBlocks(facts []domain.Fact) []domain.ContextBlock {
	var blocks []domain.ContextBlock

	for _, horizon := range []domain.Horizon{domain.HorizonShort, domain.HorizonMedium, domain.HorizonLong} {
		byDomain := make(map[string][]domain.Fact)
		var domains []string
		for _, fact := range facts {
			if fact.Horizon != horizon {
				continue
			}
			if _, seen := byDomain[fact.Domain]; !seen {
				domains = append(domains, fact.Domain)
			}
			byDomain[fact.Domain] = append(byDomain[fact.Domain], fact)
		}

		for _, dom := range domains {
			var b strings.Builder
			fmt.Fprintf(&b, "Known facts (%s/%s):", dom, horizon)
			for _, fact := range byDomain[dom] {
				fmt.Fprintf(&b, "\n- %s: %s", fact.Key, fact.Value)
			}
			blocks = append(blocks, domain.ContextBlock{
				ID:      fmt.Sprintf("facts-%s-%s", string(horizon), dom),
				Domain:  dom,
				Horizon: horizon,
				Content: b.String(),
			})
		}
	}
	return blocks
}

func joinBlocks(blocks []domain.ContextBlock) string {
	parts := make([]string, 0, len(blocks))
	for _, block := range blocks {
		parts = append(parts, block.Content)
	}
	return strings.Join(parts, "\n\n")
}

// digest is a stable hash over the joined block contents. Identical inputs
// at any time produce an identical digest.
func digest(systemContext string) string {
	sum := sha256.Sum256([]byte(systemContext))
	return hex.EncodeToString(sum[:])
}

func countHorizons(blocks []domain.ContextBlock) domain.HorizonUsage {
	var usage domain.HorizonUsage
	for _, block := range blocks {
		switch block.Horizon {
		case domain.HorizonShort:
			usage.Short++
		case domain.HorizonMedium:
			usage.Medium++
		case domain.HorizonLong:
			usage.Long++
		}
	}
	return usage
}
