package domain

import "time"

// Horizon is a memory-recency tier for knowledge facts.
type Horizon string

const (
	HorizonShort  Horizon = "short"
	HorizonMedium Horizon = "medium"
	HorizonLong   Horizon = "long"
	// HorizonNone marks blocks that carry no recency tier, such as the
	// agent and user identity blocks.
	HorizonNone Horizon = ""
)

// ContextBlock is one unit of rendered context content. Order within an
// assembled block list is significant: the agent-identity block is always
// first and the user-identity block second when present.
type ContextBlock struct {
	ID      string  `json:"id"`
	Domain  string  `json:"domain"`
	Horizon Horizon `json:"horizon,omitempty"`
	Content string  `json:"content"`
}

// HorizonUsage counts assembled blocks per horizon tag. Blocks without a
// horizon (identity blocks) are excluded.
type HorizonUsage struct {
	Short  int `json:"short"`
	Medium int `json:"medium"`
	Long   int `json:"long"`
}

// ResolvedParties records the identifiers the context was assembled for
// after normalization.
type ResolvedParties struct {
	AgentID string `json:"agent_id"`
}

// KnowledgeContext is the bounded, ordered context payload for one
// conversation turn. SystemContext is the block contents joined into the
// single authoritative system message; ContextDigest is a stable hash over
// that string, so identical store contents and options always produce an
// identical digest.
type KnowledgeContext struct {
	Resolved      ResolvedParties `json:"resolved"`
	ContextBlocks []ContextBlock  `json:"context_blocks"`
	ContextDigest string          `json:"context_digest"`
	HorizonUsage  HorizonUsage    `json:"horizon_usage"`
	TokenEstimate int             `json:"token_estimate"`
	SystemContext string          `json:"system_context"`
}

// Fact is a read-only knowledge-store row.
type Fact struct {
	ID          string    `json:"id"`
	SubjectType string    `json:"subject_type"`
	SubjectID   string    `json:"subject_id"`
	Horizon     Horizon   `json:"horizon"`
	Domain      string    `json:"domain"`
	Key         string    `json:"fact_key"`
	Value       string    `json:"fact_value"`
	Source      string    `json:"source,omitempty"`
	Confidence  float64   `json:"confidence"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// AgentIdentity is the agent's own identity snapshot.
type AgentIdentity struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Role        string `json:"role"`
	Description string `json:"description,omitempty"`
}

// UserProfile is the user's identity and company profile.
type UserProfile struct {
	ID              string `json:"id"`
	Name            string `json:"name"`
	Role            string `json:"role,omitempty"`
	CompanyName     string `json:"company_name,omitempty"`
	CompanyIndustry string `json:"company_industry,omitempty"`
}

// WorkItem is one open work item for a user, ordered by priority.
type WorkItem struct {
	ID       string `json:"id"`
	UserID   string `json:"user_id"`
	Title    string `json:"title"`
	Status   string `json:"status"`
	Priority int    `json:"priority"`
}

// StoredMessage is a persisted conversation message.
type StoredMessage struct {
	ID             string    `json:"id"`
	ConversationID string    `json:"conversation_id"`
	Role           string    `json:"role"`
	Content        string    `json:"content"`
	CreatedAt      time.Time `json:"created_at"`
}
