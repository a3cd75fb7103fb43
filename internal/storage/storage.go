// Package storage defines the read interface the context assembly service
// depends on, with in-memory and SQLite implementations in subpackages.
package storage

import (
	"context"

	"github.com/Marcoby-Dev-Ops/nexus-agent-runtime/internal/domain"
)

// Reader is the read-only view of the knowledge store. Context assembly
// never writes; seeding and ingestion are separate concerns.
//
// Implementations must return results in a deterministic order: work items
// by descending priority then ID, recent messages newest first, facts by
// horizon then domain then key. A missing identity returns nil with no
// error; only infrastructure failures are errors.
type Reader interface {
	AgentIdentity(ctx context.Context, agentID string) (*domain.AgentIdentity, error)
	UserProfile(ctx context.Context, userID string) (*domain.UserProfile, error)
	OpenWorkItems(ctx context.Context, userID string, limit int) ([]domain.WorkItem, error)
	RecentMessages(ctx context.Context, conversationID string, limit int) ([]domain.StoredMessage, error)
	Facts(ctx context.Context, subjectType, subjectID string, horizons []domain.Horizon) ([]domain.Fact, error)
}
