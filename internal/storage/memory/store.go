// Package memory is an in-memory storage.Reader used in tests and
// single-process deployments.
package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/Marcoby-Dev-Ops/nexus-agent-runtime/internal/domain"
	"github.com/Marcoby-Dev-Ops/nexus-agent-runtime/internal/storage"
)

// Store holds all knowledge in process memory.
type Store struct {
	mu        sync.RWMutex
	agents    map[string]domain.AgentIdentity
	users     map[string]domain.UserProfile
	workItems []domain.WorkItem
	messages  []domain.StoredMessage
	facts     []domain.Fact
}

var _ storage.Reader = (*Store)(nil)

// New creates an empty in-memory store.
func New() *Store {
	return &Store{
		agents: make(map[string]domain.AgentIdentity),
		users:  make(map[string]domain.UserProfile),
	}
}

// PutAgentIdentity stores or replaces an agent identity.
func (s *Store) PutAgentIdentity(agent domain.AgentIdentity) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.agents[agent.ID] = agent
}

// PutUserProfile stores or replaces a user profile.
func (s *Store) PutUserProfile(user domain.UserProfile) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.users[user.ID] = user
}

// AddWorkItem appends a work item.
func (s *Store) AddWorkItem(item domain.WorkItem) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.workItems = append(s.workItems, item)
}

// AddMessage appends a conversation message.
func (s *Store) AddMessage(msg domain.StoredMessage) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.messages = append(s.messages, msg)
}

// AddFact appends a knowledge fact.
func (s *Store) AddFact(fact domain.Fact) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.facts = append(s.facts, fact)
}

func (s *Store) AgentIdentity(ctx context.Context, agentID string) (*domain.AgentIdentity, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	agent, ok := s.agents[agentID]
	if !ok {
		return nil, nil
	}
	return &agent, nil
}

func (s *Store) UserProfile(ctx context.Context, userID string) (*domain.UserProfile, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	user, ok := s.users[userID]
	if !ok {
		return nil, nil
	}
	return &user, nil
}

func (s *Store) OpenWorkItems(ctx context.Context, userID string, limit int) ([]domain.WorkItem, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []domain.WorkItem
	for _, item := range s.workItems {
		if item.UserID != userID {
			continue
		}
		if item.Status == "done" || item.Status == "cancelled" {
			continue
		}
		result = append(result, item)
	}

	sort.SliceStable(result, func(i, j int) bool {
		if result[i].Priority != result[j].Priority {
			return result[i].Priority > result[j].Priority
		}
		return result[i].ID < result[j].ID
	})

	if limit > 0 && len(result) > limit {
		result = result[:limit]
	}
	return result, nil
}

func (s *Store) RecentMessages(ctx context.Context, conversationID string, limit int) ([]domain.StoredMessage, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []domain.StoredMessage
	for _, msg := range s.messages {
		if msg.ConversationID == conversationID {
			result = append(result, msg)
		}
	}

	// Newest first, with ID as the tie-break for equal timestamps.
	sort.SliceStable(result, func(i, j int) bool {
		if !result[i].CreatedAt.Equal(result[j].CreatedAt) {
			return result[i].CreatedAt.After(result[j].CreatedAt)
		}
		return result[i].ID > result[j].ID
	})

	if limit > 0 && len(result) > limit {
		result = result[:limit]
	}
	return result, nil
}

func (s *Store) Facts(ctx context.Context, subjectType, subjectID string, horizons []domain.Horizon) ([]domain.Fact, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	wanted := make(map[domain.Horizon]bool, len(horizons))
	for _, h := range horizons {
		wanted[h] = true
	}

	var result []domain.Fact
	for _, fact := range s.facts {
		if fact.SubjectType != subjectType || fact.SubjectID != subjectID {
			continue
		}
		if len(wanted) > 0 && !wanted[fact.Horizon] {
			continue
		}
		result = append(result, fact)
	}

	sort.SliceStable(result, func(i, j int) bool {
		if result[i].Horizon != result[j].Horizon {
			return horizonRank(result[i].Horizon) < horizonRank(result[j].Horizon)
		}
		if result[i].Domain != result[j].Domain {
			return result[i].Domain < result[j].Domain
		}
		return result[i].Key < result[j].Key
	})

	return result, nil
}

func horizonRank(h domain.Horizon) int {
	switch h {
	case domain.HorizonShort:
		return 0
	case domain.HorizonMedium:
		return 1
	case domain.HorizonLong:
		return 2
	default:
		return 3
	}
}
