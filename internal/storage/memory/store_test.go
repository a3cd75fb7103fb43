package memory

import (
	"context"
	"testing"
	"time"

	"github.com/Marcoby-Dev-Ops/nexus-agent-runtime/internal/domain"
)

func TestAgentIdentity_MissingReturnsNil(t *testing.T) {
	s := New()

	agent, err := s.AgentIdentity(context.Background(), "nope")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if agent != nil {
		t.Errorf("missing agent = %+v, want nil", agent)
	}
}

func TestAgentIdentity_RoundTrip(t *testing.T) {
	s := New()
	s.PutAgentIdentity(domain.AgentIdentity{ID: "nexus", Name: "Nexus", Role: "business advisor"})

	agent, err := s.AgentIdentity(context.Background(), "nexus")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if agent == nil || agent.Name != "Nexus" {
		t.Errorf("agent = %+v", agent)
	}
}

func TestOpenWorkItems_OrderAndFiltering(t *testing.T) {
	s := New()
	s.AddWorkItem(domain.WorkItem{ID: "w3", UserID: "u1", Title: "low", Status: "open", Priority: 1})
	s.AddWorkItem(domain.WorkItem{ID: "w1", UserID: "u1", Title: "high", Status: "open", Priority: 3})
	s.AddWorkItem(domain.WorkItem{ID: "w2", UserID: "u1", Title: "finished", Status: "done", Priority: 5})
	s.AddWorkItem(domain.WorkItem{ID: "w4", UserID: "other", Title: "not mine", Status: "open", Priority: 9})

	items, err := s.OpenWorkItems(context.Background(), "u1", 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(items) != 2 {
		t.Fatalf("got %d items, want 2", len(items))
	}
	if items[0].ID != "w1" || items[1].ID != "w3" {
		t.Errorf("order = [%s %s], want [w1 w3]", items[0].ID, items[1].ID)
	}
}

func TestOpenWorkItems_Limit(t *testing.T) {
	s := New()
	for _, id := range []string{"a", "b", "c"} {
		s.AddWorkItem(domain.WorkItem{ID: id, UserID: "u1", Status: "open", Priority: 1})
	}

	items, err := s.OpenWorkItems(context.Background(), "u1", 2)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(items) != 2 {
		t.Errorf("got %d items, want 2", len(items))
	}
}

func TestRecentMessages_NewestFirst(t *testing.T) {
	s := New()
	base := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	s.AddMessage(domain.StoredMessage{ID: "m1", ConversationID: "c1", Role: "user", Content: "first", CreatedAt: base})
	s.AddMessage(domain.StoredMessage{ID: "m2", ConversationID: "c1", Role: "assistant", Content: "second", CreatedAt: base.Add(time.Minute)})
	s.AddMessage(domain.StoredMessage{ID: "m3", ConversationID: "c2", Role: "user", Content: "other conversation", CreatedAt: base.Add(2 * time.Minute)})

	msgs, err := s.RecentMessages(context.Background(), "c1", 10)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(msgs) != 2 {
		t.Fatalf("got %d messages, want 2", len(msgs))
	}
	if msgs[0].ID != "m2" || msgs[1].ID != "m1" {
		t.Errorf("order = [%s %s], want [m2 m1]", msgs[0].ID, msgs[1].ID)
	}
}

func TestFacts_HorizonFilterAndOrder(t *testing.T) {
	s := New()
	s.AddFact(domain.Fact{ID: "f1", SubjectType: "user", SubjectID: "u1", Horizon: domain.HorizonLong, Domain: "finance", Key: "runway"})
	s.AddFact(domain.Fact{ID: "f2", SubjectType: "user", SubjectID: "u1", Horizon: domain.HorizonShort, Domain: "sales", Key: "pipeline"})
	s.AddFact(domain.Fact{ID: "f3", SubjectType: "user", SubjectID: "u1", Horizon: domain.HorizonShort, Domain: "finance", Key: "burn"})
	s.AddFact(domain.Fact{ID: "f4", SubjectType: "user", SubjectID: "u1", Horizon: domain.HorizonMedium, Domain: "ops", Key: "headcount"})
	s.AddFact(domain.Fact{ID: "f5", SubjectType: "agent", SubjectID: "nexus", Horizon: domain.HorizonShort, Domain: "self", Key: "skip"})

	facts, err := s.Facts(context.Background(), "user", "u1",
		[]domain.Horizon{domain.HorizonShort, domain.HorizonMedium})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var ids []string
	for _, f := range facts {
		ids = append(ids, f.ID)
	}
	// Short before medium; within a horizon, domain then key ascending.
	want := []string{"f3", "f2", "f4"}
	if len(ids) != len(want) {
		t.Fatalf("ids = %v, want %v", ids, want)
	}
	for i := range want {
		if ids[i] != want[i] {
			t.Errorf("ids = %v, want %v", ids, want)
			break
		}
	}
}

func TestFacts_EmptyHorizonsReturnsAll(t *testing.T) {
	s := New()
	s.AddFact(domain.Fact{ID: "f1", SubjectType: "user", SubjectID: "u1", Horizon: domain.HorizonLong, Domain: "a", Key: "k"})
	s.AddFact(domain.Fact{ID: "f2", SubjectType: "user", SubjectID: "u1", Horizon: domain.HorizonShort, Domain: "a", Key: "k"})

	facts, err := s.Facts(context.Background(), "user", "u1", nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(facts) != 2 {
		t.Errorf("got %d facts, want 2", len(facts))
	}
}
