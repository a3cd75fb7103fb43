package sqlite

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/Marcoby-Dev-Ops/nexus-agent-runtime/internal/domain"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := New(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func TestSQLiteStore_AgentIdentity(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	agent, err := store.AgentIdentity(ctx, "missing")
	if err != nil {
		t.Fatalf("AgentIdentity() error = %v", err)
	}
	if agent != nil {
		t.Errorf("missing agent = %+v, want nil", agent)
	}

	seed := domain.AgentIdentity{ID: "nexus", Name: "Nexus", Role: "business advisor", Description: "helps operators run their company"}
	if err := store.SeedAgentIdentity(ctx, seed); err != nil {
		t.Fatalf("SeedAgentIdentity() error = %v", err)
	}

	agent, err = store.AgentIdentity(ctx, "nexus")
	if err != nil {
		t.Fatalf("AgentIdentity() error = %v", err)
	}
	if agent == nil {
		t.Fatal("agent is nil after seeding")
	}
	if agent.Name != seed.Name || agent.Role != seed.Role || agent.Description != seed.Description {
		t.Errorf("agent = %+v, want %+v", agent, seed)
	}
}

func TestSQLiteStore_UserProfile(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	seed := domain.UserProfile{ID: "u1", Name: "Van", Role: "founder", CompanyName: "Marcoby", CompanyIndustry: "managed IT"}
	if err := store.SeedUserProfile(ctx, seed); err != nil {
		t.Fatalf("SeedUserProfile() error = %v", err)
	}

	user, err := store.UserProfile(ctx, "u1")
	if err != nil {
		t.Fatalf("UserProfile() error = %v", err)
	}
	if user == nil || user.CompanyName != "Marcoby" {
		t.Errorf("user = %+v", user)
	}
}

func TestSQLiteStore_OpenWorkItems(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	items := []domain.WorkItem{
		{ID: "w1", UserID: "u1", Title: "renew contracts", Status: "open", Priority: 2},
		{ID: "w2", UserID: "u1", Title: "hire engineer", Status: "in_progress", Priority: 3},
		{ID: "w3", UserID: "u1", Title: "wrapped up", Status: "done", Priority: 9},
		{ID: "w4", UserID: "u2", Title: "someone else", Status: "open", Priority: 9},
	}
	for _, item := range items {
		if err := store.SeedWorkItem(ctx, item); err != nil {
			t.Fatalf("SeedWorkItem(%s) error = %v", item.ID, err)
		}
	}

	got, err := store.OpenWorkItems(ctx, "u1", 10)
	if err != nil {
		t.Fatalf("OpenWorkItems() error = %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("got %d items, want 2", len(got))
	}
	if got[0].ID != "w2" || got[1].ID != "w1" {
		t.Errorf("order = [%s %s], want [w2 w1]", got[0].ID, got[1].ID)
	}

	limited, err := store.OpenWorkItems(ctx, "u1", 1)
	if err != nil {
		t.Fatalf("OpenWorkItems() error = %v", err)
	}
	if len(limited) != 1 || limited[0].ID != "w2" {
		t.Errorf("limited = %+v, want just w2", limited)
	}
}

func TestSQLiteStore_RecentMessages(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	base := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	msgs := []domain.StoredMessage{
		{ID: "m1", ConversationID: "c1", Role: "user", Content: "hello", CreatedAt: base},
		{ID: "m2", ConversationID: "c1", Role: "assistant", Content: "hi", CreatedAt: base.Add(time.Minute)},
		{ID: "m3", ConversationID: "c2", Role: "user", Content: "elsewhere", CreatedAt: base.Add(time.Hour)},
	}
	for _, msg := range msgs {
		if err := store.SeedMessage(ctx, msg); err != nil {
			t.Fatalf("SeedMessage(%s) error = %v", msg.ID, err)
		}
	}

	got, err := store.RecentMessages(ctx, "c1", 10)
	if err != nil {
		t.Fatalf("RecentMessages() error = %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("got %d messages, want 2", len(got))
	}
	if got[0].ID != "m2" || got[1].ID != "m1" {
		t.Errorf("order = [%s %s], want [m2 m1]", got[0].ID, got[1].ID)
	}
}

func TestSQLiteStore_Facts(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	facts := []domain.Fact{
		{ID: "f1", SubjectType: "user", SubjectID: "u1", Horizon: domain.HorizonLong, Domain: "finance", Key: "runway", Value: "9 months", Confidence: 0.9},
		{ID: "f2", SubjectType: "user", SubjectID: "u1", Horizon: domain.HorizonShort, Domain: "sales", Key: "pipeline", Value: "4 deals", Confidence: 0.8},
		{ID: "f3", SubjectType: "user", SubjectID: "u1", Horizon: domain.HorizonShort, Domain: "finance", Key: "burn", Value: "40k", Confidence: 1.0},
		{ID: "f4", SubjectType: "agent", SubjectID: "nexus", Horizon: domain.HorizonShort, Domain: "self", Key: "other", Value: "x", Confidence: 1.0},
	}
	for _, fact := range facts {
		if err := store.SeedFact(ctx, fact); err != nil {
			t.Fatalf("SeedFact(%s) error = %v", fact.ID, err)
		}
	}

	got, err := store.Facts(ctx, "user", "u1", []domain.Horizon{domain.HorizonShort, domain.HorizonLong})
	if err != nil {
		t.Fatalf("Facts() error = %v", err)
	}

	var ids []string
	for _, f := range got {
		ids = append(ids, f.ID)
	}
	want := []string{"f3", "f2", "f1"}
	if len(ids) != len(want) {
		t.Fatalf("ids = %v, want %v", ids, want)
	}
	for i := range want {
		if ids[i] != want[i] {
			t.Fatalf("ids = %v, want %v", ids, want)
		}
	}
	if got[0].Value != "40k" || got[0].Confidence != 1.0 {
		t.Errorf("fact = %+v", got[0])
	}
}

func TestSQLiteStore_FactsHorizonFilter(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	for _, fact := range []domain.Fact{
		{ID: "f1", SubjectType: "user", SubjectID: "u1", Horizon: domain.HorizonShort, Domain: "a", Key: "k1", Value: "v"},
		{ID: "f2", SubjectType: "user", SubjectID: "u1", Horizon: domain.HorizonLong, Domain: "a", Key: "k2", Value: "v"},
	} {
		if err := store.SeedFact(ctx, fact); err != nil {
			t.Fatalf("SeedFact() error = %v", err)
		}
	}

	got, err := store.Facts(ctx, "user", "u1", []domain.Horizon{domain.HorizonShort})
	if err != nil {
		t.Fatalf("Facts() error = %v", err)
	}
	if len(got) != 1 || got[0].ID != "f1" {
		t.Errorf("got = %+v, want only f1", got)
	}
}
