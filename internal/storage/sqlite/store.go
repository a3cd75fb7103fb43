// Package sqlite is a SQLite-backed storage.Reader.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"github.com/Marcoby-Dev-Ops/nexus-agent-runtime/internal/domain"
	"github.com/Marcoby-Dev-Ops/nexus-agent-runtime/internal/storage"
)

// Store reads knowledge from a SQLite database.
type Store struct {
	db *sql.DB
}

var _ storage.Reader = (*Store)(nil)

// New opens the database at dbPath and initializes the schema.
func New(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if _, err := db.Exec("PRAGMA journal_mode=WAL; PRAGMA synchronous=NORMAL;"); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to enable WAL mode: %w", err)
	}

	store := &Store{db: db}
	if err := store.initSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}
	return store, nil
}

func (s *Store) initSchema() error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS agents (
			id TEXT PRIMARY KEY,
			name TEXT NOT NULL,
			role TEXT NOT NULL,
			description TEXT
		)`,
		`CREATE TABLE IF NOT EXISTS users (
			id TEXT PRIMARY KEY,
			name TEXT NOT NULL,
			role TEXT,
			company_name TEXT,
			company_industry TEXT
		)`,
		`CREATE TABLE IF NOT EXISTS work_items (
			id TEXT PRIMARY KEY,
			user_id TEXT NOT NULL,
			title TEXT NOT NULL,
			status TEXT NOT NULL,
			priority INTEGER NOT NULL DEFAULT 0
		)`,
		`CREATE TABLE IF NOT EXISTS messages (
			id TEXT PRIMARY KEY,
			conversation_id TEXT NOT NULL,
			role TEXT NOT NULL,
			content TEXT NOT NULL,
			created_at TIMESTAMP NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS facts (
			id TEXT PRIMARY KEY,
			subject_type TEXT NOT NULL,
			subject_id TEXT NOT NULL,
			horizon TEXT NOT NULL,
			domain TEXT NOT NULL,
			fact_key TEXT NOT NULL,
			fact_value TEXT NOT NULL,
			source TEXT,
			confidence REAL NOT NULL DEFAULT 1.0,
			updated_at TIMESTAMP NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_work_items_user ON work_items(user_id)`,
		`CREATE INDEX IF NOT EXISTS idx_messages_conversation ON messages(conversation_id)`,
		`CREATE INDEX IF NOT EXISTS idx_facts_subject ON facts(subject_type, subject_id)`,
	}

	for _, stmt := range statements {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("failed to execute schema statement: %w", err)
		}
	}
	return nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) AgentIdentity(ctx context.Context, agentID string) (*domain.AgentIdentity, error) {
	var agent domain.AgentIdentity
	var description sql.NullString

	err := s.db.QueryRowContext(ctx,
		`SELECT id, name, role, description FROM agents WHERE id = ?`, agentID,
	).Scan(&agent.ID, &agent.Name, &agent.Role, &description)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read agent %s: %w", agentID, err)
	}

	agent.Description = description.String
	return &agent, nil
}

func (s *Store) UserProfile(ctx context.Context, userID string) (*domain.UserProfile, error) {
	var user domain.UserProfile
	var role, companyName, companyIndustry sql.NullString

	err := s.db.QueryRowContext(ctx,
		`SELECT id, name, role, company_name, company_industry FROM users WHERE id = ?`, userID,
	).Scan(&user.ID, &user.Name, &role, &companyName, &companyIndustry)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read user %s: %w", userID, err)
	}

	user.Role = role.String
	user.CompanyName = companyName.String
	user.CompanyIndustry = companyIndustry.String
	return &user, nil
}

func (s *Store) OpenWorkItems(ctx context.Context, userID string, limit int) ([]domain.WorkItem, error) {
	query := `SELECT id, user_id, title, status, priority
		FROM work_items
		WHERE user_id = ? AND status NOT IN ('done', 'cancelled')
		ORDER BY priority DESC, id ASC`
	args := []any{userID}
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query work items: %w", err)
	}
	defer rows.Close()

	var items []domain.WorkItem
	for rows.Next() {
		var item domain.WorkItem
		if err := rows.Scan(&item.ID, &item.UserID, &item.Title, &item.Status, &item.Priority); err != nil {
			return nil, fmt.Errorf("failed to scan work item: %w", err)
		}
		items = append(items, item)
	}
	return items, rows.Err()
}

func (s *Store) RecentMessages(ctx context.Context, conversationID string, limit int) ([]domain.StoredMessage, error) {
	query := `SELECT id, conversation_id, role, content, created_at
		FROM messages
		WHERE conversation_id = ?
		ORDER BY created_at DESC, id DESC`
	args := []any{conversationID}
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query messages: %w", err)
	}
	defer rows.Close()

	var msgs []domain.StoredMessage
	for rows.Next() {
		var msg domain.StoredMessage
		if err := rows.Scan(&msg.ID, &msg.ConversationID, &msg.Role, &msg.Content, &msg.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan message: %w", err)
		}
		msgs = append(msgs, msg)
	}
	return msgs, rows.Err()
}

func (s *Store) Facts(ctx context.Context, subjectType, subjectID string, horizons []domain.Horizon) ([]domain.Fact, error) {
	query := `SELECT id, subject_type, subject_id, horizon, domain, fact_key, fact_value, source, confidence, updated_at
		FROM facts
		WHERE subject_type = ? AND subject_id = ?`
	args := []any{subjectType, subjectID}

	if len(horizons) > 0 {
		placeholders := make([]string, len(horizons))
		for i, h := range horizons {
			placeholders[i] = "?"
			args = append(args, string(h))
		}
		query += ` AND horizon IN (` + strings.Join(placeholders, ", ") + `)`
	}

	// Horizon ordering is semantic (short, medium, long), not lexical.
	query += ` ORDER BY CASE horizon
			WHEN 'short' THEN 0
			WHEN 'medium' THEN 1
			WHEN 'long' THEN 2
			ELSE 3
		END, domain ASC, fact_key ASC`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query facts: %w", err)
	}
	defer rows.Close()

	var facts []domain.Fact
	for rows.Next() {
		var fact domain.Fact
		var source sql.NullString
		if err := rows.Scan(&fact.ID, &fact.SubjectType, &fact.SubjectID, &fact.Horizon,
			&fact.Domain, &fact.Key, &fact.Value, &source, &fact.Confidence, &fact.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan fact: %w", err)
		}
		fact.Source = source.String
		facts = append(facts, fact)
	}
	return facts, rows.Err()
}

// SeedAgentIdentity inserts or replaces an agent identity row.
func (s *Store) SeedAgentIdentity(ctx context.Context, agent domain.AgentIdentity) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT OR REPLACE INTO agents (id, name, role, description) VALUES (?, ?, ?, ?)`,
		agent.ID, agent.Name, agent.Role, agent.Description)
	if err != nil {
		return fmt.Errorf("failed to seed agent: %w", err)
	}
	return nil
}

// SeedUserProfile inserts or replaces a user profile row.
func (s *Store) SeedUserProfile(ctx context.Context, user domain.UserProfile) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT OR REPLACE INTO users (id, name, role, company_name, company_industry) VALUES (?, ?, ?, ?, ?)`,
		user.ID, user.Name, user.Role, user.CompanyName, user.CompanyIndustry)
	if err != nil {
		return fmt.Errorf("failed to seed user: %w", err)
	}
	return nil
}

// SeedWorkItem inserts or replaces a work item row.
func (s *Store) SeedWorkItem(ctx context.Context, item domain.WorkItem) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT OR REPLACE INTO work_items (id, user_id, title, status, priority) VALUES (?, ?, ?, ?, ?)`,
		item.ID, item.UserID, item.Title, item.Status, item.Priority)
	if err != nil {
		return fmt.Errorf("failed to seed work item: %w", err)
	}
	return nil
}

// SeedMessage inserts or replaces a message row.
func (s *Store) SeedMessage(ctx context.Context, msg domain.StoredMessage) error {
	createdAt := msg.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now().UTC()
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT OR REPLACE INTO messages (id, conversation_id, role, content, created_at) VALUES (?, ?, ?, ?, ?)`,
		msg.ID, msg.ConversationID, msg.Role, msg.Content, createdAt)
	if err != nil {
		return fmt.Errorf("failed to seed message: %w", err)
	}
	return nil
}

// SeedFact inserts or replaces a fact row.
func (s *Store) SeedFact(ctx context.Context, fact domain.Fact) error {
	updatedAt := fact.UpdatedAt
	if updatedAt.IsZero() {
		updatedAt = time.Now().UTC()
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT OR REPLACE INTO facts (id, subject_type, subject_id, horizon, domain, fact_key, fact_value, source, confidence, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		fact.ID, fact.SubjectType, fact.SubjectID, string(fact.Horizon),
		fact.Domain, fact.Key, fact.Value, fact.Source, fact.Confidence, updatedAt)
	if err != nil {
		return fmt.Errorf("failed to seed fact: %w", err)
	}
	return nil
}
