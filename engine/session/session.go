// Package session stores per-user conversation state: the transcript and the
// optional attached document. Segments are never persisted; they are rebuilt
// for each retrieval round from the normalized text.
package session

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/minilawyer/minilawyer/engine/domain"
)

// DocState is the persisted part of an attached document.
type DocState struct {
	NormalizedText string          `json:"normalized_text"`
	Label          domain.DocLabel `json:"label"`
	Summary        string          `json:"summary,omitempty"`
}

// Session is one user's conversation with the assistant.
type Session struct {
	ID        string
	UserName  string
	Turns     []domain.ConversationTurn
	Doc       *DocState
	UpdatedAt time.Time
}

// Append adds a turn to the transcript.
func (s *Session) Append(role, content string) {
	s.Turns = append(s.Turns, domain.ConversationTurn{
		Role:      role,
		Content:   content,
		Timestamp: time.Now().UTC(),
	})
}

// Store persists sessions in Postgres.
type Store struct {
	pool *pgxpool.Pool
}

// NewStore wraps an existing pool; sessions share the record-store database.
func NewStore(pool *pgxpool.Pool) *Store { return &Store{pool: pool} }

// EnsureSchema creates the sessions table if missing.
func (s *Store) EnsureSchema(ctx context.Context) error {
	const ddl = `
	CREATE TABLE IF NOT EXISTS sessions (
		id         TEXT PRIMARY KEY,
		user_name  TEXT NOT NULL DEFAULT '',
		turns      JSONB NOT NULL DEFAULT '[]',
		doc        JSONB,
		updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
	);`
	if _, err := s.pool.Exec(ctx, ddl); err != nil {
		return fmt.Errorf("session: ensure schema: %w", err)
	}
	return nil
}

// Load fetches a session by id, returning domain.ErrSessionNotFound if absent.
func (s *Store) Load(ctx context.Context, id string) (*Session, error) {
	const q = `SELECT id, user_name, turns, doc, updated_at FROM sessions WHERE id = $1`

	var sess Session
	err := s.pool.QueryRow(ctx, q, id).Scan(&sess.ID, &sess.UserName, &sess.Turns, &sess.Doc, &sess.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("session: %s: %w", id, domain.ErrSessionNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("session: load %s: %w", id, err)
	}
	return &sess, nil
}

// LoadOrCreate returns the stored session or a fresh one for the id.
func (s *Store) LoadOrCreate(ctx context.Context, id string) (*Session, error) {
	sess, err := s.Load(ctx, id)
	if errors.Is(err, domain.ErrSessionNotFound) {
		return &Session{ID: id}, nil
	}
	return sess, err
}

// Save upserts the session.
func (s *Store) Save(ctx context.Context, sess *Session) error {
	const q = `INSERT INTO sessions (id, user_name, turns, doc, updated_at)
		VALUES ($1, $2, $3, $4, now())
		ON CONFLICT (id) DO UPDATE SET
			user_name = EXCLUDED.user_name,
			turns = EXCLUDED.turns,
			doc = EXCLUDED.doc,
			updated_at = now()`
	if _, err := s.pool.Exec(ctx, q, sess.ID, sess.UserName, sess.Turns, sess.Doc); err != nil {
		return fmt.Errorf("session: save %s: %w", sess.ID, err)
	}
	return nil
}

// Delete removes a session. Deleting a missing session is not an error.
func (s *Store) Delete(ctx context.Context, id string) error {
	if _, err := s.pool.Exec(ctx, `DELETE FROM sessions WHERE id = $1`, id); err != nil {
		return fmt.Errorf("session: delete %s: %w", id, err)
	}
	return nil
}
