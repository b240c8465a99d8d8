// Package docstore persists full law and judgment records in Postgres. The
// vector index stores only external ids; every probe hit is resolved to its
// record here before it can enter a retrieval round.
package docstore

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/minilawyer/minilawyer/engine/domain"
)

// Store is a pgx-backed record store for both corpora.
type Store struct {
	pool *pgxpool.Pool
}

// New connects to Postgres and verifies the connection.
func New(ctx context.Context, dsn string) (*Store, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("docstore: connect: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("docstore: ping: %w", err)
	}
	return &Store{pool: pool}, nil
}

// Close releases the connection pool.
func (s *Store) Close() { s.pool.Close() }

// Pool exposes the underlying pool so the session store can share it.
func (s *Store) Pool() *pgxpool.Pool { return s.pool }

// EnsureSchema creates the corpus tables if they do not exist.
func (s *Store) EnsureSchema(ctx context.Context) error {
	const ddl = `
	CREATE TABLE IF NOT EXISTS laws (
		israel_law_id    BIGINT PRIMARY KEY,
		name             TEXT NOT NULL,
		description      TEXT NOT NULL DEFAULT '',
		publication_date TEXT NOT NULL DEFAULT '',
		sections         JSONB NOT NULL DEFAULT '[]'
	);
	CREATE TABLE IF NOT EXISTS judgments (
		case_number    TEXT PRIMARY KEY,
		name           TEXT NOT NULL,
		description    TEXT NOT NULL DEFAULT '',
		decision_date  TEXT NOT NULL DEFAULT '',
		procedure_type TEXT NOT NULL DEFAULT '',
		cited_law_ids  BIGINT[] NOT NULL DEFAULT '{}'
	);`
	if _, err := s.pool.Exec(ctx, ddl); err != nil {
		return fmt.Errorf("docstore: ensure schema: %w", err)
	}
	return nil
}

// Get resolves one external id to its full record. A missing id returns
// domain.ErrRecordNotFound so callers can discard dangling index hits.
func (s *Store) Get(ctx context.Context, corpus domain.Corpus, externalID string) (domain.SourceRecord, error) {
	switch corpus {
	case domain.CorpusLaws:
		return s.getLaw(ctx, externalID)
	case domain.CorpusJudgments:
		return s.getJudgment(ctx, externalID)
	default:
		return nil, fmt.Errorf("docstore: %w: %q", domain.ErrUnknownCorpus, corpus)
	}
}

func (s *Store) getLaw(ctx context.Context, externalID string) (domain.SourceRecord, error) {
	const q = `SELECT israel_law_id, name, description, publication_date, sections
		FROM laws WHERE israel_law_id = $1::bigint`

	var rec domain.LawRecord
	err := s.pool.QueryRow(ctx, q, externalID).Scan(
		&rec.IsraelLawID, &rec.Name, &rec.Description, &rec.PublicationDate, &rec.Sections)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("docstore: law %s: %w", externalID, domain.ErrRecordNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("docstore: get law %s: %w", externalID, err)
	}
	return rec, nil
}

func (s *Store) getJudgment(ctx context.Context, externalID string) (domain.SourceRecord, error) {
	const q = `SELECT case_number, name, description, decision_date, procedure_type, cited_law_ids
		FROM judgments WHERE case_number = $1`

	var rec domain.JudgmentRecord
	err := s.pool.QueryRow(ctx, q, externalID).Scan(
		&rec.CaseNumber, &rec.Name, &rec.Description, &rec.DecisionDate, &rec.ProcedureType, &rec.CitedLawIDs)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("docstore: judgment %s: %w", externalID, domain.ErrRecordNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("docstore: get judgment %s: %w", externalID, err)
	}
	return rec, nil
}

// PutLaw upserts a statute record.
func (s *Store) PutLaw(ctx context.Context, rec domain.LawRecord) error {
	const q = `INSERT INTO laws (israel_law_id, name, description, publication_date, sections)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (israel_law_id) DO UPDATE SET
			name = EXCLUDED.name,
			description = EXCLUDED.description,
			publication_date = EXCLUDED.publication_date,
			sections = EXCLUDED.sections`
	_, err := s.pool.Exec(ctx, q, rec.IsraelLawID, rec.Name, rec.Description, rec.PublicationDate, rec.Sections)
	if err != nil {
		return fmt.Errorf("docstore: put law %d: %w", rec.IsraelLawID, err)
	}
	return nil
}

// PutJudgment upserts a ruling record.
func (s *Store) PutJudgment(ctx context.Context, rec domain.JudgmentRecord) error {
	const q = `INSERT INTO judgments (case_number, name, description, decision_date, procedure_type, cited_law_ids)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (case_number) DO UPDATE SET
			name = EXCLUDED.name,
			description = EXCLUDED.description,
			decision_date = EXCLUDED.decision_date,
			procedure_type = EXCLUDED.procedure_type,
			cited_law_ids = EXCLUDED.cited_law_ids`
	_, err := s.pool.Exec(ctx, q, rec.CaseNumber, rec.Name, rec.Description, rec.DecisionDate, rec.ProcedureType, rec.CitedLawIDs)
	if err != nil {
		return fmt.Errorf("docstore: put judgment %s: %w", rec.CaseNumber, err)
	}
	return nil
}
