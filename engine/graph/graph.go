// Package graph maintains the citation graph in Neo4j: law and judgment
// nodes linked by CITES edges. The graph is an optional enrichment layer;
// answering works without it, so every caller treats graph errors as
// degradation, not failure.
package graph

import (
	"context"
	"fmt"

	"github.com/minilawyer/minilawyer/engine/domain"
	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
)

// Store provides citation-graph operations.
type Store struct {
	driver neo4j.DriverWithContext
}

// New creates a Store over an existing driver.
func New(driver neo4j.DriverWithContext) *Store {
	return &Store{driver: driver}
}

// Close releases the driver.
func (g *Store) Close(ctx context.Context) error {
	return g.driver.Close(ctx)
}

// SaveLaw creates or updates a law node.
func (g *Store) SaveLaw(ctx context.Context, law domain.LawRecord) error {
	sess := g.driver.NewSession(ctx, neo4j.SessionConfig{})
	defer sess.Close(ctx)

	cypher := `MERGE (n:Law {israel_law_id: $id}) SET n.name = $name`
	_, err := sess.Run(ctx, cypher, map[string]any{
		"id":   law.IsraelLawID,
		"name": law.Name,
	})
	if err != nil {
		return fmt.Errorf("graph: save law %d: %w", law.IsraelLawID, err)
	}
	return nil
}

// SaveJudgment creates or updates a judgment node and its CITES edges to the
// laws it relies on.
func (g *Store) SaveJudgment(ctx context.Context, j domain.JudgmentRecord) error {
	sess := g.driver.NewSession(ctx, neo4j.SessionConfig{})
	defer sess.Close(ctx)

	cypher := `MERGE (j:Judgment {case_number: $case}) SET j.name = $name, j.procedure_type = $proc`
	_, err := sess.Run(ctx, cypher, map[string]any{
		"case": j.CaseNumber,
		"name": j.Name,
		"proc": j.ProcedureType,
	})
	if err != nil {
		return fmt.Errorf("graph: save judgment %s: %w", j.CaseNumber, err)
	}

	for _, lawID := range j.CitedLawIDs {
		edge := `MATCH (j:Judgment {case_number: $case})
			MERGE (l:Law {israel_law_id: $law})
			MERGE (j)-[:CITES]->(l)`
		if _, err := sess.Run(ctx, edge, map[string]any{"case": j.CaseNumber, "law": lawID}); err != nil {
			return fmt.Errorf("graph: link %s -> law %d: %w", j.CaseNumber, lawID, err)
		}
	}
	return nil
}

// RelatedJudgments returns case numbers of judgments citing any of the given
// laws, most-connected first. Used to widen a retrieval round with judgments
// the vector index missed.
func (g *Store) RelatedJudgments(ctx context.Context, lawIDs []int64, limit int) ([]string, error) {
	if len(lawIDs) == 0 {
		return nil, nil
	}
	if limit <= 0 {
		limit = 5
	}
	sess := g.driver.NewSession(ctx, neo4j.SessionConfig{})
	defer sess.Close(ctx)

	cypher := `MATCH (j:Judgment)-[:CITES]->(l:Law)
		WHERE l.israel_law_id IN $laws
		RETURN j.case_number AS case_number, count(l) AS cited
		ORDER BY cited DESC
		LIMIT $limit`
	result, err := sess.Run(ctx, cypher, map[string]any{"laws": lawIDs, "limit": limit})
	if err != nil {
		return nil, fmt.Errorf("graph: related judgments: %w", err)
	}

	var cases []string
	for result.Next(ctx) {
		if v, ok := result.Record().Get("case_number"); ok {
			if s, ok := v.(string); ok {
				cases = append(cases, s)
			}
		}
	}
	if err := result.Err(); err != nil {
		return nil, fmt.Errorf("graph: related judgments: %w", err)
	}
	return cases, nil
}

// CitedLaws returns the law ids a judgment cites.
func (g *Store) CitedLaws(ctx context.Context, caseNumber string) ([]int64, error) {
	sess := g.driver.NewSession(ctx, neo4j.SessionConfig{})
	defer sess.Close(ctx)

	cypher := `MATCH (j:Judgment {case_number: $case})-[:CITES]->(l:Law)
		RETURN l.israel_law_id AS id`
	result, err := sess.Run(ctx, cypher, map[string]any{"case": caseNumber})
	if err != nil {
		return nil, fmt.Errorf("graph: cited laws for %s: %w", caseNumber, err)
	}

	var ids []int64
	for result.Next(ctx) {
		if v, ok := result.Record().Get("id"); ok {
			if id, ok := v.(int64); ok {
				ids = append(ids, id)
			}
		}
	}
	if err := result.Err(); err != nil {
		return nil, fmt.Errorf("graph: cited laws for %s: %w", caseNumber, err)
	}
	return ids, nil
}
