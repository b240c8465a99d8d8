package retrieve

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync/atomic"
	"testing"
	"time"

	"github.com/minilawyer/minilawyer/engine/domain"
	"github.com/minilawyer/minilawyer/engine/semantic"
)

// --- mocks ---

type mockEmbedder struct {
	err error
	// short causes one vector fewer than requested.
	short bool
}

func (m *mockEmbedder) Embed(_ context.Context, texts []string) ([][]float32, error) {
	if m.err != nil {
		return nil, m.err
	}
	n := len(texts)
	if m.short {
		n--
	}
	out := make([][]float32, n)
	for i := range out {
		out[i] = []float32{float32(i), 1}
	}
	return out, nil
}

type mockIndex struct {
	// byProbe maps "corpus/topK" to hits; query probes use topK=5,
	// segment probes topK=1.
	byProbe map[string][]semantic.Hit
	err     error
	calls   atomic.Int64
	delay   time.Duration
}

func (m *mockIndex) Query(ctx context.Context, corpus domain.Corpus, _ []float32, topK int) ([]semantic.Hit, error) {
	m.calls.Add(1)
	if m.delay > 0 {
		select {
		case <-time.After(m.delay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if m.err != nil {
		return nil, m.err
	}
	return m.byProbe[fmt.Sprintf("%s/%d", corpus, topK)], nil
}

type mockRecords struct {
	laws      map[string]domain.LawRecord
	judgments map[string]domain.JudgmentRecord
}

func (m *mockRecords) Get(_ context.Context, corpus domain.Corpus, id string) (domain.SourceRecord, error) {
	switch corpus {
	case domain.CorpusLaws:
		if rec, ok := m.laws[id]; ok {
			return rec, nil
		}
	case domain.CorpusJudgments:
		if rec, ok := m.judgments[id]; ok {
			return rec, nil
		}
	}
	return nil, domain.ErrRecordNotFound
}

func law(id int64, name string) domain.LawRecord {
	return domain.LawRecord{IsraelLawID: id, Name: name, Description: "desc"}
}

func testLogger() *slog.Logger { return slog.Default() }

// --- tests ---

func TestRetrieve_MeanFusionRanksAgreementFirst(t *testing.T) {
	// Law 42 is found by the query probe and by a segment probe; law 7
	// only by the query probe with a higher single score. The mean puts
	// 42 first.
	index := &mockIndex{byProbe: map[string][]semantic.Hit{
		"laws/5": {
			{ExternalID: "7", Score: 0.90},
			{ExternalID: "42", Score: 0.95},
		},
		"laws/1": {
			{ExternalID: "42", Score: 0.93},
		},
	}}
	records := &mockRecords{laws: map[string]domain.LawRecord{
		"7":  law(7, "חוק אחד"),
		"42": law(42, "חוק החוזים"),
	}}

	r := New(&mockEmbedder{}, index, records, DefaultOptions(), testLogger())
	results, err := r.Retrieve(context.Background(), "שאלה", []string{"קטע"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(results.Laws) != 2 {
		t.Fatalf("expected 2 laws, got %d", len(results.Laws))
	}
	if results.Laws[0].Record.ExternalID() != "42" {
		t.Errorf("expected law 42 first, got %s", results.Laws[0].Record.ExternalID())
	}
	if got := results.Laws[0].Score; got != 0.94 {
		t.Errorf("expected mean score 0.94, got %g", got)
	}
}

func TestRetrieve_CutsToTopThreePerCorpus(t *testing.T) {
	hits := make([]semantic.Hit, 5)
	laws := make(map[string]domain.LawRecord)
	for i := range hits {
		id := fmt.Sprintf("%d", i+1)
		hits[i] = semantic.Hit{ExternalID: id, Score: float32(i) / 10}
		laws[id] = law(int64(i+1), "חוק")
	}
	index := &mockIndex{byProbe: map[string][]semantic.Hit{"laws/5": hits}}

	r := New(&mockEmbedder{}, index, &mockRecords{laws: laws}, DefaultOptions(), testLogger())
	results, err := r.Retrieve(context.Background(), "שאלה", nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(results.Laws) != 3 {
		t.Errorf("expected top 3 laws, got %d", len(results.Laws))
	}
}

func TestRetrieve_DiscardsDanglingIDs(t *testing.T) {
	index := &mockIndex{byProbe: map[string][]semantic.Hit{
		"laws/5": {
			{ExternalID: "1", Score: 0.9},
			{ExternalID: "999", Score: 0.99}, // not in the record store
		},
	}}
	records := &mockRecords{laws: map[string]domain.LawRecord{"1": law(1, "חוק")}}

	r := New(&mockEmbedder{}, index, records, DefaultOptions(), testLogger())
	results, err := r.Retrieve(context.Background(), "שאלה", nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(results.Laws) != 1 || results.Laws[0].Record.ExternalID() != "1" {
		t.Errorf("dangling id not discarded: %+v", results.Laws)
	}
}

func TestRetrieve_EmbedFailureDegradesToEmpty(t *testing.T) {
	r := New(&mockEmbedder{err: errors.New("boom")}, &mockIndex{}, &mockRecords{}, DefaultOptions(), testLogger())
	results, err := r.Retrieve(context.Background(), "שאלה", []string{"קטע"})
	if err != nil {
		t.Fatalf("embedding failure must not error the round: %v", err)
	}
	if !results.Empty() {
		t.Errorf("expected empty results, got %+v", results)
	}
}

func TestRetrieve_VectorCountMismatchDegradesToEmpty(t *testing.T) {
	r := New(&mockEmbedder{short: true}, &mockIndex{}, &mockRecords{}, DefaultOptions(), testLogger())
	results, err := r.Retrieve(context.Background(), "שאלה", []string{"קטע"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !results.Empty() {
		t.Errorf("expected empty results, got %+v", results)
	}
}

func TestRetrieve_IndexErrorDropsProbeNotRound(t *testing.T) {
	index := &mockIndex{err: errors.New("qdrant down")}
	r := New(&mockEmbedder{}, index, &mockRecords{}, DefaultOptions(), testLogger())
	results, err := r.Retrieve(context.Background(), "שאלה", []string{"קטע", "עוד קטע"})
	if err != nil {
		t.Fatalf("probe errors must not fail the round: %v", err)
	}
	if !results.Empty() {
		t.Errorf("expected empty results, got %+v", results)
	}
}

func TestRetrieve_SlowProbeTimesOutWithoutFailingRound(t *testing.T) {
	index := &mockIndex{
		delay: 200 * time.Millisecond,
		byProbe: map[string][]semantic.Hit{
			"laws/5": {{ExternalID: "1", Score: 0.9}},
		},
	}
	opts := Options{ProbeTimeout: 20 * time.Millisecond, Workers: 4}
	r := New(&mockEmbedder{}, index, &mockRecords{laws: map[string]domain.LawRecord{"1": law(1, "חוק")}}, opts, testLogger())

	results, err := r.Retrieve(context.Background(), "שאלה", nil)
	if err != nil {
		t.Fatalf("timed-out probe must not fail the round: %v", err)
	}
	if !results.Empty() {
		t.Errorf("expected empty results after timeout, got %+v", results)
	}
}

func TestRetrieve_ProbeCountScalesWithSegments(t *testing.T) {
	index := &mockIndex{byProbe: map[string][]semantic.Hit{}}
	r := New(&mockEmbedder{}, index, &mockRecords{}, DefaultOptions(), testLogger())

	if _, err := r.Retrieve(context.Background(), "שאלה", []string{"א", "ב", "ג"}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	// One query probe plus three segment probes, per corpus.
	if got := index.calls.Load(); got != 8 {
		t.Errorf("expected 8 probes, got %d", got)
	}
}

func TestRetrieve_BothCorporaQueried(t *testing.T) {
	index := &mockIndex{byProbe: map[string][]semantic.Hit{
		"laws/5":      {{ExternalID: "1", Score: 0.9}},
		"judgments/5": {{ExternalID: "ע\"א 100/20", Score: 0.8}},
	}}
	records := &mockRecords{
		laws: map[string]domain.LawRecord{"1": law(1, "חוק")},
		judgments: map[string]domain.JudgmentRecord{
			"ע\"א 100/20": {CaseNumber: "ע\"א 100/20", Name: "פלוני נ' אלמוני"},
		},
	}

	r := New(&mockEmbedder{}, index, records, DefaultOptions(), testLogger())
	results, err := r.Retrieve(context.Background(), "שאלה", nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(results.Laws) != 1 || len(results.Judgments) != 1 {
		t.Errorf("expected one hit per corpus, got laws=%d judgments=%d", len(results.Laws), len(results.Judgments))
	}
}
