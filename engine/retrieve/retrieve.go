// Package retrieve runs the multi-probe retrieval round and the reranker.
// One round fans out probe tasks over both corpora: a broad probe for the
// question plus one narrow probe per document segment. Probes are independent;
// a slow or failed probe is dropped at the join barrier and never fails the
// round.
package retrieve

import (
	"context"
	"errors"
	"log/slog"
	"sort"
	"time"

	"github.com/minilawyer/minilawyer/engine/domain"
	"github.com/minilawyer/minilawyer/engine/semantic"
	"github.com/minilawyer/minilawyer/pkg/fn"
)

const (
	// queryTopK is the breadth of the question probe per corpus.
	queryTopK = 5
	// segmentTopK keeps only the best match per document segment.
	segmentTopK = 1
	// rerankTopK is the final cut per corpus after mean-score fusion.
	rerankTopK = 3
)

// Embedder turns texts into query vectors.
type Embedder interface {
	Embed(ctx context.Context, texts []string) ([][]float32, error)
}

// VectorIndex answers k-NN probes against one corpus.
type VectorIndex interface {
	Query(ctx context.Context, corpus domain.Corpus, vector []float32, topK int) ([]semantic.Hit, error)
}

// RecordStore resolves probe hits to full records.
type RecordStore interface {
	Get(ctx context.Context, corpus domain.Corpus, externalID string) (domain.SourceRecord, error)
}

// RankedSource is one reranked record with its fused score.
type RankedSource struct {
	Record domain.SourceRecord
	Score  float64
}

// Results holds the per-corpus outcome of one round.
type Results struct {
	Laws      []RankedSource
	Judgments []RankedSource
}

// Empty reports whether the round surfaced nothing at all.
func (r Results) Empty() bool { return len(r.Laws) == 0 && len(r.Judgments) == 0 }

// Options tunes the round.
type Options struct {
	// ProbeTimeout bounds each probe task, index query and record
	// resolution included.
	ProbeTimeout time.Duration
	// Workers bounds concurrent probe tasks. <= 0 means unbounded.
	Workers int
}

// DefaultOptions bound a round well under an interactive request budget.
func DefaultOptions() Options {
	return Options{ProbeTimeout: 3 * time.Second, Workers: 16}
}

// Retriever executes retrieval rounds.
type Retriever struct {
	embedder Embedder
	index    VectorIndex
	records  RecordStore
	opts     Options
	log      *slog.Logger
}

// New creates a Retriever.
func New(embedder Embedder, index VectorIndex, records RecordStore, opts Options, log *slog.Logger) *Retriever {
	if opts.ProbeTimeout <= 0 {
		opts.ProbeTimeout = DefaultOptions().ProbeTimeout
	}
	if log == nil {
		log = slog.Default()
	}
	return &Retriever{embedder: embedder, index: index, records: records, opts: opts, log: log}
}

// probe is one independent unit of the fan-out.
type probe struct {
	corpus domain.Corpus
	vector []float32
	topK   int
}

// candidate accumulates every probe score a record received this round.
type candidate struct {
	record domain.SourceRecord
	scores []float64
}

// Retrieve runs one round for the question and optional document segments.
// Embedding failure degrades the round to empty results rather than an error;
// the caller can still synthesize an answer without sources.
func (r *Retriever) Retrieve(ctx context.Context, question string, segments []string) (Results, error) {
	texts := append([]string{question}, segments...)
	vectors, err := r.embedder.Embed(ctx, texts)
	if err != nil {
		r.log.Warn("retrieve: embedding failed, degrading to empty round", "error", err)
		return Results{}, nil
	}
	if len(vectors) != len(texts) {
		r.log.Warn("retrieve: embedding count mismatch, degrading to empty round",
			"want", len(texts), "got", len(vectors))
		return Results{}, nil
	}

	var probes []probe
	for _, corpus := range domain.Corpora {
		probes = append(probes, probe{corpus: corpus, vector: vectors[0], topK: queryTopK})
		for _, v := range vectors[1:] {
			probes = append(probes, probe{corpus: corpus, vector: v, topK: segmentTopK})
		}
	}

	// Fork. Each task owns its index query and record resolution; results
	// are joined below before any fusion happens.
	resolved := fn.ParMap(probes, r.opts.Workers, func(p probe) []scoredRecord {
		return r.runProbe(ctx, p)
	})

	// Join barrier passed; fuse per corpus.
	byCorpus := make(map[domain.Corpus]map[string]*candidate)
	for _, corpus := range domain.Corpora {
		byCorpus[corpus] = make(map[string]*candidate)
	}
	for _, hits := range resolved {
		for _, h := range hits {
			cands := byCorpus[h.record.Corpus()]
			c, ok := cands[h.record.ExternalID()]
			if !ok {
				c = &candidate{record: h.record}
				cands[h.record.ExternalID()] = c
			}
			c.scores = append(c.scores, h.score)
		}
	}

	return Results{
		Laws:      rerank(byCorpus[domain.CorpusLaws]),
		Judgments: rerank(byCorpus[domain.CorpusJudgments]),
	}, nil
}

type scoredRecord struct {
	record domain.SourceRecord
	score  float64
}

// runProbe executes one probe under its own timeout. Every failure mode
// (index error, timeout, dangling id) yields a smaller result set, never an
// error.
func (r *Retriever) runProbe(ctx context.Context, p probe) []scoredRecord {
	ctx, cancel := context.WithTimeout(ctx, r.opts.ProbeTimeout)
	defer cancel()

	hits, err := r.index.Query(ctx, p.corpus, p.vector, p.topK)
	if err != nil {
		r.log.Debug("retrieve: probe dropped", "corpus", p.corpus, "error", err)
		return nil
	}

	out := make([]scoredRecord, 0, len(hits))
	for _, h := range hits {
		rec, err := r.records.Get(ctx, p.corpus, h.ExternalID)
		if errors.Is(err, domain.ErrRecordNotFound) {
			r.log.Debug("retrieve: dangling index hit", "corpus", p.corpus, "external_id", h.ExternalID)
			continue
		}
		if err != nil {
			r.log.Debug("retrieve: record resolution failed", "corpus", p.corpus, "external_id", h.ExternalID, "error", err)
			continue
		}
		out = append(out, scoredRecord{record: rec, score: float64(h.Score)})
	}
	return out
}

// rerank fuses candidate scores by arithmetic mean and cuts to the top K.
// A record found by several probes is scored once across all of them, so
// broad agreement beats a single lucky hit.
func rerank(cands map[string]*candidate) []RankedSource {
	ranked := make([]RankedSource, 0, len(cands))
	for _, c := range cands {
		var sum float64
		for _, s := range c.scores {
			sum += s
		}
		ranked = append(ranked, RankedSource{
			Record: c.record,
			Score:  sum / float64(len(c.scores)),
		})
	}

	sort.Slice(ranked, func(i, j int) bool {
		if ranked[i].Score != ranked[j].Score {
			return ranked[i].Score > ranked[j].Score
		}
		return ranked[i].Record.ExternalID() < ranked[j].Record.ExternalID()
	})

	if len(ranked) > rerankTopK {
		ranked = ranked[:rerankTopK]
	}
	return ranked
}
