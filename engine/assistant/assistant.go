// Package assistant orchestrates the answering pipeline: it owns sessions,
// attaches and classifies documents, runs retrieval rounds, drafts and
// verifies answers, and publishes answer events. Everything downstream of
// validation degrades rather than fails; the only hard errors a caller sees
// are invalid input and storage faults.
package assistant

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/minilawyer/minilawyer/engine/answer"
	"github.com/minilawyer/minilawyer/engine/classify"
	"github.com/minilawyer/minilawyer/engine/domain"
	"github.com/minilawyer/minilawyer/engine/normalize"
	"github.com/minilawyer/minilawyer/engine/prompt"
	"github.com/minilawyer/minilawyer/engine/retrieve"
	"github.com/minilawyer/minilawyer/engine/segment"
	"github.com/minilawyer/minilawyer/engine/session"
	"github.com/minilawyer/minilawyer/engine/verify"
	"github.com/minilawyer/minilawyer/pkg/metrics"
	"github.com/minilawyer/minilawyer/pkg/natsutil"
	"github.com/nats-io/nats.go"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
)

// AnswerEventSubject is the NATS subject answer events are published on.
const AnswerEventSubject = "minilawyer.answers"

// synthesisApology ships when drafting fails outright; the session still
// records the turn so the user can retry in context.
const synthesisApology = "מצטערים, אירעה תקלה זמנית בהפקת התשובה. נסו לשאול שוב בעוד מספר רגעים."

// docFallbackRunes caps the raw excerpt kept when normalization strips a
// document entirely.
const docFallbackRunes = 4000

// AnswerEvent is published after every completed answer for the statistics
// consumers.
type AnswerEvent struct {
	EventID    string    `json:"event_id"`
	SessionID  string    `json:"session_id"`
	Question   string    `json:"question"`
	State      string    `json:"state"`
	LawIDs     []string  `json:"law_ids,omitempty"`
	CaseIDs    []string  `json:"case_ids,omitempty"`
	DurationMS int64     `json:"duration_ms"`
	At         time.Time `json:"at"`
}

// Answer is what Ask returns to the transport layer.
type Answer struct {
	Text      string
	State     verify.State
	Caveat    string
	Laws      []retrieve.RankedSource
	Judgments []retrieve.RankedSource
}

// CitationGraph widens retrieval with judgments citing the surfaced laws.
type CitationGraph interface {
	RelatedJudgments(ctx context.Context, lawIDs []int64, limit int) ([]string, error)
}

// SessionStore persists conversation state.
type SessionStore interface {
	Load(ctx context.Context, id string) (*session.Session, error)
	LoadOrCreate(ctx context.Context, id string) (*session.Session, error)
	Save(ctx context.Context, sess *session.Session) error
	Delete(ctx context.Context, id string) error
}

// Assistant wires the pipeline together.
type Assistant struct {
	normalizer *normalize.Normalizer
	segmenter  *segment.Segmenter
	classifier *classify.Classifier
	retriever  *retrieve.Retriever
	synth      *answer.Synthesizer
	verifier   *verify.Verifier
	sessions   SessionStore
	records    retrieve.RecordStore

	graph CitationGraph // optional
	nc    *nats.Conn    // optional

	log *slog.Logger

	asksTotal     *metrics.Counter
	degradedTotal *metrics.Counter
	askSeconds    *metrics.Histogram
}

// Deps collects the assistant's collaborators. Graph and NC may be nil.
type Deps struct {
	Normalizer *normalize.Normalizer
	Segmenter  *segment.Segmenter
	Classifier *classify.Classifier
	Retriever  *retrieve.Retriever
	Synth      *answer.Synthesizer
	Verifier   *verify.Verifier
	Sessions   SessionStore
	Records    retrieve.RecordStore
	Graph      CitationGraph
	NC         *nats.Conn
	Registry   *metrics.Registry
	Log        *slog.Logger
}

// New creates an Assistant.
func New(d Deps) *Assistant {
	if d.Log == nil {
		d.Log = slog.Default()
	}
	if d.Registry == nil {
		d.Registry = metrics.New()
	}
	return &Assistant{
		normalizer:    d.Normalizer,
		segmenter:     d.Segmenter,
		classifier:    d.Classifier,
		retriever:     d.Retriever,
		synth:         d.Synth,
		verifier:      d.Verifier,
		sessions:      d.Sessions,
		records:       d.Records,
		graph:         d.Graph,
		nc:            d.NC,
		log:           d.Log,
		asksTotal:     d.Registry.Counter("minilawyer_asks_total", "Questions answered."),
		degradedTotal: d.Registry.Counter("minilawyer_answers_degraded_total", "Answers shipped with a verification caveat."),
		askSeconds:    d.Registry.Histogram("minilawyer_ask_seconds", "End-to-end answering latency.", nil),
	}
}

// AttachDocument normalizes, classifies, and stores a document on the
// session, replacing any previous one. Classification never blocks the
// attach; the worst case is the unclassified label. A document with no
// Hebrew still attaches as a capped raw excerpt under the fallback label.
func (a *Assistant) AttachDocument(ctx context.Context, sessionID, rawText string) (domain.DocLabel, error) {
	ctx, span := otel.Tracer("assistant").Start(ctx, "assistant.AttachDocument")
	defer span.End()

	if strings.TrimSpace(rawText) == "" {
		return "", fmt.Errorf("assistant: %w: document is empty", domain.ErrInvalidQuery)
	}

	normalized := a.normalizer.Clean(rawText)
	label := domain.LabelUnclassified
	if normalized == "" {
		// Nothing to classify; keep raw material so a summary still works.
		normalized = capRunes(strings.TrimSpace(rawText), docFallbackRunes)
	} else {
		label = a.classifier.Classify(ctx, normalized)
	}
	span.SetAttributes(attribute.String("doc.label", string(label)))

	sess, err := a.sessions.LoadOrCreate(ctx, sessionID)
	if err != nil {
		return "", err
	}
	sess.Doc = &session.DocState{NormalizedText: normalized, Label: label}
	if err := a.sessions.Save(ctx, sess); err != nil {
		return "", err
	}

	a.log.Info("document attached", "session", sessionID, "label", label)
	return label, nil
}

// Summarize produces a label-specific Hebrew summary of the attached
// document and stores it on the session.
func (a *Assistant) Summarize(ctx context.Context, sessionID string) (string, error) {
	ctx, span := otel.Tracer("assistant").Start(ctx, "assistant.Summarize")
	defer span.End()

	sess, err := a.sessions.Load(ctx, sessionID)
	if err != nil {
		return "", err
	}
	if sess.Doc == nil {
		return "", fmt.Errorf("assistant: %w: no document attached", domain.ErrInvalidQuery)
	}

	instruction := prompt.ForLabel(sess.Doc.Label).Summary
	text, err := a.synth.Draft(ctx, answer.Input{
		Question:    "סכם את המסמך.",
		Instruction: instruction,
		DocExcerpt:  sess.Doc.NormalizedText,
	})
	if err != nil {
		return "", fmt.Errorf("assistant: summarize: %w", err)
	}
	summary := normalize.FilterHebrewLines(text)

	sess.Doc.Summary = summary
	if err := a.sessions.Save(ctx, sess); err != nil {
		return "", err
	}
	return summary, nil
}

// Ask answers one question in a session. The pipeline is validate, retrieve,
// draft, verify, persist, publish. Retrieval and verification degrade
// internally; drafting failure ships the apology text.
func (a *Assistant) Ask(ctx context.Context, sessionID, question string) (Answer, error) {
	ctx, span := otel.Tracer("assistant").Start(ctx, "assistant.Ask")
	defer span.End()
	start := time.Now()
	a.asksTotal.Inc()

	if err := domain.ValidateQuestion(question); err != nil {
		return Answer{}, err
	}

	sess, err := a.sessions.LoadOrCreate(ctx, sessionID)
	if err != nil {
		return Answer{}, err
	}

	var segments []string
	var docExcerpt string
	label := domain.LabelUnclassified
	if sess.Doc != nil {
		segments = a.segmenter.Split(sess.Doc.NormalizedText)
		docExcerpt = sess.Doc.NormalizedText
		label = sess.Doc.Label
	}

	results, err := a.retriever.Retrieve(ctx, question, segments)
	if err != nil {
		return Answer{}, err
	}
	results.Judgments = a.enrichJudgments(ctx, results)
	span.SetAttributes(
		attribute.Int("retrieve.laws", len(results.Laws)),
		attribute.Int("retrieve.judgments", len(results.Judgments)),
	)

	instruction := prompt.ForQuestion()
	if sess.Doc != nil {
		instruction = prompt.ForLabel(label).Answer
	}
	in := answer.Input{
		Question:    question,
		Instruction: instruction,
		DocExcerpt:  docExcerpt,
		Laws:        results.Laws,
		Judgments:   results.Judgments,
		History:     sess.Turns,
	}

	final := a.draftAndVerify(ctx, in, !results.Empty())

	sess.Append("user", question)
	sess.Append("assistant", final.Text)
	if err := a.sessions.Save(ctx, sess); err != nil {
		return Answer{}, err
	}

	a.publishEvent(ctx, sessionID, question, final, time.Since(start))
	a.askSeconds.Since(start)
	if final.State == verify.StateDegraded {
		a.degradedTotal.Inc()
	}
	a.log.Info("question answered",
		"session", sessionID,
		"state", final.State,
		"laws", len(final.Laws),
		"judgments", len(final.Judgments),
		"elapsed", time.Since(start).Round(time.Millisecond),
	)
	return final, nil
}

// Reset deletes the session, transcript and attached document included.
func (a *Assistant) Reset(ctx context.Context, sessionID string) error {
	return a.sessions.Delete(ctx, sessionID)
}

func (a *Assistant) draftAndVerify(ctx context.Context, in answer.Input, hasSources bool) Answer {
	draft, err := a.synth.Draft(ctx, in)
	if err != nil {
		a.log.Error("drafting failed, shipping apology", "error", err)
		return Answer{Text: synthesisApology, State: verify.StateDegraded, Laws: in.Laws, Judgments: in.Judgments}
	}

	outcome := a.verifier.Verify(ctx, draft, hasSources, func(ctx context.Context) (string, error) {
		retry := in
		retry.ForceCitations = true
		return a.synth.Draft(ctx, retry)
	})
	a.log.Debug("verification finished", "trace", verify.Describe(outcome.Trace))

	text := outcome.Answer
	if outcome.Caveat != "" {
		text += "\n\n" + outcome.Caveat
	}
	return Answer{
		Text:      text,
		State:     outcome.State,
		Caveat:    outcome.Caveat,
		Laws:      in.Laws,
		Judgments: in.Judgments,
	}
}

// enrichJudgments widens the judgment list with cases citing the surfaced
// laws when the vector round came back thin. Graph faults only log.
func (a *Assistant) enrichJudgments(ctx context.Context, results retrieve.Results) []retrieve.RankedSource {
	judgments := results.Judgments
	if a.graph == nil || len(results.Laws) == 0 || len(judgments) >= 3 {
		return judgments
	}

	var lawIDs []int64
	for _, src := range results.Laws {
		if law, ok := src.Record.(domain.LawRecord); ok {
			lawIDs = append(lawIDs, law.IsraelLawID)
		}
	}
	cases, err := a.graph.RelatedJudgments(ctx, lawIDs, 3-len(judgments))
	if err != nil {
		a.log.Debug("citation graph unavailable", "error", err)
		return judgments
	}

	seen := make(map[string]bool, len(judgments))
	for _, j := range judgments {
		seen[j.Record.ExternalID()] = true
	}
	for _, caseNumber := range cases {
		if seen[caseNumber] {
			continue
		}
		rec, err := a.records.Get(ctx, domain.CorpusJudgments, caseNumber)
		if err != nil {
			if !errors.Is(err, domain.ErrRecordNotFound) {
				a.log.Debug("graph judgment resolution failed", "case", caseNumber, "error", err)
			}
			continue
		}
		judgments = append(judgments, retrieve.RankedSource{Record: rec})
	}
	return judgments
}

func capRunes(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n])
}

func (a *Assistant) publishEvent(ctx context.Context, sessionID, question string, ans Answer, elapsed time.Duration) {
	if a.nc == nil {
		return
	}
	ev := AnswerEvent{
		EventID:    uuid.NewString(),
		SessionID:  sessionID,
		Question:   question,
		State:      string(ans.State),
		DurationMS: elapsed.Milliseconds(),
		At:         time.Now().UTC(),
	}
	for _, l := range ans.Laws {
		ev.LawIDs = append(ev.LawIDs, l.Record.ExternalID())
	}
	for _, j := range ans.Judgments {
		ev.CaseIDs = append(ev.CaseIDs, j.Record.ExternalID())
	}
	if err := natsutil.Publish(ctx, a.nc, AnswerEventSubject, ev); err != nil {
		a.log.Warn("answer event publish failed", "error", err)
	}
}
