// Package classify assigns a document label from the closed taxonomy. The
// model sees only a head-and-tail sample of the document; distinctive
// keywords override the model when they appear, and anything the model says
// outside the vocabulary falls back to the unclassified label.
package classify

import (
	"context"
	"log/slog"
	"regexp"
	"strings"

	"github.com/minilawyer/minilawyer/engine/domain"
)

const (
	// sampleRunes is taken from each end of the document. Legal documents
	// state their type in the opening and closing paragraphs.
	sampleRunes = 800
	maxTokens   = 8
)

// keywordOverrides map distinctive phrases to labels. They win over the
// model because the phrases are near-unambiguous in this corpus.
var keywordOverrides = []struct {
	re    *regexp.Regexp
	label domain.DocLabel
}{
	{regexp.MustCompile(`הודעה על (סיום העסקה|פיטורין|הפסקת עבודה)`), domain.LabelTerminationLetter},
	{regexp.MustCompile(`מכתב פיטורין|מכתב פיטורים`), domain.LabelTerminationLetter},
	{regexp.MustCompile(`כתב תביעה`), domain.LabelStatementOfClaim},
	{regexp.MustCompile(`כתב הגנה`), domain.LabelStatementOfDefense},
}

// Completer is the single LLM operation the classifier needs.
type Completer interface {
	Complete(ctx context.Context, system, user string, temperature float32, maxTokens int) (string, error)
}

// Classifier labels documents.
type Classifier struct {
	completer Completer
	log       *slog.Logger
}

// New creates a Classifier.
func New(completer Completer, log *slog.Logger) *Classifier {
	if log == nil {
		log = slog.Default()
	}
	return &Classifier{completer: completer, log: log}
}

// Classify returns a label for the normalized document text. It never
// fails: keyword overrides are checked first, then the model is asked, and
// any error or out-of-vocabulary reply resolves to LabelUnclassified.
func (c *Classifier) Classify(ctx context.Context, text string) domain.DocLabel {
	if strings.TrimSpace(text) == "" {
		return domain.LabelUnclassified
	}

	for _, kw := range keywordOverrides {
		if kw.re.MatchString(text) {
			return kw.label
		}
	}

	reply, err := c.completer.Complete(ctx, systemPrompt(), Sample(text), 0, maxTokens)
	if err != nil {
		c.log.Warn("classify: completion failed, falling back to unclassified", "error", err)
		return domain.LabelUnclassified
	}

	label := domain.ParseLabel(strings.TrimSpace(reply))
	if label == domain.LabelUnclassified && strings.TrimSpace(reply) != domain.LabelUnclassified.HebrewToken() {
		c.log.Debug("classify: out-of-vocabulary reply", "reply", reply)
	}
	return label
}

// Sample returns the head and tail of the text, each capped at sampleRunes.
// Short documents pass through whole.
func Sample(text string) string {
	runes := []rune(text)
	if len(runes) <= 2*sampleRunes {
		return text
	}
	return string(runes[:sampleRunes]) + "\n...\n" + string(runes[len(runes)-sampleRunes:])
}

// systemPrompt lists every label with its Hebrew definition and instructs
// the model to answer with exactly one token.
func systemPrompt() string {
	var b strings.Builder
	b.WriteString("אתה מסווג מסמכים משפטיים. קרא את קטעי המסמך וענה בדיוק במילה אחת מהרשימה הבאה, ללא הסבר:\n")
	for _, label := range domain.ClassifiableLabels {
		b.WriteString(label.HebrewToken())
		b.WriteString(" - ")
		b.WriteString(domain.LabelDefinitions[label])
		b.WriteString("\n")
	}
	return b.String()
}
