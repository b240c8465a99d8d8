// Package answer builds the synthesis prompt and drafts answers. Sources
// enter the prompt as a numbered list so the model can cite them as [1], [2];
// the numbering is the contract the grounding verifier checks against.
package answer

import (
	"context"
	"fmt"
	"strings"

	"github.com/minilawyer/minilawyer/engine/domain"
	"github.com/minilawyer/minilawyer/engine/retrieve"
	"github.com/pkoukk/tiktoken-go"
)

const (
	// descriptionRunes caps each source description in the prompt.
	descriptionRunes = 800
	// excerptTokens caps the attached-document excerpt.
	excerptTokens = 600
	// historyTurns caps how much transcript enters the prompt.
	historyTurns = 6

	encoding = "cl100k_base"
)

// noSources tells the model explicitly that retrieval came back empty, so it
// answers from general knowledge without inventing citations.
const noSources = "לא נמצאו מקורות רלוונטיים במאגר. ענה מהידע הכללי שלך וציין זאת במפורש, ואל תמציא מקורות או אסמכתאות."

// forceCitations sharpens the citation directive on a retry round.
const forceCitations = "חובה לצטט את המקורות הממוספרים בכל טענה משפטית, בצורת [1], [2]. תשובה ללא ציטוטים תידחה."

// Completer is the single LLM operation the synthesizer needs.
type Completer interface {
	Complete(ctx context.Context, system, user string, temperature float32, maxTokens int) (string, error)
}

// Input is everything one draft needs.
type Input struct {
	Question    string
	Instruction string
	DocExcerpt  string
	Laws        []retrieve.RankedSource
	Judgments   []retrieve.RankedSource
	History     []domain.ConversationTurn
	// ForceCitations strengthens the citation directive; set on retry.
	ForceCitations bool
}

// Synthesizer drafts answers from retrieved sources.
type Synthesizer struct {
	completer Completer
	maxTokens int
}

// New creates a Synthesizer. maxTokens caps the drafted answer length;
// zero means no cap.
func New(completer Completer, maxTokens int) *Synthesizer {
	return &Synthesizer{completer: completer, maxTokens: maxTokens}
}

// Draft produces one answer. The same numbered source list is returned so
// the verifier and the caller see exactly what the model saw.
func (s *Synthesizer) Draft(ctx context.Context, in Input) (string, error) {
	system := in.Instruction
	if in.ForceCitations {
		system += "\n" + forceCitations
	}

	var b strings.Builder
	sources := FormatSources(in.Laws, in.Judgments)
	if sources == "" {
		b.WriteString(noSources)
	} else {
		b.WriteString("מקורות:\n")
		b.WriteString(sources)
	}

	if in.DocExcerpt != "" {
		b.WriteString("\n\nקטע מהמסמך המצורף:\n")
		b.WriteString(TrimToTokens(in.DocExcerpt, excerptTokens))
	}

	if history := formatHistory(in.History); history != "" {
		b.WriteString("\n\nשיחה קודמת:\n")
		b.WriteString(history)
	}

	b.WriteString("\n\nשאלה: ")
	b.WriteString(in.Question)

	text, err := s.completer.Complete(ctx, system, b.String(), 0, s.maxTokens)
	if err != nil {
		return "", fmt.Errorf("answer: draft: %w", err)
	}
	return strings.TrimSpace(text), nil
}

// FormatSources renders laws then judgments as one numbered list. Numbering
// is continuous across the two corpora.
func FormatSources(laws, judgments []retrieve.RankedSource) string {
	var b strings.Builder
	n := 0
	for _, src := range laws {
		law, ok := src.Record.(domain.LawRecord)
		if !ok {
			continue
		}
		n++
		fmt.Fprintf(&b, "[%d] שם החוק: %s (מס' מזהה: %d)\n%s\n",
			n, law.Name, law.IsraelLawID, trimRunes(law.Description, descriptionRunes))
	}
	for _, src := range judgments {
		j, ok := src.Record.(domain.JudgmentRecord)
		if !ok {
			continue
		}
		n++
		fmt.Fprintf(&b, "[%d] פסק דין: %s (מס' תיק: %s)\n%s\n",
			n, j.Name, j.CaseNumber, trimRunes(j.Description, descriptionRunes))
	}
	return strings.TrimSpace(b.String())
}

func formatHistory(turns []domain.ConversationTurn) string {
	if len(turns) > historyTurns {
		turns = turns[len(turns)-historyTurns:]
	}
	var b strings.Builder
	for _, t := range turns {
		role := "משתמש"
		if t.Role == "assistant" {
			role = "עוזר"
		}
		fmt.Fprintf(&b, "%s: %s\n", role, t.Content)
	}
	return strings.TrimSpace(b.String())
}

// TrimToTokens truncates text to a token budget. If the tokenizer cannot be
// loaded, a rune budget of four runes per token approximates it.
func TrimToTokens(text string, budget int) string {
	enc, err := tiktoken.GetEncoding(encoding)
	if err != nil {
		return trimRunes(text, budget*4)
	}
	tokens := enc.Encode(text, nil, nil)
	if len(tokens) <= budget {
		return text
	}
	return enc.Decode(tokens[:budget])
}

func trimRunes(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n])
}
