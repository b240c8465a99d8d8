// Package verify checks drafted answers for grounding and language before
// they reach the user. Verification is fail-open: when a check itself cannot
// run, the draft passes. At most one regeneration is attempted; a draft that
// still fails ships with a caveat instead of an error.
package verify

import (
	"context"
	"log/slog"
	"regexp"
	"strings"

	"github.com/minilawyer/minilawyer/engine/normalize"
)

// State names one step of the verification lifecycle.
type State string

const (
	StateDrafted  State = "DRAFTED"
	StateRetried  State = "RETRIED"
	StateAccepted State = "ACCEPTED"
	StateDegraded State = "DEGRADED"
)

const (
	// maxForeignWords is how many Latin-script words an answer may carry
	// before a translation pass is forced.
	maxForeignWords = 3
	// citationThreshold is the minimum share of non-empty answer lines
	// that must carry a citation when sources were provided.
	citationThreshold = 0.5

	translateSystem = "תרגם את הטקסט הבא לעברית. שמור על סימוני המקורות כגון [1] בדיוק כפי שהם. החזר את התרגום בלבד."
	selfCheckSystem = "לפניך תשובה משפטית. האם היא מסתמכת על המקורות הממוספרים ומצטטת אותם? ענה yes או no בלבד."

	// degradedCaveat is appended to an answer that failed verification
	// after the retry budget was spent.
	degradedCaveat = "הערה: לא ניתן היה לאמת את מלוא ההסתמכות על המקורות. מומלץ לבדוק את האסמכתאות באופן עצמאי."
)

var citationRe = regexp.MustCompile(`\[\d+\]|\(\d+\)|סעיף\s+\d+`)

// Completer is the single LLM operation the verifier needs.
type Completer interface {
	Complete(ctx context.Context, system, user string, temperature float32, maxTokens int) (string, error)
}

// Outcome is the verified answer with its lifecycle trace.
type Outcome struct {
	Answer string
	State  State
	Trace  []State
	// Caveat is non-empty only in the degraded state.
	Caveat string
}

// Verifier runs the check-and-retry loop.
type Verifier struct {
	completer Completer
	log       *slog.Logger
}

// New creates a Verifier.
func New(completer Completer, log *slog.Logger) *Verifier {
	if log == nil {
		log = slog.Default()
	}
	return &Verifier{completer: completer, log: log}
}

// Verify runs at most two rounds over the draft. Each round spends at most
// one corrective completion, on translation when the answer drifts out of
// Hebrew, otherwise on a citation self-check when the heuristic is unsure.
// regenerate produces the second draft; it is called at most once.
func (v *Verifier) Verify(ctx context.Context, draft string, hasSources bool, regenerate func(context.Context) (string, error)) Outcome {
	out := Outcome{Answer: draft, Trace: []State{StateDrafted}}

	if v.checkRound(ctx, &out, hasSources) {
		out.State = StateAccepted
		out.Trace = append(out.Trace, StateAccepted)
		return out
	}

	out.Trace = append(out.Trace, StateRetried)
	redraft, err := regenerate(ctx)
	if err != nil {
		v.log.Warn("verify: regeneration failed, shipping first draft degraded", "error", err)
		out.State = StateDegraded
		out.Caveat = degradedCaveat
		out.Trace = append(out.Trace, StateDegraded)
		return out
	}
	out.Answer = redraft

	if v.checkRound(ctx, &out, hasSources) {
		out.State = StateAccepted
		out.Trace = append(out.Trace, StateAccepted)
		return out
	}
	out.State = StateDegraded
	out.Caveat = degradedCaveat
	out.Trace = append(out.Trace, StateDegraded)
	return out
}

// checkRound validates one draft in place. It may rewrite out.Answer when a
// translation pass runs. Returns whether the draft is acceptable.
func (v *Verifier) checkRound(ctx context.Context, out *Outcome, hasSources bool) bool {
	correctiveUsed := false

	if normalize.ForeignWordCount(out.Answer) > maxForeignWords {
		correctiveUsed = true
		translated, err := v.completer.Complete(ctx, translateSystem, out.Answer, 0, 0)
		if err != nil {
			v.log.Warn("verify: translation failed, keeping draft", "error", err)
		} else if t := strings.TrimSpace(translated); t != "" {
			out.Answer = t
		}
	}

	if !hasSources {
		// Nothing to cite; an uncited answer is the expected shape.
		return true
	}
	if CitationRatio(out.Answer) >= citationThreshold {
		return true
	}
	if correctiveUsed {
		// Round budget spent on translation; the heuristic verdict stands.
		return false
	}

	reply, err := v.completer.Complete(ctx, selfCheckSystem, out.Answer, 0, 4)
	if err != nil {
		v.log.Warn("verify: self-check failed, accepting draft", "error", err)
		return true
	}
	return strings.HasPrefix(strings.ToLower(strings.TrimSpace(reply)), "yes")
}

// CitationRatio returns the share of non-empty lines carrying a citation
// marker, numbered references or explicit section references.
func CitationRatio(answer string) float64 {
	total, cited := 0, 0
	for _, line := range strings.Split(answer, "\n") {
		if strings.TrimSpace(line) == "" {
			continue
		}
		total++
		if citationRe.MatchString(line) {
			cited++
		}
	}
	if total == 0 {
		return 0
	}
	return float64(cited) / float64(total)
}

// Describe renders a trace for logs, e.g. "DRAFTED>RETRIED>ACCEPTED".
func Describe(trace []State) string {
	parts := make([]string, len(trace))
	for i, s := range trace {
		parts[i] = string(s)
	}
	return strings.Join(parts, ">")
}
