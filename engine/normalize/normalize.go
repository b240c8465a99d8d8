// Package normalize cleans extracted legal document text before it enters
// the pipeline. PDF extractors emit Hebrew in visual order; runs are
// reordered into logical order with the Unicode bidi algorithm. Salutation
// boilerplate is stripped and lines without meaningful Hebrew content are
// dropped.
package normalize

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/unicode/bidi"
)

var (
	salutations = regexp.MustCompile(`(לכבוד|מר\.?|גב'?|גברת|ד"ר\.?)\s+`)
	multiSpace  = regexp.MustCompile(`\s{2,}`)
	latinWord   = regexp.MustCompile(`[A-Za-z]`)
)

// Options tunes the normalizer.
type Options struct {
	// MinHebrewRunes is the minimum number of Hebrew letters a line must
	// contain to survive; shorter lines are treated as boilerplate.
	MinHebrewRunes int
}

// DefaultOptions matches the corpus documents: six Hebrew letters per line.
func DefaultOptions() Options { return Options{MinHebrewRunes: 6} }

// Normalizer cleans raw extracted text.
type Normalizer struct {
	opts Options
}

// New creates a Normalizer.
func New(opts Options) *Normalizer {
	if opts.MinHebrewRunes <= 0 {
		opts.MinHebrewRunes = DefaultOptions().MinHebrewRunes
	}
	return &Normalizer{opts: opts}
}

// Clean normalizes raw document text: per-line direction fix, salutation
// stripping, whitespace collapsing, and removal of lines below the Hebrew
// content threshold. Empty input yields an empty string.
func (n *Normalizer) Clean(raw string) string {
	var kept []string
	for _, line := range strings.Split(raw, "\n") {
		if CountHebrew(line) < n.opts.MinHebrewRunes {
			continue
		}
		line = FixDirection(line)
		line = salutations.ReplaceAllString(line, "")
		line = multiSpace.ReplaceAllString(line, " ")
		line = strings.TrimSpace(line)
		if line != "" {
			kept = append(kept, line)
		}
	}
	return strings.Join(kept, "\n")
}

// FixDirection reorders a visually-ordered line into logical order. Lines
// without Hebrew pass through untouched. If the bidi algorithm rejects the
// line, each Hebrew word is reversed in place as a fallback.
func FixDirection(line string) string {
	if CountHebrew(line) == 0 {
		return line
	}

	var p bidi.Paragraph
	if _, err := p.SetString(line, bidi.DefaultDirection(bidi.RightToLeft)); err != nil {
		return reverseHebrewWords(line)
	}
	ordering, err := p.Order()
	if err != nil {
		return reverseHebrewWords(line)
	}

	var b strings.Builder
	for i := 0; i < ordering.NumRuns(); i++ {
		run := ordering.Run(i)
		s := run.String()
		if run.Direction() == bidi.RightToLeft {
			s = bidi.ReverseString(s)
		}
		b.WriteString(s)
	}
	return b.String()
}

func reverseHebrewWords(line string) string {
	words := strings.Fields(line)
	for i, w := range words {
		if CountHebrew(w) > 0 {
			words[i] = reverseRunes(w)
		}
	}
	return strings.Join(words, " ")
}

func reverseRunes(s string) string {
	runes := []rune(s)
	for i, j := 0, len(runes)-1; i < j; i, j = i+1, j-1 {
		runes[i], runes[j] = runes[j], runes[i]
	}
	return string(runes)
}

// CountHebrew returns the number of Hebrew letters in s.
func CountHebrew(s string) int {
	count := 0
	for _, r := range s {
		if unicode.Is(unicode.Hebrew, r) {
			count++
		}
	}
	return count
}

// ForeignWordCount returns the number of words containing Latin letters.
// The grounding verifier uses it to decide whether an answer needs a
// translation pass.
func ForeignWordCount(s string) int {
	count := 0
	for _, w := range strings.Fields(s) {
		if latinWord.MatchString(w) {
			count++
		}
	}
	return count
}

// FilterHebrewLines keeps only lines that contain at least one Hebrew letter.
// Model output is filtered through this after summarization.
func FilterHebrewLines(s string) string {
	var kept []string
	for _, line := range strings.Split(s, "\n") {
		if CountHebrew(line) > 0 {
			kept = append(kept, line)
		}
	}
	return strings.Join(kept, "\n")
}
