// Package segment splits normalized document text into bounded, ordered
// chunks. Each chunk becomes an extra retrieval probe, so the bounds cap the
// fan-out of a retrieval round.
package segment

import (
	"regexp"
	"strings"
	"unicode/utf8"
)

var sentenceEnd = regexp.MustCompile(`(?:\.|\?|!)\s+`)

// Options bounds the segmenter output.
type Options struct {
	// MaxRunes is the greedy accumulation limit per chunk.
	MaxRunes int
	// MaxChunks caps the number of chunks emitted.
	MaxChunks int
}

// DefaultOptions reflects the probe budget of one retrieval round.
func DefaultOptions() Options { return Options{MaxRunes: 450, MaxChunks: 20} }

// Segmenter splits text on sentence boundaries.
type Segmenter struct {
	opts Options
}

// New creates a Segmenter.
func New(opts Options) *Segmenter {
	if opts.MaxRunes <= 0 {
		opts.MaxRunes = DefaultOptions().MaxRunes
	}
	if opts.MaxChunks <= 0 {
		opts.MaxChunks = DefaultOptions().MaxChunks
	}
	return &Segmenter{opts: opts}
}

// Split chunks text by greedily accumulating sentences until the next one
// would exceed MaxRunes, then starting a new chunk. Output preserves source
// order and is truncated to MaxChunks. Empty input yields no segments.
//
// A single sentence longer than MaxRunes is hard-cut so no chunk ever
// exceeds the bound.
func (s *Segmenter) Split(text string) []string {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil
	}

	var chunks []string
	var cur strings.Builder
	curLen := 0

	flush := func() {
		if c := strings.TrimSpace(cur.String()); c != "" {
			chunks = append(chunks, c)
		}
		cur.Reset()
		curLen = 0
	}

	for _, sentence := range sentenceEnd.Split(text, -1) {
		sentence = strings.TrimSpace(sentence)
		if sentence == "" {
			continue
		}
		for _, piece := range hardCut(sentence, s.opts.MaxRunes) {
			n := utf8.RuneCountInString(piece)
			if curLen > 0 && curLen+n+1 > s.opts.MaxRunes {
				flush()
			}
			if curLen > 0 {
				cur.WriteByte(' ')
				curLen++
			}
			cur.WriteString(piece)
			curLen += n
		}
		if len(chunks) >= s.opts.MaxChunks {
			break
		}
	}
	flush()

	if len(chunks) > s.opts.MaxChunks {
		chunks = chunks[:s.opts.MaxChunks]
	}
	return chunks
}

// hardCut splits a single over-long sentence into rune-bounded pieces.
func hardCut(sentence string, maxRunes int) []string {
	if utf8.RuneCountInString(sentence) <= maxRunes {
		return []string{sentence}
	}
	var out []string
	runes := []rune(sentence)
	for len(runes) > 0 {
		n := min(maxRunes, len(runes))
		out = append(out, string(runes[:n]))
		runes = runes[n:]
	}
	return out
}
