package segment

import (
	"strings"
	"testing"
	"unicode/utf8"
)

func TestSplit_Empty(t *testing.T) {
	s := New(DefaultOptions())
	if got := s.Split(""); got != nil {
		t.Errorf("expected nil for empty input, got %v", got)
	}
	if got := s.Split("   \n  "); got != nil {
		t.Errorf("expected nil for whitespace input, got %v", got)
	}
}

func TestSplit_ShortTextSingleChunk(t *testing.T) {
	s := New(DefaultOptions())
	got := s.Split("העובד זכאי לפיצויי פיטורים.")
	if len(got) != 1 {
		t.Fatalf("expected 1 chunk, got %d", len(got))
	}
}

func TestSplit_RespectsMaxRunes(t *testing.T) {
	s := New(Options{MaxRunes: 50, MaxChunks: 20})
	text := strings.Repeat("זהו משפט קצר לבדיקה. ", 30)
	chunks := s.Split(text)
	if len(chunks) < 2 {
		t.Fatalf("expected multiple chunks, got %d", len(chunks))
	}
	for i, c := range chunks {
		if n := utf8.RuneCountInString(c); n > 50 {
			t.Errorf("chunk %d has %d runes, limit is 50", i, n)
		}
	}
}

func TestSplit_PreservesOrder(t *testing.T) {
	s := New(Options{MaxRunes: 30, MaxChunks: 20})
	chunks := s.Split("ראשון אחד. שני שתיים. שלישי שלוש. רביעי ארבע.")
	joined := strings.Join(chunks, " ")
	first := strings.Index(joined, "ראשון")
	last := strings.Index(joined, "רביעי")
	if first == -1 || last == -1 || first > last {
		t.Errorf("sentence order not preserved: %q", joined)
	}
}

func TestSplit_TruncatesToMaxChunks(t *testing.T) {
	s := New(Options{MaxRunes: 10, MaxChunks: 3})
	text := strings.Repeat("משפט אחד כאן. ", 50)
	chunks := s.Split(text)
	if len(chunks) > 3 {
		t.Errorf("expected at most 3 chunks, got %d", len(chunks))
	}
}

func TestSplit_HardCutsOverlongSentence(t *testing.T) {
	s := New(Options{MaxRunes: 20, MaxChunks: 20})
	// One sentence, no boundaries, far over the limit.
	chunks := s.Split(strings.Repeat("א", 95))
	if len(chunks) != 5 {
		t.Fatalf("expected 5 chunks, got %d", len(chunks))
	}
	for i, c := range chunks {
		if utf8.RuneCountInString(c) > 20 {
			t.Errorf("chunk %d exceeds rune limit", i)
		}
	}
}

func TestNew_DefaultsOnZeroOptions(t *testing.T) {
	s := New(Options{})
	if s.opts.MaxRunes != 450 || s.opts.MaxChunks != 20 {
		t.Errorf("expected defaults, got %+v", s.opts)
	}
}
