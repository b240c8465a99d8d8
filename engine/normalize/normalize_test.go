package normalize

import (
	"strings"
	"testing"
)

func TestClean_DropsLowHebrewLines(t *testing.T) {
	n := New(DefaultOptions())
	// Content lines arrive in visual order, as PDF extractors emit them.
	raw := "2024-01-15\n" + reverseRunes("העובד התקבל לעבודה אצל המעסיק") + "\nPage 3 of 7\n" + reverseRunes("שכר העבודה ישולם מדי חודש")
	got := n.Clean(raw)
	if strings.Contains(got, "Page") || strings.Contains(got, "2024-01-15") {
		t.Errorf("boilerplate lines survived: %q", got)
	}
	if !strings.Contains(got, "העובד התקבל") {
		t.Errorf("content line dropped: %q", got)
	}
}

func TestClean_StripsSalutations(t *testing.T) {
	n := New(Options{MinHebrewRunes: 3})
	got := n.Clean(reverseRunes("לכבוד ישראל ישראלי הנכבד"))
	if strings.Contains(got, "לכבוד") {
		t.Errorf("salutation not stripped: %q", got)
	}
}

func TestClean_CollapsesWhitespace(t *testing.T) {
	n := New(Options{MinHebrewRunes: 3})
	got := n.Clean(reverseRunes("שלום    רב   לכולם"))
	if strings.Contains(got, "  ") {
		t.Errorf("whitespace not collapsed: %q", got)
	}
}

func TestClean_Empty(t *testing.T) {
	n := New(DefaultOptions())
	if got := n.Clean(""); got != "" {
		t.Errorf("expected empty, got %q", got)
	}
}

func TestFixDirection_NoHebrewPassthrough(t *testing.T) {
	line := "plain english line 123"
	if got := FixDirection(line); got != line {
		t.Errorf("non-Hebrew line changed: %q", got)
	}
}

func TestFixDirection_ReordersVisualHebrew(t *testing.T) {
	// "שלום" stored in visual order is its rune reversal.
	visual := reverseRunes("שלום")
	got := FixDirection(visual)
	if got != "שלום" {
		t.Errorf("expected logical order, got %q", got)
	}
}

func TestCountHebrew(t *testing.T) {
	tests := []struct {
		in   string
		want int
	}{
		{"", 0},
		{"abc", 0},
		{"שלום", 4},
		{"שלום abc עולם", 8},
	}
	for _, tt := range tests {
		if got := CountHebrew(tt.in); got != tt.want {
			t.Errorf("CountHebrew(%q) = %d, want %d", tt.in, got, tt.want)
		}
	}
}

func TestForeignWordCount(t *testing.T) {
	tests := []struct {
		in   string
		want int
	}{
		{"תשובה בעברית בלבד", 0},
		{"תשובה עם word אחת", 1},
		{"this is fully English", 4},
		{"", 0},
	}
	for _, tt := range tests {
		if got := ForeignWordCount(tt.in); got != tt.want {
			t.Errorf("ForeignWordCount(%q) = %d, want %d", tt.in, got, tt.want)
		}
	}
}

func TestFilterHebrewLines(t *testing.T) {
	in := "סיכום המסמך\nHere is a summary\nשורה נוספת"
	got := FilterHebrewLines(in)
	if strings.Contains(got, "summary") {
		t.Errorf("English line survived: %q", got)
	}
	if !strings.Contains(got, "סיכום") || !strings.Contains(got, "נוספת") {
		t.Errorf("Hebrew lines dropped: %q", got)
	}
}
