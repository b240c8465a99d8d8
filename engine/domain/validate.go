package domain

import (
	"regexp"
	"strings"
	"unicode/utf8"
)

// Injection patterns — SQL/NoSQL fragments that should never appear in a
// legal question. Queries go verbatim into prompts and index probes.
var injectionPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)\b(DROP|DELETE|INSERT|UPDATE|ALTER|EXEC|UNION)\b.*\b(TABLE|FROM|INTO|SELECT|SET)\b`),
	regexp.MustCompile(`(?i)(--|;)\s*(DROP|DELETE|SELECT)`),
	regexp.MustCompile(`(?i)\$\{.*\}`),
	regexp.MustCompile(`(?i)\{\s*"\$[a-z]+"\s*:`),
}

const minQuestionLength = 3

// ValidateQuestion validates a user question before it enters the pipeline.
func ValidateQuestion(text string) error {
	text = strings.TrimSpace(text)
	if utf8.RuneCountInString(text) < minQuestionLength {
		return NewValidationError("question", text, ErrQueryTooShort)
	}
	for _, pat := range injectionPatterns {
		if pat.MatchString(text) {
			return NewValidationError("question", text, ErrQueryInjection)
		}
	}
	return nil
}

// ValidCorpus reports whether c is one of the fixed corpora.
func ValidCorpus(c Corpus) bool {
	for _, known := range Corpora {
		if c == known {
			return true
		}
	}
	return false
}
