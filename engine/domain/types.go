// Package domain defines the core types of the legal answering pipeline:
// corpora, source records, documents and their segments, conversation turns,
// and the closed document-label taxonomy. It acts as the validation gate at
// pipeline entry points.
package domain

import (
	"fmt"
	"time"
)

// Corpus identifies one of the two fixed legal-record collections.
type Corpus string

const (
	CorpusLaws      Corpus = "laws"
	CorpusJudgments Corpus = "judgments"
)

// Corpora lists every corpus, in retrieval order.
var Corpora = []Corpus{CorpusLaws, CorpusJudgments}

// SourceRecord is the variant over law and judgment records. Records are
// addressed by corpus plus external id; the external id is the only join key
// between the vector index and the record store.
type SourceRecord interface {
	Corpus() Corpus
	ExternalID() string
	DisplayName() string
	Summary() string
}

// LawSection is one numbered section of a statute.
type LawSection struct {
	Number  string `json:"section_number"`
	Title   string `json:"section_title,omitempty"`
	Content string `json:"section_content"`
}

// LawRecord is a statute from the laws corpus.
type LawRecord struct {
	IsraelLawID     int64        `json:"israel_law_id"`
	Name            string       `json:"name"`
	Description     string       `json:"description"`
	PublicationDate string       `json:"publication_date,omitempty"`
	Sections        []LawSection `json:"sections,omitempty"`
}

func (l LawRecord) Corpus() Corpus      { return CorpusLaws }
func (l LawRecord) ExternalID() string  { return fmt.Sprintf("%d", l.IsraelLawID) }
func (l LawRecord) DisplayName() string { return l.Name }
func (l LawRecord) Summary() string     { return l.Description }

// JudgmentRecord is a court ruling from the judgments corpus.
type JudgmentRecord struct {
	CaseNumber    string  `json:"case_number"`
	Name          string  `json:"name"`
	Description   string  `json:"description"`
	DecisionDate  string  `json:"decision_date,omitempty"`
	ProcedureType string  `json:"procedure_type,omitempty"`
	CitedLawIDs   []int64 `json:"cited_law_ids,omitempty"`
}

func (j JudgmentRecord) Corpus() Corpus      { return CorpusJudgments }
func (j JudgmentRecord) ExternalID() string  { return j.CaseNumber }
func (j JudgmentRecord) DisplayName() string { return j.Name }
func (j JudgmentRecord) Summary() string     { return j.Description }

// Document is a user-supplied legal document attached to a session.
// Segments exist only for the duration of one retrieval round.
type Document struct {
	RawText        string
	NormalizedText string
	Label          DocLabel
	Segments       []string
}

// Query is a free-text legal question, optionally asked against a Document.
type Query struct {
	Text     string
	Document *Document
}

// ConversationTurn is one append-only message in a session transcript.
type ConversationTurn struct {
	Role      string    `json:"role"` // "user" or "assistant"
	Content   string    `json:"content"`
	Timestamp time.Time `json:"timestamp"`
}
