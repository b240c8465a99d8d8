package domain

import (
	"errors"
	"testing"
)

func TestParseLabel(t *testing.T) {
	tests := []struct {
		in   string
		want DocLabel
	}{
		{"חוזה_עבודה", LabelEmploymentContract},
		{"מכתב_פיטורין", LabelTerminationLetter},
		{"employment_contract", LabelEmploymentContract},
		{"NDA", LabelNDA},
		{"מסמך_אחר", LabelUnclassified},
		{"something else", LabelUnclassified},
		{"", LabelUnclassified},
	}
	for _, tt := range tests {
		if got := ParseLabel(tt.in); got != tt.want {
			t.Errorf("ParseLabel(%q) = %s, want %s", tt.in, got, tt.want)
		}
	}
}

func TestHebrewToken_TotalOverTaxonomy(t *testing.T) {
	for _, label := range ClassifiableLabels {
		if label.HebrewToken() == "" {
			t.Errorf("label %s has no Hebrew token", label)
		}
		if LabelDefinitions[label] == "" {
			t.Errorf("label %s has no definition", label)
		}
	}
	if DocLabel("bogus").HebrewToken() != LabelUnclassified.HebrewToken() {
		t.Errorf("unknown label must fall back to the unclassified token")
	}
}

func TestValidateQuestion(t *testing.T) {
	tests := []struct {
		name    string
		in      string
		wantErr error
	}{
		{"valid", "מה זכויותיי בפיטורין?", nil},
		{"too short", "אב", ErrQueryTooShort},
		{"whitespace only", "   ", ErrQueryTooShort},
		{"sql injection", "DROP TABLE laws; SELECT * FROM users", ErrQueryInjection},
		{"nosql injection", `{"$where": "sleep(1000)"}`, ErrQueryInjection},
		{"template injection", "${process.env}", ErrQueryInjection},
		{"legal question mentioning delete", "האם מותר למחוק סעיף מחוזה?", nil},
	}
	for _, tt := range tests {
		err := ValidateQuestion(tt.in)
		if tt.wantErr == nil && err != nil {
			t.Errorf("%s: unexpected error %v", tt.name, err)
		}
		if tt.wantErr != nil && !errors.Is(err, tt.wantErr) {
			t.Errorf("%s: got %v, want %v", tt.name, err, tt.wantErr)
		}
	}
}

func TestExternalIDs(t *testing.T) {
	law := LawRecord{IsraelLawID: 42, Name: "חוק"}
	if law.ExternalID() != "42" || law.Corpus() != CorpusLaws {
		t.Errorf("law identity wrong: %s/%s", law.Corpus(), law.ExternalID())
	}
	j := JudgmentRecord{CaseNumber: "ע\"א 100/20", Name: "פלוני"}
	if j.ExternalID() != "ע\"א 100/20" || j.Corpus() != CorpusJudgments {
		t.Errorf("judgment identity wrong: %s/%s", j.Corpus(), j.ExternalID())
	}
}

func TestValidCorpus(t *testing.T) {
	if !ValidCorpus(CorpusLaws) || !ValidCorpus(CorpusJudgments) {
		t.Errorf("fixed corpora must be valid")
	}
	if ValidCorpus(Corpus("contracts")) {
		t.Errorf("unknown corpus must be invalid")
	}
}
