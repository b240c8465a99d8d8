package domain

// DocLabel classifies a user document into the fixed legal taxonomy.
// The zero-information fallback is LabelUnclassified; classification must
// always resolve to one of these variants.
type DocLabel string

const (
	LabelEmploymentContract DocLabel = "employment_contract"
	LabelLeaseContract      DocLabel = "lease_contract"
	LabelServiceContract    DocLabel = "service_contract"
	LabelTerminationLetter  DocLabel = "termination_letter"
	LabelWarningLetter      DocLabel = "warning_letter"
	LabelBylaws             DocLabel = "bylaws"
	LabelNDA                DocLabel = "nda"
	LabelStatementOfClaim   DocLabel = "statement_of_claim"
	LabelStatementOfDefense DocLabel = "statement_of_defense"
	LabelJudgment           DocLabel = "judgment"
	LabelUnclassified       DocLabel = "unclassified"
)

// hebrewToken is the wire form the classifier model is asked to emit.
// The model side stays in Hebrew; the rest of the system uses the enum.
var hebrewTokens = map[DocLabel]string{
	LabelEmploymentContract: "חוזה_עבודה",
	LabelLeaseContract:      "חוזה_שכירות",
	LabelServiceContract:    "חוזה_שירות",
	LabelTerminationLetter:  "מכתב_פיטורין",
	LabelWarningLetter:      "מכתב_התראה",
	LabelBylaws:             "תקנון",
	LabelNDA:                "NDA",
	LabelStatementOfClaim:   "כתב_תביעה",
	LabelStatementOfDefense: "כתב_הגנה",
	LabelJudgment:           "פסק_דין",
	LabelUnclassified:       "מסמך_אחר",
}

// LabelDefinitions describes each classifiable label in Hebrew, used verbatim
// in the classifier prompt.
var LabelDefinitions = map[DocLabel]string{
	LabelEmploymentContract: "הסכם בין מעסיק לעובד או מועמד לעבודה",
	LabelLeaseContract:      "הסכם להשכרת דירה, משרד או נכס אחר",
	LabelServiceContract:    "הסכם בין מזמין לספק שירות",
	LabelTerminationLetter:  "הודעה על סיום העסקה או הפסקת עבודה",
	LabelWarningLetter:      "מכתב דרישה או אזהרה לפני נקיטת הליכים",
	LabelBylaws:             "מסמך כללי חובות וזכויות, למשל תקנון חברה או עמותה",
	LabelNDA:                "הסכם סודיות ואי-גילוי",
	LabelStatementOfClaim:   "מסמך פתיחת הליך בבית-משפט",
	LabelStatementOfDefense: "תגובה לכתב תביעה",
	LabelJudgment:           "הכרעת בית-משפט",
	LabelUnclassified:       "כל מסמך משפטי אחר שאינו נכנס לאף קטגוריה",
}

// ClassifiableLabels is the closed label set offered to the model, fallback last.
var ClassifiableLabels = []DocLabel{
	LabelEmploymentContract,
	LabelLeaseContract,
	LabelServiceContract,
	LabelTerminationLetter,
	LabelWarningLetter,
	LabelBylaws,
	LabelNDA,
	LabelStatementOfClaim,
	LabelStatementOfDefense,
	LabelJudgment,
	LabelUnclassified,
}

// HebrewToken returns the Hebrew wire token for a label.
func (l DocLabel) HebrewToken() string {
	if t, ok := hebrewTokens[l]; ok {
		return t
	}
	return hebrewTokens[LabelUnclassified]
}

// ParseLabel maps a model response (Hebrew token or enum name) to a label.
// Anything out of vocabulary resolves to LabelUnclassified.
func ParseLabel(s string) DocLabel {
	for label, token := range hebrewTokens {
		if s == token || s == string(label) {
			return label
		}
	}
	return LabelUnclassified
}
