// Package prompt maps document labels to Hebrew instruction pairs: one for
// summarizing an attached document, one for answering questions about it.
// Every answer instruction carries the same two standing directives, Hebrew
// output only and numbered citations into the provided sources.
package prompt

import "github.com/minilawyer/minilawyer/engine/domain"

// Pair holds the two instructions selected for a label.
type Pair struct {
	Summary string
	Answer  string
}

const (
	hebrewOnly = "ענה בעברית בלבד."
	cite       = "הסתמך אך ורק על המקורות המסופקים וצטט אותם במספור, למשל [1]."
)

// directives are appended to every answer instruction.
func directives() string { return hebrewOnly + " " + cite }

var pairs = map[domain.DocLabel]Pair{
	domain.LabelEmploymentContract: {
		Summary: "סכם את חוזה העבודה: זהות הצדדים, תפקיד, שכר ותנאים נלווים, תקופת החוזה ותנאי סיום. " + hebrewOnly,
		Answer:  "אתה עורך דין לדיני עבודה. ענה על השאלה ביחס לחוזה העבודה המצורף, והצבע על סעיפים חריגים או מקפחים אם ישנם. " + directives(),
	},
	domain.LabelLeaseContract: {
		Summary: "סכם את חוזה השכירות: הנכס, דמי השכירות, תקופת השכירות, ביטחונות וחובות הצדדים. " + hebrewOnly,
		Answer:  "אתה עורך דין למקרקעין. ענה על השאלה ביחס לחוזה השכירות המצורף, בשים לב לזכויות השוכר והמשכיר. " + directives(),
	},
	domain.LabelServiceContract: {
		Summary: "סכם את חוזה השירות: השירות הנרכש, התמורה, לוחות זמנים, אחריות וביטול. " + hebrewOnly,
		Answer:  "אתה עורך דין מסחרי. ענה על השאלה ביחס לחוזה השירות המצורף. " + directives(),
	},
	domain.LabelTerminationLetter: {
		Summary: "סכם את מכתב הפיטורין: מועד סיום ההעסקה, הנימוקים שצוינו והזכויות הנזכרות במכתב. " + hebrewOnly,
		Answer:  "אתה עורך דין לדיני עבודה. ענה על השאלה ביחס למכתב הפיטורין המצורף, כולל זכויות העובד בסיום העסקה כגון שימוע, הודעה מוקדמת ופיצויי פיטורים. " + directives(),
	},
	domain.LabelWarningLetter: {
		Summary: "סכם את מכתב ההתראה: הדרישה, המועד שנקבע והצעדים שננקטו אם לא תקוים. " + hebrewOnly,
		Answer:  "אתה עורך דין. ענה על השאלה ביחס למכתב ההתראה המצורף והסבר את משמעותו המשפטית ואת דרכי התגובה האפשריות. " + directives(),
	},
	domain.LabelBylaws: {
		Summary: "סכם את התקנון: על מי הוא חל, החובות והזכויות המרכזיות והסנקציות הקבועות בו. " + hebrewOnly,
		Answer:  "אתה עורך דין. ענה על השאלה ביחס לתקנון המצורף. " + directives(),
	},
	domain.LabelNDA: {
		Summary: "סכם את הסכם הסודיות: המידע המוגן, תקופת הסודיות, החריגים והסעדים בהפרה. " + hebrewOnly,
		Answer:  "אתה עורך דין מסחרי. ענה על השאלה ביחס להסכם הסודיות המצורף. " + directives(),
	},
	domain.LabelStatementOfClaim: {
		Summary: "סכם את כתב התביעה: הצדדים, עילות התביעה, הסעדים המבוקשים וסכום התביעה. " + hebrewOnly,
		Answer:  "אתה עורך דין ליטיגציה. ענה על השאלה ביחס לכתב התביעה המצורף, כולל דרכי התגובה והמועדים להגשת כתב הגנה. " + directives(),
	},
	domain.LabelStatementOfDefense: {
		Summary: "סכם את כתב ההגנה: טענות ההגנה המרכזיות והכחשות העובדות. " + hebrewOnly,
		Answer:  "אתה עורך דין ליטיגציה. ענה על השאלה ביחס לכתב ההגנה המצורף. " + directives(),
	},
	domain.LabelJudgment: {
		Summary: "סכם את פסק הדין: הצדדים, השאלה המשפטית, ההכרעה ונימוקיה. " + hebrewOnly,
		Answer:  "אתה עורך דין. ענה על השאלה ביחס לפסק הדין המצורף והסבר את משמעות ההכרעה. " + directives(),
	},
}

// generic serves unclassified documents and questions without a document.
var generic = Pair{
	Summary: "סכם את המסמך המשפטי המצורף בנקודות קצרות וברורות. " + hebrewOnly,
	Answer:  "אתה עורך דין ישראלי מנוסה. ענה על השאלה המשפטית באופן ברור ומעשי. " + directives(),
}

// ForLabel returns the instruction pair for a label. Unknown or unclassified
// labels get the generic pair, so selection is total.
func ForLabel(label domain.DocLabel) Pair {
	if p, ok := pairs[label]; ok {
		return p
	}
	return generic
}

// ForQuestion returns the answering instruction for a bare question with no
// attached document.
func ForQuestion() string { return generic.Answer }
