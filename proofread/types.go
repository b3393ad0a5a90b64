package proofread

// Replacement is one ranked candidate for a match.
type Replacement struct {
	Value string `json:"value"`
}

// RuleCategory groups LanguageTool rules (TYPOS, GRAMMAR, ...).
type RuleCategory struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// Rule identifies the checker rule that produced a match.
type Rule struct {
	ID          string       `json:"id"`
	Description string       `json:"description"`
	IssueType   string       `json:"issueType"`
	Category    RuleCategory `json:"category"`
}

// Match is a raw proofreading hit as reported by the upstream checker.
// Offset and Length count UTF-16 code units of the checked text.
type Match struct {
	Message      string        `json:"message"`
	ShortMessage string        `json:"shortMessage"`
	Offset       int           `json:"offset"`
	Length       int           `json:"length"`
	Replacements []Replacement `json:"replacements"`
	Rule         *Rule         `json:"rule,omitempty"`
}

// Edit describes one applied correction, anchored to the original text.
type Edit struct {
	Offset     int    `json:"offset"`
	Length     int    `json:"length"`
	Original   string `json:"original"`
	Suggestion string `json:"suggestion"`
	Message    string `json:"message"`
	Rule       string `json:"rule"`
}

// Correction is the corrected text plus the edits that produced it.
type Correction struct {
	CorrectedText string `json:"correctedText"`
	Errors        []Edit `json:"errors"`
}

// Defaults fill in edit fields the upstream match left empty.
type Defaults struct {
	Message string
	Rule    string
}

var (
	GrammarDefaults  = Defaults{Message: "Grammar issue", Rule: "GRAMMAR"}
	SpellingDefaults = Defaults{Message: "Spelling error", Rule: "SPELLING"}
)

// Unchanged is the result used when there is nothing to apply or the
// upstream call failed.
func Unchanged(text string) Correction {
	return Correction{CorrectedText: text, Errors: []Edit{}}
}
