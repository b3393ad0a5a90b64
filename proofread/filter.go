package proofread

import "strings"

// IsSpelling reports whether a match comes from a spelling/typo rule.
func IsSpelling(m Match) bool {
	if m.Rule == nil {
		return false
	}
	r := m.Rule
	return r.IssueType == "misspelling" ||
		r.Category.ID == "TYPOS" ||
		r.ID == "MORFOLOGIK_RULE_EN_US" ||
		strings.Contains(r.ID, "SPELL") ||
		strings.Contains(r.ID, "TYPO")
}

// SpellingMatches keeps only spelling matches. When none qualify, every match
// is returned so misspellings reported under other rules still surface.
func SpellingMatches(matches []Match) []Match {
	out := make([]Match, 0, len(matches))
	for _, m := range matches {
		if IsSpelling(m) {
			out = append(out, m)
		}
	}
	if len(out) == 0 {
		return matches
	}
	return out
}
