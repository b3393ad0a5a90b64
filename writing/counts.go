package writing

import "strings"

// CountWords counts the non-empty tokens left after splitting on whitespace runs.
func CountWords(text string) int {
	return len(strings.Fields(text))
}

// CountSentences counts the non-blank tokens left after splitting on runs of
// terminal punctuation (. ! ?).
func CountSentences(text string) int {
	parts := strings.FieldsFunc(text, isTerminal)
	n := 0
	for _, p := range parts {
		if strings.TrimSpace(p) != "" {
			n++
		}
	}
	return n
}

func isTerminal(r rune) bool {
	return r == '.' || r == '!' || r == '?'
}
