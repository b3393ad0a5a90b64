// Package proofread applies offset-anchored corrections from a
// LanguageTool-compatible checker to the text they were computed against.
package proofread

import (
	"sort"
	"unicode/utf16"
)

// Apply substitutes the first-ranked replacement of every actionable match
// into text and returns the corrected text with one Edit per applied match.
//
// Matches without replacements are dropped. The rest are applied in
// descending offset order, so the offsets of matches not yet applied still
// point into the untouched prefix of the buffer. Overlapping matches are not
// detected; each is spliced independently in that order. Edits come back in
// the same descending order.
func Apply(text string, matches []Match, defaults Defaults) Correction {
	actionable := make([]Match, 0, len(matches))
	for _, m := range matches {
		if len(m.Replacements) > 0 {
			actionable = append(actionable, m)
		}
	}
	if len(actionable) == 0 {
		return Unchanged(text)
	}

	sort.SliceStable(actionable, func(i, j int) bool {
		return actionable[i].Offset > actionable[j].Offset
	})

	src := utf16.Encode([]rune(text))
	buf := make([]uint16, len(src))
	copy(buf, src)

	edits := make([]Edit, 0, len(actionable))
	for _, m := range actionable {
		replacement := m.Replacements[0].Value
		start, end := span(len(src), m.Offset, m.Length)

		edits = append(edits, Edit{
			Offset:     m.Offset,
			Length:     m.Length,
			Original:   string(utf16.Decode(src[start:end])),
			Suggestion: replacement,
			Message:    messageOr(m, defaults.Message),
			Rule:       ruleOr(m, defaults.Rule),
		})

		buf = splice(buf, m.Offset, m.Length, utf16.Encode([]rune(replacement)))
	}

	return Correction{
		CorrectedText: string(utf16.Decode(buf)),
		Errors:        edits,
	}
}

// span clamps [offset, offset+length) to a buffer of size n.
func span(n, offset, length int) (int, int) {
	start := min(max(offset, 0), n)
	end := offset + length
	if length < 0 || end < start {
		end = start
	}
	return start, min(end, n)
}

// splice returns buf[:offset] + repl + buf[offset+length:], clamped to buf.
func splice(buf []uint16, offset, length int, repl []uint16) []uint16 {
	start, end := span(len(buf), offset, length)
	out := make([]uint16, 0, len(buf)-(end-start)+len(repl))
	out = append(out, buf[:start]...)
	out = append(out, repl...)
	return append(out, buf[end:]...)
}

func messageOr(m Match, fallback string) string {
	if m.Message != "" {
		return m.Message
	}
	return fallback
}

func ruleOr(m Match, fallback string) string {
	if m.Rule != nil && m.Rule.ID != "" {
		return m.Rule.ID
	}
	return fallback
}
