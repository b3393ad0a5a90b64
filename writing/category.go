package writing

import "strings"

// Category classifies a Suggestion. The set is closed; see ParseCategory.
type Category string

const (
	CategorySpelling    Category = "spelling"
	CategoryGrammar     Category = "grammar"
	CategoryPunctuation Category = "punctuation"
	CategoryClarity     Category = "clarity"
	CategoryConciseness Category = "conciseness"
	CategoryEngagement  Category = "engagement"
	CategoryTone        Category = "tone"
	CategoryWordChoice  Category = "word_choice"
	CategoryStructure   Category = "structure"
)

// DefaultCategory is used for absent or unrecognized categories.
const DefaultCategory = CategoryGrammar

var knownCategories = map[Category]struct{}{
	CategorySpelling:    {},
	CategoryGrammar:     {},
	CategoryPunctuation: {},
	CategoryClarity:     {},
	CategoryConciseness: {},
	CategoryEngagement:  {},
	CategoryTone:        {},
	CategoryWordChoice:  {},
	CategoryStructure:   {},
}

// Categories returns the closed category set in display order.
func Categories() []Category {
	return []Category{
		CategorySpelling, CategoryGrammar, CategoryPunctuation,
		CategoryClarity, CategoryConciseness, CategoryEngagement,
		CategoryTone, CategoryWordChoice, CategoryStructure,
	}
}

// Valid reports whether c is one of the known categories.
func (c Category) Valid() bool {
	_, ok := knownCategories[c]
	return ok
}

// ParseCategory maps an untrusted value onto the closed set. Matching is
// case-insensitive and ignores surrounding whitespace; non-strings and
// unknown names fall back to DefaultCategory.
func ParseCategory(v any) Category {
	s, ok := v.(string)
	if !ok {
		return DefaultCategory
	}
	c := Category(strings.ToLower(strings.TrimSpace(s)))
	if c.Valid() {
		return c
	}
	return DefaultCategory
}
