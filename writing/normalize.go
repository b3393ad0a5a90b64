// Package writing turns untrusted language-model output into the canonical
// writing-check result the API returns.
//
// The model is asked for a fixed JSON shape but may wrap it in prose, omit
// fields or send the wrong types. Normalize never fails: every field the
// caller depends on is present and typed, with locally computed fallbacks.
package writing

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"
)

// DefaultMessage is used when a suggestion carries no usable rationale.
const DefaultMessage = "Suggestion"

// maxCount bounds model-reported counts before conversion to int.
const maxCount = math.MaxInt32

// Suggestion is one recommended change.
type Suggestion struct {
	Original   string   `json:"original"`
	Suggestion string   `json:"suggestion"`
	Message    string   `json:"message"`
	Category   Category `json:"category"`
}

// Insights holds aggregate metrics about the analyzed text.
type Insights struct {
	WordCount       int    `json:"wordCount"`
	SentenceCount   int    `json:"sentenceCount"`
	DetectedTone    string `json:"detectedTone"`
	ReadabilityNote string `json:"readabilityNote"`
}

// Result is the canonical output of a writing check.
type Result struct {
	CorrectedText string       `json:"correctedText"`
	Suggestions   []Suggestion `json:"suggestions"`
	Insights      Insights     `json:"insights"`
}

// Empty is the result for blank input: text echoed back, no suggestions and
// zeroed insights.
func Empty(text string) Result {
	return Result{
		CorrectedText: text,
		Suggestions:   []Suggestion{},
	}
}

// Fallback is the result used when the model gave no structured data.
func Fallback(original string) Result {
	return Result{
		CorrectedText: original,
		Suggestions:   []Suggestion{},
		Insights: Insights{
			WordCount:     CountWords(original),
			SentenceCount: CountSentences(original),
		},
	}
}

// Normalize decodes raw model output leniently and validates it against the
// original text.
func Normalize(raw, original string) Result {
	obj, _ := DecodeLenient(raw)
	return NormalizeObject(obj, original)
}

// NormalizeObject validates an already decoded object. A nil object yields
// Fallback(original).
func NormalizeObject(obj map[string]any, original string) Result {
	res := Fallback(original)
	if obj == nil {
		return res
	}

	if s, ok := obj["correctedText"].(string); ok && s != "" {
		res.CorrectedText = s
	}

	if items, ok := obj["suggestions"].([]any); ok {
		res.Suggestions = normalizeSuggestions(items)
	}

	if ins, ok := obj["insights"].(map[string]any); ok {
		res.Insights = normalizeInsights(ins, res.Insights)
	}

	return res
}

func normalizeSuggestions(items []any) []Suggestion {
	out := make([]Suggestion, 0, len(items))
	for _, item := range items {
		m, ok := item.(map[string]any)
		if !ok {
			continue
		}
		orig, ok := m["original"].(string)
		if !ok || orig == "" {
			continue
		}
		repl, ok := m["suggestion"].(string)
		if !ok {
			continue
		}
		msg, ok := m["message"].(string)
		if !ok {
			msg = DefaultMessage
		}
		out = append(out, Suggestion{
			Original:   orig,
			Suggestion: repl,
			Message:    msg,
			Category:   ParseCategory(m["category"]),
		})
	}
	return out
}

// normalizeInsights overlays model-reported insights on the locally computed
// ones in computed. A reported count of zero is not trusted.
func normalizeInsights(ins map[string]any, computed Insights) Insights {
	out := computed
	if n, ok := reportedCount(ins["wordCount"]); ok && n > 0 {
		out.WordCount = n
	}
	if n, ok := reportedCount(ins["sentenceCount"]); ok && n > 0 {
		out.SentenceCount = n
	}
	out.DetectedTone = trimmedString(ins["detectedTone"])
	out.ReadabilityNote = trimmedString(ins["readabilityNote"])
	return out
}

// reportedCount accepts JSON numbers only. Values outside float64 range are
// treated as not numeric.
func reportedCount(v any) (int, bool) {
	var f float64
	switch n := v.(type) {
	case json.Number:
		parsed, err := strconv.ParseFloat(n.String(), 64)
		if err != nil {
			return 0, false
		}
		f = parsed
	case float64:
		f = n
	default:
		return 0, false
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	f = math.Floor(f)
	switch {
	case f < 0:
		return 0, true
	case f > maxCount:
		return maxCount, true
	}
	return int(f), true
}

func trimmedString(v any) string {
	s, ok := v.(string)
	if !ok {
		return ""
	}
	return strings.TrimSpace(s)
}
