package writing

import (
	"encoding/json"
	"errors"
	"io"
	"strings"
)

// DecodeLenient extracts a JSON object from free-form model output.
//
// The outermost brace pair (first '{' through last '}') is tried first, then
// the trimmed input as a whole. Anything that does not decode to a JSON object
// yields ok == false; callers treat that as "no structured data", not as an
// error.
func DecodeLenient(raw string) (map[string]any, bool) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return nil, false
	}

	if start := strings.IndexByte(trimmed, '{'); start >= 0 {
		if end := strings.LastIndexByte(trimmed, '}'); end > start {
			if obj, ok := decodeObject(trimmed[start : end+1]); ok {
				return obj, true
			}
		}
	}

	return decodeObject(trimmed)
}

// decodeObject keeps numbers as json.Number so an out-of-range value only
// invalidates its own field.
func decodeObject(s string) (map[string]any, bool) {
	dec := json.NewDecoder(strings.NewReader(s))
	dec.UseNumber()
	var v any
	if err := dec.Decode(&v); err != nil {
		return nil, false
	}
	if err := dec.Decode(new(any)); !errors.Is(err, io.EOF) {
		return nil, false
	}
	obj, ok := v.(map[string]any)
	if !ok || obj == nil {
		return nil, false
	}
	return obj, true
}
