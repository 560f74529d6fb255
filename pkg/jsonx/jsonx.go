// Package jsonx extracts JSON fragments from free-form text. Generative
// services frequently wrap their JSON payload in prose or markdown fences,
// so callers cannot unmarshal the raw response directly.
package jsonx

import (
	"encoding/json"
	"errors"
)

var ErrNoArray = errors.New("no JSON array found in text")

// FirstArray returns the first balanced top-level `[...]` span in text.
// Bracket counting is string-aware: brackets inside JSON string literals
// (including escaped quotes) do not affect nesting depth.
func FirstArray(text string) (string, error) {
	start := -1
	depth := 0
	inString := false
	escaped := false

	for i := 0; i < len(text); i++ {
		c := text[i]

		if inString {
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inString = false
			}
			continue
		}

		switch c {
		case '"':
			if start >= 0 {
				inString = true
			}
		case '[':
			if start < 0 {
				start = i
			}
			depth++
		case ']':
			if start < 0 {
				continue
			}
			depth--
			if depth == 0 {
				return text[start : i+1], nil
			}
		}
	}

	return "", ErrNoArray
}

// UnmarshalFirstArray extracts the first balanced array span and decodes it
// into v.
func UnmarshalFirstArray(text string, v interface{}) error {
	span, err := FirstArray(text)
	if err != nil {
		return err
	}
	if err := json.Unmarshal([]byte(span), v); err != nil {
		return err
	}
	return nil
}
