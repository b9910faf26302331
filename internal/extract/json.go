// Package extract implements the tolerant JSON extraction routine spec.md
// §9 calls for, and the result extraction/normalization logic of §4.8: a
// canonical record built from the final workflow state by walking a fixed
// field-extraction order and applying the "meaningful result" OR-logic.
package extract

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"

	"github.com/tidwall/gjson"
)

var codeFenceRe = regexp.MustCompile("(?s)```(?:json)?\\s*(.*?)\\s*```")

// JSON implements the "tolerant JSON extraction" routine: strip markdown
// code fences if present, locate the first balanced `{...}` span, validate
// it, and decode into out. It tolerates model text that wraps a JSON object
// in prose or fencing.
func JSON(text string, out any) error {
	candidate := firstBalancedObject(stripFences(text))
	if candidate == "" {
		return fmt.Errorf("extract: no JSON object found in text")
	}
	if !gjson.Valid(candidate) {
		return fmt.Errorf("extract: candidate JSON failed validation")
	}
	return json.Unmarshal([]byte(candidate), out)
}

func stripFences(text string) string {
	if m := codeFenceRe.FindStringSubmatch(text); m != nil {
		return m[1]
	}
	return text
}

// firstBalancedObject scans text for the first top-level {...} span,
// respecting string literals so braces inside quoted strings don't throw
// off the depth count.
func firstBalancedObject(text string) string {
	start := strings.IndexByte(text, '{')
	if start < 0 {
		return ""
	}

	depth := 0
	inString := false
	escaped := false
	for i := start; i < len(text); i++ {
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
			inString = true
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return text[start : i+1]
			}
		}
	}
	return ""
}
