// Package recovery extracts structured JSON from unreliable agent replies.
//
// Agent completions are supposed to be a single JSON object, but in practice
// arrive wrapped in prose, cut off mid-token, or otherwise mangled. Recover
// runs an ordered chain of repair strategies and returns the first parse
// that succeeds; it never fails hard, so callers can fall back to treating
// the reply as an opaque string.
package recovery

import (
	"encoding/json"
	"regexp"
	"strings"
)

// Strategy identifies which repair strategy produced a successful parse.
type Strategy string

const (
	StrategyNone        Strategy = "none"
	StrategyDirect      Strategy = "direct"
	StrategyBoundary    Strategy = "boundary"
	StrategyCommaRepair Strategy = "comma_repair"
	StrategyArrayClose  Strategy = "array_close"
)

// Result is the outcome of a recovery attempt. When OK is false, Parsed is
// nil and the caller should keep the raw text as-is.
type Result struct {
	Parsed   map[string]any
	Strategy Strategy
	OK       bool
}

// Recover attempts to parse raw as a JSON object, applying repair strategies
// in order until one succeeds. It never panics and never returns an error;
// malformed input yields Result{OK: false}.
func Recover(raw string) Result {
	for _, s := range []struct {
		strategy Strategy
		attempt  func(string) (map[string]any, bool)
	}{
		{StrategyDirect, parseDirect},
		{StrategyBoundary, parseBoundary},
		{StrategyCommaRepair, parseCommaRepair},
		{StrategyArrayClose, parseArrayClose},
	} {
		if parsed, ok := s.attempt(raw); ok {
			return Result{Parsed: parsed, Strategy: s.strategy, OK: true}
		}
	}
	return Result{Strategy: StrategyNone}
}

// parseDirect parses the whole text as-is.
func parseDirect(raw string) (map[string]any, bool) {
	return tryParse(raw)
}

// parseBoundary slices between the first '{' and the last '}' inclusive,
// discarding any surrounding prose.
func parseBoundary(raw string) (map[string]any, bool) {
	start := strings.Index(raw, "{")
	end := strings.LastIndex(raw, "}")
	if start < 0 || end <= start {
		return nil, false
	}
	return tryParse(raw[start : end+1])
}

// parseCommaRepair truncates at the last top-level comma and auto-closes
// whatever remains open. This drops a partially emitted trailing member
// while keeping every completed sibling before it.
func parseCommaRepair(raw string) (map[string]any, bool) {
	body := fromFirstBrace(raw)
	if body == "" {
		return nil, false
	}
	cut := lastTopLevelComma(body)
	if cut < 0 {
		return nil, false
	}
	trimmed := strings.TrimRight(body[:cut], ", \t\r\n")
	return tryParse(trimmed + closeDelims(trimmed))
}

// arrayCloseRe matches a closed array immediately followed by an object
// close or a comma, i.e. a boundary right after a completed structure.
var arrayCloseRe = regexp.MustCompile(`\]\s*[},]`)

// parseArrayClose cuts at the second-to-last "]}"-like boundary. The last
// such boundary can sit inside the incomplete trailing structure, so backing
// off one match lands on a previously completed sibling.
func parseArrayClose(raw string) (map[string]any, bool) {
	body := fromFirstBrace(raw)
	if body == "" {
		return nil, false
	}
	matches := arrayCloseRe.FindAllStringIndex(body, -1)
	if len(matches) < 2 {
		return nil, false
	}
	m := matches[len(matches)-2]
	// Keep a trailing '}' from the match, but never a trailing comma.
	end := m[1]
	if body[end-1] == ',' {
		end = strings.LastIndexByte(body[m[0]:end], ']') + m[0] + 1
	}
	trimmed := body[:end]
	return tryParse(trimmed + closeDelims(trimmed))
}

func tryParse(s string) (map[string]any, bool) {
	var out map[string]any
	if err := json.Unmarshal([]byte(s), &out); err != nil {
		return nil, false
	}
	if out == nil {
		return nil, false
	}
	return out, true
}

// fromFirstBrace returns the text starting at the first '{', or "" when the
// text contains none. Truncation repair works on this suffix: unlike the
// boundary slice it keeps everything after the last '}', which is where the
// cut-off content lives.
func fromFirstBrace(raw string) string {
	if i := strings.Index(raw, "{"); i >= 0 {
		return raw[i:]
	}
	return ""
}

// lastTopLevelComma returns the index of the last comma at nesting depth 1
// (directly inside the root object), or -1. String literals are skipped.
func lastTopLevelComma(s string) int {
	last := -1
	depth := 0
	inString := false
	escaped := false
	for i := 0; i < len(s); i++ {
		c := s[i]
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
		case '{', '[':
			depth++
		case '}', ']':
			depth--
		case ',':
			if depth == 1 {
				last = i
			}
		}
	}
	return last
}

// closeDelims returns the closing characters needed to balance every '{'
// and '[' left open in s, in reverse order of opening.
func closeDelims(s string) string {
	var stack []byte
	inString := false
	escaped := false
	for i := 0; i < len(s); i++ {
		c := s[i]
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
		case '{', '[':
			stack = append(stack, c)
		case '}', ']':
			if len(stack) > 0 {
				stack = stack[:len(stack)-1]
			}
		}
	}
	var b strings.Builder
	if inString {
		b.WriteByte('"')
	}
	for i := len(stack) - 1; i >= 0; i-- {
		if stack[i] == '{' {
			b.WriteByte('}')
		} else {
			b.WriteByte(']')
		}
	}
	return b.String()
}
