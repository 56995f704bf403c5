// Package aiparse extracts a structured result from free-form model output.
package aiparse

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"
)

// ActionMessage is the action of a plain-message result.
const ActionMessage = "message"

// Source records which extraction tier produced a Result.
type Source int

const (
	SourceFence    Source = iota // ```json fenced block
	SourceWhole                  // the entire text
	SourceBraces                 // first '{' to last '}'
	SourceFallback               // nothing parsed; raw text wrapped as a message
)

func (s Source) String() string {
	switch s {
	case SourceFence:
		return "fence"
	case SourceWhole:
		return "whole"
	case SourceBraces:
		return "braces"
	default:
		return "fallback"
	}
}

// Result is the structured outcome of Parse.
type Result struct {
	Action  string
	Message string
	Fields  map[string]any // the full decoded object
	Raw     string
	Source  Source
}

// Fallback reports whether parsing failed and the raw text was wrapped.
func (r Result) Fallback() bool { return r.Source == SourceFallback }

// Decode converts the parsed object into v via a JSON round trip.
func (r Result) Decode(v any) error {
	data, err := json.Marshal(r.Fields)
	if err != nil {
		return fmt.Errorf("aiparse: re-encode: %w", err)
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("aiparse: decode: %w", err)
	}
	return nil
}

var fenceRe = regexp.MustCompile("(?is)```json\\s*(.*?)\\s*```")

// Parse never fails: fenced ```json block, then the whole text, then the
// outermost brace span; if none decodes to a JSON object the raw text is
// returned as {action: "message", message: raw}.
func Parse(raw string) Result {
	if m := fenceRe.FindStringSubmatch(raw); m != nil {
		if obj, ok := decodeObject(m[1]); ok {
			return newResult(obj, raw, SourceFence)
		}
	}
	if obj, ok := decodeObject(raw); ok {
		return newResult(obj, raw, SourceWhole)
	}
	if start, end := strings.Index(raw, "{"), strings.LastIndex(raw, "}"); start >= 0 && end > start {
		if obj, ok := decodeObject(raw[start : end+1]); ok {
			return newResult(obj, raw, SourceBraces)
		}
	}
	return Result{
		Action:  ActionMessage,
		Message: raw,
		Fields:  map[string]any{"action": ActionMessage, "message": raw},
		Raw:     raw,
		Source:  SourceFallback,
	}
}

func decodeObject(s string) (map[string]any, bool) {
	s = strings.TrimSpace(s)
	if s == "" || s[0] != '{' {
		return nil, false
	}
	var obj map[string]any
	if err := json.Unmarshal([]byte(s), &obj); err != nil || obj == nil {
		return nil, false
	}
	return obj, true
}

func newResult(obj map[string]any, raw string, src Source) Result {
	r := Result{Fields: obj, Raw: raw, Source: src}
	r.Action, _ = obj["action"].(string)
	r.Message, _ = obj["message"].(string)
	return r
}
