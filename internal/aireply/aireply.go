// Package aireply extracts structured data from text-generation replies.
// Models are instructed to return bare JSON but routinely wrap it in
// markdown code fences or drift from the requested shape; every call
// site has an explicit fallback policy instead of trusting the reply.
package aireply

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Clean strips markdown code fences and surrounding whitespace.
func Clean(reply string) string {
	cleaned := strings.ReplaceAll(reply, "```json", "")
	cleaned = strings.ReplaceAll(cleaned, "```", "")
	return strings.TrimSpace(cleaned)
}

// Decode cleans the reply and unmarshals it into v. There is no
// fallback here; callers that can degrade choose their own default.
func Decode(reply string, v any) error {
	cleaned := Clean(reply)
	if cleaned == "" {
		return fmt.Errorf("empty reply")
	}
	if err := json.Unmarshal([]byte(cleaned), v); err != nil {
		return fmt.Errorf("decode reply: %w", err)
	}
	return nil
}

// StringList decodes a JSON array of strings, falling back to splitting
// the raw reply on newlines when the JSON is malformed. Used for key
// points and headings, where a line-per-entry reply is still usable.
func StringList(reply string) []string {
	var items []string
	if err := Decode(reply, &items); err == nil {
		out := make([]string, 0, len(items))
		for _, item := range items {
			if trimmed := strings.TrimSpace(item); trimmed != "" {
				out = append(out, trimmed)
			}
		}
		return out
	}

	var out []string
	for _, line := range strings.Split(reply, "\n") {
		if trimmed := strings.TrimSpace(line); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
