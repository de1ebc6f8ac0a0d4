package parser

import "strings"

const fence = "```"

// StripCodeFences removes a surrounding markdown code fence, with or without a
// language tag, from a model response. Unfenced input is returned trimmed.
func StripCodeFences(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, fence) {
		return s
	}

	nl := strings.Index(s, "\n")
	if nl < 0 {
		// Single line: ```json {...}```
		s = strings.TrimPrefix(s, fence)
		s = strings.TrimSuffix(s, fence)
		s = strings.TrimPrefix(strings.TrimSpace(s), "json")
		return strings.TrimSpace(s)
	}

	last := strings.LastIndex(s, fence)
	if last > nl {
		return strings.TrimSpace(s[nl+1 : last])
	}
	// Opening fence without a closing one.
	return strings.TrimSpace(s[nl+1:])
}
