package domain

import (
	"encoding/json"
	"strconv"
	"strings"
)

// Fields is a loosely typed JSON object as returned by the extraction model.
// Every key is optional and values may be strings, numbers, booleans or null.
type Fields map[string]any

// Text returns the value stored under key rendered as a trimmed string.
// Absent keys, null values and blank strings all yield "".
func (f Fields) Text(key string) string {
	if f == nil {
		return ""
	}
	v, ok := f[key]
	if !ok || v == nil {
		return ""
	}
	switch t := v.(type) {
	case string:
		return strings.TrimSpace(t)
	case json.Number:
		return t.String()
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case float32:
		return strconv.FormatFloat(float64(t), 'f', -1, 32)
	case int:
		return strconv.Itoa(t)
	case int64:
		return strconv.FormatInt(t, 10)
	case bool:
		return strconv.FormatBool(t)
	default:
		b, err := json.Marshal(t)
		if err != nil {
			return ""
		}
		return string(b)
	}
}

// Has reports whether key carries a non-empty value.
func (f Fields) Has(key string) bool {
	return f.Text(key) != ""
}

// DealLetter is the structured form of one advertising deal letter: a single
// deal and its placements in document order.
type DealLetter struct {
	Deal       Fields   `json:"deal"`
	Placements []Fields `json:"placements"`
}

// Normalize replaces a missing deal or placement list with empty values so
// that every consumer can range over the letter without nil checks.
func (l *DealLetter) Normalize() {
	if l.Deal == nil {
		l.Deal = Fields{}
	}
	if l.Placements == nil {
		l.Placements = []Fields{}
	}
	for i := range l.Placements {
		if l.Placements[i] == nil {
			l.Placements[i] = Fields{}
		}
	}
}

// Conversion describes one finished PDF to spreadsheet conversion.
type Conversion struct {
	ID              string `json:"id"`
	RequestID       string `json:"request_id"`
	SourceName      string `json:"source_name"`
	OutputPath      string `json:"output_path"`
	TextChars       int    `json:"text_chars"`
	Placements      int    `json:"placements"`
	ModelUsed       string `json:"model_used"`
	ArchiveLocation string `json:"archive_location,omitempty"`
}
