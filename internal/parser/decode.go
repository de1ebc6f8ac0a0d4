package parser

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"dealsheet/internal/domain"
)

// DecodeDealLetter parses a fence-free model response. Syntax errors and a
// non-object top level fail; a missing or mistyped "deal" becomes {} and a
// missing or mistyped "placements" becomes []. Placement entries that are not
// objects are dropped. Numbers keep their literal text.
func DecodeDealLetter(raw string) (*domain.DealLetter, error) {
	dec := json.NewDecoder(strings.NewReader(raw))
	dec.UseNumber()

	var top interface{}
	if err := dec.Decode(&top); err != nil {
		return nil, fmt.Errorf("decoding response: %w", err)
	}
	if err := dec.Decode(&struct{}{}); !errors.Is(err, io.EOF) {
		return nil, errors.New("decoding response: unexpected data after top-level value")
	}

	obj, ok := top.(map[string]interface{})
	if !ok {
		return nil, fmt.Errorf("decoding response: top-level value is %s, not an object", jsonKind(top))
	}

	letter := &domain.DealLetter{}
	if deal, ok := obj["deal"].(map[string]interface{}); ok {
		letter.Deal = domain.Fields(deal)
	}
	if list, ok := obj["placements"].([]interface{}); ok {
		for _, item := range list {
			if p, ok := item.(map[string]interface{}); ok {
				letter.Placements = append(letter.Placements, domain.Fields(p))
			}
		}
	}
	letter.Normalize()
	return letter, nil
}

func jsonKind(v interface{}) string {
	switch v.(type) {
	case nil:
		return "null"
	case []interface{}:
		return "an array"
	case string:
		return "a string"
	case json.Number:
		return "a number"
	case bool:
		return "a boolean"
	default:
		return fmt.Sprintf("%T", v)
	}
}
