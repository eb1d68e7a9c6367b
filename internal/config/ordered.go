package config

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// member is one key/value pair of a JSON object, in document order.
type member struct {
	Key   string
	Value json.RawMessage
}

// orderedMembers splits a JSON object into its members while keeping the
// order of the keys. encoding/json decodes objects into maps, which loses
// that order.
//
// A repeated key keeps the position of its first occurrence and the value of
// its last one. A missing or null value yields no members.
func orderedMembers(raw json.RawMessage) ([]member, error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return nil, nil
	}

	dec := json.NewDecoder(bytes.NewReader(trimmed))
	tok, err := dec.Token()
	if err != nil {
		return nil, err
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return nil, fmt.Errorf("expected a JSON object, got %s", describeToken(tok))
	}

	var members []member
	index := make(map[string]int)
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return nil, err
		}
		key, ok := tok.(string)
		if !ok {
			return nil, fmt.Errorf("expected an object key, got %s", describeToken(tok))
		}

		var value json.RawMessage
		if err := dec.Decode(&value); err != nil {
			return nil, fmt.Errorf("decoding %q: %w", key, err)
		}

		if i, seen := index[key]; seen {
			members[i].Value = value
			continue
		}
		index[key] = len(members)
		members = append(members, member{Key: key, Value: value})
	}

	// Closing brace.
	if _, err := dec.Token(); err != nil {
		return nil, err
	}
	return members, nil
}

func describeToken(tok json.Token) string {
	switch v := tok.(type) {
	case json.Delim:
		if v == '[' {
			return "an array"
		}
		return fmt.Sprintf("%q", v.String())
	case string:
		return "a string"
	case float64, json.Number:
		return "a number"
	case bool:
		return "a boolean"
	case nil:
		return "null"
	default:
		return fmt.Sprintf("%T", tok)
	}
}
