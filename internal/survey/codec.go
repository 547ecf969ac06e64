// Package survey holds the response model rules shared by submission,
// detail views, aggregation and exports: answer value encoding, conditional
// question resolution and per-question result statistics.
package survey

import (
	"encoding/json"
	"strings"
)

// Value is a decoded answer: either a single scalar or a list of selected
// option labels (multi-choice).
type Value struct {
	Scalar string
	List   []string
	IsList bool
}

// ScalarValue wraps a single stored value.
func ScalarValue(s string) Value { return Value{Scalar: s} }

// ListValue wraps a multi-choice selection.
func ListValue(items []string) Value { return Value{List: items, IsList: true} }

// Encode normalizes a value to the single stored text form: lists become a
// JSON array string, scalars are stored as-is.
func Encode(v Value) (string, error) {
	if !v.IsList {
		return v.Scalar, nil
	}
	raw, err := json.Marshal(v.List)
	if err != nil {
		return "", err
	}
	return string(raw), nil
}

// Decode parses a stored answer value. A JSON array yields a list; anything
// else yields a scalar with wrapping quote characters stripped, tolerating
// single values that were JSON-encoded upstream.
func Decode(stored string) Value {
	trimmed := strings.TrimSpace(stored)
	if strings.HasPrefix(trimmed, "[") {
		var raw []json.RawMessage
		if err := json.Unmarshal([]byte(trimmed), &raw); err == nil {
			items := make([]string, len(raw))
			for i, r := range raw {
				var s string
				if err := json.Unmarshal(r, &s); err == nil {
					items[i] = s
				} else {
					items[i] = string(r)
				}
			}
			return ListValue(items)
		}
	}
	return ScalarValue(strings.Trim(stored, `"`))
}

// Display renders the value for tabular output: lists are comma-joined.
func (v Value) Display() string {
	if v.IsList {
		return strings.Join(v.List, ", ")
	}
	return v.Scalar
}

// Elements returns the selected labels: the list itself, or the scalar as a
// one-element slice. Used by aggregation so both shapes tally uniformly.
func (v Value) Elements() []string {
	if v.IsList {
		return v.List
	}
	return []string{v.Scalar}
}
