package domain

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Value is a stored answer. Single selects and inputs hold Text;
// multiple selects hold the chosen option ids in Choices.
type Value struct {
	Text     string
	Choices  []string
	Multiple bool
}

// Text builds a single-valued answer.
func Text(s string) Value { return Value{Text: s} }

// Choices builds a multiple-select answer.
func Choices(ids ...string) Value {
	return Value{Choices: append([]string{}, ids...), Multiple: true}
}

// Selected returns the option ids represented by the value.
func (v Value) Selected() []string {
	if v.Multiple {
		out := make([]string, 0, len(v.Choices))
		for _, c := range v.Choices {
			if c != "" {
				out = append(out, c)
			}
		}
		return out
	}
	if v.Text == "" {
		return nil
	}
	return []string{v.Text}
}

// IsEmpty reports whether nothing was answered.
func (v Value) IsEmpty() bool { return len(v.Selected()) == 0 }

// String renders the value for logs and text interpolation.
func (v Value) String() string {
	if v.Multiple {
		return strings.Join(v.Choices, ", ")
	}
	return v.Text
}

// Equal compares two values.
func (v Value) Equal(o Value) bool {
	if v.Multiple != o.Multiple || v.Text != o.Text || len(v.Choices) != len(o.Choices) {
		return false
	}
	for i := range v.Choices {
		if v.Choices[i] != o.Choices[i] {
			return false
		}
	}
	return true
}

// MarshalJSON encodes a string or an array of strings.
func (v Value) MarshalJSON() ([]byte, error) {
	if v.Multiple {
		choices := v.Choices
		if choices == nil {
			choices = []string{}
		}
		return json.Marshal(choices)
	}
	return json.Marshal(v.Text)
}

// UnmarshalJSON accepts a string, an array of strings, a number or a bool.
func (v *Value) UnmarshalJSON(data []byte) error {
	var raw any
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	parsed, err := ValueOf(raw)
	if err != nil {
		return err
	}
	*v = parsed
	return nil
}

// ValueOf converts a decoded JSON/YAML value into a Value.
func ValueOf(raw any) (Value, error) {
	switch x := raw.(type) {
	case nil:
		return Value{}, nil
	case Value:
		return x, nil
	case string:
		return Text(x), nil
	case []string:
		return Choices(x...), nil
	case []any:
		ids := make([]string, 0, len(x))
		for i, item := range x {
			s, ok := item.(string)
			if !ok {
				return Value{}, fmt.Errorf("choice %d: expected string, got %T", i, item)
			}
			ids = append(ids, s)
		}
		return Choices(ids...), nil
	case bool, float64, float32, int, int64, json.Number:
		return Text(fmt.Sprint(x)), nil
	default:
		return Value{}, fmt.Errorf("unsupported answer type %T", raw)
	}
}
