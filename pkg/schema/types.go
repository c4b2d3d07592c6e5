package schema

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

// Kind tells rules how to interpret bounds for a type.
type Kind int

const (
	// KindText bounds the length of the answer in characters.
	KindText Kind = iota
	// KindNumeric bounds the parsed number.
	KindNumeric
	// KindDate bounds the date in YYYY-MM-DD form.
	KindDate
)

// Type defines the contract for an input type.
type Type interface {
	// Name returns the input_type it implements.
	Name() string
	// Kind reports how min and max apply.
	Kind() Kind
	// Validate checks the syntax of a non-empty answer.
	Validate(value string) error
}

type basicType struct {
	name  string
	kind  Kind
	rules []validation.Rule
	parse func(string) (float64, error)
}

func (t *basicType) Name() string { return t.name }
func (t *basicType) Kind() Kind   { return t.kind }

func (t *basicType) Validate(value string) error {
	if t.parse != nil {
		if _, err := t.parse(value); err != nil {
			return err
		}
	}
	return validation.Validate(value, t.rules...)
}

// number parses the answer of a numeric type.
func (t *basicType) number(value string) (float64, error) {
	if t.parse == nil {
		return 0, fmt.Errorf("%s is not numeric", t.name)
	}
	return t.parse(value)
}

var (
	emailPattern = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)
	phonePattern = regexp.MustCompile(`^\+?[0-9 ()\-.]{7,20}$`)
)

func parseFloat(s string) (float64, error) {
	f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return 0, errors.New("must be a number")
	}
	return f, nil
}

func parseInt(s string) (float64, error) {
	i, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64)
	if err != nil {
		return 0, errors.New("must be a whole number")
	}
	return float64(i), nil
}

func parseCurrency(s string) (float64, error) {
	s = strings.TrimSpace(s)
	s = strings.TrimLeft(s, "$€£¥R ")
	s = strings.ReplaceAll(s, ",", "")
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, errors.New("must be an amount")
	}
	return f, nil
}

func parsePercentage(s string) (float64, error) {
	f, err := parseFloat(strings.TrimSuffix(strings.TrimSpace(s), "%"))
	if err != nil {
		return 0, errors.New("must be a percentage")
	}
	if f < 0 || f > 100 {
		return 0, errors.New("must be between 0 and 100")
	}
	return f, nil
}

var types = map[string]Type{
	"text":       &basicType{name: "text", kind: KindText},
	"number":     &basicType{name: "number", kind: KindNumeric, parse: parseFloat},
	"integer":    &basicType{name: "integer", kind: KindNumeric, parse: parseInt},
	"currency":   &basicType{name: "currency", kind: KindNumeric, parse: parseCurrency},
	"percentage": &basicType{name: "percentage", kind: KindNumeric, parse: parsePercentage},
	"email": &basicType{name: "email", kind: KindText, rules: []validation.Rule{
		validation.Match(emailPattern).Error("must be an email address"),
	}},
	"phone": &basicType{name: "phone", kind: KindText, rules: []validation.Rule{
		validation.Match(phonePattern).Error("must be a phone number"),
	}},
	"date": &basicType{name: "date", kind: KindDate, rules: []validation.Rule{
		validation.Date("2006-01-02").Error("must be a date (YYYY-MM-DD)"),
	}},
}

// Lookup returns the type registered for an input_type. Empty and unknown
// names resolve to text.
func Lookup(inputType string) Type {
	if t, ok := types[strings.ToLower(strings.TrimSpace(inputType))]; ok {
		return t
	}
	return types["text"]
}

// Known reports whether inputType names a built-in type.
func Known(inputType string) bool {
	_, ok := types[strings.ToLower(strings.TrimSpace(inputType))]
	return ok || inputType == ""
}
