package schema

import (
	"errors"
	"sort"
	"strings"

	"github.com/aretw0/simflow/pkg/domain"
	validation "github.com/go-ozzo/ozzo-validation/v4"
)

// ValidateInput checks an answer against an input placeholder's type and rules.
func ValidateInput(key string, p domain.Placeholder, v domain.Value) error {
	if v.Multiple {
		return &ValidationError{Key: key, Reason: "expected a single value", Value: v.Choices}
	}
	rules := ParseRules(p.InputValidation)
	text := strings.TrimSpace(v.Text)
	if text == "" {
		if Required(rules) {
			return &ValidationError{Key: key, Reason: "required"}
		}
		return nil
	}

	t := Lookup(p.InputType)
	if err := t.Validate(text); err != nil {
		return &ValidationError{Key: key, Reason: reason(err), Value: text}
	}
	if err := validation.Validate(text, compile(t, rules)...); err != nil {
		return &ValidationError{Key: key, Reason: reason(err), Value: text}
	}
	return nil
}

// ValidateSelect checks that every chosen id is a declared option and that
// only multiple selects receive several choices.
func ValidateSelect(key string, p domain.Placeholder, v domain.Value) error {
	selected := v.Selected()
	if v.Multiple && !p.Multiple && len(selected) > 1 {
		return &ValidationError{Key: key, Reason: "only one option may be selected", Value: v.Choices}
	}
	var unknown []string
	for _, id := range selected {
		if _, ok := p.Option(id); !ok {
			unknown = append(unknown, id)
		}
	}
	if len(unknown) > 0 {
		return &ValidationError{Key: key, Reason: "unknown option " + strings.Join(unknown, ", ")}
	}
	return nil
}

// ValidateResponse checks an answer for one placeholder of a question.
func ValidateResponse(q domain.Question, key string, v domain.Value) error {
	p, ok := q.Placeholders[key]
	if !ok {
		return &ValidationError{Key: key, Reason: "not defined in question " + q.ID}
	}
	switch p.Type {
	case domain.PlaceholderSelect:
		return ValidateSelect(key, p, v)
	case domain.PlaceholderInput:
		return ValidateInput(key, p, v)
	default:
		return nil
	}
}

// ValidateAnswers checks several answers of a question at once and reports
// every failure, plus required inputs that were left out.
func ValidateAnswers(q domain.Question, answers map[string]domain.Value) error {
	keys := make([]string, 0, len(answers))
	for k := range answers {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var errs []error
	for _, k := range keys {
		if err := ValidateResponse(q, k, answers[k]); err != nil {
			errs = append(errs, err)
		}
	}
	for _, k := range q.PlaceholderKeys() {
		p := q.Placeholders[k]
		if _, given := answers[k]; given || p.Type != domain.PlaceholderInput {
			continue
		}
		if Required(ParseRules(p.InputValidation)) {
			errs = append(errs, &ValidationError{Key: k, Reason: "required"})
		}
	}

	if len(errs) > 0 {
		return &AggregateError{Errors: errs}
	}
	return nil
}

func reason(err error) string {
	var ve validation.Error
	if errors.As(err, &ve) {
		return ve.Message()
	}
	return err.Error()
}
