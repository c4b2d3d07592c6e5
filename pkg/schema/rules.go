package schema

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"unicode/utf8"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

// Rule is one parsed entry of an input_validation string.
type Rule struct {
	Name string
	Arg  string
}

func (r Rule) String() string {
	if r.Arg == "" {
		return r.Name
	}
	return r.Name + ":" + r.Arg
}

// ParseRules splits an input_validation string. A pattern swallows the rest
// of the string, since regular expressions may contain "|".
func ParseRules(s string) []Rule {
	var rules []Rule
	for s != "" {
		var part string
		if strings.HasPrefix(strings.TrimSpace(s), "pattern:") {
			part, s = strings.TrimSpace(s), ""
		} else {
			part, s, _ = strings.Cut(s, "|")
		}
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		name, arg, _ := strings.Cut(part, ":")
		rules = append(rules, Rule{Name: strings.ToLower(strings.TrimSpace(name)), Arg: arg})
	}
	return rules
}

// Required reports whether the rules demand an answer.
func Required(rules []Rule) bool {
	for _, r := range rules {
		if r.Name == "required" {
			return true
		}
	}
	return false
}

// CheckRule reports whether a rule is well formed. Unknown rule names are
// accepted, they are ignored at validation time.
func CheckRule(r Rule) error {
	switch r.Name {
	case "min", "max":
		if _, err := strconv.ParseFloat(r.Arg, 64); err != nil {
			return fmt.Errorf("%s: bound %q is not a number", r.Name, r.Arg)
		}
	case "pattern":
		if _, err := regexp.Compile(r.Arg); err != nil {
			return fmt.Errorf("pattern: %w", err)
		}
	}
	return nil
}

// compile turns rules into ozzo rules for a type. Rules with a malformed
// argument are skipped.
func compile(t Type, rules []Rule) []validation.Rule {
	var out []validation.Rule
	for _, r := range rules {
		if CheckRule(r) != nil {
			continue
		}
		switch r.Name {
		case "min", "max":
			out = append(out, bound(t, r))
		case "pattern":
			out = append(out, validation.Match(regexp.MustCompile(r.Arg)).Error("does not match "+r.Arg))
		}
	}
	return out
}

func bound(t Type, r Rule) validation.Rule {
	limit, _ := strconv.ParseFloat(r.Arg, 64)
	isMin := r.Name == "min"

	return validation.By(func(value any) error {
		s, _ := value.(string)
		var got float64
		switch t.Kind() {
		case KindNumeric:
			bt, ok := t.(*basicType)
			if !ok {
				return nil
			}
			n, err := bt.number(s)
			if err != nil {
				return nil
			}
			got = n
		case KindDate:
			// min and max do not apply to dates.
			return nil
		default:
			got = float64(utf8.RuneCountInString(s))
		}

		switch {
		case isMin && got < limit:
			return fmt.Errorf("must be at least %s%s", r.Arg, unit(t))
		case !isMin && got > limit:
			return fmt.Errorf("must be at most %s%s", r.Arg, unit(t))
		}
		return nil
	})
}

func unit(t Type) string {
	if t.Kind() == KindText {
		return " characters"
	}
	return ""
}
