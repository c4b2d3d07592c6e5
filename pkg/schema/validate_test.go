package schema_test

import (
	"testing"

	"github.com/aretw0/simflow/pkg/domain"
	"github.com/aretw0/simflow/pkg/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func input(inputType, rules string) domain.Placeholder {
	return domain.Placeholder{Type: domain.PlaceholderInput, InputType: inputType, InputValidation: rules}
}

func TestValidateInput(t *testing.T) {
	tests := []struct {
		name    string
		p       domain.Placeholder
		value   string
		wantErr string
	}{
		{"text accepts anything", input("", ""), "hello", ""},
		{"empty optional", input("number", ""), "", ""},
		{"required empty", input("text", "required"), "  ", "required"},
		{"number", input("number", ""), "3.5", ""},
		{"number rejects words", input("number", ""), "three", "must be a number"},
		{"integer rejects fraction", input("integer", ""), "3.5", "whole number"},
		{"integer min", input("integer", "min:18"), "17", "at least 18"},
		{"integer max", input("integer", "min:18|max:99"), "100", "at most 99"},
		{"zero below min", input("number", "min:1"), "0", "at least 1"},
		{"email", input("email", "required"), "ana@example.com", ""},
		{"bad email", input("email", ""), "ana@", "email"},
		{"phone", input("phone", ""), "+55 (11) 91234-5678", ""},
		{"bad phone", input("phone", ""), "call me", "phone"},
		{"date", input("date", ""), "2024-02-29", ""},
		{"bad date", input("date", ""), "29/02/2024", "YYYY-MM-DD"},
		{"currency symbol and separators", input("currency", "max:2000"), "$1,250.50", ""},
		{"currency above max", input("currency", "max:1000"), "1,250", "at most 1000"},
		{"percentage", input("percentage", ""), "45%", ""},
		{"percentage out of range", input("percentage", ""), "120", "between 0 and 100"},
		{"text length", input("text", "min:3"), "ab", "at least 3 characters"},
		{"text length counts runes", input("text", "max:3"), "ção", ""},
		{"pattern", input("text", "pattern:^[A-Z]{3}-[0-9]{4}$"), "ABC-1234", ""},
		{"pattern mismatch", input("text", "pattern:^[A-Z]{3}$"), "abc", "does not match"},
		{"pattern with alternation", input("text", "required|pattern:^(cat|dog)$"), "dog", ""},
		{"unknown type is text", input("colour", "max:3"), "blue", "at most 3"},
		{"unknown rule ignored", input("text", "shiny|min:1"), "x", ""},
		{"malformed bound ignored", input("number", "min:abc"), "5", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := schema.ValidateInput("k", tt.p, domain.Text(tt.value))
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestValidateInput_RejectsChoices(t *testing.T) {
	err := schema.ValidateInput("k", input("text", ""), domain.Choices("a", "b"))
	assert.ErrorContains(t, err, "single value")
}

func TestParseRules(t *testing.T) {
	rules := schema.ParseRules(" required | min:2 |pattern:^(a|b)$")
	require.Len(t, rules, 3)
	assert.Equal(t, "required", rules[0].String())
	assert.Equal(t, schema.Rule{Name: "min", Arg: "2"}, rules[1])
	assert.Equal(t, schema.Rule{Name: "pattern", Arg: "^(a|b)$"}, rules[2])
	assert.True(t, schema.Required(rules))

	assert.Empty(t, schema.ParseRules(""))
	assert.Error(t, schema.CheckRule(schema.Rule{Name: "pattern", Arg: "("}))
	assert.Error(t, schema.CheckRule(schema.Rule{Name: "max", Arg: "ten"}))
	assert.NoError(t, schema.CheckRule(schema.Rule{Name: "whatever"}))
}

func TestValidateResponse(t *testing.T) {
	q := domain.Question{
		ID:   "q",
		Text: "{{pick}} {{many}} {{age}} {{cars}}",
		Placeholders: map[string]domain.Placeholder{
			"pick": {Type: domain.PlaceholderSelect, Options: []domain.Option{{ID: "a"}, {ID: "b"}}},
			"many": {Type: domain.PlaceholderSelect, Multiple: true, Options: []domain.Option{{ID: "x"}, {ID: "y"}}},
			"age":  input("integer", "required|min:0"),
			"cars": {Type: domain.PlaceholderMultiBlock, BlockBlueprint: "car"},
		},
	}

	assert.NoError(t, schema.ValidateResponse(q, "pick", domain.Text("a")))
	assert.ErrorContains(t, schema.ValidateResponse(q, "pick", domain.Text("z")), "unknown option z")
	assert.ErrorContains(t, schema.ValidateResponse(q, "pick", domain.Choices("a", "b")), "only one")
	assert.NoError(t, schema.ValidateResponse(q, "many", domain.Choices("x", "y")))
	assert.NoError(t, schema.ValidateResponse(q, "many", domain.Choices()))
	assert.ErrorContains(t, schema.ValidateResponse(q, "age", domain.Text("-1")), "at least 0")
	assert.NoError(t, schema.ValidateResponse(q, "cars", domain.Text("anything")))
	assert.ErrorContains(t, schema.ValidateResponse(q, "nope", domain.Text("a")), "not defined")
}

func TestValidateAnswers_Aggregates(t *testing.T) {
	q := domain.Question{
		ID:   "q",
		Text: "{{name}} {{age}}",
		Placeholders: map[string]domain.Placeholder{
			"name": input("text", "required"),
			"age":  input("integer", "required"),
		},
	}

	err := schema.ValidateAnswers(q, map[string]domain.Value{"age": domain.Text("x")})
	errs := schema.ValidationErrors(err)
	require.Len(t, errs, 2)

	var keys []string
	for _, e := range errs {
		var ve *schema.ValidationError
		require.ErrorAs(t, e, &ve)
		keys = append(keys, ve.Key)
	}
	assert.Equal(t, []string{"age", "name"}, keys)
	assert.Contains(t, err.Error(), "2 validation errors")

	assert.NoError(t, schema.ValidateAnswers(q, map[string]domain.Value{
		"name": domain.Text("Ana"),
		"age":  domain.Text("30"),
	}))
}

func TestLookup(t *testing.T) {
	assert.Equal(t, "text", schema.Lookup("").Name())
	assert.Equal(t, "email", schema.Lookup(" EMAIL ").Name())
	assert.Equal(t, schema.KindNumeric, schema.Lookup("currency").Kind())
	assert.True(t, schema.Known("date"))
	assert.False(t, schema.Known("colour"))
}
