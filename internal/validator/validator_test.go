package validator

import (
	"testing"

	"github.com/aretw0/simflow/pkg/domain"
	"github.com/aretw0/simflow/pkg/dsl"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func messages(issues []Issue) []string {
	out := make([]string, len(issues))
	for i, is := range issues {
		out[i] = is.String()
	}
	return out
}

func TestValidate_CleanForm(t *testing.T) {
	b := dsl.New("clean")
	b.Block("intro").Priority(1).DefaultActive().
		Question("owner", "Own a car? {{p}}").
		Select("p",
			dsl.Opt("yes", "Yes").AddBlock("cars").NextBlock(),
			dsl.Opt("no", "No").To("bye"),
		).
		Question("bye", "Thanks {{ok}}").Input("ok", "text").LeadsTo(domain.StopFlow())
	b.Block("cars").Priority(2).
		Question("fleet", "Cars {{m}}").Manager("m", "car_{copyNumber}", "Add car")
	b.Block("car_{copyNumber}").Blueprint().
		Question("car_{copyNumber}_kind", "Kind {{k}}").
		Select("k", dsl.Opt("ev", "EV").To("car_{copyNumber}_kwh"), dsl.Opt("gas", "Gas")).
		Question("car_{copyNumber}_kwh", "kWh {{v}}").Input("v", "number").Validate("min:1").Inline()

	report := Validate(b.MustBuild())
	assert.Empty(t, report.Issues, messages(report.Issues))
	assert.NoError(t, report.Err())
}

func TestValidate_Errors(t *testing.T) {
	form := &domain.Form{
		ID: "broken",
		Blocks: []domain.Block{
			{ID: "a", DefaultActive: true, Questions: []domain.Question{
				{ID: "q1", Text: "{{s}} {{m}} {{x}}", Placeholders: map[string]domain.Placeholder{
					"s": {Type: domain.PlaceholderSelect, Options: []domain.Option{
						{ID: "o", LeadsTo: domain.GoTo("ghost")},
						{ID: "o", AddBlock: "nowhere"},
					}},
					"m": {Type: domain.PlaceholderMultiBlock, BlockBlueprint: "a"},
					"x": {Type: "slider"},
				}},
			}},
			{ID: "a"},
			{ID: "bp", MultiBlock: true, Questions: []domain.Question{{ID: "plain"}}},
			{ID: "b", DefaultActive: true, Questions: []domain.Question{{ID: "q1"}}},
		},
	}

	report := Validate(form)
	errs := messages(report.Errors())
	assert.ElementsMatch(t, []string{
		"error: block a: duplicate block id",
		"error: block bp, question plain: blueprint question id lacks {copyNumber}; every copy would reuse it",
		"error: block b, question q1: duplicate question id (also in block a)",
		`error: block a, question q1, placeholder s: duplicate option id "o"`,
		`error: block a, question q1, placeholder s: leads_to "ghost" does not match any question`,
		`error: block a, question q1, placeholder s: option "o" adds unknown block "nowhere"`,
		`error: block a, question q1, placeholder m: blockBlueprint "a" is not a multiBlock blueprint`,
		`error: block a, question q1, placeholder x: unknown placeholder type "slider"`,
	}, errs)

	err := report.Err()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "found 8 errors")
}

func TestValidate_Warnings(t *testing.T) {
	form := &domain.Form{
		Blocks: []domain.Block{
			{ID: "hidden", Invisible: true, DefaultActive: true, Questions: []domain.Question{
				{ID: "q", Text: "no tokens", LeadsToPlaceholderPriority: "zz", Placeholders: map[string]domain.Placeholder{
					"v": {Type: domain.PlaceholderInput, InputType: "colour", InputValidation: "max:ten|pattern:("},
				}},
				{ID: "lonely", Inline: true},
			}},
			{ID: "orphan", Questions: []domain.Question{{ID: "o1"}}},
		},
	}

	report := Validate(form)
	assert.Empty(t, report.Errors())
	warnings := messages(report.Warnings())
	require.Len(t, warnings, 9)
	for _, want := range []string{
		"warning: form has no id",
		"warning: no visible default_active block; sessions start without an active question",
		"warning: block hidden, question q, placeholder v: placeholder is not referenced in question_text",
		`warning: block hidden, question q: leads_to_placeholder_priority names unknown placeholder "zz"`,
		`warning: block hidden, question q, placeholder v: unknown input_type "colour" is treated as text`,
		`warning: block hidden, question q, placeholder v: ignored rule: max: bound "ten" is not a number`,
		"warning: block hidden, question lonely: inline question is never the target of a leads_to",
		"warning: block orphan: block is never activated (not default_active and no add_block references it)",
	} {
		assert.Contains(t, warnings, want)
	}
	assert.NoError(t, report.Err())
}

func TestValidate_CopyIDCollision(t *testing.T) {
	b := dsl.New("pets")
	b.Block("pets").Priority(1).DefaultActive().
		Question("list", "Pets {{m}}").Manager("m", "pet_{copyNumber}", "Add a pet").
		LeadsTo(domain.StopFlow())
	b.Block("pet_2").Priority(2).DefaultActive().
		Question("special", "Special {{s}}").Input("s", "text")
	b.Block("pet_{copyNumber}").Blueprint().
		Question("pet_{copyNumber}_name", "Name {{n}}").Input("n", "text")

	report := Validate(b.MustBuild())
	assert.Empty(t, report.Errors())
	assert.Equal(t, []string{
		"warning: block pet_2: block id matches copies of blueprint pet_{copyNumber}; that copy number is skipped",
	}, messages(report.Warnings()))
}
