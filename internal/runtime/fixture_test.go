package runtime_test

import (
	"time"

	"github.com/aretw0/simflow/internal/runtime"
	"github.com/aretw0/simflow/pkg/domain"
)

var fixedNow = time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

func newReducer(form *domain.Form) *runtime.Reducer {
	return runtime.NewReducer(form, runtime.WithClock(func() time.Time { return fixedNow }))
}

func selectQ(id, text string, multiple bool, opts ...domain.Option) domain.Question {
	return domain.Question{
		ID:   id,
		Text: text,
		Placeholders: map[string]domain.Placeholder{
			"p": {Type: domain.PlaceholderSelect, Multiple: multiple, Options: opts},
		},
	}
}

func inputQ(id string, leadsTo domain.Target) domain.Question {
	return domain.Question{
		ID:   id,
		Text: "{{p}}",
		Placeholders: map[string]domain.Placeholder{
			"p": {Type: domain.PlaceholderInput, InputType: "text", LeadsTo: leadsTo},
		},
	}
}

// surveyForm exercises activation, dynamic blocks and cascades.
func surveyForm() *domain.Form {
	return &domain.Form{
		ID: "survey",
		Blocks: []domain.Block{
			{
				ID: "main", Priority: 1, DefaultActive: true,
				Questions: []domain.Question{
					selectQ("has", "Do you have one? {{p}}", false,
						domain.Option{ID: "yes", Label: "Yes", AddBlock: "extra", LeadsTo: domain.NextBlock()},
						domain.Option{ID: "no", Label: "No", LeadsTo: domain.NextBlock()},
						domain.Option{ID: "car", Label: "A car", AddBlock: "car_{copyNumber}"},
					),
					selectQ("which", "Which? {{p}}", true,
						domain.Option{ID: "a", Label: "A", AddBlock: "extra"},
						domain.Option{ID: "b", Label: "B", AddBlock: "extra"},
						domain.Option{ID: "c", Label: "C"},
						domain.Option{ID: "d", Label: "D", AddBlock: "garage"},
					),
				},
			},
			{
				ID: "garage", Priority: 3, DefaultActive: true,
				Questions: []domain.Question{{
					ID:   "cars",
					Text: "Your cars {{cars}}",
					Placeholders: map[string]domain.Placeholder{
						"cars": {Type: domain.PlaceholderMultiBlock, BlockBlueprint: "car_{copyNumber}", LeadsTo: domain.NextBlock()},
					},
				}},
			},
			{
				ID: "extra", Priority: 5,
				Questions: []domain.Question{inputQ("extra_q", domain.NextBlock())},
			},
			{
				ID: "car_{copyNumber}", MultiBlock: true,
				Questions: []domain.Question{
					selectQ("car_{copyNumber}_make", "Engine {{p}}", false,
						domain.Option{ID: "ev", Label: "Electric", LeadsTo: domain.GoTo("car_{copyNumber}_battery")},
						domain.Option{ID: "gas", Label: "Gas", LeadsTo: domain.NextBlock()},
						domain.Option{ID: "truck", Label: "Truck", AddBlock: "extra", LeadsTo: domain.GoTo("has")},
					),
					{
						ID:     "car_{copyNumber}_battery",
						Text:   "Battery {{p}}",
						Inline: true,
						Placeholders: map[string]domain.Placeholder{
							"p": {Type: domain.PlaceholderInput, LeadsTo: domain.NextBlock()},
						},
					},
				},
			},
		},
	}
}

// exampleForm is the two block intro/details flow.
func exampleForm() *domain.Form {
	return &domain.Form{
		ID: "example",
		Blocks: []domain.Block{
			{
				ID: "intro", Priority: 1, DefaultActive: true,
				Questions: []domain.Question{{
					ID:   "q1",
					Text: "Ready? {{p1}}",
					Placeholders: map[string]domain.Placeholder{
						"p1": {Type: domain.PlaceholderSelect, Options: []domain.Option{
							{ID: "o1", Label: "Yes", LeadsTo: domain.NextBlock()},
						}},
					},
				}},
			},
			{
				ID: "details", Priority: 2, DefaultActive: true,
				Questions: []domain.Question{inputQ("q2", domain.NextBlock())},
			},
		},
	}
}

// priorityForm declares C, A, B with priorities 3, 1, 2.
func priorityForm() *domain.Form {
	block := func(id string, priority float64) domain.Block {
		return domain.Block{
			ID: id, Priority: priority, DefaultActive: true,
			Questions: []domain.Question{inputQ(id+"1", domain.NextBlock()), inputQ(id+"2", domain.NextBlock())},
		}
	}
	return &domain.Form{
		ID:     "priority",
		Blocks: []domain.Block{block("C", 3), block("A", 1), block("B", 2)},
	}
}
