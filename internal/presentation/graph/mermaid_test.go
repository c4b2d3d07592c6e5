package graph_test

import (
	"strings"
	"testing"

	"github.com/aretw0/simflow/internal/presentation/graph"
	"github.com/aretw0/simflow/pkg/domain"
	"github.com/aretw0/simflow/pkg/dsl"
	"github.com/aretw0/simflow/pkg/flowgraph"
	"github.com/stretchr/testify/assert"
)

func carLayout() flowgraph.Layout {
	b := dsl.New("cars")
	b.Block("car-{copyNumber}").Blueprint().
		Question("kind", "Pick {{p}}").
		Select("p",
			dsl.Opt("ev", "Electric").To("battery"),
			dsl.Opt("gas", "Gas").NextBlock(),
			dsl.Opt("none", "No \"car\"").StopFlow(),
		).
		Question("battery", "Battery {{k}}").
		Input("k", "number").LeadsTo(domain.GoTo("kind")).Inline()
	form := b.MustBuild()
	return flowgraph.Analyze(form.Blocks[0])
}

func TestGenerateMermaid(t *testing.T) {
	out := graph.GenerateMermaid(carLayout(), nil)

	tests := []struct {
		name     string
		contains []string
	}{
		{"header", []string{"graph TD\n"}},
		{"levels", []string{`subgraph L0["Level 0"]`, `subgraph L1["Level 1"]`, "    end\n"}},
		{"shapes", []string{
			`kind{"kind<br/>Pick {{p}}"}`,
			`battery(["battery<br/>Battery {{k}}"])`,
		}},
		{"forward edge", []string{`kind -- "Electric" --> battery`}},
		{"back edge", []string{"battery -.-> kind"}},
		{"terminals", []string{
			`t_next_block[["next block"]]`,
			`t_stop_flow(("stop"))`,
			`kind -- "Gas" --> t_next_block`,
			`kind -- "No 'car'" --> t_stop_flow`,
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for _, s := range tt.contains {
				assert.Contains(t, out, s)
			}
		})
	}
	assert.NotContains(t, out, "classDef")
	assert.Equal(t, 1, strings.Count(out, `t_stop_flow((`))
}

func TestGenerateMermaid_Overlay(t *testing.T) {
	out := graph.GenerateMermaid(carLayout(), &graph.Overlay{
		Answered: []string{"kind", "kind", "elsewhere"},
		Current:  "battery",
	})

	assert.Contains(t, out, "classDef answered")
	assert.Equal(t, 1, strings.Count(out, "class kind answered;"))
	assert.Contains(t, out, "class battery current;")
	assert.NotContains(t, out, "elsewhere")
}

func TestGenerateMermaid_Empty(t *testing.T) {
	out := graph.GenerateMermaid(flowgraph.Analyze(domain.Block{ID: "empty"}), nil)
	assert.Equal(t, "graph TD\n", out)
}

func TestGenerateMermaid_LongTextAndIDs(t *testing.T) {
	b := dsl.New("long")
	b.Block("b").Question("q.1-{copyNumber}", strings.Repeat("word ", 20)+"{{x}}").
		Input("x", "text").LeadsTo(domain.StopFlow())
	form := b.MustBuild()

	out := graph.GenerateMermaid(flowgraph.Analyze(form.Blocks[0]), nil)
	assert.Contains(t, out, "q_1__copyNumber_((")
	assert.Contains(t, out, "…")
	assert.NotContains(t, out, "{{x}}")
}
