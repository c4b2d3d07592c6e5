package runtime_test

import (
	"testing"

	"github.com/aretw0/simflow/internal/runtime"
	"github.com/aretw0/simflow/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNavigate_ExampleScenario(t *testing.T) {
	r := newReducer(exampleForm())
	s := r.Dispatch(r.Init(), domain.SetResponseAction("q1", "p1", domain.Text("o1")))

	s, out := r.Navigate(s, "q1", domain.NextBlock())

	assert.Equal(t, runtime.OutcomeMoved, out.Kind)
	assert.Equal(t, domain.QuestionRef{BlockID: "details", QuestionID: "q2"}, s.ActiveQuestion)
	assert.Contains(t, s.CompletedBlocks, "intro")
	assert.Equal(t, "intro", out.Completed)
	assert.True(t, s.IsNavigating)
}

func TestNavigate_NextBlockOrder(t *testing.T) {
	r := newReducer(priorityForm())
	s := r.Init()
	require.Equal(t, domain.QuestionRef{BlockID: "A", QuestionID: "A1"}, s.ActiveQuestion)

	tests := []struct {
		name   string
		mutate func(*domain.Form, *domain.FormState) *domain.FormState
		want   domain.QuestionRef
	}{
		{
			name: "lands on the next priority",
			want: domain.QuestionRef{BlockID: "B", QuestionID: "B1"},
		},
		{
			name: "skips invisible blocks",
			mutate: func(f *domain.Form, s *domain.FormState) *domain.FormState {
				f.Blocks[2].Invisible = true
				return s
			},
			want: domain.QuestionRef{BlockID: "C", QuestionID: "C1"},
		},
		{
			name: "skips inactive blocks",
			mutate: func(f *domain.Form, s *domain.FormState) *domain.FormState {
				return r.Dispatch(s, domain.RemoveActiveBlockAction("B"))
			},
			want: domain.QuestionRef{BlockID: "C", QuestionID: "C1"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			form := priorityForm()
			r := newReducer(form)
			s := r.Init()
			if tt.mutate != nil {
				s = tt.mutate(form, s)
			}
			got, out := r.Navigate(s, "A1", domain.NextBlock())
			assert.Equal(t, runtime.OutcomeMoved, out.Kind)
			assert.Equal(t, tt.want, got.ActiveQuestion)
			assert.Equal(t, []string{"A"}, got.CompletedBlocks)
		})
	}
}

func TestNavigate_EqualPrioritiesKeepInsertionOrder(t *testing.T) {
	form := priorityForm()
	for i := range form.Blocks {
		form.Blocks[i].Priority = 1
	}
	r := newReducer(form)

	s, _ := r.Navigate(r.Init(), "C1", domain.NextBlock())
	assert.Equal(t, "A", s.ActiveQuestion.BlockID)
}

func TestNavigate_FallsBackWithinBlock(t *testing.T) {
	form := &domain.Form{Blocks: []domain.Block{{
		ID: "solo", Priority: 1, DefaultActive: true,
		Questions: []domain.Question{inputQ("s1", domain.NextBlock()), inputQ("s2", domain.NextBlock())},
	}}}
	r := newReducer(form)

	s, out := r.Navigate(r.Init(), "s1", domain.NextBlock())
	assert.Equal(t, runtime.OutcomeMoved, out.Kind)
	assert.Equal(t, domain.QuestionRef{BlockID: "solo", QuestionID: "s2"}, s.ActiveQuestion)
	assert.Empty(t, s.CompletedBlocks, "in-block fallback does not complete the block")

	s, out = r.Navigate(s, "s2", domain.NextBlock())
	assert.Equal(t, runtime.OutcomeEnd, out.Kind)
	assert.Equal(t, "s2", s.ActiveQuestion.QuestionID)
	assert.True(t, s.IsCompleted("solo"))
}

func TestNavigate_ZeroTargetMeansNextBlock(t *testing.T) {
	r := newReducer(exampleForm())
	s, out := r.Navigate(r.Init(), "q1", domain.Target{})
	assert.Equal(t, runtime.OutcomeMoved, out.Kind)
	assert.Equal(t, "q2", s.ActiveQuestion.QuestionID)
}

func TestNavigate_StopFlow(t *testing.T) {
	r := newReducer(exampleForm())
	s0 := r.Init()

	s, out := r.Navigate(s0, "q1", domain.StopFlow())

	assert.Equal(t, runtime.OutcomeStopped, out.Kind)
	assert.True(t, s.Finished)
	assert.True(t, s.IsCompleted("intro"))
	assert.Equal(t, s0.ActiveQuestion, s.ActiveQuestion)

	s = r.GoTo(s, "intro", "q1")
	assert.False(t, s.Finished)
	assert.True(t, s.IsNavigating)
}

func TestNavigate_LiteralQuestion(t *testing.T) {
	r := newReducer(surveyForm())
	s0 := r.Init()

	s, out := r.Navigate(s0, "has", domain.GoTo("extra_q"))
	assert.Equal(t, runtime.OutcomeMoved, out.Kind)
	assert.Equal(t, domain.QuestionRef{BlockID: "extra", QuestionID: "extra_q"}, s.ActiveQuestion)
	assert.Empty(t, s.CompletedBlocks, "jumps never complete blocks")
	require.Len(t, s.NavigationHistory, 1)
	assert.Equal(t, domain.NavigationEntry{
		FromBlockID: "main", FromQuestionID: "has",
		ToBlockID: "extra", ToQuestionID: "extra_q",
		Timestamp: fixedNow,
	}, s.NavigationHistory[0])

	t.Run("repeated jumps are deduplicated", func(t *testing.T) {
		again, _ := r.Navigate(s, "which", domain.GoTo("extra_q"))
		again, _ = r.Navigate(again, "has", domain.GoTo("extra_q"))
		require.Len(t, again.NavigationHistory, 2)
		assert.Equal(t, "which", again.NavigationHistory[0].FromQuestionID)
		assert.Equal(t, "has", again.NavigationHistory[1].FromQuestionID)
	})

	t.Run("unresolved ids are a no-op", func(t *testing.T) {
		got, out := r.Navigate(s, "extra_q", domain.GoTo("missing"))
		assert.Equal(t, runtime.OutcomeUnresolved, out.Kind)
		assert.Equal(t, s, got)
	})
}

func TestNavigate_UnknownCurrentQuestion(t *testing.T) {
	r := newReducer(exampleForm())
	s0 := r.Init()
	s, out := r.Navigate(s0, "nope", domain.NextBlock())
	assert.Equal(t, runtime.OutcomeUnresolved, out.Kind)
	assert.Equal(t, s0, s)
}

func TestNavigate_DynamicSelfReference(t *testing.T) {
	r := newReducer(surveyForm())
	s, _, _ := r.CreateDynamicBlock(r.Init(), carBlueprint)
	s = r.Dispatch(s, domain.SetResponseAction("car_1_make", "p", domain.Text("ev")))

	target := r.ResolveTarget(s, "car_1_make")
	require.Equal(t, domain.GoTo("car_1_battery"), target)

	s, _ = r.Navigate(s, "car_1_make", target)
	assert.Equal(t, domain.QuestionRef{BlockID: "car_1", QuestionID: "car_1_battery"}, s.ActiveQuestion)

	parent, ok := r.InlineParent(s, "car_1_battery")
	require.True(t, ok)
	assert.Equal(t, "car_1_make", parent.ID)

	chain := r.InlineChain(s, "car_1_battery")
	require.Len(t, chain, 1)
	assert.Equal(t, "car_1_make", chain[0].ID)

	_, ok = r.InlineParent(s, "car_1_make")
	assert.False(t, ok, "non-inline questions have no parent")

	reset := r.Dispatch(s, domain.ResetFormAction())
	_, ok = r.InlineParent(reset, "car_1_battery")
	assert.False(t, ok)
}

func TestResolveTarget(t *testing.T) {
	form := &domain.Form{Blocks: []domain.Block{{
		ID: "b", Priority: 1, DefaultActive: true,
		Questions: []domain.Question{
			{
				ID:   "pair",
				Text: "{{a}} then {{b}}",
				Placeholders: map[string]domain.Placeholder{
					"a": {Type: domain.PlaceholderInput, LeadsTo: domain.GoTo("x")},
					"b": {Type: domain.PlaceholderSelect, Options: []domain.Option{
						{ID: "stop", LeadsTo: domain.StopFlow()},
						{ID: "go", LeadsTo: domain.GoTo("y")},
					}},
				},
			},
			{
				ID:   "multi",
				Text: "{{m}}",
				Placeholders: map[string]domain.Placeholder{
					"m": {Type: domain.PlaceholderSelect, Multiple: true, Options: []domain.Option{
						{ID: "first", LeadsTo: domain.GoTo("x")},
						{ID: "second", LeadsTo: domain.GoTo("y")},
						{ID: "none"},
					}},
				},
			},
			{
				ID:           "bare",
				Text:         "{{s}}",
				Placeholders: map[string]domain.Placeholder{"s": {Type: domain.PlaceholderSelect}},
			},
			inputQ("x", domain.Target{}),
			inputQ("y", domain.Target{}),
		},
	}}}
	r := newReducer(form)

	tests := []struct {
		name     string
		priority string
		actions  []domain.Action
		question string
		want     domain.Target
	}{
		{name: "display order", question: "pair", want: domain.GoTo("x")},
		{
			name:     "priority placeholder wins",
			priority: "b",
			actions:  []domain.Action{domain.SetResponseAction("pair", "b", domain.Text("stop"))},
			question: "pair",
			want:     domain.StopFlow(),
		},
		{name: "unanswered priority select falls through", priority: "b", question: "pair", want: domain.GoTo("x")},
		{
			name:     "multi select uses declaration order",
			actions:  []domain.Action{domain.SetResponseAction("multi", "m", domain.Choices("second", "first"))},
			question: "multi",
			want:     domain.GoTo("x"),
		},
		{
			name:     "option without target",
			actions:  []domain.Action{domain.SetResponseAction("multi", "m", domain.Choices("none"))},
			question: "multi",
			want:     domain.NextBlock(),
		},
		{name: "no target at all", question: "bare", want: domain.NextBlock()},
		{name: "unknown question", question: "ghost", want: domain.NextBlock()},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			form.Blocks[0].Questions[0].LeadsToPlaceholderPriority = tt.priority
			s := r.Init()
			for _, a := range tt.actions {
				s = r.Dispatch(s, a)
			}
			assert.Equal(t, tt.want, r.ResolveTarget(s, tt.question))
		})
	}
}

func TestHistoryFor(t *testing.T) {
	r := newReducer(surveyForm())
	s, _ := r.Navigate(r.Init(), "has", domain.GoTo("extra_q"))

	entry, ok := runtime.HistoryFor(s, "extra_q")
	require.True(t, ok)
	assert.Equal(t, "has", entry.FromQuestionID)

	_, ok = runtime.HistoryFor(s, "has")
	assert.False(t, ok)
}
