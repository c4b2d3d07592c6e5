package runtime_test

import (
	"testing"

	"github.com/aretw0/simflow/internal/runtime"
	"github.com/aretw0/simflow/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const carBlueprint = "car_{copyNumber}"

func TestCreateDynamicBlock_Uniqueness(t *testing.T) {
	r := newReducer(surveyForm())
	s := r.Init()

	var ids []string
	for i := 0; i < 3; i++ {
		var id string
		var ok bool
		s, id, ok = r.CreateDynamicBlock(s, carBlueprint)
		require.True(t, ok)
		ids = append(ids, id)
	}
	assert.Equal(t, []string{"car_1", "car_2", "car_3"}, ids)
	for i, b := range s.DynamicBlocks {
		assert.Equal(t, i+1, b.CopyNumber)
		assert.Equal(t, carBlueprint, b.BlueprintID)
		assert.False(t, b.MultiBlock)
	}

	s, ok := r.DeleteDynamicBlock(s, "car_2")
	require.True(t, ok)
	s, id, ok := r.CreateDynamicBlock(s, carBlueprint)
	require.True(t, ok)
	assert.Equal(t, "car_4", id)

	seen := map[string]bool{}
	for _, b := range s.DynamicBlocks {
		assert.False(t, seen[b.ID], "duplicate id %s", b.ID)
		seen[b.ID] = true
	}
}

func TestCreateDynamicBlock_RewritesScopedReferences(t *testing.T) {
	form := surveyForm()
	r := newReducer(form)

	s, id, ok := r.CreateDynamicBlock(r.Init(), carBlueprint)
	require.True(t, ok)
	assert.Contains(t, s.ActiveBlocks, id)

	clone, ok := s.DynamicBlock(id)
	require.True(t, ok)
	assert.Equal(t, []string{"car_1_make", "car_1_battery"}, clone.QuestionIDs())

	opts := clone.Questions[0].Placeholders["p"].Options
	assert.Equal(t, domain.GoTo("car_1_battery"), opts[0].LeadsTo)
	assert.Equal(t, domain.NextBlock(), opts[1].LeadsTo)
	assert.Equal(t, domain.GoTo("has"), opts[2].LeadsTo, "references to other blocks stay untouched")
	assert.Equal(t, "extra", opts[2].AddBlock)

	bp, _ := form.Block(carBlueprint)
	assert.Equal(t, "car_{copyNumber}_make", bp.Questions[0].ID, "blueprint must stay pristine")
	assert.Equal(t, domain.GoTo("car_{copyNumber}_battery"), bp.Questions[0].Placeholders["p"].Options[0].LeadsTo)
}

func TestCreateDynamicBlock_Priority(t *testing.T) {
	r := newReducer(surveyForm())
	s, _, _ := r.CreateDynamicBlock(r.Init(), carBlueprint)
	s, _, _ = r.CreateDynamicBlock(s, carBlueprint)

	assert.Equal(t, float64(6), s.DynamicBlocks[0].Priority)
	assert.Equal(t, float64(7), s.DynamicBlocks[1].Priority)

	t.Run("explicit blueprint priority is inherited", func(t *testing.T) {
		form := surveyForm()
		form.Blocks[3].Priority = 2.5
		r := newReducer(form)
		s, _, _ := r.CreateDynamicBlock(r.Init(), carBlueprint)
		assert.Equal(t, 2.5, s.DynamicBlocks[0].Priority)
	})

	t.Run("zero blueprint priority appends after every block", func(t *testing.T) {
		form := surveyForm()
		form.Blocks[3].Priority = 0
		r := newReducer(form)
		s, _, _ := r.CreateDynamicBlock(r.Init(), carBlueprint)
		for _, b := range form.Blocks {
			assert.Greater(t, s.DynamicBlocks[0].Priority, b.Priority, b.ID)
		}
	})

	t.Run("negative blueprint priority places copies first", func(t *testing.T) {
		form := surveyForm()
		form.Blocks[3].Priority = -1
		r := newReducer(form)
		s, _, _ := r.CreateDynamicBlock(r.Init(), carBlueprint)
		assert.Equal(t, float64(-1), s.DynamicBlocks[0].Priority)
	})
}

func TestCreateDynamicBlock_SkipsTakenIDs(t *testing.T) {
	form := &domain.Form{Blocks: []domain.Block{
		{ID: "pet_2", DefaultActive: true, Questions: []domain.Question{inputQ("intro", domain.NextBlock())}},
		{ID: "pet_{copyNumber}", MultiBlock: true, Questions: []domain.Question{inputQ("pet_{copyNumber}_name", domain.NextBlock())}},
	}}
	r := newReducer(form)
	s := r.Init()

	var ids []string
	var copies []int
	for i := 0; i < 3; i++ {
		var id string
		var ok bool
		s, id, ok = r.CreateDynamicBlock(s, "pet_{copyNumber}")
		require.True(t, ok)
		ids = append(ids, id)
	}
	for _, b := range s.DynamicBlocks {
		copies = append(copies, b.CopyNumber)
	}
	assert.Equal(t, []string{"pet_1", "pet_3", "pet_4"}, ids, "pet_2 belongs to the static block")
	assert.Equal(t, []int{1, 3, 4}, copies)
}

func TestCreateDynamicBlock_RejectsNonBlueprints(t *testing.T) {
	r := newReducer(surveyForm())
	for _, id := range []string{"main", "ghost", ""} {
		_, _, ok := r.CreateDynamicBlock(r.Init(), id)
		assert.False(t, ok, id)
	}
}

func TestCreateDynamicBlock_ConcatenatesWithoutToken(t *testing.T) {
	form := &domain.Form{Blocks: []domain.Block{
		{ID: "pet", MultiBlock: true, Questions: []domain.Question{inputQ("pet_name", domain.NextBlock())}},
	}}
	r := newReducer(form)
	s, id, ok := r.CreateDynamicBlock(r.Init(), "pet")
	require.True(t, ok)
	assert.Equal(t, "pet1", id)
	assert.Equal(t, "pet_name", s.DynamicBlocks[0].Questions[0].ID)
}

func TestDeleteDynamicBlock(t *testing.T) {
	r := newReducer(surveyForm())
	s, id, _ := r.CreateDynamicBlock(r.Init(), carBlueprint)
	s = r.Dispatch(s, domain.SetResponseAction("car_1_make", "p", domain.Text("gas")))
	s = r.Dispatch(s, domain.MarkBlockCompletedAction(id))

	got, ok := r.DeleteDynamicBlock(s, id)
	require.True(t, ok)
	assert.Empty(t, got.DynamicBlocks)
	assert.NotContains(t, got.ActiveBlocks, id)
	assert.NotContains(t, got.CompletedBlocks, id)
	assert.False(t, got.IsAnswered("car_1_make"))

	t.Run("unknown and static ids fail", func(t *testing.T) {
		_, ok := r.DeleteDynamicBlock(s, "nope")
		assert.False(t, ok)
		_, ok = r.DeleteDynamicBlock(s, "main")
		assert.False(t, ok)
	})
}

func TestDynamicBlocksByBlueprint(t *testing.T) {
	r := newReducer(surveyForm())
	s, _, _ := r.CreateDynamicBlock(r.Init(), carBlueprint)
	s, _, _ = r.CreateDynamicBlock(s, carBlueprint)

	got := runtime.DynamicBlocksByBlueprint(s, carBlueprint)
	require.Len(t, got, 2)
	assert.Equal(t, "car_2", got[1].ID)
	assert.Empty(t, runtime.DynamicBlocksByBlueprint(s, "main"))
}
