package ports

import (
	"context"
	"testing"
	"time"

	"github.com/aretw0/simflow/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// RunStateStoreContract runs a suite of tests to verify that a StateStore implementation
// adheres to the defined interface contract.
func RunStateStoreContract(t *testing.T, store StateStore) {
	ctx := context.Background()
	sessionID := "contract-test-session-" + time.Now().Format("20060102150405")

	t.Run("Save and Load", func(t *testing.T) {
		state := contractState()

		err := store.Save(ctx, sessionID, state)
		require.NoError(t, err, "Save should not return error")

		loaded, err := store.Load(ctx, sessionID)
		require.NoError(t, err, "Load should not return error")

		assert.Equal(t, state.ActiveBlocks, loaded.ActiveBlocks)
		assert.Equal(t, state.ActiveQuestion, loaded.ActiveQuestion)
		assert.Equal(t, state.AnsweredQuestions, loaded.AnsweredQuestions)
		assert.Equal(t, state.CompletedBlocks, loaded.CompletedBlocks)
		assert.Equal(t, state.BlockActivations, loaded.BlockActivations)
		assert.True(t, state.Finished == loaded.Finished)

		single, ok := loaded.Response("q1", "p")
		require.True(t, ok)
		assert.Equal(t, "yes", single.Text)
		multi, ok := loaded.Response("q2", "p")
		require.True(t, ok)
		assert.Equal(t, []string{"a", "b"}, multi.Selected())
		assert.True(t, multi.Multiple)

		require.Len(t, loaded.DynamicBlocks, 1)
		dyn := loaded.DynamicBlocks[0]
		assert.Equal(t, "car_1", dyn.ID)
		assert.Equal(t, 1, dyn.CopyNumber)
		require.Len(t, dyn.Questions, 1)
		assert.Equal(t, domain.GoTo("has"), dyn.Questions[0].Placeholders["p"].Options[0].LeadsTo)

		require.Len(t, loaded.NavigationHistory, 1)
		assert.Equal(t, "q2", loaded.NavigationHistory[0].ToQuestionID)
		assert.WithinDuration(t, state.NavigationHistory[0].Timestamp, loaded.NavigationHistory[0].Timestamp, time.Second)
	})

	t.Run("Save Overwrites", func(t *testing.T) {
		state := contractState()
		state.ActiveBlocks = []string{"main"}
		require.NoError(t, store.Save(ctx, sessionID, state))

		loaded, err := store.Load(ctx, sessionID)
		require.NoError(t, err)
		assert.Equal(t, []string{"main"}, loaded.ActiveBlocks)
	})

	t.Run("Load Non-Existent", func(t *testing.T) {
		_, err := store.Load(ctx, "non-existent-"+sessionID)
		assert.ErrorIs(t, err, domain.ErrSessionNotFound)
	})

	t.Run("Delete", func(t *testing.T) {
		err := store.Save(ctx, sessionID, domain.NewFormState())
		require.NoError(t, err)

		err = store.Delete(ctx, sessionID)
		require.NoError(t, err, "Delete should not return error")

		_, err = store.Load(ctx, sessionID)
		assert.ErrorIs(t, err, domain.ErrSessionNotFound, "Load after Delete should return ErrSessionNotFound")
	})

	t.Run("List", func(t *testing.T) {
		id1 := sessionID + "-1"
		id2 := sessionID + "-2"
		_ = store.Save(ctx, id1, domain.NewFormState())
		_ = store.Save(ctx, id2, domain.NewFormState())

		defer func() {
			_ = store.Delete(ctx, id1)
			_ = store.Delete(ctx, id2)
		}()

		sessions, err := store.List(ctx)
		require.NoError(t, err)
		assert.Contains(t, sessions, id1)
		assert.Contains(t, sessions, id2)
	})
}

func contractState() *domain.FormState {
	s := domain.NewFormState()
	s.ActiveBlocks = []string{"main", "extra", "car_1"}
	s.ActiveQuestion = domain.QuestionRef{BlockID: "main", QuestionID: "q2"}
	s.Responses["q1"] = map[string]domain.Value{"p": domain.Text("yes")}
	s.Responses["q2"] = map[string]domain.Value{"p": domain.Choices("a", "b")}
	s.AnsweredQuestions = []string{"q1", "q2"}
	s.CompletedBlocks = []string{"intro"}
	s.BlockActivations["extra"] = []domain.Activation{{QuestionID: "q1", PlaceholderKey: "p"}}
	s.NavigationHistory = []domain.NavigationEntry{{
		FromBlockID: "main", FromQuestionID: "q1",
		ToBlockID: "main", ToQuestionID: "q2",
		Timestamp: time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC),
	}}
	s.DynamicBlocks = []domain.Block{{
		ID: "car_1", BlueprintID: "car_{copyNumber}", CopyNumber: 1, Priority: 4,
		Questions: []domain.Question{{
			ID:   "car_1_make",
			Text: "{{p}}",
			Placeholders: map[string]domain.Placeholder{
				"p": {Type: domain.PlaceholderSelect, Options: []domain.Option{{ID: "x", Label: "X", LeadsTo: domain.GoTo("has")}}},
			},
		}},
	}}
	return s
}
