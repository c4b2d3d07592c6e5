package domain

import "slices"

// StateDiff represents the changes between two states.
// It is designed to be serialized to JSON for partial updates on the client.
type StateDiff struct {
	SessionID string `json:"session_id"`

	ActiveQuestion *QuestionRef `json:"active_question,omitempty"`

	ActivatedBlocks   []string `json:"activated_blocks,omitempty"`
	DeactivatedBlocks []string `json:"deactivated_blocks,omitempty"`
	CompletedBlocks   []string `json:"completed_blocks,omitempty"`
	UncompletedBlocks []string `json:"uncompleted_blocks,omitempty"`

	CreatedBlocks []string `json:"created_blocks,omitempty"`
	DeletedBlocks []string `json:"deleted_blocks,omitempty"`

	AnsweredQuestions   []string `json:"answered_questions,omitempty"`
	UnansweredQuestions []string `json:"unanswered_questions,omitempty"`

	// Responses carries the new value of every changed placeholder, keyed by
	// question id then placeholder key. Removed placeholders map to nil.
	Responses map[string]map[string]*Value `json:"responses,omitempty"`

	Finished     *bool `json:"finished,omitempty"`
	IsNavigating *bool `json:"is_navigating,omitempty"`
}

// Diff calculates the difference between oldState and newState.
// If oldState is nil, it returns a diff representing the entire newState (initial load).
func Diff(sessionID string, oldState, newState *FormState) *StateDiff {
	if newState == nil {
		return nil
	}
	if oldState == nil {
		oldState = NewFormState()
	}

	diff := &StateDiff{SessionID: sessionID}

	if oldState.ActiveQuestion != newState.ActiveQuestion {
		ref := newState.ActiveQuestion
		diff.ActiveQuestion = &ref
	}

	diff.ActivatedBlocks, diff.DeactivatedBlocks = diffSet(oldState.ActiveBlocks, newState.ActiveBlocks)
	diff.CompletedBlocks, diff.UncompletedBlocks = diffSet(oldState.CompletedBlocks, newState.CompletedBlocks)
	diff.AnsweredQuestions, diff.UnansweredQuestions = diffSet(oldState.AnsweredQuestions, newState.AnsweredQuestions)
	diff.CreatedBlocks, diff.DeletedBlocks = diffSet(blockIDs(oldState.DynamicBlocks), blockIDs(newState.DynamicBlocks))
	diff.Responses = diffResponses(oldState.Responses, newState.Responses)

	if oldState.Finished != newState.Finished {
		v := newState.Finished
		diff.Finished = &v
	}
	if oldState.IsNavigating != newState.IsNavigating {
		v := newState.IsNavigating
		diff.IsNavigating = &v
	}

	if diff.IsEmpty() {
		return nil
	}
	return diff
}

// IsEmpty checks if the diff contains any actionable changes.
func (d *StateDiff) IsEmpty() bool {
	return d.ActiveQuestion == nil &&
		len(d.ActivatedBlocks) == 0 &&
		len(d.DeactivatedBlocks) == 0 &&
		len(d.CompletedBlocks) == 0 &&
		len(d.UncompletedBlocks) == 0 &&
		len(d.CreatedBlocks) == 0 &&
		len(d.DeletedBlocks) == 0 &&
		len(d.AnsweredQuestions) == 0 &&
		len(d.UnansweredQuestions) == 0 &&
		len(d.Responses) == 0 &&
		d.Finished == nil &&
		d.IsNavigating == nil
}

// diffSet returns the members added to and removed from a set, in the order
// they appear in their respective slices.
func diffSet(old, new []string) (added, removed []string) {
	for _, id := range new {
		if !slices.Contains(old, id) {
			added = append(added, id)
		}
	}
	for _, id := range old {
		if !slices.Contains(new, id) {
			removed = append(removed, id)
		}
	}
	return added, removed
}

func diffResponses(old, new map[string]map[string]Value) map[string]map[string]*Value {
	delta := make(map[string]map[string]*Value)
	put := func(q, k string, v *Value) {
		if delta[q] == nil {
			delta[q] = make(map[string]*Value)
		}
		delta[q][k] = v
	}

	for q, byKey := range new {
		for k, v := range byKey {
			prev, ok := old[q][k]
			if !ok || !prev.Equal(v) {
				val := v
				put(q, k, &val)
			}
		}
	}
	for q, byKey := range old {
		for k := range byKey {
			if _, ok := new[q][k]; !ok {
				put(q, k, nil)
			}
		}
	}

	if len(delta) == 0 {
		return nil
	}
	return delta
}

func blockIDs(blocks []Block) []string {
	ids := make([]string, len(blocks))
	for i, b := range blocks {
		ids[i] = b.ID
	}
	return ids
}
