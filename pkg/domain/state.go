package domain

import (
	"slices"
	"time"
)

// QuestionRef addresses a question inside a block.
type QuestionRef struct {
	BlockID    string `json:"block_id"`
	QuestionID string `json:"question_id"`
}

// IsZero reports whether the reference is unset.
func (r QuestionRef) IsZero() bool { return r.BlockID == "" && r.QuestionID == "" }

// Activation records which answer activated a block.
type Activation struct {
	QuestionID     string `json:"questionId"`
	PlaceholderKey string `json:"placeholderId"`
}

// NavigationEntry is one literal question-to-question jump.
type NavigationEntry struct {
	FromBlockID    string    `json:"from_block_id"`
	FromQuestionID string    `json:"from_question_id"`
	ToBlockID      string    `json:"to_block_id"`
	ToQuestionID   string    `json:"to_question_id"`
	Timestamp      time.Time `json:"timestamp"`
}

// FormState is the runtime snapshot of one simulation session.
// It is only ever changed through the reducer; every transition yields a new value.
type FormState struct {
	ActiveBlocks      []string                    `json:"activeBlocks"`
	ActiveQuestion    QuestionRef                 `json:"activeQuestion"`
	Responses         map[string]map[string]Value `json:"responses"`
	AnsweredQuestions []string                    `json:"answeredQuestions"`
	NavigationHistory []NavigationEntry           `json:"navigationHistory"`
	DynamicBlocks     []Block                     `json:"dynamicBlocks"`
	BlockActivations  map[string][]Activation     `json:"blockActivations"`
	CompletedBlocks   []string                    `json:"completedBlocks"`
	IsNavigating      bool                        `json:"isNavigating"`

	// Finished is set when a stop_flow target was resolved and cleared by the next jump.
	Finished bool `json:"finished,omitempty"`
}

// NewFormState returns an empty state with all collections allocated.
func NewFormState() *FormState {
	return &FormState{
		ActiveBlocks:      []string{},
		Responses:         make(map[string]map[string]Value),
		AnsweredQuestions: []string{},
		NavigationHistory: []NavigationEntry{},
		DynamicBlocks:     []Block{},
		BlockActivations:  make(map[string][]Activation),
		CompletedBlocks:   []string{},
	}
}

// IsActive reports whether the block is in the active set.
func (s *FormState) IsActive(blockID string) bool {
	return slices.Contains(s.ActiveBlocks, blockID)
}

// IsCompleted reports whether the block was exited through a block-level transition.
func (s *FormState) IsCompleted(blockID string) bool {
	return slices.Contains(s.CompletedBlocks, blockID)
}

// IsAnswered reports whether the question has been answered.
func (s *FormState) IsAnswered(questionID string) bool {
	return slices.Contains(s.AnsweredQuestions, questionID)
}

// Response returns the stored value for a placeholder.
func (s *FormState) Response(questionID, key string) (Value, bool) {
	byKey, ok := s.Responses[questionID]
	if !ok {
		return Value{}, false
	}
	v, ok := byKey[key]
	return v, ok
}

// DynamicBlock returns the dynamic block with the given id.
func (s *FormState) DynamicBlock(id string) (*Block, bool) {
	for i := range s.DynamicBlocks {
		if s.DynamicBlocks[i].ID == id {
			return &s.DynamicBlocks[i], true
		}
	}
	return nil, false
}

// Snapshot returns a deep copy that can be mutated without affecting the receiver.
func (s *FormState) Snapshot() *FormState {
	if s == nil {
		return nil
	}
	next := *s
	next.ActiveBlocks = slices.Clone(s.ActiveBlocks)
	next.AnsweredQuestions = slices.Clone(s.AnsweredQuestions)
	next.CompletedBlocks = slices.Clone(s.CompletedBlocks)
	next.NavigationHistory = slices.Clone(s.NavigationHistory)

	next.Responses = make(map[string]map[string]Value, len(s.Responses))
	for q, byKey := range s.Responses {
		inner := make(map[string]Value, len(byKey))
		for k, v := range byKey {
			v.Choices = slices.Clone(v.Choices)
			inner[k] = v
		}
		next.Responses[q] = inner
	}

	next.DynamicBlocks = make([]Block, len(s.DynamicBlocks))
	for i, b := range s.DynamicBlocks {
		next.DynamicBlocks[i] = b.Clone()
	}

	next.BlockActivations = make(map[string][]Activation, len(s.BlockActivations))
	for id, acts := range s.BlockActivations {
		next.BlockActivations[id] = slices.Clone(acts)
	}

	if next.ActiveBlocks == nil {
		next.ActiveBlocks = []string{}
	}
	if next.AnsweredQuestions == nil {
		next.AnsweredQuestions = []string{}
	}
	if next.CompletedBlocks == nil {
		next.CompletedBlocks = []string{}
	}
	if next.NavigationHistory == nil {
		next.NavigationHistory = []NavigationEntry{}
	}
	return &next
}
