package domain

// ActionType names a reducer action.
type ActionType string

// Reducer actions.
const (
	ActionGoToQuestion             ActionType = "GO_TO_QUESTION"
	ActionSetResponse              ActionType = "SET_RESPONSE"
	ActionMarkQuestionAnswered     ActionType = "MARK_QUESTION_ANSWERED"
	ActionAddActiveBlock           ActionType = "ADD_ACTIVE_BLOCK"
	ActionRemoveActiveBlock        ActionType = "REMOVE_ACTIVE_BLOCK"
	ActionAddDynamicBlock          ActionType = "ADD_DYNAMIC_BLOCK"
	ActionDeleteDynamicBlock       ActionType = "DELETE_DYNAMIC_BLOCK"
	ActionMarkBlockCompleted       ActionType = "MARK_BLOCK_COMPLETED"
	ActionRemoveBlockFromCompleted ActionType = "REMOVE_BLOCK_FROM_COMPLETED"
	ActionResetForm                ActionType = "RESET_FORM"

	// ActionSetNavigating toggles the advisory transition flag.
	ActionSetNavigating ActionType = "SET_NAVIGATING"
	// ActionFinishFlow records that a stop_flow target was reached.
	ActionFinishFlow ActionType = "FINISH_FLOW"
)

// Known reports whether the reducer handles this action type.
func (t ActionType) Known() bool {
	switch t {
	case ActionGoToQuestion, ActionSetResponse, ActionMarkQuestionAnswered,
		ActionAddActiveBlock, ActionRemoveActiveBlock, ActionAddDynamicBlock,
		ActionDeleteDynamicBlock, ActionMarkBlockCompleted, ActionRemoveBlockFromCompleted,
		ActionResetForm, ActionSetNavigating, ActionFinishFlow:
		return true
	}
	return false
}

// Action is a single state transition request.
// Fields not relevant to Type are ignored.
type Action struct {
	Type        ActionType `json:"type"`
	BlockID     string     `json:"block_id,omitempty"`
	QuestionID  string     `json:"question_id,omitempty"`
	Placeholder string     `json:"placeholder,omitempty"`
	Value       Value      `json:"value,omitzero"`
	Navigating  bool       `json:"navigating,omitempty"`
}

// GoToQuestionAction sets the active question.
func GoToQuestionAction(blockID, questionID string) Action {
	return Action{Type: ActionGoToQuestion, BlockID: blockID, QuestionID: questionID}
}

// SetResponseAction stores an answer for one placeholder.
func SetResponseAction(questionID, placeholder string, v Value) Action {
	return Action{Type: ActionSetResponse, QuestionID: questionID, Placeholder: placeholder, Value: v}
}

// MarkQuestionAnsweredAction flags a question as answered.
func MarkQuestionAnsweredAction(questionID string) Action {
	return Action{Type: ActionMarkQuestionAnswered, QuestionID: questionID}
}

// AddActiveBlockAction activates a block.
func AddActiveBlockAction(blockID string) Action {
	return Action{Type: ActionAddActiveBlock, BlockID: blockID}
}

// RemoveActiveBlockAction deactivates a block.
func RemoveActiveBlockAction(blockID string) Action {
	return Action{Type: ActionRemoveActiveBlock, BlockID: blockID}
}

// AddDynamicBlockAction instantiates a blueprint. BlockID names the blueprint.
func AddDynamicBlockAction(blueprintID string) Action {
	return Action{Type: ActionAddDynamicBlock, BlockID: blueprintID}
}

// DeleteDynamicBlockAction removes a dynamic block instance.
func DeleteDynamicBlockAction(blockID string) Action {
	return Action{Type: ActionDeleteDynamicBlock, BlockID: blockID}
}

// MarkBlockCompletedAction flags a block as completed.
func MarkBlockCompletedAction(blockID string) Action {
	return Action{Type: ActionMarkBlockCompleted, BlockID: blockID}
}

// RemoveBlockFromCompletedAction clears the completed flag of a block.
func RemoveBlockFromCompletedAction(blockID string) Action {
	return Action{Type: ActionRemoveBlockFromCompleted, BlockID: blockID}
}

// ResetFormAction clears the session back to its static defaults.
func ResetFormAction() Action { return Action{Type: ActionResetForm} }

// SetNavigatingAction sets the advisory transition flag.
func SetNavigatingAction(on bool) Action {
	return Action{Type: ActionSetNavigating, Navigating: on}
}

// FinishFlowAction marks the flow as stopped.
func FinishFlowAction() Action { return Action{Type: ActionFinishFlow} }
