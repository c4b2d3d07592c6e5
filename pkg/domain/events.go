package domain

import (
	"context"
	"time"
)

// EventType defines the category of the event.
type EventType string

const (
	EventBlockActivated   EventType = "block_activated"
	EventBlockDeactivated EventType = "block_deactivated"
	EventBlockCompleted   EventType = "block_completed"
	EventQuestionChanged  EventType = "question_changed"
	EventFlowStopped      EventType = "flow_stopped"
	EventUnresolvedTarget EventType = "unresolved_target"
)

// EventBase contains common fields for all events.
type EventBase struct {
	Timestamp time.Time `json:"timestamp"`
	Type      EventType `json:"type"`
	SessionID string    `json:"session_id"`
}

// BlockEvent reports a change in a block's activation or completion.
type BlockEvent struct {
	EventBase
	BlockID string `json:"block_id"`
	Dynamic bool   `json:"dynamic,omitempty"`
	// BlueprintID is set for dynamic blocks.
	BlueprintID string `json:"blueprint_id,omitempty"`
}

// QuestionEvent reports a change of the active question. Hosts use it to
// keep a URL or route in sync.
type QuestionEvent struct {
	EventBase
	From QuestionRef `json:"from"`
	To   QuestionRef `json:"to"`
	// ToBlueprintID is set when the destination block is dynamic.
	ToBlueprintID string `json:"to_blueprint_id,omitempty"`
}

// TargetEvent reports a navigation target that could not be resolved.
type TargetEvent struct {
	EventBase
	QuestionID string `json:"question_id"`
	Target     string `json:"target"`
}

// LifecycleHooks defines callbacks for engine observability.
// Every hook is optional.
type LifecycleHooks struct {
	OnBlockActivated   func(context.Context, *BlockEvent)
	OnBlockDeactivated func(context.Context, *BlockEvent)
	OnBlockCompleted   func(context.Context, *BlockEvent)
	OnQuestionChanged  func(context.Context, *QuestionEvent)
	OnFlowStopped      func(context.Context, *EventBase)
	OnUnresolvedTarget func(context.Context, *TargetEvent)
}
