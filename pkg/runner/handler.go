package runner

import (
	"context"

	"github.com/aretw0/simflow/pkg/domain"
)

// Step is the question the runner is about to ask.
type Step struct {
	BlockID    string `json:"block_id"`
	BlockTitle string `json:"block_title,omitempty"`
	QuestionID string `json:"question_id"`
	// Text is the question text with answered placeholders substituted.
	Text     string `json:"text"`
	Notes    string `json:"notes,omitempty"`
	Progress int    `json:"progress"`
}

// Prompt asks for the answer to one placeholder.
type Prompt struct {
	QuestionID  string             `json:"question_id"`
	Key         string             `json:"key"`
	Placeholder domain.Placeholder `json:"placeholder"`
	// Current is the stored answer, if any.
	Current string `json:"current,omitempty"`
	// Skippable is set when an empty answer is accepted.
	Skippable bool `json:"skippable,omitempty"`
}

// IOHandler defines the strategy for interacting with the user.
// This allows switching between Text (CLI/TUI) and JSON (Structured) modes.
type IOHandler interface {
	// Output presents a question.
	Output(ctx context.Context, step Step) error

	// Input asks for one placeholder and returns the raw answer line.
	Input(ctx context.Context, prompt Prompt) (string, error)

	// SystemOutput presents a meta-message (validation failures, status updates).
	SystemOutput(ctx context.Context, msg string) error
}

// ContentRenderer transforms markdown before it is written, e.g. to ANSI.
type ContentRenderer func(string) (string, error)
