package flowgraph

import "github.com/aretw0/simflow/pkg/domain"

// StepKind is the rendering classification of a question.
type StepKind string

const (
	StepBranching StepKind = "branching"
	StepInline    StepKind = "inline"
	StepTerminal  StepKind = "terminal"
	StepInput     StepKind = "input"
)

// ConnectionKind separates forward edges from edges that close a cycle.
type ConnectionKind string

const (
	ConnectionForward ConnectionKind = "forward"
	ConnectionBack    ConnectionKind = "back"
)

// TerminalKind identifies where an edge leaving the level structure ends.
type TerminalKind string

const (
	TerminalNextBlock TerminalKind = "next_block"
	TerminalStopFlow  TerminalKind = "stop_flow"
	TerminalAddBlock  TerminalKind = "add_block"
	// TerminalExternal is a jump to a question owned by another block.
	TerminalExternal TerminalKind = "external"
)

// PlaceholderDetail carries what a renderer needs to label a placeholder.
type PlaceholderDetail struct {
	Key         string             `json:"key"`
	Placeholder domain.Placeholder `json:"placeholder"`
}

// Step is one question placed in the layout.
type Step struct {
	QuestionID   string              `json:"question_id"`
	Text         string              `json:"question_text"`
	Kind         StepKind            `json:"kind"`
	Placeholders []PlaceholderDetail `json:"placeholders"`
}

// Level is one breadth-first layer.
type Level struct {
	Index int    `json:"index"`
	Steps []Step `json:"steps"`
}

// Position addresses a step by level and index within the level.
type Position struct {
	Level int `json:"level"`
	Index int `json:"index"`
}

// Connection is an edge between two steps of the same block.
type Connection struct {
	From  Position       `json:"from"`
	To    Position       `json:"to"`
	Label string         `json:"label,omitempty"`
	Kind  ConnectionKind `json:"kind"`
}

// Terminal is a deduplicated sink node.
type Terminal struct {
	ID     string       `json:"id"`
	Kind   TerminalKind `json:"kind"`
	Target string       `json:"target,omitempty"`
}

// TerminalEdge links a step to a terminal.
type TerminalEdge struct {
	From     Position `json:"from"`
	Terminal string   `json:"terminal"`
	Label    string   `json:"label,omitempty"`
}

// Layout is the result of Analyze.
type Layout struct {
	BlockID       string         `json:"block_id"`
	Levels        []Level        `json:"levels"`
	Connections   []Connection   `json:"connections"`
	Terminals     []Terminal     `json:"terminals"`
	TerminalEdges []TerminalEdge `json:"terminal_edges"`
}

// Step returns the step at a position.
func (l *Layout) Step(p Position) (Step, bool) {
	if p.Level < 0 || p.Level >= len(l.Levels) {
		return Step{}, false
	}
	steps := l.Levels[p.Level].Steps
	if p.Index < 0 || p.Index >= len(steps) {
		return Step{}, false
	}
	return steps[p.Index], true
}

// Find returns the position of a question.
func (l *Layout) Find(questionID string) (Position, bool) {
	for i, lvl := range l.Levels {
		for j, s := range lvl.Steps {
			if s.QuestionID == questionID {
				return Position{Level: i, Index: j}, true
			}
		}
	}
	return Position{}, false
}
