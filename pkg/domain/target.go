package domain

import "strings"

// TargetKind discriminates navigation targets.
type TargetKind string

const (
	TargetNone      TargetKind = ""
	TargetNextBlock TargetKind = "next_block"
	TargetStopFlow  TargetKind = "stop_flow"
	TargetQuestion  TargetKind = "question"
)

// Target is where an answer leads: the next active block, the end of the
// flow, or a specific question.
//
// It is encoded as the plain string used by form authors ("next_block",
// "stop_flow" or a question id) through encoding.TextMarshaler, which JSON,
// YAML and the form loader all honour.
type Target struct {
	Kind       TargetKind
	QuestionID string
}

// NextBlock targets the next active block in priority order.
func NextBlock() Target { return Target{Kind: TargetNextBlock} }

// StopFlow terminates the flow.
func StopFlow() Target { return Target{Kind: TargetStopFlow} }

// GoTo targets a literal question id.
func GoTo(questionID string) Target {
	return Target{Kind: TargetQuestion, QuestionID: questionID}
}

// ParseTarget converts the authoring string form into a Target.
func ParseTarget(s string) Target {
	s = strings.TrimSpace(s)
	switch s {
	case "":
		return Target{}
	case string(TargetNextBlock):
		return NextBlock()
	case string(TargetStopFlow):
		return StopFlow()
	default:
		return GoTo(s)
	}
}

// String returns the authoring form of the target.
func (t Target) String() string {
	if t.Kind == TargetQuestion {
		return t.QuestionID
	}
	return string(t.Kind)
}

// IsZero reports whether no target was declared.
func (t Target) IsZero() bool { return t.Kind == TargetNone }

// OrNextBlock substitutes next_block for an undeclared target.
func (t Target) OrNextBlock() Target {
	if t.IsZero() {
		return NextBlock()
	}
	return t
}

// MarshalText implements encoding.TextMarshaler.
func (t Target) MarshalText() ([]byte, error) {
	return []byte(t.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (t *Target) UnmarshalText(text []byte) error {
	*t = ParseTarget(string(text))
	return nil
}
