package graph

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/aretw0/simflow/pkg/flowgraph"
)

// Overlay contains session data to highlight on the diagram.
type Overlay struct {
	Answered []string
	Current  string
}

const maxLabelText = 40

// GenerateMermaid produces a Mermaid flowchart of a block layout.
// Each level becomes a subgraph and question shapes follow the step kind:
// - Branching: {Rhombus}
// - Inline: ([Stadium])
// - Terminal: ((Circle))
// - Input: [/Parallelogram/]
// Edges closing a cycle are dotted. Terminals are drawn once and shared.
func GenerateMermaid(layout flowgraph.Layout, overlay *Overlay) string {
	var sb strings.Builder
	sb.WriteString("graph TD\n")

	for _, lvl := range layout.Levels {
		fmt.Fprintf(&sb, "    subgraph L%d[\"Level %d\"]\n", lvl.Index, lvl.Index)
		for _, step := range lvl.Steps {
			opener, closer := "[/", "/]"
			switch step.Kind {
			case flowgraph.StepBranching:
				opener, closer = "{", "}"
			case flowgraph.StepInline:
				opener, closer = "([", "])"
			case flowgraph.StepTerminal:
				opener, closer = "((", "))"
			}
			fmt.Fprintf(&sb, "        %s%s\"%s\"%s\n", sanitizeMermaidID(step.QuestionID), opener, stepLabel(step), closer)
		}
		sb.WriteString("    end\n")
	}

	for _, c := range layout.Connections {
		from, okFrom := layout.Step(c.From)
		to, okTo := layout.Step(c.To)
		if !okFrom || !okTo {
			continue
		}
		fmt.Fprintf(&sb, "    %s %s %s\n", sanitizeMermaidID(from.QuestionID), arrow(c.Label, c.Kind == flowgraph.ConnectionBack), sanitizeMermaidID(to.QuestionID))
	}

	for _, t := range layout.Terminals {
		opener, closer := "[[", "]]"
		if t.Kind == flowgraph.TerminalStopFlow {
			opener, closer = "((", "))"
		}
		fmt.Fprintf(&sb, "    %s%s\"%s\"%s\n", terminalID(t.ID), opener, terminalLabel(t), closer)
	}
	for _, e := range layout.TerminalEdges {
		from, ok := layout.Step(e.From)
		if !ok {
			continue
		}
		fmt.Fprintf(&sb, "    %s %s %s\n", sanitizeMermaidID(from.QuestionID), arrow(e.Label, false), terminalID(e.Terminal))
	}

	if overlay != nil {
		sb.WriteString("\n    %% Overlay Styles\n")
		sb.WriteString("    classDef answered fill:#e1f5fe,stroke:#01579b,stroke-width:2px,color:#000;\n")
		sb.WriteString("    classDef current fill:#ffeb3b,stroke:#fbc02d,stroke-width:4px,color:#000;\n")

		seen := make(map[string]bool)
		for _, id := range overlay.Answered {
			if _, ok := layout.Find(id); !ok {
				continue
			}
			safeID := sanitizeMermaidID(id)
			if !seen[safeID] {
				seen[safeID] = true
				fmt.Fprintf(&sb, "    class %s answered;\n", safeID)
			}
		}
		if _, ok := layout.Find(overlay.Current); ok {
			fmt.Fprintf(&sb, "    class %s current;\n", sanitizeMermaidID(overlay.Current))
		}
	}

	return sb.String()
}

func arrow(label string, back bool) string {
	if label == "" {
		if back {
			return "-.->"
		}
		return "-->"
	}
	label = escape(label)
	if back {
		return fmt.Sprintf("-. \"%s\" .->", label)
	}
	return fmt.Sprintf("-- \"%s\" -->", label)
}

func stepLabel(step flowgraph.Step) string {
	text := step.Text
	if utf8.RuneCountInString(text) > maxLabelText {
		text = string([]rune(text)[:maxLabelText-1]) + "…"
	}
	if text == "" {
		return escape(step.QuestionID)
	}
	return escape(step.QuestionID) + "<br/>" + escape(text)
}

func terminalLabel(t flowgraph.Terminal) string {
	switch t.Kind {
	case flowgraph.TerminalNextBlock:
		return "next block"
	case flowgraph.TerminalStopFlow:
		return "stop"
	case flowgraph.TerminalAddBlock:
		return "add " + escape(t.Target)
	default:
		return "→ " + escape(t.Target)
	}
}

func terminalID(id string) string { return "t_" + sanitizeMermaidID(id) }

func escape(s string) string {
	return strings.ReplaceAll(s, "\"", "'")
}

func sanitizeMermaidID(id string) string {
	return strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '_':
			return r
		}
		return '_'
	}, id)
}
