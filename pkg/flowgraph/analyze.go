package flowgraph

import (
	"github.com/aretw0/simflow/pkg/domain"
)

// edge is an outgoing reference of a question before placement.
type edge struct {
	label    string
	target   domain.Target
	addBlock string
}

// Analyze lays out the questions of a block.
func Analyze(block domain.Block) Layout {
	layout := Layout{
		BlockID:       block.ID,
		Levels:        []Level{},
		Connections:   []Connection{},
		Terminals:     []Terminal{},
		TerminalEdges: []TerminalEdge{},
	}
	if len(block.Questions) == 0 {
		return layout
	}

	index := make(map[string]int, len(block.Questions))
	for i, q := range block.Questions {
		if _, dup := index[q.ID]; !dup {
			index[q.ID] = i
		}
	}

	edges := make([][]edge, len(block.Questions))
	inbound := make([]bool, len(block.Questions))
	for i := range block.Questions {
		edges[i] = outgoing(&block.Questions[i])
		for _, e := range edges[i] {
			if e.target.Kind != domain.TargetQuestion {
				continue
			}
			if j, ok := index[e.target.QuestionID]; ok && j != i {
				inbound[j] = true
			}
		}
	}

	pos := make(map[int]Position, len(block.Questions))
	place := func(i, level int) {
		for len(layout.Levels) <= level {
			layout.Levels = append(layout.Levels, Level{Index: len(layout.Levels), Steps: []Step{}})
		}
		lvl := &layout.Levels[level]
		pos[i] = Position{Level: level, Index: len(lvl.Steps)}
		lvl.Steps = append(lvl.Steps, newStep(&block.Questions[i], edges[i]))
	}

	var queue []int
	bfs := func() {
		for len(queue) > 0 {
			i := queue[0]
			queue = queue[1:]
			next := pos[i].Level + 1
			for _, e := range edges[i] {
				if e.target.Kind != domain.TargetQuestion {
					continue
				}
				j, ok := index[e.target.QuestionID]
				if !ok {
					continue
				}
				if _, visited := pos[j]; visited {
					continue
				}
				place(j, next)
				queue = append(queue, j)
			}
		}
	}

	for i := range block.Questions {
		if !inbound[i] && index[block.Questions[i].ID] == i {
			place(i, 0)
			queue = append(queue, i)
		}
	}
	bfs()

	// Questions only reachable through a cycle get seeded as extra roots.
	for i := range block.Questions {
		if _, visited := pos[i]; visited || index[block.Questions[i].ID] != i {
			continue
		}
		place(i, 0)
		queue = append(queue, i)
		bfs()
	}

	b := builder{layout: &layout, terminals: map[string]bool{}, seen: map[edgeKey]bool{}}
	for i := range block.Questions {
		from, ok := pos[i]
		if !ok {
			continue
		}
		for _, e := range edges[i] {
			if e.addBlock != "" {
				b.terminal(from, TerminalAddBlock, e.addBlock, e.label)
			}
			switch e.target.Kind {
			case domain.TargetNextBlock:
				b.terminal(from, TerminalNextBlock, "", e.label)
			case domain.TargetStopFlow:
				b.terminal(from, TerminalStopFlow, "", e.label)
			case domain.TargetQuestion:
				j, ok := index[e.target.QuestionID]
				if !ok {
					b.terminal(from, TerminalExternal, e.target.QuestionID, e.label)
					continue
				}
				b.connect(from, pos[j], e.label)
			}
		}
	}
	return layout
}

// AnalyzeForm lays out every static block of a form in declaration order.
func AnalyzeForm(form *domain.Form) []Layout {
	out := make([]Layout, 0, len(form.Blocks))
	for _, b := range form.Blocks {
		out = append(out, Analyze(b))
	}
	return out
}

// outgoing lists the references of a question in display order. A missing
// target counts as next_block, which is what navigation falls back to.
func outgoing(q *domain.Question) []edge {
	var out []edge
	for _, key := range q.PlaceholderKeys() {
		p := q.Placeholders[key]
		switch p.Type {
		case domain.PlaceholderSelect:
			for _, opt := range p.Options {
				label := opt.Label
				if label == "" {
					label = opt.ID
				}
				out = append(out, edge{label: label, target: opt.LeadsTo.OrNextBlock(), addBlock: opt.AddBlock})
			}
		case domain.PlaceholderMultiBlock:
			out = append(out, edge{label: p.AddBlockLabel, target: p.LeadsTo.OrNextBlock(), addBlock: p.BlockBlueprint})
		default:
			out = append(out, edge{label: p.Label, target: p.LeadsTo.OrNextBlock()})
		}
	}
	if len(out) == 0 {
		out = append(out, edge{target: domain.NextBlock()})
	}
	return out
}

func newStep(q *domain.Question, edges []edge) Step {
	step := Step{
		QuestionID:   q.ID,
		Text:         q.Text,
		Kind:         classify(q, edges),
		Placeholders: []PlaceholderDetail{},
	}
	for _, key := range q.PlaceholderKeys() {
		step.Placeholders = append(step.Placeholders, PlaceholderDetail{Key: key, Placeholder: q.Placeholders[key].Clone()})
	}
	return step
}

func classify(q *domain.Question, edges []edge) StepKind {
	if q.EndOfForm || onlyStops(edges) {
		return StepTerminal
	}
	for _, p := range q.Placeholders {
		if p.Type == domain.PlaceholderSelect && len(p.Options) > 0 {
			return StepBranching
		}
	}
	if q.Inline {
		return StepInline
	}
	return StepInput
}

func onlyStops(edges []edge) bool {
	if len(edges) == 0 {
		return false
	}
	for _, e := range edges {
		if e.target.Kind != domain.TargetStopFlow {
			return false
		}
	}
	return true
}

type builder struct {
	layout    *Layout
	terminals map[string]bool
	seen      map[edgeKey]bool
}

type edgeKey struct {
	from   Position
	to     Position
	target string
	label  string
}

func (b *builder) connect(from, to Position, label string) {
	key := edgeKey{from: from, to: to, label: label}
	if b.seen[key] {
		return
	}
	b.seen[key] = true

	kind := ConnectionForward
	if to.Level <= from.Level {
		kind = ConnectionBack
	}
	b.layout.Connections = append(b.layout.Connections, Connection{From: from, To: to, Label: label, Kind: kind})
}

func (b *builder) terminal(from Position, kind TerminalKind, target, label string) {
	id := string(kind)
	if target != "" {
		id += ":" + target
	}
	if !b.terminals[id] {
		b.terminals[id] = true
		b.layout.Terminals = append(b.layout.Terminals, Terminal{ID: id, Kind: kind, Target: target})
	}

	key := edgeKey{from: from, target: id, label: label}
	if b.seen[key] {
		return
	}
	b.seen[key] = true
	b.layout.TerminalEdges = append(b.layout.TerminalEdges, TerminalEdge{From: from, Terminal: id, Label: label})
}
