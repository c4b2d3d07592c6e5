package domain

import (
	"regexp"
	"sort"
	"strings"
)

// PlaceholderType discriminates the placeholder tagged union.
type PlaceholderType string

const (
	// PlaceholderSelect renders a list of options; each option carries its own target.
	PlaceholderSelect PlaceholderType = "select"
	// PlaceholderInput collects free-form input; the target lives on the placeholder.
	PlaceholderInput PlaceholderType = "input"
	// PlaceholderMultiBlock manages repeatable instances of a blueprint block.
	PlaceholderMultiBlock PlaceholderType = "MultiBlockManager"
)

// Form is the immutable graph definition of one simulation.
type Form struct {
	ID     string  `json:"id" yaml:"id" mapstructure:"id"`
	Title  string  `json:"title,omitempty" yaml:"title,omitempty" mapstructure:"title"`
	Blocks []Block `json:"blocks" yaml:"blocks" mapstructure:"blocks"`
}

// Block returns the static block with the given id.
func (f *Form) Block(id string) (*Block, bool) {
	for i := range f.Blocks {
		if f.Blocks[i].ID == id {
			return &f.Blocks[i], true
		}
	}
	return nil, false
}

// Block is a named, prioritized group of questions.
// It is the unit of activation and progress weighting.
type Block struct {
	ID    string `json:"block_id" yaml:"block_id" mapstructure:"block_id"`
	Title string `json:"title,omitempty" yaml:"title,omitempty" mapstructure:"title"`
	// Priority orders active blocks, lowest first. On a multiBlock blueprint
	// 0 means unset: each copy is placed after every existing block. Give a
	// blueprint a negative priority to place its copies first.
	Priority      float64    `json:"priority" yaml:"priority" mapstructure:"priority"`
	DefaultActive bool       `json:"default_active,omitempty" yaml:"default_active,omitempty" mapstructure:"default_active"`
	Invisible     bool       `json:"invisible,omitempty" yaml:"invisible,omitempty" mapstructure:"invisible"`
	MultiBlock    bool       `json:"multiBlock,omitempty" yaml:"multiBlock,omitempty" mapstructure:"multiBlock"`
	BlueprintID   string     `json:"blueprint_id,omitempty" yaml:"blueprint_id,omitempty" mapstructure:"blueprint_id"`
	CopyNumber    int        `json:"copy_number,omitempty" yaml:"copy_number,omitempty" mapstructure:"copy_number"`
	Questions     []Question `json:"questions" yaml:"questions" mapstructure:"questions"`
}

// Ref returns the parameterized reference of a dynamic block.
// Static blocks report false.
func (b *Block) Ref() (BlockRef, bool) {
	if b.BlueprintID == "" || b.CopyNumber == 0 {
		return BlockRef{}, false
	}
	return BlockRef{BlueprintID: b.BlueprintID, CopyNumber: b.CopyNumber}, true
}

// FirstQuestion returns the first question in declaration order.
func (b *Block) FirstQuestion() (*Question, bool) {
	if len(b.Questions) == 0 {
		return nil, false
	}
	return &b.Questions[0], true
}

// QuestionIndex returns the position of a question in the block or -1.
func (b *Block) QuestionIndex(questionID string) int {
	for i := range b.Questions {
		if b.Questions[i].ID == questionID {
			return i
		}
	}
	return -1
}

// QuestionIDs lists the ids of the block's own questions.
func (b *Block) QuestionIDs() []string {
	ids := make([]string, len(b.Questions))
	for i, q := range b.Questions {
		ids[i] = q.ID
	}
	return ids
}

// Clone returns a deep copy of the block.
func (b Block) Clone() Block {
	out := b
	if b.Questions != nil {
		out.Questions = make([]Question, len(b.Questions))
		for i, q := range b.Questions {
			out.Questions[i] = q.Clone()
		}
	}
	return out
}

// Question is a single step inside a block.
// Its text may embed {{placeholder_key}} tokens.
type Question struct {
	ID                         string                 `json:"question_id" yaml:"question_id" mapstructure:"question_id"`
	Text                       string                 `json:"question_text" yaml:"question_text" mapstructure:"question_text"`
	Notes                      string                 `json:"question_notes,omitempty" yaml:"question_notes,omitempty" mapstructure:"question_notes"`
	Inline                     bool                   `json:"inline,omitempty" yaml:"inline,omitempty" mapstructure:"inline"`
	EndOfForm                  bool                   `json:"endOfForm,omitempty" yaml:"endOfForm,omitempty" mapstructure:"endOfForm"`
	SkippableWithNotSure       bool                   `json:"skippableWithNotSure,omitempty" yaml:"skippableWithNotSure,omitempty" mapstructure:"skippableWithNotSure"`
	LeadsToPlaceholderPriority string                 `json:"leads_to_placeholder_priority,omitempty" yaml:"leads_to_placeholder_priority,omitempty" mapstructure:"leads_to_placeholder_priority"`
	Placeholders               map[string]Placeholder `json:"placeholders,omitempty" yaml:"placeholders,omitempty" mapstructure:"placeholders"`
}

var placeholderToken = regexp.MustCompile(`\{\{\s*([A-Za-z0-9_.\-]+)\s*\}\}`)

// PlaceholderKeys returns the placeholder keys in the order they appear in the
// question text, followed by any remaining keys in lexical order.
func (q *Question) PlaceholderKeys() []string {
	keys := make([]string, 0, len(q.Placeholders))
	seen := make(map[string]bool, len(q.Placeholders))
	for _, m := range placeholderToken.FindAllStringSubmatch(q.Text, -1) {
		key := m[1]
		if _, ok := q.Placeholders[key]; ok && !seen[key] {
			seen[key] = true
			keys = append(keys, key)
		}
	}
	rest := make([]string, 0)
	for key := range q.Placeholders {
		if !seen[key] {
			rest = append(rest, key)
		}
	}
	sort.Strings(rest)
	return append(keys, rest...)
}

// Render replaces every {{key}} token with the text produced by display.
// Tokens without a placeholder definition are left untouched.
func (q *Question) Render(display func(key string, p Placeholder) string) string {
	return placeholderToken.ReplaceAllStringFunc(q.Text, func(tok string) string {
		key := placeholderToken.FindStringSubmatch(tok)[1]
		p, ok := q.Placeholders[key]
		if !ok {
			return tok
		}
		return display(key, p)
	})
}

// Clone returns a deep copy of the question.
func (q Question) Clone() Question {
	out := q
	if q.Placeholders != nil {
		out.Placeholders = make(map[string]Placeholder, len(q.Placeholders))
		for k, p := range q.Placeholders {
			out.Placeholders[k] = p.Clone()
		}
	}
	return out
}

// Placeholder is a named input slot inside a question's text.
// Only the fields matching Type are meaningful.
type Placeholder struct {
	Type  PlaceholderType `json:"type" yaml:"type" mapstructure:"type"`
	Label string          `json:"placeholder_label,omitempty" yaml:"placeholder_label,omitempty" mapstructure:"placeholder_label"`

	// select
	Multiple bool     `json:"multiple,omitempty" yaml:"multiple,omitempty" mapstructure:"multiple"`
	Options  []Option `json:"options,omitempty" yaml:"options,omitempty" mapstructure:"options"`

	// input
	InputType       string `json:"input_type,omitempty" yaml:"input_type,omitempty" mapstructure:"input_type"`
	InputValidation string `json:"input_validation,omitempty" yaml:"input_validation,omitempty" mapstructure:"input_validation"`

	// MultiBlockManager
	AddBlockLabel  string `json:"add_block_label,omitempty" yaml:"add_block_label,omitempty" mapstructure:"add_block_label"`
	BlockBlueprint string `json:"blockBlueprint,omitempty" yaml:"blockBlueprint,omitempty" mapstructure:"blockBlueprint"`

	// LeadsTo is the target of input and MultiBlockManager placeholders.
	LeadsTo Target `json:"leads_to,omitzero" yaml:"leads_to,omitempty" mapstructure:"leads_to"`
}

// Option looks up a select option by id.
func (p *Placeholder) Option(id string) (*Option, bool) {
	for i := range p.Options {
		if p.Options[i].ID == id {
			return &p.Options[i], true
		}
	}
	return nil, false
}

// Display renders an answer for this placeholder. Select answers show the
// option labels; unknown option ids are shown as-is.
func (p *Placeholder) Display(v Value) string {
	if p.Type != PlaceholderSelect {
		return v.String()
	}
	ids := v.Selected()
	labels := make([]string, len(ids))
	for i, id := range ids {
		labels[i] = id
		if o, ok := p.Option(id); ok && o.Label != "" {
			labels[i] = o.Label
		}
	}
	return strings.Join(labels, ", ")
}

// Clone returns a deep copy of the placeholder.
func (p Placeholder) Clone() Placeholder {
	out := p
	if p.Options != nil {
		out.Options = make([]Option, len(p.Options))
		copy(out.Options, p.Options)
	}
	return out
}

// Option is one choice of a select placeholder.
type Option struct {
	ID       string `json:"id" yaml:"id" mapstructure:"id"`
	Label    string `json:"label" yaml:"label" mapstructure:"label"`
	LeadsTo  Target `json:"leads_to" yaml:"leads_to" mapstructure:"leads_to"`
	AddBlock string `json:"add_block,omitempty" yaml:"add_block,omitempty" mapstructure:"add_block"`
}
