// Package validator checks form definitions before they are served.
// The runtime tolerates every problem reported here; the validator exists so
// authors find them before users do.
package validator

import (
	"fmt"
	"regexp"
	"slices"
	"sort"
	"strings"

	"github.com/aretw0/simflow/pkg/domain"
	"github.com/aretw0/simflow/pkg/schema"
)

// Severity ranks an Issue.
type Severity string

const (
	SeverityError   Severity = "error"
	SeverityWarning Severity = "warning"
)

// Issue is one finding, located as precisely as possible.
type Issue struct {
	Severity    Severity `json:"severity"`
	BlockID     string   `json:"block_id,omitempty"`
	QuestionID  string   `json:"question_id,omitempty"`
	Placeholder string   `json:"placeholder,omitempty"`
	Message     string   `json:"message"`
}

func (i Issue) String() string {
	var loc []string
	if i.BlockID != "" {
		loc = append(loc, "block "+i.BlockID)
	}
	if i.QuestionID != "" {
		loc = append(loc, "question "+i.QuestionID)
	}
	if i.Placeholder != "" {
		loc = append(loc, "placeholder "+i.Placeholder)
	}
	if len(loc) == 0 {
		return fmt.Sprintf("%s: %s", i.Severity, i.Message)
	}
	return fmt.Sprintf("%s: %s: %s", i.Severity, strings.Join(loc, ", "), i.Message)
}

// Report collects the issues of one form.
type Report struct {
	FormID string  `json:"form_id"`
	Issues []Issue `json:"issues"`
}

// Errors returns the issues of error severity.
func (r Report) Errors() []Issue { return r.filter(SeverityError) }

// Warnings returns the issues of warning severity.
func (r Report) Warnings() []Issue { return r.filter(SeverityWarning) }

func (r Report) filter(s Severity) []Issue {
	var out []Issue
	for _, i := range r.Issues {
		if i.Severity == s {
			out = append(out, i)
		}
	}
	return out
}

// Err summarizes the errors of the report, or returns nil when there are none.
func (r Report) Err() error {
	errs := r.Errors()
	if len(errs) == 0 {
		return nil
	}
	lines := make([]string, len(errs))
	for i, e := range errs {
		lines[i] = e.String()
	}
	return fmt.Errorf("found %d errors:\n- %s", len(errs), strings.Join(lines, "\n- "))
}

type checker struct {
	form   *domain.Form
	report Report

	blocks    map[string]*domain.Block
	questions map[string]string // question id -> block id (static blocks only)
	added     map[string]bool   // blocks referenced by add_block or a manager
	jumped    map[string]bool   // questions referenced by a literal leads_to
}

// Validate inspects a form definition.
func Validate(form *domain.Form) Report {
	c := &checker{
		form:      form,
		report:    Report{FormID: form.ID, Issues: []Issue{}},
		blocks:    make(map[string]*domain.Block),
		questions: make(map[string]string),
		added:     make(map[string]bool),
		jumped:    make(map[string]bool),
	}
	c.index()
	for i := range form.Blocks {
		c.block(&form.Blocks[i])
	}
	c.reachability()
	return c.report
}

func (c *checker) add(s Severity, blockID, questionID, key, format string, args ...any) {
	c.report.Issues = append(c.report.Issues, Issue{
		Severity:    s,
		BlockID:     blockID,
		QuestionID:  questionID,
		Placeholder: key,
		Message:     fmt.Sprintf(format, args...),
	})
}

func (c *checker) index() {
	if c.form.ID == "" {
		c.add(SeverityWarning, "", "", "", "form has no id")
	}
	for i := range c.form.Blocks {
		b := &c.form.Blocks[i]
		if b.ID == "" {
			c.add(SeverityError, "", "", "", "block #%d has no block_id", i)
			continue
		}
		if _, dup := c.blocks[b.ID]; dup {
			c.add(SeverityError, b.ID, "", "", "duplicate block id")
			continue
		}
		c.blocks[b.ID] = b

		for _, q := range b.Questions {
			switch {
			case q.ID == "":
				c.add(SeverityError, b.ID, "", "", "question without question_id")
			case b.MultiBlock && !strings.Contains(q.ID, domain.CopyNumberToken):
				c.add(SeverityError, b.ID, q.ID, "", "blueprint question id lacks %s; every copy would reuse it", domain.CopyNumberToken)
			case b.MultiBlock:
			default:
				if other, dup := c.questions[q.ID]; dup {
					c.add(SeverityError, b.ID, q.ID, "", "duplicate question id (also in block %s)", other)
					continue
				}
				c.questions[q.ID] = b.ID
			}
		}
	}

	if !slices.ContainsFunc(c.form.Blocks, func(b domain.Block) bool {
		return b.DefaultActive && !b.MultiBlock && !b.Invisible && len(b.Questions) > 0
	}) {
		c.add(SeverityWarning, "", "", "", "no visible default_active block; sessions start without an active question")
	}
}

func (c *checker) block(b *domain.Block) {
	if b.MultiBlock && b.DefaultActive {
		c.add(SeverityWarning, b.ID, "", "", "blueprints are never active; default_active is ignored")
	}
	if len(b.Questions) == 0 {
		c.add(SeverityWarning, b.ID, "", "", "block has no questions")
	}
	if b.MultiBlock {
		copies := copyPattern(b.ID)
		for _, other := range c.form.Blocks {
			if !other.MultiBlock && other.ID != "" && copies.MatchString(other.ID) {
				c.add(SeverityWarning, other.ID, "", "", "block id matches copies of blueprint %s; that copy number is skipped", b.ID)
			}
		}
	}
	for i := range b.Questions {
		c.question(b, &b.Questions[i])
	}
}

func (c *checker) question(b *domain.Block, q *domain.Question) {
	inText := map[string]bool{}
	q.Render(func(key string, _ domain.Placeholder) string {
		inText[key] = true
		return ""
	})
	for key := range q.Placeholders {
		if !inText[key] {
			c.add(SeverityWarning, b.ID, q.ID, key, "placeholder is not referenced in question_text")
		}
	}
	if pri := q.LeadsToPlaceholderPriority; pri != "" {
		if _, ok := q.Placeholders[pri]; !ok {
			c.add(SeverityWarning, b.ID, q.ID, "", "leads_to_placeholder_priority names unknown placeholder %q", pri)
		}
	}

	keys := make([]string, 0, len(q.Placeholders))
	for k := range q.Placeholders {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, key := range keys {
		c.placeholder(b, q, key, q.Placeholders[key])
	}
}

func (c *checker) placeholder(b *domain.Block, q *domain.Question, key string, p domain.Placeholder) {
	switch p.Type {
	case domain.PlaceholderSelect:
		if len(p.Options) == 0 {
			c.add(SeverityError, b.ID, q.ID, key, "select has no options")
		}
		seen := map[string]bool{}
		for _, opt := range p.Options {
			if seen[opt.ID] {
				c.add(SeverityError, b.ID, q.ID, key, "duplicate option id %q", opt.ID)
			}
			seen[opt.ID] = true
			c.target(b, q, key, opt.LeadsTo)
			if opt.AddBlock != "" {
				c.added[opt.AddBlock] = true
				if _, ok := c.blocks[opt.AddBlock]; !ok {
					c.add(SeverityError, b.ID, q.ID, key, "option %q adds unknown block %q", opt.ID, opt.AddBlock)
				}
			}
		}

	case domain.PlaceholderInput:
		c.target(b, q, key, p.LeadsTo)
		if !schema.Known(p.InputType) {
			c.add(SeverityWarning, b.ID, q.ID, key, "unknown input_type %q is treated as text", p.InputType)
		}
		for _, r := range schema.ParseRules(p.InputValidation) {
			if err := schema.CheckRule(r); err != nil {
				c.add(SeverityWarning, b.ID, q.ID, key, "ignored rule: %v", err)
			}
		}

	case domain.PlaceholderMultiBlock:
		c.target(b, q, key, p.LeadsTo)
		c.added[p.BlockBlueprint] = true
		bp, ok := c.blocks[p.BlockBlueprint]
		switch {
		case p.BlockBlueprint == "":
			c.add(SeverityError, b.ID, q.ID, key, "MultiBlockManager without blockBlueprint")
		case !ok:
			c.add(SeverityError, b.ID, q.ID, key, "blockBlueprint %q does not exist", p.BlockBlueprint)
		case !bp.MultiBlock:
			c.add(SeverityError, b.ID, q.ID, key, "blockBlueprint %q is not a multiBlock blueprint", p.BlockBlueprint)
		}

	case "":
		c.add(SeverityError, b.ID, q.ID, key, "placeholder has no type")
	default:
		c.add(SeverityError, b.ID, q.ID, key, "unknown placeholder type %q", p.Type)
	}
}

// target checks that a literal question target exists. Targets inside a
// blueprint may point at the blueprint's own templated questions.
func (c *checker) target(b *domain.Block, q *domain.Question, key string, t domain.Target) {
	if t.Kind != domain.TargetQuestion {
		return
	}
	c.jumped[t.QuestionID] = true
	if _, ok := c.questions[t.QuestionID]; ok {
		return
	}
	if b.MultiBlock && b.QuestionIndex(t.QuestionID) >= 0 {
		return
	}
	c.add(SeverityError, b.ID, q.ID, key, "leads_to %q does not match any question", t.QuestionID)
}

func (c *checker) reachability() {
	for _, b := range c.form.Blocks {
		if b.ID == "" {
			continue
		}
		if !b.DefaultActive && !c.added[b.ID] {
			c.add(SeverityWarning, b.ID, "", "", "block is never activated (not default_active and no add_block references it)")
		}
		for _, q := range b.Questions {
			if q.Inline && !c.jumped[q.ID] {
				c.add(SeverityWarning, b.ID, q.ID, "", "inline question is never the target of a leads_to")
			}
		}
	}
}

// copyPattern matches the ids that copies of a blueprint receive.
func copyPattern(blueprintID string) *regexp.Regexp {
	if !strings.Contains(blueprintID, domain.CopyNumberToken) {
		return regexp.MustCompile("^" + regexp.QuoteMeta(blueprintID) + "[0-9]+$")
	}
	parts := strings.Split(blueprintID, domain.CopyNumberToken)
	for i, p := range parts {
		parts[i] = regexp.QuoteMeta(p)
	}
	return regexp.MustCompile("^" + strings.Join(parts, "[0-9]+") + "$")
}
