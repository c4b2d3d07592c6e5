package dsl

import "github.com/aretw0/simflow/pkg/domain"

// QuestionBuilder provides a fluent API for configuring a question.
// Label, Validate and LeadsTo apply to the most recently added placeholder.
type QuestionBuilder struct {
	question domain.Question
	last     string
	block    *BlockBuilder
}

// Select adds a single choice placeholder.
func (qb *QuestionBuilder) Select(key string, opts ...*OptionBuilder) *QuestionBuilder {
	return qb.add(key, domain.Placeholder{Type: domain.PlaceholderSelect, Options: options(opts)})
}

// MultiSelect adds a multiple choice placeholder.
func (qb *QuestionBuilder) MultiSelect(key string, opts ...*OptionBuilder) *QuestionBuilder {
	return qb.add(key, domain.Placeholder{Type: domain.PlaceholderSelect, Multiple: true, Options: options(opts)})
}

// Input adds a free text placeholder of the given input_type.
func (qb *QuestionBuilder) Input(key, inputType string) *QuestionBuilder {
	return qb.add(key, domain.Placeholder{Type: domain.PlaceholderInput, InputType: inputType})
}

// Manager adds a MultiBlockManager placeholder for a blueprint.
func (qb *QuestionBuilder) Manager(key, blueprintID, addLabel string) *QuestionBuilder {
	return qb.add(key, domain.Placeholder{
		Type:           domain.PlaceholderMultiBlock,
		BlockBlueprint: blueprintID,
		AddBlockLabel:  addLabel,
	})
}

// Label sets the placeholder label.
func (qb *QuestionBuilder) Label(label string) *QuestionBuilder {
	return qb.update(func(p *domain.Placeholder) { p.Label = label })
}

// Validate sets the input_validation rules, e.g. "required|min:1".
func (qb *QuestionBuilder) Validate(rules string) *QuestionBuilder {
	return qb.update(func(p *domain.Placeholder) { p.InputValidation = rules })
}

// LeadsTo sets the target of an input or MultiBlockManager placeholder.
func (qb *QuestionBuilder) LeadsTo(t domain.Target) *QuestionBuilder {
	return qb.update(func(p *domain.Placeholder) { p.LeadsTo = t })
}

// Notes sets the helper text shown under the question.
func (qb *QuestionBuilder) Notes(notes string) *QuestionBuilder {
	qb.question.Notes = notes
	return qb
}

// Inline marks the question as a sub-step of the question that jumps to it.
func (qb *QuestionBuilder) Inline() *QuestionBuilder {
	qb.question.Inline = true
	return qb
}

// EndOfForm marks the question as the last one of the flow.
func (qb *QuestionBuilder) EndOfForm() *QuestionBuilder {
	qb.question.EndOfForm = true
	return qb
}

// Skippable allows a "not sure" answer.
func (qb *QuestionBuilder) Skippable() *QuestionBuilder {
	qb.question.SkippableWithNotSure = true
	return qb
}

// PriorityPlaceholder names the placeholder that decides where to go next.
func (qb *QuestionBuilder) PriorityPlaceholder(key string) *QuestionBuilder {
	qb.question.LeadsToPlaceholderPriority = key
	return qb
}

// Question continues with the next question of the same block.
func (qb *QuestionBuilder) Question(id, text string) *QuestionBuilder {
	return qb.block.Question(id, text)
}

// Block continues with another block of the same form.
func (qb *QuestionBuilder) Block(id string) *BlockBuilder {
	return qb.block.Block(id)
}

// Build returns the underlying domain.Question.
func (qb *QuestionBuilder) Build() domain.Question {
	return qb.question.Clone()
}

func (qb *QuestionBuilder) add(key string, p domain.Placeholder) *QuestionBuilder {
	qb.question.Placeholders[key] = p
	qb.last = key
	return qb
}

func (qb *QuestionBuilder) update(fn func(*domain.Placeholder)) *QuestionBuilder {
	p, ok := qb.question.Placeholders[qb.last]
	if !ok {
		return qb
	}
	fn(&p)
	qb.question.Placeholders[qb.last] = p
	return qb
}
