package dsl

import "github.com/aretw0/simflow/pkg/domain"

// BlockBuilder provides a fluent API for configuring a block.
type BlockBuilder struct {
	block     domain.Block
	questions []*QuestionBuilder
	builder   *Builder
}

// Title sets the block title.
func (bb *BlockBuilder) Title(title string) *BlockBuilder {
	bb.block.Title = title
	return bb
}

// Priority sets the navigation order; lower comes first.
func (bb *BlockBuilder) Priority(p float64) *BlockBuilder {
	bb.block.Priority = p
	return bb
}

// DefaultActive makes the block active when a session starts.
func (bb *BlockBuilder) DefaultActive() *BlockBuilder {
	bb.block.DefaultActive = true
	return bb
}

// Invisible hides the block from next_block navigation and progress.
func (bb *BlockBuilder) Invisible() *BlockBuilder {
	bb.block.Invisible = true
	return bb
}

// Blueprint marks the block as a multiBlock template. Use
// domain.CopyNumberToken in ids that must be unique per instance.
func (bb *BlockBuilder) Blueprint() *BlockBuilder {
	bb.block.MultiBlock = true
	return bb
}

// Question appends a question to the block.
func (bb *BlockBuilder) Question(id, text string) *QuestionBuilder {
	qb := &QuestionBuilder{
		question: domain.Question{ID: id, Text: text, Placeholders: map[string]domain.Placeholder{}},
		block:    bb,
	}
	bb.questions = append(bb.questions, qb)
	return qb
}

// Block continues with another block of the same form.
func (bb *BlockBuilder) Block(id string) *BlockBuilder {
	return bb.builder.Block(id)
}

func (bb *BlockBuilder) build() domain.Block {
	block := bb.block
	block.Questions = make([]domain.Question, 0, len(bb.questions))
	for _, qb := range bb.questions {
		block.Questions = append(block.Questions, qb.question.Clone())
	}
	return block
}
