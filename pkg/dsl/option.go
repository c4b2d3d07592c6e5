package dsl

import "github.com/aretw0/simflow/pkg/domain"

// OptionBuilder configures one select option.
type OptionBuilder struct {
	option domain.Option
}

// Opt starts an option. Without a target it falls through to next_block.
func Opt(id, label string) *OptionBuilder {
	return &OptionBuilder{option: domain.Option{ID: id, Label: label}}
}

// To jumps to a question when the option is chosen.
func (o *OptionBuilder) To(questionID string) *OptionBuilder {
	o.option.LeadsTo = domain.GoTo(questionID)
	return o
}

// NextBlock advances to the next active block.
func (o *OptionBuilder) NextBlock() *OptionBuilder {
	o.option.LeadsTo = domain.NextBlock()
	return o
}

// StopFlow ends the flow.
func (o *OptionBuilder) StopFlow() *OptionBuilder {
	o.option.LeadsTo = domain.StopFlow()
	return o
}

// AddBlock activates a block (or instantiates a blueprint) while selected.
func (o *OptionBuilder) AddBlock(blockID string) *OptionBuilder {
	o.option.AddBlock = blockID
	return o
}

// Build returns the underlying domain.Option.
func (o *OptionBuilder) Build() domain.Option {
	return o.option
}

func options(opts []*OptionBuilder) []domain.Option {
	out := make([]domain.Option, 0, len(opts))
	for _, o := range opts {
		out = append(out, o.option)
	}
	return out
}
