package dsl

import (
	"errors"
	"fmt"

	"github.com/aretw0/simflow/pkg/adapters/memory"
	"github.com/aretw0/simflow/pkg/domain"
)

// Builder manages the form construction.
type Builder struct {
	form   domain.Form
	blocks []*BlockBuilder
	index  map[string]*BlockBuilder
}

// New creates a new form builder.
func New(id string) *Builder {
	return &Builder{
		form:  domain.Form{ID: id},
		index: make(map[string]*BlockBuilder),
	}
}

// Title sets the human readable name of the form.
func (b *Builder) Title(title string) *Builder {
	b.form.Title = title
	return b
}

// Block adds a block to the form in declaration order.
// If the block already exists, it returns the existing builder.
func (b *Builder) Block(id string) *BlockBuilder {
	if bb, ok := b.index[id]; ok {
		return bb
	}
	bb := &BlockBuilder{block: domain.Block{ID: id}, builder: b}
	b.index[id] = bb
	b.blocks = append(b.blocks, bb)
	return bb
}

// Build assembles the form. It fails on missing or duplicate ids, which the
// runtime would otherwise silently tolerate.
func (b *Builder) Build() (*domain.Form, error) {
	if b.form.ID == "" {
		return nil, errors.New("form id is required")
	}

	form := b.form
	form.Blocks = make([]domain.Block, 0, len(b.blocks))
	questions := make(map[string]string)
	var errs []error

	for _, bb := range b.blocks {
		block := bb.build()
		if block.ID == "" {
			errs = append(errs, errors.New("block id is required"))
		}
		for _, q := range block.Questions {
			if q.ID == "" {
				errs = append(errs, fmt.Errorf("block %s: question id is required", block.ID))
				continue
			}
			if owner, dup := questions[q.ID]; dup {
				errs = append(errs, fmt.Errorf("question %s declared in %s and %s", q.ID, owner, block.ID))
				continue
			}
			questions[q.ID] = block.ID
		}
		form.Blocks = append(form.Blocks, block)
	}
	if err := errors.Join(errs...); err != nil {
		return nil, err
	}
	return &form, nil
}

// BuildLoader compiles the form into a memory loader.
func (b *Builder) BuildLoader() (*memory.Loader, error) {
	form, err := b.Build()
	if err != nil {
		return nil, err
	}
	loader, err := memory.NewLoader(form)
	if err != nil {
		return nil, fmt.Errorf("failed to build memory loader: %w", err)
	}
	return loader, nil
}

// MustBuild is Build for static definitions; it panics on error.
func (b *Builder) MustBuild() *domain.Form {
	form, err := b.Build()
	if err != nil {
		panic(err)
	}
	return form
}
