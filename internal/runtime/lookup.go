package runtime

import (
	"sort"

	"github.com/aretw0/simflow/pkg/domain"
)

// orderedBlocks returns static blocks in declaration order followed by
// dynamic blocks in creation order, stably sorted by ascending priority.
// The pointers are only valid until the state's dynamic blocks change.
func (r *Reducer) orderedBlocks(s *domain.FormState) []*domain.Block {
	all := r.allBlocks(s)
	sort.SliceStable(all, func(i, j int) bool {
		return all[i].Priority < all[j].Priority
	})
	return all
}

func (r *Reducer) allBlocks(s *domain.FormState) []*domain.Block {
	all := make([]*domain.Block, 0, len(r.form.Blocks)+len(s.DynamicBlocks))
	for i := range r.form.Blocks {
		all = append(all, &r.form.Blocks[i])
	}
	for i := range s.DynamicBlocks {
		all = append(all, &s.DynamicBlocks[i])
	}
	return all
}

func (r *Reducer) block(s *domain.FormState, id string) (*domain.Block, bool) {
	if b, ok := r.form.Block(id); ok {
		return b, true
	}
	return s.DynamicBlock(id)
}

// findQuestion searches static then dynamic blocks linearly.
func (r *Reducer) findQuestion(s *domain.FormState, questionID string) (*domain.Block, *domain.Question, bool) {
	for _, b := range r.allBlocks(s) {
		if i := b.QuestionIndex(questionID); i >= 0 {
			return b, &b.Questions[i], true
		}
	}
	return nil, nil, false
}

// FindQuestion returns copies of a question and the block that contains it.
func (r *Reducer) FindQuestion(s *domain.FormState, questionID string) (domain.Block, domain.Question, bool) {
	b, q, ok := r.findQuestion(s, questionID)
	if !ok {
		return domain.Block{}, domain.Question{}, false
	}
	return b.Clone(), q.Clone(), true
}

// Block returns a copy of a static or dynamic block.
func (r *Reducer) Block(s *domain.FormState, id string) (domain.Block, bool) {
	b, ok := r.block(s, id)
	if !ok {
		return domain.Block{}, false
	}
	return b.Clone(), true
}

// Blocks returns copies of all static and dynamic blocks in navigation order.
func (r *Reducer) Blocks(s *domain.FormState) []domain.Block {
	ordered := r.orderedBlocks(s)
	out := make([]domain.Block, len(ordered))
	for i, b := range ordered {
		out[i] = b.Clone()
	}
	return out
}

// DynamicBlocksByBlueprint lists the instances of a blueprint in creation order.
func DynamicBlocksByBlueprint(s *domain.FormState, blueprintID string) []domain.Block {
	out := make([]domain.Block, 0)
	for _, b := range s.DynamicBlocks {
		if b.BlueprintID == blueprintID {
			out = append(out, b.Clone())
		}
	}
	return out
}
