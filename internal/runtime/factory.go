package runtime

import (
	"github.com/aretw0/simflow/pkg/domain"
)

// CreateDynamicBlock instantiates a new numbered copy of a multiBlock
// blueprint and activates it. It returns the id of the new block.
//
// Copy numbers grow by one per blueprint, except that a number whose derived
// id is already taken by another block is skipped.
func (r *Reducer) CreateDynamicBlock(state *domain.FormState, blueprintID string) (*domain.FormState, string, bool) {
	s := r.snapshot(state)
	id, ok := r.createDynamicBlock(s, blueprintID)
	return s, id, ok
}

// DeleteDynamicBlock removes a dynamic block with its answers.
// Unknown ids and static blocks are ignored.
func (r *Reducer) DeleteDynamicBlock(state *domain.FormState, blockID string) (*domain.FormState, bool) {
	s := r.snapshot(state)
	ok := r.deleteDynamicBlock(s, blockID)
	return s, ok
}

func (r *Reducer) createDynamicBlock(s *domain.FormState, blueprintID string) (string, bool) {
	bp, ok := r.form.Block(blueprintID)
	if !ok || !bp.MultiBlock {
		r.logger.Warn("cannot instantiate block: not a blueprint", "blueprint_id", blueprintID)
		return "", false
	}

	next := 1
	for _, b := range s.DynamicBlocks {
		if b.BlueprintID == blueprintID && b.CopyNumber >= next {
			next = b.CopyNumber + 1
		}
	}
	ref := domain.BlockRef{BlueprintID: blueprintID, CopyNumber: next}
	for r.exists(s, ref.BlockID()) {
		ref.CopyNumber++
	}

	clone := instantiate(bp, ref)
	// Zero is the unset priority.
	if bp.Priority == 0 {
		clone.Priority = r.maxPriority(s) + 1
	}

	s.DynamicBlocks = append(s.DynamicBlocks, clone)
	s.ActiveBlocks = add(s.ActiveBlocks, clone.ID)
	return clone.ID, true
}

// instantiate deep-copies a blueprint and expands the copy number token in
// question ids and question targets.
func instantiate(bp *domain.Block, ref domain.BlockRef) domain.Block {
	clone := bp.Clone()
	clone.ID = ref.BlockID()
	clone.BlueprintID = ref.BlueprintID
	clone.CopyNumber = ref.CopyNumber
	clone.MultiBlock = false
	clone.DefaultActive = false

	for i := range clone.Questions {
		q := &clone.Questions[i]
		q.ID = ref.Expand(bp.Questions[i].ID)
		for key, p := range q.Placeholders {
			orig := bp.Questions[i].Placeholders[key]
			p.LeadsTo = ref.ExpandTarget(orig.LeadsTo)
			for j := range p.Options {
				p.Options[j].LeadsTo = ref.ExpandTarget(orig.Options[j].LeadsTo)
			}
			q.Placeholders[key] = p
		}
	}
	return clone
}

func (r *Reducer) deleteDynamicBlock(s *domain.FormState, blockID string) bool {
	b, ok := s.DynamicBlock(blockID)
	if !ok {
		return false
	}
	qids := b.QuestionIDs()

	kept := make([]domain.Block, 0, len(s.DynamicBlocks))
	for _, d := range s.DynamicBlocks {
		if d.ID != blockID {
			kept = append(kept, d)
		}
	}
	s.DynamicBlocks = kept
	s.ActiveBlocks = remove(s.ActiveBlocks, blockID)
	s.CompletedBlocks = remove(s.CompletedBlocks, blockID)
	delete(s.BlockActivations, blockID)

	purgeAnswers(s, qids)
	r.releaseQuestions(s, qids)
	return true
}

func (r *Reducer) exists(s *domain.FormState, id string) bool {
	_, ok := r.block(s, id)
	return ok
}

func (r *Reducer) maxPriority(s *domain.FormState) float64 {
	var maxP float64
	for _, b := range r.allBlocks(s) {
		if b.Priority > maxP {
			maxP = b.Priority
		}
	}
	return maxP
}
