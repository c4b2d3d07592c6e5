package runtime

import (
	"slices"
	"sort"

	"github.com/aretw0/simflow/pkg/domain"
)

// applySelectChange reconciles add_block activations when a select answer
// changes. Targets still reached by some selected option are left alone.
func (r *Reducer) applySelectChange(s *domain.FormState, questionID, key string, p domain.Placeholder, prev, next domain.Value) {
	before := addBlockTargets(p, prev)
	after := addBlockTargets(p, next)
	act := domain.Activation{QuestionID: questionID, PlaceholderKey: key}

	for _, target := range before {
		if !slices.Contains(after, target) {
			r.withdraw(s, target, act)
		}
	}
	for _, target := range after {
		if !slices.Contains(before, target) {
			r.activate(s, target, act)
		}
	}
}

// addBlockTargets lists, in selection order, the distinct blocks that the
// selected options ask to activate.
func addBlockTargets(p domain.Placeholder, v domain.Value) []string {
	var out []string
	for _, id := range v.Selected() {
		opt, ok := p.Option(id)
		if !ok || opt.AddBlock == "" {
			continue
		}
		if !slices.Contains(out, opt.AddBlock) {
			out = append(out, opt.AddBlock)
		}
	}
	return out
}

func (r *Reducer) activate(s *domain.FormState, target string, act domain.Activation) {
	b, ok := r.block(s, target)
	if !ok {
		r.logger.Warn("add_block references unknown block", "block_id", target, "question_id", act.QuestionID)
		return
	}
	if b.MultiBlock {
		id, ok := r.createDynamicBlock(s, target)
		if ok {
			record(s, id, act)
		}
		return
	}
	s.ActiveBlocks = add(s.ActiveBlocks, target)
	record(s, target, act)
}

func (r *Reducer) withdraw(s *domain.FormState, target string, act domain.Activation) {
	if bp, ok := r.form.Block(target); ok && bp.MultiBlock {
		var orphans []string
		for _, d := range s.DynamicBlocks {
			if d.BlueprintID != target || !slices.Contains(s.BlockActivations[d.ID], act) {
				continue
			}
			if forget(s, d.ID, act) {
				orphans = append(orphans, d.ID)
			}
		}
		for _, id := range orphans {
			r.dropOrphan(s, id)
		}
		return
	}
	if forget(s, target, act) {
		r.dropOrphan(s, target)
	}
}

// releaseQuestions withdraws every activation made by answers to the given
// questions. Blocks left without any activation source are dropped.
func (r *Reducer) releaseQuestions(s *domain.FormState, questionIDs []string) {
	if len(s.BlockActivations) == 0 {
		return
	}
	ids := make([]string, 0, len(s.BlockActivations))
	for id := range s.BlockActivations {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	var orphans []string
	for _, id := range ids {
		acts := s.BlockActivations[id]
		kept := acts[:0:0]
		for _, a := range acts {
			if !slices.Contains(questionIDs, a.QuestionID) {
				kept = append(kept, a)
			}
		}
		switch {
		case len(kept) == len(acts):
		case len(kept) == 0:
			delete(s.BlockActivations, id)
			orphans = append(orphans, id)
		default:
			s.BlockActivations[id] = kept
		}
	}
	for _, id := range orphans {
		r.dropOrphan(s, id)
	}
}

// dropOrphan removes a block that lost its last activation source.
// default_active blocks stay active.
func (r *Reducer) dropOrphan(s *domain.FormState, blockID string) {
	if _, ok := s.DynamicBlock(blockID); ok {
		r.deleteDynamicBlock(s, blockID)
		return
	}
	if b, ok := r.form.Block(blockID); ok && !b.DefaultActive {
		r.removeActiveBlock(s, blockID)
	}
}

func record(s *domain.FormState, blockID string, act domain.Activation) {
	if slices.Contains(s.BlockActivations[blockID], act) {
		return
	}
	s.BlockActivations[blockID] = append(s.BlockActivations[blockID], act)
}

// forget removes one activation and reports whether the block has none left.
func forget(s *domain.FormState, blockID string, act domain.Activation) bool {
	acts, ok := s.BlockActivations[blockID]
	if !ok {
		return false
	}
	kept := acts[:0:0]
	for _, a := range acts {
		if a != act {
			kept = append(kept, a)
		}
	}
	if len(kept) > 0 {
		s.BlockActivations[blockID] = kept
		return false
	}
	delete(s.BlockActivations, blockID)
	return true
}
