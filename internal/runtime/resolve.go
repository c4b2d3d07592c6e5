package runtime

import (
	"github.com/aretw0/simflow/pkg/domain"
)

// ResolveTarget derives where to go after a question from its answers.
//
// The placeholder named by leads_to_placeholder_priority is consulted first,
// then the others in display order. A single select yields the chosen
// option's target, a multiple select the first selected option in
// declaration order, and input or MultiBlockManager placeholders their own
// leads_to. Without any target the result is next_block.
func (r *Reducer) ResolveTarget(s *domain.FormState, questionID string) domain.Target {
	_, q, ok := r.findQuestion(s, questionID)
	if !ok {
		return domain.NextBlock()
	}

	keys := q.PlaceholderKeys()
	if pri := q.LeadsToPlaceholderPriority; pri != "" {
		if _, ok := q.Placeholders[pri]; ok {
			keys = append([]string{pri}, remove(keys, pri)...)
		}
	}

	for _, key := range keys {
		p := q.Placeholders[key]
		v, answered := s.Response(questionID, key)
		if t := placeholderTarget(p, v, answered); !t.IsZero() {
			return t
		}
	}
	return domain.NextBlock()
}

func placeholderTarget(p domain.Placeholder, v domain.Value, answered bool) domain.Target {
	switch p.Type {
	case domain.PlaceholderSelect:
		if !answered {
			return domain.Target{}
		}
		selected := v.Selected()
		for _, opt := range p.Options {
			for _, id := range selected {
				if id == opt.ID && !opt.LeadsTo.IsZero() {
					return opt.LeadsTo
				}
			}
		}
		return domain.Target{}
	default:
		return p.LeadsTo
	}
}
