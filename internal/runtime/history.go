package runtime

import (
	"github.com/aretw0/simflow/pkg/domain"
)

// HistoryFor returns the most recent jump that landed on questionID.
func HistoryFor(s *domain.FormState, questionID string) (domain.NavigationEntry, bool) {
	for i := len(s.NavigationHistory) - 1; i >= 0; i-- {
		if s.NavigationHistory[i].ToQuestionID == questionID {
			return s.NavigationHistory[i], true
		}
	}
	return domain.NavigationEntry{}, false
}

// InlineParent returns the question an inline question was reached from.
// Non-inline questions, and inline ones never jumped to, have no parent.
func (r *Reducer) InlineParent(s *domain.FormState, questionID string) (domain.Question, bool) {
	_, q, ok := r.findQuestion(s, questionID)
	if !ok || !q.Inline {
		return domain.Question{}, false
	}
	entry, ok := HistoryFor(s, questionID)
	if !ok {
		return domain.Question{}, false
	}
	_, parent, ok := r.findQuestion(s, entry.FromQuestionID)
	if !ok {
		return domain.Question{}, false
	}
	return parent.Clone(), true
}

// InlineChain walks inline parents upward and returns them outermost first.
func (r *Reducer) InlineChain(s *domain.FormState, questionID string) []domain.Question {
	var chain []domain.Question
	seen := map[string]bool{questionID: true}
	for id := questionID; ; {
		parent, ok := r.InlineParent(s, id)
		if !ok || seen[parent.ID] {
			break
		}
		seen[parent.ID] = true
		chain = append([]domain.Question{parent}, chain...)
		id = parent.ID
	}
	return chain
}
