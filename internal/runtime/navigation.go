package runtime

import (
	"github.com/aretw0/simflow/pkg/domain"
)

// OutcomeKind classifies the result of a navigation request.
type OutcomeKind string

const (
	// OutcomeMoved means the active question changed.
	OutcomeMoved OutcomeKind = "moved"
	// OutcomeStopped means a stop_flow target ended the flow.
	OutcomeStopped OutcomeKind = "stopped"
	// OutcomeEnd means next_block found neither a later block nor a later question.
	OutcomeEnd OutcomeKind = "end"
	// OutcomeUnresolved means the target or the current question is unknown.
	// The state is left unchanged.
	OutcomeUnresolved OutcomeKind = "unresolved"
)

// Outcome describes what a navigation request did.
type Outcome struct {
	Kind      OutcomeKind        `json:"kind"`
	To        domain.QuestionRef `json:"to,omitzero"`
	Completed string             `json:"completed,omitempty"`
}

// Navigate moves away from the current question following target.
// A zero target behaves as next_block.
func (r *Reducer) Navigate(state *domain.FormState, currentQuestionID string, target domain.Target) (*domain.FormState, Outcome) {
	s := r.snapshot(state)
	target = target.OrNextBlock()

	current, _, found := r.findQuestion(s, currentQuestionID)

	switch target.Kind {
	case domain.TargetStopFlow:
		out := Outcome{Kind: OutcomeStopped}
		if found {
			out.Completed = current.ID
			s.CompletedBlocks = add(s.CompletedBlocks, current.ID)
		}
		s.Finished = true
		s.IsNavigating = false
		return s, out

	case domain.TargetQuestion:
		dest, q, ok := r.findQuestion(s, target.QuestionID)
		if !ok {
			r.logger.Warn("navigation target not found", "from", currentQuestionID, "target", target.QuestionID)
			return r.snapshot(state), Outcome{Kind: OutcomeUnresolved}
		}
		to := domain.QuestionRef{BlockID: dest.ID, QuestionID: q.ID}
		from := domain.QuestionRef{QuestionID: currentQuestionID}
		if found {
			from.BlockID = current.ID
		}
		r.pushHistory(s, from, to)
		jump(s, to)
		return s, Outcome{Kind: OutcomeMoved, To: to}

	default:
		if !found {
			r.logger.Warn("current question not found", "question_id", currentQuestionID)
			return s, Outcome{Kind: OutcomeUnresolved}
		}
		// current points into s; capture what is needed before mutating.
		blockID := current.ID
		idx := current.QuestionIndex(currentQuestionID)
		var fallback domain.QuestionRef
		if idx+1 < len(current.Questions) {
			fallback = domain.QuestionRef{BlockID: blockID, QuestionID: current.Questions[idx+1].ID}
		}

		if next, ok := r.nextBlockAfter(s, blockID); ok {
			s.CompletedBlocks = add(s.CompletedBlocks, blockID)
			jump(s, next)
			return s, Outcome{Kind: OutcomeMoved, To: next, Completed: blockID}
		}
		if !fallback.IsZero() {
			jump(s, fallback)
			return s, Outcome{Kind: OutcomeMoved, To: fallback}
		}
		s.CompletedBlocks = add(s.CompletedBlocks, blockID)
		return s, Outcome{Kind: OutcomeEnd, Completed: blockID}
	}
}

// GoTo jumps to a question and raises the navigating flag.
func (r *Reducer) GoTo(state *domain.FormState, blockID, questionID string) *domain.FormState {
	s := r.Dispatch(state, domain.GoToQuestionAction(blockID, questionID))
	s.IsNavigating = true
	return s
}

// nextBlockAfter finds the first active, visible, non-empty block that comes
// strictly after blockID in priority order.
func (r *Reducer) nextBlockAfter(s *domain.FormState, blockID string) (domain.QuestionRef, bool) {
	passed := false
	for _, b := range r.orderedBlocks(s) {
		if b.ID == blockID {
			passed = true
			continue
		}
		if !passed || !s.IsActive(b.ID) || b.Invisible || len(b.Questions) == 0 {
			continue
		}
		return domain.QuestionRef{BlockID: b.ID, QuestionID: b.Questions[0].ID}, true
	}
	return domain.QuestionRef{}, false
}

// pushHistory records a question-to-question jump. A repeated jump between
// the same two questions replaces the older entry.
func (r *Reducer) pushHistory(s *domain.FormState, from, to domain.QuestionRef) {
	kept := s.NavigationHistory[:0:0]
	for _, e := range s.NavigationHistory {
		if e.FromQuestionID == from.QuestionID && e.ToQuestionID == to.QuestionID {
			continue
		}
		kept = append(kept, e)
	}
	s.NavigationHistory = append(kept, domain.NavigationEntry{
		FromBlockID:    from.BlockID,
		FromQuestionID: from.QuestionID,
		ToBlockID:      to.BlockID,
		ToQuestionID:   to.QuestionID,
		Timestamp:      r.now(),
	})
}

func jump(s *domain.FormState, to domain.QuestionRef) {
	s.ActiveQuestion = to
	s.IsNavigating = true
	s.Finished = false
}
