package simflow

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/aretw0/simflow/internal/runtime"
	"github.com/aretw0/simflow/pkg/domain"
)

// Session is one user's walk through a form. Every mutating call applies a
// reducer action, checkpoints the result to the engine's store and fires the
// lifecycle hooks for what changed.
//
// A Session is safe for concurrent use, but callers that care about the order
// of navigation requests should serialize them (e.g. while IsNavigating).
type Session struct {
	id     string
	engine *Engine
	// held is set for sessions handed out by Engine.Do, which already owns
	// the manager lock.
	held bool

	mu     sync.Mutex
	state  *domain.FormState
	timer  *time.Timer
	closed bool
}

// ID returns the session id.
func (s *Session) ID() string { return s.id }

// State returns a snapshot of the current FormState.
func (s *Session) State() *domain.FormState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.Snapshot()
}

// Dispatch applies any reducer action.
func (s *Session) Dispatch(ctx context.Context, action domain.Action) (*domain.FormState, error) {
	return s.mutate(ctx, func(st *domain.FormState) *domain.FormState {
		return s.engine.reducer.Dispatch(st, action)
	})
}

// SetResponse stores an answer, reconciling add_block activations.
func (s *Session) SetResponse(ctx context.Context, questionID, placeholder string, v domain.Value) error {
	_, err := s.Dispatch(ctx, domain.SetResponseAction(questionID, placeholder, v))
	return err
}

// GoToQuestion jumps to a question without validating that it exists.
func (s *Session) GoToQuestion(ctx context.Context, blockID, questionID string) error {
	_, err := s.mutate(ctx, func(st *domain.FormState) *domain.FormState {
		return s.engine.reducer.GoTo(st, blockID, questionID)
	})
	return err
}

// NavigateToNextQuestion leaves currentQuestionID following target.
// Unresolvable targets leave the state untouched and report OutcomeUnresolved.
func (s *Session) NavigateToNextQuestion(ctx context.Context, currentQuestionID string, target domain.Target) (Outcome, error) {
	return s.navigate(ctx, func(*domain.FormState) (string, domain.Target, bool) {
		return currentQuestionID, target, true
	})
}

// Next resolves the target of the active question from its answers and
// navigates there. Both steps see the same state.
func (s *Session) Next(ctx context.Context) (Outcome, error) {
	return s.navigate(ctx, func(st *domain.FormState) (string, domain.Target, bool) {
		current := st.ActiveQuestion.QuestionID
		if current == "" {
			return "", domain.Target{}, false
		}
		return current, s.engine.reducer.ResolveTarget(st, current), true
	})
}

// navigate picks the origin and target from the state inside the same
// mutation that applies them. When pick reports false there is nothing to
// leave and the outcome is OutcomeEnd.
func (s *Session) navigate(ctx context.Context, pick func(*domain.FormState) (string, domain.Target, bool)) (Outcome, error) {
	var (
		from   string
		target domain.Target
		out    runtime.Outcome
	)
	_, err := s.mutate(ctx, func(st *domain.FormState) *domain.FormState {
		var ok bool
		from, target, ok = pick(st)
		if !ok {
			out = Outcome{Kind: OutcomeEnd}
			return st
		}
		var next *domain.FormState
		next, out = s.engine.reducer.Navigate(st, from, target)
		return next
	})
	if err != nil {
		return out, err
	}
	if out.Kind == OutcomeUnresolved {
		s.engine.emitUnresolved(ctx, s.id, from, target)
	}
	return out, nil
}

// ResolveTarget reports where Next would go from a question.
func (s *Session) ResolveTarget(questionID string) domain.Target {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.engine.reducer.ResolveTarget(s.state, questionID)
}

// CreateDynamicBlock adds a numbered copy of a blueprint and returns its id.
// ok is false when blueprintID is not a multiBlock blueprint.
func (s *Session) CreateDynamicBlock(ctx context.Context, blueprintID string) (id string, ok bool, err error) {
	_, err = s.mutate(ctx, func(st *domain.FormState) *domain.FormState {
		var next *domain.FormState
		next, id, ok = s.engine.reducer.CreateDynamicBlock(st, blueprintID)
		return next
	})
	return id, ok, err
}

// DeleteDynamicBlock removes a dynamic block and its answers.
func (s *Session) DeleteDynamicBlock(ctx context.Context, blockID string) (bool, error) {
	var ok bool
	_, err := s.mutate(ctx, func(st *domain.FormState) *domain.FormState {
		var next *domain.FormState
		next, ok = s.engine.reducer.DeleteDynamicBlock(st, blockID)
		return next
	})
	return ok, err
}

// Reset clears answers, dynamic blocks and history.
func (s *Session) Reset(ctx context.Context) error {
	_, err := s.Dispatch(ctx, domain.ResetFormAction())
	return err
}

// DynamicBlocksByBlueprint lists the instances of a blueprint in creation order.
func (s *Session) DynamicBlocksByBlueprint(blueprintID string) []domain.Block {
	s.mu.Lock()
	defer s.mu.Unlock()
	return runtime.DynamicBlocksByBlueprint(s.state, blueprintID)
}

// Progress returns the completion percentage in [0, 100].
func (s *Session) Progress() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.engine.reducer.Progress(s.state)
}

// IsBlockCompleted reports whether the user left the block through a block-level transition.
func (s *Session) IsBlockCompleted(blockID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.IsCompleted(blockID)
}

// IsQuestionAnswered reports whether the question has an answer.
func (s *Session) IsQuestionAnswered(questionID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.IsAnswered(questionID)
}

// FindQuestionByID searches static and dynamic blocks.
func (s *Session) FindQuestionByID(questionID string) (domain.Block, domain.Question, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.engine.reducer.FindQuestion(s.state, questionID)
}

// NavigationHistoryFor returns the most recent jump that landed on questionID.
func (s *Session) NavigationHistoryFor(questionID string) (domain.NavigationEntry, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return runtime.HistoryFor(s.state, questionID)
}

// InlineParent returns the question an inline question was reached from.
func (s *Session) InlineParent(questionID string) (domain.Question, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.engine.reducer.InlineParent(s.state, questionID)
}

// InlineChain returns every inline ancestor of a question, outermost first.
func (s *Session) InlineChain(questionID string) []domain.Question {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.engine.reducer.InlineChain(s.state, questionID)
}

// Close stops the pending debounce timer. The session must not be used afterwards.
func (s *Session) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
}

var errClosed = errors.New("session closed")

func (s *Session) mutate(ctx context.Context, fn func(*domain.FormState) *domain.FormState) (*domain.FormState, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil, errClosed
	}

	before := s.state
	after := fn(before)
	if after.IsNavigating && s.engine.debounce <= 0 {
		after.IsNavigating = false
	}

	if err := s.persist(ctx, after); err != nil {
		return nil, fmt.Errorf("failed to save session %s: %w", s.id, err)
	}
	s.state = after
	s.engine.emit(ctx, s.id, before, after)

	if after.IsNavigating {
		s.schedule()
	}
	return after.Snapshot(), nil
}

func (s *Session) persist(ctx context.Context, state *domain.FormState) error {
	if s.held {
		return s.engine.store.Save(ctx, s.id, state)
	}
	return s.engine.manager.Save(ctx, s.id, state)
}

// schedule (re)arms the timer that lowers isNavigating. Callers hold s.mu.
func (s *Session) schedule() {
	if s.timer != nil {
		s.timer.Stop()
	}
	if s.held {
		s.timer = time.AfterFunc(s.engine.debounce, s.settleStored)
		return
	}
	s.timer = time.AfterFunc(s.engine.debounce, s.settle)
}

func (s *Session) settle() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed || !s.state.IsNavigating {
		return
	}
	before := s.state
	after := s.engine.reducer.Dispatch(before, domain.SetNavigatingAction(false))
	if err := s.engine.manager.Save(context.Background(), s.id, after); err != nil {
		s.engine.logger.Warn("failed to clear navigating flag", "session_id", s.id, "err", err)
		return
	}
	s.state = after
}

// settleStored lowers the flag on the stored copy. Sessions from Engine.Do
// are discarded when the callback returns, so the store is the only truth.
func (s *Session) settleStored() {
	e := s.engine
	ctx := context.Background()
	err := e.manager.WithLock(ctx, s.id, func(ctx context.Context) error {
		state, err := e.store.Load(ctx, s.id)
		if err != nil {
			return err
		}
		if !state.IsNavigating {
			return nil
		}
		return e.store.Save(ctx, s.id, e.reducer.Dispatch(state, domain.SetNavigatingAction(false)))
	})
	if err != nil && !errors.Is(err, domain.ErrSessionNotFound) {
		e.logger.Warn("failed to clear navigating flag", "session_id", s.id, "err", err)
	}
}
