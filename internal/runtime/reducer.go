package runtime

import (
	"log/slog"
	"slices"
	"time"

	"github.com/aretw0/simflow/internal/logging"
	"github.com/aretw0/simflow/pkg/domain"
)

// Reducer applies actions to a FormState for one form definition.
// It never mutates its input: every call works on a snapshot and returns it.
type Reducer struct {
	form   *domain.Form
	now    func() time.Time
	logger *slog.Logger
}

// Option configures the Reducer.
type Option func(*Reducer)

// WithClock overrides the time source used for navigation history.
func WithClock(now func() time.Time) Option {
	return func(r *Reducer) {
		if now != nil {
			r.now = now
		}
	}
}

// WithLogger sets the logger used to report unresolvable references.
func WithLogger(logger *slog.Logger) Option {
	return func(r *Reducer) {
		if logger != nil {
			r.logger = logger
		}
	}
}

// NewReducer creates a reducer bound to a form definition.
func NewReducer(form *domain.Form, opts ...Option) *Reducer {
	r := &Reducer{
		form:   form,
		now:    time.Now,
		logger: logging.NewNop(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Form returns the definition the reducer is bound to.
func (r *Reducer) Form() *domain.Form { return r.form }

// Init creates the initial state of a session: every default_active block is
// active and the first question of the first visible block is selected.
func (r *Reducer) Init() *domain.FormState {
	s := domain.NewFormState()
	for _, b := range r.form.Blocks {
		if b.DefaultActive && !b.MultiBlock {
			s.ActiveBlocks = append(s.ActiveBlocks, b.ID)
		}
	}
	s.ActiveQuestion = r.entryQuestion(s)
	return s
}

// Dispatch applies a single action and returns the resulting state.
func (r *Reducer) Dispatch(state *domain.FormState, action domain.Action) *domain.FormState {
	s := r.snapshot(state)

	switch action.Type {
	case domain.ActionGoToQuestion:
		s.ActiveQuestion = domain.QuestionRef{BlockID: action.BlockID, QuestionID: action.QuestionID}
		s.Finished = false

	case domain.ActionSetResponse:
		r.setResponse(s, action.QuestionID, action.Placeholder, action.Value)

	case domain.ActionMarkQuestionAnswered:
		markAnswered(s, action.QuestionID)

	case domain.ActionAddActiveBlock:
		r.addActiveBlock(s, action.BlockID)

	case domain.ActionRemoveActiveBlock:
		if _, dynamic := s.DynamicBlock(action.BlockID); dynamic {
			s.ActiveBlocks = remove(s.ActiveBlocks, action.BlockID)
		} else {
			r.removeActiveBlock(s, action.BlockID)
		}

	case domain.ActionAddDynamicBlock:
		r.createDynamicBlock(s, action.BlockID)

	case domain.ActionDeleteDynamicBlock:
		r.deleteDynamicBlock(s, action.BlockID)

	case domain.ActionMarkBlockCompleted:
		s.CompletedBlocks = add(s.CompletedBlocks, action.BlockID)

	case domain.ActionRemoveBlockFromCompleted:
		s.CompletedBlocks = remove(s.CompletedBlocks, action.BlockID)

	case domain.ActionResetForm:
		r.reset(s)

	case domain.ActionSetNavigating:
		s.IsNavigating = action.Navigating

	case domain.ActionFinishFlow:
		s.Finished = true

	default:
		r.logger.Debug("ignoring unknown action", "type", action.Type)
	}

	return s
}

func (r *Reducer) snapshot(state *domain.FormState) *domain.FormState {
	if state == nil {
		return r.Init()
	}
	return state.Snapshot()
}

func (r *Reducer) setResponse(s *domain.FormState, questionID, key string, v domain.Value) {
	if questionID == "" {
		return
	}
	if _, q, ok := r.findQuestion(s, questionID); ok {
		if p, ok := q.Placeholders[key]; ok && p.Type == domain.PlaceholderSelect {
			prev, _ := s.Response(questionID, key)
			r.applySelectChange(s, questionID, key, p, prev, v)
		}
	}

	if s.Responses[questionID] == nil {
		s.Responses[questionID] = make(map[string]domain.Value)
	}
	s.Responses[questionID][key] = v
	markAnswered(s, questionID)
}

func (r *Reducer) addActiveBlock(s *domain.FormState, blockID string) {
	b, ok := r.block(s, blockID)
	if !ok {
		r.logger.Warn("cannot activate unknown block", "block_id", blockID)
		return
	}
	if b.MultiBlock {
		r.logger.Debug("blueprint blocks are never active", "block_id", blockID)
		return
	}
	s.ActiveBlocks = add(s.ActiveBlocks, blockID)
}

// removeActiveBlock deactivates a static block and purges the answers given
// inside it, including the activations those answers had caused.
func (r *Reducer) removeActiveBlock(s *domain.FormState, blockID string) {
	if !s.IsActive(blockID) {
		return
	}
	s.ActiveBlocks = remove(s.ActiveBlocks, blockID)
	s.CompletedBlocks = remove(s.CompletedBlocks, blockID)
	delete(s.BlockActivations, blockID)

	if b, ok := r.form.Block(blockID); ok {
		qids := b.QuestionIDs()
		purgeAnswers(s, qids)
		r.releaseQuestions(s, qids)
	}
}

func (r *Reducer) reset(s *domain.FormState) {
	dynamic := make([]string, 0, len(s.DynamicBlocks))
	for _, b := range s.DynamicBlocks {
		dynamic = append(dynamic, b.ID)
	}

	active := make([]string, 0, len(s.ActiveBlocks))
	for _, id := range s.ActiveBlocks {
		if !slices.Contains(dynamic, id) {
			active = append(active, id)
		}
	}

	fresh := domain.NewFormState()
	fresh.ActiveBlocks = active
	*s = *fresh
	s.ActiveQuestion = r.entryQuestion(s)
}

// entryQuestion is the first question of the first visible active block.
func (r *Reducer) entryQuestion(s *domain.FormState) domain.QuestionRef {
	for _, b := range r.orderedBlocks(s) {
		if !s.IsActive(b.ID) || b.Invisible || len(b.Questions) == 0 {
			continue
		}
		return domain.QuestionRef{BlockID: b.ID, QuestionID: b.Questions[0].ID}
	}
	return domain.QuestionRef{}
}

func markAnswered(s *domain.FormState, questionID string) {
	if questionID == "" {
		return
	}
	s.AnsweredQuestions = add(s.AnsweredQuestions, questionID)
}

func purgeAnswers(s *domain.FormState, questionIDs []string) {
	for _, qid := range questionIDs {
		delete(s.Responses, qid)
		s.AnsweredQuestions = remove(s.AnsweredQuestions, qid)
	}
}

func add(set []string, id string) []string {
	if id == "" || slices.Contains(set, id) {
		return set
	}
	return append(set, id)
}

func remove(set []string, id string) []string {
	out := set[:0:0]
	for _, v := range set {
		if v != id {
			out = append(out, v)
		}
	}
	if out == nil {
		out = []string{}
	}
	return out
}
