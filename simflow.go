package simflow

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/aretw0/simflow/internal/logging"
	"github.com/aretw0/simflow/internal/runtime"
	"github.com/aretw0/simflow/pkg/adapters/memory"
	"github.com/aretw0/simflow/pkg/domain"
	"github.com/aretw0/simflow/pkg/flowgraph"
	"github.com/aretw0/simflow/pkg/ports"
	"github.com/aretw0/simflow/pkg/session"
	"github.com/google/uuid"
)

// DefaultNavigationDebounce is how long isNavigating stays raised after a jump.
const DefaultNavigationDebounce = 300 * time.Millisecond

// Outcome describes what a navigation request did.
type Outcome = runtime.Outcome

// OutcomeKind classifies an Outcome.
type OutcomeKind = runtime.OutcomeKind

const (
	OutcomeMoved      = runtime.OutcomeMoved
	OutcomeStopped    = runtime.OutcomeStopped
	OutcomeEnd        = runtime.OutcomeEnd
	OutcomeUnresolved = runtime.OutcomeUnresolved
)

// Engine is the entry point of the library. It is bound to one form
// definition and shared by every session of that form.
type Engine struct {
	form     *domain.Form
	reducer  *runtime.Reducer
	manager  *session.Manager
	store    ports.StateStore
	locker   ports.DistributedLocker
	lockTTL  time.Duration
	hooks    domain.LifecycleHooks
	logger   *slog.Logger
	debounce time.Duration
	now      func() time.Time
}

// Option defines a functional option for configuring the Engine.
type Option func(*Engine)

// WithLogger sets a custom structured logger for the engine.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) {
		e.logger = logger
	}
}

// WithStore sets where session states are checkpointed (default: in memory).
func WithStore(store ports.StateStore) Option {
	return func(e *Engine) {
		e.store = store
	}
}

// WithLocker enables distributed locking of sessions shared between replicas.
func WithLocker(locker ports.DistributedLocker) Option {
	return func(e *Engine) {
		e.locker = locker
	}
}

// WithLockTTL sets the expiry of distributed session locks.
func WithLockTTL(ttl time.Duration) Option {
	return func(e *Engine) {
		e.lockTTL = ttl
	}
}

// WithLifecycleHooks registers observability hooks.
func WithLifecycleHooks(hooks domain.LifecycleHooks) Option {
	return func(e *Engine) {
		e.hooks = hooks
	}
}

// WithNavigationDebounce sets how long isNavigating stays true after a jump.
// Zero or a negative value clears the flag within the same mutation.
func WithNavigationDebounce(d time.Duration) Option {
	return func(e *Engine) {
		e.debounce = d
	}
}

// WithClock overrides the time source (navigation history, event timestamps).
func WithClock(now func() time.Time) Option {
	return func(e *Engine) {
		e.now = now
	}
}

// New initializes an Engine for a form definition.
func New(form *domain.Form, opts ...Option) (*Engine, error) {
	if form == nil {
		return nil, errors.New("form is required")
	}

	eng := &Engine{
		form:     form,
		debounce: DefaultNavigationDebounce,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(eng)
	}

	if eng.logger == nil {
		eng.logger = logging.NewNop()
	}
	if form.ID != "" {
		eng.logger = eng.logger.With("form", form.ID)
	}
	if eng.store == nil {
		eng.store = memory.NewStore()
	}
	if eng.now == nil {
		eng.now = time.Now
	}

	managerOpts := []session.Option{session.WithLogger(eng.logger)}
	if eng.locker != nil {
		managerOpts = append(managerOpts, session.WithLocker(eng.locker))
	}
	if eng.lockTTL > 0 {
		managerOpts = append(managerOpts, session.WithLockTTL(eng.lockTTL))
	}
	eng.manager = session.NewManager(eng.store, managerOpts...)

	eng.reducer = runtime.NewReducer(form,
		runtime.WithClock(eng.now),
		runtime.WithLogger(eng.logger),
	)
	return eng, nil
}

// NewFromLoader loads a form by id and initializes an Engine for it.
func NewFromLoader(ctx context.Context, loader ports.FormLoader, formID string, opts ...Option) (*Engine, error) {
	form, err := loader.LoadForm(ctx, formID)
	if err != nil {
		return nil, fmt.Errorf("failed to load form %q: %w", formID, err)
	}
	return New(form, opts...)
}

// Form returns the definition the engine runs.
func (e *Engine) Form() *domain.Form { return e.form }

// Manager exposes the session manager for listing and deletion.
func (e *Engine) Manager() *session.Manager { return e.manager }

// NewState builds the initial FormState of a session without persisting it.
func (e *Engine) NewState() *domain.FormState { return e.reducer.Init() }

// Dispatch applies an action to a state. It is pure: nothing is persisted
// and no hook fires.
func (e *Engine) Dispatch(state *domain.FormState, action domain.Action) *domain.FormState {
	return e.reducer.Dispatch(state, action)
}

// Progress computes the completion percentage of a state.
func (e *Engine) Progress(state *domain.FormState) int { return e.reducer.Progress(state) }

// Blocks lists static and dynamic blocks of a state in navigation order.
func (e *Engine) Blocks(state *domain.FormState) []domain.Block { return e.reducer.Blocks(state) }

// AnalyzeBlock lays out the question graph of a static block.
func (e *Engine) AnalyzeBlock(blockID string) (flowgraph.Layout, error) {
	b, ok := e.form.Block(blockID)
	if !ok {
		return flowgraph.Layout{}, fmt.Errorf("%w: %s", domain.ErrBlockNotFound, blockID)
	}
	return flowgraph.Analyze(*b), nil
}

// CreateSession starts a fresh session, replacing any stored state with the
// same id. An empty id gets a random UUID.
func (e *Engine) CreateSession(ctx context.Context, sessionID string) (*Session, error) {
	if sessionID == "" {
		sessionID = uuid.NewString()
	}
	state := e.reducer.Init()
	if err := e.manager.Save(ctx, sessionID, state); err != nil {
		return nil, fmt.Errorf("failed to create session: %w", err)
	}
	e.logger.Debug("session created", "session_id", sessionID)
	e.emit(ctx, sessionID, nil, state)
	return e.newSession(sessionID, state, false), nil
}

// Resume loads a stored session. The advisory isNavigating flag is not restored.
func (e *Engine) Resume(ctx context.Context, sessionID string) (*Session, error) {
	state, err := e.manager.Load(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	state.IsNavigating = false
	return e.newSession(sessionID, state, false), nil
}

// Open resumes a session or creates it when it does not exist yet.
func (e *Engine) Open(ctx context.Context, sessionID string) (*Session, error) {
	state, created, err := e.manager.LoadOrStart(ctx, sessionID, e.reducer.Init)
	if err != nil {
		return nil, err
	}
	if created {
		e.emit(ctx, sessionID, nil, state)
	}
	state.IsNavigating = false
	return e.newSession(sessionID, state, false), nil
}

// Do loads a stored session under its lock, runs fn and returns the final
// state. Mutations made by fn are persisted as they happen.
func (e *Engine) Do(ctx context.Context, sessionID string, fn func(*Session) error) (*domain.FormState, error) {
	var out *domain.FormState
	err := e.manager.WithLock(ctx, sessionID, func(ctx context.Context) error {
		state, err := e.store.Load(ctx, sessionID)
		if err != nil {
			return err
		}
		s := e.newSession(sessionID, state, true)
		if err := fn(s); err != nil {
			return err
		}
		out = s.State()
		return nil
	})
	return out, err
}

// Delete removes a stored session.
func (e *Engine) Delete(ctx context.Context, sessionID string) error {
	return e.manager.Delete(ctx, sessionID)
}

// Sessions lists stored session ids.
func (e *Engine) Sessions(ctx context.Context) ([]string, error) {
	return e.manager.List(ctx)
}

func (e *Engine) newSession(id string, state *domain.FormState, held bool) *Session {
	return &Session{id: id, engine: e, state: state, held: held}
}
