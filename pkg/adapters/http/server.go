package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"sort"

	"github.com/aretw0/simflow"
	"github.com/aretw0/simflow/internal/logging"
	"github.com/aretw0/simflow/pkg/domain"
	"github.com/aretw0/simflow/pkg/schema"
	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Server exposes the sessions of one Engine as a JSON API.
type Server struct {
	Engine  *simflow.Engine
	Streams *StreamManager
	Logger  *slog.Logger
	Metrics http.Handler
}

// Option configures a Server.
type Option func(*Server)

// WithLogger sets the request logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) { s.Logger = logger }
}

// WithMetricsHandler replaces the default promhttp handler served on /metrics.
func WithMetricsHandler(h http.Handler) Option {
	return func(s *Server) { s.Metrics = h }
}

// NewHandler creates a new HTTP handler for the engine.
func NewHandler(engine *simflow.Engine, opts ...Option) http.Handler {
	server := &Server{
		Engine:  engine,
		Streams: NewStreamManager(),
		Logger:  logging.NewNop(),
		Metrics: promhttp.Handler(),
	}
	for _, opt := range opts {
		opt(server)
	}
	server.Streams.logger = server.Logger
	return enableCORS(server.Routes())
}

// Routes builds the chi router without middleware.
func (s *Server) Routes() chi.Router {
	r := chi.NewRouter()
	r.Get("/health", s.GetHealth)
	r.Handle("/metrics", s.Metrics)

	r.Get("/form", s.GetForm)
	r.Get("/form/blocks/{blockID}/layout", s.GetLayout)

	r.Route("/sessions", func(r chi.Router) {
		r.Post("/", s.CreateSession)
		r.Get("/", s.ListSessions)
		r.Route("/{sessionID}", func(r chi.Router) {
			r.Get("/", s.GetSession)
			r.Delete("/", s.DeleteSession)
			r.Get("/progress", s.GetProgress)
			r.Get("/events", s.SubscribeEvents)
			r.Post("/actions", s.Dispatch)
			r.Post("/responses", s.SetResponse)
			r.Post("/navigate", s.Navigate)
			r.Post("/next", s.Next)
			r.Post("/goto", s.GoTo)
			r.Post("/blocks", s.CreateBlock)
			r.Delete("/blocks/{blockID}", s.DeleteBlock)
			r.Post("/reset", s.Reset)
		})
	})
	return r
}

func enableCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// SessionView is the JSON representation of a session.
type SessionView struct {
	SessionID string            `json:"session_id"`
	Progress  int               `json:"progress"`
	Blocks    []string          `json:"blocks"`
	State     *domain.FormState `json:"state"`
}

// ResponseRequest is the body of POST /sessions/{id}/responses. Either
// Placeholder/Value or Answers is set.
type ResponseRequest struct {
	QuestionID  string                  `json:"question_id"`
	Placeholder string                  `json:"placeholder,omitempty"`
	Value       domain.Value            `json:"value,omitzero"`
	Answers     map[string]domain.Value `json:"answers,omitempty"`
}

// NavigateRequest is the body of POST /sessions/{id}/navigate.
// An empty QuestionID means the active question.
type NavigateRequest struct {
	QuestionID string        `json:"question_id,omitempty"`
	LeadsTo    domain.Target `json:"leads_to"`
}

// GoToRequest is the body of POST /sessions/{id}/goto.
type GoToRequest struct {
	BlockID    string `json:"block_id"`
	QuestionID string `json:"question_id"`
}

// OutcomeView reports a navigation result together with the new state.
type OutcomeView struct {
	Outcome simflow.Outcome `json:"outcome"`
	SessionView
}

type statusError struct {
	code int
	err  error
}

func (e *statusError) Error() string { return e.err.Error() }
func (e *statusError) Unwrap() error { return e.err }

func withStatus(code int, err error) error { return &statusError{code: code, err: err} }

// GetHealth handles the GET /health request.
func (s *Server) GetHealth(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "ok", "version": simflow.Version})
}

// GetForm handles the GET /form request.
func (s *Server) GetForm(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, s.Engine.Form())
}

// GetLayout handles the GET /form/blocks/{blockID}/layout request.
func (s *Server) GetLayout(w http.ResponseWriter, r *http.Request) {
	layout, err := s.Engine.AnalyzeBlock(chi.URLParam(r, "blockID"))
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, layout)
}

// CreateSession handles the POST /sessions request. The body is optional.
func (s *Server) CreateSession(w http.ResponseWriter, r *http.Request) {
	var body struct {
		SessionID string `json:"session_id"`
	}
	if r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			s.badRequest(w, "CreateSession", err)
			return
		}
	}
	sess, err := s.Engine.CreateSession(r.Context(), body.SessionID)
	if err != nil {
		s.writeError(w, err)
		return
	}
	defer sess.Close()
	s.writeJSON(w, http.StatusCreated, s.view(sess.ID(), sess.State()))
}

// ListSessions handles the GET /sessions request.
func (s *Server) ListSessions(w http.ResponseWriter, r *http.Request) {
	ids, err := s.Engine.Sessions(r.Context())
	if err != nil {
		s.writeError(w, err)
		return
	}
	if ids == nil {
		ids = []string{}
	}
	s.writeJSON(w, http.StatusOK, map[string][]string{"sessions": ids})
}

// GetSession handles the GET /sessions/{id} request.
func (s *Server) GetSession(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "sessionID")
	state, err := s.Engine.Do(r.Context(), id, func(*simflow.Session) error { return nil })
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, s.view(id, state))
}

// GetProgress handles the GET /sessions/{id}/progress request.
func (s *Server) GetProgress(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "sessionID")
	state, err := s.Engine.Do(r.Context(), id, func(*simflow.Session) error { return nil })
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]int{"progress": s.Engine.Progress(state)})
}

// DeleteSession handles the DELETE /sessions/{id} request.
func (s *Server) DeleteSession(w http.ResponseWriter, r *http.Request) {
	if err := s.Engine.Delete(r.Context(), chi.URLParam(r, "sessionID")); err != nil {
		s.writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Dispatch handles the POST /sessions/{id}/actions request.
func (s *Server) Dispatch(w http.ResponseWriter, r *http.Request) {
	var action domain.Action
	if err := json.NewDecoder(r.Body).Decode(&action); err != nil {
		s.badRequest(w, "Dispatch", err)
		return
	}
	if !action.Type.Known() {
		s.writeError(w, withStatus(http.StatusBadRequest, fmt.Errorf("%w: %q", domain.ErrUnknownAction, action.Type)))
		return
	}
	s.mutate(w, r, func(sess *simflow.Session) error {
		_, err := sess.Dispatch(r.Context(), action)
		return err
	})
}

// SetResponse handles the POST /sessions/{id}/responses request.
// Answers are validated against the placeholder definitions first.
func (s *Server) SetResponse(w http.ResponseWriter, r *http.Request) {
	var body ResponseRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		s.badRequest(w, "SetResponse", err)
		return
	}
	answers := body.Answers
	if len(answers) == 0 {
		if body.Placeholder == "" {
			s.badRequest(w, "SetResponse", errors.New("placeholder or answers required"))
			return
		}
		answers = map[string]domain.Value{body.Placeholder: body.Value}
	}

	s.mutate(w, r, func(sess *simflow.Session) error {
		_, q, ok := sess.FindQuestionByID(body.QuestionID)
		if !ok {
			return withStatus(http.StatusNotFound, fmt.Errorf("%w: %s", domain.ErrQuestionNotFound, body.QuestionID))
		}
		var err error
		if len(body.Answers) > 0 {
			err = schema.ValidateAnswers(q, answers)
		} else {
			err = schema.ValidateResponse(q, body.Placeholder, body.Value)
		}
		if err != nil {
			return withStatus(http.StatusUnprocessableEntity, err)
		}

		keys := make([]string, 0, len(answers))
		for k := range answers {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			if err := sess.SetResponse(r.Context(), body.QuestionID, k, answers[k]); err != nil {
				return err
			}
		}
		return nil
	})
}

// Navigate handles the POST /sessions/{id}/navigate request.
func (s *Server) Navigate(w http.ResponseWriter, r *http.Request) {
	var body NavigateRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		s.badRequest(w, "Navigate", err)
		return
	}
	s.navigate(w, r, func(sess *simflow.Session) (simflow.Outcome, error) {
		current := body.QuestionID
		if current == "" {
			current = sess.State().ActiveQuestion.QuestionID
		}
		return sess.NavigateToNextQuestion(r.Context(), current, body.LeadsTo)
	})
}

// Next handles the POST /sessions/{id}/next request.
func (s *Server) Next(w http.ResponseWriter, r *http.Request) {
	s.navigate(w, r, func(sess *simflow.Session) (simflow.Outcome, error) {
		return sess.Next(r.Context())
	})
}

// GoTo handles the POST /sessions/{id}/goto request.
func (s *Server) GoTo(w http.ResponseWriter, r *http.Request) {
	var body GoToRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		s.badRequest(w, "GoTo", err)
		return
	}
	s.mutate(w, r, func(sess *simflow.Session) error {
		return sess.GoToQuestion(r.Context(), body.BlockID, body.QuestionID)
	})
}

// CreateBlock handles the POST /sessions/{id}/blocks request.
func (s *Server) CreateBlock(w http.ResponseWriter, r *http.Request) {
	var body struct {
		BlueprintID string `json:"blueprint_id"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		s.badRequest(w, "CreateBlock", err)
		return
	}
	var blockID string
	id := chi.URLParam(r, "sessionID")
	before, state, err := s.do(r, id, func(sess *simflow.Session) error {
		var ok bool
		var err error
		blockID, ok, err = sess.CreateDynamicBlock(r.Context(), body.BlueprintID)
		if err != nil {
			return err
		}
		if !ok {
			return withStatus(http.StatusNotFound, fmt.Errorf("%w: %s is not a blueprint", domain.ErrBlockNotFound, body.BlueprintID))
		}
		return nil
	})
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.broadcast(id, before, state)
	s.writeJSON(w, http.StatusCreated, struct {
		BlockID string `json:"block_id"`
		SessionView
	}{blockID, s.view(id, state)})
}

// DeleteBlock handles the DELETE /sessions/{id}/blocks/{blockID} request.
func (s *Server) DeleteBlock(w http.ResponseWriter, r *http.Request) {
	blockID := chi.URLParam(r, "blockID")
	s.mutate(w, r, func(sess *simflow.Session) error {
		ok, err := sess.DeleteDynamicBlock(r.Context(), blockID)
		if err != nil {
			return err
		}
		if !ok {
			return withStatus(http.StatusNotFound, fmt.Errorf("%w: %s is not a dynamic block", domain.ErrBlockNotFound, blockID))
		}
		return nil
	})
}

// Reset handles the POST /sessions/{id}/reset request.
func (s *Server) Reset(w http.ResponseWriter, r *http.Request) {
	s.mutate(w, r, func(sess *simflow.Session) error {
		return sess.Reset(r.Context())
	})
}

// -- Helpers --

func (s *Server) do(r *http.Request, id string, fn func(*simflow.Session) error) (before, after *domain.FormState, err error) {
	after, err = s.Engine.Do(r.Context(), id, func(sess *simflow.Session) error {
		before = sess.State()
		return fn(sess)
	})
	return before, after, err
}

func (s *Server) mutate(w http.ResponseWriter, r *http.Request, fn func(*simflow.Session) error) {
	id := chi.URLParam(r, "sessionID")
	before, state, err := s.do(r, id, fn)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.broadcast(id, before, state)
	s.writeJSON(w, http.StatusOK, s.view(id, state))
}

func (s *Server) navigate(w http.ResponseWriter, r *http.Request, fn func(*simflow.Session) (simflow.Outcome, error)) {
	var out simflow.Outcome
	id := chi.URLParam(r, "sessionID")
	before, state, err := s.do(r, id, func(sess *simflow.Session) error {
		var err error
		out, err = fn(sess)
		return err
	})
	if err != nil {
		s.writeError(w, err)
		return
	}
	if out.Kind == simflow.OutcomeUnresolved {
		s.Logger.Warn("navigation target unresolved", "session_id", id)
	}
	s.broadcast(id, before, state)
	s.writeJSON(w, http.StatusOK, OutcomeView{Outcome: out, SessionView: s.view(id, state)})
}

func (s *Server) broadcast(id string, before, after *domain.FormState) {
	diff := domain.Diff(id, before, after)
	if diff == nil || diff.IsEmpty() {
		return
	}
	if bytes, err := json.Marshal(diff); err == nil {
		s.Streams.Broadcast(id, string(bytes))
	}
}

func (s *Server) view(id string, state *domain.FormState) SessionView {
	blocks := s.Engine.Blocks(state)
	ids := make([]string, len(blocks))
	for i, b := range blocks {
		ids[i] = b.ID
	}
	return SessionView{
		SessionID: id,
		Progress:  s.Engine.Progress(state),
		Blocks:    ids,
		State:     state,
	}
}

func (s *Server) badRequest(w http.ResponseWriter, op string, err error) {
	s.Logger.Warn("invalid request body", "op", op, "error", err)
	s.writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body: " + err.Error()})
}

func (s *Server) writeError(w http.ResponseWriter, err error) {
	code := http.StatusInternalServerError
	var se *statusError
	switch {
	case errors.As(err, &se):
		code = se.code
	case errors.Is(err, domain.ErrSessionNotFound), errors.Is(err, domain.ErrBlockNotFound),
		errors.Is(err, domain.ErrQuestionNotFound):
		code = http.StatusNotFound
	}
	if code == http.StatusInternalServerError {
		s.Logger.Error("request failed", "error", err)
	}

	body := map[string]any{"error": err.Error()}
	if violations := schema.ValidationErrors(err); len(violations) > 0 {
		msgs := make([]string, len(violations))
		for i, v := range violations {
			msgs[i] = v.Error()
		}
		body["violations"] = msgs
	}
	s.writeJSON(w, code, body)
}

func (s *Server) writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.Logger.Error("response encode failed", "error", err)
	}
}
