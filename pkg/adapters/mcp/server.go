package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/aretw0/simflow"
	"github.com/aretw0/simflow/internal/logging"
	"github.com/aretw0/simflow/pkg/domain"
	"github.com/aretw0/simflow/pkg/schema"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// FormURI is the resource exposing the form definition.
const FormURI = "simflow://form"

// SessionResult is the structured output of every session tool.
type SessionResult struct {
	SessionID string            `json:"session_id" jsonschema_description:"The session the call operated on"`
	Progress  int               `json:"progress" jsonschema_description:"Completion percentage between 0 and 100"`
	Question  *QuestionView     `json:"question,omitempty" jsonschema_description:"The active question, if any"`
	Outcome   *simflow.Outcome  `json:"outcome,omitempty" jsonschema_description:"Navigation result for next and go_to_question"`
	BlockID   string            `json:"block_id,omitempty" jsonschema_description:"Id of a block created by add_block"`
	State     *domain.FormState `json:"state" jsonschema_description:"The full session state"`
}

// QuestionView is the active question with its rendered text.
type QuestionView struct {
	BlockID string `json:"block_id"`
	ID      string `json:"id"`
	Text    string `json:"text"`
	// Placeholders maps each placeholder key to its type (select, input or MultiBlockManager).
	Placeholders map[string]string `json:"placeholders"`
}

// SessionArgs addresses an existing session.
type SessionArgs struct {
	SessionID string `json:"session_id"`
}

// SetResponseArgs is the input of set_response. Values is used for multiple selects.
type SetResponseArgs struct {
	SessionID   string   `json:"session_id"`
	QuestionID  string   `json:"question_id"`
	Placeholder string   `json:"placeholder"`
	Value       string   `json:"value,omitempty"`
	Values      []string `json:"values,omitempty"`
}

// GoToArgs is the input of go_to_question.
type GoToArgs struct {
	SessionID  string `json:"session_id"`
	QuestionID string `json:"question_id"`
}

// BlockArgs is the input of add_block and delete_block.
type BlockArgs struct {
	SessionID   string `json:"session_id"`
	BlueprintID string `json:"blueprint_id,omitempty"`
	BlockID     string `json:"block_id,omitempty"`
}

// Server wraps a simflow Engine and exposes its sessions as an MCP Server.
type Server struct {
	engine    *simflow.Engine
	logger    *slog.Logger
	mcpServer *server.MCPServer
}

// Option configures a Server.
type Option func(*Server)

// WithLogger sets the logger used for rejected calls.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) { s.logger = logger }
}

// NewServer creates a new MCP Server instance.
func NewServer(engine *simflow.Engine, opts ...Option) *Server {
	s := &Server{
		engine:    engine,
		logger:    logging.NewNop(),
		mcpServer: server.NewMCPServer("simflow-mcp", simflow.Version),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.registerTools()
	s.registerResources()
	return s
}

// MCPServer returns the underlying mcp-go server.
func (s *Server) MCPServer() *server.MCPServer { return s.mcpServer }

// ServeStdio starts the server on Stdin/Stdout.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcpServer)
}

// ServeSSE serves the MCP protocol over SSE on addr until ctx is cancelled.
func (s *Server) ServeSSE(ctx context.Context, addr, baseURL string) error {
	sseServer := server.NewSSEServer(s.mcpServer, server.WithBaseURL(baseURL))

	mux := http.NewServeMux()
	mux.Handle("/sse", corsMiddleware(sseServer.SSEHandler()))
	mux.Handle("/message", corsMiddleware(sseServer.MessageHandler()))

	httpServer := &http.Server{
		Addr:    addr,
		Handler: mux,
	}

	serverErrors := make(chan error, 1)
	go func() {
		s.logger.Info("MCP Server listening (SSE)", "address", addr)
		serverErrors <- httpServer.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("could not stop server gracefully: %w", err)
		}
		return nil
	}
}

func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization, X-Requested-With")

		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}

func (s *Server) registerTools() {
	sessionID := mcp.WithString("session_id", mcp.Required(), mcp.Description("Session identifier returned by start_session"))

	s.mcpServer.AddTool(mcp.NewTool("start_session",
		mcp.WithDescription("Start a new questionnaire session. Any stored state with the same id is replaced."),
		mcp.WithString("session_id", mcp.Description("Optional session identifier; a random one is generated when omitted")),
		mcp.WithOutputSchema[SessionResult](),
	), mcp.NewStructuredToolHandler(s.handleStartSession))

	s.mcpServer.AddTool(mcp.NewTool("get_state",
		mcp.WithDescription("Return the state, progress and active question of a session."),
		sessionID,
		mcp.WithOutputSchema[SessionResult](),
	), mcp.NewStructuredToolHandler(s.handleGetState))

	s.mcpServer.AddTool(mcp.NewTool("set_response",
		mcp.WithDescription("Answer one placeholder of a question. Use values for multiple selects."),
		sessionID,
		mcp.WithString("question_id", mcp.Required(), mcp.Description("Question being answered")),
		mcp.WithString("placeholder", mcp.Required(), mcp.Description("Placeholder key inside the question text")),
		mcp.WithString("value", mcp.Description("Option id or input text")),
		mcp.WithArray("values", mcp.Description("Option ids for a multiple select"), mcp.Items(map[string]any{"type": "string"})),
		mcp.WithOutputSchema[SessionResult](),
	), mcp.NewStructuredToolHandler(s.handleSetResponse))

	s.mcpServer.AddTool(mcp.NewTool("next",
		mcp.WithDescription("Leave the active question following the answers given to it."),
		sessionID,
		mcp.WithOutputSchema[SessionResult](),
	), mcp.NewStructuredToolHandler(s.handleNext))

	s.mcpServer.AddTool(mcp.NewTool("go_to_question",
		mcp.WithDescription("Jump from the active question to another question, recording the jump in the navigation history."),
		sessionID,
		mcp.WithString("question_id", mcp.Required(), mcp.Description("Destination question")),
		mcp.WithOutputSchema[SessionResult](),
	), mcp.NewStructuredToolHandler(s.handleGoTo))

	s.mcpServer.AddTool(mcp.NewTool("add_block",
		mcp.WithDescription("Create a numbered copy of a repeatable block."),
		sessionID,
		mcp.WithString("blueprint_id", mcp.Required(), mcp.Description("Id of the repeatable block, e.g. car_{copyNumber}")),
		mcp.WithOutputSchema[SessionResult](),
	), mcp.NewStructuredToolHandler(s.handleAddBlock))

	s.mcpServer.AddTool(mcp.NewTool("delete_block",
		mcp.WithDescription("Delete a dynamic block together with its answers."),
		sessionID,
		mcp.WithString("block_id", mcp.Required(), mcp.Description("Id of the dynamic block, e.g. car_2")),
		mcp.WithOutputSchema[SessionResult](),
	), mcp.NewStructuredToolHandler(s.handleDeleteBlock))

	s.mcpServer.AddTool(mcp.NewTool("reset_session",
		mcp.WithDescription("Clear every answer and dynamic block of a session."),
		sessionID,
		mcp.WithOutputSchema[SessionResult](),
	), mcp.NewStructuredToolHandler(s.handleReset))

	s.mcpServer.AddTool(mcp.NewTool("analyze_block",
		mcp.WithDescription("Return the layered flow layout of a block's questions."),
		mcp.WithString("block_id", mcp.Required(), mcp.Description("Static block id")),
	), s.handleAnalyzeBlock)
}

// Handler methods for structured tools

func (s *Server) handleStartSession(ctx context.Context, request mcp.CallToolRequest, args SessionArgs) (SessionResult, error) {
	sess, err := s.engine.CreateSession(ctx, args.SessionID)
	if err != nil {
		return SessionResult{}, fmt.Errorf("start session failed: %w", err)
	}
	defer sess.Close()
	return s.result(sess.ID(), sess.State()), nil
}

func (s *Server) handleGetState(ctx context.Context, request mcp.CallToolRequest, args SessionArgs) (SessionResult, error) {
	return s.do(ctx, args.SessionID, func(*simflow.Session, *SessionResult) error { return nil })
}

func (s *Server) handleSetResponse(ctx context.Context, request mcp.CallToolRequest, args SetResponseArgs) (SessionResult, error) {
	return s.do(ctx, args.SessionID, func(sess *simflow.Session, _ *SessionResult) error {
		_, q, ok := sess.FindQuestionByID(args.QuestionID)
		if !ok {
			return fmt.Errorf("%w: %s", domain.ErrQuestionNotFound, args.QuestionID)
		}
		v := domain.Text(args.Value)
		if p, ok := q.Placeholders[args.Placeholder]; ok && p.Multiple {
			v = domain.Choices(args.Values...)
		}
		if err := schema.ValidateResponse(q, args.Placeholder, v); err != nil {
			s.logger.Warn("MCP set_response: answer rejected", "question_id", args.QuestionID, "error", err)
			return err
		}
		return sess.SetResponse(ctx, args.QuestionID, args.Placeholder, v)
	})
}

func (s *Server) handleNext(ctx context.Context, request mcp.CallToolRequest, args SessionArgs) (SessionResult, error) {
	return s.do(ctx, args.SessionID, func(sess *simflow.Session, res *SessionResult) error {
		out, err := sess.Next(ctx)
		res.Outcome = &out
		return err
	})
}

func (s *Server) handleGoTo(ctx context.Context, request mcp.CallToolRequest, args GoToArgs) (SessionResult, error) {
	return s.do(ctx, args.SessionID, func(sess *simflow.Session, res *SessionResult) error {
		current := sess.State().ActiveQuestion.QuestionID
		out, err := sess.NavigateToNextQuestion(ctx, current, domain.GoTo(args.QuestionID))
		res.Outcome = &out
		if err == nil && out.Kind == simflow.OutcomeUnresolved {
			return fmt.Errorf("%w: %s", domain.ErrQuestionNotFound, args.QuestionID)
		}
		return err
	})
}

func (s *Server) handleAddBlock(ctx context.Context, request mcp.CallToolRequest, args BlockArgs) (SessionResult, error) {
	return s.do(ctx, args.SessionID, func(sess *simflow.Session, res *SessionResult) error {
		id, ok, err := sess.CreateDynamicBlock(ctx, args.BlueprintID)
		if err != nil {
			return err
		}
		if !ok {
			return fmt.Errorf("%w: %s is not a repeatable block", domain.ErrBlockNotFound, args.BlueprintID)
		}
		res.BlockID = id
		return nil
	})
}

func (s *Server) handleDeleteBlock(ctx context.Context, request mcp.CallToolRequest, args BlockArgs) (SessionResult, error) {
	return s.do(ctx, args.SessionID, func(sess *simflow.Session, _ *SessionResult) error {
		ok, err := sess.DeleteDynamicBlock(ctx, args.BlockID)
		if err != nil {
			return err
		}
		if !ok {
			return fmt.Errorf("%w: %s is not a dynamic block", domain.ErrBlockNotFound, args.BlockID)
		}
		return nil
	})
}

func (s *Server) handleReset(ctx context.Context, request mcp.CallToolRequest, args SessionArgs) (SessionResult, error) {
	return s.do(ctx, args.SessionID, func(sess *simflow.Session, _ *SessionResult) error {
		return sess.Reset(ctx)
	})
}

func (s *Server) handleAnalyzeBlock(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	blockID, err := request.RequireString("block_id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	layout, err := s.engine.AnalyzeBlock(blockID)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("analyze failed: %v", err)), nil
	}
	jsonBytes, _ := json.Marshal(layout)
	return mcp.NewToolResultText(string(jsonBytes)), nil
}

func (s *Server) registerResources() {
	s.mcpServer.AddResource(mcp.NewResource(FormURI, "Form Definition",
		mcp.WithResourceDescription("Blocks, questions and placeholders of the questionnaire"),
		mcp.WithMIMEType("application/json"),
	), s.readForm)
}

func (s *Server) readForm(ctx context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	jsonBytes, err := json.Marshal(s.engine.Form())
	if err != nil {
		return nil, fmt.Errorf("failed to encode form: %w", err)
	}
	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      FormURI,
			MIMEType: "application/json",
			Text:     string(jsonBytes),
		},
	}, nil
}

// -- Helpers --

var errNoSession = errors.New("session_id is required")

func (s *Server) do(ctx context.Context, sessionID string, fn func(*simflow.Session, *SessionResult) error) (SessionResult, error) {
	if sessionID == "" {
		return SessionResult{}, errNoSession
	}
	var res SessionResult
	state, err := s.engine.Do(ctx, sessionID, func(sess *simflow.Session) error {
		return fn(sess, &res)
	})
	if err != nil {
		return SessionResult{}, err
	}
	out := s.result(sessionID, state)
	out.Outcome = res.Outcome
	out.BlockID = res.BlockID
	return out, nil
}

func (s *Server) result(sessionID string, state *domain.FormState) SessionResult {
	return SessionResult{
		SessionID: sessionID,
		Progress:  s.engine.Progress(state),
		Question:  s.activeQuestion(state),
		State:     state,
	}
}

func (s *Server) activeQuestion(state *domain.FormState) *QuestionView {
	ref := state.ActiveQuestion
	if ref.QuestionID == "" || state.Finished {
		return nil
	}
	for _, b := range s.engine.Blocks(state) {
		if b.ID != ref.BlockID {
			continue
		}
		idx := b.QuestionIndex(ref.QuestionID)
		if idx < 0 {
			return nil
		}
		q := b.Questions[idx]
		view := &QuestionView{
			BlockID:      b.ID,
			ID:           q.ID,
			Placeholders: make(map[string]string, len(q.Placeholders)),
		}
		for key, p := range q.Placeholders {
			view.Placeholders[key] = string(p.Type)
		}
		view.Text = q.Render(func(key string, p domain.Placeholder) string {
			if v, ok := state.Response(q.ID, key); ok && !v.IsEmpty() {
				return p.Display(v)
			}
			return "{{" + key + "}}"
		})
		return view
	}
	return nil
}
