package runner

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"github.com/aretw0/simflow"
	"github.com/aretw0/simflow/internal/logging"
	"github.com/aretw0/simflow/pkg/domain"
	"github.com/aretw0/simflow/pkg/schema"
)

// ErrQuit is returned by Run when the user asks to leave.
var ErrQuit = errors.New("quit requested")

// Commands recognised at any prompt.
const (
	CommandBack = ":back"
	CommandSkip = ":skip"
)

var quitCommands = map[string]bool{"q": true, "quit": true, "exit": true}

// Runner drives a Session through its questions using an IOHandler.
type Runner struct {
	Handler      IOHandler
	Logger       *slog.Logger
	MaxInputSize int
}

// NewRunner creates a Runner reading from Stdin and writing to Stdout.
func NewRunner(opts ...Option) *Runner {
	r := &Runner{Logger: logging.NewNop()}
	for _, opt := range opts {
		opt(r)
	}
	if r.Handler == nil {
		r.Handler = NewTextHandler(os.Stdin, os.Stdout)
	}
	return r
}

// Run asks the active question, stores the answers and follows Next until
// the flow stops or runs out of questions. Every answer is checkpointed by
// the session as it is given, so an interrupted run can be resumed.
func (r *Runner) Run(ctx context.Context, sess *simflow.Session) (simflow.Outcome, error) {
	for {
		if err := ctx.Err(); err != nil {
			return simflow.Outcome{}, err
		}

		state := sess.State()
		if state.Finished {
			return simflow.Outcome{Kind: simflow.OutcomeStopped}, nil
		}
		ref := state.ActiveQuestion
		if ref.QuestionID == "" {
			return simflow.Outcome{Kind: simflow.OutcomeEnd}, nil
		}
		block, q, ok := sess.FindQuestionByID(ref.QuestionID)
		if !ok {
			r.Logger.Warn("active question not found", "question_id", ref.QuestionID)
			return simflow.Outcome{Kind: simflow.OutcomeUnresolved}, fmt.Errorf("%w: %s", domain.ErrQuestionNotFound, ref.QuestionID)
		}

		step := Step{
			BlockID:    block.ID,
			BlockTitle: block.Title,
			QuestionID: q.ID,
			Text:       renderText(q, state),
			Notes:      q.Notes,
			Progress:   sess.Progress(),
		}
		if err := r.Handler.Output(ctx, step); err != nil {
			return simflow.Outcome{}, fmt.Errorf("output error: %w", err)
		}

		back, err := r.answer(ctx, sess, q)
		if err != nil {
			return simflow.Outcome{}, err
		}
		if back {
			if err := r.back(ctx, sess, block, q); err != nil {
				return simflow.Outcome{}, err
			}
			continue
		}

		out, err := sess.Next(ctx)
		if err != nil {
			return out, err
		}
		r.Logger.Debug("navigated", "from", q.ID, "outcome", out.Kind, "to", out.To.QuestionID)
		switch out.Kind {
		case simflow.OutcomeStopped, simflow.OutcomeEnd:
			return out, nil
		case simflow.OutcomeUnresolved:
			target := sess.ResolveTarget(q.ID)
			_ = r.Handler.SystemOutput(ctx, fmt.Sprintf("Question %q leads to %q, which does not exist.", q.ID, target))
			return out, nil
		}
	}
}

// answer collects every placeholder of q. It reports true when the user asked
// to go back instead.
func (r *Runner) answer(ctx context.Context, sess *simflow.Session, q domain.Question) (bool, error) {
	for _, key := range q.PlaceholderKeys() {
		p := q.Placeholders[key]
		if p.Type == domain.PlaceholderMultiBlock {
			back, err := r.manage(ctx, sess, q, key, p)
			if back || err != nil {
				return back, err
			}
			continue
		}

		for {
			prompt := Prompt{QuestionID: q.ID, Key: key, Placeholder: p, Skippable: q.SkippableWithNotSure}
			if v, ok := sess.State().Response(q.ID, key); ok {
				prompt.Current = p.Display(v)
			}
			line, err := r.read(ctx, prompt)
			if err != nil {
				return false, err
			}
			switch {
			case line == CommandBack:
				return true, nil
			case line == CommandSkip || (line == "" && prompt.Skippable):
				if !prompt.Skippable {
					_ = r.Handler.SystemOutput(ctx, "This question cannot be skipped.")
					continue
				}
			case line == "" && prompt.Current != "":
				// keep the stored answer
			case line == "":
				_ = r.Handler.SystemOutput(ctx, "An answer is required.")
				continue
			default:
				v := ParseAnswer(p, line)
				if err := schema.ValidateResponse(q, key, v); err != nil {
					_ = r.Handler.SystemOutput(ctx, err.Error())
					continue
				}
				if err := sess.SetResponse(ctx, q.ID, key, v); err != nil {
					return false, err
				}
			}
			break
		}
	}
	return false, nil
}

// manage offers to add instances of a repeatable block until declined.
func (r *Runner) manage(ctx context.Context, sess *simflow.Session, q domain.Question, key string, p domain.Placeholder) (bool, error) {
	for {
		count := len(sess.DynamicBlocksByBlueprint(p.BlockBlueprint))
		prompt := Prompt{QuestionID: q.ID, Key: key, Placeholder: p, Current: strconv.Itoa(count)}
		line, err := r.read(ctx, prompt)
		if err != nil {
			return false, err
		}
		switch strings.ToLower(line) {
		case CommandBack:
			return true, nil
		case "y", "yes":
			id, ok, err := sess.CreateDynamicBlock(ctx, p.BlockBlueprint)
			if err != nil {
				return false, err
			}
			if !ok {
				_ = r.Handler.SystemOutput(ctx, fmt.Sprintf("%q is not a repeatable block.", p.BlockBlueprint))
				return false, nil
			}
			_ = r.Handler.SystemOutput(ctx, fmt.Sprintf("Added %s.", id))
		default:
			return false, sess.SetResponse(ctx, q.ID, key, domain.Text(strconv.Itoa(count)))
		}
	}
}

// back returns to the question this one was reached from, or to the
// previous question of the block.
func (r *Runner) back(ctx context.Context, sess *simflow.Session, block domain.Block, q domain.Question) error {
	if entry, ok := sess.NavigationHistoryFor(q.ID); ok {
		return sess.GoToQuestion(ctx, entry.FromBlockID, entry.FromQuestionID)
	}
	if idx := block.QuestionIndex(q.ID); idx > 0 {
		return sess.GoToQuestion(ctx, block.ID, block.Questions[idx-1].ID)
	}
	return r.Handler.SystemOutput(ctx, "Nothing to go back to.")
}

func (r *Runner) read(ctx context.Context, prompt Prompt) (string, error) {
	for {
		raw, err := r.Handler.Input(ctx, prompt)
		if err != nil {
			return "", fmt.Errorf("input error: %w", err)
		}
		line, err := SanitizeInput(raw, r.MaxInputSize)
		if err != nil {
			r.Logger.Warn("input rejected", "error", err, "size", len(raw))
			_ = r.Handler.SystemOutput(ctx, fmt.Sprintf("Error: %v. Please try again.", err))
			continue
		}
		if quitCommands[strings.ToLower(line)] {
			return "", ErrQuit
		}
		return line, nil
	}
}

func renderText(q domain.Question, state *domain.FormState) string {
	return q.Render(func(key string, p domain.Placeholder) string {
		if v, ok := state.Response(q.ID, key); ok && !v.IsEmpty() {
			return p.Display(v)
		}
		if p.Label != "" {
			return "[" + p.Label + "]"
		}
		return "[" + key + "]"
	})
}
