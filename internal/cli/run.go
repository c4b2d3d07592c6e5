package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/aretw0/simflow"
	"github.com/aretw0/simflow/internal/config"
	"github.com/aretw0/simflow/internal/logging"
	"github.com/aretw0/simflow/internal/presentation/tui"
	"github.com/aretw0/simflow/pkg/observability"
	"github.com/aretw0/simflow/pkg/runner"
	"golang.org/x/term"
)

// RunOptions contains all the configuration for the run command.
type RunOptions struct {
	FormPath  string
	SessionID string
	Fresh     bool
	JSON      bool
	Debug     bool
	Config    config.Config

	// In and Out default to Stdin and Stdout.
	In  io.Reader
	Out io.Writer
}

// Run answers a form interactively. With a session id the answers are
// checkpointed to the configured store (the file store when none is set)
// and a later run with the same id resumes where it stopped.
func Run(ctx context.Context, opts RunOptions) (simflow.Outcome, error) {
	if opts.In == nil {
		opts.In = os.Stdin
	}
	if opts.Out == nil {
		opts.Out = os.Stdout
	}
	cfg := opts.Config
	if opts.SessionID != "" && cfg.Store == config.StoreMemory {
		cfg.Store = config.StoreFile
	}

	logger := logging.NewNop()
	if opts.Debug {
		logger = logging.New(slog.LevelDebug, logging.Format(cfg.LogFormat))
	}

	backend, err := OpenBackend(ctx, cfg)
	if err != nil {
		return simflow.Outcome{}, err
	}
	defer backend.Close()

	form, err := LoadForm(opts.FormPath)
	if err != nil {
		return simflow.Outcome{}, err
	}
	engine, err := NewEngine(form, backend, cfg, logger,
		simflow.WithLifecycleHooks(observability.LogHooks(logger)))
	if err != nil {
		return simflow.Outcome{}, err
	}

	if opts.Fresh && opts.SessionID != "" {
		if err := engine.Delete(ctx, opts.SessionID); err != nil {
			return simflow.Outcome{}, fmt.Errorf("failed to reset session: %w", err)
		}
	}

	var sess *simflow.Session
	resumed := false
	if opts.SessionID != "" {
		_, loadErr := backend.Store.Load(ctx, opts.SessionID)
		resumed = loadErr == nil
		sess, err = engine.Open(ctx, opts.SessionID)
	} else {
		sess, err = engine.CreateSession(ctx, "")
	}
	if err != nil {
		return simflow.Outcome{}, fmt.Errorf("failed to init session: %w", err)
	}
	defer sess.Close()

	tty := isTerminal(opts.In) && isTerminal(opts.Out)
	var handler runner.IOHandler
	if opts.JSON {
		handler = runner.NewJSONHandler(opts.In, opts.Out)
	} else {
		var hopts []runner.TextHandlerOption
		if tty {
			tui.PrintBanner(opts.Out, simflow.Version)
			hopts = append(hopts, runner.WithTextHandlerRenderer(tui.NewRenderer(80)), runner.WithInteractive(true))
		}
		handler = runner.NewTextHandler(opts.In, opts.Out, hopts...)
	}
	if resumed {
		_ = handler.SystemOutput(ctx, fmt.Sprintf("Resuming session '%s'.", opts.SessionID))
	}
	logger.Info("session started", "session_id", sess.ID())

	r := runner.NewRunner(
		runner.WithLogger(logger),
		runner.WithInputHandler(handler),
		runner.WithMaxInputSize(runner.MaxInputSize()),
	)
	outcome, runErr := r.Run(ctx, sess)

	if !opts.JSON {
		summarize(opts.Out, sess, outcome, runErr)
	}
	return outcome, handleExecutionError(runErr)
}

func summarize(w io.Writer, sess *simflow.Session, outcome simflow.Outcome, err error) {
	fmt.Fprintln(w)
	switch {
	case err != nil && isInterrupted(err):
		fmt.Fprintf(w, ">>> Interrupted. Session '%s' kept.\n", sess.ID())
	case err != nil:
		return
	case outcome.Kind == simflow.OutcomeStopped, outcome.Kind == simflow.OutcomeEnd:
		fmt.Fprintln(w, ">>> Finished.")
	default:
		fmt.Fprintf(w, ">>> Stopped (%s).\n", outcome.Kind)
	}
	fmt.Fprintln(w, tui.ProgressBar(sess.Progress(), 30))
}

func isTerminal(v any) bool {
	f, ok := v.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

// isInterrupted reports errors that mean the user left: quit, Ctrl+C or
// the end of input.
func isInterrupted(err error) bool {
	return errors.Is(err, runner.ErrQuit) ||
		errors.Is(err, context.Canceled) ||
		errors.Is(err, io.EOF)
}

func handleExecutionError(err error) error {
	if err == nil || isInterrupted(err) {
		return nil
	}
	return err
}
