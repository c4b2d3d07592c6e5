/*
Package runner asks the questions of a simflow session one at a time.

The Runner reads the active question, collects an answer for each of its
placeholders through an IOHandler, validates it and then follows the
question's target with Session.Next until the flow stops.

# Handlers

  - TextHandler: interactive terminal use, with an optional markdown renderer.
  - JSONHandler: JSON Lines for driving the runner from another process.

# Commands

At any prompt "q", "quit" or "exit" returns ErrQuit, ":back" returns to the
previous question and ":skip" skips a question that allows it.

# Usage

	sess, _ := engine.CreateSession(ctx, "")
	r := runner.NewRunner(runner.WithInputHandler(runner.NewTextHandler(os.Stdin, os.Stdout)))
	outcome, err := r.Run(ctx, sess)
*/
package runner
