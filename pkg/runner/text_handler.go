package runner

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/aretw0/simflow/pkg/domain"
)

// TextHandler implements the standard text-based interface.
type TextHandler struct {
	Reader   *bufio.Reader
	Writer   io.Writer
	Renderer ContentRenderer

	// Interactive keeps the input stream open after EOF, which a terminal
	// reports when a read is interrupted by a signal.
	Interactive bool

	inputChan chan inputResult
	startOnce sync.Once
}

type inputResult struct {
	text string
	err  error
}

// TextHandlerOption defines configuration for TextHandler.
type TextHandlerOption func(*TextHandler)

// WithTextHandlerRenderer configures the content renderer.
func WithTextHandlerRenderer(renderer ContentRenderer) TextHandlerOption {
	return func(h *TextHandler) {
		h.Renderer = renderer
	}
}

// WithInteractive marks the reader as a terminal.
func WithInteractive(interactive bool) TextHandlerOption {
	return func(h *TextHandler) {
		h.Interactive = interactive
	}
}

// NewTextHandler creates a handler for standard text IO.
func NewTextHandler(r io.Reader, w io.Writer, opts ...TextHandlerOption) *TextHandler {
	if r == nil {
		r = os.Stdin
	}
	if w == nil {
		w = os.Stdout
	}
	h := &TextHandler{
		Reader: bufio.NewReader(r),
		Writer: w,
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

func (h *TextHandler) initPump() {
	h.startOnce.Do(func() {
		h.inputChan = make(chan inputResult)
		go h.pump()
	})
}

// pump reads lines in the background so Input can honour ctx cancellation.
func (h *TextHandler) pump() {
	for {
		text, err := h.Reader.ReadString('\n')
		if text != "" {
			h.inputChan <- inputResult{text: text}
		}
		if err == nil {
			continue
		}
		if err == io.EOF {
			if h.Interactive {
				h.inputChan <- inputResult{err: io.EOF}
				time.Sleep(50 * time.Millisecond)
				continue
			}
			close(h.inputChan)
			return
		}
		h.inputChan <- inputResult{err: err}
		time.Sleep(50 * time.Millisecond)
	}
}

// Output writes the question as markdown, passed through the Renderer if set.
func (h *TextHandler) Output(ctx context.Context, step Step) error {
	var sb strings.Builder
	title := step.BlockTitle
	if title == "" {
		title = step.BlockID
	}
	fmt.Fprintf(&sb, "### %s (%d%%)\n\n%s\n", title, step.Progress, step.Text)
	if step.Notes != "" {
		fmt.Fprintf(&sb, "\n> %s\n", step.Notes)
	}

	output := sb.String()
	if h.Renderer != nil {
		if rendered, err := h.Renderer(output); err == nil {
			output = rendered
		}
	}
	_, err := fmt.Fprintf(h.Writer, "\n%s\n", strings.TrimSpace(output))
	return err
}

// Input describes the placeholder, then waits for one line.
func (h *TextHandler) Input(ctx context.Context, prompt Prompt) (string, error) {
	h.initPump()

	select {
	case <-ctx.Done():
		return "", ctx.Err()
	default:
		h.describe(prompt)
	}

	select {
	case <-ctx.Done():
		return "", ctx.Err()
	case res, ok := <-h.inputChan:
		if !ok {
			return "", io.EOF
		}
		if res.err != nil {
			return "", res.err
		}
		return strings.TrimRight(res.text, "\r\n"), nil
	}
}

func (h *TextHandler) describe(prompt Prompt) {
	p := prompt.Placeholder
	label := p.Label
	if label == "" {
		label = prompt.Key
	}

	switch p.Type {
	case domain.PlaceholderSelect:
		for i, o := range p.Options {
			text := o.Label
			if text == "" {
				text = o.ID
			}
			fmt.Fprintf(h.Writer, "  %d) %s\n", i+1, text)
		}
		if p.Multiple {
			label += " (comma-separated)"
		}
	case domain.PlaceholderMultiBlock:
		add := p.AddBlockLabel
		if add == "" {
			add = "Add another"
		}
		fmt.Fprintf(h.Writer, "%s? [y/N] (%s so far)\n", add, prompt.Current)
		fmt.Fprint(h.Writer, "> ")
		return
	default:
		if p.InputType != "" && p.InputType != "text" {
			label += " (" + p.InputType + ")"
		}
	}

	if prompt.Current != "" {
		label += " [" + prompt.Current + "]"
	}
	if prompt.Skippable {
		label += " (enter to skip)"
	}
	fmt.Fprintf(h.Writer, "%s\n> ", label)
}

// SystemOutput prints meta-messages with a prefix.
func (h *TextHandler) SystemOutput(ctx context.Context, msg string) error {
	_, err := fmt.Fprintf(h.Writer, "[System] %s\n", msg)
	return err
}
