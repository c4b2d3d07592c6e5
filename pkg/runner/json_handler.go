package runner

import (
	"bufio"
	"context"
	"encoding/json"
	"io"
	"os"
	"strings"
)

// Message is one JSON line written by JSONHandler.
type Message struct {
	Type    string  `json:"type"`
	Step    *Step   `json:"step,omitempty"`
	Prompt  *Prompt `json:"prompt,omitempty"`
	Message string  `json:"message,omitempty"`
}

// Message types.
const (
	MessageQuestion = "question"
	MessagePrompt   = "prompt"
	MessageSystem   = "system"
)

// JSONHandler implements the IOHandler interface for structured JSON-Lines communication.
type JSONHandler struct {
	Reader  *bufio.Reader
	Writer  io.Writer
	Encoder *json.Encoder
}

// NewJSONHandler creates a handler for JSON IO.
func NewJSONHandler(r io.Reader, w io.Writer) *JSONHandler {
	if r == nil {
		r = os.Stdin
	}
	if w == nil {
		w = os.Stdout
	}
	return &JSONHandler{
		Reader:  bufio.NewReader(r),
		Writer:  w,
		Encoder: json.NewEncoder(w),
	}
}

func (h *JSONHandler) Output(ctx context.Context, step Step) error {
	return h.Encoder.Encode(Message{Type: MessageQuestion, Step: &step})
}

// Input emits the prompt and reads one line. A JSON string is unquoted;
// anything else is returned as typed.
func (h *JSONHandler) Input(ctx context.Context, prompt Prompt) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if err := h.Encoder.Encode(Message{Type: MessagePrompt, Prompt: &prompt}); err != nil {
		return "", err
	}

	text, err := h.Reader.ReadString('\n')
	if err != nil && (err != io.EOF || text == "") {
		return "", err
	}
	text = strings.TrimSpace(text)

	var val string
	if err := json.Unmarshal([]byte(text), &val); err == nil {
		return val, nil
	}
	return text, nil
}

func (h *JSONHandler) SystemOutput(ctx context.Context, msg string) error {
	return h.Encoder.Encode(Message{Type: MessageSystem, Message: msg})
}
