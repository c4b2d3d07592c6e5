package runner

import (
	"bytes"
	"context"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/aretw0/simflow/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTextHandler_Output(t *testing.T) {
	out := &bytes.Buffer{}
	handler := NewTextHandler(strings.NewReader(""), out, WithTextHandlerRenderer(func(s string) (string, error) {
		return "Rendered: " + s, nil
	}))

	err := handler.Output(context.Background(), Step{BlockID: "b", QuestionID: "q", Text: "Hello World", Notes: "Be honest", Progress: 40})
	require.NoError(t, err)

	got := out.String()
	assert.Contains(t, got, "Rendered: ### b (40%)")
	assert.Contains(t, got, "Hello World")
	assert.Contains(t, got, "> Be honest")
}

func TestTextHandler_Input(t *testing.T) {
	out := &bytes.Buffer{}
	handler := NewTextHandler(strings.NewReader("2\r\nsecond\n"), out)
	ctx := context.Background()

	prompt := Prompt{QuestionID: "q", Key: "p", Placeholder: domain.Placeholder{
		Type:     domain.PlaceholderSelect,
		Label:    "Fruit",
		Multiple: true,
		Options:  []domain.Option{{ID: "a", Label: "Apple"}, {ID: "b"}},
	}, Current: "Apple"}

	line, err := handler.Input(ctx, prompt)
	require.NoError(t, err)
	assert.Equal(t, "2", line)
	assert.Contains(t, out.String(), "  1) Apple\n  2) b\n")
	assert.Contains(t, out.String(), "Fruit (comma-separated) [Apple]\n> ")

	line, err = handler.Input(ctx, Prompt{Key: "n", Placeholder: domain.Placeholder{Type: domain.PlaceholderInput, InputType: "number"}, Skippable: true})
	require.NoError(t, err)
	assert.Equal(t, "second", line)
	assert.Contains(t, out.String(), "n (number) (enter to skip)\n> ")

	_, err = handler.Input(ctx, Prompt{Key: "n"})
	assert.ErrorIs(t, err, io.EOF)
}

func TestTextHandler_InputCancelled(t *testing.T) {
	pr, pw := io.Pipe()
	defer pw.Close()

	handler := NewTextHandler(pr, io.Discard)
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	_, err := handler.Input(ctx, Prompt{Key: "x"})
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestTextHandler_SystemOutput(t *testing.T) {
	out := &bytes.Buffer{}
	handler := NewTextHandler(nil, out)
	require.NoError(t, handler.SystemOutput(context.Background(), "saved"))
	assert.Equal(t, "[System] saved\n", out.String())
}
