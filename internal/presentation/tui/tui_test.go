package tui

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPrintBanner(t *testing.T) {
	var buf bytes.Buffer
	PrintBanner(&buf, "v1.2.3")
	assert.Contains(t, buf.String(), "v1.2.3")
	assert.GreaterOrEqual(t, strings.Count(buf.String(), "\n"), len(bannerLines)+2)
}

func TestProgressBar(t *testing.T) {
	tests := []struct {
		percent int
		filled  int
		suffix  string
	}{
		{0, 0, "  0%"},
		{50, 5, " 50%"},
		{100, 10, "100%"},
		{150, 10, "100%"},
		{-3, 0, "  0%"},
	}
	for _, tt := range tests {
		bar := ProgressBar(tt.percent, 10)
		assert.True(t, strings.HasSuffix(bar, tt.suffix), bar)
		assert.Equal(t, tt.filled, strings.Count(bar, "█"))
		assert.Equal(t, 10-tt.filled, strings.Count(bar, "░"))
	}
}

func TestNewRenderer(t *testing.T) {
	render := NewRenderer(40)
	out, err := render("# Title\n\nbody")
	require.NoError(t, err)
	assert.Contains(t, out, "Title")
	assert.Contains(t, out, "body")
}
