package tui

import (
	"fmt"
	"io"
	"strings"

	"github.com/muesli/termenv"
)

var bannerLines = []struct {
	text  string
	color string
}{
	{`      _            __ _              `, "#34d399"},
	{`  ___(_)_ __ ___  / _| | _____      __`, "#2dd4bf"},
	{` / __| | '_ ' _ \| |_| |/ _ \ \ /\ / /`, "#22d3ee"},
	{` \__ \ | | | | | |  _| | (_) \ V  V / `, "#38bdf8"},
	{` |___/_|_| |_| |_|_| |_|\___/ \_/\_/  `, "#60a5fa"},
}

// PrintBanner writes the simflow banner followed by the version.
func PrintBanner(w io.Writer, version string) {
	p := termenv.EnvColorProfile()
	fmt.Fprintln(w)
	for _, l := range bannerLines {
		fmt.Fprintln(w, termenv.String(l.text).Foreground(p.Color(l.color)))
	}
	fmt.Fprintln(w, termenv.String("  "+version).Faint())
	fmt.Fprintln(w)
}

// ProgressBar renders a percentage as a coloured bar of the given width.
func ProgressBar(percent, width int) string {
	percent = max(0, min(100, percent))
	filled := percent * width / 100

	p := termenv.EnvColorProfile()
	color := "#f59e0b"
	if percent == 100 {
		color = "#34d399"
	}
	bar := termenv.String(strings.Repeat("█", filled)).Foreground(p.Color(color)).String() +
		termenv.String(strings.Repeat("░", width-filled)).Faint().String()
	return fmt.Sprintf("%s %3d%%", bar, percent)
}
