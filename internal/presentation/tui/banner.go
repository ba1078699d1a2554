package tui

import (
	"fmt"
	"io"
	"strings"

	"github.com/muesli/termenv"
)

// PrintBanner writes the claire banner and version to w, colored when w supports it.
func PrintBanner(w io.Writer, version string) {
	out := termenv.NewOutput(w)
	lines := []struct {
		text  string
		color string
	}{
		{"      _       _          ", "#818cf8"},
		{"  ___| | __ _(_)_ __ ___ ", "#a78bfa"},
		{" / __| |/ _` | | '__/ _ \\", "#c084fc"},
		{"| (__| | (_| | | | |  __/", "#e879f9"},
		{" \\___|_|\\__,_|_|_|  \\___|", "#f472b6"},
	}

	fmt.Fprintln(w)
	for _, l := range lines {
		fmt.Fprintln(w, out.String(l.text).Foreground(out.Color(l.color)))
	}
	fmt.Fprintln(w, out.String("  v"+strings.TrimSpace(version)).Faint())
	fmt.Fprintln(w)
}
