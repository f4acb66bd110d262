package tui

import (
	"fmt"
	"io"

	"github.com/muesli/termenv"
)

var bannerLines = []struct {
	text  string
	color string
}{
	{"  __                          _      _ ", "#34d399"},
	{" / _| ___ _ __ _ __  ___ _ __(_) ___| |", "#2dd4bf"},
	{"| |_ / _ \\ '__| '_ \\/ __| '_ \\| |/ _ \\ |", "#22d3ee"},
	{"|  _|  __/ |  | | | \\__ \\ |_) | |  __/ |", "#38bdf8"},
	{"|_|  \\___|_|  |_| |_|___/ .__/|_|\\___|_|", "#60a5fa"},
	{"                        |_|            ", "#818cf8"},
}

// PrintBanner writes the ASCII art banner followed by the version.
func PrintBanner(w io.Writer, version string) {
	out := termenv.NewOutput(w)
	fmt.Fprintln(w)
	for _, l := range bannerLines {
		fmt.Fprintln(w, out.String(l.text).Foreground(out.Color(l.color)))
	}
	if version != "" {
		fmt.Fprintln(w, out.String("  v"+version).Faint())
	}
	fmt.Fprintln(w)
}
