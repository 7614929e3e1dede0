package tui

import (
	"fmt"
	"io"

	"github.com/muesli/termenv"
)

// PrintBanner writes the promowizard banner to w.
func PrintBanner(w io.Writer) {
	p := termenv.ColorProfile()
	lines := []struct {
		text  string
		color string
	}{
		{` ___                    __      ___              _ `, "#34d399"},
		{`| _ \_ _ ___ _ __  ___  \ \    / (_)_____ _ _ __| |`, "#2dd4bf"},
		{`|  _/ '_/ _ \ '  \/ _ \  \ \/\/ /| |_ / _' | '_/ _' |`, "#22d3ee"},
		{`|_| |_| \___/_|_|_\___/   \_/\_/ |_/__\__,_|_| \__,_|`, "#38bdf8"},
	}

	fmt.Fprintln(w)
	for _, l := range lines {
		fmt.Fprintln(w, termenv.String(l.text).Foreground(p.Color(l.color)))
	}
	fmt.Fprintln(w)
}
