package tui

import (
	"fmt"
	"io"

	"github.com/muesli/termenv"
)

var bannerLines = []struct{ text, color string }{
	{`                       `, "#818cf8"},
	{` __      _____ __ _    `, "#a78bfa"},
	{` \ \ /\ / / __/ _' |   `, "#c084fc"},
	{`  \ V  V / (_| (_| |   `, "#e879f9"},
	{`   \_/\_/ \___\__,_|   `, "#f472b6"},
}

// PrintBanner writes the wca ASCII art banner to w, colored according to
// the terminal capabilities of w.
func PrintBanner(w io.Writer, version string) {
	o := termenv.NewOutput(w)
	fmt.Fprintln(w)
	for _, l := range bannerLines {
		fmt.Fprintln(w, o.String(l.text).Foreground(o.Color(l.color)))
	}
	fmt.Fprintln(w, o.String("   cognitive assistant state machines "+version).Faint())
	fmt.Fprintln(w)
}
