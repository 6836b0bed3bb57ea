package tui

import (
	"fmt"
	"os"

	"github.com/muesli/termenv"
	"golang.org/x/term"
)

// PrintBanner outputs the ASCII art banner. It stays silent when stdout
// is not a terminal, so piped output is not polluted.
func PrintBanner(version string) {
	if !term.IsTerminal(int(os.Stdout.Fd())) {
		return
	}

	p := termenv.ColorProfile()
	// Foliage gradient, dark to light
	lines := []struct {
		text  string
		color string
	}{
		{`            _                `, "#15803d"},
		{`   __ _ _ _| |__  ___ _ _   `, "#16a34a"},
		{`  / _` + "`" + ` | '_| '_ \/ _ \ '_|  `, "#22c55e"},
		{`  \__,_|_| |_.__/\___/_|    `, "#4ade80"},
	}

	fmt.Println()
	for _, l := range lines {
		fmt.Println(termenv.String(l.text).Foreground(p.Color(l.color)))
	}
	fmt.Println(termenv.String("  v" + version).Foreground(p.Color("#86efac")).Faint())
	fmt.Println()
}
