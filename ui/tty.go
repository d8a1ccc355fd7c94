package ui

import (
	"os"

	"github.com/mattn/go-isatty"
)

func SupportsANSICodes() bool {
	return isatty.IsTerminal(os.Stdout.Fd())
}

// Interactive reports whether prompts can be shown at all.
func Interactive() bool {
	return isatty.IsTerminal(os.Stdin.Fd()) && isatty.IsTerminal(os.Stdout.Fd())
}
