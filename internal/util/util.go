//go:build !windows

package util

import (
	"os"

	"golang.org/x/term"
)

// IsRunFromGUI reports whether the process was started from a graphical shell
// rather than a terminal. Always false outside Windows: double-click launches
// are a Windows problem, and treating service managers as GUI would trigger
// interactive prompts where nobody is watching.
func IsRunFromGUI() bool {
	return false
}

// StdoutIsTerminal reports whether stdout is attached to a terminal.
func StdoutIsTerminal() bool {
	return term.IsTerminal(int(os.Stdout.Fd()))
}

// HideConsoleWindow is a no-op on non-Windows platforms.
func HideConsoleWindow() {}
