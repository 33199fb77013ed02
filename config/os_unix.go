//go:build !windows

package config

import (
	"os"

	"golang.org/x/term"
)

// EnableColorOutput reports whether log levels written to stream could be
// colored: stream is a terminal and environment does not ask for plain text.
func EnableColorOutput(stream *os.File) bool {
	if colorSuppressed() {
		return false
	}
	return term.IsTerminal(int(stream.Fd()))
}
