//go:build !windows

package config

import (
	"os"
	"strings"

	"golang.org/x/term"
)

// CleanFileName drops path separators and control characters, leading dots
// are trimmed so result is never hidden.
func CleanFileName(in string) string {
	return cleanFileName(in, string(os.PathSeparator)+string(os.PathListSeparator), strings.TrimLeft, ".")
}

// EnableColorOutput checks if colorized output is possible.
func EnableColorOutput(stream *os.File) bool {
	return term.IsTerminal(int(stream.Fd()))
}
