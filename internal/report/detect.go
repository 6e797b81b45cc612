package report

import (
	"io"
	"os"

	"golang.org/x/term"
)

// Styled reports whether output written to w should carry colors and
// borders: w must be a terminal, and neither NO_COLOR nor CI may be set.
func Styled(w io.Writer) bool {
	if os.Getenv("NO_COLOR") != "" || os.Getenv("CI") != "" {
		return false
	}
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return term.IsTerminal(int(f.Fd()))
}
