package diagnostics

import (
	"fmt"
	"io"
	"os"

	"github.com/mattn/go-isatty"

	"github.com/archy-none/lumo/internal/config"
)

const (
	ansiRed   = "\x1b[31m"
	ansiReset = "\x1b[0m"
)

// Render prints err's single textual message to w (spec.md §7: "the first
// failure records a human-readable message ... and aborts the pass" — there
// is never more than one message to show). The message is colored red when
// w is a terminal file descriptor; color is always suppressed in
// config.IsTestMode so golden output stays stable.
func Render(w io.Writer, err error) {
	if err == nil {
		return
	}
	if shouldColor(w) {
		fmt.Fprintf(w, "%serror:%s %s\n", ansiRed, ansiReset, err.Error())
		return
	}
	fmt.Fprintf(w, "error: %s\n", err.Error())
}

func shouldColor(w io.Writer) bool {
	if config.IsTestMode {
		return false
	}
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}
