// Package logger provides the logging collaborator injected into every
// pipeline stage.
//
// The CLI constructs one logger at process start and passes it down; no
// stage touches process-wide logging state, and no stage depends on log
// output for correctness.
package logger

import (
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/fatih/color"
	"github.com/mattn/go-isatty"
)

// Logger receives informational messages and warnings from pipeline stages.
type Logger interface {
	Infof(format string, args ...any)
	Warnf(format string, args ...any)
}

// Console writes messages to a single writer, colorized when the writer is
// a terminal. Safe for concurrent use: the reaper and the error drain may
// log from different goroutines.
type Console struct {
	mu      sync.Mutex
	w       io.Writer
	verbose bool
	colored bool
}

// NewConsole creates a console logger writing to w. Informational messages
// are suppressed unless verbose is set; warnings are always written.
func NewConsole(w io.Writer, verbose bool) *Console {
	return &Console{w: w, verbose: verbose, colored: isTerminal(w)}
}

// isTerminal reports whether w is a TTY that should receive color.
// Honors NO_COLOR via the color library's global.
func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	if color.NoColor {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

// Infof logs an informational message when verbose output is enabled.
func (c *Console) Infof(format string, args ...any) {
	if !c.verbose {
		return
	}
	c.write("", format, args)
}

// Warnf logs a warning. Warnings are never suppressed.
func (c *Console) Warnf(format string, args ...any) {
	prefix := "warning: "
	if c.colored {
		// Clear any progress spinner occupying the line first.
		prefix = "\r\033[K" + color.New(color.FgYellow).Sprint("warning:") + " "
	}
	c.write(prefix, format, args)
}

func (c *Console) write(prefix, format string, args []any) {
	c.mu.Lock()
	defer c.mu.Unlock()
	fmt.Fprintf(c.w, prefix+format+"\n", args...)
}

// Discard is a Logger that drops all messages. Useful in tests.
type Discard struct{}

func (Discard) Infof(string, ...any) {}

func (Discard) Warnf(string, ...any) {}
