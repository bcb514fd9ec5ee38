package progress

import (
	"fmt"
	"os"
	"time"

	"github.com/schollz/progressbar/v3"
)

const updateInterval = 50 * time.Millisecond

// Bar wraps a spinner-style progress indicator with enabled/disabled
// handling. All methods are no-ops when disabled, so pipeline stages never
// need to branch on whether progress output is wanted.
type Bar struct {
	bar *progressbar.ProgressBar
}

// New creates a spinner on stderr describing an operation of unknown
// length. If enabled is false, returns a Bar where all methods are no-ops.
func New(enabled bool) *Bar {
	if !enabled {
		return &Bar{}
	}

	bar := progressbar.NewOptions(-1,
		progressbar.OptionSetWriter(os.Stderr),
		progressbar.OptionThrottle(updateInterval),
		progressbar.OptionClearOnFinish(),
		progressbar.OptionSpinnerType(14),
		progressbar.OptionSetElapsedTime(false),
	)
	return &Bar{bar: bar}
}

// Describe updates the text shown next to the spinner.
func (b *Bar) Describe(s fmt.Stringer) {
	if b.bar != nil {
		b.bar.Describe(s.String())
	}
}

// Finish clears the spinner and prints a final summary line.
func (b *Bar) Finish(s fmt.Stringer) {
	if b.bar != nil {
		_ = b.bar.Finish()
		fmt.Fprintln(os.Stderr, "✔ "+s.String())
	}
}
