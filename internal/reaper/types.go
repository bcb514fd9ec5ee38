package reaper

import (
	"fmt"
	"strings"
)

// ActionType describes the outcome of a single planned deletion.
type ActionType int

const (
	ActionDeleted ActionType = iota
	ActionPlanned            // Dry run: reported, not performed
	ActionSkipped            // Skipped due to error
)

// ReapResult describes the outcome of one planned deletion.
type ReapResult struct {
	Path       string     // Path the plan named
	Action     ActionType // Deleted, Planned, or Skipped
	BytesFreed int64      // Scan-time size reclaimed (0 if skipped)
	Err        error      // Non-nil if skipped
}

// String formats the result for display.
func (r *ReapResult) String() string {
	switch r.Action {
	case ActionDeleted:
		return fmt.Sprintf("Deleted %s", escapePath(r.Path))
	case ActionPlanned:
		return fmt.Sprintf("Would delete %s", escapePath(r.Path))
	case ActionSkipped:
		return fmt.Sprintf("skipped %s: %v", escapePath(r.Path), r.Err)
	default:
		return fmt.Sprintf("Unknown action for %s", escapePath(r.Path))
	}
}

// escapePath escapes special characters in paths for safe terminal output.
func escapePath(path string) string {
	r := strings.NewReplacer(
		"\t", "\\t",
		"\n", "\\n",
		"\r", "\\r",
	)
	return r.Replace(path)
}
