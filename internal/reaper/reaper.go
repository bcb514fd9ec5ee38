// Package reaper applies a deletion plan to the filesystem.
//
// In dry-run mode every planned path is reported and nothing is touched.
// In live mode each path is deleted independently: a failure on one file
// (missing, permission denied, in use) is reported on the error channel and
// the remaining plan continues. The reaper is fault-isolating per file, not
// transactional across the plan — a file that vanished between scan and
// execution is the same case as any other per-file failure.
//
// Successful deletions are appended to the journal when one is enabled. A
// journal write failure downgrades to a warning; the deletion already
// happened and still counts.
package reaper

import (
	"fmt"
	"os"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/ivoronin/culldog/internal/journal"
	"github.com/ivoronin/culldog/internal/logger"
	"github.com/ivoronin/culldog/internal/planner"
	"github.com/ivoronin/culldog/internal/progress"
)

// Reaper executes a deletion plan.
//
// The reaper is designed for single-use: create with New(), call Run() once.
type Reaper struct {
	// Config (immutable, set by New)
	plan         *planner.Plan
	dryRun       bool             // Report only, no filesystem mutation
	verbose      bool             // Print each live deletion to stdout
	showProgress bool             // Whether to display progress
	errCh        chan error       // Non-fatal errors (per-file failures)
	jrnl         *journal.Journal // Deletion record (may be disabled)
	log          logger.Logger
}

// New creates a Reaper for the given plan.
func New(plan *planner.Plan, dryRun, verbose, showProgress bool, errCh chan error, jrnl *journal.Journal, log logger.Logger) *Reaper {
	return &Reaper{
		plan:         plan,
		dryRun:       dryRun,
		verbose:      verbose,
		showProgress: showProgress,
		errCh:        errCh,
		jrnl:         jrnl,
		log:          log,
	}
}

// stats tracks execution progress.
type stats struct {
	plannedFiles int
	doneFiles    int
	freedBytes   int64
	dryRun       bool
	startTime    time.Time
}

func (s *stats) String() string {
	verb := "Deleted"
	if s.dryRun {
		verb = "Would delete"
	}
	return fmt.Sprintf("%s %d/%d files, freeing %s, in %.1fs",
		verb, s.doneFiles, s.plannedFiles,
		humanize.IBytes(uint64(s.freedBytes)),
		time.Since(s.startTime).Seconds())
}

// Run applies the plan in order. Returns the number of bytes freed
// (or that would be freed, in dry-run mode), per scan-time sizes.
func (r *Reaper) Run() int64 {
	bar := progress.New(r.showProgress)
	st := &stats{plannedFiles: r.plan.Len(), dryRun: r.dryRun, startTime: time.Now()}
	bar.Describe(st)

	for _, e := range r.plan.Entries() {
		result := r.reapFile(e.Path, e.Size)
		if result.Err != nil {
			r.sendError(fmt.Errorf("%s: %w", e.Path, result.Err))
			continue
		}

		// Journal only real deletions; failures here don't undo anything.
		if result.Action == ActionDeleted {
			if err := r.jrnl.Record(e, time.Now()); err != nil {
				r.log.Warnf("%v", err)
			}
		}

		st.doneFiles++
		st.freedBytes += result.BytesFreed
		if r.dryRun || r.verbose {
			fmt.Fprintf(os.Stderr, "\r\033[K") // Clear progress line
			_, _ = fmt.Fprintln(os.Stdout, result)
		}
		bar.Describe(st)
	}

	bar.Finish(st)
	return st.freedBytes
}

// reapFile deletes (or, in dry-run mode, reports) a single planned path.
func (r *Reaper) reapFile(path string, size int64) *ReapResult {
	if r.dryRun {
		return &ReapResult{Path: path, Action: ActionPlanned, BytesFreed: size}
	}

	if err := os.Remove(path); err != nil {
		return &ReapResult{Path: path, Action: ActionSkipped, Err: err}
	}

	return &ReapResult{Path: path, Action: ActionDeleted, BytesFreed: size}
}

// sendError sends an error to the errors channel if one is configured.
func (r *Reaper) sendError(err error) {
	if r.errCh != nil {
		r.errCh <- err
	}
}
