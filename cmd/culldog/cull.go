package main

import (
	"errors"
	"fmt"
	"os"
	"runtime"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/ivoronin/culldog/internal/journal"
	"github.com/ivoronin/culldog/internal/logger"
	"github.com/ivoronin/culldog/internal/planner"
	"github.com/ivoronin/culldog/internal/reaper"
	"github.com/ivoronin/culldog/internal/scanner"
	"github.com/ivoronin/culldog/internal/screener"
)

// cullOptions holds CLI flags for the cull command.
type cullOptions struct {
	includeOnly string
	exclude     string
	selectFor   string
	protect     string
	group       bool
	dryRun      bool
	verbose     bool
	noProgress  bool
	workers     int
	journalFile string
}

// newCullCmd creates the cull subcommand.
func newCullCmd() *cobra.Command {
	opts := &cullOptions{
		workers: runtime.NumCPU(),
	}

	cmd := &cobra.Command{
		Use:   "cull <directory> <max-size>",
		Short: "Delete the oldest files until a directory fits its size budget",
		Long: `Computes the total size of the files under a directory and, when it
exceeds the budget, deletes the oldest files until the total fits.

Patterns are globs relative to the directory being culled; "**" crosses
directory boundaries. --include-only/--exclude decide which files count
toward the budget, --select/--protect decide which files may be deleted.
The two concerns are independent: a file can count toward the budget while
being protected from deletion.

Hidden files and directories (dot-prefixed) are never counted or deleted.

Use --dry-run to preview without making changes.`,
		Args: cobra.ExactArgs(2),
		RunE: func(_ *cobra.Command, args []string) error {
			return runCull(args[0], args[1], opts)
		},
	}

	// Bind flags to options
	cmd.Flags().StringVarP(&opts.includeOnly, "include-only", "i", "", "Glob pattern; only matching files count toward the budget")
	cmd.Flags().StringVarP(&opts.exclude, "exclude", "e", "", "Glob pattern; matching files don't count toward the budget")
	cmd.Flags().StringVarP(&opts.selectFor, "select", "s", "", "Glob pattern; only matching files may be deleted")
	cmd.Flags().StringVarP(&opts.protect, "protect", "p", "", "Glob pattern; matching files are never deleted")
	cmd.Flags().BoolVarP(&opts.group, "group", "g", false, "Delete files sharing a stem as whole groups (not implemented)")
	cmd.Flags().BoolVarP(&opts.dryRun, "dry-run", "n", false, "Preview deletions without executing them")
	cmd.Flags().BoolVarP(&opts.verbose, "verbose", "v", false, "Show per-file decisions and operations")
	cmd.Flags().BoolVar(&opts.noProgress, "no-progress", false, "Disable progress output")
	cmd.Flags().IntVarP(&opts.workers, "workers", "w", opts.workers, "Number of parallel scan workers")
	cmd.Flags().StringVar(&opts.journalFile, "journal-file", "", "Path to deletion journal (enables journaling)")

	cmd.MarkFlagsMutuallyExclusive("include-only", "exclude")
	cmd.MarkFlagsMutuallyExclusive("select", "protect")

	return cmd
}

// drainErrors consumes non-fatal errors from pipeline stages and surfaces
// them as warnings.
func drainErrors(errs <-chan error, log logger.Logger) {
	for err := range errs {
		log.Warnf("%v", err)
	}
}

// runCull executes the cull pipeline: scan → filter/size → plan → reap.
// The four phases are strictly ordered; every decision is made against the
// scan-time snapshot.
func runCull(dir, maxSizeStr string, opts *cullOptions) error {
	if opts.group {
		return errors.New("--group: deleting files grouped by stem is not implemented")
	}

	maxSize, err := parseSize(maxSizeStr)
	if err != nil {
		return fmt.Errorf("invalid max size: %w", err)
	}

	base, err := canonicalizeDir(dir)
	if err != nil {
		return err
	}

	log := logger.NewConsole(os.Stderr, opts.verbose)
	log.Infof("culling directory: %s", base)
	log.Infof("culling to size: %s", humanize.IBytes(uint64(maxSize)))

	scopeRule, err := compileRule(base, opts.includeOnly, opts.exclude)
	if err != nil {
		return err
	}
	eligibleRule, err := compileRule(base, opts.selectFor, opts.protect)
	if err != nil {
		return err
	}

	showProgress := !opts.noProgress

	// Create shared error channel
	errs := make(chan error, 100)
	go drainErrors(errs, log)
	defer close(errs)

	// Phase 1: Scan the tree once
	files := scanner.New(base, opts.workers, showProgress, errs).Run()

	// Phase 2: Scope the size accounting and compute the deficit
	scope := screener.New(files, scopeRule, showProgress).Run()
	total := screener.TotalSize(scope)
	sizeToFree := max(0, total-maxSize)
	log.Infof("size in scope: %s, size to free: %s",
		humanize.IBytes(uint64(total)), humanize.IBytes(uint64(sizeToFree)))

	if sizeToFree == 0 {
		return nil
	}

	// Eligibility is independent of scope: filter the full listing
	eligible := screener.New(files, eligibleRule, showProgress).Run()
	for _, f := range eligible {
		log.Infof("matched file: %s", f.Path)
	}

	// Phase 3: Plan the evictions
	plan := planner.New(eligible, sizeToFree).Run()
	if plan.Bytes() < sizeToFree {
		log.Warnf("eligible files cover only %s of the %s to free; the budget will stay unmet",
			humanize.IBytes(uint64(plan.Bytes())), humanize.IBytes(uint64(sizeToFree)))
	}

	// Phase 4: Execute the plan
	jrnl, err := journal.Open(opts.journalFile)
	if err != nil {
		return err
	}
	defer func() { _ = jrnl.Close() }()

	reaper.New(plan, opts.dryRun, opts.verbose, showProgress, errs, jrnl, log).Run()

	return nil
}
