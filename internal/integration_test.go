//go:build unix

package internal

import (
	"testing"
	"time"

	"github.com/ivoronin/culldog/internal/journal"
	"github.com/ivoronin/culldog/internal/logger"
	"github.com/ivoronin/culldog/internal/matcher"
	"github.com/ivoronin/culldog/internal/planner"
	"github.com/ivoronin/culldog/internal/reaper"
	"github.com/ivoronin/culldog/internal/scanner"
	"github.com/ivoronin/culldog/internal/screener"
	"github.com/ivoronin/culldog/internal/testfs"
)

// noJournal is a disabled journal for tests (journal.Open("") is a no-op).
var noJournal, _ = journal.Open("")

// cull runs the full pipeline over root, mirroring the phase ordering of
// the CLI: scan → scope/size → plan → reap.
func cull(t *testing.T, root string, maxSize int64, scopeRule, eligibleRule screener.Rule, dryRun bool) *planner.Plan {
	t.Helper()

	errCh := make(chan error, 100)

	files := scanner.New(root, 2, false, errCh).Run()

	scope := screener.New(files, scopeRule, false).Run()
	sizeToFree := max(0, screener.TotalSize(scope)-maxSize)

	eligible := screener.New(files, eligibleRule, false).Run()
	plan := planner.New(eligible, sizeToFree).Run()

	reaper.New(plan, dryRun, false, false, errCh, noJournal, logger.Discard{}).Run()

	close(errCh)
	for err := range errCh {
		t.Logf("pipeline warning: %v", err)
	}
	return plan
}

func include(t *testing.T, base, pattern string) screener.Rule {
	t.Helper()
	m, err := matcher.Compile(base, pattern)
	if err != nil {
		t.Fatal(err)
	}
	return screener.Include(m)
}

func exclude(t *testing.T, base, pattern string) screener.Rule {
	t.Helper()
	m, err := matcher.Compile(base, pattern)
	if err != nil {
		t.Fatal(err)
	}
	return screener.Exclude(m)
}

// =============================================================================
// Section 1: Full Pipeline Tests
// =============================================================================

// TestPipelineEvictsOldestFirst runs the canonical scenario: 10/20/30 byte
// files (oldest first: 30, 20, 10), budget 25, total 60 → 35 to free → the
// two oldest files go, the newest survives.
func TestPipelineEvictsOldestFirst(t *testing.T) {
	h := testfs.New(t, testfs.Tree{Files: []testfs.File{
		{Path: "old.log", Size: 30, Age: 3 * time.Hour},
		{Path: "mid.log", Size: 20, Age: 2 * time.Hour},
		{Path: "new.log", Size: 10, Age: 1 * time.Hour},
	}})

	plan := cull(t, h.Root(), 25, screener.MatchAll(), screener.MatchAll(), false)

	if plan.Len() != 2 {
		t.Errorf("planned %d deletions, want 2", plan.Len())
	}
	h.Assert(testfs.Tree{Files: []testfs.File{
		{Path: "new.log", Size: 10},
	}})
}

// TestPipelineWithinBudget verifies a tree already under budget loses
// nothing, in both live and dry-run mode.
func TestPipelineWithinBudget(t *testing.T) {
	for _, dryRun := range []bool{false, true} {
		h := testfs.New(t, testfs.Tree{Files: []testfs.File{
			{Path: "a.log", Size: 10, Age: 2 * time.Hour},
			{Path: "b.log", Size: 10, Age: 1 * time.Hour},
		}})

		plan := cull(t, h.Root(), 100, screener.MatchAll(), screener.MatchAll(), dryRun)

		if plan.Len() != 0 {
			t.Errorf("dryRun=%v: planned %d deletions, want 0", dryRun, plan.Len())
		}
		h.Assert(testfs.Tree{Files: []testfs.File{
			{Path: "a.log", Size: 10},
			{Path: "b.log", Size: 10},
		}})
	}
}

// TestPipelineProtectAll verifies a protect pattern covering every file
// leaves the budget unmet without deleting anything and without failing.
func TestPipelineProtectAll(t *testing.T) {
	h := testfs.New(t, testfs.Tree{Files: []testfs.File{
		{Path: "a.log", Size: 50, Age: 2 * time.Hour},
		{Path: "b.log", Size: 50, Age: 1 * time.Hour},
	}})

	plan := cull(t, h.Root(), 10, screener.MatchAll(), exclude(t, h.Root(), "**"), false)

	if plan.Len() != 0 {
		t.Errorf("planned %d deletions, want 0 (everything protected)", plan.Len())
	}
	h.Assert(testfs.Tree{Files: []testfs.File{
		{Path: "a.log", Size: 50},
		{Path: "b.log", Size: 50},
	}})
}

// TestPipelineDryRunIdempotent verifies two dry runs over an unchanged tree
// produce the identical plan and leave the tree intact.
func TestPipelineDryRunIdempotent(t *testing.T) {
	h := testfs.New(t, testfs.Tree{Files: []testfs.File{
		{Path: "old.log", Size: 30, Age: 3 * time.Hour},
		{Path: "new.log", Size: 30, Age: 1 * time.Hour},
	}})

	first := cull(t, h.Root(), 40, screener.MatchAll(), screener.MatchAll(), true)
	second := cull(t, h.Root(), 40, screener.MatchAll(), screener.MatchAll(), true)

	if first.Len() != second.Len() {
		t.Fatalf("plan lengths differ: %d vs %d", first.Len(), second.Len())
	}
	for i := range first.Entries() {
		if first.Entries()[i].Path != second.Entries()[i].Path {
			t.Errorf("plan[%d] differs: %s vs %s",
				i, first.Entries()[i].Path, second.Entries()[i].Path)
		}
	}
	h.Assert(testfs.Tree{Files: []testfs.File{
		{Path: "old.log", Size: 30},
		{Path: "new.log", Size: 30},
	}})
}

// =============================================================================
// Section 2: Scope vs Eligibility
// =============================================================================

// TestPipelineScopeEligibilityAsymmetry verifies the two filters are
// independent: compressed logs are the only deletable files, but every
// file counts toward the budget.
func TestPipelineScopeEligibilityAsymmetry(t *testing.T) {
	h := testfs.New(t, testfs.Tree{Files: []testfs.File{
		{Path: "app.log", Size: 50, Age: 4 * time.Hour},    // Oldest but not eligible
		{Path: "app.log.1.gz", Size: 30, Age: 3 * time.Hour},
		{Path: "app.log.2.gz", Size: 20, Age: 2 * time.Hour},
	}})

	// Budget 60, total 100 → free 40. Only *.gz may be deleted, so both
	// archives go (30+20 ≥ 40) and the live log survives despite its age.
	cull(t, h.Root(), 60, screener.MatchAll(), include(t, h.Root(), "*.gz"), false)

	h.Assert(testfs.Tree{Files: []testfs.File{
		{Path: "app.log", Size: 50},
	}})
}

// TestPipelineIncludeOnlyScope verifies files outside the scope pattern
// don't count toward the budget.
func TestPipelineIncludeOnlyScope(t *testing.T) {
	h := testfs.New(t, testfs.Tree{Files: []testfs.File{
		{Path: "data.log", Size: 30, Age: 2 * time.Hour},
		{Path: "notes.txt", Size: 500, Age: 5 * time.Hour},
	}})

	// Only *.log counts: 30 ≤ 40, nothing to free even though the tree as
	// a whole is far over.
	plan := cull(t, h.Root(), 40, include(t, h.Root(), "*.log"), screener.MatchAll(), false)

	if plan.Len() != 0 {
		t.Errorf("planned %d deletions, want 0", plan.Len())
	}
	h.Assert(testfs.Tree{Files: []testfs.File{
		{Path: "data.log", Size: 30},
		{Path: "notes.txt", Size: 500},
	}})
}

// TestPipelineHiddenPrunedEverywhere verifies hidden files and the
// contents of hidden directories neither count nor get deleted.
func TestPipelineHiddenPrunedEverywhere(t *testing.T) {
	h := testfs.New(t, testfs.Tree{Files: []testfs.File{
		{Path: "visible.log", Size: 30, Age: 1 * time.Hour},
		{Path: ".hidden.log", Size: 500, Age: 9 * time.Hour},
		{Path: ".git/objects/pack", Size: 500, Age: 9 * time.Hour},
	}})

	// Budget 30 covers visible.log exactly; the hidden 1000 bytes are
	// invisible to the accounting.
	plan := cull(t, h.Root(), 30, screener.MatchAll(), screener.MatchAll(), false)

	if plan.Len() != 0 {
		t.Errorf("planned %d deletions, want 0", plan.Len())
	}
	h.Assert(testfs.Tree{Files: []testfs.File{
		{Path: "visible.log", Size: 30},
		{Path: ".hidden.log", Size: 500},
		{Path: ".git/objects/pack", Size: 500},
	}})
}

// TestPipelineSubdirectories verifies eviction ordering spans the whole
// tree, not just the top level.
func TestPipelineSubdirectories(t *testing.T) {
	h := testfs.New(t, testfs.Tree{Files: []testfs.File{
		{Path: "a/oldest.log", Size: 40, Age: 5 * time.Hour},
		{Path: "b/newer.log", Size: 40, Age: 2 * time.Hour},
		{Path: "top.log", Size: 40, Age: 1 * time.Hour},
	}})

	// Total 120, budget 80 → free 40 → only the oldest (in a/) goes.
	cull(t, h.Root(), 80, screener.MatchAll(), screener.MatchAll(), false)

	h.Assert(testfs.Tree{Files: []testfs.File{
		{Path: "b/newer.log", Size: 40},
		{Path: "top.log", Size: 40},
	}})
}
