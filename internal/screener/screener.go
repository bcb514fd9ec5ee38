// Package screener applies at most one glob rule to a scanned file set.
//
// Two screeners run per invocation. The first derives the Scope: the files
// whose combined size is compared against the budget (--include-only /
// --exclude). The second derives the Eligible set: the files that may be
// deleted (--select / --protect). Both are applied to the full scan
// listing, independently of each other — a file can count toward the
// budget while being protected from deletion, which lets an operator pin
// files without letting them escape the size accounting.
package screener

import (
	"fmt"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/ivoronin/culldog/internal/matcher"
	"github.com/ivoronin/culldog/internal/progress"
	"github.com/ivoronin/culldog/internal/types"
)

// Rule is a tagged filter choice: keep everything, keep only matches, or
// keep only non-matches. Include and Exclude cannot coexist because a Rule
// holds a single matcher; the mutual exclusion is structural, not a flag
// convention.
type Rule struct {
	matcher *matcher.Matcher
	exclude bool
}

// MatchAll returns the rule that keeps every entry. It is the zero value.
func MatchAll() Rule { return Rule{} }

// Include returns a rule keeping only entries that match m.
func Include(m *matcher.Matcher) Rule { return Rule{matcher: m} }

// Exclude returns a rule keeping only entries that do not match m.
func Exclude(m *matcher.Matcher) Rule { return Rule{matcher: m, exclude: true} }

// Keep reports whether entry passes the rule.
func (r Rule) Keep(e *types.FileEntry) bool {
	if r.matcher == nil {
		return true
	}
	return r.matcher.Matches(e.Path) != r.exclude
}

// Screener filters a scanned file set by one rule.
//
// The screener is designed for single-use: create with New(), call Run() once.
type Screener struct {
	files        []*types.FileEntry
	rule         Rule
	showProgress bool
}

// New creates a Screener applying rule to files.
func New(files []*types.FileEntry, rule Rule, showProgress bool) *Screener {
	return &Screener{files: files, rule: rule, showProgress: showProgress}
}

// stats tracks screening results.
type stats struct {
	keptFiles int
	keptBytes int64
	startTime time.Time
}

func (s *stats) String() string {
	return fmt.Sprintf("Matched %d files (%s) in %.1fs",
		s.keptFiles, humanize.IBytes(uint64(s.keptBytes)),
		time.Since(s.startTime).Seconds())
}

// Run returns the entries that pass the rule, preserving input order.
func (s *Screener) Run() []*types.FileEntry {
	bar := progress.New(s.showProgress)
	st := &stats{startTime: time.Now()}

	kept := make([]*types.FileEntry, 0, len(s.files))
	for _, f := range s.files {
		if s.rule.Keep(f) {
			kept = append(kept, f)
			st.keptFiles++
			st.keptBytes += f.Size
		}
	}

	bar.Finish(st)
	return kept
}

// TotalSize sums the scan-time sizes of entries.
func TotalSize(entries []*types.FileEntry) int64 {
	var total int64
	for _, e := range entries {
		total += e.Size
	}
	return total
}
