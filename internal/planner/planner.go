// Package planner decides exactly which files are deleted and in what order.
//
// The planner is the policy heart of culldog. Given the eligible files and
// the number of bytes that must be freed, it orders candidates oldest-first
// and greedily selects the shortest prefix whose cumulative size reaches
// the target. Because sizes are non-negative and the prefix is consumed in
// non-decreasing age order, the greedy walk is optimal for the "fewest,
// oldest files" objective.
//
// Selection is a pure read: the eligible set is sorted into a new
// collection and walked with a cursor, never mutated.
package planner

import (
	"github.com/ivoronin/culldog/internal/types"
)

// Plan is an ordered deletion plan, oldest-selected-first, produced once
// per run and consumed once by the reaper.
type Plan struct {
	entries []*types.FileEntry
	bytes   int64
}

// Entries returns the planned entries in deletion order.
func (p *Plan) Entries() []*types.FileEntry { return p.entries }

// Len returns the number of planned deletions.
func (p *Plan) Len() int { return len(p.entries) }

// Bytes returns the cumulative scan-time size of the planned entries.
func (p *Plan) Bytes() int64 { return p.bytes }

// Planner selects the files to delete.
//
// The planner is designed for single-use: create with New(), call Run() once.
type Planner struct {
	eligible   []*types.FileEntry
	sizeToFree int64
}

// New creates a Planner over the eligible files. sizeToFree is the deficit
// between the in-scope total and the budget.
func New(eligible []*types.FileEntry, sizeToFree int64) *Planner {
	return &Planner{eligible: eligible, sizeToFree: sizeToFree}
}

// Run produces the deletion plan.
//
// The eligible entries are sorted oldest-first (ties broken by path) and
// accumulated until the running total first reaches sizeToFree, or the set
// is exhausted. A sizeToFree of zero yields an empty plan without
// consulting the eligible set at all. When the eligible set cannot cover
// the deficit, the entire set is planned and the remainder stays unmet;
// that is a reportable condition for the caller, not an error.
func (p *Planner) Run() *Plan {
	plan := &Plan{}
	if p.sizeToFree <= 0 {
		return plan
	}

	aged := types.NewByAge(p.eligible)
	for _, e := range aged.Items() {
		if plan.bytes >= p.sizeToFree {
			break
		}
		plan.entries = append(plan.entries, e)
		plan.bytes += e.Size
	}
	return plan
}
