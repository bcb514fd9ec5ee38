// Package types provides shared types used across the culldog codebase.
package types

import (
	"slices"
	"strings"
	"time"
)

// FileEntry holds scan-time metadata for one regular file.
//
// Entries are immutable once created. Sizing and ordering decisions always
// use the values captured during the scan, even when the file changes on
// disk afterwards (best-effort consistency, not transactional).
type FileEntry struct {
	Path    string    // Canonical absolute path
	Size    int64     // Size in bytes at scan time
	ModTime time.Time // Modification time at scan time
}

// Sorted is an ordered, read-only collection.
// Once constructed, items are guaranteed to be ordered by the comparator.
type Sorted[T any] struct {
	items []T
}

// NewSorted creates a sorted collection from items using compare for
// ordering. Items are copied and sorted at construction time; the input
// slice is never mutated.
func NewSorted[T any](items []T, compare func(a, b T) int) Sorted[T] {
	sorted := make([]T, len(items))
	copy(sorted, items)
	slices.SortStableFunc(sorted, compare)
	return Sorted[T]{items: sorted}
}

// Items returns the sorted items.
func (s Sorted[T]) Items() []T { return s.items }

// Len returns the number of items.
func (s Sorted[T]) Len() int { return len(s.items) }

// ByAge is a collection of file entries ordered oldest-first.
type ByAge = Sorted[*FileEntry]

// NewByAge orders entries by modification time ascending. Entries with
// equal modification times are ordered by path, so repeated runs over an
// unchanged tree always produce the same ordering.
func NewByAge(entries []*FileEntry) ByAge {
	return NewSorted(entries, func(a, b *FileEntry) int {
		if c := a.ModTime.Compare(b.ModTime); c != 0 {
			return c
		}
		return strings.Compare(a.Path, b.Path)
	})
}

// Semaphore implements a counting semaphore using a buffered channel.
// It limits concurrent access to a resource by blocking when the limit is
// reached.
type Semaphore chan struct{}

// NewSemaphore creates a semaphore that allows up to n concurrent acquisitions.
func NewSemaphore(n int) Semaphore { return make(chan struct{}, n) }

// Acquire blocks until a slot is available, then claims it.
func (s Semaphore) Acquire() { s <- struct{}{} }

// Release frees a slot, unblocking one waiting Acquire call.
func (s Semaphore) Release() { <-s }
