// Package scanner enumerates the regular files that culling decisions are
// made over.
//
// # Concurrency Model
//
// The scanner uses a fan-out/fan-in traversal:
//
//  1. WALKER GOROUTINES (fan-out)
//     - One goroutine spawned per directory discovered
//     - Concurrency limited by semaphore (walkerSem)
//     - Each walker: acquires semaphore → lists directory → releases → spawns child walkers
//
//  2. COLLECTOR GOROUTINE (fan-in)
//     - Single goroutine that drains resultCh into a slice
//     - Runs until resultCh is closed
//
//  3. MAIN GOROUTINE (orchestrator)
//     - Spawns the root walker, waits for walkers, closes resultCh,
//       waits for the collector
//
// The traversal is concurrent but the scan phase as a whole completes
// before any filtering, planning, or deletion begins: later stages only
// ever see the finished snapshot.
//
// # Traversal Rules
//
//   - The root itself is never yielded; traversal depth is ≥ 1.
//   - Hidden entries (name starts with ".") are skipped. A hidden directory
//     is pruned entirely: none of its descendants are visited, hidden or not.
//   - Only regular files are yielded. Directories, symlinks, devices and
//     the like are skipped silently.
//   - Size and mtime are captured once per file, at scan time. A file that
//     changes between scan and deletion is sized and ordered by its
//     scan-time metadata.
//   - Traversal and stat errors are non-fatal: they are reported on the
//     error channel and the affected entry or subtree contributes nothing
//     further.
package scanner

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/ivoronin/culldog/internal/progress"
	"github.com/ivoronin/culldog/internal/types"
)

// Scanner discovers regular, non-hidden files under a root directory using
// parallel traversal.
//
// The scanner is designed for single-use: create with New(), call Run() once.
type Scanner struct {
	// Config (immutable, set by New)
	root         string     // Canonical root directory to scan
	workers      int        // Max concurrent directory reads
	showProgress bool       // Whether to display progress
	errCh        chan error // Non-fatal errors (permission denied, etc.)

	// Runtime (initialized in Run)
	walkerWg  sync.WaitGroup        // Tracks in-flight walker goroutines
	walkerSem types.Semaphore       // Limits concurrent directory reads
	resultCh  chan *types.FileEntry // Fan-in channel: walkers → collector
	stats     *stats                // Atomic counters for progress tracking
	bar       *progress.Bar         // Progress display (thread-safe)
}

// New creates a Scanner rooted at the canonical directory root.
func New(root string, workers int, showProgress bool, errCh chan error) *Scanner {
	return &Scanner{
		root:         root,
		workers:      workers,
		showProgress: showProgress,
		errCh:        errCh,
	}
}

// stats tracks scanning progress using atomic counters so walkers can
// update them concurrently without a mutex. Reads may see a slightly
// inconsistent snapshot across counters, which is fine for display.
type stats struct {
	scannedFiles atomic.Int64 // Regular files yielded
	scannedBytes atomic.Int64 // Total bytes across yielded files
	startTime    time.Time
}

func (s *stats) String() string {
	return fmt.Sprintf("Scanned %d files (%s) in %.1fs",
		s.scannedFiles.Load(), humanize.IBytes(uint64(s.scannedBytes.Load())),
		time.Since(s.startTime).Seconds())
}

// Run executes the scan and returns every regular, non-hidden file under
// the root with its scan-time size and mtime.
//
// Coordination sequence:
//  1. Start collector goroutine (drains resultCh → results slice)
//  2. Spawn the root walker (fan-out begins)
//  3. Wait for all walkers (walkerWg.Wait)
//  4. Close resultCh to signal the collector
//  5. Wait for the collector to drain remaining items
func (s *Scanner) Run() []*types.FileEntry {
	s.walkerSem = types.NewSemaphore(s.workers)
	s.bar = progress.New(s.showProgress)
	s.stats = &stats{startTime: time.Now()}
	s.bar.Describe(s.stats)
	s.resultCh = make(chan *types.FileEntry, 1000) // Buffer smooths producer/consumer rates

	var results []*types.FileEntry
	collectorWg := sync.WaitGroup{}

	collectorWg.Add(1)
	go func() {
		for r := range s.resultCh {
			results = append(results, r)
		}
		collectorWg.Done()
	}()

	s.walkDirectory(s.root)

	s.walkerWg.Wait()  // All walkers done
	close(s.resultCh)  // Signal collector: no more items coming
	collectorWg.Wait() // Collector drained channel

	s.bar.Finish(s.stats)
	return results
}

// walkDirectory spawns a goroutine to process one directory and recursively
// spawn children.
//
// Semaphore pattern:
//   - walkerWg.Add(1) BEFORE goroutine spawn (prevents race with Wait)
//   - acquire semaphore at goroutine start (blocks if at concurrency limit)
//   - release semaphore AFTER listing but BEFORE spawning children
func (s *Scanner) walkDirectory(dir string) {
	s.walkerWg.Add(1) // Increment BEFORE spawn to prevent race with Wait()
	go func() {
		defer s.walkerWg.Done()

		s.walkerSem.Acquire()
		defer s.walkerSem.Release()

		files, subdirs, err := s.listDirectory(dir)
		if err != nil {
			s.sendError(fmt.Errorf("traversal: %w", err))
			return
		}

		for _, f := range files {
			s.resultCh <- f // May block briefly if channel buffer full
			s.stats.scannedFiles.Add(1)
			s.stats.scannedBytes.Add(f.Size)
		}
		s.bar.Describe(s.stats)

		for _, sub := range subdirs {
			s.walkDirectory(sub)
		}
	}()
}

// listDirectory reads a single directory, returning files and
// subdirectories. Uses batched ReadDir to bound memory on huge directories.
// This is the only place where directory I/O occurs, protected by walkerSem.
func (s *Scanner) listDirectory(dirPath string) (files []*types.FileEntry, subdirs []string, err error) {
	dir, err := os.Open(dirPath)
	if err != nil {
		return nil, nil, err
	}
	defer func() { _ = dir.Close() }()

	const batchSize = 1000
	for {
		entries, err := dir.ReadDir(batchSize)
		if len(entries) == 0 {
			if err != nil && err != io.EOF {
				return files, subdirs, err
			}
			break
		}

		for _, entry := range entries {
			f, sub := s.processEntry(dirPath, entry)
			if f != nil {
				files = append(files, f)
			}
			if sub != "" {
				subdirs = append(subdirs, sub)
			}
		}
	}

	return files, subdirs, nil
}

// processEntry processes a single directory entry, returning a file or a
// subdirectory path. Returns (nil, "") for entries that should be skipped:
// hidden entries, non-regular files, and files that vanished mid-scan.
func (s *Scanner) processEntry(dirPath string, entry os.DirEntry) (file *types.FileEntry, subdir string) {
	if isHidden(entry.Name()) {
		// Pruning happens here: a hidden directory is never queued, so its
		// entire subtree is skipped.
		return nil, ""
	}

	fullPath := filepath.Join(dirPath, entry.Name())

	if entry.IsDir() {
		return nil, fullPath
	}

	if !entry.Type().IsRegular() {
		return nil, ""
	}

	// Info() may trigger an additional stat call (platform-dependent).
	// A failure here usually means the file was removed between the listing
	// and the stat; report and move on.
	info, err := entry.Info()
	if err != nil {
		s.sendError(fmt.Errorf("stat %s: %w", fullPath, err))
		return nil, ""
	}

	return &types.FileEntry{Path: fullPath, Size: info.Size(), ModTime: info.ModTime()}, ""
}

// isHidden reports whether a directory entry name carries the hidden marker.
func isHidden(name string) bool {
	return strings.HasPrefix(name, ".")
}

// sendError sends an error to the errors channel if one is configured.
func (s *Scanner) sendError(err error) {
	if s.errCh != nil {
		s.errCh <- err
	}
}
