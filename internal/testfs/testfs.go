// Package testfs provides declarative filesystem fixtures for pipeline
// tests.
//
// Tests describe the tree they start from and the tree that must remain
// afterwards, both with the same Tree type:
//
//	given := testfs.Tree{Files: []testfs.File{
//	    {Path: "a.log", Size: 30, Age: 3 * time.Hour},
//	    {Path: "b.log", Size: 20, Age: 2 * time.Hour},
//	    {Path: "c.log", Size: 10, Age: 1 * time.Hour},
//	}}
//	h := testfs.New(t, given)
//	// ... run the pipeline against h.Root()
//	h.Assert(testfs.Tree{Files: []testfs.File{
//	    {Path: "c.log", Size: 10},
//	}})
//
// Age sets how far in the past a file's mtime lies, which is what the
// planner orders on. Parent directories are created on demand (mkdir -p
// semantics). In verification context Age is ignored; Assert compares the
// exact set of surviving regular files and their sizes.
package testfs

import (
	"io/fs"
	"os"
	"path/filepath"
	"testing"
	"time"
)

// Tree describes a filesystem state (used for both setup and verification).
type Tree struct {
	Files []File
}

// File describes one regular file relative to the harness root.
type File struct {
	Path string        // Relative path; parents are created on demand
	Size int64         // Size in bytes (content is zero bytes)
	Age  time.Duration // Mtime offset into the past (setup only)
}

// Harness creates files in a t.TempDir() and verifies what survives a run.
type Harness struct {
	t    *testing.T
	root string
}

// New creates a Harness populated with the given Tree. The temporary
// directory is cleaned up by t.TempDir() mechanics.
func New(t *testing.T, given Tree) *Harness {
	t.Helper()

	// Resolve symlinks so paths compare equal to what the pipeline sees
	// (on some platforms TempDir lives behind a symlink, e.g. /var on macOS).
	root, err := filepath.EvalSymlinks(t.TempDir())
	if err != nil {
		t.Fatalf("resolve temp dir: %v", err)
	}

	h := &Harness{t: t, root: root}
	if err := Sow(root, given); err != nil {
		t.Fatalf("failed to set up files: %v", err)
	}
	return h
}

// Root returns the canonical temporary directory root.
func (h *Harness) Root() string {
	return h.root
}

// Sow materializes the Tree under root. Each file is filled with zero
// bytes to its size and backdated by its Age relative to a single
// reference time, so relative ages are exact.
func Sow(root string, tree Tree) error {
	now := time.Now()
	for _, f := range tree.Files {
		path := filepath.Join(root, f.Path)
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return err
		}
		if err := os.WriteFile(path, make([]byte, f.Size), 0o644); err != nil {
			return err
		}
		mtime := now.Add(-f.Age)
		if err := os.Chtimes(path, mtime, mtime); err != nil {
			return err
		}
	}
	return nil
}

// Assert verifies that exactly the expected regular files remain, with the
// expected sizes. Hidden entries are included in the walk: a correct run
// never deletes them, so they must be listed in the expected Tree if they
// were sown.
func (h *Harness) Assert(expected Tree) {
	h.t.Helper()

	actual := map[string]int64{}
	err := filepath.WalkDir(h.root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.Type().IsRegular() {
			return nil
		}
		info, err := d.Info()
		if err != nil {
			return err
		}
		rel, err := filepath.Rel(h.root, path)
		if err != nil {
			return err
		}
		actual[rel] = info.Size()
		return nil
	})
	if err != nil {
		h.t.Fatalf("walk %s: %v", h.root, err)
	}

	want := map[string]int64{}
	for _, f := range expected.Files {
		want[filepath.FromSlash(f.Path)] = f.Size
	}

	for path, size := range want {
		got, ok := actual[path]
		if !ok {
			h.t.Errorf("expected file missing: %s", path)
			continue
		}
		if got != size {
			h.t.Errorf("%s: size = %d, want %d", path, got, size)
		}
	}
	for path := range actual {
		if _, ok := want[path]; !ok {
			h.t.Errorf("unexpected surviving file: %s", path)
		}
	}
}
