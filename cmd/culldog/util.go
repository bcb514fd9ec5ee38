package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/dustin/go-humanize"

	"github.com/ivoronin/culldog/internal/matcher"
	"github.com/ivoronin/culldog/internal/screener"
)

// parseSize parses a human-readable size string into bytes.
// Supports formats: "100", "1K", "1MB", "1GiB", etc.
func parseSize(s string) (int64, error) {
	bytes, err := humanize.ParseBytes(s)
	if err != nil {
		return 0, err
	}
	return int64(bytes), nil
}

// canonicalizeDir resolves dir to a canonical absolute path and verifies it
// is a directory. Failures here are fatal: patterns and every deletion
// decision are anchored to this path.
func canonicalizeDir(dir string) (string, error) {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return "", fmt.Errorf("resolve %q: %w", dir, err)
	}
	resolved, err := filepath.EvalSymlinks(abs)
	if err != nil {
		return "", fmt.Errorf("resolve %q: %w", dir, err)
	}
	info, err := os.Stat(resolved)
	if err != nil {
		return "", err
	}
	if !info.IsDir() {
		return "", fmt.Errorf("%s is not a directory", resolved)
	}
	return resolved, nil
}

// compileRule builds the screener rule for one include/exclude style flag
// pair. At most one of the two patterns is set; cobra rejects the
// combination before this runs.
func compileRule(base, includePattern, excludePattern string) (screener.Rule, error) {
	switch {
	case includePattern != "":
		m, err := matcher.Compile(base, includePattern)
		if err != nil {
			return screener.Rule{}, err
		}
		return screener.Include(m), nil
	case excludePattern != "":
		m, err := matcher.Compile(base, excludePattern)
		if err != nil {
			return screener.Rule{}, err
		}
		return screener.Exclude(m), nil
	default:
		return screener.MatchAll(), nil
	}
}
