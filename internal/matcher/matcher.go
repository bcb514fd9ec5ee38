// Package matcher compiles glob patterns anchored to a base directory.
//
// Patterns are always interpreted relative to the directory being culled,
// not the process working directory: "logs/**/*.gz" matches files under
// <base>/logs no matter where culldog is invoked from. The `**` wildcard
// crosses directory boundaries.
package matcher

import (
	"fmt"
	"path/filepath"

	"github.com/bmatcuk/doublestar/v4"
)

// Matcher is a compiled glob predicate over canonical absolute paths.
// Immutable after Compile; safe for concurrent use.
type Matcher struct {
	pattern string // Anchored pattern, e.g. "/var/log/app/*.gz"
}

// Compile anchors pattern to the canonical base directory and validates its
// syntax. Invalid syntax is a configuration error: the caller aborts before
// any filesystem mutation.
func Compile(basePath, pattern string) (*Matcher, error) {
	anchored := filepath.ToSlash(basePath) + "/" + pattern
	if !doublestar.ValidatePattern(anchored) {
		return nil, fmt.Errorf("invalid glob pattern %q", pattern)
	}
	return &Matcher{pattern: anchored}, nil
}

// Matches reports whether the canonical absolute path matches the pattern.
func (m *Matcher) Matches(path string) bool {
	ok, err := doublestar.Match(m.pattern, filepath.ToSlash(path))
	return err == nil && ok
}

// String returns the anchored pattern, for diagnostics.
func (m *Matcher) String() string { return m.pattern }
