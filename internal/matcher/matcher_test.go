package matcher

import (
	"testing"
)

// =============================================================================
// Section 1: Compilation
// =============================================================================

// TestCompileValidPatterns tests that well-formed globs compile.
func TestCompileValidPatterns(t *testing.T) {
	patterns := []string{
		"*.log",
		"logs/*.gz",
		"**/*.gz",
		"file?.txt",
		"[abc].txt",
		"*",
	}

	for _, p := range patterns {
		t.Run(p, func(t *testing.T) {
			if _, err := Compile("/base", p); err != nil {
				t.Errorf("Compile(%q) unexpected error: %v", p, err)
			}
		})
	}
}

// TestCompileInvalidPattern tests that malformed glob syntax is rejected at
// compile time, before any scanning happens.
func TestCompileInvalidPattern(t *testing.T) {
	if _, err := Compile("/base", "[invalid"); err == nil {
		t.Error("Compile(\"[invalid\") expected error, got nil")
	}
}

// =============================================================================
// Section 2: Matching Semantics
// =============================================================================

// TestMatchesAnchoredToBase verifies patterns are relative to the base
// directory, not the working directory.
func TestMatchesAnchoredToBase(t *testing.T) {
	m, err := Compile("/var/log/app", "*.gz")
	if err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		path string
		want bool
	}{
		{"/var/log/app/a.gz", true},
		{"/var/log/app/a.txt", false},
		{"/var/log/other/a.gz", false},   // Different base
		{"/var/log/app/sub/a.gz", false}, // "*" doesn't cross separators
	}

	for _, tt := range tests {
		if got := m.Matches(tt.path); got != tt.want {
			t.Errorf("Matches(%q) = %v, want %v", tt.path, got, tt.want)
		}
	}
}

// TestMatchesDoublestar verifies "**" crosses directory boundaries.
func TestMatchesDoublestar(t *testing.T) {
	m, err := Compile("/data", "**/*.bak")
	if err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		path string
		want bool
	}{
		{"/data/a.bak", true},
		{"/data/x/a.bak", true},
		{"/data/x/y/z/a.bak", true},
		{"/data/a.txt", false},
		{"/other/a.bak", false},
	}

	for _, tt := range tests {
		if got := m.Matches(tt.path); got != tt.want {
			t.Errorf("Matches(%q) = %v, want %v", tt.path, got, tt.want)
		}
	}
}

// TestMatchesSubdirectoryPattern verifies a path-qualified pattern only
// matches inside the named subdirectory.
func TestMatchesSubdirectoryPattern(t *testing.T) {
	m, err := Compile("/data", "archive/*.tar")
	if err != nil {
		t.Fatal(err)
	}

	if !m.Matches("/data/archive/old.tar") {
		t.Error("expected match for /data/archive/old.tar")
	}
	if m.Matches("/data/old.tar") {
		t.Error("unexpected match for /data/old.tar")
	}
}
