package archive

import (
	"strings"

	"github.com/bmatcuk/doublestar/v4"
)

// IgnoreMatcher reports whether a relative path should be excluded from the
// walk, consulted before an entry is emitted.
type IgnoreMatcher interface {
	Match(relPath string) bool
}

// GlobIgnoreMatcher matches relative paths against a set of doublestar glob
// patterns (e.g. "**/*.tmp", "node_modules/**").
type GlobIgnoreMatcher struct {
	patterns []string
}

// NewGlobIgnoreMatcher builds a matcher from patterns.
func NewGlobIgnoreMatcher(patterns []string) *GlobIgnoreMatcher {
	return &GlobIgnoreMatcher{patterns: patterns}
}

func (m *GlobIgnoreMatcher) Match(relPath string) bool {
	for _, p := range m.patterns {
		if ok, _ := doublestar.Match(p, relPath); ok {
			return true
		}
	}
	return false
}

// Options controls walker behavior.
type Options struct {
	FollowSymlinks    bool
	EmbedSystemFiles  bool
	SkipPermissionErrors bool
	SkipHidden        bool
	BasePath          string // prepended to the path passed to Ignore.Match only; FileEntry.RelPath and manifest paths do not include it
	Ignore            IgnoreMatcher
}

// isHidden reports whether name should be treated as hidden: names
// starting with "." except "." and "..".
func isHidden(name string) bool {
	if name == "." || name == ".." {
		return false
	}
	return strings.HasPrefix(name, ".")
}
