package utils

import (
	"fmt"
	"path"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
)

// GlobSet matches slash-separated paths relative to the scan root.
// A pattern without a "/" also matches against the file's base name, so
// "*.test.ts" applies at any depth.
type GlobSet struct {
	patterns []string
	// dirPrefixes holds patterns of the form "<prefix>/**" with the suffix
	// removed; a directory matching one of them matches everything below it.
	dirPrefixes []string
}

// CompileGlobs validates patterns and builds a GlobSet. Blank patterns are ignored.
func CompileGlobs(patterns ...string) (*GlobSet, error) {
	set := &GlobSet{}
	for _, raw := range patterns {
		pattern := strings.TrimSpace(raw)
		if pattern == "" {
			continue
		}
		pattern = strings.TrimPrefix(pattern, "./")
		if !doublestar.ValidatePattern(pattern) {
			return nil, fmt.Errorf("invalid glob pattern %q: %w", raw, doublestar.ErrBadPattern)
		}
		set.patterns = append(set.patterns, pattern)
		if prefix, ok := strings.CutSuffix(pattern, "/**"); ok && prefix != "" {
			set.dirPrefixes = append(set.dirPrefixes, prefix)
		}
	}
	return set, nil
}

// Empty reports whether the set holds no patterns.
func (g *GlobSet) Empty() bool {
	return g == nil || len(g.patterns) == 0
}

// Patterns returns the compiled patterns in the order they were given.
func (g *GlobSet) Patterns() []string {
	if g == nil {
		return nil
	}
	return append([]string(nil), g.patterns...)
}

// Match reports whether relPath matches any pattern.
func (g *GlobSet) Match(relPath string) bool {
	if g == nil {
		return false
	}
	base := path.Base(relPath)
	for _, pattern := range g.patterns {
		if doublestar.MatchUnvalidated(pattern, relPath) {
			return true
		}
		if !strings.Contains(pattern, "/") && doublestar.MatchUnvalidated(pattern, base) {
			return true
		}
	}
	return false
}

// MatchDir reports whether every path below relDir is matched, which lets a
// walker prune the directory.
func (g *GlobSet) MatchDir(relDir string) bool {
	if g == nil {
		return false
	}
	for _, prefix := range g.dirPrefixes {
		if doublestar.MatchUnvalidated(prefix, relDir) {
			return true
		}
	}
	return false
}

// Merge returns a set holding the patterns of both sets.
func (g *GlobSet) Merge(other *GlobSet) *GlobSet {
	merged := &GlobSet{}
	for _, set := range []*GlobSet{g, other} {
		if set == nil {
			continue
		}
		merged.patterns = append(merged.patterns, set.patterns...)
		merged.dirPrefixes = append(merged.dirPrefixes, set.dirPrefixes...)
	}
	return merged
}
