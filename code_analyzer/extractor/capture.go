package extractor

import (
	"strings"
	"unicode/utf8"
)

// ByteRange is a half-open [Start, End) span of source bytes.
type ByteRange struct {
	Start uint32
	End   uint32
}

// Capture is one named range inside a CaptureGroup.
type Capture struct {
	Name  string
	Range ByteRange
}

// CaptureGroup maps capture names to byte ranges for a single query match,
// preserving the order in which names were first seen.
type CaptureGroup struct {
	captures []Capture
}

// NewCaptureGroup builds a group from name/range pairs, merging repeated names.
func NewCaptureGroup(captures ...Capture) CaptureGroup {
	var group CaptureGroup
	for _, c := range captures {
		group.Add(c.Name, c.Range)
	}
	return group
}

// Add records a range for name. A name captured more than once in the same
// match keeps a single range stretching from the earliest start to the
// latest end.
func (g *CaptureGroup) Add(name string, r ByteRange) {
	for i := range g.captures {
		if g.captures[i].Name != name {
			continue
		}
		existing := &g.captures[i].Range
		if r.Start < existing.Start {
			existing.Start = r.Start
		}
		if r.End > existing.End {
			existing.End = r.End
		}
		return
	}
	g.captures = append(g.captures, Capture{Name: name, Range: r})
}

// span returns the range covering every capture in the group.
func (g CaptureGroup) span() ByteRange {
	var r ByteRange
	for i, c := range g.captures {
		if i == 0 || c.Range.Start < r.Start {
			r.Start = c.Range.Start
		}
		if c.Range.End > r.End {
			r.End = c.Range.End
		}
	}
	return r
}

// Get returns the range captured under name.
func (g CaptureGroup) Get(name string) (ByteRange, bool) {
	for _, c := range g.captures {
		if c.Name == name {
			return c.Range, true
		}
	}
	return ByteRange{}, false
}

// Has reports whether name was captured.
func (g CaptureGroup) Has(name string) bool {
	_, ok := g.Get(name)
	return ok
}

// HasAll reports whether every name was captured.
func (g CaptureGroup) HasAll(names ...string) bool {
	for _, name := range names {
		if !g.Has(name) {
			return false
		}
	}
	return true
}

// Names returns capture names in first-seen order.
func (g CaptureGroup) Names() []string {
	names := make([]string, len(g.captures))
	for i, c := range g.captures {
		names[i] = c.Name
	}
	return names
}

// Len returns the number of distinct names in the group.
func (g CaptureGroup) Len() int {
	return len(g.captures)
}

// extractText slices source by r and trims surrounding whitespace. Ranges that
// fall outside source or split a UTF-8 sequence yield "".
func extractText(source []byte, r ByteRange) string {
	start, end := int(r.Start), int(r.End)
	if start > end || end > len(source) {
		return ""
	}
	if start < len(source) && !utf8.RuneStart(source[start]) {
		return ""
	}
	if end < len(source) && !utf8.RuneStart(source[end]) {
		return ""
	}
	return strings.TrimSpace(string(source[start:end]))
}
