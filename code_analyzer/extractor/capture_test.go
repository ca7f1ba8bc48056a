package extractor

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCaptureGroup_MergesRepeatedNames(t *testing.T) {
	var group CaptureGroup
	group.Add(CaptureAtRuleName, ByteRange{Start: 0, End: 6})
	group.Add(CaptureAtRuleName, ByteRange{Start: 7, End: 13})
	group.Add(CaptureCSSClass, ByteRange{Start: 20, End: 24})

	assert.Equal(t, 2, group.Len())
	assert.Equal(t, []string{CaptureAtRuleName, CaptureCSSClass}, group.Names())

	r, ok := group.Get(CaptureAtRuleName)
	assert.True(t, ok)
	assert.Equal(t, ByteRange{Start: 0, End: 13}, r)

	assert.Equal(t, "@media screen", extractText([]byte("@media screen {}"), r))
}

func TestCaptureGroup_MergeIsOrderIndependent(t *testing.T) {
	a := NewCaptureGroup(
		Capture{Name: "x", Range: ByteRange{Start: 7, End: 13}},
		Capture{Name: "x", Range: ByteRange{Start: 0, End: 6}},
	)
	b := NewCaptureGroup(
		Capture{Name: "x", Range: ByteRange{Start: 0, End: 6}},
		Capture{Name: "x", Range: ByteRange{Start: 7, End: 13}},
	)
	ra, _ := a.Get("x")
	rb, _ := b.Get("x")
	assert.Equal(t, ra, rb)
}

func TestCaptureGroup_HasAll(t *testing.T) {
	group := NewCaptureGroup(
		Capture{Name: CaptureVarName, Range: ByteRange{End: 1}},
		Capture{Name: CaptureVarParams, Range: ByteRange{End: 1}},
	)

	assert.True(t, group.HasAll(CaptureVarName, CaptureVarParams))
	assert.False(t, group.HasAll(CaptureVarName, CaptureIsArrow))
	assert.True(t, group.HasAll())
	assert.False(t, group.Has(CaptureClassName))
}

func TestExtractText(t *testing.T) {
	source := []byte("  café () ")

	tests := []struct {
		name string
		r    ByteRange
		want string
	}{
		{"trims whitespace", ByteRange{Start: 0, End: 7}, "café"},
		{"whole source", ByteRange{Start: 0, End: uint32(len(source))}, "café ()"},
		{"empty range", ByteRange{Start: 3, End: 3}, ""},
		{"end past source", ByteRange{Start: 0, End: 100}, ""},
		{"start after end", ByteRange{Start: 5, End: 2}, ""},
		{"splits rune at end", ByteRange{Start: 2, End: 6}, ""},
		{"splits rune at start", ByteRange{Start: 6, End: 7}, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, extractText(source, tt.r))
		})
	}
}
