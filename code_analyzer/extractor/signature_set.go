package extractor

import (
	"maps"
	"slices"
)

// SignatureSet collects rendered signatures for one file, dropping duplicates.
type SignatureSet struct {
	items map[string]struct{}
}

func NewSignatureSet() *SignatureSet {
	return &SignatureSet{items: make(map[string]struct{})}
}

func (s *SignatureSet) Add(signature string) {
	s.items[signature] = struct{}{}
}

func (s *SignatureSet) Len() int {
	return len(s.items)
}

// Sorted returns the unique signatures in byte-wise lexicographic order.
// The result is never nil.
func (s *SignatureSet) Sorted() []string {
	sorted := slices.Sorted(maps.Keys(s.items))
	if sorted == nil {
		return []string{}
	}
	return sorted
}
