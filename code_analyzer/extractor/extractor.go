// Package extractor turns source files into sorted, de-duplicated declaration
// signatures using tree-sitter grammars and fixed query programs.
package extractor

import (
	"context"
)

// Extract parses source with grammar, runs the grammar's query and classifies
// every match. The returned signatures are unique and sorted.
func Extract(ctx context.Context, grammar *Grammar, source []byte) ([]string, error) {
	tree, err := Parse(ctx, source, grammar)
	if err != nil {
		return nil, err
	}
	defer tree.Close()

	set := NewSignatureSet()
	for _, group := range RunQuery(grammar, tree, source) {
		if sig, ok := grammar.Rules.Classify(group, source); ok {
			set.Add(sig.Render())
		}
	}

	return set.Sorted(), nil
}

// ExtractFile resolves the grammar for ext and extracts the signatures of
// source. ok is false when no grammar is registered for the extension.
func (r *Registry) ExtractFile(ctx context.Context, ext string, source []byte) (signatures []string, ok bool, err error) {
	grammar, found := r.Resolve(ext)
	if !found {
		return nil, false, nil
	}
	signatures, err = Extract(ctx, grammar, source)
	return signatures, true, err
}
