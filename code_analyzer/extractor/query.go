package extractor

import (
	sitter "github.com/smacker/go-tree-sitter"
)

// matchKey identifies the construct a match was anchored on.
type matchKey struct {
	pattern uint16
	start   uint32
}

// RunQuery executes grammar's query over tree and returns one CaptureGroup per
// match, in the order the cursor yields them. Text predicates such as #match?
// are applied against source. Matches of one pattern that start at the same
// byte are partial repetitions of a quantified capture; only the widest is kept.
func RunQuery(grammar *Grammar, tree *sitter.Tree, source []byte) []CaptureGroup {
	cursor := sitter.NewQueryCursor()
	defer cursor.Close()
	cursor.Exec(grammar.Query, tree.RootNode())

	var groups []CaptureGroup
	seen := make(map[matchKey]int)
	for {
		match, ok := cursor.NextMatch()
		if !ok {
			break
		}
		match = cursor.FilterPredicates(match, source)
		if len(match.Captures) == 0 {
			continue
		}

		var group CaptureGroup
		for _, capture := range match.Captures {
			name := grammar.Query.CaptureNameForId(capture.Index)
			group.Add(name, ByteRange{Start: capture.Node.StartByte(), End: capture.Node.EndByte()})
		}

		span := group.span()
		key := matchKey{pattern: match.PatternIndex, start: span.Start}
		if i, ok := seen[key]; ok {
			if span.End > groups[i].span().End {
				groups[i] = group
			}
			continue
		}
		seen[key] = len(groups)
		groups = append(groups, group)
	}

	return groups
}
