package extractor

import (
	"context"
	"errors"
	"fmt"
	"unicode/utf8"

	sitter "github.com/smacker/go-tree-sitter"
)

var (
	ErrInvalidUTF8 = errors.New("source is not valid UTF-8")
	ErrNoRootNode  = errors.New("grammar produced no root node")
)

// ParseError reports that a file's source could not be turned into a syntax tree.
type ParseError struct {
	Grammar string
	Err     error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("failed to parse as %s: %v", e.Grammar, e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// Parse builds a syntax tree for source. The caller owns the returned tree and
// must Close it.
func Parse(ctx context.Context, source []byte, grammar *Grammar) (*sitter.Tree, error) {
	if !utf8.Valid(source) {
		return nil, &ParseError{Grammar: grammar.Tag, Err: ErrInvalidUTF8}
	}

	parser := sitter.NewParser()
	defer parser.Close()
	parser.SetLanguage(grammar.Language)

	tree, err := parser.ParseCtx(ctx, nil, source)
	if err != nil {
		return nil, &ParseError{Grammar: grammar.Tag, Err: err}
	}
	if tree == nil {
		return nil, &ParseError{Grammar: grammar.Tag, Err: ErrNoRootNode}
	}
	if root := tree.RootNode(); root == nil || root.IsNull() {
		tree.Close()
		return nil, &ParseError{Grammar: grammar.Tag, Err: ErrNoRootNode}
	}

	return tree, nil
}
