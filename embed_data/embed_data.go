package embed_data

import _ "embed"

// JavascriptQuery holds the declaration patterns shared by every script grammar.
//
//go:embed tree-sitter/queries/javascript.scm
var JavascriptQuery []byte

// TypescriptQuery holds TypeScript-only patterns; it is appended to JavascriptQuery.
//
//go:embed tree-sitter/queries/typescript.scm
var TypescriptQuery []byte

//go:embed tree-sitter/queries/css.scm
var CssQuery []byte
