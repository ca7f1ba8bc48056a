package extractor

import (
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/meysamhadeli/talos/embed_data"
	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/css"
	"github.com/smacker/go-tree-sitter/javascript"
	"github.com/smacker/go-tree-sitter/typescript/tsx"
	"github.com/smacker/go-tree-sitter/typescript/typescript"
	"github.com/zeebo/xxh3"
)

// Grammar binds a tree-sitter language to its compiled query program and the
// rules that classify the query's matches.
type Grammar struct {
	Tag        string
	Extensions []string
	Language   *sitter.Language
	Query      *sitter.Query
	Rules      RuleSet

	// Fingerprint identifies the query source; it changes whenever the
	// query program does.
	Fingerprint uint64
}

// Registry maps file extensions to grammars. It is never modified after
// NewRegistry returns and is safe for concurrent use.
type Registry struct {
	grammars []*Grammar
	byExt    map[string]*Grammar
}

type grammarSpec struct {
	tag        string
	extensions []string
	language   func() *sitter.Language
	query      [][]byte
	rules      RuleSet
}

var builtinGrammars = []grammarSpec{
	{
		tag:        "javascript",
		extensions: []string{"js", "jsx", "mjs", "cjs"},
		language:   javascript.GetLanguage,
		query:      [][]byte{embed_data.JavascriptQuery},
		rules:      ScriptRules,
	},
	{
		tag:        "typescript",
		extensions: []string{"ts", "mts", "cts"},
		language:   typescript.GetLanguage,
		query:      [][]byte{embed_data.JavascriptQuery, embed_data.TypescriptQuery},
		rules:      ScriptRules,
	},
	{
		tag:        "typescript-with-jsx",
		extensions: []string{"tsx"},
		language:   tsx.GetLanguage,
		query:      [][]byte{embed_data.JavascriptQuery, embed_data.TypescriptQuery},
		rules:      ScriptRules,
	},
	{
		tag:        "css",
		extensions: []string{"css"},
		language:   css.GetLanguage,
		query:      [][]byte{embed_data.CssQuery},
		rules:      StyleRules,
	},
}

// NewRegistry compiles every built-in query program. An error here means a
// query shipped with the binary is malformed.
func NewRegistry() (*Registry, error) {
	registry := &Registry{byExt: make(map[string]*Grammar)}

	for _, spec := range builtinGrammars {
		lang := spec.language()
		source := joinQuery(spec.query)

		query, err := sitter.NewQuery(source, lang)
		if err != nil {
			return nil, fmt.Errorf("failed to compile %s query: %w", spec.tag, err)
		}

		grammar := &Grammar{
			Tag:         spec.tag,
			Extensions:  spec.extensions,
			Language:    lang,
			Query:       query,
			Rules:       spec.rules,
			Fingerprint: xxh3.Hash(source),
		}
		registry.grammars = append(registry.grammars, grammar)
		for _, ext := range spec.extensions {
			registry.byExt[ext] = grammar
		}
	}

	sort.Slice(registry.grammars, func(i, j int) bool {
		return registry.grammars[i].Tag < registry.grammars[j].Tag
	})

	return registry, nil
}

var defaultRegistry = sync.OnceValues(NewRegistry)

// DefaultRegistry returns the process-wide registry, compiling it on first use.
func DefaultRegistry() (*Registry, error) {
	return defaultRegistry()
}

// Resolve returns the grammar for a file extension. The lookup ignores case
// and an optional leading dot.
func (r *Registry) Resolve(ext string) (*Grammar, bool) {
	grammar, ok := r.byExt[NormalizeExtension(ext)]
	return grammar, ok
}

// Grammars returns the registered grammars ordered by tag.
func (r *Registry) Grammars() []*Grammar {
	return append([]*Grammar(nil), r.grammars...)
}

// NormalizeExtension lowercases ext and strips surrounding whitespace and a
// leading dot.
func NormalizeExtension(ext string) string {
	return strings.ToLower(strings.TrimPrefix(strings.TrimSpace(ext), "."))
}

func joinQuery(parts [][]byte) []byte {
	var joined []byte
	for _, part := range parts {
		joined = append(joined, part...)
		joined = append(joined, '\n')
	}
	return joined
}
