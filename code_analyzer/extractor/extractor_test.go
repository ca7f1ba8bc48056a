package extractor

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustGrammar(t *testing.T, ext string) *Grammar {
	t.Helper()
	registry, err := DefaultRegistry()
	require.NoError(t, err)
	grammar, ok := registry.Resolve(ext)
	require.True(t, ok, "no grammar for %q", ext)
	return grammar
}

func TestExtract_Scripts(t *testing.T) {
	tests := []struct {
		name   string
		ext    string
		source string
		want   []string
	}{
		{
			name:   "class and function declarations",
			ext:    "js",
			source: "class Foo {}\nfunction bar(a, b) {}",
			want:   []string{"class Foo", "function bar(a, b)"},
		},
		{
			name:   "method inside class",
			ext:    "js",
			source: "class Foo {\n  greet(name) { return name; }\n}",
			want:   []string{"class Foo", "method greet(name)"},
		},
		{
			name:   "arrow function with parenthesized parameters",
			ext:    "js",
			source: "const add = (a, b) => a + b;",
			want:   []string{"const add = (a, b) =>"},
		},
		{
			name:   "arrow function with bare parameter",
			ext:    "js",
			source: "const inc = x => x + 1;",
			want:   []string{"const inc = x =>"},
		},
		{
			name:   "function expression",
			ext:    "js",
			source: "const f = function (x) {};",
			want:   []string{"const f = function (x)"},
		},
		{
			name:   "duplicates collapse",
			ext:    "js",
			source: "function a() {}\nfunction a() {}",
			want:   []string{"function a()"},
		},
		{
			name:   "generator declaration",
			ext:    "mjs",
			source: "function* ids(start) { yield start; }",
			want:   []string{"function ids(start)"},
		},
		{
			name:   "jsx component",
			ext:    "jsx",
			source: "const Button = (props) => <button>{props.label}</button>;",
			want:   []string{"const Button = (props) =>"},
		},
		{
			name:   "typescript parameters kept verbatim",
			ext:    "ts",
			source: "class Point {\n  constructor(x: number, y: number) {}\n}",
			want:   []string{"class Point", "method constructor(x: number, y: number)"},
		},
		{
			name:   "typescript abstract class",
			ext:    "ts",
			source: "abstract class Shape {\n  abstract area(): number;\n  abstract scale(by: number): void;\n}",
			want:   []string{"class Shape", "method area()", "method scale(by: number)"},
		},
		{
			name:   "tsx abstract method",
			ext:    "tsx",
			source: "abstract class View {\n  abstract render(props: Props): JSX.Element;\n}",
			want:   []string{"class View", "method render(props: Props)"},
		},
		{
			name:   "tsx arrow component",
			ext:    "tsx",
			source: "const App = (props: Props) => <div>{props.title}</div>;",
			want:   []string{"const App = (props: Props) =>"},
		},
		{
			name:   "no declarations",
			ext:    "js",
			source: "console.log('hello');",
			want:   []string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Extract(context.Background(), mustGrammar(t, tt.ext), []byte(tt.source))
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestExtract_Styles(t *testing.T) {
	tests := []struct {
		name   string
		source string
		want   []string
	}{
		{
			name:   "class, id and media rule",
			source: ".card { color: red; }\n#id {}\n@media screen {}",
			want:   []string{"#id", ".card", "@media screen"},
		},
		{
			name:   "media query list is one signature",
			source: "@media screen, print { a {} }",
			want:   []string{"@media screen, print", "a"},
		},
		{
			name:   "media query list with features",
			source: "@media screen and (min-width: 600px), print {}",
			want:   []string{"@media screen and (min-width: 600px), print"},
		},
		{
			name:   "compound selector",
			source: "div > p.note {}",
			want:   []string{".note", "div", "p"},
		},
		{
			name:   "custom property only",
			source: ":root { --main-color: #333; color: blue; }",
			want:   []string{"--main-color"},
		},
		{
			name:   "keyframes",
			source: "@keyframes spin { from { opacity: 0; } to { opacity: 1; } }",
			want:   []string{"@keyframes spin"},
		},
		{
			name:   "repeated selectors collapse",
			source: ".a {}\n.a:hover {}\n.a {}",
			want:   []string{".a"},
		},
	}

	grammar := mustGrammar(t, "css")
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Extract(context.Background(), grammar, []byte(tt.source))
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestExtract_EmptySource(t *testing.T) {
	for _, ext := range []string{"js", "ts", "tsx", "css"} {
		got, err := Extract(context.Background(), mustGrammar(t, ext), []byte{})
		require.NoError(t, err, ext)
		assert.NotNil(t, got, ext)
		assert.Empty(t, got, ext)
	}
}

func TestExtract_InvalidUTF8(t *testing.T) {
	_, err := Extract(context.Background(), mustGrammar(t, "js"), []byte{'f', 0xff, 0xfe, '('})
	require.Error(t, err)

	var parseErr *ParseError
	require.True(t, errors.As(err, &parseErr))
	assert.Equal(t, "javascript", parseErr.Grammar)
	assert.ErrorIs(t, err, ErrInvalidUTF8)
}

func TestExtract_Deterministic(t *testing.T) {
	source := []byte("function z() {}\nclass M {}\nconst a = () => 1;\nfunction b(x) {}")
	grammar := mustGrammar(t, "js")

	first, err := Extract(context.Background(), grammar, source)
	require.NoError(t, err)
	for i := 0; i < 10; i++ {
		again, err := Extract(context.Background(), grammar, source)
		require.NoError(t, err)
		assert.Equal(t, first, again)
	}
	assert.IsNonDecreasing(t, first)
}

func TestRegistry_ExtractFile(t *testing.T) {
	registry, err := DefaultRegistry()
	require.NoError(t, err)

	signatures, ok, err := registry.ExtractFile(context.Background(), ".CSS", []byte(".x {}"))
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, []string{".x"}, signatures)

	signatures, ok, err = registry.ExtractFile(context.Background(), "py", []byte("def f(): pass"))
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Nil(t, signatures)
}
