package utils

import (
	"bufio"
	"io"
	"strings"

	"github.com/alecthomas/chroma/v2/quick"
)

// Highlight writes source to w with chroma syntax highlighting for language
// ("json", "diff", ...) using the named style.
func Highlight(w io.Writer, source string, language string, theme string) error {
	return quick.Highlight(w, source, language, "terminal256", theme)
}

// RenderDiff prints a unified diff. Added and removed lines are colored
// directly; headers and hunk markers go through the chroma diff lexer.
func RenderDiff(w io.Writer, diff string, theme string, colored bool) error {
	if !colored {
		_, err := io.WriteString(w, diff)
		return err
	}

	scanner := bufio.NewScanner(strings.NewReader(diff))
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := scanner.Text()
		var err error
		switch {
		case strings.HasPrefix(line, "+++"), strings.HasPrefix(line, "---"), strings.HasPrefix(line, "@@"):
			err = Highlight(w, line+"\n", "diff", theme)
		case strings.HasPrefix(line, "+"):
			_, err = io.WriteString(w, "\x1b[92m"+line+"\x1b[0m\n")
		case strings.HasPrefix(line, "-"):
			_, err = io.WriteString(w, "\x1b[91m"+line+"\x1b[0m\n")
		default:
			_, err = io.WriteString(w, line+"\n")
		}
		if err != nil {
			return err
		}
	}
	return scanner.Err()
}
