package utils

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"golang.org/x/term"
)

// StdoutTarget selects printing instead of writing a file.
const StdoutTarget = "-"

// MarshalDocument renders v as indented JSON followed by a newline.
func MarshalDocument(v any) ([]byte, error) {
	var buf bytes.Buffer
	encoder := json.NewEncoder(&buf)
	encoder.SetEscapeHTML(false)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(v); err != nil {
		return nil, fmt.Errorf("failed to encode document: %w", err)
	}
	return buf.Bytes(), nil
}

// WriteDocument serializes v and either prints it to stdout (target "-") or
// replaces the file at target atomically. Printed JSON is highlighted with
// theme when stdout is a terminal.
func WriteDocument(v any, target string, theme string) error {
	data, err := MarshalDocument(v)
	if err != nil {
		return err
	}

	if target == StdoutTarget {
		return PrintJSON(os.Stdout, data, theme, IsTerminal(os.Stdout))
	}
	return WriteFileAtomic(target, data)
}

// PrintJSON writes data to w, highlighted when colored is true.
func PrintJSON(w io.Writer, data []byte, theme string, colored bool) error {
	if colored {
		return Highlight(w, string(data), "json", theme)
	}
	_, err := w.Write(data)
	return err
}

// IsTerminal reports whether f is attached to a terminal.
func IsTerminal(f *os.File) bool {
	return term.IsTerminal(int(f.Fd()))
}

// WriteFileAtomic writes data to a hidden temporary sibling of target and
// renames it over target. A previous file at target survives any failure.
func WriteFileAtomic(target string, data []byte) (err error) {
	dir := filepath.Dir(target)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	tmpPath := filepath.Join(dir, fmt.Sprintf(".%s.%d.%d.tmp", filepath.Base(target), os.Getpid(), time.Now().UnixMicro()))
	tmp, err := os.OpenFile(tmpPath, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0644)
	if err != nil {
		return fmt.Errorf("failed to create temporary file: %w", err)
	}
	defer func() {
		if err != nil {
			tmp.Close()
			os.Remove(tmpPath)
		}
	}()

	if _, err = tmp.Write(data); err != nil {
		return fmt.Errorf("failed to write temporary file: %w", err)
	}
	if err = tmp.Sync(); err != nil {
		return fmt.Errorf("failed to sync temporary file: %w", err)
	}
	if err = tmp.Close(); err != nil {
		return fmt.Errorf("failed to close temporary file: %w", err)
	}
	if err = os.Rename(tmpPath, target); err != nil {
		return fmt.Errorf("failed to replace %s: %w", target, err)
	}
	return nil
}
