package utils

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMarshalDocument_IndentsAndKeepsHTML(t *testing.T) {
	data, err := MarshalDocument(map[string]string{"sig": "a<b>()"})
	require.NoError(t, err)
	assert.Equal(t, "{\n  \"sig\": \"a<b>()\"\n}\n", string(data))
}

func TestWriteFileAtomic_ReplacesExistingFile(t *testing.T) {
	dir := t.TempDir()
	target := filepath.Join(dir, "talos.json")
	require.NoError(t, os.WriteFile(target, []byte("old"), 0644))

	require.NoError(t, WriteFileAtomic(target, []byte("new")))

	content, err := os.ReadFile(target)
	require.NoError(t, err)
	assert.Equal(t, "new", string(content))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1, "temporary file left behind")
	assert.Equal(t, "talos.json", entries[0].Name())
}

func TestWriteFileAtomic_CreatesMissingDirectories(t *testing.T) {
	target := filepath.Join(t.TempDir(), "reports", "nested", "out.json")

	require.NoError(t, WriteFileAtomic(target, []byte("{}")))

	content, err := os.ReadFile(target)
	require.NoError(t, err)
	assert.Equal(t, "{}", string(content))
}

func TestWriteFileAtomic_FailureKeepsPreviousFile(t *testing.T) {
	dir := t.TempDir()
	// A directory at the target path makes the final rename fail.
	target := filepath.Join(dir, "out.json")
	require.NoError(t, os.MkdirAll(filepath.Join(target, "child"), 0755))

	err := WriteFileAtomic(target, []byte("data"))
	require.Error(t, err)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.True(t, entries[0].IsDir())
}

func TestPrintJSON_Uncolored(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, PrintJSON(&buf, []byte("{\"a\": 1}\n"), "dracula", false))
	assert.Equal(t, "{\"a\": 1}\n", buf.String())
}

func TestPrintJSON_ColoredAddsEscapes(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, PrintJSON(&buf, []byte("{\"a\": 1}\n"), "dracula", true))
	assert.Contains(t, buf.String(), "\x1b[")
	assert.Contains(t, buf.String(), "\"a\"")
}
