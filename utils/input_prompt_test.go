package utils

import (
	"bufio"
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConfirmPrompt(t *testing.T) {
	tests := map[string]bool{
		"y\n":     true,
		"YES\n":   true,
		"  yes  ": true,
		"n\n":     false,
		"\n":      false,
		"":        false,
		"maybe\n": false,
	}
	for input, want := range tests {
		var out bytes.Buffer
		got, err := ConfirmPrompt(bufio.NewReader(strings.NewReader(input)), &out, "Clear cache?")
		require.NoError(t, err, input)
		assert.Equal(t, want, got, "input %q", input)
		assert.Contains(t, out.String(), "Clear cache? (y/N)")
	}
}
