package utils

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleDiff = "--- old\n+++ new\n@@ -1 +1 @@\n-a.ts: function a()\n+a.ts: function a(x)\n"

func TestRenderDiff_Plain(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, RenderDiff(&buf, sampleDiff, "dracula", false))
	assert.Equal(t, sampleDiff, buf.String())
}

func TestRenderDiff_Colored(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, RenderDiff(&buf, sampleDiff, "dracula", true))

	out := buf.String()
	assert.Contains(t, out, "\x1b[91m-a.ts: function a()\x1b[0m\n")
	assert.Contains(t, out, "\x1b[92m+a.ts: function a(x)\x1b[0m\n")
	assert.Contains(t, out, "old")
}
