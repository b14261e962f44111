package utils

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSplitTextShortInputIsSingleChunk(t *testing.T) {
	chunks := SplitText("short text", 1200, 150)
	require.Len(t, chunks, 1)
	assert.Equal(t, "short text", chunks[0])
}

func TestSplitTextChunksOverlap(t *testing.T) {
	words := strings.Repeat("lorem ipsum dolor sit amet ", 200)

	chunks := SplitText(words, 300, 50)

	require.Greater(t, len(chunks), 1)
	for _, c := range chunks {
		assert.LessOrEqual(t, len([]rune(c)), 300)
	}
	// Consecutive chunks share content through the overlap window.
	tail := chunks[0][len(chunks[0])-20:]
	assert.Contains(t, words, tail)
}

func TestSplitTextHandlesUnbrokenRuns(t *testing.T) {
	blob := strings.Repeat("x", 5000)

	chunks := SplitText(blob, 1200, 150)

	require.Greater(t, len(chunks), 1)
	assert.Equal(t, blob[:1200], chunks[0])
}

func TestSplitTextLosesNoRunesWithoutOverlap(t *testing.T) {
	words := strings.TrimSpace(strings.Repeat("alpha beta gamma delta ", 60))

	chunks := SplitText(words, 100, 0)

	// Zero overlap must partition the input exactly: whitespace backoff
	// shifts boundaries but never discards the text after them.
	require.Greater(t, len(chunks), 1)
	assert.Equal(t, words, strings.Join(chunks, ""))
}

func TestSplitTextOverlapRepeatsChunkTail(t *testing.T) {
	blob := strings.Repeat("y", 500)

	chunks := SplitText(blob, 200, 40)

	require.Greater(t, len(chunks), 1)
	for i := 1; i < len(chunks); i++ {
		prev := []rune(chunks[i-1])
		cur := []rune(chunks[i])
		assert.Equal(t, string(prev[len(prev)-40:]), string(cur[:40]))
	}
}

func TestSanitizeFilename(t *testing.T) {
	assert.Equal(t, "report_2024.pdf", SanitizeFilename("report 2024.pdf"))
	assert.Equal(t, "evil.pdf", SanitizeFilename("../../evil.pdf"))
	assert.Equal(t, "b_c.pdf", SanitizeFilename("a/b\\c.pdf"))
}
