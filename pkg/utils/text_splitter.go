package utils

import (
	"path/filepath"
	"regexp"
	"strings"
	"unicode"
)

// SplitText cuts a long string into chunks of approximately chunkSize
// characters with an overlap that preserves context across boundaries.
// Chunk boundaries are nudged back to the nearest whitespace when one is
// close, so words are not cut in half. Character-based on purpose: the
// chunk budget tracks the index's text field, not model tokens.
func SplitText(text string, chunkSize int, overlap int) []string {
	runes := []rune(text)
	if len(runes) <= chunkSize {
		return []string{text}
	}

	if overlap < 0 {
		overlap = 0
	}
	if overlap >= chunkSize {
		overlap = chunkSize / 2
	}

	var chunks []string
	total := len(runes)
	i := 0
	for {
		end := i + chunkSize
		if end >= total {
			chunks = append(chunks, string(runes[i:total]))
			break
		}
		end = backoffToWhitespace(runes, i, end)
		chunks = append(chunks, string(runes[i:end]))

		// The next chunk restarts from the nudged end, so a boundary moved
		// back to whitespace never drops the runes after it.
		next := end - overlap
		if next <= i {
			next = end
		}
		i = next
	}
	return chunks
}

// backoffToWhitespace moves end left to the nearest whitespace, but at most
// a tenth of the chunk, so a pathological run of non-space text still splits.
func backoffToWhitespace(runes []rune, start, end int) int {
	limit := end - (end-start)/10
	for i := end; i > limit; i-- {
		if unicode.IsSpace(runes[i-1]) {
			return i
		}
	}
	return end
}

var unsafeFilenameChars = regexp.MustCompile(`[^A-Za-z0-9._-]+`)

// SanitizeFilename strips any path component and replaces characters that
// are unsafe in a stored filename.
func SanitizeFilename(name string) string {
	base := filepath.Base(strings.TrimSpace(name))
	if base == "." || base == string(filepath.Separator) {
		return "_"
	}
	return unsafeFilenameChars.ReplaceAllString(base, "_")
}
