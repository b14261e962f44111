package rag

import (
	"fmt"
	"path/filepath"
	"strings"

	"rag-chat-be/pkg/index/schema"
	"rag-chat-be/pkg/retrieval"
)

// RenderSources formats the deduplicated retrieval results as a markdown
// attribution block appended to the assistant answer. Returns the empty
// string when there is nothing to cite.
func RenderSources(sources []retrieval.DedupedResult) string {
	if len(sources) == 0 {
		return ""
	}

	var b strings.Builder
	b.WriteString("\n\n**Sources**:\n")
	for i, s := range sources {
		b.WriteString(fmt.Sprintf("%d. %s\n", i+1, renderSourceLine(s)))
	}
	return strings.TrimRight(b.String(), "\n")
}

func renderSourceLine(s retrieval.DedupedResult) string {
	file := filepath.Base(s.Location)

	title := metaString(s.Metadata, "title")
	if title == "" {
		title = metaString(s.Metadata, "subject")
	}
	if title == "" {
		title = strings.TrimSuffix(file, filepath.Ext(file))
	}

	parts := []string{title}
	if author := metaString(s.Metadata, "author"); author != "" {
		parts = append(parts, author)
	}
	if date := parsePDFDate(metaString(s.Metadata, "creationDate")); date != "" {
		parts = append(parts, date)
	} else if date := parsePDFDate(metaString(s.Metadata, "modDate")); date != "" {
		parts = append(parts, date)
	}
	parts = append(parts, fmt.Sprintf("`%s`", file))

	return strings.Join(parts, " — ")
}

func metaString(md schema.Metadata, key string) string {
	v, ok := md[key]
	if !ok {
		return ""
	}
	return strings.TrimSpace(v.String())
}

// parsePDFDate extracts the date portion of a PDF "D:YYYYMMDDHHmmSS..."
// timestamp. Plain "YYYY..." strings work too; anything shorter than a full
// date is ignored.
func parsePDFDate(raw string) string {
	raw = strings.TrimPrefix(raw, "D:")
	if len(raw) < 8 {
		return ""
	}
	digits := raw[:8]
	for _, r := range digits {
		if r < '0' || r > '9' {
			return ""
		}
	}
	return fmt.Sprintf("%s-%s-%s", digits[:4], digits[4:6], digits[6:8])
}
