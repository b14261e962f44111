package extract

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"regexp"
	"strings"
)

// PDFToTextExtractor extracts text through the poppler pdftotext binary,
// with pdfinfo supplying document metadata when available. Both tools are
// optional at build time; a missing binary surfaces as an extraction error
// for the affected source only.
type PDFToTextExtractor struct {
	TextBinary string // default "pdftotext"
	InfoBinary string // default "pdfinfo"
}

func NewPDFToTextExtractor() *PDFToTextExtractor {
	return &PDFToTextExtractor{
		TextBinary: "pdftotext",
		InfoBinary: "pdfinfo",
	}
}

var collapseNewlines = regexp.MustCompile(`\n{3,}`)

func (e *PDFToTextExtractor) Extract(ctx context.Context, path string) (string, map[string]string, error) {
	var out bytes.Buffer
	cmd := exec.CommandContext(ctx, e.TextBinary, "-layout", "-enc", "UTF-8", path, "-")
	cmd.Stdout = &out
	if err := cmd.Run(); err != nil {
		return "", nil, fmt.Errorf("pdftotext %s: %w", path, err)
	}

	text := collapseNewlines.ReplaceAllString(out.String(), "\n\n")
	text = strings.TrimSpace(text)

	// Metadata is best-effort; extraction still succeeds without it.
	meta := e.info(ctx, path)

	return text, meta, nil
}

// infoKeys maps pdfinfo labels onto the metadata keys the index schema
// understands.
var infoKeys = map[string]string{
	"Title":        "title",
	"Author":       "author",
	"Subject":      "subject",
	"Creator":      "creator",
	"CreationDate": "creationDate",
	"ModDate":      "modDate",
	"Pages":        "pages",
	"Encrypted":    "encrypted",
}

func (e *PDFToTextExtractor) info(ctx context.Context, path string) map[string]string {
	meta := map[string]string{}

	var out bytes.Buffer
	cmd := exec.CommandContext(ctx, e.InfoBinary, path)
	cmd.Stdout = &out
	if err := cmd.Run(); err != nil {
		return meta
	}

	for _, line := range strings.Split(out.String(), "\n") {
		name, value, ok := strings.Cut(line, ":")
		if !ok {
			continue
		}
		key, wanted := infoKeys[strings.TrimSpace(name)]
		if !wanted {
			continue
		}
		value = strings.TrimSpace(value)
		if key == "encrypted" {
			// pdfinfo prints "yes (...)" or "no".
			value = strings.ToLower(strings.Fields(value + " no")[0])
			value = fmt.Sprintf("%t", value == "yes")
		}
		if value != "" {
			meta[key] = value
		}
	}
	return meta
}
