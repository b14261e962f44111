package extract

import (
	"bytes"
	"context"
)

// Extractor pulls plain text and document metadata out of a stored file.
// Text extraction is an external concern; the core only depends on this
// seam.
type Extractor interface {
	Extract(ctx context.Context, path string) (text string, meta map[string]string, err error)
}

var (
	utf8BOM       = []byte{0xEF, 0xBB, 0xBF}
	pdfMagic      = []byte("%PDF-")
	leadingJunk   = "\x00 \t\r\n"
	pdfSniffLimit = 1024
)

// LooksLikePDF accepts content whose '%PDF-' header appears at the very
// start, tolerating a UTF-8 BOM and leading NULs/whitespace. Only the first
// kilobyte is inspected.
func LooksLikePDF(data []byte) bool {
	head := data
	if len(head) > pdfSniffLimit {
		head = head[:pdfSniffLimit]
	}
	head = bytes.TrimPrefix(head, utf8BOM)
	head = bytes.TrimLeft(head, leadingJunk)
	return bytes.HasPrefix(head, pdfMagic)
}
