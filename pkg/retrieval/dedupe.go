package retrieval

import (
	"rag-chat-be/pkg/index"
	"rag-chat-be/pkg/index/schema"
)

// DedupedResult is one unique source document collapsed from chunk-level
// hits, with the number of chunks that matched it.
type DedupedResult struct {
	Location string
	Metadata schema.Metadata
	HitCount int
}

// Key returns the document identity used for deduplication: the metadata
// "source" field when present and non-empty, otherwise the raw location.
func Key(h index.Hit) string {
	if src, ok := h.Metadata["source"]; ok {
		if s := src.String(); s != "" {
			return s
		}
	}
	return h.Location
}

// Key returns the identity the result was collapsed under.
func (r DedupedResult) Key() string {
	if src, ok := r.Metadata["source"]; ok {
		if s := src.String(); s != "" {
			return s
		}
	}
	return r.Location
}

// Dedupe collapses an ordered, over-fetched chunk hit list into unique
// documents. Output order is the order of each key's first occurrence, so
// best-ranked documents stay first. Hit counts include every chunk that
// collapsed into the document, which is why callers must truncate to the
// desired unique count only after deduplication.
func Dedupe(hits []index.Hit) []DedupedResult {
	seen := make(map[string]int, len(hits))
	out := make([]DedupedResult, 0, len(hits))

	for _, h := range hits {
		key := Key(h)
		if i, ok := seen[key]; ok {
			out[i].HitCount++
			continue
		}
		seen[key] = len(out)
		out = append(out, DedupedResult{
			Location: h.Location,
			Metadata: h.Metadata,
			HitCount: 1,
		})
	}

	return out
}
