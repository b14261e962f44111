package index

import (
	"context"

	"github.com/google/uuid"

	"rag-chat-be/pkg/index/schema"
)

// Hit is one chunk-level similarity result, best first. Several hits may
// point at the same source document.
type Hit struct {
	// Location is an opaque document reference (usually the source path).
	Location string
	// Text is the matched chunk's body.
	Text string
	// Metadata carries the chunk's stored metadata fields.
	Metadata schema.Metadata
}

// Document is a chunk ready for insertion: pre-embedded text plus metadata
// already normalized against the index schema.
type Document struct {
	ID       uuid.UUID
	Text     string
	Vector   []float32
	Metadata schema.Metadata
}

// VectorIndex abstracts the vector store. The schema is fixed once the
// collection is provisioned and enumerable through Fields; the text body,
// vector and primary-key fields are reserved and not listed.
//
// Implementations must support concurrent Search calls. AddDocuments is not
// required to be safe against concurrent writers; callers serialize writes.
type VectorIndex interface {
	Search(ctx context.Context, vector []float32, k int) ([]Hit, error)
	AddDocuments(ctx context.Context, docs []Document) error
	HasSource(ctx context.Context, source string) (bool, error)
	Fields() []schema.Field
}
