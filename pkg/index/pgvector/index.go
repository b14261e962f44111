package pgvector

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/pgvector/pgvector-go"
	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"rag-chat-be/pkg/index"
	"rag-chat-be/pkg/index/schema"
)

// ragChunk is the storage model for one embedded document chunk. Metadata
// lives in a jsonb column; the declared schema is enforced at write time by
// the normalizer, not by the database.
type ragChunk struct {
	Id        uuid.UUID       `gorm:"type:uuid;primaryKey"`
	Document  string          `gorm:"type:text"`
	Embedding pgvector.Vector `gorm:"type:vector"`
	Source    string          `gorm:"type:text;index"`
	Metadata  datatypes.JSON  `gorm:"type:jsonb"`
	CreatedAt time.Time       `gorm:"autoCreateTime"`
}

func (ragChunk) TableName() string {
	return "rag_chunks"
}

// Index stores chunks in Postgres with pgvector cosine search.
type Index struct {
	db     *gorm.DB
	fields []schema.Field
}

// New provisions the extension and chunk table and returns the index. The
// vector column is dimensioned once; changing dims requires a new table.
func New(db *gorm.DB, fields []schema.Field, dims int) (*Index, error) {
	if err := db.Exec("CREATE EXTENSION IF NOT EXISTS vector").Error; err != nil {
		return nil, fmt.Errorf("create pgvector extension: %w", err)
	}

	createTable := fmt.Sprintf(`CREATE TABLE IF NOT EXISTS rag_chunks (
		id uuid PRIMARY KEY,
		document text,
		embedding vector(%d),
		source text,
		metadata jsonb,
		created_at timestamptz DEFAULT now()
	)`, dims)
	if err := db.Exec(createTable).Error; err != nil {
		return nil, fmt.Errorf("create rag_chunks table: %w", err)
	}
	if err := db.Exec("CREATE INDEX IF NOT EXISTS idx_rag_chunks_source ON rag_chunks (source)").Error; err != nil {
		return nil, fmt.Errorf("create source index: %w", err)
	}

	return &Index{db: db, fields: fields}, nil
}

func (i *Index) Fields() []schema.Field {
	return i.fields
}

func (i *Index) Search(ctx context.Context, vector []float32, k int) ([]index.Hit, error) {
	if k <= 0 {
		k = 5
	}
	var chunks []*ragChunk

	err := nearestQuery(i.db.WithContext(ctx), vector, k).Find(&chunks).Error
	if err != nil {
		return nil, fmt.Errorf("pgvector search: %w", err)
	}

	hits := make([]index.Hit, 0, len(chunks))
	for _, c := range chunks {
		hits = append(hits, index.Hit{
			Location: c.Source,
			Text:     c.Document,
			Metadata: decodeMetadata(c.Metadata),
		})
	}
	return hits, nil
}

func (i *Index) AddDocuments(ctx context.Context, docs []index.Document) error {
	if len(docs) == 0 {
		return nil
	}

	chunks := make([]*ragChunk, 0, len(docs))
	for _, d := range docs {
		raw, err := json.Marshal(d.Metadata)
		if err != nil {
			return fmt.Errorf("encode metadata: %w", err)
		}
		id := d.ID
		if id == uuid.Nil {
			id = uuid.New()
		}
		chunks = append(chunks, &ragChunk{
			Id:        id,
			Document:  d.Text,
			Embedding: pgvector.NewVector(d.Vector),
			Source:    d.Metadata["source"].String(),
			Metadata:  datatypes.JSON(raw),
		})
	}

	return i.db.WithContext(ctx).Create(chunks).Error
}

func (i *Index) HasSource(ctx context.Context, source string) (bool, error) {
	var count int64
	err := i.db.WithContext(ctx).
		Model(&ragChunk{}).
		Where("source = ?", source).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// nearestQuery ranks chunks by cosine distance to the query vector. The
// ordering must go through Clauses: gorm's Order only accepts strings and
// OrderBy clauses, and silently ignores a bare Expr.
func nearestQuery(db *gorm.DB, vector []float32, k int) *gorm.DB {
	return db.Clauses(clause.OrderBy{
		Expression: clause.Expr{
			SQL:  "embedding <=> ?",
			Vars: []interface{}{pgvector.NewVector(vector)},
		},
	}).Limit(k)
}

var _ index.VectorIndex = (*Index)(nil)

func decodeMetadata(raw datatypes.JSON) schema.Metadata {
	if len(raw) == 0 {
		return schema.Metadata{}
	}
	var m map[string]any
	if err := json.Unmarshal(raw, &m); err != nil {
		return schema.Metadata{}
	}
	return schema.MetadataFromAny(m)
}
