package qdrantstore

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/qdrant/go-client/qdrant"

	"rag-chat-be/pkg/index"
	"rag-chat-be/pkg/index/schema"
)

// payloadTextKey is the reserved payload field holding the chunk body.
const payloadTextKey = "document"

// Config holds Qdrant connection configuration.
type Config struct {
	// URL is the Qdrant server address (e.g., "https://example.qdrant.io:6334").
	URL string

	// Collection is the name of the collection holding the chunks.
	Collection string

	// APIKey is optional API key for authentication.
	APIKey string

	// Dims is the embedding dimensionality used when the collection has to
	// be created.
	Dims int

	Fields []schema.Field
}

// Index implements index.VectorIndex on a Qdrant collection.
type Index struct {
	client     *qdrant.Client
	collection string
	fields     []schema.Field
}

// New connects to Qdrant and provisions the collection if missing.
func New(ctx context.Context, cfg Config) (*Index, error) {
	if cfg.URL == "" {
		return nil, fmt.Errorf("qdrant url is required")
	}

	parsedURL := cfg.URL
	if !strings.HasPrefix(parsedURL, "http://") && !strings.HasPrefix(parsedURL, "https://") {
		parsedURL = "https://" + parsedURL
	}
	u, err := url.Parse(parsedURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse qdrant url: %w", err)
	}

	host := u.Hostname()
	port := 6334 // default gRPC port
	if u.Port() != "" {
		p, err := strconv.Atoi(u.Port())
		if err != nil {
			return nil, fmt.Errorf("invalid port: %w", err)
		}
		port = p
	}

	client, err := qdrant.NewClient(&qdrant.Config{
		Host:   host,
		Port:   port,
		APIKey: cfg.APIKey,
		UseTLS: u.Scheme == "https",
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create qdrant client: %w", err)
	}

	exists, err := client.CollectionExists(ctx, cfg.Collection)
	if err != nil {
		return nil, fmt.Errorf("check collection: %w", err)
	}
	if !exists {
		err = client.CreateCollection(ctx, &qdrant.CreateCollection{
			CollectionName: cfg.Collection,
			VectorsConfig: qdrant.NewVectorsConfig(&qdrant.VectorParams{
				Size:     uint64(cfg.Dims),
				Distance: qdrant.Distance_Cosine,
			}),
		})
		if err != nil {
			return nil, fmt.Errorf("create collection: %w", err)
		}
	}

	return &Index{
		client:     client,
		collection: cfg.Collection,
		fields:     cfg.Fields,
	}, nil
}

func (i *Index) Fields() []schema.Field {
	return i.fields
}

func (i *Index) Search(ctx context.Context, vector []float32, k int) ([]index.Hit, error) {
	if k <= 0 {
		k = 5
	}
	limit := uint64(k)

	points, err := i.client.Query(ctx, &qdrant.QueryPoints{
		CollectionName: i.collection,
		Query:          qdrant.NewQuery(vector...),
		Limit:          &limit,
		WithPayload:    qdrant.NewWithPayload(true),
	})
	if err != nil {
		return nil, fmt.Errorf("qdrant search failed: %w", err)
	}

	hits := make([]index.Hit, 0, len(points))
	for _, point := range points {
		hit := index.Hit{Metadata: schema.Metadata{}}
		for key, v := range point.Payload {
			if key == payloadTextKey {
				hit.Text = v.GetStringValue()
				continue
			}
			hit.Metadata[key] = schema.FromAny(extractValue(v))
		}
		hit.Location = hit.Metadata["source"].String()
		hits = append(hits, hit)
	}
	return hits, nil
}

func (i *Index) AddDocuments(ctx context.Context, docs []index.Document) error {
	if len(docs) == 0 {
		return nil
	}

	points := make([]*qdrant.PointStruct, 0, len(docs))
	for _, d := range docs {
		id := d.ID
		if id == uuid.Nil {
			id = uuid.New()
		}
		payload := map[string]any{payloadTextKey: d.Text}
		for k, v := range d.Metadata {
			payload[k] = v.Any()
		}
		points = append(points, &qdrant.PointStruct{
			Id:      qdrant.NewIDUUID(id.String()),
			Vectors: qdrant.NewVectors(d.Vector...),
			Payload: qdrant.NewValueMap(payload),
		})
	}

	_, err := i.client.Upsert(ctx, &qdrant.UpsertPoints{
		CollectionName: i.collection,
		Points:         points,
	})
	if err != nil {
		return fmt.Errorf("qdrant upsert failed: %w", err)
	}
	return nil
}

func (i *Index) HasSource(ctx context.Context, source string) (bool, error) {
	count, err := i.client.Count(ctx, &qdrant.CountPoints{
		CollectionName: i.collection,
		Filter: &qdrant.Filter{
			Must: []*qdrant.Condition{
				qdrant.NewMatch("source", source),
			},
		},
	})
	if err != nil {
		return false, fmt.Errorf("qdrant count failed: %w", err)
	}
	return count > 0, nil
}

// Close releases the underlying gRPC connection.
func (i *Index) Close() error {
	return i.client.Close()
}

// extractValue extracts a Go value from a Qdrant payload value.
func extractValue(v *qdrant.Value) any {
	if v == nil {
		return nil
	}

	switch val := v.Kind.(type) {
	case *qdrant.Value_StringValue:
		return val.StringValue
	case *qdrant.Value_IntegerValue:
		return val.IntegerValue
	case *qdrant.Value_DoubleValue:
		return val.DoubleValue
	case *qdrant.Value_BoolValue:
		return val.BoolValue
	default:
		return nil
	}
}

// Compile-time check that Index implements VectorIndex.
var _ index.VectorIndex = (*Index)(nil)
