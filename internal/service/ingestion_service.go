package service

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/google/uuid"

	"rag-chat-be/internal/dto"
	"rag-chat-be/internal/pkg/logger"
	"rag-chat-be/pkg/embedding"
	"rag-chat-be/pkg/extract"
	"rag-chat-be/pkg/index"
	"rag-chat-be/pkg/index/schema"
	"rag-chat-be/pkg/utils"
)

type IIngestionService interface {
	// IngestUpload persists an already validated upload and indexes it.
	IngestUpload(ctx context.Context, filename string, data []byte) (dto.UploadResponse, error)

	// IngestPending indexes every not-yet-indexed document in the data
	// directory. One bad source never fails the batch.
	IngestPending(ctx context.Context) (dto.IngestReport, error)
}

type IngestionOptions struct {
	UploadDir    string
	DataDir      string
	ChunkSize    int
	ChunkOverlap int
	IndexedTopic string
}

type ingestionService struct {
	idx       index.VectorIndex
	embedder  embedding.Provider
	extractor extract.Extractor
	publisher IPublisherService
	log       logger.ILogger
	opts      IngestionOptions

	// writeMu makes index mutation single-writer. Readers are not locked
	// out; a concurrent search may observe a partially added batch.
	writeMu sync.Mutex
}

func NewIngestionService(
	idx index.VectorIndex,
	embedder embedding.Provider,
	extractor extract.Extractor,
	publisher IPublisherService,
	log logger.ILogger,
	opts IngestionOptions,
) IIngestionService {
	if opts.ChunkSize <= 0 {
		opts.ChunkSize = 1200
	}
	if opts.ChunkOverlap < 0 {
		opts.ChunkOverlap = 150
	}
	return &ingestionService{
		idx:       idx,
		embedder:  embedder,
		extractor: extractor,
		publisher: publisher,
		log:       log,
		opts:      opts,
	}
}

func (s *ingestionService) IngestUpload(ctx context.Context, filename string, data []byte) (dto.UploadResponse, error) {
	name := utils.SanitizeFilename(filename)
	if err := os.MkdirAll(s.opts.UploadDir, 0o755); err != nil {
		return dto.UploadResponse{}, fmt.Errorf("create upload dir: %w", err)
	}

	path := filepath.Join(s.opts.UploadDir, name)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return dto.UploadResponse{}, fmt.Errorf("store upload: %w", err)
	}

	chunks, err := s.indexSource(ctx, path)
	if err != nil {
		return dto.UploadResponse{}, err
	}

	s.log.Info("ingest", "upload indexed", map[string]interface{}{
		"source": name,
		"chunks": chunks,
	})
	return dto.UploadResponse{
		Message:  "File uploaded and indexed",
		Filename: name,
	}, nil
}

func (s *ingestionService) IngestPending(ctx context.Context) (dto.IngestReport, error) {
	report := dto.IngestReport{
		Indexed: []string{},
		Skipped: []string{},
		Failed:  []dto.FailedSource{},
	}

	entries, err := os.ReadDir(s.opts.DataDir)
	if err != nil {
		if os.IsNotExist(err) {
			return report, nil
		}
		return report, fmt.Errorf("read data dir: %w", err)
	}

	for _, entry := range entries {
		if entry.IsDir() || !strings.EqualFold(filepath.Ext(entry.Name()), ".pdf") {
			continue
		}
		path := filepath.Join(s.opts.DataDir, entry.Name())

		exists, err := s.idx.HasSource(ctx, path)
		if err != nil {
			report.Failed = append(report.Failed, dto.FailedSource{Source: entry.Name(), Reason: err.Error()})
			continue
		}
		if exists {
			report.Skipped = append(report.Skipped, entry.Name())
			continue
		}

		if _, err := s.indexSource(ctx, path); err != nil {
			s.log.Warn("ingest", "source failed, continuing batch", map[string]interface{}{
				"source": entry.Name(),
				"error":  err.Error(),
			})
			report.Failed = append(report.Failed, dto.FailedSource{Source: entry.Name(), Reason: err.Error()})
			continue
		}
		report.Indexed = append(report.Indexed, entry.Name())
	}

	return report, nil
}

// indexSource extracts, chunks, embeds and stores one document.
func (s *ingestionService) indexSource(ctx context.Context, path string) (int, error) {
	text, meta, err := s.extractor.Extract(ctx, path)
	if err != nil {
		return 0, fmt.Errorf("extract %s: %w", filepath.Base(path), err)
	}
	if strings.TrimSpace(text) == "" {
		return 0, fmt.Errorf("no extractable text in %s", filepath.Base(path))
	}

	raw := make(map[string]any, len(meta)+1)
	for k, v := range meta {
		raw[k] = v
	}
	raw["source"] = path
	metadata := schema.Normalize(coerceMetadata(raw), s.idx.Fields())

	chunks := utils.SplitText(text, s.opts.ChunkSize, s.opts.ChunkOverlap)
	docs := make([]index.Document, 0, len(chunks))
	for _, chunk := range chunks {
		vector, err := s.embedder.Embed(ctx, chunk)
		if err != nil {
			return 0, fmt.Errorf("embed chunk of %s: %w", filepath.Base(path), err)
		}
		docs = append(docs, index.Document{
			ID:       uuid.New(),
			Text:     chunk,
			Vector:   vector,
			Metadata: metadata,
		})
	}

	s.writeMu.Lock()
	err = s.idx.AddDocuments(ctx, docs)
	s.writeMu.Unlock()
	if err != nil {
		return 0, fmt.Errorf("index %s: %w", filepath.Base(path), err)
	}

	if s.publisher != nil && s.opts.IndexedTopic != "" {
		evt := dto.DocumentIndexedEvent{Source: path, Chunks: len(docs)}
		if err := s.publisher.Publish(ctx, s.opts.IndexedTopic, evt); err != nil {
			s.log.Warn("ingest", "failed to publish indexed event", map[string]interface{}{
				"source": path,
				"error":  err.Error(),
			})
		}
	}
	return len(docs), nil
}

// coerceMetadata tags raw extractor values so the normalizer can cast them
// against the declared schema. Extractor values arrive as strings even for
// numeric fields; the cast is total.
func coerceMetadata(raw map[string]any) schema.Metadata {
	md := make(schema.Metadata, len(raw))
	for k, v := range raw {
		md[k] = schema.FromAny(v)
	}
	return md
}
