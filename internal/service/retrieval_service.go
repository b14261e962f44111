package service

import (
	"context"
	"fmt"
	"time"

	gocache "github.com/patrickmn/go-cache"

	"rag-chat-be/internal/dto"
	"rag-chat-be/internal/pkg/apperrors"
	"rag-chat-be/internal/pkg/logger"
	"rag-chat-be/pkg/embedding"
	"rag-chat-be/pkg/index"
	"rag-chat-be/pkg/retrieval"
)

type IRetrievalService interface {
	// Retrieve returns up to topK unique documents for the query. topK <= 0
	// uses the configured default.
	Retrieve(ctx context.Context, query string, topK int) (dto.RetrieveResponse, error)
}

type RetrievalOptions struct {
	UniqueK   int
	Overfetch int
	CacheTTL  time.Duration
}

type retrievalService struct {
	embedder embedding.Provider
	idx      index.VectorIndex
	cache    *gocache.Cache
	log      logger.ILogger
	opts     RetrievalOptions
}

func NewRetrievalService(
	embedder embedding.Provider,
	idx index.VectorIndex,
	log logger.ILogger,
	opts RetrievalOptions,
) IRetrievalService {
	if opts.UniqueK <= 0 {
		opts.UniqueK = 5
	}
	if opts.Overfetch <= 0 {
		opts.Overfetch = 5
	}
	var cache *gocache.Cache
	if opts.CacheTTL > 0 {
		cache = gocache.New(opts.CacheTTL, 2*opts.CacheTTL)
	}
	return &retrievalService{
		embedder: embedder,
		idx:      idx,
		cache:    cache,
		log:      log,
		opts:     opts,
	}
}

func (s *retrievalService) Retrieve(ctx context.Context, query string, topK int) (dto.RetrieveResponse, error) {
	if topK <= 0 {
		topK = s.opts.UniqueK
	}

	cacheKey := fmt.Sprintf("%d:%s", topK, query)
	if s.cache != nil {
		if cached, ok := s.cache.Get(cacheKey); ok {
			return cached.(dto.RetrieveResponse), nil
		}
	}

	vector, err := s.embedder.Embed(ctx, query)
	if err != nil {
		return dto.RetrieveResponse{}, &apperrors.GenerationError{Err: fmt.Errorf("embed query: %w", err)}
	}

	// Over-fetch at the chunk level so deduplication still yields topK
	// unique documents when several chunks share a source. The multiplier
	// sizes the window for documents spanning that many chunks each.
	hits, err := s.idx.Search(ctx, vector, topK*s.opts.Overfetch)
	if err != nil {
		return dto.RetrieveResponse{}, &apperrors.GenerationError{Err: fmt.Errorf("search index: %w", err)}
	}

	deduped := retrieval.Dedupe(hits)
	// Truncation happens only after dedup so hit counts cover every chunk.
	if len(deduped) > topK {
		deduped = deduped[:topK]
	}

	res := dto.RetrieveResponse{
		Documents: make([]string, 0, len(deduped)),
		Metadatas: make([]map[string]any, 0, len(deduped)),
		Hits:      make([]int, 0, len(deduped)),
	}
	for _, d := range deduped {
		res.Documents = append(res.Documents, d.Location)
		res.Metadatas = append(res.Metadatas, d.Metadata.Any())
		res.Hits = append(res.Hits, d.HitCount)
	}

	if s.cache != nil {
		s.cache.Set(cacheKey, res, gocache.DefaultExpiration)
	}
	return res, nil
}
