package rag

import (
	"context"
	"fmt"
	"strings"

	"rag-chat-be/pkg/embedding"
	"rag-chat-be/pkg/history"
	"rag-chat-be/pkg/index"
	"rag-chat-be/pkg/llm"
	"rag-chat-be/pkg/retrieval"
)

const systemTemplate = `Answer the user's questions based on the below context.
If the context doesn't contain relevant information, just say "I don't know".

<context>
%s
</context>`

// Reply is the outcome of one grounded generation call.
type Reply struct {
	Answer string
	// Sources lists the unique documents behind the retrieved context,
	// best-ranked first, with chunk hit counts.
	Sources []retrieval.DedupedResult
}

// Responder performs one retrieval-augmented generation round: embed the
// question, fetch the top chunks, inline them as context and ask the LLM.
//
// Respond is NOT safe for concurrent use when the underlying LLM provider
// holds connection state; the chat service guards it with the call mutex.
type Responder struct {
	embedder   embedding.Provider
	idx        index.VectorIndex
	provider   llm.Provider
	contextK   int
	maxSources int
}

func NewResponder(embedder embedding.Provider, idx index.VectorIndex, provider llm.Provider, contextK, maxSources int) *Responder {
	if contextK <= 0 {
		contextK = 2
	}
	if maxSources <= 0 {
		maxSources = 5
	}
	return &Responder{
		embedder:   embedder,
		idx:        idx,
		provider:   provider,
		contextK:   contextK,
		maxSources: maxSources,
	}
}

func (r *Responder) Respond(ctx context.Context, turns []history.Turn) (Reply, error) {
	query := lastUserContent(turns)

	vector, err := r.embedder.Embed(ctx, query)
	if err != nil {
		return Reply{}, fmt.Errorf("embed query: %w", err)
	}

	hits, err := r.idx.Search(ctx, vector, r.contextK)
	if err != nil {
		return Reply{}, fmt.Errorf("search index: %w", err)
	}

	messages := make([]llm.Message, 0, len(turns)+1)
	messages = append(messages, llm.Message{
		Role:    history.RoleSystem,
		Content: fmt.Sprintf(systemTemplate, contextBlock(hits)),
	})
	for _, t := range turns {
		messages = append(messages, llm.Message{Role: t.Role, Content: t.Content})
	}

	answer, err := r.provider.Chat(ctx, messages, llm.WithTemperature(0.01))
	if err != nil {
		return Reply{}, err
	}

	sources := retrieval.Dedupe(hits)
	if len(sources) > r.maxSources {
		sources = sources[:r.maxSources]
	}

	return Reply{Answer: answer, Sources: sources}, nil
}

func lastUserContent(turns []history.Turn) string {
	for i := len(turns) - 1; i >= 0; i-- {
		if turns[i].Role == history.RoleUser {
			return turns[i].Content
		}
	}
	if len(turns) > 0 {
		return turns[len(turns)-1].Content
	}
	return ""
}

func contextBlock(hits []index.Hit) string {
	parts := make([]string, 0, len(hits))
	for _, h := range hits {
		if h.Text != "" {
			parts = append(parts, h.Text)
		}
	}
	return strings.Join(parts, "\n\n")
}
