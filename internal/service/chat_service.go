package service

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"

	"rag-chat-be/internal/dto"
	"rag-chat-be/internal/pkg/apperrors"
	"rag-chat-be/internal/pkg/logger"
	"rag-chat-be/pkg/history"
	"rag-chat-be/pkg/rag"
)

type IChatService interface {
	// Chat enqueues a generation request and blocks until it is answered,
	// rejected or cancelled.
	Chat(ctx context.Context, sessionID, userInput string) (dto.ChatResponse, error)
	History(ctx context.Context, sessionID string) ([]history.Turn, error)
	ClearHistory(ctx context.Context, sessionID string) error
	Start()
	Shutdown(ctx context.Context) error
}

// responder is the generation seam; satisfied by *rag.Responder.
type responder interface {
	Respond(ctx context.Context, turns []history.Turn) (rag.Reply, error)
}

type ChatOptions struct {
	QueueSize         int
	Workers           int
	HistoryCharBudget int
	SystemPrompt      string
	CompletedTopic    string
}

type chatResult struct {
	answer   string
	duration float64
	err      error
}

type pendingChat struct {
	sessionID string
	userInput string
	ctx       context.Context
	// result has capacity 1 and receives exactly one value.
	result chan chatResult
}

func (p *pendingChat) resolve(res chatResult) {
	p.result <- res
}

// chatService serializes all generation work through a bounded queue and a
// single call mutex, so concurrent HTTP requests never overlap on the model.
type chatService struct {
	store     *history.Store
	responder responder
	publisher IPublisherService
	log       logger.ILogger
	opts      ChatOptions

	queue  chan *pendingChat
	stopCh chan struct{}
	closed atomic.Bool
	// callMu guards the model call itself; held only around Respond so
	// history reads and writes of other sessions proceed concurrently.
	callMu sync.Mutex
	// sessionLocks serializes processing per session, keeping each log a
	// strict user/assistant alternation even with several workers.
	sessionLocks sync.Map
	group        *errgroup.Group
}

func NewChatService(
	store *history.Store,
	resp responder,
	publisher IPublisherService,
	log logger.ILogger,
	opts ChatOptions,
) IChatService {
	if opts.QueueSize <= 0 {
		opts.QueueSize = 64
	}
	if opts.Workers <= 0 {
		opts.Workers = 1
	}
	return &chatService{
		store:     store,
		responder: resp,
		publisher: publisher,
		log:       log,
		opts:      opts,
		queue:     make(chan *pendingChat, opts.QueueSize),
		stopCh:    make(chan struct{}),
	}
}

func (s *chatService) Start() {
	s.group = &errgroup.Group{}
	for i := 0; i < s.opts.Workers; i++ {
		s.group.Go(s.worker)
	}
}

func (s *chatService) Chat(ctx context.Context, sessionID, userInput string) (dto.ChatResponse, error) {
	if s.closed.Load() {
		return dto.ChatResponse{}, apperrors.ErrCancelled
	}

	p := &pendingChat{
		sessionID: sessionID,
		userInput: userInput,
		ctx:       ctx,
		result:    make(chan chatResult, 1),
	}

	// Synchronous backpressure: a full queue rejects immediately instead
	// of blocking the connection.
	select {
	case s.queue <- p:
	default:
		return dto.ChatResponse{}, apperrors.ErrQueueFull
	}

	select {
	case res := <-p.result:
		if res.err != nil {
			return dto.ChatResponse{}, res.err
		}
		return dto.ChatResponse{Response: res.answer, Duration: res.duration}, nil
	case <-ctx.Done():
		// The worker skips entries whose context is already done.
		return dto.ChatResponse{}, apperrors.ErrCancelled
	}
}

func (s *chatService) worker() error {
	for {
		select {
		case <-s.stopCh:
			return nil
		case p := <-s.queue:
			select {
			case <-s.stopCh:
				p.resolve(chatResult{err: apperrors.ErrCancelled})
				return nil
			default:
			}
			if p.ctx.Err() != nil {
				p.resolve(chatResult{err: apperrors.ErrCancelled})
				continue
			}
			s.process(p)
		}
	}
}

func (s *chatService) sessionLock(sessionID string) *sync.Mutex {
	mu, _ := s.sessionLocks.LoadOrStore(sessionID, &sync.Mutex{})
	return mu.(*sync.Mutex)
}

func (s *chatService) process(p *pendingChat) {
	ctx := p.ctx

	mu := s.sessionLock(p.sessionID)
	mu.Lock()
	defer mu.Unlock()

	turns, err := s.store.List(ctx, p.sessionID)
	if err != nil {
		p.resolve(chatResult{err: &apperrors.GenerationError{Err: err}})
		return
	}

	// A fresh (or expired) session starts with the system prompt.
	if !history.HasSystemTurn(turns) && s.opts.SystemPrompt != "" {
		systemTurn := history.Turn{
			Role:      history.RoleSystem,
			Content:   s.opts.SystemPrompt,
			CreatedAt: time.Now().UTC(),
		}
		if err := s.store.Append(ctx, p.sessionID, systemTurn); err != nil {
			p.resolve(chatResult{err: &apperrors.GenerationError{Err: err}})
			return
		}
		turns = append([]history.Turn{systemTurn}, turns...)
	}

	userTurn := history.Turn{
		Role:      history.RoleUser,
		Content:   p.userInput,
		CreatedAt: time.Now().UTC(),
	}
	if err := s.store.Append(ctx, p.sessionID, userTurn); err != nil {
		p.resolve(chatResult{err: &apperrors.GenerationError{Err: err}})
		return
	}
	turns = append(turns, userTurn)

	window := history.Trim(turns, s.opts.HistoryCharBudget)

	s.callMu.Lock()
	start := time.Now()
	reply, err := s.responder.Respond(ctx, window)
	duration := time.Since(start).Seconds()
	s.callMu.Unlock()

	if err != nil {
		// The failed exchange leaves no assistant turn behind, so a retry
		// of the same question is clean.
		s.log.Error("chat", "generation failed", map[string]interface{}{
			"session_id": p.sessionID,
			"error":      err.Error(),
		})
		p.resolve(chatResult{err: &apperrors.GenerationError{Err: err}})
		return
	}

	answer := reply.Answer + rag.RenderSources(reply.Sources)

	assistantTurn := history.Turn{
		Role:      history.RoleAssistant,
		Content:   answer,
		CreatedAt: time.Now().UTC(),
		Duration:  &duration,
	}
	if err := s.store.Append(ctx, p.sessionID, assistantTurn); err != nil {
		s.log.Error("chat", "failed to persist assistant turn", map[string]interface{}{
			"session_id": p.sessionID,
			"error":      err.Error(),
		})
	}

	if s.publisher != nil && s.opts.CompletedTopic != "" {
		evt := dto.ChatCompletedEvent{SessionId: p.sessionID, Duration: duration}
		if err := s.publisher.Publish(ctx, s.opts.CompletedTopic, evt); err != nil {
			s.log.Warn("chat", "failed to publish completion event", map[string]interface{}{
				"session_id": p.sessionID,
				"error":      err.Error(),
			})
		}
	}

	p.resolve(chatResult{answer: answer, duration: duration})
}

// History returns the visible turn log for a session, with internal system
// turns filtered out.
func (s *chatService) History(ctx context.Context, sessionID string) ([]history.Turn, error) {
	turns, err := s.store.List(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	visible := make([]history.Turn, 0, len(turns))
	for _, t := range turns {
		if t.Role == history.RoleSystem {
			continue
		}
		visible = append(visible, t)
	}
	return visible, nil
}

func (s *chatService) ClearHistory(ctx context.Context, sessionID string) error {
	return s.store.Clear(ctx, sessionID)
}

// Shutdown stops accepting work, resolves every queued request as cancelled
// and waits for in-flight generation to finish.
func (s *chatService) Shutdown(ctx context.Context) error {
	if s.closed.Swap(true) {
		return nil
	}
	close(s.stopCh)

	done := make(chan error, 1)
	go func() {
		if s.group != nil {
			done <- s.group.Wait()
			return
		}
		done <- nil
	}()

	var err error
	select {
	case err = <-done:
	case <-ctx.Done():
		err = ctx.Err()
	}

	for {
		select {
		case p := <-s.queue:
			p.resolve(chatResult{err: apperrors.ErrCancelled})
		default:
			return err
		}
	}
}
