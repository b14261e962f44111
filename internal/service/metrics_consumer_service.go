package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/redis/go-redis/v9"

	"rag-chat-be/internal/dto"
	"rag-chat-be/internal/pkg/logger"
)

type IMetricsConsumerService interface {
	Consume(ctx context.Context) error
}

// metricsConsumerService aggregates per-day usage counters in redis from
// the in-process event bus.
type metricsConsumerService struct {
	pubSub         *gochannel.GoChannel
	redisClient    *redis.Client
	log            logger.ILogger
	completedTopic string
	indexedTopic   string
}

func NewMetricsConsumerService(
	pubSub *gochannel.GoChannel,
	redisClient *redis.Client,
	log logger.ILogger,
	completedTopic, indexedTopic string,
) IMetricsConsumerService {
	return &metricsConsumerService{
		pubSub:         pubSub,
		redisClient:    redisClient,
		log:            log,
		completedTopic: completedTopic,
		indexedTopic:   indexedTopic,
	}
}

func (s *metricsConsumerService) Consume(ctx context.Context) error {
	completed, err := s.pubSub.Subscribe(ctx, s.completedTopic)
	if err != nil {
		return err
	}
	indexed, err := s.pubSub.Subscribe(ctx, s.indexedTopic)
	if err != nil {
		return err
	}

	go func() {
		for msg := range completed {
			s.processCompleted(ctx, msg)
		}
	}()
	go func() {
		for msg := range indexed {
			s.processIndexed(ctx, msg)
		}
	}()

	return nil
}

func (s *metricsConsumerService) processCompleted(ctx context.Context, msg *message.Message) {
	var evt dto.ChatCompletedEvent
	if err := json.Unmarshal(msg.Payload, &evt); err != nil {
		s.log.Warn("metrics", "failed to unmarshal completion event", map[string]interface{}{
			"error": err.Error(),
		})
		msg.Ack() // Ack invalid messages to prevent infinite retry
		return
	}

	date := time.Now().UTC().Format("2006-01-02")
	pipe := s.redisClient.Pipeline()
	pipe.RPush(ctx, fmt.Sprintf("response_times:%s", date), evt.Duration)
	pipe.Incr(ctx, fmt.Sprintf("responses:%s", date))
	if _, err := pipe.Exec(ctx); err != nil {
		s.log.Warn("metrics", "failed to record chat metrics", map[string]interface{}{
			"error": err.Error(),
		})
		msg.Nack()
		return
	}
	msg.Ack()
}

func (s *metricsConsumerService) processIndexed(ctx context.Context, msg *message.Message) {
	var evt dto.DocumentIndexedEvent
	if err := json.Unmarshal(msg.Payload, &evt); err != nil {
		s.log.Warn("metrics", "failed to unmarshal indexed event", map[string]interface{}{
			"error": err.Error(),
		})
		msg.Ack()
		return
	}

	date := time.Now().UTC().Format("2006-01-02")
	if err := s.redisClient.Incr(ctx, fmt.Sprintf("documents_indexed:%s", date)).Err(); err != nil {
		s.log.Warn("metrics", "failed to record index metric", map[string]interface{}{
			"error": err.Error(),
		})
		msg.Nack()
		return
	}
	msg.Ack()
}
