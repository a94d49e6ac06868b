package service

import (
	"context"
	"encoding/json"
	"time"

	"portfolio-intro-be/internal/constant"
	"portfolio-intro-be/internal/dto"
	"portfolio-intro-be/internal/entity"
	"portfolio-intro-be/internal/pkg/logger"
	"portfolio-intro-be/internal/repository/unitofwork"
	"portfolio-intro-be/pkg/cache"
	"portfolio-intro-be/pkg/embedding"
	"portfolio-intro-be/pkg/events"
	pktNats "portfolio-intro-be/pkg/nats"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
)

type IConsumerService interface {
	Consume(ctx context.Context) error
}

// consumerService finishes intro creations after the response has been sent:
// it warms the cache, computes the query embedding and inserts the durable
// record. Durability here is best-effort: any failure is logged and the
// message acked, never retried, and the already-sent creation response stays
// successful.
type consumerService struct {
	pubSub            *gochannel.GoChannel
	topicName         string
	uowFactory        unitofwork.RepositoryFactory
	embeddingProvider embedding.EmbeddingProvider
	fastCache         cache.Cache
	eventPublisher    *pktNats.Publisher
	sysLogger         logger.ILogger
	cacheTTL          time.Duration
}

func NewConsumerService(
	pubSub *gochannel.GoChannel,
	topicName string,
	uowFactory unitofwork.RepositoryFactory,
	embeddingProvider embedding.EmbeddingProvider,
	fastCache cache.Cache,
	eventPublisher *pktNats.Publisher,
	sysLogger logger.ILogger,
	cacheTTL time.Duration,
) IConsumerService {
	return &consumerService{
		pubSub:            pubSub,
		topicName:         topicName,
		uowFactory:        uowFactory,
		embeddingProvider: embeddingProvider,
		fastCache:         fastCache,
		eventPublisher:    eventPublisher,
		sysLogger:         sysLogger,
		cacheTTL:          cacheTTL,
	}
}

func (cs *consumerService) Consume(ctx context.Context) error {
	messages, err := cs.pubSub.Subscribe(ctx, cs.topicName)
	if err != nil {
		return err
	}

	go func() {
		for msg := range messages {
			cs.processMessage(ctx, msg)
		}
	}()

	return nil
}

func (cs *consumerService) processMessage(ctx context.Context, msg *message.Message) {
	// Every exit path acks: the commit is never retried, a lost record is an
	// accepted trade-off for the non-blocking creation response.
	defer msg.Ack()

	var payload dto.CommitIntroMessage
	if err := json.Unmarshal(msg.Payload, &payload); err != nil {
		cs.sysLogger.Error(constant.ModuleConsumer, "Failed to unmarshal commit message", map[string]interface{}{
			"error": err.Error(),
		})
		return
	}

	// Warm the slug cache first so the redirect target renders without
	// touching the store even if the insert below fails.
	getKey := constant.IntroCacheGetPrefix + payload.Slug
	if err := cs.fastCache.Set(ctx, getKey, string(payload.Intro), cs.cacheTTL); err != nil {
		cs.sysLogger.Warn(constant.ModuleConsumer, "Failed to populate intro cache", map[string]interface{}{
			"slug":  payload.Slug,
			"error": err.Error(),
		})
	}

	vector, err := cs.embeddingProvider.Generate(ctx, payload.Query)
	if err != nil {
		cs.sysLogger.Error(constant.ModuleConsumer, "Failed to embed query, intro record is lost", map[string]interface{}{
			"slug":  payload.Slug,
			"error": err.Error(),
		})
		return
	}

	record := entity.Intro{
		Slug:      payload.Slug,
		Query:     payload.Query,
		Embedding: vector,
		Intro:     payload.Intro,
		CreatedAt: time.Now(),
	}

	uow := cs.uowFactory.NewUnitOfWork(ctx)
	if err := uow.IntroRepository().Create(ctx, &record); err != nil {
		cs.sysLogger.Error(constant.ModuleConsumer, "Failed to insert intro record, intro record is lost", map[string]interface{}{
			"slug":  payload.Slug,
			"error": err.Error(),
		})
		return
	}

	// Notification is auxiliary; log and move on when the bus is down
	if cs.eventPublisher != nil {
		evt := events.BaseEvent{
			Type: constant.IntroCreatedEventType,
			Data: map[string]interface{}{
				"intro_id": record.Id,
				"slug":     record.Slug,
			},
			OccurredAt: time.Now(),
		}
		if err := cs.eventPublisher.Publish(ctx, evt); err != nil {
			cs.sysLogger.Warn(constant.ModuleConsumer, "Failed to publish INTRO_CREATED event", map[string]interface{}{
				"error": err.Error(),
			})
		}
	}

	cs.sysLogger.Info(constant.ModuleConsumer, "Intro record committed", map[string]interface{}{
		"intro_id": record.Id,
		"slug":     record.Slug,
	})
}
