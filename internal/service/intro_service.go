package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"portfolio-intro-be/internal/constant"
	"portfolio-intro-be/internal/dto"
	"portfolio-intro-be/internal/pkg/logger"
	"portfolio-intro-be/internal/pkg/serverutils"
	"portfolio-intro-be/internal/repository/specification"
	"portfolio-intro-be/internal/repository/unitofwork"
	"portfolio-intro-be/pkg/background"
	"portfolio-intro-be/pkg/cache"
	"portfolio-intro-be/pkg/embedding"
	"portfolio-intro-be/pkg/intro"
	"portfolio-intro-be/pkg/llm"
	"portfolio-intro-be/pkg/ratelimit"
)

type IIntroService interface {
	GetBySlug(ctx context.Context, slug string) (*dto.IntroPayload, error)
	QueryBySimilarity(ctx context.Context, query string) (*dto.QueryIntroResponse, error)
	CreateIntro(ctx context.Context, callerIP string, request *dto.CreateIntroRequest) (*dto.CreateIntroResponse, error)
}

type IntroServiceConfig struct {
	SimilarityThreshold float64
	CacheTTL            time.Duration
	RateLimitKey        string
	RateLimitPerCaller  bool
}

type introService struct {
	uowFactory        unitofwork.RepositoryFactory
	fastCache         cache.Cache
	limiter           ratelimit.Limiter
	embeddingProvider embedding.EmbeddingProvider
	llmProvider       llm.LLMProvider
	promptBuilder     *intro.PromptBuilder
	publisherService  IPublisherService
	registry          *background.Registry
	sysLogger         logger.ILogger
	cfg               IntroServiceConfig
}

func NewIntroService(
	uowFactory unitofwork.RepositoryFactory,
	fastCache cache.Cache,
	limiter ratelimit.Limiter,
	embeddingProvider embedding.EmbeddingProvider,
	llmProvider llm.LLMProvider,
	promptBuilder *intro.PromptBuilder,
	publisherService IPublisherService,
	registry *background.Registry,
	sysLogger logger.ILogger,
	cfg IntroServiceConfig,
) IIntroService {
	return &introService{
		uowFactory:        uowFactory,
		fastCache:         fastCache,
		limiter:           limiter,
		embeddingProvider: embeddingProvider,
		llmProvider:       llmProvider,
		promptBuilder:     promptBuilder,
		publisherService:  publisherService,
		registry:          registry,
		sysLogger:         sysLogger,
		cfg:               cfg,
	}
}

// GetBySlug resolves a slug to its stored intro payload, cache first.
// A cached value that fails payload validation counts as a miss; a stored
// value that fails validation is an internal error, because the store is
// the source of truth.
func (s *introService) GetBySlug(ctx context.Context, slug string) (*dto.IntroPayload, error) {
	cacheKey := constant.IntroCacheGetPrefix + slug

	if raw, ok := s.fastCache.Get(ctx, cacheKey); ok {
		payload, err := dto.ParseIntroPayload([]byte(raw))
		if err == nil {
			return payload, nil
		}
		s.sysLogger.Warn(constant.ModuleIntro, "Discarding invalid cached intro", map[string]interface{}{
			"slug":  slug,
			"error": err.Error(),
		})
	}

	uow := s.uowFactory.NewUnitOfWork(ctx)
	record, err := uow.IntroRepository().FindOne(ctx,
		specification.BySlug{Slug: slug},
		specification.OrderBy{Field: "id"},
	)
	if err != nil {
		s.sysLogger.Error(constant.ModuleIntro, "Failed to look up intro by slug", map[string]interface{}{
			"slug":  slug,
			"error": err.Error(),
		})
		return nil, serverutils.NewInternalError("failed to load introduction")
	}
	if record == nil {
		return nil, serverutils.NewNotFoundError("introduction not found")
	}

	payload, err := dto.ParseIntroPayload(record.Intro)
	if err != nil {
		s.sysLogger.Error(constant.ModuleIntro, "Stored intro payload is invalid", map[string]interface{}{
			"intro_id": record.Id,
			"slug":     slug,
			"error":    err.Error(),
		})
		return nil, serverutils.NewInternalError("stored introduction is invalid")
	}

	s.cacheAsync(cacheKey, string(record.Intro))

	return payload, nil
}

// QueryBySimilarity maps a free-text query to the slug of the nearest stored
// intro, returning NotFound when nothing clears the similarity threshold.
func (s *introService) QueryBySimilarity(ctx context.Context, query string) (*dto.QueryIntroResponse, error) {
	cacheKey := constant.IntroCacheQueryPrefix + query

	if raw, ok := s.fastCache.Get(ctx, cacheKey); ok {
		var cached dto.QueryIntroResponse
		if err := json.Unmarshal([]byte(raw), &cached); err == nil && cached.Slug != "" {
			return &cached, nil
		}
		s.sysLogger.Warn(constant.ModuleIntro, "Discarding invalid cached query result", map[string]interface{}{
			"query": query,
		})
	}

	vector, err := s.embeddingProvider.Generate(ctx, query)
	if err != nil {
		s.sysLogger.Error(constant.ModuleIntro, "Failed to embed query", map[string]interface{}{
			"error": err.Error(),
		})
		return nil, serverutils.NewInternalError("failed to process query")
	}

	uow := s.uowFactory.NewUnitOfWork(ctx)
	scored, err := uow.IntroRepository().SearchNearest(ctx, vector, s.cfg.SimilarityThreshold)
	if err != nil {
		s.sysLogger.Error(constant.ModuleIntro, "Similarity search failed", map[string]interface{}{
			"error": err.Error(),
		})
		return nil, serverutils.NewInternalError("failed to process query")
	}
	if scored == nil {
		return nil, serverutils.NewNotFoundError("no matching introduction found")
	}

	response := &dto.QueryIntroResponse{Slug: scored.Intro.Slug}

	if encoded, err := json.Marshal(response); err == nil {
		s.cacheAsync(cacheKey, string(encoded))
	}

	return response, nil
}

// CreateIntro generates a fresh tailored intro. The durable commit (cache
// write, embedding, insert) happens after the response through the publisher,
// so callers never wait on the store.
func (s *introService) CreateIntro(ctx context.Context, callerIP string, request *dto.CreateIntroRequest) (*dto.CreateIntroResponse, error) {
	limitKey := s.cfg.RateLimitKey
	if s.cfg.RateLimitPerCaller && callerIP != "" {
		limitKey = limitKey + ":" + callerIP
	}

	allowed, err := s.limiter.Consume(ctx, limitKey)
	if err != nil {
		s.sysLogger.Error(constant.ModuleIntro, "Rate limiter backend failed", map[string]interface{}{
			"error": err.Error(),
		})
		return nil, serverutils.NewInternalError("failed to create introduction")
	}
	if !allowed {
		return nil, serverutils.NewRateLimitError("too many requests, try again shortly")
	}

	messages := s.promptBuilder.Build(request.Query)
	rawAnswer, err := s.llmProvider.Chat(ctx, messages)
	if err != nil {
		s.sysLogger.Error(constant.ModuleIntro, "Generation failed", map[string]interface{}{
			"error": err.Error(),
		})
		return nil, serverutils.NewInternalError("failed to create introduction")
	}

	result, err := intro.ParseGenerationResult(rawAnswer)
	if err != nil {
		s.sysLogger.Error(constant.ModuleIntro, "Generation output unparseable", map[string]interface{}{
			"error": err.Error(),
		})
		return nil, serverutils.NewInternalError("failed to create introduction")
	}

	payload := dto.IntroPayload{Text: result.Text}
	encodedPayload, err := json.Marshal(&payload)
	if err != nil {
		return nil, serverutils.NewInternalError("failed to create introduction")
	}

	commitMsg := dto.CommitIntroMessage{
		Slug:  result.Slug,
		Query: request.Query,
		Intro: encodedPayload,
	}
	encodedCommit, err := json.Marshal(commitMsg)
	if err != nil {
		return nil, serverutils.NewInternalError("failed to create introduction")
	}

	if err := s.publisherService.Publish(ctx, encodedCommit); err != nil {
		// The caller still gets the intro; only durability is lost.
		s.sysLogger.Error(constant.ModuleIntro, "Failed to publish intro commit", map[string]interface{}{
			"slug":  result.Slug,
			"error": err.Error(),
		})
	}

	return &dto.CreateIntroResponse{
		Slug:  result.Slug,
		Intro: payload,
	}, nil
}

// cacheAsync writes through the background registry so cache latency never
// shows up in a read path. The request context may be gone by the time the
// write runs, hence the fresh timeout context.
func (s *introService) cacheAsync(key string, value string) {
	s.registry.Go(fmt.Sprintf("cache %s", key), func() {
		cacheCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		if err := s.fastCache.Set(cacheCtx, key, value, s.cfg.CacheTTL); err != nil {
			s.sysLogger.Warn(constant.ModuleIntro, "Background cache write failed", map[string]interface{}{
				"key":   key,
				"error": err.Error(),
			})
		}
	})
}
