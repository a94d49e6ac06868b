package service

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"portfolio-intro-be/internal/dto"
	"portfolio-intro-be/internal/entity"
	"portfolio-intro-be/internal/pkg/serverutils"
	"portfolio-intro-be/internal/repository/contract"
	"portfolio-intro-be/internal/repository/specification"
	"portfolio-intro-be/internal/repository/unitofwork"
	"portfolio-intro-be/pkg/background"
	"portfolio-intro-be/pkg/intro"
	"portfolio-intro-be/pkg/llm"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/stretchr/testify/assert"
)

// ---- fakes ----

type nopLogger struct{}

func (nopLogger) Debug(string, string, map[string]interface{}) {}
func (nopLogger) Info(string, string, map[string]interface{})  {}
func (nopLogger) Warn(string, string, map[string]interface{})  {}
func (nopLogger) Error(string, string, map[string]interface{}) {}
func (nopLogger) Sync() error                                  { return nil }

type fakeRepo struct {
	mu sync.Mutex

	created     []*entity.Intro
	createDelay time.Duration

	findOneResult *entity.Intro
	findOneErr    error
	findOneCalls  int

	searchResult      *contract.ScoredIntro
	searchErr         error
	lastMinSimilarity float64
}

func (r *fakeRepo) Create(ctx context.Context, rec *entity.Intro) error {
	if r.createDelay > 0 {
		time.Sleep(r.createDelay)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	rec.Id = int64(len(r.created) + 1)
	r.created = append(r.created, rec)
	return nil
}

func (r *fakeRepo) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.Intro, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.findOneCalls++
	return r.findOneResult, r.findOneErr
}

func (r *fakeRepo) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.Intro, error) {
	return nil, nil
}

func (r *fakeRepo) Count(ctx context.Context, specs ...specification.Specification) (int64, error) {
	return 0, nil
}

func (r *fakeRepo) SearchNearest(ctx context.Context, embedding []float32, minSimilarity float64) (*contract.ScoredIntro, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.lastMinSimilarity = minSimilarity
	return r.searchResult, r.searchErr
}

func (r *fakeRepo) createdCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.created)
}

type fakeUow struct{ repo *fakeRepo }

func (u *fakeUow) Begin(ctx context.Context) error                { return nil }
func (u *fakeUow) Commit() error                                  { return nil }
func (u *fakeUow) Rollback() error                                { return nil }
func (u *fakeUow) IntroRepository() contract.IntroRepository      { return u.repo }

type fakeFactory struct{ repo *fakeRepo }

func (f *fakeFactory) NewUnitOfWork(ctx context.Context) unitofwork.UnitOfWork {
	return &fakeUow{repo: f.repo}
}

type fakeCache struct {
	mu     sync.Mutex
	values map[string]string
	sets   int
}

func newFakeCache() *fakeCache {
	return &fakeCache{values: make(map[string]string)}
}

func (c *fakeCache) Get(ctx context.Context, key string) (string, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	v, ok := c.values[key]
	return v, ok
}

func (c *fakeCache) Set(ctx context.Context, key string, value string, ttl time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.values[key] = value
	c.sets++
	return nil
}

func (c *fakeCache) get(key string) (string, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	v, ok := c.values[key]
	return v, ok
}

type fakeLimiter struct {
	allowed bool
	err     error
	calls   int
	lastKey string
}

func (l *fakeLimiter) Consume(ctx context.Context, key string) (bool, error) {
	l.calls++
	l.lastKey = key
	return l.allowed, l.err
}

type fakeEmbedder struct {
	vector []float32
	err    error
	calls  int
}

func (e *fakeEmbedder) Generate(ctx context.Context, text string) ([]float32, error) {
	e.calls++
	return e.vector, e.err
}

type fakeLLM struct {
	response string
	err      error
	calls    int
}

func (f *fakeLLM) Chat(ctx context.Context, history []llm.Message, options ...llm.Option) (string, error) {
	f.calls++
	return f.response, f.err
}

func (f *fakeLLM) Generate(ctx context.Context, prompt string, options ...llm.Option) (string, error) {
	return f.Chat(ctx, nil)
}

// ---- harness ----

type harness struct {
	svc      IIntroService
	repo     *fakeRepo
	cache    *fakeCache
	limiter  *fakeLimiter
	embedder *fakeEmbedder
	llm      *fakeLLM
	registry *background.Registry
	pubSub   *gochannel.GoChannel
}

func newHarness(t *testing.T) *harness {
	t.Helper()

	repo := &fakeRepo{}
	fc := newFakeCache()
	limiter := &fakeLimiter{allowed: true}
	embedder := &fakeEmbedder{vector: []float32{0.1, 0.2, 0.3}}
	fllm := &fakeLLM{response: `{"slug": "go-expert", "text": "An introduction about Go."}`}
	registry := background.NewRegistry(nopLogger{})
	factory := &fakeFactory{repo: repo}

	pubSub := gochannel.NewGoChannel(gochannel.Config{}, watermill.NopLogger{})
	t.Cleanup(func() { pubSub.Close() })

	publisher := NewPublisherService("COMMIT_INTRO", pubSub)
	consumer := NewConsumerService(pubSub, "COMMIT_INTRO", factory, embedder, fc, nil, nopLogger{}, time.Hour)
	if err := consumer.Consume(context.Background()); err != nil {
		t.Fatalf("start consumer: %v", err)
	}

	promptBuilder, _ := intro.NewPromptBuilder("Test Owner", "does-not-exist.txt")

	svc := NewIntroService(
		factory,
		fc,
		limiter,
		embedder,
		fllm,
		promptBuilder,
		publisher,
		registry,
		nopLogger{},
		IntroServiceConfig{
			SimilarityThreshold: 0.5,
			CacheTTL:            time.Hour,
			RateLimitKey:        "intro.create",
		},
	)

	return &harness{
		svc:      svc,
		repo:     repo,
		cache:    fc,
		limiter:  limiter,
		embedder: embedder,
		llm:      fllm,
		registry: registry,
		pubSub:   pubSub,
	}
}

func assertAppErrorStatus(t *testing.T, err error, status int) {
	t.Helper()
	var appErr *serverutils.AppError
	if assert.ErrorAs(t, err, &appErr) {
		assert.Equal(t, status, appErr.Status)
	}
}

// ---- GetBySlug ----

func TestGetBySlugServesWarmCacheWithoutStore(t *testing.T) {
	h := newHarness(t)
	h.cache.Set(context.Background(), "get:go-expert", `{"text": "cached intro"}`, time.Hour)

	payload, err := h.svc.GetBySlug(context.Background(), "go-expert")

	assert.NoError(t, err)
	assert.Equal(t, "cached intro", payload.Text)
	assert.Equal(t, 0, h.repo.findOneCalls)
}

func TestGetBySlugColdAndWarmAgree(t *testing.T) {
	h := newHarness(t)
	h.repo.findOneResult = &entity.Intro{
		Id:    1,
		Slug:  "go-expert",
		Intro: json.RawMessage(`{"text": "stored intro", "tone": "warm"}`),
	}

	cold, err := h.svc.GetBySlug(context.Background(), "go-expert")
	assert.NoError(t, err)
	assert.Equal(t, 1, h.repo.findOneCalls)

	// Wait for the async cache write before the warm read
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	assert.NoError(t, h.registry.Wait(ctx))

	warm, err := h.svc.GetBySlug(context.Background(), "go-expert")
	assert.NoError(t, err)
	assert.Equal(t, 1, h.repo.findOneCalls, "warm read must not hit the store")
	assert.Equal(t, cold.Text, warm.Text)
	assert.Equal(t, cold.Extra, warm.Extra)
}

func TestGetBySlugTreatsCorruptedCacheAsMiss(t *testing.T) {
	h := newHarness(t)
	h.cache.Set(context.Background(), "get:go-expert", `{"no_text_here": true}`, time.Hour)
	h.repo.findOneResult = &entity.Intro{
		Id:    1,
		Slug:  "go-expert",
		Intro: json.RawMessage(`{"text": "stored intro"}`),
	}

	payload, err := h.svc.GetBySlug(context.Background(), "go-expert")

	assert.NoError(t, err)
	assert.Equal(t, "stored intro", payload.Text)
	assert.Equal(t, 1, h.repo.findOneCalls)
}

func TestGetBySlugCorruptedStoreIsInternal(t *testing.T) {
	h := newHarness(t)
	h.repo.findOneResult = &entity.Intro{
		Id:    1,
		Slug:  "go-expert",
		Intro: json.RawMessage(`not json at all`),
	}

	_, err := h.svc.GetBySlug(context.Background(), "go-expert")

	assertAppErrorStatus(t, err, 500)
}

func TestGetBySlugUnknownSlugIsNotFound(t *testing.T) {
	h := newHarness(t)

	_, err := h.svc.GetBySlug(context.Background(), "nope")

	assertAppErrorStatus(t, err, 404)
}

// ---- QueryBySimilarity ----

func TestQueryPassesConfiguredThreshold(t *testing.T) {
	h := newHarness(t)
	h.repo.searchResult = &contract.ScoredIntro{
		Intro:      &entity.Intro{Id: 1, Slug: "go-expert"},
		Similarity: 0.91,
	}

	res, err := h.svc.QueryBySimilarity(context.Background(), "tell me about go")

	assert.NoError(t, err)
	assert.Equal(t, "go-expert", res.Slug)
	assert.Equal(t, 0.5, h.repo.lastMinSimilarity)
}

func TestQueryNoMatchIsNotFound(t *testing.T) {
	h := newHarness(t)

	_, err := h.svc.QueryBySimilarity(context.Background(), "something unrelated")

	assertAppErrorStatus(t, err, 404)
}

func TestQueryCachesResultForRepeatCalls(t *testing.T) {
	h := newHarness(t)
	h.repo.searchResult = &contract.ScoredIntro{
		Intro:      &entity.Intro{Id: 1, Slug: "go-expert"},
		Similarity: 0.91,
	}

	first, err := h.svc.QueryBySimilarity(context.Background(), "tell me about go")
	assert.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	assert.NoError(t, h.registry.Wait(ctx))

	embedCallsAfterFirst := h.embedder.calls
	second, err := h.svc.QueryBySimilarity(context.Background(), "tell me about go")
	assert.NoError(t, err)
	assert.Equal(t, first.Slug, second.Slug)
	assert.Equal(t, embedCallsAfterFirst, h.embedder.calls, "cached query must not re-embed")
}

func TestQueryEmbeddingFailureIsInternal(t *testing.T) {
	h := newHarness(t)
	h.embedder.err = errors.New("provider down")

	_, err := h.svc.QueryBySimilarity(context.Background(), "tell me about go")

	assertAppErrorStatus(t, err, 500)
}

// ---- CreateIntro ----

func TestCreateIntroEndToEnd(t *testing.T) {
	h := newHarness(t)

	res, err := h.svc.CreateIntro(context.Background(), "203.0.113.9", &dto.CreateIntroRequest{Query: "for a backend role"})

	assert.NoError(t, err)
	assert.Equal(t, "go-expert", res.Slug)
	assert.Equal(t, "An introduction about Go.", res.Intro.Text)
	assert.Equal(t, "intro.create", h.limiter.lastKey)

	// Commit is asynchronous: record insert and cache warm both land eventually
	assert.Eventually(t, func() bool {
		_, cached := h.cache.get("get:go-expert")
		return h.repo.createdCount() == 1 && cached
	}, 2*time.Second, 10*time.Millisecond)

	h.repo.mu.Lock()
	rec := h.repo.created[0]
	h.repo.mu.Unlock()
	assert.Equal(t, "go-expert", rec.Slug)
	assert.Equal(t, "for a backend role", rec.Query)
	assert.Equal(t, []float32{0.1, 0.2, 0.3}, rec.Embedding)

	// The committed record is immediately addressable
	payload, err := h.svc.GetBySlug(context.Background(), "go-expert")
	assert.NoError(t, err)
	assert.Equal(t, "An introduction about Go.", payload.Text)
	assert.Equal(t, 0, h.repo.findOneCalls, "served from the warmed cache")
}

func TestCreateIntroRateLimitedWritesNothing(t *testing.T) {
	h := newHarness(t)
	h.limiter.allowed = false

	_, err := h.svc.CreateIntro(context.Background(), "", &dto.CreateIntroRequest{Query: "again"})

	assertAppErrorStatus(t, err, 429)
	assert.Equal(t, 0, h.llm.calls, "generation must not run after a limit rejection")

	time.Sleep(50 * time.Millisecond)
	assert.Equal(t, 0, h.repo.createdCount())
	assert.Equal(t, 0, h.cache.sets)
}

func TestCreateIntroLimiterBackendFailureIsInternal(t *testing.T) {
	h := newHarness(t)
	h.limiter.err = errors.New("redis gone")

	_, err := h.svc.CreateIntro(context.Background(), "", &dto.CreateIntroRequest{Query: "hello"})

	assertAppErrorStatus(t, err, 500)
	assert.Equal(t, 0, h.llm.calls)
}

func TestCreateIntroUnparseableGenerationIsInternal(t *testing.T) {
	h := newHarness(t)
	h.llm.response = "sorry, I can only answer in prose"

	_, err := h.svc.CreateIntro(context.Background(), "", &dto.CreateIntroRequest{Query: "hello"})

	assertAppErrorStatus(t, err, 500)
}

func TestCreateIntroResponseNotBlockedByStore(t *testing.T) {
	h := newHarness(t)
	h.repo.createDelay = 300 * time.Millisecond

	start := time.Now()
	_, err := h.svc.CreateIntro(context.Background(), "", &dto.CreateIntroRequest{Query: "quick"})
	elapsed := time.Since(start)

	assert.NoError(t, err)
	assert.Less(t, elapsed, 150*time.Millisecond, "response must not wait on the durable insert")

	assert.Eventually(t, func() bool {
		return h.repo.createdCount() == 1
	}, 2*time.Second, 10*time.Millisecond)
}

func TestCreateIntroPerCallerKey(t *testing.T) {
	h := newHarness(t)
	limiter := &fakeLimiter{allowed: true}
	promptBuilder, _ := intro.NewPromptBuilder("Test Owner", "does-not-exist.txt")
	svc := NewIntroService(
		&fakeFactory{repo: h.repo},
		h.cache,
		limiter,
		h.embedder,
		h.llm,
		promptBuilder,
		NewPublisherService("COMMIT_INTRO", h.pubSub),
		h.registry,
		nopLogger{},
		IntroServiceConfig{
			SimilarityThreshold: 0.5,
			CacheTTL:            time.Hour,
			RateLimitKey:        "intro.create",
			RateLimitPerCaller:  true,
		},
	)

	_, err := svc.CreateIntro(context.Background(), "203.0.113.9", &dto.CreateIntroRequest{Query: "hi"})

	assert.NoError(t, err)
	assert.Equal(t, "intro.create:203.0.113.9", limiter.lastKey)
}
