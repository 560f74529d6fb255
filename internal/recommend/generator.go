package recommend

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/bousai-navi/backend/internal/cache/redis"
	"github.com/bousai-navi/backend/internal/catalog"
	"github.com/bousai-navi/backend/internal/metrics"
	"github.com/bousai-navi/backend/internal/storage/models"
	"github.com/bousai-navi/backend/pkg/logger"
)

var ErrUserNotFound = errors.New("user not found")

// Store is the persistent-store contract the orchestrator depends on.
type Store interface {
	GetUserByID(ctx context.Context, id int64) (*models.User, error)
	GetLatestProductList(ctx context.Context, userID int64, compositionHash string) (*models.CachedProductList, error)
	InsertProductList(ctx context.Context, userID int64, compositionHash, productData string) error
}

// KeywordExtractor converts a profile into search keywords.
type KeywordExtractor interface {
	Extract(ctx context.Context, profile models.HouseholdProfile) ([]string, error)
}

// CatalogSearcher fans keywords out to the catalog service.
type CatalogSearcher interface {
	SearchWithProgress(ctx context.Context, keywords []string, progress catalog.ProgressFunc) ([]catalog.GroupedResult, error)
}

// Generator coordinates the generation pipeline:
// CheckCache -> {HitReturn | ExtractKeywords -> AggregateSearch -> Persist}.
// A request either fully succeeds (cache hit or complete fresh generation)
// or fully fails; nothing partial is ever persisted.
type Generator struct {
	store      Store
	hot        *redis.Client
	extractor  KeywordExtractor
	aggregator CatalogSearcher
}

func NewGenerator(store Store, hot *redis.Client, extractor KeywordExtractor, aggregator CatalogSearcher) *Generator {
	return &Generator{
		store:      store,
		hot:        hot,
		extractor:  extractor,
		aggregator: aggregator,
	}
}

// Generate returns the grouped product list for the user's current household
// composition. The bool reports whether the list came from cache.
func (g *Generator) Generate(ctx context.Context, userID int64) ([]catalog.GroupedResult, bool, error) {
	return g.GenerateWithProgress(ctx, userID, nil)
}

func (g *Generator) GenerateWithProgress(ctx context.Context, userID int64, progress catalog.ProgressFunc) ([]catalog.GroupedResult, bool, error) {
	startTime := time.Now()
	requestID := uuid.New().String()

	user, err := g.store.GetUserByID(ctx, userID)
	if err != nil {
		return nil, false, fmt.Errorf("failed to load user: %w", err)
	}
	if user == nil {
		return nil, false, ErrUserNotFound
	}

	fingerprint := Fingerprint(user.HouseholdProfile)

	logger.Info("Generating product list",
		zap.String("request_id", requestID),
		zap.Int64("user_id", userID),
		zap.String("fingerprint", fingerprint),
	)

	results, ok, err := g.lookupCache(ctx, userID, fingerprint)
	if err != nil {
		metrics.GenerationTotal.WithLabelValues("error").Inc()
		return nil, false, err
	}
	if ok {
		metrics.GenerationTotal.WithLabelValues("cache_hit").Inc()
		metrics.GenerationDuration.WithLabelValues("cache_hit").Observe(time.Since(startTime).Seconds())
		logger.Info("Product list served from cache",
			zap.String("request_id", requestID),
			zap.Int64("user_id", userID),
		)
		return results, true, nil
	}

	logger.Info("Cache miss, generating fresh list",
		zap.String("request_id", requestID),
		zap.Int64("user_id", userID),
	)

	keywords, err := g.extractor.Extract(ctx, user.HouseholdProfile)
	if err != nil {
		metrics.GenerationTotal.WithLabelValues("error").Inc()
		return nil, false, err
	}

	results, err = g.aggregator.SearchWithProgress(ctx, keywords, progress)
	if err != nil {
		metrics.GenerationTotal.WithLabelValues("error").Inc()
		return nil, false, err
	}

	data, err := json.Marshal(results)
	if err != nil {
		return nil, false, fmt.Errorf("failed to serialize grouped results: %w", err)
	}

	if err := g.store.InsertProductList(ctx, userID, fingerprint, string(data)); err != nil {
		metrics.GenerationTotal.WithLabelValues("error").Inc()
		return nil, false, err
	}

	// Hot-cache population is best effort; the durable row is already in.
	if err := g.hot.SetProductList(ctx, userID, fingerprint, results); err != nil {
		logger.Warn("Failed to hot-cache product list", zap.Error(err))
	}

	metrics.GenerationTotal.WithLabelValues("generated").Inc()
	metrics.GenerationDuration.WithLabelValues("generated").Observe(time.Since(startTime).Seconds())

	logger.Info("Product list generated",
		zap.String("request_id", requestID),
		zap.Int64("user_id", userID),
		zap.Int("keywords", len(keywords)),
		zap.Duration("elapsed", time.Since(startTime)),
	)

	return results, false, nil
}

// lookupCache consults the redis hot cache first, then the durable sqlite
// cache. Hot-cache read failures degrade to a miss; durable-store read
// failures propagate.
func (g *Generator) lookupCache(ctx context.Context, userID int64, fingerprint string) ([]catalog.GroupedResult, bool, error) {
	var results []catalog.GroupedResult

	hit, err := g.hot.GetProductList(ctx, userID, fingerprint, &results)
	if err != nil {
		logger.Warn("Hot cache lookup failed", zap.Error(err))
	}
	if hit {
		metrics.CacheHits.WithLabelValues("redis").Inc()
		return results, true, nil
	}
	metrics.CacheMisses.WithLabelValues("redis").Inc()

	cached, err := g.store.GetLatestProductList(ctx, userID, fingerprint)
	if err != nil {
		return nil, false, err
	}
	if cached == nil {
		metrics.CacheMisses.WithLabelValues("sqlite").Inc()
		return nil, false, nil
	}

	if err := json.Unmarshal([]byte(cached.ProductData), &results); err != nil {
		logger.Warn("Cached product data is corrupt, regenerating",
			zap.Int64("user_id", userID),
			zap.Error(err),
		)
		return nil, false, nil
	}
	metrics.CacheHits.WithLabelValues("sqlite").Inc()

	// Backfill the hot cache so the next hit skips sqlite.
	if err := g.hot.SetProductList(ctx, userID, fingerprint, results); err != nil {
		logger.Warn("Failed to backfill hot cache", zap.Error(err))
	}

	return results, true, nil
}
