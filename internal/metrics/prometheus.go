package metrics

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	GenerationDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "bousai_list_generation_duration_seconds",
			Help:    "Product list generation duration in seconds",
			Buckets: []float64{0.05, 0.5, 1, 2, 5, 10, 30},
		},
		[]string{"outcome"},
	)

	GenerationTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bousai_list_generation_total",
			Help: "Total product list generation requests",
		},
		[]string{"status"},
	)

	CacheHits = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bousai_cache_hits_total",
			Help: "Total cache hits",
		},
		[]string{"cache_type"},
	)

	CacheMisses = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bousai_cache_misses_total",
			Help: "Total cache misses",
		},
		[]string{"cache_type"},
	)

	CatalogSearches = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bousai_catalog_searches_total",
			Help: "Total per-keyword catalog search requests",
		},
		[]string{"status"},
	)

	CatalogBatches = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "bousai_catalog_batches_total",
			Help: "Total catalog search batches issued",
		},
	)

	KeywordsExtracted = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "bousai_keywords_extracted",
			Help:    "Number of keywords produced per extraction",
			Buckets: []float64{1, 3, 5, 10, 15, 20, 30},
		},
	)

	QuizAttempts = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bousai_quiz_generation_attempts_total",
			Help: "Total quiz generation attempts against the LLM",
		},
		[]string{"status"},
	)

	QuizFallbacks = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "bousai_quiz_fallbacks_total",
			Help: "Total quizzes served from the built-in fallback dataset",
		},
	)

	QuizGraded = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "bousai_quiz_score",
			Help:    "Scores of graded quiz submissions",
			Buckets: []float64{0, 1, 2, 3, 4, 5},
		},
	)

	LLMTokensUsed = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bousai_llm_tokens_used_total",
			Help: "Total LLM tokens used",
		},
		[]string{"model", "type"},
	)
)

func Init() {
	prometheus.MustRegister(GenerationDuration)
	prometheus.MustRegister(GenerationTotal)
	prometheus.MustRegister(CacheHits)
	prometheus.MustRegister(CacheMisses)
	prometheus.MustRegister(CatalogSearches)
	prometheus.MustRegister(CatalogBatches)
	prometheus.MustRegister(KeywordsExtracted)
	prometheus.MustRegister(QuizAttempts)
	prometheus.MustRegister(QuizFallbacks)
	prometheus.MustRegister(QuizGraded)
	prometheus.MustRegister(LLMTokensUsed)
}

func MetricsHandler() fiber.Handler {
	return adaptor.HTTPHandler(promhttp.Handler())
}
