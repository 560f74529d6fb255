package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/websocket/v2"
	"go.uber.org/zap"

	"github.com/bousai-navi/backend/internal/api/handlers"
	"github.com/bousai-navi/backend/internal/cache/redis"
	"github.com/bousai-navi/backend/internal/catalog"
	"github.com/bousai-navi/backend/internal/geo"
	"github.com/bousai-navi/backend/internal/llm"
	"github.com/bousai-navi/backend/internal/metrics"
	"github.com/bousai-navi/backend/internal/middleware/auth"
	"github.com/bousai-navi/backend/internal/middleware/ratelimit"
	"github.com/bousai-navi/backend/internal/middleware/security"
	"github.com/bousai-navi/backend/internal/middleware/validation"
	"github.com/bousai-navi/backend/internal/quiz"
	"github.com/bousai-navi/backend/internal/recommend"
	"github.com/bousai-navi/backend/internal/storage/sqlite"
	"github.com/bousai-navi/backend/pkg/config"
	appLogger "github.com/bousai-navi/backend/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}

	err = appLogger.Init(cfg.Logging.Level, cfg.Logging.Format, cfg.Logging.OutputPath)
	if err != nil {
		fmt.Printf("Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer appLogger.Sync()

	appLogger.Info("Starting Bousai Navi API Server")

	metrics.Init()

	sqliteClient, err := sqlite.NewClient(cfg.SQLite.Path)
	if err != nil {
		appLogger.Fatal("Failed to create SQLite client", zap.Error(err))
	}
	defer sqliteClient.Close()

	err = sqliteClient.InitSchema()
	if err != nil {
		appLogger.Fatal("Failed to initialize schema", zap.Error(err))
	}

	var hotCache *redis.Client
	if cfg.Redis.Enabled {
		hotCache, err = redis.NewClient(
			cfg.Redis.Host,
			cfg.Redis.Port,
			cfg.Redis.Password,
			cfg.Redis.DB,
			cfg.Redis.ListTTL,
		)
		if err != nil {
			appLogger.Warn("Redis unavailable, continuing without hot cache", zap.Error(err))
			hotCache = nil
		} else {
			defer hotCache.Close()
		}
	}

	llmClient := llm.NewClient(llm.Options{
		APIKey:      cfg.LLM.APIKey,
		BaseURL:     cfg.LLM.BaseURL,
		Model:       cfg.LLM.Model,
		Temperature: cfg.LLM.Temperature,
		MaxTokens:   cfg.LLM.MaxTokens,
		TimeoutSec:  cfg.LLM.TimeoutSec,
	})

	catalogClient := catalog.NewClient(catalog.ClientOptions{
		ApplicationID: cfg.Catalog.ApplicationID,
		ItemEndpoint:  cfg.Catalog.ItemEndpoint,
		EbookEndpoint: cfg.Catalog.EbookEndpoint,
		Hits:          cfg.Catalog.Hits,
		TimeoutSec:    cfg.Catalog.TimeoutSec,
	})

	aggregator := catalog.NewAggregator(catalogClient, catalog.AggregatorOptions{
		BatchSize:    cfg.Catalog.BatchSize,
		BatchDelayMS: cfg.Catalog.BatchDelayMS,
	})

	extractor := recommend.NewExtractor(llmClient)
	listGenerator := recommend.NewGenerator(sqliteClient, hotCache, extractor, aggregator)

	quizGenerator := quiz.NewGenerator(llmClient, quiz.GeneratorOptions{
		MaxRetries:     cfg.Quiz.MaxRetries,
		InitialDelayMS: cfg.Quiz.InitialDelayMS,
	})
	quizSessions := quiz.NewSessionStore()
	quizGrader := quiz.NewGrader(sqliteClient, quizSessions, cfg.Quiz.PointsPerQuestion)

	geoClient := geo.NewClient(geo.ClientOptions{
		GeocodeEndpoint: cfg.Geo.GeocodeEndpoint,
		HotelEndpoint:   cfg.Geo.HotelEndpoint,
		ApplicationID:   cfg.Catalog.ApplicationID,
		POIPath:         cfg.Geo.POIPath,
		SearchRadiusKM:  cfg.Geo.SearchRadiusKM,
		TimeoutSec:      cfg.Geo.TimeoutSec,
	})

	app := fiber.New(fiber.Config{
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
		BodyLimit:    cfg.Server.BodyLimit,
	})

	app.Use(recover.New())
	app.Use(logger.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowHeaders: "Origin, Content-Type, Accept, Authorization",
		AllowMethods: "GET, POST, PUT, DELETE, OPTIONS",
	}))
	app.Use(security.HeadersMiddleware(security.HeadersConfig{}))

	rateLimiter := ratelimit.New(ratelimit.Config{
		Logger: appLogger.GetLogger(),
	})
	defer rateLimiter.Stop()

	authHandler := handlers.NewAuthHandler(sqliteClient, cfg.Auth.JWTSecret, cfg.Auth.TokenTTLHrs)
	profileHandler := handlers.NewProfileHandler(sqliteClient)
	listHandler := handlers.NewListHandler(listGenerator)
	quizHandler := handlers.NewQuizHandler(quizGenerator, quizSessions, quizGrader)
	ebookHandler := handlers.NewEbookHandler(catalogClient)
	mapHandler := handlers.NewMapHandler(geoClient)
	wsHandler := handlers.NewWebSocketHandler(listGenerator, cfg.Auth.JWTSecret)

	api := app.Group("/api")
	api.Use(validation.Middleware(validation.Config{
		Logger: appLogger.GetLogger(),
	}))

	api.Post("/register", authHandler.Register)
	api.Post("/login", authHandler.Login)

	api.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status": "healthy",
			"time":   time.Now().Unix(),
		})
	})

	protected := api.Group("", auth.Middleware(cfg.Auth.JWTSecret), rateLimiter.Middleware())
	protected.Get("/profile", profileHandler.GetProfile)
	protected.Put("/family-info", profileHandler.UpdateFamilyInfo)
	protected.Get("/generate-list", listHandler.GenerateList)
	protected.Get("/quiz", quizHandler.GetQuiz)
	protected.Post("/quiz/submit", quizHandler.SubmitQuiz)
	protected.Get("/ebooks", ebookHandler.SearchEbooks)
	protected.Post("/map-data", mapHandler.GetMapData)

	app.Get("/ws/generate", websocket.New(wsHandler.HandleConnection))

	app.Get("/metrics", metrics.MetricsHandler())

	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	appLogger.Info("Server starting", zap.String("address", addr))

	go func() {
		if err := app.Listen(addr); err != nil {
			appLogger.Fatal("Server failed to start", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	appLogger.Info("Server shutting down gracefully...")
	app.Shutdown()
	appLogger.Info("Server stopped")
}
