package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/sehatlabs/labtestdiscovery/backend/internal/adapters/cache"
	"github.com/sehatlabs/labtestdiscovery/backend/internal/api/handlers"
	"github.com/sehatlabs/labtestdiscovery/backend/internal/api/middleware"
	"github.com/sehatlabs/labtestdiscovery/backend/internal/api/routes"
	"github.com/sehatlabs/labtestdiscovery/backend/internal/application/services"
	"github.com/sehatlabs/labtestdiscovery/backend/internal/catalog"
	"github.com/sehatlabs/labtestdiscovery/backend/internal/domain/providers"
	"github.com/sehatlabs/labtestdiscovery/backend/internal/infrastructure/clients/openai"
	"github.com/sehatlabs/labtestdiscovery/backend/internal/infrastructure/clients/redis"
	"github.com/sehatlabs/labtestdiscovery/backend/internal/infrastructure/observability"
	"github.com/sehatlabs/labtestdiscovery/backend/pkg/config"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	observability.InitLogger(cfg.OTEL.ServiceName, cfg.Env)

	// Set up context for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Initialize OpenTelemetry if enabled
	if cfg.OTEL.Enabled && cfg.OTEL.Endpoint != "" {
		shutdown, err := observability.Setup(
			ctx,
			cfg.OTEL.ServiceName,
			cfg.OTEL.ServiceVersion,
			cfg.OTEL.Endpoint,
		)
		if err != nil {
			log.Warn().Err(err).Msg("failed to set up OpenTelemetry")
		} else {
			defer func() {
				ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer cancel()
				if err := shutdown(ctx); err != nil {
					log.Error().Err(err).Msg("error shutting down OpenTelemetry")
				}
			}()
			log.Info().Msg("OpenTelemetry initialized")
		}
	}

	// Initialize metrics
	metrics, err := observability.InitMetrics()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize metrics")
	}

	// Initialize Redis client
	var cacheProvider providers.CacheProvider
	redisClient, err := redis.NewClient(&cfg.Redis)
	if err != nil {
		// Continue without Redis - the application works without caching
		log.Warn().Err(err).Msg("failed to initialize Redis client; caching disabled")
	} else {
		defer redisClient.Close()
		cacheProvider = cache.NewRedisAdapter(redisClient)
		log.Info().Msg("Redis client initialized")
	}

	// Load the test catalog at boot so the first request doesn't pay for it
	catalogService := catalog.NewService(cfg.Catalog.DataDir)
	catalogService.Load(ctx)
	log.Info().
		Int("tests", len(catalogService.Tests(ctx))).
		Int("labs", len(catalogService.Labs(ctx))).
		Msg("test catalog loaded")

	// Initialize services
	searchService, err := services.NewSearchService(filepath.Join(cfg.Catalog.ConfigDir, "search_terms.json"))
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize search service")
	}

	intentClassifier, err := services.NewIntentClassifier(filepath.Join(cfg.Catalog.ConfigDir, "entity_lexicon.json"))
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize intent classifier")
	}

	var answerProvider providers.MedicalAnswerProvider
	if cfg.OpenAI.APIKey == "" {
		log.Warn().Msg("OPENAI_API_KEY is not set; medical question answering disabled")
	} else {
		openaiClient, err := openai.NewClient(&cfg.OpenAI)
		if err != nil {
			log.Warn().Err(err).Msg("failed to initialize OpenAI client")
		} else {
			answerProvider = openaiClient
		}
	}

	chatService := services.NewChatService(
		catalogService,
		searchService,
		intentClassifier,
		answerProvider,
		cacheProvider,
	)

	// Initialize handlers
	chatHandler := handlers.NewChatHandler(chatService)
	catalogHandler := handlers.NewCatalogHandler(catalogService, searchService)

	// Initialize cache middleware
	var cacheMiddleware *middleware.CacheMiddleware
	if cacheProvider != nil {
		cacheMiddleware = middleware.NewCacheMiddleware(cacheProvider)
		log.Info().Msg("cache middleware initialized")
	}

	// Set up router
	router := routes.NewRouter(
		chatHandler,
		catalogHandler,
		catalogService,
		cacheMiddleware,
		metrics,
	)

	handler := router.SetupRoutes()

	// Create HTTP server
	serverAddr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	server := &http.Server{
		Addr:         serverAddr,
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in a goroutine
	go func() {
		log.Info().Str("addr", serverAddr).Msg("server starting")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("server failed to start")
		}
	}()

	// Wait for interrupt signal for graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("server shutting down")

	// Graceful shutdown with timeout
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("error during server shutdown")
	}

	log.Info().Msg("server stopped")
}
