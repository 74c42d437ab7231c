package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"

	"github.com/hszk-dev/cinematch/internal/api/handler"
	"github.com/hszk-dev/cinematch/internal/api/middleware"
	"github.com/hszk-dev/cinematch/internal/config"
	"github.com/hszk-dev/cinematch/internal/domain/repository"
	"github.com/hszk-dev/cinematch/internal/enricher"
	"github.com/hszk-dev/cinematch/internal/infrastructure/artifact"
	"github.com/hszk-dev/cinematch/internal/infrastructure/cache"
	"github.com/hszk-dev/cinematch/internal/infrastructure/postgres"
	"github.com/hszk-dev/cinematch/internal/infrastructure/queue"
	"github.com/hszk-dev/cinematch/internal/infrastructure/storage"
	"github.com/hszk-dev/cinematch/internal/recommender"
	"github.com/hszk-dev/cinematch/internal/usecase"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	// Artifact bootstrap: fetch model files from object storage when absent.
	loader := artifact.NewLoader(cfg.Artifacts.DataDir, nil)
	if cfg.Artifacts.Bootstrap {
		storageClient, err := storage.NewClient(ctx, storage.ClientConfig{
			Endpoint:  cfg.MinIO.Endpoint,
			AccessKey: cfg.MinIO.AccessKey,
			SecretKey: cfg.MinIO.SecretKey,
			Bucket:    cfg.MinIO.Bucket,
			UseSSL:    cfg.MinIO.UseSSL,
		})
		if err != nil {
			return fmt.Errorf("failed to connect to MinIO: %w", err)
		}
		logger.Info("connected to MinIO", slog.String("bucket", cfg.MinIO.Bucket))

		loader = artifact.NewLoader(cfg.Artifacts.DataDir, storageClient)
		if err := loader.Ensure(ctx); err != nil {
			return fmt.Errorf("failed to ensure model artifacts: %w", err)
		}
	}

	// Catalog source: local artifact CSV or the movies table.
	var catalogSource repository.CatalogSource = loader
	if cfg.Catalog.Source == "postgres" {
		pgClient, err := postgres.NewClient(ctx, postgres.DefaultClientConfig(cfg.Database.DSN()))
		if err != nil {
			return fmt.Errorf("failed to connect to PostgreSQL: %w", err)
		}
		defer pgClient.Close()
		logger.Info("connected to PostgreSQL")
		catalogSource = postgres.NewMovieCatalog(pgClient.Pool())
	}

	movies, err := catalogSource.LoadMovies(ctx)
	if err != nil {
		return fmt.Errorf("failed to load movie catalog: %w", err)
	}
	catalog, err := recommender.NewCatalog(movies)
	if err != nil {
		return fmt.Errorf("failed to build catalog: %w", err)
	}

	matrix, err := loader.LoadMatrix()
	if err != nil {
		return fmt.Errorf("failed to load similarity matrix: %w", err)
	}

	engine, err := recommender.NewEngine(catalog, matrix)
	if err != nil {
		return fmt.Errorf("failed to build recommendation engine: %w", err)
	}

	vocabulary, err := loader.LoadVocabulary()
	if err != nil {
		return fmt.Errorf("failed to load vocabulary: %w", err)
	}
	logger.Info("model loaded",
		slog.Int("movies", catalog.Size()),
		slog.Int("vocabulary", len(vocabulary)),
	)

	// Optional shared cache tier.
	var remoteCache cache.MetadataCache
	if cfg.Redis.Enabled {
		redisClient := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr(),
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		defer redisClient.Close()

		if err := redisClient.Ping(ctx).Err(); err != nil {
			return fmt.Errorf("failed to connect to Redis: %w", err)
		}
		logger.Info("connected to Redis")
		remoteCache = cache.NewRedisMetadataCache(redisClient)
	}

	// Optional prewarm queue.
	var messageQueue repository.MessageQueue
	if cfg.RabbitMQ.Enabled {
		queueClient, err := queue.NewClient(ctx, queue.DefaultClientConfig(cfg.RabbitMQ.URL()))
		if err != nil {
			return fmt.Errorf("failed to connect to RabbitMQ: %w", err)
		}
		defer queueClient.Close()
		logger.Info("connected to RabbitMQ")
		messageQueue = queueClient
	}

	tmdbClient := enricher.NewTMDBClient(enricher.TMDBClientConfig{
		BaseURL: cfg.TMDB.BaseURL,
		APIKey:  cfg.TMDB.APIKey,
		Timeout: cfg.TMDB.Timeout,
	})
	metadataEnricher, err := enricher.New(tmdbClient, remoteCache, enricher.Config{
		CacheSize: cfg.Enrichment.CacheSize,
		RemoteTTL: cfg.Enrichment.RemoteTTL,
	})
	if err != nil {
		return fmt.Errorf("failed to build enricher: %w", err)
	}

	svcCfg := usecase.DefaultRecommendServiceConfig()
	svcCfg.ImageBaseURL = cfg.TMDB.ImageBaseURL
	recommendSvc := usecase.NewRecommendService(engine, metadataEnricher, len(vocabulary), svcCfg)
	prewarmSvc := usecase.NewPrewarmService(catalog, messageQueue)

	r := setupRouter(logger, recommendSvc, prewarmSvc)

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      r,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("starting server", slog.Int("port", cfg.Server.Port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- fmt.Errorf("server error: %w", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return err
	case sig := <-quit:
		logger.Info("shutting down server", slog.String("signal", sig.String()))
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown error: %w", err)
	}

	logger.Info("server stopped")
	return nil
}

func setupRouter(logger *slog.Logger, recommendSvc usecase.RecommendService, prewarmSvc usecase.PrewarmService) *chi.Mux {
	r := chi.NewRouter()

	r.Use(chimw.RequestID)
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger(logger))
	r.Use(middleware.Recoverer(logger))

	r.Get("/health", handler.Health)
	r.Handle("/metrics", promhttp.Handler())

	recommendHandler := handler.NewRecommendHandler(recommendSvc)
	movieHandler := handler.NewMovieHandler(recommendSvc)
	adminHandler := handler.NewAdminHandler(prewarmSvc)

	r.Route("/v1", func(r chi.Router) {
		r.Post("/recommendations", recommendHandler.Recommend)
		r.Get("/movies", movieHandler.List)
		r.Get("/movies/{id}", movieHandler.Get)
		r.Get("/model", movieHandler.ModelInfo)
		r.Post("/admin/prewarm", adminHandler.Prewarm)
	})

	return r
}
