package main

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gofiber/contrib/otelfiber"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/swagger"
	"github.com/google/uuid"
	_ "github.com/joho/godotenv/autoload"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"beecok/docs"
	"beecok/internal/auth"
	"beecok/internal/chunker"
	"beecok/internal/config"
	"beecok/internal/database"
	"beecok/internal/database/migration"
	"beecok/internal/docstore"
	"beecok/internal/embedding"
	"beecok/internal/extract"
	handlers "beecok/internal/http/handler"
	"beecok/internal/http/middleware"
	"beecok/internal/llm"
	"beecok/internal/logger"
	"beecok/internal/model"
	beecokotel "beecok/internal/otel"
	"beecok/internal/repository"
	mongorepo "beecok/internal/repository/mongo"
	"beecok/internal/repository/postgres"
	"beecok/internal/service"
	"beecok/internal/storage"
	"beecok/internal/vectorindex"
)

// @title Beecok API
// @version 2.0.0
// @description Upload documents to spaces and perform semantic search with generated answers.
// @BasePath /
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}
	log := logger.New(cfg.LogLevel, cfg.Location(), os.Stdout)
	defer log.Sync()

	if err := run(cfg, log); err != nil {
		log.Fatal("server_failed", zap.Error(err))
	}
}

func run(cfg *config.AppConfig, log *zap.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	shutdownTracing, err := beecokotel.Init(ctx, "beecok-api", log)
	if err != nil {
		return fmt.Errorf("init tracing: %w", err)
	}
	defer func() {
		sctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdownTracing(sctx); err != nil {
			log.Warn("tracing_shutdown_failed", zap.Error(err))
		}
	}()

	store, closeStore, err := openStore(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer closeStore()

	files, err := openStorage(ctx, cfg)
	if err != nil {
		return fmt.Errorf("init storage: %w", err)
	}

	embedder, generator := openModels(cfg, log)
	index, err := openIndex(ctx, cfg, embedder.Dimensions(), log)
	if err != nil {
		return fmt.Errorf("init vector index: %w", err)
	}

	secret := cfg.Auth.SecretKey
	if secret == "" {
		// only reachable with DB_DRIVER=memory; tokens die with the process anyway
		secret = uuid.NewString()
		log.Warn("jwt_secret_generated", zap.String("reason", "JWT_SECRET_KEY is empty"))
	}
	tokens := auth.NewTokenManager(secret, time.Duration(cfg.Auth.AccessTokenMinutes)*time.Minute)

	indexer := service.NewIndexer(
		chunker.New(cfg.Indexing.ChunkSize, cfg.Indexing.ChunkOverlap),
		embedder, index, log.Named("indexer"),
	)
	searchSvc := service.NewSearchService(store.Spaces, store.Documents, indexer, generator, cfg.Indexing.MaxResults, log.Named("search"))
	svc := handlers.Services{
		Auth:      service.NewAuthService(store.Users, tokens),
		Spaces:    service.NewSpaceService(store.Spaces, store.Documents, files, indexer, log.Named("spaces")),
		Documents: service.NewDocumentService(store.Spaces, store.Documents, files, extract.NewExtractor(), indexer, log.Named("documents")),
		Search:    searchSvc,
		Chats:     service.NewChatService(store.Chats, store.Messages, store.Spaces, searchSvc, log.Named("chats")),
		System:    service.NewSystemService(store, indexer, generator),
		Log:       log.Named("handler"),
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	metrics, err := middleware.NewPrometheusMiddleware(reg)
	if err != nil {
		return fmt.Errorf("register metrics: %w", err)
	}

	app := fiber.New(fiber.Config{
		ErrorHandler: handlers.ErrorHandler(),
		// room for multipart framing around the largest accepted file
		BodyLimit: model.MaxFileSize + 1<<20,
	})

	app.Use(middleware.RequestID())
	app.Use(otelfiber.Middleware())
	app.Use(middleware.Logger(log.Named("http")))
	app.Use(metrics.Handler())
	app.Use(cors.New(cors.Config{
		AllowOrigins: cfg.CORSOrigins,
		AllowHeaders: "Origin, Content-Type, Accept, Authorization, X-Request-ID",
	}))

	app.Get("/metrics", adaptor.HTTPHandler(promhttp.HandlerFor(reg, promhttp.HandlerOpts{})))
	handlers.RegisterRoutes(app, svc)

	// Swagger UI with dynamic host and scheme
	app.Get("/swagger/*", func(c *fiber.Ctx) error {
		scheme := c.Protocol()
		if proto := c.Get("X-Forwarded-Proto"); proto != "" {
			scheme = strings.Split(proto, ",")[0]
		}

		docs.SwaggerInfo.Host = c.Get("Host")
		docs.SwaggerInfo.Schemes = []string{scheme}

		return swagger.HandlerDefault(c)
	})

	errCh := make(chan error, 1)
	go func() {
		log.Info("server_started",
			zap.String("addr", ":"+cfg.Port),
			zap.String("db_driver", cfg.Database.Driver),
			zap.String("storage_driver", cfg.Storage.Driver),
			zap.String("vector_index", index.Name()),
			zap.String("embedding_model", indexer.EmbeddingModel()),
		)
		errCh <- app.Listen(":" + cfg.Port)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	log.Info("server_stopping")
	if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}

// openStore connects the persistence backend selected by DB_DRIVER. The returned
// function releases it.
func openStore(ctx context.Context, cfg *config.AppConfig, log *zap.Logger) (repository.Store, func(), error) {
	switch cfg.Database.Driver {
	case "postgres":
		db, err := database.NewPostgres(cfg.Database)
		if err != nil {
			return repository.Store{}, nil, fmt.Errorf("connect postgres: %w", err)
		}
		if err := migration.EnsureMigrated(ctx, db, log, cfg.Database.Host); err != nil {
			db.Close()
			return repository.Store{}, nil, fmt.Errorf("migrate: %w", err)
		}
		return postgres.NewStore(db), closeSQL(db, log), nil

	case "mongo":
		client, err := database.NewMongo(ctx, cfg.Mongo)
		if err != nil {
			return repository.Store{}, nil, fmt.Errorf("connect mongo: %w", err)
		}
		ddb := docstore.NewMongo(client, cfg.Mongo.Database)
		if err := docstore.EnsureIndexes(ctx, ddb); err != nil {
			ddb.Close(context.Background())
			return repository.Store{}, nil, fmt.Errorf("ensure indexes: %w", err)
		}
		return mongorepo.NewStore(ddb), closeDocstore(ddb, log), nil

	default:
		log.Warn("memory_store_in_use", zap.String("reason", "DB_DRIVER=memory; data is lost on exit"))
		ddb := docstore.NewMemory()
		if err := docstore.EnsureIndexes(ctx, ddb); err != nil {
			return repository.Store{}, nil, fmt.Errorf("ensure indexes: %w", err)
		}
		return mongorepo.NewStore(ddb), func() {}, nil
	}
}

func closeSQL(db *sql.DB, log *zap.Logger) func() {
	return func() {
		if err := db.Close(); err != nil {
			log.Warn("db_close_failed", zap.Error(err))
		}
	}
}

func closeDocstore(db docstore.Database, log *zap.Logger) func() {
	return func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := db.Close(ctx); err != nil {
			log.Warn("db_close_failed", zap.Error(err))
		}
	}
}

func openStorage(ctx context.Context, cfg *config.AppConfig) (storage.Storage, error) {
	if cfg.Storage.Driver == "minio" {
		return storage.NewMinIO(ctx, cfg.MinIO)
	}
	return storage.NewLocal(cfg.Storage.UploadDir)
}

// openModels picks the Gemini embedder and generator, or the local hash embedder
// without generation when no API key is configured.
func openModels(cfg *config.AppConfig, log *zap.Logger) (embedding.Embedder, llm.Generator) {
	g := cfg.Gemini
	if g.APIKey == "" {
		log.Warn("gemini_disabled",
			zap.String("reason", "GOOGLE_API_KEY is empty"),
			zap.String("embedding_model", "local-hash"),
		)
		return embedding.NewHash(g.EmbeddingDimension), llm.Unavailable{}
	}
	return embedding.NewGemini(g.BaseURL, g.APIKey, g.EmbeddingModel, g.EmbeddingDimension),
		llm.NewGemini(g.BaseURL, g.APIKey, g.Model)
}

// openIndex connects Pinecone when selected and falls back to the local index when it
// cannot be reached.
func openIndex(ctx context.Context, cfg *config.AppConfig, dims int, log *zap.Logger) (vectorindex.Index, error) {
	v := cfg.Vector
	if v.Driver == "pinecone" {
		pc, err := vectorindex.NewPinecone(ctx, vectorindex.PineconeConfig{
			APIKey:    v.PineconeAPIKey,
			IndexName: v.IndexName,
			Host:      v.Host,
			Namespace: v.Namespace,
			Dimension: dims,
		})
		if err == nil {
			return pc, nil
		}
		log.Warn("pinecone_unavailable", zap.Error(err), zap.String("fallback", "local"))
	}
	idx, err := vectorindex.NewLocal(v.LocalPath, dims)
	if err != nil {
		return nil, fmt.Errorf("local vector index: %w", err)
	}
	return idx, nil
}
