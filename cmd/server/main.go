package main

import (
	"context"
	"errors"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Abdurahmanit/GroupProject/adpost-service/internal/adapter/ai/gemini"
	grpcadapter "github.com/Abdurahmanit/GroupProject/adpost-service/internal/adapter/grpc"
	"github.com/Abdurahmanit/GroupProject/adpost-service/internal/adapter/messaging/nats"
	"github.com/Abdurahmanit/GroupProject/adpost-service/internal/adapter/repository/cache"
	"github.com/Abdurahmanit/GroupProject/adpost-service/internal/adapter/repository/mongodb"
	"github.com/Abdurahmanit/GroupProject/adpost-service/internal/adapter/rest"
	"github.com/Abdurahmanit/GroupProject/adpost-service/internal/adapter/storage/s3"
	"github.com/Abdurahmanit/GroupProject/adpost-service/internal/config"
	"github.com/Abdurahmanit/GroupProject/adpost-service/internal/listing/domain"
	"github.com/Abdurahmanit/GroupProject/adpost-service/internal/listing/draft"
	"github.com/Abdurahmanit/GroupProject/adpost-service/internal/listing/imaging"
	"github.com/Abdurahmanit/GroupProject/adpost-service/internal/listing/usecase"
	"github.com/Abdurahmanit/GroupProject/adpost-service/internal/mailer"
	"github.com/Abdurahmanit/GroupProject/adpost-service/internal/platform/logger"
	"github.com/Abdurahmanit/GroupProject/adpost-service/internal/platform/metrics"
	"github.com/Abdurahmanit/GroupProject/adpost-service/internal/platform/tracer"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

const shutdownTimeout = 15 * time.Second

func main() {
	appLogger := logger.NewLogger()
	defer func() { _ = appLogger.Sync() }()

	if err := run(appLogger); err != nil {
		appLogger.Error("Service exited with error", "error", err)
		os.Exit(1)
	}
	appLogger.Info("Service stopped")
}

func run(appLogger *logger.Logger) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	appLogger.Info("Configuration loaded", "service", cfg.ServiceName, "http_port", cfg.HTTPPort, "grpc_port", cfg.GRPCPort)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	shutdownTracer, err := tracer.InitTracer(ctx, cfg.ServiceName, cfg.OTelEndpoint)
	if err != nil {
		return err
	}
	defer func() {
		sctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdownTracer(sctx); err != nil {
			appLogger.Error("Failed to shut down tracer provider", "error", err)
		}
	}()

	appMetrics := metrics.NewMetricsManager("adpost")
	go func() {
		if err := metrics.StartMetricsServer(ctx, cfg.MetricsPort, appLogger, appMetrics.Registry); err != nil {
			appLogger.Error("Metrics server failed", "error", err)
		}
	}()

	// MongoDB
	connectCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	mongoClient, err := mongo.Connect(connectCtx, options.Client().ApplyURI(cfg.MongoURI))
	if err != nil {
		return err
	}
	defer func() {
		dctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := mongoClient.Disconnect(dctx); err != nil {
			appLogger.Error("Failed to disconnect from MongoDB", "error", err)
		}
	}()
	if err := mongoClient.Ping(connectCtx, readpref.Primary()); err != nil {
		return err
	}
	appLogger.Info("Connected to MongoDB", "database", cfg.MongoDB)
	db := mongoClient.Database(cfg.MongoDB)

	listingRepo := mongodb.NewListingRepository(db, appLogger)
	if err := listingRepo.EnsureIndexes(connectCtx); err != nil {
		appLogger.Warn("Failed to ensure listing indexes", "error", err)
	}
	userRepo := mongodb.NewUserRepository(db, appLogger)

	// Redis
	redisClient, err := cache.NewClient(ctx, cfg.RedisAddress, cfg.RedisPassword, cfg.RedisDB)
	if err != nil {
		return err
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			appLogger.Error("Failed to close Redis client", "error", err)
		}
	}()
	appLogger.Info("Connected to Redis", "address", cfg.RedisAddress)
	listingCache := cache.NewListingCache(redisClient, cfg.ListingCacheTTL)
	draftRepo := cache.NewDraftRepository(redisClient, cfg.DraftTTL)

	storage, err := s3.NewS3Storage(ctx, cfg.MinIOEndpoint, cfg.MinIOAccessKey, cfg.MinIOSecretKey, cfg.MinIOBucket, cfg.MinIOUseSSL, appLogger)
	if err != nil {
		return err
	}

	publisher, err := nats.NewPublisher(cfg.NATSURL, cfg.ServiceName, appLogger)
	if err != nil {
		return err
	}
	defer publisher.Close()

	generator, err := gemini.NewGenerator(ctx, cfg.GeminiAPIKey, cfg.GeminiModel, appLogger)
	if err != nil {
		return err
	}

	var notifier domain.Notifier
	if cfg.SMTPEmail != "" {
		notifier = mailer.New(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPEmail, cfg.SMTPPassword, userRepo, appLogger)
	} else {
		appLogger.Warn("SMTP_EMAIL is not set, owner notifications are disabled")
	}

	// Workflow
	drafts := draft.NewManager(draftRepo, cfg.DraftAutosaveDelay, appLogger, appMetrics)
	images := imaging.NewPipeline(imaging.NewJPEGCompressor(), appLogger)
	photos := usecase.NewPhotoUsecase(storage, appLogger)
	submitter := usecase.NewSubmitUsecase(listingRepo, listingCache, photos, drafts, publisher, notifier, appLogger, appMetrics)
	sessions := usecase.NewSessionStore()
	defer sessions.CloseAll()
	postings := usecase.NewPostingUsecase(listingRepo, drafts, images, generator, submitter, sessions, appLogger, appMetrics)
	listings := usecase.NewListingUsecase(listingRepo, listingCache, publisher, notifier, appLogger)

	go evictIdleSessions(ctx, sessions, cfg.SessionIdleTTL, appLogger)

	// Transports
	handler := rest.NewHandler(postings, listings, appLogger, cfg.MaxUploadBytes)
	httpServer := &http.Server{
		Addr:              ":" + cfg.HTTPPort,
		Handler:           rest.NewRouter(handler, cfg.JWTSecret, appLogger, appMetrics),
		ReadHeaderTimeout: 10 * time.Second,
	}

	grpcServer, _, grpcCleanup := grpcadapter.NewGRPCServer(appLogger, cfg.JWTSecret, cfg.ServiceName)
	lis, err := net.Listen("tcp", ":"+cfg.GRPCPort)
	if err != nil {
		return err
	}

	errCh := make(chan error, 2)
	go func() {
		appLogger.Info("HTTP server starting", "port", cfg.HTTPPort)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()
	go func() {
		appLogger.Info("gRPC server starting", "port", cfg.GRPCPort)
		if err := grpcServer.Serve(lis); err != nil {
			errCh <- err
		}
	}()

	var serveErr error
	select {
	case <-ctx.Done():
		appLogger.Info("Shutdown signal received")
	case serveErr = <-errCh:
		appLogger.Error("Server failed, shutting down", "error", serveErr)
	}

	sctx, cancelShutdown := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancelShutdown()
	if err := httpServer.Shutdown(sctx); err != nil {
		appLogger.Error("HTTP server shutdown failed", "error", err)
	}
	grpcCleanup()
	return serveErr
}

// evictIdleSessions closes sessions abandoned by their client.
func evictIdleSessions(ctx context.Context, sessions *usecase.SessionStore, ttl time.Duration, log *logger.Logger) {
	interval := ttl / 4
	if interval < time.Minute {
		interval = time.Minute
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := sessions.EvictIdle(ttl); n > 0 {
				log.Info("Evicted idle posting sessions", "count", n, "open", sessions.Len())
			}
		}
	}
}
