// Package app assembles the service from its configuration and runs it.
package app

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"sync"
	"syscall"
	"time"

	rediscache "github.com/Abdurahmanit/GroupProject/marketplace-service/internal/adapter/cache/redis"
	"github.com/Abdurahmanit/GroupProject/marketplace-service/internal/adapter/email"
	grpcadapter "github.com/Abdurahmanit/GroupProject/marketplace-service/internal/adapter/grpc"
	"github.com/Abdurahmanit/GroupProject/marketplace-service/internal/adapter/http/handler"
	"github.com/Abdurahmanit/GroupProject/marketplace-service/internal/adapter/http/middleware"
	"github.com/Abdurahmanit/GroupProject/marketplace-service/internal/adapter/http/router"
	"github.com/Abdurahmanit/GroupProject/marketplace-service/internal/adapter/http/upload"
	natsadapter "github.com/Abdurahmanit/GroupProject/marketplace-service/internal/adapter/messaging/nats"
	"github.com/Abdurahmanit/GroupProject/marketplace-service/internal/adapter/repository/mongodb"
	"github.com/Abdurahmanit/GroupProject/marketplace-service/internal/adapter/storage"
	"github.com/Abdurahmanit/GroupProject/marketplace-service/internal/config"
	"github.com/Abdurahmanit/GroupProject/marketplace-service/internal/domain"
	"github.com/Abdurahmanit/GroupProject/marketplace-service/internal/platform/logger"
	"github.com/Abdurahmanit/GroupProject/marketplace-service/internal/platform/metrics"
	"github.com/Abdurahmanit/GroupProject/marketplace-service/internal/platform/tracer"
	"github.com/Abdurahmanit/GroupProject/marketplace-service/internal/scheduler"
	"github.com/Abdurahmanit/GroupProject/marketplace-service/internal/usecase"
	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/readpref"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.uber.org/zap"
)

const healthInterval = 10 * time.Second

type App struct {
	cfg    *config.Config
	log    *logger.Logger
	closer []func(ctx context.Context)

	httpServer    *http.Server
	metricsServer *http.Server
	health        *grpcadapter.HealthServer
	scheduler     *scheduler.Scheduler
	mongoClient   *mongo.Client
}

// New connects every backing service and wires the usecases. On error,
// whatever was already opened is closed again.
func New(cfg *config.Config) (app *App, err error) {
	appLogger := logger.New(cfg.Log)
	cfg.LogSummary(appLogger)

	a := &App{cfg: cfg, log: appLogger}
	defer func() {
		if err != nil {
			a.close(context.Background())
		}
	}()

	tp := tracer.InitTracer(cfg.ServiceName, cfg.Telemetry.OTLPEndpoint, appLogger)
	a.onClose(func(ctx context.Context) { shutdownTracer(ctx, tp, appLogger) })

	m := metrics.NewMetricsManager(strings.ReplaceAll(cfg.ServiceName, "-", "_"))

	a.mongoClient, err = mongodb.Connect(cfg.Mongo, appLogger)
	if err != nil {
		return nil, fmt.Errorf("connect to MongoDB: %w", err)
	}
	a.onClose(func(ctx context.Context) {
		if err := a.mongoClient.Disconnect(ctx); err != nil {
			appLogger.Error("Error disconnecting from MongoDB", zap.Error(err))
			return
		}
		appLogger.Info("MongoDB connection closed")
	})
	db := a.mongoClient.Database(cfg.Mongo.Database)

	itemRepo, err := mongodb.NewItemRepository(db, appLogger)
	if err != nil {
		return nil, err
	}
	categoryRepo, err := mongodb.NewCategoryRepository(db, appLogger)
	if err != nil {
		return nil, err
	}
	notificationRepo, err := mongodb.NewNotificationRepository(db, appLogger)
	if err != nil {
		return nil, err
	}
	profileRepo, err := mongodb.NewProfileRepository(db, appLogger)
	if err != nil {
		return nil, err
	}
	statsRepo := mongodb.NewStatsRepository(db, appLogger)
	txManager := mongodb.NewTxManager(a.mongoClient, appLogger)
	appLogger.Info("Repositories initialized")

	var itemCache domain.ItemCache
	if cfg.Redis.Enabled {
		client, err := rediscache.NewRedisClient(cfg.Redis, appLogger)
		if err != nil {
			return nil, fmt.Errorf("connect to Redis: %w", err)
		}
		a.onClose(func(context.Context) { closeRedis(client, appLogger) })
		itemCache = rediscache.NewItemCache(client, mongodb.ItemCodec{}, cfg.Redis.ItemTTL, appLogger)
	}

	var publisher domain.EventPublisher
	if cfg.NATS.Enabled {
		nc, err := natsadapter.NewConnection(cfg.NATS, cfg.ServiceName, appLogger)
		if err != nil {
			return nil, fmt.Errorf("connect to NATS: %w", err)
		}
		pub, err := natsadapter.NewPublisher(nc, appLogger)
		if err != nil {
			nc.Close()
			return nil, err
		}
		a.onClose(func(context.Context) {
			pub.Close()
			appLogger.Info("NATS connection closed")
		})
		publisher = pub
	}

	var mailer domain.Mailer
	if cfg.SMTP.Enabled {
		smtpMailer, err := email.NewSMTPMailer(cfg.SMTP, appLogger)
		if err != nil {
			return nil, fmt.Errorf("configure SMTP: %w", err)
		}
		mailer = smtpMailer
	}

	store, err := storage.New(cfg.Storage, m, appLogger)
	if err != nil {
		return nil, fmt.Errorf("configure image storage: %w", err)
	}
	spooler, err := upload.NewSpooler(cfg.Upload, appLogger)
	if err != nil {
		return nil, err
	}

	itemUC := usecase.NewItemUsecase(itemRepo, categoryRepo, store, itemCache, publisher, m, appLogger)
	moderationUC := usecase.NewModerationUsecase(itemRepo, notificationRepo, profileRepo, mailer, itemCache, publisher, m, appLogger)
	categoryUC := usecase.NewCategoryUsecase(categoryRepo, itemRepo, txManager, store, itemCache, publisher, m, appLogger)
	statsUC := usecase.NewStatsUsecase(statsRepo, appLogger)
	notificationUC := usecase.NewNotificationUsecase(notificationRepo, appLogger)
	profileUC := usecase.NewProfileUsecase(profileRepo, store, appLogger)
	appLogger.Info("Usecases initialized")

	mux := router.New(router.Handlers{
		Items:         handler.NewItemHandler(itemUC, moderationUC, statsUC, spooler, appLogger),
		Categories:    handler.NewCategoryHandler(categoryUC, statsUC, spooler, appLogger),
		Notifications: handler.NewNotificationHandler(notificationUC, appLogger),
		Profiles:      handler.NewProfileHandler(profileUC, spooler, appLogger),
		Health:        handler.Health(func(r *http.Request) error { return a.ping(r.Context()) }),
	}, middleware.NewAuth(cfg.Auth.JWTSecret, cfg.Auth.CookieName, appLogger), m, appLogger)

	a.httpServer = &http.Server{
		Addr:         ":" + cfg.HTTP.Port,
		Handler:      mux,
		ReadTimeout:  cfg.HTTP.ReadTimeout,
		WriteTimeout: cfg.HTTP.WriteTimeout,
	}
	a.metricsServer = metrics.NewServer(cfg.Telemetry.MetricsPort, appLogger, m.Registry)
	if cfg.GRPC.HealthPort != "" {
		a.health = grpcadapter.NewHealthServer(cfg.ServiceName, appLogger)
	}
	a.scheduler = scheduler.New(cfg.Scheduler, cfg.Upload.TempTTL, itemUC, spooler, appLogger)
	return a, nil
}

func (a *App) onClose(fn func(ctx context.Context)) {
	a.closer = append(a.closer, fn)
}

// close releases resources in reverse order of acquisition.
func (a *App) close(ctx context.Context) {
	for k := len(a.closer) - 1; k >= 0; k-- {
		a.closer[k](ctx)
	}
	a.closer = nil
}

func (a *App) ping(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	return a.mongoClient.Ping(ctx, readpref.Primary())
}

// Run serves until SIGINT or SIGTERM, then shuts everything down.
func (a *App) Run() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var lis net.Listener
	if a.health != nil {
		var err error
		if lis, err = net.Listen("tcp", ":"+a.cfg.GRPC.HealthPort); err != nil {
			a.close(context.Background())
			return fmt.Errorf("listen gRPC health port: %w", err)
		}
	}

	errCh := make(chan error, 2)
	var wg sync.WaitGroup

	go func() {
		a.log.Info("Starting HTTP server", zap.String("addr", a.httpServer.Addr))
		if err := a.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- fmt.Errorf("HTTP server: %w", err)
		}
	}()

	if a.metricsServer != nil {
		go func() {
			if err := a.metricsServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				a.log.Error("Metrics server failed", zap.Error(err))
			}
		}()
	}

	if a.health != nil {
		go func() {
			if err := a.health.Serve(lis); err != nil {
				errCh <- fmt.Errorf("gRPC health server: %w", err)
			}
		}()
		wg.Add(1)
		go func() {
			defer wg.Done()
			a.health.Watch(ctx, healthInterval, a.ping)
		}()
	}

	wg.Add(1)
	go func() {
		defer wg.Done()
		a.scheduler.Run(ctx)
	}()

	var runErr error
	select {
	case <-ctx.Done():
		a.log.Info("Received shutdown signal, shutting down")
	case runErr = <-errCh:
		a.log.Error("Server failed, shutting down", zap.Error(runErr))
		stop()
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), a.cfg.HTTP.ShutdownTimeout)
	defer cancel()

	if a.health != nil {
		a.health.GracefulStop()
	}
	if err := a.httpServer.Shutdown(shutdownCtx); err != nil {
		a.log.Error("HTTP server shutdown failed", zap.Error(err))
	} else {
		a.log.Info("HTTP server stopped")
	}
	if a.metricsServer != nil {
		if err := a.metricsServer.Shutdown(shutdownCtx); err != nil {
			a.log.Error("Metrics server shutdown failed", zap.Error(err))
		}
	}
	wg.Wait()

	a.close(shutdownCtx)
	a.log.Info("Application shut down")
	_ = a.log.Sync()
	return runErr
}

func shutdownTracer(ctx context.Context, tp *sdktrace.TracerProvider, log *logger.Logger) {
	if err := tp.Shutdown(ctx); err != nil {
		log.Error("Error shutting down tracer provider", zap.Error(err))
	}
}

func closeRedis(client *redis.Client, log *logger.Logger) {
	if err := client.Close(); err != nil {
		log.Error("Error closing Redis client", zap.Error(err))
		return
	}
	log.Info("Redis client closed")
}
