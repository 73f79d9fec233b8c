package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	catalogapp "github.com/vunguard/ledger/internal/catalog/application"
	catalogdomain "github.com/vunguard/ledger/internal/catalog/domain"
	catalogcache "github.com/vunguard/ledger/internal/catalog/infrastructure/cache"
	"github.com/vunguard/ledger/internal/catalog/infrastructure/messaging"
	catalogmysql "github.com/vunguard/ledger/internal/catalog/infrastructure/persistence/mysql"
	cataloghttp "github.com/vunguard/ledger/internal/catalog/interfaces/http"
	ledgerapp "github.com/vunguard/ledger/internal/ledger/application"
	ledgerdomain "github.com/vunguard/ledger/internal/ledger/domain"
	"github.com/vunguard/ledger/internal/ledger/infrastructure/gateway"
	ledgermysql "github.com/vunguard/ledger/internal/ledger/infrastructure/persistence/mysql"
	ledgerhttp "github.com/vunguard/ledger/internal/ledger/interfaces/http"
	notificationapp "github.com/vunguard/ledger/internal/notification/application"
	notificationdomain "github.com/vunguard/ledger/internal/notification/domain"
	notificationmysql "github.com/vunguard/ledger/internal/notification/infrastructure/persistence/mysql"
	"github.com/vunguard/ledger/internal/notification/infrastructure/sender"
	notificationhttp "github.com/vunguard/ledger/internal/notification/interfaces/http"
	"github.com/vunguard/ledger/pkg/cache"
	"github.com/vunguard/ledger/pkg/config"
	"github.com/vunguard/ledger/pkg/db"
	"github.com/vunguard/ledger/pkg/logger"
	"github.com/vunguard/ledger/pkg/metrics"
	"github.com/vunguard/ledger/pkg/middleware"
	"github.com/vunguard/ledger/pkg/mq"
	"github.com/vunguard/ledger/pkg/ratelimit"
	"golang.org/x/sync/errgroup"
)

var configPath = flag.String("config", "configs/ledgerd/config.toml", "config file path")

func main() {
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		panic(fmt.Sprintf("failed to load config: %v", err))
	}

	if err := logger.Init(logger.Config{
		Level:      cfg.Logger.Level,
		Format:     cfg.Logger.Format,
		Output:     cfg.Logger.Output,
		FilePath:   cfg.Logger.FilePath,
		MaxSize:    cfg.Logger.MaxSize,
		MaxBackups: cfg.Logger.MaxBackups,
		MaxAge:     cfg.Logger.MaxAge,
		Compress:   cfg.Logger.Compress,
		WithCaller: cfg.Logger.WithCaller,
	}); err != nil {
		panic(fmt.Sprintf("failed to init logger: %v", err))
	}

	ctx := context.Background()

	m := metrics.New(cfg.ServiceName)
	if err := m.Register(); err != nil {
		logger.Error(ctx, "failed to register metrics", "error", err)
		os.Exit(1)
	}

	database, err := db.Init(db.Config{
		Driver:             cfg.Database.Driver,
		DSN:                cfg.Database.DSN,
		MaxOpenConns:       cfg.Database.MaxOpenConns,
		MaxIdleConns:       cfg.Database.MaxIdleConns,
		ConnMaxLifetime:    cfg.Database.ConnMaxLifetime,
		LogEnabled:         cfg.Database.LogEnabled,
		SlowQueryThreshold: cfg.Database.SlowQueryThreshold,
	})
	if err != nil {
		logger.Error(ctx, "failed to connect database", "error", err)
		os.Exit(1)
	}
	defer database.Close()

	// Schema migration runs in dev only; other environments migrate
	// out of band.
	if cfg.Environment == "dev" {
		err := database.AutoMigrate(
			&ledgerdomain.Portfolio{},
			&ledgerdomain.Position{},
			&ledgerdomain.Transaction{},
			&catalogdomain.Product{},
			&notificationdomain.Notification{},
		)
		if err != nil {
			logger.Error(ctx, "failed to migrate database", "error", err)
			os.Exit(1)
		}
	}

	// Catalog wiring. The redis read cache is optional.
	var productRepo catalogdomain.ProductRepository = catalogmysql.NewProductRepository(database.DB)
	var redisCache *cache.RedisCache
	if cfg.Redis.Enabled {
		redisCache, err = cache.New(cache.Config{
			Host:         cfg.Redis.Host,
			Port:         cfg.Redis.Port,
			Password:     cfg.Redis.Password,
			DB:           cfg.Redis.DB,
			MaxPoolSize:  cfg.Redis.MaxPoolSize,
			ConnTimeout:  cfg.Redis.ConnTimeout,
			ReadTimeout:  cfg.Redis.ReadTimeout,
			WriteTimeout: cfg.Redis.WriteTimeout,
		})
		if err != nil {
			logger.Error(ctx, "failed to init redis", "error", err)
			os.Exit(1)
		}
		defer redisCache.Close()
		productRepo = catalogcache.NewCachedProductRepository(productRepo, redisCache)
	}

	// Kafka backs both catalog events and notification push when enabled.
	var producer *mq.KafkaProducer
	if cfg.Kafka.Enabled {
		producer, err = mq.NewProducer(mq.KafkaConfig{
			Brokers:      cfg.Kafka.Brokers,
			MaxRetries:   cfg.Kafka.MaxRetries,
			RetryBackoff: cfg.Kafka.RetryBackoff,
		})
		if err != nil {
			logger.Error(ctx, "failed to init kafka producer", "error", err)
			os.Exit(1)
		}
		defer producer.Close()
	}

	var eventPublisher catalogdomain.EventPublisher
	if producer != nil {
		eventPublisher = messaging.NewKafkaPublisher(producer)
	}
	catalogCommands := catalogapp.NewCatalogCommandService(productRepo, eventPublisher)
	catalogQueries := catalogapp.NewCatalogQueryService(productRepo)

	// Notification wiring.
	var pushChannel notificationdomain.Sender
	switch {
	case producer != nil:
		pushChannel = sender.NewKafkaSender(producer, cfg.Kafka.Topic)
	case cfg.Notification.WebhookURL != "":
		pushChannel = sender.NewWebhookSender(cfg.Notification.WebhookURL)
	default:
		pushChannel = sender.NewMockSender()
	}
	notificationRepo := notificationmysql.NewNotificationRepository(database.DB)
	notificationService := notificationapp.NewNotificationService(notificationRepo, pushChannel, m)

	// Ledger wiring.
	ledgerRepo := ledgermysql.NewLedgerRepository(database.DB)
	catalogGateway := gateway.NewCatalogGateway(productRepo)
	notifier := gateway.NewTransactionNotifier(notificationService)
	ledgerService := ledgerapp.NewLedgerService(ledgerRepo, catalogGateway, notifier, m)

	// HTTP interface.
	gin.SetMode(gin.ReleaseMode)
	if cfg.Environment == "dev" {
		gin.SetMode(gin.DebugMode)
	}
	router := gin.New()
	router.Use(gin.Recovery(), middleware.Logging(), middleware.Metrics(m))
	if cfg.RateLimit.Enabled && redisCache != nil {
		limiter := ratelimit.NewRedisRateLimiter(redisCache.Client())
		router.Use(middleware.RateLimit(limiter, ratelimit.Limit{
			Rate:   cfg.RateLimit.Rate,
			Period: time.Duration(cfg.RateLimit.Period) * time.Second,
			Burst:  cfg.RateLimit.Burst,
		}))
	}
	router.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	ledgerhttp.NewLedgerHandler(ledgerService).RegisterRoutes(router)
	cataloghttp.NewCatalogHandler(catalogCommands, catalogQueries).RegisterRoutes(router)
	notificationhttp.NewNotificationHandler(notificationService).RegisterRoutes(router)

	httpServer := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.HTTP.Host, cfg.HTTP.Port),
		Handler:      router,
		ReadTimeout:  time.Duration(cfg.HTTP.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.HTTP.WriteTimeout) * time.Second,
	}

	var metricsServer *http.Server
	if cfg.Metrics.Enabled {
		mux := http.NewServeMux()
		mux.Handle(cfg.Metrics.Path, metrics.Handler())
		metricsServer = &http.Server{
			Addr:    metrics.ListenAddr(cfg.Metrics.Port),
			Handler: mux,
		}
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		logger.Info(gctx, "http server starting", "addr", httpServer.Addr)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return err
		}
		return nil
	})

	if metricsServer != nil {
		g.Go(func() error {
			logger.Info(gctx, "metrics server starting", "addr", metricsServer.Addr)
			if err := metricsServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				return err
			}
			return nil
		})
	}

	g.Go(func() error {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
		select {
		case <-quit:
			logger.Info(gctx, "shutdown signal received")
		case <-gctx.Done():
			logger.Info(gctx, "context cancelled, shutting down")
		}

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()

		if metricsServer != nil {
			_ = metricsServer.Shutdown(shutdownCtx)
		}
		return httpServer.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		logger.Error(ctx, "server exited with error", "error", err)
		os.Exit(1)
	}
	logger.Info(ctx, "server stopped")
}
