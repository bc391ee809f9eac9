package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	returnsapp "github.com/returns/backend/internal/application/returns"
	syncapp "github.com/returns/backend/internal/application/sync"
	"github.com/returns/backend/internal/domain/shared"
	"github.com/returns/backend/internal/infrastructure/carrier"
	"github.com/returns/backend/internal/infrastructure/config"
	"github.com/returns/backend/internal/infrastructure/logger"
	"github.com/returns/backend/internal/infrastructure/mail"
	"github.com/returns/backend/internal/infrastructure/persistence"
	"github.com/returns/backend/internal/infrastructure/scheduler"
	"github.com/returns/backend/internal/interfaces/http/handler"
	"github.com/returns/backend/internal/interfaces/http/middleware"
	"github.com/returns/backend/internal/interfaces/http/router"
)

const version = "1.0.0"

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	// Initialize logger
	log, err := logger.New(&logger.Config{
		Level:      cfg.Log.Level,
		Format:     cfg.Log.Format,
		Output:     cfg.Log.Output,
		TimeFormat: "2006-01-02T15:04:05.000Z07:00",
	})
	if err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}
	defer func() {
		_ = log.Sync()
	}()

	log.Info("Starting returns backend",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("port", cfg.App.Port),
	)

	// Create GORM logger backed by zap
	gormLog := logger.NewGormLogger(log, logger.MapGormLogLevel(cfg.Log.Level))

	// Initialize database connection
	db, err := persistence.NewDatabaseWithLogger(&cfg.Database, gormLog)
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Error("Error closing database", zap.Error(err))
		}
	}()
	log.Info("Database connected successfully")

	// Initialize repositories
	rmaRepo := persistence.NewGormRMARepository(db.DB)
	itemRepo := persistence.NewGormItemRepository(db.DB)
	addressRepo := persistence.NewGormAddressRepository(db.DB)
	reasonRepo := persistence.NewGormReasonRepository(db.DB)
	historyRepo := persistence.NewGormHistoryRepository(db.DB)
	orderRepo := persistence.NewGormOrderRepository(db.DB)
	customerRepo := persistence.NewGormCustomerRepository(db.DB)
	queueRepo := persistence.NewGormQueueRepository(db.DB)
	settingRepo := persistence.NewGormSettingRepository(db.DB)

	clock := shared.SystemClock{}

	// Initialize application services
	historyService := returnsapp.NewHistoryService(historyRepo, log)
	returnsService := returnsapp.NewService(
		rmaRepo, itemRepo, addressRepo, reasonRepo, orderRepo, customerRepo,
		historyService, clock, cfg.Returns.PeriodDays, log,
	)
	labelService := returnsapp.NewLabelService(
		rmaRepo, addressRepo, carrier.NewProviders(log),
		cfg.Returns.DefaultCarrier, historyService, log,
	)
	syncService := syncapp.NewService(
		rmaRepo, addressRepo, queueRepo, historyService, clock,
		cfg.Sync.MaxRetries, cfg.Sync.RetryDelay, log,
	)

	// Customer mail goes out only with a configured SMTP relay
	var notifier *returnsapp.NotificationService
	if cfg.SMTP.Host != "" {
		mailer, err := mail.NewSMTPMailer(&cfg.SMTP, log)
		if err != nil {
			log.Fatal("Failed to initialize mailer", zap.Error(err))
		}
		notifier = returnsapp.NewNotificationService(mailer, historyService, cfg.Returns.ShopName, log)
		returnsService.SetNotifier(notifier)
		log.Info("Mail notifications enabled", zap.String("smtp_host", cfg.SMTP.Host))
	} else {
		log.Warn("SMTP host not configured, mail notifications disabled")
	}

	// Periodic back office sync
	if cfg.Sync.Enabled {
		var alerts scheduler.AlertSender
		if notifier != nil {
			alerts = notifier
		}
		syncScheduler := scheduler.NewSyncScheduler(syncService, settingRepo, alerts, scheduler.Config{
			Interval:   cfg.Sync.Interval,
			BatchSize:  cfg.Sync.BatchSize,
			AdminEmail: cfg.Returns.AdminEmail,
		}, clock, log)
		if err := syncScheduler.Start(context.Background()); err != nil {
			log.Fatal("Failed to start sync scheduler", zap.Error(err))
		}
		defer func() {
			stopCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			if err := syncScheduler.Stop(stopCtx); err != nil {
				log.Error("Error stopping sync scheduler", zap.Error(err))
			}
		}()
	}

	// Set Gin mode based on environment
	if cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	middleware.SetupValidator()

	engine := gin.New()

	if len(cfg.HTTP.TrustedProxies) > 0 {
		if err := engine.SetTrustedProxies(cfg.HTTP.TrustedProxies); err != nil {
			log.Warn("Failed to set trusted proxies", zap.Error(err))
		}
	}

	engine.Use(logger.RequestID())
	engine.Use(logger.Recovery(log))
	engine.Use(logger.GinMiddleware(log))
	engine.Use(middleware.BodyLimit(cfg.HTTP.MaxBodyBytes))

	// Register routes
	r := router.NewRouter(engine, router.WithAPIVersion("v1"))
	r.Register(handler.NewSystemHandler(db, version))
	r.Register(handler.NewReturnsHandler(returnsService, labelService))
	r.Register(handler.NewWawiHandler(syncService))
	r.Setup()

	// Start HTTP server
	srv := &http.Server{
		Addr:           ":" + cfg.App.Port,
		Handler:        engine,
		ReadTimeout:    cfg.HTTP.ReadTimeout,
		WriteTimeout:   cfg.HTTP.WriteTimeout,
		IdleTimeout:    cfg.HTTP.IdleTimeout,
		MaxHeaderBytes: cfg.HTTP.MaxHeaderBytes,
	}

	go func() {
		log.Info("HTTP server listening", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("HTTP server failed", zap.Error(err))
		}
	}()

	// Wait for shutdown signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("Shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("Forced shutdown", zap.Error(err))
	}
	log.Info("Server stopped")
}
