package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/uptrace/opentelemetry-go-extra/otelgorm"
	"go.uber.org/zap"

	leasingapp "github.com/polarisaistudio/tenant-prediction/internal/application/leasing"
	retentionapp "github.com/polarisaistudio/tenant-prediction/internal/application/retention"
	scoringapp "github.com/polarisaistudio/tenant-prediction/internal/application/scoring"
	"github.com/polarisaistudio/tenant-prediction/internal/domain/retention"
	"github.com/polarisaistudio/tenant-prediction/internal/domain/scoring"
	"github.com/polarisaistudio/tenant-prediction/internal/domain/shared"
	"github.com/polarisaistudio/tenant-prediction/internal/infrastructure/auth"
	"github.com/polarisaistudio/tenant-prediction/internal/infrastructure/cache"
	"github.com/polarisaistudio/tenant-prediction/internal/infrastructure/classifier"
	"github.com/polarisaistudio/tenant-prediction/internal/infrastructure/config"
	"github.com/polarisaistudio/tenant-prediction/internal/infrastructure/logger"
	"github.com/polarisaistudio/tenant-prediction/internal/infrastructure/notification"
	"github.com/polarisaistudio/tenant-prediction/internal/infrastructure/persistence"
	"github.com/polarisaistudio/tenant-prediction/internal/infrastructure/scheduler"
	"github.com/polarisaistudio/tenant-prediction/internal/infrastructure/telemetry"
	"github.com/polarisaistudio/tenant-prediction/internal/interfaces/http/handler"
	"github.com/polarisaistudio/tenant-prediction/internal/interfaces/http/router"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

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
		_ = logger.Sync(log)
	}()

	log.Info("Starting tenant churn prediction service",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("port", cfg.App.Port),
	)

	// Telemetry first so spans and metrics cover startup work.
	ctx := context.Background()
	tracerProvider, err := telemetry.NewTracerProvider(ctx, telemetry.Config{
		Enabled:           cfg.Telemetry.Enabled,
		CollectorEndpoint: cfg.Telemetry.CollectorEndpoint,
		SamplingRatio:     cfg.Telemetry.SamplingRatio,
		ServiceName:       cfg.Telemetry.ServiceName,
		Insecure:          cfg.Telemetry.Insecure,
	}, log)
	if err != nil {
		log.Fatal("Failed to initialize tracing", zap.Error(err))
	}
	defer func() {
		if err := tracerProvider.Shutdown(context.Background()); err != nil {
			log.Error("Error shutting down tracer provider", zap.Error(err))
		}
	}()

	meterProvider, err := telemetry.NewMeterProvider(ctx, telemetry.MetricsConfig{
		Enabled:           cfg.Telemetry.Enabled,
		CollectorEndpoint: cfg.Telemetry.CollectorEndpoint,
		ServiceName:       cfg.Telemetry.ServiceName,
		Insecure:          cfg.Telemetry.Insecure,
	}, log)
	if err != nil {
		log.Fatal("Failed to initialize metrics", zap.Error(err))
	}
	defer func() {
		if err := meterProvider.Shutdown(context.Background()); err != nil {
			log.Error("Error shutting down meter provider", zap.Error(err))
		}
	}()

	gormLogLevel := logger.MapGormLogLevel(cfg.Log.Level)
	gormLog := logger.NewGormLogger(log, gormLogLevel, cfg.Telemetry.DBSlowQueryThresh)

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

	if cfg.Telemetry.Enabled && cfg.Telemetry.DBTraceEnabled {
		if err := db.DB.Use(otelgorm.NewPlugin()); err != nil {
			log.Error("Failed to enable database tracing", zap.Error(err))
		} else {
			log.Info("Database query tracing enabled")
		}
	}

	// Repositories
	leaseRepo := persistence.NewGormLeaseRepository(db.DB)
	tenantRepo := persistence.NewGormTenantRepository(db.DB)
	propertyRepo := persistence.NewGormPropertyRepository(db.DB)
	activityRepo := persistence.NewGormActivityRepository(db.DB)
	marketRepo := persistence.NewGormMarketRepository(db.DB)
	predictionRepo := persistence.NewGormPredictionRepository(db.DB)
	workflowRepo := persistence.NewGormWorkflowRepository(db.DB)
	actionRepo := persistence.NewGormActionRepository(db.DB)

	// Classifier client
	classifierClient, err := classifier.NewHTTPClient(&classifier.Config{
		BaseURL:       cfg.Classifier.BaseURL,
		Timeout:       cfg.Classifier.Timeout,
		MaxRetries:    cfg.Classifier.MaxRetries,
		RetryBackoff:  cfg.Classifier.RetryBackoff,
		ModelVersion:  cfg.Classifier.ModelVersion,
		HealthTimeout: cfg.Classifier.HealthTimeout,
	})
	if err != nil {
		log.Fatal("Failed to configure classifier client", zap.Error(err))
	}

	// Distributed lease lock, Redis with in-memory fallback outside production
	lockFactory := cache.NewLeaseLockFactory(cfg.Redis,
		cache.WithLogger(log),
		cache.WithInMemoryFallback(cfg.App.Env != "production"),
	)
	leaseLock, err := lockFactory.CreateLock()
	if err != nil {
		log.Fatal("Failed to create lease lock", zap.Error(err))
	}

	// Application services
	scoreService := scoringapp.NewScoreService(
		leaseRepo, tenantRepo, propertyRepo, activityRepo, marketRepo,
		predictionRepo, classifierClient,
		scoring.GraderConfig{
			HighThreshold:   cfg.Risk.HighThreshold,
			MediumThreshold: cfg.Risk.MediumThreshold,
		},
		log,
	)

	planCfg := retention.DefaultPlanConfig()
	planCfg.HighResponseWindow = cfg.Retention.HighResponseWindow
	planCfg.MediumEngagementWindow = cfg.Retention.MediumEngagementWindow
	planCfg.EstimatedTurnoverCost = decimal.NewFromFloat(cfg.Retention.EstimatedTurnoverCost)
	planCfg.RiskMitigationPerPoint = decimal.NewFromFloat(cfg.Retention.RiskMitigationPerPoint)

	incentiveCfg := retention.IncentiveConfig{
		DiscountScoreFloor: cfg.Retention.DiscountScoreFloor,
		CreditScoreFloor:   cfg.Retention.CreditScoreFloor,
		DiscountPct:        cfg.Retention.DiscountPercent / 100,
		DiscountMonths:     cfg.Retention.DiscountMonths,
		CreditAmount:       decimal.NewFromFloat(cfg.Retention.CreditAmount),
		GiftCardAmount:     decimal.NewFromFloat(cfg.Retention.GiftCardAmount),
		ExpirationDays:     int(cfg.Retention.IncentiveExpiry.Hours() / 24),
	}

	workflowService := retentionapp.NewWorkflowService(
		workflowRepo, actionRepo, leaseRepo, tenantRepo,
		notification.NewLogNotifier(log),
		notification.NewLogContactScheduler(log),
		notification.NewRecordingResponseMonitor(),
		leaseLock,
		planCfg,
		incentiveCfg,
		retentionapp.WorkflowServiceConfig{
			LeaseLockTTL: cfg.Retention.LeaseLockTTL,
			Retry: shared.RetryPolicy{
				MaxAttempts: cfg.Retention.ActionMaxAttempts,
				BaseBackoff: cfg.Retention.ActionRetryBackoff,
				MaxBackoff:  10 * cfg.Retention.ActionRetryBackoff,
			},
		},
		log,
	)

	scanService := scoringapp.NewScanService(
		leaseRepo, scoreService, workflowService,
		scoringapp.ScanConfig{
			WindowDays:  cfg.Scanner.WindowDays,
			Concurrency: cfg.Scanner.Concurrency,
		},
		log,
	)

	roiService := retentionapp.NewROIService(
		workflowRepo, actionRepo,
		decimal.NewFromFloat(cfg.Retention.EstimatedTurnoverCost),
		log,
	)

	leaseService := leasingapp.NewLeaseService(leaseRepo, log)

	// Domain metrics with periodic gauge collection
	var riskMetrics *telemetry.RiskMetrics
	if meterProvider.IsEnabled() {
		riskMetrics, err = telemetry.NewRiskMetrics(telemetry.RiskMetricsConfig{
			Meter:            meterProvider.Meter("tenant-prediction"),
			Logger:           log,
			SnapshotProvider: persistence.NewRiskSnapshotAdapter(db.DB),
		})
		if err != nil {
			log.Fatal("Failed to initialize domain metrics", zap.Error(err))
		}
		riskMetrics.StartPeriodicCollection(ctx, 5*time.Minute)
		defer riskMetrics.Stop()
	}

	// Periodic scan scheduler
	if cfg.Scheduler.Enabled {
		scanScheduler, err := scheduler.NewScanScheduler(scanService, workflowService, log, scheduler.ScanSchedulerConfig{
			Enabled:        cfg.Scheduler.Enabled,
			ScanInterval:   cfg.Scheduler.ScanInterval,
			ResumeInterval: cfg.Scheduler.ResumeInterval,
			JobTimeout:     cfg.Scheduler.JobTimeout,
		})
		if err != nil {
			log.Fatal("Invalid scheduler configuration", zap.Error(err))
		}
		scanScheduler.SetMetrics(riskMetrics)
		if err := scanScheduler.Start(context.Background()); err != nil {
			log.Fatal("Failed to start scan scheduler", zap.Error(err))
		}
		defer func() {
			stopCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
			defer cancel()
			if err := scanScheduler.Stop(stopCtx); err != nil {
				log.Error("Error stopping scan scheduler", zap.Error(err))
			}
		}()
		log.Info("Scan scheduler started",
			zap.Duration("scan_interval", cfg.Scheduler.ScanInterval),
			zap.Duration("resume_interval", cfg.Scheduler.ResumeInterval),
		)
	}

	if cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	jwtService := auth.NewJWTService(cfg.JWT)

	riskHandler := handler.NewRiskHandler(scoreService, scanService, log)
	riskHandler.SetMetrics(riskMetrics)
	retentionHandler := handler.NewRetentionHandler(workflowService, roiService, scoreService, log)
	retentionHandler.SetMetrics(riskMetrics)

	engine := router.New(router.Config{
		Logger:           log,
		JWTService:       jwtService,
		AuthEnabled:      cfg.JWT.Secret != "",
		TracingEnabled:   cfg.Telemetry.Enabled,
		ServiceName:      cfg.Telemetry.ServiceName,
		SystemHandler:    handler.NewSystemHandler(db.DB, classifierClient, log),
		RiskHandler:      riskHandler,
		RetentionHandler: retentionHandler,
		LeaseHandler:     handler.NewLeaseHandler(leaseService, log),
	})

	server := &http.Server{
		Addr:           ":" + cfg.App.Port,
		Handler:        engine,
		ReadTimeout:    cfg.HTTP.ReadTimeout,
		WriteTimeout:   cfg.HTTP.WriteTimeout,
		IdleTimeout:    cfg.HTTP.IdleTimeout,
		MaxHeaderBytes: cfg.HTTP.MaxHeaderBytes,
	}

	go func() {
		log.Info("HTTP server listening", zap.String("addr", server.Addr))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("HTTP server error", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("Shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error("Forced shutdown", zap.Error(err))
	}
	log.Info("Server exited")
}
