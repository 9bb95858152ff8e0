package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	payrollapp "github.com/repairshop/erp/internal/application/payroll"
	"github.com/repairshop/erp/internal/domain/payroll"
	"github.com/repairshop/erp/internal/domain/shared/valueobject"
	"github.com/repairshop/erp/internal/infrastructure/auth"
	"github.com/repairshop/erp/internal/infrastructure/cache"
	"github.com/repairshop/erp/internal/infrastructure/config"
	"github.com/repairshop/erp/internal/infrastructure/event"
	"github.com/repairshop/erp/internal/infrastructure/logger"
	"github.com/repairshop/erp/internal/infrastructure/migration"
	"github.com/repairshop/erp/internal/infrastructure/payslip"
	"github.com/repairshop/erp/internal/infrastructure/persistence"
	"github.com/repairshop/erp/internal/infrastructure/telemetry"
	"github.com/repairshop/erp/internal/interfaces/http/handler"
	"github.com/repairshop/erp/internal/interfaces/http/middleware"
	"github.com/repairshop/erp/internal/interfaces/http/router"
	"go.opentelemetry.io/otel/metric"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

const serviceVersion = "1.0.0"

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	logsProvider, err := telemetry.NewLoggerProvider(context.Background(), telemetry.LogsConfig{
		Enabled:           cfg.Telemetry.Enabled && cfg.Telemetry.LogsEnabled,
		CollectorEndpoint: cfg.Telemetry.CollectorEndpoint,
		ServiceName:       cfg.Telemetry.ServiceName,
		ServiceVersion:    serviceVersion,
		Insecure:          cfg.Telemetry.Insecure,
	})
	if err != nil {
		panic("Failed to initialize OTLP logs: " + err.Error())
	}

	log, err := logger.New(&logger.Config{
		Level:       cfg.Log.Level,
		Format:      cfg.Log.Format,
		Output:      cfg.Log.Output,
		ServiceName: cfg.App.Name,
		Tee:         []zapcore.Core{logsProvider.Core(logger.ParseLevel(cfg.Log.Level))},
	})
	if err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}
	defer func() { _ = log.Sync() }()

	log.Info("Starting payroll service",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("port", cfg.App.Port),
		zap.Bool("otlp_logs", logsProvider.IsEnabled()))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Telemetry
	tracerProvider, err := telemetry.NewTracerProvider(ctx, telemetry.Config{
		Enabled:           cfg.Telemetry.Enabled,
		CollectorEndpoint: cfg.Telemetry.CollectorEndpoint,
		SamplingRatio:     cfg.Telemetry.SamplingRatio,
		ServiceName:       cfg.Telemetry.ServiceName,
		ServiceVersion:    serviceVersion,
		Insecure:          cfg.Telemetry.Insecure,
	}, log)
	if err != nil {
		log.Fatal("Failed to initialize tracer provider", zap.Error(err))
	}
	meterProvider, err := telemetry.NewMeterProvider(ctx, telemetry.MetricsConfig{
		Enabled:           cfg.Telemetry.MetricsEnabled,
		CollectorEndpoint: cfg.Telemetry.CollectorEndpoint,
		ExportInterval:    cfg.Telemetry.MetricsInterval,
		ServiceName:       cfg.Telemetry.ServiceName,
		ServiceVersion:    serviceVersion,
		Insecure:          cfg.Telemetry.Insecure,
	}, log)
	if err != nil {
		log.Fatal("Failed to initialize meter provider", zap.Error(err))
	}
	var meter metric.Meter
	if meterProvider.IsEnabled() {
		meter = meterProvider.Meter(cfg.Telemetry.ServiceName)
	}

	// Database
	db, err := persistence.NewDatabase(&cfg.Database, log)
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	log.Info("Database connected")

	if cfg.Telemetry.DBTraceEnabled {
		plugin := telemetry.NewDBTracingPlugin(telemetry.DBTracingConfig{
			Enabled:         true,
			LogFullSQL:      cfg.Telemetry.DBLogFullSQL,
			SlowQueryThresh: cfg.Telemetry.DBSlowQueryThresh,
			DBSystem:        "postgresql",
		}, log)
		if err := plugin.RegisterOtelGorm(db.DB); err != nil {
			log.Fatal("Failed to register database tracing", zap.Error(err))
		}
	}

	if cfg.Database.AutoMigrate {
		if err := runMigrations(db, cfg.Database.MigrationsPath, log); err != nil {
			log.Fatal("Failed to apply migrations", zap.Error(err))
		}
	}

	// Event bus, with Kafka fan-out when configured
	eventBus := event.NewInMemoryEventBus(log)
	var kafkaPublisher *event.KafkaPublisher
	if cfg.Kafka.Enabled {
		kafkaPublisher = event.NewKafkaPublisher(event.NewKafkaWriter(cfg.Kafka), cfg.Kafka.Topic, log)
		eventBus.Subscribe(kafkaPublisher)
		log.Info("Kafka event publishing enabled",
			zap.Strings("brokers", cfg.Kafka.Brokers),
			zap.String("topic", cfg.Kafka.Topic))
	}
	if err := eventBus.Start(ctx); err != nil {
		log.Fatal("Failed to start event bus", zap.Error(err))
	}

	// Redis backs the generation lock and token revocation
	locker, redisClient, err := cache.NewPeriodLocker(ctx, cfg.Redis, cache.WithLogger(log))
	if err != nil {
		log.Fatal("Failed to initialize payroll generation lock", zap.Error(err))
	}

	// Application
	currency, err := valueobject.ParseCurrency(cfg.Payroll.DefaultCurrency)
	if err != nil {
		log.Fatal("Invalid default currency", zap.String("currency", cfg.Payroll.DefaultCurrency))
	}
	salaryService := payrollapp.NewSalaryService(
		persistence.NewGormSalaryRecordRepository(db.DB),
		persistence.NewGormEmployeeReader(db.DB),
		persistence.NewGormCompensationReader(db.DB),
		db.Transactor(),
		payrollapp.ServiceConfig{
			LineItemMode:        payroll.ParseParseMode(cfg.Payroll.LineItemMode),
			WorkingDaysPerMonth: cfg.Payroll.WorkingDaysPerMonth,
			DefaultCurrency:     currency,
			DefaultExchangeRate: cfg.Payroll.DefaultExchangeRate,
			GenerationLockTTL:   cfg.Payroll.GenerationLockTTL,
		},
		log,
	)
	salaryService.SetEventPublisher(eventBus)
	salaryService.SetPeriodLocker(locker)
	salaryService.SetPayslipRenderer(payslip.NewRenderer(payslip.WithCompany(cfg.App.Name)))
	if meter != nil {
		payrollMetrics, err := telemetry.NewPayrollMetrics(meter)
		if err != nil {
			log.Warn("Payroll metrics disabled", zap.Error(err))
		} else {
			salaryService.SetPayrollMetrics(payrollMetrics)
		}
	}

	// HTTP
	engine := router.NewEngine(cfg, log, router.EngineOptions{
		TracingEnabled: cfg.Telemetry.Enabled,
		ServiceName:    cfg.Telemetry.ServiceName,
		Meter:          meter,
	})

	systemHandler := handler.NewSystemHandler(cfg.App.Name, serviceVersion, db, log)
	engine.GET("/health", systemHandler.Health)
	engine.GET("/ready", systemHandler.Ready)

	jwtConfig := middleware.DefaultJWTConfig(auth.NewJWTService(cfg.JWT))
	jwtConfig.Logger = log
	if redisClient != nil {
		jwtConfig.Revocations = auth.NewRedisRevocationList(redisClient)
	}
	router.NewRouter(engine, router.WithAPIVersion("v1")).
		Use(router.APIMiddleware(cfg, jwtConfig, log)...).
		Register(handler.NewSalaryHandler(salaryService, cfg.App.Debug)).
		Setup()

	srv := &http.Server{
		Addr:           ":" + cfg.App.Port,
		Handler:        engine,
		ReadTimeout:    cfg.HTTP.ReadTimeout,
		WriteTimeout:   cfg.HTTP.WriteTimeout,
		IdleTimeout:    cfg.HTTP.IdleTimeout,
		MaxHeaderBytes: cfg.HTTP.MaxHeaderBytes,
	}

	serverErr := make(chan error, 1)
	go func() {
		log.Info("Server starting", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	select {
	case <-ctx.Done():
		log.Info("Shutting down server...")
	case err := <-serverErr:
		log.Error("Server failed", zap.Error(err))
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("Server forced to shutdown", zap.Error(err))
	}
	if err := eventBus.Stop(shutdownCtx); err != nil {
		log.Error("Error stopping event bus", zap.Error(err))
	}
	if kafkaPublisher != nil {
		if err := kafkaPublisher.Close(); err != nil {
			log.Error("Error closing Kafka writer", zap.Error(err))
		}
	}
	if redisClient != nil {
		if err := redisClient.Close(); err != nil {
			log.Error("Error closing Redis client", zap.Error(err))
		}
	}
	if err := db.Close(); err != nil {
		log.Error("Error closing database", zap.Error(err))
	}
	if err := meterProvider.Shutdown(shutdownCtx); err != nil {
		log.Error("Error shutting down meter provider", zap.Error(err))
	}
	if err := tracerProvider.Shutdown(shutdownCtx); err != nil {
		log.Error("Error shutting down tracer provider", zap.Error(err))
	}
	if err := logsProvider.Shutdown(shutdownCtx); err != nil {
		log.Error("Error shutting down logger provider", zap.Error(err))
	}

	log.Info("Server exited")
}

func runMigrations(db *persistence.Database, path string, log *zap.Logger) error {
	sqlDB, err := db.DB.DB()
	if err != nil {
		return err
	}
	m, err := migration.New(sqlDB, path, log)
	if err != nil {
		return err
	}
	// Closing the migrator would close the shared pool.
	return m.Up()
}
