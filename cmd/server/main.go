package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	billingapp "github.com/billing/backend/internal/application/billing"
	"github.com/billing/backend/internal/domain/shared"
	"github.com/billing/backend/internal/infrastructure/cache"
	"github.com/billing/backend/internal/infrastructure/config"
	"github.com/billing/backend/internal/infrastructure/event"
	"github.com/billing/backend/internal/infrastructure/logger"
	"github.com/billing/backend/internal/infrastructure/persistence"
	"github.com/billing/backend/internal/infrastructure/scheduler"
	"github.com/billing/backend/internal/infrastructure/telemetry"
	"go.uber.org/zap"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	// Initialize logger
	log, err := logger.New(&logger.Config{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
		Output: cfg.Log.Output,
	})
	if err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}
	defer func() {
		_ = logger.Sync(log)
	}()

	log.Info("Starting billing backend",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
	)

	ctx := context.Background()

	// Initialize tracing
	tracerProvider, err := telemetry.NewTracerProvider(ctx, telemetry.Config{
		Enabled:           cfg.Telemetry.Enabled,
		CollectorEndpoint: cfg.Telemetry.CollectorEndpoint,
		SamplingRatio:     cfg.Telemetry.SamplingRatio,
		ServiceName:       cfg.Telemetry.ServiceName,
		Insecure:          cfg.Telemetry.Insecure,
	}, log)
	if err != nil {
		log.Fatal("Failed to initialize tracer provider", zap.Error(err))
	}

	// Create GORM logger backed by zap
	gormLogLevel := logger.MapGormLogLevel(cfg.Log.Level)
	gormLog := logger.NewGormLogger(log, gormLogLevel)

	// Initialize database connection with custom logger
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
		dbTraceCfg := telemetry.DefaultDBTracingConfig()
		dbTraceCfg.Enabled = true
		dbTraceCfg.DBName = cfg.Database.DBName
		if err := telemetry.RegisterDBTracing(db.DB, dbTraceCfg, log); err != nil {
			log.Fatal("Failed to register database tracing", zap.Error(err))
		}
	}

	// Initialize repositories
	installmentRepo := persistence.NewGormInstallmentRepository(db.DB)

	// Initialize event bus
	eventBus := event.NewInMemoryEventBus(log)
	eventBus.Subscribe(newEventLogger(log))
	if err := eventBus.Start(ctx); err != nil {
		log.Fatal("Failed to start event bus", zap.Error(err))
	}

	// Initialize cache invalidation. Fall back to a no-op publisher when
	// redis is not reachable so a single instance can still run.
	var invalidator billingapp.CacheInvalidator
	redisInvalidator, err := cache.NewRedisScheduleInvalidator(cfg.Redis,
		cache.WithInvalidatorLogger(log),
	)
	if err != nil {
		log.Warn("Redis unavailable, schedule invalidation disabled", zap.Error(err))
		invalidator = cache.NoopInvalidator{}
	} else {
		invalidator = redisInvalidator
		defer func() {
			if err := redisInvalidator.Close(); err != nil {
				log.Error("Error closing invalidator", zap.Error(err))
			}
		}()

		// Listen for invalidations published by other instances
		go func() {
			err := redisInvalidator.Subscribe(ctx, func(msg cache.InvalidationMessage) {
				log.Debug("schedule invalidated",
					zap.String("scope", string(msg.Scope)),
					zap.String("id", msg.ID.String()),
				)
			})
			if err != nil {
				log.Error("Invalidation subscription ended", zap.Error(err))
			}
		}()
	}

	// Recently cleared payments are shielded from the overdue sweep for a
	// short window so the clear is not immediately overwritten.
	clearGuard := cache.NewInMemoryClearGuard(
		cache.WithGuardWindow(cfg.Sweep.ClearGuardWindow),
	)

	// The daemon drives the installment sweep; client and contract writes
	// come through the application services embedded by the caller.
	clock := shared.SystemClock{}
	installmentService := billingapp.NewInstallmentService(installmentRepo, eventBus, invalidator, clearGuard, clock, log)

	// Start the overdue sweep scheduler
	sweepScheduler, err := scheduler.NewOverdueSweepScheduler(installmentService, log, scheduler.OverdueSweepSchedulerConfig{
		Enabled:      cfg.Sweep.Enabled,
		Interval:     cfg.Sweep.Interval,
		SweepTimeout: 5 * time.Minute,
	})
	if err != nil {
		log.Fatal("Failed to create sweep scheduler", zap.Error(err))
	}
	if err := sweepScheduler.Start(ctx); err != nil {
		log.Fatal("Failed to start sweep scheduler", zap.Error(err))
	}

	log.Info("Billing backend started")

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("Shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := sweepScheduler.Stop(shutdownCtx); err != nil {
		log.Error("Error stopping sweep scheduler", zap.Error(err))
	}
	if err := eventBus.Stop(shutdownCtx); err != nil {
		log.Error("Error stopping event bus", zap.Error(err))
	}
	if err := tracerProvider.Shutdown(shutdownCtx); err != nil {
		log.Error("Error shutting down tracer provider", zap.Error(err))
	}

	log.Info("Billing backend exited gracefully")
}

// eventLogger logs every published domain event for auditability
type eventLogger struct {
	logger *zap.Logger
}

func newEventLogger(log *zap.Logger) *eventLogger {
	return &eventLogger{logger: log.Named("events")}
}

func (h *eventLogger) Handle(ctx context.Context, e shared.DomainEvent) error {
	h.logger.Info("domain event",
		zap.String("event_type", e.EventType()),
		zap.String("aggregate_id", e.AggregateID().String()),
	)
	return nil
}

// EventTypes returns nil so the handler receives all events
func (h *eventLogger) EventTypes() []string {
	return nil
}
