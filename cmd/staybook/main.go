package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"staybook/internal/app/bootstrap"
	"staybook/internal/app/middleware"
	appoutbox "staybook/internal/app/outbox"
	"staybook/internal/app/schedule"
	"staybook/internal/app/uow"
	"staybook/internal/infra/broker/kafka"
	"staybook/internal/infra/config"
	"staybook/internal/infra/db/mongo"
	"staybook/internal/infra/db/postgres"
	ginserver "staybook/internal/infra/http/gin"
	"staybook/internal/infra/jobs"
	"staybook/internal/infra/obs"
	infraoutbox "staybook/internal/infra/outbox"
	"staybook/internal/infra/storage/memory"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("invalid configuration", "error", err)
		os.Exit(1)
	}
	logger := obs.NewLogger(cfg.Env, cfg.LogLevel)

	if err := run(ctx, cfg, logger); err != nil {
		logger.Error("staybook stopped", "error", err)
		os.Exit(1)
	}
}

// eventStore is both the sink handlers append to and the store the relay
// claims from.
type eventStore interface {
	appoutbox.Sink
	infraoutbox.Store
}

type storage struct {
	uow         uow.UoWFactory
	events      eventStore
	idempotency middleware.IdempotencyStore
	checks      map[string]obs.Check
	closers     []func(context.Context)
}

func run(ctx context.Context, cfg config.Config, logger *slog.Logger) error {
	metrics := obs.NewMetrics()

	store, err := openStorage(ctx, cfg, logger)
	defer func() {
		closeCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		for _, closeFn := range store.closers {
			closeFn(closeCtx)
		}
	}()
	if err != nil {
		return err
	}

	buses := bootstrap.NewBuses(bootstrap.Deps{
		UoW:         store.uow,
		Events:      store.events,
		Idempotency: store.idempotency,
		Policy:      cfg.Policy,
		Metrics:     metrics,
		Logger:      logger,
	})

	if len(cfg.KafkaBrokers) > 0 {
		producer, err := kafka.NewProducer(cfg.KafkaBrokers, kafka.NewConfig("staybook"))
		if err != nil {
			return err
		}
		defer producer.Close()
		worker := &infraoutbox.Worker{
			Store:       store.events,
			Producer:    producer,
			Interval:    cfg.OutboxPollInterval,
			TopicPrefix: cfg.KafkaTopicPrefix,
			Backoff:     cfg.RetryBackoff,
			Metrics:     metrics,
			Logger:      logger,
		}
		go func() {
			if err := worker.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
				logger.Error("outbox worker stopped", "error", err)
			}
		}()
		logger.Info("outbox relay started", "brokers", cfg.KafkaBrokers)
	} else {
		logger.Info("KAFKA_BROKERS empty, outbox relay disabled")
	}

	scheduler := jobs.New(ctx, time.Minute, logger)
	if err := scheduler.Register("expire-pending", cfg.ExpirySchedule, schedule.ExpirePending(buses.Commands, cfg.PendingTTL, metrics, logger)); err != nil {
		return err
	}
	scheduler.Start()
	defer scheduler.Stop()

	server := ginserver.NewServer(
		cfg,
		obs.Middleware{Logger: logger},
		metrics,
		obs.HealthHandlers{Checks: store.checks},
		ginserver.NewHandlers(buses.Commands, buses.Queries, cfg.RateDefaults(), logger),
	)

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Error("http shutdown failed", "error", err)
		}
	}()

	logger.Info("HTTP server starting", "addr", cfg.HTTPAddr)
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("http server: %w", err)
	}
	logger.Info("HTTP server stopped")
	return nil
}

func openStorage(ctx context.Context, cfg config.Config, logger *slog.Logger) (storage, error) {
	st := storage{checks: map[string]obs.Check{}}

	if cfg.DatabaseDSN != "" {
		pool, err := postgres.NewPool(ctx, cfg.DatabaseDSN, cfg.DatabaseMaxConns)
		if err != nil {
			return st, err
		}
		if err := postgres.Migrate(ctx, pool); err != nil {
			pool.Close()
			return st, err
		}
		st.uow = postgres.Factory{Pool: pool}
		st.checks["postgres"] = pool.Ping
		st.closers = append(st.closers, func(context.Context) { pool.Close() })
		logger.Info("using postgres storage")
	} else {
		st.uow = memory.NewFactory()
		logger.Warn("DB_DSN empty, bookings are kept in memory")
	}

	if cfg.MongoURI != "" {
		client, err := mongo.New(ctx, cfg.MongoURI, cfg.MongoDB)
		if err != nil {
			return st, err
		}
		st.closers = append(st.closers, func(ctx context.Context) { _ = client.Close(ctx) })
		idempotency, err := mongo.NewIdempotencyStore(ctx, client.DB, cfg.IdempotencyTTL)
		if err != nil {
			return st, err
		}
		events, err := infraoutbox.NewMongoStore(ctx, client.DB)
		if err != nil {
			return st, err
		}
		st.idempotency = idempotency
		st.events = events
		st.checks["mongo"] = client.Ping
		logger.Info("using mongo for idempotency and outbox", "database", cfg.MongoDB)
	} else {
		st.idempotency = memory.NewIdempotencyStore().WithTTL(cfg.IdempotencyTTL)
		st.events = memory.NewOutbox()
	}
	return st, nil
}
