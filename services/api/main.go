package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/thejerf/suture/v4"
	"go.uber.org/zap"

	"github.com/02loveslollipop/library-occupancy/services/api/config"
	"github.com/02loveslollipop/library-occupancy/services/api/db"
	httpserver "github.com/02loveslollipop/library-occupancy/services/api/http"
	"github.com/02loveslollipop/library-occupancy/services/api/logging"
	"github.com/02loveslollipop/library-occupancy/services/api/metrics"
	"github.com/02loveslollipop/library-occupancy/services/api/snapshot"
)

func main() {
	if err := run(); err != nil {
		log.Fatalf("occupancy api failed: %v", err)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("config error: %w", err)
	}

	logger, err := logging.New(cfg.LogLevel, cfg.LogFormat, "occupancy-api")
	if err != nil {
		return fmt.Errorf("logger error: %w", err)
	}
	defer func() { _ = logger.Sync() }()

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	store, err := db.New(ctx, cfg.DatabaseURL, db.Options{
		Table:            cfg.ReadingsTable,
		PersonsColumn:    cfg.PersonsColumn,
		TimestampColumn:  cfg.TimestampColumn,
		QueryTimeout:     cfg.QueryTimeout,
		BreakerThreshold: cfg.BreakerThreshold,
		BreakerTimeout:   cfg.BreakerTimeout,
		Logger:           logger,
	})
	if err != nil {
		return fmt.Errorf("db connection error: %w", err)
	}
	defer store.Close()

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.New(reg)

	opts := snapshot.Options{
		Limit:   cfg.HistoryLimit,
		Logger:  logger,
		Metrics: m,
	}
	if cfg.RedisURL != "" {
		redisOpts, err := redis.ParseURL(cfg.RedisURL)
		if err != nil {
			return fmt.Errorf("invalid REDIS_URL: %w", err)
		}
		client := redis.NewClient(redisOpts)
		defer func() { _ = client.Close() }()
		opts.Publisher = snapshot.NewMirror(snapshot.NewRedisKVStore(client), 3*cfg.RefreshInterval, logger)
		logger.Info("snapshot mirror enabled", zap.String("key", snapshot.MirrorKey))
	}

	cache := snapshot.NewCache()
	refresher, err := snapshot.NewRefresher(store, cache, opts)
	if err != nil {
		return fmt.Errorf("refresher setup error: %w", err)
	}

	scheduler := snapshot.NewScheduler("occupancy-refresher", cfg.RefreshInterval, func(ctx context.Context) {
		_ = refresher.Refresh(ctx)
	}, logger)

	srv := httpserver.New(cfg, httpserver.Deps{
		Snapshots: cache,
		Refresher: refresher,
		DB:        store,
		Metrics:   m,
		Gatherer:  reg,
		Logger:    logger,
	})

	root := suture.New("occupancy-api", suture.Spec{
		EventHook: func(e suture.Event) {
			logger.Warn("supervisor event", zap.String("event", e.String()), zap.Any("details", e.Map()))
		},
		FailureThreshold: 5,
		FailureDecay:     30,
		FailureBackoff:   15 * time.Second,
		Timeout:          10 * time.Second,
	})
	root.Add(scheduler)
	root.Add(srv)

	logger.Info("occupancy api starting",
		zap.String("addr", cfg.ListenAddr()),
		zap.Duration("refresh_interval", cfg.RefreshInterval),
		zap.Int("history_limit", cfg.HistoryLimit),
		zap.Bool("refresh_on_read", cfg.RefreshOnRead),
	)

	if err := root.Serve(ctx); err != nil && !errors.Is(err, context.Canceled) {
		return fmt.Errorf("supervisor stopped: %w", err)
	}
	logger.Info("occupancy api stopped")
	return nil
}
