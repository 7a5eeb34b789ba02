package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/dwai-labs/newsletter-generator/internal/config"
	"github.com/dwai-labs/newsletter-generator/internal/elasticsearch"
	"github.com/dwai-labs/newsletter-generator/internal/logger"
	"github.com/dwai-labs/newsletter-generator/internal/retry"
)

type articlePurger interface {
	DeleteOlderThan(ctx context.Context, maxAge time.Duration, batchSize int) (int64, error)
}

func main() {
	log := logger.New("retention")
	cfg, err := config.LoadRetention()
	if err != nil {
		log.Error("load config", slog.Any("err", err))
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
	defer stop()

	esClient, err := elasticsearch.New(elasticsearch.Config{
		Addr:   cfg.ElasticsearchAddr,
		Index:  cfg.ElasticsearchIndex,
		APIKey: cfg.ElasticsearchAPIKey,
	}, log)
	if err != nil {
		log.Error("init elasticsearch", slog.Any("err", err))
		os.Exit(1)
	}

	connect := retry.Policy{
		MaxAttempts: 10,
		Backoff:     retry.FromBackOff(retry.Exponential(2*time.Second, 30*time.Second, 0.1)),
		Retryable:   retry.Always,
		Sleep:       retry.SleepContext,
	}
	err = connect.Do(ctx, func(ctx context.Context, attempt int) error {
		pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		defer cancel()
		if err := esClient.Ping(pingCtx); err != nil {
			log.Warn("elasticsearch ping failed", slog.Any("err", err), slog.Int("attempt", attempt))
			return err
		}
		return nil
	})
	if err != nil {
		if ctx.Err() != nil {
			log.Info("shutdown signal received during startup")
			return
		}
		log.Error("failed to connect to elasticsearch", slog.Any("err", err))
		os.Exit(1)
	}
	log.Info("connected to elasticsearch")

	log.Info("retention job running",
		slog.Duration("interval", cfg.Interval),
		slog.Duration("max_age", cfg.MaxAge),
	)
	loop(ctx, log, esClient, cfg)
}

func loop(ctx context.Context, log *slog.Logger, purger articlePurger, cfg *config.Retention) {
	ticker := time.NewTicker(cfg.Interval)
	defer ticker.Stop()

	runOnce(ctx, log, purger, cfg)
	for {
		select {
		case <-ctx.Done():
			log.Info("shutdown signal received")
			return
		case <-ticker.C:
			runOnce(ctx, log, purger, cfg)
		}
	}
}

func runOnce(ctx context.Context, log *slog.Logger, purger articlePurger, cfg *config.Retention) int64 {
	subCtx, cancel := context.WithTimeout(ctx, 2*time.Minute)
	defer cancel()

	deleted, err := purger.DeleteOlderThan(subCtx, cfg.MaxAge, cfg.BatchSize)
	if err != nil {
		log.Warn("retention run failed", slog.Any("err", err))
		return 0
	}

	if deleted > 0 {
		log.Info("expired articles removed", slog.Int64("deleted", deleted))
	} else {
		log.Debug("no expired articles")
	}
	return deleted
}
