package main

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"

	"github.com/dwai-labs/newsletter-generator/internal/config"
	"github.com/dwai-labs/newsletter-generator/internal/content"
	"github.com/dwai-labs/newsletter-generator/internal/elasticsearch"
	"github.com/dwai-labs/newsletter-generator/internal/events"
	"github.com/dwai-labs/newsletter-generator/internal/gemini"
	"github.com/dwai-labs/newsletter-generator/internal/generator"
	"github.com/dwai-labs/newsletter-generator/internal/logger"
	"github.com/dwai-labs/newsletter-generator/internal/page"
	"github.com/dwai-labs/newsletter-generator/internal/pipeline"
	"github.com/dwai-labs/newsletter-generator/internal/render"
	"github.com/dwai-labs/newsletter-generator/internal/retry"
	"github.com/dwai-labs/newsletter-generator/internal/topics"
)

func main() {
	log := logger.New("generator")
	cfg, err := config.LoadGenerator()
	if err != nil {
		log.Error("load config", slog.Any("err", err))
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
	defer stop()

	res, err := run(ctx, log, cfg)
	if err != nil {
		log.Error("run failed", slog.Any("err", err))
		stop()
		os.Exit(1)
	}

	if res.NoContent() {
		log.Info("no articles generated today", slog.Int("selected", res.Selected))
		return
	}
	log.Info("run completed",
		slog.Int("generated", res.Generated),
		slog.Int("persisted", res.Persisted),
		slog.Bool("page_written", res.PageWritten),
	)
}

func run(ctx context.Context, log *slog.Logger, cfg *config.Generator) (pipeline.Result, error) {
	runID := uuid.NewString()
	log = log.With(slog.String("source", cfg.TopicSource))

	c, err := content.Load(cfg.ContentFile)
	if err != nil {
		return pipeline.Result{}, err
	}

	renderer, err := render.New(c.Author, c.Emojis, c.Gradients)
	if err != nil {
		return pipeline.Result{}, err
	}

	policy := retry.Policy{
		MaxAttempts: cfg.RetryAttempts,
		Backoff:     retry.Linear(cfg.RetryBackoff),
		Retryable:   retry.RateLimited,
		Sleep:       retry.SleepContext,
	}
	gen := generator.New(gemini.New(cfg.GeminiBaseURL, cfg.GeminiAPIKey, cfg.GeminiTimeout), cfg.GeminiModel, policy, log)

	deps := pipeline.Deps{
		Generator: gen,
		Renderer:  renderer,
		Page:      page.NewUpdater(cfg.PagePath, cfg.StrictPage),
		Log:       log,
	}

	switch cfg.TopicSource {
	case config.SourceFeed:
		if len(c.Feeds) == 0 {
			return pipeline.Result{}, errors.New("feed source selected but content has no feeds")
		}
		deps.Feed = topics.NewFeed(c.Feeds, c.Keywords, cfg.FeedTimeout, log)
	default:
		deps.Topics = topics.NewStatic(c.Topics, nil)
	}

	if cfg.PersistEnabled {
		esClient, err := elasticsearch.New(elasticsearch.Config{
			Addr:   cfg.ElasticsearchAddr,
			Index:  cfg.ElasticsearchIndex,
			APIKey: cfg.ElasticsearchAPIKey,
		}, log)
		if err != nil {
			return pipeline.Result{}, err
		}

		setupCtx, cancel := context.WithTimeout(ctx, 15*time.Second)
		err = esClient.EnsurePipeline(setupCtx)
		cancel()
		if err != nil {
			return pipeline.Result{}, err
		}
		deps.Store = esClient
	}

	if len(cfg.KafkaBrokers) > 0 {
		pub := events.NewPublisher(cfg.KafkaBrokers, cfg.KafkaTopic)
		defer func() {
			if err := pub.Close(); err != nil {
				log.Warn("close event publisher", slog.Any("err", err))
			}
		}()
		deps.Events = pub
	}

	p, err := pipeline.New(pipeline.Options{
		RunID:        runID,
		Source:       cfg.TopicSource,
		Count:        cfg.TopicCount,
		WordCount:    cfg.WordCount,
		ExcerptLimit: cfg.ExcerptLimit,
		Persona:      c.Persona,
	}, deps)
	if err != nil {
		return pipeline.Result{}, err
	}

	log.Info("run started",
		slog.String("run_id", runID),
		slog.String("model", cfg.GeminiModel),
		slog.String("page", cfg.PagePath),
		slog.Bool("persist", cfg.PersistEnabled),
	)
	return p.Run(ctx)
}
