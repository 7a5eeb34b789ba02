package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/dwai-labs/newsletter-generator/internal/config"
	"github.com/dwai-labs/newsletter-generator/internal/events"
	"github.com/dwai-labs/newsletter-generator/internal/generator"
	"github.com/dwai-labs/newsletter-generator/internal/logger"
	"github.com/dwai-labs/newsletter-generator/internal/models"
	"github.com/dwai-labs/newsletter-generator/internal/processing"
	"github.com/dwai-labs/newsletter-generator/internal/render"
)

// FeedExcerptLimit bounds the excerpt of a feed analysis.
const FeedExcerptLimit = 180

// FeedCategory labels every article analysed from a feed.
const FeedCategory = "AI & Digital Workplace"

type topicSelector interface {
	Select(k int) ([]string, error)
}

type feedFetcher interface {
	Fetch(ctx context.Context, limit int) ([]models.RawArticle, error)
}

type textGenerator interface {
	Generate(ctx context.Context, prompt string) (string, bool, error)
}

type articleStore interface {
	IndexArticle(ctx context.Context, rec models.ArticleRecord) (string, error)
}

type eventPublisher interface {
	Publish(ctx context.Context, ev events.ArticleEvent) error
}

type pageWriter interface {
	Prepend(fragments string) (bool, error)
}

// Options are the per-run settings.
type Options struct {
	RunID        string
	Source       string
	Count        int
	WordCount    int
	ExcerptLimit int
	Persona      string
}

// Deps are the collaborators of a run. Store and Events may be nil; Topics is
// required for the static source and Feed for the feed source.
type Deps struct {
	Topics    topicSelector
	Feed      feedFetcher
	Generator textGenerator
	Store     articleStore
	Events    eventPublisher
	Renderer  *render.Renderer
	Page      pageWriter
	Now       func() time.Time
	Log       *slog.Logger
}

// Result summarises a run.
type Result struct {
	Selected    int
	Generated   int
	Persisted   int
	PageWritten bool
}

// NoContent reports whether the run produced nothing to publish.
func (r Result) NoContent() bool {
	return r.Generated == 0
}

// Pipeline runs select → generate → parse → publish once.
type Pipeline struct {
	opts Options
	deps Deps
}

// New validates deps against opts and returns a Pipeline.
func New(opts Options, deps Deps) (*Pipeline, error) {
	switch opts.Source {
	case config.SourceStatic:
		if deps.Topics == nil {
			return nil, errors.New("pipeline: static source needs a topic selector")
		}
	case config.SourceFeed:
		if deps.Feed == nil {
			return nil, errors.New("pipeline: feed source needs a feed fetcher")
		}
	default:
		return nil, fmt.Errorf("pipeline: unknown source %q", opts.Source)
	}
	if deps.Generator == nil || deps.Renderer == nil || deps.Page == nil {
		return nil, errors.New("pipeline: generator, renderer and page are required")
	}
	if deps.Now == nil {
		deps.Now = time.Now
	}
	if deps.Log == nil {
		deps.Log = logger.Discard()
	}
	return &Pipeline{opts: opts, deps: deps}, nil
}

// Run executes one pipeline pass.
func (p *Pipeline) Run(ctx context.Context) (Result, error) {
	log := p.deps.Log.With(slog.String("run_id", p.opts.RunID))
	date := p.deps.Now().Format(generator.DateLayout)

	var (
		articles []models.GeneratedArticle
		res      Result
		err      error
	)
	if p.opts.Source == config.SourceFeed {
		articles, res.Selected, err = p.generateFromFeed(ctx, log)
	} else {
		articles, res.Selected, err = p.generateFromTopics(ctx, log, date)
	}
	if err != nil {
		return res, err
	}

	res.Generated = len(articles)
	if res.NoContent() {
		return res, nil
	}

	items := make([]render.Item, 0, len(articles))
	for _, a := range articles {
		item := render.Item{Article: a}
		if p.deps.Store != nil {
			id, err := p.deps.Store.IndexArticle(ctx, models.NewRecord(a, date))
			if err != nil {
				return res, fmt.Errorf("persist %q: %w", a.Title, err)
			}
			item.ID = id
			res.Persisted++
			log.Info("article persisted", slog.String("id", id), slog.String("title", a.Title))
			p.announce(ctx, log, id, a, date)
		}
		items = append(items, item)
	}

	fragments, err := p.deps.Renderer.Fragments(items, date)
	if err != nil {
		return res, err
	}

	written, err := p.deps.Page.Prepend(fragments)
	if err != nil {
		return res, fmt.Errorf("update page: %w", err)
	}
	res.PageWritten = written
	if written {
		log.Info("page updated", slog.Int("fragments", len(items)))
	} else {
		log.Warn("container not found, page left unchanged")
	}

	return res, nil
}

func (p *Pipeline) generateFromTopics(ctx context.Context, log *slog.Logger, date string) ([]models.GeneratedArticle, int, error) {
	topics, err := p.deps.Topics.Select(p.opts.Count)
	if err != nil {
		return nil, 0, fmt.Errorf("select topics: %w", err)
	}
	log.Info("topics selected", slog.Any("topics", topics))

	out := make([]models.GeneratedArticle, 0, len(topics))
	for _, topic := range topics {
		log.Info("generating article", slog.String("topic", topic))

		text, ok, err := p.deps.Generator.Generate(ctx, generator.TopicPrompt(p.opts.Persona, topic, date, p.opts.WordCount))
		if err != nil {
			return nil, len(topics), fmt.Errorf("generate %q: %w", topic, err)
		}
		if !ok {
			log.Warn("no article for topic", slog.String("topic", topic))
			continue
		}

		a := processing.ParseArticle(text)
		if a.Excerpt == "" {
			a.Excerpt = processing.Truncate(processing.StripMarkup(a.Body), p.opts.ExcerptLimit)
		}
		log.Info("article generated", slog.String("title", a.Title), slog.String("category_key", a.CategoryKey))
		out = append(out, a)
	}
	return out, len(topics), nil
}

func (p *Pipeline) generateFromFeed(ctx context.Context, log *slog.Logger) ([]models.GeneratedArticle, int, error) {
	raws, err := p.deps.Feed.Fetch(ctx, p.opts.Count)
	if err != nil {
		return nil, 0, fmt.Errorf("fetch feeds: %w", err)
	}
	log.Info("feed articles selected", slog.Int("count", len(raws)))

	out := make([]models.GeneratedArticle, 0, len(raws))
	for _, raw := range raws {
		log.Info("generating analysis", slog.String("title", raw.Title))

		text, ok, err := p.deps.Generator.Generate(ctx, generator.AnalysisPrompt(p.opts.Persona, raw))
		if err != nil {
			return nil, len(raws), fmt.Errorf("generate %q: %w", raw.Title, err)
		}
		if !ok {
			log.Warn("no analysis for article", slog.String("title", raw.Title))
			continue
		}

		out = append(out, models.GeneratedArticle{
			Title:       raw.Title,
			Category:    FeedCategory,
			CategoryKey: models.CategoryAI,
			Excerpt:     processing.Truncate(processing.StripMarkup(text), FeedExcerptLimit),
			Body:        text,
			Source:      raw.Source,
			Link:        raw.Link,
		})
	}
	return out, len(raws), nil
}

func (p *Pipeline) announce(ctx context.Context, log *slog.Logger, id string, a models.GeneratedArticle, date string) {
	if p.deps.Events == nil {
		return
	}
	err := p.deps.Events.Publish(ctx, events.ArticleEvent{
		ID:          id,
		RunID:       p.opts.RunID,
		Title:       a.Title,
		CategoryKey: a.CategoryKey,
		Date:        date,
	})
	if err != nil {
		log.Warn("announce article", slog.String("id", id), slog.Any("err", err))
	}
}
