package generator

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/dwai-labs/newsletter-generator/internal/logger"
	"github.com/dwai-labs/newsletter-generator/internal/retry"
)

// TextGenerator is the generation service as seen by the generator.
type TextGenerator interface {
	GenerateContent(ctx context.Context, model, prompt string) (string, error)
}

// Generator sends prompts to a TextGenerator under a retry policy.
type Generator struct {
	client TextGenerator
	model  string
	policy retry.Policy
	log    *slog.Logger
}

// New creates a Generator.
func New(client TextGenerator, model string, policy retry.Policy, log *slog.Logger) *Generator {
	if log == nil {
		log = logger.Discard()
	}
	return &Generator{client: client, model: model, policy: policy, log: log}
}

// DefaultPolicy retries rate-limited calls three times with a 60s × attempt back-off.
func DefaultPolicy() retry.Policy {
	return retry.Policy{
		MaxAttempts: 3,
		Backoff:     retry.Linear(60 * time.Second),
		Retryable:   retry.RateLimited,
		Sleep:       retry.SleepContext,
	}
}

// Generate returns the model output for prompt. ok is false, with a nil
// error, when every attempt was rate limited. Any other failure is returned.
func (g *Generator) Generate(ctx context.Context, prompt string) (text string, ok bool, err error) {
	policy := g.policy
	if policy.Backoff != nil {
		backoff := policy.Backoff
		policy.Backoff = func(attempt int) time.Duration {
			d := backoff(attempt)
			g.log.Warn("rate limited, backing off",
				slog.Int("attempt", attempt),
				slog.Duration("backoff", d),
			)
			return d
		}
	}

	err = policy.Do(ctx, func(ctx context.Context, attempt int) error {
		out, callErr := g.client.GenerateContent(ctx, g.model, prompt)
		if callErr != nil {
			return callErr
		}
		text = out
		return nil
	})

	switch {
	case err == nil:
		return text, true, nil
	case errors.Is(err, retry.ErrExhausted):
		g.log.Error("generation gave up", slog.Any("err", err))
		return "", false, nil
	default:
		return "", false, err
	}
}
