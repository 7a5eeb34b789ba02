package main

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/dwai-labs/newsletter-generator/internal/config"
	"github.com/dwai-labs/newsletter-generator/internal/logger"
)

type stubPurger struct {
	calls   int
	maxAge  time.Duration
	batch   int
	deleted int64
	err     error
}

func (s *stubPurger) DeleteOlderThan(_ context.Context, maxAge time.Duration, batchSize int) (int64, error) {
	s.calls++
	s.maxAge = maxAge
	s.batch = batchSize
	return s.deleted, s.err
}

func TestRunOncePassesRetentionSettings(t *testing.T) {
	cfg := &config.Retention{MaxAge: 90 * 24 * time.Hour, BatchSize: 500}
	p := &stubPurger{deleted: 7}

	require.EqualValues(t, 7, runOnce(context.Background(), logger.Discard(), p, cfg))
	require.Equal(t, cfg.MaxAge, p.maxAge)
	require.Equal(t, 500, p.batch)
}

func TestRunOnceSwallowsErrors(t *testing.T) {
	p := &stubPurger{deleted: 3, err: errors.New("cluster unavailable")}
	require.Zero(t, runOnce(context.Background(), logger.Discard(), p, &config.Retention{}))
}

func TestLoopRunsImmediatelyAndStops(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	p := &stubPurger{}
	loop(ctx, logger.Discard(), p, &config.Retention{Interval: time.Hour})
	require.Equal(t, 1, p.calls)
}
