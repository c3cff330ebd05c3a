package jobs

import (
	"context"
	"errors"
	"fmt"

	"github.com/bistsignal/backend/internal/s0_data"
	"github.com/bistsignal/backend/pkg/logger"
)

// PriceWarmer loads many series at once; *s0_data.PriceService satisfies it
type PriceWarmer interface {
	FetchMany(ctx context.Context, symbols []string, period string, workers int) []s0_data.FetchResult
}

// PriceWarmupJob preloads the popular symbols so the next analyses hit the cache
type PriceWarmupJob struct {
	prices  PriceWarmer
	symbols []string
	period  string
	workers int
	logger  *logger.Logger
}

// NewPriceWarmupJob creates a warmup over symbols; an empty list means the popular list
func NewPriceWarmupJob(prices PriceWarmer, symbols []string, period string, workers int, log *logger.Logger) *PriceWarmupJob {
	if len(symbols) == 0 {
		symbols = s0_data.StockList(s0_data.ListPopular)
	}
	if workers < 1 {
		workers = 4
	}
	return &PriceWarmupJob{
		prices:  prices,
		symbols: symbols,
		period:  period,
		workers: workers,
		logger:  log,
	}
}

// Name returns the job name
func (j *PriceWarmupJob) Name() string {
	return "price_warmup"
}

// Schedule returns the cron schedule (weekdays 18:15, after the close)
func (j *PriceWarmupJob) Schedule() string {
	return "0 15 18 * * 1-5"
}

// Run executes the warmup; it fails only when no symbol could be loaded
func (j *PriceWarmupJob) Run(ctx context.Context) error {
	j.logger.WithFields(map[string]interface{}{
		"symbols": len(j.symbols),
		"period":  j.period,
	}).Info("Starting price warmup")

	results := j.prices.FetchMany(ctx, j.symbols, j.period, j.workers)

	var errs []error
	bars := 0
	for _, r := range results {
		if r.Error != nil {
			errs = append(errs, fmt.Errorf("%s: %w", r.Symbol, r.Error))
			continue
		}
		bars += r.Bars
	}

	if len(results) > 0 && len(errs) == len(results) {
		return fmt.Errorf("price warmup: every symbol failed: %w", errors.Join(errs...))
	}

	entry := j.logger.WithFields(map[string]interface{}{
		"loaded": len(results) - len(errs),
		"failed": len(errs),
		"bars":   bars,
	})
	if len(errs) > 0 {
		entry.WithError(errors.Join(errs...)).Warn("Price warmup completed with failures")
		return nil
	}
	entry.Info("Price warmup completed")
	return nil
}
