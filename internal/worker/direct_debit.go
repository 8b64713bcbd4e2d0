// Package worker runs the periodic jobs of the ledger.
package worker

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/benx421/banking-ledger/internal/service"
)

// ErrInvalidInterval is returned by Run when the runner has no positive tick interval
var ErrInvalidInterval = errors.New("direct debit interval must be positive")

// DirectDebitRunner executes due direct debit mandates on a fixed tick
type DirectDebitRunner struct {
	executor service.DirectDebitExecutor
	logger   *slog.Logger
	now      func() time.Time
	interval time.Duration
}

// NewDirectDebitRunner creates a runner ticking every interval
func NewDirectDebitRunner(executor service.DirectDebitExecutor, interval time.Duration, logger *slog.Logger) *DirectDebitRunner {
	if logger == nil {
		logger = slog.Default()
	}
	return &DirectDebitRunner{
		executor: executor,
		logger:   logger.With("component", "direct_debit_runner"),
		now:      func() time.Time { return time.Now().UTC() },
		interval: interval,
	}
}

// Run executes one pass immediately and then one per tick until ctx is cancelled.
// A failed pass is logged and retried on the next tick.
func (r *DirectDebitRunner) Run(ctx context.Context) error {
	if r.interval <= 0 {
		return ErrInvalidInterval
	}

	r.logger.InfoContext(ctx, "direct debit runner started", "interval", r.interval)

	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	for {
		if _, err := r.RunOnce(ctx); err != nil && ctx.Err() == nil {
			r.logger.ErrorContext(ctx, "direct debit pass failed", "error", err)
		}

		select {
		case <-ctx.Done():
			r.logger.InfoContext(context.WithoutCancel(ctx), "direct debit runner stopped")
			return nil
		case <-ticker.C:
		}
	}
}

// RunOnce executes every mandate due now and logs the outcome
func (r *DirectDebitRunner) RunOnce(ctx context.Context) (*service.DirectDebitReport, error) {
	started := r.now()

	report, err := r.executor.ExecuteDueDomiciliaciones(ctx, started)
	if err != nil {
		return report, err
	}

	for id, failure := range report.Failed {
		r.logger.WarnContext(ctx, "direct debit not executed", "movement_id", id, "error", failure)
	}

	r.logger.InfoContext(ctx, "direct debit pass finished",
		"checked", report.Checked,
		"executed", len(report.Executed),
		"failed", len(report.Failed),
		"duration", time.Since(started),
	)

	return report, nil
}
