package service

import (
	"context"
	"crypto/rand"
	"encoding/binary"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/urbanmart/marketplace-admin/config"
	obserrors "github.com/urbanmart/marketplace-admin/internal/observability/errors"
	"github.com/urbanmart/marketplace-admin/internal/observability/metrics"
	"github.com/urbanmart/marketplace-admin/internal/observability/statsd"
	"github.com/urbanmart/marketplace-admin/internal/ports"
)

// AuditReaperServiceOptions groups dependencies for AuditReaperService.
type AuditReaperServiceOptions struct {
	Repo    ports.AuditPruner           // Required: audit store
	Config  config.AuditRetentionConfig // Required: retention window and cadence
	Logger  *slog.Logger                // Optional: structured logger
	Metrics statsd.Sink                 // Optional: metrics sink (StatsD-compatible)
}

// AuditReaperService periodically deletes audit entries that fell out of the
// retention window.
type AuditReaperService struct {
	repo    ports.AuditPruner
	config  config.AuditRetentionConfig
	logger  *slog.Logger
	metrics statsd.Sink
}

// NewAuditReaperService constructs a new AuditReaperService.
func NewAuditReaperService(opts AuditReaperServiceOptions) (*AuditReaperService, error) {
	if opts.Repo == nil {
		return nil, errors.New("AuditPruner is required")
	}
	if opts.Config.Interval <= 0 {
		return nil, errors.New("retention interval must be positive")
	}

	var logger *slog.Logger
	if opts.Logger != nil {
		logger = opts.Logger.With("component", "audit_reaper")
		logger.Debug("AuditReaperService initialized",
			"interval", opts.Config.Interval,
			"max_age", opts.Config.MaxAge,
			"batch_size", opts.Config.BatchSize,
		)
	}

	return &AuditReaperService{
		repo:    opts.Repo,
		config:  opts.Config,
		logger:  logger,
		metrics: opts.Metrics,
	}, nil
}

// Run starts the pruning loop and runs until the context is cancelled.
// Returns nil on graceful shutdown (context.Canceled), error otherwise.
func (s *AuditReaperService) Run(ctx context.Context) error {
	if s.logger != nil {
		s.logger.InfoContext(ctx, "starting audit reaper", "interval", s.config.Interval)
	}

	// Spread out instances that start together.
	s.waitWithJitter(ctx)

	ticker := time.NewTicker(s.config.Interval)
	defer ticker.Stop()

	if _, err := s.Prune(ctx); err != nil {
		s.logPruneError(err, "initial prune")
	}

	for {
		select {
		case <-ctx.Done():
			if s.logger != nil {
				s.logger.InfoContext(ctx, "audit reaper stopping", "reason", ctx.Err())
			}
			if errors.Is(ctx.Err(), context.Canceled) {
				return nil
			}
			return ctx.Err()

		case <-ticker.C:
			if _, err := s.Prune(ctx); err != nil {
				s.logPruneError(err, "prune")
			}
		}
	}
}

// Prune deletes expired entries in batches until none remain and returns the
// number removed.
func (s *AuditReaperService) Prune(ctx context.Context) (int64, error) {
	start := time.Now()
	var total int64
	var err error
	for {
		var n int64
		n, err = s.repo.DeleteOlderThan(ctx, s.config.MaxAge, s.config.BatchSize)
		total += n
		if err != nil || n == 0 {
			break
		}
		// Check context between batches
		if ctxErr := ctx.Err(); ctxErr != nil {
			err = ctxErr
			break
		}
	}

	s.emitPruneMetrics(total, err, time.Since(start))

	if err != nil {
		return total, fmt.Errorf("delete old audit entries: %w", err)
	}
	if total > 0 && s.logger != nil {
		s.logger.InfoContext(ctx, "deleted old audit entries", "count", total, "max_age", s.config.MaxAge)
	}
	return total, nil
}

// waitWithJitter sleeps for a random delay up to 10% of the interval.
func (s *AuditReaperService) waitWithJitter(ctx context.Context) {
	maxJitter := int64(s.config.Interval / 10)
	if maxJitter <= 0 {
		return
	}

	var buf [8]byte
	if _, err := rand.Read(buf[:]); err != nil {
		if s.logger != nil {
			s.logger.WarnContext(ctx, "failed to generate jitter, skipping", "error", err)
		}
		return
	}

	jitterNanos := binary.BigEndian.Uint64(buf[:]) % uint64(maxJitter)
	jitter := time.Duration(int64(jitterNanos)) // #nosec G115 - bounded by maxJitter which is int64

	select {
	case <-time.After(jitter):
	case <-ctx.Done():
	}
}

func (s *AuditReaperService) emitPruneMetrics(count int64, err error, elapsed time.Duration) {
	if s.metrics == nil {
		return
	}

	if isContextCancellation(err) {
		err = nil
	}
	result := metrics.ResultSuccess
	switch {
	case err != nil:
		result = metrics.ResultError
	case count == 0:
		result = metrics.ResultNoop
	}

	tags := map[string]string{"result": result}
	if err != nil {
		if class := obserrors.Classify(err); class != "" {
			tags["error_class"] = class
		}
	}

	s.metrics.Count("audit.prune", 1, tags)
	if elapsed > 0 {
		s.metrics.Timing("audit.prune_duration", elapsed, metrics.CloneTags(tags))
	}
	if count > 0 {
		s.metrics.Count("audit.entries_pruned", count, nil)
	}
	if err == nil {
		s.metrics.Gauge("audit.prune_last_success_epoch", float64(time.Now().Unix()), nil)
	}
}

func (s *AuditReaperService) logPruneError(err error, label string) {
	if err == nil || s.logger == nil {
		return
	}
	if isContextCancellation(err) {
		s.logger.Debug(label+" cancelled by context", "error", err)
		return
	}
	s.logger.Error(label+" failed", "error", err)
}

func isContextCancellation(err error) bool {
	if err == nil {
		return false
	}
	return errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
}
