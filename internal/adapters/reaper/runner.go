// Package reaper provides adapters for running the audit retention reaper.
package reaper

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/urbanmart/marketplace-admin/config"
	"github.com/urbanmart/marketplace-admin/internal/data"
	"github.com/urbanmart/marketplace-admin/internal/observability/statsd"
	"github.com/urbanmart/marketplace-admin/internal/ports"
	"github.com/urbanmart/marketplace-admin/internal/service"
)

// Runner constructs the audit reaper service and runs its loop.
type Runner struct {
	reaper *service.AuditReaperService
	logger *slog.Logger
}

// RunnerOptions holds the dependencies for creating a Runner.
type RunnerOptions struct {
	DB     *sql.DB
	Config config.AuditRetentionConfig
	Logger *slog.Logger

	// Optional dependency injection for testing/decoupling
	Repo    ports.AuditPruner
	Metrics statsd.Sink
}

// NewRunner creates a new reaper runner with the given options.
func NewRunner(opts RunnerOptions) (*Runner, error) {
	if opts.DB == nil && opts.Repo == nil {
		return nil, errors.New("database connection is required")
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}

	repo := opts.Repo
	if repo == nil {
		repo = data.NewAuditRepo(opts.DB)
	}

	svc, err := service.NewAuditReaperService(service.AuditReaperServiceOptions{
		Repo:    repo,
		Config:  opts.Config,
		Logger:  opts.Logger,
		Metrics: opts.Metrics,
	})
	if err != nil {
		return nil, fmt.Errorf("wire audit reaper: %w", err)
	}

	return &Runner{reaper: svc, logger: opts.Logger}, nil
}

// Run starts the reaper loop and runs until the context is cancelled.
func (r *Runner) Run(ctx context.Context) error {
	r.logger.InfoContext(ctx, "starting audit reaper runner")
	return r.reaper.Run(ctx)
}
