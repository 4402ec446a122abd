package bootstrap

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/urbanmart/marketplace-admin/config"
	"github.com/urbanmart/marketplace-admin/internal/adapters/reaper"
	"github.com/urbanmart/marketplace-admin/internal/data"
	httpx "github.com/urbanmart/marketplace-admin/internal/http"
	"github.com/urbanmart/marketplace-admin/internal/observability/statsd"
	"github.com/urbanmart/marketplace-admin/internal/ports"
	"github.com/urbanmart/marketplace-admin/internal/service"
)

// ServiceContainer holds all application services.
type ServiceContainer struct {
	Resources *service.ResourceService
	Orders    *service.OrderService
	Dashboard *service.DashboardService
	Settings  *service.SettingsService
	Audit     *service.AuditService
	Auth      *service.AuthService

	Marketplace *MarketplaceAdapters
	Readiness   map[string]httpx.ReadinessCheck
}

// ServiceDeps groups dependencies for service initialization.
type ServiceDeps struct {
	Config      *config.AppConfig
	DB          *sql.DB
	RedisClient redis.UniversalClient
	Logger      *slog.Logger
}

// auditStore returns the Postgres audit repo, or nils when no database is
// configured. Nil interfaces keep the services' "audit disabled" checks honest.
func auditStore(db *sql.DB) (ports.AuditRecorder, ports.AuditReader) {
	if db == nil {
		return nil, nil
	}
	repo := data.NewAuditRepo(db)
	return repo, repo
}

// NewServices wires every console service from the shared adapters.
func NewServices(deps *ServiceDeps) (ServiceContainer, error) {
	if deps == nil || deps.Config == nil {
		return ServiceContainer{}, errors.New("service deps with config are required")
	}
	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}
	cfg := deps.Config

	adapters, err := BuildMarketplaceAdapters(cfg, logger)
	if err != nil {
		return ServiceContainer{}, err
	}

	recorder, reader := auditStore(deps.DB)
	if recorder == nil {
		logger.Info("audit trail disabled: no database configured")
	}

	resources := service.NewResourceService(service.ResourceServiceOptions{
		Client:          adapters.Client,
		Catalog:         adapters.Catalog,
		Tokens:          adapters.Tokens,
		Audit:           recorder,
		Metrics:         metricsSink(adapters.Metrics),
		Logger:          logger,
		PageSize:        cfg.Marketplace.PageSize,
		LookupCacheSize: cfg.Lookups.Size,
		LookupCacheTTL:  cfg.Lookups.TTL,
	})

	return ServiceContainer{
		Resources: resources,
		Orders:    service.NewOrderService(service.OrderServiceOptions{Resources: resources, Logger: logger}),
		Dashboard: service.NewDashboardService(service.DashboardServiceOptions{
			API:    adapters.Client,
			Client: adapters.Client,
			Logger: logger,
		}),
		Settings: service.NewSettingsService(service.SettingsServiceOptions{
			API:    adapters.Client,
			Audit:  recorder,
			Logger: logger,
		}),
		Audit: service.NewAuditService(service.AuditServiceOptions{
			Reader:   reader,
			PageSize: cfg.Marketplace.PageSize,
			Logger:   logger,
		}),
		Auth: BuildAuthService(AuthConfig{
			Auth:        cfg.Auth,
			RedisClient: deps.RedisClient,
			Logger:      logger,
		}),
		Marketplace: adapters,
		Readiness:   readinessChecks(deps),
	}, nil
}

// readinessChecks probes the stores the console was started with.
func readinessChecks(deps *ServiceDeps) map[string]httpx.ReadinessCheck {
	checks := map[string]httpx.ReadinessCheck{}
	if deps.RedisClient != nil {
		checks["redis"] = func(ctx context.Context) error { return deps.RedisClient.Ping(ctx).Err() }
	}
	if deps.DB != nil {
		checks["audit_db"] = deps.DB.PingContext
	}
	return checks
}

//nolint:ireturn // consumers depend on the Sink interface.
func (c ServiceContainer) metricsSink() statsd.Sink {
	if c.Marketplace == nil {
		return nil
	}
	return metricsSink(c.Marketplace.Metrics)
}

// ServiceOrchestrationConfig contains configuration for service orchestration.
type ServiceOrchestrationConfig struct {
	Config      *config.AppConfig
	Services    ServiceContainer
	DB          *sql.DB
	RedisClient redis.UniversalClient
	Logger      *slog.Logger
}

const (
	// shutdownWaitTimeout is the maximum time to wait for services to stop gracefully.
	shutdownWaitTimeout = 15 * time.Second
)

// serviceStartupDeps groups dependencies for service startup.
type serviceStartupDeps struct {
	ctx    context.Context
	cfg    *ServiceOrchestrationConfig
	logger *slog.Logger
	errCh  chan error
}

// backgroundService describes a startable background component. Disabled
// services are listed but never launched.
type backgroundService struct {
	name    string
	enabled bool
	start   func(context.Context) error
}

// backgroundServiceHandle tracks a running background service.
type backgroundServiceHandle struct {
	name string
	done <-chan struct{}
}

func launchBackground(ctx context.Context, deps *serviceStartupDeps, descriptor backgroundService) <-chan struct{} {
	if deps == nil || !descriptor.enabled {
		return nil
	}

	done := make(chan struct{})
	go func() {
		defer close(done)
		if err := descriptor.start(ctx); err != nil {
			errMsg := fmt.Errorf("%s failed: %w", descriptor.name, err)
			select {
			case deps.errCh <- errMsg:
			case <-ctx.Done():
			default:
				deps.logger.WarnContext(ctx, "dropping background service error", "service", descriptor.name, "error", errMsg)
			}
		}
	}()

	deps.logger.InfoContext(ctx, "background service started", "service", descriptor.name)
	return done
}

func startBackgroundServices(deps *serviceStartupDeps, services []backgroundService) []backgroundServiceHandle {
	if deps == nil {
		return nil
	}
	handles := make([]backgroundServiceHandle, 0, len(services))
	for _, svc := range services {
		done := launchBackground(deps.ctx, deps, svc)
		if done == nil {
			continue
		}
		handles = append(handles, backgroundServiceHandle{name: svc.name, done: done})
	}
	return handles
}

func newAuditReaperBackgroundService(deps *serviceStartupDeps) backgroundService {
	var retention config.AuditRetentionConfig
	if deps.cfg.Config != nil {
		retention = deps.cfg.Config.AuditRetention
	}
	return backgroundService{
		name:    "audit reaper",
		enabled: deps.cfg.DB != nil && retention.Enabled,
		start: func(ctx context.Context) error {
			runner, err := reaper.NewRunner(reaper.RunnerOptions{
				DB:      deps.cfg.DB,
				Config:  retention,
				Logger:  deps.logger,
				Metrics: deps.cfg.Services.metricsSink(),
			})
			if err != nil {
				return err
			}
			return runner.Run(ctx)
		},
	}
}

func buildBackgroundServices(deps *serviceStartupDeps) []backgroundService {
	if deps == nil || deps.cfg == nil {
		return nil
	}
	return []backgroundService{
		newAuditReaperBackgroundService(deps),
	}
}

// errorChannelBufferSize leaves room for the HTTP server plus every enabled
// background service so no failure blocks its sender.
func errorChannelBufferSize(services []backgroundService) int {
	size := 1
	for _, svc := range services {
		if svc.enabled {
			size++
		}
	}
	return size
}

// RunServicesWithShutdown starts the HTTP server and background services and
// blocks until a shutdown signal is received or a service fails.
func RunServicesWithShutdown(cfg *ServiceOrchestrationConfig) error {
	if cfg == nil {
		return errors.New("service orchestration config is required")
	}
	if cfg.Config == nil {
		return errors.New("service orchestration config missing AppConfig")
	}
	serviceCtx, cancel := context.WithCancel(context.Background())
	defer cancel()

	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	deps := &serviceStartupDeps{ctx: serviceCtx, cfg: cfg, logger: logger}
	background := buildBackgroundServices(deps)
	errCh := make(chan error, errorChannelBufferSize(background))
	deps.errCh = errCh

	server := StartHTTPServer(&HTTPServerConfig{
		Config:   cfg.Config,
		Services: cfg.Services,
		Logger:   logger,
		ErrCh:    errCh,
	})
	handles := startBackgroundServices(deps, background)

	return waitForShutdown(shutdownConfig{
		ctx:         serviceCtx,
		cancel:      cancel,
		errCh:       errCh,
		httpServer:  server,
		logger:      logger,
		backgrounds: handles,
		closers:     closersFor(cfg.Services),
	})
}

// shutdownConfig contains dependencies for graceful shutdown.
type shutdownConfig struct {
	ctx         context.Context
	cancel      context.CancelFunc
	errCh       <-chan error
	httpServer  *http.Server
	logger      *slog.Logger
	backgrounds []backgroundServiceHandle
	closers     []namedCloser
}

type namedCloser struct {
	name  string
	close func() error
}

func closersFor(services ServiceContainer) []namedCloser {
	if services.Marketplace == nil || services.Marketplace.Metrics == nil {
		return nil
	}
	return []namedCloser{{name: "statsd", close: services.Marketplace.Metrics.Close}}
}

// waitForShutdown waits for shutdown signal or service error.
func waitForShutdown(cfg shutdownConfig) error {
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(quit)

	select {
	case <-quit:
		cfg.logger.Info("shutting down services...")
		cfg.cancel() // Cancel service context before waiting
		return gracefulStop(cfg)
	case err := <-cfg.errCh:
		cfg.logger.Error("service error", "error", err)
		cfg.cancel() // Cancel service context before waiting
		if stopErr := gracefulStop(cfg); stopErr != nil {
			cfg.logger.Error("graceful stop failed", "error", stopErr)
		}
		return err
	}
}

// gracefulStop attempts to gracefully stop all services.
func gracefulStop(cfg shutdownConfig) error {
	if cfg.httpServer != nil {
		// The service context is already cancelled; shutdown gets its own budget.
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownWaitTimeout)
		defer cancel()

		if err := ShutdownHTTPServer(ShutdownConfig{
			Context: shutdownCtx,
			Server:  cfg.httpServer,
			Logger:  cfg.logger,
		}); err != nil {
			return err
		}
	}

	for _, svc := range cfg.backgrounds {
		waitForService(svc.done, svc.name, cfg.logger)
	}

	for _, c := range cfg.closers {
		if err := c.close(); err != nil {
			cfg.logger.Warn("close failed", "component", c.name, "error", err)
		}
	}

	return nil
}

// waitForService waits for a service to finish with timeout.
func waitForService(done <-chan struct{}, name string, logger *slog.Logger) {
	if done == nil {
		return
	}
	select {
	case <-done:
		logger.Info(name + " stopped")
	case <-time.After(shutdownWaitTimeout):
		logger.Warn("timeout waiting for " + name + " to stop")
	}
}
