package bootstrap

import (
	"database/sql"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/urbanmart/marketplace-admin/config"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func testAppConfig() *config.AppConfig {
	cfg := &config.AppConfig{
		Marketplace:    config.MarketplaceConfig{BaseURL: "https://api.example.com"},
		AuditRetention: config.AuditRetentionConfig{Enabled: true},
	}
	cfg.Sanitize()
	return cfg
}

func TestErrorChannelBufferSize(t *testing.T) {
	tests := []struct {
		name     string
		services []backgroundService
		want     int
	}{
		{name: "http only", want: 1},
		{name: "disabled reaper", services: []backgroundService{{name: "audit reaper"}}, want: 1},
		{name: "enabled reaper", services: []backgroundService{{name: "audit reaper", enabled: true}}, want: 2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, errorChannelBufferSize(tt.services))
		})
	}
}

func TestBuildBackgroundServices_ReaperNeedsDatabase(t *testing.T) {
	cfg := testAppConfig()

	deps := &serviceStartupDeps{cfg: &ServiceOrchestrationConfig{Config: cfg}, logger: discardLogger()}
	services := buildBackgroundServices(deps)
	require.Len(t, services, 1)
	assert.False(t, services[0].enabled)

	deps.cfg.DB = &sql.DB{}
	assert.True(t, buildBackgroundServices(deps)[0].enabled)

	cfg.AuditRetention.Enabled = false
	assert.False(t, buildBackgroundServices(deps)[0].enabled)
}

func TestNewServices_WithoutDatabase(t *testing.T) {
	svc, err := NewServices(&ServiceDeps{Config: testAppConfig(), Logger: discardLogger()})
	require.NoError(t, err)

	assert.NotNil(t, svc.Resources)
	assert.NotNil(t, svc.Orders)
	assert.NotNil(t, svc.Dashboard)
	assert.NotNil(t, svc.Settings)
	require.NotNil(t, svc.Audit)
	assert.False(t, svc.Audit.Enabled())
	// No redis, so no way to sign in.
	assert.Nil(t, svc.Auth)
	assert.Nil(t, svc.Marketplace.Metrics)

	assert.Empty(t, svc.Readiness)

	rs := routerServices(svc, testAppConfig(), discardLogger())
	assert.Nil(t, rs.Auth)
}

func TestNewServices_RejectsBadBaseURL(t *testing.T) {
	cfg := testAppConfig()
	cfg.Marketplace.BaseURL = "not a url"
	_, err := NewServices(&ServiceDeps{Config: cfg, Logger: discardLogger()})
	assert.Error(t, err)
}

func TestLoadCatalog(t *testing.T) {
	t.Run("embedded", func(t *testing.T) {
		cat, err := LoadCatalog(config.MarketplaceConfig{})
		require.NoError(t, err)
		_, err = cat.Lookup("orders")
		assert.NoError(t, err)
	})

	t.Run("missing file", func(t *testing.T) {
		_, err := LoadCatalog(config.MarketplaceConfig{CatalogFile: filepath.Join(t.TempDir(), "nope.yaml")})
		assert.Error(t, err)
	})

	t.Run("invalid file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "catalog.yaml")
		require.NoError(t, os.WriteFile(path, []byte("resources: [{}]\n"), 0o600))
		_, err := LoadCatalog(config.MarketplaceConfig{CatalogFile: path})
		assert.Error(t, err)
	})
}

func TestValidateConfig(t *testing.T) {
	assert.Error(t, ValidateConfig(nil))

	cfg := testAppConfig()
	assert.NoError(t, ValidateConfig(cfg))

	cfg.Auth.Mode = config.AuthModeMock
	assert.Error(t, ValidateConfig(cfg))
	cfg.IsDev = true
	assert.NoError(t, ValidateConfig(cfg))

	cfg.Marketplace.BaseURL = ""
	assert.Error(t, ValidateConfig(cfg))
}

func TestBuildMetrics_Disabled(t *testing.T) {
	assert.Nil(t, BuildMetrics(config.ObservabilityMetricsConfig{}, discardLogger()))
	assert.Nil(t, metricsSink(nil))
}
