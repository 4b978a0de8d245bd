package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// isolated returns a loader that cannot pick up a stray config file from
// the working directory.
func isolated(t *testing.T, opts ...LoaderOption) *Loader {
	t.Helper()
	opts = append([]LoaderOption{
		WithConfigPaths(filepath.Join(t.TempDir(), "absent.yaml")),
	}, opts...)
	return NewLoader(opts...)
}

func TestLoadDefaults(t *testing.T) {
	cfg, err := isolated(t).Load()
	require.NoError(t, err)

	assert.Equal(t, "flowkit", cfg.App.Name)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, "json", cfg.Log.Format)
	assert.True(t, cfg.Metrics.Enabled)
	assert.Equal(t, 9090, cfg.Metrics.Port)
	assert.False(t, cfg.Tracing.Enabled)
	assert.False(t, cfg.Cache.Enabled)
	assert.Equal(t, "memory", cfg.Cache.Driver)
	assert.Equal(t, 5*time.Minute, cfg.Cache.DefaultTTL)
	assert.Equal(t, int64(2), cfg.Solver.Alpha)
	assert.Equal(t, 10000, cfg.Solver.MaxVertices)
	assert.False(t, cfg.IsProduction())
}

func TestLoadFromYAMLFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	content := []byte(`
app:
  environment: production
log:
  level: warn
solver:
  alpha: 8
cache:
  enabled: true
  driver: redis
  host: cache.internal
  port: 6380
`)
	require.NoError(t, os.WriteFile(path, content, 0644))

	cfg, err := NewLoader(WithConfigPaths(path)).Load()
	require.NoError(t, err)

	assert.True(t, cfg.IsProduction())
	assert.Equal(t, "warn", cfg.Log.Level)
	assert.Equal(t, int64(8), cfg.Solver.Alpha)
	assert.Equal(t, "cache.internal:6380", cfg.Cache.CacheAddr())
	// Untouched keys keep their defaults.
	assert.Equal(t, "flowkit", cfg.App.Name)
}

func TestEnvOverridesFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("log:\n  level: warn\n"), 0644))

	t.Setenv("FLOWKIT_LOG_LEVEL", "debug")
	t.Setenv("FLOWKIT_SOLVER_ALPHA", "4")
	t.Setenv("FLOWKIT_SOLVER_MAX_VERTICES", "500")

	cfg, err := NewLoader(WithConfigPaths(path)).Load()
	require.NoError(t, err)

	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, int64(4), cfg.Solver.Alpha)
	assert.Equal(t, 500, cfg.Solver.MaxVertices)
}

func TestValidate(t *testing.T) {
	valid := func() *Config {
		cfg, err := isolated(t).Load()
		require.NoError(t, err)
		return cfg
	}

	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr string
	}{
		{
			name:    "bad_log_level",
			mutate:  func(c *Config) { c.Log.Level = "verbose" },
			wantErr: "log.level",
		},
		{
			name:    "bad_log_format",
			mutate:  func(c *Config) { c.Log.Format = "xml" },
			wantErr: "log.format",
		},
		{
			name:    "bad_metrics_port",
			mutate:  func(c *Config) { c.Metrics.Port = 99999 },
			wantErr: "metrics.port",
		},
		{
			name: "tracing_without_endpoint",
			mutate: func(c *Config) {
				c.Tracing.Enabled = true
				c.Tracing.Endpoint = ""
			},
			wantErr: "tracing.endpoint",
		},
		{
			name: "bad_sample_rate",
			mutate: func(c *Config) {
				c.Tracing.Enabled = true
				c.Tracing.SampleRate = 1.5
			},
			wantErr: "tracing.sample_rate",
		},
		{
			name: "unknown_cache_driver",
			mutate: func(c *Config) {
				c.Cache.Enabled = true
				c.Cache.Driver = "memcached"
			},
			wantErr: "cache.driver",
		},
		{
			name: "redis_without_host",
			mutate: func(c *Config) {
				c.Cache.Enabled = true
				c.Cache.Driver = "redis"
				c.Cache.Host = ""
			},
			wantErr: "cache.host",
		},
		{
			name:    "alpha_too_small",
			mutate:  func(c *Config) { c.Solver.Alpha = 1 },
			wantErr: "solver.alpha",
		},
		{
			name:    "max_vertices_too_small",
			mutate:  func(c *Config) { c.Solver.MaxVertices = 1 },
			wantErr: "solver.max_vertices",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(cfg)
			err := cfg.Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestConfigPathEnvVar(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "override.yaml")
	require.NoError(t, os.WriteFile(path, []byte("app:\n  name: pinned\n"), 0644))
	t.Setenv("CONFIG_PATH", path)

	cfg, err := isolated(t).Load()
	require.NoError(t, err)
	assert.Equal(t, "pinned", cfg.App.Name)
}
