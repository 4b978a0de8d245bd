// Package config defines the configuration surface of the flow kernel's
// runnable pieces and loads it from defaults, a YAML file and environment
// variables.
package config

import (
	"fmt"
	"strings"
	"time"
)

// Config is the root configuration structure.
type Config struct {
	App     AppConfig     `koanf:"app"`
	Log     LogConfig     `koanf:"log"`
	Metrics MetricsConfig `koanf:"metrics"`
	Tracing TracingConfig `koanf:"tracing"`
	Cache   CacheConfig   `koanf:"cache"`
	Solver  SolverConfig  `koanf:"solver"`
}

// AppConfig holds general application settings.
type AppConfig struct {
	Name        string `koanf:"name"`
	Version     string `koanf:"version"`
	Environment string `koanf:"environment"` // development, staging, production
	Debug       bool   `koanf:"debug"`
}

// LogConfig configures structured logging output.
type LogConfig struct {
	Level      string `koanf:"level"`  // debug, info, warn, error
	Format     string `koanf:"format"` // json, text
	Output     string `koanf:"output"` // stdout, stderr, file
	FilePath   string `koanf:"file_path"`
	MaxSize    int    `koanf:"max_size"` // MB
	MaxBackups int    `koanf:"max_backups"`
	MaxAge     int    `koanf:"max_age"` // days
	Compress   bool   `koanf:"compress"`
}

// MetricsConfig configures the Prometheus endpoint.
type MetricsConfig struct {
	Enabled   bool   `koanf:"enabled"`
	Port      int    `koanf:"port"`
	Path      string `koanf:"path"`
	Namespace string `koanf:"namespace"`
	Subsystem string `koanf:"subsystem"`
}

// TracingConfig configures the OpenTelemetry exporter.
type TracingConfig struct {
	Enabled     bool    `koanf:"enabled"`
	Endpoint    string  `koanf:"endpoint"`
	ServiceName string  `koanf:"service_name"`
	SampleRate  float64 `koanf:"sample_rate"`
}

// CacheConfig configures the solve-result cache.
type CacheConfig struct {
	Enabled    bool          `koanf:"enabled"`
	Driver     string        `koanf:"driver"` // memory, redis
	Host       string        `koanf:"host"`
	Port       int           `koanf:"port"`
	Password   string        `koanf:"password"`
	DB         int           `koanf:"db"`
	DefaultTTL time.Duration `koanf:"default_ttl"`
	MaxEntries int           `koanf:"max_entries"`
}

// SolverConfig holds engine tunables.
type SolverConfig struct {
	// Alpha is the ε reduction factor of the cost-scaling loop; must be
	// greater than 1.
	Alpha int64 `koanf:"alpha"`
	// MaxVertices caps accepted problem sizes; the dense matrices grow
	// quadratically with the vertex count.
	MaxVertices int `koanf:"max_vertices"`
}

// Validate checks cross-field consistency after loading.
func (c *Config) Validate() error {
	var errs []string

	switch c.Log.Level {
	case "debug", "info", "warn", "error":
	default:
		errs = append(errs, fmt.Sprintf("log.level: unknown level %q", c.Log.Level))
	}
	switch c.Log.Format {
	case "json", "text":
	default:
		errs = append(errs, fmt.Sprintf("log.format: unknown format %q", c.Log.Format))
	}

	if c.Metrics.Enabled {
		if c.Metrics.Port <= 0 || c.Metrics.Port > 65535 {
			errs = append(errs, fmt.Sprintf("metrics.port: invalid port %d", c.Metrics.Port))
		}
		if !strings.HasPrefix(c.Metrics.Path, "/") {
			errs = append(errs, fmt.Sprintf("metrics.path: must start with /, got %q", c.Metrics.Path))
		}
	}

	if c.Tracing.Enabled {
		if c.Tracing.Endpoint == "" {
			errs = append(errs, "tracing.endpoint: required when tracing is enabled")
		}
		if c.Tracing.SampleRate < 0 || c.Tracing.SampleRate > 1 {
			errs = append(errs, fmt.Sprintf("tracing.sample_rate: must be within [0,1], got %g", c.Tracing.SampleRate))
		}
	}

	if c.Cache.Enabled {
		switch c.Cache.Driver {
		case "memory":
		case "redis":
			if c.Cache.Host == "" {
				errs = append(errs, "cache.host: required for the redis driver")
			}
			if c.Cache.Port <= 0 || c.Cache.Port > 65535 {
				errs = append(errs, fmt.Sprintf("cache.port: invalid port %d", c.Cache.Port))
			}
		default:
			errs = append(errs, fmt.Sprintf("cache.driver: unknown driver %q", c.Cache.Driver))
		}
	}

	if c.Solver.Alpha <= 1 {
		errs = append(errs, fmt.Sprintf("solver.alpha: must be greater than 1, got %d", c.Solver.Alpha))
	}
	if c.Solver.MaxVertices < 2 {
		errs = append(errs, fmt.Sprintf("solver.max_vertices: must be at least 2, got %d", c.Solver.MaxVertices))
	}

	if len(errs) > 0 {
		return fmt.Errorf("invalid configuration:\n  - %s", strings.Join(errs, "\n  - "))
	}
	return nil
}

// IsProduction reports whether the app runs in the production environment.
func (c *Config) IsProduction() bool {
	return c.App.Environment == "production"
}

// CacheAddr returns the host:port address of the cache backend.
func (c *CacheConfig) CacheAddr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}
