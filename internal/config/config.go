// Package config holds process configuration for the trackviz binary.
//
// Values are layered, lowest precedence first:
//
//  1. defaults from [New]
//  2. a YAML or TOML file named by TRACKVIZ_CONFIG
//  3. environment variables prefixed TRACKVIZ_
//
// Command-line flags override the loaded values in internal/cli.
package config

import (
	"context"
	"os"
	"path/filepath"
	"time"

	"github.com/matzehuels/trackviz/pkg/cache"
	"github.com/matzehuels/trackviz/pkg/catalog"
	"github.com/matzehuels/trackviz/pkg/errors"
	"github.com/matzehuels/trackviz/pkg/pipeline"
	"github.com/matzehuels/trackviz/pkg/sink"
)

// Cache backends.
const (
	CacheFile  = "file"
	CacheRedis = "redis"
	CacheNone  = "none"
)

// AppName names the cache directory and the env prefix.
const AppName = "trackviz"

// Config contains process configuration.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// Addr is the HTTP listen address of `trackviz serve`.
	Addr string `koanf:"addr"`

	// Source is the table the server charts at "/".
	Source string `koanf:"source"`

	MaxRecords int    `koanf:"max_records"`
	Width      int    `koanf:"width"`
	Height     int    `koanf:"height"`
	StaggerMS  int64  `koanf:"stagger_ms"`
	EntranceMS int64  `koanf:"entrance_ms"`
	HoverMS    int64  `koanf:"hover_ms"`
	Ease       string `koanf:"ease"`

	LowColor    string `koanf:"low_color"`
	HighColor   string `koanf:"high_color"`
	Title       string `koanf:"title"`
	ContainerID string `koanf:"container_id"`
	TooltipID   string `koanf:"tooltip_id"`

	// Columns renames the source columns.
	Columns catalog.Columns `koanf:"columns"`

	// Cache selects the backend: file, redis or none.
	Cache    string        `koanf:"cache"`
	CacheDir string        `koanf:"cache_dir"`
	RedisURL string        `koanf:"redis_url"`
	CacheTTL time.Duration `koanf:"cache_ttl"`

	// Namespace prefixes every cache key, so deployments can share a redis.
	Namespace string `koanf:"namespace"`

	// FetchTimeout bounds one remote source fetch.
	FetchTimeout time.Duration `koanf:"fetch_timeout"`

	// Metrics exposes /metrics on the server.
	Metrics bool `koanf:"metrics"`
}

// New returns a Config holding the defaults.
func New() *Config {
	return &Config{
		LogLevel:     "info",
		Addr:         ":8080",
		MaxRecords:   pipeline.DefaultMaxRecords,
		Width:        1100,
		Height:       650,
		StaggerMS:    pipeline.DefaultStaggerMS,
		EntranceMS:   pipeline.DefaultEntranceMS,
		HoverMS:      pipeline.DefaultHoverMS,
		Ease:         pipeline.DefaultEase,
		Title:        sink.DefaultTitle,
		ContainerID:  sink.DefaultContainerID,
		TooltipID:    sink.DefaultTooltipID,
		Columns:      catalog.DefaultColumns(),
		Cache:        CacheFile,
		CacheDir:     DefaultCacheDir(),
		CacheTTL:     cache.TTLChart,
		FetchTimeout: 30 * time.Second,
		Metrics:      true,
	}
}

// Validate rejects configurations the binary cannot start with.
func (c *Config) Validate() error {
	if c.Addr == "" {
		return errors.New(errors.ErrCodeInvalidInput, "addr must not be empty")
	}
	switch c.Cache {
	case CacheFile, CacheNone:
	case CacheRedis:
		if c.RedisURL == "" {
			return errors.New(errors.ErrCodeInvalidInput, "redis_url is required for the redis cache")
		}
	default:
		return errors.New(errors.ErrCodeInvalidInput, "unknown cache backend %q (want file, redis or none)", c.Cache)
	}
	if c.CacheTTL <= 0 {
		return errors.New(errors.ErrCodeInvalidInput, "cache_ttl must be positive")
	}
	return nil
}

// PipelineOptions returns the chart options carried by the configuration.
func (c *Config) PipelineOptions() pipeline.Options {
	return pipeline.Options{
		Source:      c.Source,
		Columns:     c.Columns,
		MaxRecords:  c.MaxRecords,
		Width:       c.Width,
		Height:      c.Height,
		LowColor:    c.LowColor,
		HighColor:   c.HighColor,
		StaggerMS:   c.StaggerMS,
		EntranceMS:  c.EntranceMS,
		HoverMS:     c.HoverMS,
		Ease:        c.Ease,
		ContainerID: c.ContainerID,
		TooltipID:   c.TooltipID,
		Title:       c.Title,
	}
}

// Keyer returns the cache keyer, scoped to Namespace when one is set.
func (c *Config) Keyer() cache.Keyer {
	if c.Namespace == "" {
		return cache.NewDefaultKeyer()
	}
	return cache.NewScopedKeyer(nil, c.Namespace+":")
}

// OpenCache opens the configured cache backend. The caller owns the result.
func (c *Config) OpenCache(ctx context.Context) (cache.Cache, error) {
	switch c.Cache {
	case CacheNone:
		return cache.NewNullCache(), nil
	case CacheRedis:
		rc, err := cache.NewRedisCache(ctx, c.RedisURL, AppName+":")
		if err != nil {
			return nil, err
		}
		return rc, nil
	default:
		if c.CacheDir == "" {
			return cache.NewNullCache(), nil
		}
		fc, err := cache.NewFileCache(c.CacheDir)
		if err != nil {
			return nil, err
		}
		return fc, nil
	}
}

// DefaultCacheDir returns the cache directory using the XDG convention
// (~/.cache/trackviz/), or "" when no home directory is known.
func DefaultCacheDir() string {
	if cacheHome := os.Getenv("XDG_CACHE_HOME"); cacheHome != "" {
		return filepath.Join(cacheHome, AppName)
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".cache", AppName)
}
