package pipeline

import (
	"context"
	"io"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/trackviz/pkg/cache"
	"github.com/matzehuels/trackviz/pkg/catalog"
	"github.com/matzehuels/trackviz/pkg/errors"
	"github.com/matzehuels/trackviz/pkg/observability"
	"github.com/matzehuels/trackviz/pkg/sink"
	"github.com/matzehuels/trackviz/pkg/source"
)

// Runner encapsulates pipeline execution with caching.
//
// The Runner keeps no per-run state. Multiple goroutines can use the same
// Runner with different options.
type Runner struct {
	Cache  cache.Cache
	Keyer  cache.Keyer
	Loader source.Loader
	Logger *log.Logger
}

// NewRunner creates a runner. A nil keyer means DefaultKeyer, a nil cache
// disables caching. Sources are read with a [source.Opener].
func NewRunner(c cache.Cache, keyer cache.Keyer, logger *log.Logger) *Runner {
	if keyer == nil {
		keyer = cache.NewDefaultKeyer()
	}
	if c == nil {
		c = cache.NewNullCache()
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Runner{
		Cache:  c,
		Keyer:  keyer,
		Loader: source.NewOpener(),
		Logger: logger,
	}
}

// Execute runs the complete load → build → render pipeline with caching.
func (r *Runner) Execute(ctx context.Context, opts Options) (*Result, error) {
	r.applyLogger(&opts)
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, err
	}

	result := &Result{}

	// Stage 1: Load
	loadStart := time.Now()
	data, hit, err := r.LoadWithCacheInfo(ctx, opts)
	if err != nil {
		return nil, err
	}
	result.DatasetHash = cache.Hash(data)
	result.Stats.Bytes = len(data)
	result.Stats.LoadTime = time.Since(loadStart)
	result.CacheInfo.DatasetHit = hit

	opts.Logger.Debug("loaded table",
		"source", opts.SourceLabel(),
		"bytes", len(data),
		"cached", hit,
		"duration", result.Stats.LoadTime)

	// Stage 2: Build
	buildStart := time.Now()
	ws, err := Parse(data, opts)
	if err != nil {
		return nil, err
	}
	st := ws.Stats()
	observability.Pipeline().OnNormalize(ctx, st.Rows, st.Kept, st.Anomalies, time.Since(buildStart))

	scene, l, err := Build(ws, opts)
	if err != nil {
		return nil, err
	}
	result.WorkingSet = ws
	result.Scene = scene
	result.Layout = l
	result.Stats.Stats = st
	result.Stats.BuildTime = time.Since(buildStart)

	opts.Logger.Info("built chart",
		"rows", st.Rows,
		"marks", ws.Len(),
		"filtered", st.Filtered,
		"truncated", st.Truncated,
		"anomalies", st.Anomalies,
		"duration", result.Stats.BuildTime)

	// Stage 3: Render
	renderStart := time.Now()
	artifacts, renderHit, err := r.RenderWithCacheInfo(ctx, result.Chart(), st, result.DatasetHash, opts)
	if err != nil {
		return nil, err
	}
	result.Artifacts = artifacts
	result.Stats.RenderTime = time.Since(renderStart)
	result.CacheInfo.RenderHit = renderHit

	opts.Logger.Info("rendered outputs",
		"formats", opts.Formats,
		"cached", renderHit,
		"duration", result.Stats.RenderTime)

	return result, nil
}

// LoadWithCacheInfo reads the table bytes. Remote sources go through the
// dataset cache unless opts.Refresh is set; local files and raw data are
// always read fresh.
func (r *Runner) LoadWithCacheInfo(ctx context.Context, opts Options) ([]byte, bool, error) {
	hooks := observability.Pipeline()
	hooks.OnLoadStart(ctx, opts.SourceLabel())
	start := time.Now()

	var key string
	if opts.IsRemote() {
		key = r.Keyer.DatasetKey(opts.Source)
		if !opts.Refresh {
			if data, hit, err := r.Cache.Get(ctx, key); err == nil && hit {
				observability.Cache().OnCacheHit(ctx, "dataset")
				hooks.OnLoadComplete(ctx, opts.SourceLabel(), len(data), time.Since(start), nil)
				return data, true, nil
			}
			observability.Cache().OnCacheMiss(ctx, "dataset")
		}
	}

	data, err := Load(ctx, r.Loader, opts)
	hooks.OnLoadComplete(ctx, opts.SourceLabel(), len(data), time.Since(start), err)
	if err != nil {
		return nil, false, err
	}

	if key != "" {
		if err := r.Cache.Set(ctx, key, data, cache.TTLDataset); err == nil {
			observability.Cache().OnCacheSet(ctx, "dataset", len(data))
		}
	}
	return data, false, nil
}

// RenderWithCacheInfo renders every requested format, serving them from the
// artifact cache when all are present.
func (r *Runner) RenderWithCacheInfo(ctx context.Context, c sink.Chart, st catalog.Stats, datasetHash string, opts Options) (map[string][]byte, bool, error) {
	hooks := observability.Pipeline()
	hooks.OnRenderStart(ctx, opts.Formats)
	start := time.Now()

	if !opts.Refresh {
		artifacts := make(map[string][]byte, len(opts.Formats))
		for _, format := range opts.Formats {
			key := r.Keyer.ArtifactKey(datasetHash, opts.ArtifactKeyOpts(format))
			data, hit, err := r.Cache.Get(ctx, key)
			if err != nil || !hit {
				observability.Cache().OnCacheMiss(ctx, "artifact")
				break
			}
			observability.Cache().OnCacheHit(ctx, "artifact")
			artifacts[format] = data
		}
		if len(artifacts) == len(opts.Formats) {
			hooks.OnRenderComplete(ctx, opts.Formats, time.Since(start), nil)
			return artifacts, true, nil
		}
	}

	rendered, err := Render(c, st, opts)
	hooks.OnRenderComplete(ctx, opts.Formats, time.Since(start), err)
	if err != nil {
		return nil, false, err
	}

	for format, data := range rendered {
		key := r.Keyer.ArtifactKey(datasetHash, opts.ArtifactKeyOpts(format))
		if err := r.Cache.Set(ctx, key, data, cache.TTLArtifact); err != nil {
			opts.Logger.Warn("cache write failed", "format", format, "err", err)
			continue
		}
		observability.Cache().OnCacheSet(ctx, "artifact", len(data))
	}
	return rendered, false, nil
}

// Close releases the cache and the source loader.
func (r *Runner) Close() error {
	var first error
	if c, ok := r.Loader.(io.Closer); ok {
		first = c.Close()
	}
	if r.Cache != nil {
		if err := r.Cache.Close(); err != nil && first == nil {
			first = err
		}
	}
	return first
}

// applyLogger sets the runner's logger on options if not already set.
func (r *Runner) applyLogger(opts *Options) {
	if opts.Logger == nil {
		opts.Logger = r.Logger
	}
}

// IsDataLoad reports whether err stopped the run before any chart existed.
func IsDataLoad(err error) bool { return errors.Is(err, errors.ErrCodeDataLoad) }
