package pipeline

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"os"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/pathcover/pkg/cache"
	"github.com/matzehuels/pathcover/pkg/errors"
	pio "github.com/matzehuels/pathcover/pkg/io"
	"github.com/matzehuels/pathcover/pkg/observability"
	"github.com/matzehuels/pathcover/pkg/pathcover"
)

// keyTypeCover labels cover entries in cache hooks.
const keyTypeCover = "cover"

// Runner encapsulates pipeline execution with caching.
//
// The Runner is stateless except for the cache and logger. Multiple
// goroutines can safely use the same Runner with different options.
type Runner struct {
	Cache  cache.Cache
	Keyer  cache.Keyer
	Logger *log.Logger

	// TTL is the lifetime of cached covers. Zero means cache.TTLCover.
	TTL time.Duration
}

// NewRunner creates a runner with the given cache and keyer.
// If keyer is nil, a DefaultKeyer is used.
// If cache is nil, a NullCache is used (caching disabled).
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
		Logger: logger,
	}
}

// cachedCover is the cache entry of an exported cover.
type cachedCover struct {
	Stats  pathcover.Stats `json:"stats"`
	Trails int             `json:"trails"`
	Output []byte          `json:"output"`
}

// Execute runs the complete import → cover → export pipeline and writes the
// trails to w.
func (r *Runner) Execute(ctx context.Context, opts Options, w io.Writer) (*Result, error) {
	r.applyLogger(&opts)
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, err
	}

	data, err := readGraphFile(opts.GraphPath)
	if err != nil {
		return nil, err
	}
	result := &Result{GraphHash: cache.Hash(data)}
	key := r.Keyer.CoverKey(result.GraphHash, opts.CoverKeyOpts())

	if !opts.Refresh {
		if c, ok := r.lookup(ctx, key); ok {
			if _, err := w.Write(c.Output); err != nil {
				return nil, errors.Wrap(errors.ErrCodeIO, err, "write cached trails")
			}
			opts.Logger.Info("loaded cover from cache", "trails", c.Trails, "graph", result.GraphHash[:12])
			result.Stats, result.Trails, result.CacheHit = c.Stats, c.Trails, true
			return result, nil
		}
	}

	g, err := r.Import(ctx, data)
	if err != nil {
		return nil, err
	}
	cov, idx, err := r.Cover(ctx, g, opts)
	if err != nil {
		return nil, err
	}
	defer cov.Close()
	result.Stats = cov.Stats

	opts.Logger.Info("preparing export", "format", opts.Format)
	start := time.Now()
	var buf bytes.Buffer
	result.Trails, err = pio.WriteTrails(io.MultiWriter(w, &buf), opts.Format, cov, g, idx, &cov.Stats)
	observability.Pipeline().OnStageComplete(ctx, observability.StageExport, time.Since(start), err)
	if err != nil {
		return nil, err
	}
	opts.Logger.Debug("exported trails", "trails", result.Trails, "bytes", buf.Len(), "duration", time.Since(start))

	r.store(ctx, key, cachedCover{Stats: cov.Stats, Trails: result.Trails, Output: buf.Bytes()})
	return result, nil
}

// LoadGraph reads and validates the state graph at path.
func (r *Runner) LoadGraph(ctx context.Context, path string) (*pio.Graph, error) {
	data, err := readGraphFile(path)
	if err != nil {
		return nil, err
	}
	return r.Import(ctx, data)
}

// Import decodes and validates a state graph.
func (r *Runner) Import(ctx context.Context, data []byte) (*pio.Graph, error) {
	start := time.Now()
	g, err := pio.ReadGraph(bytes.NewReader(data))
	observability.Pipeline().OnStageComplete(ctx, observability.StageImport, time.Since(start), err)
	if err != nil {
		return nil, err
	}
	r.Logger.Debug("imported state graph", "states", len(g.States), "actions", len(g.Actions), "depth", g.Depth)
	return g, nil
}

// Cover feeds g into a fresh builder and computes its path cover. The
// caller must Close the returned cover.
func (r *Runner) Cover(ctx context.Context, g *pio.Graph, opts Options) (*pathcover.Cover, *pio.Index, error) {
	r.applyLogger(&opts)
	b := pathcover.New(opts.CoverOptions(g.Depth))
	idx, err := pio.Feed(ctx, b, g, opts.Workers)
	if err != nil {
		return nil, nil, err
	}
	cov, err := b.Cover(ctx)
	if err != nil {
		return nil, nil, err
	}
	return cov, idx, nil
}

// Trails computes the cover of g and resolves every trail.
func (r *Runner) Trails(ctx context.Context, g *pio.Graph, opts Options) ([]pio.Trail, *pathcover.Stats, error) {
	cov, idx, err := r.Cover(ctx, g, opts)
	if err != nil {
		return nil, nil, err
	}
	defer cov.Close()

	start := time.Now()
	raw, err := cov.Trails()
	observability.Pipeline().OnStageComplete(ctx, observability.StageExtract, time.Since(start), err)
	if err != nil {
		return nil, nil, err
	}
	out := make([]pio.Trail, len(raw))
	for i, t := range raw {
		out[i] = pio.Resolve(g, idx, i, t)
	}
	return out, &cov.Stats, nil
}

func (r *Runner) lookup(ctx context.Context, key string) (*cachedCover, bool) {
	hooks := observability.Cache()
	data, hit, err := r.Cache.Get(ctx, key)
	if err != nil {
		r.Logger.Warn("cache lookup failed", "err", err)
	}
	if err != nil || !hit {
		hooks.OnCacheMiss(ctx, keyTypeCover)
		return nil, false
	}
	var c cachedCover
	if err := json.Unmarshal(data, &c); err != nil {
		// stale format, recompute
		hooks.OnCacheMiss(ctx, keyTypeCover)
		return nil, false
	}
	hooks.OnCacheHit(ctx, keyTypeCover)
	return &c, true
}

func (r *Runner) store(ctx context.Context, key string, c cachedCover) {
	data, err := json.Marshal(c)
	if err != nil {
		return
	}
	ttl := r.TTL
	if ttl == 0 {
		ttl = cache.TTLCover
	}
	if err := r.Cache.Set(ctx, key, data, ttl); err != nil {
		r.Logger.Warn("cache write failed", "err", err)
		return
	}
	observability.Cache().OnCacheSet(ctx, keyTypeCover, len(data))
}

// Close releases resources held by the runner (primarily the cache).
func (r *Runner) Close() error {
	if r.Cache != nil {
		return r.Cache.Close()
	}
	return nil
}

// applyLogger sets the runner's logger on options if not already set.
func (r *Runner) applyLogger(opts *Options) {
	if opts.Logger == nil {
		opts.Logger = r.Logger
	}
}

func readGraphFile(path string) ([]byte, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.Wrap(errors.ErrCodeFileNotFound, err, "open %s", path)
		}
		return nil, errors.Wrap(errors.ErrCodeIO, err, "read %s", path)
	}
	return data, nil
}
