package pipeline

import (
	"context"
	"io"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/famtree/pkg/cache"
	"github.com/matzehuels/famtree/pkg/errors"
	"github.com/matzehuels/famtree/pkg/family"
	"github.com/matzehuels/famtree/pkg/observability"
)

// frameKeyType labels frame entries in cache hooks.
const frameKeyType = "frame"

// Runner executes the pipeline with caching. It holds no per-run state, so
// one Runner may serve concurrent runs.
type Runner struct {
	Cache  cache.Cache
	Keyer  cache.Keyer
	Logger *log.Logger
	TTL    time.Duration
}

// NewRunner creates a runner. A nil cache disables caching, a nil keyer
// uses cache.DefaultKeyer and a nil logger discards output.
func NewRunner(c cache.Cache, keyer cache.Keyer, logger *log.Logger) *Runner {
	if c == nil {
		c = cache.NewNullCache()
	}
	if keyer == nil {
		keyer = cache.NewDefaultKeyer()
	}
	if logger == nil {
		logger = log.New(io.Discard)
	}
	return &Runner{Cache: c, Keyer: keyer, Logger: logger, TTL: DefaultFrameTTL}
}

// Execute loads opts.Document and renders it.
func (r *Runner) Execute(ctx context.Context, opts Options) (*Result, error) {
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, err
	}

	start := time.Now()
	tree, err := Load(ctx, opts.Document)
	if err != nil {
		return nil, err
	}
	loadTime := time.Since(start)
	r.Logger.Debug("loaded tree", "members", tree.Len(), "root", tree.Root().Name, "duration", loadTime)

	result, err := r.RenderTree(ctx, tree, opts)
	if err != nil {
		return nil, err
	}
	result.Stats.LoadTime = loadTime
	return result, nil
}

// RenderTree lays out and renders an already loaded tree.
func (r *Runner) RenderTree(ctx context.Context, tree *family.Tree, opts Options) (*Result, error) {
	if err := opts.ValidateForRender(); err != nil {
		return nil, err
	}
	if tree == nil {
		return nil, errors.New(errors.ErrCodeInvalidInput, "no tree loaded")
	}
	root, err := ResolveRoot(tree, opts.RootID)
	if err != nil {
		return nil, err
	}
	if opts.Selected != nil {
		if m, ok := tree.Member(*opts.Selected); !ok || !root.Contains(m) {
			return nil, errors.New(errors.ErrCodeSelection, "member %d is not displayed under %s", *opts.Selected, root.Name)
		}
	}

	result := &Result{Tree: tree, Root: root, Stats: Stats{Members: tree.Len()}}

	start := time.Now()
	result.Layout = ComputeLayout(ctx, root, opts)
	result.Stats.LayoutTime = time.Since(start)
	result.Stats.Nodes = len(result.Layout.Nodes)
	result.Stats.Edges = len(result.Layout.Edges)
	r.Logger.Debug("computed layout", "root", root.Name, "nodes", result.Stats.Nodes, "duration", result.Stats.LayoutTime)

	start = time.Now()
	artifacts, hit, err := r.renderWithCache(ctx, result, opts)
	if err != nil {
		return nil, err
	}
	result.Artifacts = artifacts
	result.CacheInfo.RenderHit = hit
	result.Stats.RenderTime = time.Since(start)
	r.Logger.Debug("rendered outputs", "formats", opts.Formats, "cached", hit, "duration", result.Stats.RenderTime)

	return result, nil
}

// renderWithCache serves every format from cache when possible and renders
// the rest.
func (r *Runner) renderWithCache(ctx context.Context, result *Result, opts Options) (map[string][]byte, bool, error) {
	hooks := observability.Cache()
	hash := result.Tree.Hash()
	artifacts := make(map[string][]byte, len(opts.Formats))
	var missing []string

	for _, format := range opts.Formats {
		if opts.Refresh {
			missing = append(missing, format)
			continue
		}
		key := r.Keyer.FrameKey(hash, opts.FrameKeyOpts(format))
		data, hit, err := r.Cache.Get(ctx, key)
		if err != nil {
			r.Logger.Warn("cache read failed", "format", format, "error", err)
		}
		if err == nil && hit {
			hooks.OnCacheHit(ctx, frameKeyType)
			artifacts[format] = data
			continue
		}
		hooks.OnCacheMiss(ctx, frameKeyType)
		missing = append(missing, format)
	}

	if len(missing) == 0 {
		return artifacts, true, nil
	}

	renderOpts := opts
	renderOpts.Formats = missing
	rendered, err := Render(ctx, result.Tree, result.Layout, renderOpts)
	if err != nil {
		return nil, false, err
	}

	for format, data := range rendered {
		artifacts[format] = data
		key := r.Keyer.FrameKey(hash, opts.FrameKeyOpts(format))
		if err := r.Cache.Set(ctx, key, data, r.TTL); err != nil {
			r.Logger.Warn("cache write failed", "format", format, "error", err)
			continue
		}
		hooks.OnCacheSet(ctx, frameKeyType, len(data))
	}
	return artifacts, false, nil
}

// Close releases the cache.
func (r *Runner) Close() error {
	if r.Cache != nil {
		return r.Cache.Close()
	}
	return nil
}
