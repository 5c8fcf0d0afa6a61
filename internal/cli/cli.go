// Package cli implements the famtree command-line interface.
package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/famtree/internal/config"
	"github.com/matzehuels/famtree/pkg/cache"
	"github.com/matzehuels/famtree/pkg/httputil"
	"github.com/matzehuels/famtree/pkg/pipeline"
)

// =============================================================================
// Constants
// =============================================================================

const (
	// appName is the application name used for directories and display.
	appName = "famtree"

	// documentTTL is how long fetched tree documents stay cached.
	documentTTL = time.Hour

	// keySchema scopes render cache keys; bump it when artifact output
	// changes so stale frames are not served.
	keySchema = "v1:"
)

// Log levels exported for use in main.go.
const (
	LogDebug = log.DebugLevel
	LogInfo  = log.InfoLevel
)

// =============================================================================
// CLI - Central CLI State
// =============================================================================

// CLI holds shared state for all commands.
type CLI struct {
	Logger *log.Logger

	// ConfigPath is set by --config; empty reads the default location.
	ConfigPath string

	cfg *config.Config
}

// New creates a new CLI instance with a default logger.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{Logger: newLogger(w, level)}
}

// SetLogLevel updates the logger's level. At debug level pipeline and
// cache events are logged too.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
	if level <= log.DebugLevel {
		enableTracing(c.Logger)
	}
}

// loadConfig returns the loaded configuration, reading it on first use.
func (c *CLI) loadConfig() (*config.Config, error) {
	if c.cfg != nil {
		return c.cfg, nil
	}
	cfg, err := config.Load(c.ConfigPath)
	if err != nil {
		return nil, err
	}
	c.cfg = cfg
	return cfg, nil
}

// =============================================================================
// Runner Factory
// =============================================================================

// newRunner creates a pipeline runner for CLI use.
func (c *CLI) newRunner(ctx context.Context, noCache bool) (*pipeline.Runner, error) {
	cfg, err := c.loadConfig()
	if err != nil {
		return nil, err
	}
	backend, err := c.newCache(ctx, cfg.Cache, noCache)
	if err != nil {
		return nil, err
	}
	r := pipeline.NewRunner(backend, cache.NewScopedKeyer(nil, keySchema), c.Logger)
	if cfg.Cache.TTL > 0 {
		r.TTL = cfg.Cache.TTL
	}
	return r, nil
}

// newCache opens the configured render cache. A file cache that cannot be
// created degrades to no caching.
func (c *CLI) newCache(ctx context.Context, cc config.CacheConfig, noCache bool) (cache.Cache, error) {
	if noCache {
		return cache.NewNullCache(), nil
	}
	switch cc.Backend {
	case config.BackendNone:
		return cache.NewNullCache(), nil
	case config.BackendRedis:
		rc, err := cache.NewRedisCache(ctx, cc.URL, cc.Prefix)
		if err != nil {
			return nil, fmt.Errorf("connect redis cache: %w", err)
		}
		c.Logger.Debug("Using redis cache", "prefix", cc.Prefix)
		return rc, nil
	}

	dir := cc.Dir
	if dir == "" {
		d, err := cacheDir()
		if err != nil {
			return cache.NewNullCache(), nil
		}
		dir = filepath.Join(d, "frames")
	}
	fc, err := cache.NewFileCache(dir)
	if err != nil {
		c.Logger.Warn("Render cache disabled", "dir", dir, "error", err)
		return cache.NewNullCache(), nil
	}
	return fc, nil
}

// newFetcher creates the fetcher used for URL arguments.
func newFetcher(noCache bool) *httputil.Fetcher {
	if noCache {
		return httputil.NewFetcher(nil)
	}
	dir, err := cacheDir()
	if err != nil {
		return httputil.NewFetcher(nil)
	}
	dc, err := httputil.NewCache(filepath.Join(dir, "documents"), documentTTL)
	if err != nil {
		return httputil.NewFetcher(nil)
	}
	return httputil.NewFetcher(dc)
}

// readDocument reads a tree from a file path, an http(s) URL or "-" for
// standard input.
func readDocument(ctx context.Context, arg string, noCache bool) ([]byte, error) {
	switch {
	case arg == "-":
		return io.ReadAll(os.Stdin)
	case httputil.IsURL(arg):
		return newFetcher(noCache).Fetch(ctx, arg, noCache)
	default:
		return os.ReadFile(arg)
	}
}

// =============================================================================
// Paths
// =============================================================================

// cacheDir returns the cache directory using XDG standard (~/.cache/famtree/).
func cacheDir() (string, error) {
	if cacheHome := os.Getenv("XDG_CACHE_HOME"); cacheHome != "" {
		return filepath.Join(cacheHome, appName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".cache", appName), nil
}
