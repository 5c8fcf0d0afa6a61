// Package config loads famtree's TOML configuration file.
//
// Values in the file are defaults; command-line flags override them.
package config

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/BurntSushi/toml"

	ferrors "github.com/matzehuels/famtree/pkg/errors"
	"github.com/matzehuels/famtree/pkg/family"
	"github.com/matzehuels/famtree/pkg/layout"
	"github.com/matzehuels/famtree/pkg/pipeline"
	"github.com/matzehuels/famtree/pkg/session"
)

const (
	appName  = "famtree"
	fileName = "famtree.toml"
)

// Cache backends.
const (
	BackendFile  = "file"
	BackendRedis = "redis"
	BackendNone  = "none"
)

// Config holds famtree configuration.
type Config struct {
	Canvas CanvasConfig `toml:"canvas"`
	Render RenderConfig `toml:"render"`
	Server ServerConfig `toml:"server"`
	Cache  CacheConfig  `toml:"cache"`
}

// CanvasConfig sizes the drawing area.
type CanvasConfig struct {
	Width  float64 `toml:"width"`
	Height float64 `toml:"height"`
	Margin float64 `toml:"margin"`
	Inset  float64 `toml:"inset"`
}

// RenderConfig controls what the frames show.
type RenderConfig struct {
	Formats      []string `toml:"formats"`
	ShowZeroAge  bool     `toml:"show_zero_age"`
	DefaultImage string   `toml:"default_image"`
	PNGScale     float64  `toml:"png_scale"`
}

// ServerConfig controls famtree serve.
type ServerConfig struct {
	Addr            string        `toml:"addr"`
	SessionTTL      time.Duration `toml:"session_ttl"`
	MaxSessions     int           `toml:"max_sessions"`
	CleanupInterval time.Duration `toml:"cleanup_interval"`
}

// CacheConfig selects the render cache backend.
type CacheConfig struct {
	Backend string        `toml:"backend"` // "file", "redis", "none"
	Dir     string        `toml:"dir"`
	URL     string        `toml:"url"`
	Prefix  string        `toml:"prefix"`
	TTL     time.Duration `toml:"ttl"`
}

// Default returns the default configuration.
func Default() *Config {
	c := layout.DefaultCanvas()
	return &Config{
		Canvas: CanvasConfig{Width: c.Width, Height: c.Height, Margin: c.Margin, Inset: c.Inset},
		Render: RenderConfig{
			Formats:      []string{pipeline.FormatSVG},
			DefaultImage: family.DefaultImage,
			PNGScale:     pipeline.DefaultPNGScale,
		},
		Server: ServerConfig{
			Addr:            ":8080",
			SessionTTL:      session.DefaultTTL,
			MaxSessions:     session.DefaultMaxSessions,
			CleanupInterval: time.Minute,
		},
		Cache: CacheConfig{
			Backend: BackendFile,
			Prefix:  appName + ":",
			TTL:     pipeline.DefaultFrameTTL,
		},
	}
}

// Dir returns the famtree config directory.
func Dir() string {
	dir := os.Getenv("XDG_CONFIG_HOME")
	if dir == "" {
		home, _ := os.UserHomeDir()
		dir = filepath.Join(home, ".config")
	}
	return filepath.Join(dir, appName)
}

// Path returns the default config file path.
func Path() string {
	return filepath.Join(Dir(), fileName)
}

// Load reads the config at path. An empty path reads the default location,
// where a missing file yields the defaults. An explicit path must exist.
func Load(path string) (*Config, error) {
	cfg := Default()
	explicit := path != ""
	if !explicit {
		path = Path()
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if !explicit && errors.Is(err, fs.ErrNotExist) {
			return cfg, nil
		}
		return nil, ferrors.Wrap(ferrors.ErrCodeInvalidConfig, err, "read %s", path)
	}
	if err := toml.Unmarshal(data, cfg); err != nil {
		return nil, ferrors.Wrap(ferrors.ErrCodeInvalidConfig, err, "decode %s", path)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks value ranges.
func (c *Config) Validate() error {
	if err := c.LayoutCanvas().Validate(); err != nil {
		return ferrors.Wrap(ferrors.ErrCodeInvalidConfig, err, "[canvas]")
	}
	if err := pipeline.ValidateFormats(c.Render.Formats); err != nil {
		return ferrors.Wrap(ferrors.ErrCodeInvalidConfig, err, "[render] formats")
	}
	if c.Render.PNGScale < 0 {
		return ferrors.New(ferrors.ErrCodeInvalidConfig, "[render] png_scale must not be negative")
	}
	switch c.Cache.Backend {
	case BackendFile, BackendNone:
	case BackendRedis:
		if c.Cache.URL == "" {
			return ferrors.New(ferrors.ErrCodeInvalidConfig, "[cache] url is required for the redis backend")
		}
	default:
		return ferrors.New(ferrors.ErrCodeInvalidConfig, "[cache] unknown backend %q", c.Cache.Backend)
	}
	if c.Server.SessionTTL < 0 || c.Server.MaxSessions < 0 {
		return ferrors.New(ferrors.ErrCodeInvalidConfig, "[server] limits must not be negative")
	}
	return nil
}

// LayoutCanvas returns the configured canvas.
func (c *Config) LayoutCanvas() layout.Canvas {
	return layout.Canvas{Width: c.Canvas.Width, Height: c.Canvas.Height, Margin: c.Canvas.Margin, Inset: c.Canvas.Inset}
}

// Save writes cfg to path, creating parent directories.
func Save(cfg *Config, path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	return toml.NewEncoder(f).Encode(cfg)
}
