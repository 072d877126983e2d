package trellis

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/BurntSushi/toml"
)

// Config holds editor configuration, usually loaded from a TOML file.
type Config struct {
	Window      WindowConfig      `toml:"window"`
	Interaction InteractionConfig `toml:"interaction"`
	Connect     ConnectConfig     `toml:"connect"`
	Spatial     SpatialConfig     `toml:"spatial"`
	Log         LogConfig         `toml:"log"`
	Debug       DebugConfig       `toml:"debug"`
}

// WindowConfig controls the window and the screen size.
type WindowConfig struct {
	Title   string `toml:"title"`
	Width   int    `toml:"width"`
	Height  int    `toml:"height"`
	TPS     int    `toml:"tps"`
	ShowFPS bool   `toml:"show_fps"`
}

// InteractionConfig controls the interactor clock and zoom behaviour.
type InteractionConfig struct {
	UpdateHz     int     `toml:"update_hz"`
	ZoomStep     float64 `toml:"zoom_step"`
	ZoomDuration float64 `toml:"zoom_duration"` // seconds; 0 zooms instantly
	MinZoom      float64 `toml:"min_zoom"`
	MaxZoom      float64 `toml:"max_zoom"`
}

// ConnectConfig mirrors ConnectPolicy.
type ConnectConfig struct {
	NormalizeDirection bool `toml:"normalize_direction"`
	RejectSameKind     bool `toml:"reject_same_kind"`
	SingleInput        bool `toml:"single_input"`
	AllowSelfLoops     bool `toml:"allow_self_loops"`
	AllowDuplicates    bool `toml:"allow_duplicates"`
}

// SpatialConfig controls the rectangle-selection quadtree.
type SpatialConfig struct {
	X        float64 `toml:"x"`
	Y        float64 `toml:"y"`
	Width    float64 `toml:"width"`
	Height   float64 `toml:"height"`
	Capacity int     `toml:"capacity"`
}

// LogConfig controls the slog handler built by NewLogger.
type LogConfig struct {
	Level  string `toml:"level"`  // "debug", "info", "warn", "error"
	Format string `toml:"format"` // "text" or "json"
}

// DebugConfig controls per-frame debug statistics.
type DebugConfig struct {
	Enabled       bool `toml:"enabled"`
	IntervalTicks int  `toml:"interval_ticks"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	p := DefaultConnectPolicy()
	return &Config{
		Window: WindowConfig{Title: "trellis", Width: 1280, Height: 720, TPS: 60},
		Interaction: InteractionConfig{
			UpdateHz: 30,
			ZoomStep: 0.1,
			MinZoom:  0.1,
			MaxZoom:  8,
		},
		Connect: ConnectConfig{
			NormalizeDirection: p.NormalizeDirection,
			RejectSameKind:     p.RejectSameKind,
			SingleInput:        p.SingleInput,
			AllowSelfLoops:     p.AllowSelfLoops,
			AllowDuplicates:    p.AllowDuplicates,
		},
		Spatial: SpatialConfig{X: -10000, Y: -10000, Width: 20000, Height: 20000, Capacity: defaultQuadCapacity},
		Log:     LogConfig{Level: "info", Format: "text"},
		Debug:   DebugConfig{IntervalTicks: 60},
	}
}

// ParseConfig decodes TOML on top of the defaults, so a partial document
// only overrides the keys it names.
func ParseConfig(data []byte) (*Config, error) {
	cfg := DefaultConfig()
	md, err := toml.Decode(string(data), cfg)
	if err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		return nil, fmt.Errorf("parse config: unknown key %q", undecoded[0].String())
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadConfig reads the config file at path. A missing file yields the
// defaults.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return DefaultConfig(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("load config %s: %w", path, err)
	}
	cfg, err := ParseConfig(data)
	if err != nil {
		return nil, fmt.Errorf("load config %s: %w", path, err)
	}
	return cfg, nil
}

// Save writes cfg to path as TOML, creating parent directories.
func (c *Config) Save(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	var buf bytes.Buffer
	if err := toml.NewEncoder(&buf).Encode(c); err != nil {
		return fmt.Errorf("encode config: %w", err)
	}
	return os.WriteFile(path, buf.Bytes(), 0o644)
}

// Validate reports the first out-of-range setting.
func (c *Config) Validate() error {
	switch {
	case c.Window.Width <= 0 || c.Window.Height <= 0:
		return fmt.Errorf("config: window size must be positive, got %dx%d", c.Window.Width, c.Window.Height)
	case c.Interaction.UpdateHz < 0:
		return fmt.Errorf("config: interaction.update_hz must not be negative, got %d", c.Interaction.UpdateHz)
	case c.Interaction.MinZoom <= 0 || c.Interaction.MaxZoom < c.Interaction.MinZoom:
		return fmt.Errorf("config: invalid zoom range [%v, %v]", c.Interaction.MinZoom, c.Interaction.MaxZoom)
	case c.Spatial.Width <= 0 || c.Spatial.Height <= 0:
		return fmt.Errorf("config: spatial bounds must have a positive size")
	}
	switch c.Log.Format {
	case "", "text", "json":
	default:
		return fmt.Errorf("config: log.format must be text or json, got %q", c.Log.Format)
	}
	return nil
}

// InteractorOptions converts the interaction, connect and spatial sections.
func (c *Config) InteractorOptions() InteractorOptions {
	opts := DefaultInteractorOptions()
	if c.Interaction.UpdateHz > 0 {
		opts.UpdateInterval = time.Second / time.Duration(c.Interaction.UpdateHz)
	} else {
		opts.UpdateInterval = 0
	}
	opts.ZoomStep = c.Interaction.ZoomStep
	opts.ZoomDuration = float32(c.Interaction.ZoomDuration)
	opts.Connect = ConnectPolicy{
		NormalizeDirection: c.Connect.NormalizeDirection,
		RejectSameKind:     c.Connect.RejectSameKind,
		SingleInput:        c.Connect.SingleInput,
		AllowSelfLoops:     c.Connect.AllowSelfLoops,
		AllowDuplicates:    c.Connect.AllowDuplicates,
	}
	opts.SpatialBounds = Rect{X: c.Spatial.X, Y: c.Spatial.Y, Width: c.Spatial.Width, Height: c.Spatial.Height}
	opts.SpatialCapacity = c.Spatial.Capacity
	return opts
}

// NewLogger builds a slog.Logger writing to w. Unknown levels fall back to
// info; any format other than "json" produces text output.
func NewLogger(level, format string, w io.Writer) *slog.Logger {
	var lvl slog.Level
	switch level {
	case "debug":
		lvl = slog.LevelDebug
	case "info":
		lvl = slog.LevelInfo
	case "warn":
		lvl = slog.LevelWarn
	case "error":
		lvl = slog.LevelError
	default:
		lvl = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{Level: lvl}
	var handler slog.Handler
	if format == "json" {
		handler = slog.NewJSONHandler(w, opts)
	} else {
		handler = slog.NewTextHandler(w, opts)
	}
	return slog.New(handler)
}
