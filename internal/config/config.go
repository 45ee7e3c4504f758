package config

import (
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/viper"
)

// Config represents the complete framegraph configuration
type Config struct {
	Build     BuildConfig     `mapstructure:"build"`
	View      ViewConfig      `mapstructure:"view"`
	Colors    ColorsConfig    `mapstructure:"colors"`
	Thumbnail ThumbnailConfig `mapstructure:"thumbnail"`
	TUI       TUIConfig       `mapstructure:"tui"`
	Server    ServerConfig    `mapstructure:"server"`
	Logging   LoggingConfig   `mapstructure:"logging"`
	Telemetry TelemetryConfig `mapstructure:"telemetry"`
}

// BuildConfig controls how a frame graph is built from a capture
type BuildConfig struct {
	// Workers bounds the number of concurrent texture usage fetches (default: 4, 1 = sequential)
	Workers int `mapstructure:"workers"`
	// Cache enables the on-disk build cache (default: true)
	Cache bool `mapstructure:"cache"`
	// CacheDir overrides the cache location. Empty means <state dir>/cache.
	// Supports ~ for home directory expansion.
	CacheDir string `mapstructure:"cache_dir"`
	// CacheGCIntervalMinutes is how often the cache value log is garbage collected (0 = disabled)
	CacheGCIntervalMinutes int `mapstructure:"cache_gc_interval_minutes"`
}

// ViewConfig controls graph export and layout
type ViewConfig struct {
	// Default is the view used when none is given: "simple", "detailed" or "nodes"
	Default string `mapstructure:"default"`
	// Direction is the rank direction: "LR" (default) or "TB"
	Direction string `mapstructure:"direction"`
	// FontName is the font written into DOT output (default: "Arial")
	FontName string `mapstructure:"font_name"`
	// LayerSpacing is the gap between layers in SVG pixels (default: 80)
	LayerSpacing int `mapstructure:"layer_spacing"`
	// NodeSpacing is the gap between nodes inside a layer (default: 24)
	NodeSpacing int `mapstructure:"node_spacing"`
	// CrossingSweeps is the number of barycenter sweeps run by the layout (default: 8)
	CrossingSweeps int `mapstructure:"crossing_sweeps"`
}

// ColorsConfig holds the colours used by every exporter, as #rrggbb
type ColorsConfig struct {
	Pass      string `mapstructure:"pass"`
	EndPass   string `mapstructure:"end_pass"`
	Resource  string `mapstructure:"resource"`
	ColorEdge string `mapstructure:"color_edge"`
	DepthEdge string `mapstructure:"depth_edge"`
}

// ThumbnailConfig controls texture previews embedded in SVG output
type ThumbnailConfig struct {
	// Enabled embeds thumbnails for end passes (default: true)
	Enabled bool `mapstructure:"enabled"`
	// MaxEdge is the longest side of a scaled thumbnail in pixels (default: 96)
	MaxEdge int `mapstructure:"max_edge"`
}

// TUIConfig controls the terminal viewer
type TUIConfig struct {
	// Theme is the colour theme (default: "default")
	// Options: "default", "monokai", "dracula", "nord"
	Theme string `mapstructure:"theme"`
	// SidebarWidth is the width of the pass list in columns (default: 36, min: 20, max: 60)
	SidebarWidth int `mapstructure:"sidebar_width"`
	// WatchDebounceMs is how long capture writes are coalesced before a rebuild (default: 250)
	WatchDebounceMs int `mapstructure:"watch_debounce_ms"`
}

// ServerConfig controls the HTTP API
type ServerConfig struct {
	// Addr is the listen address (default: "127.0.0.1:7420")
	Addr string `mapstructure:"addr"`
	// ReadTimeoutSeconds bounds request reads (default: 15)
	ReadTimeoutSeconds int `mapstructure:"read_timeout_seconds"`
}

// LoggingConfig controls debug logging behavior
type LoggingConfig struct {
	// Enabled writes logs to <state dir>/framegraph.log; otherwise logs go to stderr at WARN (default: true)
	Enabled bool `mapstructure:"enabled"`
	// Level is the log level: "debug", "info", "warn", "error" (default: "info")
	Level string `mapstructure:"level"`
	// MaxSizeMB is the maximum log file size in megabytes before rotation (default: 10)
	MaxSizeMB int `mapstructure:"max_size_mb"`
	// MaxBackups is the number of backup log files to keep (default: 3)
	MaxBackups int `mapstructure:"max_backups"`
	// Compress gzips rotated log files (default: false)
	Compress bool `mapstructure:"compress"`
}

// TelemetryConfig controls OpenTelemetry tracing
type TelemetryConfig struct {
	// Tracing exports build and request spans (default: false)
	Tracing bool `mapstructure:"tracing"`
	// TraceFile receives pretty-printed spans. Empty means stderr.
	TraceFile string `mapstructure:"trace_file"`
	// ServiceName is reported on every span (default: "framegraph")
	ServiceName string `mapstructure:"service_name"`
}

// Default returns a Config with sensible default values
func Default() *Config {
	return &Config{
		Build: BuildConfig{
			Workers:                4,
			Cache:                  true,
			CacheDir:               "", // Empty means <state dir>/cache
			CacheGCIntervalMinutes: 10,
		},
		View: ViewConfig{
			Default:        "simple",
			Direction:      "LR",
			FontName:       "Arial",
			LayerSpacing:   80,
			NodeSpacing:    24,
			CrossingSweeps: 8,
		},
		Colors: ColorsConfig{
			Pass:      "#e69f00",
			EndPass:   "#2ab574",
			Resource:  "#56b4e9",
			ColorEdge: "#4CAF50",
			DepthEdge: "#FF5722",
		},
		Thumbnail: ThumbnailConfig{
			Enabled: true,
			MaxEdge: 96,
		},
		TUI: TUIConfig{
			Theme:           "default",
			SidebarWidth:    36,
			WatchDebounceMs: 250,
		},
		Server: ServerConfig{
			Addr:               "127.0.0.1:7420",
			ReadTimeoutSeconds: 15,
		},
		Logging: LoggingConfig{
			Enabled:    true,
			Level:      "info",
			MaxSizeMB:  10,
			MaxBackups: 3,
			Compress:   false,
		},
		Telemetry: TelemetryConfig{
			Tracing:     false,
			TraceFile:   "",
			ServiceName: "framegraph",
		},
	}
}

// WatchDebounce returns the watch debounce as a time.Duration
func (c *TUIConfig) WatchDebounce() time.Duration {
	return time.Duration(c.WatchDebounceMs) * time.Millisecond
}

// ReadTimeout returns the server read timeout as a time.Duration
func (c *ServerConfig) ReadTimeout() time.Duration {
	return time.Duration(c.ReadTimeoutSeconds) * time.Second
}

// CacheGCInterval returns the value log GC interval (0 means disabled)
func (c *BuildConfig) CacheGCInterval() time.Duration {
	return time.Duration(c.CacheGCIntervalMinutes) * time.Minute
}

// ResolveCacheDir returns the cache directory.
// If CacheDir is empty, it returns <stateDir>/cache. A leading ~ expands to
// the user's home directory and relative paths resolve against stateDir.
func (c *BuildConfig) ResolveCacheDir(stateDir string) string {
	if c.CacheDir == "" {
		return filepath.Join(stateDir, "cache")
	}
	path := expandHome(c.CacheDir)
	if !filepath.IsAbs(path) {
		path = filepath.Join(stateDir, path)
	}
	return path
}

func expandHome(path string) string {
	if path != "~" && (len(path) < 2 || path[:2] != "~/") {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	if path == "~" {
		return home
	}
	return filepath.Join(home, path[2:])
}

// SetDefaults registers default values with viper
func SetDefaults() {
	SetDefaultsOn(viper.GetViper())
}

// SetDefaultsOn registers default values on a specific viper instance
func SetDefaultsOn(v *viper.Viper) {
	defaults := Default()

	// Build defaults
	v.SetDefault("build.workers", defaults.Build.Workers)
	v.SetDefault("build.cache", defaults.Build.Cache)
	v.SetDefault("build.cache_dir", defaults.Build.CacheDir)
	v.SetDefault("build.cache_gc_interval_minutes", defaults.Build.CacheGCIntervalMinutes)

	// View defaults
	v.SetDefault("view.default", defaults.View.Default)
	v.SetDefault("view.direction", defaults.View.Direction)
	v.SetDefault("view.font_name", defaults.View.FontName)
	v.SetDefault("view.layer_spacing", defaults.View.LayerSpacing)
	v.SetDefault("view.node_spacing", defaults.View.NodeSpacing)
	v.SetDefault("view.crossing_sweeps", defaults.View.CrossingSweeps)

	// Colour defaults
	v.SetDefault("colors.pass", defaults.Colors.Pass)
	v.SetDefault("colors.end_pass", defaults.Colors.EndPass)
	v.SetDefault("colors.resource", defaults.Colors.Resource)
	v.SetDefault("colors.color_edge", defaults.Colors.ColorEdge)
	v.SetDefault("colors.depth_edge", defaults.Colors.DepthEdge)

	// Thumbnail defaults
	v.SetDefault("thumbnail.enabled", defaults.Thumbnail.Enabled)
	v.SetDefault("thumbnail.max_edge", defaults.Thumbnail.MaxEdge)

	// TUI defaults
	v.SetDefault("tui.theme", defaults.TUI.Theme)
	v.SetDefault("tui.sidebar_width", defaults.TUI.SidebarWidth)
	v.SetDefault("tui.watch_debounce_ms", defaults.TUI.WatchDebounceMs)

	// Server defaults
	v.SetDefault("server.addr", defaults.Server.Addr)
	v.SetDefault("server.read_timeout_seconds", defaults.Server.ReadTimeoutSeconds)

	// Logging defaults
	v.SetDefault("logging.enabled", defaults.Logging.Enabled)
	v.SetDefault("logging.level", defaults.Logging.Level)
	v.SetDefault("logging.max_size_mb", defaults.Logging.MaxSizeMB)
	v.SetDefault("logging.max_backups", defaults.Logging.MaxBackups)
	v.SetDefault("logging.compress", defaults.Logging.Compress)

	// Telemetry defaults
	v.SetDefault("telemetry.tracing", defaults.Telemetry.Tracing)
	v.SetDefault("telemetry.trace_file", defaults.Telemetry.TraceFile)
	v.SetDefault("telemetry.service_name", defaults.Telemetry.ServiceName)
}

// Load reads the configuration from viper into a Config struct and validates it
func Load() (*Config, error) {
	return LoadFrom(viper.GetViper())
}

// LoadFrom reads and validates the configuration held by v
func LoadFrom(v *viper.Viper) (*Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	if errs := cfg.Validate(); len(errs) > 0 {
		return nil, ValidationErrors(errs)
	}

	return &cfg, nil
}

// Get returns the current configuration (convenience function)
func Get() *Config {
	cfg, err := Load()
	if err != nil {
		// Fall back to defaults if unmarshaling fails
		return Default()
	}
	return cfg
}

// ConfigDir returns the path to the user's config directory
func ConfigDir() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "framegraph")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ".framegraph"
	}
	return filepath.Join(home, ".config", "framegraph")
}

// ConfigFile returns the path to the config file
func ConfigFile() string {
	return filepath.Join(ConfigDir(), "config.yaml")
}

// StateDir returns where logs and the build cache live
func StateDir() string {
	if xdg := os.Getenv("XDG_STATE_HOME"); xdg != "" {
		return filepath.Join(xdg, "framegraph")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ".framegraph"
	}
	return filepath.Join(home, ".local", "state", "framegraph")
}

// ValidViews returns the list of valid view names
func ValidViews() []string {
	return []string{"simple", "detailed", "nodes"}
}

// ValidDirections returns the list of valid rank directions
func ValidDirections() []string {
	return []string{"LR", "TB"}
}
