package config

import (
	"fmt"
	"net"
	"regexp"
	"slices"
	"strings"
)

// ValidationError represents a single validation failure
type ValidationError struct {
	Field   string // The config field path (e.g., "build.workers")
	Value   any    // The invalid value
	Message string // Human-readable error description
}

// Error implements the error interface for ValidationError
func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s (got: %v)", e.Field, e.Message, e.Value)
}

// ValidationErrors is a collection of validation errors
type ValidationErrors []ValidationError

// Error implements the error interface for ValidationErrors
func (e ValidationErrors) Error() string {
	if len(e) == 0 {
		return ""
	}
	if len(e) == 1 {
		return e[0].Error()
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "%d validation errors:\n", len(e))
	for i, err := range e {
		fmt.Fprintf(&sb, "  %d. %s\n", i+1, err.Error())
	}
	return sb.String()
}

var hexColorRegex = regexp.MustCompile(`^#([0-9A-Fa-f]{3}|[0-9A-Fa-f]{6})$`)

// ValidLogLevels returns the list of valid log levels
func ValidLogLevels() []string {
	return []string{"debug", "info", "warn", "error"}
}

// ValidThemes returns the themes the terminal viewer ships with.
// Must match styles.BuiltinThemes (kept separate to avoid an import cycle).
func ValidThemes() []string {
	return []string{"default", "monokai", "dracula", "nord"}
}

// Validate checks the Config for invalid values and returns all validation errors found
func (c *Config) Validate() []ValidationError {
	var errors []ValidationError

	errors = append(errors, c.validateBuild()...)
	errors = append(errors, c.validateView()...)
	errors = append(errors, c.validateColors()...)
	errors = append(errors, c.validateThumbnail()...)
	errors = append(errors, c.validateTUI()...)
	errors = append(errors, c.validateServer()...)
	errors = append(errors, c.validateLogging()...)
	errors = append(errors, c.validateTelemetry()...)

	return errors
}

func (c *Config) validateBuild() []ValidationError {
	var errors []ValidationError

	const maxWorkers = 64
	if c.Build.Workers < 1 || c.Build.Workers > maxWorkers {
		errors = append(errors, ValidationError{
			Field:   "build.workers",
			Value:   c.Build.Workers,
			Message: fmt.Sprintf("must be between 1 and %d", maxWorkers),
		})
	}
	if c.Build.CacheGCIntervalMinutes < 0 {
		errors = append(errors, ValidationError{
			Field:   "build.cache_gc_interval_minutes",
			Value:   c.Build.CacheGCIntervalMinutes,
			Message: "must be non-negative",
		})
	}

	return errors
}

func (c *Config) validateView() []ValidationError {
	var errors []ValidationError

	if !slices.Contains(ValidViews(), c.View.Default) {
		errors = append(errors, ValidationError{
			Field:   "view.default",
			Value:   c.View.Default,
			Message: fmt.Sprintf("must be one of: %s", strings.Join(ValidViews(), ", ")),
		})
	}
	if !slices.Contains(ValidDirections(), c.View.Direction) {
		errors = append(errors, ValidationError{
			Field:   "view.direction",
			Value:   c.View.Direction,
			Message: fmt.Sprintf("must be one of: %s", strings.Join(ValidDirections(), ", ")),
		})
	}
	if strings.TrimSpace(c.View.FontName) == "" {
		errors = append(errors, ValidationError{
			Field:   "view.font_name",
			Value:   c.View.FontName,
			Message: "must not be empty",
		})
	}
	if c.View.LayerSpacing <= 0 {
		errors = append(errors, ValidationError{
			Field:   "view.layer_spacing",
			Value:   c.View.LayerSpacing,
			Message: "must be positive",
		})
	}
	if c.View.NodeSpacing <= 0 {
		errors = append(errors, ValidationError{
			Field:   "view.node_spacing",
			Value:   c.View.NodeSpacing,
			Message: "must be positive",
		})
	}
	if c.View.CrossingSweeps < 0 {
		errors = append(errors, ValidationError{
			Field:   "view.crossing_sweeps",
			Value:   c.View.CrossingSweeps,
			Message: "must be non-negative",
		})
	}

	return errors
}

func (c *Config) validateColors() []ValidationError {
	var errors []ValidationError

	fields := []struct {
		name  string
		value string
	}{
		{"colors.pass", c.Colors.Pass},
		{"colors.end_pass", c.Colors.EndPass},
		{"colors.resource", c.Colors.Resource},
		{"colors.color_edge", c.Colors.ColorEdge},
		{"colors.depth_edge", c.Colors.DepthEdge},
	}
	for _, f := range fields {
		if !hexColorRegex.MatchString(f.value) {
			errors = append(errors, ValidationError{
				Field:   f.name,
				Value:   f.value,
				Message: "must be a hex colour like #e69f00",
			})
		}
	}

	return errors
}

func (c *Config) validateThumbnail() []ValidationError {
	var errors []ValidationError

	const maxEdgeLimit = 1024
	if c.Thumbnail.MaxEdge < 8 || c.Thumbnail.MaxEdge > maxEdgeLimit {
		errors = append(errors, ValidationError{
			Field:   "thumbnail.max_edge",
			Value:   c.Thumbnail.MaxEdge,
			Message: fmt.Sprintf("must be between 8 and %d", maxEdgeLimit),
		})
	}

	return errors
}

func (c *Config) validateTUI() []ValidationError {
	var errors []ValidationError

	if c.TUI.Theme != "" && !slices.Contains(ValidThemes(), c.TUI.Theme) {
		errors = append(errors, ValidationError{
			Field:   "tui.theme",
			Value:   c.TUI.Theme,
			Message: fmt.Sprintf("must be one of: %s", strings.Join(ValidThemes(), ", ")),
		})
	}

	// 0 means use default. Bounds match tui.SidebarMinWidth and tui.SidebarMaxWidth.
	const minSidebarWidth = 20
	const maxSidebarWidth = 60
	if c.TUI.SidebarWidth != 0 {
		if c.TUI.SidebarWidth < minSidebarWidth {
			errors = append(errors, ValidationError{
				Field:   "tui.sidebar_width",
				Value:   c.TUI.SidebarWidth,
				Message: fmt.Sprintf("must be at least %d columns", minSidebarWidth),
			})
		}
		if c.TUI.SidebarWidth > maxSidebarWidth {
			errors = append(errors, ValidationError{
				Field:   "tui.sidebar_width",
				Value:   c.TUI.SidebarWidth,
				Message: fmt.Sprintf("exceeds maximum of %d columns", maxSidebarWidth),
			})
		}
	}

	if c.TUI.WatchDebounceMs < 0 {
		errors = append(errors, ValidationError{
			Field:   "tui.watch_debounce_ms",
			Value:   c.TUI.WatchDebounceMs,
			Message: "must be non-negative",
		})
	}

	return errors
}

func (c *Config) validateServer() []ValidationError {
	var errors []ValidationError

	if _, _, err := net.SplitHostPort(c.Server.Addr); err != nil {
		errors = append(errors, ValidationError{
			Field:   "server.addr",
			Value:   c.Server.Addr,
			Message: "must be host:port",
		})
	}
	if c.Server.ReadTimeoutSeconds <= 0 {
		errors = append(errors, ValidationError{
			Field:   "server.read_timeout_seconds",
			Value:   c.Server.ReadTimeoutSeconds,
			Message: "must be positive",
		})
	}

	return errors
}

func (c *Config) validateLogging() []ValidationError {
	var errors []ValidationError

	if c.Logging.Level != "" && !slices.Contains(ValidLogLevels(), c.Logging.Level) {
		errors = append(errors, ValidationError{
			Field:   "logging.level",
			Value:   c.Logging.Level,
			Message: fmt.Sprintf("must be one of: %s", strings.Join(ValidLogLevels(), ", ")),
		})
	}

	if c.Logging.MaxSizeMB <= 0 {
		errors = append(errors, ValidationError{
			Field:   "logging.max_size_mb",
			Value:   c.Logging.MaxSizeMB,
			Message: "must be positive",
		})
	}

	const maxLogSizeMB = 1000
	if c.Logging.MaxSizeMB > maxLogSizeMB {
		errors = append(errors, ValidationError{
			Field:   "logging.max_size_mb",
			Value:   c.Logging.MaxSizeMB,
			Message: fmt.Sprintf("exceeds maximum of %dMB", maxLogSizeMB),
		})
	}

	if c.Logging.MaxBackups < 0 {
		errors = append(errors, ValidationError{
			Field:   "logging.max_backups",
			Value:   c.Logging.MaxBackups,
			Message: "must be non-negative",
		})
	}

	return errors
}

func (c *Config) validateTelemetry() []ValidationError {
	if c.Telemetry.Tracing && strings.TrimSpace(c.Telemetry.ServiceName) == "" {
		return []ValidationError{{
			Field:   "telemetry.service_name",
			Value:   c.Telemetry.ServiceName,
			Message: "must not be empty when tracing is enabled",
		}}
	}
	return nil
}
