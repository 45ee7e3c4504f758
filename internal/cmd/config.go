package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/Iron-Ham/framegraph/internal/config"
	"github.com/Iron-Ham/framegraph/internal/errors"
)

func newConfigCmd(o *rootOptions) *cobra.Command {
	configCmd := &cobra.Command{
		Use:   "config",
		Short: "View or modify framegraph configuration",
		Long: `View or modify framegraph configuration.

Without arguments, displays the current configuration.
Use subcommands to modify settings or create a config file.`,
		RunE: o.runConfigShow,
	}

	configCmd.AddCommand(
		&cobra.Command{
			Use:   "show",
			Short: "Show current configuration",
			RunE:  o.runConfigShow,
		},
		&cobra.Command{
			Use:   "path",
			Short: "Show the config file path",
			RunE:  o.runConfigPath,
		},
		&cobra.Command{
			Use:   "set <key> <value>",
			Short: "Set a configuration value",
			Long: `Set a configuration value in the user's config file.

Keys use dot notation, e.g.:
  framegraph config set view.default detailed
  framegraph config set build.workers 8
  framegraph config set tui.theme nord

The resulting configuration is validated before it is written.`,
			Args: cobra.ExactArgs(2),
			RunE: o.runConfigSet,
		},
	)

	var force bool
	initCmd := &cobra.Command{
		Use:   "init",
		Short: "Create a default config file",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return o.runConfigInit(cmd, force)
		},
	}
	initCmd.Flags().BoolVar(&force, "force", false, "overwrite an existing file")
	configCmd.AddCommand(initCmd)

	return configCmd
}

// configPath is the file config set and init write to.
func (o *rootOptions) configPath() string {
	if o.configFile != "" {
		return o.configFile
	}
	if used := o.v.ConfigFileUsed(); used != "" {
		return used
	}
	return config.ConfigFile()
}

func (o *rootOptions) runConfigShow(cmd *cobra.Command, _ []string) error {
	out := cmd.OutOrStdout()
	if used := o.v.ConfigFileUsed(); used != "" {
		fmt.Fprintf(out, "# Config file: %s\n", used)
	} else {
		fmt.Fprintln(out, "# Config file: (none - using defaults)")
	}

	data, err := yaml.Marshal(o.v.AllSettings())
	if err != nil {
		return errors.Wrap(err, "encode configuration")
	}
	_, err = out.Write(data)
	if err != nil {
		return err
	}

	if _, err := config.LoadFrom(o.v); err != nil {
		fmt.Fprintf(out, "\n# Warning: %v\n", err)
	}
	return nil
}

func (o *rootOptions) runConfigPath(cmd *cobra.Command, _ []string) error {
	out := cmd.OutOrStdout()
	if used := o.v.ConfigFileUsed(); used != "" {
		fmt.Fprintf(out, "Active config: %s\n", used)
	} else {
		fmt.Fprintf(out, "Default path: %s (not created)\n", config.ConfigFile())
	}

	fmt.Fprintln(out, "\nSearch paths:")
	fmt.Fprintf(out, "  1. %s\n", config.ConfigFile())
	fmt.Fprintln(out, "  2. ./config.yaml (current directory)")
	fmt.Fprintf(out, "\nEnvironment variables: %s_* (e.g., %s_VIEW_DEFAULT)\n", envPrefix, envPrefix)
	fmt.Fprintf(out, "State directory: %s\n", config.StateDir())
	return nil
}

func (o *rootOptions) runConfigSet(cmd *cobra.Command, args []string) error {
	key, raw := strings.ToLower(args[0]), args[1]

	if !slices.Contains(o.v.AllKeys(), key) {
		return errors.NewValidationError("unknown configuration key").WithField("key").WithValue(key)
	}

	value, err := parseConfigValue(o.v.Get(key), raw)
	if err != nil {
		return errors.NewValidationError(err.Error()).WithField(key).WithValue(raw)
	}

	// Validate against the merged configuration before touching the file.
	check := viper.New()
	config.SetDefaultsOn(check)
	if err := check.MergeConfigMap(o.v.AllSettings()); err != nil {
		return err
	}
	check.Set(key, value)
	if _, err := config.LoadFrom(check); err != nil {
		return err
	}

	// Only what the file already holds plus the new key is written, so
	// defaults stay defaults.
	file := viper.New()
	path := o.configPath()
	file.SetConfigFile(path)
	if _, err := os.Stat(path); err == nil {
		if err := file.ReadInConfig(); err != nil {
			return errors.Wrapf(err, "read %s", path)
		}
	}
	file.Set(key, value)

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return errors.Wrap(err, "create config directory")
	}
	if err := file.WriteConfigAs(path); err != nil {
		return errors.Wrap(err, "write config file")
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Set %s = %v\nConfig saved to %s\n", key, value, path)
	return nil
}

// parseConfigValue converts raw to the type of the key's current value.
func parseConfigValue(current any, raw string) (any, error) {
	switch current.(type) {
	case bool:
		b, err := strconv.ParseBool(raw)
		if err != nil {
			return nil, fmt.Errorf("expected true or false")
		}
		return b, nil
	case int, int64, int32:
		n, err := strconv.Atoi(raw)
		if err != nil {
			return nil, fmt.Errorf("expected an integer")
		}
		return n, nil
	default:
		return raw, nil
	}
}

const defaultConfigFile = `# framegraph configuration

build:
  # Concurrent texture usage fetches (1 = sequential)
  workers: 4
  # Cache built graphs under the state directory, keyed by capture content
  cache: true
  # cache_dir: ~/.cache/framegraph
  # Minutes between cache value-log garbage collections (0 = never)
  cache_gc_interval_minutes: 10

view:
  # simple, detailed or nodes
  default: simple
  # LR or TB
  direction: LR
  font_name: Arial
  layer_spacing: 80
  node_spacing: 24
  crossing_sweeps: 8

colors:
  pass: "#e69f00"
  end_pass: "#2ab574"
  resource: "#56b4e9"
  color_edge: "#4CAF50"
  depth_edge: "#FF5722"

thumbnail:
  # Embed end-pass thumbnails in SVG output
  enabled: true
  max_edge: 96

tui:
  # default, monokai, dracula or nord
  theme: default
  sidebar_width: 36
  watch_debounce_ms: 250

server:
  addr: 127.0.0.1:7420
  read_timeout_seconds: 15

logging:
  enabled: true
  # debug, info, warn or error
  level: info
  max_size_mb: 10
  max_backups: 3
  compress: false

telemetry:
  tracing: false
  # trace_file: /tmp/framegraph-traces.json
  service_name: framegraph
`

func (o *rootOptions) runConfigInit(cmd *cobra.Command, force bool) error {
	path := o.configPath()
	if _, err := os.Stat(path); err == nil && !force {
		return errors.NewValidationError("config file already exists; use --force or 'framegraph config set'").
			WithField("path").WithValue(path)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return errors.Wrap(err, "create config directory")
	}
	if err := os.WriteFile(path, []byte(defaultConfigFile), 0644); err != nil {
		return errors.Wrap(err, "write config file")
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Created config file at %s\n", path)
	return nil
}
