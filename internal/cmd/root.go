// Package cmd implements the framegraph command line.
package cmd

import (
	"context"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/Iron-Ham/framegraph/internal/config"
	"github.com/Iron-Ham/framegraph/internal/errors"
	"github.com/Iron-Ham/framegraph/internal/logging"
)

// Version is stamped at link time.
var Version = "dev"

// envPrefix namespaces environment overrides, e.g. FRAMEGRAPH_BUILD_WORKERS.
const envPrefix = "FRAMEGRAPH"

// rootOptions is the state shared by every subcommand of one invocation.
type rootOptions struct {
	configFile string
	logLevel   string
	noCache    bool

	v      *viper.Viper
	cfg    *config.Config
	logger *logging.Logger
}

// Execute runs the command line until it finishes or the process is
// interrupted.
func Execute() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return newRootCmd().ExecuteContext(ctx)
}

func newRootCmd() *cobra.Command {
	o := &rootOptions{v: viper.New()}

	root := &cobra.Command{
		Use:   "framegraph",
		Short: "Frame graph builder for GPU captures",
		Long: `framegraph turns a GPU frame capture into a graph of render passes and
the resources that flow between them.

Passes are runs of consecutive draws writing the same targets. An edge joins
the last pass that wrote a resource to each later pass that reads it.`,
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: false,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return o.init(cmd)
		},
		PersistentPostRun: func(*cobra.Command, []string) {
			if o.logger != nil {
				_ = o.logger.Close()
			}
		},
	}

	pf := root.PersistentFlags()
	pf.StringVarP(&o.configFile, "config", "c", "", "config file (default is $XDG_CONFIG_HOME/framegraph/config.yaml)")
	pf.StringVar(&o.logLevel, "log-level", "", "log level: debug, info, warn, error")
	pf.BoolVar(&o.noCache, "no-cache", false, "neither read nor write the build cache")

	root.AddCommand(
		newBuildCmd(o),
		newPassesCmd(o),
		newEdgesCmd(o),
		newExportCmd(o),
		newViewCmd(o),
		newServeCmd(o),
		newConfigCmd(o),
	)
	return root
}

// init reads the configuration and opens the logger.
func (o *rootOptions) init(cmd *cobra.Command) error {
	v := o.v
	config.SetDefaultsOn(v)

	if o.configFile != "" {
		v.SetConfigFile(o.configFile)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(config.ConfigDir())
		v.AddConfigPath(".")
	}

	v.SetEnvPrefix(envPrefix)
	// FRAMEGRAPH_VIEW_DEFAULT for view.default
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// config subcommands must work on a missing or broken file so it can
	// be created or fixed.
	configCmd := isConfigCmd(cmd)

	if err := v.ReadInConfig(); err != nil && !configCmd {
		var notFound viper.ConfigFileNotFoundError
		if o.configFile != "" || !errors.As(err, &notFound) {
			return errors.Wrapf(err, "read config")
		}
	}

	if o.logLevel != "" {
		v.Set("logging.level", strings.ToLower(o.logLevel))
	}

	if configCmd {
		o.cfg = config.Default()
		o.logger = logging.NopLogger()
		return nil
	}

	cfg, err := config.LoadFrom(v)
	if err != nil {
		return errors.Wrap(err, "invalid configuration")
	}
	o.cfg = cfg

	logger, err := newLogger(cfg.Logging, o.logLevel != "")
	if err != nil {
		return err
	}
	o.logger = logger
	logger.Debug("configuration loaded", "file", v.ConfigFileUsed(), "command", cmd.Name())
	return nil
}

func isConfigCmd(cmd *cobra.Command) bool {
	for c := cmd; c != nil; c = c.Parent() {
		if c.Name() == "config" {
			return true
		}
	}
	return false
}

// newLogger writes to the rotating state-dir log when enabled. Otherwise
// logs go to stderr, at WARN unless a level was asked for explicitly.
func newLogger(cfg config.LoggingConfig, explicitLevel bool) (*logging.Logger, error) {
	if !cfg.Enabled {
		level := logging.LevelWarn
		if explicitLevel {
			level = cfg.Level
		}
		return logging.NewWriterLogger(os.Stderr, level), nil
	}
	return logging.NewLoggerWithRotation(config.StateDir(), cfg.Level, logging.RotationConfig{
		MaxSizeMB:  cfg.MaxSizeMB,
		MaxBackups: cfg.MaxBackups,
		Compress:   cfg.Compress,
	})
}
