package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/Iron-Ham/framegraph/internal/server"
	"github.com/Iron-Ham/framegraph/internal/telemetry"
)

type serveFlags struct {
	addr  string
	watch bool
}

func newServeCmd(o *rootOptions) *cobra.Command {
	var f serveFlags
	cmd := &cobra.Command{
		Use:   "serve <capture>",
		Short: "Serve the frame graph over HTTP",
		Long: `Serve the frame graph of a capture over HTTP.

The API lists passes and edges, resolves effective event ids, renders every
export format and maps selections to viewer intents. Prometheus metrics are
served on /metrics. A capture that fails to load is reported by /healthz and
retried on change or on POST /api/rebuild.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return o.runServe(cmd, args[0], f)
		},
	}
	cmd.Flags().StringVar(&f.addr, "addr", "", "listen address (default from server.addr)")
	cmd.Flags().BoolVarP(&f.watch, "watch", "w", true, "rebuild when the capture changes")
	return cmd
}

func (o *rootOptions) runServe(cmd *cobra.Command, path string, f serveFlags) error {
	ctx := cmd.Context()
	cfg := o.cfg

	tel, err := telemetry.Init(ctx, telemetry.FromConfig(cfg.Telemetry, Version))
	if err != nil {
		return err
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = tel.Shutdown(shutdownCtx)
	}()

	ws, err := o.openWorkspace(path)
	if err != nil {
		return err
	}
	defer ws.Close()

	if _, err := ws.Load(ctx); err != nil {
		o.logger.Warn("initial load failed, serving anyway", "error", err)
	}
	if f.watch {
		if err := ws.Watch(ctx); err != nil {
			return err
		}
	}

	addr := f.addr
	if addr == "" {
		addr = cfg.Server.Addr
	}
	srv := server.New(ws, server.Options{
		Addr:        addr,
		ReadTimeout: cfg.Server.ReadTimeout(),
		Registry:    tel.Registry,
		ServiceName: cfg.Telemetry.ServiceName,
		Logger:      o.logger,
	})
	defer srv.Close()

	fmt.Fprintf(cmd.OutOrStdout(), "serving %s on http://%s\n", path, addr)
	return srv.Run(ctx)
}
