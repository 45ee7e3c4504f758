package cmd

import (
	"github.com/spf13/cobra"

	"github.com/Iron-Ham/framegraph/internal/framegraph"
	"github.com/Iron-Ham/framegraph/internal/workspace"
)

// openWorkspace opens the capture named on the command line.
func (o *rootOptions) openWorkspace(path string) (*workspace.Workspace, error) {
	return workspace.Open(path, workspace.Options{
		Config:  o.cfg,
		Logger:  o.logger,
		NoCache: o.noCache,
	})
}

// loadGraph opens the capture and builds (or fetches) its graph. The caller
// closes the workspace.
func (o *rootOptions) loadGraph(cmd *cobra.Command, path string) (*workspace.Workspace, *framegraph.Graph, error) {
	ws, err := o.openWorkspace(path)
	if err != nil {
		return nil, nil, err
	}
	g, err := ws.Load(cmd.Context())
	if err != nil {
		_ = ws.Close()
		return nil, nil, err
	}
	return ws, g, nil
}
