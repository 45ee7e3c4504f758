package cmd

import (
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/Iron-Ham/framegraph/internal/errors"
	"github.com/Iron-Ham/framegraph/internal/tui"
)

type viewFlags struct {
	watch     bool
	exportDir string
}

func newViewCmd(o *rootOptions) *cobra.Command {
	var f viewFlags
	cmd := &cobra.Command{
		Use:   "view <capture>",
		Short: "Browse the frame graph in the terminal",
		Long: `Browse the frame graph in the terminal.

Passes are listed by frame on the left; the selected pass's targets, reads
and dependencies are shown on the right. Press ? for keys.

With --watch the capture is rebuilt whenever it changes on disk.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return o.runView(cmd, args[0], f)
		},
	}
	cmd.Flags().BoolVarP(&f.watch, "watch", "w", false, "rebuild when the capture changes")
	cmd.Flags().StringVar(&f.exportDir, "export-dir", ".", "directory for exported DOT files")
	return cmd
}

func (o *rootOptions) runView(cmd *cobra.Command, path string, f viewFlags) error {
	if !term.IsTerminal(int(os.Stdout.Fd())) {
		return errors.NewValidationError("view needs an interactive terminal; use export or passes instead")
	}

	ws, err := o.openWorkspace(path)
	if err != nil {
		return err
	}
	defer ws.Close()

	app := tui.New(cmd.Context(), ws, tui.Options{
		Watch:     f.watch,
		ExportDir: f.exportDir,
	})
	return app.Run(cmd.Context())
}
