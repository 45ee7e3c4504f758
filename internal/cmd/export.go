package cmd

import (
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/Iron-Ham/framegraph/internal/errors"
	"github.com/Iron-Ham/framegraph/internal/export"
	"github.com/Iron-Ham/framegraph/internal/framegraph"
)

type exportFlags struct {
	format string
	output string
}

func newExportCmd(o *rootOptions) *cobra.Command {
	var f exportFlags
	formats := make([]string, 0, len(export.Formats()))
	for _, ff := range export.Formats() {
		formats = append(formats, string(ff))
	}
	cmd := &cobra.Command{
		Use:   "export <capture>",
		Short: "Render the frame graph",
		Long: `Render the frame graph as Graphviz DOT, a node-editor model, a JSON
snapshot or a laid-out SVG.

Formats: ` + strings.Join(formats, ", ") + `
Without --format, the DOT of the configured default view is written.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return o.runExport(cmd, args[0], f)
		},
	}
	cmd.Flags().StringVarP(&f.format, "format", "f", "", "output format")
	cmd.Flags().StringVarP(&f.output, "output", "o", "", "output file (default stdout)")
	return cmd
}

func (o *rootOptions) runExport(cmd *cobra.Command, path string, f exportFlags) error {
	format, err := o.exportFormat(f.format)
	if err != nil {
		return err
	}

	ws, _, err := o.loadGraph(cmd, path)
	if err != nil {
		return err
	}
	defer ws.Close()

	if f.output == "" || f.output == "-" {
		return ws.Export(cmd.OutOrStdout(), format)
	}
	return writeFileAtomic(f.output, func(w io.Writer) error {
		return ws.Export(w, format)
	})
}

func (o *rootOptions) exportFormat(name string) (export.Format, error) {
	if name != "" {
		return export.ParseFormat(name)
	}
	v, err := framegraph.ParseView(o.cfg.View.Default)
	if err != nil {
		return "", err
	}
	return export.ForView(v), nil
}

// writeFileAtomic writes through a temporary file so a failed render never
// leaves a truncated output behind.
func writeFileAtomic(path string, write func(io.Writer) error) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), ".framegraph-*")
	if err != nil {
		return errors.Wrap(err, "create output")
	}
	defer os.Remove(tmp.Name())

	if err := write(tmp); err != nil {
		_ = tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return errors.Wrap(err, "write output")
	}
	return errors.Wrap(os.Rename(tmp.Name(), path), "write output")
}
