package cmd

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/Iron-Ham/framegraph/internal/framegraph"
	"github.com/Iron-Ham/framegraph/internal/util"
)

func newEdgesCmd(o *rootOptions) *cobra.Command {
	var kind string
	cmd := &cobra.Command{
		Use:   "edges <capture>",
		Short: "List the dependencies between passes",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return o.runEdges(cmd, args[0], kind)
		},
	}
	cmd.Flags().StringVar(&kind, "kind", "", "only list edges of this kind: color or depth")
	return cmd
}

func (o *rootOptions) runEdges(cmd *cobra.Command, path, kind string) error {
	var want *framegraph.EdgeKind
	if kind != "" {
		var k framegraph.EdgeKind
		if err := k.UnmarshalText([]byte(kind)); err != nil {
			return err
		}
		want = &k
	}

	ws, g, err := o.loadGraph(cmd, path)
	if err != nil {
		return err
	}
	defer ws.Close()

	var rows [][]string
	for _, e := range g.Edges {
		if want != nil && e.Kind != *want {
			continue
		}
		rows = append(rows, []string{
			strconv.FormatUint(uint64(e.From), 10),
			strconv.FormatUint(uint64(e.To), 10),
			e.Resource.String(),
			util.Truncate(g.ResourceName(e.Resource), nameColumnWidth),
			e.Kind.String(),
			e.FromUsage.String(),
			e.ToUsage.String(),
		})
	}
	if len(rows) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "no edges")
		return nil
	}
	return writeTable(cmd.OutOrStdout(),
		[]string{"FROM", "TO", "RESOURCE", "NAME", "KIND", "FROM USAGE", "TO USAGE"}, rows)
}
