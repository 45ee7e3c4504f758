package cmd

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/Iron-Ham/framegraph/internal/errors"
	"github.com/Iron-Ham/framegraph/internal/filter"
	"github.com/Iron-Ham/framegraph/internal/framegraph"
	"github.com/Iron-Ham/framegraph/internal/util"
)

type passesFlags struct {
	filter string
	frame  uint32
	hide   []string
}

// categoryKeys maps --hide names to filter categories.
var categoryKeys = map[string]string{
	"end":   filter.CategoryEnd,
	"color": filter.CategoryColor,
	"depth": filter.CategoryDepth,
}

func newPassesCmd(o *rootOptions) *cobra.Command {
	var f passesFlags
	cmd := &cobra.Command{
		Use:   "passes <capture>",
		Short: "List the passes of a capture",
		Long: `List the passes of a capture.

--filter takes a case-insensitive glob matched against pass names, titles
and the names of the resources a pass touches. A pattern without glob
characters matches anywhere, so "gbuffer" finds "vkCmdDraw(gbuffer 1)".`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return o.runPasses(cmd, args[0], f)
		},
	}
	cmd.Flags().StringVarP(&f.filter, "filter", "f", "", "glob pattern selecting passes")
	cmd.Flags().Uint32Var(&f.frame, "frame", 0, "only list passes of this frame")
	cmd.Flags().StringSliceVar(&f.hide, "hide", nil, "hide pass categories: end, color, depth")
	return cmd
}

func (o *rootOptions) runPasses(cmd *cobra.Command, path string, f passesFlags) error {
	flt, err := filter.Compile(f.filter)
	if err != nil {
		return err
	}
	for _, name := range f.hide {
		key, ok := categoryKeys[name]
		if !ok {
			return errors.NewValidationError("unknown pass category").WithField("hide").WithValue(name)
		}
		if flt.IsCategoryEnabled(key) {
			flt.ToggleCategory(key)
		}
	}

	ws, g, err := o.loadGraph(cmd, path)
	if err != nil {
		return err
	}
	defer ws.Close()

	var rows [][]string
	for _, p := range flt.Apply(g) {
		if f.frame != 0 && p.Frame != f.frame {
			continue
		}
		rows = append(rows, passRow(g, p))
	}
	if len(rows) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "no passes match")
		return nil
	}
	return writeTable(cmd.OutOrStdout(),
		[]string{"EID", "PASS", "FRAME", "EVENTS", "TARGETS", "NAME", "END"}, rows)
}

func passRow(g *framegraph.Graph, p framegraph.Pass) []string {
	end := ""
	if g.IsEndPass(p) {
		end = "yes"
	}
	return []string{
		strconv.FormatUint(uint64(p.EffectiveEventID), 10),
		p.Title(),
		strconv.FormatUint(uint64(p.Frame), 10),
		fmt.Sprintf("%d-%d", p.Start, p.End),
		framegraph.TargetInfo(p),
		util.TruncateLeft(p.Name, nameColumnWidth),
		end,
	}
}
