package cmd

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/Iron-Ham/framegraph/internal/framegraph"
)

type buildFlags struct {
	json    bool
	rebuild bool
}

// buildSummary is the --json output of build.
type buildSummary struct {
	Capture   string           `json:"capture"`
	API       string           `json:"api"`
	Digest    string           `json:"digest"`
	BuildID   string           `json:"buildId"`
	Cached    bool             `json:"cached"`
	BuiltAt   time.Time        `json:"builtAt"`
	Stats     framegraph.Stats `json:"stats"`
	EndPasses []uint32         `json:"endPasses"`
}

func newBuildCmd(o *rootOptions) *cobra.Command {
	var f buildFlags
	cmd := &cobra.Command{
		Use:   "build <capture>",
		Short: "Build the frame graph and print a summary",
		Long: `Build the frame graph of a capture and print a summary.

The result is stored in the build cache, keyed by the capture's content, so
later commands on an unchanged capture skip the build.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return o.runBuild(cmd, args[0], f)
		},
	}
	cmd.Flags().BoolVar(&f.json, "json", false, "print the summary as JSON")
	cmd.Flags().BoolVar(&f.rebuild, "rebuild", false, "ignore any cached result")
	return cmd
}

func (o *rootOptions) runBuild(cmd *cobra.Command, path string, f buildFlags) error {
	ws, err := o.openWorkspace(path)
	if err != nil {
		return err
	}
	defer ws.Close()

	load := ws.Load
	if f.rebuild {
		load = ws.Rebuild
	}
	g, err := load(cmd.Context())
	if err != nil {
		return err
	}

	state := ws.State()
	doc, err := ws.Document()
	if err != nil {
		return err
	}

	sum := buildSummary{
		Capture: path,
		API:     doc.API,
		Digest:  state.Digest,
		BuildID: g.BuildID,
		Cached:  state.Cached,
		BuiltAt: g.BuiltAt,
		Stats:   g.Stats(),
	}
	for _, p := range g.EndPasses() {
		sum.EndPasses = append(sum.EndPasses, p.EffectiveEventID)
	}

	out := cmd.OutOrStdout()
	if f.json {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(sum)
	}

	source := "built"
	if sum.Cached {
		source = "cached"
	}
	st := sum.Stats
	fmt.Fprintf(out, "Capture:  %s (%s)\n", sum.Capture, sum.API)
	fmt.Fprintf(out, "Build:    %s (%s)\n", sum.BuildID, source)
	fmt.Fprintf(out, "Frames:   %d\n", st.Frames)
	fmt.Fprintf(out, "Passes:   %d (%d end)\n", st.Passes, st.EndPasses)
	fmt.Fprintf(out, "Edges:    %d\n", st.Edges)
	fmt.Fprintf(out, "Textures: %d (%d shared)\n", st.Textures, st.Shared)
	return nil
}
