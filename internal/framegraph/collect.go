package framegraph

import (
	"context"
	"fmt"
	"slices"
	"sync/atomic"

	"golang.org/x/sync/errgroup"

	"github.com/Iron-Ham/framegraph/internal/capture"
	"github.com/Iron-Ham/framegraph/internal/errors"
)

// DefaultWorkers bounds concurrent usage fetches when no limit is given.
const DefaultWorkers = 4

// UsageIndex maps a pass's effective event id to the usages filed under it,
// in texture order.
type UsageIndex map[uint32][]capture.EventUsage

// Last returns the last usage of res filed under the pass.
func (ix UsageIndex) Last(eid uint32, res capture.ResourceID) (capture.EventUsage, bool) {
	usages := ix[eid]
	for i := len(usages) - 1; i >= 0; i-- {
		if usages[i].Resource == res {
			return usages[i], true
		}
	}
	return capture.EventUsage{}, false
}

// CollectOptions tunes CollectUsages.
type CollectOptions struct {
	// Workers bounds concurrent Usage calls. Zero means DefaultWorkers.
	Workers int
	// Events is the flattened event list used to combine usage ranges.
	// When nil it is fetched from the source.
	Events []capture.Event
	// Progress receives the number of textures processed so far.
	Progress func(done, total int)
}

// CollectUsages files every texture usage under the pass whose event range
// contains it. Input usages become read attachments, everything else a draw
// attachment. passes must be sorted by Start; they are not modified.
func CollectUsages(ctx context.Context, src capture.Source, passes []Pass, textures []capture.Texture, opts CollectOptions) ([]Pass, UsageIndex, error) {
	events := opts.Events
	if events == nil {
		var err error
		if events, err = src.Events(ctx); err != nil {
			return nil, nil, errors.NewBuildError("fetch events", err).WithStage(StageUsages)
		}
	}

	workers := opts.Workers
	if workers <= 0 {
		workers = DefaultWorkers
	}

	combined := make([][]capture.EventUsage, len(textures))
	var done atomic.Int64

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i, tex := range textures {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			usages, err := src.Usage(gctx, tex.ID)
			if err != nil {
				return errors.NewBuildError("fetch texture usage", err).
					WithStage(StageUsages).
					WithResource(tex.ID.String())
			}
			combined[i] = capture.CombineUsage(events, usages)
			if opts.Progress != nil {
				opts.Progress(int(done.Add(1)), len(textures))
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, nil, errors.NewBuildError("collect usages", fmt.Errorf("%w: %w", errors.ErrCanceled, ctxErr)).WithStage(StageUsages)
		}
		return nil, nil, err
	}

	out := make([]Pass, len(passes))
	copy(out, passes)
	for i := range out {
		out[i].Reads = slices.Clone(out[i].Reads)
		out[i].Draws = slices.Clone(out[i].Draws)
	}

	index := make(UsageIndex)
	for i, tex := range textures {
		for _, u := range combined[i] {
			p := findPass(out, u.EventID)
			if p < 0 {
				continue
			}
			if u.Usage.IsInput() {
				out[p].Reads = out[p].Reads.With(tex.ID)
			} else {
				out[p].Draws = out[p].Draws.With(tex.ID)
			}
			eid := out[p].EffectiveEventID
			index[eid] = append(index[eid], u)
		}
	}
	return out, index, nil
}

// findPass returns the index of the pass whose range contains eid, or -1.
func findPass(passes []Pass, eid uint32) int {
	i, _ := slices.BinarySearchFunc(passes, eid, func(p Pass, eid uint32) int {
		switch {
		case p.End < eid:
			return -1
		case p.Start > eid:
			return 1
		default:
			return 0
		}
	})
	if i < len(passes) && passes[i].Contains(eid) {
		return i
	}
	return -1
}
