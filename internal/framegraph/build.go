package framegraph

import (
	"context"
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/Iron-Ham/framegraph/internal/capture"
	"github.com/Iron-Ham/framegraph/internal/errors"
	"github.com/Iron-Ham/framegraph/internal/logging"
)

// BuilderVersion changes whenever a build would produce a different graph
// from the same capture. Cached graphs are keyed by it.
const BuilderVersion = "3"

// Build stages, as reported in progress, logs and errors.
const (
	StagePasses = "passes"
	StageUsages = "usages"
	StageLink   = "link"
	StageDone   = "done"
)

// Stage boundaries on the 0..1 progress scale.
const (
	passesEnd = 0.7
	usagesEnd = 0.8
	linkEnd   = 0.9
)

// Progress is reported while a build runs.
type Progress struct {
	Stage    string
	Fraction float64
}

// Options configures Build.
type Options struct {
	// Workers bounds concurrent usage fetches.
	Workers int
	// Progress, when set, is called at stage boundaries and periodically
	// within stages. It may be called from several goroutines, never
	// concurrently.
	Progress func(Progress)
	Logger   *logging.Logger
}

// Build runs the pass builder, usage collector and dependency linker over
// src and returns the resulting graph.
func Build(ctx context.Context, src capture.Source, opts Options) (g *Graph, err error) {
	if src == nil {
		return nil, errors.ErrCaptureNotLoaded
	}

	buildID := uuid.NewString()
	logger := opts.Logger
	if logger == nil {
		logger = logging.NopLogger()
	}
	logger = logger.WithBuild(buildID)

	start := time.Now()
	ctx, span := startBuildSpan(ctx, buildID)
	defer func() {
		setBuildSpanResult(span, g, err)
		span.End()
		passes, edges := 0, 0
		if g != nil {
			passes, edges = len(g.Passes), len(g.Edges)
		}
		recordBuildMetrics(ctx, time.Since(start), passes, edges, err == nil)
	}()

	report := newReporter(opts.Progress)
	logger.Info("frame graph build started")

	events, err := runStage(ctx, logger, StagePasses, func(ctx context.Context) ([]capture.Event, error) {
		return src.Events(ctx)
	})
	if err != nil {
		return nil, err
	}
	info := capture.FrameInfoOf(src)
	step := max(len(events)/100, 1)
	passes := buildPasses(events, info.FrameNumber, func(done, total int) {
		if done%step == 0 {
			report(StagePasses, passesEnd*float64(done)/float64(total))
		}
	})
	report(StagePasses, passesEnd)
	logger.Debug("passes built", "events", len(events), "passes", len(passes))

	textures, err := src.Textures(ctx)
	if err != nil {
		return nil, errors.NewBuildError("fetch textures", err).WithStage(StageUsages)
	}

	type collected struct {
		passes []Pass
		usages UsageIndex
	}
	c, err := runStage(ctx, logger, StageUsages, func(ctx context.Context) (collected, error) {
		p, u, err := CollectUsages(ctx, src, passes, textures, CollectOptions{
			Workers: opts.Workers,
			Events:  events,
			Progress: func(done, total int) {
				report(StageUsages, passesEnd+(usagesEnd-passesEnd)*float64(done)/float64(total))
			},
		})
		return collected{p, u}, err
	})
	if err != nil {
		return nil, err
	}
	report(StageUsages, usagesEnd)

	edges, _ := runStage(ctx, logger, StageLink, func(context.Context) ([]Edge, error) {
		return LinkDependencies(c.passes, c.usages), nil
	})
	report(StageLink, linkEnd)

	g = &Graph{
		BuildID:   buildID,
		Version:   BuilderVersion,
		BuiltAt:   time.Now().UTC(),
		FrameInfo: info,
		Passes:    MarkDependencies(c.passes, edges),
		Edges:     edges,
		Usages:    c.usages,
		Textures:  textures,
		Names:     resourceNames(src, textures, c.passes),
	}
	g.Restore()
	report(StageDone, 1)

	logger.Info("frame graph build finished",
		"passes", len(g.Passes),
		"edges", len(g.Edges),
		"duration_ms", time.Since(start).Milliseconds(),
	)
	return g, nil
}

// runStage traces, times and logs one stage and checks for cancellation
// before it starts.
func runStage[T any](ctx context.Context, logger *logging.Logger, stage string, fn func(context.Context) (T, error)) (T, error) {
	var zero T
	if err := ctx.Err(); err != nil {
		return zero, errors.NewBuildError("build canceled", fmt.Errorf("%w: %w", errors.ErrCanceled, err)).WithStage(stage)
	}

	ctx, span := startStageSpan(ctx, stage)
	defer span.End()

	start := time.Now()
	v, err := fn(ctx)
	recordStageMetrics(ctx, stage, time.Since(start))
	if err != nil {
		span.RecordError(err)
		logger.WithStage(stage).Error("stage failed", "error", err)
		var buildErr *errors.BuildError
		if !errors.As(err, &buildErr) {
			err = errors.NewBuildError(stage+" failed", err).WithStage(stage)
		}
		return zero, err
	}
	return v, nil
}

// newReporter serialises progress calls and keeps fractions monotonic.
func newReporter(fn func(Progress)) func(stage string, fraction float64) {
	if fn == nil {
		return func(string, float64) {}
	}
	var (
		mu   sync.Mutex
		last float64
	)
	return func(stage string, fraction float64) {
		mu.Lock()
		defer mu.Unlock()
		if fraction < last {
			return
		}
		last = fraction
		fn(Progress{Stage: stage, Fraction: fraction})
	}
}

// resourceNames records names for pass targets that are not textures but
// that the source can name.
func resourceNames(src capture.Source, textures []capture.Texture, passes []Pass) map[capture.ResourceID]string {
	namer, ok := src.(capture.ResourceNamer)
	if !ok {
		return nil
	}
	known := make(map[capture.ResourceID]bool, len(textures))
	for _, t := range textures {
		known[t.ID] = true
	}
	names := make(map[capture.ResourceID]string)
	for _, p := range passes {
		for _, id := range append(slices.Clone(p.Outputs), p.DepthOut) {
			if id.IsNull() || known[id] {
				continue
			}
			if name, ok := namer.ResourceName(id); ok {
				names[id] = name
			}
		}
	}
	if len(names) == 0 {
		return nil
	}
	return names
}
