package framegraph

import (
	"context"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
)

var (
	tracer = otel.Tracer("framegraph.build")
	meter  = otel.Meter("framegraph.build")
)

var (
	buildLatency metric.Float64Histogram
	buildTotal   metric.Int64Counter
	stageLatency metric.Float64Histogram
	passesBuilt  metric.Int64Histogram
	edgesLinked  metric.Int64Histogram

	metricsOnce sync.Once
	metricsErr  error
)

// initMetrics creates the instruments on first use.
func initMetrics() error {
	metricsOnce.Do(func() {
		var err error

		buildLatency, err = meter.Float64Histogram(
			"framegraph_build_duration_seconds",
			metric.WithDescription("Duration of frame graph builds"),
			metric.WithUnit("s"),
		)
		if err != nil {
			metricsErr = err
			return
		}

		buildTotal, err = meter.Int64Counter(
			"framegraph_build_total",
			metric.WithDescription("Total number of frame graph builds"),
		)
		if err != nil {
			metricsErr = err
			return
		}

		stageLatency, err = meter.Float64Histogram(
			"framegraph_stage_duration_seconds",
			metric.WithDescription("Duration of individual build stages"),
			metric.WithUnit("s"),
		)
		if err != nil {
			metricsErr = err
			return
		}

		passesBuilt, err = meter.Int64Histogram(
			"framegraph_passes",
			metric.WithDescription("Number of passes per build"),
		)
		if err != nil {
			metricsErr = err
			return
		}

		edgesLinked, err = meter.Int64Histogram(
			"framegraph_edges",
			metric.WithDescription("Number of dependency edges per build"),
		)
		if err != nil {
			metricsErr = err
		}
	})
	return metricsErr
}

func recordBuildMetrics(ctx context.Context, duration time.Duration, passCount, edgeCount int, success bool) {
	if err := initMetrics(); err != nil {
		return
	}

	attrs := metric.WithAttributes(attribute.Bool("success", success))
	buildLatency.Record(ctx, duration.Seconds(), attrs)
	buildTotal.Add(ctx, 1, attrs)

	if success {
		passesBuilt.Record(ctx, int64(passCount))
		edgesLinked.Record(ctx, int64(edgeCount))
	}
}

func recordStageMetrics(ctx context.Context, stage string, duration time.Duration) {
	if err := initMetrics(); err != nil {
		return
	}
	stageLatency.Record(ctx, duration.Seconds(),
		metric.WithAttributes(attribute.String("stage", stage)),
	)
}

func startBuildSpan(ctx context.Context, buildID string) (context.Context, trace.Span) {
	return tracer.Start(ctx, "framegraph.Build",
		trace.WithAttributes(attribute.String("framegraph.build_id", buildID)),
	)
}

func startStageSpan(ctx context.Context, stage string) (context.Context, trace.Span) {
	return tracer.Start(ctx, "framegraph."+stage,
		trace.WithAttributes(attribute.String("framegraph.stage", stage)),
	)
}

func setBuildSpanResult(span trace.Span, g *Graph, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return
	}
	span.SetAttributes(
		attribute.Int("framegraph.pass_count", len(g.Passes)),
		attribute.Int("framegraph.edge_count", len(g.Edges)),
		attribute.Int("framegraph.texture_count", len(g.Textures)),
	)
}
