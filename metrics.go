package phenograph

import (
	"context"
	"sync"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
)

var (
	tracer = otel.Tracer("phenograph")
	meter  = otel.Meter("phenograph")
)

var (
	traceLatency     metric.Float64Histogram
	traceTotal       metric.Int64Counter
	queriesTraced    metric.Int64Counter
	verticesResolved metric.Int64Counter
	memoHits         metric.Int64Counter

	metricsOnce sync.Once
	metricsErr  error
)

// initMetrics initializes the instruments. Safe to call multiple times.
func initMetrics() error {
	metricsOnce.Do(func() {
		var err error

		traceLatency, err = meter.Float64Histogram(
			"phenograph_hard_trace_duration_seconds",
			metric.WithDescription("Duration of hard trace calls"),
			metric.WithUnit("s"),
		)
		if err != nil {
			metricsErr = err
			return
		}

		traceTotal, err = meter.Int64Counter(
			"phenograph_hard_trace_total",
			metric.WithDescription("Total number of hard trace calls"),
		)
		if err != nil {
			metricsErr = err
			return
		}

		queriesTraced, err = meter.Int64Counter(
			"phenograph_queries_traced_total",
			metric.WithDescription("Query vertices traced"),
		)
		if err != nil {
			metricsErr = err
			return
		}

		verticesResolved, err = meter.Int64Counter(
			"phenograph_vertices_resolved_total",
			metric.WithDescription("Vertex colors computed"),
		)
		if err != nil {
			metricsErr = err
			return
		}

		memoHits, err = meter.Int64Counter(
			"phenograph_memo_hits_total",
			metric.WithDescription("Vertex colors served from the per-call memo"),
		)
		if err != nil {
			metricsErr = err
			return
		}
	})
	return metricsErr
}

func recordTraceMetrics(ctx context.Context, m TraceMetrics, success bool) {
	if err := initMetrics(); err != nil {
		return
	}

	attrs := metric.WithAttributes(attribute.Bool("success", success))
	traceLatency.Record(ctx, m.Duration.Seconds(), attrs)
	traceTotal.Add(ctx, 1, attrs)

	if success {
		queriesTraced.Add(ctx, int64(m.Queries))
		verticesResolved.Add(ctx, m.VerticesResolved)
		memoHits.Add(ctx, m.MemoHits)
	}
}

func startTraceSpan(ctx context.Context, particles, selected int) (context.Context, trace.Span) {
	return tracer.Start(ctx, "phenograph.HardTrace",
		trace.WithAttributes(
			attribute.Int("event.particles", particles),
			attribute.Int("event.selected", selected),
		),
	)
}

func setTraceSpanResult(span trace.Span, m TraceMetrics, err error) {
	span.SetAttributes(
		attribute.String("trace.scope", m.Scope),
		attribute.Int("trace.basis_size", m.BasisSize),
		attribute.Int("trace.feat_dim", m.FeatDim),
		attribute.Int("trace.queries", m.Queries),
		attribute.Int64("trace.vertices_resolved", m.VerticesResolved),
		attribute.Int64("trace.memo_hits", m.MemoHits),
	)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
}
