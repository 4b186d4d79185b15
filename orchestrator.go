package phenograph

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
)

// now is overridden in tests to provide deterministic timings.
var now = time.Now

// ErrDuplicateLabel indicates two basis members share a display name.
// Choose a target set that keeps labels distinct.
var ErrDuplicateLabel = errors.New("phenograph: duplicate basis label")

// TraceMetrics aggregates call-level measurements.
type TraceMetrics struct {
	Scope            string
	StartedAt        time.Time
	CompletedAt      time.Time
	Duration         time.Duration
	Queries          int
	BasisSize        int
	FeatDim          int
	Workers          int
	VerticesResolved int64
	MemoHits         int64
}

// Traces maps each basis member's label to its share of the traced
// property, one entry per selected particle. Labels keep basis order.
type Traces struct {
	labels   []string
	vertices []Vertex
	values   map[string]Property
}

// Labels returns the basis labels in basis order.
func (t *Traces) Labels() []string {
	return append([]string(nil), t.labels...)
}

// Basis returns the basis vertices in basis order.
func (t *Traces) Basis() []Vertex {
	return append([]Vertex(nil), t.vertices...)
}

// Get returns the traced values attributed to label.
func (t *Traces) Get(label string) (Property, bool) {
	p, ok := t.values[label]
	return p, ok
}

// Len returns the number of basis members.
func (t *Traces) Len() int {
	return len(t.labels)
}

// HardTrace decomposes prop, for every particle selected by mask, into the
// contributions of the hard-process partons it descends from.
//
// The basis is every hard-process particle except the incoming partons,
// restricted by WithTarget when given, and is labelled by particle name.
// Each selected particle is traced from its consumer vertex. The returned
// values share prop's representation: Scalars stay Scalars, Vectors stay
// Vectors and a Composite keeps its field names.
//
// All colors are cached in a memo scoped to this call and discarded before
// returning, on success or failure.
func HardTrace(ctx context.Context, event *Event, mask Mask, prop Property, opts ...Option) (*Traces, TraceMetrics, error) {
	cfg := applyOptions(opts)
	metrics := TraceMetrics{StartedAt: now(), Workers: cfg.workers}

	if event == nil {
		return nil, finish(metrics), ErrNilEvent
	}
	ctx, span := startTraceSpan(ctx, event.Len(), mask.Count())
	defer span.End()

	traces, err := hardTrace(ctx, event, mask, prop, cfg, &metrics)
	metrics = finish(metrics)
	setTraceSpanResult(span, metrics, err)
	recordTraceMetrics(ctx, metrics, err == nil)
	if err != nil {
		cfg.logger.Debug("hard trace failed",
			zap.String("scope", metrics.Scope),
			zap.Error(err),
		)
		return nil, metrics, err
	}

	cfg.logger.Debug("hard trace completed",
		zap.String("scope", metrics.Scope),
		zap.Int("queries", metrics.Queries),
		zap.Int("basis", metrics.BasisSize),
		zap.Int("feat_dim", metrics.FeatDim),
		zap.Int64("vertices_resolved", metrics.VerticesResolved),
		zap.Int64("memo_hits", metrics.MemoHits),
		zap.Duration("duration", metrics.Duration),
	)
	return traces, metrics, nil
}

func finish(m TraceMetrics) TraceMetrics {
	m.CompletedAt = now()
	m.Duration = m.CompletedAt.Sub(m.StartedAt)
	return m
}

func hardTrace(ctx context.Context, event *Event, mask Mask, prop Property, cfg options, metrics *TraceMetrics) (*Traces, error) {
	if len(mask) != event.Len() {
		return nil, fmt.Errorf("%w: mask has %d entries, event has %d particles", ErrShapeMismatch, len(mask), event.Len())
	}
	adapter, err := newFeatureAdapter(prop)
	if err != nil {
		return nil, err
	}
	dag, err := buildDAG(event, adapter)
	if err != nil {
		return nil, err
	}
	metrics.FeatDim = dag.FeatDim()

	basis, labels, err := hardBasis(event, cfg.target)
	if err != nil {
		return nil, err
	}
	metrics.BasisSize = len(basis)

	engine, err := newEngine(dag, basis, cfg)
	if err != nil {
		return nil, err
	}
	metrics.Scope = engine.Memo().ID()
	defer engine.Reset()

	queries := make([]Vertex, 0, mask.Count())
	for _, i := range mask.Indices() {
		queries = append(queries, event.particles[i].Edge.Out)
	}
	metrics.Queries = len(queries)

	colors, err := engine.TraceAll(ctx, queries, cfg.workers)
	metrics.VerticesResolved = engine.Resolved()
	metrics.MemoHits = engine.Memo().Stats().Hits
	if err != nil {
		return nil, err
	}

	traces := &Traces{
		labels:   labels,
		vertices: basis,
		values:   make(map[string]Property, len(labels)),
	}
	for b, label := range labels {
		rows := make([][]float64, len(colors))
		for q, color := range colors {
			rows[q] = color.Row(b)
		}
		traces.values[label] = adapter.restore(rows)
	}
	return traces, nil
}

// hardBasis returns the consumer vertex and name of every non-incoming
// hard-process particle, optionally restricted to the target codes.
func hardBasis(event *Event, target []PDG) ([]Vertex, []string, error) {
	selected := event.HardMask().Partons()
	if len(target) > 0 {
		selected = selected.And(event.PDGMask(target, true))
	}

	indices := selected.Indices()
	basis := make([]Vertex, 0, len(indices))
	labels := make([]string, 0, len(indices))
	seen := make(map[string]struct{}, len(indices))
	for _, i := range indices {
		p := event.particles[i]
		label := p.PDG.Name()
		if _, dup := seen[label]; dup {
			return nil, nil, fmt.Errorf("%w: %q", ErrDuplicateLabel, label)
		}
		seen[label] = struct{}{}
		basis = append(basis, p.Edge.Out)
		labels = append(labels, label)
	}
	return basis, labels, nil
}
