package phenograph

import (
	"errors"
	"fmt"
)

var (
	// ErrCycleDetected indicates the event history contains a cycle.
	ErrCycleDetected = errors.New("phenograph: cycle detected")
	// ErrUnknownVertex indicates a vertex that does not appear in the DAG.
	ErrUnknownVertex = errors.New("phenograph: unknown vertex")
	// ErrFeatureDim indicates an edge feature does not have the DAG's dimensionality.
	ErrFeatureDim = errors.New("phenograph: feature dimension mismatch")
)

// CycleError reports the vertex at which a cycle was found.
type CycleError struct {
	Vertex Vertex
}

func (e *CycleError) Error() string {
	return fmt.Sprintf("phenograph: cycle detected at vertex %d", e.Vertex)
}

// Unwrap allows errors.Is(err, ErrCycleDetected).
func (e *CycleError) Unwrap() error {
	return ErrCycleDetected
}

type inEdge struct {
	from Vertex
	feat []float64
}

// DAG is an event history annotated with a per-edge feature vector.
// Parallel edges between the same pair of vertices are kept separately.
//
// A DAG is not safe for concurrent mutation; it may be read concurrently
// once built.
type DAG struct {
	featDim  int
	in       map[Vertex][]inEdge
	out      map[Vertex][]Vertex
	vertices []Vertex
	edges    int
}

// NewDAG constructs an empty DAG whose edges carry featDim features.
func NewDAG(featDim int) (*DAG, error) {
	if featDim < 1 {
		return nil, fmt.Errorf("%w: feature dimension must be positive, got %d", ErrFeatureDim, featDim)
	}
	return newDAG(featDim), nil
}

func newDAG(featDim int) *DAG {
	return &DAG{
		featDim: featDim,
		in:      make(map[Vertex][]inEdge),
		out:     make(map[Vertex][]Vertex),
	}
}

// BuildDAG annotates the event's particle edges with the matching entries
// of prop. prop must have one entry per particle.
func BuildDAG(event *Event, prop Property) (*DAG, error) {
	if event == nil {
		return nil, ErrNilEvent
	}
	adapter, err := newFeatureAdapter(prop)
	if err != nil {
		return nil, err
	}
	return buildDAG(event, adapter)
}

func buildDAG(event *Event, adapter featureAdapter) (*DAG, error) {
	if adapter.count() != event.Len() {
		return nil, fmt.Errorf("%w: property has %d entries, event has %d particles", ErrShapeMismatch, adapter.count(), event.Len())
	}
	d := newDAG(adapter.dim())
	for i, p := range event.particles {
		if err := d.AddEdge(p.Edge.In, p.Edge.Out, adapter.row(i)...); err != nil {
			return nil, fmt.Errorf("particle %d: %w", i, err)
		}
	}
	return d, nil
}

// AddEdge records a particle travelling from one vertex to another.
// The feature slice is copied.
func (d *DAG) AddEdge(from, to Vertex, feat ...float64) error {
	if len(feat) != d.featDim {
		return fmt.Errorf("%w: edge %d -> %d has %d features, want %d", ErrFeatureDim, from, to, len(feat), d.featDim)
	}
	d.touch(from)
	d.touch(to)
	d.in[to] = append(d.in[to], inEdge{from: from, feat: append([]float64(nil), feat...)})
	d.out[from] = append(d.out[from], to)
	d.edges++
	return nil
}

func (d *DAG) touch(v Vertex) {
	if _, ok := d.in[v]; ok {
		return
	}
	d.in[v] = nil
	d.vertices = append(d.vertices, v)
}

// FeatDim returns the length of every edge feature vector.
func (d *DAG) FeatDim() int {
	return d.featDim
}

// Has reports whether v appears in the DAG.
func (d *DAG) Has(v Vertex) bool {
	_, ok := d.in[v]
	return ok
}

// VertexCount returns the number of distinct vertices.
func (d *DAG) VertexCount() int {
	return len(d.vertices)
}

// EdgeCount returns the number of edges, counting parallel edges separately.
func (d *DAG) EdgeCount() int {
	return d.edges
}

// Vertices returns the vertices in order of first appearance.
func (d *DAG) Vertices() []Vertex {
	return append([]Vertex(nil), d.vertices...)
}

// Predecessors returns the producer vertex of every in-edge of v, one
// entry per edge.
func (d *DAG) Predecessors(v Vertex) []Vertex {
	ins := d.in[v]
	preds := make([]Vertex, len(ins))
	for i, e := range ins {
		preds[i] = e.from
	}
	return preds
}

// Validate ensures the graph is acyclic.
func (d *DAG) Validate() error {
	_, err := analyzeDAG(d)
	return err
}

// analyzeDAG returns the vertices in topological order using Kahn's algorithm.
func analyzeDAG(d *DAG) ([]Vertex, error) {
	remaining := make(map[Vertex]int, len(d.vertices))
	queue := make([]Vertex, 0, len(d.vertices))
	for _, v := range d.vertices {
		deg := len(d.in[v])
		remaining[v] = deg
		if deg == 0 {
			queue = append(queue, v)
		}
	}

	order := make([]Vertex, 0, len(d.vertices))
	for len(queue) > 0 {
		v := queue[0]
		queue = queue[1:]
		order = append(order, v)

		for _, next := range d.out[v] {
			remaining[next]--
			if remaining[next] == 0 {
				queue = append(queue, next)
			}
		}
	}

	if len(order) != len(d.vertices) {
		for _, v := range d.vertices {
			if remaining[v] > 0 {
				return nil, &CycleError{Vertex: v}
			}
		}
		return nil, ErrCycleDetected
	}
	return order, nil
}
