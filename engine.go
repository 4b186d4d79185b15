package phenograph

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"

	"golang.org/x/sync/errgroup"
)

var (
	// ErrNilDAG indicates an engine was constructed without a DAG.
	ErrNilDAG = errors.New("phenograph: nil DAG")
	// ErrDuplicateBasisVertex indicates the basis lists a vertex more than once.
	ErrDuplicateBasisVertex = errors.New("phenograph: duplicate basis vertex")
)

// cancelCheckInterval is how many vertex resolutions pass between context checks.
const cancelCheckInterval = 256

type visitState uint8

const (
	stateVisiting visitState = iota + 1
	stateDone
)

// Engine computes vertex colors against a fixed basis, caching every
// resolved vertex in its memo until Reset is called.
//
// Engine is safe for concurrent use once constructed.
type Engine struct {
	dag   *DAG
	basis []Vertex
	index map[Vertex]int
	opts  options
	memo  *Memo

	resolved atomic.Int64
}

// NewEngine prepares an engine tracing vertices of dag back to basis. The
// basis order defines the row order of every color matrix.
func NewEngine(dag *DAG, basis []Vertex, opts ...Option) (*Engine, error) {
	return newEngine(dag, basis, applyOptions(opts))
}

func newEngine(dag *DAG, basis []Vertex, cfg options) (*Engine, error) {
	if dag == nil {
		return nil, ErrNilDAG
	}
	index := make(map[Vertex]int, len(basis))
	for i, v := range basis {
		if _, dup := index[v]; dup {
			return nil, fmt.Errorf("%w: %d", ErrDuplicateBasisVertex, v)
		}
		if !dag.Has(v) {
			return nil, fmt.Errorf("%w: basis vertex %d", ErrUnknownVertex, v)
		}
		index[v] = i
	}
	return &Engine{
		dag:   dag,
		basis: append([]Vertex(nil), basis...),
		index: index,
		opts:  cfg,
		memo:  NewMemo(),
	}, nil
}

// Basis returns the basis vertices in row order.
func (e *Engine) Basis() []Vertex {
	return append([]Vertex(nil), e.basis...)
}

// Memo returns the engine's cache scope.
func (e *Engine) Memo() *Memo {
	return e.memo
}

// Resolved returns how many vertex colors the engine has computed.
func (e *Engine) Resolved() int64 {
	return e.resolved.Load()
}

// Reset discards every cached color.
func (e *Engine) Reset() {
	e.memo.Clear()
	e.resolved.Store(0)
}

// Trace returns the color of v: the fraction of each feature dimension of
// v's inflow attributable to each basis vertex.
//
// The ancestry is walked with an explicit stack, so depth is bounded only by
// memory. A cycle in the ancestry fails with a *CycleError.
func (e *Engine) Trace(ctx context.Context, v Vertex) (ColorMatrix, error) {
	event := TraceEvent{Scope: e.memo.ID(), Query: v, Vertex: v}
	invokeHook(ctx, e.opts.hooks.OnQueryStart, event)

	color, cached, err := e.trace(ctx, v)
	event.Color, event.Cached, event.Err = color, cached, err
	invokeHook(ctx, e.opts.hooks.OnQueryFinish, event)
	if err != nil {
		return ColorMatrix{}, err
	}
	return color, nil
}

// TraceAll traces every query, running up to workers traces at once. The
// result order matches queries. The first error cancels the remaining work.
func (e *Engine) TraceAll(ctx context.Context, queries []Vertex, workers int) ([]ColorMatrix, error) {
	out := make([]ColorMatrix, len(queries))
	if workers <= 1 {
		for i, q := range queries {
			c, err := e.Trace(ctx, q)
			if err != nil {
				return nil, err
			}
			out[i] = c
		}
		return out, nil
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i, q := range queries {
		g.Go(func() error {
			c, err := e.Trace(gctx, q)
			if err != nil {
				return err
			}
			out[i] = c
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

type frame struct {
	v        Vertex
	expanded bool
}

func (e *Engine) trace(ctx context.Context, query Vertex) (ColorMatrix, bool, error) {
	if !e.dag.Has(query) {
		return ColorMatrix{}, false, fmt.Errorf("%w: %d", ErrUnknownVertex, query)
	}
	if c, ok := e.memo.lookup(query); ok {
		return c, true, nil
	}
	if err := ctx.Err(); err != nil {
		return ColorMatrix{}, false, err
	}

	state := make(map[Vertex]visitState)
	stack := []frame{{v: query}}
	for len(stack) > 0 {
		top := len(stack) - 1
		f := stack[top]
		if _, ok := e.memo.get(f.v); ok {
			stack = stack[:top]
			continue
		}

		if !f.expanded {
			stack[top].expanded = true
			state[f.v] = stateVisiting
			if _, isBasis := e.index[f.v]; isBasis && e.opts.exclusive {
				continue
			}
			for _, in := range e.dag.in[f.v] {
				if _, ok := e.memo.lookup(in.from); ok {
					continue
				}
				if state[in.from] == stateVisiting {
					return ColorMatrix{}, false, &CycleError{Vertex: in.from}
				}
				stack = append(stack, frame{v: in.from})
			}
			continue
		}

		color, err := e.resolve(f.v)
		if err != nil {
			return ColorMatrix{}, false, err
		}
		color = e.memo.store(f.v, color)
		state[f.v] = stateDone
		stack = stack[:top]
		invokeHook(ctx, e.opts.hooks.OnVertexResolved, TraceEvent{
			Scope:  e.memo.ID(),
			Query:  query,
			Vertex: f.v,
			Color:  color,
		})

		if n := e.resolved.Add(1); n%cancelCheckInterval == 0 {
			if err := ctx.Err(); err != nil {
				return ColorMatrix{}, false, err
			}
		}
	}

	c, _ := e.memo.get(query)
	return c, false, nil
}

// resolve computes the color of v from the already cached colors of its
// predecessors.
func (e *Engine) resolve(v Vertex) (ColorMatrix, error) {
	rows, cols := len(e.basis), e.dag.featDim
	idx, isBasis := e.index[v]
	if isBasis && e.opts.exclusive {
		return oneHot(rows, cols, idx), nil
	}

	ins := e.dag.in[v]
	var color ColorMatrix
	if len(ins) == 0 {
		color = NewColorMatrix(rows, cols)
	} else {
		colors := make([]ColorMatrix, len(ins))
		feats := make([][]float64, len(ins))
		for k, in := range ins {
			c, ok := e.memo.get(in.from)
			if !ok {
				return ColorMatrix{}, fmt.Errorf("phenograph: predecessor %d of vertex %d unresolved", in.from, v)
			}
			colors[k] = c
			feats[k] = in.feat
		}
		var err error
		color, err = Diffuse(colors, feats)
		if err != nil {
			return ColorMatrix{}, fmt.Errorf("vertex %d: %w", v, err)
		}
	}
	if isBasis {
		color.add(oneHot(rows, cols, idx))
	}
	return color, nil
}
