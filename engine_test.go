package phenograph

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testEdge struct {
	from, to Vertex
	feat     []float64
}

func buildTestDAG(t *testing.T, featDim int, edges ...testEdge) *DAG {
	t.Helper()
	d, err := NewDAG(featDim)
	require.NoError(t, err)
	for _, e := range edges {
		require.NoError(t, d.AddEdge(e.from, e.to, e.feat...))
	}
	return d
}

func TestTraceChain(t *testing.T) {
	const a, b, c = 1, 2, 3
	d := buildTestDAG(t, 1,
		testEdge{a, b, []float64{2}},
		testEdge{b, c, []float64{2}},
	)

	engine, err := NewEngine(d, []Vertex{a})
	require.NoError(t, err)

	color, err := engine.Trace(context.Background(), c)
	require.NoError(t, err)
	assert.Equal(t, [][]float64{{1}}, color.Rows())
}

func TestTraceSplitsByFeatureShare(t *testing.T) {
	const a, c, d = 1, 3, 4
	dag := buildTestDAG(t, 1,
		testEdge{a, c, []float64{3}},
		testEdge{d, c, []float64{1}},
	)

	engine, err := NewEngine(dag, []Vertex{a})
	require.NoError(t, err)

	color, err := engine.Trace(context.Background(), c)
	require.NoError(t, err)
	assert.Equal(t, [][]float64{{0.75}}, color.Rows())

	source, err := engine.Trace(context.Background(), d)
	require.NoError(t, err)
	assert.True(t, source.IsZero(), "unattributed source must be all zero")
}

func TestTraceColumnSumsAreOne(t *testing.T) {
	const a, d, c, e = 1, 2, 3, 4
	dag := buildTestDAG(t, 2,
		testEdge{a, c, []float64{3, 1}},
		testEdge{d, c, []float64{1, 3}},
		testEdge{c, e, []float64{4, 4}},
	)

	engine, err := NewEngine(dag, []Vertex{a, d})
	require.NoError(t, err)

	color, err := engine.Trace(context.Background(), e)
	require.NoError(t, err)
	assert.Equal(t, []float64{1, 1}, color.ColumnSums())
	assert.Equal(t, [][]float64{{0.75, 0.25}, {0.25, 0.75}}, color.Rows())
}

func TestTraceZeroSourceColumn(t *testing.T) {
	const a, d, c = 1, 2, 3
	dag := buildTestDAG(t, 1,
		testEdge{a, c, []float64{0}},
		testEdge{d, c, []float64{0}},
	)

	engine, err := NewEngine(dag, []Vertex{a, d})
	require.NoError(t, err)

	color, err := engine.Trace(context.Background(), c)
	require.NoError(t, err)
	assert.True(t, color.IsZero())
}

func TestTraceExclusiveBasis(t *testing.T) {
	// top decays to bottom; both are in the basis.
	const root, top, bottom, hadron = 0, 1, 2, 3
	edges := []testEdge{
		{root, top, []float64{1}},
		{top, bottom, []float64{1}},
		{bottom, hadron, []float64{1}},
	}

	tests := []struct {
		name      string
		exclusive bool
		want      [][]float64
	}{
		{name: "additive", exclusive: false, want: [][]float64{{1}, {1}}},
		{name: "exclusive", exclusive: true, want: [][]float64{{0}, {1}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			engine, err := NewEngine(buildTestDAG(t, 1, edges...), []Vertex{top, bottom}, WithExclusive(tt.exclusive))
			require.NoError(t, err)

			color, err := engine.Trace(context.Background(), hadron)
			require.NoError(t, err)
			assert.Equal(t, tt.want, color.Rows())

			basis, err := engine.Trace(context.Background(), bottom)
			require.NoError(t, err)
			assert.Equal(t, tt.want, basis.Rows())
		})
	}
}

func diamondDAG(t *testing.T) *DAG {
	t.Helper()
	const a, b, c, d, e = 1, 2, 3, 4, 5
	return buildTestDAG(t, 2,
		testEdge{a, b, []float64{1, 2}},
		testEdge{a, c, []float64{3, 4}},
		testEdge{b, d, []float64{0.1, 7}},
		testEdge{c, d, []float64{0.3, 0}},
		testEdge{d, e, []float64{1, 1}},
	)
}

func TestTraceDiamondReusesSharedAncestor(t *testing.T) {
	const a, d, e = 1, 4, 5
	dag := diamondDAG(t)

	var resolved atomic.Int64
	engine, err := NewEngine(dag, []Vertex{a}, WithHooks(Hooks{
		OnVertexResolved: func(context.Context, TraceEvent) { resolved.Add(1) },
	}))
	require.NoError(t, err)

	first, err := engine.Trace(context.Background(), d)
	require.NoError(t, err)
	assert.Equal(t, int64(4), resolved.Load(), "each diamond vertex resolves once")
	assert.GreaterOrEqual(t, engine.Memo().Stats().Hits, int64(1))

	viaE, err := engine.Trace(context.Background(), e)
	require.NoError(t, err)
	assert.Equal(t, int64(5), resolved.Load())

	again, err := engine.Trace(context.Background(), d)
	require.NoError(t, err)
	assert.True(t, first.Equal(again), "memoized color must be identical")

	fresh, err := NewEngine(dag, []Vertex{a})
	require.NoError(t, err)
	recomputed, err := fresh.Trace(context.Background(), d)
	require.NoError(t, err)
	assert.True(t, first.Equal(recomputed), "fresh trace must reproduce the memoized color bit for bit")
	assert.True(t, first.Equal(viaE))
}

func TestTraceAllParallelMatchesSequential(t *testing.T) {
	dag := diamondDAG(t)
	queries := []Vertex{5, 4, 3, 2, 1, 4, 5}

	seq, err := NewEngine(dag, []Vertex{1, 3})
	require.NoError(t, err)
	want, err := seq.TraceAll(context.Background(), queries, 1)
	require.NoError(t, err)

	par, err := NewEngine(dag, []Vertex{1, 3})
	require.NoError(t, err)
	got, err := par.TraceAll(context.Background(), queries, 4)
	require.NoError(t, err)

	require.Len(t, got, len(want))
	for i := range want {
		assert.True(t, want[i].Equal(got[i]), "query %d", i)
	}
}

func TestTraceDetectsCycle(t *testing.T) {
	dag := buildTestDAG(t, 1,
		testEdge{0, 1, []float64{1}},
		testEdge{1, 2, []float64{1}},
		testEdge{2, 1, []float64{1}},
	)
	engine, err := NewEngine(dag, []Vertex{0})
	require.NoError(t, err)

	_, err = engine.Trace(context.Background(), 2)
	if !errors.Is(err, ErrCycleDetected) {
		t.Fatalf("expected cycle error, got %v", err)
	}
	var cycleErr *CycleError
	require.ErrorAs(t, err, &cycleErr)
	assert.Equal(t, Vertex(2), cycleErr.Vertex)
}

func TestNewEngineValidatesBasis(t *testing.T) {
	dag := buildTestDAG(t, 1, testEdge{1, 2, []float64{1}})

	_, err := NewEngine(nil, nil)
	assert.ErrorIs(t, err, ErrNilDAG)

	_, err = NewEngine(dag, []Vertex{1, 1})
	assert.ErrorIs(t, err, ErrDuplicateBasisVertex)

	_, err = NewEngine(dag, []Vertex{9})
	assert.ErrorIs(t, err, ErrUnknownVertex)

	empty, err := NewEngine(dag, nil)
	require.NoError(t, err)
	color, err := empty.Trace(context.Background(), 2)
	require.NoError(t, err)
	rows, cols := color.Dims()
	assert.Equal(t, 0, rows)
	assert.Equal(t, 1, cols)
}

func TestTraceUnknownVertex(t *testing.T) {
	engine, err := NewEngine(buildTestDAG(t, 1, testEdge{1, 2, []float64{1}}), []Vertex{1})
	require.NoError(t, err)

	_, err = engine.Trace(context.Background(), 42)
	assert.ErrorIs(t, err, ErrUnknownVertex)
}

func TestTraceCancelledContext(t *testing.T) {
	engine, err := NewEngine(diamondDAG(t), []Vertex{1})
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err = engine.Trace(ctx, 5)
	assert.ErrorIs(t, err, context.Canceled)

	_, err = engine.TraceAll(ctx, []Vertex{4, 5}, 2)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestTraceDeepChain(t *testing.T) {
	const depth = 100_000
	d, err := NewDAG(1)
	require.NoError(t, err)
	for v := Vertex(0); v < depth; v++ {
		require.NoError(t, d.AddEdge(v, v+1, 1))
	}

	engine, err := NewEngine(d, []Vertex{0})
	require.NoError(t, err)

	color, err := engine.Trace(context.Background(), depth)
	require.NoError(t, err)
	assert.Equal(t, [][]float64{{1}}, color.Rows())
	assert.Equal(t, int64(depth+1), engine.Resolved())
}

func TestEngineResetClearsMemo(t *testing.T) {
	engine, err := NewEngine(diamondDAG(t), []Vertex{1})
	require.NoError(t, err)

	_, err = engine.Trace(context.Background(), 5)
	require.NoError(t, err)
	require.Equal(t, 5, engine.Memo().Len())

	scope := engine.Memo().ID()
	engine.Reset()
	assert.Equal(t, 0, engine.Memo().Len())
	assert.Equal(t, MemoStats{}, engine.Memo().Stats())
	assert.Equal(t, int64(0), engine.Resolved())
	assert.Equal(t, scope, engine.Memo().ID())
}

func TestHooksLifecycle(t *testing.T) {
	var (
		mu     sync.Mutex
		events []string
		cached []bool
	)
	record := func(name string) HookFunc {
		return func(_ context.Context, ev TraceEvent) {
			mu.Lock()
			defer mu.Unlock()
			events = append(events, name)
			if name == "finish" {
				cached = append(cached, ev.Cached)
			}
		}
	}

	hooks := Hooks{OnQueryStart: record("start")}.Merge(Hooks{
		OnQueryStart:  record("start-2"),
		OnQueryFinish: record("finish"),
	})
	engine, err := NewEngine(buildTestDAG(t, 1, testEdge{1, 2, []float64{1}}), []Vertex{1}, WithHooks(hooks))
	require.NoError(t, err)

	for range 2 {
		_, err := engine.Trace(context.Background(), 2)
		require.NoError(t, err)
	}

	assert.Equal(t, []string{"start", "start-2", "finish", "start", "start-2", "finish"}, events)
	assert.Equal(t, []bool{false, true}, cached)
}
