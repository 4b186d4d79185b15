package phenograph_test

import (
	"context"
	"fmt"

	"github.com/jacanchaplais/phenograph"
)

func ExampleEngine_Trace() {
	dag, err := phenograph.NewDAG(1)
	if err != nil {
		panic(err)
	}
	// Two sources feed vertex 3; only vertex 1 is in the basis.
	if err := dag.AddEdge(1, 3, 3.0); err != nil {
		panic(err)
	}
	if err := dag.AddEdge(4, 3, 1.0); err != nil {
		panic(err)
	}

	engine, err := phenograph.NewEngine(dag, []phenograph.Vertex{1})
	if err != nil {
		panic(err)
	}
	color, err := engine.Trace(context.Background(), 3)
	if err != nil {
		panic(err)
	}
	fmt.Println(color.Rows())
	// Output: [[0.75]]
}

func ExampleHardTrace() {
	event := phenograph.NewEvent([]phenograph.Particle{
		{PDG: 21, Status: -21, Edge: phenograph.Edge{In: 1, Out: 3}},
		{PDG: 5, Status: -23, Edge: phenograph.Edge{In: 3, Out: 4}},
		{PDG: -5, Status: -23, Edge: phenograph.Edge{In: 3, Out: 5}},
		{PDG: 211, Status: 1, Edge: phenograph.Edge{In: 4, Out: 6}},
		{PDG: 111, Status: 2, Edge: phenograph.Edge{In: 4, Out: 7}},
		{PDG: 111, Status: 2, Edge: phenograph.Edge{In: 5, Out: 7}},
		{PDG: 22, Status: 1, Edge: phenograph.Edge{In: 7, Out: 8}},
	})
	energy := phenograph.Scalars{100, 60, 40, 30, 30, 10, 40}

	traces, _, err := phenograph.HardTrace(context.Background(), event, event.FinalMask(), energy)
	if err != nil {
		panic(err)
	}
	for _, label := range traces.Labels() {
		values, _ := traces.Get(label)
		fmt.Println(label, values)
	}
	// Output:
	// b [1 0.75]
	// b~ [0 0.25]
}
