package phenograph

import (
	"errors"
	"fmt"
	"io"
	"slices"
	"strings"
)

// ErrNilWriter indicates that a nil writer was provided to an exporter.
var ErrNilWriter = errors.New("phenograph: nil writer")

// DOTOption configures the behaviour of ExportDOT.
type DOTOption func(*dotConfig)

type dotConfig struct {
	graphName string
	rankDir   string
	basis     map[Vertex]struct{}
}

func defaultDOTConfig() dotConfig {
	return dotConfig{
		graphName: "event",
		rankDir:   "LR",
	}
}

// DOTWithGraphName overrides the DOT graph identifier.
func DOTWithGraphName(name string) DOTOption {
	return func(cfg *dotConfig) {
		if name != "" {
			cfg.graphName = name
		}
	}
}

// DOTWithRankDir sets the rank direction (e.g. "LR", "TB") for the exported DOT graph.
func DOTWithRankDir(rankDir string) DOTOption {
	return func(cfg *dotConfig) {
		if rankDir != "" {
			cfg.rankDir = rankDir
		}
	}
}

// DOTWithBasis draws the given vertices with a double outline, e.g. the
// Traces.Basis of a HardTrace call.
func DOTWithBasis(vertices ...Vertex) DOTOption {
	return func(cfg *dotConfig) {
		if cfg.basis == nil {
			cfg.basis = make(map[Vertex]struct{}, len(vertices))
		}
		for _, v := range vertices {
			cfg.basis[v] = struct{}{}
		}
	}
}

// ExportDOT renders the event history in Graphviz DOT format. Vertices are
// nodes and each particle is an edge labelled with its name.
func ExportDOT(w io.Writer, event *Event, opts ...DOTOption) error {
	if w == nil {
		return ErrNilWriter
	}
	if event == nil {
		return ErrNilEvent
	}

	cfg := defaultDOTConfig()
	for _, opt := range opts {
		opt(&cfg)
	}

	seen := make(map[Vertex]struct{}, 2*event.Len())
	vertices := make([]Vertex, 0, 2*event.Len())
	for _, p := range event.particles {
		for _, v := range [...]Vertex{p.Edge.In, p.Edge.Out} {
			if _, ok := seen[v]; !ok {
				seen[v] = struct{}{}
				vertices = append(vertices, v)
			}
		}
	}
	slices.Sort(vertices)

	if _, err := fmt.Fprintf(w, "digraph %s {\n", dotQuoteIdentifier(cfg.graphName)); err != nil {
		return err
	}
	if cfg.rankDir != "" {
		if _, err := fmt.Fprintf(w, "    rankdir=%s;\n", cfg.rankDir); err != nil {
			return err
		}
	}

	for _, v := range vertices {
		attrs := ""
		if _, ok := cfg.basis[v]; ok {
			attrs = " [peripheries=2]"
		}
		if _, err := fmt.Fprintf(w, "    %s%s;\n", dotQuoteIdentifier(fmt.Sprint(int(v))), attrs); err != nil {
			return err
		}
	}

	for _, p := range event.particles {
		if _, err := fmt.Fprintf(w, "    %s -> %s [label=%s];\n",
			dotQuoteIdentifier(fmt.Sprint(int(p.Edge.In))),
			dotQuoteIdentifier(fmt.Sprint(int(p.Edge.Out))),
			dotQuoteIdentifier(p.PDG.Name()),
		); err != nil {
			return err
		}
	}

	_, err := io.WriteString(w, "}\n")
	return err
}

func dotQuoteIdentifier(name string) string {
	var b strings.Builder
	b.WriteByte('"')
	for _, r := range name {
		switch r {
		case '\\', '"':
			b.WriteByte('\\')
			b.WriteRune(r)
		default:
			b.WriteRune(r)
		}
	}
	b.WriteByte('"')
	return b.String()
}
