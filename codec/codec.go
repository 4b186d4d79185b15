// Package codec reads event records and writes trace results in YAML or JSON.
package codec

import (
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/jacanchaplais/phenograph"
)

var (
	// ErrUnknownFormat indicates a format name or file extension with no codec.
	ErrUnknownFormat = errors.New("codec: unknown format")
	// ErrInvalidRecord indicates an event record that fails validation.
	ErrInvalidRecord = errors.New("codec: invalid record")
)

// Record is one parsed event together with the properties read alongside it.
type Record struct {
	ID      string
	Event   *phenograph.Event
	Momenta phenograph.Composite
	// Charges is nil unless every particle in the record carried a charge.
	Charges phenograph.Scalars
}

// TraceRecord pairs an event identifier with its trace results.
type TraceRecord struct {
	Event  string
	Traces *phenograph.Traces
}

// Importer parses event records from a stream.
type Importer interface {
	Parse(r io.Reader) ([]Record, error)
	Format() string
}

// Exporter writes trace results to a stream.
type Exporter interface {
	Export(results []TraceRecord, w io.Writer) error
	Format() string
}

// Codec is both an Importer and an Exporter.
type Codec interface {
	Importer
	Exporter
}

// ForFormat returns the codec registered under name ("yaml", "yml" or "json").
func ForFormat(name string) (Codec, error) {
	switch strings.ToLower(name) {
	case "yaml", "yml":
		return NewYAMLCodec(), nil
	case "json":
		return NewJSONCodec(), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownFormat, name)
	}
}

// FromPath picks a codec by file extension.
func FromPath(path string) (Codec, error) {
	ext := strings.TrimPrefix(filepath.Ext(path), ".")
	if ext == "" {
		return nil, fmt.Errorf("%w: %q has no extension", ErrUnknownFormat, path)
	}
	return ForFormat(ext)
}

var validate = validator.New()

// wireFile is the on-disk layout of an event record file.
type wireFile struct {
	Events []wireEvent `yaml:"events" json:"events" validate:"required,min=1,dive"`
}

type wireEvent struct {
	ID        string         `yaml:"id,omitempty" json:"id,omitempty"`
	Particles []wireParticle `yaml:"particles" json:"particles" validate:"required,min=1,dive"`
}

type wireParticle struct {
	PDG      int32        `yaml:"pdg" json:"pdg" validate:"required"`
	Status   int          `yaml:"status" json:"status"`
	In       int          `yaml:"in" json:"in"`
	Out      int          `yaml:"out" json:"out" validate:"nefield=In"`
	Momentum wireMomentum `yaml:"momentum" json:"momentum"`
	Charge   *float64     `yaml:"charge,omitempty" json:"charge,omitempty"`
}

type wireMomentum struct {
	X float64 `yaml:"x" json:"x"`
	Y float64 `yaml:"y" json:"y"`
	Z float64 `yaml:"z" json:"z"`
	E float64 `yaml:"e" json:"e"`
}

// toRecords validates the decoded file and converts it to records.
func toRecords(wf *wireFile) ([]Record, error) {
	if err := validate.Struct(wf); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidRecord, err)
	}

	records := make([]Record, 0, len(wf.Events))
	for i, we := range wf.Events {
		n := len(we.Particles)
		particles := make([]phenograph.Particle, n)
		x, y, z, e := make([]float64, n), make([]float64, n), make([]float64, n), make([]float64, n)
		charges := make(phenograph.Scalars, 0, n)

		for j, wp := range we.Particles {
			particles[j] = phenograph.Particle{
				PDG:    phenograph.PDG(wp.PDG),
				Status: wp.Status,
				Edge:   phenograph.Edge{In: phenograph.Vertex(wp.In), Out: phenograph.Vertex(wp.Out)},
			}
			x[j], y[j], z[j], e[j] = wp.Momentum.X, wp.Momentum.Y, wp.Momentum.Z, wp.Momentum.E
			if wp.Charge != nil {
				charges = append(charges, *wp.Charge)
			}
		}
		if len(charges) != 0 && len(charges) != n {
			return nil, fmt.Errorf("%w: event %d gives a charge for %d of %d particles", ErrInvalidRecord, i, len(charges), n)
		}
		if len(charges) == 0 {
			charges = nil
		}

		momenta, err := phenograph.NewMomenta(x, y, z, e)
		if err != nil {
			return nil, err
		}
		id := we.ID
		if id == "" {
			id = fmt.Sprintf("event-%d", i)
		}
		records = append(records, Record{
			ID:      id,
			Event:   phenograph.NewEvent(particles),
			Momenta: momenta,
			Charges: charges,
		})
	}
	return records, nil
}

// wireResults is the on-disk layout of trace results.
type wireResults struct {
	Results []wireTrace `yaml:"results" json:"results"`
}

type wireTrace struct {
	Event  string      `yaml:"event" json:"event"`
	Labels []string    `yaml:"labels" json:"labels"`
	Traces []wireEntry `yaml:"traces" json:"traces"`
}

// wireEntry holds one basis member's values in exactly one of the
// representations a property can take.
type wireEntry struct {
	Label   string      `yaml:"label" json:"label"`
	Values  []float64   `yaml:"values,omitempty" json:"values,omitempty"`
	Vectors [][]float64 `yaml:"vectors,omitempty" json:"vectors,omitempty"`
	Fields  []wireField `yaml:"fields,omitempty" json:"fields,omitempty"`
}

type wireField struct {
	Name   string    `yaml:"name" json:"name"`
	Values []float64 `yaml:"values" json:"values"`
}

func fromTraceRecords(results []TraceRecord) (*wireResults, error) {
	wr := &wireResults{Results: make([]wireTrace, 0, len(results))}
	for _, res := range results {
		if res.Traces == nil {
			return nil, fmt.Errorf("codec: event %q has no traces", res.Event)
		}
		wt := wireTrace{
			Event:  res.Event,
			Labels: res.Traces.Labels(),
			Traces: make([]wireEntry, 0, res.Traces.Len()),
		}
		for _, label := range wt.Labels {
			prop, _ := res.Traces.Get(label)
			entry := wireEntry{Label: label}
			switch p := prop.(type) {
			case phenograph.Scalars:
				entry.Values = nonNil(p)
			case phenograph.Vectors:
				entry.Vectors = p
			case phenograph.Composite:
				for _, name := range p.Names() {
					values, _ := p.Field(name)
					entry.Fields = append(entry.Fields, wireField{Name: name, Values: nonNil(values)})
				}
			default:
				return nil, fmt.Errorf("codec: unsupported trace type %T for %q", prop, label)
			}
			wt.Traces = append(wt.Traces, entry)
		}
		wr.Results = append(wr.Results, wt)
	}
	return wr, nil
}

func nonNil(values []float64) []float64 {
	if values == nil {
		return []float64{}
	}
	return values
}
