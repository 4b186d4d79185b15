package phenograph

import (
	"errors"
	"fmt"
)

// Vertex identifies a production or decay point in an event history.
// Identifiers are only unique within a single event.
type Vertex int

// Edge is the path of one particle from the vertex that produced it (In)
// to the vertex that consumed it (Out).
type Edge struct {
	In  Vertex
	Out Vertex
}

// Particle is one entry of an event record.
type Particle struct {
	PDG    PDG
	Status int
	Edge   Edge
}

var (
	// ErrNilEvent indicates a nil event was supplied.
	ErrNilEvent = errors.New("phenograph: nil event")
	// ErrShapeMismatch indicates an array does not line up with the data it describes.
	ErrShapeMismatch = errors.New("phenograph: shape mismatch")
)

// Event is an immutable particle record for a single collision.
type Event struct {
	particles []Particle
}

// NewEvent constructs an event from a particle list. The slice is copied.
func NewEvent(particles []Particle) *Event {
	return &Event{particles: append([]Particle(nil), particles...)}
}

// Len returns the number of particles.
func (e *Event) Len() int {
	return len(e.particles)
}

// Particle returns the i-th particle.
func (e *Event) Particle(i int) Particle {
	return e.particles[i]
}

// Particles returns a copy of the particle list.
func (e *Event) Particles() []Particle {
	return append([]Particle(nil), e.particles...)
}

// Edges returns the producer/consumer vertex pair of every particle.
func (e *Event) Edges() []Edge {
	edges := make([]Edge, len(e.particles))
	for i, p := range e.particles {
		edges[i] = p.Edge
	}
	return edges
}

// PDG returns the identity code of every particle.
func (e *Event) PDG() []PDG {
	codes := make([]PDG, len(e.particles))
	for i, p := range e.particles {
		codes[i] = p.PDG
	}
	return codes
}

// Status returns the generator status code of every particle.
func (e *Event) Status() []int {
	statuses := make([]int, len(e.particles))
	for i, p := range e.particles {
		statuses[i] = p.Status
	}
	return statuses
}

// Charges returns the electric charge of every particle, looked up from
// its PDG code.
func (e *Event) Charges() Scalars {
	charges := make(Scalars, len(e.particles))
	for i, p := range e.particles {
		charges[i] = p.PDG.Charge()
	}
	return charges
}

// HardMask categorises the particles taking part in the hard process.
func (e *Event) HardMask() HardMask {
	return newHardMask(e.Status())
}

// FinalMask selects the final-state particles.
func (e *Event) FinalMask() Mask {
	m := make(Mask, len(e.particles))
	for i, p := range e.particles {
		m[i] = p.Status == statusFinal
	}
	return m
}

// PDGMask selects particles whose identity appears in codes. When
// signSensitive is false a particle matches its antiparticle's code too.
func (e *Event) PDGMask(codes []PDG, signSensitive bool) Mask {
	want := make(map[PDG]struct{}, len(codes))
	for _, code := range codes {
		if !signSensitive {
			code = code.Abs()
		}
		want[code] = struct{}{}
	}
	m := make(Mask, len(e.particles))
	for i, p := range e.particles {
		code := p.PDG
		if !signSensitive {
			code = code.Abs()
		}
		_, m[i] = want[code]
	}
	return m
}

// Select returns a new event holding only the masked particles.
func (e *Event) Select(mask Mask) (*Event, error) {
	if len(mask) != len(e.particles) {
		return nil, fmt.Errorf("%w: mask has %d entries, event has %d particles", ErrShapeMismatch, len(mask), len(e.particles))
	}
	selected := make([]Particle, 0, mask.Count())
	for i, keep := range mask {
		if keep {
			selected = append(selected, e.particles[i])
		}
	}
	return &Event{particles: selected}, nil
}

// Validate reports whether the particle record forms a directed acyclic graph.
func (e *Event) Validate() error {
	d := newDAG(1)
	for _, p := range e.particles {
		if err := d.AddEdge(p.Edge.In, p.Edge.Out, 0); err != nil {
			return err
		}
	}
	return d.Validate()
}
