package phenograph

import (
	"errors"
	"fmt"
)

// ErrMalformedProperty indicates a property whose layout cannot be interpreted.
var ErrMalformedProperty = errors.New("phenograph: malformed property")

// Property is a per-particle quantity to trace. The concrete types are
// Scalars, Vectors and Composite.
type Property interface {
	Len() int
}

// Scalars is a single number per particle, e.g. electric charge.
type Scalars []float64

// Len implements Property.
func (s Scalars) Len() int { return len(s) }

// Vectors is an unstructured fixed-width row of numbers per particle.
// Every row must have the same width.
type Vectors [][]float64

// Len implements Property.
func (v Vectors) Len() int { return len(v) }

// Composite is a set of named numeric fields, one column per field.
type Composite struct {
	names   []string
	columns [][]float64
}

// NewComposite builds a composite property from equal-length columns, one
// per name. The columns are copied.
func NewComposite(names []string, columns ...[]float64) (Composite, error) {
	if len(names) == 0 {
		return Composite{}, fmt.Errorf("%w: composite needs at least one field", ErrMalformedProperty)
	}
	if len(names) != len(columns) {
		return Composite{}, fmt.Errorf("%w: %d field names for %d columns", ErrMalformedProperty, len(names), len(columns))
	}
	seen := make(map[string]struct{}, len(names))
	for _, name := range names {
		if name == "" {
			return Composite{}, fmt.Errorf("%w: empty field name", ErrMalformedProperty)
		}
		if _, dup := seen[name]; dup {
			return Composite{}, fmt.Errorf("%w: duplicate field %q", ErrMalformedProperty, name)
		}
		seen[name] = struct{}{}
	}
	c := Composite{
		names:   append([]string(nil), names...),
		columns: make([][]float64, len(columns)),
	}
	for i, col := range columns {
		if len(col) != len(columns[0]) {
			return Composite{}, fmt.Errorf("%w: field %q has %d entries, field %q has %d", ErrShapeMismatch, names[i], len(col), names[0], len(columns[0]))
		}
		c.columns[i] = append([]float64(nil), col...)
	}
	return c, nil
}

// MomentumFields are the field names of a four-momentum composite.
var MomentumFields = []string{"x", "y", "z", "e"}

// NewMomenta builds a four-momentum composite from its components.
func NewMomenta(x, y, z, e []float64) (Composite, error) {
	return NewComposite(MomentumFields, x, y, z, e)
}

// Len implements Property.
func (c Composite) Len() int {
	if len(c.columns) == 0 {
		return 0
	}
	return len(c.columns[0])
}

// Names returns the field names in column order.
func (c Composite) Names() []string {
	return append([]string(nil), c.names...)
}

// Field returns a copy of the named column.
func (c Composite) Field(name string) ([]float64, bool) {
	for i, n := range c.names {
		if n == name {
			return append([]float64(nil), c.columns[i]...), true
		}
	}
	return nil, false
}

// featureAdapter presents a property as rows of featDim numbers and maps
// rows of the same width back into the caller's representation.
type featureAdapter interface {
	count() int
	dim() int
	row(i int) []float64
	restore(rows [][]float64) Property
}

// newFeatureAdapter selects the strategy for prop once per call.
func newFeatureAdapter(prop Property) (featureAdapter, error) {
	switch p := prop.(type) {
	case Composite:
		if len(p.names) == 0 || len(p.names) != len(p.columns) {
			return nil, fmt.Errorf("%w: composite has %d names and %d columns", ErrMalformedProperty, len(p.names), len(p.columns))
		}
		return &compositeAdapter{names: p.names, columns: p.columns}, nil
	case *Composite:
		if p == nil {
			return nil, fmt.Errorf("%w: nil composite", ErrMalformedProperty)
		}
		return newFeatureAdapter(*p)
	case Scalars:
		rows := make([][]float64, len(p))
		for i := range p {
			rows[i] = p[i : i+1]
		}
		return &identityAdapter{rows: rows, width: 1, squeeze: true}, nil
	case Vectors:
		if len(p) == 0 {
			return nil, fmt.Errorf("%w: cannot infer feature width from empty vectors", ErrShapeMismatch)
		}
		width := len(p[0])
		if width == 0 {
			return nil, fmt.Errorf("%w: vectors have zero width", ErrShapeMismatch)
		}
		for i, row := range p {
			if len(row) != width {
				return nil, fmt.Errorf("%w: row %d has %d entries, want %d", ErrShapeMismatch, i, len(row), width)
			}
		}
		return &identityAdapter{rows: p, width: width}, nil
	case nil:
		return nil, fmt.Errorf("%w: nil property", ErrMalformedProperty)
	default:
		return nil, fmt.Errorf("%w: unsupported property type %T", ErrMalformedProperty, prop)
	}
}

// compositeAdapter flattens named fields into plain columns.
type compositeAdapter struct {
	names   []string
	columns [][]float64
}

func (a *compositeAdapter) count() int {
	return len(a.columns[0])
}

func (a *compositeAdapter) dim() int {
	return len(a.names)
}

func (a *compositeAdapter) row(i int) []float64 {
	out := make([]float64, len(a.columns))
	for j, col := range a.columns {
		out[j] = col[i]
	}
	return out
}

func (a *compositeAdapter) restore(rows [][]float64) Property {
	c := Composite{
		names:   append([]string(nil), a.names...),
		columns: make([][]float64, len(a.names)),
	}
	for j := range c.columns {
		col := make([]float64, len(rows))
		for i, row := range rows {
			col[i] = row[j]
		}
		c.columns[j] = col
	}
	return c
}

// identityAdapter passes unstructured rows through unchanged, squeezing
// single-column output back to Scalars when the input was Scalars.
type identityAdapter struct {
	rows    [][]float64
	width   int
	squeeze bool
}

func (a *identityAdapter) count() int {
	return len(a.rows)
}

func (a *identityAdapter) dim() int {
	return a.width
}

func (a *identityAdapter) row(i int) []float64 {
	return a.rows[i]
}

func (a *identityAdapter) restore(rows [][]float64) Property {
	if a.squeeze {
		out := make(Scalars, len(rows))
		for i, row := range rows {
			out[i] = row[0]
		}
		return out
	}
	out := make(Vectors, len(rows))
	for i, row := range rows {
		out[i] = append([]float64(nil), row...)
	}
	return out
}
