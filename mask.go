package phenograph

// Mask is a boolean selection aligned to an event's particle ordering.
//
// Binary operations require masks of equal length and panic otherwise.
type Mask []bool

// NewMask returns a mask of length n with the given indices set.
func NewMask(n int, indices ...int) Mask {
	m := make(Mask, n)
	for _, i := range indices {
		m[i] = true
	}
	return m
}

// And returns the element-wise conjunction of m and other.
func (m Mask) And(other Mask) Mask {
	mustMatch(m, other)
	out := make(Mask, len(m))
	for i := range m {
		out[i] = m[i] && other[i]
	}
	return out
}

// Or returns the element-wise disjunction of m and other.
func (m Mask) Or(other Mask) Mask {
	mustMatch(m, other)
	out := make(Mask, len(m))
	for i := range m {
		out[i] = m[i] || other[i]
	}
	return out
}

// Not returns the element-wise negation of m.
func (m Mask) Not() Mask {
	out := make(Mask, len(m))
	for i, v := range m {
		out[i] = !v
	}
	return out
}

// Count returns the number of selected entries.
func (m Mask) Count() int {
	n := 0
	for _, v := range m {
		if v {
			n++
		}
	}
	return n
}

// Indices returns the positions of the selected entries in ascending order.
func (m Mask) Indices() []int {
	out := make([]int, 0, m.Count())
	for i, v := range m {
		if v {
			out = append(out, i)
		}
	}
	return out
}

func mustMatch(a, b Mask) {
	if len(a) != len(b) {
		panic("phenograph: mask length mismatch")
	}
}

// Pythia status codes for particles of the hardest subprocess.
const (
	statusHardMin         = 21
	statusHardMax         = 29
	statusIncoming        = 21
	statusIntermediate    = 22
	statusOutgoing        = 23
	statusOutgoingNonPert = 24
	statusFinal           = 1
)

// HardMask groups the hard-process particles of an event by category.
type HardMask struct {
	// Incoming holds the initial-state partons entering the hard process.
	Incoming Mask
	// Intermediate holds resonances produced and decayed within the hard process.
	Intermediate Mask
	// Outgoing holds the final partons of the hard process.
	Outgoing Mask
	// OutgoingNonperturbative holds partons kicked out non-perturbatively in diffraction.
	OutgoingNonperturbative Mask
	// All holds every particle with a hard-process status, categorised or not.
	All Mask
}

// Partons returns the hard-process particles without the incoming category.
func (h HardMask) Partons() Mask {
	return h.All.And(h.Incoming.Not())
}

func newHardMask(statuses []int) HardMask {
	n := len(statuses)
	h := HardMask{
		Incoming:                make(Mask, n),
		Intermediate:            make(Mask, n),
		Outgoing:                make(Mask, n),
		OutgoingNonperturbative: make(Mask, n),
		All:                     make(Mask, n),
	}
	for i, status := range statuses {
		if status < 0 {
			status = -status
		}
		if status < statusHardMin || status > statusHardMax {
			continue
		}
		h.All[i] = true
		switch status {
		case statusIncoming:
			h.Incoming[i] = true
		case statusIntermediate:
			h.Intermediate[i] = true
		case statusOutgoing:
			h.Outgoing[i] = true
		case statusOutgoingNonPert:
			h.OutgoingNonperturbative[i] = true
		}
	}
	return h
}
