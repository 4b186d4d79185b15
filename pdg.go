package phenograph

import (
	"fmt"
	"strings"
)

// PDG is a Particle Data Group identity code. The sign distinguishes a
// particle (positive) from its antiparticle (negative).
type PDG int32

type pdgInfo struct {
	name string
	// charge in thirds of the elementary charge
	charge3 int
}

var pdgTable = map[PDG]pdgInfo{
	1:    {"d", -1},
	2:    {"u", 2},
	3:    {"s", -1},
	4:    {"c", 2},
	5:    {"b", -1},
	6:    {"t", 2},
	11:   {"e-", -3},
	12:   {"nu(e)", 0},
	13:   {"mu-", -3},
	14:   {"nu(mu)", 0},
	15:   {"tau-", -3},
	16:   {"nu(tau)", 0},
	21:   {"g", 0},
	22:   {"gamma", 0},
	23:   {"Z0", 0},
	24:   {"W+", 3},
	25:   {"H0", 0},
	111:  {"pi0", 0},
	130:  {"K(L)0", 0},
	211:  {"pi+", 3},
	221:  {"eta", 0},
	310:  {"K(S)0", 0},
	311:  {"K0", 0},
	321:  {"K+", 3},
	2112: {"n", 0},
	2212: {"p", 3},
	3122: {"Lambda", 0},
}

// Abs returns the code with its sign removed.
func (p PDG) Abs() PDG {
	if p < 0 {
		return -p
	}
	return p
}

// Name returns the human-readable particle name. Antiparticles flip a
// trailing charge sign ("W+" becomes "W-") or gain a "~" suffix ("t~").
// Codes missing from the lookup table render as "pdg(<code>)".
func (p PDG) Name() string {
	info, ok := pdgTable[p.Abs()]
	if !ok {
		return fmt.Sprintf("pdg(%d)", int32(p))
	}
	if p > 0 {
		return info.name
	}
	switch {
	case strings.HasSuffix(info.name, "+"):
		return strings.TrimSuffix(info.name, "+") + "-"
	case strings.HasSuffix(info.name, "-"):
		return strings.TrimSuffix(info.name, "-") + "+"
	default:
		return info.name + "~"
	}
}

// Charge returns the electric charge in units of the elementary charge.
// Unknown codes are neutral.
func (p PDG) Charge() float64 {
	info, ok := pdgTable[p.Abs()]
	if !ok {
		return 0
	}
	charge := float64(info.charge3) / 3.0
	if p < 0 {
		return -charge
	}
	return charge
}

// String implements fmt.Stringer.
func (p PDG) String() string {
	return p.Name()
}
