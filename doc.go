// Package phenograph traces quantities of collider events back to the
// hard-process partons they descend from.
//
// An Event is a particle record whose edges form a directed acyclic history
// of production and decay vertices. Given a per-particle Property such as
// four-momentum or charge, an Engine colors every vertex with the fraction of
// each feature that flows in from each basis vertex. Colors are memoized per
// call, so shared ancestry is computed once and every query that reaches it
// sees the identical value. HardTrace wires the pieces together: it picks the
// hard-process partons as the basis, traces each selected particle, and
// returns the decomposition in the caller's representation.
package phenograph
