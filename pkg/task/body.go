package task

import (
	"time"
)

// Body executes the work behind a task kind and reports the elapsed
// duration. Bodies take no input beyond their kind binding and expose no
// side effects to the dispatch core; there is no cancellation, so a body
// that never returns blocks its processor indefinitely.
type Body func() time.Duration

// Registry maps schedulable kinds to their bodies.
type Registry map[Kind]Body

// Lookup returns the body registered for k.
func (r Registry) Lookup(k Kind) (Body, bool) {
	b, ok := r[k]
	return b, ok
}

// unitsPerKind is the simulated cost of each kind in delay units.
var unitsPerKind = map[Kind]int{
	KindA: 5,
	KindB: 10,
	KindC: 15,
	KindD: 20,
}

// SimulatedBodies returns a registry whose bodies sleep for the kind's
// simulated cost (A=5, B=10, C=15, D=20 units of the given unit duration)
// and report how long they ran.
func SimulatedBodies(unit time.Duration) Registry {
	r := make(Registry, len(unitsPerKind))
	for kind, units := range unitsPerKind {
		d := time.Duration(units) * unit
		r[kind] = func() time.Duration {
			start := time.Now()
			time.Sleep(d)
			return time.Since(start)
		}
	}
	return r
}
