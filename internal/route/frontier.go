// Package route implements the isochrone expansion engine: from a frontier of
// reachable boat states, fan candidate headings through the physics model,
// cull land, and prune the candidate cloud down to the outer hull reachable
// in one more time step.
package route

import (
	"time"

	"github.com/banshee-data/passage.route/internal/geo"
)

// BoatState is one reachable position on an isochrone.
type BoatState struct {
	Position geo.Coordinate
	Time     time.Time
	// Elapsed is seconds since departure; always Time minus the departure
	// instant, kept denormalised because the router works in seconds.
	Elapsed float64
}

// Frontier is the wavefront at one instant: an unordered set of boat states
// sharing the same elapsed time. Duplicates are tolerated as input and
// removed by pruning.
type Frontier []BoatState

// Positions returns the coordinates of every state, in frontier order.
func (f Frontier) Positions() []geo.Coordinate {
	out := make([]geo.Coordinate, len(f))
	for i, s := range f {
		out[i] = s.Position
	}
	return out
}
