// Package monitor summarises and visualises expansion histories: per-front
// distance statistics and a PNG plot of the whole session.
package monitor

import (
	"sort"

	"gonum.org/v1/gonum/stat"

	"github.com/banshee-data/passage.route/internal/geo"
	"github.com/banshee-data/passage.route/internal/route"
)

// FrontStats summarises how far a frontier still is from the destination.
// Distances are metres.
type FrontStats struct {
	Count    int
	MinDist  float64
	MeanDist float64
	MaxDist  float64
	P90Dist  float64
}

// Stats computes distance-to-destination statistics for a frontier. An empty
// frontier yields the zero value.
func Stats(front route.Frontier, destination geo.Coordinate) FrontStats {
	if len(front) == 0 {
		return FrontStats{}
	}

	dists := make([]float64, len(front))
	for i, s := range front {
		dists[i] = geo.Distance(s.Position, destination)
	}
	sort.Float64s(dists)

	return FrontStats{
		Count:    len(front),
		MinDist:  dists[0],
		MeanDist: stat.Mean(dists, nil),
		MaxDist:  dists[len(dists)-1],
		P90Dist:  stat.Quantile(0.9, stat.Empirical, dists, nil),
	}
}
