package wind

import (
	"math"

	"github.com/banshee-data/passage.route/internal/geo"
	"github.com/banshee-data/passage.route/internal/physics"
)

type chunkKey struct {
	x int // floor(lon)
	y int // floor(lat)
}

type fieldPoint struct {
	coord geo.Coordinate
	wind  physics.WindVector
}

// Field is a point cloud of wind observations partitioned into 1x1 degree
// chunks for nearest-neighbour lookup. Populate it once (e.g. from a decoded
// forecast grid), then treat it as read-only; concurrent reads are safe after
// the last Insert.
type Field struct {
	chunks map[chunkKey][]fieldPoint
}

// NewField returns an empty field.
func NewField() *Field {
	return &Field{chunks: make(map[chunkKey][]fieldPoint)}
}

// Insert adds a wind observation at a coordinate.
func (f *Field) Insert(c geo.Coordinate, w physics.WindVector) {
	key := chunkKey{x: int(math.Floor(c.Lon)), y: int(math.Floor(c.Lat))}
	f.chunks[key] = append(f.chunks[key], fieldPoint{coord: c, wind: w})
}

// Len returns the number of stored observations.
func (f *Field) Len() int {
	n := 0
	for _, pts := range f.chunks {
		n += len(pts)
	}
	return n
}

// Bounds returns the geographic extent of the stored observations. ok is
// false for an empty field.
func (f *Field) Bounds() (minLat, maxLat, minLon, maxLon float64, ok bool) {
	if len(f.chunks) == 0 {
		return 0, 0, 0, 0, false
	}

	minLat, minLon = math.MaxFloat64, math.MaxFloat64
	maxLat, maxLon = -math.MaxFloat64, -math.MaxFloat64
	for _, pts := range f.chunks {
		for _, p := range pts {
			minLat = math.Min(minLat, p.coord.Lat)
			maxLat = math.Max(maxLat, p.coord.Lat)
			minLon = math.Min(minLon, p.coord.Lon)
			maxLon = math.Max(maxLon, p.coord.Lon)
		}
	}
	return minLat, maxLat, minLon, maxLon, true
}

// At returns the observation nearest to c within c's chunk. ok is false when
// the chunk holds no data.
func (f *Field) At(c geo.Coordinate) (physics.WindVector, bool) {
	key := chunkKey{x: int(math.Floor(c.Lon)), y: int(math.Floor(c.Lat))}
	pts, found := f.chunks[key]
	if !found {
		return physics.WindVector{}, false
	}

	bestDist := math.MaxFloat64
	var best physics.WindVector
	for _, p := range pts {
		dLat := p.coord.Lat - c.Lat
		dLon := p.coord.Lon - c.Lon
		d := dLat*dLat + dLon*dLon
		if d < bestDist {
			bestDist = d
			best = p.wind
		}
	}
	return best, true
}

// WindAt implements Sampler: nearest observation, or a zero vector where the
// field has no data.
func (f *Field) WindAt(c geo.Coordinate) physics.WindVector {
	w, _ := f.At(c)
	return w
}
