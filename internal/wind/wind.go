// Package wind provides the sampling capabilities the router consumes: a
// wind or current value at an arbitrary coordinate. Providers must be cheap
// (they are called frontier-size x heading-count times per step) and safe
// for concurrent readers.
package wind

import (
	"github.com/banshee-data/passage.route/internal/geo"
	"github.com/banshee-data/passage.route/internal/physics"
)

// Sampler yields the wind at a coordinate. Implementations return a zero
// vector where data is missing rather than failing.
type Sampler interface {
	WindAt(c geo.Coordinate) physics.WindVector
}

// CurrentSampler yields the ocean current at a coordinate, same contract as
// Sampler.
type CurrentSampler interface {
	CurrentAt(c geo.Coordinate) physics.CurrentVector
}

// SamplerFunc adapts a plain function to the Sampler interface.
type SamplerFunc func(c geo.Coordinate) physics.WindVector

// WindAt implements Sampler.
func (f SamplerFunc) WindAt(c geo.Coordinate) physics.WindVector { return f(c) }

// CurrentSamplerFunc adapts a plain function to the CurrentSampler interface.
type CurrentSamplerFunc func(c geo.Coordinate) physics.CurrentVector

// CurrentAt implements CurrentSampler.
func (f CurrentSamplerFunc) CurrentAt(c geo.Coordinate) physics.CurrentVector { return f(c) }

// Constant is a uniform wind everywhere.
type Constant physics.WindVector

// WindAt implements Sampler.
func (w Constant) WindAt(geo.Coordinate) physics.WindVector { return physics.WindVector(w) }

// ConstantCurrent is a uniform current everywhere.
type ConstantCurrent physics.CurrentVector

// CurrentAt implements CurrentSampler.
func (c ConstantCurrent) CurrentAt(geo.Coordinate) physics.CurrentVector {
	return physics.CurrentVector(c)
}

// Still is the zero-current sampler.
var Still CurrentSampler = ConstantCurrent{}
