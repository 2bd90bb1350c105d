package route

import (
	"fmt"
	"time"

	"github.com/banshee-data/passage.route/internal/geo"
)

// Default tuning values. Precision 400 puts bucket cells at 1/400 degree,
// roughly 278 m at the equator.
const (
	DefaultTimeStepSeconds = 3600.0
	DefaultGridPrecision   = 400.0
	DefaultHeadingCount    = 360
	DefaultHeadingSpan     = 180.0
)

// Config holds the per-session routing parameters. It is immutable once the
// router is constructed.
type Config struct {
	Start       geo.Coordinate
	Destination geo.Coordinate

	// TimeStep is the isochrone interval in seconds.
	TimeStep float64
	// GridPrecision is the reciprocal of the pruning cell size in degrees.
	GridPrecision float64
	// HeadingCount is how many test headings each parent state fans through.
	HeadingCount int
	// HeadingSpan is the sweep half-width in degrees either side of the
	// direct bearing to the destination; 180 covers the full compass.
	HeadingSpan float64
}

// DefaultConfig returns a Config with the standard tuning for the given
// endpoints.
func DefaultConfig(start, destination geo.Coordinate) Config {
	return Config{
		Start:         start,
		Destination:   destination,
		TimeStep:      DefaultTimeStepSeconds,
		GridPrecision: DefaultGridPrecision,
		HeadingCount:  DefaultHeadingCount,
		HeadingSpan:   DefaultHeadingSpan,
	}
}

// Validate checks the tuning parameters.
func (c Config) Validate() error {
	if c.TimeStep <= 0 {
		return fmt.Errorf("route: time step must be positive, got %v", c.TimeStep)
	}
	if c.GridPrecision <= 0 {
		return fmt.Errorf("route: grid precision must be positive, got %v", c.GridPrecision)
	}
	if c.HeadingCount < 1 {
		return fmt.Errorf("route: heading count must be at least 1, got %d", c.HeadingCount)
	}
	if c.HeadingSpan <= 0 || c.HeadingSpan > 180 {
		return fmt.Errorf("route: heading span must be in (0, 180], got %v", c.HeadingSpan)
	}
	return nil
}

// InitialFrontier returns the single-state frontier at the start position.
func (c Config) InitialFrontier(departure time.Time) Frontier {
	return Frontier{{Position: c.Start, Time: departure, Elapsed: 0}}
}
