package physics

import (
	"math"

	"github.com/banshee-data/passage.route/internal/polar"
	"github.com/banshee-data/passage.route/internal/units"
)

// Model turns a candidate heading plus the local wind, current and polar into
// motion over ground. It is stateless and safe for concurrent use.
type Model struct{}

// NewModel returns a physics model.
func NewModel() *Model {
	return &Model{}
}

// TrueWindAngle returns the absolute true wind angle in [0, 180] for a wind
// blowing from twdDeg and a boat heading of headingDeg. The sign (which tack
// the wind is on) is discarded because polars are port/starboard symmetric.
func TrueWindAngle(twdDeg, headingDeg float64) float64 {
	twa := twdDeg - headingDeg
	for twa > 180 {
		twa -= 360
	}
	for twa <= -180 {
		twa += 360
	}
	return math.Abs(twa)
}

// ComputeVector returns the boat's speed over ground in m/s and course over
// ground in degrees [0, 360) for the given true heading. The boat speed
// through water comes from the polar (looked up in knots), then the ocean
// current is added vectorially. An empty polar yields drift with the current,
// or zero. With no wind the lookup clamps to the polar's lowest wind-speed
// column, so the boat only stops if that column holds zero speeds.
func (m *Model) ComputeVector(headingDeg float64, wind WindVector, current CurrentVector, table *polar.Table, sea *SeaState) (sogMPS, cogDeg float64) {
	_ = sea // sea-state drag hook, not yet modelled

	twsMPS := wind.Speed()
	twd := wind.Direction()
	twa := TrueWindAngle(twd, headingDeg)

	stwKts := table.GetSpeed(units.MetersPerSecondToKnots(twsMPS), twa)
	stw := units.KnotsToMetersPerSecond(stwKts)

	headingRad := headingDeg * math.Pi / 180
	east := stw*math.Sin(headingRad) + current.U
	north := stw*math.Cos(headingRad) + current.V

	sog := math.Hypot(east, north)
	cog := math.Atan2(east, north) * 180 / math.Pi
	if cog < 0 {
		cog += 360
	}
	return sog, cog
}
