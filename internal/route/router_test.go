package route

import (
	"os"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/banshee-data/passage.route/internal/geo"
	"github.com/banshee-data/passage.route/internal/landmask"
	"github.com/banshee-data/passage.route/internal/monitoring"
	"github.com/banshee-data/passage.route/internal/physics"
	"github.com/banshee-data/passage.route/internal/polar"
	"github.com/banshee-data/passage.route/internal/units"
	"github.com/banshee-data/passage.route/internal/wind"
)

func constantPolar(speedKts float64) *polar.Table {
	return &polar.Table{
		TWS:    []float64{0, 10, 20},
		TWA:    []float64{0, 90, 180},
		Speeds: [][]float64{
			{speedKts, speedKts, speedKts},
			{speedKts, speedKts, speedKts},
			{speedKts, speedKts, speedKts},
		},
	}
}

func departure() time.Time {
	return time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
}

func TestStepExpandsNorthward(t *testing.T) {
	defer monitoring.Mute()()

	cfg := DefaultConfig(geo.NewCoordinate(45.0, -1.0), geo.NewCoordinate(46.0, -1.0))
	router := New(cfg)

	front := cfg.InitialFrontier(departure())
	next := router.Step(front, constantPolar(5),
		landmask.New(), wind.Constant{U: 0, V: 5}, wind.Still)

	require.Greater(t, len(next), 1, "a viable fan must expand to multiple points")
	for _, s := range next {
		moved := s.Position != cfg.Start
		assert.True(t, moved, "every state must be off the start point, got %+v", s.Position)
	}
}

func TestStepElapsedAndTimeAdvance(t *testing.T) {
	defer monitoring.Mute()()

	cfg := DefaultConfig(geo.NewCoordinate(45.0, -1.0), geo.NewCoordinate(46.0, -1.0))
	router := New(cfg)

	next := router.Step(cfg.InitialFrontier(departure()), constantPolar(5),
		landmask.New(), wind.Constant{U: 0, V: 5}, wind.Still)

	require.NotEmpty(t, next)
	for _, s := range next {
		assert.Equal(t, cfg.TimeStep, s.Elapsed)
		assert.Equal(t, departure().Add(time.Hour), s.Time)
	}
}

func TestStepRespectsSpeedLimit(t *testing.T) {
	defer monitoring.Mute()()

	cfg := DefaultConfig(geo.NewCoordinate(45.0, -1.0), geo.NewCoordinate(46.0, -1.0))
	router := New(cfg)

	table := constantPolar(8)
	current := wind.ConstantCurrent{U: 1.5, V: 0}
	next := router.Step(cfg.InitialFrontier(departure()), table,
		landmask.New(), wind.Constant{U: 0, V: 5}, current)

	limit := (units.KnotsToMetersPerSecond(table.MaxSpeed()) + physics.CurrentVector(current).Speed()) * cfg.TimeStep
	require.NotEmpty(t, next)
	for _, s := range next {
		d := geo.Distance(cfg.Start, s.Position)
		assert.LessOrEqual(t, d, limit*1.01, "no state may outrun the polar plus the current")
	}
}

func TestStepZeroSpeedCollapses(t *testing.T) {
	defer monitoring.Mute()()

	cfg := DefaultConfig(geo.NewCoordinate(45.0, -1.0), geo.NewCoordinate(46.0, -1.0))
	router := New(cfg)

	var empty polar.Table
	next, diag := router.StepWithDiagnostics(cfg.InitialFrontier(departure()), &empty,
		landmask.New(), wind.Constant{U: 10, V: 10}, wind.Still)

	assert.LessOrEqual(t, len(next), 1, "an unmovable boat must not fan out")
	for _, s := range next {
		assert.Less(t, geo.Distance(cfg.Start, s.Position), 1e-3)
	}
	assert.Equal(t, 1, diag.ZeroSpeedParents)
	assert.Zero(t, diag.Candidates)
}

func TestStepAvoidsLand(t *testing.T) {
	defer monitoring.Mute()()

	cfg := DefaultConfig(geo.NewCoordinate(50.5, -1.35), geo.NewCoordinate(50.8, -1.35))
	cfg.TimeStep = 1800
	router := New(cfg)

	// A synthetic east-west wall one step north of the start.
	mask := landmask.New()
	mask.AddBox(-1.6, -1.1, 50.55, 50.65)

	next, diag := router.StepWithDiagnostics(cfg.InitialFrontier(departure()), constantPolar(10),
		mask, wind.Constant{U: 0, V: 15}, wind.Still)

	require.NotEmpty(t, next)
	assert.Greater(t, diag.LandCulled, 0, "the wall must cull some candidates")
	for _, s := range next {
		assert.False(t, mask.IsLand(s.Position), "state on land at %+v", s.Position)
	}
}

func TestStepDeterministic(t *testing.T) {
	defer monitoring.Mute()()

	cfg := DefaultConfig(geo.NewCoordinate(45.0, -1.0), geo.NewCoordinate(46.0, -1.0))
	router := New(cfg)

	front := cfg.InitialFrontier(departure())
	table := constantPolar(6)
	winds := wind.Constant{U: 2, V: 4}

	first := router.Step(front, table, landmask.New(), winds, wind.Still)
	second := router.Step(front, table, landmask.New(), winds, wind.Still)
	if diff := cmp.Diff(first, second); diff != "" {
		t.Errorf("identical inputs must yield identical frontiers (-first +second):\n%s", diff)
	}
}

// gshhgArtifact is the real shoreline mask, present only on machines that
// have pulled the asset.
const gshhgArtifact = "../../assets/gshhg_mask.tbmap.xz"

func TestStepAvoidsRealShoreline(t *testing.T) {
	if _, err := os.Stat(gshhgArtifact); err != nil {
		t.Skipf("GSHHG artifact not present at %s", gshhgArtifact)
	}
	defer monitoring.Mute()()

	mask, err := landmask.Load(gshhgArtifact)
	require.NoError(t, err)

	// South of the Needles, aiming across the Isle of Wight.
	cfg := DefaultConfig(geo.NewCoordinate(50.5, -1.35), geo.NewCoordinate(50.8, -1.35))
	cfg.TimeStep = 1800
	router := New(cfg)

	next := router.Step(cfg.InitialFrontier(departure()), constantPolar(10),
		mask, wind.Constant{U: 0, V: 15}, wind.Still)

	for _, s := range next {
		assert.False(t, mask.IsLand(s.Position), "state on land at %+v", s.Position)
	}
}

func TestStepMultiParentParallel(t *testing.T) {
	defer monitoring.Mute()()

	cfg := DefaultConfig(geo.NewCoordinate(45.0, -1.0), geo.NewCoordinate(47.0, -1.0))
	router := New(cfg)

	table := constantPolar(7)
	winds := wind.Constant{U: 0, V: 8}

	front := cfg.InitialFrontier(departure())
	front = router.Step(front, table, landmask.New(), winds, wind.Still)
	require.Greater(t, len(front), 1)

	// Second step exercises the parallel fan path across many parents.
	next, diag := router.StepWithDiagnostics(front, table, landmask.New(), winds, wind.Still)
	require.NotEmpty(t, next)
	assert.Equal(t, len(front), diag.Parents)
	for _, s := range next {
		assert.Equal(t, 2*cfg.TimeStep, s.Elapsed)
	}
}

func TestStepEmptyFrontier(t *testing.T) {
	router := New(DefaultConfig(geo.NewCoordinate(0, 0), geo.NewCoordinate(1, 1)))
	next, diag := router.StepWithDiagnostics(nil, constantPolar(5), landmask.New(),
		wind.Constant{}, wind.Still)
	assert.Empty(t, next)
	assert.Zero(t, diag.Parents)
}

func TestStepNilMaskIsOpenWater(t *testing.T) {
	defer monitoring.Mute()()

	cfg := DefaultConfig(geo.NewCoordinate(45.0, -1.0), geo.NewCoordinate(46.0, -1.0))
	router := New(cfg)

	next := router.Step(cfg.InitialFrontier(departure()), constantPolar(5),
		nil, wind.Constant{U: 0, V: 5}, wind.Still)
	assert.Greater(t, len(next), 1)
}

func TestStepPrunesInterior(t *testing.T) {
	defer monitoring.Mute()()

	cfg := DefaultConfig(geo.NewCoordinate(45.0, -1.0), geo.NewCoordinate(47.0, -1.0))
	router := New(cfg)

	table := constantPolar(8)
	winds := wind.Constant{U: 0, V: 10}

	front := cfg.InitialFrontier(departure())
	var diag StepDiagnostics
	for i := 0; i < 3; i++ {
		front, diag = router.StepWithDiagnostics(front, table, landmask.New(), winds, wind.Still)
		require.NotEmpty(t, front)
		assert.LessOrEqual(t, diag.FrontierSize, diag.Buckets,
			"hull extraction must never grow the bucket set")
	}
	// After several steps the reached region is filled in, so the frontier
	// keeps only its hull: strictly fewer states than occupied cells.
	assert.Less(t, len(front), diag.Buckets)
}
