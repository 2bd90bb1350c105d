package route

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/banshee-data/passage.route/internal/geo"
)

func TestDefaultConfig(t *testing.T) {
	t.Parallel()

	cfg := DefaultConfig(geo.NewCoordinate(48.66, -2.03), geo.NewCoordinate(42.68, 9.30))
	assert.Equal(t, 3600.0, cfg.TimeStep, "default time step should be 1 hour")
	assert.Equal(t, 400.0, cfg.GridPrecision)
	assert.Equal(t, 360, cfg.HeadingCount)
	assert.Equal(t, 180.0, cfg.HeadingSpan)
	assert.NoError(t, cfg.Validate())
}

func TestConfigValidate(t *testing.T) {
	t.Parallel()

	base := DefaultConfig(geo.NewCoordinate(0, 0), geo.NewCoordinate(1, 1))

	bad := base
	bad.TimeStep = 0
	assert.Error(t, bad.Validate())

	bad = base
	bad.GridPrecision = -1
	assert.Error(t, bad.Validate())

	bad = base
	bad.HeadingCount = 0
	assert.Error(t, bad.Validate())

	bad = base
	bad.HeadingSpan = 200
	assert.Error(t, bad.Validate())
}

func TestInitialFrontier(t *testing.T) {
	t.Parallel()

	cfg := DefaultConfig(geo.NewCoordinate(48.66, -2.03), geo.NewCoordinate(42.68, 9.30))
	dep := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	front := cfg.InitialFrontier(dep)
	require.Len(t, front, 1)
	assert.Equal(t, cfg.Start, front[0].Position)
	assert.Equal(t, dep, front[0].Time)
	assert.Zero(t, front[0].Elapsed)
}
