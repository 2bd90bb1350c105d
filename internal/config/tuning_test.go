package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/banshee-data/passage.route/internal/geo"
	"github.com/banshee-data/passage.route/internal/route"
)

func writeTuning(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "tuning.json")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadRouterTuning(t *testing.T) {
	t.Parallel()

	path := writeTuning(t, `{"time_step_seconds": 1800, "heading_count": 180}`)
	cfg, err := LoadRouterTuning(path)
	require.NoError(t, err)

	assert.Equal(t, 1800.0, cfg.GetTimeStepSeconds())
	assert.Equal(t, 180, cfg.GetHeadingCount())
	// Omitted fields fall back to defaults.
	assert.Equal(t, route.DefaultGridPrecision, cfg.GetGridPrecision())
	assert.Equal(t, route.DefaultHeadingSpan, cfg.GetHeadingSpanDegrees())
}

func TestLoadRouterTuningRejectsBadExtension(t *testing.T) {
	t.Parallel()

	_, err := LoadRouterTuning("tuning.yaml")
	assert.Error(t, err)
}

func TestLoadRouterTuningRejectsBadJSON(t *testing.T) {
	t.Parallel()

	path := writeTuning(t, `{"time_step_seconds": `)
	_, err := LoadRouterTuning(path)
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	t.Parallel()

	bad := -1.0
	cfg := &RouterTuning{TimeStepSeconds: &bad}
	assert.Error(t, cfg.Validate())

	span := 270.0
	cfg = &RouterTuning{HeadingSpanDegrees: &span}
	assert.Error(t, cfg.Validate())

	zero := 0
	cfg = &RouterTuning{HeadingCount: &zero}
	assert.Error(t, cfg.Validate())

	assert.NoError(t, (&RouterTuning{}).Validate())
}

func TestApply(t *testing.T) {
	t.Parallel()

	step := 900.0
	count := 90
	tuning := &RouterTuning{TimeStepSeconds: &step, HeadingCount: &count}

	cfg := route.DefaultConfig(geo.NewCoordinate(45, -1), geo.NewCoordinate(46, -1))
	tuning.Apply(&cfg)

	assert.Equal(t, 900.0, cfg.TimeStep)
	assert.Equal(t, 90, cfg.HeadingCount)
	assert.Equal(t, route.DefaultGridPrecision, cfg.GridPrecision)
	assert.Equal(t, geo.NewCoordinate(45, -1), cfg.Start)
}
