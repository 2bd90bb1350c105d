package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/banshee-data/passage.route/internal/route"
)

// RouterTuning represents the optional tuning file for the expansion engine.
// Fields omitted from the JSON retain their defaults, so partial configs are
// safe.
type RouterTuning struct {
	TimeStepSeconds    *float64 `json:"time_step_seconds,omitempty"`
	GridPrecision      *float64 `json:"grid_precision,omitempty"`
	HeadingCount       *int     `json:"heading_count,omitempty"`
	HeadingSpanDegrees *float64 `json:"heading_span_degrees,omitempty"`
}

// LoadRouterTuning loads a RouterTuning from a JSON file.
// The file is validated to ensure it has a .json extension and is under the max file size.
func LoadRouterTuning(path string) (*RouterTuning, error) {
	cleanPath := filepath.Clean(path)
	if ext := filepath.Ext(cleanPath); ext != ".json" {
		return nil, fmt.Errorf("config file must have .json extension, got %q", ext)
	}

	// Check file size for safety (max 1MB)
	fileInfo, err := os.Stat(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("failed to stat config file: %w", err)
	}
	const maxFileSize = 1 * 1024 * 1024 // 1MB
	if fileInfo.Size() > maxFileSize {
		return nil, fmt.Errorf("config file too large: %d bytes (max %d)", fileInfo.Size(), maxFileSize)
	}

	data, err := os.ReadFile(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := &RouterTuning{}
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config JSON: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// Validate checks that the configuration values are valid.
func (c *RouterTuning) Validate() error {
	if c.TimeStepSeconds != nil && *c.TimeStepSeconds <= 0 {
		return fmt.Errorf("time_step_seconds must be positive, got %f", *c.TimeStepSeconds)
	}
	if c.GridPrecision != nil && *c.GridPrecision <= 0 {
		return fmt.Errorf("grid_precision must be positive, got %f", *c.GridPrecision)
	}
	if c.HeadingCount != nil && *c.HeadingCount < 1 {
		return fmt.Errorf("heading_count must be at least 1, got %d", *c.HeadingCount)
	}
	if c.HeadingSpanDegrees != nil {
		if *c.HeadingSpanDegrees <= 0 || *c.HeadingSpanDegrees > 180 {
			return fmt.Errorf("heading_span_degrees must be in (0, 180], got %f", *c.HeadingSpanDegrees)
		}
	}
	return nil
}

// GetTimeStepSeconds returns the time_step_seconds value or the default.
func (c *RouterTuning) GetTimeStepSeconds() float64 {
	if c.TimeStepSeconds == nil {
		return route.DefaultTimeStepSeconds
	}
	return *c.TimeStepSeconds
}

// GetGridPrecision returns the grid_precision value or the default.
func (c *RouterTuning) GetGridPrecision() float64 {
	if c.GridPrecision == nil {
		return route.DefaultGridPrecision
	}
	return *c.GridPrecision
}

// GetHeadingCount returns the heading_count value or the default.
func (c *RouterTuning) GetHeadingCount() int {
	if c.HeadingCount == nil {
		return route.DefaultHeadingCount
	}
	return *c.HeadingCount
}

// GetHeadingSpanDegrees returns the heading_span_degrees value or the default.
func (c *RouterTuning) GetHeadingSpanDegrees() float64 {
	if c.HeadingSpanDegrees == nil {
		return route.DefaultHeadingSpan
	}
	return *c.HeadingSpanDegrees
}

// Apply copies the tuning onto a route.Config, leaving the endpoints alone.
func (c *RouterTuning) Apply(cfg *route.Config) {
	cfg.TimeStep = c.GetTimeStepSeconds()
	cfg.GridPrecision = c.GetGridPrecision()
	cfg.HeadingCount = c.GetHeadingCount()
	cfg.HeadingSpan = c.GetHeadingSpanDegrees()
}
