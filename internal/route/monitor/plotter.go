package monitor

import (
	"fmt"
	"image/color"
	"sync"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"

	"github.com/banshee-data/passage.route/internal/geo"
	"github.com/banshee-data/passage.route/internal/route"
)

// frontPalette cycles as fronts accumulate so successive isochrones stay
// distinguishable.
var frontPalette = []color.RGBA{
	{R: 0x44, G: 0x01, B: 0x54, A: 0xff},
	{R: 0x3e, G: 0x49, B: 0x89, A: 0xff},
	{R: 0x26, G: 0x82, B: 0x8e, A: 0xff},
	{R: 0x35, G: 0xb7, B: 0x79, A: 0xff},
	{R: 0xb5, G: 0xde, B: 0x2b, A: 0xff},
	{R: 0xfd, G: 0xe7, B: 0x25, A: 0xff},
}

// FrontPlotter accumulates fronts over a session and renders them as a
// lon/lat scatter, one colour per step, with the endpoints marked.
type FrontPlotter struct {
	mu     sync.Mutex
	start  geo.Coordinate
	dest   geo.Coordinate
	fronts []route.Frontier
}

// NewFrontPlotter creates a plotter for a session between the given endpoints.
func NewFrontPlotter(start, dest geo.Coordinate) *FrontPlotter {
	return &FrontPlotter{start: start, dest: dest}
}

// Add records one front. Safe to call from the stepping loop.
func (fp *FrontPlotter) Add(front route.Frontier) {
	fp.mu.Lock()
	defer fp.mu.Unlock()
	fp.fronts = append(fp.fronts, front)
}

// FrontCount returns the number of recorded fronts.
func (fp *FrontPlotter) FrontCount() int {
	fp.mu.Lock()
	defer fp.mu.Unlock()
	return len(fp.fronts)
}

// Render writes the accumulated fronts to a PNG at path.
func (fp *FrontPlotter) Render(path string) error {
	fp.mu.Lock()
	defer fp.mu.Unlock()

	p := plot.New()
	p.Title.Text = "Isochrone expansion"
	p.X.Label.Text = "Longitude (deg)"
	p.Y.Label.Text = "Latitude (deg)"

	for i, front := range fp.fronts {
		if len(front) == 0 {
			continue
		}
		pts := make(plotter.XYs, 0, len(front))
		for _, s := range front {
			pts = append(pts, plotter.XY{X: s.Position.Lon, Y: s.Position.Lat})
		}
		scatter, err := plotter.NewScatter(pts)
		if err != nil {
			return fmt.Errorf("monitor: build front %d scatter: %w", i, err)
		}
		scatter.GlyphStyle.Color = frontPalette[i%len(frontPalette)]
		scatter.GlyphStyle.Radius = vg.Points(1.5)
		p.Add(scatter)
	}

	endpoints := plotter.XYs{
		{X: fp.start.Lon, Y: fp.start.Lat},
		{X: fp.dest.Lon, Y: fp.dest.Lat},
	}
	marks, err := plotter.NewScatter(endpoints)
	if err != nil {
		return fmt.Errorf("monitor: build endpoint scatter: %w", err)
	}
	marks.GlyphStyle.Color = color.RGBA{R: 0xd6, G: 0x28, B: 0x28, A: 0xff}
	marks.GlyphStyle.Radius = vg.Points(4)
	p.Add(marks)

	if err := p.Save(10*vg.Inch, 10*vg.Inch, path); err != nil {
		return fmt.Errorf("monitor: save plot %s: %w", path, err)
	}
	return nil
}
