package api

import (
	"bytes"
	"fmt"
	"net/http"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"
)

// handleChart renders a quick scatter (HTML) of the expansion history using
// go-echarts. This is a debugging-only endpoint to eyeball the fronts
// without a mapping UI. Points are coloured by step index.
func (s *Server) handleChart(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.writeJSONError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	sessionID, err := s.resolveSessionID(r)
	if err != nil {
		s.writeJSONError(w, http.StatusNotFound, err.Error())
		return
	}

	fronts, err := s.source.Fronts(sessionID)
	if err != nil {
		s.writeJSONError(w, http.StatusInternalServerError, fmt.Sprintf("load fronts: %v", err))
		return
	}
	if len(fronts) == 0 {
		s.writeJSONError(w, http.StatusNotFound, "session has no fronts")
		return
	}

	data := make([]opts.ScatterData, 0)
	minLon, maxLon := 180.0, -180.0
	minLat, maxLat := 90.0, -90.0
	for step, front := range fronts {
		for _, state := range front {
			if state.Position.Lon < minLon {
				minLon = state.Position.Lon
			}
			if state.Position.Lon > maxLon {
				maxLon = state.Position.Lon
			}
			if state.Position.Lat < minLat {
				minLat = state.Position.Lat
			}
			if state.Position.Lat > maxLat {
				maxLat = state.Position.Lat
			}
			data = append(data, opts.ScatterData{
				Value: []interface{}{state.Position.Lon, state.Position.Lat, step},
			})
		}
	}

	// Small padding so edge points stay visible.
	lonPad := (maxLon - minLon) * 0.05
	latPad := (maxLat - minLat) * 0.05
	if lonPad == 0 {
		lonPad = 0.05
	}
	if latPad == 0 {
		latPad = 0.05
	}

	scatter := charts.NewScatter()
	scatter.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{PageTitle: "Isochrone expansion", Theme: "dark", Width: "900px", Height: "900px"}),
		charts.WithTitleOpts(opts.Title{Title: "Isochrone fronts", Subtitle: fmt.Sprintf("session=%s fronts=%d points=%d", sessionID, len(fronts), len(data))}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
		charts.WithXAxisOpts(opts.XAxis{Min: minLon - lonPad, Max: maxLon + lonPad, Name: "Longitude", NameLocation: "middle", NameGap: 25}),
		charts.WithYAxisOpts(opts.YAxis{Min: minLat - latPad, Max: maxLat + latPad, Name: "Latitude", NameLocation: "middle", NameGap: 30}),
		charts.WithVisualMapOpts(opts.VisualMap{
			Show:       opts.Bool(true),
			Calculable: opts.Bool(true),
			Min:        0,
			Max:        float32(len(fronts) - 1),
			Dimension:  "2",
			InRange:    &opts.VisualMapInRange{Color: []string{"#440154", "#3e4989", "#26828e", "#35b779", "#b5de2b", "#fde725"}},
		}),
	)

	scatter.AddSeries("fronts", data, charts.WithScatterChartOpts(opts.ScatterChart{SymbolSize: 4}))

	var buf bytes.Buffer
	if err := scatter.Render(&buf); err != nil {
		s.writeJSONError(w, http.StatusInternalServerError, fmt.Sprintf("failed to render chart: %v", err))
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = w.Write(buf.Bytes())
}
