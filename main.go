// Command passage.route runs the isochrone weather-routing engine from the
// command line: load a polar and a land mask, expand the frontier step by
// step under a uniform wind, and optionally record the session and serve the
// debug API.
package main

import (
	"flag"
	"fmt"
	"log"
	"strconv"
	"strings"
	"time"

	"github.com/banshee-data/passage.route/internal/api"
	"github.com/banshee-data/passage.route/internal/config"
	"github.com/banshee-data/passage.route/internal/geo"
	"github.com/banshee-data/passage.route/internal/landmask"
	"github.com/banshee-data/passage.route/internal/polar"
	"github.com/banshee-data/passage.route/internal/route"
	"github.com/banshee-data/passage.route/internal/route/monitor"
	"github.com/banshee-data/passage.route/internal/session"
	"github.com/banshee-data/passage.route/internal/version"
	"github.com/banshee-data/passage.route/internal/wind"
)

var (
	polarPath  = flag.String("polar", "data/imoca_60.csv", "polar CSV file")
	maskPath   = flag.String("mask", "", "GSHHG land mask artifact (empty = open water)")
	tuningPath = flag.String("tuning", "", "optional router tuning JSON file")

	// Default passage: Saint-Malo to Saint-Florent, Corsica.
	startFlag = flag.String("start", "48.66,-2.03", "departure as lat,lon")
	destFlag  = flag.String("dest", "42.68,9.30", "destination as lat,lon")

	steps    = flag.Int("steps", 5, "number of expansion steps to run")
	timeStep = flag.Float64("time-step", 0, "time step in seconds (0 = tuning/default)")

	// 20 knots from the North, the classic smoke-test breeze.
	windU = flag.Float64("wind-u", 0, "uniform wind U component (m/s, eastward)")
	windV = flag.Float64("wind-v", -10.288, "uniform wind V component (m/s, northward)")

	currentU = flag.Float64("current-u", 0, "uniform current U component (m/s, eastward)")
	currentV = flag.Float64("current-v", 0, "uniform current V component (m/s, northward)")

	dbPath   = flag.String("db", "", "record the session to this sqlite database")
	listen   = flag.String("listen", "", "serve the debug API on this address after the run (requires -db)")
	plotPath = flag.String("plot", "", "write a PNG of the expansion to this path")
)

// parseCoordinate parses "lat,lon" in decimal degrees.
func parseCoordinate(s string) (geo.Coordinate, error) {
	parts := strings.Split(s, ",")
	if len(parts) != 2 {
		return geo.Coordinate{}, fmt.Errorf("expected lat,lon, got %q", s)
	}
	lat, err := strconv.ParseFloat(strings.TrimSpace(parts[0]), 64)
	if err != nil {
		return geo.Coordinate{}, fmt.Errorf("bad latitude %q: %w", parts[0], err)
	}
	lon, err := strconv.ParseFloat(strings.TrimSpace(parts[1]), 64)
	if err != nil {
		return geo.Coordinate{}, fmt.Errorf("bad longitude %q: %w", parts[1], err)
	}
	if lat < -90 || lat > 90 {
		return geo.Coordinate{}, fmt.Errorf("latitude %v out of range", lat)
	}
	if lon < -180 || lon > 180 {
		return geo.Coordinate{}, fmt.Errorf("longitude %v out of range", lon)
	}
	return geo.NewCoordinate(lat, lon), nil
}

func main() {
	flag.Parse()
	log.Printf("passage.route %s (%s)", version.Version, version.GitSHA)

	start, err := parseCoordinate(*startFlag)
	if err != nil {
		log.Fatalf("invalid -start: %v", err)
	}
	dest, err := parseCoordinate(*destFlag)
	if err != nil {
		log.Fatalf("invalid -dest: %v", err)
	}
	if *listen != "" && *dbPath == "" {
		log.Fatalf("-listen requires -db so the API has a session store to read")
	}

	cfg := route.DefaultConfig(start, dest)
	if *tuningPath != "" {
		tuning, err := config.LoadRouterTuning(*tuningPath)
		if err != nil {
			log.Fatalf("load tuning: %v", err)
		}
		tuning.Apply(&cfg)
	}
	if *timeStep > 0 {
		cfg.TimeStep = *timeStep
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalf("invalid router config: %v", err)
	}

	table, err := polar.LoadCSV(*polarPath)
	if err != nil {
		log.Fatalf("load polar: %v", err)
	}
	log.Printf("polar: %d TWA x %d TWS points, max %.1f kts", len(table.TWA), len(table.TWS), table.MaxSpeed())

	var mask *landmask.Mask
	if *maskPath != "" {
		mask, err = landmask.Load(*maskPath)
		if err != nil {
			log.Fatalf("load land mask: %v", err)
		}
	} else {
		mask = landmask.New()
		log.Printf("no land mask configured, routing over open water")
	}

	var store *session.Store
	var sess *session.Session
	if *dbPath != "" {
		store, err = session.Open(*dbPath)
		if err != nil {
			log.Fatalf("open session store: %v", err)
		}
		defer store.Close()

		sess, err = store.Create(cfg)
		if err != nil {
			log.Fatalf("create session: %v", err)
		}
		log.Printf("recording session %s", sess.ID)
	}

	winds := wind.Constant{U: *windU, V: *windV}
	currents := wind.ConstantCurrent{U: *currentU, V: *currentV}
	router := route.New(cfg)
	plotter := monitor.NewFrontPlotter(start, dest)

	front := cfg.InitialFrontier(time.Now().UTC())
	record := func(step int, f route.Frontier) {
		plotter.Add(f)
		if store == nil {
			return
		}
		if err := store.AppendFront(sess.ID, step, f, monitor.Stats(f, dest)); err != nil {
			log.Fatalf("record front %d: %v", step, err)
		}
	}
	record(0, front)

	for step := 1; step <= *steps; step++ {
		began := time.Now()
		next, diag := router.StepWithDiagnostics(front, table, mask, winds, currents)
		elapsed := time.Since(began)

		stats := monitor.Stats(next, dest)
		log.Printf("step %d: %d -> %d states (%d candidates, %d buckets, %d culled on land) in %s",
			step, diag.Parents, diag.FrontierSize, diag.Candidates, diag.Buckets, diag.LandCulled, elapsed)
		if stats.Count > 0 {
			log.Printf("step %d: distance to destination min %.1f km, mean %.1f km",
				step, stats.MinDist/1000, stats.MeanDist/1000)
		}

		record(step, next)
		if len(next) == 0 {
			log.Printf("frontier collapsed at step %d, stopping", step)
			break
		}
		front = next
	}

	if *plotPath != "" {
		if err := plotter.Render(*plotPath); err != nil {
			log.Fatalf("render plot: %v", err)
		}
		log.Printf("wrote %s (%d fronts)", *plotPath, plotter.FrontCount())
	}

	if *listen != "" {
		server := api.NewServer(store)
		if err := server.Start(*listen); err != nil {
			log.Fatalf("api server: %v", err)
		}
	}
}
