package route

import (
	"math"
	"runtime"
	"sort"
	"sync"
	"time"

	"github.com/banshee-data/passage.route/internal/geo"
	"github.com/banshee-data/passage.route/internal/landmask"
	"github.com/banshee-data/passage.route/internal/monitoring"
	"github.com/banshee-data/passage.route/internal/physics"
	"github.com/banshee-data/passage.route/internal/polar"
	"github.com/banshee-data/passage.route/internal/wind"
)

// MinViableSpeedMPS is the speed-over-ground floor below which a candidate
// heading is treated as going nowhere and discarded.
const MinViableSpeedMPS = 1e-3

// Router expands isochrone frontiers. It holds no state between steps beyond
// its configuration, so a single Router can replay or branch a session.
type Router struct {
	cfg   Config
	model *physics.Model
}

// New constructs a router for the given configuration.
func New(cfg Config) *Router {
	return &Router{cfg: cfg, model: physics.NewModel()}
}

// Config returns the router's configuration.
func (r *Router) Config() Config {
	return r.cfg
}

// StepDiagnostics summarises one expansion step. It replaces process-wide
// warning counters: each step gets its own struct, so concurrent sessions
// never share mutable state.
type StepDiagnostics struct {
	Parents          int // states in the incoming frontier
	Candidates       int // fan candidates that survived physics and land
	ZeroSpeedParents int // parents with at least one discarded zero-speed heading
	LandCulled       int // candidates dropped on land
	Buckets          int // occupied grid cells after spatial dedupe
	FrontierSize     int // states in the returned frontier
}

// fanResult is one parent's share of Pass 1, merged after the parallel join.
type fanResult struct {
	candidates []candidate
	zeroSpeed  bool
	landCulled int
}

// candidate carries the distance to the destination so Pass 2 never
// recomputes it while comparing bucket occupants.
type candidate struct {
	state      BoatState
	distToDest float64
}

// Step advances the frontier by one time step. It never fails: a frontier
// that cannot move (zero speed on every heading, or surrounded by land)
// comes back empty. A nil mask is treated as open water.
func (r *Router) Step(front Frontier, table *polar.Table, mask *landmask.Mask, winds wind.Sampler, currents wind.CurrentSampler) Frontier {
	next, _ := r.StepWithDiagnostics(front, table, mask, winds, currents)
	return next
}

// StepWithDiagnostics is Step plus the per-step counters.
func (r *Router) StepWithDiagnostics(front Frontier, table *polar.Table, mask *landmask.Mask, winds wind.Sampler, currents wind.CurrentSampler) (Frontier, StepDiagnostics) {
	diag := StepDiagnostics{Parents: len(front)}
	if len(front) == 0 {
		return Frontier{}, diag
	}

	// Pass 1: fan expansion, parallel across parents. Each worker owns its
	// parents' scratch; results merge after the join.
	results := make([]fanResult, len(front))
	if len(front) == 1 {
		results[0] = r.fan(front[0], table, mask, winds, currents)
	} else {
		indexes := make(chan int)
		workers := runtime.GOMAXPROCS(0)
		if workers > len(front) {
			workers = len(front)
		}
		var wg sync.WaitGroup
		for w := 0; w < workers; w++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				for i := range indexes {
					results[i] = r.fan(front[i], table, mask, winds, currents)
				}
			}()
		}
		for i := range front {
			indexes <- i
		}
		close(indexes)
		wg.Wait()
	}

	// Pass 2: spatial bucketing. One survivor per grid cell: the candidate
	// closest to the destination, first arrival winning exact ties. Merge
	// order is parent order, so the outcome is deterministic for a given
	// input frontier.
	buckets := make(map[cellKey]candidate)
	for _, res := range results {
		if res.zeroSpeed {
			diag.ZeroSpeedParents++
		}
		diag.LandCulled += res.landCulled
		diag.Candidates += len(res.candidates)
		for _, cand := range res.candidates {
			key := r.cell(cand.state.Position)
			best, occupied := buckets[key]
			if !occupied || cand.distToDest < best.distToDest {
				buckets[key] = cand
			}
		}
	}
	diag.Buckets = len(buckets)

	// Pass 3: frontier extraction. A cell survives only if one of its four
	// 4-connected neighbours is empty; interior cells cannot improve the
	// frontier and are cut.
	keys := make([]cellKey, 0, len(buckets))
	for key := range buckets {
		keys = append(keys, key)
	}
	sort.Slice(keys, func(i, j int) bool {
		if keys[i].y != keys[j].y {
			return keys[i].y < keys[j].y
		}
		return keys[i].x < keys[j].x
	})

	next := make(Frontier, 0, len(buckets))
	for _, key := range keys {
		_, north := buckets[cellKey{key.x, key.y + 1}]
		_, south := buckets[cellKey{key.x, key.y - 1}]
		_, east := buckets[cellKey{key.x + 1, key.y}]
		_, west := buckets[cellKey{key.x - 1, key.y}]
		if north && south && east && west {
			continue
		}
		next = append(next, buckets[key].state)
	}
	diag.FrontierSize = len(next)

	return next, diag
}

type cellKey struct {
	x int64
	y int64
}

func (r *Router) cell(c geo.Coordinate) cellKey {
	return cellKey{
		x: int64(math.Round(c.Lon * r.cfg.GridPrecision)),
		y: int64(math.Round(c.Lat * r.cfg.GridPrecision)),
	}
}

// fan evaluates every test heading for one parent state.
func (r *Router) fan(s BoatState, table *polar.Table, mask *landmask.Mask, winds wind.Sampler, currents wind.CurrentSampler) fanResult {
	direct := geo.Bearing(s.Position, r.cfg.Destination)

	n := r.cfg.HeadingCount
	span := r.cfg.HeadingSpan
	angleStep := 0.0
	if n > 1 {
		angleStep = (span * 2) / float64(n-1)
	}

	stepDuration := time.Duration(r.cfg.TimeStep * float64(time.Second))
	res := fanResult{candidates: make([]candidate, 0, n)}

	for i := 0; i < n; i++ {
		heading := direct - span + float64(i)*angleStep
		for heading < 0 {
			heading += 360
		}
		for heading >= 360 {
			heading -= 360
		}

		w := winds.WindAt(s.Position)
		cur := currents.CurrentAt(s.Position)
		sog, cog := r.model.ComputeVector(heading, w, cur, table, nil)

		if sog <= MinViableSpeedMPS {
			if !res.zeroSpeed {
				res.zeroSpeed = true
				monitoring.Logf("route: no speed over ground at %.4f,%.4f (first dead heading %.0f)",
					s.Position.Lat, s.Position.Lon, heading)
			}
			continue
		}

		pos := geo.Destination(s.Position, sog*r.cfg.TimeStep, cog)
		if mask != nil && mask.IsLand(pos) {
			res.landCulled++
			continue
		}

		res.candidates = append(res.candidates, candidate{
			state: BoatState{
				Position: pos,
				Time:     s.Time.Add(stepDuration),
				Elapsed:  s.Elapsed + r.cfg.TimeStep,
			},
			distToDest: geo.Distance(pos, r.cfg.Destination),
		})
	}
	return res
}
