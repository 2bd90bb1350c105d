// Package api serves the routing debug surface: session listings, stored
// fronts and statistics as JSON, and an ECharts scatter of the expansion.
package api

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/banshee-data/passage.route/internal/monitoring"
	"github.com/banshee-data/passage.route/internal/route"
	"github.com/banshee-data/passage.route/internal/session"
	"github.com/banshee-data/passage.route/internal/version"
)

// FrontSource is the slice of the session store the API needs. Declared here
// so the server can be tested against a fake without a database.
type FrontSource interface {
	Fronts(sessionID string) ([]route.Frontier, error)
	StatsHistory(sessionID string) ([]session.StepStats, error)
	RecentSessions(limit int) ([]session.Session, error)
}

// Server exposes the debug HTTP endpoints over a FrontSource.
type Server struct {
	source FrontSource
	mux    *http.ServeMux
}

// NewServer builds a server and registers its routes.
func NewServer(source FrontSource) *Server {
	s := &Server{source: source, mux: http.NewServeMux()}
	s.mux.HandleFunc("/healthz", s.handleHealth)
	s.mux.HandleFunc("/api/route/sessions", s.handleSessions)
	s.mux.HandleFunc("/api/route/fronts", s.handleFronts)
	s.mux.HandleFunc("/api/route/stats", s.handleStats)
	s.mux.HandleFunc("/debug/route/chart", s.handleChart)
	return s
}

// ServeMux returns the underlying mux so callers can mount extra routes
// before starting the listener.
func (s *Server) ServeMux() *http.ServeMux {
	return s.mux
}

// Start blocks serving HTTP on addr.
func (s *Server) Start(addr string) error {
	monitoring.Logf("api: listening on %s", addr)
	return http.ListenAndServe(addr, s.mux)
}

func (s *Server) writeJSONError(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": msg})
}

func (s *Server) writeJSON(w http.ResponseWriter, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		monitoring.Logf("api: write response: %v", err)
	}
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, map[string]string{
		"status":  "ok",
		"version": version.Version,
	})
}

// sessionJSON is the wire shape of a stored session.
type sessionJSON struct {
	SessionID        string  `json:"session_id"`
	CreatedUnixNanos int64   `json:"created_unix_nanos"`
	StartLat         float64 `json:"start_lat"`
	StartLon         float64 `json:"start_lon"`
	DestLat          float64 `json:"dest_lat"`
	DestLon          float64 `json:"dest_lon"`
	TimeStepSeconds  float64 `json:"time_step_seconds"`
}

func (s *Server) handleSessions(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.writeJSONError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	sessions, err := s.source.RecentSessions(20)
	if err != nil {
		s.writeJSONError(w, http.StatusInternalServerError, fmt.Sprintf("list sessions: %v", err))
		return
	}

	out := make([]sessionJSON, 0, len(sessions))
	for _, sess := range sessions {
		out = append(out, sessionJSON{
			SessionID:        sess.ID,
			CreatedUnixNanos: sess.CreatedUnixNanos,
			StartLat:         sess.Config.Start.Lat,
			StartLon:         sess.Config.Start.Lon,
			DestLat:          sess.Config.Destination.Lat,
			DestLon:          sess.Config.Destination.Lon,
			TimeStepSeconds:  sess.Config.TimeStep,
		})
	}
	s.writeJSON(w, out)
}

// resolveSessionID returns the session_id query parameter, falling back to
// the most recent session when the parameter is absent.
func (s *Server) resolveSessionID(r *http.Request) (string, error) {
	if id := r.URL.Query().Get("session_id"); id != "" {
		return id, nil
	}
	sessions, err := s.source.RecentSessions(1)
	if err != nil {
		return "", err
	}
	if len(sessions) == 0 {
		return "", fmt.Errorf("no sessions recorded")
	}
	return sessions[0].ID, nil
}

type pointJSON struct {
	Lat            float64 `json:"lat"`
	Lon            float64 `json:"lon"`
	TimeUnixNanos  int64   `json:"time_unix_nanos"`
	ElapsedSeconds float64 `json:"elapsed_seconds"`
}

type frontsResponse struct {
	SessionID string        `json:"session_id"`
	Fronts    [][]pointJSON `json:"fronts"`
}

func (s *Server) handleFronts(w http.ResponseWriter, r *http.Request) {
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

	resp := frontsResponse{SessionID: sessionID, Fronts: make([][]pointJSON, 0, len(fronts))}
	for _, front := range fronts {
		pts := make([]pointJSON, 0, len(front))
		for _, state := range front {
			pts = append(pts, pointJSON{
				Lat:            state.Position.Lat,
				Lon:            state.Position.Lon,
				TimeUnixNanos:  state.Time.UnixNano(),
				ElapsedSeconds: state.Elapsed,
			})
		}
		resp.Fronts = append(resp.Fronts, pts)
	}
	s.writeJSON(w, resp)
}

type statsRowJSON struct {
	Step      int     `json:"step"`
	Count     int     `json:"count"`
	MinDistM  float64 `json:"min_dist_m"`
	MeanDistM float64 `json:"mean_dist_m"`
	MaxDistM  float64 `json:"max_dist_m"`
	P90DistM  float64 `json:"p90_dist_m"`
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.writeJSONError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	sessionID, err := s.resolveSessionID(r)
	if err != nil {
		s.writeJSONError(w, http.StatusNotFound, err.Error())
		return
	}

	history, err := s.source.StatsHistory(sessionID)
	if err != nil {
		s.writeJSONError(w, http.StatusInternalServerError, fmt.Sprintf("load stats: %v", err))
		return
	}

	out := make([]statsRowJSON, 0, len(history))
	for _, row := range history {
		out = append(out, statsRowJSON{
			Step:      row.Step,
			Count:     row.Stats.Count,
			MinDistM:  row.Stats.MinDist,
			MeanDistM: row.Stats.MeanDist,
			MaxDistM:  row.Stats.MaxDist,
			P90DistM:  row.Stats.P90Dist,
		})
	}
	s.writeJSON(w, out)
}
