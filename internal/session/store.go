// Package session persists routing sessions: the configuration, every front
// of the expansion history, and per-front distance statistics. Consumers of
// the engine keep the history here; the router itself stays stateless.
package session

import (
	"database/sql"
	"embed"
	"fmt"
	"io/fs"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/banshee-data/passage.route/internal/geo"
	"github.com/banshee-data/passage.route/internal/route"
	"github.com/banshee-data/passage.route/internal/route/monitor"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// Store is a sqlite-backed session archive.
type Store struct {
	*sql.DB
}

// Open opens (creating if needed) the session database at path and brings the
// schema up to date.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("session: open %s: %w", path, err)
	}

	s := &Store{db}

	// WAL mode allows the debug API to read while a run appends; the busy
	// timeout avoids immediate "database is locked" errors.
	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA synchronous = NORMAL",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			return nil, fmt.Errorf("session: %q: %w", pragma, err)
		}
	}

	sub, err := fs.Sub(migrationsFS, "migrations")
	if err != nil {
		return nil, fmt.Errorf("session: embedded migrations: %w", err)
	}
	if err := s.MigrateUp(sub); err != nil {
		return nil, err
	}
	return s, nil
}

// Session is a stored routing session.
type Session struct {
	ID               string
	CreatedUnixNanos int64
	Config           route.Config
}

// Create inserts a new session for the given configuration and returns it.
func (s *Store) Create(cfg route.Config) (*Session, error) {
	sess := &Session{
		ID:               uuid.NewString(),
		CreatedUnixNanos: time.Now().UnixNano(),
		Config:           cfg,
	}

	_, err := s.Exec(`
		INSERT INTO route_session (
			session_id, created_unix_nanos,
			start_lat, start_lon, dest_lat, dest_lon,
			time_step_seconds, grid_precision, heading_count, heading_span_degrees
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		sess.ID, sess.CreatedUnixNanos,
		cfg.Start.Lat, cfg.Start.Lon, cfg.Destination.Lat, cfg.Destination.Lon,
		cfg.TimeStep, cfg.GridPrecision, cfg.HeadingCount, cfg.HeadingSpan)
	if err != nil {
		return nil, fmt.Errorf("session: insert session: %w", err)
	}
	return sess, nil
}

// AppendFront stores one front and its statistics under the session. Steps
// are expected in order starting at 0 (the departure frontier).
func (s *Store) AppendFront(sessionID string, step int, front route.Frontier, stats monitor.FrontStats) error {
	tx, err := s.Begin()
	if err != nil {
		return fmt.Errorf("session: begin: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.Exec(`
		INSERT INTO route_front (session_id, step, point_count, min_dist_m, mean_dist_m, max_dist_m, p90_dist_m)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		sessionID, step, stats.Count, stats.MinDist, stats.MeanDist, stats.MaxDist, stats.P90Dist)
	if err != nil {
		return fmt.Errorf("session: insert front %d: %w", step, err)
	}

	insert, err := tx.Prepare(`
		INSERT INTO route_front_point (session_id, step, point_idx, lat, lon, time_unix_nanos, elapsed_seconds)
		VALUES (?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("session: prepare point insert: %w", err)
	}
	defer insert.Close()

	for i, state := range front {
		_, err := insert.Exec(sessionID, step, i,
			state.Position.Lat, state.Position.Lon,
			state.Time.UnixNano(), state.Elapsed)
		if err != nil {
			return fmt.Errorf("session: insert point %d of front %d: %w", i, step, err)
		}
	}

	return tx.Commit()
}

// Fronts returns the stored expansion history in step order.
func (s *Store) Fronts(sessionID string) ([]route.Frontier, error) {
	rows, err := s.Query(`
		SELECT step, lat, lon, time_unix_nanos, elapsed_seconds
		FROM route_front_point
		WHERE session_id = ?
		ORDER BY step, point_idx`, sessionID)
	if err != nil {
		return nil, fmt.Errorf("session: query fronts: %w", err)
	}
	defer rows.Close()

	var fronts []route.Frontier
	for rows.Next() {
		var step int
		var lat, lon, elapsed float64
		var nanos int64
		if err := rows.Scan(&step, &lat, &lon, &nanos, &elapsed); err != nil {
			return nil, fmt.Errorf("session: scan point: %w", err)
		}
		for len(fronts) <= step {
			fronts = append(fronts, route.Frontier{})
		}
		fronts[step] = append(fronts[step], route.BoatState{
			Position: geo.NewCoordinate(lat, lon),
			Time:     time.Unix(0, nanos).UTC(),
			Elapsed:  elapsed,
		})
	}
	return fronts, rows.Err()
}

// StepStats is one stored per-front statistics row.
type StepStats struct {
	Step  int
	Stats monitor.FrontStats
}

// StatsHistory returns the per-front statistics in step order.
func (s *Store) StatsHistory(sessionID string) ([]StepStats, error) {
	rows, err := s.Query(`
		SELECT step, point_count, min_dist_m, mean_dist_m, max_dist_m, p90_dist_m
		FROM route_front
		WHERE session_id = ?
		ORDER BY step`, sessionID)
	if err != nil {
		return nil, fmt.Errorf("session: query stats: %w", err)
	}
	defer rows.Close()

	var out []StepStats
	for rows.Next() {
		var st StepStats
		if err := rows.Scan(&st.Step, &st.Stats.Count, &st.Stats.MinDist,
			&st.Stats.MeanDist, &st.Stats.MaxDist, &st.Stats.P90Dist); err != nil {
			return nil, fmt.Errorf("session: scan stats: %w", err)
		}
		out = append(out, st)
	}
	return out, rows.Err()
}

// RecentSessions lists the most recently created sessions, newest first.
func (s *Store) RecentSessions(limit int) ([]Session, error) {
	rows, err := s.Query(`
		SELECT session_id, created_unix_nanos,
		       start_lat, start_lon, dest_lat, dest_lon,
		       time_step_seconds, grid_precision, heading_count, heading_span_degrees
		FROM route_session
		ORDER BY created_unix_nanos DESC
		LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("session: query sessions: %w", err)
	}
	defer rows.Close()

	var out []Session
	for rows.Next() {
		var sess Session
		var startLat, startLon, destLat, destLon float64
		if err := rows.Scan(&sess.ID, &sess.CreatedUnixNanos,
			&startLat, &startLon, &destLat, &destLon,
			&sess.Config.TimeStep, &sess.Config.GridPrecision,
			&sess.Config.HeadingCount, &sess.Config.HeadingSpan); err != nil {
			return nil, fmt.Errorf("session: scan session: %w", err)
		}
		sess.Config.Start = geo.NewCoordinate(startLat, startLon)
		sess.Config.Destination = geo.NewCoordinate(destLat, destLon)
		out = append(out, sess)
	}
	return out, rows.Err()
}
