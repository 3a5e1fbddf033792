package sqlite

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/banshee-data/motion-prep/internal/mtr/polyline"
)

// MapSummary describes a stored static map without its geometry.
type MapSummary struct {
	MapID        string `json:"map_id"`
	Name         string `json:"name"`
	NumPolylines int    `json:"num_polylines"`
	NumPoints    int    `json:"num_points"`
	CreatedAtNs  int64  `json:"created_at_ns"`
}

// MapStore provides persistence for static maps.
type MapStore struct {
	db *sql.DB
}

// NewMapStore creates a new MapStore.
func NewMapStore(db *sql.DB) *MapStore {
	return &MapStore{db: db}
}

// SaveMap stores m under a freshly generated map id and returns that id.
// Polylines and their waypoints keep their order.
func (s *MapStore) SaveMap(name string, m *polyline.StaticMap) (string, error) {
	mapID := uuid.New().String()

	tx, err := s.db.Begin()
	if err != nil {
		return "", fmt.Errorf("begin save map: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.Exec(`
		INSERT INTO static_maps (map_id, name, num_polylines, num_points, created_at_ns)
		VALUES (?, ?, ?, ?, ?)
	`, mapID, name, len(m.Polylines), m.NumPoints(), time.Now().UnixNano())
	if err != nil {
		return "", fmt.Errorf("insert static map: %w", err)
	}

	lineStmt, err := tx.Prepare(`INSERT INTO map_polylines (map_id, polyline_seq, label) VALUES (?, ?, ?)`)
	if err != nil {
		return "", fmt.Errorf("prepare polyline insert: %w", err)
	}
	defer lineStmt.Close()

	pointStmt, err := tx.Prepare(`
		INSERT INTO map_points (map_id, polyline_seq, point_seq, x, y, z)
		VALUES (?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return "", fmt.Errorf("prepare point insert: %w", err)
	}
	defer pointStmt.Close()

	for i, p := range m.AllPolylines() {
		if _, err := lineStmt.Exec(mapID, i, p.Label.String()); err != nil {
			return "", fmt.Errorf("insert polyline %d: %w", i, err)
		}
		for j, w := range p.Waypoints {
			if _, err := pointStmt.Exec(mapID, i, j, w[0], w[1], w[2]); err != nil {
				return "", fmt.Errorf("insert polyline %d point %d: %w", i, j, err)
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return "", fmt.Errorf("commit save map: %w", err)
	}
	return mapID, nil
}

// LoadMap returns the stored map. A missing id yields an error wrapping
// sql.ErrNoRows.
func (s *MapStore) LoadMap(mapID string) (*polyline.StaticMap, error) {
	var numPolylines int
	err := s.db.QueryRow(`SELECT num_polylines FROM static_maps WHERE map_id = ?`, mapID).Scan(&numPolylines)
	if err != nil {
		return nil, fmt.Errorf("load map %s: %w", mapID, err)
	}

	lines := make([]*polyline.Polyline, numPolylines)
	rows, err := s.db.Query(`
		SELECT polyline_seq, label FROM map_polylines
		WHERE map_id = ?
		ORDER BY polyline_seq
	`, mapID)
	if err != nil {
		return nil, fmt.Errorf("list polylines: %w", err)
	}
	for rows.Next() {
		var seq int
		var name string
		if err := rows.Scan(&seq, &name); err != nil {
			rows.Close()
			return nil, fmt.Errorf("scan polyline: %w", err)
		}
		if seq < 0 || seq >= numPolylines {
			rows.Close()
			return nil, fmt.Errorf("map %s: polyline seq %d out of range", mapID, seq)
		}
		label, err := polyline.ParseLabel(name)
		if err != nil {
			label = polyline.LabelUnknown
		}
		lines[seq] = &polyline.Polyline{Label: label}
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return nil, fmt.Errorf("iterate polylines: %w", err)
	}
	rows.Close()

	rows, err = s.db.Query(`
		SELECT polyline_seq, x, y, z FROM map_points
		WHERE map_id = ?
		ORDER BY polyline_seq, point_seq
	`, mapID)
	if err != nil {
		return nil, fmt.Errorf("list points: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var seq int
		var w [3]float64
		if err := rows.Scan(&seq, &w[0], &w[1], &w[2]); err != nil {
			return nil, fmt.Errorf("scan point: %w", err)
		}
		if seq < 0 || seq >= numPolylines || lines[seq] == nil {
			return nil, fmt.Errorf("map %s: point references missing polyline %d", mapID, seq)
		}
		lines[seq].Waypoints = append(lines[seq].Waypoints, w)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate points: %w", err)
	}

	return polyline.NewStaticMap(mapID, lines...), nil
}

// ListMaps returns every stored map, newest first.
func (s *MapStore) ListMaps() ([]MapSummary, error) {
	rows, err := s.db.Query(`
		SELECT map_id, name, num_polylines, num_points, created_at_ns
		FROM static_maps
		ORDER BY created_at_ns DESC, map_id
	`)
	if err != nil {
		return nil, fmt.Errorf("list maps: %w", err)
	}
	defer rows.Close()

	var maps []MapSummary
	for rows.Next() {
		var m MapSummary
		if err := rows.Scan(&m.MapID, &m.Name, &m.NumPolylines, &m.NumPoints, &m.CreatedAtNs); err != nil {
			return nil, fmt.Errorf("scan map: %w", err)
		}
		maps = append(maps, m)
	}
	return maps, rows.Err()
}

// DeleteMap removes a map and its geometry. Returns sql.ErrNoRows if the
// map does not exist.
func (s *MapStore) DeleteMap(mapID string) error {
	result, err := s.db.Exec(`DELETE FROM static_maps WHERE map_id = ?`, mapID)
	if err != nil {
		return fmt.Errorf("delete map: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("check delete result: %w", err)
	}
	if rows == 0 {
		return sql.ErrNoRows
	}
	return nil
}
