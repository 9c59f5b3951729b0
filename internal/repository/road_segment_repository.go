package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/roadcare/roadcare-backend-go/internal/models"
	"github.com/roadcare/roadcare-backend-go/internal/spatial"
)

const segmentColumns = `id, osm_id, name, road_type, geometry, length_meters,
	traffic_importance, min_lat, min_lon, max_lat, max_lon, created_at, updated_at`

// RoadSegmentRepository handles database operations for road segments.
// Segments are reference data: written by import tooling, read-only at
// request time.
type RoadSegmentRepository struct {
	db *sql.DB
}

// NewRoadSegmentRepository creates a new road segment repository
func NewRoadSegmentRepository(db *sql.DB) *RoadSegmentRepository {
	return &RoadSegmentRepository{db: db}
}

// Create inserts a road segment, deriving length and bounding box from its
// geometry
func (r *RoadSegmentRepository) Create(ctx context.Context, seg *models.RoadSegment) error {
	if len(seg.Geometry) < 2 {
		return fmt.Errorf("segment geometry needs at least 2 points, got %d", len(seg.Geometry))
	}

	geomJSON, err := json.Marshal(seg.Geometry)
	if err != nil {
		return fmt.Errorf("failed to encode segment geometry: %w", err)
	}

	if seg.LengthMeters == 0 {
		seg.LengthMeters = seg.Geometry.Length()
	}
	seg.MinLat, seg.MinLon, seg.MaxLat, seg.MaxLon = seg.Geometry.BoundingBox()

	now := time.Now().UTC()
	seg.CreatedAt = now
	seg.UpdatedAt = now

	query := `
		INSERT INTO road_segments (
			osm_id, name, road_type, geometry, length_meters, traffic_importance,
			min_lat, min_lon, max_lat, max_lon, created_at, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	result, err := r.db.ExecContext(ctx, query,
		seg.OSMID,
		seg.Name,
		seg.RoadType,
		string(geomJSON),
		seg.LengthMeters,
		seg.TrafficImportance,
		seg.MinLat,
		seg.MinLon,
		seg.MaxLat,
		seg.MaxLon,
		seg.CreatedAt,
		seg.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create road segment: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get last insert id: %w", err)
	}
	seg.ID = id

	return nil
}

// GetByID retrieves a single road segment by ID. Returns nil when missing.
func (r *RoadSegmentRepository) GetByID(ctx context.Context, id int64) (*models.RoadSegment, error) {
	query := `SELECT ` + segmentColumns + ` FROM road_segments WHERE id = ?`

	seg, err := scanSegment(r.db.QueryRowContext(ctx, query, id))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get road segment: %w", err)
	}

	return seg, nil
}

// List retrieves road segments with filtering and pagination
func (r *RoadSegmentRepository) List(ctx context.Context, filter models.SegmentFilter) ([]models.RoadSegment, int64, error) {
	var conditions []string
	var args []interface{}

	if filter.RoadType != "" {
		conditions = append(conditions, "road_type = ?")
		args = append(args, filter.RoadType)
	}

	whereClause := ""
	if len(conditions) > 0 {
		whereClause = " WHERE " + strings.Join(conditions, " AND ")
	}

	var total int64
	err := r.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM road_segments"+whereClause, args...).Scan(&total)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to count road segments: %w", err)
	}

	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.PageSize < 1 {
		filter.PageSize = 100
	}
	if filter.PageSize > 1000 {
		filter.PageSize = 1000
	}
	offset := (filter.Page - 1) * filter.PageSize

	query := `SELECT ` + segmentColumns + ` FROM road_segments` + whereClause +
		` ORDER BY id LIMIT ? OFFSET ?`
	args = append(args, filter.PageSize, offset)

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to query road segments: %w", err)
	}
	defer rows.Close()

	var segments []models.RoadSegment
	for rows.Next() {
		seg, err := scanSegment(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to scan road segment: %w", err)
		}
		segments = append(segments, *seg)
	}

	return segments, total, rows.Err()
}

// CandidatesNear retrieves segments whose bounding box, expanded by
// radiusMeters, contains the point. Callers refine with exact geodesic
// distance; the box only prefilters.
func (r *RoadSegmentRepository) CandidatesNear(ctx context.Context, p spatial.Point, radiusMeters float64) ([]models.RoadSegment, error) {
	minLat, minLon, maxLat, maxLon := spatial.ExpandBox(p.Lat, p.Lon, p.Lat, p.Lon, radiusMeters)

	query := `SELECT ` + segmentColumns + ` FROM road_segments
		WHERE max_lat >= ? AND min_lat <= ? AND max_lon >= ? AND min_lon <= ?
		ORDER BY id`

	rows, err := r.db.QueryContext(ctx, query, minLat, maxLat, minLon, maxLon)
	if err != nil {
		return nil, fmt.Errorf("failed to query candidate segments: %w", err)
	}
	defer rows.Close()

	var segments []models.RoadSegment
	for rows.Next() {
		seg, err := scanSegment(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan candidate segment: %w", err)
		}
		segments = append(segments, *seg)
	}

	return segments, rows.Err()
}

// rowScanner abstracts *sql.Row and *sql.Rows
type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanSegment(row rowScanner) (*models.RoadSegment, error) {
	var s models.RoadSegment
	var geomJSON string

	err := row.Scan(
		&s.ID, &s.OSMID, &s.Name, &s.RoadType, &geomJSON, &s.LengthMeters,
		&s.TrafficImportance, &s.MinLat, &s.MinLon, &s.MaxLat, &s.MaxLon,
		&s.CreatedAt, &s.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if err := json.Unmarshal([]byte(geomJSON), &s.Geometry); err != nil {
		return nil, fmt.Errorf("failed to decode segment geometry: %w", err)
	}

	return &s, nil
}
