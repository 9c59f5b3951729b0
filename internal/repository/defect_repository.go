package repository

import (
	"context"
	"database/sql"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/roadcare/roadcare-backend-go/internal/models"
	"github.com/roadcare/roadcare-backend-go/internal/spatial"
)

const defectColumns = `id, detection_id, segment_id, latitude, longitude,
	matched_lat, matched_lon, distance_to_road, confidence, heading,
	defect_type, severity_score, is_matched, needs_review, created_at, updated_at`

// DefectRepository handles database operations for georeferenced defects
type DefectRepository struct {
	db *sql.DB
}

// NewDefectRepository creates a new defect repository
func NewDefectRepository(db *sql.DB) *DefectRepository {
	return &DefectRepository{db: db}
}

// Create persists a georeferenced defect. The record is written in a single
// statement: either the full record lands, including match fields and review
// flags, or nothing does.
func (r *DefectRepository) Create(ctx context.Context, d *models.GeoreferencedDefect) error {
	if d.ID == "" {
		d.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	d.CreatedAt = now
	d.UpdatedAt = now

	query := `
		INSERT INTO georeferenced_defects (
			id, detection_id, segment_id, latitude, longitude,
			matched_lat, matched_lon, distance_to_road, confidence, heading,
			defect_type, severity_score, is_matched, needs_review, created_at, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err := r.db.ExecContext(ctx, query,
		d.ID,
		d.DetectionID,
		d.SegmentID,
		d.Latitude,
		d.Longitude,
		d.MatchedLat,
		d.MatchedLon,
		d.DistanceToRoad,
		d.Confidence,
		d.Heading,
		d.DefectType,
		d.SeverityScore,
		d.IsMatched,
		d.NeedsReview,
		d.CreatedAt,
		d.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create georeferenced defect: %w", err)
	}

	return nil
}

// GetByID retrieves a georeferenced defect by ID. Returns nil when missing.
func (r *DefectRepository) GetByID(ctx context.Context, id string) (*models.GeoreferencedDefect, error) {
	query := `SELECT ` + defectColumns + ` FROM georeferenced_defects WHERE id = ?`

	d, err := scanDefect(r.db.QueryRowContext(ctx, query, id))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get georeferenced defect: %w", err)
	}

	return d, nil
}

// BySegment retrieves all defects mapped to a segment, newest first
func (r *DefectRepository) BySegment(ctx context.Context, segmentID int64) ([]models.GeoreferencedDefect, error) {
	query := `SELECT ` + defectColumns + ` FROM georeferenced_defects
		WHERE segment_id = ? ORDER BY created_at DESC`

	rows, err := r.db.QueryContext(ctx, query, segmentID)
	if err != nil {
		return nil, fmt.Errorf("failed to query segment defects: %w", err)
	}
	defer rows.Close()

	var defects []models.GeoreferencedDefect
	for rows.Next() {
		d, err := scanDefect(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan defect: %w", err)
		}
		defects = append(defects, *d)
	}

	return defects, rows.Err()
}

// Nearby retrieves defects whose original GPS point lies within
// radiusMeters of the center, ordered by ascending distance and enriched
// with road attributes when matched. A bounding-box prefilter narrows the
// scan; exact geodesic distance decides inclusion.
func (r *DefectRepository) Nearby(ctx context.Context, center spatial.Point, radiusMeters float64) ([]models.NearbyDefect, error) {
	minLat, minLon, maxLat, maxLon := spatial.ExpandBox(center.Lat, center.Lon, center.Lat, center.Lon, radiusMeters)

	query := `SELECT d.id, d.detection_id, d.segment_id, d.latitude, d.longitude,
			d.matched_lat, d.matched_lon, d.distance_to_road, d.confidence, d.heading,
			d.defect_type, d.severity_score, d.is_matched, d.needs_review, d.created_at, d.updated_at,
			COALESCE(s.name, ''), COALESCE(s.road_type, '')
		FROM georeferenced_defects d
		LEFT JOIN road_segments s ON d.segment_id = s.id
		WHERE d.latitude BETWEEN ? AND ? AND d.longitude BETWEEN ? AND ?`

	rows, err := r.db.QueryContext(ctx, query, minLat, maxLat, minLon, maxLon)
	if err != nil {
		return nil, fmt.Errorf("failed to query nearby defects: %w", err)
	}
	defer rows.Close()

	var defects []models.NearbyDefect
	for rows.Next() {
		var nd models.NearbyDefect
		err := rows.Scan(
			&nd.ID, &nd.DetectionID, &nd.SegmentID, &nd.Latitude, &nd.Longitude,
			&nd.MatchedLat, &nd.MatchedLon, &nd.DistanceToRoad, &nd.Confidence, &nd.Heading,
			&nd.DefectType, &nd.SeverityScore, &nd.IsMatched, &nd.NeedsReview, &nd.CreatedAt, &nd.UpdatedAt,
			&nd.RoadName, &nd.RoadType,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan nearby defect: %w", err)
		}

		nd.DistanceMeters = spatial.HaversineDistance(center.Lat, center.Lon, nd.Latitude, nd.Longitude)
		if nd.DistanceMeters <= radiusMeters {
			defects = append(defects, nd)
		}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate nearby defects: %w", err)
	}

	sort.Slice(defects, func(i, j int) bool {
		return defects[i].DistanceMeters < defects[j].DistanceMeters
	})

	return defects, nil
}

// Statistics aggregates the defect store in a single statement so all
// counts come from one consistent snapshot
func (r *DefectRepository) Statistics(ctx context.Context) (*models.GeorefStatistics, error) {
	query := `SELECT
			COUNT(*),
			COALESCE(SUM(is_matched), 0),
			COALESCE(SUM(needs_review), 0),
			(SELECT COUNT(*) FROM road_segments)
		FROM georeferenced_defects`

	var s models.GeorefStatistics
	err := r.db.QueryRowContext(ctx, query).Scan(
		&s.TotalDefects, &s.MatchedDefects, &s.NeedsReview, &s.TotalRoadSegments,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query georeferencing statistics: %w", err)
	}

	s.UnmatchedDefects = s.TotalDefects - s.MatchedDefects
	return &s, nil
}

// MatchedSegmentIDs returns the distinct segments carrying at least one
// matched defect, in ascending id order
func (r *DefectRepository) MatchedSegmentIDs(ctx context.Context) ([]int64, error) {
	query := `SELECT DISTINCT segment_id FROM georeferenced_defects
		WHERE is_matched = 1 AND segment_id IS NOT NULL ORDER BY segment_id`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query matched segments: %w", err)
	}
	defer rows.Close()

	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan segment id: %w", err)
		}
		ids = append(ids, id)
	}

	return ids, rows.Err()
}

func scanDefect(row rowScanner) (*models.GeoreferencedDefect, error) {
	var d models.GeoreferencedDefect
	err := row.Scan(
		&d.ID, &d.DetectionID, &d.SegmentID, &d.Latitude, &d.Longitude,
		&d.MatchedLat, &d.MatchedLon, &d.DistanceToRoad, &d.Confidence, &d.Heading,
		&d.DefectType, &d.SeverityScore, &d.IsMatched, &d.NeedsReview, &d.CreatedAt, &d.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &d, nil
}
