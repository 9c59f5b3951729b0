package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/roadcare/roadcare-backend-go/internal/models"
)

const priorityColumns = `id, segment_id, severity_score, traffic_score, density_score,
	age_score, accessibility_score, total_priority_score, priority_level,
	defect_count, avg_severity, max_severity, road_name, road_type,
	estimated_cost, estimated_duration_days, created_at, updated_at, calculated_at`

// PriorityRepository handles database operations for priority scores
type PriorityRepository struct {
	db *sql.DB
}

// NewPriorityRepository creates a new priority repository
func NewPriorityRepository(db *sql.DB) *PriorityRepository {
	return &PriorityRepository{db: db}
}

// Upsert writes a priority score keyed by segment_id in a single statement.
// An existing row keeps its id and created_at; all derived fields are
// overwritten and updated_at/calculated_at refreshed. The unique constraint
// on segment_id serializes racing writers; last committer wins whole.
func (r *PriorityRepository) Upsert(ctx context.Context, ps *models.PriorityScore) error {
	if ps.ID == "" {
		ps.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	ps.CreatedAt = now
	ps.UpdatedAt = now
	ps.CalculatedAt = now

	query := `
		INSERT INTO priority_scores (
			id, segment_id, severity_score, traffic_score, density_score,
			age_score, accessibility_score, total_priority_score, priority_level,
			defect_count, avg_severity, max_severity, road_name, road_type,
			estimated_cost, estimated_duration_days, created_at, updated_at, calculated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(segment_id) DO UPDATE SET
			severity_score = excluded.severity_score,
			traffic_score = excluded.traffic_score,
			density_score = excluded.density_score,
			age_score = excluded.age_score,
			accessibility_score = excluded.accessibility_score,
			total_priority_score = excluded.total_priority_score,
			priority_level = excluded.priority_level,
			defect_count = excluded.defect_count,
			avg_severity = excluded.avg_severity,
			max_severity = excluded.max_severity,
			road_name = excluded.road_name,
			road_type = excluded.road_type,
			estimated_cost = excluded.estimated_cost,
			estimated_duration_days = excluded.estimated_duration_days,
			updated_at = excluded.updated_at,
			calculated_at = excluded.calculated_at
	`

	_, err := r.db.ExecContext(ctx, query,
		ps.ID,
		ps.SegmentID,
		ps.SeverityScore,
		ps.TrafficScore,
		ps.DensityScore,
		ps.AgeScore,
		ps.AccessibilityScore,
		ps.TotalPriorityScore,
		ps.PriorityLevel,
		ps.DefectCount,
		ps.AvgSeverity,
		ps.MaxSeverity,
		ps.RoadName,
		ps.RoadType,
		ps.EstimatedCost,
		ps.EstimatedDurationDays,
		ps.CreatedAt,
		ps.UpdatedAt,
		ps.CalculatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to upsert priority score: %w", err)
	}

	// Re-read so the caller sees the stored identity and created_at when
	// the upsert hit an existing row.
	stored, err := r.GetBySegmentID(ctx, ps.SegmentID)
	if err != nil {
		return err
	}
	if stored != nil {
		*ps = *stored
	}

	return nil
}

// GetBySegmentID retrieves the priority score for a segment. Returns nil
// when no score has been computed yet.
func (r *PriorityRepository) GetBySegmentID(ctx context.Context, segmentID int64) (*models.PriorityScore, error) {
	query := `SELECT ` + priorityColumns + ` FROM priority_scores WHERE segment_id = ?`

	ps, err := scanPriority(r.db.QueryRowContext(ctx, query, segmentID))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get priority score: %w", err)
	}

	return ps, nil
}

// List retrieves priority scores ordered by total score descending, with
// optional minimum-score and level filters
func (r *PriorityRepository) List(ctx context.Context, filter models.PriorityFilter) ([]models.PriorityScore, error) {
	var conditions []string
	var args []interface{}

	if filter.MinPriority != nil {
		conditions = append(conditions, "total_priority_score >= ?")
		args = append(args, *filter.MinPriority)
	}
	if filter.PriorityLevel != "" {
		conditions = append(conditions, "priority_level = ?")
		args = append(args, filter.PriorityLevel)
	}

	query := `SELECT ` + priorityColumns + ` FROM priority_scores`
	if len(conditions) > 0 {
		query += " WHERE " + strings.Join(conditions, " AND ")
	}

	if filter.Limit < 1 {
		filter.Limit = 100
	}
	if filter.Limit > 500 {
		filter.Limit = 500
	}
	query += " ORDER BY total_priority_score DESC LIMIT ?"
	args = append(args, filter.Limit)

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query priority scores: %w", err)
	}
	defer rows.Close()

	var scores []models.PriorityScore
	for rows.Next() {
		ps, err := scanPriority(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan priority score: %w", err)
		}
		scores = append(scores, *ps)
	}

	return scores, rows.Err()
}

// Statistics aggregates the whole priority table in a single statement, so
// every count reflects one consistent snapshot.
func (r *PriorityRepository) Statistics(ctx context.Context) (*models.PriorityStatistics, error) {
	query := `
		SELECT
			COUNT(*),
			COALESCE(SUM(CASE WHEN priority_level = 'CRITICAL' THEN 1 ELSE 0 END), 0),
			COALESCE(SUM(CASE WHEN priority_level = 'HIGH' THEN 1 ELSE 0 END), 0),
			COALESCE(SUM(CASE WHEN priority_level = 'MEDIUM' THEN 1 ELSE 0 END), 0),
			COALESCE(SUM(CASE WHEN priority_level = 'LOW' THEN 1 ELSE 0 END), 0),
			COALESCE(SUM(defect_count), 0),
			COALESCE(SUM(estimated_cost), 0),
			COALESCE(AVG(total_priority_score), 0)
		FROM priority_scores
	`

	stats := &models.PriorityStatistics{}
	err := r.db.QueryRowContext(ctx, query).Scan(
		&stats.TotalSegments,
		&stats.ByPriorityLevel.Critical,
		&stats.ByPriorityLevel.High,
		&stats.ByPriorityLevel.Medium,
		&stats.ByPriorityLevel.Low,
		&stats.TotalDefects,
		&stats.TotalEstimatedCost,
		&stats.AvgPriorityScore,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to compute priority statistics: %w", err)
	}

	return stats, nil
}

func scanPriority(row rowScanner) (*models.PriorityScore, error) {
	var ps models.PriorityScore
	err := row.Scan(
		&ps.ID, &ps.SegmentID, &ps.SeverityScore, &ps.TrafficScore, &ps.DensityScore,
		&ps.AgeScore, &ps.AccessibilityScore, &ps.TotalPriorityScore, &ps.PriorityLevel,
		&ps.DefectCount, &ps.AvgSeverity, &ps.MaxSeverity, &ps.RoadName, &ps.RoadType,
		&ps.EstimatedCost, &ps.EstimatedDurationDays, &ps.CreatedAt, &ps.UpdatedAt, &ps.CalculatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &ps, nil
}
