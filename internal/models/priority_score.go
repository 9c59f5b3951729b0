package models

import "time"

// PriorityScore represents the maintenance priority computed for a road
// segment. At most one live record per segment_id; recomputation upserts
// in place.
type PriorityScore struct {
	ID        string `json:"id" db:"id"`
	SegmentID int64  `json:"segment_id" db:"segment_id"`

	// Priority components (0-100 scale)
	SeverityScore      float64 `json:"severity_score" db:"severity_score"`
	TrafficScore       float64 `json:"traffic_score" db:"traffic_score"`
	DensityScore       float64 `json:"density_score" db:"density_score"`
	AgeScore           float64 `json:"age_score" db:"age_score"`
	AccessibilityScore float64 `json:"accessibility_score" db:"accessibility_score"`

	// Weighted total (0-100) and its classification
	TotalPriorityScore float64 `json:"total_priority_score" db:"total_priority_score"`
	PriorityLevel      string  `json:"priority_level" db:"priority_level"` // LOW, MEDIUM, HIGH, CRITICAL

	// Aggregate defect statistics
	DefectCount int     `json:"defect_count" db:"defect_count"`
	AvgSeverity float64 `json:"avg_severity" db:"avg_severity"`
	MaxSeverity float64 `json:"max_severity" db:"max_severity"`

	// Denormalized road attributes
	RoadName string `json:"road_name,omitempty" db:"road_name"`
	RoadType string `json:"road_type,omitempty" db:"road_type"`

	// Maintenance estimates
	EstimatedCost         float64 `json:"estimated_cost" db:"estimated_cost"`
	EstimatedDurationDays int     `json:"estimated_duration_days" db:"estimated_duration_days"`

	CreatedAt    time.Time `json:"created_at" db:"created_at"`
	UpdatedAt    time.Time `json:"updated_at" db:"updated_at"`
	CalculatedAt time.Time `json:"calculated_at" db:"calculated_at"`
}

// Priority level constants
const (
	PriorityLow      = "LOW"
	PriorityMedium   = "MEDIUM"
	PriorityHigh     = "HIGH"
	PriorityCritical = "CRITICAL"
)

// PriorityDefectInput is one defect's contribution to a segment priority
// computation, gathered by the caller from the georeferencing store
type PriorityDefectInput struct {
	SeverityScore       float64 `json:"severity_score"`
	AgeDays             int     `json:"age_days"`
	RoadName            string  `json:"road_name"`
	RoadType            string  `json:"road_type"`
	SegmentLengthMeters float64 `json:"segment_length_meters"`
}

// ComputePriorityInput is a request to compute priority for a segment
type ComputePriorityInput struct {
	SegmentID int64                 `json:"segment_id" binding:"required"`
	Defects   []PriorityDefectInput `json:"defects"`
}

// PriorityFilter holds query parameters for the priority list
type PriorityFilter struct {
	MinPriority   *float64 `form:"min_priority"`
	PriorityLevel string   `form:"priority_level"`
	Limit         int      `form:"limit"`
}

// RecomputeSummary reports the outcome of a full priority recomputation
type RecomputeSummary struct {
	SegmentsProcessed int `json:"segments_processed"`
	Failed            int `json:"failed"`
}

// PriorityStatistics aggregates the priority table in one snapshot
type PriorityStatistics struct {
	TotalSegments      int64           `json:"total_segments"`
	ByPriorityLevel    PriorityCounts  `json:"by_priority_level"`
	TotalDefects       int64           `json:"total_defects"`
	TotalEstimatedCost float64         `json:"total_estimated_cost"`
	AvgPriorityScore   float64         `json:"avg_priority_score"`
}

// PriorityCounts breaks down segments per priority level
type PriorityCounts struct {
	Critical int64 `json:"critical"`
	High     int64 `json:"high"`
	Medium   int64 `json:"medium"`
	Low      int64 `json:"low"`
}
