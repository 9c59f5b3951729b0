package models

import "time"

// GeoreferencedDefect represents a pavement defect snapped to the road
// network. Written once per detection; match fields and review flags are
// set atomically in a single record.
type GeoreferencedDefect struct {
	ID          string `json:"georef_id" db:"id"`
	DetectionID string `json:"detection_id" db:"detection_id"`

	// Road segment mapping (nil means unmatched)
	SegmentID *int64 `json:"segment_id,omitempty" db:"segment_id"`

	// Original GPS location from frame metadata
	Latitude  float64 `json:"latitude" db:"latitude"`
	Longitude float64 `json:"longitude" db:"longitude"`

	// Snapped location on the road network (set only when matched)
	MatchedLat *float64 `json:"matched_lat,omitempty" db:"matched_lat"`
	MatchedLon *float64 `json:"matched_lon,omitempty" db:"matched_lon"`

	// Map-matching metrics
	DistanceToRoad *float64 `json:"distance_to_road,omitempty" db:"distance_to_road"` // meters
	Confidence     *float64 `json:"confidence,omitempty" db:"confidence"`             // 0~1
	Heading        *float64 `json:"heading,omitempty" db:"heading"`                   // degrees [0,360)

	// Defect info, denormalized for faster queries
	DefectType    string   `json:"defect_type,omitempty" db:"defect_type"`
	SeverityScore *float64 `json:"severity_score,omitempty" db:"severity_score"` // 0~10

	IsMatched   bool `json:"is_matched" db:"is_matched"`
	NeedsReview bool `json:"needs_review" db:"needs_review"`

	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// NearbyDefect is a georeferenced defect enriched with road attributes and
// its distance from a search center
type NearbyDefect struct {
	GeoreferencedDefect
	RoadName       string  `json:"road_name"`
	RoadType       string  `json:"road_type,omitempty"`
	DistanceMeters float64 `json:"distance_meters"`
}

// GeorefInput is a single defect georeferencing request
type GeorefInput struct {
	DetectionID   string   `json:"detection_id" binding:"required"`
	Latitude      float64  `json:"latitude"`
	Longitude     float64  `json:"longitude"`
	DefectType    string   `json:"defect_type"`
	SeverityScore *float64 `json:"severity_score"`
	Heading       *float64 `json:"heading"`
}

// BatchGeorefInput is a batch georeferencing request
type BatchGeorefInput struct {
	Defects []GeorefInput `json:"defects" binding:"required"`
}

// BatchGeorefItem is the per-item outcome of a batch run. Failures are
// isolated: one bad defect never aborts the rest of the batch.
type BatchGeorefItem struct {
	DetectionID string               `json:"detection_id"`
	Result      *GeoreferencedDefect `json:"result,omitempty"`
	Error       string               `json:"error,omitempty"`
}

// BatchGeorefSummary summarizes a batch georeferencing run
type BatchGeorefSummary struct {
	Total     int               `json:"total"`
	Matched   int               `json:"matched"`
	Unmatched int               `json:"unmatched"`
	Failed    int               `json:"failed"`
	Results   []BatchGeorefItem `json:"results"`
}

// GeorefStatistics aggregates the georeferencing store in one snapshot
type GeorefStatistics struct {
	TotalDefects      int64   `json:"total_defects"`
	MatchedDefects    int64   `json:"matched_defects"`
	UnmatchedDefects  int64   `json:"unmatched_defects"`
	NeedsReview       int64   `json:"needs_review"`
	MatchRate         float64 `json:"match_rate"` // percentage, 2 decimals
	TotalRoadSegments int64   `json:"total_road_segments"`
}

// NearbySearchInput is a nearby defect search request
type NearbySearchInput struct {
	Latitude     float64 `json:"latitude"`
	Longitude    float64 `json:"longitude"`
	RadiusMeters float64 `json:"radius_meters"`
}
