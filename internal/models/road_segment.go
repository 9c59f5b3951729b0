package models

import (
	"time"

	"github.com/roadcare/roadcare-backend-go/internal/spatial"
)

// RoadSegment represents a road network edge imported from OpenStreetMap.
// Reference data: read-only at request time, populated by the network
// import tooling.
type RoadSegment struct {
	ID    int64  `json:"id" db:"id"`
	OSMID string `json:"osm_id" db:"osm_id"`

	Name     string `json:"name,omitempty" db:"name"`
	RoadType string `json:"road_type" db:"road_type"` // motorway, primary, residential, ...

	// Line geometry in WGS84, stored as a JSON coordinate array
	Geometry     spatial.Polyline `json:"geometry" db:"geometry"`
	LengthMeters float64          `json:"length_meters" db:"length_meters"`

	// Traffic importance rank (1-10 scale)
	TrafficImportance int `json:"traffic_importance" db:"traffic_importance"`

	// Bounding box, denormalized for spatial prefiltering
	MinLat float64 `json:"-" db:"min_lat"`
	MinLon float64 `json:"-" db:"min_lon"`
	MaxLat float64 `json:"-" db:"max_lat"`
	MaxLon float64 `json:"-" db:"max_lon"`

	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// Road type constants
const (
	RoadTypeMotorway     = "motorway"
	RoadTypeTrunk        = "trunk"
	RoadTypePrimary      = "primary"
	RoadTypeSecondary    = "secondary"
	RoadTypeTertiary     = "tertiary"
	RoadTypeResidential  = "residential"
	RoadTypeUnclassified = "unclassified"
)

// SegmentFilter holds query parameters for listing road segments
type SegmentFilter struct {
	RoadType string `form:"road_type"`
	Page     int    `form:"page"`
	PageSize int    `form:"page_size"`
}
