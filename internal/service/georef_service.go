package service

import (
	"context"
	"log"
	"math"

	"github.com/roadcare/roadcare-backend-go/internal/errs"
	"github.com/roadcare/roadcare-backend-go/internal/matching"
	"github.com/roadcare/roadcare-backend-go/internal/models"
	"github.com/roadcare/roadcare-backend-go/internal/repository"
	"github.com/roadcare/roadcare-backend-go/internal/spatial"
)

// reviewDistanceFraction: a match further than this fraction of the
// threshold is flagged for human review.
const reviewDistanceFraction = 0.6

// GeorefService maps defect detections onto the road network and persists
// the outcome
type GeorefService struct {
	matcher         *matching.Matcher
	defects         *repository.DefectRepository
	threshold       float64
	maxNearbyRadius float64
}

// NewGeorefService creates a new georeferencing service
func NewGeorefService(matcher *matching.Matcher, defects *repository.DefectRepository, thresholdMeters, maxNearbyRadius float64) *GeorefService {
	return &GeorefService{
		matcher:         matcher,
		defects:         defects,
		threshold:       thresholdMeters,
		maxNearbyRadius: maxNearbyRadius,
	}
}

// GeoreferenceDefect snaps one detection to the road network and persists a
// GeoreferencedDefect. Validation fails before any persistence attempt; the
// record is written whole or not at all.
func (s *GeorefService) GeoreferenceDefect(ctx context.Context, in models.GeorefInput) (*models.GeoreferencedDefect, error) {
	if err := validateGeorefInput(in); err != nil {
		return nil, err
	}

	point := spatial.Point{Lat: in.Latitude, Lon: in.Longitude}
	match, err := s.matcher.Match(ctx, point, s.threshold)
	if err != nil {
		return nil, err
	}

	defect := &models.GeoreferencedDefect{
		DetectionID:   in.DetectionID,
		Latitude:      in.Latitude,
		Longitude:     in.Longitude,
		DefectType:    in.DefectType,
		SeverityScore: in.SeverityScore,
		Heading:       in.Heading,
	}

	if match.Matched {
		segID := match.Segment.ID
		matchedLat := match.SnappedPoint.Lat
		matchedLon := match.SnappedPoint.Lon
		dist := match.DistanceMeters
		conf := match.Confidence

		defect.SegmentID = &segID
		defect.MatchedLat = &matchedLat
		defect.MatchedLon = &matchedLon
		defect.DistanceToRoad = &dist
		defect.Confidence = &conf
		defect.IsMatched = true
		defect.NeedsReview = dist > s.threshold*reviewDistanceFraction
	} else {
		defect.IsMatched = false
		defect.NeedsReview = true
	}

	if err := s.defects.Create(ctx, defect); err != nil {
		return nil, errs.Persistence("create_defect", err)
	}

	if match.Matched {
		log.Printf("Defect %s matched to segment %d (distance: %.2fm, confidence: %.2f)",
			in.DetectionID, match.Segment.ID, match.DistanceMeters, match.Confidence)
	} else {
		log.Printf("No road found within %.0fm for defect %s", s.threshold, in.DetectionID)
	}

	return defect, nil
}

// BatchGeoreference processes defects independently: a failure on one item
// is recorded and never aborts the rest of the batch.
func (s *GeorefService) BatchGeoreference(ctx context.Context, inputs []models.GeorefInput) (*models.BatchGeorefSummary, error) {
	if len(inputs) == 0 {
		return nil, errs.Validation("defects", "batch must contain at least one defect")
	}

	summary := &models.BatchGeorefSummary{
		Total:   len(inputs),
		Results: make([]models.BatchGeorefItem, 0, len(inputs)),
	}

	for _, in := range inputs {
		item := models.BatchGeorefItem{DetectionID: in.DetectionID}

		defect, err := s.GeoreferenceDefect(ctx, in)
		if err != nil {
			item.Error = err.Error()
			summary.Failed++
		} else {
			item.Result = defect
			if defect.IsMatched {
				summary.Matched++
			} else {
				summary.Unmatched++
			}
		}

		summary.Results = append(summary.Results, item)
	}

	return summary, nil
}

// NearbyDefects returns persisted defects within radiusMeters of the
// center, nearest first, enriched with road attributes when matched
func (s *GeorefService) NearbyDefects(ctx context.Context, in models.NearbySearchInput) ([]models.NearbyDefect, error) {
	if err := validateCoordinates(in.Latitude, in.Longitude); err != nil {
		return nil, err
	}
	if in.RadiusMeters <= 0 {
		return nil, errs.Validation("radius_meters", "must be positive, got %v", in.RadiusMeters)
	}
	if in.RadiusMeters > s.maxNearbyRadius {
		return nil, errs.Validation("radius_meters", "must not exceed %v, got %v", s.maxNearbyRadius, in.RadiusMeters)
	}

	center := spatial.Point{Lat: in.Latitude, Lon: in.Longitude}
	defects, err := s.defects.Nearby(ctx, center, in.RadiusMeters)
	if err != nil {
		return nil, errs.Persistence("nearby_defects", err)
	}

	return defects, nil
}

// SegmentDefects returns all defects mapped to a segment, newest first.
// An unknown segment yields an empty list.
func (s *GeorefService) SegmentDefects(ctx context.Context, segmentID int64) ([]models.GeoreferencedDefect, error) {
	defects, err := s.defects.BySegment(ctx, segmentID)
	if err != nil {
		return nil, errs.Persistence("segment_defects", err)
	}
	return defects, nil
}

// GetStatistics reports store-wide georeferencing counts and the match
// rate as a percentage rounded to 2 decimals
func (s *GeorefService) GetStatistics(ctx context.Context) (*models.GeorefStatistics, error) {
	stats, err := s.defects.Statistics(ctx)
	if err != nil {
		return nil, errs.Persistence("georef_statistics", err)
	}

	if stats.TotalDefects > 0 {
		rate := float64(stats.MatchedDefects) / float64(stats.TotalDefects) * 100
		stats.MatchRate = math.Round(rate*100) / 100
	}

	return stats, nil
}

func validateGeorefInput(in models.GeorefInput) error {
	if in.DetectionID == "" {
		return errs.Validation("detection_id", "must not be empty")
	}
	if err := validateCoordinates(in.Latitude, in.Longitude); err != nil {
		return err
	}
	if in.SeverityScore != nil && (*in.SeverityScore < 0 || *in.SeverityScore > 10) {
		return errs.Validation("severity_score", "must be in [0,10], got %v", *in.SeverityScore)
	}
	if in.Heading != nil && (*in.Heading < 0 || *in.Heading >= 360) {
		return errs.Validation("heading", "must be in [0,360), got %v", *in.Heading)
	}
	return nil
}

func validateCoordinates(lat, lon float64) error {
	if lat < -90 || lat > 90 {
		return errs.Validation("latitude", "must be in [-90,90], got %v", lat)
	}
	if lon < -180 || lon > 180 {
		return errs.Validation("longitude", "must be in [-180,180], got %v", lon)
	}
	return nil
}
