package matching

import (
	"context"

	"github.com/roadcare/roadcare-backend-go/internal/errs"
	"github.com/roadcare/roadcare-backend-go/internal/models"
	"github.com/roadcare/roadcare-backend-go/internal/spatial"
)

// SegmentSource supplies candidate road segments around a point. The
// bounding-box prefilter may over-return; the matcher refines with exact
// geodesic distance.
type SegmentSource interface {
	CandidatesNear(ctx context.Context, p spatial.Point, radiusMeters float64) ([]models.RoadSegment, error)
}

// MatchResult is the outcome of snapping a point to the road network.
// Matched == false is a valid terminal outcome, not an error.
type MatchResult struct {
	Matched        bool
	Segment        *models.RoadSegment
	DistanceMeters float64
	SnappedPoint   spatial.Point
	Confidence     float64
}

// NoMatch is the empty result returned when no segment lies within the
// threshold
var NoMatch = MatchResult{}

// ConfidenceBand maps a maximum distance to a confidence value
type ConfidenceBand struct {
	MaxDistance float64
	Confidence  float64
}

// DefaultConfidenceBands preserves the historical breakpoints used across
// the pipeline. Review policy and downstream consumers depend on these
// exact values.
var DefaultConfidenceBands = []ConfidenceBand{
	{MaxDistance: 5, Confidence: 1.0},
	{MaxDistance: 15, Confidence: 0.9},
	{MaxDistance: 30, Confidence: 0.7},
	{MaxDistance: 50, Confidence: 0.5},
}

// fallbackConfidence applies beyond the last band
const fallbackConfidence = 0.3

// Matcher snaps GPS points to the nearest road segment. Pure function of
// its inputs and the segment store; safe for concurrent use.
type Matcher struct {
	segments SegmentSource
	bands    []ConfidenceBand
}

// NewMatcher creates a matcher over the given segment source
func NewMatcher(segments SegmentSource) *Matcher {
	return &Matcher{segments: segments, bands: DefaultConfidenceBands}
}

// Match finds the road segment nearest to p within thresholdMeters. Among
// candidates the minimum-distance segment wins; exact distance ties break
// toward the lowest segment id so matching is reproducible.
func (m *Matcher) Match(ctx context.Context, p spatial.Point, thresholdMeters float64) (MatchResult, error) {
	if thresholdMeters <= 0 {
		return NoMatch, errs.Validation("threshold_meters", "must be positive, got %v", thresholdMeters)
	}

	candidates, err := m.segments.CandidatesNear(ctx, p, thresholdMeters)
	if err != nil {
		return NoMatch, errs.Spatial("candidates_near", err)
	}

	var best *models.RoadSegment
	var bestDist float64
	var bestSnapped spatial.Point

	for i := range candidates {
		seg := &candidates[i]
		snapped, dist := spatial.ClosestPointOnPolyline(p, seg.Geometry)
		if dist > thresholdMeters {
			continue
		}

		if best == nil || dist < bestDist || (dist == bestDist && seg.ID < best.ID) {
			best = seg
			bestDist = dist
			bestSnapped = snapped
		}
	}

	if best == nil {
		return NoMatch, nil
	}

	return MatchResult{
		Matched:        true,
		Segment:        best,
		DistanceMeters: bestDist,
		SnappedPoint:   bestSnapped,
		Confidence:     m.confidence(bestDist),
	}, nil
}

// confidence is a monotonic step function of match distance
func (m *Matcher) confidence(distance float64) float64 {
	for _, band := range m.bands {
		if distance <= band.MaxDistance {
			return band.Confidence
		}
	}
	return fallbackConfidence
}
