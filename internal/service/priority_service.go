package service

import (
	"context"
	"log"
	"math"
	"strconv"
	"time"

	"github.com/roadcare/roadcare-backend-go/internal/config"
	"github.com/roadcare/roadcare-backend-go/internal/errs"
	"github.com/roadcare/roadcare-backend-go/internal/models"
	"github.com/roadcare/roadcare-backend-go/internal/repository"
)

// trafficImportance maps road types to traffic scores on a 0-100 scale
var trafficImportance = map[string]float64{
	models.RoadTypeMotorway:     100,
	models.RoadTypeTrunk:        90,
	models.RoadTypePrimary:      80,
	models.RoadTypeSecondary:    60,
	models.RoadTypeTertiary:     40,
	models.RoadTypeResidential:  30,
	models.RoadTypeUnclassified: 20,
}

const defaultTrafficScore = 50.0

// costMultipliers reflect repair complexity per road type
var costMultipliers = map[string]float64{
	models.RoadTypeMotorway:     2.5,
	models.RoadTypeTrunk:        2.0,
	models.RoadTypePrimary:      1.8,
	models.RoadTypeSecondary:    1.5,
	models.RoadTypeTertiary:     1.2,
	models.RoadTypeResidential:  1.0,
	models.RoadTypeUnclassified: 0.8,
}

// durationMultipliers reflect work-time overhead per road type
var durationMultipliers = map[string]float64{
	models.RoadTypeMotorway:     2.0,
	models.RoadTypeTrunk:        1.8,
	models.RoadTypePrimary:      1.5,
	models.RoadTypeSecondary:    1.2,
	models.RoadTypeTertiary:     1.0,
	models.RoadTypeResidential:  0.8,
	models.RoadTypeUnclassified: 0.8,
}

const defaultMultiplier = 1.0

// No accessibility model exists yet; every segment gets this placeholder.
const accessibilityPlaceholder = 50.0

// defaultSeverity stands in for defects recorded without a severity score
const defaultSeverity = 5.0

// PriorityService computes and manages maintenance priorities for road
// segments
type PriorityService struct {
	repo     *repository.PriorityRepository
	defects  *repository.DefectRepository
	segments *repository.RoadSegmentRepository
	scoring  config.ScoringConfig
}

// NewPriorityService creates a new priority service. The scoring config
// must already be validated (weights sum to 1.0, ordered thresholds).
func NewPriorityService(repo *repository.PriorityRepository, defects *repository.DefectRepository, segments *repository.RoadSegmentRepository, scoring config.ScoringConfig) *PriorityService {
	return &PriorityService{repo: repo, defects: defects, segments: segments, scoring: scoring}
}

// CalculatePriorityScore combines component scores (each 0-100) into a
// weighted total, clamped to [0,100] and rounded to 2 decimals
func (s *PriorityService) CalculatePriorityScore(severity, traffic, density, age, accessibility float64) float64 {
	score := s.scoring.WeightSeverity*severity +
		s.scoring.WeightTraffic*traffic +
		s.scoring.WeightDensity*density +
		s.scoring.WeightAge*age +
		s.scoring.WeightAccessibility*accessibility

	score = math.Max(0, math.Min(100, score))
	return math.Round(score*100) / 100
}

// GetPriorityLevel classifies a total score. Boundary values belong to the
// higher level.
func (s *PriorityService) GetPriorityLevel(score float64) string {
	switch {
	case score >= s.scoring.CriticalThreshold:
		return models.PriorityCritical
	case score >= s.scoring.HighThreshold:
		return models.PriorityHigh
	case score >= s.scoring.MediumThreshold:
		return models.PriorityMedium
	default:
		return models.PriorityLow
	}
}

// EstimateCost estimates repair cost in currency units
func (s *PriorityService) EstimateCost(defectCount int, avgSeverity float64, roadType string) float64 {
	multiplier, ok := costMultipliers[roadType]
	if !ok {
		multiplier = defaultMultiplier
	}

	severityMultiplier := 1.0 + avgSeverity/10.0
	total := s.scoring.BaseCostPerDefect * float64(defectCount) * severityMultiplier * multiplier
	return math.Round(total*100) / 100
}

// EstimateDuration estimates repair duration in whole days, at least 1
func (s *PriorityService) EstimateDuration(defectCount int, roadType string) int {
	multiplier, ok := durationMultipliers[roadType]
	if !ok {
		multiplier = defaultMultiplier
	}

	totalHours := s.scoring.BaseHoursPerDefect * float64(defectCount) * multiplier
	days := int(totalHours / s.scoring.WorkdayHours)
	if days < 1 {
		days = 1
	}
	return days
}

// ComputeSegmentPriority derives a segment's priority from its defects and
// upserts the stored record, so recomputation is idempotent and safe to
// repeat as new defects arrive.
func (s *PriorityService) ComputeSegmentPriority(ctx context.Context, segmentID int64, defects []models.PriorityDefectInput) (*models.PriorityScore, error) {
	if len(defects) == 0 {
		return nil, errs.Validation("defects", "at least one defect is required for segment %d", segmentID)
	}
	for i := range defects {
		if defects[i].SeverityScore < 0 || defects[i].SeverityScore > 10 {
			return nil, errs.Validation("severity_score", "must be in [0,10], got %v", defects[i].SeverityScore)
		}
		if defects[i].AgeDays < 0 {
			return nil, errs.Validation("age_days", "must be non-negative, got %d", defects[i].AgeDays)
		}
		if defects[i].SegmentLengthMeters < 0 {
			return nil, errs.Validation("segment_length_meters", "must be positive, got %v", defects[i].SegmentLengthMeters)
		}
	}

	defectCount := len(defects)

	var severitySum, maxSeverity, ageSum float64
	for _, d := range defects {
		severitySum += d.SeverityScore
		if d.SeverityScore > maxSeverity {
			maxSeverity = d.SeverityScore
		}
		ageSum += float64(d.AgeDays)
	}
	avgSeverity := severitySum / float64(defectCount)
	avgAgeDays := ageSum / float64(defectCount)

	// Road attributes and segment length are uniform per call; the first
	// defect carries them.
	roadType := defects[0].RoadType
	if roadType == "" {
		roadType = models.RoadTypeResidential
	}
	roadName := defects[0].RoadName
	segmentLengthMeters := defects[0].SegmentLengthMeters
	if segmentLengthMeters == 0 {
		segmentLengthMeters = 100.0
	}

	// Component scores, each on a 0-100 scale
	severityScore := (avgSeverity / 10.0) * 100

	trafficScore, ok := trafficImportance[roadType]
	if !ok {
		trafficScore = defaultTrafficScore
	}

	segmentLengthKm := segmentLengthMeters / 1000.0
	density := float64(defectCount) / math.Max(segmentLengthKm, 0.1)
	densityScore := math.Min(100, density*(100/s.scoring.DensityScalePerKm))

	ageScore := math.Min(100, (avgAgeDays/s.scoring.AgeScaleDays)*100)

	accessibilityScore := accessibilityPlaceholder

	totalPriority := s.CalculatePriorityScore(severityScore, trafficScore, densityScore, ageScore, accessibilityScore)
	priorityLevel := s.GetPriorityLevel(totalPriority)

	ps := &models.PriorityScore{
		SegmentID:             segmentID,
		SeverityScore:         severityScore,
		TrafficScore:          trafficScore,
		DensityScore:          densityScore,
		AgeScore:              ageScore,
		AccessibilityScore:    accessibilityScore,
		TotalPriorityScore:    totalPriority,
		PriorityLevel:         priorityLevel,
		DefectCount:           defectCount,
		AvgSeverity:           avgSeverity,
		MaxSeverity:           maxSeverity,
		RoadName:              roadName,
		RoadType:              roadType,
		EstimatedCost:         s.EstimateCost(defectCount, avgSeverity, roadType),
		EstimatedDurationDays: s.EstimateDuration(defectCount, roadType),
	}

	if err := s.repo.Upsert(ctx, ps); err != nil {
		return nil, errs.Persistence("upsert_priority", err)
	}

	log.Printf("Segment %d priority: %.2f (%s), %d defects, estimated cost %.2f",
		segmentID, ps.TotalPriorityScore, ps.PriorityLevel, ps.DefectCount, ps.EstimatedCost)

	return ps, nil
}

// RecomputeAll rebuilds the priority score of every segment carrying at
// least one matched defect, from the stored defects. Per-segment failures
// are counted and skipped, never aborting the sweep. Run after a scoring
// policy change.
func (s *PriorityService) RecomputeAll(ctx context.Context) (*models.RecomputeSummary, error) {
	segmentIDs, err := s.defects.MatchedSegmentIDs(ctx)
	if err != nil {
		return nil, errs.Persistence("matched_segments", err)
	}

	summary := &models.RecomputeSummary{}
	now := time.Now().UTC()

	for _, segmentID := range segmentIDs {
		inputs, err := s.gatherSegmentDefects(ctx, segmentID, now)
		if err != nil {
			log.Printf("Skipping segment %d during recompute: %v", segmentID, err)
			summary.Failed++
			continue
		}
		if len(inputs) == 0 {
			continue
		}

		if _, err := s.ComputeSegmentPriority(ctx, segmentID, inputs); err != nil {
			log.Printf("Failed to recompute segment %d: %v", segmentID, err)
			summary.Failed++
			continue
		}
		summary.SegmentsProcessed++
	}

	log.Printf("Priority recompute finished: %d segments, %d failed",
		summary.SegmentsProcessed, summary.Failed)

	return summary, nil
}

// gatherSegmentDefects builds priority inputs for one segment from its
// stored defects and road attributes. Defect age is measured from the
// georeferencing timestamp.
func (s *PriorityService) gatherSegmentDefects(ctx context.Context, segmentID int64, now time.Time) ([]models.PriorityDefectInput, error) {
	defects, err := s.defects.BySegment(ctx, segmentID)
	if err != nil {
		return nil, err
	}

	seg, err := s.segments.GetByID(ctx, segmentID)
	if err != nil {
		return nil, err
	}

	var roadName, roadType string
	var lengthMeters float64
	if seg != nil {
		roadName = seg.Name
		roadType = seg.RoadType
		lengthMeters = seg.LengthMeters
	}

	inputs := make([]models.PriorityDefectInput, 0, len(defects))
	for _, d := range defects {
		severity := defaultSeverity
		if d.SeverityScore != nil {
			severity = *d.SeverityScore
		}

		ageDays := int(now.Sub(d.CreatedAt).Hours() / 24)
		if ageDays < 0 {
			ageDays = 0
		}

		inputs = append(inputs, models.PriorityDefectInput{
			SeverityScore:       severity,
			AgeDays:             ageDays,
			RoadName:            roadName,
			RoadType:            roadType,
			SegmentLengthMeters: lengthMeters,
		})
	}

	return inputs, nil
}

// GetPriorityList returns stored priority scores, highest first, with
// optional minimum-score and level filters
func (s *PriorityService) GetPriorityList(ctx context.Context, filter models.PriorityFilter) ([]models.PriorityScore, error) {
	if filter.PriorityLevel != "" {
		switch filter.PriorityLevel {
		case models.PriorityLow, models.PriorityMedium, models.PriorityHigh, models.PriorityCritical:
		default:
			return nil, errs.Validation("priority_level", "must be one of LOW, MEDIUM, HIGH, CRITICAL, got %q", filter.PriorityLevel)
		}
	}
	if filter.MinPriority != nil && (*filter.MinPriority < 0 || *filter.MinPriority > 100) {
		return nil, errs.Validation("min_priority", "must be in [0,100], got %v", *filter.MinPriority)
	}

	scores, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, errs.Persistence("list_priorities", err)
	}
	return scores, nil
}

// GetSegmentPriority returns the stored priority for one segment
func (s *PriorityService) GetSegmentPriority(ctx context.Context, segmentID int64) (*models.PriorityScore, error) {
	ps, err := s.repo.GetBySegmentID(ctx, segmentID)
	if err != nil {
		return nil, errs.Persistence("get_priority", err)
	}
	if ps == nil {
		return nil, errs.NotFound("priority score for segment", strconv.FormatInt(segmentID, 10))
	}
	return ps, nil
}

// GetStatistics aggregates all priority records in one consistent snapshot
func (s *PriorityService) GetStatistics(ctx context.Context) (*models.PriorityStatistics, error) {
	stats, err := s.repo.Statistics(ctx)
	if err != nil {
		return nil, errs.Persistence("priority_statistics", err)
	}
	stats.AvgPriorityScore = math.Round(stats.AvgPriorityScore*100) / 100
	stats.TotalEstimatedCost = math.Round(stats.TotalEstimatedCost*100) / 100
	return stats, nil
}
