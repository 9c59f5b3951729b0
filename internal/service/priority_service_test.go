package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roadcare/roadcare-backend-go/internal/errs"
	"github.com/roadcare/roadcare-backend-go/internal/models"
	"github.com/roadcare/roadcare-backend-go/internal/repository"
	"github.com/roadcare/roadcare-backend-go/internal/spatial"
)

func newPriorityFixture(t *testing.T) (*PriorityService, *repository.PriorityRepository) {
	t.Helper()
	db := openTestDB(t)
	repo := repository.NewPriorityRepository(db)
	svc := NewPriorityService(repo, repository.NewDefectRepository(db), repository.NewRoadSegmentRepository(db), testScoring(t))
	return svc, repo
}

func residentialDefects(severities []float64, lengthMeters float64) []models.PriorityDefectInput {
	defects := make([]models.PriorityDefectInput, 0, len(severities))
	for _, sev := range severities {
		defects = append(defects, models.PriorityDefectInput{
			SeverityScore:       sev,
			RoadName:            "Rue de Rivoli",
			RoadType:            models.RoadTypeResidential,
			SegmentLengthMeters: lengthMeters,
		})
	}
	return defects
}

func TestComputeSegmentPriority(t *testing.T) {
	svc, _ := newPriorityFixture(t)

	// 3 defects with severities 8, 6, 7 on a 200m residential segment:
	// severity 70, traffic 30, density saturates at 100, age 0, access 50
	ps, err := svc.ComputeSegmentPriority(context.Background(), 7, residentialDefects([]float64{8, 6, 7}, 200))
	require.NoError(t, err)

	assert.Equal(t, int64(7), ps.SegmentID)
	assert.InDelta(t, 70.0, ps.SeverityScore, 1e-9)
	assert.Equal(t, 30.0, ps.TrafficScore)
	assert.Equal(t, 100.0, ps.DensityScore)
	assert.Equal(t, 0.0, ps.AgeScore)
	assert.Equal(t, 50.0, ps.AccessibilityScore)
	assert.Equal(t, 54.5, ps.TotalPriorityScore)
	assert.Equal(t, models.PriorityMedium, ps.PriorityLevel)

	assert.Equal(t, 3, ps.DefectCount)
	assert.InDelta(t, 7.0, ps.AvgSeverity, 1e-9)
	assert.Equal(t, 8.0, ps.MaxSeverity)
	assert.Equal(t, "Rue de Rivoli", ps.RoadName)
	assert.Equal(t, models.RoadTypeResidential, ps.RoadType)

	// 500 * 3 * (1 + 7/10) * 1.0
	assert.Equal(t, 2550.0, ps.EstimatedCost)
	// 4h * 3 * 0.8 / 8h-day, floored, min 1
	assert.Equal(t, 1, ps.EstimatedDurationDays)
}

func TestComputeSegmentPriorityDefaults(t *testing.T) {
	svc, _ := newPriorityFixture(t)

	// Unknown road type and zero length fall back to residential / 100m
	ps, err := svc.ComputeSegmentPriority(context.Background(), 8, []models.PriorityDefectInput{
		{SeverityScore: 5},
	})
	require.NoError(t, err)
	assert.Equal(t, models.RoadTypeResidential, ps.RoadType)
	assert.Equal(t, 30.0, ps.TrafficScore)
	// 1 defect / 0.1km floor = 10/km, saturated
	assert.Equal(t, 100.0, ps.DensityScore)
}

func TestComputeSegmentPriorityAgeScore(t *testing.T) {
	svc, _ := newPriorityFixture(t)
	ctx := context.Background()

	halfYear := []models.PriorityDefectInput{
		{SeverityScore: 5, AgeDays: 182, RoadType: models.RoadTypePrimary, SegmentLengthMeters: 2000},
		{SeverityScore: 5, AgeDays: 183, RoadType: models.RoadTypePrimary, SegmentLengthMeters: 2000},
	}
	ps, err := svc.ComputeSegmentPriority(ctx, 9, halfYear)
	require.NoError(t, err)
	assert.InDelta(t, 50.0, ps.AgeScore, 0.2)

	ancient := []models.PriorityDefectInput{
		{SeverityScore: 5, AgeDays: 4000, RoadType: models.RoadTypePrimary, SegmentLengthMeters: 2000},
	}
	ps, err = svc.ComputeSegmentPriority(ctx, 10, ancient)
	require.NoError(t, err)
	assert.Equal(t, 100.0, ps.AgeScore)
}

func TestComputeSegmentPriorityIdempotent(t *testing.T) {
	svc, repo := newPriorityFixture(t)
	ctx := context.Background()

	defects := residentialDefects([]float64{8, 6, 7}, 200)
	first, err := svc.ComputeSegmentPriority(ctx, 11, defects)
	require.NoError(t, err)
	second, err := svc.ComputeSegmentPriority(ctx, 11, defects)
	require.NoError(t, err)

	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, first.TotalPriorityScore, second.TotalPriorityScore)
	assert.Equal(t, first.PriorityLevel, second.PriorityLevel)
	assert.Equal(t, first.CreatedAt, second.CreatedAt)

	scores, err := repo.List(ctx, models.PriorityFilter{})
	require.NoError(t, err)
	assert.Len(t, scores, 1)
}

func TestComputeSegmentPriorityValidation(t *testing.T) {
	svc, _ := newPriorityFixture(t)
	ctx := context.Background()

	cases := []struct {
		name    string
		defects []models.PriorityDefectInput
	}{
		{"empty defect list", nil},
		{"severity above range", []models.PriorityDefectInput{{SeverityScore: 10.5}}},
		{"severity below range", []models.PriorityDefectInput{{SeverityScore: -1}}},
		{"negative age", []models.PriorityDefectInput{{SeverityScore: 5, AgeDays: -1}}},
		{"negative length", []models.PriorityDefectInput{{SeverityScore: 5, SegmentLengthMeters: -10}}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.ComputeSegmentPriority(ctx, 1, tc.defects)
			assert.True(t, errs.IsValidation(err), "expected validation error, got %v", err)
		})
	}
}

func TestCalculatePriorityScore(t *testing.T) {
	svc, _ := newPriorityFixture(t)

	assert.Equal(t, 54.5, svc.CalculatePriorityScore(70, 30, 100, 0, 50))
	assert.Equal(t, 0.0, svc.CalculatePriorityScore(0, 0, 0, 0, 0))
	assert.Equal(t, 100.0, svc.CalculatePriorityScore(100, 100, 100, 100, 100))

	t.Run("monotone in each component", func(t *testing.T) {
		base := svc.CalculatePriorityScore(50, 50, 50, 50, 50)
		assert.Greater(t, svc.CalculatePriorityScore(60, 50, 50, 50, 50), base)
		assert.Greater(t, svc.CalculatePriorityScore(50, 60, 50, 50, 50), base)
		assert.Greater(t, svc.CalculatePriorityScore(50, 50, 60, 50, 50), base)
		assert.Greater(t, svc.CalculatePriorityScore(50, 50, 50, 60, 50), base)
		assert.Greater(t, svc.CalculatePriorityScore(50, 50, 50, 50, 60), base)
	})
}

func TestGetPriorityLevelBoundaries(t *testing.T) {
	svc, _ := newPriorityFixture(t)

	cases := []struct {
		score float64
		level string
	}{
		{100, models.PriorityCritical},
		{85, models.PriorityCritical},
		{84.99, models.PriorityHigh},
		{70, models.PriorityHigh},
		{69.99, models.PriorityMedium},
		{50, models.PriorityMedium},
		{49.99, models.PriorityLow},
		{0, models.PriorityLow},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.level, svc.GetPriorityLevel(tc.score), "score %v", tc.score)
	}
}

func TestEstimates(t *testing.T) {
	svc, _ := newPriorityFixture(t)

	t.Run("cost scales with road type and severity", func(t *testing.T) {
		assert.Equal(t, 2550.0, svc.EstimateCost(3, 7, models.RoadTypeResidential))
		assert.Equal(t, 6375.0, svc.EstimateCost(3, 7, models.RoadTypeMotorway))
		assert.Equal(t, 750.0, svc.EstimateCost(1, 5, "unknown-type"))
	})

	t.Run("duration floors at one day", func(t *testing.T) {
		assert.Equal(t, 1, svc.EstimateDuration(1, models.RoadTypeResidential))
		// 4h * 10 * 2.0 / 8 = 10 days
		assert.Equal(t, 10, svc.EstimateDuration(10, models.RoadTypeMotorway))
	})
}

func TestRecomputeAll(t *testing.T) {
	db := openTestDB(t)
	priorityRepo := repository.NewPriorityRepository(db)
	defectRepo := repository.NewDefectRepository(db)
	segmentRepo := repository.NewRoadSegmentRepository(db)
	svc := NewPriorityService(priorityRepo, defectRepo, segmentRepo, testScoring(t))
	ctx := context.Background()

	newSegment := func(name string) *models.RoadSegment {
		seg := &models.RoadSegment{
			OSMID:    "osm-" + name,
			Name:     name,
			RoadType: models.RoadTypeResidential,
			Geometry: spatial.Polyline{
				{Lat: 48.8566, Lon: 2.3500},
				{Lat: 48.8566, Lon: 2.3540},
			},
		}
		require.NoError(t, segmentRepo.Create(ctx, seg))
		return seg
	}
	newDefect := func(detectionID string, segmentID int64, severity *float64) {
		lat, lon := 48.8566, 2.3520
		require.NoError(t, defectRepo.Create(ctx, &models.GeoreferencedDefect{
			DetectionID:   detectionID,
			SegmentID:     &segmentID,
			Latitude:      lat,
			Longitude:     lon,
			MatchedLat:    &lat,
			MatchedLon:    &lon,
			SeverityScore: severity,
			IsMatched:     true,
		}))
	}

	busy := newSegment("Rue Chargee")
	quiet := newSegment("Rue Calme")

	newDefect("det-1", busy.ID, floatPtr(8))
	newDefect("det-2", busy.ID, floatPtr(6))
	newDefect("det-3", quiet.ID, nil)

	// Unmatched defects carry no segment and must not enter the sweep
	require.NoError(t, defectRepo.Create(ctx, &models.GeoreferencedDefect{
		DetectionID: "det-lost",
		Latitude:    48.9,
		Longitude:   2.4,
		NeedsReview: true,
	}))

	summary, err := svc.RecomputeAll(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, summary.SegmentsProcessed)
	assert.Equal(t, 0, summary.Failed)

	busyScore, err := priorityRepo.GetBySegmentID(ctx, busy.ID)
	require.NoError(t, err)
	require.NotNil(t, busyScore)
	assert.Equal(t, 2, busyScore.DefectCount)
	assert.InDelta(t, 7.0, busyScore.AvgSeverity, 1e-9)
	assert.Equal(t, "Rue Chargee", busyScore.RoadName)
	assert.Greater(t, busyScore.SeverityScore, 0.0)

	// Missing severity falls back to mid-scale
	quietScore, err := priorityRepo.GetBySegmentID(ctx, quiet.ID)
	require.NoError(t, err)
	require.NotNil(t, quietScore)
	assert.Equal(t, 1, quietScore.DefectCount)
	assert.InDelta(t, 5.0, quietScore.AvgSeverity, 1e-9)

	t.Run("repeat run upserts in place", func(t *testing.T) {
		again, err := svc.RecomputeAll(ctx)
		require.NoError(t, err)
		assert.Equal(t, 2, again.SegmentsProcessed)

		scores, err := priorityRepo.List(ctx, models.PriorityFilter{})
		require.NoError(t, err)
		assert.Len(t, scores, 2)
	})
}

func TestRecomputeAllEmptyStore(t *testing.T) {
	svc, _ := newPriorityFixture(t)

	summary, err := svc.RecomputeAll(context.Background())
	require.NoError(t, err)
	assert.Zero(t, summary.SegmentsProcessed)
	assert.Zero(t, summary.Failed)
}

func TestGetPriorityListValidation(t *testing.T) {
	svc, _ := newPriorityFixture(t)
	ctx := context.Background()

	_, err := svc.GetPriorityList(ctx, models.PriorityFilter{PriorityLevel: "URGENT"})
	assert.True(t, errs.IsValidation(err))

	bad := 150.0
	_, err = svc.GetPriorityList(ctx, models.PriorityFilter{MinPriority: &bad})
	assert.True(t, errs.IsValidation(err))

	scores, err := svc.GetPriorityList(ctx, models.PriorityFilter{PriorityLevel: models.PriorityHigh})
	require.NoError(t, err)
	assert.Empty(t, scores)
}

func TestGetSegmentPriorityNotFound(t *testing.T) {
	svc, _ := newPriorityFixture(t)

	_, err := svc.GetSegmentPriority(context.Background(), 404)
	assert.True(t, errs.IsNotFound(err))
}

func TestGetStatisticsRounds(t *testing.T) {
	svc, _ := newPriorityFixture(t)
	ctx := context.Background()

	_, err := svc.ComputeSegmentPriority(ctx, 1, residentialDefects([]float64{8, 6, 7}, 200))
	require.NoError(t, err)
	_, err = svc.ComputeSegmentPriority(ctx, 2, residentialDefects([]float64{3}, 1000))
	require.NoError(t, err)

	stats, err := svc.GetStatistics(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(2), stats.TotalSegments)
	assert.Equal(t, int64(4), stats.TotalDefects)
	assert.Greater(t, stats.TotalEstimatedCost, 0.0)
	assert.Greater(t, stats.AvgPriorityScore, 0.0)
}
