package repository

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roadcare/roadcare-backend-go/internal/models"
)

func samplePriority(segmentID int64, total float64, level string) *models.PriorityScore {
	return &models.PriorityScore{
		SegmentID:             segmentID,
		SeverityScore:         70,
		TrafficScore:          30,
		DensityScore:          100,
		AgeScore:              0,
		AccessibilityScore:    50,
		TotalPriorityScore:    total,
		PriorityLevel:         level,
		DefectCount:           3,
		AvgSeverity:           7,
		MaxSeverity:           8,
		RoadName:              "Rue de Rivoli",
		RoadType:              models.RoadTypeResidential,
		EstimatedCost:         2550,
		EstimatedDurationDays: 1,
	}
}

func TestPriorityUpsertInsertsThenUpdates(t *testing.T) {
	db := openTestDB(t)
	repo := NewPriorityRepository(db)
	ctx := context.Background()

	first := samplePriority(42, 54.5, models.PriorityMedium)
	require.NoError(t, repo.Upsert(ctx, first))
	require.NotEmpty(t, first.ID)

	// Recompute with different numbers: same row, same identity
	second := samplePriority(42, 88.0, models.PriorityCritical)
	second.DefectCount = 5
	require.NoError(t, repo.Upsert(ctx, second))

	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, first.CreatedAt, second.CreatedAt)

	var count int
	require.NoError(t, db.QueryRow("SELECT COUNT(*) FROM priority_scores WHERE segment_id = 42").Scan(&count))
	assert.Equal(t, 1, count)

	stored, err := repo.GetBySegmentID(ctx, 42)
	require.NoError(t, err)
	require.NotNil(t, stored)
	assert.Equal(t, 88.0, stored.TotalPriorityScore)
	assert.Equal(t, models.PriorityCritical, stored.PriorityLevel)
	assert.Equal(t, 5, stored.DefectCount)
}

func TestPriorityGetBySegmentIDMissing(t *testing.T) {
	db := openTestDB(t)
	repo := NewPriorityRepository(db)

	ps, err := repo.GetBySegmentID(context.Background(), 999)
	require.NoError(t, err)
	assert.Nil(t, ps)
}

func TestPriorityListFiltersAndOrders(t *testing.T) {
	db := openTestDB(t)
	repo := NewPriorityRepository(db)
	ctx := context.Background()

	require.NoError(t, repo.Upsert(ctx, samplePriority(1, 30, models.PriorityLow)))
	require.NoError(t, repo.Upsert(ctx, samplePriority(2, 90, models.PriorityCritical)))
	require.NoError(t, repo.Upsert(ctx, samplePriority(3, 60, models.PriorityMedium)))
	require.NoError(t, repo.Upsert(ctx, samplePriority(4, 75, models.PriorityHigh)))

	t.Run("orders by total descending", func(t *testing.T) {
		scores, err := repo.List(ctx, models.PriorityFilter{})
		require.NoError(t, err)
		require.Len(t, scores, 4)
		assert.Equal(t, []int64{2, 4, 3, 1}, []int64{
			scores[0].SegmentID, scores[1].SegmentID, scores[2].SegmentID, scores[3].SegmentID,
		})
	})

	t.Run("min priority filter", func(t *testing.T) {
		min := 70.0
		scores, err := repo.List(ctx, models.PriorityFilter{MinPriority: &min})
		require.NoError(t, err)
		require.Len(t, scores, 2)
		assert.Equal(t, int64(2), scores[0].SegmentID)
		assert.Equal(t, int64(4), scores[1].SegmentID)
	})

	t.Run("level filter", func(t *testing.T) {
		scores, err := repo.List(ctx, models.PriorityFilter{PriorityLevel: models.PriorityMedium})
		require.NoError(t, err)
		require.Len(t, scores, 1)
		assert.Equal(t, int64(3), scores[0].SegmentID)
	})

	t.Run("limit caps results", func(t *testing.T) {
		scores, err := repo.List(ctx, models.PriorityFilter{Limit: 2})
		require.NoError(t, err)
		assert.Len(t, scores, 2)
	})
}

func TestPriorityStatistics(t *testing.T) {
	db := openTestDB(t)
	repo := NewPriorityRepository(db)
	ctx := context.Background()

	t.Run("empty table", func(t *testing.T) {
		stats, err := repo.Statistics(ctx)
		require.NoError(t, err)
		assert.Zero(t, stats.TotalSegments)
		assert.Zero(t, stats.TotalEstimatedCost)
		assert.Zero(t, stats.AvgPriorityScore)
	})

	require.NoError(t, repo.Upsert(ctx, samplePriority(1, 40, models.PriorityLow)))
	require.NoError(t, repo.Upsert(ctx, samplePriority(2, 90, models.PriorityCritical)))
	require.NoError(t, repo.Upsert(ctx, samplePriority(3, 80, models.PriorityHigh)))

	stats, err := repo.Statistics(ctx)
	require.NoError(t, err)

	assert.Equal(t, int64(3), stats.TotalSegments)
	assert.Equal(t, int64(1), stats.ByPriorityLevel.Critical)
	assert.Equal(t, int64(1), stats.ByPriorityLevel.High)
	assert.Equal(t, int64(0), stats.ByPriorityLevel.Medium)
	assert.Equal(t, int64(1), stats.ByPriorityLevel.Low)
	assert.Equal(t, int64(9), stats.TotalDefects)
	assert.InDelta(t, 7650, stats.TotalEstimatedCost, 0.01)
	assert.InDelta(t, 70, stats.AvgPriorityScore, 0.01)
}
