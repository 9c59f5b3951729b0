package repository

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roadcare/roadcare-backend-go/internal/models"
	"github.com/roadcare/roadcare-backend-go/internal/spatial"
)

func TestSegmentCreateDerivesGeometryFields(t *testing.T) {
	db := openTestDB(t)
	repo := NewRoadSegmentRepository(db)

	seg := &models.RoadSegment{
		OSMID:    "osm-1",
		Name:     "Quai de la Tournelle",
		RoadType: models.RoadTypePrimary,
		Geometry: spatial.Polyline{
			{Lat: 48.8500, Lon: 2.3500},
			{Lat: 48.8520, Lon: 2.3550},
		},
	}
	require.NoError(t, repo.Create(context.Background(), seg))
	require.NotZero(t, seg.ID)

	assert.Greater(t, seg.LengthMeters, 0.0)
	assert.Equal(t, 48.8500, seg.MinLat)
	assert.Equal(t, 48.8520, seg.MaxLat)
	assert.Equal(t, 2.3500, seg.MinLon)
	assert.Equal(t, 2.3550, seg.MaxLon)

	stored, err := repo.GetByID(context.Background(), seg.ID)
	require.NoError(t, err)
	require.NotNil(t, stored)
	assert.Equal(t, seg.Geometry, stored.Geometry)
	assert.Equal(t, "Quai de la Tournelle", stored.Name)
}

func TestSegmentCreateRejectsShortGeometry(t *testing.T) {
	db := openTestDB(t)
	repo := NewRoadSegmentRepository(db)

	seg := &models.RoadSegment{
		OSMID:    "osm-bad",
		Geometry: spatial.Polyline{{Lat: 48.85, Lon: 2.35}},
	}
	assert.Error(t, repo.Create(context.Background(), seg))
}

func TestSegmentGetByIDMissing(t *testing.T) {
	db := openTestDB(t)
	repo := NewRoadSegmentRepository(db)

	seg, err := repo.GetByID(context.Background(), 12345)
	require.NoError(t, err)
	assert.Nil(t, seg)
}

func TestSegmentListFiltersByRoadType(t *testing.T) {
	db := openTestDB(t)
	repo := NewRoadSegmentRepository(db)
	ctx := context.Background()

	for i, rt := range []string{models.RoadTypePrimary, models.RoadTypeResidential, models.RoadTypePrimary} {
		seg := &models.RoadSegment{
			OSMID:    "osm-" + string(rune('a'+i)),
			RoadType: rt,
			Geometry: spatial.Polyline{
				{Lat: 48.85, Lon: 2.35},
				{Lat: 48.86, Lon: 2.36},
			},
		}
		require.NoError(t, repo.Create(ctx, seg))
	}

	segments, total, err := repo.List(ctx, models.SegmentFilter{RoadType: models.RoadTypePrimary})
	require.NoError(t, err)
	assert.Equal(t, int64(2), total)
	assert.Len(t, segments, 2)

	all, total, err := repo.List(ctx, models.SegmentFilter{})
	require.NoError(t, err)
	assert.Equal(t, int64(3), total)
	assert.Len(t, all, 3)
}

func TestCandidatesNearUsesBoundingBox(t *testing.T) {
	db := openTestDB(t)
	repo := NewRoadSegmentRepository(db)
	ctx := context.Background()

	near := &models.RoadSegment{
		OSMID: "osm-near",
		Geometry: spatial.Polyline{
			{Lat: 48.8566, Lon: 2.3500},
			{Lat: 48.8566, Lon: 2.3540},
		},
	}
	far := &models.RoadSegment{
		OSMID: "osm-far",
		Geometry: spatial.Polyline{
			{Lat: 48.9000, Lon: 2.4000},
			{Lat: 48.9010, Lon: 2.4010},
		},
	}
	require.NoError(t, repo.Create(ctx, near))
	require.NoError(t, repo.Create(ctx, far))

	candidates, err := repo.CandidatesNear(ctx, spatial.Point{Lat: 48.8566, Lon: 2.3522}, 100)
	require.NoError(t, err)
	require.Len(t, candidates, 1)
	assert.Equal(t, near.ID, candidates[0].ID)
}

func TestCandidatesNearKeepsBoundarySegment(t *testing.T) {
	db := openTestDB(t)
	repo := NewRoadSegmentRepository(db)
	ctx := context.Background()

	center := spatial.Point{Lat: 48.8566, Lon: 2.3522}

	// North-south segment whose nearest point sits just inside the radius
	lat, lon := spatial.DestinationPoint(center.Lat, center.Lon, 90, 49.97)
	boundary := &models.RoadSegment{
		OSMID: "osm-boundary",
		Geometry: spatial.Polyline{
			{Lat: lat - 0.001, Lon: lon},
			{Lat: lat + 0.001, Lon: lon},
		},
	}
	require.NoError(t, repo.Create(ctx, boundary))

	candidates, err := repo.CandidatesNear(ctx, center, 50)
	require.NoError(t, err)
	require.Len(t, candidates, 1)
	assert.Equal(t, boundary.ID, candidates[0].ID)
}
