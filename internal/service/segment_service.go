package service

import (
	"context"
	"strconv"

	"github.com/roadcare/roadcare-backend-go/internal/errs"
	"github.com/roadcare/roadcare-backend-go/internal/models"
	"github.com/roadcare/roadcare-backend-go/internal/repository"
)

// SegmentService exposes read access to the road network store
type SegmentService struct {
	repo *repository.RoadSegmentRepository
}

// NewSegmentService creates a new segment service
func NewSegmentService(repo *repository.RoadSegmentRepository) *SegmentService {
	return &SegmentService{repo: repo}
}

// GetSegments retrieves road segments with filtering and pagination
func (s *SegmentService) GetSegments(ctx context.Context, filter models.SegmentFilter) ([]models.RoadSegment, int64, error) {
	segments, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, 0, errs.Spatial("list_segments", err)
	}
	return segments, total, nil
}

// GetSegmentByID retrieves a single road segment
func (s *SegmentService) GetSegmentByID(ctx context.Context, id int64) (*models.RoadSegment, error) {
	seg, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, errs.Spatial("get_segment", err)
	}
	if seg == nil {
		return nil, errs.NotFound("road segment", strconv.FormatInt(id, 10))
	}
	return seg, nil
}
