package catalog

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"venuehouse/internal/domain"
)

var ErrNotFound = errors.New("resource not found")

// Service is the read-mostly resource catalog staff browse when matching
// requests to units.
type Service struct {
	resources ResourceRepository
	holds     HoldReader
}

func NewService(resources ResourceRepository, holds HoldReader) *Service {
	return &Service{resources: resources, holds: holds}
}

func (s *Service) CreateResource(ctx context.Context, req CreateResourceRequest) (*domain.Resource, error) {
	kind := domain.ResourceKind(req.Kind)
	if kind != domain.ResourceDwelling && kind != domain.ResourceEventSpace {
		return nil, fmt.Errorf("unknown resource kind %q", req.Kind)
	}

	res := &domain.Resource{
		Name:        req.Name,
		Kind:        kind,
		MonthlyRate: req.MonthlyRate,
		Active:      true,
	}
	if err := s.resources.Create(ctx, res); err != nil {
		return nil, err
	}
	return res, nil
}

func (s *Service) GetResource(ctx context.Context, id int64) (*domain.Resource, error) {
	res, err := s.resources.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return res, nil
}

func (s *Service) ListResources(ctx context.Context) ([]domain.Resource, error) {
	return s.resources.List(ctx)
}

// ResourceHolds returns the hold calendar for one resource, the same
// rows the external availability sync mirrors.
func (s *Service) ResourceHolds(ctx context.Context, id int64) ([]domain.ResourceHold, error) {
	if _, err := s.GetResource(ctx, id); err != nil {
		return nil, err
	}
	return s.holds.ListByResource(ctx, id)
}
