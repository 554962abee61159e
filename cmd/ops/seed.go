package main

import (
	"context"

	"venuehouse/internal/domain"
	"venuehouse/internal/logger"
	"venuehouse/internal/repository"
)

func seedResources(ctx context.Context, repo *repository.ResourceRepository) error {
	existing, err := repo.List(ctx)
	if err != nil {
		return err
	}
	if len(existing) > 0 {
		logger.Info("resources already present, skipping seed", "count", len(existing))
		return nil
	}

	demo := []domain.Resource{
		{Name: "Unit 2B, Maple Court", Kind: domain.ResourceDwelling, MonthlyRate: 1500, Active: true},
		{Name: "Unit 4A, Maple Court", Kind: domain.ResourceDwelling, MonthlyRate: 1750, Active: true},
		{Name: "Garden Hall", Kind: domain.ResourceEventSpace, MonthlyRate: 3200, Active: true},
		{Name: "Rooftop Terrace", Kind: domain.ResourceEventSpace, MonthlyRate: 2400, Active: true},
	}
	for i := range demo {
		if err := repo.Create(ctx, &demo[i]); err != nil {
			return err
		}
	}
	logger.Info("seeded demo resources", "count", len(demo))
	return nil
}
