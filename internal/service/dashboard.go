package service

import (
	"context"

	apperrors "github.com/techplan/admin-server-go/internal/errors"
	"github.com/techplan/admin-server-go/internal/model"
	"github.com/techplan/admin-server-go/internal/repository"
)

const recentProductsLimit = 5

type DashboardService struct {
	productRepo repository.ProductRepository
	adminRepo   repository.AdminRepository
}

func NewDashboardService(productRepo repository.ProductRepository, adminRepo repository.AdminRepository) *DashboardService {
	return &DashboardService{productRepo: productRepo, adminRepo: adminRepo}
}

func (s *DashboardService) Stats(ctx context.Context) (*model.DashboardStats, error) {
	stats := &model.DashboardStats{}
	var err error

	if stats.TotalProducts, err = s.productRepo.Count(ctx); err != nil {
		return nil, apperrors.Database(err)
	}
	if stats.TotalAdmins, err = s.adminRepo.Count(ctx); err != nil {
		return nil, apperrors.Database(err)
	}
	if stats.TotalImages, err = s.productRepo.CountImages(ctx); err != nil {
		return nil, apperrors.Database(err)
	}
	if stats.RecentProducts, err = s.productRepo.ListRecent(ctx, recentProductsLimit); err != nil {
		return nil, apperrors.Database(err)
	}
	return stats, nil
}
