package service

import (
	"time"

	"go-wms/internal/repository"
)

// lowStockThreshold flags inventory rows running dry on the dashboard.
const lowStockThreshold = 10

type DashboardService interface {
	GetDashboardStats() (*repository.DashboardStats, error)
	GetStockMovement(startDate, endDate time.Time) ([]repository.StockMovementData, error)
}

type dashboardService struct {
	invRepo repository.InventoryRepository
}

func NewDashboardService(invRepo repository.InventoryRepository) DashboardService {
	return &dashboardService{invRepo: invRepo}
}

func (s *dashboardService) GetDashboardStats() (*repository.DashboardStats, error) {
	return s.invRepo.GetDashboardStats(lowStockThreshold)
}

func (s *dashboardService) GetStockMovement(startDate, endDate time.Time) ([]repository.StockMovementData, error) {
	return s.invRepo.GetStockMovement(startDate, endDate)
}
