package services

import (
	"context"
	"fmt"

	"storefront-service/models"
	"storefront-service/repository"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// DashboardStats is the admin dashboard rollup. RevenueLabels and
// RevenueData are parallel sequences, one entry per calendar month of
// completed-order revenue, in chronological order.
type DashboardStats struct {
	TotalProducts    int64                     `json:"total_products"`
	TotalOrders      int64                     `json:"total_orders"`
	TotalRevenue     decimal.Decimal           `json:"total_revenue"`
	LowStockCount    int64                     `json:"low_stock_count"`
	RecentOrders     []models.Order            `json:"recent_orders"`
	LowStockProducts []models.Product          `json:"low_stock_products"`
	RevenueLabels    []string                  `json:"revenue_labels"`
	RevenueData      []decimal.Decimal         `json:"revenue_data"`
	MonthlyRevenue   []repository.MonthlyRevenue `json:"monthly_revenue"`
}

// DashboardService defines the interface for the admin dashboard
// aggregation.
type DashboardService interface {
	Stats(ctx context.Context) (*DashboardStats, *ServiceError)
}

type dashboardServiceImpl struct {
	productRepo       repository.ProductRepository
	orderRepo         repository.OrderRepository
	lowStockThreshold int
	logger            *zap.Logger
}

// NewDashboardService creates a new DashboardService.
func NewDashboardService(
	productRepo repository.ProductRepository,
	orderRepo repository.OrderRepository,
	lowStockThreshold int,
	logger *zap.Logger,
) DashboardService {
	return &dashboardServiceImpl{
		productRepo:       productRepo,
		orderRepo:         orderRepo,
		lowStockThreshold: lowStockThreshold,
		logger:            logger,
	}
}

const recentOrderLimit = 5

// Stats computes the dashboard rollup at request time.
func (s *dashboardServiceImpl) Stats(ctx context.Context) (*DashboardStats, *ServiceError) {
	totalProducts, err := s.productRepo.Count(ctx)
	if err != nil {
		return nil, s.fail("count products", err)
	}

	totalOrders, err := s.orderRepo.Count(ctx)
	if err != nil {
		return nil, s.fail("count orders", err)
	}

	totalRevenue, err := s.orderRepo.CompletedRevenue(ctx)
	if err != nil {
		return nil, s.fail("sum revenue", err)
	}

	lowStockCount, err := s.productRepo.LowStockCount(ctx, s.lowStockThreshold)
	if err != nil {
		return nil, s.fail("count low stock", err)
	}

	lowStockProducts, err := s.productRepo.LowStock(ctx, s.lowStockThreshold)
	if err != nil {
		return nil, s.fail("list low stock", err)
	}

	recentOrders, err := s.orderRepo.Recent(ctx, recentOrderLimit)
	if err != nil {
		return nil, s.fail("list recent orders", err)
	}

	monthly, err := s.orderRepo.MonthlyCompletedRevenue(ctx)
	if err != nil {
		return nil, s.fail("monthly revenue", err)
	}

	labels := make([]string, 0, len(monthly))
	data := make([]decimal.Decimal, 0, len(monthly))
	for _, bucket := range monthly {
		labels = append(labels, fmt.Sprintf("%04d-%02d", bucket.Year, bucket.Month))
		data = append(data, bucket.Total)
	}

	return &DashboardStats{
		TotalProducts:    totalProducts,
		TotalOrders:      totalOrders,
		TotalRevenue:     totalRevenue,
		LowStockCount:    lowStockCount,
		RecentOrders:     recentOrders,
		LowStockProducts: lowStockProducts,
		RevenueLabels:    labels,
		RevenueData:      data,
		MonthlyRevenue:   monthly,
	}, nil
}

func (s *dashboardServiceImpl) fail(op string, err error) *ServiceError {
	s.logger.Error("Dashboard aggregation failed", zap.String("op", op), zap.Error(err))
	return &ServiceError{StatusCode: 500, Message: "Failed to load dashboard"}
}
