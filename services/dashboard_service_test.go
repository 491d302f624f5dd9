package services_test

import (
	"context"
	"testing"
	"time"

	"storefront-service/models"
	"storefront-service/services"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

func newDashboardFixture(threshold int) (*mockOrderRepo, *mockProductRepo, services.DashboardService) {
	products := newMockProductRepo()
	orders := newMockOrderRepo(products)
	svc := services.NewDashboardService(products, orders, threshold, zap.NewNop())
	return orders, products, svc
}

func TestDashboard_EmptyStoreDefaultsToZero(t *testing.T) {
	_, _, svc := newDashboardFixture(5)

	stats, svcErr := svc.Stats(context.Background())
	assert.Nil(t, svcErr)
	assert.Equal(t, int64(0), stats.TotalProducts)
	assert.Equal(t, int64(0), stats.TotalOrders)
	assert.True(t, stats.TotalRevenue.Equal(decimal.Zero), "no completed orders means zero revenue")
	assert.Empty(t, stats.RevenueLabels)
	assert.Empty(t, stats.RevenueData)
}

func TestDashboard_MonthlyRevenueBuckets(t *testing.T) {
	orders, _, svc := newDashboardFixture(5)
	userID := uuid.New()

	march := time.Date(2026, time.March, 10, 0, 0, 0, 0, time.UTC)
	seedOrder(orders, userID, models.StatusCompleted, "30.00", march)
	seedOrder(orders, userID, models.StatusCompleted, "45.00", march.Add(48*time.Hour))
	seedOrder(orders, userID, models.StatusCompleted, "12.00", time.Date(2026, time.January, 2, 0, 0, 0, 0, time.UTC))
	// non-completed orders never count toward revenue
	seedOrder(orders, userID, models.StatusProcessing, "99.00", march)

	stats, svcErr := svc.Stats(context.Background())
	assert.Nil(t, svcErr)

	// same-month orders collapse into one bucket, chronological order
	assert.Equal(t, []string{"2026-01", "2026-03"}, stats.RevenueLabels)
	assert.Len(t, stats.RevenueData, 2)
	assert.True(t, stats.RevenueData[0].Equal(decimal.RequireFromString("12.00")))
	assert.True(t, stats.RevenueData[1].Equal(decimal.RequireFromString("75.00")),
		"expected 30.00 + 45.00 = 75.00, got %s", stats.RevenueData[1])

	assert.True(t, stats.TotalRevenue.Equal(decimal.RequireFromString("87.00")))
	assert.Equal(t, int64(4), stats.TotalOrders)
}

func TestDashboard_LowStock(t *testing.T) {
	_, products, svc := newDashboardFixture(5)
	products.put(&models.Product{Title: "Running Low", Price: decimal.New(10, 0), StockQuantity: 2})
	products.put(&models.Product{Title: "At Threshold", Price: decimal.New(10, 0), StockQuantity: 5})
	products.put(&models.Product{Title: "Well Stocked", Price: decimal.New(10, 0), StockQuantity: 40})

	stats, svcErr := svc.Stats(context.Background())
	assert.Nil(t, svcErr)
	assert.Equal(t, int64(1), stats.LowStockCount, "low stock is strictly below the threshold")
	assert.Len(t, stats.LowStockProducts, 1)
	assert.Equal(t, "Running Low", stats.LowStockProducts[0].Title)
	assert.Equal(t, int64(3), stats.TotalProducts)
}

func TestDashboard_RecentOrdersCappedAtFive(t *testing.T) {
	orders, _, svc := newDashboardFixture(5)
	userID := uuid.New()
	base := time.Date(2026, time.May, 1, 0, 0, 0, 0, time.UTC)
	for i := 0; i < 7; i++ {
		seedOrder(orders, userID, models.StatusProcessing, "10.00", base.Add(time.Duration(i)*time.Hour))
	}

	stats, svcErr := svc.Stats(context.Background())
	assert.Nil(t, svcErr)
	assert.Len(t, stats.RecentOrders, 5)
	// newest first
	assert.Equal(t, base.Add(6*time.Hour), stats.RecentOrders[0].CreatedAt)
}
