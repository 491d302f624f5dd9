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

func newOrderFixture() (*mockOrderRepo, services.OrderService) {
	orders := newMockOrderRepo(newMockProductRepo())
	return orders, services.NewOrderService(orders, zap.NewNop())
}

func seedOrder(orders *mockOrderRepo, userID uuid.UUID, status string, total string, createdAt time.Time) *models.Order {
	order := &models.Order{
		ID:          uuid.New(),
		UserID:      userID,
		Status:      status,
		TotalAmount: decimal.RequireFromString(total),
		CreatedAt:   createdAt,
	}
	_ = orders.Create(context.Background(), order)
	return order
}

func TestOrder_UpdateStatus_RejectsUnknownValue(t *testing.T) {
	orders, svc := newOrderFixture()
	order := seedOrder(orders, uuid.New(), models.StatusProcessing, "30.00", time.Now())

	_, svcErr := svc.UpdateStatus(context.Background(), order.ID, "Shipped")
	assert.NotNil(t, svcErr)
	assert.Equal(t, 400, svcErr.StatusCode)
	assert.Equal(t, models.StatusProcessing, orders.orders[order.ID].Status, "rejected status must not mutate the order")
}

func TestOrder_UpdateStatus_AnyAllowedTransition(t *testing.T) {
	orders, svc := newOrderFixture()
	ctx := context.Background()

	// no transition graph: any allowed value is reachable from any state
	order := seedOrder(orders, uuid.New(), models.StatusCompleted, "30.00", time.Now())
	for _, status := range []string{
		models.StatusArchived,
		models.StatusPending,
		models.StatusCancelled,
		models.StatusProcessing,
		models.StatusCompleted,
	} {
		updated, svcErr := svc.UpdateStatus(ctx, order.ID, status)
		assert.Nil(t, svcErr)
		assert.Equal(t, status, updated.Status)
	}
}

func TestOrder_UpdateStatus_NotFound(t *testing.T) {
	_, svc := newOrderFixture()

	_, svcErr := svc.UpdateStatus(context.Background(), uuid.New(), models.StatusCompleted)
	assert.NotNil(t, svcErr)
	assert.Equal(t, 404, svcErr.StatusCode)
}

func TestOrder_GetOrder_OwnerAndAdminAllowed(t *testing.T) {
	orders, svc := newOrderFixture()
	owner := uuid.New()
	stranger := uuid.New()
	order := seedOrder(orders, owner, models.StatusProcessing, "30.00", time.Now())
	ctx := context.Background()

	got, svcErr := svc.GetOrder(ctx, owner, models.RoleCustomer, order.ID)
	assert.Nil(t, svcErr)
	assert.Equal(t, order.ID, got.ID)

	_, svcErr = svc.GetOrder(ctx, stranger, models.RoleCustomer, order.ID)
	assert.NotNil(t, svcErr)
	assert.Equal(t, 403, svcErr.StatusCode)

	got, svcErr = svc.GetOrder(ctx, stranger, models.RoleAdmin, order.ID)
	assert.Nil(t, svcErr)
	assert.Equal(t, order.ID, got.ID)
}

func TestOrder_History_ExcludesPendingCart(t *testing.T) {
	orders, svc := newOrderFixture()
	userID := uuid.New()
	seedOrder(orders, userID, models.StatusPending, "10.00", time.Now())
	placed := seedOrder(orders, userID, models.StatusProcessing, "30.00", time.Now().Add(-time.Hour))

	history, svcErr := svc.History(context.Background(), userID)
	assert.Nil(t, svcErr)
	assert.Len(t, history, 1)
	assert.Equal(t, placed.ID, history[0].ID)
}

func TestOrder_ListForAdmin_SplitsArchived(t *testing.T) {
	orders, svc := newOrderFixture()
	active := seedOrder(orders, uuid.New(), models.StatusProcessing, "30.00", time.Now())
	archived := seedOrder(orders, uuid.New(), models.StatusArchived, "45.00", time.Now())
	ctx := context.Background()

	list, svcErr := svc.ListForAdmin(ctx, false)
	assert.Nil(t, svcErr)
	assert.Len(t, list, 1)
	assert.Equal(t, active.ID, list[0].ID)

	list, svcErr = svc.ListForAdmin(ctx, true)
	assert.Nil(t, svcErr)
	assert.Len(t, list, 1)
	assert.Equal(t, archived.ID, list[0].ID)
}
