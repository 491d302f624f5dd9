package services

import (
	"context"
	"errors"
	"fmt"

	"storefront-service/models"
	"storefront-service/repository"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// OrderService defines the interface for order reads and the admin
// status workflow.
type OrderService interface {
	GetOrder(ctx context.Context, userID uuid.UUID, role string, orderID uuid.UUID) (*models.Order, *ServiceError)
	History(ctx context.Context, userID uuid.UUID) ([]models.Order, *ServiceError)
	ListForAdmin(ctx context.Context, archived bool) ([]models.Order, *ServiceError)
	UpdateStatus(ctx context.Context, orderID uuid.UUID, status string) (*models.Order, *ServiceError)
}

type orderServiceImpl struct {
	orderRepo repository.OrderRepository
	logger    *zap.Logger
}

// NewOrderService creates a new OrderService.
func NewOrderService(orderRepo repository.OrderRepository, logger *zap.Logger) OrderService {
	return &orderServiceImpl{orderRepo: orderRepo, logger: logger}
}

// GetOrder returns one order. Customers may only see their own orders;
// admins may see any.
func (s *orderServiceImpl) GetOrder(ctx context.Context, userID uuid.UUID, role string, orderID uuid.UUID) (*models.Order, *ServiceError) {
	order, err := s.orderRepo.FindByID(ctx, orderID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, &ServiceError{StatusCode: 404, Message: "Order not found"}
		}
		s.logger.Error("Failed to load order", zap.String("order_id", orderID.String()), zap.Error(err))
		return nil, &ServiceError{StatusCode: 500, Message: "Failed to load order"}
	}

	if role != models.RoleAdmin && order.UserID != userID {
		return nil, &ServiceError{StatusCode: 403, Message: "You can only view your own orders"}
	}
	return order, nil
}

// History returns the customer's placed orders, newest first. The
// Pending order is the cart and is excluded.
func (s *orderServiceImpl) History(ctx context.Context, userID uuid.UUID) ([]models.Order, *ServiceError) {
	orders, err := s.orderRepo.FindByUserExcludingPending(ctx, userID)
	if err != nil {
		s.logger.Error("Failed to load order history", zap.String("user_id", userID.String()), zap.Error(err))
		return nil, &ServiceError{StatusCode: 500, Message: "Failed to load orders"}
	}
	return orders, nil
}

// ListForAdmin returns active orders, or archived ones when requested.
func (s *orderServiceImpl) ListForAdmin(ctx context.Context, archived bool) ([]models.Order, *ServiceError) {
	orders, err := s.orderRepo.FindForAdmin(ctx, archived)
	if err != nil {
		s.logger.Error("Failed to load orders", zap.Bool("archived", archived), zap.Error(err))
		return nil, &ServiceError{StatusCode: 500, Message: "Failed to load orders"}
	}
	return orders, nil
}

// UpdateStatus overwrites an order's status. Any value outside the
// fixed allowed set is rejected; within the set there is no transition
// graph, an admin may move an order from any state to any other.
func (s *orderServiceImpl) UpdateStatus(ctx context.Context, orderID uuid.UUID, status string) (*models.Order, *ServiceError) {
	if !models.IsValidStatus(status) {
		return nil, &ServiceError{StatusCode: 400, Message: fmt.Sprintf("Invalid status value: %s", status)}
	}

	order, err := s.orderRepo.FindByID(ctx, orderID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, &ServiceError{StatusCode: 404, Message: "Order not found"}
		}
		s.logger.Error("Failed to load order", zap.String("order_id", orderID.String()), zap.Error(err))
		return nil, &ServiceError{StatusCode: 500, Message: "Failed to update status"}
	}

	order.Status = status
	if err := s.orderRepo.Update(ctx, order); err != nil {
		s.logger.Error("Failed to update order status",
			zap.String("order_id", orderID.String()), zap.String("status", status), zap.Error(err))
		return nil, &ServiceError{StatusCode: 500, Message: "Failed to update status"}
	}

	s.logger.Info("Order status updated",
		zap.String("order_id", orderID.String()), zap.String("status", status))
	return order, nil
}
