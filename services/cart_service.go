package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"storefront-service/models"
	"storefront-service/repository"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// CartService defines the interface for cart business logic. The cart
// is the caller's single Pending order, created lazily on the first
// add and emptied of meaning once checkout moves it to Processing.
type CartService interface {
	GetCart(ctx context.Context, userID uuid.UUID) (*models.Order, *ServiceError)
	AddItem(ctx context.Context, userID, productID uuid.UUID, quantity int) (*models.Order, *ServiceError)
	UpdateItemQuantity(ctx context.Context, userID, itemID uuid.UUID, quantity int) (*models.Order, *ServiceError)
	RemoveItem(ctx context.Context, userID, itemID uuid.UUID) (*models.Order, *ServiceError)
	Checkout(ctx context.Context, userID uuid.UUID) (*models.Order, *ServiceError)
}

type cartServiceImpl struct {
	orderRepo   repository.OrderRepository
	productRepo repository.ProductRepository
	logger      *zap.Logger
}

// NewCartService creates a new CartService.
func NewCartService(orderRepo repository.OrderRepository, productRepo repository.ProductRepository, logger *zap.Logger) CartService {
	return &cartServiceImpl{
		orderRepo:   orderRepo,
		productRepo: productRepo,
		logger:      logger,
	}
}

// GetCart returns the user's Pending order with items and products, or
// nil when the user has no cart yet.
func (s *cartServiceImpl) GetCart(ctx context.Context, userID uuid.UUID) (*models.Order, *ServiceError) {
	order, err := s.orderRepo.FindPendingByUser(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		s.logger.Error("Failed to load cart", zap.String("user_id", userID.String()), zap.Error(err))
		return nil, &ServiceError{StatusCode: 500, Message: "Failed to load cart"}
	}
	return order, nil
}

// AddItem adds a product to the cart. If the product is already a line
// item its quantity is incremented; otherwise a new line is inserted
// with the unit price snapshotted from the product's current price.
func (s *cartServiceImpl) AddItem(ctx context.Context, userID, productID uuid.UUID, quantity int) (*models.Order, *ServiceError) {
	if quantity <= 0 {
		return nil, &ServiceError{StatusCode: 400, Message: "Quantity must be greater than zero"}
	}

	product, err := s.productRepo.FindByID(ctx, productID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, &ServiceError{StatusCode: 404, Message: "Product not found"}
		}
		s.logger.Error("Failed to load product", zap.String("product_id", productID.String()), zap.Error(err))
		return nil, &ServiceError{StatusCode: 500, Message: "Failed to add item"}
	}

	order, svcErr := s.findOrCreateCart(ctx, userID)
	if svcErr != nil {
		return nil, svcErr
	}

	var existing *models.OrderItem
	for i := range order.OrderItems {
		if order.OrderItems[i].ProductID == product.ID {
			existing = &order.OrderItems[i]
			break
		}
	}

	if existing != nil {
		existing.Quantity += quantity
		err = s.orderRepo.UpdateItem(ctx, existing)
	} else {
		err = s.orderRepo.CreateItem(ctx, &models.OrderItem{
			OrderID:   order.ID,
			ProductID: product.ID,
			Quantity:  quantity,
			UnitPrice: product.Price,
		})
	}
	if err != nil {
		s.logger.Error("Failed to save cart item", zap.String("order_id", order.ID.String()), zap.Error(err))
		return nil, &ServiceError{StatusCode: 500, Message: "Failed to add item"}
	}

	if svcErr := s.recalculateTotal(ctx, order.ID); svcErr != nil {
		return nil, svcErr
	}
	return s.reloadCart(ctx, userID)
}

// UpdateItemQuantity overwrites the quantity of a line item in the
// caller's own cart.
func (s *cartServiceImpl) UpdateItemQuantity(ctx context.Context, userID, itemID uuid.UUID, quantity int) (*models.Order, *ServiceError) {
	if quantity <= 0 {
		return nil, &ServiceError{StatusCode: 400, Message: "Quantity must be at least 1"}
	}

	item, svcErr := s.findOwnedItem(ctx, userID, itemID)
	if svcErr != nil {
		return nil, svcErr
	}

	item.Quantity = quantity
	if err := s.orderRepo.UpdateItem(ctx, item); err != nil {
		s.logger.Error("Failed to update cart item", zap.String("item_id", itemID.String()), zap.Error(err))
		return nil, &ServiceError{StatusCode: 500, Message: "Failed to update cart"}
	}

	if svcErr := s.recalculateTotal(ctx, item.OrderID); svcErr != nil {
		return nil, svcErr
	}
	return s.reloadCart(ctx, userID)
}

// RemoveItem deletes a line item from the caller's own cart.
func (s *cartServiceImpl) RemoveItem(ctx context.Context, userID, itemID uuid.UUID) (*models.Order, *ServiceError) {
	item, svcErr := s.findOwnedItem(ctx, userID, itemID)
	if svcErr != nil {
		return nil, svcErr
	}

	if err := s.orderRepo.DeleteItem(ctx, item.ID); err != nil {
		s.logger.Error("Failed to remove cart item", zap.String("item_id", itemID.String()), zap.Error(err))
		return nil, &ServiceError{StatusCode: 500, Message: "Failed to update cart"}
	}

	if svcErr := s.recalculateTotal(ctx, item.OrderID); svcErr != nil {
		return nil, svcErr
	}
	return s.reloadCart(ctx, userID)
}

// Checkout places the order. Stock is validated for every line first,
// so a short line fails with a message naming the product; the
// placement itself, stock decrements, total and the move to Processing
// with a refreshed timestamp, commits or rolls back as one unit.
func (s *cartServiceImpl) Checkout(ctx context.Context, userID uuid.UUID) (*models.Order, *ServiceError) {
	order, err := s.orderRepo.FindPendingByUser(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, &ServiceError{StatusCode: 400, Message: "Your cart is empty"}
		}
		s.logger.Error("Failed to load cart for checkout", zap.String("user_id", userID.String()), zap.Error(err))
		return nil, &ServiceError{StatusCode: 500, Message: "Checkout failed"}
	}
	if len(order.OrderItems) == 0 {
		return nil, &ServiceError{StatusCode: 400, Message: "Your cart is empty"}
	}

	// All-or-nothing stock check before any write.
	for _, item := range order.OrderItems {
		if item.Product == nil {
			return nil, &ServiceError{StatusCode: 404, Message: "Product not found"}
		}
		if item.Product.StockQuantity < item.Quantity {
			return nil, &ServiceError{
				StatusCode: 400,
				Message:    fmt.Sprintf("Not enough stock for %s. Available: %d", item.Product.Title, item.Product.StockQuantity),
			}
		}
	}

	order.Status = models.StatusProcessing
	order.CreatedAt = time.Now().UTC()
	if err := s.orderRepo.Place(ctx, order); err != nil {
		if errors.Is(err, repository.ErrInsufficientStock) {
			// a line was bought out between the check and the commit
			return nil, &ServiceError{StatusCode: 400, Message: "Not enough stock to place the order"}
		}
		s.logger.Error("Failed to place order", zap.String("order_id", order.ID.String()), zap.Error(err))
		return nil, &ServiceError{StatusCode: 500, Message: "Checkout failed"}
	}

	s.logger.Info("Order placed",
		zap.String("order_id", order.ID.String()),
		zap.String("user_id", userID.String()),
		zap.String("total", order.TotalAmount.StringFixed(2)))
	return order, nil
}

// findOrCreateCart returns the user's Pending order, creating it when
// the user has no cart yet. At most one Pending order exists per user.
func (s *cartServiceImpl) findOrCreateCart(ctx context.Context, userID uuid.UUID) (*models.Order, *ServiceError) {
	order, err := s.orderRepo.FindPendingByUser(ctx, userID)
	if err == nil {
		return order, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		s.logger.Error("Failed to load cart", zap.String("user_id", userID.String()), zap.Error(err))
		return nil, &ServiceError{StatusCode: 500, Message: "Failed to load cart"}
	}

	order = &models.Order{
		UserID:    userID,
		Status:    models.StatusPending,
		CreatedAt: time.Now().UTC(),
	}
	if err := s.orderRepo.Create(ctx, order); err != nil {
		s.logger.Error("Failed to create cart", zap.String("user_id", userID.String()), zap.Error(err))
		return nil, &ServiceError{StatusCode: 500, Message: "Failed to create cart"}
	}
	return order, nil
}

// findOwnedItem loads an item and verifies it belongs to the caller's
// order. Acting on another user's item is forbidden, not merely
// not-found, so the two cases stay distinguishable.
func (s *cartServiceImpl) findOwnedItem(ctx context.Context, userID, itemID uuid.UUID) (*models.OrderItem, *ServiceError) {
	item, err := s.orderRepo.FindItem(ctx, itemID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, &ServiceError{StatusCode: 404, Message: "Cart item not found"}
		}
		s.logger.Error("Failed to load cart item", zap.String("item_id", itemID.String()), zap.Error(err))
		return nil, &ServiceError{StatusCode: 500, Message: "Failed to load cart"}
	}
	if item.Order == nil {
		return nil, &ServiceError{StatusCode: 404, Message: "Cart item not found"}
	}
	if item.Order.UserID != userID {
		return nil, &ServiceError{StatusCode: 403, Message: "You can only modify your own cart"}
	}
	return item, nil
}

// recalculateTotal derives the order total from its items and writes it
// back. Invoked after every mutation that can change the sum.
func (s *cartServiceImpl) recalculateTotal(ctx context.Context, orderID uuid.UUID) *ServiceError {
	total, err := s.orderRepo.ItemsTotal(ctx, orderID)
	if err != nil {
		s.logger.Error("Failed to total order", zap.String("order_id", orderID.String()), zap.Error(err))
		return &ServiceError{StatusCode: 500, Message: "Failed to update cart"}
	}
	if err := s.orderRepo.UpdateTotal(ctx, orderID, total); err != nil {
		s.logger.Error("Failed to store order total", zap.String("order_id", orderID.String()), zap.Error(err))
		return &ServiceError{StatusCode: 500, Message: "Failed to update cart"}
	}
	return nil
}

func (s *cartServiceImpl) reloadCart(ctx context.Context, userID uuid.UUID) (*models.Order, *ServiceError) {
	order, err := s.orderRepo.FindPendingByUser(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		s.logger.Error("Failed to reload cart", zap.String("user_id", userID.String()), zap.Error(err))
		return nil, &ServiceError{StatusCode: 500, Message: "Failed to load cart"}
	}
	return order, nil
}
