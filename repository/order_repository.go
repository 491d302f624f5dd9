package repository

import (
	"context"
	"errors"

	"storefront-service/models"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// ErrInsufficientStock reports a placement whose stock guard failed at
// commit time.
var ErrInsufficientStock = errors.New("insufficient stock")

// MonthlyRevenue is one (year, month) bucket of completed-order revenue.
type MonthlyRevenue struct {
	Year  int             `json:"year"`
	Month int             `json:"month"`
	Total decimal.Decimal `json:"total"`
}

// OrderRepository defines the interface for order and order-item data access
type OrderRepository interface {
	FindPendingByUser(ctx context.Context, userID uuid.UUID) (*models.Order, error)
	FindByID(ctx context.Context, id uuid.UUID) (*models.Order, error)
	FindByUserExcludingPending(ctx context.Context, userID uuid.UUID) ([]models.Order, error)
	FindForAdmin(ctx context.Context, archived bool) ([]models.Order, error)
	Create(ctx context.Context, order *models.Order) error
	Update(ctx context.Context, order *models.Order) error
	UpdateTotal(ctx context.Context, orderID uuid.UUID, total decimal.Decimal) error
	Place(ctx context.Context, order *models.Order) error

	FindItem(ctx context.Context, itemID uuid.UUID) (*models.OrderItem, error)
	CreateItem(ctx context.Context, item *models.OrderItem) error
	UpdateItem(ctx context.Context, item *models.OrderItem) error
	DeleteItem(ctx context.Context, itemID uuid.UUID) error
	ItemsTotal(ctx context.Context, orderID uuid.UUID) (decimal.Decimal, error)

	Count(ctx context.Context) (int64, error)
	CompletedRevenue(ctx context.Context) (decimal.Decimal, error)
	Recent(ctx context.Context, limit int) ([]models.Order, error)
	MonthlyCompletedRevenue(ctx context.Context) ([]MonthlyRevenue, error)
}

// GormOrderRepository implements OrderRepository using GORM
type GormOrderRepository struct {
	db *gorm.DB
}

func NewGormOrderRepository(db *gorm.DB) OrderRepository {
	return &GormOrderRepository{db: db}
}

// FindPendingByUser loads the user's cart, the single Pending order,
// with its items and their products.
func (r *GormOrderRepository) FindPendingByUser(ctx context.Context, userID uuid.UUID) (*models.Order, error) {
	var order models.Order
	if err := r.db.WithContext(ctx).
		Preload("OrderItems.Product").
		Where("user_id = ? AND status = ?", userID, models.StatusPending).
		First(&order).Error; err != nil {
		return nil, err
	}
	return &order, nil
}

func (r *GormOrderRepository) FindByID(ctx context.Context, id uuid.UUID) (*models.Order, error) {
	var order models.Order
	if err := r.db.WithContext(ctx).
		Preload("User").
		Preload("OrderItems.Product").
		First(&order, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &order, nil
}

// FindByUserExcludingPending returns the user's order history. The
// Pending order is the cart and does not belong in the history.
func (r *GormOrderRepository) FindByUserExcludingPending(ctx context.Context, userID uuid.UUID) ([]models.Order, error) {
	var orders []models.Order
	if err := r.db.WithContext(ctx).
		Preload("OrderItems.Product").
		Where("user_id = ? AND status <> ?", userID, models.StatusPending).
		Order("created_at DESC").
		Find(&orders).Error; err != nil {
		return nil, err
	}
	return orders, nil
}

// FindForAdmin returns either archived orders or everything that is
// not archived, newest first, with the owning user attached.
func (r *GormOrderRepository) FindForAdmin(ctx context.Context, archived bool) ([]models.Order, error) {
	query := r.db.WithContext(ctx).Preload("User")
	if archived {
		query = query.Where("status = ?", models.StatusArchived)
	} else {
		query = query.Where("status <> ?", models.StatusArchived)
	}

	var orders []models.Order
	if err := query.Order("created_at DESC").Find(&orders).Error; err != nil {
		return nil, err
	}
	return orders, nil
}

func (r *GormOrderRepository) Create(ctx context.Context, order *models.Order) error {
	return r.db.WithContext(ctx).Create(order).Error
}

func (r *GormOrderRepository) Update(ctx context.Context, order *models.Order) error {
	return r.db.WithContext(ctx).Save(order).Error
}

// Place finalizes an order in one transaction: every line's stock is
// decremented behind a non-negative guard, the total is derived from
// the items, and the staged status and timestamp are written. Any
// failure rolls the whole placement back. The derived total is written
// back to order.
func (r *GormOrderRepository) Place(ctx context.Context, order *models.Order) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, item := range order.OrderItems {
			res := tx.Model(&models.Product{}).
				Where("id = ? AND stock_quantity >= ?", item.ProductID, item.Quantity).
				UpdateColumn("stock_quantity", gorm.Expr("stock_quantity - ?", item.Quantity))
			if res.Error != nil {
				return res.Error
			}
			if res.RowsAffected == 0 {
				return ErrInsufficientStock
			}
		}

		var result struct {
			Total decimal.Decimal
		}
		if err := tx.Model(&models.OrderItem{}).
			Select("COALESCE(SUM(quantity * unit_price), 0) AS total").
			Where("order_id = ?", order.ID).
			Scan(&result).Error; err != nil {
			return err
		}
		order.TotalAmount = result.Total

		return tx.Model(&models.Order{}).
			Where("id = ?", order.ID).
			Updates(map[string]interface{}{
				"status":       order.Status,
				"total_amount": order.TotalAmount,
				"created_at":   order.CreatedAt,
			}).Error
	})
}

// UpdateTotal writes a freshly derived total back to the order row.
func (r *GormOrderRepository) UpdateTotal(ctx context.Context, orderID uuid.UUID, total decimal.Decimal) error {
	return r.db.WithContext(ctx).
		Model(&models.Order{}).
		Where("id = ?", orderID).
		Update("total_amount", total).Error
}

// FindItem loads an order item with its parent order, which callers
// need for the ownership check.
func (r *GormOrderRepository) FindItem(ctx context.Context, itemID uuid.UUID) (*models.OrderItem, error) {
	var item models.OrderItem
	if err := r.db.WithContext(ctx).
		Preload("Order").
		First(&item, "id = ?", itemID).Error; err != nil {
		return nil, err
	}
	return &item, nil
}

func (r *GormOrderRepository) CreateItem(ctx context.Context, item *models.OrderItem) error {
	return r.db.WithContext(ctx).Create(item).Error
}

func (r *GormOrderRepository) UpdateItem(ctx context.Context, item *models.OrderItem) error {
	return r.db.WithContext(ctx).Save(item).Error
}

func (r *GormOrderRepository) DeleteItem(ctx context.Context, itemID uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&models.OrderItem{}, "id = ?", itemID).Error
}

// ItemsTotal sums quantity * unit_price over the order's items in the
// database, defaulting to zero for an empty order.
func (r *GormOrderRepository) ItemsTotal(ctx context.Context, orderID uuid.UUID) (decimal.Decimal, error) {
	var result struct {
		Total decimal.Decimal
	}
	err := r.db.WithContext(ctx).
		Model(&models.OrderItem{}).
		Select("COALESCE(SUM(quantity * unit_price), 0) AS total").
		Where("order_id = ?", orderID).
		Scan(&result).Error
	return result.Total, err
}

func (r *GormOrderRepository) Count(ctx context.Context) (int64, error) {
	var total int64
	err := r.db.WithContext(ctx).Model(&models.Order{}).Count(&total).Error
	return total, err
}

// CompletedRevenue sums TotalAmount over Completed orders, zero when
// there are none.
func (r *GormOrderRepository) CompletedRevenue(ctx context.Context) (decimal.Decimal, error) {
	var result struct {
		Total decimal.Decimal
	}
	err := r.db.WithContext(ctx).
		Model(&models.Order{}).
		Select("COALESCE(SUM(total_amount), 0) AS total").
		Where("status = ?", models.StatusCompleted).
		Scan(&result).Error
	return result.Total, err
}

func (r *GormOrderRepository) Recent(ctx context.Context, limit int) ([]models.Order, error) {
	var orders []models.Order
	if err := r.db.WithContext(ctx).
		Preload("User").
		Order("created_at DESC").
		Limit(limit).
		Find(&orders).Error; err != nil {
		return nil, err
	}
	return orders, nil
}

// MonthlyCompletedRevenue groups completed-order revenue by calendar
// month in the database and returns the buckets chronologically.
func (r *GormOrderRepository) MonthlyCompletedRevenue(ctx context.Context) ([]MonthlyRevenue, error) {
	var rows []MonthlyRevenue
	err := r.db.WithContext(ctx).
		Model(&models.Order{}).
		Select("EXTRACT(YEAR FROM created_at)::int AS year, EXTRACT(MONTH FROM created_at)::int AS month, SUM(total_amount) AS total").
		Where("status = ?", models.StatusCompleted).
		Group("EXTRACT(YEAR FROM created_at), EXTRACT(MONTH FROM created_at)").
		Order("year, month").
		Scan(&rows).Error
	return rows, err
}
