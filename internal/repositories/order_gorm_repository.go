package repositories

import (
	"context"
	"errors"
	"fmt"
	"time"

	"marmomart/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GORMOrderRepository is a GORM implementation of OrderRepository.
type GORMOrderRepository struct {
	db  *gorm.DB
	now func() time.Time
}

// NewGORMOrderRepository creates a new instance of GORMOrderRepository.
func NewGORMOrderRepository(db *gorm.DB) *GORMOrderRepository {
	return &GORMOrderRepository{
		db:  db,
		now: time.Now,
	}
}

// CreateWithItems writes the order row, its number and its items in one transaction.
func (r *GORMOrderRepository) CreateWithItems(ctx context.Context, order *models.Order) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		number, err := nextOrderNumber(tx, orderDay(r.now()))
		if err != nil {
			return err
		}

		order.ID = uuid.New().String()
		order.OrderNumber = number
		for i := range order.Items {
			order.Items[i].ID = uuid.New().String()
			order.Items[i].OrderID = order.ID
		}

		if err := tx.Omit(clause.Associations).Create(order).Error; err != nil {
			return fmt.Errorf("failed to create order: %w", err)
		}
		if len(order.Items) > 0 {
			if err := tx.Create(&order.Items).Error; err != nil {
				return fmt.Errorf("failed to create order items: %w", err)
			}
		}
		return nil
	})
}

// nextOrderNumber bumps the per-day counter. The UPDATE takes a row lock, so
// concurrent checkouts get distinct numbers.
func nextOrderNumber(tx *gorm.DB, day string) (string, error) {
	err := tx.Clauses(clause.OnConflict{DoNothing: true}).
		Create(&models.OrderCounter{Day: day, Value: 0}).Error
	if err != nil {
		return "", fmt.Errorf("failed to init order counter: %w", err)
	}
	err = tx.Model(&models.OrderCounter{}).Where("day = ?", day).
		Update("value", gorm.Expr("value + ?", 1)).Error
	if err != nil {
		return "", fmt.Errorf("failed to bump order counter: %w", err)
	}
	var counter models.OrderCounter
	if err := tx.First(&counter, "day = ?", day).Error; err != nil {
		return "", fmt.Errorf("failed to read order counter: %w", err)
	}
	return formatOrderNumber(day, counter.Value), nil
}

// GetByID retrieves an order and its items.
func (r *GORMOrderRepository) GetByID(ctx context.Context, id string) (*models.Order, error) {
	var order models.Order
	if err := r.db.WithContext(ctx).Preload("Items").First(&order, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("order with ID %s %w", id, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get order by ID %s: %w", id, err)
	}
	return &order, nil
}

// List returns matching orders, newest first.
func (r *GORMOrderRepository) List(ctx context.Context, filter OrderFilter) ([]models.Order, error) {
	query := r.db.WithContext(ctx).Preload("Items")
	if filter.UserID != "" {
		query = query.Where("user_id = ?", filter.UserID)
	}
	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}

	var orders []models.Order
	if err := query.Order("created_at DESC").Find(&orders).Error; err != nil {
		return nil, fmt.Errorf("failed to list orders: %w", err)
	}
	return orders, nil
}

// UpdateStatus sets the fulfilment status and returns the updated order.
func (r *GORMOrderRepository) UpdateStatus(ctx context.Context, id string, status models.OrderStatus) (*models.Order, error) {
	return r.updateColumn(ctx, id, "status", status)
}

// UpdatePaymentStatus sets the payment status and returns the updated order.
func (r *GORMOrderRepository) UpdatePaymentStatus(ctx context.Context, id string, status models.PaymentStatus) (*models.Order, error) {
	return r.updateColumn(ctx, id, "payment_status", status)
}

func (r *GORMOrderRepository) updateColumn(ctx context.Context, id, column string, value interface{}) (*models.Order, error) {
	res := r.db.WithContext(ctx).Model(&models.Order{}).Where("id = ?", id).Update(column, value)
	if res.Error != nil {
		return nil, fmt.Errorf("failed to update %s for order %s: %w", column, id, res.Error)
	}
	if res.RowsAffected == 0 {
		return nil, fmt.Errorf("order with ID %s %w for status update", id, ErrNotFound)
	}
	return r.GetByID(ctx, id)
}

// Count counts orders, optionally restricted to one status.
func (r *GORMOrderRepository) Count(ctx context.Context, status models.OrderStatus) (int64, error) {
	query := r.db.WithContext(ctx).Model(&models.Order{})
	if status != "" {
		query = query.Where("status = ?", status)
	}
	var n int64
	if err := query.Count(&n).Error; err != nil {
		return 0, fmt.Errorf("failed to count orders: %w", err)
	}
	return n, nil
}
