package repositories

import (
	"context"
	"fmt"
	"time"

	"marmomart/internal/models"
)

// OrderFilter narrows order listings. Zero values match everything.
type OrderFilter struct {
	UserID string
	Status models.OrderStatus
}

// OrderRepository defines the interface for order data access.
type OrderRepository interface {
	// CreateWithItems stores the order and its items as one unit and assigns
	// ids and the order number.
	CreateWithItems(ctx context.Context, order *models.Order) error
	GetByID(ctx context.Context, id string) (*models.Order, error)
	List(ctx context.Context, filter OrderFilter) ([]models.Order, error)
	UpdateStatus(ctx context.Context, id string, status models.OrderStatus) (*models.Order, error)
	UpdatePaymentStatus(ctx context.Context, id string, status models.PaymentStatus) (*models.Order, error)
	// Count counts orders with the given status, or all orders if status is empty.
	Count(ctx context.Context, status models.OrderStatus) (int64, error)
}

func orderDay(t time.Time) string {
	return t.Format("20060102")
}

func formatOrderNumber(day string, seq int64) string {
	return fmt.Sprintf("MM-%s-%04d", day, seq)
}
