package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// OrderStatus is the fulfilment state of an order.
type OrderStatus string

const (
	OrderPending    OrderStatus = "pending"
	OrderConfirmed  OrderStatus = "confirmed"
	OrderProcessing OrderStatus = "processing"
	OrderShipped    OrderStatus = "shipped"
	OrderDelivered  OrderStatus = "delivered"
	OrderCancelled  OrderStatus = "cancelled"
)

// Valid reports whether s is a known order status.
func (s OrderStatus) Valid() bool {
	switch s {
	case OrderPending, OrderConfirmed, OrderProcessing, OrderShipped, OrderDelivered, OrderCancelled:
		return true
	}
	return false
}

// PaymentStatus is the payment state of an order.
type PaymentStatus string

const (
	PaymentPending  PaymentStatus = "pending"
	PaymentPaid     PaymentStatus = "paid"
	PaymentFailed   PaymentStatus = "failed"
	PaymentRefunded PaymentStatus = "refunded"
)

// Valid reports whether s is a known payment status.
func (s PaymentStatus) Valid() bool {
	switch s {
	case PaymentPending, PaymentPaid, PaymentFailed, PaymentRefunded:
		return true
	}
	return false
}

// Address is a shipping or billing address snapshot stored with the order.
// Orders may carry a partial one; OrderService.SubmitOrder fills the gaps.
type Address struct {
	Name         string `json:"name"`
	Phone        string `json:"phone"`
	AddressLine1 string `json:"address_line1"`
	AddressLine2 string `json:"address_line2,omitempty"`
	City         string `json:"city"`
	State        string `json:"state"`
	Pincode      string `json:"pincode"`
	Landmark     string `json:"landmark,omitempty"`
}

// OrderItem represents a single line within an order.
type OrderItem struct {
	ID          string           `json:"id" gorm:"primaryKey;type:varchar(36)"`
	OrderID     string           `json:"order_id" gorm:"index;type:varchar(36)"`
	ProductID   string           `json:"product_id" gorm:"type:varchar(36)"`
	VariantID   string           `json:"variant_id" gorm:"type:varchar(36)"`
	Quantity    int              `json:"quantity"`
	AreaSqft    *decimal.Decimal `json:"area_sqft" gorm:"type:decimal(12,2)"`
	UnitPrice   decimal.Decimal  `json:"unit_price" gorm:"type:decimal(12,2);not null"` // Price at the time of order
	TotalPrice  decimal.Decimal  `json:"total_price" gorm:"type:decimal(14,2);not null"`
	RoomDetails string           `json:"room_details"`
}

// Order represents a customer order.
type Order struct {
	ID                   string          `json:"id" gorm:"primaryKey;type:varchar(36)"`
	OrderNumber          string          `json:"order_number" gorm:"uniqueIndex;type:varchar(32);not null"`
	UserID               string          `json:"user_id" gorm:"index;type:varchar(36);not null"`
	Status               OrderStatus     `json:"status" gorm:"type:varchar(20);index"`
	PaymentStatus        PaymentStatus   `json:"payment_status" gorm:"type:varchar(20)"`
	PaymentMethod        string          `json:"payment_method"`
	TotalAmount          decimal.Decimal `json:"total_amount" gorm:"type:decimal(14,2);not null"`
	TotalArea            decimal.Decimal `json:"total_area" gorm:"type:decimal(12,2)"`
	ProjectName          string          `json:"project_name"`
	ProjectAddress       string          `json:"project_address"`
	InstallationRequired bool            `json:"installation_required"`
	Notes                string          `json:"notes"`
	AdminNotes           string          `json:"admin_notes,omitempty"`
	ShippingAddress      Address         `json:"shipping_address" gorm:"serializer:json"`
	BillingAddress       *Address        `json:"billing_address,omitempty" gorm:"serializer:json"`
	Items                []OrderItem     `json:"items" gorm:"foreignKey:OrderID"`
	CreatedAt            time.Time       `json:"created_at"`
	UpdatedAt            time.Time       `json:"updated_at"`
}

// OrderCounter backs order number generation; one row per calendar day.
type OrderCounter struct {
	Day   string `gorm:"primaryKey;type:varchar(8)"`
	Value int64  `gorm:"not null"`
}
