package services

import (
	"context"
	"fmt"
	"log"
	"time"

	"marmomart/internal/models"
	"marmomart/internal/pricing"
	"marmomart/internal/repositories"

	"github.com/shopspring/decimal"
)

// Routing keys of the order events.
const (
	EventOrderCreated       = "order.created"
	EventOrderStatusUpdated = "order.status_updated"
)

// Publisher sends an event to the message broker. *rabbitmq.Client satisfies it.
type Publisher interface {
	Publish(routingKey string, payload interface{}) error
}

// OrderEvent is the payload of every order event.
type OrderEvent struct {
	Event         string               `json:"event"`
	OrderID       string               `json:"order_id"`
	OrderNumber   string               `json:"order_number"`
	UserID        string               `json:"user_id"`
	Status        models.OrderStatus   `json:"status"`
	PaymentStatus models.PaymentStatus `json:"payment_status"`
	TotalAmount   decimal.Decimal      `json:"total_amount"`
	OccurredAt    time.Time            `json:"occurred_at"`
}

// OrderLine is one cart line submitted at checkout. AreaSqft is read for
// area-priced variants and Quantity for piece-priced ones.
type OrderLine struct {
	ProductID   string
	VariantID   string
	AreaSqft    decimal.Decimal
	Quantity    int
	RoomDetails string
}

// ProjectMeta is the optional project information attached to an order.
type ProjectMeta struct {
	ProjectName          string
	ProjectAddress       string
	InstallationRequired bool
	Notes                string
	PaymentMethod        string
	BillingAddress       *models.Address
}

// OrderService handles business logic related to orders.
type OrderService struct {
	orderRepo   repositories.OrderRepository
	productRepo repositories.ProductRepository
	publisher   Publisher
}

// NewOrderService creates a new OrderService. publisher may be nil, in which
// case no events are published.
func NewOrderService(orderRepo repositories.OrderRepository, productRepo repositories.ProductRepository, publisher Publisher) *OrderService {
	return &OrderService{
		orderRepo:   orderRepo,
		productRepo: productRepo,
		publisher:   publisher,
	}
}

// SubmitOrder prices lines from the catalog and stores the order with its
// items in one unit. The stored total is the sum of the item totals.
func (s *OrderService) SubmitOrder(ctx context.Context, userID string, lines []OrderLine, meta ProjectMeta, shipping models.Address) (*models.Order, error) {
	if userID == "" {
		return nil, ErrUnauthenticated
	}
	if len(lines) == 0 {
		return nil, invalid("items", "at least one item is required")
	}

	items := make([]models.OrderItem, 0, len(lines))
	priced := make([]pricing.Line, 0, len(lines))
	products := make(map[string]*models.Product)

	for i, line := range lines {
		product, ok := products[line.ProductID]
		if !ok {
			var err error
			product, err = s.productRepo.GetByID(ctx, line.ProductID)
			if err != nil {
				if IsNotFound(err) {
					return nil, invalid(fmt.Sprintf("items[%d].product_id", i), "product %s not found", line.ProductID)
				}
				return nil, fmt.Errorf("failed to load product %s: %w", line.ProductID, err)
			}
			products[line.ProductID] = product
		}
		if !product.IsActive {
			return nil, invalid(fmt.Sprintf("items[%d].product_id", i), "product %s is not available", describe(product))
		}

		item, pl, err := buildItem(i, product, line)
		if err != nil {
			return nil, err
		}
		items = append(items, item)
		priced = append(priced, pl)
	}

	if shipping.Name == "" {
		shipping.Name = "Default Address"
	}
	if shipping.AddressLine1 == "" {
		shipping.AddressLine1 = meta.ProjectAddress
	}
	if shipping.AddressLine1 == "" {
		return nil, invalid("shipping_address.address_line1", "a shipping or project address is required")
	}

	order := &models.Order{
		UserID:               userID,
		Status:               models.OrderPending,
		PaymentStatus:        models.PaymentPending,
		PaymentMethod:        meta.PaymentMethod,
		TotalAmount:          sumItems(items),
		TotalArea:            pricing.TotalArea(priced),
		ProjectName:          meta.ProjectName,
		ProjectAddress:       meta.ProjectAddress,
		InstallationRequired: meta.InstallationRequired,
		Notes:                meta.Notes,
		ShippingAddress:      shipping,
		BillingAddress:       meta.BillingAddress,
		Items:                items,
	}

	if err := s.orderRepo.CreateWithItems(ctx, order); err != nil {
		log.Printf("Failed to save order for user %s: %v", userID, err)
		return nil, fmt.Errorf("%w: %v", ErrPersistence, err)
	}
	log.Printf("Order %s placed by user %s: total %s", order.OrderNumber, userID, order.TotalAmount.StringFixed(2))

	s.publish(EventOrderCreated, order)
	return order, nil
}

// buildItem prices one line against its variant.
func buildItem(i int, product *models.Product, line OrderLine) (models.OrderItem, pricing.Line, error) {
	field := func(name string) string { return fmt.Sprintf("items[%d].%s", i, name) }

	variant, ok := product.Variant(line.VariantID)
	if !ok {
		return models.OrderItem{}, pricing.Line{}, invalid(field("variant_id"), "variant %s does not belong to product %s", line.VariantID, product.ID)
	}

	p := variant.Pricing()
	if p.Mode() == pricing.ModePriceOnRequest {
		return models.OrderItem{}, pricing.Line{}, invalid(field("variant_id"), "%s is priced on request; ask for a quote instead", describe(product))
	}
	if err := checkAmount(p, line.AreaSqft, line.Quantity, field("area_sqft"), field("quantity")); err != nil {
		return models.OrderItem{}, pricing.Line{}, err
	}

	if minQty := product.MinOrderQuantity; minQty != nil {
		switch p.Mode() {
		case pricing.ModeArea:
			if line.AreaSqft.LessThan(decimal.NewFromInt(int64(*minQty))) {
				return models.OrderItem{}, pricing.Line{}, invalid(field("area_sqft"), "minimum order for %s is %d sqft", describe(product), *minQty)
			}
		case pricing.ModeUnit:
			if line.Quantity < *minQty {
				return models.OrderItem{}, pricing.Line{}, invalid(field("quantity"), "minimum order for %s is %d pieces", describe(product), *minQty)
			}
		}
	}

	req := pricing.Request{Area: line.AreaSqft, Quantity: line.Quantity}
	unit, _ := pricing.UnitPrice(p)
	total := lineTotal(p, req)

	item := models.OrderItem{
		ProductID:   product.ID,
		VariantID:   variant.ID,
		Quantity:    line.Quantity,
		UnitPrice:   unit,
		TotalPrice:  total,
		RoomDetails: line.RoomDetails,
	}
	if p.Mode() == pricing.ModeArea {
		area := line.AreaSqft
		item.AreaSqft = &area
		if item.Quantity <= 0 {
			item.Quantity = 1
		}
	}
	return item, pricing.Line{Pricing: p, Request: req}, nil
}

func sumItems(items []models.OrderItem) decimal.Decimal {
	total := decimal.Zero
	for _, item := range items {
		total = total.Add(item.TotalPrice)
	}
	return total
}

// ListOrders returns the caller's orders, newest first.
func (s *OrderService) ListOrders(ctx context.Context, userID string) ([]models.Order, error) {
	if userID == "" {
		return nil, ErrUnauthenticated
	}
	return s.orderRepo.List(ctx, repositories.OrderFilter{UserID: userID})
}

// ListAllOrders returns every order, optionally with one status only.
func (s *OrderService) ListAllOrders(ctx context.Context, status models.OrderStatus) ([]models.Order, error) {
	if status != "" && !status.Valid() {
		return nil, invalid("status", "invalid order status: %s", status)
	}
	return s.orderRepo.List(ctx, repositories.OrderFilter{Status: status})
}

// GetOrder returns an order to its owner or to staff.
func (s *OrderService) GetOrder(ctx context.Context, id, requesterID string, role models.Role) (*models.Order, error) {
	order, err := s.orderRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if order.UserID != requesterID && !role.IsStaff() {
		return nil, ErrForbidden
	}
	return order, nil
}

// UpdateOrderStatus updates the fulfilment status of an order.
func (s *OrderService) UpdateOrderStatus(ctx context.Context, id string, status models.OrderStatus) (*models.Order, error) {
	if !status.Valid() {
		return nil, invalid("status", "invalid order status: %s", status)
	}
	order, err := s.orderRepo.UpdateStatus(ctx, id, status)
	if err != nil {
		return nil, fmt.Errorf("failed to update order status for order %s: %w", id, err)
	}
	s.publish(EventOrderStatusUpdated, order)
	return order, nil
}

// UpdatePaymentStatus updates the payment status of an order.
func (s *OrderService) UpdatePaymentStatus(ctx context.Context, id string, status models.PaymentStatus) (*models.Order, error) {
	if !status.Valid() {
		return nil, invalid("payment_status", "invalid payment status: %s", status)
	}
	order, err := s.orderRepo.UpdatePaymentStatus(ctx, id, status)
	if err != nil {
		return nil, fmt.Errorf("failed to update payment status for order %s: %w", id, err)
	}
	s.publish(EventOrderStatusUpdated, order)
	return order, nil
}

// publish is best effort: a broker failure never fails the request.
func (s *OrderService) publish(event string, order *models.Order) {
	if s.publisher == nil {
		log.Println("RabbitMQ client is not initialized. Skipping message publication.")
		return
	}
	payload := OrderEvent{
		Event:         event,
		OrderID:       order.ID,
		OrderNumber:   order.OrderNumber,
		UserID:        order.UserID,
		Status:        order.Status,
		PaymentStatus: order.PaymentStatus,
		TotalAmount:   order.TotalAmount,
		OccurredAt:    time.Now().UTC(),
	}
	if err := s.publisher.Publish(event, payload); err != nil {
		log.Printf("Warning: Failed to publish %s event for order %s: %v", event, order.ID, err)
	}
}
