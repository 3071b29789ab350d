package handlers

import (
	"fmt"
	"log"

	"marmomart/internal/middleware"
	"marmomart/internal/models"
	"marmomart/internal/services"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"
)

// OrderHandler handles HTTP requests for orders.
type OrderHandler struct {
	service  *services.OrderService
	validate *validator.Validate
}

// NewOrderHandler creates a new OrderHandler.
func NewOrderHandler(service *services.OrderService) *OrderHandler {
	return &OrderHandler{
		service:  service,
		validate: validator.New(),
	}
}

// RegisterRoutes registers the customer order routes. They must sit behind
// middleware.AuthRequired.
func (h *OrderHandler) RegisterRoutes(router fiber.Router) {
	orderRoutes := router.Group("/orders")
	orderRoutes.Get("/", h.HandleGetOrders)
	orderRoutes.Get("/:id", h.HandleGetOrderByID)
	orderRoutes.Post("/", h.HandleCreateOrder)
}

// RegisterAdminRoutes registers the back office order routes.
func (h *OrderHandler) RegisterAdminRoutes(router fiber.Router) {
	orderRoutes := router.Group("/orders")
	orderRoutes.Get("/", h.HandleGetAllOrders)
	orderRoutes.Patch("/:id/status", h.HandleUpdateOrderStatus)
	orderRoutes.Patch("/:id/payment-status", h.HandleUpdatePaymentStatus)
}

// CheckoutItem is one cart line in a checkout request.
type CheckoutItem struct {
	ProductID   string          `json:"product_id" validate:"required"`
	VariantID   string          `json:"variant_id" validate:"required"`
	AreaSqft    decimal.Decimal `json:"area_sqft"`
	Quantity    int             `json:"quantity"`
	RoomDetails string          `json:"room_details" validate:"max=500"`
}

// CheckoutRequest represents the request body for placing an order.
type CheckoutRequest struct {
	Items                []CheckoutItem  `json:"items" validate:"required,min=1,dive"`
	ProjectName          string          `json:"project_name" validate:"max=200"`
	ProjectAddress       string          `json:"project_address" validate:"max=500"`
	InstallationRequired bool            `json:"installation_required"`
	Notes                string          `json:"notes" validate:"max=2000"`
	PaymentMethod        string          `json:"payment_method" validate:"omitempty,oneof=cod bank_transfer upi card"`
	ShippingAddress      *models.Address `json:"shipping_address"`
	BillingAddress       *models.Address `json:"billing_address"`
}

// HandleCreateOrder places an order for the signed-in customer.
func (h *OrderHandler) HandleCreateOrder(c *fiber.Ctx) error {
	var req CheckoutRequest
	if err := c.BodyParser(&req); err != nil {
		return badBody(c, err)
	}
	if ok, err := validateBody(c, h.validate, req); !ok {
		return err
	}

	lines := make([]services.OrderLine, 0, len(req.Items))
	for _, item := range req.Items {
		lines = append(lines, services.OrderLine{
			ProductID:   item.ProductID,
			VariantID:   item.VariantID,
			AreaSqft:    item.AreaSqft,
			Quantity:    item.Quantity,
			RoomDetails: item.RoomDetails,
		})
	}
	var shipping models.Address
	if req.ShippingAddress != nil {
		shipping = *req.ShippingAddress
	}
	meta := services.ProjectMeta{
		ProjectName:          req.ProjectName,
		ProjectAddress:       req.ProjectAddress,
		InstallationRequired: req.InstallationRequired,
		Notes:                req.Notes,
		PaymentMethod:        req.PaymentMethod,
		BillingAddress:       req.BillingAddress,
	}

	userID, _ := middleware.CurrentUser(c)
	order, err := h.service.SubmitOrder(c.UserContext(), userID, lines, meta, shipping)
	if err != nil {
		log.Printf("Error creating order: %v", err)
		return respondError(c, "Could not create order", err)
	}

	// Return the created order with its number and a 201 Created status
	return c.Status(fiber.StatusCreated).JSON(order)
}

// HandleGetOrders lists the signed-in customer's orders, newest first.
func (h *OrderHandler) HandleGetOrders(c *fiber.Ctx) error {
	userID, _ := middleware.CurrentUser(c)
	orders, err := h.service.ListOrders(c.UserContext(), userID)
	if err != nil {
		return respondError(c, "Could not retrieve orders", err)
	}
	return c.JSON(orders)
}

// HandleGetOrderByID retrieves a single order for its owner or staff.
func (h *OrderHandler) HandleGetOrderByID(c *fiber.Ctx) error {
	orderID := c.Params("id")
	userID, role := middleware.CurrentUser(c)
	order, err := h.service.GetOrder(c.UserContext(), orderID, userID, role)
	if err != nil {
		log.Printf("Error getting order by ID %s: %v", orderID, err)
		return respondError(c, fmt.Sprintf("Could not retrieve order %s", orderID), err)
	}
	return c.JSON(order)
}

// HandleGetAllOrders lists every order, optionally filtered by ?status=.
func (h *OrderHandler) HandleGetAllOrders(c *fiber.Ctx) error {
	orders, err := h.service.ListAllOrders(c.UserContext(), models.OrderStatus(c.Query("status")))
	if err != nil {
		return respondError(c, "Could not retrieve orders", err)
	}
	return c.JSON(orders)
}

// HandleUpdateOrderStatus updates the status of an existing order.
func (h *OrderHandler) HandleUpdateOrderStatus(c *fiber.Ctx) error {
	orderID := c.Params("id")
	var updateData struct {
		Status models.OrderStatus `json:"status" validate:"required"`
	}
	if err := c.BodyParser(&updateData); err != nil {
		return badBody(c, err)
	}
	if ok, err := validateBody(c, h.validate, updateData); !ok {
		return err
	}

	order, err := h.service.UpdateOrderStatus(c.UserContext(), orderID, updateData.Status)
	if err != nil {
		log.Printf("Error updating order status for order %s: %v", orderID, err)
		return respondError(c, "Could not update order status", err)
	}

	return c.JSON(fiber.Map{
		"message": fmt.Sprintf("Order %s status updated successfully to %s", order.OrderNumber, order.Status),
		"order":   order,
	})
}

// HandleUpdatePaymentStatus updates the payment status of an existing order.
func (h *OrderHandler) HandleUpdatePaymentStatus(c *fiber.Ctx) error {
	orderID := c.Params("id")
	var updateData struct {
		PaymentStatus models.PaymentStatus `json:"payment_status" validate:"required"`
	}
	if err := c.BodyParser(&updateData); err != nil {
		return badBody(c, err)
	}
	if ok, err := validateBody(c, h.validate, updateData); !ok {
		return err
	}

	order, err := h.service.UpdatePaymentStatus(c.UserContext(), orderID, updateData.PaymentStatus)
	if err != nil {
		log.Printf("Error updating payment status for order %s: %v", orderID, err)
		return respondError(c, "Could not update payment status", err)
	}

	return c.JSON(fiber.Map{
		"message": fmt.Sprintf("Order %s payment status updated successfully to %s", order.OrderNumber, order.PaymentStatus),
		"order":   order,
	})
}
