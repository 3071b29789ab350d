package handlers

import (
	"fmt"

	"marmomart/internal/middleware"
	"marmomart/internal/models"
	"marmomart/internal/services"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

// AccountHandler serves the signed-in customer's profile and address book,
// and account management for staff.
type AccountHandler struct {
	service  *services.AccountService
	validate *validator.Validate
}

// NewAccountHandler creates a new AccountHandler.
func NewAccountHandler(service *services.AccountService) *AccountHandler {
	return &AccountHandler{
		service:  service,
		validate: validator.New(),
	}
}

// RegisterRoutes registers the routes for the signed-in account.
func (h *AccountHandler) RegisterRoutes(router fiber.Router) {
	me := router.Group("/me")
	me.Put("/", h.HandleUpdateProfile)
	me.Get("/addresses", h.HandleListAddresses)
	me.Post("/addresses", h.HandleAddAddress)
	me.Put("/addresses/:id", h.HandleUpdateAddress)
	me.Delete("/addresses/:id", h.HandleDeleteAddress)
}

// RegisterAdminRoutes registers account management routes.
func (h *AccountHandler) RegisterAdminRoutes(router fiber.Router) {
	userRoutes := router.Group("/users")
	userRoutes.Get("/", h.HandleListAccounts)
	userRoutes.Patch("/:id/role", h.HandleSetRole)
}

// UpdateProfileRequest represents the editable profile fields.
type UpdateProfileRequest struct {
	FullName     string `json:"full_name" validate:"required,max=120"`
	Email        string `json:"email" validate:"omitempty,email"`
	BusinessName string `json:"business_name" validate:"max=150"`
	BusinessType string `json:"business_type" validate:"max=60"`
	GSTNumber    string `json:"gst_number" validate:"omitempty,len=15,alphanum"`
}

// AddressRequest represents an address book entry.
type AddressRequest struct {
	Name         string `json:"name" validate:"required,max=120"`
	Phone        string `json:"phone" validate:"max=20"`
	AddressLine1 string `json:"address_line1" validate:"required,max=250"`
	AddressLine2 string `json:"address_line2" validate:"max=250"`
	City         string `json:"city" validate:"max=100"`
	State        string `json:"state" validate:"max=100"`
	Pincode      string `json:"pincode" validate:"omitempty,numeric,len=6"`
	Landmark     string `json:"landmark" validate:"max=150"`
	IsDefault    bool   `json:"is_default"`
}

func (r AddressRequest) saved() *models.SavedAddress {
	return &models.SavedAddress{
		Address: models.Address{
			Name:         r.Name,
			Phone:        r.Phone,
			AddressLine1: r.AddressLine1,
			AddressLine2: r.AddressLine2,
			City:         r.City,
			State:        r.State,
			Pincode:      r.Pincode,
			Landmark:     r.Landmark,
		},
		IsDefault: r.IsDefault,
	}
}

// SetRoleRequest represents the request body for a role change.
type SetRoleRequest struct {
	Role models.Role `json:"role" validate:"required"`
}

// HandleUpdateProfile updates the signed-in account's profile.
func (h *AccountHandler) HandleUpdateProfile(c *fiber.Ctx) error {
	var req UpdateProfileRequest
	if err := c.BodyParser(&req); err != nil {
		return badBody(c, err)
	}
	if ok, err := validateBody(c, h.validate, req); !ok {
		return err
	}

	userID, _ := middleware.CurrentUser(c)
	account, err := h.service.UpdateProfile(c.UserContext(), userID, services.ProfileUpdate{
		FullName:     req.FullName,
		Email:        req.Email,
		BusinessName: req.BusinessName,
		BusinessType: req.BusinessType,
		GSTNumber:    req.GSTNumber,
	})
	if err != nil {
		return respondError(c, "Could not update profile", err)
	}
	return c.JSON(account)
}

// HandleListAddresses returns the signed-in account's address book.
func (h *AccountHandler) HandleListAddresses(c *fiber.Ctx) error {
	userID, _ := middleware.CurrentUser(c)
	addresses, err := h.service.ListAddresses(c.UserContext(), userID)
	if err != nil {
		return respondError(c, "Could not retrieve addresses", err)
	}
	return c.JSON(addresses)
}

// HandleAddAddress adds an address to the signed-in account's address book.
func (h *AccountHandler) HandleAddAddress(c *fiber.Ctx) error {
	var req AddressRequest
	if err := c.BodyParser(&req); err != nil {
		return badBody(c, err)
	}
	if ok, err := validateBody(c, h.validate, req); !ok {
		return err
	}

	userID, _ := middleware.CurrentUser(c)
	address := req.saved()
	if err := h.service.AddAddress(c.UserContext(), userID, address); err != nil {
		return respondError(c, "Could not save address", err)
	}
	return c.Status(fiber.StatusCreated).JSON(address)
}

// HandleUpdateAddress replaces one of the signed-in account's addresses.
func (h *AccountHandler) HandleUpdateAddress(c *fiber.Ctx) error {
	var req AddressRequest
	if err := c.BodyParser(&req); err != nil {
		return badBody(c, err)
	}
	if ok, err := validateBody(c, h.validate, req); !ok {
		return err
	}

	userID, _ := middleware.CurrentUser(c)
	address := req.saved()
	address.ID = c.Params("id")
	if err := h.service.UpdateAddress(c.UserContext(), userID, address); err != nil {
		return respondError(c, "Could not update address", err)
	}
	return c.JSON(address)
}

// HandleDeleteAddress removes one of the signed-in account's addresses.
func (h *AccountHandler) HandleDeleteAddress(c *fiber.Ctx) error {
	id := c.Params("id")
	userID, _ := middleware.CurrentUser(c)
	if err := h.service.DeleteAddress(c.UserContext(), userID, id); err != nil {
		return respondError(c, "Could not delete address", err)
	}
	return c.JSON(fiber.Map{
		"message": fmt.Sprintf("Address with ID %s deleted successfully", id),
	})
}

// HandleListAccounts lists every account for the back office.
func (h *AccountHandler) HandleListAccounts(c *fiber.Ctx) error {
	accounts, err := h.service.ListAccounts(c.UserContext())
	if err != nil {
		return respondError(c, "Could not retrieve users", err)
	}
	return c.JSON(accounts)
}

// HandleSetRole changes an account's role.
func (h *AccountHandler) HandleSetRole(c *fiber.Ctx) error {
	var req SetRoleRequest
	if err := c.BodyParser(&req); err != nil {
		return badBody(c, err)
	}
	if ok, err := validateBody(c, h.validate, req); !ok {
		return err
	}

	actorID, _ := middleware.CurrentUser(c)
	account, err := h.service.SetRole(c.UserContext(), actorID, c.Params("id"), req.Role)
	if err != nil {
		return respondError(c, "Could not update user role", err)
	}
	return c.JSON(account)
}
