package handlers

import (
	"log"
	"time"

	"marmomart/internal/middleware"
	"marmomart/internal/otp"
	"marmomart/internal/phoneauth"
	"marmomart/internal/services"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

// AuthHandler handles WhatsApp OTP login. Each request rebuilds the login flow
// from what the client sends back, so no server-side flow state is kept.
type AuthHandler struct {
	codes       *otp.Manager
	phones      phoneauth.PhoneValidator
	authService *services.AuthService
	validate    *validator.Validate
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(codes *otp.Manager, phones phoneauth.PhoneValidator, authService *services.AuthService) *AuthHandler {
	return &AuthHandler{
		codes:       codes,
		phones:      phones,
		authService: authService,
		validate:    validator.New(),
	}
}

// RegisterRoutes registers the authentication routes with the Fiber app.
func (h *AuthHandler) RegisterRoutes(router fiber.Router) {
	authRoutes := router.Group("/auth/otp")
	authRoutes.Post("/send", h.HandleSendOTP)
	authRoutes.Post("/resend", h.HandleResendOTP)
	authRoutes.Post("/verify", h.HandleVerifyOTP)
	authRoutes.Post("/complete", h.HandleCompleteProfile)
}

// RegisterAccountRoutes registers routes for the signed-in account.
func (h *AuthHandler) RegisterAccountRoutes(router fiber.Router) {
	router.Get("/me", h.HandleMe)
}

func (h *AuthHandler) newFlow() *phoneauth.Flow {
	return phoneauth.NewFlow(h.codes, h.phones, h.authService)
}

// SendOTPRequest represents the request body for sending or resending a code.
type SendOTPRequest struct {
	Phone string `json:"phone" validate:"required"`
}

// VerifyOTPRequest represents the request body for code verification.
type VerifyOTPRequest struct {
	SessionID string `json:"session_id" validate:"required"`
	Phone     string `json:"phone" validate:"required"`
	Code      string `json:"code" validate:"required,len=6,numeric"`
}

// CompleteProfileRequest represents the profile a new customer submits.
type CompleteProfileRequest struct {
	RegistrationToken string `json:"registration_token" validate:"required"`
	FullName          string `json:"full_name" validate:"required,max=120"`
	Email             string `json:"email" validate:"omitempty,email"`
	BusinessName      string `json:"business_name" validate:"max=150"`
	BusinessType      string `json:"business_type" validate:"max=60"`
	GSTNumber         string `json:"gst_number" validate:"omitempty,len=15,alphanum"`
}

// HandleSendOTP starts a login by sending a code to the phone over WhatsApp.
func (h *AuthHandler) HandleSendOTP(c *fiber.Ctx) error {
	var req SendOTPRequest
	if err := c.BodyParser(&req); err != nil {
		return badBody(c, err)
	}
	if ok, err := validateBody(c, h.validate, req); !ok {
		return err
	}

	flow := h.newFlow()
	if err := flow.Dispatch(c.UserContext(), phoneauth.PhoneSubmitted{Phone: req.Phone}); err != nil {
		log.Printf("Error sending OTP: %v", err)
		return respondError(c, "Could not send verification code", err)
	}
	return h.codeIssued(c, flow.State())
}

// HandleResendOTP issues a fresh code. Any earlier session for the phone stops working.
func (h *AuthHandler) HandleResendOTP(c *fiber.Ctx) error {
	var req SendOTPRequest
	if err := c.BodyParser(&req); err != nil {
		return badBody(c, err)
	}
	if ok, err := validateBody(c, h.validate, req); !ok {
		return err
	}

	phone, err := h.phones.Normalize(req.Phone)
	if err != nil {
		return respondError(c, "Could not resend verification code", err)
	}
	flow := h.newFlow().Resume(phoneauth.State{Step: phoneauth.AwaitingCode, Phone: phone})
	if err := flow.Dispatch(c.UserContext(), phoneauth.ResendRequested{}); err != nil {
		log.Printf("Error resending OTP: %v", err)
		return respondError(c, "Could not resend verification code", err)
	}
	return h.codeIssued(c, flow.State())
}

func (h *AuthHandler) codeIssued(c *fiber.Ctx, s phoneauth.State) error {
	expiresAt, err := h.codes.ExpiresAt(c.UserContext(), s.SessionID)
	if err != nil {
		log.Printf("Error reading expiry of session %s: %v", s.SessionID, err)
		expiresAt = time.Now().Add(h.codes.TTL())
	}
	return c.JSON(fiber.Map{
		"message":    "Verification code sent via WhatsApp",
		"step":       s.Step,
		"session_id": s.SessionID,
		"phone":      s.Phone,
		"expires_at": expiresAt.UTC().Format(time.RFC3339),
	})
}

// HandleVerifyOTP checks the code. Known phones are signed in; new phones get
// a registration token to complete their profile with.
func (h *AuthHandler) HandleVerifyOTP(c *fiber.Ctx) error {
	var req VerifyOTPRequest
	if err := c.BodyParser(&req); err != nil {
		return badBody(c, err)
	}
	if ok, err := validateBody(c, h.validate, req); !ok {
		return err
	}

	phone, err := h.phones.Normalize(req.Phone)
	if err != nil {
		return respondError(c, "Verification failed", err)
	}
	flow := h.newFlow().Resume(phoneauth.State{
		Step:      phoneauth.AwaitingCode,
		Phone:     phone,
		SessionID: req.SessionID,
	})
	if err := flow.Dispatch(c.UserContext(), phoneauth.CodeSubmitted{Code: req.Code}); err != nil {
		log.Printf("OTP verification failed for session %s: %v", req.SessionID, err)
		return respondError(c, "Verification failed", err)
	}

	s := flow.State()
	switch s.Step {
	case phoneauth.Authenticated:
		return c.JSON(fiber.Map{
			"status":  s.Step,
			"token":   s.Token,
			"account": s.Account,
		})
	case phoneauth.ProfileRequired:
		token, err := h.authService.IssueRegistrationToken(s.Phone)
		if err != nil {
			return respondError(c, "Verification failed", err)
		}
		return c.JSON(fiber.Map{
			"status":             s.Step,
			"registration_token": token,
		})
	}
	return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
		"message": "Verification failed",
		"error":   "unexpected login step " + string(s.Step),
	})
}

// HandleCompleteProfile creates the account for a verified new phone and signs it in.
func (h *AuthHandler) HandleCompleteProfile(c *fiber.Ctx) error {
	var req CompleteProfileRequest
	if err := c.BodyParser(&req); err != nil {
		return badBody(c, err)
	}
	if ok, err := validateBody(c, h.validate, req); !ok {
		return err
	}

	phone, err := h.authService.ParseRegistrationToken(req.RegistrationToken)
	if err != nil {
		return respondError(c, "Registration failed", err)
	}
	existing, err := h.authService.FindByPhone(c.UserContext(), phone)
	if err != nil {
		return respondError(c, "Registration failed", err)
	}
	if existing != nil {
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{
			"message": "Registration failed",
			"error":   "an account already exists for this phone",
		})
	}

	flow := h.newFlow().Resume(phoneauth.State{Step: phoneauth.ProfileRequired, Phone: phone, Verified: true})
	err = flow.Dispatch(c.UserContext(), phoneauth.ProfileSubmitted{Profile: phoneauth.Profile{
		FullName:     req.FullName,
		Email:        req.Email,
		BusinessName: req.BusinessName,
		BusinessType: req.BusinessType,
		GSTNumber:    req.GSTNumber,
	}})
	if err != nil {
		log.Printf("Error completing profile: %v", err)
		return respondError(c, "Registration failed", err)
	}

	s := flow.State()
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message": "Account created successfully",
		"token":   s.Token,
		"account": s.Account,
	})
}

// HandleMe returns the signed-in account.
func (h *AuthHandler) HandleMe(c *fiber.Ctx) error {
	userID, _ := middleware.CurrentUser(c)
	account, err := h.authService.GetAccount(c.UserContext(), userID)
	if err != nil {
		return respondError(c, "Could not retrieve account", err)
	}
	return c.JSON(account)
}
