package handlers

import (
	"errors"
	"fmt"
	"log"

	"marmomart/internal/otp"
	"marmomart/internal/phoneauth"
	"marmomart/internal/repositories"
	"marmomart/internal/services"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

// errorKinds lets clients tell login failures apart, e.g. offer resend on
// "expired" but re-entry on "invalid_phone".
var errorKinds = []struct {
	err    error
	status int
	kind   string
}{
	{otp.ErrSessionNotFound, fiber.StatusNotFound, "session_not_found"},
	{otp.ErrPhoneMismatch, fiber.StatusBadRequest, "phone_mismatch"},
	{otp.ErrExpired, fiber.StatusGone, "expired"},
	{otp.ErrCodeMismatch, fiber.StatusUnprocessableEntity, "code_mismatch"},
	{otp.ErrDelivery, fiber.StatusBadGateway, "delivery_failed"},
	{phoneauth.ErrInvalidPhone, fiber.StatusBadRequest, "invalid_phone"},
	{phoneauth.ErrProfileIncomplete, fiber.StatusBadRequest, "profile_incomplete"},
	{phoneauth.ErrUnexpectedEvent, fiber.StatusConflict, "unexpected_step"},
	{services.ErrInvalidToken, fiber.StatusUnauthorized, "invalid_token"},
	{services.ErrUnauthenticated, fiber.StatusUnauthorized, ""},
	{services.ErrForbidden, fiber.StatusForbidden, ""},
	{services.ErrPersistence, fiber.StatusInternalServerError, ""},
	{repositories.ErrNotFound, fiber.StatusNotFound, ""},
	{repositories.ErrInUse, fiber.StatusConflict, "in_use"},
}

// respondError writes err with the status its kind maps to.
func respondError(c *fiber.Ctx, message string, err error) error {
	var verr *services.ValidationError
	if errors.As(err, &verr) {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Validation failed",
			"errors":  fiber.Map{verr.Field: verr.Message},
		})
	}

	for _, k := range errorKinds {
		if errors.Is(err, k.err) {
			body := fiber.Map{"message": message, "error": err.Error()}
			if k.kind != "" {
				body["kind"] = k.kind
			}
			return c.Status(k.status).JSON(body)
		}
	}

	log.Printf("%s: %v", message, err)
	return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
		"message": message,
		"error":   err.Error(),
	})
}

func badBody(c *fiber.Ctx, err error) error {
	log.Printf("Error parsing request body: %v", err)
	return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
		"message": "Invalid request body",
		"error":   err.Error(),
	})
}

// validateBody renders validator failures as a field map. ok is false when
// the error response has already been written.
func validateBody(c *fiber.Ctx, validate *validator.Validate, v interface{}) (ok bool, err error) {
	err = validate.Struct(v)
	if err == nil {
		return true, nil
	}
	var validationErrors validator.ValidationErrors
	if !errors.As(err, &validationErrors) {
		return false, badBody(c, err)
	}
	errorMessages := make(map[string]string)
	for _, e := range validationErrors {
		errorMessages[e.Field()] = fmt.Sprintf("Field '%s' failed on the '%s' tag", e.Field(), e.Tag())
	}
	return false, c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
		"message": "Validation failed",
		"errors":  errorMessages,
	})
}
