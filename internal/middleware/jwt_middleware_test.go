package middleware_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"marmomart/internal/middleware"
	"marmomart/internal/models"
	"marmomart/internal/repositories"
	"marmomart/internal/services"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupApp(t *testing.T) (*fiber.App, *services.AuthService) {
	t.Helper()
	authService := services.NewAuthService(repositories.NewMemoryAccountRepository(), "test_jwt_secret", time.Hour, nil)

	app := fiber.New()
	protected := app.Group("", middleware.AuthRequired(authService))
	protected.Get("/whoami", func(c *fiber.Ctx) error {
		id, role := middleware.CurrentUser(c)
		return c.JSON(fiber.Map{"id": id, "role": role})
	})
	protected.Get("/staff", middleware.StaffRequired(), func(c *fiber.Ctx) error {
		return c.SendStatus(fiber.StatusNoContent)
	})
	return app, authService
}

func tokenFor(t *testing.T, s *services.AuthService, role models.Role) string {
	t.Helper()
	token, err := s.SignIn(context.Background(), &models.Account{ID: "u1", Phone: "+919876543210", Role: role})
	require.NoError(t, err)
	return token
}

func TestAuthRequired(t *testing.T) {
	app, authService := setupApp(t)

	req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	req = httptest.NewRequest(http.MethodGet, "/whoami", nil)
	req.Header.Set("Authorization", "Token abc")
	resp, err = app.Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	req = httptest.NewRequest(http.MethodGet, "/whoami", nil)
	req.Header.Set("Authorization", "Bearer "+tokenFor(t, authService, models.RoleUser))
	resp, err = app.Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestStaffRequired(t *testing.T) {
	app, authService := setupApp(t)

	req := httptest.NewRequest(http.MethodGet, "/staff", nil)
	req.Header.Set("Authorization", "Bearer "+tokenFor(t, authService, models.RoleUser))
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	for _, role := range []models.Role{models.RoleAdmin, models.RoleManager} {
		req = httptest.NewRequest(http.MethodGet, "/staff", nil)
		req.Header.Set("Authorization", "Bearer "+tokenFor(t, authService, role))
		resp, err = app.Test(req, -1)
		require.NoError(t, err)
		assert.Equal(t, http.StatusNoContent, resp.StatusCode)
	}
}
