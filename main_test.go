package main

import (
	"context"
	"encoding/json"
	"io/ioutil"
	"log"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"marmomart/internal/config"
	"marmomart/internal/models"
	"marmomart/internal/otp"
	"marmomart/internal/phoneauth"
	"marmomart/internal/repositories"
)

type nopSender struct{}

func (nopSender) SendOTP(context.Context, string, string) error { return nil }

func TestMain(m *testing.M) {
	// Suppress logging during tests for cleaner output
	log.SetOutput(ioutil.Discard)
	os.Exit(m.Run())
}

// memoryApp builds the app on in-memory stores with the demo catalog.
func memoryApp(t *testing.T, live backends) (stores, *fiber.App) {
	t.Helper()
	st := stores{
		products:  repositories.NewMemoryProductRepository(),
		orders:    repositories.NewMemoryOrderRepository(),
		accounts:  repositories.NewMemoryAccountRepository(),
		addresses: repositories.NewMemoryAddressRepository(),
	}
	seedCatalog(st.products)
	cfg := &config.Config{
		JWTSecret:          "test_jwt_secret",
		TokenTTL:           time.Hour,
		OTPTTL:             otp.DefaultTTL,
		OTPHashCost:        bcrypt.MinCost,
		PhoneDefaultRegion: "IN",
	}
	return st, newApp(cfg, st, otp.NewMemoryStore(), nopSender{}, nil, live)
}

func TestHealthCheck(t *testing.T) {
	_, app := memoryApp(t, backends{"database": "memory", "rabbitmq": "disabled"})

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/health", nil), -1)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var body struct {
		Status   string            `json:"status"`
		Backends map[string]string `json:"backends"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, "healthy", body.Status)
	assert.Equal(t, "disabled", body.Backends["rabbitmq"])
}

func TestSeedCatalog(t *testing.T) {
	st, _ := memoryApp(t, backends{})
	ctx := context.Background()

	products, err := st.products.GetAll(ctx, repositories.ProductFilter{})
	require.NoError(t, err)
	assert.Len(t, products, 3)

	marble, err := st.products.GetAll(ctx, repositories.ProductFilter{CategorySlug: "italian-marble"})
	require.NoError(t, err)
	require.Len(t, marble, 2)
	for _, p := range marble {
		for _, v := range p.Variants {
			assert.NotEmpty(t, v.ID)
		}
	}
}

func TestRoutesWired(t *testing.T) {
	_, app := memoryApp(t, backends{})

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/api/v1/products?featured=true", nil), -1)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var products []models.Product
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&products))
	assert.Len(t, products, 2)

	// Orders need a token.
	resp, err = app.Test(httptest.NewRequest(http.MethodGet, "/api/v1/orders", nil), -1)
	require.NoError(t, err)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestAdminPhonesNormalized(t *testing.T) {
	got := adminPhones([]string{"98765 00000", "+91 98765-00001", "not-a-phone", ""}, phoneauth.NewNumberValidator("IN"))
	assert.Equal(t, []string{"+919876500000", "+919876500001"}, got)
}
