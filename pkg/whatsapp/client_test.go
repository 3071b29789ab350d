package whatsapp_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"marmomart/pkg/whatsapp"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClient_SendOTP(t *testing.T) {
	var got whatsapp.SendTemplateRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/v18.0/555/messages", r.URL.Path)
		assert.Equal(t, "Bearer secret", r.Header.Get("Authorization"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"messages":[{"id":"wamid.1","message_status":"accepted"}]}`))
	}))
	defer server.Close()

	client := whatsapp.NewClient(server.URL, "v18.0", "555", "secret")
	require.NoError(t, client.SendOTP(context.Background(), "+91 98765-43210", "482913"))

	assert.Equal(t, "whatsapp", got.MessagingProduct)
	assert.Equal(t, "919876543210", got.To)
	assert.Equal(t, "template", got.Type)
	assert.Equal(t, "marmomart_otp_template", got.Template.Name)
	assert.Equal(t, "en", got.Template.Language.Code)
	require.Len(t, got.Template.Components, 1)
	assert.Equal(t, []whatsapp.Parameter{{Type: "text", Text: "482913"}}, got.Template.Components[0].Parameters)
}

func TestClient_SendOrderUpdate(t *testing.T) {
	var got whatsapp.SendTemplateRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.Write([]byte(`{"messages":[{"id":"wamid.2"}]}`))
	}))
	defer server.Close()

	client := whatsapp.NewClient(server.URL, "v18.0", "555", "secret")
	require.NoError(t, client.SendOrderUpdate(context.Background(), "+919876543210", "MM-20261016-0001", "shipped"))

	assert.Equal(t, "marmomart_order_update", got.Template.Name)
	assert.Equal(t, []whatsapp.Parameter{
		{Type: "text", Text: "MM-20261016-0001"},
		{Type: "text", Text: "shipped"},
	}, got.Template.Components[0].Parameters)
}

func TestClient_APIError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"error":{"message":"Template name does not exist","code":132001}}`))
	}))
	defer server.Close()

	client := whatsapp.NewClient(server.URL, "v18.0", "555", "secret")
	err := client.SendOTP(context.Background(), "+919876543210", "123456")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Template name does not exist")
}
