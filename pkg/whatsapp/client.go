package whatsapp

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"strings"
	"time"
)

// Client sends template messages through the WhatsApp Cloud API.
type Client struct {
	BaseURL       string
	APIVersion    string
	PhoneNumberID string
	AccessToken   string
	Language      string
	OTPTemplate   string
	OrderTemplate string
	HTTPClient    *http.Client
}

type Parameter struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

type Component struct {
	Type       string      `json:"type"`
	Parameters []Parameter `json:"parameters"`
}

type Language struct {
	Code string `json:"code"`
}

type Template struct {
	Name       string      `json:"name"`
	Language   Language    `json:"language"`
	Components []Component `json:"components,omitempty"`
}

type SendTemplateRequest struct {
	MessagingProduct string   `json:"messaging_product"`
	To               string   `json:"to"`
	Type             string   `json:"type"`
	Template         Template `json:"template"`
}

type SendMessageResponse struct {
	Messages []struct {
		ID            string `json:"id"`
		MessageStatus string `json:"message_status"`
	} `json:"messages"`
	Error *struct {
		Message string `json:"message"`
		Code    int    `json:"code"`
	} `json:"error,omitempty"`
}

func NewClient(baseURL, apiVersion, phoneNumberID, accessToken string) *Client {
	return &Client{
		BaseURL:       strings.TrimRight(baseURL, "/"),
		APIVersion:    apiVersion,
		PhoneNumberID: phoneNumberID,
		AccessToken:   accessToken,
		Language:      "en",
		OTPTemplate:   "marmomart_otp_template",
		OrderTemplate: "marmomart_order_update",
		HTTPClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// recipient strips everything but digits; the API wants "919876543210".
func recipient(phone string) string {
	var b strings.Builder
	for _, r := range phone {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

func bodyParams(values ...string) []Component {
	params := make([]Parameter, 0, len(values))
	for _, v := range values {
		params = append(params, Parameter{Type: "text", Text: v})
	}
	return []Component{{Type: "body", Parameters: params}}
}

// SendTemplate sends the named template and returns the message id.
func (c *Client) SendTemplate(ctx context.Context, phone, template string, components []Component) (string, error) {
	requestData := SendTemplateRequest{
		MessagingProduct: "whatsapp",
		To:               recipient(phone),
		Type:             "template",
		Template: Template{
			Name:       template,
			Language:   Language{Code: c.Language},
			Components: components,
		},
	}

	jsonData, err := json.Marshal(requestData)
	if err != nil {
		return "", fmt.Errorf("failed to marshal request data: %w", err)
	}

	url := fmt.Sprintf("%s/%s/%s/messages", c.BaseURL, c.APIVersion, c.PhoneNumberID)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewBuffer(jsonData))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.AccessToken)

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read response: %w", err)
	}

	var response SendMessageResponse
	if err := json.Unmarshal(body, &response); err != nil {
		return "", fmt.Errorf("failed to parse response (status %d): %w", resp.StatusCode, err)
	}
	if resp.StatusCode >= 300 {
		if response.Error != nil && response.Error.Message != "" {
			return "", fmt.Errorf("whatsapp api error (status %d): %s", resp.StatusCode, response.Error.Message)
		}
		return "", fmt.Errorf("whatsapp api error: status %d", resp.StatusCode)
	}
	if len(response.Messages) == 0 {
		return "", fmt.Errorf("whatsapp api returned no message id")
	}
	return response.Messages[0].ID, nil
}

// SendOTP sends the login code template. It implements otp.Sender.
func (c *Client) SendOTP(ctx context.Context, phone, code string) error {
	_, err := c.SendTemplate(ctx, phone, c.OTPTemplate, bodyParams(code))
	return err
}

// SendOrderUpdate sends the order status template.
func (c *Client) SendOrderUpdate(ctx context.Context, phone, orderNumber, status string) error {
	_, err := c.SendTemplate(ctx, phone, c.OrderTemplate, bodyParams(orderNumber, status))
	return err
}

// LogSender writes messages to the log instead of sending them. Used when no
// Cloud API credentials are configured.
type LogSender struct{}

func (LogSender) SendOTP(_ context.Context, phone, code string) error {
	log.Printf("[whatsapp:dev] OTP for %s: %s", phone, code)
	return nil
}

func (LogSender) SendOrderUpdate(_ context.Context, phone, orderNumber, status string) error {
	log.Printf("[whatsapp:dev] order %s is now %s (to %s)", orderNumber, status, phone)
	return nil
}
