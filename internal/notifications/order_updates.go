// Package notifications tells customers about order changes over WhatsApp.
package notifications

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"time"

	"marmomart/internal/repositories"
	"marmomart/internal/services"

	"github.com/streadway/amqp"
)

// OrderUpdateSender delivers the order update template. Implemented by
// *whatsapp.Client and whatsapp.LogSender.
type OrderUpdateSender interface {
	SendOrderUpdate(ctx context.Context, phone, orderNumber, status string) error
}

// OrderUpdates turns order.status_updated events into customer messages.
type OrderUpdates struct {
	accounts repositories.AccountRepository
	sender   OrderUpdateSender
	timeout  time.Duration
}

// NewOrderUpdates creates a new OrderUpdates handler.
func NewOrderUpdates(accounts repositories.AccountRepository, sender OrderUpdateSender) *OrderUpdates {
	return &OrderUpdates{
		accounts: accounts,
		sender:   sender,
		timeout:  30 * time.Second,
	}
}

// HandleDelivery is the rabbitmq consumer callback.
func (n *OrderUpdates) HandleDelivery(msg amqp.Delivery) error {
	ctx, cancel := context.WithTimeout(context.Background(), n.timeout)
	defer cancel()
	return n.Handle(ctx, msg.Body)
}

// Handle processes one JSON encoded services.OrderEvent. Malformed events and
// events for unknown accounts are dropped rather than retried.
func (n *OrderUpdates) Handle(ctx context.Context, body []byte) error {
	var event services.OrderEvent
	if err := json.Unmarshal(body, &event); err != nil {
		log.Printf("Dropping malformed order event: %v", err)
		return nil
	}
	if event.Event != services.EventOrderStatusUpdated {
		return nil
	}

	account, err := n.accounts.GetByID(ctx, event.UserID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			log.Printf("No account %s for order %s; skipping notification", event.UserID, event.OrderNumber)
			return nil
		}
		return fmt.Errorf("failed to load account for order %s: %w", event.OrderNumber, err)
	}

	status := string(event.Status)
	if event.PaymentStatus != "" {
		status = fmt.Sprintf("%s (payment %s)", event.Status, event.PaymentStatus)
	}
	if err := n.sender.SendOrderUpdate(ctx, account.Phone, event.OrderNumber, status); err != nil {
		return fmt.Errorf("failed to notify %s about order %s: %w", account.ID, event.OrderNumber, err)
	}
	log.Printf("Notified account %s: order %s is %s", account.ID, event.OrderNumber, status)
	return nil
}
