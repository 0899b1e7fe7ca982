package services

import (
	"encoding/json"
	"fmt"
	"log"
	"time"
)

// Routing keys of published domain events.
const (
	EventCheckoutCreated   = "checkout.created"
	EventCheckoutCompleted = "checkout.completed"
)

// EventPublisher delivers domain events to the message broker.
type EventPublisher interface {
	Publish(routingKey string, body []byte) error
}

// CheckoutEvent is the payload of checkout events.
type CheckoutEvent struct {
	OrderID        string    `json:"order_id"`
	UserID         string    `json:"user_id"`
	GatewayOrderID string    `json:"gateway_order_id"`
	PaymentID      string    `json:"payment_id,omitempty"`
	Amount         int64     `json:"amount"`
	Currency       string    `json:"currency"`
	CourseIDs      []string  `json:"course_ids"`
	OccurredAt     time.Time `json:"occurred_at"`
}

// HandleCheckoutEvent decodes a consumed checkout event and logs it.
func HandleCheckoutEvent(routingKey string, body []byte) error {
	var event CheckoutEvent
	if err := json.Unmarshal(body, &event); err != nil {
		return fmt.Errorf("failed to decode %s event: %w", routingKey, err)
	}
	if event.OrderID == "" {
		return fmt.Errorf("%s event without order id", routingKey)
	}
	log.Printf("Event %s: order %s user %s courses %v amount %d %s",
		routingKey, event.OrderID, event.UserID, event.CourseIDs, event.Amount, event.Currency)
	return nil
}
