package events

import (
	"context"
	"time"
)

const (
	DefaultTopic        = "checkout-events"
	EventTypeHeader     = "event_type"
	OrderPlacedType     = "order_placed"
	defaultConsumerName = "checkout-cart-clearer"
)

// OrderPlaced is published once an order submission has been accepted.
type OrderPlaced struct {
	EventID     string    `json:"event_id"`
	SessionID   string    `json:"session_id"`
	OrderID     string    `json:"order_id,omitempty"`
	OrderNumber string    `json:"order_number,omitempty"`
	ClientID    string    `json:"client_id"`
	TenantID    string    `json:"tenant_id"`
	OwnerID     string    `json:"owner_id,omitempty"`
	UserID      string    `json:"user_id"`
	CartKey     string    `json:"cart_key"`
	TotalAmount float64   `json:"total_amount"`
	ItemCount   int       `json:"item_count"`
	PlacedAt    time.Time `json:"placed_at"`
}

type Publisher interface {
	PublishOrderPlaced(ctx context.Context, event OrderPlaced) error
}

// NopPublisher drops every event. Used when no brokers are configured.
type NopPublisher struct{}

func (NopPublisher) PublishOrderPlaced(context.Context, OrderPlaced) error {
	return nil
}
