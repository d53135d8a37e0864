package events

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/fjod/go_checkout/internal/cart"
	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

// MessageReader is the part of kafka.Reader the clearer needs.
type MessageReader interface {
	ReadMessage(ctx context.Context) (kafka.Message, error)
	Close() error
}

// CartClearer listens for placed orders and erases every storage key the
// buyer's cart may live under, so other tabs and devices see an empty cart.
type CartClearer struct {
	reader MessageReader
	store  *cart.Store
	logger *zap.Logger
}

func NewCartClearer(store *cart.Store, logger *zap.Logger, topic string, brokers ...string) *CartClearer {
	if topic == "" {
		topic = DefaultTopic
	}
	reader := kafka.NewReader(kafka.ReaderConfig{
		Brokers:  brokers,
		Topic:    topic,
		GroupID:  defaultConsumerName,
		MaxBytes: 10e6, // 10MB
	})
	return NewCartClearerWithReader(reader, store, logger)
}

func NewCartClearerWithReader(reader MessageReader, store *cart.Store, logger *zap.Logger) *CartClearer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CartClearer{reader: reader, store: store, logger: logger}
}

func (c *CartClearer) Run(ctx context.Context) {
	for {
		if ctx.Err() != nil {
			return
		}
		c.handleNext(ctx)
	}
}

func (c *CartClearer) Close() {
	if err := c.reader.Close(); err != nil {
		c.logger.Warn("error closing reader", zap.Error(err))
	}
}

func (c *CartClearer) handleNext(ctx context.Context) {
	m, err := c.reader.ReadMessage(ctx)
	if err != nil {
		if !errors.Is(err, context.Canceled) {
			c.logger.Warn("error reading message", zap.Error(err))
		}
		return
	}

	if eventType(m) != OrderPlacedType {
		return
	}

	var event OrderPlaced
	if err := json.Unmarshal(m.Value, &event); err != nil {
		c.logger.Warn("error parsing message", zap.Error(err))
		return
	}
	if event.TenantID == "" && event.UserID == "" && event.CartKey == "" {
		c.logger.Warn("order placed event without identity", zap.String("event_id", event.EventID))
		return
	}

	c.Clear(ctx, event)
}

// Clear erases the carts named by event.
func (c *CartClearer) Clear(ctx context.Context, event OrderPlaced) {
	keys := cart.KeysFor(cart.Identity{
		TenantID: event.TenantID,
		OwnerID:  event.OwnerID,
		UserID:   event.UserID,
	}, c.store.SharedKey())

	if _, err := c.store.Clear(ctx, keys, event.CartKey); err != nil {
		c.logger.Warn("failed to clear cart",
			zap.String("event_id", event.EventID),
			zap.String("cart_key", event.CartKey),
			zap.Error(err))
		return
	}
	c.logger.Info("cart cleared after order",
		zap.String("event_id", event.EventID),
		zap.String("session_id", event.SessionID))
}

func eventType(m kafka.Message) string {
	for _, h := range m.Headers {
		if h.Key == EventTypeHeader {
			return string(h.Value)
		}
	}
	// untyped messages are treated as order events
	return OrderPlacedType
}
