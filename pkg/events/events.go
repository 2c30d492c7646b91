// Package events defines the order event envelope and the publisher contract.
package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Routing keys for order events.
const (
	OrderCreated       = "order.created"
	OrderStatusUpdated = "order.status_updated"
)

const envelopeVersion = 1

// Envelope is the wire format of every published event.
type Envelope struct {
	Version    int             `json:"version"`
	EventID    string          `json:"eventId"`
	Type       string          `json:"type"`
	OccurredAt time.Time       `json:"occurredAt"`
	UserID     uuid.UUID       `json:"userId"`
	Data       json.RawMessage `json:"data"`
}

// NewEnvelope marshals data into a fresh envelope.
func NewEnvelope(eventType string, userID uuid.UUID, data any, now time.Time) (Envelope, error) {
	raw, err := json.Marshal(data)
	if err != nil {
		return Envelope{}, fmt.Errorf("marshal %s payload: %w", eventType, err)
	}
	return Envelope{
		Version:    envelopeVersion,
		EventID:    uuid.NewString(),
		Type:       eventType,
		OccurredAt: now.UTC(),
		UserID:     userID,
		Data:       raw,
	}, nil
}

// Publisher delivers envelopes to a broker.
type Publisher interface {
	Publish(ctx context.Context, env Envelope) error
	Close() error
}

// Noop drops every event. Used when no broker is configured.
type Noop struct{}

func (Noop) Publish(context.Context, Envelope) error { return nil }

func (Noop) Close() error { return nil }

// OrderCreatedData is the payload of OrderCreated.
type OrderCreatedData struct {
	OrderID       uuid.UUID `json:"orderId"`
	CartID        uuid.UUID `json:"cartId"`
	TotalItems    int       `json:"totalItems"`
	TotalQuantity int       `json:"totalQuantity"`
	TotalPrice    string    `json:"totalPrice"`
	Currency      string    `json:"currency"`
}

// OrderStatusUpdatedData is the payload of OrderStatusUpdated.
type OrderStatusUpdatedData struct {
	OrderID uuid.UUID `json:"orderId"`
	From    string    `json:"from"`
	To      string    `json:"to"`
}
