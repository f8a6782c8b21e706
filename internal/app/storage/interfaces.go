// Package storage defines persistence interfaces for off-chain records.
//
// All durable subscription and creator state lives on the ledger; the stores
// here hold only the backend's own bookkeeping (payment records, payment
// links, webhook events).
package storage

import (
	"context"
	"time"

	"github.com/bitreon-labs/bitreon/internal/app/domain/payment"
)

// PaymentStore persists payment records and payment links.
type PaymentStore interface {
	CreatePayment(ctx context.Context, p payment.Payment) (payment.Payment, error)
	UpdatePaymentStatus(ctx context.Context, id string, status payment.Status) (payment.Payment, error)
	GetPayment(ctx context.Context, id string) (payment.Payment, error)
	ListPaymentsBySubscriber(ctx context.Context, subscriber string) ([]payment.Payment, error)
	ListPaymentsByCreator(ctx context.Context, creatorID uint64) ([]payment.Payment, error)

	CreateLink(ctx context.Context, link payment.Link) (payment.Link, error)
	GetLink(ctx context.Context, id string) (payment.Link, error)
}

// WebhookEvent is one delivered event, kept for audit.
type WebhookEvent struct {
	ID         string                 `json:"id"`
	Event      string                 `json:"event"`
	Data       map[string]interface{} `json:"data,omitempty"`
	ReceivedAt time.Time              `json:"received_at"`
}

// EventStore records delivered webhook events.
type EventStore interface {
	AppendEvent(ctx context.Context, ev WebhookEvent) (WebhookEvent, error)
	ListEvents(ctx context.Context, limit int) ([]WebhookEvent, error)
}
