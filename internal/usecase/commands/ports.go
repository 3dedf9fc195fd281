package commands

import (
	"context"

	"github.com/google/uuid"
)

// PaymentIntent is the write-side view of a created gateway intent.
type PaymentIntent struct {
	ID           string
	ClientSecret string
}

// PaymentGateway abstracts the payment provider so commands stay testable
// without network calls.
type PaymentGateway interface {
	CreateIntent(ctx context.Context, bookingID uuid.UUID, amountCents int64) (*PaymentIntent, error)
	Refund(ctx context.Context, intentID string) error
}
