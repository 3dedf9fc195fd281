package shared

import (
	"time"

	"stayhub/internal/domain/booking"

	"github.com/google/uuid"
)

type PropertySnapshot struct {
	ID               uuid.UUID
	HostID           uuid.UUID
	Name             string
	Capacity         int
	NightlyRateCents int64
}

type BookingSnapshot struct {
	ID              uuid.UUID
	PropertyID      uuid.UUID
	HostID          uuid.UUID
	UserID          uuid.UUID
	CheckIn         time.Time
	CheckOut        time.Time
	Guests          int
	AmountCents     int64
	Status          string
	PaymentStatus   string
	PaymentIntentID *string
	PaymentAttempts int
	CreatedAt       time.Time
	UpdatedAt       time.Time
	ConfirmedAt     *time.Time
}

// ToDomain rehydrates the aggregate so lifecycle transitions run through the
// entity methods rather than raw row updates.
func (s *BookingSnapshot) ToDomain() (*booking.Booking, error) {
	stay, err := booking.NewStayRange(s.CheckIn, s.CheckOut)
	if err != nil {
		return nil, err
	}
	amount, err := booking.NewMoney(s.AmountCents)
	if err != nil {
		return nil, err
	}
	return booking.ReconstructBooking(
		s.ID, s.PropertyID, s.HostID, s.UserID,
		stay, s.Guests, amount,
		booking.Status(s.Status), booking.PaymentStatus(s.PaymentStatus),
		s.PaymentIntentID, s.PaymentAttempts,
		s.CreatedAt, s.UpdatedAt, s.ConfirmedAt,
	)
}

type IdempotencyRecord struct {
	Key             uuid.UUID
	UserID          uuid.UUID
	Status          string
	RequestHash     string
	ResultBookingID *uuid.UUID
	ExpiresAt       time.Time
}

const (
	IdempotencyStatusProcessing = "processing"
	IdempotencyStatusCompleted  = "completed"
)
