package booking

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

var (
	ErrInvalidStayRange  = errors.New("invalid stay range")
	ErrInvalidGuestCount = errors.New("guest count must be positive")
	ErrNegativeAmount    = errors.New("amount cannot be negative")
	ErrMissingHost       = errors.New("booking must reference a host")
	ErrInvalidTransition = errors.New("invalid lifecycle transition")
	ErrPaymentRetryLimit = errors.New("payment retry limit reached")
	ErrInvalidStatus     = errors.New("invalid booking status")
)

// maxPaymentAttempts bounds the payment_failed -> payment_pending retry path
// to a single retry.
const maxPaymentAttempts = 2

// Booking is the reservation aggregate. All status changes go through the
// transition methods below; nothing else mutates status or paymentStatus.
type Booking struct {
	id              uuid.UUID
	propertyID      uuid.UUID
	hostID          uuid.UUID
	userID          uuid.UUID
	stay            StayRange
	guests          int
	amount          Money
	status          Status
	paymentStatus   PaymentStatus
	paymentIntentID *string
	paymentAttempts int
	createdAt       time.Time
	updatedAt       time.Time
	confirmedAt     *time.Time
}

// NewBooking creates a booking in the initial pending state. hostID is
// resolved from the property once, here, and never changes afterwards.
func NewBooking(propertyID, hostID, userID uuid.UUID, stay StayRange, guests int, amount Money) (*Booking, error) {
	if stay.IsZero() {
		return nil, ErrInvalidStayRange
	}
	if guests <= 0 {
		return nil, ErrInvalidGuestCount
	}
	if hostID == uuid.Nil {
		return nil, ErrMissingHost
	}

	return &Booking{
		id:            uuid.New(),
		propertyID:    propertyID,
		hostID:        hostID,
		userID:        userID,
		stay:          stay,
		guests:        guests,
		amount:        amount,
		status:        StatusPending,
		paymentStatus: PaymentPending,
	}, nil
}

func ReconstructBooking(
	id, propertyID, hostID, userID uuid.UUID,
	stay StayRange,
	guests int,
	amount Money,
	status Status,
	paymentStatus PaymentStatus,
	paymentIntentID *string,
	paymentAttempts int,
	createdAt, updatedAt time.Time,
	confirmedAt *time.Time,
) (*Booking, error) {
	if !status.IsValid() || !paymentStatus.IsValid() {
		return nil, ErrInvalidStatus
	}
	return &Booking{
		id:              id,
		propertyID:      propertyID,
		hostID:          hostID,
		userID:          userID,
		stay:            stay,
		guests:          guests,
		amount:          amount,
		status:          status,
		paymentStatus:   paymentStatus,
		paymentIntentID: paymentIntentID,
		paymentAttempts: paymentAttempts,
		createdAt:       createdAt,
		updatedAt:       updatedAt,
		confirmedAt:     confirmedAt,
	}, nil
}

// RequestPayment moves the booking into payment_pending. Calling it on a
// booking that is already payment_pending is a no-op. From payment_failed it
// is allowed exactly once more (the retry path).
func (b *Booking) RequestPayment() error {
	if b.status == StatusPaymentPending {
		return nil
	}
	if !allowedFrom(ActionRequestPayment, b.status) {
		return ErrInvalidTransition
	}
	if b.paymentAttempts >= maxPaymentAttempts {
		return ErrPaymentRetryLimit
	}

	b.status = StatusPaymentPending
	b.paymentStatus = PaymentPending
	b.paymentAttempts++
	return nil
}

// ConfirmPayment is deliberately not idempotent: confirming anything other
// than a payment_pending booking fails loudly so a double-confirm from the
// gateway can never slip through.
func (b *Booking) ConfirmPayment(now time.Time) error {
	if !allowedFrom(ActionConfirmPayment, b.status) {
		return ErrInvalidTransition
	}

	b.status = StatusConfirmed
	b.paymentStatus = PaymentPaid
	t := now
	b.confirmedAt = &t
	return nil
}

func (b *Booking) FailPayment() error {
	if b.status == StatusPaymentFailed {
		return nil
	}
	if !allowedFrom(ActionFailPayment, b.status) {
		return ErrInvalidTransition
	}

	b.status = StatusPaymentFailed
	b.paymentStatus = PaymentFailed
	return nil
}

// Cancel is a terminal status, not a deletion. A paid booking that cancels
// moves its payment to refunded; the refund itself is the gateway's job.
func (b *Booking) Cancel() error {
	if b.status == StatusCancelled {
		return nil
	}
	if !allowedFrom(ActionCancel, b.status) {
		return ErrInvalidTransition
	}

	if b.paymentStatus == PaymentPaid {
		b.paymentStatus = PaymentRefunded
	}
	b.status = StatusCancelled
	return nil
}

func (b *Booking) Complete() error {
	if b.status == StatusCompleted {
		return nil
	}
	if !allowedFrom(ActionComplete, b.status) {
		return ErrInvalidTransition
	}

	b.status = StatusCompleted
	return nil
}

func (b *Booking) AttachPaymentIntent(intentID string) {
	b.paymentIntentID = &intentID
}

func (b *Booking) IsActive() bool {
	return b.status == StatusConfirmed
}

func (b *Booking) HasCheckedOut(now time.Time) bool {
	return !now.Before(b.stay.CheckOut())
}

func (b *Booking) ID() uuid.UUID                { return b.id }
func (b *Booking) PropertyID() uuid.UUID        { return b.propertyID }
func (b *Booking) HostID() uuid.UUID            { return b.hostID }
func (b *Booking) UserID() uuid.UUID            { return b.userID }
func (b *Booking) Stay() StayRange              { return b.stay }
func (b *Booking) Guests() int                  { return b.guests }
func (b *Booking) Amount() Money                { return b.amount }
func (b *Booking) Status() Status               { return b.status }
func (b *Booking) PaymentStatus() PaymentStatus { return b.paymentStatus }
func (b *Booking) PaymentIntentID() *string     { return b.paymentIntentID }
func (b *Booking) PaymentAttempts() int         { return b.paymentAttempts }
func (b *Booking) CreatedAt() time.Time         { return b.createdAt }
func (b *Booking) UpdatedAt() time.Time         { return b.updatedAt }
func (b *Booking) ConfirmedAt() *time.Time      { return b.confirmedAt }
