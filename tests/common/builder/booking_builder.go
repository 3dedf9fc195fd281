//go:build unit || e2e

package builder

import (
	"time"

	dombooking "stayhub/internal/domain/booking"
	reqdto "stayhub/internal/handler/dto/request"
	"stayhub/internal/usecase/queries"
	"stayhub/internal/usecase/shared"

	"github.com/google/uuid"
)

type BookingBuilder struct {
	ID              uuid.UUID
	PropertyID      uuid.UUID
	PropertyName    string
	HostID          uuid.UUID
	UserID          uuid.UUID
	Stay            dombooking.StayRange
	Guests          int
	AmountCents     int64
	Status          dombooking.Status
	PaymentStatus   dombooking.PaymentStatus
	PaymentIntentID *string
	PaymentAttempts int
	CreatedAt       time.Time
	UpdatedAt       time.Time
	ConfirmedAt     *time.Time
}

func NewBookingBuilder() *BookingBuilder {
	now := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	stay, _ := dombooking.NewStayRange(
		time.Date(2024, 7, 10, 0, 0, 0, 0, time.UTC),
		time.Date(2024, 7, 15, 0, 0, 0, 0, time.UTC),
	)
	return &BookingBuilder{
		ID:            uuid.New(),
		PropertyID:    uuid.New(),
		PropertyName:  "Seaside Cottage",
		HostID:        uuid.New(),
		UserID:        uuid.New(),
		Stay:          stay,
		Guests:        2,
		AmountCents:   50000,
		Status:        dombooking.StatusPending,
		PaymentStatus: dombooking.PaymentPending,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
}

func (b *BookingBuilder) With(mutate func(*BookingBuilder)) *BookingBuilder {
	mutate(b)
	return b
}

// Build methods
func (b *BookingBuilder) BuildDomain() (*dombooking.Booking, error) {
	amount, err := dombooking.NewMoney(b.AmountCents)
	if err != nil {
		return nil, err
	}
	return dombooking.NewBooking(b.PropertyID, b.HostID, b.UserID, b.Stay, b.Guests, amount)
}

func (b *BookingBuilder) Reconstruct() (*dombooking.Booking, error) {
	amount, err := dombooking.NewMoney(b.AmountCents)
	if err != nil {
		return nil, err
	}
	return dombooking.ReconstructBooking(
		b.ID, b.PropertyID, b.HostID, b.UserID,
		b.Stay, b.Guests, amount,
		b.Status, b.PaymentStatus,
		b.PaymentIntentID, b.PaymentAttempts,
		b.CreatedAt, b.UpdatedAt, b.ConfirmedAt,
	)
}

func (b *BookingBuilder) BuildSnapshot() *shared.BookingSnapshot {
	return &shared.BookingSnapshot{
		ID:              b.ID,
		PropertyID:      b.PropertyID,
		HostID:          b.HostID,
		UserID:          b.UserID,
		CheckIn:         b.Stay.CheckIn(),
		CheckOut:        b.Stay.CheckOut(),
		Guests:          b.Guests,
		AmountCents:     b.AmountCents,
		Status:          string(b.Status),
		PaymentStatus:   string(b.PaymentStatus),
		PaymentIntentID: b.PaymentIntentID,
		PaymentAttempts: b.PaymentAttempts,
		CreatedAt:       b.CreatedAt,
		UpdatedAt:       b.UpdatedAt,
		ConfirmedAt:     b.ConfirmedAt,
	}
}

func (b *BookingBuilder) BuildHold() dombooking.Hold {
	return dombooking.Hold{
		BookingID:     b.ID,
		Stay:          b.Stay,
		Status:        b.Status,
		PaymentStatus: b.PaymentStatus,
	}
}

func (b *BookingBuilder) BuildCreateRequestDTO() reqdto.CreateBookingRequest {
	return reqdto.CreateBookingRequest{
		PropertyID: b.PropertyID,
		CheckIn:    b.Stay.CheckIn(),
		CheckOut:   b.Stay.CheckOut(),
		Guests:     b.Guests,
	}
}

func (b *BookingBuilder) BuildViewQuery() *queries.BookingView {
	return &queries.BookingView{
		ID:              b.ID,
		PropertyID:      b.PropertyID,
		PropertyName:    b.PropertyName,
		HostID:          b.HostID,
		UserID:          b.UserID,
		CheckIn:         b.Stay.CheckIn(),
		CheckOut:        b.Stay.CheckOut(),
		Nights:          b.Stay.Nights(),
		Guests:          b.Guests,
		AmountCents:     b.AmountCents,
		Status:          string(b.Status),
		PaymentStatus:   string(b.PaymentStatus),
		PaymentIntentID: b.PaymentIntentID,
		CreatedAt:       b.CreatedAt,
		UpdatedAt:       b.UpdatedAt,
		ConfirmedAt:     b.ConfirmedAt,
	}
}

func (b *BookingBuilder) BuildListItem() *queries.BookingListItem {
	return &queries.BookingListItem{
		ID:            b.ID,
		PropertyID:    b.PropertyID,
		PropertyName:  b.PropertyName,
		CheckIn:       b.Stay.CheckIn(),
		CheckOut:      b.Stay.CheckOut(),
		Status:        string(b.Status),
		PaymentStatus: string(b.PaymentStatus),
		AmountCents:   b.AmountCents,
		CreatedAt:     b.CreatedAt,
	}
}

// Fluent builder methods
func (b *BookingBuilder) WithID(id uuid.UUID) *BookingBuilder {
	b.ID = id
	return b
}

func (b *BookingBuilder) WithPropertyID(propertyID uuid.UUID) *BookingBuilder {
	b.PropertyID = propertyID
	return b
}

func (b *BookingBuilder) WithHostID(hostID uuid.UUID) *BookingBuilder {
	b.HostID = hostID
	return b
}

func (b *BookingBuilder) WithUserID(userID uuid.UUID) *BookingBuilder {
	b.UserID = userID
	return b
}

func (b *BookingBuilder) WithStay(checkIn, checkOut time.Time) *BookingBuilder {
	stay, _ := dombooking.NewStayRange(checkIn, checkOut)
	b.Stay = stay
	return b
}

func (b *BookingBuilder) WithGuests(guests int) *BookingBuilder {
	b.Guests = guests
	return b
}

func (b *BookingBuilder) WithAmountCents(cents int64) *BookingBuilder {
	b.AmountCents = cents
	return b
}

func (b *BookingBuilder) WithStatus(status dombooking.Status) *BookingBuilder {
	b.Status = status
	return b
}

func (b *BookingBuilder) WithPaymentStatus(ps dombooking.PaymentStatus) *BookingBuilder {
	b.PaymentStatus = ps
	return b
}

func (b *BookingBuilder) WithPaymentIntent(intentID string) *BookingBuilder {
	b.PaymentIntentID = &intentID
	return b
}

func (b *BookingBuilder) WithCreatedAt(createdAt time.Time) *BookingBuilder {
	b.CreatedAt = createdAt
	return b
}

func (b *BookingBuilder) AsConfirmed(confirmedAt time.Time) *BookingBuilder {
	b.Status = dombooking.StatusConfirmed
	b.PaymentStatus = dombooking.PaymentPaid
	b.PaymentAttempts = 1
	b.ConfirmedAt = &confirmedAt
	return b
}

func (b *BookingBuilder) AsPaymentPending() *BookingBuilder {
	b.Status = dombooking.StatusPaymentPending
	b.PaymentStatus = dombooking.PaymentPending
	b.PaymentAttempts = 1
	return b
}
