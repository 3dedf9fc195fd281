package queries

import (
	"time"

	"github.com/google/uuid"
)

// Read models (DTO for read side)
type BookingView struct {
	ID              uuid.UUID  `json:"id"`
	PropertyID      uuid.UUID  `json:"property_id"`
	PropertyName    string     `json:"property_name"`
	HostID          uuid.UUID  `json:"host_id"`
	UserID          uuid.UUID  `json:"user_id"`
	CheckIn         time.Time  `json:"check_in"`
	CheckOut        time.Time  `json:"check_out"`
	Nights          int        `json:"nights"`
	Guests          int        `json:"guests"`
	AmountCents     int64      `json:"amount_cents"`
	Status          string     `json:"status"`
	PaymentStatus   string     `json:"payment_status"`
	PaymentIntentID *string    `json:"payment_intent_id,omitempty"`
	CreatedAt       time.Time  `json:"created_at"`
	UpdatedAt       time.Time  `json:"updated_at"`
	ConfirmedAt     *time.Time `json:"confirmed_at,omitempty"`
}

type BookingListItem struct {
	ID            uuid.UUID `json:"id"`
	PropertyID    uuid.UUID `json:"property_id"`
	PropertyName  string    `json:"property_name"`
	CheckIn       time.Time `json:"check_in"`
	CheckOut      time.Time `json:"check_out"`
	Status        string    `json:"status"`
	PaymentStatus string    `json:"payment_status"`
	AmountCents   int64     `json:"amount_cents"`
	CreatedAt     time.Time `json:"created_at"`
}

type PropertyView struct {
	ID               uuid.UUID `json:"id"`
	HostID           uuid.UUID `json:"host_id"`
	Name             string    `json:"name"`
	Capacity         int       `json:"capacity"`
	NightlyRateCents int64     `json:"nightly_rate_cents"`
	CreatedAt        time.Time `json:"created_at"`
	UpdatedAt        time.Time `json:"updated_at"`
}

// ConflictingStay exposes only the occupied range of a blocking booking, not
// whose booking it is.
type ConflictingStay struct {
	CheckIn  time.Time `json:"check_in"`
	CheckOut time.Time `json:"check_out"`
}

type AvailabilityResult struct {
	PropertyID uuid.UUID         `json:"property_id"`
	CheckIn    time.Time         `json:"check_in"`
	CheckOut   time.Time         `json:"check_out"`
	Available  bool              `json:"available"`
	Conflicts  []ConflictingStay `json:"conflicts,omitempty"`
}

type CalendarDay struct {
	Date      time.Time `json:"date"`
	Available bool      `json:"available"`
}

type PropertyCalendar struct {
	PropertyID uuid.UUID     `json:"property_id"`
	Month      string        `json:"month"`
	Days       []CalendarDay `json:"days"`
}
