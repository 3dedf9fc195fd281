package readstore

import (
	"context"
	"time"

	"stayhub/internal/domain/booking"
	"stayhub/internal/infra/db"

	"github.com/google/uuid"
)

// AvailabilityReadStore composes the property and booking stores behind the
// read-side availability interface.
type AvailabilityReadStore struct {
	properties *PropertyReadStore
	bookings   *BookingReadStore
}

func NewAvailabilityReadStore(dbtx db.DBTX) *AvailabilityReadStore {
	return &AvailabilityReadStore{
		properties: NewPropertyReadStore(dbtx),
		bookings:   NewBookingReadStore(dbtx),
	}
}

func (r *AvailabilityReadStore) PropertyExists(ctx context.Context, propertyID uuid.UUID) (bool, error) {
	return r.properties.Exists(ctx, propertyID)
}

func (r *AvailabilityReadStore) FindActiveHolds(ctx context.Context, propertyID uuid.UUID, from, to time.Time) ([]booking.Hold, error) {
	return r.bookings.FindOverlapping(ctx, propertyID, from, to)
}
