package queries

import (
	"context"
	"time"

	"stayhub/internal/domain/booking"
	"stayhub/internal/infra"
	"stayhub/internal/pkg/errs"

	"github.com/google/uuid"
)

var ErrPropertyNotFound = errs.ErrPropertyNotFound

const monthLayout = "2006-01"

type AvailabilityReadStore interface {
	PropertyExists(ctx context.Context, propertyID uuid.UUID) (bool, error)
	// FindActiveHolds returns the non-cancelled bookings on the property
	// whose stay overlaps [from, to).
	FindActiveHolds(ctx context.Context, propertyID uuid.UUID, from, to time.Time) ([]booking.Hold, error)
}

type AvailabilityQueries interface {
	Check(ctx context.Context, propertyID uuid.UUID, stay booking.StayRange) (*AvailabilityResult, error)
	Calendar(ctx context.Context, propertyID uuid.UUID, month string) (*PropertyCalendar, error)
}

type availabilityQueriesImpl struct {
	repo AvailabilityReadStore
}

func NewAvailabilityQueries(repo AvailabilityReadStore) AvailabilityQueries {
	return &availabilityQueriesImpl{repo: repo}
}

// Check is a point-in-time answer, not a hold. The same overlap rules run
// again inside the booking transaction, so a stale answer here can never
// produce a double booking.
func (q *availabilityQueriesImpl) Check(ctx context.Context, propertyID uuid.UUID, stay booking.StayRange) (*AvailabilityResult, error) {
	if err := q.ensurePropertyExists(ctx, propertyID); err != nil {
		return nil, err
	}

	holds, err := q.repo.FindActiveHolds(ctx, propertyID, stay.CheckIn(), stay.CheckOut())
	if err != nil {
		return nil, err
	}

	conflicts := booking.FindConflicts(stay, holds)
	result := &AvailabilityResult{
		PropertyID: propertyID,
		CheckIn:    stay.CheckIn(),
		CheckOut:   stay.CheckOut(),
		Available:  len(conflicts) == 0,
	}
	for _, c := range conflicts {
		result.Conflicts = append(result.Conflicts, ConflictingStay{
			CheckIn:  c.Stay.CheckIn(),
			CheckOut: c.Stay.CheckOut(),
		})
	}
	return result, nil
}

// Calendar marks each day of the month taken by any non-cancelled
// reservation. Soft holds count here, unlike in Check: a guest browsing the
// month sees dates someone is mid-payment on as booked, while the conflict
// check still lets a competing booking race for them.
func (q *availabilityQueriesImpl) Calendar(ctx context.Context, propertyID uuid.UUID, month string) (*PropertyCalendar, error) {
	monthStart, err := time.ParseInLocation(monthLayout, month, time.UTC)
	if err != nil {
		return nil, errs.Mark(err, errs.ErrInvalidStayRange)
	}
	monthEnd := monthStart.AddDate(0, 1, 0)

	if err := q.ensurePropertyExists(ctx, propertyID); err != nil {
		return nil, err
	}

	holds, err := q.repo.FindActiveHolds(ctx, propertyID, monthStart, monthEnd)
	if err != nil {
		return nil, err
	}

	cal := &PropertyCalendar{
		PropertyID: propertyID,
		Month:      month,
		Days:       make([]CalendarDay, 0, 31),
	}
	for d := monthStart; d.Before(monthEnd); d = d.AddDate(0, 0, 1) {
		day, err := booking.NewStayRange(d, d.AddDate(0, 0, 1))
		if err != nil {
			return nil, err
		}
		cal.Days = append(cal.Days, CalendarDay{
			Date:      d,
			Available: !anyHoldCovers(day, holds),
		})
	}
	return cal, nil
}

func anyHoldCovers(day booking.StayRange, holds []booking.Hold) bool {
	for _, h := range holds {
		if h.Stay.Overlaps(day) {
			return true
		}
	}
	return false
}

func (q *availabilityQueriesImpl) ensurePropertyExists(ctx context.Context, propertyID uuid.UUID) error {
	exists, err := q.repo.PropertyExists(ctx, propertyID)
	if err != nil {
		if infra.IsKind(err, infra.KindUnavailable) {
			return errs.Mark(err, errs.ErrStoreUnavailable)
		}
		return err
	}
	if !exists {
		return ErrPropertyNotFound
	}
	return nil
}
