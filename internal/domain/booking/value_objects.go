package booking

import (
	"errors"
	"fmt"
	"time"
)

const dateLayout = "2006-01-02"

// StayRange is a half-open date interval [checkIn, checkOut) at day
// granularity. Check-out day is never occupied, so back-to-back stays on the
// same property do not collide.
type StayRange struct {
	checkIn  time.Time
	checkOut time.Time
}

func NewStayRange(checkIn, checkOut time.Time) (StayRange, error) {
	in := truncateToDay(checkIn)
	out := truncateToDay(checkOut)

	if !out.After(in) {
		return StayRange{}, errors.New("check-out must be after check-in")
	}

	return StayRange{checkIn: in, checkOut: out}, nil
}

func (r StayRange) CheckIn() time.Time {
	return r.checkIn
}

func (r StayRange) CheckOut() time.Time {
	return r.checkOut
}

func (r StayRange) Nights() int {
	return int(r.checkOut.Sub(r.checkIn).Hours() / 24)
}

// Overlaps is the single overlap formulation for the whole codebase:
// a.start < b.end AND b.start < a.end. Touching ranges do not overlap.
func (r StayRange) Overlaps(other StayRange) bool {
	return r.checkIn.Before(other.checkOut) && other.checkIn.Before(r.checkOut)
}

func (r StayRange) Equal(other StayRange) bool {
	return r.checkIn.Equal(other.checkIn) && r.checkOut.Equal(other.checkOut)
}

// Dates expands the range into its occupied days (check-out day excluded).
func (r StayRange) Dates() []time.Time {
	dates := make([]time.Time, 0, r.Nights())
	for d := r.checkIn; d.Before(r.checkOut); d = d.AddDate(0, 0, 1) {
		dates = append(dates, d)
	}
	return dates
}

func (r StayRange) String() string {
	return fmt.Sprintf("[%s,%s)", r.checkIn.Format(dateLayout), r.checkOut.Format(dateLayout))
}

func (r StayRange) IsZero() bool {
	return r.checkIn.IsZero() && r.checkOut.IsZero()
}

func truncateToDay(t time.Time) time.Time {
	u := t.UTC()
	return time.Date(u.Year(), u.Month(), u.Day(), 0, 0, 0, 0, time.UTC)
}

type Money struct {
	cents int64
}

func NewMoney(cents int64) (Money, error) {
	if cents < 0 {
		return Money{}, ErrNegativeAmount
	}
	return Money{cents: cents}, nil
}

func (m Money) Cents() int64 {
	return m.cents
}
