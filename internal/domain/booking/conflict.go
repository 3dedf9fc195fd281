package booking

import "github.com/google/uuid"

// Hold is the slice of an existing reservation the conflict predicate needs.
type Hold struct {
	BookingID     uuid.UUID
	Stay          StayRange
	Status        Status
	PaymentStatus PaymentStatus
}

// Blocks reports whether this hold makes an overlapping candidate unbookable.
// Only payment-confirmed holds block: an unpaid pending or payment_pending
// booking is a soft hold and does not prevent others from booking the same
// dates. Whoever pays first wins.
func (h Hold) Blocks(candidate StayRange) bool {
	return h.PaymentStatus == PaymentPaid && h.Stay.Overlaps(candidate)
}

// FindConflicts returns the holds that block the candidate range, for use in
// conflict errors so callers can suggest alternatives.
func FindConflicts(candidate StayRange, holds []Hold) []Hold {
	var blocking []Hold
	for _, h := range holds {
		if h.Blocks(candidate) {
			blocking = append(blocking, h)
		}
	}
	return blocking
}

// IsAvailable is the boolean form of FindConflicts.
func IsAvailable(candidate StayRange, holds []Hold) bool {
	for _, h := range holds {
		if h.Blocks(candidate) {
			return false
		}
	}
	return true
}
