package booking

type Status string

const (
	StatusPending        Status = "pending"
	StatusPaymentPending Status = "payment_pending"
	StatusConfirmed      Status = "confirmed"
	StatusCompleted      Status = "completed"
	StatusCancelled      Status = "cancelled"
	StatusPaymentFailed  Status = "payment_failed"
)

func (s Status) String() string {
	return string(s)
}

func (s Status) IsValid() bool {
	switch s {
	case StatusPending, StatusPaymentPending, StatusConfirmed,
		StatusCompleted, StatusCancelled, StatusPaymentFailed:
		return true
	default:
		return false
	}
}

// IsTerminal reports whether no further transitions are allowed, with the one
// exception that payment_failed admits a single payment retry (see
// Booking.RequestPayment).
func (s Status) IsTerminal() bool {
	switch s {
	case StatusCancelled, StatusCompleted, StatusPaymentFailed:
		return true
	default:
		return false
	}
}

type PaymentStatus string

const (
	PaymentPending  PaymentStatus = "pending"
	PaymentPaid     PaymentStatus = "paid"
	PaymentFailed   PaymentStatus = "failed"
	PaymentRefunded PaymentStatus = "refunded"
)

func (p PaymentStatus) String() string {
	return string(p)
}

func (p PaymentStatus) IsValid() bool {
	switch p {
	case PaymentPending, PaymentPaid, PaymentFailed, PaymentRefunded:
		return true
	default:
		return false
	}
}

// Action is a lifecycle transition request on a booking.
type Action string

const (
	ActionRequestPayment Action = "request_payment"
	ActionConfirmPayment Action = "confirm_payment"
	ActionFailPayment    Action = "fail_payment"
	ActionCancel         Action = "cancel"
	ActionComplete       Action = "complete"
)

func (a Action) IsValid() bool {
	switch a {
	case ActionRequestPayment, ActionConfirmPayment, ActionFailPayment,
		ActionCancel, ActionComplete:
		return true
	default:
		return false
	}
}

// transitions is the single source of truth for which statuses each action
// may fire from. Idempotent re-entry into the target state is handled by the
// entity methods, not listed here.
var transitions = map[Action][]Status{
	ActionRequestPayment: {StatusPending, StatusPaymentFailed},
	ActionConfirmPayment: {StatusPaymentPending},
	ActionFailPayment:    {StatusPaymentPending},
	ActionCancel:         {StatusPending, StatusPaymentPending, StatusConfirmed},
	ActionComplete:       {StatusConfirmed},
}

func allowedFrom(action Action, current Status) bool {
	for _, s := range transitions[action] {
		if s == current {
			return true
		}
	}
	return false
}
