package request

import (
	"time"

	"stayhub/internal/usecase/commands"

	"github.com/google/uuid"
)

type CreateBookingRequest struct {
	PropertyID uuid.UUID `json:"property_id" binding:"required"`
	CheckIn    time.Time `json:"check_in" binding:"required"`
	CheckOut   time.Time `json:"check_out" binding:"required"`
	Guests     int       `json:"guests" binding:"required,min=1"`
}

func (r CreateBookingRequest) ToCommand() commands.CreateBookingRequest {
	return commands.CreateBookingRequest{
		PropertyID: r.PropertyID,
		CheckIn:    r.CheckIn,
		CheckOut:   r.CheckOut,
		Guests:     r.Guests,
	}
}

// AvailabilityQuery binds ?check_in=YYYY-MM-DD&check_out=YYYY-MM-DD.
type AvailabilityQuery struct {
	CheckIn  string `form:"check_in" binding:"required"`
	CheckOut string `form:"check_out" binding:"required"`
}

// CalendarQuery binds ?month=YYYY-MM.
type CalendarQuery struct {
	Month string `form:"month" binding:"required"`
}

type ListQuery struct {
	After string `form:"after"`
	Limit int    `form:"limit"`
}
