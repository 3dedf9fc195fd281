package response

import (
	"time"

	"stayhub/internal/usecase/queries"

	"github.com/google/uuid"
	"github.com/jinzhu/copier"
)

type BookingResponse struct {
	ID              uuid.UUID  `json:"id"`
	PropertyID      uuid.UUID  `json:"propertyId"`
	PropertyName    string     `json:"propertyName"`
	HostID          uuid.UUID  `json:"hostId"`
	UserID          uuid.UUID  `json:"userId"`
	CheckIn         time.Time  `json:"checkIn"`
	CheckOut        time.Time  `json:"checkOut"`
	Nights          int        `json:"nights"`
	Guests          int        `json:"guests"`
	AmountCents     int64      `json:"amountCents"`
	Status          string     `json:"status"`
	PaymentStatus   string     `json:"paymentStatus"`
	PaymentIntentID *string    `json:"paymentIntentId,omitempty"`
	CreatedAt       time.Time  `json:"createdAt"`
	UpdatedAt       time.Time  `json:"updatedAt"`
	ConfirmedAt     *time.Time `json:"confirmedAt,omitempty"`
}

type BookingListResponse struct {
	ID            uuid.UUID `json:"id"`
	PropertyID    uuid.UUID `json:"propertyId"`
	PropertyName  string    `json:"propertyName"`
	CheckIn       time.Time `json:"checkIn"`
	CheckOut      time.Time `json:"checkOut"`
	Status        string    `json:"status"`
	PaymentStatus string    `json:"paymentStatus"`
	AmountCents   int64     `json:"amountCents"`
	CreatedAt     time.Time `json:"createdAt"`
}

type BookingPageResponse struct {
	Items      []*BookingListResponse `json:"items"`
	NextCursor *string                `json:"nextCursor,omitempty"`
}

type PaymentRequestResponse struct {
	IntentID     string `json:"intentId"`
	ClientSecret string `json:"clientSecret"`
}

type ConflictingStayResponse struct {
	CheckIn  time.Time `json:"checkIn"`
	CheckOut time.Time `json:"checkOut"`
}

type AvailabilityResponse struct {
	PropertyID uuid.UUID                 `json:"propertyId"`
	CheckIn    time.Time                 `json:"checkIn"`
	CheckOut   time.Time                 `json:"checkOut"`
	Available  bool                      `json:"available"`
	Conflicts  []ConflictingStayResponse `json:"conflicts,omitempty"`
}

type CalendarDayResponse struct {
	Date      string `json:"date"`
	Available bool   `json:"available"`
}

type CalendarResponse struct {
	PropertyID uuid.UUID             `json:"propertyId"`
	Month      string                `json:"month"`
	Days       []CalendarDayResponse `json:"days"`
}

func FromBookingView(view *queries.BookingView) *BookingResponse {
	var resp BookingResponse
	_ = copier.Copy(&resp, view)
	return &resp
}

func FromBookingListItem(item *queries.BookingListItem) *BookingListResponse {
	var resp BookingListResponse
	_ = copier.Copy(&resp, item)
	return &resp
}

func FromBookingPage(items []*queries.BookingListItem, next *queries.Cursor) *BookingPageResponse {
	page := &BookingPageResponse{
		Items: make([]*BookingListResponse, len(items)),
	}
	for i, item := range items {
		page.Items[i] = FromBookingListItem(item)
	}
	if next != nil {
		page.NextCursor = &next.After
	}
	return page
}

func FromAvailabilityResult(result *queries.AvailabilityResult) *AvailabilityResponse {
	resp := &AvailabilityResponse{
		PropertyID: result.PropertyID,
		CheckIn:    result.CheckIn,
		CheckOut:   result.CheckOut,
		Available:  result.Available,
	}
	for _, c := range result.Conflicts {
		resp.Conflicts = append(resp.Conflicts, ConflictingStayResponse{
			CheckIn:  c.CheckIn,
			CheckOut: c.CheckOut,
		})
	}
	return resp
}

func FromPropertyCalendar(cal *queries.PropertyCalendar) *CalendarResponse {
	resp := &CalendarResponse{
		PropertyID: cal.PropertyID,
		Month:      cal.Month,
		Days:       make([]CalendarDayResponse, len(cal.Days)),
	}
	for i, d := range cal.Days {
		resp.Days[i] = CalendarDayResponse{
			Date:      d.Date.Format("2006-01-02"),
			Available: d.Available,
		}
	}
	return resp
}
