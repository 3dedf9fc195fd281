package api

import (
	"errors"
	"net/http"
	"time"

	"stayhub/internal/domain/booking"
	reqdto "stayhub/internal/handler/dto/request"
	resdto "stayhub/internal/handler/dto/response"
	"stayhub/internal/handler/httperr"
	"stayhub/internal/pkg/errs"
	"stayhub/internal/usecase/queries"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const dateLayout = "2006-01-02"

type AvailabilityHandler struct {
	q queries.AvailabilityQueries
}

func NewAvailabilityHandler(q queries.AvailabilityQueries) *AvailabilityHandler {
	return &AvailabilityHandler{q: q}
}

// @Summary Check availability
// @Description Check whether a property is free for a date range
// @Tags availability
// @Produce json
// @Param id path string true "Property ID"
// @Param check_in query string true "Check-in date (YYYY-MM-DD)"
// @Param check_out query string true "Check-out date (YYYY-MM-DD)"
// @Success 200 {object} resdto.AvailabilityResponse
// @Failure 400 {object} httperr.Response
// @Failure 404 {object} httperr.Response
// @Router /properties/{id}/availability [get]
func (h *AvailabilityHandler) Check(c *gin.Context) {
	propertyID, ok := h.pathPropertyID(c)
	if !ok {
		return
	}

	var q reqdto.AvailabilityQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		httperr.AbortWithError(c, http.StatusBadRequest, err, "check_in and check_out are required", nil)
		return
	}

	checkIn, err := time.ParseInLocation(dateLayout, q.CheckIn, time.UTC)
	if err != nil {
		httperr.AbortWithError(c, http.StatusBadRequest, err, "Invalid check_in date, expected YYYY-MM-DD", nil)
		return
	}
	checkOut, err := time.ParseInLocation(dateLayout, q.CheckOut, time.UTC)
	if err != nil {
		httperr.AbortWithError(c, http.StatusBadRequest, err, "Invalid check_out date, expected YYYY-MM-DD", nil)
		return
	}

	stay, err := booking.NewStayRange(checkIn, checkOut)
	if err != nil {
		httperr.AbortWithError(c, http.StatusBadRequest, err, "Check-out must be after check-in", nil)
		return
	}

	result, err := h.q.Check(c.Request.Context(), propertyID, stay)
	if err != nil {
		h.abortQueryError(c, err)
		return
	}
	c.JSON(http.StatusOK, resdto.FromAvailabilityResult(result))
}

// @Summary Monthly calendar
// @Description Per-day availability for a property over one month
// @Tags availability
// @Produce json
// @Param id path string true "Property ID"
// @Param month query string true "Month (YYYY-MM)"
// @Success 200 {object} resdto.CalendarResponse
// @Failure 400 {object} httperr.Response
// @Failure 404 {object} httperr.Response
// @Router /properties/{id}/calendar [get]
func (h *AvailabilityHandler) Calendar(c *gin.Context) {
	propertyID, ok := h.pathPropertyID(c)
	if !ok {
		return
	}

	var q reqdto.CalendarQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		httperr.AbortWithError(c, http.StatusBadRequest, err, "month is required", nil)
		return
	}

	cal, err := h.q.Calendar(c.Request.Context(), propertyID, q.Month)
	if err != nil {
		if errors.Is(err, errs.ErrInvalidStayRange) {
			httperr.AbortWithError(c, http.StatusBadRequest, err, "Invalid month, expected YYYY-MM", nil)
			return
		}
		h.abortQueryError(c, err)
		return
	}
	c.JSON(http.StatusOK, resdto.FromPropertyCalendar(cal))
}

func (h *AvailabilityHandler) abortQueryError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, queries.ErrPropertyNotFound):
		httperr.AbortWithError(c, http.StatusNotFound, err, "Property not found", nil)
	case errors.Is(err, errs.ErrStoreUnavailable):
		httperr.AbortWithError(c, http.StatusServiceUnavailable, err, "Availability data temporarily unavailable", nil)
	default:
		httperr.AbortWithError(c, http.StatusInternalServerError, err, "Internal server error", nil)
	}
}

func (h *AvailabilityHandler) pathPropertyID(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httperr.AbortWithError(c, http.StatusBadRequest, err, "Invalid property ID format", nil)
		return uuid.Nil, false
	}
	return id, true
}
