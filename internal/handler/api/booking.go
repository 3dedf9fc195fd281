package api

import (
	"errors"
	"net/http"

	"stayhub/internal/domain/booking"
	"stayhub/internal/domain/user"
	reqdto "stayhub/internal/handler/dto/request"
	resdto "stayhub/internal/handler/dto/response"
	"stayhub/internal/handler/httperr"
	"stayhub/internal/handler/middleware"
	"stayhub/internal/pkg/errs"
	"stayhub/internal/usecase/commands"
	"stayhub/internal/usecase/queries"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type BookingHandler struct {
	cmds        commands.BookingCommands
	transitions commands.TransitionCommands
	q           queries.BookingQueries
}

func NewBookingHandler(cmds commands.BookingCommands, transitions commands.TransitionCommands, q queries.BookingQueries) *BookingHandler {
	return &BookingHandler{cmds: cmds, transitions: transitions, q: q}
}

// @Summary Create booking
// @Description Create a new booking with idempotency key
// @Tags bookings
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param Idempotency-Key header string true "Idempotency key for duplicate prevention"
// @Param request body reqdto.CreateBookingRequest true "Booking request"
// @Success 201 {object} resdto.BookingResponse
// @Failure 400 {object} httperr.Response
// @Failure 401 {object} httperr.Response
// @Failure 404 {object} httperr.Response
// @Failure 409 {object} httperr.Response
// @Failure 422 {object} httperr.Response
// @Router /bookings [post]
func (h *BookingHandler) Create(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		httperr.AbortWithError(c, http.StatusUnauthorized, errs.New("missing user context"), "Unauthorized", nil)
		return
	}

	idempotencyKey, err := getIdempotencyKey(c)
	if err != nil {
		httperr.AbortWithError(c, http.StatusBadRequest, err, err.Error(), nil)
		return
	}

	var req reqdto.CreateBookingRequest
	if bindErr := c.ShouldBindJSON(&req); bindErr != nil {
		httperr.AbortWithError(c, http.StatusBadRequest, bindErr, "Invalid request format", nil)
		return
	}

	result, err := h.cmds.CreateBooking(c.Request.Context(), req.ToCommand(), userID, idempotencyKey)
	if err != nil {
		h.abortCreateError(c, err)
		return
	}

	status := http.StatusCreated
	if result.IsReplayed {
		status = http.StatusOK
	}
	c.JSON(status, resdto.FromBookingView(result.Booking))
}

func (h *BookingHandler) abortCreateError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, commands.ErrPropertyNotFound):
		httperr.AbortWithError(c, http.StatusNotFound, err, "Property not found", nil)
	case errors.Is(err, errs.ErrInvalidStayRange):
		httperr.AbortWithError(c, http.StatusBadRequest, err, "Check-out must be after check-in", nil)
	case errors.Is(err, booking.ErrInvalidGuestCount), errors.Is(err, commands.ErrGuestsExceedCapacity):
		httperr.AbortWithError(c, http.StatusUnprocessableEntity, err, "Invalid guest count for property", nil)
	case errors.Is(err, commands.ErrBookingConflict):
		httperr.AbortWithError(c, http.StatusConflict, err, "Requested dates are no longer available", nil)
	case errors.Is(err, commands.ErrDuplicateBooking):
		httperr.AbortWithError(c, http.StatusConflict, err, "A pending booking for these dates already exists", nil)
	case errors.Is(err, commands.ErrBookingInProgress):
		httperr.AbortWithError(c, http.StatusConflict, err, "Booking request is currently being processed", nil)
	case errors.Is(err, commands.ErrIdempotencyKeyReused):
		httperr.AbortWithError(c, http.StatusUnprocessableEntity, err, "Idempotency key was already used with a different request", nil)
	case errors.Is(err, commands.ErrStoreUnavailable):
		httperr.AbortWithError(c, http.StatusServiceUnavailable, err, "Booking store temporarily unavailable", nil)
	default:
		httperr.AbortWithError(c, http.StatusInternalServerError, err, "Internal server error", nil)
	}
}

// @Summary Get booking
// @Description Get booking by ID (guest, host, or admin)
// @Tags bookings
// @Produce json
// @Security BearerAuth
// @Param id path string true "Booking ID"
// @Success 200 {object} resdto.BookingResponse
// @Failure 400 {object} httperr.Response
// @Failure 403 {object} httperr.Response
// @Failure 404 {object} httperr.Response
// @Router /bookings/{id} [get]
func (h *BookingHandler) Get(c *gin.Context) {
	id, actorID, role, ok := h.pathActor(c)
	if !ok {
		return
	}

	view, err := h.q.GetByID(c.Request.Context(), actorID, role.String(), id)
	if err != nil {
		switch {
		case errors.Is(err, queries.ErrBookingNotFound):
			httperr.AbortWithError(c, http.StatusNotFound, err, "Booking not found", nil)
		case errors.Is(err, queries.ErrBookingAccess):
			httperr.AbortWithError(c, http.StatusForbidden, err, "Not allowed to view this booking", nil)
		default:
			httperr.AbortWithError(c, http.StatusInternalServerError, err, "Internal server error", nil)
		}
		return
	}
	c.JSON(http.StatusOK, resdto.FromBookingView(view))
}

// @Summary List own bookings
// @Description List the current user's bookings, newest first
// @Tags bookings
// @Produce json
// @Security BearerAuth
// @Param after query string false "Pagination cursor"
// @Param limit query int false "Page size"
// @Success 200 {object} resdto.BookingPageResponse
// @Router /bookings [get]
func (h *BookingHandler) ListMine(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		httperr.AbortWithError(c, http.StatusUnauthorized, errs.New("missing user context"), "Unauthorized", nil)
		return
	}

	var q reqdto.ListQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		httperr.AbortWithError(c, http.StatusBadRequest, err, "Invalid query parameters", nil)
		return
	}

	items, next, err := h.q.ListByUser(c.Request.Context(), userID, &queries.Cursor{After: q.After}, q.Limit)
	if err != nil {
		h.abortListError(c, err)
		return
	}
	c.JSON(http.StatusOK, resdto.FromBookingPage(items, next))
}

// @Summary List host bookings
// @Description List bookings across the host's properties, newest first
// @Tags bookings
// @Produce json
// @Security BearerAuth
// @Param after query string false "Pagination cursor"
// @Param limit query int false "Page size"
// @Success 200 {object} resdto.BookingPageResponse
// @Router /bookings/host [get]
func (h *BookingHandler) ListForHost(c *gin.Context) {
	hostID, ok := middleware.GetUserID(c)
	if !ok {
		httperr.AbortWithError(c, http.StatusUnauthorized, errs.New("missing user context"), "Unauthorized", nil)
		return
	}

	var q reqdto.ListQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		httperr.AbortWithError(c, http.StatusBadRequest, err, "Invalid query parameters", nil)
		return
	}

	items, next, err := h.q.ListByHost(c.Request.Context(), hostID, &queries.Cursor{After: q.After}, q.Limit)
	if err != nil {
		h.abortListError(c, err)
		return
	}
	c.JSON(http.StatusOK, resdto.FromBookingPage(items, next))
}

func (h *BookingHandler) abortListError(c *gin.Context, err error) {
	if errors.Is(err, queries.ErrInvalidCursor) {
		httperr.AbortWithError(c, http.StatusBadRequest, err, "Invalid pagination cursor", nil)
		return
	}
	httperr.AbortWithError(c, http.StatusInternalServerError, err, "Internal server error", nil)
}

// @Summary Request payment
// @Description Move a pending booking to payment_pending and create a payment intent
// @Tags bookings
// @Produce json
// @Security BearerAuth
// @Param id path string true "Booking ID"
// @Success 200 {object} resdto.PaymentRequestResponse
// @Failure 403 {object} httperr.Response
// @Failure 404 {object} httperr.Response
// @Failure 409 {object} httperr.Response
// @Failure 422 {object} httperr.Response
// @Router /bookings/{id}/request-payment [post]
func (h *BookingHandler) RequestPayment(c *gin.Context) {
	id, actorID, _, ok := h.pathActor(c)
	if !ok {
		return
	}

	result, err := h.transitions.RequestPayment(c.Request.Context(), id, actorID)
	if err != nil {
		h.abortTransitionError(c, err)
		return
	}
	c.JSON(http.StatusOK, &resdto.PaymentRequestResponse{
		IntentID:     result.IntentID,
		ClientSecret: result.ClientSecret,
	})
}

// @Summary Cancel booking
// @Description Cancel a booking; paid bookings are refunded
// @Tags bookings
// @Produce json
// @Security BearerAuth
// @Param id path string true "Booking ID"
// @Success 200 {object} resdto.BookingResponse
// @Failure 403 {object} httperr.Response
// @Failure 404 {object} httperr.Response
// @Failure 409 {object} httperr.Response
// @Router /bookings/{id}/cancel [post]
func (h *BookingHandler) Cancel(c *gin.Context) {
	id, actorID, role, ok := h.pathActor(c)
	if !ok {
		return
	}

	if err := h.transitions.Cancel(c.Request.Context(), id, actorID, role.String()); err != nil {
		h.abortTransitionError(c, err)
		return
	}
	h.respondWithView(c, id)
}

// @Summary Complete booking
// @Description Mark a confirmed, checked-out booking as completed (host or admin)
// @Tags bookings
// @Produce json
// @Security BearerAuth
// @Param id path string true "Booking ID"
// @Success 200 {object} resdto.BookingResponse
// @Failure 403 {object} httperr.Response
// @Failure 404 {object} httperr.Response
// @Failure 409 {object} httperr.Response
// @Router /bookings/{id}/complete [post]
func (h *BookingHandler) Complete(c *gin.Context) {
	id, actorID, role, ok := h.pathActor(c)
	if !ok {
		return
	}

	if err := h.transitions.Complete(c.Request.Context(), id, actorID, role.String()); err != nil {
		h.abortTransitionError(c, err)
		return
	}
	h.respondWithView(c, id)
}

func (h *BookingHandler) abortTransitionError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, commands.ErrBookingNotFound):
		httperr.AbortWithError(c, http.StatusNotFound, err, "Booking not found", nil)
	case errors.Is(err, commands.ErrForbidden):
		httperr.AbortWithError(c, http.StatusForbidden, err, "Not allowed to act on this booking", nil)
	case errors.Is(err, booking.ErrInvalidTransition):
		httperr.AbortWithError(c, http.StatusConflict, err, "Booking is not in a state that allows this action", nil)
	case errors.Is(err, booking.ErrPaymentRetryLimit):
		httperr.AbortWithError(c, http.StatusUnprocessableEntity, err, "Payment retry limit reached", nil)
	case errors.Is(err, commands.ErrStayNotEnded):
		httperr.AbortWithError(c, http.StatusConflict, err, "Stay has not ended yet", nil)
	case errors.Is(err, commands.ErrBookingConflict):
		httperr.AbortWithError(c, http.StatusConflict, err, "Requested dates are no longer available", nil)
	case errors.Is(err, commands.ErrStoreUnavailable):
		httperr.AbortWithError(c, http.StatusServiceUnavailable, err, "Booking store temporarily unavailable", nil)
	default:
		httperr.AbortWithError(c, http.StatusInternalServerError, err, "Internal server error", nil)
	}
}

func (h *BookingHandler) respondWithView(c *gin.Context, id uuid.UUID) {
	view, err := h.q.GetByIDSystem(c.Request.Context(), id)
	if err != nil {
		httperr.AbortWithError(c, http.StatusInternalServerError, err, "Failed to load booking", nil)
		return
	}
	c.JSON(http.StatusOK, resdto.FromBookingView(view))
}

func (h *BookingHandler) pathActor(c *gin.Context) (uuid.UUID, uuid.UUID, user.Role, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httperr.AbortWithError(c, http.StatusBadRequest, err, "Invalid booking ID format", nil)
		return uuid.Nil, uuid.Nil, "", false
	}
	actorID, ok := middleware.GetUserID(c)
	if !ok {
		httperr.AbortWithError(c, http.StatusUnauthorized, errs.New("missing user context"), "Unauthorized", nil)
		return uuid.Nil, uuid.Nil, "", false
	}
	role, ok := middleware.GetUserRole(c)
	if !ok {
		httperr.AbortWithError(c, http.StatusUnauthorized, errs.New("missing role context"), "Unauthorized", nil)
		return uuid.Nil, uuid.Nil, "", false
	}
	return id, actorID, role, true
}

func getIdempotencyKey(c *gin.Context) (uuid.UUID, error) {
	keyStr := c.GetHeader("Idempotency-Key")
	if keyStr == "" {
		return uuid.Nil, errs.ErrIdempotencyKeyRequired
	}

	key, err := uuid.Parse(keyStr)
	if err != nil {
		return uuid.Nil, errs.New("invalid idempotency key format")
	}

	return key, nil
}
