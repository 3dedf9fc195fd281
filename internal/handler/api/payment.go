package api

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"

	"stayhub/internal/domain/booking"
	"stayhub/internal/handler/httperr"
	"stayhub/internal/infra/payment"
	"stayhub/internal/usecase/commands"

	"github.com/gin-gonic/gin"
)

const maxWebhookBodyBytes = 64 << 10

// WebhookGateway is the slice of the payment gateway the webhook endpoint needs.
type WebhookGateway interface {
	ParseWebhook(payload []byte, signature string) (*payment.WebhookEvent, error)
	Refund(ctx context.Context, intentID string) error
}

type PaymentWebhookHandler struct {
	gateway     WebhookGateway
	transitions commands.TransitionCommands
}

func NewPaymentWebhookHandler(gateway WebhookGateway, transitions commands.TransitionCommands) *PaymentWebhookHandler {
	return &PaymentWebhookHandler{gateway: gateway, transitions: transitions}
}

// @Summary Payment webhook
// @Description Stripe webhook endpoint for payment intent events
// @Tags payments
// @Accept json
// @Success 200
// @Failure 400 {object} httperr.Response
// @Router /payments/webhook [post]
func (h *PaymentWebhookHandler) Handle(c *gin.Context) {
	body, err := io.ReadAll(io.LimitReader(c.Request.Body, maxWebhookBodyBytes))
	if err != nil {
		httperr.AbortWithError(c, http.StatusBadRequest, err, "Failed to read webhook payload", nil)
		return
	}

	event, err := h.gateway.ParseWebhook(body, c.GetHeader("Stripe-Signature"))
	if err != nil {
		if errors.Is(err, payment.ErrBadSignature) {
			httperr.AbortWithError(c, http.StatusBadRequest, err, "Invalid webhook signature", nil)
			return
		}
		httperr.AbortWithError(c, http.StatusBadRequest, err, "Malformed webhook payload", nil)
		return
	}
	if event == nil {
		// Not an event we track. Acknowledge so the gateway stops retrying.
		c.Status(http.StatusOK)
		return
	}

	switch event.Type {
	case payment.EventPaymentSucceeded:
		err = h.confirm(c, event)
	case payment.EventPaymentFailed:
		err = h.transitions.FailPayment(c.Request.Context(), event.BookingID, event.IntentID)
	}

	if err != nil {
		h.abortWebhookError(c, event, err)
		return
	}
	c.Status(http.StatusOK)
}

// confirm applies a successful payment. When the dates were taken by another
// paid booking in the meantime, the losing booking is marked failed and its
// intent refunded instead of confirming a double booking.
func (h *PaymentWebhookHandler) confirm(c *gin.Context, event *payment.WebhookEvent) error {
	err := h.transitions.ConfirmPayment(c.Request.Context(), event.BookingID, event.IntentID)
	if !errors.Is(err, commands.ErrBookingConflict) {
		return err
	}

	slog.Warn("payment confirmed for already-taken dates, failing booking and refunding",
		"booking_id", event.BookingID.String(),
		"intent_id", event.IntentID)

	if failErr := h.transitions.FailPayment(c.Request.Context(), event.BookingID, event.IntentID); failErr != nil {
		return failErr
	}
	if refundErr := h.gateway.Refund(c.Request.Context(), event.IntentID); refundErr != nil {
		slog.Warn("refund failed for conflicting payment",
			"booking_id", event.BookingID.String(),
			"intent_id", event.IntentID,
			"error", refundErr.Error())
	}
	return nil
}

// abortWebhookError acknowledges terminal outcomes with 200 so the gateway
// does not retry events that can never succeed, and returns 5xx only for
// transient failures worth retrying.
func (h *PaymentWebhookHandler) abortWebhookError(c *gin.Context, event *payment.WebhookEvent, err error) {
	switch {
	case errors.Is(err, commands.ErrBookingNotFound),
		errors.Is(err, commands.ErrIntentMismatch),
		errors.Is(err, booking.ErrInvalidTransition):
		slog.Warn("webhook event dropped",
			"type", event.Type,
			"booking_id", event.BookingID.String(),
			"error", err.Error())
		c.Status(http.StatusOK)
	case errors.Is(err, commands.ErrStoreUnavailable):
		httperr.AbortWithError(c, http.StatusServiceUnavailable, err, "Booking store temporarily unavailable", nil)
	default:
		httperr.AbortWithError(c, http.StatusInternalServerError, err, "Internal server error", nil)
	}
}
