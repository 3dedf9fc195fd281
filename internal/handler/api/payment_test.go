//go:build unit

package api_test

import (
	"context"
	"errors"
	"net/http"
	nethttptest "net/http/httptest"
	"sync"
	"testing"

	"stayhub/internal/domain/booking"
	"stayhub/internal/handler/api"
	"stayhub/internal/infra/payment"
	"stayhub/internal/usecase/commands"
	"stayhub/tests/common/httptest"
	commandsmock "stayhub/tests/mock/commands"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"
)

// stubWebhookGateway replays a canned parse result and records refunds.
type stubWebhookGateway struct {
	mu       sync.Mutex
	event    *payment.WebhookEvent
	parseErr error
	refunds  []string
}

func (g *stubWebhookGateway) ParseWebhook(_ []byte, _ string) (*payment.WebhookEvent, error) {
	return g.event, g.parseErr
}

func (g *stubWebhookGateway) Refund(_ context.Context, intentID string) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.refunds = append(g.refunds, intentID)
	return nil
}

type PaymentWebhookTestSuite struct {
	suite.Suite
	router          *gin.Engine
	mockCtrl        *gomock.Controller
	mockTransitions *commandsmock.MockTransitionCommands
	gateway         *stubWebhookGateway
	bookingID       uuid.UUID
}

func (s *PaymentWebhookTestSuite) SetupTest() {
	gin.SetMode(gin.TestMode)
	s.router = gin.New()

	s.mockCtrl = gomock.NewController(s.T())
	s.mockTransitions = commandsmock.NewMockTransitionCommands(s.mockCtrl)
	s.gateway = &stubWebhookGateway{}
	s.bookingID = uuid.New()

	handler := api.NewPaymentWebhookHandler(s.gateway, s.mockTransitions)
	s.router.POST("/payments/webhook", handler.Handle)
}

func (s *PaymentWebhookTestSuite) TearDownTest() {
	s.mockCtrl.Finish()
}

func TestPaymentWebhookSuite(t *testing.T) {
	suite.Run(t, new(PaymentWebhookTestSuite))
}

func (s *PaymentWebhookTestSuite) post() *nethttptest.ResponseRecorder {
	rec := httptest.PerformRequestWithHeaders(s.T(), s.router, http.MethodPost, "/payments/webhook",
		map[string]any{"id": "evt_1"}, "", map[string]string{"Stripe-Signature": "t=1,v1=sig"})
	return rec
}

func (s *PaymentWebhookTestSuite) succeededEvent() *payment.WebhookEvent {
	return &payment.WebhookEvent{
		Type:      payment.EventPaymentSucceeded,
		BookingID: s.bookingID,
		IntentID:  "pi_123",
	}
}

func (s *PaymentWebhookTestSuite) TestHandle() {
	s.Run("success: confirms the booking on payment_intent.succeeded", func() {
		s.gateway.event = s.succeededEvent()
		s.mockTransitions.EXPECT().ConfirmPayment(gomock.Any(), s.bookingID, "pi_123").
			Return(nil).Times(1)

		rec := s.post()
		httptest.AssertSuccessResponse(s.T(), rec, http.StatusOK, nil)
		s.Empty(s.gateway.refunds)
	})

	s.Run("success: fails the booking on payment_intent.payment_failed", func() {
		s.gateway.event = &payment.WebhookEvent{
			Type:      payment.EventPaymentFailed,
			BookingID: s.bookingID,
			IntentID:  "pi_123",
		}
		s.mockTransitions.EXPECT().FailPayment(gomock.Any(), s.bookingID, "pi_123").
			Return(nil).Times(1)

		rec := s.post()
		httptest.AssertSuccessResponse(s.T(), rec, http.StatusOK, nil)
	})

	s.Run("conflict: losing payment is failed and refunded", func() {
		s.gateway.event = s.succeededEvent()
		s.mockTransitions.EXPECT().ConfirmPayment(gomock.Any(), s.bookingID, "pi_123").
			Return(commands.ErrBookingConflict).Times(1)
		s.mockTransitions.EXPECT().FailPayment(gomock.Any(), s.bookingID, "pi_123").
			Return(nil).Times(1)

		rec := s.post()
		httptest.AssertSuccessResponse(s.T(), rec, http.StatusOK, nil)
		s.Equal([]string{"pi_123"}, s.gateway.refunds)
	})

	s.Run("acknowledges terminal errors so the gateway stops retrying", func() {
		for _, terminalErr := range []error{
			commands.ErrBookingNotFound,
			commands.ErrIntentMismatch,
			booking.ErrInvalidTransition,
		} {
			s.gateway.event = s.succeededEvent()
			s.mockTransitions.EXPECT().ConfirmPayment(gomock.Any(), s.bookingID, "pi_123").
				Return(terminalErr).Times(1)

			rec := s.post()
			httptest.AssertSuccessResponse(s.T(), rec, http.StatusOK, nil)
		}
	})

	s.Run("transient store failure returns 503 to trigger a retry", func() {
		s.gateway.event = s.succeededEvent()
		s.mockTransitions.EXPECT().ConfirmPayment(gomock.Any(), s.bookingID, "pi_123").
			Return(commands.ErrStoreUnavailable).Times(1)

		rec := s.post()
		httptest.AssertErrorResponse(s.T(), rec, http.StatusServiceUnavailable, "")
	})

	s.Run("error: 400 Bad Request for a bad signature", func() {
		s.gateway.event = nil
		s.gateway.parseErr = payment.ErrBadSignature

		rec := s.post()
		httptest.AssertErrorResponse(s.T(), rec, http.StatusBadRequest, "signature")
		s.gateway.parseErr = nil
	})

	s.Run("error: 400 Bad Request for a malformed payload", func() {
		s.gateway.event = nil
		s.gateway.parseErr = errors.New("failed to parse webhook event")

		rec := s.post()
		httptest.AssertErrorResponse(s.T(), rec, http.StatusBadRequest, "Malformed webhook payload")
		s.gateway.parseErr = nil
	})

	s.Run("ignores events that are not ours", func() {
		s.gateway.event = nil

		rec := s.post()
		httptest.AssertSuccessResponse(s.T(), rec, http.StatusOK, nil)
	})
}
