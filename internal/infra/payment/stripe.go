package payment

import (
	"context"
	"errors"

	"stayhub/internal/pkg/config"
	"stayhub/internal/pkg/errs"
	"stayhub/internal/usecase/commands"

	"github.com/google/uuid"
	"github.com/stripe/stripe-go/v76"
	"github.com/stripe/stripe-go/v76/paymentintent"
	"github.com/stripe/stripe-go/v76/refund"
	"github.com/stripe/stripe-go/v76/webhook"
)

var (
	ErrIntentCreation = errs.New("failed to create payment intent")
	ErrRefundFailed   = errs.New("failed to refund payment")
	ErrBadSignature   = errs.New("invalid webhook signature")
)

const metadataBookingID = "booking_id"

// StripeGateway fronts the Stripe API. The package-level stripe.Key is set
// once at startup from config.
type StripeGateway struct {
	currency      string
	webhookSecret string
}

func NewStripeGateway(cfg config.StripeConfig) *StripeGateway {
	stripe.Key = cfg.SecretKey
	return &StripeGateway{
		currency:      cfg.Currency,
		webhookSecret: cfg.WebhookSecret,
	}
}

func (g *StripeGateway) CreateIntent(_ context.Context, bookingID uuid.UUID, amountCents int64) (*commands.PaymentIntent, error) {
	params := &stripe.PaymentIntentParams{
		Amount:   stripe.Int64(amountCents),
		Currency: stripe.String(g.currency),
		AutomaticPaymentMethods: &stripe.PaymentIntentAutomaticPaymentMethodsParams{
			Enabled: stripe.Bool(true),
		},
	}
	params.AddMetadata(metadataBookingID, bookingID.String())

	pi, err := paymentintent.New(params)
	if err != nil {
		return nil, errs.Mark(err, ErrIntentCreation)
	}

	return &commands.PaymentIntent{ID: pi.ID, ClientSecret: pi.ClientSecret}, nil
}

func (g *StripeGateway) Refund(_ context.Context, intentID string) error {
	_, err := refund.New(&stripe.RefundParams{
		PaymentIntent: stripe.String(intentID),
	})
	if err != nil {
		return errs.Mark(err, ErrRefundFailed)
	}
	return nil
}

// WebhookEvent is the gateway-neutral shape handed to the transition layer.
type WebhookEvent struct {
	Type      string
	BookingID uuid.UUID
	IntentID  string
}

const (
	EventPaymentSucceeded = "payment_intent.succeeded"
	EventPaymentFailed    = "payment_intent.payment_failed"
)

// ParseWebhook verifies the signature and extracts the booking reference from
// the intent metadata. Events without a booking_id are not ours and come back
// with a nil event, no error.
func (g *StripeGateway) ParseWebhook(payload []byte, signature string) (*WebhookEvent, error) {
	event, err := webhook.ConstructEvent(payload, signature, g.webhookSecret)
	if err != nil {
		if isSignatureErr(err) {
			return nil, errs.Mark(err, ErrBadSignature)
		}
		return nil, errs.Wrap(err, "failed to parse webhook event")
	}

	switch event.Type {
	case EventPaymentSucceeded, EventPaymentFailed:
	default:
		return nil, nil
	}

	var pi stripe.PaymentIntent
	if err := pi.UnmarshalJSON(event.Data.Raw); err != nil {
		return nil, errs.Wrap(err, "failed to decode payment intent payload")
	}

	raw, ok := pi.Metadata[metadataBookingID]
	if !ok {
		return nil, nil
	}
	bookingID, err := uuid.Parse(raw)
	if err != nil {
		return nil, errs.Wrap(err, "malformed booking id in intent metadata")
	}

	return &WebhookEvent{
		Type:      string(event.Type),
		BookingID: bookingID,
		IntentID:  pi.ID,
	}, nil
}

// ConstructEvent verifies the signature before it touches the body, so only
// its signature sentinels count as signature failures. Everything else is a
// payload problem.
func isSignatureErr(err error) bool {
	return errors.Is(err, webhook.ErrNotSigned) ||
		errors.Is(err, webhook.ErrInvalidHeader) ||
		errors.Is(err, webhook.ErrNoValidSignature) ||
		errors.Is(err, webhook.ErrTooOld)
}
