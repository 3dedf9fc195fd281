package commands

import (
	"context"
	"log/slog"

	"stayhub/internal/domain/booking"
	"stayhub/internal/domain/user"
	"stayhub/internal/infra"
	"stayhub/internal/pkg/clock"
	"stayhub/internal/pkg/errs"
	"stayhub/internal/usecase/shared"

	"github.com/google/uuid"
)

var (
	ErrForbidden      = errs.ErrForbidden
	ErrIntentMismatch = errs.New("payment intent does not match booking")
	ErrStayNotEnded   = errs.New("stay has not ended yet")
)

type RequestPaymentResult struct {
	IntentID     string
	ClientSecret string
}

type TransitionCommands interface {
	RequestPayment(ctx context.Context, bookingID, actorID uuid.UUID) (*RequestPaymentResult, error)
	ConfirmPayment(ctx context.Context, bookingID uuid.UUID, intentID string) error
	FailPayment(ctx context.Context, bookingID uuid.UUID, intentID string) error
	Cancel(ctx context.Context, bookingID, actorID uuid.UUID, actorRole string) error
	Complete(ctx context.Context, bookingID, actorID uuid.UUID, actorRole string) error
	// CompleteSystem is the sweep path: no actor check, same lifecycle rules.
	CompleteSystem(ctx context.Context, bookingID uuid.UUID) error
}

type transitionUseCaseImpl struct {
	uow     shared.UnitOfWork
	gateway PaymentGateway
	clock   clock.Clock
}

func NewTransitionUseCase(uow shared.UnitOfWork, gateway PaymentGateway, clk clock.Clock) TransitionCommands {
	return &transitionUseCaseImpl{
		uow:     uow,
		gateway: gateway,
		clock:   clk,
	}
}

// RequestPayment creates the gateway intent before the transaction. A failed
// transaction leaves an unconfirmed intent behind at the gateway, which is
// harmless; the reverse order would leave a payment_pending booking nothing
// can pay for.
func (uc *transitionUseCaseImpl) RequestPayment(ctx context.Context, bookingID, actorID uuid.UUID) (*RequestPaymentResult, error) {
	snap, err := uc.readBooking(ctx, uc.uow.CommandReads(), bookingID)
	if err != nil {
		return nil, err
	}
	if snap.UserID != actorID {
		return nil, ErrForbidden
	}

	// Dry-run the transition on the snapshot so obviously invalid requests
	// never reach the gateway.
	probe, err := snap.ToDomain()
	if err != nil {
		return nil, err
	}
	if err := probe.RequestPayment(); err != nil {
		return nil, err
	}

	intent, err := uc.gateway.CreateIntent(ctx, bookingID, snap.AmountCents)
	if err != nil {
		return nil, err
	}

	err = uc.uow.Within(ctx, func(ctx context.Context, tx shared.Tx) error {
		b, err := uc.rehydrate(ctx, tx, bookingID)
		if err != nil {
			return err
		}
		if err := b.RequestPayment(); err != nil {
			return err
		}
		b.AttachPaymentIntent(intent.ID)

		if err := uc.persist(ctx, tx, b); err != nil {
			return err
		}
		return createBookingNotification(ctx, tx, uc.clock.Now(), "payment_requested", bookingID)
	})
	if err != nil {
		return nil, err
	}

	return &RequestPaymentResult{IntentID: intent.ID, ClientSecret: intent.ClientSecret}, nil
}

// ConfirmPayment is invoked from the gateway webhook. The exclusion
// constraint fires here when another paid booking took the dates first, so
// the loser of a payment race surfaces as a conflict, never as a silent
// double booking.
func (uc *transitionUseCaseImpl) ConfirmPayment(ctx context.Context, bookingID uuid.UUID, intentID string) error {
	return uc.uow.Within(ctx, func(ctx context.Context, tx shared.Tx) error {
		b, err := uc.rehydrate(ctx, tx, bookingID)
		if err != nil {
			return err
		}
		if err := matchIntent(b, intentID); err != nil {
			return err
		}
		if err := b.ConfirmPayment(uc.clock.Now()); err != nil {
			return err
		}
		if err := uc.persist(ctx, tx, b); err != nil {
			return err
		}
		return createBookingNotification(ctx, tx, uc.clock.Now(), "booking_confirmed", bookingID)
	})
}

func (uc *transitionUseCaseImpl) FailPayment(ctx context.Context, bookingID uuid.UUID, intentID string) error {
	return uc.uow.Within(ctx, func(ctx context.Context, tx shared.Tx) error {
		b, err := uc.rehydrate(ctx, tx, bookingID)
		if err != nil {
			return err
		}
		if err := matchIntent(b, intentID); err != nil {
			return err
		}
		if err := b.FailPayment(); err != nil {
			return err
		}
		if err := uc.persist(ctx, tx, b); err != nil {
			return err
		}
		return createBookingNotification(ctx, tx, uc.clock.Now(), "payment_failed", bookingID)
	})
}

func (uc *transitionUseCaseImpl) Cancel(ctx context.Context, bookingID, actorID uuid.UUID, actorRole string) error {
	var refundIntent *string

	err := uc.uow.Within(ctx, func(ctx context.Context, tx shared.Tx) error {
		b, err := uc.rehydrate(ctx, tx, bookingID)
		if err != nil {
			return err
		}
		if !canManage(b, actorID, actorRole) {
			return ErrForbidden
		}

		wasPaid := b.PaymentStatus() == booking.PaymentPaid
		if err := b.Cancel(); err != nil {
			return err
		}
		if wasPaid {
			refundIntent = b.PaymentIntentID()
		}

		if err := uc.persist(ctx, tx, b); err != nil {
			return err
		}
		return createBookingNotification(ctx, tx, uc.clock.Now(), "booking_cancelled", bookingID)
	})
	if err != nil {
		return err
	}

	// The refund runs after commit: the cancellation must not be held
	// hostage by the gateway. Failures are retried out of band.
	if refundIntent != nil {
		if err := uc.gateway.Refund(ctx, *refundIntent); err != nil {
			slog.Warn("refund failed after cancellation",
				"booking_id", bookingID.String(),
				"intent_id", *refundIntent,
				"error", err.Error())
		}
	}
	return nil
}

// Complete is host- or admin-only; guests do not close out their own stays.
func (uc *transitionUseCaseImpl) Complete(ctx context.Context, bookingID, actorID uuid.UUID, actorRole string) error {
	return uc.complete(ctx, bookingID, func(b *booking.Booking) error {
		if actorRole == user.RoleAdmin.String() || b.HostID() == actorID {
			return nil
		}
		return ErrForbidden
	})
}

func (uc *transitionUseCaseImpl) CompleteSystem(ctx context.Context, bookingID uuid.UUID) error {
	return uc.complete(ctx, bookingID, func(*booking.Booking) error { return nil })
}

func (uc *transitionUseCaseImpl) complete(ctx context.Context, bookingID uuid.UUID, authorize func(*booking.Booking) error) error {
	return uc.uow.Within(ctx, func(ctx context.Context, tx shared.Tx) error {
		b, err := uc.rehydrate(ctx, tx, bookingID)
		if err != nil {
			return err
		}
		if err := authorize(b); err != nil {
			return err
		}
		if b.Status() == booking.StatusCompleted {
			return nil
		}
		if !b.HasCheckedOut(uc.clock.Now()) {
			return ErrStayNotEnded
		}
		if err := b.Complete(); err != nil {
			return err
		}
		if err := uc.persist(ctx, tx, b); err != nil {
			return err
		}
		return createBookingNotification(ctx, tx, uc.clock.Now(), "booking_completed", bookingID)
	})
}

func (uc *transitionUseCaseImpl) readBooking(ctx context.Context, reads shared.CommandReads, bookingID uuid.UUID) (*shared.BookingSnapshot, error) {
	snap, err := reads.BookingByID(ctx, bookingID)
	if err != nil {
		if infra.IsKind(err, infra.KindNotFound) {
			return nil, ErrBookingNotFound
		}
		if infra.IsKind(err, infra.KindUnavailable) {
			return nil, errs.Mark(err, ErrStoreUnavailable)
		}
		return nil, errs.Mark(err, ErrDatabaseOperationFailed)
	}
	return snap, nil
}

// rehydrate reads the row with FOR UPDATE. Transitions on the same booking
// serialize on the row lock, so a late webhook confirm blocks behind a
// concurrent cancel, then sees the cancelled row and fails the transition
// instead of resurrecting it.
func (uc *transitionUseCaseImpl) rehydrate(ctx context.Context, tx shared.Tx, bookingID uuid.UUID) (*booking.Booking, error) {
	snap, err := tx.Bookings().LockByID(ctx, tx.DB(), bookingID)
	if err != nil {
		if infra.IsKind(err, infra.KindNotFound) {
			return nil, ErrBookingNotFound
		}
		if infra.IsKind(err, infra.KindUnavailable) {
			return nil, errs.Mark(err, ErrStoreUnavailable)
		}
		return nil, errs.Mark(err, ErrDatabaseOperationFailed)
	}
	return snap.ToDomain()
}

func (uc *transitionUseCaseImpl) persist(ctx context.Context, tx shared.Tx, b *booking.Booking) error {
	if err := tx.Bookings().UpdateState(ctx, tx.DB(), b); err != nil {
		if infra.IsKind(err, infra.KindConflict) {
			return ErrBookingConflict
		}
		return errs.Mark(err, ErrDatabaseOperationFailed)
	}
	return nil
}

func matchIntent(b *booking.Booking, intentID string) error {
	attached := b.PaymentIntentID()
	if attached == nil || *attached != intentID {
		return ErrIntentMismatch
	}
	return nil
}

// canManage allows the booking's guest, the property's host, and admins.
func canManage(b *booking.Booking, actorID uuid.UUID, actorRole string) bool {
	if actorRole == user.RoleAdmin.String() {
		return true
	}
	return b.UserID() == actorID || b.HostID() == actorID
}
