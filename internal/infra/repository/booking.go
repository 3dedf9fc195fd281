package repository

import (
	"context"
	"errors"

	"stayhub/internal/domain/booking"
	"stayhub/internal/infra"
	"stayhub/internal/infra/db"
	"stayhub/internal/usecase/shared"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

const (
	constraintNoPaidOverlap      = "bookings_no_paid_overlap"
	constraintNoDuplicatePending = "bookings_no_duplicate_pending"
)

type BookingRepository struct {
	db db.DBTX
}

func NewBookingRepository(dbtx db.DBTX) *BookingRepository {
	return &BookingRepository{db: dbtx}
}

const createBookingSQL = `
INSERT INTO bookings (
    id, property_id, host_id, user_id,
    check_in, check_out, guests, amount_cents,
    status, payment_status, payment_intent_id, payment_attempts, confirmed_at
) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)`

func (r *BookingRepository) Create(ctx context.Context, tx db.DBTX, b *booking.Booking) error {
	_, err := tx.Exec(ctx, createBookingSQL,
		b.ID(), b.PropertyID(), b.HostID(), b.UserID(),
		b.Stay().CheckIn(), b.Stay().CheckOut(), b.Guests(), b.Amount().Cents(),
		b.Status().String(), b.PaymentStatus().String(),
		b.PaymentIntentID(), b.PaymentAttempts(), b.ConfirmedAt(),
	)
	if err != nil {
		return infra.WrapRepoErr("failed to create booking", err, constraintKind(err)...)
	}
	return nil
}

const lockBookingSQL = `
SELECT id, property_id, host_id, user_id,
       check_in, check_out, guests, amount_cents,
       status, payment_status, payment_intent_id, payment_attempts,
       created_at, updated_at, confirmed_at
FROM bookings
WHERE id = $1
FOR UPDATE`

// LockByID holds the row lock until the transaction ends. Without it a
// transition under read committed could act on a stale status and write over
// a concurrent cancel or confirm.
func (r *BookingRepository) LockByID(ctx context.Context, tx db.DBTX, id uuid.UUID) (*shared.BookingSnapshot, error) {
	var s shared.BookingSnapshot
	err := tx.QueryRow(ctx, lockBookingSQL, id).Scan(
		&s.ID, &s.PropertyID, &s.HostID, &s.UserID,
		&s.CheckIn, &s.CheckOut, &s.Guests, &s.AmountCents,
		&s.Status, &s.PaymentStatus, &s.PaymentIntentID, &s.PaymentAttempts,
		&s.CreatedAt, &s.UpdatedAt, &s.ConfirmedAt,
	)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, infra.WrapRepoErr("booking not found", err, infra.KindNotFound)
		}
		return nil, infra.WrapRepoErr("failed to lock booking", err)
	}
	return &s, nil
}

const updateBookingStateSQL = `
UPDATE bookings
SET status = $2,
    payment_status = $3,
    payment_intent_id = $4,
    payment_attempts = $5,
    confirmed_at = $6,
    updated_at = now()
WHERE id = $1`

// UpdateState persists a lifecycle transition. The paid-overlap exclusion
// constraint re-fires here when a transition to paid would double-book the
// dates, which is what makes "first payment wins" hold under races.
func (r *BookingRepository) UpdateState(ctx context.Context, tx db.DBTX, b *booking.Booking) error {
	tag, err := tx.Exec(ctx, updateBookingStateSQL,
		b.ID(), b.Status().String(), b.PaymentStatus().String(),
		b.PaymentIntentID(), b.PaymentAttempts(), b.ConfirmedAt(),
	)
	if err != nil {
		return infra.WrapRepoErr("failed to update booking state", err, constraintKind(err)...)
	}
	if tag.RowsAffected() == 0 {
		return infra.WrapRepoErr("booking not found", nil, infra.KindNotFound)
	}
	return nil
}

// constraintKind pins the error kind when one of the booking table's guard
// constraints fired; anything else falls back to code-based classification.
func constraintKind(err error) []infra.RepositoryErrorKind {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.ConstraintName {
		case constraintNoPaidOverlap:
			return []infra.RepositoryErrorKind{infra.KindConflict}
		case constraintNoDuplicatePending:
			return []infra.RepositoryErrorKind{infra.KindDuplicateKey}
		}
	}
	return nil
}
