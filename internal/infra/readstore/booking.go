package readstore

import (
	"context"
	"time"

	"stayhub/internal/domain/booking"
	"stayhub/internal/infra"
	"stayhub/internal/infra/db"
	"stayhub/internal/usecase/queries"
	"stayhub/internal/usecase/shared"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

type BookingReadStore struct {
	db db.DBTX
}

func NewBookingReadStore(dbtx db.DBTX) *BookingReadStore {
	return &BookingReadStore{db: dbtx}
}

const bookingViewSQL = `
SELECT b.id, b.property_id, p.name, b.host_id, b.user_id,
       b.check_in, b.check_out, b.guests, b.amount_cents,
       b.status, b.payment_status, b.payment_intent_id,
       b.created_at, b.updated_at, b.confirmed_at
FROM bookings b
JOIN properties p ON p.id = b.property_id
WHERE b.id = $1`

func (r *BookingReadStore) FindByID(ctx context.Context, id uuid.UUID) (*queries.BookingView, error) {
	var v queries.BookingView
	err := r.db.QueryRow(ctx, bookingViewSQL, id).Scan(
		&v.ID, &v.PropertyID, &v.PropertyName, &v.HostID, &v.UserID,
		&v.CheckIn, &v.CheckOut, &v.Guests, &v.AmountCents,
		&v.Status, &v.PaymentStatus, &v.PaymentIntentID,
		&v.CreatedAt, &v.UpdatedAt, &v.ConfirmedAt,
	)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, infra.WrapRepoErr("booking not found", err, infra.KindNotFound)
		}
		return nil, infra.WrapRepoErr("failed to find booking by ID", err)
	}
	v.Nights = int(v.CheckOut.Sub(v.CheckIn).Hours() / 24)
	return &v, nil
}

const bookingSnapshotSQL = `
SELECT id, property_id, host_id, user_id,
       check_in, check_out, guests, amount_cents,
       status, payment_status, payment_intent_id, payment_attempts,
       created_at, updated_at, confirmed_at
FROM bookings
WHERE id = $1`

// FindSnapshotByID reads the full row for command-side rehydration.
func (r *BookingReadStore) FindSnapshotByID(ctx context.Context, id uuid.UUID) (*shared.BookingSnapshot, error) {
	var s shared.BookingSnapshot
	err := r.db.QueryRow(ctx, bookingSnapshotSQL, id).Scan(
		&s.ID, &s.PropertyID, &s.HostID, &s.UserID,
		&s.CheckIn, &s.CheckOut, &s.Guests, &s.AmountCents,
		&s.Status, &s.PaymentStatus, &s.PaymentIntentID, &s.PaymentAttempts,
		&s.CreatedAt, &s.UpdatedAt, &s.ConfirmedAt,
	)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, infra.WrapRepoErr("booking not found", err, infra.KindNotFound)
		}
		return nil, infra.WrapRepoErr("failed to find booking snapshot", err)
	}
	return &s, nil
}

const bookingListByUserFirstPageSQL = `
SELECT b.id, b.property_id, p.name, b.check_in, b.check_out,
       b.status, b.payment_status, b.amount_cents, b.created_at
FROM bookings b
JOIN properties p ON p.id = b.property_id
WHERE b.user_id = $1
ORDER BY b.created_at DESC, b.id DESC
LIMIT $2`

const bookingListByUserKeysetSQL = `
SELECT b.id, b.property_id, p.name, b.check_in, b.check_out,
       b.status, b.payment_status, b.amount_cents, b.created_at
FROM bookings b
JOIN properties p ON p.id = b.property_id
WHERE b.user_id = $1
  AND (b.created_at, b.id) < ($2, $3)
ORDER BY b.created_at DESC, b.id DESC
LIMIT $4`

func (r *BookingReadStore) FindByUserFirstPage(ctx context.Context, userID uuid.UUID, limit int32) ([]*queries.BookingListItem, error) {
	rows, err := r.db.Query(ctx, bookingListByUserFirstPageSQL, userID, limit)
	if err != nil {
		return nil, infra.WrapRepoErr("failed to find bookings first page", err)
	}
	return scanBookingListItems(rows)
}

func (r *BookingReadStore) FindByUserKeyset(ctx context.Context, userID uuid.UUID, lastCreatedAt time.Time, lastID uuid.UUID, limit int32) ([]*queries.BookingListItem, error) {
	rows, err := r.db.Query(ctx, bookingListByUserKeysetSQL, userID, lastCreatedAt, lastID, limit)
	if err != nil {
		return nil, infra.WrapRepoErr("failed to find bookings keyset", err)
	}
	return scanBookingListItems(rows)
}

const bookingListByHostFirstPageSQL = `
SELECT b.id, b.property_id, p.name, b.check_in, b.check_out,
       b.status, b.payment_status, b.amount_cents, b.created_at
FROM bookings b
JOIN properties p ON p.id = b.property_id
WHERE b.host_id = $1
ORDER BY b.created_at DESC, b.id DESC
LIMIT $2`

const bookingListByHostKeysetSQL = `
SELECT b.id, b.property_id, p.name, b.check_in, b.check_out,
       b.status, b.payment_status, b.amount_cents, b.created_at
FROM bookings b
JOIN properties p ON p.id = b.property_id
WHERE b.host_id = $1
  AND (b.created_at, b.id) < ($2, $3)
ORDER BY b.created_at DESC, b.id DESC
LIMIT $4`

func (r *BookingReadStore) FindByHostFirstPage(ctx context.Context, hostID uuid.UUID, limit int32) ([]*queries.BookingListItem, error) {
	rows, err := r.db.Query(ctx, bookingListByHostFirstPageSQL, hostID, limit)
	if err != nil {
		return nil, infra.WrapRepoErr("failed to find host bookings first page", err)
	}
	return scanBookingListItems(rows)
}

func (r *BookingReadStore) FindByHostKeyset(ctx context.Context, hostID uuid.UUID, lastCreatedAt time.Time, lastID uuid.UUID, limit int32) ([]*queries.BookingListItem, error) {
	rows, err := r.db.Query(ctx, bookingListByHostKeysetSQL, hostID, lastCreatedAt, lastID, limit)
	if err != nil {
		return nil, infra.WrapRepoErr("failed to find host bookings keyset", err)
	}
	return scanBookingListItems(rows)
}

func scanBookingListItems(rows pgx.Rows) ([]*queries.BookingListItem, error) {
	defer rows.Close()

	var result []*queries.BookingListItem
	for rows.Next() {
		var item queries.BookingListItem
		if err := rows.Scan(
			&item.ID, &item.PropertyID, &item.PropertyName,
			&item.CheckIn, &item.CheckOut,
			&item.Status, &item.PaymentStatus, &item.AmountCents, &item.CreatedAt,
		); err != nil {
			return nil, infra.WrapRepoErr("failed to scan booking list item", err)
		}
		result = append(result, &item)
	}
	if err := rows.Err(); err != nil {
		return nil, infra.WrapRepoErr("failed to iterate booking list", err)
	}
	return result, nil
}

// Overlap via half-open interval arithmetic: a.start < b.end AND b.start < a.end.
const overlappingHoldsSQL = `
SELECT id, check_in, check_out, status, payment_status
FROM bookings
WHERE property_id = $1
  AND status <> 'cancelled'
  AND check_in < $3
  AND $2 < check_out`

// FindOverlapping returns every live booking that shares at least one night
// with [from, to). The caller decides which of them actually block.
func (r *BookingReadStore) FindOverlapping(ctx context.Context, propertyID uuid.UUID, from, to time.Time) ([]booking.Hold, error) {
	rows, err := r.db.Query(ctx, overlappingHoldsSQL, propertyID, from, to)
	if err != nil {
		return nil, infra.WrapRepoErr("failed to find overlapping bookings", err)
	}
	defer rows.Close()

	var holds []booking.Hold
	for rows.Next() {
		var (
			id               uuid.UUID
			checkIn          time.Time
			checkOut         time.Time
			status, payState string
		)
		if err := rows.Scan(&id, &checkIn, &checkOut, &status, &payState); err != nil {
			return nil, infra.WrapRepoErr("failed to scan overlapping booking", err)
		}
		stay, err := booking.NewStayRange(checkIn, checkOut)
		if err != nil {
			return nil, infra.WrapRepoErr("stored booking has invalid stay range", err)
		}
		holds = append(holds, booking.Hold{
			BookingID:     id,
			Stay:          stay,
			Status:        booking.Status(status),
			PaymentStatus: booking.PaymentStatus(payState),
		})
	}
	if err := rows.Err(); err != nil {
		return nil, infra.WrapRepoErr("failed to iterate overlapping bookings", err)
	}
	return holds, nil
}

const checkedOutConfirmedSQL = `
SELECT id
FROM bookings
WHERE status = 'confirmed'
  AND check_out <= $1
ORDER BY check_out
LIMIT $2`

// FindCheckedOutConfirmed lists confirmed stays whose check-out has passed,
// for the completion sweep.
func (r *BookingReadStore) FindCheckedOutConfirmed(ctx context.Context, asOf time.Time, limit int32) ([]uuid.UUID, error) {
	rows, err := r.db.Query(ctx, checkedOutConfirmedSQL, asOf, limit)
	if err != nil {
		return nil, infra.WrapRepoErr("failed to find checked-out bookings", err)
	}
	defer rows.Close()

	var ids []uuid.UUID
	for rows.Next() {
		var id uuid.UUID
		if err := rows.Scan(&id); err != nil {
			return nil, infra.WrapRepoErr("failed to scan booking id", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, infra.WrapRepoErr("failed to iterate checked-out bookings", err)
	}
	return ids, nil
}
