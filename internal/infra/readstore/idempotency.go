package readstore

import (
	"context"

	"stayhub/internal/infra"
	"stayhub/internal/infra/db"
	"stayhub/internal/pkg/clock"
	"stayhub/internal/usecase/shared"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

type IdempotencyReadStore struct {
	db    db.DBTX
	clock clock.Clock
}

func NewIdempotencyReadStore(dbtx db.DBTX, clk clock.Clock) *IdempotencyReadStore {
	return &IdempotencyReadStore{db: dbtx, clock: clk}
}

const getIdempotencyKeySQL = `
SELECT key, user_id, status, request_hash, result_booking_id, expires_at
FROM idempotency_keys
WHERE key = $1 AND user_id = $2`

func (r *IdempotencyReadStore) Get(ctx context.Context, key, userID uuid.UUID) (*shared.IdempotencyRecord, error) {
	var record shared.IdempotencyRecord
	err := r.db.QueryRow(ctx, getIdempotencyKeySQL, key, userID).Scan(
		&record.Key, &record.UserID, &record.Status,
		&record.RequestHash, &record.ResultBookingID, &record.ExpiresAt,
	)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, infra.WrapRepoErr("idempotency key not found", err, infra.KindNotFound)
		}
		return nil, infra.WrapRepoErr("failed to get idempotency key", err)
	}

	// Expired keys read as absent so the claim path and this lookup agree on
	// the same clock.
	if r.clock.Now().After(record.ExpiresAt) {
		return nil, infra.WrapRepoErr("idempotency key expired", nil, infra.KindNotFound)
	}

	return &record, nil
}
