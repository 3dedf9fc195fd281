package repository

import (
	"context"
	"time"

	"stayhub/internal/infra"
	"stayhub/internal/infra/db"

	"github.com/google/uuid"
)

type IdempotencyRepository struct {
	db db.DBTX
}

func NewIdempotencyRepository(dbtx db.DBTX) *IdempotencyRepository {
	return &IdempotencyRepository{db: dbtx}
}

const tryInsertIdempotencyKeySQL = `
INSERT INTO idempotency_keys (key, user_id, endpoint, request_hash, status, expires_at)
VALUES ($1, $2, $3, $4, 'processing', $5)`

// TryInsert claims the key. A unique violation means another request with the
// same key is already in flight or finished; the caller distinguishes the two
// by reading the record back.
func (r *IdempotencyRepository) TryInsert(ctx context.Context, tx db.DBTX, key, userID uuid.UUID, endpoint, requestHash string, expiresAt time.Time) error {
	_, err := tx.Exec(ctx, tryInsertIdempotencyKeySQL, key, userID, endpoint, requestHash, expiresAt)
	if err != nil {
		return infra.WrapRepoErr("failed to try insert idempotency key", err)
	}
	return nil
}

const updateIdempotencyKeyCompletedSQL = `
UPDATE idempotency_keys
SET status = 'completed',
    response_body_hash = $3,
    result_booking_id = $4
WHERE key = $1 AND user_id = $2`

func (r *IdempotencyRepository) UpdateStatusCompleted(ctx context.Context, tx db.DBTX, key, userID uuid.UUID, responseBodyHash string, bookingID uuid.UUID) error {
	_, err := tx.Exec(ctx, updateIdempotencyKeyCompletedSQL, key, userID, responseBodyHash, bookingID)
	if err != nil {
		return infra.WrapRepoErr("failed to update idempotency key status", err)
	}
	return nil
}

const claimExpiredIdempotencyKeySQL = `
UPDATE idempotency_keys
SET request_hash = $3,
    status = 'processing',
    response_body_hash = NULL,
    result_booking_id = NULL,
    expires_at = $4
WHERE key = $1 AND user_id = $2 AND expires_at < now()`

// ClaimExpiredKey re-arms a key whose previous claim expired without
// completing, e.g. after a crashed request. Returns the number of rows
// claimed: zero means the original claim is still live.
func (r *IdempotencyRepository) ClaimExpiredKey(ctx context.Context, tx db.DBTX, key, userID uuid.UUID, requestHash string, expiresAt time.Time) (int64, error) {
	tag, err := tx.Exec(ctx, claimExpiredIdempotencyKeySQL, key, userID, requestHash, expiresAt)
	if err != nil {
		return 0, infra.WrapRepoErr("failed to claim expired idempotency key", err)
	}
	return tag.RowsAffected(), nil
}

const deleteExpiredIdempotencyKeysSQL = `
DELETE FROM idempotency_keys
WHERE expires_at < now() AND status = 'completed'`

func (r *IdempotencyRepository) DeleteExpired(ctx context.Context) (int64, error) {
	tag, err := r.db.Exec(ctx, deleteExpiredIdempotencyKeysSQL)
	if err != nil {
		return 0, infra.WrapRepoErr("failed to delete expired idempotency keys", err)
	}
	return tag.RowsAffected(), nil
}
