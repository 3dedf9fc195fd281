package repository

import (
	"context"
	"errors"

	"stayhub/internal/infra"
	"stayhub/internal/infra/db"
	"stayhub/internal/usecase/shared"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

type PropertyRepository struct {
	db db.DBTX
}

func NewPropertyRepository(dbtx db.DBTX) *PropertyRepository {
	return &PropertyRepository{db: dbtx}
}

const lockPropertySQL = `
SELECT id, host_id, name, capacity, nightly_rate_cents
FROM properties
WHERE id = $1
FOR UPDATE`

// LockByID acquires a row lock on the property for the remainder of the
// transaction. Every booking write path takes this lock first, so the
// overlap check and insert that follow are serialized per property.
func (r *PropertyRepository) LockByID(ctx context.Context, tx db.DBTX, id uuid.UUID) (*shared.PropertySnapshot, error) {
	var snap shared.PropertySnapshot
	err := tx.QueryRow(ctx, lockPropertySQL, id).Scan(
		&snap.ID, &snap.HostID, &snap.Name, &snap.Capacity, &snap.NightlyRateCents,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, infra.WrapRepoErr("property not found", err, infra.KindNotFound)
		}
		return nil, infra.WrapRepoErr("failed to lock property", err)
	}
	return &snap, nil
}

const createPropertySQL = `
INSERT INTO properties (id, host_id, name, capacity, nightly_rate_cents)
VALUES ($1, $2, $3, $4, $5)`

func (r *PropertyRepository) Create(ctx context.Context, tx db.DBTX, p *shared.PropertySnapshot) error {
	_, err := tx.Exec(ctx, createPropertySQL,
		p.ID, p.HostID, p.Name, p.Capacity, p.NightlyRateCents,
	)
	if err != nil {
		return infra.WrapRepoErr("failed to create property", err)
	}
	return nil
}
