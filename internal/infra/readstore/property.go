package readstore

import (
	"context"

	"stayhub/internal/infra"
	"stayhub/internal/infra/db"
	"stayhub/internal/usecase/queries"
	"stayhub/internal/usecase/shared"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

type PropertyReadStore struct {
	db db.DBTX
}

func NewPropertyReadStore(dbtx db.DBTX) *PropertyReadStore {
	return &PropertyReadStore{db: dbtx}
}

const propertyViewSQL = `
SELECT id, host_id, name, capacity, nightly_rate_cents, created_at, updated_at
FROM properties
WHERE id = $1`

func (r *PropertyReadStore) FindByID(ctx context.Context, id uuid.UUID) (*queries.PropertyView, error) {
	var v queries.PropertyView
	err := r.db.QueryRow(ctx, propertyViewSQL, id).Scan(
		&v.ID, &v.HostID, &v.Name, &v.Capacity, &v.NightlyRateCents,
		&v.CreatedAt, &v.UpdatedAt,
	)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, infra.WrapRepoErr("property not found", err, infra.KindNotFound)
		}
		return nil, infra.WrapRepoErr("failed to find property by ID", err)
	}
	return &v, nil
}

const propertySnapshotSQL = `
SELECT id, host_id, name, capacity, nightly_rate_cents
FROM properties
WHERE id = $1`

func (r *PropertyReadStore) FindSnapshotByID(ctx context.Context, id uuid.UUID) (*shared.PropertySnapshot, error) {
	var s shared.PropertySnapshot
	err := r.db.QueryRow(ctx, propertySnapshotSQL, id).Scan(
		&s.ID, &s.HostID, &s.Name, &s.Capacity, &s.NightlyRateCents,
	)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, infra.WrapRepoErr("property not found", err, infra.KindNotFound)
		}
		return nil, infra.WrapRepoErr("failed to find property snapshot", err)
	}
	return &s, nil
}

const propertyExistsSQL = `SELECT EXISTS (SELECT 1 FROM properties WHERE id = $1)`

func (r *PropertyReadStore) Exists(ctx context.Context, id uuid.UUID) (bool, error) {
	var exists bool
	if err := r.db.QueryRow(ctx, propertyExistsSQL, id).Scan(&exists); err != nil {
		return false, infra.WrapRepoErr("failed to check property existence", err)
	}
	return exists, nil
}
