package shared

import (
	"context"
	"time"

	"stayhub/internal/domain/booking"
	"stayhub/internal/infra/db"

	"github.com/google/uuid"
)

type UnitOfWork interface {
	// Within: Full transaction for write operations with retry logic
	Within(ctx context.Context, fn func(ctx context.Context, tx Tx) error) error
	// WithinReadOnly: Read-only transaction for multi-table consistent reads
	WithinReadOnly(ctx context.Context, fn func(ctx context.Context, db db.DBTX) error) error
	// WithDB: Single query operations using implicit transactions
	WithDB(ctx context.Context, fn func(ctx context.Context, db db.DBTX) error) error
	// CommandReads: Direct access to command reads for validation outside transactions
	CommandReads() CommandReads
}

type Tx interface {
	Bookings() BookingRepository
	Properties() PropertyRepository
	Idempotency() IdempotencyRepository
	Notifications() NotificationRepository
	Reads() CommandReads
	DB() db.DBTX
}

type CommandReads interface {
	PropertyByID(ctx context.Context, id uuid.UUID) (*PropertySnapshot, error)
	BookingByID(ctx context.Context, id uuid.UUID) (*BookingSnapshot, error)
	// OverlappingHolds returns every non-cancelled booking on the property
	// whose stay overlaps the candidate range. Filtering down to the holds
	// that actually block is domain logic (see booking.FindConflicts).
	OverlappingHolds(ctx context.Context, propertyID uuid.UUID, stay booking.StayRange) ([]booking.Hold, error)
	IdempotencyByKey(ctx context.Context, key, userID uuid.UUID) (*IdempotencyRecord, error)
}

type BookingRepository interface {
	Create(ctx context.Context, tx db.DBTX, b *booking.Booking) error
	// LockByID reads the booking row with FOR UPDATE so concurrent lifecycle
	// transitions on the same booking serialize and always see the latest
	// committed state. Must be called inside a transaction.
	LockByID(ctx context.Context, tx db.DBTX, id uuid.UUID) (*BookingSnapshot, error)
	// UpdateState persists the mutable lifecycle fields of an existing
	// booking: status, payment status, intent id, attempts, confirmed_at.
	UpdateState(ctx context.Context, tx db.DBTX, b *booking.Booking) error
}

type PropertyRepository interface {
	// LockByID reads the property row with FOR UPDATE, serializing all
	// concurrent booking writes on the same property. Must be called inside
	// a transaction.
	LockByID(ctx context.Context, tx db.DBTX, id uuid.UUID) (*PropertySnapshot, error)
	Create(ctx context.Context, tx db.DBTX, p *PropertySnapshot) error
}

type IdempotencyRepository interface {
	TryInsert(ctx context.Context, tx db.DBTX, key, userID uuid.UUID, endpoint, requestHash string, expiresAt time.Time) error
	UpdateStatusCompleted(ctx context.Context, tx db.DBTX, key, userID uuid.UUID, responseBodyHash string, bookingID uuid.UUID) error
	ClaimExpiredKey(ctx context.Context, tx db.DBTX, key, userID uuid.UUID, requestHash string, expiresAt time.Time) (int64, error)
	DeleteExpired(ctx context.Context) (int64, error)
}

type NotificationRepository interface {
	CreateJob(ctx context.Context, tx db.DBTX, kind, topic string, payload []byte, runAt time.Time) error
}
