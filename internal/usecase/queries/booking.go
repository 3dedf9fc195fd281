package queries

import (
	"context"
	"time"

	"stayhub/internal/domain/user"
	"stayhub/internal/infra"
	"stayhub/internal/pkg/errs"

	"github.com/google/uuid"
)

var (
	ErrBookingNotFound = errs.ErrBookingNotFound
	ErrBookingAccess   = errs.ErrForbidden
	ErrInvalidCursor   = errs.New("invalid cursor")
)

type BookingReadStore interface {
	FindByID(ctx context.Context, id uuid.UUID) (*BookingView, error)
	FindByUserFirstPage(ctx context.Context, userID uuid.UUID, limit int32) ([]*BookingListItem, error)
	FindByUserKeyset(ctx context.Context, userID uuid.UUID, lastCreatedAt time.Time, lastID uuid.UUID, limit int32) ([]*BookingListItem, error)
	FindByHostFirstPage(ctx context.Context, hostID uuid.UUID, limit int32) ([]*BookingListItem, error)
	FindByHostKeyset(ctx context.Context, hostID uuid.UUID, lastCreatedAt time.Time, lastID uuid.UUID, limit int32) ([]*BookingListItem, error)
}

type BookingQueries interface {
	GetByID(ctx context.Context, actorID uuid.UUID, actorRole string, id uuid.UUID) (*BookingView, error)
	// GetByIDSystem skips access checks, for internal read-after-write paths.
	GetByIDSystem(ctx context.Context, id uuid.UUID) (*BookingView, error)
	ListByUser(ctx context.Context, userID uuid.UUID, cursor *Cursor, limit int) ([]*BookingListItem, *Cursor, error)
	ListByHost(ctx context.Context, hostID uuid.UUID, cursor *Cursor, limit int) ([]*BookingListItem, *Cursor, error)
}

type bookingQueriesImpl struct {
	repo BookingReadStore
}

func NewBookingQueries(repo BookingReadStore) BookingQueries {
	return &bookingQueriesImpl{repo: repo}
}

// GetByID returns the booking if the actor is its guest, the property's host,
// or an admin.
func (q *bookingQueriesImpl) GetByID(ctx context.Context, actorID uuid.UUID, actorRole string, id uuid.UUID) (*BookingView, error) {
	view, err := q.GetByIDSystem(ctx, id)
	if err != nil {
		return nil, err
	}

	if actorRole != user.RoleAdmin.String() && view.UserID != actorID && view.HostID != actorID {
		return nil, ErrBookingAccess
	}
	return view, nil
}

func (q *bookingQueriesImpl) GetByIDSystem(ctx context.Context, id uuid.UUID) (*BookingView, error) {
	view, err := q.repo.FindByID(ctx, id)
	if err != nil {
		if infra.IsKind(err, infra.KindNotFound) {
			return nil, ErrBookingNotFound
		}
		return nil, err
	}
	return view, nil
}

func (q *bookingQueriesImpl) ListByUser(ctx context.Context, userID uuid.UUID, cursor *Cursor, limit int) ([]*BookingListItem, *Cursor, error) {
	return q.list(ctx, cursor, limit,
		func(lim int32) ([]*BookingListItem, error) {
			return q.repo.FindByUserFirstPage(ctx, userID, lim)
		},
		func(lastCreatedAt time.Time, lastID uuid.UUID, lim int32) ([]*BookingListItem, error) {
			return q.repo.FindByUserKeyset(ctx, userID, lastCreatedAt, lastID, lim)
		},
	)
}

func (q *bookingQueriesImpl) ListByHost(ctx context.Context, hostID uuid.UUID, cursor *Cursor, limit int) ([]*BookingListItem, *Cursor, error) {
	return q.list(ctx, cursor, limit,
		func(lim int32) ([]*BookingListItem, error) {
			return q.repo.FindByHostFirstPage(ctx, hostID, lim)
		},
		func(lastCreatedAt time.Time, lastID uuid.UUID, lim int32) ([]*BookingListItem, error) {
			return q.repo.FindByHostKeyset(ctx, hostID, lastCreatedAt, lastID, lim)
		},
	)
}

func (q *bookingQueriesImpl) list(
	_ context.Context,
	cursor *Cursor,
	limit int,
	firstPage func(limit int32) ([]*BookingListItem, error),
	keyset func(lastCreatedAt time.Time, lastID uuid.UUID, limit int32) ([]*BookingListItem, error),
) ([]*BookingListItem, *Cursor, error) {
	limit = ValidateLimit(limit)

	var rows []*BookingListItem
	var err error
	if cursor == nil || cursor.After == "" {
		rows, err = firstPage(int32(limit + 1))
	} else {
		lastCreatedAt, lastID, derr := DecodeAfterCursor(cursor.After)
		if derr != nil {
			return nil, nil, ErrInvalidCursor
		}
		rows, err = keyset(lastCreatedAt, lastID, int32(limit+1))
	}
	if err != nil {
		return nil, nil, err
	}

	var next *Cursor
	if len(rows) > limit {
		last := rows[limit-1]
		next = &Cursor{After: EncodeAfterCursor(last.CreatedAt, last.ID)}
		rows = rows[:limit]
	}
	return rows, next, nil
}
