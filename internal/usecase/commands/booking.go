package commands

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"time"

	"stayhub/internal/domain/booking"
	"stayhub/internal/infra"
	"stayhub/internal/pkg/clock"
	"stayhub/internal/pkg/errs"
	"stayhub/internal/usecase/queries"
	"stayhub/internal/usecase/shared"

	"github.com/google/uuid"
)

var (
	ErrPropertyNotFound        = errs.ErrPropertyNotFound
	ErrBookingNotFound         = errs.ErrBookingNotFound
	ErrBookingConflict         = errs.ErrBookingConflict
	ErrDuplicateBooking        = errs.ErrDuplicateBooking
	ErrGuestsExceedCapacity    = errs.New("guest count exceeds property capacity")
	ErrIdempotencyKeyReused    = errs.ErrIdempotencyKeyReused
	ErrBookingInProgress       = errs.ErrBookingInProgress
	ErrIdempotencyCheckFailed  = errs.ErrIdempotencyCheckFailed
	ErrDatabaseOperationFailed = errs.ErrDatabaseOperationFailed
	ErrStoreUnavailable        = errs.ErrStoreUnavailable
)

const (
	createBookingEndpoint = "POST /bookings"
	idempotencyKeyTTL     = 24 * time.Hour
)

type CreateBookingRequest struct {
	PropertyID uuid.UUID `json:"property_id"`
	CheckIn    time.Time `json:"check_in"`
	CheckOut   time.Time `json:"check_out"`
	Guests     int       `json:"guests"`
}

type CreateBookingResult struct {
	Booking    *queries.BookingView
	IsReplayed bool
}

type BookingCommands interface {
	CreateBooking(ctx context.Context, req CreateBookingRequest, userID uuid.UUID, idempotencyKey uuid.UUID) (*CreateBookingResult, error)
}

type bookingUseCaseImpl struct {
	uow            shared.UnitOfWork
	bookingQueries queries.BookingQueries
	clock          clock.Clock
}

func NewBookingUseCase(uow shared.UnitOfWork, bookingQueries queries.BookingQueries, clk clock.Clock) BookingCommands {
	return &bookingUseCaseImpl{
		uow:            uow,
		bookingQueries: bookingQueries,
		clock:          clk,
	}
}

// CreateBooking claims the idempotency key, then creates the booking inside a
// single transaction that locks the property row before checking conflicts.
// The check and the insert therefore run under the same lock, and the paid
// overlap exclusion constraint backs the whole thing at the storage level.
func (uc *bookingUseCaseImpl) CreateBooking(
	ctx context.Context,
	req CreateBookingRequest,
	userID uuid.UUID,
	idempotencyKey uuid.UUID,
) (*CreateBookingResult, error) {
	stay, err := booking.NewStayRange(req.CheckIn, req.CheckOut)
	if err != nil {
		return nil, errs.Mark(err, errs.ErrInvalidStayRange)
	}

	requestHash := calculateRequestHash(req)
	expiresAt := uc.clock.Now().Add(idempotencyKeyTTL)

	replayed, err := uc.claimIdempotencyKey(ctx, idempotencyKey, userID, requestHash, expiresAt)
	if err != nil {
		return nil, err
	}
	if replayed != nil {
		return &CreateBookingResult{Booking: replayed, IsReplayed: true}, nil
	}

	bookingID, err := uc.createInTx(ctx, req, stay, userID, idempotencyKey)
	if err != nil {
		return nil, err
	}

	// Read-after-write for the full view
	view, err := uc.bookingQueries.GetByIDSystem(ctx, bookingID)
	if err != nil {
		return nil, errs.Mark(err, ErrDatabaseOperationFailed)
	}
	return &CreateBookingResult{Booking: view, IsReplayed: false}, nil
}

// claimIdempotencyKey returns a non-nil view when the key already completed
// with the same request, meaning the stored result should be replayed.
func (uc *bookingUseCaseImpl) claimIdempotencyKey(
	ctx context.Context,
	key, userID uuid.UUID,
	requestHash string,
	expiresAt time.Time,
) (*queries.BookingView, error) {
	var resultID *uuid.UUID

	err := uc.uow.Within(ctx, func(ctx context.Context, tx shared.Tx) error {
		insertErr := tx.Idempotency().TryInsert(ctx, tx.DB(), key, userID, createBookingEndpoint, requestHash, expiresAt)
		if insertErr == nil {
			return nil
		}
		if !infra.IsKind(insertErr, infra.KindDuplicateKey) {
			return errs.Mark(insertErr, ErrIdempotencyCheckFailed)
		}

		record, getErr := tx.Reads().IdempotencyByKey(ctx, key, userID)
		if getErr != nil {
			if infra.IsKind(getErr, infra.KindNotFound) {
				// Row exists but expired: take it over.
				claimed, claimErr := tx.Idempotency().ClaimExpiredKey(ctx, tx.DB(), key, userID, requestHash, expiresAt)
				if claimErr != nil {
					return errs.Mark(claimErr, ErrIdempotencyCheckFailed)
				}
				if claimed == 0 {
					return ErrBookingInProgress
				}
				return nil
			}
			return errs.Mark(getErr, ErrIdempotencyCheckFailed)
		}

		if record.RequestHash != requestHash {
			return ErrIdempotencyKeyReused
		}

		switch record.Status {
		case shared.IdempotencyStatusCompleted:
			if record.ResultBookingID == nil {
				return errs.New("completed idempotency record missing booking id")
			}
			resultID = record.ResultBookingID
			return nil
		case shared.IdempotencyStatusProcessing:
			return ErrBookingInProgress
		default:
			return errs.New("invalid idempotency key status")
		}
	})
	if err != nil {
		if infra.IsKind(err, infra.KindUnavailable) {
			return nil, errs.Mark(err, ErrStoreUnavailable)
		}
		return nil, err
	}

	if resultID == nil {
		return nil, nil
	}
	return uc.bookingQueries.GetByIDSystem(ctx, *resultID)
}

func (uc *bookingUseCaseImpl) createInTx(
	ctx context.Context,
	req CreateBookingRequest,
	stay booking.StayRange,
	userID, idempotencyKey uuid.UUID,
) (uuid.UUID, error) {
	var bookingID uuid.UUID

	err := uc.uow.Within(ctx, func(ctx context.Context, tx shared.Tx) error {
		prop, err := tx.Properties().LockByID(ctx, tx.DB(), req.PropertyID)
		if err != nil {
			if infra.IsKind(err, infra.KindNotFound) {
				return ErrPropertyNotFound
			}
			return errs.Mark(err, ErrDatabaseOperationFailed)
		}

		if req.Guests > prop.Capacity {
			return ErrGuestsExceedCapacity
		}

		holds, err := tx.Reads().OverlappingHolds(ctx, prop.ID, stay)
		if err != nil {
			return errs.Mark(err, ErrDatabaseOperationFailed)
		}
		if !booking.IsAvailable(stay, holds) {
			return ErrBookingConflict
		}

		amount, err := booking.NewMoney(int64(stay.Nights()) * prop.NightlyRateCents)
		if err != nil {
			return err
		}

		b, err := booking.NewBooking(prop.ID, prop.HostID, userID, stay, req.Guests, amount)
		if err != nil {
			return err
		}

		if err := tx.Bookings().Create(ctx, tx.DB(), b); err != nil {
			switch {
			case infra.IsKind(err, infra.KindConflict):
				return ErrBookingConflict
			case infra.IsKind(err, infra.KindDuplicateKey):
				return ErrDuplicateBooking
			}
			return errs.Mark(err, ErrDatabaseOperationFailed)
		}
		bookingID = b.ID()

		if err := createBookingNotification(ctx, tx, uc.clock.Now(), "booking_created", b.ID()); err != nil {
			return errs.Mark(err, ErrDatabaseOperationFailed)
		}

		responseHash := calculateIDHash(b.ID())
		if err := tx.Idempotency().UpdateStatusCompleted(ctx, tx.DB(), idempotencyKey, userID, responseHash, b.ID()); err != nil {
			return errs.Mark(err, ErrDatabaseOperationFailed)
		}
		return nil
	})
	if err != nil {
		if infra.IsKind(err, infra.KindUnavailable) {
			return uuid.Nil, errs.Mark(err, ErrStoreUnavailable)
		}
		return uuid.Nil, err
	}

	return bookingID, nil
}

func createBookingNotification(ctx context.Context, tx shared.Tx, now time.Time, topic string, bookingID uuid.UUID) error {
	payload, err := json.Marshal(map[string]any{
		"booking_id": bookingID,
		"type":       topic,
	})
	if err != nil {
		return err
	}
	return tx.Notifications().CreateJob(ctx, tx.DB(), "email", topic, payload, now)
}

func calculateRequestHash(req CreateBookingRequest) string {
	data, _ := json.Marshal(req)
	hash := sha256.Sum256(data)
	return hex.EncodeToString(hash[:])
}

func calculateIDHash(id uuid.UUID) string {
	hash := sha256.Sum256([]byte(id.String()))
	return hex.EncodeToString(hash[:])
}
