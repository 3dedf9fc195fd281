//go:build unit

package commands_test

import (
	"context"
	"testing"
	"time"

	"stayhub/internal/domain/booking"
	"stayhub/internal/pkg/clock"
	"stayhub/internal/pkg/errs"
	"stayhub/internal/usecase/commands"
	"stayhub/internal/usecase/shared"
	"stayhub/tests/common/builder"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testNow = time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)

type createFixture struct {
	store    *fakeStore
	clock    *clock.MockClock
	property *shared.PropertySnapshot
	uc       commands.BookingCommands
}

func newCreateFixture(t *testing.T) *createFixture {
	t.Helper()

	clk := clock.NewMockClock(testNow)
	store := newFakeStore(clk.Now)
	property := &shared.PropertySnapshot{
		ID:               uuid.New(),
		HostID:           uuid.New(),
		Name:             "Seaside Cottage",
		Capacity:         4,
		NightlyRateCents: 10000,
	}
	store.addProperty(property)

	uow := newFakeUow(store)
	uc := commands.NewBookingUseCase(uow, &fakeBookingQueries{store: store}, clk)
	return &createFixture{store: store, clock: clk, property: property, uc: uc}
}

func (f *createFixture) request() commands.CreateBookingRequest {
	return commands.CreateBookingRequest{
		PropertyID: f.property.ID,
		CheckIn:    time.Date(2024, 7, 10, 0, 0, 0, 0, time.UTC),
		CheckOut:   time.Date(2024, 7, 15, 0, 0, 0, 0, time.UTC),
		Guests:     2,
	}
}

func TestCreateBooking(t *testing.T) {
	ctx := context.Background()

	t.Run("creates a pending booking and prices it per night", func(t *testing.T) {
		f := newCreateFixture(t)

		result, err := f.uc.CreateBooking(ctx, f.request(), uuid.New(), uuid.New())
		require.NoError(t, err)
		require.NotNil(t, result)
		assert.False(t, result.IsReplayed)

		assert.Equal(t, booking.StatusPending.String(), result.Booking.Status)
		assert.Equal(t, booking.PaymentPending.String(), result.Booking.PaymentStatus)
		assert.Equal(t, 5, result.Booking.Nights)
		assert.Equal(t, int64(50000), result.Booking.AmountCents)
		assert.Equal(t, f.property.HostID, result.Booking.HostID)

		assert.Equal(t, []string{"booking_created"}, f.store.notificationTopics())
	})

	t.Run("unknown property", func(t *testing.T) {
		f := newCreateFixture(t)
		req := f.request()
		req.PropertyID = uuid.New()

		_, err := f.uc.CreateBooking(ctx, req, uuid.New(), uuid.New())
		require.ErrorIs(t, err, commands.ErrPropertyNotFound)
	})

	t.Run("check-out before check-in", func(t *testing.T) {
		f := newCreateFixture(t)
		req := f.request()
		req.CheckIn, req.CheckOut = req.CheckOut, req.CheckIn

		_, err := f.uc.CreateBooking(ctx, req, uuid.New(), uuid.New())
		require.ErrorIs(t, err, errs.ErrInvalidStayRange)
	})

	t.Run("guests over capacity", func(t *testing.T) {
		f := newCreateFixture(t)
		req := f.request()
		req.Guests = 5

		_, err := f.uc.CreateBooking(ctx, req, uuid.New(), uuid.New())
		require.ErrorIs(t, err, commands.ErrGuestsExceedCapacity)
	})

	t.Run("paid hold blocks overlapping dates", func(t *testing.T) {
		f := newCreateFixture(t)
		f.store.addBooking(builder.NewBookingBuilder().
			WithPropertyID(f.property.ID).
			WithStay(time.Date(2024, 7, 12, 0, 0, 0, 0, time.UTC), time.Date(2024, 7, 20, 0, 0, 0, 0, time.UTC)).
			AsConfirmed(testNow).
			BuildSnapshot())

		_, err := f.uc.CreateBooking(ctx, f.request(), uuid.New(), uuid.New())
		require.ErrorIs(t, err, commands.ErrBookingConflict)
	})

	t.Run("unpaid hold does not block", func(t *testing.T) {
		f := newCreateFixture(t)
		f.store.addBooking(builder.NewBookingBuilder().
			WithPropertyID(f.property.ID).
			WithStay(time.Date(2024, 7, 12, 0, 0, 0, 0, time.UTC), time.Date(2024, 7, 20, 0, 0, 0, 0, time.UTC)).
			AsPaymentPending().
			BuildSnapshot())

		result, err := f.uc.CreateBooking(ctx, f.request(), uuid.New(), uuid.New())
		require.NoError(t, err)
		assert.Equal(t, booking.StatusPending.String(), result.Booking.Status)
	})

	t.Run("back-to-back stays do not conflict", func(t *testing.T) {
		f := newCreateFixture(t)
		// Prior guest checks out on the 10th, new guest checks in on the 10th.
		f.store.addBooking(builder.NewBookingBuilder().
			WithPropertyID(f.property.ID).
			WithStay(time.Date(2024, 7, 5, 0, 0, 0, 0, time.UTC), time.Date(2024, 7, 10, 0, 0, 0, 0, time.UTC)).
			AsConfirmed(testNow).
			BuildSnapshot())

		_, err := f.uc.CreateBooking(ctx, f.request(), uuid.New(), uuid.New())
		require.NoError(t, err)
	})

	t.Run("duplicate pending booking for same user and dates", func(t *testing.T) {
		f := newCreateFixture(t)
		userID := uuid.New()

		_, err := f.uc.CreateBooking(ctx, f.request(), userID, uuid.New())
		require.NoError(t, err)

		_, err = f.uc.CreateBooking(ctx, f.request(), userID, uuid.New())
		require.ErrorIs(t, err, commands.ErrDuplicateBooking)
	})

	t.Run("different users can hold the same unpaid dates", func(t *testing.T) {
		f := newCreateFixture(t)

		_, err := f.uc.CreateBooking(ctx, f.request(), uuid.New(), uuid.New())
		require.NoError(t, err)

		_, err = f.uc.CreateBooking(ctx, f.request(), uuid.New(), uuid.New())
		require.NoError(t, err)
	})
}

func TestCreateBookingIdempotency(t *testing.T) {
	ctx := context.Background()

	t.Run("same key and payload replays the stored result", func(t *testing.T) {
		f := newCreateFixture(t)
		userID := uuid.New()
		key := uuid.New()

		first, err := f.uc.CreateBooking(ctx, f.request(), userID, key)
		require.NoError(t, err)
		require.False(t, first.IsReplayed)

		second, err := f.uc.CreateBooking(ctx, f.request(), userID, key)
		require.NoError(t, err)
		assert.True(t, second.IsReplayed)
		assert.Equal(t, first.Booking.ID, second.Booking.ID)

		// No second booking row, no second notification.
		assert.Equal(t, []string{"booking_created"}, f.store.notificationTopics())
	})

	t.Run("same key with a different payload is rejected", func(t *testing.T) {
		f := newCreateFixture(t)
		userID := uuid.New()
		key := uuid.New()

		_, err := f.uc.CreateBooking(ctx, f.request(), userID, key)
		require.NoError(t, err)

		req := f.request()
		req.Guests = 3
		_, err = f.uc.CreateBooking(ctx, req, userID, key)
		require.ErrorIs(t, err, commands.ErrIdempotencyKeyReused)
	})

	t.Run("key still processing reports in progress", func(t *testing.T) {
		f := newCreateFixture(t)
		userID := uuid.New()
		key := uuid.New()

		_, err := f.uc.CreateBooking(ctx, f.request(), userID, key)
		require.NoError(t, err)

		// Simulate a claim whose transaction has not finished yet.
		rec := f.store.idempotency[idemKey{key, userID}]
		rec.Status = shared.IdempotencyStatusProcessing
		rec.ResultBookingID = nil

		_, err = f.uc.CreateBooking(ctx, f.request(), userID, key)
		require.ErrorIs(t, err, commands.ErrBookingInProgress)
	})

	t.Run("expired claim is taken over", func(t *testing.T) {
		f := newCreateFixture(t)
		userID := uuid.New()
		key := uuid.New()

		// A crashed request left the key processing; its TTL has passed.
		f.store.idempotency[idemKey{key, userID}] = &shared.IdempotencyRecord{
			Key:         key,
			UserID:      userID,
			Status:      shared.IdempotencyStatusProcessing,
			RequestHash: "stale",
			ExpiresAt:   testNow.Add(-time.Minute),
		}

		result, err := f.uc.CreateBooking(ctx, f.request(), userID, key)
		require.NoError(t, err)
		assert.False(t, result.IsReplayed)
	})

	t.Run("scoped per user: another user may reuse the key value", func(t *testing.T) {
		f := newCreateFixture(t)
		key := uuid.New()

		_, err := f.uc.CreateBooking(ctx, f.request(), uuid.New(), key)
		require.NoError(t, err)

		_, err = f.uc.CreateBooking(ctx, f.request(), uuid.New(), key)
		require.NoError(t, err)
	})
}
