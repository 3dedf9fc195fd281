//go:build unit

package booking_test

import (
	"testing"
	"time"

	"stayhub/internal/domain/booking"
	"stayhub/tests/common/builder"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewBooking(t *testing.T) {
	t.Run("basic success case", func(t *testing.T) {
		b, err := builder.NewBookingBuilder().BuildDomain()
		require.NoError(t, err)
		require.NotNil(t, b)

		assert.NotEqual(t, uuid.Nil, b.ID())
		assert.Equal(t, booking.StatusPending, b.Status())
		assert.Equal(t, booking.PaymentPending, b.PaymentStatus())
		assert.Zero(t, b.PaymentAttempts())
		assert.Nil(t, b.ConfirmedAt())
	})

	t.Run("validation", func(t *testing.T) {
		cases := []struct {
			name   string
			mutate func(*builder.BookingBuilder)
			errIs  error
		}{
			{
				name:   "zero guests",
				mutate: func(b *builder.BookingBuilder) { b.Guests = 0 },
				errIs:  booking.ErrInvalidGuestCount,
			},
			{
				name:   "negative guests",
				mutate: func(b *builder.BookingBuilder) { b.Guests = -1 },
				errIs:  booking.ErrInvalidGuestCount,
			},
			{
				name:   "missing host",
				mutate: func(b *builder.BookingBuilder) { b.HostID = uuid.Nil },
				errIs:  booking.ErrMissingHost,
			},
			{
				name:   "zero stay range",
				mutate: func(b *builder.BookingBuilder) { b.Stay = booking.StayRange{} },
				errIs:  booking.ErrInvalidStayRange,
			},
		}

		for _, c := range cases {
			t.Run(c.name, func(t *testing.T) {
				b, err := builder.NewBookingBuilder().With(c.mutate).BuildDomain()
				require.Nil(t, b)
				require.ErrorIs(t, err, c.errIs)
			})
		}
	})
}

func TestBookingLifecycle(t *testing.T) {
	now := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)

	newPending := func(t *testing.T) *booking.Booking {
		t.Helper()
		b, err := builder.NewBookingBuilder().BuildDomain()
		require.NoError(t, err)
		return b
	}

	t.Run("happy path to completed", func(t *testing.T) {
		b := newPending(t)

		require.NoError(t, b.RequestPayment())
		assert.Equal(t, booking.StatusPaymentPending, b.Status())
		assert.Equal(t, 1, b.PaymentAttempts())

		require.NoError(t, b.ConfirmPayment(now))
		assert.Equal(t, booking.StatusConfirmed, b.Status())
		assert.Equal(t, booking.PaymentPaid, b.PaymentStatus())
		require.NotNil(t, b.ConfirmedAt())
		assert.Equal(t, now, *b.ConfirmedAt())

		require.NoError(t, b.Complete())
		assert.Equal(t, booking.StatusCompleted, b.Status())
	})

	t.Run("request payment is idempotent", func(t *testing.T) {
		b := newPending(t)

		require.NoError(t, b.RequestPayment())
		require.NoError(t, b.RequestPayment())
		assert.Equal(t, 1, b.PaymentAttempts(), "re-request in payment_pending must not burn an attempt")
	})

	t.Run("confirm payment is not idempotent", func(t *testing.T) {
		b := newPending(t)
		require.NoError(t, b.RequestPayment())
		require.NoError(t, b.ConfirmPayment(now))

		err := b.ConfirmPayment(now)
		require.ErrorIs(t, err, booking.ErrInvalidTransition)
	})

	t.Run("confirm from pending is rejected", func(t *testing.T) {
		b := newPending(t)

		err := b.ConfirmPayment(now)
		require.ErrorIs(t, err, booking.ErrInvalidTransition)
		assert.Equal(t, booking.StatusPending, b.Status())
	})

	t.Run("payment failure and single retry", func(t *testing.T) {
		b := newPending(t)

		require.NoError(t, b.RequestPayment())
		require.NoError(t, b.FailPayment())
		assert.Equal(t, booking.StatusPaymentFailed, b.Status())
		assert.Equal(t, booking.PaymentFailed, b.PaymentStatus())

		require.NoError(t, b.RequestPayment())
		assert.Equal(t, booking.StatusPaymentPending, b.Status())
		assert.Equal(t, booking.PaymentPending, b.PaymentStatus())
		assert.Equal(t, 2, b.PaymentAttempts())

		require.NoError(t, b.FailPayment())
		err := b.RequestPayment()
		require.ErrorIs(t, err, booking.ErrPaymentRetryLimit)
		assert.Equal(t, booking.StatusPaymentFailed, b.Status())
	})

	t.Run("fail payment is idempotent", func(t *testing.T) {
		b := newPending(t)
		require.NoError(t, b.RequestPayment())
		require.NoError(t, b.FailPayment())
		require.NoError(t, b.FailPayment())
	})

	t.Run("cancel before payment", func(t *testing.T) {
		b := newPending(t)

		require.NoError(t, b.Cancel())
		assert.Equal(t, booking.StatusCancelled, b.Status())
		assert.Equal(t, booking.PaymentPending, b.PaymentStatus(), "unpaid cancellation is not a refund")
	})

	t.Run("cancel after payment refunds", func(t *testing.T) {
		b := newPending(t)
		require.NoError(t, b.RequestPayment())
		require.NoError(t, b.ConfirmPayment(now))

		require.NoError(t, b.Cancel())
		assert.Equal(t, booking.StatusCancelled, b.Status())
		assert.Equal(t, booking.PaymentRefunded, b.PaymentStatus())
	})

	t.Run("cancel is idempotent", func(t *testing.T) {
		b := newPending(t)
		require.NoError(t, b.Cancel())
		require.NoError(t, b.Cancel())
	})

	t.Run("complete requires confirmed", func(t *testing.T) {
		b := newPending(t)

		err := b.Complete()
		require.ErrorIs(t, err, booking.ErrInvalidTransition)
	})

	t.Run("cancelled admits no further transitions", func(t *testing.T) {
		b := newPending(t)
		require.NoError(t, b.Cancel())

		require.ErrorIs(t, b.RequestPayment(), booking.ErrInvalidTransition)
		require.ErrorIs(t, b.ConfirmPayment(now), booking.ErrInvalidTransition)
		require.ErrorIs(t, b.FailPayment(), booking.ErrInvalidTransition)
		require.ErrorIs(t, b.Complete(), booking.ErrInvalidTransition)
	})

	t.Run("completed admits no further transitions", func(t *testing.T) {
		b := newPending(t)
		require.NoError(t, b.RequestPayment())
		require.NoError(t, b.ConfirmPayment(now))
		require.NoError(t, b.Complete())

		require.ErrorIs(t, b.RequestPayment(), booking.ErrInvalidTransition)
		require.ErrorIs(t, b.ConfirmPayment(now), booking.ErrInvalidTransition)
		require.ErrorIs(t, b.Cancel(), booking.ErrInvalidTransition)
	})
}

func TestBookingStatusIsTerminal(t *testing.T) {
	assert.True(t, booking.StatusCancelled.IsTerminal())
	assert.True(t, booking.StatusCompleted.IsTerminal())
	assert.True(t, booking.StatusPaymentFailed.IsTerminal())
	assert.False(t, booking.StatusPending.IsTerminal())
	assert.False(t, booking.StatusPaymentPending.IsTerminal())
	assert.False(t, booking.StatusConfirmed.IsTerminal())
}

func TestBookingHasCheckedOut(t *testing.T) {
	b, err := builder.NewBookingBuilder().
		WithStay(time.Date(2024, 6, 10, 0, 0, 0, 0, time.UTC), time.Date(2024, 6, 15, 0, 0, 0, 0, time.UTC)).
		BuildDomain()
	require.NoError(t, err)

	assert.False(t, b.HasCheckedOut(time.Date(2024, 6, 14, 23, 0, 0, 0, time.UTC)))
	assert.True(t, b.HasCheckedOut(time.Date(2024, 6, 15, 0, 0, 0, 0, time.UTC)))
	assert.True(t, b.HasCheckedOut(time.Date(2024, 7, 1, 0, 0, 0, 0, time.UTC)))
}

func TestReconstructBooking(t *testing.T) {
	t.Run("rejects unknown status", func(t *testing.T) {
		b, err := builder.NewBookingBuilder().
			WithStatus(booking.Status("teleported")).
			Reconstruct()
		require.Nil(t, b)
		require.ErrorIs(t, err, booking.ErrInvalidStatus)
	})

	t.Run("round trips fields", func(t *testing.T) {
		bb := builder.NewBookingBuilder().WithStatus(booking.StatusConfirmed).WithPaymentStatus(booking.PaymentPaid)
		b, err := bb.Reconstruct()
		require.NoError(t, err)

		assert.Equal(t, booking.StatusConfirmed, b.Status())
		assert.Equal(t, booking.PaymentPaid, b.PaymentStatus())
		assert.True(t, b.IsActive())
	})
}
