//go:build unit

package booking_test

import (
	"testing"
	"time"

	"stayhub/internal/domain/booking"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func day(s string) time.Time {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		panic(err)
	}
	return t
}

func stay(t *testing.T, in, out string) booking.StayRange {
	t.Helper()
	r, err := booking.NewStayRange(day(in), day(out))
	require.NoError(t, err)
	return r
}

func TestNewStayRange(t *testing.T) {
	t.Run("valid range", func(t *testing.T) {
		r, err := booking.NewStayRange(day("2024-06-10"), day("2024-06-15"))
		require.NoError(t, err)
		assert.Equal(t, 5, r.Nights())
	})

	t.Run("check-out equal to check-in", func(t *testing.T) {
		_, err := booking.NewStayRange(day("2024-06-10"), day("2024-06-10"))
		require.Error(t, err)
	})

	t.Run("check-out before check-in", func(t *testing.T) {
		_, err := booking.NewStayRange(day("2024-06-15"), day("2024-06-10"))
		require.Error(t, err)
	})

	t.Run("time components are truncated to day", func(t *testing.T) {
		in := time.Date(2024, 6, 10, 15, 30, 0, 0, time.UTC)
		out := time.Date(2024, 6, 12, 3, 0, 0, 0, time.UTC)

		r, err := booking.NewStayRange(in, out)
		require.NoError(t, err)

		assert.Equal(t, day("2024-06-10"), r.CheckIn())
		assert.Equal(t, day("2024-06-12"), r.CheckOut())
	})

	t.Run("same day after truncation is rejected", func(t *testing.T) {
		in := time.Date(2024, 6, 10, 1, 0, 0, 0, time.UTC)
		out := time.Date(2024, 6, 10, 23, 0, 0, 0, time.UTC)

		_, err := booking.NewStayRange(in, out)
		require.Error(t, err)
	})
}

func TestStayRangeOverlaps(t *testing.T) {
	cases := []struct {
		name string
		a    [2]string
		b    [2]string
		want bool
	}{
		{"identical ranges", [2]string{"2024-06-10", "2024-06-15"}, [2]string{"2024-06-10", "2024-06-15"}, true},
		{"partial overlap at tail", [2]string{"2024-06-10", "2024-06-15"}, [2]string{"2024-06-13", "2024-06-20"}, true},
		{"partial overlap at head", [2]string{"2024-06-13", "2024-06-20"}, [2]string{"2024-06-10", "2024-06-15"}, true},
		{"fully contained", [2]string{"2024-06-10", "2024-06-20"}, [2]string{"2024-06-12", "2024-06-14"}, true},
		{"back-to-back stays do not collide", [2]string{"2024-06-10", "2024-06-15"}, [2]string{"2024-06-15", "2024-06-20"}, false},
		{"back-to-back reversed", [2]string{"2024-06-15", "2024-06-20"}, [2]string{"2024-06-10", "2024-06-15"}, false},
		{"disjoint with gap", [2]string{"2024-06-10", "2024-06-12"}, [2]string{"2024-06-20", "2024-06-25"}, false},
		{"single night inside", [2]string{"2024-06-10", "2024-06-15"}, [2]string{"2024-06-12", "2024-06-13"}, true},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			a := stay(t, c.a[0], c.a[1])
			b := stay(t, c.b[0], c.b[1])

			assert.Equal(t, c.want, a.Overlaps(b))
			assert.Equal(t, c.want, b.Overlaps(a), "overlap must be symmetric")
		})
	}
}

func TestStayRangeDates(t *testing.T) {
	r := stay(t, "2024-06-10", "2024-06-13")

	dates := r.Dates()
	require.Len(t, dates, 3)
	assert.Equal(t, day("2024-06-10"), dates[0])
	assert.Equal(t, day("2024-06-11"), dates[1])
	assert.Equal(t, day("2024-06-12"), dates[2])
}

func TestStayRangeString(t *testing.T) {
	r := stay(t, "2024-06-10", "2024-06-15")
	assert.Equal(t, "[2024-06-10,2024-06-15)", r.String())
}

func TestNewMoney(t *testing.T) {
	t.Run("valid amount", func(t *testing.T) {
		m, err := booking.NewMoney(12500)
		require.NoError(t, err)
		assert.Equal(t, int64(12500), m.Cents())
	})

	t.Run("zero amount", func(t *testing.T) {
		m, err := booking.NewMoney(0)
		require.NoError(t, err)
		assert.Equal(t, int64(0), m.Cents())
	})

	t.Run("negative amount", func(t *testing.T) {
		_, err := booking.NewMoney(-1)
		require.ErrorIs(t, err, booking.ErrNegativeAmount)
	})
}
