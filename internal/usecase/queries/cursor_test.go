//go:build unit

package queries_test

import (
	"testing"
	"time"

	"stayhub/internal/usecase/queries"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAfterCursorRoundTrip(t *testing.T) {
	createdAt := time.Date(2024, 7, 10, 15, 4, 5, 123456000, time.UTC)
	id := uuid.New()

	encoded := queries.EncodeAfterCursor(createdAt, id)
	gotTime, gotID, err := queries.DecodeAfterCursor(encoded)
	require.NoError(t, err)

	assert.True(t, gotTime.Equal(createdAt), "expected %v, got %v", createdAt, gotTime)
	assert.Equal(t, id, gotID)
}

func TestAfterCursorTruncatesBelowMicroseconds(t *testing.T) {
	createdAt := time.Date(2024, 7, 10, 15, 4, 5, 123456789, time.UTC)
	id := uuid.New()

	gotTime, _, err := queries.DecodeAfterCursor(queries.EncodeAfterCursor(createdAt, id))
	require.NoError(t, err)

	// Nanoseconds below microsecond precision are dropped, matching the
	// precision of the timestamptz columns the cursor points into.
	assert.True(t, gotTime.Equal(createdAt.Truncate(time.Microsecond)))
}

func TestDecodeAfterCursorRejectsGarbage(t *testing.T) {
	testCases := []struct {
		name   string
		cursor string
	}{
		{"empty", ""},
		{"not base64", "!!!"},
		{"wrong version", "djI6MTIzLWFiYw=="},            // "v2:123-abc"
		{"missing uuid", "djE6MTIz"},                     // "v1:123"
		{"bad timestamp", "djE6YWJjLWRlZg=="},            // "v1:abc-def"
		{"bad uuid", "djE6MTcwMDAwMDAwMDAwMDAwMC1ub3Bl"}, // "v1:1700000000000000-nope"
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, _, err := queries.DecodeAfterCursor(tc.cursor)
			assert.Error(t, err)
		})
	}
}

func TestValidateLimit(t *testing.T) {
	assert.Equal(t, 20, queries.ValidateLimit(0))
	assert.Equal(t, 20, queries.ValidateLimit(-5))
	assert.Equal(t, 50, queries.ValidateLimit(50))
	assert.Equal(t, queries.MaxListLimit, queries.ValidateLimit(queries.MaxListLimit+1))
}
