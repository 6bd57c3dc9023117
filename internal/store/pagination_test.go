package store

import (
	"encoding/base64"
	"testing"
	"time"

	"github.com/safar/storefront/internal/database"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCursorRoundTrip(t *testing.T) {
	cursor := OrderCursor{
		CreatedAt: time.Date(2026, 3, 14, 9, 26, 53, 0, time.UTC),
		ID:        42,
	}

	decoded, err := DecodeCursor(EncodeCursor(cursor))
	require.NoError(t, err)
	assert.True(t, cursor.CreatedAt.Equal(decoded.CreatedAt))
	assert.Equal(t, cursor.ID, decoded.ID)
}

func TestDecodeEmptyCursorStartsAtNow(t *testing.T) {
	decoded, err := DecodeCursor("")
	require.NoError(t, err)
	assert.Equal(t, int64(1<<63-1), decoded.ID)
	assert.WithinDuration(t, time.Now(), decoded.CreatedAt, time.Minute)
}

func TestDecodeInvalidCursor(t *testing.T) {
	_, err := DecodeCursor("not base64!!")
	assert.ErrorIs(t, err, database.ErrInvalidCursor)

	// Valid base64 that is not a cursor payload.
	_, err = DecodeCursor(base64.URLEncoding.EncodeToString([]byte("nonsense")))
	assert.ErrorIs(t, err, database.ErrInvalidCursor)
}

func TestNewOffsetPage(t *testing.T) {
	page := newOffsetPage([]int{}, 45, 2, 20)

	assert.Equal(t, int64(45), page.Total)
	assert.Equal(t, 2, page.Page)
	assert.Equal(t, 3, page.TotalPages)
}
