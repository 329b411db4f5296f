package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseTimestamp_Formats(t *testing.T) {
	want := time.Date(2025, 3, 1, 10, 30, 0, 0, time.UTC)
	for _, raw := range []string{
		"2025-03-01T10:30:00Z",
		"2025-03-01T10:30:00+00:00",
		"2025-03-01T11:30:00+01:00",
		"2025-03-01T10:30:00.000000+00:00",
		"2025-03-01 10:30:00",
	} {
		got, ok := ParseTimestamp(raw)
		require.True(t, ok, raw)
		assert.True(t, want.Equal(got), raw)
	}
}

func TestTimestampMillis_InvalidIsZero(t *testing.T) {
	assert.Equal(t, int64(0), TimestampMillis(""))
	assert.Equal(t, int64(0), TimestampMillis("yesterday"))
	assert.Equal(t, int64(1735689600000), TimestampMillis("2025-01-01T00:00:00Z"))
}

func TestSortTradesAscending_UnparseableFirstAndStable(t *testing.T) {
	trades := []Trade{
		{ID: 1, CreatedAt: "2025-01-02T00:00:00Z"},
		{ID: 2, CreatedAt: "garbage"},
		{ID: 3, CreatedAt: "2025-01-01T00:00:00Z"},
		{ID: 4, CreatedAt: ""},
	}
	SortTradesAscending(trades)
	got := []int64{trades[0].ID, trades[1].ID, trades[2].ID, trades[3].ID}
	assert.Equal(t, []int64{2, 4, 3, 1}, got)
}

func TestSortTradesAscending_SameInstantByID(t *testing.T) {
	at := "2025-01-01T10:00:00Z"
	// newest first, the way the exporter lists them
	trades := []Trade{
		mkTrade("a", SideSell, "BTC", 1, 120, 0, at),
		mkTrade("a", SideBuy, "BTC", 1, 100, 0, at),
	}
	trades[0].ID, trades[1].ID = 8, 7

	SortTradesAscending(trades)
	assert.Equal(t, int64(7), trades[0].ID)
	assert.Equal(t, int64(8), trades[1].ID)

	closed := MatchTrades(trades)
	require.Len(t, closed, 1)
	assert.InDelta(t, 20, closed[0].PnLEUR, 1e-9)
}

func TestSortTradesAscending_MissingIDKeepsInputOrder(t *testing.T) {
	at := "2025-01-01T10:00:00Z"
	trades := []Trade{
		{ID: 5, Reason: "first", CreatedAt: at},
		{ID: 0, Reason: "second", CreatedAt: at},
	}
	SortTradesAscending(trades)
	assert.Equal(t, "first", trades[0].Reason)
	assert.Equal(t, "second", trades[1].Reason)
}
