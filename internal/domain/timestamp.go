package domain

import (
	"slices"
	"strings"
	"time"
)

// timestampLayouts covers the formats the trading system writes (Python isoformat,
// with or without fractional seconds and offset) plus a few loose variants.
var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05.999999999Z07:00",
	"2006-01-02 15:04:05.999999999",
	"2006-01-02",
}

// ParseTimestamp parses a timestamp-like string. ok is false when nothing matched.
func ParseTimestamp(raw string) (time.Time, bool) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), true
		}
	}
	return time.Time{}, false
}

// TimestampMillis returns the Unix milliseconds of raw, or 0 when it cannot be parsed.
// 0 is the ordering key for unparseable timestamps.
func TimestampMillis(raw string) int64 {
	t, ok := ParseTimestamp(raw)
	if !ok {
		return 0
	}
	return t.UnixMilli()
}

// SortTradesAscending sorts trades by created_at ascending. Trades on the same instant
// are ordered by id ascending when both carry one (exports list trades newest first);
// otherwise they keep input order.
func SortTradesAscending(trades []Trade) {
	slices.SortStableFunc(trades, func(a, b Trade) int {
		if c := compareInt64(TimestampMillis(a.CreatedAt), TimestampMillis(b.CreatedAt)); c != 0 {
			return c
		}
		return compareIDs(a.ID, b.ID)
	})
}

// compareIDs orders by id only when both ids are assigned.
func compareIDs(a, b int64) int {
	if a <= 0 || b <= 0 {
		return 0
	}
	return compareInt64(a, b)
}

func compareInt64(a, b int64) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	}
	return 0
}
