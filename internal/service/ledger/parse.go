package ledger

import (
	"errors"
	"math"
	"strconv"
	"strings"
	"time"
	"unicode"
)

var (
	ErrInvalidAmount = errors.New("amount is not a valid number")
	ErrInvalidDate   = errors.New("date is not valid")
)

// ParseAmount reads the base-10 integer prefix of s: leading whitespace, an
// optional sign and at least one digit. Trailing text is ignored, so "150rb"
// is 150.
func ParseAmount(s string) (int64, error) {
	s = strings.TrimLeftFunc(s, unicode.IsSpace)

	negative := false
	if s != "" && (s[0] == '+' || s[0] == '-') {
		negative = s[0] == '-'
		s = s[1:]
	}

	end := 0
	for end < len(s) && s[end] >= '0' && s[end] <= '9' {
		end++
	}
	if end == 0 {
		return 0, ErrInvalidAmount
	}

	n, err := strconv.ParseUint(s[:end], 10, 64)
	if err != nil || n > math.MaxInt64 {
		return 0, ErrInvalidAmount
	}
	if negative {
		return -int64(n), nil
	}
	return int64(n), nil
}

var dateLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02 15:04:05",
	"2006-01-02",
	"2006-01",
	"2006",
}

// ParseDate accepts ISO-8601 dates and date-times (UTC when no offset is
// given) or a Unix timestamp in milliseconds.
func ParseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, ErrInvalidDate
	}

	if ms, err := strconv.ParseInt(s, 10, 64); err == nil && len(s) > 4 {
		return time.UnixMilli(ms).UTC(), nil
	}

	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, ErrInvalidDate
}
