// internal/service/coldlist/dates.go
package coldlist

import (
	"strings"
	"time"

	xerrors "coldlist-service/internal/pkg/errors"
)

const dayLayout = "2006-01-02"

// StartOfDay truncates t to midnight of its calendar day in loc.
func StartOfDay(t time.Time, loc *time.Location) time.Time {
	y, m, d := t.In(loc).Date()
	return time.Date(y, m, d, 0, 0, 0, 0, loc)
}

// EndOfDay is the last instant of t's calendar day in loc.
func EndOfDay(t time.Time, loc *time.Location) time.Time {
	return StartOfDay(t, loc).AddDate(0, 0, 1).Add(-time.Nanosecond)
}

// SameDay compares the calendar days of a and b in loc.
func SameDay(a, b time.Time, loc *time.Location) bool {
	ay, am, ad := a.In(loc).Date()
	by, bm, bd := b.In(loc).Date()
	return ay == by && am == bm && ad == bd
}

// ParseDay parses a YYYY-MM-DD query value. Empty means today.
func ParseDay(s string, now time.Time, loc *time.Location) (time.Time, error) {
	if s == "" {
		return StartOfDay(now, loc), nil
	}
	t, err := time.ParseInLocation(dayLayout, s, loc)
	if err != nil {
		return time.Time{}, xerrors.Newf(xerrors.KindInvalidInput, "invalid date %q, expected YYYY-MM-DD", s)
	}
	return t, nil
}

// ParseCampaignDate reads a campaign bound. A bare YYYY-MM-DD is that day in
// loc; an RFC3339 timestamp keeps the calendar date written in its own offset.
func ParseCampaignDate(s string, loc *time.Location) (time.Time, error) {
	s = strings.TrimSpace(s)
	if t, err := time.ParseInLocation(dayLayout, s, loc); err == nil {
		return t, nil
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}, xerrors.Newf(xerrors.KindInvalidInput, "invalid date %q, expected YYYY-MM-DD", s)
	}
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, loc), nil
}
