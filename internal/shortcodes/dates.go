package shortcodes

import (
	"strconv"
	"time"

	"github.com/starford/gazette/internal/models"
	"github.com/starford/gazette/internal/parser"
)

// Date layouts used by the date filters.
const (
	LayoutMonthDayYear     = "Jan. 02, 2006"
	LayoutFullMonthDayYear = "January 2, 2006"
	LayoutHTMLDate         = "2006-01-02T15:04:05-07:00"
)

// CopyrightSince is the first year of the copyright range.
const CopyrightSince = 2021

// MonthDayYear formats t as "Jan. 02, 2006".
func MonthDayYear(t time.Time) string { return t.Format(LayoutMonthDayYear) }

// FullMonthDayYear formats t as "January 2, 2006".
func FullMonthDayYear(t time.Time) string { return t.Format(LayoutFullMonthDayYear) }

// HTMLDate formats t as an RFC 3339 timestamp with a numeric offset.
// Sub-second precision is dropped.
func HTMLDate(t time.Time) string { return t.Format(LayoutHTMLDate) }

// DateToRFC3339 formats t for feeds.
func DateToRFC3339(t time.Time) string { return t.Format(time.RFC3339) }

// CopyrightYear returns "since" alone when now falls in that year, and
// "since - year" otherwise.
func CopyrightYear(now time.Time, since int) string {
	y := now.Year()
	if y == since {
		return strconv.Itoa(y)
	}
	return strconv.Itoa(since) + " - " + strconv.Itoa(y)
}

// NewestItemDate returns the latest date among items, or the zero time.
func NewestItemDate(items []*models.Item) time.Time {
	var newest time.Time
	for _, it := range items {
		if it.Date.After(newest) {
			newest = it.Date
		}
	}
	return newest
}

// toTime accepts the date shapes templates pass around.
func toTime(v any) (time.Time, bool) {
	switch d := v.(type) {
	case time.Time:
		return d, !d.IsZero()
	case *time.Time:
		if d == nil {
			return time.Time{}, false
		}
		return *d, !d.IsZero()
	case string:
		return parser.ParseDate(d)
	}
	return time.Time{}, false
}
