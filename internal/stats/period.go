package stats

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/petfood-ae/storefront/internal/core"
)

// ErrInvalidDate is returned when a custom range bound cannot be parsed
var ErrInvalidDate = errors.New("invalid date, expected YYYY-MM-DD")

const dateLayout = "2006-01-02"

// ResolveRange maps a period selector to a concrete inclusive interval in now's
// location. A custom period with a missing bound falls back to the current month.
func ResolveRange(period core.Period, from, to string, now time.Time) (core.DateRange, error) {
	switch period {
	case core.PeriodDay:
		return core.DateRange{Start: startOfDay(now), End: endOfDay(now)}, nil
	case core.PeriodWeek:
		start := startOfWeek(now)
		return core.DateRange{Start: start, End: start.AddDate(0, 0, 7).Add(-time.Nanosecond)}, nil
	case core.PeriodYear:
		start := startOfYear(now)
		return core.DateRange{Start: start, End: start.AddDate(1, 0, 0).Add(-time.Nanosecond)}, nil
	case core.PeriodCustom:
		from, to = strings.TrimSpace(from), strings.TrimSpace(to)
		if from == "" || to == "" {
			return monthRange(now), nil
		}

		fromDate, err := parseDate(from, now.Location())
		if err != nil {
			return core.DateRange{}, fmt.Errorf("from %q: %w", from, err)
		}
		toDate, err := parseDate(to, now.Location())
		if err != nil {
			return core.DateRange{}, fmt.Errorf("to %q: %w", to, err)
		}

		if toDate.Before(fromDate) {
			fromDate, toDate = toDate, fromDate
		}
		return core.DateRange{Start: startOfDay(fromDate), End: endOfDay(toDate)}, nil
	default:
		return monthRange(now), nil
	}
}

// PeriodLabel renders a human readable description of the resolved range
func PeriodLabel(period core.Period, r core.DateRange) string {
	switch period {
	case core.PeriodDay:
		return r.Start.Format("Monday, 02 Jan 2006")
	case core.PeriodWeek:
		return fmt.Sprintf("Week %s to %s", r.Start.Format(dateLayout), r.End.Format(dateLayout))
	case core.PeriodYear:
		return r.Start.Format("2006")
	case core.PeriodCustom:
		return fmt.Sprintf("%s to %s", r.Start.Format(dateLayout), r.End.Format(dateLayout))
	default:
		return r.Start.Format("January 2006")
	}
}

func parseDate(value string, loc *time.Location) (time.Time, error) {
	if t, err := time.ParseInLocation(dateLayout, value, loc); err == nil {
		return t, nil
	}
	if t, err := time.Parse(time.RFC3339, value); err == nil {
		return t.In(loc), nil
	}
	return time.Time{}, ErrInvalidDate
}

func monthRange(now time.Time) core.DateRange {
	start := startOfMonth(now)
	return core.DateRange{Start: start, End: start.AddDate(0, 1, 0).Add(-time.Nanosecond)}
}

func startOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

func endOfDay(t time.Time) time.Time {
	return startOfDay(t).AddDate(0, 0, 1).Add(-time.Nanosecond)
}

// startOfWeek returns the Sunday that begins t's week
func startOfWeek(t time.Time) time.Time {
	return startOfDay(t).AddDate(0, 0, -int(t.Weekday()))
}

func startOfMonth(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, t.Location())
}

func startOfYear(t time.Time) time.Time {
	return time.Date(t.Year(), time.January, 1, 0, 0, 0, 0, t.Location())
}
