package stats

import (
	"time"

	"github.com/petfood-ae/storefront/internal/core"
	"github.com/shopspring/decimal"
)

const day = 24 * time.Hour

// GranularityFor picks the bucket size from the span of r
func GranularityFor(r core.DateRange) core.Granularity {
	span := r.Span()
	switch {
	case span <= 31*day:
		return core.GranularityDay
	case span <= 93*day:
		return core.GranularityWeek
	case span <= 366*day:
		return core.GranularityMonth
	default:
		return core.GranularityYear
	}
}

// Buckets splits r into consecutive calendar units of size g. The first and
// last buckets are clipped to r so the buckets tile it with no gaps or overlaps.
// Every bucket starts with zero orders and zero revenue.
func Buckets(r core.DateRange, g core.Granularity) []core.PeriodBucket {
	buckets := make([]core.PeriodBucket, 0)
	if r.End.Before(r.Start) {
		return buckets
	}

	for cursor := unitStart(r.Start, g); !cursor.After(r.End); {
		next := nextUnit(cursor, g)

		start := cursor
		if start.Before(r.Start) {
			start = r.Start
		}
		end := next.Add(-time.Nanosecond)
		if end.After(r.End) {
			end = r.End
		}

		buckets = append(buckets, core.PeriodBucket{
			Label:       bucketLabel(start, g),
			PeriodStart: start,
			PeriodEnd:   end,
			Revenue:     decimal.Zero,
		})
		cursor = next
	}
	return buckets
}

func unitStart(t time.Time, g core.Granularity) time.Time {
	switch g {
	case core.GranularityWeek:
		return startOfWeek(t)
	case core.GranularityMonth:
		return startOfMonth(t)
	case core.GranularityYear:
		return startOfYear(t)
	default:
		return startOfDay(t)
	}
}

func nextUnit(t time.Time, g core.Granularity) time.Time {
	switch g {
	case core.GranularityWeek:
		return t.AddDate(0, 0, 7)
	case core.GranularityMonth:
		return t.AddDate(0, 1, 0)
	case core.GranularityYear:
		return t.AddDate(1, 0, 0)
	default:
		return t.AddDate(0, 0, 1)
	}
}

func bucketLabel(start time.Time, g core.Granularity) string {
	switch g {
	case core.GranularityWeek:
		return "Week of " + start.Format(dateLayout)
	case core.GranularityMonth:
		return start.Format("Jan 2006")
	case core.GranularityYear:
		return start.Format("2006")
	default:
		return start.Format(dateLayout)
	}
}
