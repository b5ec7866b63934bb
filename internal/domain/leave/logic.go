package leave

import "time"

// CalculateDays returns the inclusive day count between start and end, both
// truncated to their calendar date. start == end is one day.
func CalculateDays(start, end time.Time) (int, error) {
	startDay := truncateToDay(start)
	endDay := truncateToDay(end)
	if endDay.Before(startDay) {
		return 0, ErrInvalidRange
	}
	return int(endDay.Sub(startDay).Hours()/24) + 1, nil
}

// Overlaps reports whether two inclusive date ranges share at least one day.
func Overlaps(aStart, aEnd, bStart, bEnd time.Time) bool {
	return !truncateToDay(aStart).After(truncateToDay(bEnd)) &&
		!truncateToDay(aEnd).Before(truncateToDay(bStart))
}

func truncateToDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
