package core

import "time"

// Window is an inclusive calendar-date range used to filter transactions
// before aggregation. Comparison is at day granularity: a transaction dated
// anywhere inside the end day is still in the window.
type Window struct {
	Start time.Time
	End   time.Time
}

// LastNDays returns the rolling window covering the n days ending at end,
// inclusive of the end day itself.
func LastNDays(end time.Time, n int) Window {
	return Window{Start: end.AddDate(0, 0, -(n - 1)), End: end}
}

// Contains reports whether the date falls inside the window. Empty dates
// are never contained. A zero Start means "beginning of time".
func (w Window) Contains(d Date) bool {
	if d.IsEmpty() {
		return false
	}
	day := dayOf(d.Time)
	if !w.Start.IsZero() && day.Before(dayOf(w.Start)) {
		return false
	}
	return !day.After(dayOf(w.End))
}

func dayOf(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
