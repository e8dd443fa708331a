package reminder

import (
	"strings"
	"time"

	"github.com/kodwo/billminder/internal/fault"
)

// DueInstant resolves the due input to a UTC instant. A bare date is
// interpreted at hour:00:00 UTC; a full timestamp is used as-is, converted
// to UTC (hour is ignored).
func DueInstant(due string, hour int) (time.Time, error) {
	due = strings.TrimSpace(due)
	if due == "" {
		return time.Time{}, fault.New(fault.InvalidInput, "due_date required")
	}

	if strings.Contains(due, "T") {
		t, err := time.Parse(time.RFC3339, due)
		if err != nil {
			return time.Time{}, fault.Wrap(fault.InvalidInput, err, "parsing due timestamp %q", due)
		}
		return t.UTC(), nil
	}

	d, err := time.Parse("2006-01-02", due)
	if err != nil {
		return time.Time{}, fault.Wrap(fault.InvalidInput, err, "parsing due date %q", due)
	}
	return time.Date(d.Year(), d.Month(), d.Day(), hour, 0, 0, 0, time.UTC), nil
}

// BuildPlan computes one event per offset, in input order. Offsets are taken
// as given: no re-ordering, de-duplication, or clamping. Duplicates and
// negative values (after the due date) are preserved. Every event shares the
// due instant's wall-clock time of day.
func BuildPlan(dueInstant time.Time, offsets []int) []Event {
	events := make([]Event, 0, len(offsets))
	for _, off := range offsets {
		kind := EventReminder
		if off == 0 {
			kind = EventDueDay
		}
		events = append(events, Event{
			When:       dueInstant.Add(-time.Duration(off) * 24 * time.Hour),
			Type:       kind,
			OffsetDays: off,
		})
	}
	return events
}
