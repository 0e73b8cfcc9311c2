package domain

import "time"

// DateLayout is the calendar date format used by scheduled instances.
const DateLayout = "2006-01-02"

// DefaultInstanceDuration is the duration, in minutes, of a fresh calendar placement.
const DefaultInstanceDuration = 15

// Recurrence is how a calendar placement repeats.
type Recurrence string

const (
	RepeatOnce     Recurrence = "once"
	RepeatDaily    Recurrence = "daily"
	RepeatWeekly   Recurrence = "weekly"
	RepeatWeekdays Recurrence = "weekdays"
)

// Valid reports whether r is a known recurrence.
func (r Recurrence) Valid() bool {
	switch r {
	case RepeatOnce, RepeatDaily, RepeatWeekly, RepeatWeekdays:
		return true
	}
	return false
}

// ScheduledInstance places a routine on a calendar date. RoutineID is a weak
// reference: the routine may be deleted while the instance lives on.
type ScheduledInstance struct {
	ID              string     `json:"id"`
	RoutineID       int64      `json:"routineId"`
	Date            string     `json:"date"`
	DurationMinutes int        `json:"duration"`
	Recurrence      Recurrence `json:"recurrence"`
}

// ParseDate parses a YYYY-MM-DD calendar date.
func ParseDate(v string) (time.Time, error) {
	t, err := time.Parse(DateLayout, v)
	if err != nil {
		return time.Time{}, Invalidf("date must be YYYY-MM-DD, got %q", v)
	}
	return t, nil
}

// Validate checks the date, duration and recurrence of an instance.
func (si ScheduledInstance) Validate() error {
	if _, err := ParseDate(si.Date); err != nil {
		return err
	}
	if si.DurationMinutes <= 0 {
		return Invalidf("duration must be positive, got %d", si.DurationMinutes)
	}
	if !si.Recurrence.Valid() {
		return Invalidf("unknown recurrence %q", si.Recurrence)
	}
	return nil
}
