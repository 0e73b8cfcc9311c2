package domain

import (
	"fmt"
	"strconv"
	"strings"
)

// Weekday is an iCalendar day code.
type Weekday string

const (
	Monday    Weekday = "MO"
	Tuesday   Weekday = "TU"
	Wednesday Weekday = "WE"
	Thursday  Weekday = "TH"
	Friday    Weekday = "FR"
	Saturday  Weekday = "SA"
	Sunday    Weekday = "SU"
)

// Week lists the day codes in the order they are stored and exported.
var Week = []Weekday{Monday, Tuesday, Wednesday, Thursday, Friday, Saturday, Sunday}

// Valid reports whether d is one of the seven codes.
func (d Weekday) Valid() bool {
	for _, w := range Week {
		if w == d {
			return true
		}
	}
	return false
}

// RecurrenceKind is how a routine's default schedule repeats.
type RecurrenceKind string

const (
	RecurDaily    RecurrenceKind = "daily"
	RecurWeekdays RecurrenceKind = "weekdays"
	RecurWeekly   RecurrenceKind = "weekly"
	RecurMonthly  RecurrenceKind = "monthly"
	RecurCustom   RecurrenceKind = "custom"
)

// PresetDays returns the day set a preset kind stands for. Custom has none.
// Weekly repeats on Monday and monthly is anchored to a date, not to days.
func PresetDays(kind RecurrenceKind) ([]Weekday, error) {
	switch kind {
	case RecurDaily:
		return append([]Weekday{}, Week...), nil
	case RecurWeekdays:
		return []Weekday{Monday, Tuesday, Wednesday, Thursday, Friday}, nil
	case RecurWeekly:
		return []Weekday{Monday}, nil
	case RecurMonthly:
		return []Weekday{}, nil
	default:
		return nil, Invalidf("unknown recurrence preset %q", kind)
	}
}

// RoutineSchedule is a routine's own default recurrence template. It is
// independent from the calendar placements in ScheduledInstance.
type RoutineSchedule struct {
	DurationMinutes int            `json:"duration"`
	TimeOfDay       string         `json:"timeOfDay"` // HH:MM
	DaysOfWeek      []Weekday      `json:"daysOfWeek"`
	Frequency       RecurrenceKind `json:"frequency"`
}

// DefaultRoutineSchedule is what a routine gets the first time it is scheduled.
func DefaultRoutineSchedule() RoutineSchedule {
	days, _ := PresetDays(RecurDaily)
	return RoutineSchedule{
		DurationMinutes: DefaultInstanceDuration,
		TimeOfDay:       "09:00",
		DaysOfWeek:      days,
		Frequency:       RecurDaily,
	}
}

// ApplyPreset sets the frequency and overwrites the day set with the preset's days.
// Asking for RecurCustom keeps the current days.
func (s *RoutineSchedule) ApplyPreset(kind RecurrenceKind) error {
	if kind == RecurCustom {
		s.Frequency = RecurCustom
		return nil
	}
	days, err := PresetDays(kind)
	if err != nil {
		return err
	}
	s.Frequency = kind
	s.DaysOfWeek = days
	return nil
}

// ToggleDay flips one day in or out of the set and forces the custom frequency.
func (s *RoutineSchedule) ToggleDay(day Weekday) error {
	if !day.Valid() {
		return Invalidf("unknown weekday %q", day)
	}
	present := make(map[Weekday]bool, len(s.DaysOfWeek)+1)
	for _, d := range s.DaysOfWeek {
		present[d] = true
	}
	present[day] = !present[day]

	days := make([]Weekday, 0, len(Week))
	for _, d := range Week {
		if present[d] {
			days = append(days, d)
		}
	}
	s.DaysOfWeek = days
	s.Frequency = RecurCustom
	return nil
}

// Validate checks duration, time of day, days and frequency.
func (s RoutineSchedule) Validate() error {
	if s.DurationMinutes <= 0 {
		return Invalidf("duration must be positive, got %d", s.DurationMinutes)
	}
	if _, _, err := ParseTimeOfDay(s.TimeOfDay); err != nil {
		return err
	}
	for _, d := range s.DaysOfWeek {
		if !d.Valid() {
			return Invalidf("unknown weekday %q", d)
		}
	}
	switch s.Frequency {
	case RecurDaily, RecurWeekdays, RecurWeekly, RecurMonthly, RecurCustom:
		return nil
	default:
		return Invalidf("unknown frequency %q", s.Frequency)
	}
}

// Clone returns a copy that shares no slices with s.
func (s RoutineSchedule) Clone() RoutineSchedule {
	s.DaysOfWeek = append([]Weekday{}, s.DaysOfWeek...)
	return s
}

// ParseTimeOfDay splits an "HH:MM" string into hour and minute.
func ParseTimeOfDay(v string) (hour, minute int, err error) {
	parts := strings.Split(v, ":")
	if len(parts) != 2 || len(parts[0]) != 2 || len(parts[1]) != 2 {
		return 0, 0, Invalidf("time of day must be HH:MM, got %q", v)
	}
	hour, errH := strconv.Atoi(parts[0])
	minute, errM := strconv.Atoi(parts[1])
	if errH != nil || errM != nil || hour < 0 || hour > 23 || minute < 0 || minute > 59 {
		return 0, 0, Invalidf("time of day must be HH:MM, got %q", v)
	}
	return hour, minute, nil
}

// FormatTimeOfDay is the inverse of ParseTimeOfDay.
func FormatTimeOfDay(hour, minute int) string {
	return fmt.Sprintf("%02d:%02d", hour, minute)
}
