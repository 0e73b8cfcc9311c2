// Package calendar renders scheduled routines as iCalendar (RFC 5545) documents.
package calendar

import (
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"alcyxob/routine-builder/internal/domain"
)

const (
	DefaultProdID    = "-//RoutineBuilder//EN"
	DefaultStartTime = "09:00"
	FileName         = "routine_schedule.ics"
	ContentType      = "text/calendar; charset=utf-8"

	uidDomain     = "routine-builder"
	localLayout   = "20060102T150405"
	utcLayout     = "20060102T150405Z"
	maxLineOctets = 75
)

// Routines resolves routine ids. *workspace.Workspace satisfies it.
type Routines interface {
	Routine(id int64) (domain.Routine, bool)
}

// Options tunes the rendered document. Zero values fall back to the defaults.
type Options struct {
	StartTime string // HH:MM, local floating time of every placement
	ProdID    string
	Now       time.Time // DTSTAMP
}

func (o Options) withDefaults() Options {
	if o.StartTime == "" {
		o.StartTime = DefaultStartTime
	}
	if o.ProdID == "" {
		o.ProdID = DefaultProdID
	}
	if o.Now.IsZero() {
		o.Now = time.Now()
	}
	return o
}

// Feed renders one event per calendar placement. Placements whose routine is
// gone are skipped.
func Feed(instances []domain.ScheduledInstance, routines Routines, opts Options) (string, error) {
	opts = opts.withDefaults()
	hour, minute, err := domain.ParseTimeOfDay(opts.StartTime)
	if err != nil {
		return "", err
	}

	w := newWriter(opts)
	for _, si := range instances {
		r, ok := routines.Routine(si.RoutineID)
		if !ok {
			continue
		}
		day, err := domain.ParseDate(si.Date)
		if err != nil {
			return "", err
		}
		start := time.Date(day.Year(), day.Month(), day.Day(), hour, minute, 0, 0, time.UTC)
		w.event(event{
			uid:     si.ID,
			summary: r.Name,
			start:   start,
			minutes: si.DurationMinutes,
			rrule:   instanceRule(si.Recurrence, start),
		})
	}
	return w.finish(), nil
}

// ScheduleFeed renders one recurring event per routine that carries its own
// schedule. The first occurrence is placed on anchor's date.
func ScheduleFeed(routines []domain.Routine, anchor time.Time, opts Options) (string, error) {
	opts = opts.withDefaults()

	w := newWriter(opts)
	for _, r := range routines {
		if r.Schedule == nil {
			continue
		}
		hour, minute, err := domain.ParseTimeOfDay(r.Schedule.TimeOfDay)
		if err != nil {
			return "", err
		}
		start := time.Date(anchor.Year(), anchor.Month(), anchor.Day(), hour, minute, 0, 0, time.UTC)
		w.event(event{
			uid:     fmt.Sprintf("routine-%d", r.ID),
			summary: r.Name,
			start:   start,
			minutes: r.Schedule.DurationMinutes,
			rrule:   scheduleRule(*r.Schedule),
		})
	}
	return w.finish(), nil
}

func instanceRule(rec domain.Recurrence, start time.Time) string {
	switch rec {
	case domain.RepeatDaily:
		return "FREQ=DAILY"
	case domain.RepeatWeekly:
		return "FREQ=WEEKLY;BYDAY=" + string(weekdayCode(start.Weekday()))
	case domain.RepeatWeekdays:
		return "FREQ=WEEKLY;BYDAY=MO,TU,WE,TH,FR"
	default:
		return ""
	}
}

func scheduleRule(s domain.RoutineSchedule) string {
	switch s.Frequency {
	case domain.RecurDaily:
		return "FREQ=DAILY"
	case domain.RecurMonthly:
		return "FREQ=MONTHLY"
	}
	if len(s.DaysOfWeek) == 0 {
		return ""
	}
	days := make([]string, len(s.DaysOfWeek))
	for i, d := range s.DaysOfWeek {
		days[i] = string(d)
	}
	return "FREQ=WEEKLY;BYDAY=" + strings.Join(days, ",")
}

func weekdayCode(d time.Weekday) domain.Weekday {
	// time.Weekday starts on Sunday, domain.Week on Monday
	return domain.Week[(int(d)+6)%7]
}

type event struct {
	uid     string
	summary string
	start   time.Time
	minutes int
	rrule   string
}

type writer struct {
	b     strings.Builder
	stamp string
}

func newWriter(opts Options) *writer {
	w := &writer{stamp: opts.Now.UTC().Format(utcLayout)}
	w.line("BEGIN", "VCALENDAR")
	w.line("VERSION", "2.0")
	w.line("PRODID", opts.ProdID)
	w.line("CALSCALE", "GREGORIAN")
	return w
}

func (w *writer) event(e event) {
	w.line("BEGIN", "VEVENT")
	w.line("UID", e.uid+"@"+uidDomain)
	w.line("DTSTAMP", w.stamp)
	w.line("SUMMARY", escapeText(e.summary))
	w.line("DTSTART", e.start.Format(localLayout))
	w.line("DTEND", e.start.Add(time.Duration(e.minutes)*time.Minute).Format(localLayout))
	if e.rrule != "" {
		w.line("RRULE", e.rrule)
	}
	w.line("END", "VEVENT")
}

func (w *writer) finish() string {
	w.line("END", "VCALENDAR")
	return w.b.String()
}

// line writes a content line, folding it at 75 octets without splitting a rune.
func (w *writer) line(name, value string) {
	s := name + ":" + value
	limit := maxLineOctets
	for len(s) > limit {
		cut := limit
		for cut > 0 && !utf8.RuneStart(s[cut]) {
			cut--
		}
		w.b.WriteString(s[:cut])
		w.b.WriteString("\r\n ")
		s = s[cut:]
		limit = maxLineOctets - 1 // the leading space counts
	}
	w.b.WriteString(s)
	w.b.WriteString("\r\n")
}

var textEscaper = strings.NewReplacer(
	`\`, `\\`,
	";", `\;`,
	",", `\,`,
	"\r\n", `\n`,
	"\n", `\n`,
)

func escapeText(s string) string {
	return textEscaper.Replace(s)
}
