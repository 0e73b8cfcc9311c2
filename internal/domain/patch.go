package domain

// ExercisePatch lists the mutable fields of an exercise. Nil fields are left alone.
type ExercisePatch struct {
	Title       *string   `json:"title"`
	Description *string   `json:"description"`
	Tags        *[]string `json:"categories"`
	MediaLink   *string   `json:"videoUrl"`
	Rating      *int      `json:"rating"`
}

// RoutinePatch lists the mutable fields of a routine.
type RoutinePatch struct {
	Name     *string `json:"name"`
	Expanded *bool   `json:"isExpanded"`
}

// SectionPatch lists the mutable fields of a section.
type SectionPatch struct {
	Name     *string `json:"name"`
	Expanded *bool   `json:"isExpanded"`
}

// InstancePatch lists the mutable fields of a calendar placement.
type InstancePatch struct {
	Date            *string     `json:"date"`
	DurationMinutes *int        `json:"duration"`
	Recurrence      *Recurrence `json:"recurrence"`
}

// SchedulePatch edits a routine's default schedule. Frequency is applied
// before ToggleDays, so a preset followed by toggles ends up custom.
type SchedulePatch struct {
	DurationMinutes *int            `json:"duration"`
	TimeOfDay       *string         `json:"timeOfDay"`
	Frequency       *RecurrenceKind `json:"frequency"`
	ToggleDays      []Weekday       `json:"toggleDays"`
}

// Apply runs the patch against s. s is left untouched on error.
func (p SchedulePatch) Apply(s *RoutineSchedule) error {
	next := s.Clone()
	if p.DurationMinutes != nil {
		next.DurationMinutes = *p.DurationMinutes
	}
	if p.TimeOfDay != nil {
		next.TimeOfDay = *p.TimeOfDay
	}
	if p.Frequency != nil {
		if err := next.ApplyPreset(*p.Frequency); err != nil {
			return err
		}
	}
	for _, d := range p.ToggleDays {
		if err := next.ToggleDay(d); err != nil {
			return err
		}
	}
	if err := next.Validate(); err != nil {
		return err
	}
	*s = next
	return nil
}
