package workspace

import (
	"fmt"
	"slices"
	"strings"

	"alcyxob/routine-builder/internal/domain"
)

// UpdateSchedule edits a routine's default schedule, creating it from the
// defaults on first use.
func (w *Workspace) UpdateSchedule(routineID int64, p domain.SchedulePatch) (domain.RoutineSchedule, error) {
	var out domain.RoutineSchedule
	err := w.mutate(func() error {
		node, ok := w.routines[routineID]
		if !ok {
			return fmt.Errorf("%w: %d", ErrRoutineNotFound, routineID)
		}
		s := domain.DefaultRoutineSchedule()
		if node.schedule != nil {
			s = node.schedule.Clone()
		}
		if err := p.Apply(&s); err != nil {
			return err
		}
		node.schedule = &s
		out = s.Clone()
		return nil
	}, domain.CollectionRoutines)
	return out, err
}

// ClearSchedule drops a routine's default schedule.
func (w *Workspace) ClearSchedule(routineID int64) error {
	return w.mutate(func() error {
		node, ok := w.routines[routineID]
		if !ok {
			return fmt.Errorf("%w: %d", ErrRoutineNotFound, routineID)
		}
		node.schedule = nil
		return nil
	}, domain.CollectionRoutines)
}

// PlaceOnDate puts a routine on the calendar as a one-off placement.
func (w *Workspace) PlaceOnDate(routineID int64, date string) (domain.ScheduledInstance, error) {
	var out domain.ScheduledInstance
	err := w.mutate(func() error {
		var err error
		out, err = w.placeOnDate(routineID, date)
		return err
	}, domain.CollectionScheduled)
	return out, err
}

func (w *Workspace) placeOnDate(routineID int64, date string) (domain.ScheduledInstance, error) {
	if _, ok := w.routines[routineID]; !ok {
		return domain.ScheduledInstance{}, fmt.Errorf("%w: %d", ErrRoutineNotFound, routineID)
	}
	inst := domain.ScheduledInstance{
		ID:              w.instanceID(),
		RoutineID:       routineID,
		Date:            date,
		DurationMinutes: domain.DefaultInstanceDuration,
		Recurrence:      domain.RepeatOnce,
	}
	if err := inst.Validate(); err != nil {
		return domain.ScheduledInstance{}, err
	}
	w.instances[inst.ID] = &inst
	w.instanceOrder = append(w.instanceOrder, inst.ID)
	return inst, nil
}

// UpdateInstance moves a placement to another date or changes its duration
// or recurrence.
func (w *Workspace) UpdateInstance(id string, p domain.InstancePatch) (domain.ScheduledInstance, error) {
	var out domain.ScheduledInstance
	err := w.mutate(func() error {
		cur, ok := w.instances[id]
		if !ok {
			return fmt.Errorf("%w: %s", ErrInstanceNotFound, id)
		}
		next := *cur
		if p.Date != nil {
			next.Date = *p.Date
		}
		if p.DurationMinutes != nil {
			next.DurationMinutes = *p.DurationMinutes
		}
		if p.Recurrence != nil {
			next.Recurrence = *p.Recurrence
		}
		if err := next.Validate(); err != nil {
			return err
		}
		*cur = next
		out = next
		return nil
	}, domain.CollectionScheduled)
	return out, err
}

// RemoveInstance takes a placement off the calendar.
func (w *Workspace) RemoveInstance(id string) error {
	return w.mutate(func() error {
		if _, ok := w.instances[id]; !ok {
			return fmt.Errorf("%w: %s", ErrInstanceNotFound, id)
		}
		delete(w.instances, id)
		w.instanceOrder = removeValue(w.instanceOrder, id)
		return nil
	}, domain.CollectionScheduled)
}

// Instance looks a placement up by id.
func (w *Workspace) Instance(id string) (domain.ScheduledInstance, bool) {
	w.mu.RLock()
	defer w.mu.RUnlock()
	inst, ok := w.instances[id]
	if !ok {
		return domain.ScheduledInstance{}, false
	}
	return *inst, true
}

// Instances lists every placement in the order they were made, dangling ones included.
func (w *Workspace) Instances() []domain.ScheduledInstance {
	return w.filterInstances(func(domain.ScheduledInstance) bool { return true })
}

// InstancesOn lists the placements whose start date is date.
func (w *Workspace) InstancesOn(date string) []domain.ScheduledInstance {
	return w.filterInstances(func(si domain.ScheduledInstance) bool { return si.Date == date })
}

// InstancesBetween lists the placements starting within [from, to], sorted by
// date. Both bounds are YYYY-MM-DD.
func (w *Workspace) InstancesBetween(from, to string) ([]domain.ScheduledInstance, error) {
	if _, err := domain.ParseDate(from); err != nil {
		return nil, err
	}
	if _, err := domain.ParseDate(to); err != nil {
		return nil, err
	}
	out := w.filterInstances(func(si domain.ScheduledInstance) bool {
		return si.Date >= from && si.Date <= to
	})
	slices.SortStableFunc(out, func(a, b domain.ScheduledInstance) int {
		return strings.Compare(a.Date, b.Date)
	})
	return out, nil
}

func (w *Workspace) filterInstances(keep func(domain.ScheduledInstance) bool) []domain.ScheduledInstance {
	w.mu.RLock()
	defer w.mu.RUnlock()
	out := make([]domain.ScheduledInstance, 0)
	for _, id := range w.instanceOrder {
		if si := *w.instances[id]; keep(si) {
			out = append(out, si)
		}
	}
	return out
}
