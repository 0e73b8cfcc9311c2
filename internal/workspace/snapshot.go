package workspace

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"alcyxob/routine-builder/internal/domain"
)

// Export captures the whole workspace as a backup document.
func (w *Workspace) Export(now time.Time) domain.Backup {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return domain.Backup{
		Version:           domain.BackupVersion,
		Timestamp:         now.UTC(),
		Exercises:         w.exerciseList(),
		Routines:          w.routineViews(),
		Categories:        append([]domain.Tag{}, w.tags...),
		ScheduledRoutines: w.instanceList(),
	}
}

// Marshal encodes one collection the way it is persisted.
func (w *Workspace) Marshal(c domain.Collection) ([]byte, error) {
	w.mu.RLock()
	defer w.mu.RUnlock()
	switch c {
	case domain.CollectionExercises:
		return json.Marshal(w.exerciseList())
	case domain.CollectionRoutines:
		return json.Marshal(w.routineViews())
	case domain.CollectionTags:
		return json.Marshal(append([]domain.Tag{}, w.tags...))
	case domain.CollectionScheduled:
		return json.Marshal(w.instanceList())
	default:
		return nil, fmt.Errorf("unknown collection %q", c)
	}
}

// Load replaces one collection with a persisted blob. It is meant for
// hydration and does not notify the change handler.
func (w *Workspace) Load(c domain.Collection, blob []byte) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	switch c {
	case domain.CollectionExercises:
		var list []domain.Exercise
		if err := decodeList(c, blob, &list); err != nil {
			return err
		}
		return w.replaceExercises(list)
	case domain.CollectionRoutines:
		var list []domain.Routine
		if err := decodeList(c, blob, &list); err != nil {
			return err
		}
		return w.replaceRoutines(list)
	case domain.CollectionTags:
		var list []domain.Tag
		if err := decodeList(c, blob, &list); err != nil {
			return err
		}
		return w.replaceTags(list)
	case domain.CollectionScheduled:
		var list []domain.ScheduledInstance
		if err := decodeList(c, blob, &list); err != nil {
			return err
		}
		return w.replaceInstances(list)
	default:
		return fmt.Errorf("unknown collection %q", c)
	}
}

// Import replaces all four collections at once. Absent collections become
// empty. On error nothing changes.
func (w *Workspace) Import(b *domain.Backup) error {
	return w.mutate(func() error {
		staged := &Workspace{ids: w.ids, instanceID: w.instanceID}
		if err := staged.replaceExercises(b.Exercises); err != nil {
			return err
		}
		if err := staged.replaceRoutines(b.Routines); err != nil {
			return err
		}
		if err := staged.replaceTags(b.Categories); err != nil {
			return err
		}
		if err := staged.replaceInstances(b.ScheduledRoutines); err != nil {
			return err
		}

		w.exercises, w.exerciseOrder = staged.exercises, staged.exerciseOrder
		w.routines, w.routineOrder, w.sections = staged.routines, staged.routineOrder, staged.sections
		w.tags = staged.tags
		w.instances, w.instanceOrder = staged.instances, staged.instanceOrder
		return nil
	}, domain.Collections...)
}

// Clear empties the catalog, the routines and the calendar. Tags survive.
func (w *Workspace) Clear() {
	_ = w.mutate(func() error {
		w.exercises, w.exerciseOrder = make(map[int64]*domain.Exercise), nil
		w.routines, w.routineOrder = make(map[int64]*routineNode), nil
		w.sections = make(map[sectionKey]*domain.Section)
		w.instances, w.instanceOrder = make(map[string]*domain.ScheduledInstance), nil
		return nil
	}, domain.CollectionExercises, domain.CollectionRoutines, domain.CollectionScheduled)
}

func decodeList(c domain.Collection, blob []byte, v any) error {
	if err := json.Unmarshal(blob, v); err != nil {
		return fmt.Errorf("%w: %s: %v", domain.ErrMalformedImport, c, err)
	}
	return nil
}

func (w *Workspace) replaceExercises(list []domain.Exercise) error {
	byID := make(map[int64]*domain.Exercise, len(list))
	order := make([]int64, 0, len(list))
	for _, ex := range list {
		ex = ex.Clone()
		ex.Tags = domain.NormalizeTags(ex.Tags)
		if ex.ID == 0 {
			ex.ID = w.ids.next()
		}
		if _, dup := byID[ex.ID]; dup {
			return fmt.Errorf("%w: duplicate exercise id %d", domain.ErrMalformedImport, ex.ID)
		}
		w.ids.observe(ex.ID)
		byID[ex.ID] = &ex
		order = append(order, ex.ID)
	}
	w.exercises, w.exerciseOrder = byID, order
	return nil
}

func (w *Workspace) replaceRoutines(list []domain.Routine) error {
	routines := make(map[int64]*routineNode, len(list))
	sections := make(map[sectionKey]*domain.Section)
	order := make([]int64, 0, len(list))

	for _, r := range list {
		if r.ID == 0 {
			r.ID = w.ids.next()
		}
		if _, dup := routines[r.ID]; dup {
			return fmt.Errorf("%w: duplicate routine id %d", domain.ErrMalformedImport, r.ID)
		}
		w.ids.observe(r.ID)

		node := &routineNode{
			id:       r.ID,
			name:     r.Name,
			items:    append([]domain.ExerciseRef{}, r.Items...),
			expanded: r.Expanded,
		}
		if r.Schedule != nil {
			if err := r.Schedule.Validate(); err != nil {
				return fmt.Errorf("%w: routine %d schedule: %v", domain.ErrMalformedImport, r.ID, err)
			}
			s := r.Schedule.Clone()
			node.schedule = &s
		}
		for _, s := range r.Sections {
			if s.ID == 0 {
				s.ID = w.ids.next()
			}
			key := sectionKey{r.ID, s.ID}
			if _, dup := sections[key]; dup {
				return fmt.Errorf("%w: duplicate section id %d in routine %d", domain.ErrMalformedImport, s.ID, r.ID)
			}
			w.ids.observe(s.ID)
			sec := cloneSection(&s)
			sections[key] = &sec
			node.sectionIDs = append(node.sectionIDs, s.ID)
		}
		routines[r.ID] = node
		order = append(order, r.ID)
	}
	w.routines, w.routineOrder, w.sections = routines, order, sections
	return nil
}

func (w *Workspace) replaceTags(list []domain.Tag) error {
	tags := make([]domain.Tag, 0, len(list))
	for _, t := range list {
		t.Name = strings.TrimSpace(t.Name)
		for _, seen := range tags {
			if domain.SameTagName(seen.Name, t.Name) {
				return fmt.Errorf("%w: duplicate tag %q", domain.ErrMalformedImport, t.Name)
			}
		}
		tags = append(tags, t)
	}
	w.tags = tags
	return nil
}

func (w *Workspace) replaceInstances(list []domain.ScheduledInstance) error {
	byID := make(map[string]*domain.ScheduledInstance, len(list))
	order := make([]string, 0, len(list))
	for _, si := range list {
		if si.ID == "" {
			si.ID = w.instanceID()
		}
		if si.DurationMinutes <= 0 {
			si.DurationMinutes = domain.DefaultInstanceDuration
		}
		if si.Recurrence == "" {
			si.Recurrence = domain.RepeatOnce
		}
		if _, dup := byID[si.ID]; dup {
			return fmt.Errorf("%w: duplicate scheduled routine id %q", domain.ErrMalformedImport, si.ID)
		}
		if err := si.Validate(); err != nil {
			return fmt.Errorf("%w: scheduled routine %q: %v", domain.ErrMalformedImport, si.ID, err)
		}
		byID[si.ID] = &si
		order = append(order, si.ID)
	}
	w.instances, w.instanceOrder = byID, order
	return nil
}

func (w *Workspace) exerciseList() []domain.Exercise {
	out := make([]domain.Exercise, 0, len(w.exerciseOrder))
	for _, id := range w.exerciseOrder {
		out = append(out, w.exercises[id].Clone())
	}
	return out
}

func (w *Workspace) instanceList() []domain.ScheduledInstance {
	out := make([]domain.ScheduledInstance, 0, len(w.instanceOrder))
	for _, id := range w.instanceOrder {
		out = append(out, *w.instances[id])
	}
	return out
}
