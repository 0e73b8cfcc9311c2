package workspace

import (
	"fmt"
	"slices"
	"strings"

	"alcyxob/routine-builder/internal/domain"
)

const (
	defaultRoutineName = "New Routine"
	defaultSectionName = "New Section"
)

// MoveResult reports where a moved reference ended up. Deduplicated is set
// when the destination already held the exercise earlier in the list and the
// moved copy was dropped. Index is then the position of the surviving copy.
type MoveResult struct {
	// Deduplicated is set when the moved reference itself was dropped because
	// the destination already held the exercise earlier in the list.
	Deduplicated bool `json:"deduplicated"`
	// DroppedExisting is set when the moved reference landed first and a copy
	// that was already in the destination was removed instead.
	DroppedExisting bool `json:"droppedExisting"`
	Index           int  `json:"index"`
}

// DropResult describes what a drop did.
type DropResult struct {
	Moved           bool                      `json:"moved"`
	Deduplicated    bool                      `json:"deduplicated"`
	DroppedExisting bool                      `json:"droppedExisting"`
	StaleSource     bool                      `json:"staleSource"`
	Index           int                       `json:"index"`
	Instance        *domain.ScheduledInstance `json:"instance,omitempty"`
}

// CreateRoutine puts a new empty routine at the top of the list.
func (w *Workspace) CreateRoutine(name string) (domain.Routine, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		name = defaultRoutineName
	}

	var out domain.Routine
	err := w.mutate(func() error {
		node := &routineNode{id: w.ids.next(), name: name, items: []domain.ExerciseRef{}, expanded: true}
		w.routines[node.id] = node
		w.routineOrder = slices.Insert(w.routineOrder, 0, node.id)
		out = w.routineView(node)
		return nil
	}, domain.CollectionRoutines)
	return out, err
}

// DeleteRoutine removes a routine and its sections. Calendar placements that
// point at it are kept.
func (w *Workspace) DeleteRoutine(id int64) error {
	return w.mutate(func() error {
		node, ok := w.routines[id]
		if !ok {
			return fmt.Errorf("%w: %d", ErrRoutineNotFound, id)
		}
		for _, sid := range node.sectionIDs {
			delete(w.sections, sectionKey{id, sid})
		}
		delete(w.routines, id)
		w.routineOrder = removeValue(w.routineOrder, id)
		return nil
	}, domain.CollectionRoutines)
}

// UpdateRoutine renames a routine or flips its expanded flag.
func (w *Workspace) UpdateRoutine(id int64, p domain.RoutinePatch) (domain.Routine, error) {
	var out domain.Routine
	err := w.mutate(func() error {
		node, ok := w.routines[id]
		if !ok {
			return fmt.Errorf("%w: %d", ErrRoutineNotFound, id)
		}
		if p.Name != nil {
			name := strings.TrimSpace(*p.Name)
			if name == "" {
				return domain.Invalidf("routine name is required")
			}
			node.name = name
		}
		if p.Expanded != nil {
			node.expanded = *p.Expanded
		}
		out = w.routineView(node)
		return nil
	}, domain.CollectionRoutines)
	return out, err
}

// AddSection appends a section to a routine.
func (w *Workspace) AddSection(routineID int64, name string) (domain.Section, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		name = defaultSectionName
	}

	var out domain.Section
	err := w.mutate(func() error {
		node, ok := w.routines[routineID]
		if !ok {
			return fmt.Errorf("%w: %d", ErrRoutineNotFound, routineID)
		}
		sec := &domain.Section{ID: w.ids.next(), Name: name, Items: []domain.ExerciseRef{}, Expanded: true}
		w.sections[sectionKey{routineID, sec.ID}] = sec
		node.sectionIDs = append(node.sectionIDs, sec.ID)
		out = cloneSection(sec)
		return nil
	}, domain.CollectionRoutines)
	return out, err
}

// UpdateSection renames a section or flips its expanded flag.
func (w *Workspace) UpdateSection(routineID, sectionID int64, p domain.SectionPatch) (domain.Section, error) {
	var out domain.Section
	err := w.mutate(func() error {
		sec, ok := w.sections[sectionKey{routineID, sectionID}]
		if !ok {
			return fmt.Errorf("%w: %s", ErrContainerNotFound, domain.Container{RoutineID: routineID, SectionID: sectionID})
		}
		if p.Name != nil {
			name := strings.TrimSpace(*p.Name)
			if name == "" {
				return domain.Invalidf("section name is required")
			}
			sec.Name = name
		}
		if p.Expanded != nil {
			sec.Expanded = *p.Expanded
		}
		out = cloneSection(sec)
		return nil
	}, domain.CollectionRoutines)
	return out, err
}

// DeleteSection removes a section together with its references.
func (w *Workspace) DeleteSection(routineID, sectionID int64) error {
	return w.mutate(func() error {
		key := sectionKey{routineID, sectionID}
		if _, ok := w.sections[key]; !ok {
			return fmt.Errorf("%w: %s", ErrContainerNotFound, domain.Container{RoutineID: routineID, SectionID: sectionID})
		}
		delete(w.sections, key)
		node := w.routines[routineID]
		node.sectionIDs = removeValue(node.sectionIDs, sectionID)
		return nil
	}, domain.CollectionRoutines)
}

// ToggleExercise removes the first reference to exerciseID from c, or appends
// one when there is none. It reports whether a reference was added.
func (w *Workspace) ToggleExercise(c domain.Container, exerciseID int64) (bool, error) {
	var added bool
	err := w.mutate(func() error {
		items, err := w.items(c)
		if err != nil {
			return err
		}
		if i := indexOfRef(*items, exerciseID); i >= 0 {
			*items = slices.Delete(*items, i, i+1)
			return nil
		}
		if _, ok := w.exercises[exerciseID]; !ok {
			return fmt.Errorf("%w: %d", ErrExerciseNotFound, exerciseID)
		}
		*items = append(*items, domain.ExerciseRef{ExerciseID: exerciseID})
		added = true
		return nil
	}, domain.CollectionRoutines)
	return added, err
}

// MoveWithin moves the reference at from to position to inside c.
func (w *Workspace) MoveWithin(c domain.Container, from, to int) error {
	return w.mutate(func() error {
		items, err := w.items(c)
		if err != nil {
			return err
		}
		return moveInSlice(items, from, to)
	}, domain.CollectionRoutines)
}

// MoveAcross moves the reference at from in src to destIndex in dst. A
// destIndex past the end, or EndOfList, appends. The destination is then
// filtered to the first occurrence of every exercise.
func (w *Workspace) MoveAcross(src domain.Container, from int, dst domain.Container, destIndex int) (MoveResult, error) {
	var res MoveResult
	err := w.mutate(func() error {
		srcItems, err := w.items(src)
		if err != nil {
			return err
		}
		dstItems, err := w.items(dst)
		if err != nil {
			return err
		}
		if from < 0 || from >= len(*srcItems) {
			return fmt.Errorf("%w: %d in %s", ErrIndexOutOfRange, from, src)
		}

		if src == dst {
			to := clampIndex(destIndex, len(*srcItems)-1)
			res.Index = to
			return moveInSlice(srcItems, from, to)
		}

		ref := (*srcItems)[from]
		*srcItems = slices.Delete(*srcItems, from, from+1)
		res = insertDedup(dstItems, ref, destIndex)
		return nil
	}, domain.CollectionRoutines)
	return res, err
}

// ReorderRoutines moves a routine within the top-level list.
func (w *Workspace) ReorderRoutines(from, to int) error {
	return w.mutate(func() error {
		return moveInSlice(&w.routineOrder, from, to)
	}, domain.CollectionRoutines)
}

// Drop applies a drag payload to a drop target.
//
// An exercise payload whose source no longer holds the exercise at the given
// index falls back to the first matching reference in that container. When
// there is none the removal is skipped and the reference is still inserted at
// the destination. Dropping a routine on a date places it on the calendar.
func (w *Workspace) Drop(payload domain.DragPayload, target domain.DropTarget) (DropResult, error) {
	changed := domain.CollectionRoutines
	if _, ok := target.(domain.DateSlot); ok {
		changed = domain.CollectionScheduled
	}

	var res DropResult
	err := w.mutate(func() error {
		var err error
		switch p := payload.(type) {
		case domain.RoutineDrag:
			res, err = w.dropRoutine(p, target)
		case domain.ExerciseDrag:
			res, err = w.dropExercise(p, target)
		default:
			err = ErrInvalidDrop
		}
		return err
	}, changed)
	return res, err
}

func (w *Workspace) dropRoutine(p domain.RoutineDrag, target domain.DropTarget) (DropResult, error) {
	switch t := target.(type) {
	case domain.RoutineSlot:
		from := slices.Index(w.routineOrder, p.RoutineID)
		if from < 0 {
			return DropResult{}, fmt.Errorf("%w: %d", ErrRoutineNotFound, p.RoutineID)
		}
		to := clampIndex(t.Index, len(w.routineOrder)-1)
		if from == to {
			return DropResult{Index: to}, nil
		}
		if err := moveInSlice(&w.routineOrder, from, to); err != nil {
			return DropResult{}, err
		}
		return DropResult{Moved: true, Index: to}, nil
	case domain.DateSlot:
		inst, err := w.placeOnDate(p.RoutineID, t.Date)
		if err != nil {
			return DropResult{}, err
		}
		return DropResult{Moved: true, Instance: &inst}, nil
	default:
		return DropResult{}, ErrInvalidDrop
	}
}

func (w *Workspace) dropExercise(p domain.ExerciseDrag, target domain.DropTarget) (DropResult, error) {
	slot, ok := target.(domain.ContainerSlot)
	if !ok {
		return DropResult{}, ErrInvalidDrop
	}
	dstItems, err := w.items(slot.Container)
	if err != nil {
		return DropResult{}, err
	}

	from := -1
	if srcItems, err := w.items(p.Source); err == nil {
		from = resolveSource(*srcItems, p.Index, p.ExerciseID)
	}

	if from >= 0 && p.Source == slot.Container {
		to := clampIndex(slot.Index, len(*dstItems)-1)
		if from == to {
			return DropResult{Index: to}, nil
		}
		if err := moveInSlice(dstItems, from, to); err != nil {
			return DropResult{}, err
		}
		return DropResult{Moved: true, Index: to}, nil
	}

	if from >= 0 {
		srcItems, _ := w.items(p.Source)
		*srcItems = slices.Delete(*srcItems, from, from+1)
	}
	mr := insertDedup(dstItems, domain.ExerciseRef{ExerciseID: p.ExerciseID}, slot.Index)
	return DropResult{
		Moved:           true,
		Deduplicated:    mr.Deduplicated,
		DroppedExisting: mr.DroppedExisting,
		StaleSource:     from < 0,
		Index:           mr.Index,
	}, nil
}

// Routine returns the nested view of one routine.
func (w *Workspace) Routine(id int64) (domain.Routine, bool) {
	w.mu.RLock()
	defer w.mu.RUnlock()
	node, ok := w.routines[id]
	if !ok {
		return domain.Routine{}, false
	}
	return w.routineView(node), true
}

// Routines returns every routine in list order.
func (w *Workspace) Routines() []domain.Routine {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.routineViews()
}

func (w *Workspace) routineViews() []domain.Routine {
	out := make([]domain.Routine, 0, len(w.routineOrder))
	for _, id := range w.routineOrder {
		out = append(out, w.routineView(w.routines[id]))
	}
	return out
}

func (w *Workspace) routineView(node *routineNode) domain.Routine {
	r := domain.Routine{
		ID:       node.id,
		Name:     node.name,
		Items:    slices.Clone(node.items),
		Sections: make([]domain.Section, 0, len(node.sectionIDs)),
		Expanded: node.expanded,
	}
	if r.Items == nil {
		r.Items = []domain.ExerciseRef{}
	}
	for _, sid := range node.sectionIDs {
		r.Sections = append(r.Sections, cloneSection(w.sections[sectionKey{node.id, sid}]))
	}
	if node.schedule != nil {
		s := node.schedule.Clone()
		r.Schedule = &s
	}
	return r
}

// items resolves a container address to its reference list.
func (w *Workspace) items(c domain.Container) (*[]domain.ExerciseRef, error) {
	node, ok := w.routines[c.RoutineID]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrContainerNotFound, c)
	}
	if c.TopLevel() {
		return &node.items, nil
	}
	sec, ok := w.sections[sectionKey{c.RoutineID, c.SectionID}]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrContainerNotFound, c)
	}
	return &sec.Items, nil
}

func cloneSection(s *domain.Section) domain.Section {
	out := *s
	out.Items = slices.Clone(s.Items)
	if out.Items == nil {
		out.Items = []domain.ExerciseRef{}
	}
	return out
}

func indexOfRef(items []domain.ExerciseRef, exerciseID int64) int {
	return slices.IndexFunc(items, func(r domain.ExerciseRef) bool { return r.ExerciseID == exerciseID })
}

// resolveSource trusts index when it still points at exerciseID and falls
// back to the first match otherwise. It returns -1 when the exercise is gone.
func resolveSource(items []domain.ExerciseRef, index int, exerciseID int64) int {
	if index >= 0 && index < len(items) && items[index].ExerciseID == exerciseID {
		return index
	}
	return indexOfRef(items, exerciseID)
}

// clampIndex maps EndOfList and anything past limit onto limit.
func clampIndex(i, limit int) int {
	if i < 0 || i > limit {
		return limit
	}
	return i
}

func moveInSlice[T any](s *[]T, from, to int) error {
	n := len(*s)
	if from < 0 || from >= n || to < 0 || to >= n {
		return fmt.Errorf("%w: move %d -> %d with %d items", ErrIndexOutOfRange, from, to, n)
	}
	if from == to {
		return nil
	}
	v := (*s)[from]
	*s = slices.Delete(*s, from, from+1)
	*s = slices.Insert(*s, to, v)
	return nil
}

// insertDedup inserts ref at index (clamped to the list length) and keeps only
// the first occurrence of every exercise id.
func insertDedup(items *[]domain.ExerciseRef, ref domain.ExerciseRef, index int) MoveResult {
	at := clampIndex(index, len(*items))
	*items = slices.Insert(*items, at, ref)

	seen := make(map[int64]bool, len(*items))
	kept := (*items)[:0]
	res := MoveResult{Index: -1}
	for i, r := range *items {
		if seen[r.ExerciseID] {
			if i == at {
				res.Deduplicated = true
			} else {
				res.DroppedExisting = true
			}
			continue
		}
		seen[r.ExerciseID] = true
		if r.ExerciseID == ref.ExerciseID {
			res.Index = len(kept)
		}
		kept = append(kept, r)
	}
	*items = kept
	return res
}
