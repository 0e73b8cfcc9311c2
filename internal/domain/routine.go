package domain

import "fmt"

// ExerciseRef is a lightweight pointer from a container into the catalog.
type ExerciseRef struct {
	ExerciseID int64 `json:"exerciseId"`
}

// Section is a named group of references nested one level inside a routine.
// Its ID is only unique within the parent routine.
type Section struct {
	ID       int64         `json:"id"`
	Name     string        `json:"name"`
	Items    []ExerciseRef `json:"exerciseItems"`
	Expanded bool          `json:"isExpanded"`
}

// Routine is the nested read/wire form of a routine: its own top-level
// references followed by its sections, both in playback order.
type Routine struct {
	ID       int64            `json:"id"`
	Name     string           `json:"name"`
	Items    []ExerciseRef    `json:"exerciseItems"`
	Sections []Section        `json:"subRoutines"`
	Expanded bool             `json:"isExpanded"`
	Schedule *RoutineSchedule `json:"schedule,omitempty"`
}

// ExerciseCount counts references across the top level and every section.
func (r Routine) ExerciseCount() int {
	n := len(r.Items)
	for _, s := range r.Sections {
		n += len(s.Items)
	}
	return n
}

// Section returns the section with the given id.
func (r Routine) Section(id int64) (Section, bool) {
	for _, s := range r.Sections {
		if s.ID == id {
			return s, true
		}
	}
	return Section{}, false
}

// Container addresses an ordered list of references: a routine's top-level
// list when SectionID is zero, otherwise the list of that section.
type Container struct {
	RoutineID int64 `json:"routineId"`
	SectionID int64 `json:"sectionId,omitempty"`
}

// TopLevel reports whether c addresses the routine's own list.
func (c Container) TopLevel() bool { return c.SectionID == 0 }

func (c Container) String() string {
	if c.TopLevel() {
		return fmt.Sprintf("routine %d", c.RoutineID)
	}
	return fmt.Sprintf("routine %d section %d", c.RoutineID, c.SectionID)
}

// RefIDs lists the exercise ids of refs in order.
func RefIDs(refs []ExerciseRef) []int64 {
	ids := make([]int64, len(refs))
	for i, r := range refs {
		ids[i] = r.ExerciseID
	}
	return ids
}

// Refs builds references from exercise ids.
func Refs(ids ...int64) []ExerciseRef {
	refs := make([]ExerciseRef, len(ids))
	for i, id := range ids {
		refs[i] = ExerciseRef{ExerciseID: id}
	}
	return refs
}
