package domain

// DragPayload identifies what is being dragged. It is either a RoutineDrag
// or an ExerciseDrag.
type DragPayload interface {
	dragPayload()
}

// RoutineDrag carries a whole routine.
type RoutineDrag struct {
	RoutineID int64
}

// ExerciseDrag carries one reference together with where it was picked up.
// The source may be stale by the time it is dropped.
type ExerciseDrag struct {
	Source     Container
	Index      int
	ExerciseID int64
}

func (RoutineDrag) dragPayload()  {}
func (ExerciseDrag) dragPayload() {}

// DropTarget is where a payload lands: a RoutineSlot, a DateSlot or a ContainerSlot.
type DropTarget interface {
	dropTarget()
}

// EndOfList as an index means "append".
const EndOfList = -1

// RoutineSlot is a position in the top-level routine list.
type RoutineSlot struct {
	Index int
}

// DateSlot is a day on the calendar.
type DateSlot struct {
	Date string
}

// ContainerSlot is a position inside a container, or EndOfList when the
// payload was dropped on the container itself rather than on a row.
type ContainerSlot struct {
	Container Container
	Index     int
}

func (RoutineSlot) dropTarget()   {}
func (DateSlot) dropTarget()      {}
func (ContainerSlot) dropTarget() {}
