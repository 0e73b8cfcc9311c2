// Package workspace holds one owner's catalog, tag registry, routine tree and
// calendar placements, and implements every edit on them.
//
// Routines and sections are stored in flat tables keyed by id. A routine keeps
// the ordered ids of its sections, so an edit touches only the entity it
// changes. All operations run under one lock and either apply fully or not at
// all. Successful edits are reported through the change handler, one call per
// affected collection, after the lock is released.
package workspace

import (
	"errors"
	"sync"
	"time"

	"alcyxob/routine-builder/internal/domain"

	"github.com/google/uuid"
)

var (
	ErrExerciseNotFound  = errors.New("exercise not found")
	ErrTagNotFound       = errors.New("tag not found")
	ErrRoutineNotFound   = errors.New("routine not found")
	ErrInstanceNotFound  = errors.New("scheduled instance not found")
	ErrContainerNotFound = errors.New("container not found")
	ErrIndexOutOfRange   = errors.New("index out of range")
	ErrInvalidDrop       = errors.New("payload cannot be dropped on this target")
)

// ChangeFunc is told which collection an edit touched.
type ChangeFunc func(domain.Collection)

type sectionKey struct {
	routineID int64
	sectionID int64
}

type routineNode struct {
	id         int64
	name       string
	items      []domain.ExerciseRef
	sectionIDs []int64
	expanded   bool
	schedule   *domain.RoutineSchedule
}

// Workspace is the application state of a single owner.
type Workspace struct {
	mu sync.RWMutex

	exercises     map[int64]*domain.Exercise
	exerciseOrder []int64
	tags          []domain.Tag

	routines     map[int64]*routineNode
	routineOrder []int64
	sections     map[sectionKey]*domain.Section

	instances     map[string]*domain.ScheduledInstance
	instanceOrder []string

	ids        *idSource
	instanceID func() string
	onChange   ChangeFunc
}

// Option customises a Workspace.
type Option func(*Workspace)

// WithClock replaces the clock used to mint routine, section and exercise ids.
func WithClock(now func() time.Time) Option {
	return func(w *Workspace) { w.ids.now = now }
}

// WithInstanceIDs replaces the generator of scheduled instance ids.
func WithInstanceIDs(next func() string) Option {
	return func(w *Workspace) { w.instanceID = next }
}

// WithChangeHandler registers fn to be told about every successful edit.
func WithChangeHandler(fn ChangeFunc) Option {
	return func(w *Workspace) { w.onChange = fn }
}

// New returns an empty workspace seeded with the default tags.
func New(opts ...Option) *Workspace {
	w := &Workspace{
		exercises:  make(map[int64]*domain.Exercise),
		tags:       domain.DefaultTags(),
		routines:   make(map[int64]*routineNode),
		sections:   make(map[sectionKey]*domain.Section),
		instances:  make(map[string]*domain.ScheduledInstance),
		ids:        &idSource{now: time.Now},
		instanceID: uuid.NewString,
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// SetChangeHandler replaces the change handler.
func (w *Workspace) SetChangeHandler(fn ChangeFunc) {
	w.mu.Lock()
	w.onChange = fn
	w.mu.Unlock()
}

// mutate runs fn under the write lock and reports the collections on success.
func (w *Workspace) mutate(fn func() error, changed ...domain.Collection) error {
	w.mu.Lock()
	err := fn()
	notify := w.onChange
	w.mu.Unlock()

	if err == nil && notify != nil {
		for _, c := range changed {
			notify(c)
		}
	}
	return err
}

// idSource hands out millisecond timestamps that never repeat.
type idSource struct {
	now  func() time.Time
	last int64
}

func (s *idSource) next() int64 {
	id := s.now().UnixMilli()
	if id <= s.last {
		id = s.last + 1
	}
	s.last = id
	return id
}

// observe keeps loaded ids from being handed out again.
func (s *idSource) observe(id int64) {
	if id > s.last {
		s.last = id
	}
}
