// Package playback turns a routine into a linear list of steps and walks a
// cursor over it.
package playback

import (
	"errors"

	"alcyxob/routine-builder/internal/domain"
)

// ErrEmptyPlayback is returned when a routine has nothing to play.
var ErrEmptyPlayback = errors.New("routine has no exercises to play")

const (
	ActionNext     = "next"
	ActionComplete = "complete"
)

// Catalog resolves exercise ids for display.
type Catalog interface {
	Exercise(id int64) (domain.Exercise, bool)
}

// Flatten lists the routine's top-level exercises labelled "Main", then every
// non-empty section as a header followed by its exercises. Empty sections are
// skipped.
func Flatten(r domain.Routine) []domain.Step {
	steps := make([]domain.Step, 0, r.ExerciseCount()+len(r.Sections))
	for _, ref := range r.Items {
		steps = append(steps, domain.ExerciseStep(ref.ExerciseID, domain.MainSectionLabel))
	}
	for _, s := range r.Sections {
		if len(s.Items) == 0 {
			continue
		}
		steps = append(steps, domain.HeaderStep(s.Name))
		for _, ref := range s.Items {
			steps = append(steps, domain.ExerciseStep(ref.ExerciseID, s.Name))
		}
	}
	return steps
}

// Frame is what the player shows at the cursor.
type Frame struct {
	Step     domain.Step      `json:"step"`
	Exercise *domain.Exercise `json:"exercise,omitempty"`
	EmbedURL string           `json:"embedUrl,omitempty"`
	Missing  bool             `json:"missing"`
	Position int              `json:"position"`
	Total    int              `json:"total"`
	Last     bool             `json:"last"`
	Action   string           `json:"action"`
}

// Session is a cursor over a routine's steps. It keeps only the position; the
// step list is flattened again from the routine on every call so edits made
// while playing are picked up.
type Session struct {
	ID        string `json:"id"`
	RoutineID int64  `json:"routineId"`
	pos       int
}

// NewSession starts a session at the first step.
func NewSession(id string, r domain.Routine) (*Session, error) {
	if len(Flatten(r)) == 0 {
		return nil, ErrEmptyPlayback
	}
	return &Session{ID: id, RoutineID: r.ID}, nil
}

// Position is the current cursor index.
func (s *Session) Position() int { return s.pos }

// Advance moves one step forward, stopping at the last step.
func (s *Session) Advance(r domain.Routine, cat Catalog) (Frame, error) {
	return s.seek(r, cat, s.pos+1)
}

// Retreat moves one step back, stopping at the first step.
func (s *Session) Retreat(r domain.Routine, cat Catalog) (Frame, error) {
	return s.seek(r, cat, s.pos-1)
}

// Current renders the step under the cursor.
func (s *Session) Current(r domain.Routine, cat Catalog) (Frame, error) {
	return s.seek(r, cat, s.pos)
}

func (s *Session) seek(r domain.Routine, cat Catalog, to int) (Frame, error) {
	steps := Flatten(r)
	if len(steps) == 0 {
		return Frame{}, ErrEmptyPlayback
	}
	s.pos = clamp(to, 0, len(steps)-1)
	return render(steps, s.pos, cat), nil
}

func render(steps []domain.Step, pos int, cat Catalog) Frame {
	f := Frame{
		Step:     steps[pos],
		Position: pos,
		Total:    len(steps),
		Last:     pos == len(steps)-1,
		Action:   ActionNext,
	}
	if f.Last {
		f.Action = ActionComplete
	}
	if f.Step.Kind != domain.StepExercise {
		return f
	}
	ex, ok := cat.Exercise(f.Step.ExerciseID)
	if !ok {
		f.Missing = true
		return f
	}
	f.Exercise = &ex
	f.EmbedURL = domain.EmbedURL(ex.MediaLink)
	return f
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
