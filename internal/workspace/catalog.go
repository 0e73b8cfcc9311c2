package workspace

import (
	"fmt"
	"strings"

	"alcyxob/routine-builder/internal/domain"
)

// ExerciseInput is what a caller provides to create an exercise.
// A zero ID asks the workspace to assign one.
type ExerciseInput struct {
	ID          int64
	Title       string
	Description string
	Tags        []string
	MediaLink   string
	Rating      int
}

// CatalogQuery filters catalog listings. Empty fields match everything.
type CatalogQuery struct {
	Search string // case-insensitive substring of title, description or a tag
	Tag    string // exact tag name, case-insensitive
}

func (q CatalogQuery) matches(ex *domain.Exercise) bool {
	if q.Tag != "" && !ex.HasTag(q.Tag) {
		return false
	}
	term := strings.ToLower(strings.TrimSpace(q.Search))
	if term == "" {
		return true
	}
	if strings.Contains(strings.ToLower(ex.Title), term) || strings.Contains(strings.ToLower(ex.Description), term) {
		return true
	}
	for _, t := range ex.Tags {
		if strings.Contains(strings.ToLower(t), term) {
			return true
		}
	}
	return false
}

// ExerciseGroup is a slice of the catalog under one tag. Exercises without a
// registered tag are grouped under a zero Tag at the end.
type ExerciseGroup struct {
	Tag       domain.Tag        `json:"tag"`
	Exercises []domain.Exercise `json:"exercises"`
}

// CreateExercise adds an exercise to the catalog.
func (w *Workspace) CreateExercise(in ExerciseInput) (domain.Exercise, error) {
	ex := domain.Exercise{
		ID:          in.ID,
		Title:       strings.TrimSpace(in.Title),
		Description: in.Description,
		Tags:        domain.NormalizeTags(in.Tags),
		MediaLink:   strings.TrimSpace(in.MediaLink),
		Rating:      in.Rating,
	}
	if err := validateExercise(ex); err != nil {
		return domain.Exercise{}, err
	}

	err := w.mutate(func() error {
		if ex.ID == 0 {
			ex.ID = w.ids.next()
		} else if _, taken := w.exercises[ex.ID]; taken {
			return domain.Invalidf("exercise id %d already exists", ex.ID)
		}
		w.ids.observe(ex.ID)
		w.insertExercise(ex)
		return nil
	}, domain.CollectionExercises)
	if err != nil {
		return domain.Exercise{}, err
	}
	return ex.Clone(), nil
}

// AddNewExercise creates an exercise with just a title and toggles it into c.
func (w *Workspace) AddNewExercise(c domain.Container, title string) (domain.Exercise, error) {
	ex := domain.Exercise{Title: strings.TrimSpace(title), Tags: []string{}}
	if err := validateExercise(ex); err != nil {
		return domain.Exercise{}, err
	}

	err := w.mutate(func() error {
		items, err := w.items(c)
		if err != nil {
			return err
		}
		ex.ID = w.ids.next()
		w.insertExercise(ex)
		*items = append(*items, domain.ExerciseRef{ExerciseID: ex.ID})
		return nil
	}, domain.CollectionExercises, domain.CollectionRoutines)
	if err != nil {
		return domain.Exercise{}, err
	}
	return ex.Clone(), nil
}

// UpdateExercise applies a patch in place.
func (w *Workspace) UpdateExercise(id int64, p domain.ExercisePatch) (domain.Exercise, error) {
	var out domain.Exercise
	err := w.mutate(func() error {
		cur, ok := w.exercises[id]
		if !ok {
			return fmt.Errorf("%w: %d", ErrExerciseNotFound, id)
		}
		next := cur.Clone()
		if p.Title != nil {
			next.Title = strings.TrimSpace(*p.Title)
		}
		if p.Description != nil {
			next.Description = *p.Description
		}
		if p.Tags != nil {
			next.Tags = domain.NormalizeTags(*p.Tags)
		}
		if p.MediaLink != nil {
			next.MediaLink = strings.TrimSpace(*p.MediaLink)
		}
		if p.Rating != nil {
			next.Rating = *p.Rating
		}
		if err := validateExercise(next); err != nil {
			return err
		}
		*cur = next
		out = next.Clone()
		return nil
	}, domain.CollectionExercises)
	return out, err
}

// DeleteExercise removes an exercise from the catalog. References to it in
// routines are left in place and resolve as missing.
func (w *Workspace) DeleteExercise(id int64) error {
	return w.mutate(func() error {
		if _, ok := w.exercises[id]; !ok {
			return fmt.Errorf("%w: %d", ErrExerciseNotFound, id)
		}
		delete(w.exercises, id)
		w.exerciseOrder = removeValue(w.exerciseOrder, id)
		return nil
	}, domain.CollectionExercises)
}

// Exercise looks an exercise up by id.
func (w *Workspace) Exercise(id int64) (domain.Exercise, bool) {
	w.mu.RLock()
	defer w.mu.RUnlock()
	ex, ok := w.exercises[id]
	if !ok {
		return domain.Exercise{}, false
	}
	return ex.Clone(), true
}

// Exercises lists the catalog in creation order.
func (w *Workspace) Exercises(q CatalogQuery) []domain.Exercise {
	w.mu.RLock()
	defer w.mu.RUnlock()
	out := make([]domain.Exercise, 0, len(w.exerciseOrder))
	for _, id := range w.exerciseOrder {
		ex := w.exercises[id]
		if q.matches(ex) {
			out = append(out, ex.Clone())
		}
	}
	return out
}

// GroupedExercises lists the catalog grouped by tag in registry order.
// An exercise with several tags appears in each of their groups. Empty
// groups are left out.
func (w *Workspace) GroupedExercises(q CatalogQuery) []ExerciseGroup {
	w.mu.RLock()
	defer w.mu.RUnlock()

	var groups []ExerciseGroup
	for _, tag := range w.tags {
		g := ExerciseGroup{Tag: tag}
		for _, id := range w.exerciseOrder {
			ex := w.exercises[id]
			if ex.HasTag(tag.Name) && q.matches(ex) {
				g.Exercises = append(g.Exercises, ex.Clone())
			}
		}
		if len(g.Exercises) > 0 {
			groups = append(groups, g)
		}
	}

	var untagged ExerciseGroup
	for _, id := range w.exerciseOrder {
		ex := w.exercises[id]
		if !w.hasRegisteredTag(ex) && q.matches(ex) {
			untagged.Exercises = append(untagged.Exercises, ex.Clone())
		}
	}
	if len(untagged.Exercises) > 0 {
		groups = append(groups, untagged)
	}
	return groups
}

func (w *Workspace) hasRegisteredTag(ex *domain.Exercise) bool {
	for _, tag := range w.tags {
		if ex.HasTag(tag.Name) {
			return true
		}
	}
	return false
}

func (w *Workspace) insertExercise(ex domain.Exercise) {
	stored := ex.Clone()
	w.exercises[ex.ID] = &stored
	w.exerciseOrder = append(w.exerciseOrder, ex.ID)
}

func validateExercise(ex domain.Exercise) error {
	if ex.Title == "" {
		return domain.Invalidf("exercise title is required")
	}
	return domain.ValidateRating(ex.Rating)
}

func removeValue[T comparable](s []T, v T) []T {
	for i, x := range s {
		if x == v {
			return append(s[:i], s[i+1:]...)
		}
	}
	return s
}
