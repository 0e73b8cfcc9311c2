package workspace

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"alcyxob/routine-builder/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestWorkspace(t *testing.T, opts ...Option) *Workspace {
	t.Helper()
	clock := time.Date(2025, time.March, 3, 8, 0, 0, 0, time.UTC)
	n := 0
	base := []Option{
		WithClock(func() time.Time { return clock }),
		WithInstanceIDs(func() string { n++; return fmt.Sprintf("inst-%d", n) }),
	}
	return New(append(base, opts...)...)
}

func mustExercise(t *testing.T, w *Workspace, title string, tags ...string) domain.Exercise {
	t.Helper()
	ex, err := w.CreateExercise(ExerciseInput{Title: title, Tags: tags})
	require.NoError(t, err)
	return ex
}

// seedRoutine builds a routine with top-level items and one section, both
// filled from the given exercise ids.
func seedRoutine(t *testing.T, w *Workspace, top, inSection []int64) (domain.Routine, domain.Container, domain.Container) {
	t.Helper()
	r, err := w.CreateRoutine("Morning")
	require.NoError(t, err)
	sec, err := w.AddSection(r.ID, "Warmup")
	require.NoError(t, err)

	topC := domain.Container{RoutineID: r.ID}
	secC := domain.Container{RoutineID: r.ID, SectionID: sec.ID}
	for _, id := range top {
		_, err := w.ToggleExercise(topC, id)
		require.NoError(t, err)
	}
	for _, id := range inSection {
		_, err := w.ToggleExercise(secC, id)
		require.NoError(t, err)
	}
	r, _ = w.Routine(r.ID)
	return r, topC, secC
}

func itemIDs(t *testing.T, w *Workspace, c domain.Container) []int64 {
	t.Helper()
	r, ok := w.Routine(c.RoutineID)
	require.True(t, ok)
	if c.TopLevel() {
		return domain.RefIDs(r.Items)
	}
	s, ok := r.Section(c.SectionID)
	require.True(t, ok)
	return domain.RefIDs(s.Items)
}

func TestIDsNeverRepeat(t *testing.T) {
	w := newTestWorkspace(t)
	a := mustExercise(t, w, "a")
	b := mustExercise(t, w, "b")
	r, err := w.CreateRoutine("")
	require.NoError(t, err)

	assert.Less(t, a.ID, b.ID)
	assert.Less(t, b.ID, r.ID)
	assert.Equal(t, "New Routine", r.Name)
}

func TestMoveWithinRoundTrip(t *testing.T) {
	tests := []struct{ from, to int }{
		{0, 4}, {4, 0}, {1, 3}, {3, 1}, {2, 2},
	}
	for _, tt := range tests {
		t.Run(fmt.Sprintf("%d_to_%d", tt.from, tt.to), func(t *testing.T) {
			w := newTestWorkspace(t)
			var ids []int64
			for _, title := range []string{"a", "b", "c", "d", "e"} {
				ids = append(ids, mustExercise(t, w, title).ID)
			}
			_, c, _ := seedRoutine(t, w, ids, nil)

			require.NoError(t, w.MoveWithin(c, tt.from, tt.to))
			require.NoError(t, w.MoveWithin(c, tt.to, tt.from))
			assert.Equal(t, ids, itemIDs(t, w, c))
		})
	}
}

func TestMoveWithinRejectsBadIndex(t *testing.T) {
	w := newTestWorkspace(t)
	a := mustExercise(t, w, "a")
	_, c, _ := seedRoutine(t, w, []int64{a.ID}, nil)

	err := w.MoveWithin(c, 0, 3)
	assert.True(t, errors.Is(err, ErrIndexOutOfRange))
	assert.Equal(t, []int64{a.ID}, itemIDs(t, w, c))
}

func TestMoveAcrossConservesCount(t *testing.T) {
	w := newTestWorkspace(t)
	a := mustExercise(t, w, "a")
	b := mustExercise(t, w, "b")
	c := mustExercise(t, w, "c")
	_, top, sec := seedRoutine(t, w, []int64{a.ID, b.ID}, []int64{c.ID})

	res, err := w.MoveAcross(top, 1, sec, 0)
	require.NoError(t, err)

	assert.False(t, res.Deduplicated)
	assert.Equal(t, 0, res.Index)
	assert.Equal(t, []int64{a.ID}, itemIDs(t, w, top))
	assert.Equal(t, []int64{b.ID, c.ID}, itemIDs(t, w, sec))
	assert.Equal(t, 3, len(itemIDs(t, w, top))+len(itemIDs(t, w, sec)))
}

func TestMoveAcrossDropsDuplicateAtDestination(t *testing.T) {
	w := newTestWorkspace(t)
	a := mustExercise(t, w, "a")
	b := mustExercise(t, w, "b")
	_, top, sec := seedRoutine(t, w, []int64{a.ID, b.ID}, []int64{a.ID})

	res, err := w.MoveAcross(top, 0, sec, domain.EndOfList)
	require.NoError(t, err)

	assert.True(t, res.Deduplicated)
	assert.Equal(t, 0, res.Index)
	assert.Equal(t, []int64{b.ID}, itemIDs(t, w, top))
	assert.Equal(t, []int64{a.ID}, itemIDs(t, w, sec))
	// one less than the three references before the move
	assert.Equal(t, 2, len(itemIDs(t, w, top))+len(itemIDs(t, w, sec)))
}

func TestMoveAcrossKeepsMovedCopyWhenDuplicateIsLater(t *testing.T) {
	w := newTestWorkspace(t)
	a := mustExercise(t, w, "a")
	b := mustExercise(t, w, "b")
	_, top, sec := seedRoutine(t, w, []int64{a.ID}, []int64{b.ID, a.ID})

	res, err := w.MoveAcross(top, 0, sec, 0)
	require.NoError(t, err)

	assert.False(t, res.Deduplicated)
	assert.True(t, res.DroppedExisting, "the copy already in the section is gone")
	assert.Equal(t, 0, res.Index)
	assert.Equal(t, []int64{a.ID, b.ID}, itemIDs(t, w, sec))
}

func TestDropReportsDroppedExistingCopy(t *testing.T) {
	w := newTestWorkspace(t)
	a := mustExercise(t, w, "a")
	b := mustExercise(t, w, "b")
	_, top, sec := seedRoutine(t, w, []int64{a.ID}, []int64{b.ID, a.ID})

	res, err := w.Drop(domain.ExerciseDrag{Source: top, Index: 0, ExerciseID: a.ID}, domain.ContainerSlot{Container: sec, Index: 0})
	require.NoError(t, err)

	assert.True(t, res.Moved)
	assert.False(t, res.Deduplicated)
	assert.True(t, res.DroppedExisting)
	assert.Empty(t, itemIDs(t, w, top))
	assert.Equal(t, []int64{a.ID, b.ID}, itemIDs(t, w, sec))
}

func TestMoveAcrossClampsDestinationIndex(t *testing.T) {
	w := newTestWorkspace(t)
	a := mustExercise(t, w, "a")
	b := mustExercise(t, w, "b")
	_, top, sec := seedRoutine(t, w, []int64{a.ID}, []int64{b.ID})

	res, err := w.MoveAcross(top, 0, sec, 99)
	require.NoError(t, err)
	assert.Equal(t, 1, res.Index)
	assert.Equal(t, []int64{b.ID, a.ID}, itemIDs(t, w, sec))
}

func TestInvalidContainerLeavesStateUnchanged(t *testing.T) {
	w := newTestWorkspace(t)
	a := mustExercise(t, w, "a")
	r, top, _ := seedRoutine(t, w, []int64{a.ID}, nil)
	missing := domain.Container{RoutineID: r.ID, SectionID: 12345}

	_, err := w.MoveAcross(top, 0, missing, 0)
	assert.True(t, errors.Is(err, ErrContainerNotFound))
	assert.Equal(t, []int64{a.ID}, itemIDs(t, w, top))

	_, err = w.ToggleExercise(domain.Container{RoutineID: 1}, a.ID)
	assert.True(t, errors.Is(err, ErrContainerNotFound))
}

func TestToggleTwiceRestores(t *testing.T) {
	w := newTestWorkspace(t)
	a := mustExercise(t, w, "a")
	b := mustExercise(t, w, "b")
	c := mustExercise(t, w, "c")
	_, top, _ := seedRoutine(t, w, []int64{a.ID, b.ID}, nil)
	before := itemIDs(t, w, top)

	added, err := w.ToggleExercise(top, c.ID)
	require.NoError(t, err)
	assert.True(t, added)
	added, err = w.ToggleExercise(top, c.ID)
	require.NoError(t, err)
	assert.False(t, added)

	assert.Equal(t, before, itemIDs(t, w, top))
}

func TestDropStaleDuplicateIsDeduplicated(t *testing.T) {
	w := newTestWorkspace(t)
	a := mustExercise(t, w, "a")
	b := mustExercise(t, w, "b")
	_, top, sec := seedRoutine(t, w, []int64{a.ID}, []int64{b.ID})

	res, err := w.Drop(domain.ExerciseDrag{Source: sec, Index: 5, ExerciseID: a.ID}, domain.ContainerSlot{Container: top, Index: domain.EndOfList})
	require.NoError(t, err)

	assert.True(t, res.StaleSource)
	assert.True(t, res.Deduplicated)
	assert.Equal(t, []int64{a.ID}, itemIDs(t, w, top))
	assert.Equal(t, []int64{b.ID}, itemIDs(t, w, sec))
}

func TestDeleteTagCascades(t *testing.T) {
	w := newTestWorkspace(t)
	e := mustExercise(t, w, "e", "Mobility", "Cardio")
	f := mustExercise(t, w, "f", "cardio")
	g := mustExercise(t, w, "g", "Release")

	require.NoError(t, w.DeleteTag("Cardio"))

	for id, want := range map[int64][]string{e.ID: {"Mobility"}, f.ID: {}, g.ID: {"Release"}} {
		ex, ok := w.Exercise(id)
		require.True(t, ok)
		assert.Equal(t, want, ex.Tags)
	}
	for _, tag := range w.Tags() {
		assert.NotEqual(t, "Cardio", tag.Name)
	}
}

func TestDeleteTagUnknown(t *testing.T) {
	w := newTestWorkspace(t)
	assert.True(t, errors.Is(w.DeleteTag("Yoga"), ErrTagNotFound))
}

func TestCreateTagValidation(t *testing.T) {
	w := newTestWorkspace(t)

	_, err := w.CreateTag("mobility", "bg-blue-500")
	assert.True(t, errors.Is(err, domain.ErrValidation))
	_, err = w.CreateTag("Yoga", "#ff0000")
	assert.True(t, errors.Is(err, domain.ErrValidation))

	tag, err := w.CreateTag("  Yoga ", "bg-teal-500")
	require.NoError(t, err)
	assert.Equal(t, "Yoga", tag.Name)
	assert.Len(t, w.Tags(), len(domain.DefaultTags())+1)
}

func TestTagUsage(t *testing.T) {
	w := newTestWorkspace(t)
	mustExercise(t, w, "a", "Cardio")
	mustExercise(t, w, "b", "Cardio", "Release")

	usage := map[string]int{}
	for _, tag := range w.Tags() {
		usage[tag.Name] = tag.Usage
	}
	assert.Equal(t, 2, usage["Cardio"])
	assert.Equal(t, 1, usage["Release"])
	assert.Equal(t, 0, usage["Mobility"])
}

func TestCreateExerciseValidation(t *testing.T) {
	w := newTestWorkspace(t)
	tests := []struct {
		name string
		in   ExerciseInput
	}{
		{name: "empty title", in: ExerciseInput{Title: "  "}},
		{name: "rating too high", in: ExerciseInput{Title: "x", Rating: 6}},
		{name: "negative rating", in: ExerciseInput{Title: "x", Rating: -1}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := w.CreateExercise(tt.in)
			assert.True(t, errors.Is(err, domain.ErrValidation))
		})
	}
	assert.Empty(t, w.Exercises(CatalogQuery{}))
}

func TestDeleteExerciseLeavesReferences(t *testing.T) {
	w := newTestWorkspace(t)
	a := mustExercise(t, w, "a")
	_, top, _ := seedRoutine(t, w, []int64{a.ID}, nil)

	require.NoError(t, w.DeleteExercise(a.ID))
	assert.Equal(t, []int64{a.ID}, itemIDs(t, w, top))
}

func TestCatalogSearchAndGrouping(t *testing.T) {
	w := newTestWorkspace(t)
	mustExercise(t, w, "Cat cow", "Mobility")
	mustExercise(t, w, "Jumping jacks", "Cardio")
	mustExercise(t, w, "Box breathing")

	found := w.Exercises(CatalogQuery{Search: "CARD"})
	require.Len(t, found, 1)
	assert.Equal(t, "Jumping jacks", found[0].Title)
	assert.Len(t, w.Exercises(CatalogQuery{Tag: "mobility"}), 1)

	groups := w.GroupedExercises(CatalogQuery{})
	require.Len(t, groups, 3)
	assert.Equal(t, "Mobility", groups[0].Tag.Name)
	assert.Equal(t, "Cardio", groups[1].Tag.Name)
	assert.Empty(t, groups[2].Tag.Name)
	assert.Equal(t, "Box breathing", groups[2].Exercises[0].Title)
}

func TestAddNewExerciseAppendsToContainer(t *testing.T) {
	w := newTestWorkspace(t)
	_, _, sec := seedRoutine(t, w, nil, nil)

	ex, err := w.AddNewExercise(sec, "Dead bug")
	require.NoError(t, err)
	assert.Equal(t, []int64{ex.ID}, itemIDs(t, w, sec))
	assert.Equal(t, 1, len(w.Exercises(CatalogQuery{})))
}

func TestDropSelfIsNoop(t *testing.T) {
	w := newTestWorkspace(t)
	a := mustExercise(t, w, "a")
	b := mustExercise(t, w, "b")
	_, top, _ := seedRoutine(t, w, []int64{a.ID, b.ID}, nil)

	res, err := w.Drop(domain.ExerciseDrag{Source: top, Index: 1, ExerciseID: b.ID}, domain.ContainerSlot{Container: top, Index: 1})
	require.NoError(t, err)
	assert.False(t, res.Moved)

	res, err = w.Drop(domain.ExerciseDrag{Source: top, Index: 1, ExerciseID: b.ID}, domain.ContainerSlot{Container: top, Index: domain.EndOfList})
	require.NoError(t, err)
	assert.False(t, res.Moved)
	assert.Equal(t, []int64{a.ID, b.ID}, itemIDs(t, w, top))
}

func TestDropStaleSourceStillInserts(t *testing.T) {
	w := newTestWorkspace(t)
	a := mustExercise(t, w, "a")
	b := mustExercise(t, w, "b")
	c := mustExercise(t, w, "c")
	_, top, sec := seedRoutine(t, w, []int64{a.ID}, []int64{b.ID})

	res, err := w.Drop(domain.ExerciseDrag{Source: top, Index: 3, ExerciseID: c.ID}, domain.ContainerSlot{Container: sec, Index: 0})
	require.NoError(t, err)

	assert.True(t, res.StaleSource)
	assert.True(t, res.Moved)
	assert.Equal(t, []int64{a.ID}, itemIDs(t, w, top))
	assert.Equal(t, []int64{c.ID, b.ID}, itemIDs(t, w, sec))
}

func TestDropFallsBackToFirstMatch(t *testing.T) {
	w := newTestWorkspace(t)
	a := mustExercise(t, w, "a")
	b := mustExercise(t, w, "b")
	_, top, sec := seedRoutine(t, w, []int64{a.ID, b.ID}, nil)

	// index 0 no longer holds b
	res, err := w.Drop(domain.ExerciseDrag{Source: top, Index: 0, ExerciseID: b.ID}, domain.ContainerSlot{Container: sec, Index: domain.EndOfList})
	require.NoError(t, err)

	assert.False(t, res.StaleSource)
	assert.Equal(t, []int64{a.ID}, itemIDs(t, w, top))
	assert.Equal(t, []int64{b.ID}, itemIDs(t, w, sec))
}

func TestDropRoutine(t *testing.T) {
	w := newTestWorkspace(t)
	first, err := w.CreateRoutine("first")
	require.NoError(t, err)
	second, err := w.CreateRoutine("second")
	require.NoError(t, err)

	res, err := w.Drop(domain.RoutineDrag{RoutineID: second.ID}, domain.RoutineSlot{Index: domain.EndOfList})
	require.NoError(t, err)
	assert.True(t, res.Moved)
	routines := w.Routines()
	assert.Equal(t, []int64{first.ID, second.ID}, []int64{routines[0].ID, routines[1].ID})

	res, err = w.Drop(domain.RoutineDrag{RoutineID: first.ID}, domain.DateSlot{Date: "2025-03-10"})
	require.NoError(t, err)
	require.NotNil(t, res.Instance)
	assert.Equal(t, "inst-1", res.Instance.ID)
	assert.Equal(t, domain.DefaultInstanceDuration, res.Instance.DurationMinutes)
	assert.Equal(t, domain.RepeatOnce, res.Instance.Recurrence)

	_, err = w.Drop(domain.RoutineDrag{RoutineID: first.ID}, domain.ContainerSlot{Container: domain.Container{RoutineID: first.ID}})
	assert.True(t, errors.Is(err, ErrInvalidDrop))
}

func TestDeleteRoutineKeepsPlacements(t *testing.T) {
	w := newTestWorkspace(t)
	r, err := w.CreateRoutine("r")
	require.NoError(t, err)
	inst, err := w.PlaceOnDate(r.ID, "2025-03-04")
	require.NoError(t, err)

	require.NoError(t, w.DeleteRoutine(r.ID))

	got, ok := w.Instance(inst.ID)
	require.True(t, ok)
	assert.Equal(t, r.ID, got.RoutineID)
}

func TestInstancesBetween(t *testing.T) {
	w := newTestWorkspace(t)
	r, err := w.CreateRoutine("r")
	require.NoError(t, err)
	for _, d := range []string{"2025-03-20", "2025-02-28", "2025-03-01"} {
		_, err := w.PlaceOnDate(r.ID, d)
		require.NoError(t, err)
	}

	got, err := w.InstancesBetween("2025-03-01", "2025-03-31")
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "2025-03-01", got[0].Date)
	assert.Equal(t, "2025-03-20", got[1].Date)
	assert.Len(t, w.InstancesOn("2025-02-28"), 1)

	_, err = w.PlaceOnDate(r.ID, "03/01/2025")
	assert.True(t, errors.Is(err, domain.ErrValidation))
}

func TestUpdateScheduleStartsFromDefaults(t *testing.T) {
	w := newTestWorkspace(t)
	r, err := w.CreateRoutine("r")
	require.NoError(t, err)

	weekdays := domain.RecurWeekdays
	s, err := w.UpdateSchedule(r.ID, domain.SchedulePatch{Frequency: &weekdays, ToggleDays: []domain.Weekday{domain.Saturday}})
	require.NoError(t, err)

	assert.Equal(t, domain.RecurCustom, s.Frequency)
	assert.Equal(t, 15, s.DurationMinutes)
	assert.Len(t, s.DaysOfWeek, 6)

	got, _ := w.Routine(r.ID)
	require.NotNil(t, got.Schedule)
	assert.Equal(t, s, *got.Schedule)
}

func TestChangeHandlerSeesCollections(t *testing.T) {
	var seen []domain.Collection
	w := newTestWorkspace(t, WithChangeHandler(func(c domain.Collection) { seen = append(seen, c) }))

	mustExercise(t, w, "a", "Cardio")
	require.NoError(t, w.DeleteTag("Cardio"))
	_, err := w.CreateRoutine("r")
	require.NoError(t, err)
	_, err = w.CreateExercise(ExerciseInput{})
	require.Error(t, err)

	assert.Equal(t, []domain.Collection{
		domain.CollectionExercises,
		domain.CollectionTags, domain.CollectionExercises,
		domain.CollectionRoutines,
	}, seen)
}

func TestMarshalLoadRoundTrip(t *testing.T) {
	w := newTestWorkspace(t)
	a := mustExercise(t, w, "a", "Mobility")
	r, _, _ := seedRoutine(t, w, []int64{a.ID}, []int64{a.ID})
	_, err := w.PlaceOnDate(r.ID, "2025-03-04")
	require.NoError(t, err)

	other := newTestWorkspace(t)
	for _, c := range domain.Collections {
		blob, err := w.Marshal(c)
		require.NoError(t, err)
		require.NoError(t, other.Load(c, blob))
	}

	assert.Equal(t, w.Export(time.Time{}), other.Export(time.Time{}))
}

func TestImportReplacesEverything(t *testing.T) {
	w := newTestWorkspace(t)
	mustExercise(t, w, "old")

	b, err := domain.ParseBackup([]byte(`{"version":"1.0","exercises":[{"id":7,"title":"new","category":"Cardio"}],
		"routines":[{"id":9,"name":"r","exerciseItems":[{"exerciseId":7}],"subRoutines":[{"id":1,"name":"s","exerciseItems":[]}]}]}`))
	require.NoError(t, err)
	require.NoError(t, w.Import(b))

	exs := w.Exercises(CatalogQuery{})
	require.Len(t, exs, 1)
	assert.Equal(t, []string{"Cardio"}, exs[0].Tags)
	assert.Len(t, w.Routines(), 1)
	assert.Empty(t, w.Tags())
	assert.Empty(t, w.Instances())

	// freshly minted ids stay ahead of imported ones
	r, err := w.CreateRoutine("next")
	require.NoError(t, err)
	assert.Greater(t, r.ID, int64(9))
}

func TestImportDuplicateIDsLeavesState(t *testing.T) {
	w := newTestWorkspace(t)
	keep := mustExercise(t, w, "keep")

	err := w.Import(&domain.Backup{Exercises: []domain.Exercise{{ID: 1, Title: "x"}, {ID: 1, Title: "y"}}})
	assert.True(t, errors.Is(err, domain.ErrMalformedImport))

	exs := w.Exercises(CatalogQuery{})
	require.Len(t, exs, 1)
	assert.Equal(t, keep.ID, exs[0].ID)
}

func TestImportRejectsUnrenderableRows(t *testing.T) {
	tests := []struct {
		name   string
		backup string
	}{
		{
			name: "placement date",
			backup: `{"exercises":[],"routines":[{"id":9,"name":"r"}],
				"scheduledRoutines":[{"id":"a","routineId":9,"date":"03/04/2025"}]}`,
		},
		{
			name: "placement recurrence",
			backup: `{"exercises":[],"routines":[{"id":9,"name":"r"}],
				"scheduledRoutines":[{"id":"a","routineId":9,"date":"2025-03-04","recurrence":"hourly"}]}`,
		},
		{
			name: "schedule time of day",
			backup: `{"exercises":[],"routines":[{"id":9,"name":"r",
				"schedule":{"duration":15,"timeOfDay":"9am","daysOfWeek":["MO"],"frequency":"weekly"}}]}`,
		},
		{
			name: "schedule weekday",
			backup: `{"exercises":[],"routines":[{"id":9,"name":"r",
				"schedule":{"duration":15,"timeOfDay":"09:00","daysOfWeek":["XX"],"frequency":"custom"}}]}`,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := newTestWorkspace(t)
			a := mustExercise(t, w, "a")
			r, _, _ := seedRoutine(t, w, []int64{a.ID}, nil)
			placed, err := w.PlaceOnDate(r.ID, "2025-03-04")
			require.NoError(t, err)

			b, err := domain.ParseBackup([]byte(tt.backup))
			require.NoError(t, err)
			err = w.Import(b)
			assert.True(t, errors.Is(err, domain.ErrMalformedImport), err)

			require.Len(t, w.Routines(), 1)
			assert.Equal(t, r.ID, w.Routines()[0].ID)
			assert.Equal(t, []domain.ScheduledInstance{placed}, w.Instances())
		})
	}
}

func TestLoadRejectsUnrenderablePlacement(t *testing.T) {
	w := newTestWorkspace(t)

	err := w.Load(domain.CollectionScheduled, []byte(`[{"id":"a","routineId":9,"date":"2025-3-4"}]`))
	assert.True(t, errors.Is(err, domain.ErrMalformedImport))
	assert.Empty(t, w.Instances())
}

func TestClearKeepsTags(t *testing.T) {
	w := newTestWorkspace(t)
	a := mustExercise(t, w, "a")
	r, _, _ := seedRoutine(t, w, []int64{a.ID}, nil)
	_, err := w.PlaceOnDate(r.ID, "2025-03-04")
	require.NoError(t, err)

	w.Clear()

	assert.Empty(t, w.Exercises(CatalogQuery{}))
	assert.Empty(t, w.Routines())
	assert.Empty(t, w.Instances())
	assert.Len(t, w.Tags(), len(domain.DefaultTags()))
}
