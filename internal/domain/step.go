package domain

// StepKind tells playback steps apart.
type StepKind string

const (
	StepExercise      StepKind = "exercise"
	StepSectionHeader StepKind = "sectionHeader"
)

// MainSectionLabel labels the routine's own top-level items during playback.
const MainSectionLabel = "Main"

// Step is one entry of a flattened routine. Exercise steps carry ExerciseID and
// SectionLabel, header steps carry SectionName.
type Step struct {
	Kind         StepKind `json:"kind"`
	ExerciseID   int64    `json:"exerciseId,omitempty"`
	SectionLabel string   `json:"sectionLabel,omitempty"`
	SectionName  string   `json:"sectionName,omitempty"`
}

// ExerciseStep builds an exercise step.
func ExerciseStep(exerciseID int64, label string) Step {
	return Step{Kind: StepExercise, ExerciseID: exerciseID, SectionLabel: label}
}

// HeaderStep builds a section transition marker.
func HeaderStep(name string) Step {
	return Step{Kind: StepSectionHeader, SectionName: name}
}
