// internal/domain/exercise.go
package domain

import (
	"encoding/json"
	"strings"
)

// MaxRating is the highest star rating an exercise can carry.
const MaxRating = 5

// Exercise represents a single exercise definition in the catalog.
// Routines point at it by ID only, so edits show up everywhere it is referenced.
type Exercise struct {
	ID          int64    `json:"id"`
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Tags        []string `json:"categories"` // tag names, weak references into the registry
	MediaLink   string   `json:"videoUrl"`   // empty means no media
	Rating      int      `json:"rating"`
}

// UnmarshalJSON accepts the older single-category shape ({"category": "Mobility"})
// alongside the current tag list.
func (e *Exercise) UnmarshalJSON(data []byte) error {
	type plain Exercise
	aux := struct {
		*plain
		Category string `json:"category"`
	}{plain: (*plain)(e)}

	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	if len(e.Tags) == 0 && strings.TrimSpace(aux.Category) != "" {
		e.Tags = []string{aux.Category}
	}
	e.Tags = NormalizeTags(e.Tags)
	return nil
}

// HasTag reports whether the exercise carries the tag, ignoring case.
func (e *Exercise) HasTag(name string) bool {
	for _, t := range e.Tags {
		if SameTagName(t, name) {
			return true
		}
	}
	return false
}

// Clone returns a copy that shares no slices with e.
func (e Exercise) Clone() Exercise {
	e.Tags = append([]string{}, e.Tags...)
	return e
}

// NormalizeTags trims names, drops empties and removes case-insensitive duplicates.
// The first spelling wins. The result is never nil.
func NormalizeTags(tags []string) []string {
	out := make([]string, 0, len(tags))
	seen := make(map[string]struct{}, len(tags))
	for _, t := range tags {
		t = strings.TrimSpace(t)
		if t == "" {
			continue
		}
		key := strings.ToLower(t)
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, t)
	}
	return out
}

// ValidateRating checks the 0..MaxRating range.
func ValidateRating(r int) error {
	if r < 0 || r > MaxRating {
		return Invalidf("rating must be between 0 and %d, got %d", MaxRating, r)
	}
	return nil
}
