package workspace

import (
	"fmt"
	"strings"

	"alcyxob/routine-builder/internal/domain"
)

// TagUsage is a registry entry with the number of exercises carrying it.
type TagUsage struct {
	domain.Tag
	Usage int `json:"usage"`
}

// CreateTag registers a new tag. Names are unique ignoring case and the
// color must come from the palette.
func (w *Workspace) CreateTag(name, color string) (domain.Tag, error) {
	tag := domain.Tag{Name: strings.TrimSpace(name), Color: strings.TrimSpace(color)}
	if tag.Name == "" {
		return domain.Tag{}, domain.Invalidf("tag name is required")
	}
	if !domain.ValidColor(tag.Color) {
		return domain.Tag{}, domain.Invalidf("color %q is not in the palette", tag.Color)
	}

	err := w.mutate(func() error {
		if w.tagIndex(tag.Name) >= 0 {
			return domain.Invalidf("tag %q already exists", tag.Name)
		}
		w.tags = append(w.tags, tag)
		return nil
	}, domain.CollectionTags)
	if err != nil {
		return domain.Tag{}, err
	}
	return tag, nil
}

// DeleteTag removes a tag and strips it from every exercise that carries it.
func (w *Workspace) DeleteTag(name string) error {
	return w.mutate(func() error {
		i := w.tagIndex(name)
		if i < 0 {
			return fmt.Errorf("%w: %q", ErrTagNotFound, name)
		}
		w.tags = append(w.tags[:i], w.tags[i+1:]...)

		for _, ex := range w.exercises {
			kept := ex.Tags[:0]
			for _, t := range ex.Tags {
				if !domain.SameTagName(t, name) {
					kept = append(kept, t)
				}
			}
			ex.Tags = kept
		}
		return nil
	}, domain.CollectionTags, domain.CollectionExercises)
}

// Tags lists the registry in order with usage counts.
func (w *Workspace) Tags() []TagUsage {
	w.mu.RLock()
	defer w.mu.RUnlock()

	out := make([]TagUsage, len(w.tags))
	for i, tag := range w.tags {
		out[i] = TagUsage{Tag: tag}
		for _, ex := range w.exercises {
			if ex.HasTag(tag.Name) {
				out[i].Usage++
			}
		}
	}
	return out
}

func (w *Workspace) tagIndex(name string) int {
	for i, t := range w.tags {
		if domain.SameTagName(t.Name, name) {
			return i
		}
	}
	return -1
}
