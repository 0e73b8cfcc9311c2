package domain

import "strings"

// Tag is a named, colored label. Exercises reference it by name.
type Tag struct {
	Name  string `json:"name"`
	Color string `json:"color"`
}

// Palette lists the color tokens a tag may use.
var Palette = []string{
	"bg-blue-500",
	"bg-sky-500",
	"bg-cyan-500",
	"bg-teal-500",
	"bg-emerald-500",
	"bg-green-500",
	"bg-lime-500",
	"bg-yellow-500",
	"bg-amber-500",
	"bg-orange-500",
	"bg-red-500",
	"bg-rose-500",
	"bg-pink-500",
	"bg-fuchsia-500",
	"bg-purple-500",
	"bg-violet-500",
	"bg-indigo-500",
	"bg-slate-500",
	"bg-zinc-500",
	"bg-stone-500",
}

// DefaultTags is the registry a brand new workspace starts with.
func DefaultTags() []Tag {
	return []Tag{
		{Name: "Mobility", Color: "bg-blue-500"},
		{Name: "Strengthening", Color: "bg-green-500"},
		{Name: "Deep Stabilizers", Color: "bg-purple-500"},
		{Name: "Cardio", Color: "bg-red-500"},
		{Name: "Breathing", Color: "bg-yellow-500"},
		{Name: "Release", Color: "bg-pink-500"},
		{Name: "Nervous System", Color: "bg-indigo-500"},
	}
}

// ValidColor reports whether token is part of the palette.
func ValidColor(token string) bool {
	for _, c := range Palette {
		if c == token {
			return true
		}
	}
	return false
}

// SameTagName compares tag names the way the registry enforces uniqueness.
func SameTagName(a, b string) bool {
	return strings.EqualFold(strings.TrimSpace(a), strings.TrimSpace(b))
}
