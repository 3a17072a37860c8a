// Package outline resolves section identities across the three places a
// section can be named: outline entries, content-map keys, and
// client-supplied section ids.
package outline

import "strings"

// Entry is one section (or slide) of a project outline. ID is stable once
// assigned; older clients sent Name instead of Title, so both are accepted.
type Entry struct {
	ID    string `json:"id,omitempty"`
	Title string `json:"title,omitempty"`
	Name  string `json:"name,omitempty"`
	Order int    `json:"order,omitempty"`
}

// DisplayTitle returns the title shown to the user, falling back to Name.
func (e Entry) DisplayTitle() string {
	if e.Title != "" {
		return e.Title
	}
	return e.Name
}

// SectionID returns the canonical section id for the entry: the explicit id
// when present, otherwise the derived id of its title.
func (e Entry) SectionID() string {
	if e.ID != "" {
		return e.ID
	}
	return DeriveID(e.DisplayTitle())
}

// DeriveID folds a section title into a canonical id: lowercase with spaces
// replaced by underscores. Deriving twice from the same title always yields
// the same id, so a section generated without an explicit id can be located
// again later.
func DeriveID(title string) string {
	return strings.ReplaceAll(strings.ToLower(title), " ", "_")
}

// Find returns the entry matching the requested section id, accepting either
// the explicit id or the derived-from-title form; different call sites supply
// different forms. ok is false when no entry matches.
func Find(entries []Entry, sectionID string) (Entry, bool) {
	for _, e := range entries {
		if e.ID == sectionID || DeriveID(e.DisplayTitle()) == sectionID {
			return e, true
		}
	}
	return Entry{}, false
}

// Collisions returns canonical ids claimed by more than one outline entry.
// Two distinct titles can normalize to the same derived id; the outline is
// kept as-is and the caller decides whether to warn. See DESIGN.md.
func Collisions(entries []Entry) []string {
	seen := make(map[string]int, len(entries))
	for _, e := range entries {
		seen[e.SectionID()]++
	}
	var dupes []string
	for _, e := range entries {
		id := e.SectionID()
		if seen[id] > 1 {
			seen[id] = -seen[id] // report each id once
			dupes = append(dupes, id)
		}
	}
	return dupes
}
