package content

import (
	"github.com/InkAurora/educblue-sub001/models"
)

// Entry is one addressable position in a viewing sequence.
type Entry struct {
	Item        models.ContentItem `json:"item"`
	CanonicalID string             `json:"id"`
	Index       int                `json:"index"`               // position in the flattened sequence
	SectionID   string             `json:"sectionId,omitempty"` // empty for flat courses
}

// Sequencer computes previous/next navigation over an ordered content
// sequence. For section-grouped courses the flattened
// section-order-then-item-order sequence is the addressable space; whether
// previous/next may cross a section boundary is configuration, not a second
// implementation.
type Sequencer struct {
	entries       []Entry
	crossSections bool
}

// NewSequencer builds the sequencer for a course. Courses with sections are
// flattened; crossSections selects whether adjacency stops at section edges
// (the single-list view) or runs through them (the mobile sidebar).
func NewSequencer(course *models.Course, crossSections bool) *Sequencer {
	return &Sequencer{
		entries:       Flatten(course),
		crossSections: crossSections,
	}
}

// Flatten produces the ordered entry list for a course, computing canonical
// ids against flattened positions so fallback keys stay distinct across
// sections.
func Flatten(course *models.Course) []Entry {
	if len(course.Sections) > 0 {
		var entries []Entry
		idx := 0
		for si := range course.Sections {
			sec := &course.Sections[si]
			for _, item := range sec.Content {
				entries = append(entries, Entry{
					Item:        item,
					CanonicalID: ResolveID(item, idx),
					Index:       idx,
					SectionID:   sec.Key(),
				})
				idx++
			}
		}
		return entries
	}

	entries := make([]Entry, 0, len(course.Content))
	for i, item := range course.Content {
		entries = append(entries, Entry{
			Item:        item,
			CanonicalID: ResolveID(item, i),
			Index:       i,
		})
	}
	return entries
}

// Entries exposes the flattened sequence in order.
func (s *Sequencer) Entries() []Entry { return s.entries }

// Len reports the number of addressable positions.
func (s *Sequencer) Len() int { return len(s.entries) }

// Locate finds the entry addressed by requestedID, by canonical id first and
// positional-integer fallback second, mirroring Find.
func (s *Sequencer) Locate(requestedID string) (Entry, bool) {
	items := make([]models.ContentItem, len(s.entries))
	for i, e := range s.entries {
		items[i] = e.Item
	}
	if _, idx, ok := Find(items, requestedID); ok {
		return s.entries[idx], true
	}
	return Entry{}, false
}

// Previous returns the canonical id of the entry before currentIndex, or
// ok=false at index 0, out of bounds, or at a section edge when boundary
// crossing is disabled.
func (s *Sequencer) Previous(currentIndex int) (string, bool) {
	if currentIndex <= 0 || currentIndex >= len(s.entries) {
		return "", false
	}
	prev := s.entries[currentIndex-1]
	if !s.crossSections && prev.SectionID != s.entries[currentIndex].SectionID {
		return "", false
	}
	return prev.CanonicalID, true
}

// Next returns the canonical id of the entry after currentIndex, or ok=false
// at the last index, out of bounds, or at a section edge when boundary
// crossing is disabled.
func (s *Sequencer) Next(currentIndex int) (string, bool) {
	if currentIndex < 0 || currentIndex >= len(s.entries)-1 {
		return "", false
	}
	next := s.entries[currentIndex+1]
	if !s.crossSections && next.SectionID != s.entries[currentIndex].SectionID {
		return "", false
	}
	return next.CanonicalID, true
}
