// Package slots derives the ordered narration slots of a presentation.
package slots

import (
	"strings"

	"slidevox/internal/pptx"
)

// Slot is a slide that carries narration text.
type Slot struct {
	SlotID    uint32
	SlideRef  string
	NoteText  string
	ShowIndex int
}

// Source is the read-only view of a package needed for extraction.
type Source interface {
	Slides() ([]pptx.SlideEntry, error)
	ResolveSlide(relID string) (string, error)
	NotesText(slidePart string) (string, error)
}

// Extract walks the slide list once in document order. Every slide advances
// the show index; only slides with non-blank notes become slots.
func Extract(src Source) ([]Slot, error) {
	entries, err := src.Slides()
	if err != nil {
		return nil, err
	}
	var out []Slot
	for i, entry := range entries {
		part, err := src.ResolveSlide(entry.RelID)
		if err != nil {
			return nil, err
		}
		text, err := src.NotesText(part)
		if err != nil {
			return nil, err
		}
		if strings.TrimSpace(text) == "" {
			continue
		}
		out = append(out, Slot{
			SlotID:    entry.ID,
			SlideRef:  entry.RelID,
			NoteText:  text,
			ShowIndex: i + 1,
		})
	}
	return out, nil
}
