package entities

import (
	"errors"
	"fmt"
	"strings"
)

// SlideField names an editable text field of a slide
type SlideField string

const (
	FieldTitle     SlideField = "title"
	FieldContent   SlideField = "content"
	FieldHighlight SlideField = "highlight"
	FieldCTA       SlideField = "cta"
)

// ParseSlideField converts a raw field name into a SlideField
func ParseSlideField(name string) (SlideField, error) {
	switch f := SlideField(strings.ToLower(strings.TrimSpace(name))); f {
	case FieldTitle, FieldContent, FieldHighlight, FieldCTA:
		return f, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrInvalidField, name)
	}
}

// Slide represents a single page of a carousel
type Slide struct {
	// Number is the 1-based position of the slide in its carousel
	Number int `json:"number"`

	// Title is the primary heading and may embed highlight markers
	Title string `json:"title"`

	// Content is the body text; the cover slide usually leaves it empty
	Content string `json:"content"`

	// Highlight is an optional short accent phrase
	Highlight string `json:"highlight,omitempty"`

	// CTA is an optional call to action rendered on the last slide
	CTA string `json:"cta,omitempty"`
}

// Validate ensures the slide has a usable position
func (s *Slide) Validate() error {
	if s.Number < 1 {
		return errors.New("slide number must be at least 1")
	}
	return nil
}

// IsCover reports whether the slide is the first slide of the carousel
func (s *Slide) IsCover() bool {
	return s.Number == 1
}

// Field returns the value of a text field
func (s *Slide) Field(field SlideField) string {
	switch field {
	case FieldTitle:
		return s.Title
	case FieldContent:
		return s.Content
	case FieldHighlight:
		return s.Highlight
	case FieldCTA:
		return s.CTA
	}
	return ""
}

// SetField writes a text field. Number is never touched.
func (s *Slide) SetField(field SlideField, value string) error {
	switch field {
	case FieldTitle:
		s.Title = value
	case FieldContent:
		s.Content = value
	case FieldHighlight:
		s.Highlight = value
	case FieldCTA:
		s.CTA = value
	default:
		return fmt.Errorf("%w: %q", ErrInvalidField, field)
	}
	return nil
}

// Renumber rewrites slide numbers so that slides[i].Number == i+1
func Renumber(slides []Slide) {
	for i := range slides {
		slides[i].Number = i + 1
	}
}

// CloneSlides returns a copy of the slide list
func CloneSlides(slides []Slide) []Slide {
	if slides == nil {
		return nil
	}
	out := make([]Slide, len(slides))
	copy(out, slides)
	return out
}
