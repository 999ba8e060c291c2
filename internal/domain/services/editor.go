package services

import (
	"fmt"
	"sync"

	"github.com/fredcamaral/carouselkit/internal/domain/entities"
)

// EditState is the per-slide editing state
type EditState string

const (
	StateViewing EditState = "viewing"
	StateEditing EditState = "editing"
)

// Editor tracks which slides are being edited. State is keyed by slide
// number; an edit is committed to the document on the Editing -> Viewing
// transition. A read-only editor never enters Editing.
type Editor struct {
	mu       sync.Mutex
	doc      *Document
	readOnly bool
	active   map[int]entities.SlideField
}

// NewEditor creates an editor over doc
func NewEditor(doc *Document, readOnly bool) *Editor {
	return &Editor{
		doc:      doc,
		readOnly: readOnly,
		active:   make(map[int]entities.SlideField),
	}
}

// State returns the editing state of a slide
func (e *Editor) State(number int) EditState {
	e.mu.Lock()
	defer e.mu.Unlock()
	if _, ok := e.active[number]; ok {
		return StateEditing
	}
	return StateViewing
}

// Begin activates a text field of a slide
func (e *Editor) Begin(number int, field entities.SlideField) error {
	if e.readOnly {
		return entities.ErrReadOnly
	}
	if _, err := ParseField(field); err != nil {
		return err
	}
	if number < 1 || number > e.doc.Len() {
		return fmt.Errorf("%w: %d", entities.ErrSlideNotFound, number)
	}

	e.mu.Lock()
	e.active[number] = field
	e.mu.Unlock()
	return nil
}

// Commit writes value into the active field and returns the slide to Viewing
func (e *Editor) Commit(number int, value string) error {
	e.mu.Lock()
	field, ok := e.active[number]
	delete(e.active, number)
	e.mu.Unlock()

	if !ok {
		return fmt.Errorf("slide %d is not being edited", number)
	}
	return e.doc.UpdateSlideField(number-1, field, value)
}

// Cancel leaves Editing without writing anything
func (e *Editor) Cancel(number int) {
	e.mu.Lock()
	delete(e.active, number)
	e.mu.Unlock()
}

// Edit runs a full Begin/Commit cycle
func (e *Editor) Edit(number int, field entities.SlideField, value string) error {
	if err := e.Begin(number, field); err != nil {
		return err
	}
	return e.Commit(number, value)
}

// ParseField validates a SlideField value
func ParseField(field entities.SlideField) (entities.SlideField, error) {
	return entities.ParseSlideField(string(field))
}
