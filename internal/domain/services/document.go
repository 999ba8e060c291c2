package services

import (
	"fmt"
	"sync"
	"time"

	"github.com/fredcamaral/carouselkit/internal/domain/entities"
	"github.com/fredcamaral/carouselkit/internal/domain/ports"
)

// Default text of slides added by hand
const (
	NewSlideTitle   = "New slide"
	NewSlideContent = "Tap to edit text"
)

// DocumentState is a point-in-time copy of the document
type DocumentState struct {
	Config   entities.CarouselConfig     `json:"config"`
	Username string                      `json:"username"`
	Slides   []entities.Slide            `json:"slides"`
	Styles   map[int]entities.SlideStyle `json:"styles"`
}

// Document is the single authoritative carousel model: the ordered slides,
// the style overrides keyed by slide number and the carousel config.
// After every operation slides[i].Number == i+1 and every slide has a style
// entry; styles follow their slide's content across structural edits.
type Document struct {
	mu        sync.RWMutex
	config    entities.CarouselConfig
	username  string
	slides    []entities.Slide
	styles    map[int]entities.SlideStyle
	publisher ports.EventPublisher
}

// NewDocument creates an empty document
func NewDocument(config entities.CarouselConfig, publisher ports.EventPublisher) *Document {
	return &Document{
		config:    config,
		styles:    make(map[int]entities.SlideStyle),
		publisher: publisher,
	}
}

// Config returns the carousel config
func (d *Document) Config() entities.CarouselConfig {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.config
}

// SetConfig replaces the carousel config
func (d *Document) SetConfig(config entities.CarouselConfig) error {
	if err := config.Validate(); err != nil {
		return fmt.Errorf("invalid carousel config: %w", err)
	}

	d.mu.Lock()
	d.config = config
	d.mu.Unlock()

	d.publish(ports.EventTypeConfigUpdated, 0)
	return nil
}

// Username returns the handle shown in slide footers
func (d *Document) Username() string {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.username
}

// SetUsername sets the handle shown in slide footers
func (d *Document) SetUsername(name string) {
	d.mu.Lock()
	d.username = name
	d.mu.Unlock()

	d.publish(ports.EventTypeConfigUpdated, 0)
}

// Len returns the number of slides
func (d *Document) Len() int {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return len(d.slides)
}

// Slides returns a copy of the slide list
func (d *Document) Slides() []entities.Slide {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return entities.CloneSlides(d.slides)
}

// Slide returns the slide at index
func (d *Document) Slide(index int) (entities.Slide, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	if index < 0 || index >= len(d.slides) {
		return entities.Slide{}, fmt.Errorf("%w: %d", entities.ErrSlideIndexOutOfRange, index)
	}
	return d.slides[index], nil
}

// Style returns the style entry of a slide number
func (d *Document) Style(number int) (entities.SlideStyle, bool) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	s, ok := d.styles[number]
	if !ok {
		return entities.SlideStyle{}, false
	}
	return s.Clone(), true
}

// Styles returns a copy of the style map
func (d *Document) Styles() map[int]entities.SlideStyle {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return cloneStyles(d.styles)
}

// Meta returns the carousel context templates render with
func (d *Document) Meta() entities.CarouselMeta {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return entities.CarouselMeta{
		Topic:       d.config.Topic,
		Username:    d.username,
		TotalSlides: len(d.slides),
	}
}

// State returns a deep copy of the whole document
func (d *Document) State() DocumentState {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return DocumentState{
		Config:   d.config,
		Username: d.username,
		Slides:   entities.CloneSlides(d.slides),
		Styles:   cloneStyles(d.styles),
	}
}

// Restore replaces the whole document with state. Slides are renumbered and
// missing styles are backfilled.
func (d *Document) Restore(state DocumentState) {
	d.mu.Lock()
	d.config = state.Config
	d.username = state.Username
	d.slides = entities.CloneSlides(state.Slides)
	d.styles = cloneStyles(state.Styles)
	entities.Renumber(d.slides)
	d.pruneAndBackfill()
	d.mu.Unlock()

	d.publish(ports.EventTypeSlidesReplaced, 0)
}

// Clear drops every slide and style
func (d *Document) Clear() {
	d.mu.Lock()
	d.slides = nil
	d.styles = make(map[int]entities.SlideStyle)
	d.mu.Unlock()

	d.publish(ports.EventTypeSlidesReplaced, 0)
}

// SetSlides replaces the slide list. Slides are renumbered by position and
// numbers without a style entry get the theme default; existing entries are
// never overwritten.
func (d *Document) SetSlides(slides []entities.Slide) {
	d.mu.Lock()
	d.slides = entities.CloneSlides(slides)
	entities.Renumber(d.slides)
	d.pruneAndBackfill()
	d.mu.Unlock()

	d.publish(ports.EventTypeSlidesReplaced, 0)
}

// UpdateSlideField edits one text field in place. The slide number is kept.
func (d *Document) UpdateSlideField(index int, field entities.SlideField, value string) error {
	d.mu.Lock()
	if index < 0 || index >= len(d.slides) {
		d.mu.Unlock()
		return fmt.Errorf("%w: %d", entities.ErrSlideIndexOutOfRange, index)
	}
	if err := d.slides[index].SetField(field, value); err != nil {
		d.mu.Unlock()
		return err
	}
	number := d.slides[index].Number
	d.mu.Unlock()

	d.publish(ports.EventTypeSlideUpdated, number)
	return nil
}

// InsertSlide adds a blank slide after afterIndex; -1 inserts at the front
func (d *Document) InsertSlide(afterIndex int) (entities.Slide, error) {
	d.mu.Lock()
	if afterIndex < -1 || afterIndex >= len(d.slides) {
		d.mu.Unlock()
		return entities.Slide{}, fmt.Errorf("%w: %d", entities.ErrSlideIndexOutOfRange, afterIndex)
	}

	slides, styles := d.positional()
	at := afterIndex + 1
	slide := entities.Slide{Title: NewSlideTitle, Content: NewSlideContent}
	slides = insertAt(slides, at, slide)
	styles = insertAt(styles, at, d.defaultStyle())
	d.commit(slides, styles)
	inserted := d.slides[at]
	d.mu.Unlock()

	d.publish(ports.EventTypeSlideInserted, inserted.Number)
	return inserted, nil
}

// DeleteSlide removes the slide at index along with its style entry.
// The last remaining slide cannot be deleted.
func (d *Document) DeleteSlide(index int) error {
	d.mu.Lock()
	if index < 0 || index >= len(d.slides) {
		d.mu.Unlock()
		return fmt.Errorf("%w: %d", entities.ErrSlideIndexOutOfRange, index)
	}
	if len(d.slides) <= 1 {
		d.mu.Unlock()
		return entities.ErrMinimumSlides
	}

	slides, styles := d.positional()
	slides = append(slides[:index], slides[index+1:]...)
	styles = append(styles[:index], styles[index+1:]...)
	d.commit(slides, styles)
	d.mu.Unlock()

	d.publish(ports.EventTypeSlideDeleted, index+1)
	return nil
}

// DuplicateSlide inserts a copy of the slide at index right after it. The
// copy gets its own copy of the original's style entry.
func (d *Document) DuplicateSlide(index int) (entities.Slide, error) {
	d.mu.Lock()
	if index < 0 || index >= len(d.slides) {
		d.mu.Unlock()
		return entities.Slide{}, fmt.Errorf("%w: %d", entities.ErrSlideIndexOutOfRange, index)
	}

	slides, styles := d.positional()
	slides = insertAt(slides, index+1, slides[index])
	styles = insertAt(styles, index+1, styles[index].Clone())
	d.commit(slides, styles)
	duplicate := d.slides[index+1]
	d.mu.Unlock()

	d.publish(ports.EventTypeSlideInserted, duplicate.Number)
	return duplicate, nil
}

// ReplaceSlide swaps the content of the slide carrying number. The
// replacement takes that number; nothing else is renumbered.
func (d *Document) ReplaceSlide(number int, slide entities.Slide) error {
	d.mu.Lock()
	index := number - 1
	if index < 0 || index >= len(d.slides) {
		d.mu.Unlock()
		return fmt.Errorf("%w: %d", entities.ErrSlideNotFound, number)
	}
	slide.Number = number
	d.slides[index] = slide
	d.mu.Unlock()

	d.publish(ports.EventTypeSlideUpdated, number)
	return nil
}

// UpdateStyle shallow-merges patch into the style entry of a slide number,
// creating the entry from theme defaults when absent
func (d *Document) UpdateStyle(number int, patch entities.StylePatch) (entities.SlideStyle, error) {
	if err := patch.Validate(); err != nil {
		return entities.SlideStyle{}, fmt.Errorf("invalid style: %w", err)
	}

	d.mu.Lock()
	if number < 1 || number > len(d.slides) {
		d.mu.Unlock()
		return entities.SlideStyle{}, fmt.Errorf("%w: %d", entities.ErrSlideNotFound, number)
	}
	current, ok := d.styles[number]
	if !ok {
		current = d.defaultStyle()
	}
	updated := current.Apply(patch)
	d.styles[number] = updated
	d.mu.Unlock()

	d.publish(ports.EventTypeStyleUpdated, number)
	return updated.Clone(), nil
}

// UpdateGlobalStyle applies the same merge to every slide's style entry
func (d *Document) UpdateGlobalStyle(patch entities.StylePatch) error {
	if err := patch.Validate(); err != nil {
		return fmt.Errorf("invalid style: %w", err)
	}

	d.mu.Lock()
	for _, slide := range d.slides {
		current, ok := d.styles[slide.Number]
		if !ok {
			current = d.defaultStyle()
		}
		d.styles[slide.Number] = current.Apply(patch)
	}
	d.mu.Unlock()

	d.publish(ports.EventTypeStyleUpdated, 0)
	return nil
}

// positional returns copies of the slides and their styles in slide order.
// Callers hold the write lock.
func (d *Document) positional() ([]entities.Slide, []entities.SlideStyle) {
	slides := entities.CloneSlides(d.slides)
	styles := make([]entities.SlideStyle, len(slides))
	for i, s := range slides {
		if style, ok := d.styles[s.Number]; ok {
			styles[i] = style.Clone()
		} else {
			styles[i] = d.defaultStyle()
		}
	}
	return slides, styles
}

// commit renumbers slides and re-keys styles by the new numbers
func (d *Document) commit(slides []entities.Slide, styles []entities.SlideStyle) {
	entities.Renumber(slides)
	d.slides = slides
	d.styles = make(map[int]entities.SlideStyle, len(styles))
	for i, style := range styles {
		d.styles[i+1] = style
	}
}

// pruneAndBackfill drops entries for numbers that no longer exist and adds
// defaults for numbers without one
func (d *Document) pruneAndBackfill() {
	if d.styles == nil {
		d.styles = make(map[int]entities.SlideStyle)
	}
	for number := range d.styles {
		if number < 1 || number > len(d.slides) {
			delete(d.styles, number)
		}
	}
	for _, s := range d.slides {
		if _, ok := d.styles[s.Number]; !ok {
			d.styles[s.Number] = d.defaultStyle()
		}
	}
}

func (d *Document) defaultStyle() entities.SlideStyle {
	return entities.LookupTheme(d.config.Theme).DefaultStyle()
}

func (d *Document) publish(eventType string, number int) {
	if d.publisher == nil {
		return
	}
	d.publisher.Publish(ports.UpdateEvent{
		Type:        eventType,
		SlideNumber: number,
		Timestamp:   time.Now(),
	})
}

func insertAt[T any](list []T, at int, v T) []T {
	list = append(list, v)
	copy(list[at+1:], list[at:])
	list[at] = v
	return list
}

func cloneStyles(in map[int]entities.SlideStyle) map[int]entities.SlideStyle {
	out := make(map[int]entities.SlideStyle, len(in))
	for k, v := range in {
		out[k] = v.Clone()
	}
	return out
}
