package services

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/fredcamaral/carouselkit/internal/domain/entities"
	"github.com/fredcamaral/carouselkit/internal/domain/ports"
)

// GenerationErrorKind classifies generation failures
type GenerationErrorKind string

const (
	// KindConfiguration blocks generation until the setup is fixed
	KindConfiguration GenerationErrorKind = "configuration"

	// KindCollaborator is a recoverable backend failure
	KindCollaborator GenerationErrorKind = "collaborator"

	// KindValidation is a rejected request
	KindValidation GenerationErrorKind = "validation"
)

// GenerationError is the user facing failure of a generation action
type GenerationError struct {
	Kind    GenerationErrorKind
	Message string
	Cause   error
}

func (e *GenerationError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

func (e *GenerationError) Unwrap() error {
	return e.Cause
}

// ErrSuperseded is returned when a newer request on the same slide finished
// the job; the stale result is discarded
var ErrSuperseded = errors.New("superseded by a newer request")

type busyKind string

const (
	busyRegenerate busyKind = "regenerate"
	busyImage      busyKind = "image"
)

type busyKey struct {
	kind   busyKind
	number int
}

// BusyState reports the running generation actions
type BusyState struct {
	Generating   bool  `json:"generating"`
	Regenerating []int `json:"regenerating"`
	Imaging      []int `json:"imaging"`
}

// Orchestrator connects the content generator to the document
type Orchestrator struct {
	doc       *Document
	generator ports.ContentGenerator
	logger    ports.Logger

	mu         sync.Mutex
	generating bool
	seq        uint64
	inflight   map[busyKey]uint64
}

// NewOrchestrator creates an orchestrator. A nil generator makes every
// generation action fail with a configuration error.
func NewOrchestrator(doc *Document, generator ports.ContentGenerator, logger ports.Logger) *Orchestrator {
	if logger == nil {
		logger = ports.NopLogger{}
	}
	return &Orchestrator{
		doc:       doc,
		generator: generator,
		logger:    logger,
		inflight:  make(map[busyKey]uint64),
	}
}

// Generate replaces the document with a freshly generated carousel. On
// failure the previous slides and styles are restored.
func (o *Orchestrator) Generate(ctx context.Context, config entities.CarouselConfig, ctaInstruction string) error {
	config.Topic = strings.TrimSpace(config.Topic)
	if config.Topic == "" {
		return &GenerationError{Kind: KindValidation, Message: "Enter a topic first", Cause: entities.ErrEmptyTopic}
	}
	if err := config.Validate(); err != nil {
		return &GenerationError{Kind: KindValidation, Message: "Invalid carousel settings", Cause: err}
	}
	if o.generator == nil {
		return &GenerationError{Kind: KindConfiguration, Message: "Content generation is not configured", Cause: entities.ErrMissingCredentials}
	}

	o.mu.Lock()
	if o.generating {
		o.mu.Unlock()
		return &GenerationError{Kind: KindValidation, Message: "Generation already in progress"}
	}
	o.generating = true
	o.mu.Unlock()
	defer func() {
		o.mu.Lock()
		o.generating = false
		o.mu.Unlock()
	}()

	previous := o.doc.State()
	if err := o.doc.SetConfig(config); err != nil {
		return &GenerationError{Kind: KindValidation, Message: "Invalid carousel settings", Cause: err}
	}
	o.doc.Clear()

	o.logger.Info("generating carousel", "topic", config.Topic, "count", config.SlideCount, "tone", config.Tone)

	raw, err := o.generator.Generate(ctx, ports.GenerateRequest{
		Topic:          config.Topic,
		Count:          config.SlideCount,
		Tone:           config.Tone,
		CTAInstruction: ctaInstruction,
	})
	if err == nil && len(raw) == 0 {
		err = errors.New("generator returned no slides")
	}
	if err != nil {
		o.doc.Restore(previous)
		o.logger.Error("carousel generation failed", "topic", config.Topic, "error", err)
		return classify(err, "Could not generate the carousel")
	}

	if len(raw) != config.SlideCount {
		o.logger.Warn("generator returned unexpected slide count", "want", config.SlideCount, "got", len(raw))
		if len(raw) > config.SlideCount {
			raw = raw[:config.SlideCount]
		}
	}

	o.doc.SetSlides(mapSlides(raw))
	o.logger.Info("carousel generated", "topic", config.Topic, "slides", o.doc.Len())
	return nil
}

// Regenerate rewrites the slide at index in place. The slide keeps its
// number, the cover keeps an empty body and a missing highlight falls back
// to the previous one.
func (o *Orchestrator) Regenerate(ctx context.Context, index int) (entities.Slide, error) {
	current, err := o.doc.Slide(index)
	if err != nil {
		return entities.Slide{}, err
	}
	if o.generator == nil {
		return entities.Slide{}, &GenerationError{Kind: KindConfiguration, Message: "Content generation is not configured", Cause: entities.ErrMissingCredentials}
	}

	key := busyKey{kind: busyRegenerate, number: current.Number}
	token := o.begin(key)
	defer o.finish(key, token)

	config := o.doc.Config()
	replacement, err := o.generator.Regenerate(ctx, ports.RegenerateRequest{
		Topic:       config.Topic,
		Slide:       current,
		TotalSlides: o.doc.Len(),
		Tone:        config.Tone,
	})
	if err != nil {
		o.logger.Error("slide regeneration failed", "slide", current.Number, "error", err)
		return entities.Slide{}, classify(err, fmt.Sprintf("Could not regenerate slide %d", current.Number))
	}
	if !o.isCurrent(key, token) {
		o.logger.Debug("discarding stale regeneration", "slide", current.Number)
		return entities.Slide{}, ErrSuperseded
	}

	replacement.Number = current.Number
	if replacement.Number == 1 {
		replacement.Content = ""
	}
	if replacement.Highlight == "" {
		replacement.Highlight = current.Highlight
	}

	if err := o.doc.ReplaceSlide(current.Number, replacement); err != nil {
		return entities.Slide{}, err
	}
	return replacement, nil
}

// GenerateBackground creates a background image for the slide at index and
// stores it as the slide's image background
func (o *Orchestrator) GenerateBackground(ctx context.Context, index int) (string, error) {
	current, err := o.doc.Slide(index)
	if err != nil {
		return "", err
	}
	if o.generator == nil {
		return "", &GenerationError{Kind: KindConfiguration, Message: "Image generation is not configured", Cause: entities.ErrMissingCredentials}
	}

	key := busyKey{kind: busyImage, number: current.Number}
	token := o.begin(key)
	defer o.finish(key, token)

	uri, err := o.generator.GenerateBackgroundImage(ctx, o.doc.Config().Topic, current)
	if err != nil {
		o.logger.Error("background generation failed", "slide", current.Number, "error", err)
		return "", classify(err, fmt.Sprintf("Could not generate a background for slide %d", current.Number))
	}
	if !o.isCurrent(key, token) {
		return "", ErrSuperseded
	}

	bgType := entities.BackgroundImage
	if _, err := o.doc.UpdateStyle(current.Number, entities.StylePatch{
		BackgroundType:  &bgType,
		BackgroundValue: &uri,
	}); err != nil {
		return "", err
	}
	return uri, nil
}

// Busy returns the running actions
func (o *Orchestrator) Busy() BusyState {
	o.mu.Lock()
	defer o.mu.Unlock()

	state := BusyState{Generating: o.generating, Regenerating: []int{}, Imaging: []int{}}
	for key := range o.inflight {
		switch key.kind {
		case busyRegenerate:
			state.Regenerating = append(state.Regenerating, key.number)
		case busyImage:
			state.Imaging = append(state.Imaging, key.number)
		}
	}
	sort.Ints(state.Regenerating)
	sort.Ints(state.Imaging)
	return state
}

// IsBusy reports whether any action runs for slide number
func (o *Orchestrator) IsBusy(number int) bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	_, regen := o.inflight[busyKey{kind: busyRegenerate, number: number}]
	_, image := o.inflight[busyKey{kind: busyImage, number: number}]
	return regen || image
}

func (o *Orchestrator) begin(key busyKey) uint64 {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.seq++
	o.inflight[key] = o.seq
	return o.seq
}

func (o *Orchestrator) isCurrent(key busyKey, token uint64) bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.inflight[key] == token
}

// finish clears the busy flag unless a newer request owns it
func (o *Orchestrator) finish(key busyKey, token uint64) {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.inflight[key] == token {
		delete(o.inflight, key)
	}
}

// mapSlides numbers generator output 1..N and empties the cover body
func mapSlides(raw []entities.Slide) []entities.Slide {
	slides := entities.CloneSlides(raw)
	entities.Renumber(slides)
	if len(slides) > 0 {
		slides[0].Content = ""
	}
	return slides
}

func classify(err error, message string) error {
	var genErr *GenerationError
	if errors.As(err, &genErr) {
		return genErr
	}
	if errors.Is(err, entities.ErrMissingCredentials) {
		return &GenerationError{Kind: KindConfiguration, Message: message, Cause: err}
	}
	return &GenerationError{Kind: KindCollaborator, Message: message, Cause: err}
}
