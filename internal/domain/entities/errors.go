package entities

import "errors"

var (
	// ErrSlideIndexOutOfRange is returned when an index does not address a slide
	ErrSlideIndexOutOfRange = errors.New("slide index out of range")

	// ErrSlideNotFound is returned when no slide carries the requested number
	ErrSlideNotFound = errors.New("slide not found")

	// ErrMinimumSlides is returned when a delete would leave the carousel empty
	ErrMinimumSlides = errors.New("carousel must keep at least one slide")

	// ErrInvalidField is returned for unknown slide fields
	ErrInvalidField = errors.New("invalid slide field")

	// ErrEmptyTopic is returned when generation is requested without a topic
	ErrEmptyTopic = errors.New("topic cannot be empty")

	// ErrMissingCredentials is returned when the generation backend has no credentials
	ErrMissingCredentials = errors.New("generation backend credentials are not configured")

	// ErrReadOnly is returned when editing is attempted in a read-only context
	ErrReadOnly = errors.New("slide is read-only")

	// ErrStageHidden is returned when a capture is attempted on a hidden stage
	ErrStageHidden = errors.New("render stage is not visible")

	// ErrCarouselNotFound is returned when a saved carousel id is unknown
	ErrCarouselNotFound = errors.New("saved carousel not found")
)
