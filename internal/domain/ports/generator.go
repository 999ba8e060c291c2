package ports

import (
	"context"

	"github.com/fredcamaral/carouselkit/internal/domain/entities"
)

// GenerateRequest carries the parameters of a full carousel generation
type GenerateRequest struct {
	Topic          string
	Count          int
	Tone           entities.Tone
	CTAInstruction string
}

// RegenerateRequest carries the context needed to rewrite one slide
type RegenerateRequest struct {
	Topic       string
	Slide       entities.Slide
	TotalSlides int
	Tone        entities.Tone
}

// ContentGenerator is the external text and image generation collaborator.
// Errors carry a human readable message that is shown to the user verbatim.
type ContentGenerator interface {
	// Generate returns Count slides numbered from 1
	Generate(ctx context.Context, req GenerateRequest) ([]entities.Slide, error)

	// Regenerate returns a replacement for one slide, preserving its number
	Regenerate(ctx context.Context, req RegenerateRequest) (entities.Slide, error)

	// GenerateBackgroundImage returns a data URI or remote URL
	GenerateBackgroundImage(ctx context.Context, topic string, slide entities.Slide) (string, error)
}
