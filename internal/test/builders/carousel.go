package builders

import (
	"fmt"
	"time"

	"github.com/fredcamaral/carouselkit/internal/domain/entities"
)

// CarouselBuilder helps build SavedCarousel snapshots for testing
type CarouselBuilder struct {
	carousel *entities.SavedCarousel
}

// NewCarouselBuilder creates a new carousel builder with sensible defaults
func NewCarouselBuilder() *CarouselBuilder {
	return &CarouselBuilder{
		carousel: &entities.SavedCarousel{
			ID:        "carousel-1",
			Timestamp: time.Date(2024, 6, 30, 10, 0, 0, 0, time.UTC).UnixMilli(),
			Topic:     "Test Topic",
			Slides:    []entities.Slide{},
			Styles:    make(map[int]entities.SlideStyle),
			Username:  "tester",
			Config: entities.CarouselConfig{
				Topic:      "Test Topic",
				SlideCount: 5,
				Theme:      entities.ThemeDarkModern,
				Tone:       entities.ToneExpert,
			},
		},
	}
}

// WithID sets the snapshot id
func (b *CarouselBuilder) WithID(id string) *CarouselBuilder {
	b.carousel.ID = id
	return b
}

// WithTopic sets the topic in the snapshot and its config
func (b *CarouselBuilder) WithTopic(topic string) *CarouselBuilder {
	b.carousel.Topic = topic
	b.carousel.Config.Topic = topic
	return b
}

// WithTheme sets the carousel theme
func (b *CarouselBuilder) WithTheme(theme entities.Theme) *CarouselBuilder {
	b.carousel.Config.Theme = theme
	return b
}

// WithUsername sets the footer handle
func (b *CarouselBuilder) WithUsername(name string) *CarouselBuilder {
	b.carousel.Username = name
	return b
}

// WithSlide appends a slide, numbering it by position
func (b *CarouselBuilder) WithSlide(slide entities.Slide) *CarouselBuilder {
	slide.Number = len(b.carousel.Slides) + 1
	b.carousel.Slides = append(b.carousel.Slides, slide)
	return b
}

// WithTitles appends one slide per title
func (b *CarouselBuilder) WithTitles(titles ...string) *CarouselBuilder {
	for _, title := range titles {
		b.WithSlide(NewSlideBuilder().WithTitle(title).Build())
	}
	return b
}

// WithSlideCount appends count default slides
func (b *CarouselBuilder) WithSlideCount(count int) *CarouselBuilder {
	for i := 0; i < count; i++ {
		n := len(b.carousel.Slides) + 1
		b.WithSlide(NewSlideBuilder().WithTitle(fmt.Sprintf("Slide %d", n)).Build())
	}
	return b
}

// WithStyle sets the style entry of a slide number
func (b *CarouselBuilder) WithStyle(number int, style entities.SlideStyle) *CarouselBuilder {
	b.carousel.Styles[number] = style
	return b
}

// Build creates the final snapshot. SlideCount follows the slides when it
// stays within the allowed range.
func (b *CarouselBuilder) Build() entities.SavedCarousel {
	out := *b.carousel
	out.Slides = entities.CloneSlides(b.carousel.Slides)
	out.Styles = make(map[int]entities.SlideStyle, len(b.carousel.Styles))
	for k, v := range b.carousel.Styles {
		out.Styles[k] = v.Clone()
	}
	if n := len(out.Slides); n >= entities.MinSlideCount && n <= entities.MaxSlideCount {
		out.Config.SlideCount = n
	}
	return out
}

// SlideBuilder helps build Slide entities for testing
type SlideBuilder struct {
	slide entities.Slide
}

// NewSlideBuilder creates a new slide builder with sensible defaults
func NewSlideBuilder() *SlideBuilder {
	return &SlideBuilder{
		slide: entities.Slide{
			Number:  1,
			Title:   "Test Slide",
			Content: "Test content",
		},
	}
}

// WithNumber sets the slide number
func (b *SlideBuilder) WithNumber(n int) *SlideBuilder {
	b.slide.Number = n
	return b
}

// WithTitle sets the slide title
func (b *SlideBuilder) WithTitle(title string) *SlideBuilder {
	b.slide.Title = title
	return b
}

// WithContent sets the slide body
func (b *SlideBuilder) WithContent(content string) *SlideBuilder {
	b.slide.Content = content
	return b
}

// WithHighlight sets the accent phrase
func (b *SlideBuilder) WithHighlight(highlight string) *SlideBuilder {
	b.slide.Highlight = highlight
	return b
}

// WithCTA sets the call to action
func (b *SlideBuilder) WithCTA(cta string) *SlideBuilder {
	b.slide.CTA = cta
	return b
}

// Build creates the final Slide entity
func (b *SlideBuilder) Build() entities.Slide {
	return b.slide
}

// StyleBuilder helps build SlideStyle overrides for testing
type StyleBuilder struct {
	style entities.SlideStyle
}

// NewStyleBuilder starts from the medium, solid default
func NewStyleBuilder() *StyleBuilder {
	return &StyleBuilder{
		style: entities.SlideStyle{
			FontSize:       entities.FontSizeMedium,
			TextAlign:      entities.AlignCenter,
			BackgroundType: entities.BackgroundSolid,
		},
	}
}

// WithTitleColor sets the title color
func (b *StyleBuilder) WithTitleColor(color string) *StyleBuilder {
	b.style.TitleColor = color
	return b
}

// WithFontSize sets the size preset
func (b *StyleBuilder) WithFontSize(size entities.FontSize) *StyleBuilder {
	b.style.FontSize = size
	return b
}

// WithBackground sets the background value and its declared type
func (b *StyleBuilder) WithBackground(value string) *StyleBuilder {
	b.style.BackgroundType = entities.ClassifyBackground(value)
	b.style.BackgroundValue = value
	return b
}

// WithOverlay sets an explicit overlay opacity
func (b *StyleBuilder) WithOverlay(opacity float64) *StyleBuilder {
	b.style.OverlayOpacity = &opacity
	return b
}

// Build creates the final style
func (b *StyleBuilder) Build() entities.SlideStyle {
	return b.style.Clone()
}

// Common carousels for testing

// TwoSlideCarousel creates the A/B carousel used by structural edit tests
func TwoSlideCarousel() entities.SavedCarousel {
	return NewCarouselBuilder().
		WithTitles("A", "B").
		WithStyle(1, NewStyleBuilder().WithTitleColor("#ff0000").Build()).
		WithStyle(2, NewStyleBuilder().WithTitleColor("#00ff00").Build()).
		Build()
}

// ThreeSlideCarousel creates a carousel with distinguishable slides
func ThreeSlideCarousel() entities.SavedCarousel {
	return NewCarouselBuilder().
		WithTopic("5 tips for sleep").
		WithSlide(NewSlideBuilder().WithTitle("Cover").WithContent("").Build()).
		WithSlide(NewSlideBuilder().WithTitle("Middle").WithContent("Save *30%* of your time").Build()).
		WithSlide(NewSlideBuilder().WithTitle("End").WithCTA("Follow for more").Build()).
		Build()
}
