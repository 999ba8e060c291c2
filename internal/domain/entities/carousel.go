package entities

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

const (
	// MinSlideCount is the smallest carousel that can be generated
	MinSlideCount = 3

	// MaxSlideCount is the largest carousel that can be generated
	MaxSlideCount = 10
)

// Tone is the stylistic register passed to the content generator
type Tone string

const (
	ToneExpert      Tone = "expert"
	ToneEmpathetic  Tone = "empathetic"
	ToneViral       Tone = "viral"
	ToneProvocative Tone = "provocative"
	ToneFunny       Tone = "funny"
)

// ToneStop is one position on the tone slider
type ToneStop struct {
	Value       int    `json:"value"`
	Tone        Tone   `json:"tone"`
	Label       string `json:"label"`
	Description string `json:"description"`
}

// ToneScale lists the slider stops from most formal to most playful
var ToneScale = []ToneStop{
	{Value: 0, Tone: ToneExpert, Label: "Expert", Description: "Strict and professional"},
	{Value: 25, Tone: ToneEmpathetic, Label: "Caring", Description: "Soft and supportive"},
	{Value: 50, Tone: ToneViral, Label: "Viral", Description: "Short and punchy"},
	{Value: 75, Tone: ToneProvocative, Label: "Bold", Description: "Challenging, uses triggers"},
	{Value: 100, Tone: ToneFunny, Label: "Funny", Description: "Irony and jokes"},
}

// ToneFromSlider returns the tone whose stop is closest to value
func ToneFromSlider(value int) Tone {
	best := ToneScale[0]
	for _, stop := range ToneScale[1:] {
		if abs(stop.Value-value) < abs(best.Value-value) {
			best = stop
		}
	}
	return best.Tone
}

// Valid reports whether the tone is known
func (t Tone) Valid() bool {
	for _, stop := range ToneScale {
		if stop.Tone == t {
			return true
		}
	}
	return false
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}

// CarouselConfig holds the carousel-level generation parameters
type CarouselConfig struct {
	Topic      string `json:"topic"`
	SlideCount int    `json:"slideCount"`
	Theme      Theme  `json:"theme"`
	Tone       Tone   `json:"tone"`
}

// Validate checks ranges and enums. An empty topic is allowed here and
// rejected only when generation starts.
func (c CarouselConfig) Validate() error {
	if c.SlideCount < MinSlideCount || c.SlideCount > MaxSlideCount {
		return fmt.Errorf("slide count must be between %d and %d, got %d", MinSlideCount, MaxSlideCount, c.SlideCount)
	}
	if !c.Theme.Valid() {
		return fmt.Errorf("unknown theme: %s", c.Theme)
	}
	if !c.Tone.Valid() {
		return fmt.Errorf("unknown tone: %s", c.Tone)
	}
	return nil
}

// DefaultCarouselConfig returns the initial editor configuration
func DefaultCarouselConfig() CarouselConfig {
	return CarouselConfig{
		SlideCount: 5,
		Theme:      DefaultTheme,
		Tone:       ToneViral,
	}
}

// CarouselMeta is the carousel-wide context a template needs to render one slide
type CarouselMeta struct {
	Topic       string `json:"topic"`
	Username    string `json:"username"`
	TotalSlides int    `json:"totalSlides"`
}

// IsLast reports whether the slide is the final one of the carousel
func (m CarouselMeta) IsLast(slide *Slide) bool {
	return slide != nil && slide.Number == m.TotalSlides
}

// Handle returns the username with a leading @, or empty
func (m CarouselMeta) Handle() string {
	name := strings.TrimSpace(m.Username)
	if name == "" {
		return ""
	}
	return "@" + strings.TrimPrefix(name, "@")
}

// SavedCarousel is a library snapshot sufficient to restore the editor
type SavedCarousel struct {
	ID        string             `json:"id"`
	Timestamp int64              `json:"timestamp"`
	Topic     string             `json:"topic"`
	Slides    []Slide            `json:"slides"`
	Styles    map[int]SlideStyle `json:"styles"`
	Username  string             `json:"username"`
	Config    CarouselConfig     `json:"config"`
}

// Validate ensures the snapshot can be restored
func (s *SavedCarousel) Validate() error {
	if s.ID == "" {
		return errors.New("saved carousel id is required")
	}
	if len(s.Slides) == 0 {
		return errors.New("saved carousel has no slides")
	}
	for i := range s.Slides {
		if s.Slides[i].Number != i+1 {
			return fmt.Errorf("slide at position %d is numbered %d", i+1, s.Slides[i].Number)
		}
	}
	return nil
}

// SavedAt returns the snapshot time
func (s *SavedCarousel) SavedAt() time.Time {
	return time.UnixMilli(s.Timestamp)
}

// FontOption is an entry of the font picker
type FontOption struct {
	Name   string `json:"name"`
	Family string `json:"family"`
	Label  string `json:"label"`
}

// Palette is the preset catalog offered by style editors
type Palette struct {
	Colors    []string     `json:"colors"`
	Gradients []string     `json:"gradients"`
	Fonts     []FontOption `json:"fonts"`
}

// DefaultPalette returns the preset colors, gradients and fonts
func DefaultPalette() Palette {
	return Palette{
		Colors: []string{
			"#FFFFFF", "#000000", "#F87171", "#FBBF24", "#34D399",
			"#60A5FA", "#818CF8", "#A78BFA", "#F472B6", "#FB7185",
		},
		Gradients: []string{
			"linear-gradient(135deg, #667eea 0%, #764ba2 100%)",
			"linear-gradient(135deg, #f093fb 0%, #f5576c 100%)",
			"linear-gradient(135deg, #4facfe 0%, #00f2fe 100%)",
			"linear-gradient(135deg, #43e97b 0%, #38f9d7 100%)",
			"linear-gradient(135deg, #fa709a 0%, #fee140 100%)",
			"linear-gradient(to top, #cfd9df 0%, #e2ebf0 100%)",
			"linear-gradient(120deg, #84fab0 0%, #8fd3f4 100%)",
			"linear-gradient(to right, #434343 0%, black 100%)",
			"linear-gradient(to top, #a18cd1 0%, #fbc2eb 100%)",
			"linear-gradient(to top, #30cfd0 0%, #330867 100%)",
		},
		Fonts: []FontOption{
			{Name: "Inter", Family: "'Inter', sans-serif", Label: "Modern Sans"},
			{Name: "Montserrat", Family: "'Montserrat', sans-serif", Label: "Geometric"},
			{Name: "Bebas Neue", Family: "'Bebas Neue', sans-serif", Label: "Display Bold"},
			{Name: "Playfair Display", Family: "'Playfair Display', serif", Label: "Elegant Serif"},
			{Name: "Merriweather", Family: "'Merriweather', serif", Label: "Readable Serif"},
			{Name: "Roboto Slab", Family: "'Roboto Slab', serif", Label: "Strong Slab"},
		},
	}
}
