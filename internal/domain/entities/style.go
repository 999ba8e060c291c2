package entities

import (
	"fmt"
	"strings"
)

// FontSize is the coarse text size preset of a slide
type FontSize string

const (
	FontSizeSmall  FontSize = "small"
	FontSizeMedium FontSize = "medium"
	FontSizeLarge  FontSize = "large"
	FontSizeExtra  FontSize = "extra"
)

// Valid reports whether the size is one of the known presets
func (f FontSize) Valid() bool {
	switch f {
	case FontSizeSmall, FontSizeMedium, FontSizeLarge, FontSizeExtra:
		return true
	}
	return false
}

// TextAlign is the horizontal alignment of slide text
type TextAlign string

const (
	AlignLeft   TextAlign = "left"
	AlignCenter TextAlign = "center"
	AlignRight  TextAlign = "right"
)

// Valid reports whether the alignment is known
func (a TextAlign) Valid() bool {
	switch a {
	case AlignLeft, AlignCenter, AlignRight:
		return true
	}
	return false
}

// BackgroundType tells how a background value is interpreted
type BackgroundType string

const (
	BackgroundSolid    BackgroundType = "solid"
	BackgroundGradient BackgroundType = "gradient"
	BackgroundImage    BackgroundType = "image"
)

// ClassifyBackground infers the background kind from the shape of its value.
// Image URIs start with http or data:image, gradients contain "gradient(",
// anything else is a color.
func ClassifyBackground(value string) BackgroundType {
	v := strings.TrimSpace(value)
	lower := strings.ToLower(v)
	switch {
	case strings.HasPrefix(lower, "http") || strings.HasPrefix(lower, "data:image"):
		return BackgroundImage
	case strings.Contains(lower, "gradient("):
		return BackgroundGradient
	default:
		return BackgroundSolid
	}
}

// SlideStyle is the per-slide visual override, keyed by slide number.
// Empty strings mean "inherit the theme default". Nil pointers are unset.
type SlideStyle struct {
	FontSize        FontSize       `json:"fontSize"`
	TitleFontSize   *int           `json:"titleFontSize,omitempty"`
	TextColor       string         `json:"textColor"`
	TitleColor      string         `json:"titleColor"`
	TitleGlow       bool           `json:"titleGlow"`
	TextAlign       TextAlign      `json:"textAlign"`
	FontFamily      string         `json:"fontFamily,omitempty"`
	TitleFontFamily string         `json:"titleFontFamily,omitempty"`
	BodyFontFamily  string         `json:"bodyFontFamily,omitempty"`
	BackgroundType  BackgroundType `json:"backgroundType"`
	BackgroundValue string         `json:"backgroundValue"`
	OverlayOpacity  *float64       `json:"overlayOpacity,omitempty"`
}

// Validate checks enum and range constraints of the style
func (s SlideStyle) Validate() error {
	if s.FontSize != "" && !s.FontSize.Valid() {
		return fmt.Errorf("invalid font size: %s", s.FontSize)
	}
	if s.TextAlign != "" && !s.TextAlign.Valid() {
		return fmt.Errorf("invalid text align: %s", s.TextAlign)
	}
	if s.TitleFontSize != nil && *s.TitleFontSize <= 0 {
		return fmt.Errorf("title font size must be positive, got %d", *s.TitleFontSize)
	}
	if s.OverlayOpacity != nil && (*s.OverlayOpacity < 0 || *s.OverlayOpacity > 1) {
		return fmt.Errorf("overlay opacity must be within [0,1], got %v", *s.OverlayOpacity)
	}
	switch s.BackgroundType {
	case "", BackgroundSolid, BackgroundGradient, BackgroundImage:
	default:
		return fmt.Errorf("invalid background type: %s", s.BackgroundType)
	}
	return nil
}

// Clone returns a deep copy of the style
func (s SlideStyle) Clone() SlideStyle {
	out := s
	if s.TitleFontSize != nil {
		v := *s.TitleFontSize
		out.TitleFontSize = &v
	}
	if s.OverlayOpacity != nil {
		v := *s.OverlayOpacity
		out.OverlayOpacity = &v
	}
	return out
}

// Apply shallow-merges a patch into a copy of the style. Fields absent
// from the patch keep their current value.
func (s SlideStyle) Apply(p StylePatch) SlideStyle {
	out := s.Clone()
	if p.FontSize != nil {
		out.FontSize = *p.FontSize
	}
	if p.TitleFontSize != nil {
		v := *p.TitleFontSize
		out.TitleFontSize = &v
	}
	if p.TextColor != nil {
		out.TextColor = *p.TextColor
	}
	if p.TitleColor != nil {
		out.TitleColor = *p.TitleColor
	}
	if p.TitleGlow != nil {
		out.TitleGlow = *p.TitleGlow
	}
	if p.TextAlign != nil {
		out.TextAlign = *p.TextAlign
	}
	if p.FontFamily != nil {
		out.FontFamily = *p.FontFamily
	}
	if p.TitleFontFamily != nil {
		out.TitleFontFamily = *p.TitleFontFamily
	}
	if p.BodyFontFamily != nil {
		out.BodyFontFamily = *p.BodyFontFamily
	}
	if p.BackgroundType != nil {
		out.BackgroundType = *p.BackgroundType
	}
	if p.BackgroundValue != nil {
		out.BackgroundValue = *p.BackgroundValue
	}
	if p.OverlayOpacity != nil {
		v := *p.OverlayOpacity
		out.OverlayOpacity = &v
	}
	return out
}

// StylePatch is a partial SlideStyle. Nil fields are left untouched by a merge,
// so a patch can never reset a property to unset; clearing takes an explicit
// empty string or false.
type StylePatch struct {
	FontSize        *FontSize       `json:"fontSize,omitempty"`
	TitleFontSize   *int            `json:"titleFontSize,omitempty"`
	TextColor       *string         `json:"textColor,omitempty"`
	TitleColor      *string         `json:"titleColor,omitempty"`
	TitleGlow       *bool           `json:"titleGlow,omitempty"`
	TextAlign       *TextAlign      `json:"textAlign,omitempty"`
	FontFamily      *string         `json:"fontFamily,omitempty"`
	TitleFontFamily *string         `json:"titleFontFamily,omitempty"`
	BodyFontFamily  *string         `json:"bodyFontFamily,omitempty"`
	BackgroundType  *BackgroundType `json:"backgroundType,omitempty"`
	BackgroundValue *string         `json:"backgroundValue,omitempty"`
	OverlayOpacity  *float64        `json:"overlayOpacity,omitempty"`
}

// Validate checks the values carried by the patch
func (p StylePatch) Validate() error {
	return SlideStyle{}.Apply(p).Validate()
}

// IsEmpty reports whether the patch carries no field
func (p StylePatch) IsEmpty() bool {
	return p == StylePatch{}
}

// Background is a fully resolved background layer
type Background struct {
	Type  BackgroundType `json:"type"`
	Value string         `json:"value"`

	// Custom is false when the theme default is in use
	Custom bool `json:"custom"`
}

// ResolvedStyle is the complete visual description of one slide
type ResolvedStyle struct {
	Theme          Theme      `json:"theme"`
	TitleFontSize  int        `json:"titleFontSize"`
	BodyFontSize   int        `json:"bodyFontSize"`
	TextColor      string     `json:"textColor"`
	TitleColor     string     `json:"titleColor"`
	TitleGlow      bool       `json:"titleGlow"`
	GlowColor      string     `json:"glowColor"`
	TextAlign      TextAlign  `json:"textAlign"`
	TitleFont      string     `json:"titleFont"`
	BodyFont       string     `json:"bodyFont"`
	Background     Background `json:"background"`
	OverlayOpacity float64    `json:"overlayOpacity"`
}
