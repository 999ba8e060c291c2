package services

import (
	"strings"

	"github.com/fredcamaral/carouselkit/internal/domain/entities"
)

// ResolveStyle merges a slide's style override with the defaults of theme.
// Every property takes the override value when it is set and non-empty, and
// the theme default otherwise. A nil override yields the pure theme style.
func ResolveStyle(theme entities.Theme, slideNumber int, override *entities.SlideStyle) entities.ResolvedStyle {
	spec := entities.LookupTheme(theme)

	var o entities.SlideStyle
	if override != nil {
		o = *override
	}

	resolved := entities.ResolvedStyle{
		Theme:         spec.Name,
		TitleFontSize: titleSize(spec, slideNumber, o),
		BodyFontSize:  spec.BodySizes.For(o.FontSize),
		TextColor:     firstNonEmpty(o.TextColor, spec.TextColor),
		TitleColor:    firstNonEmpty(o.TitleColor, spec.TitleColor),
		TitleGlow:     o.TitleGlow,
		GlowColor:     firstNonEmpty(o.TitleColor, spec.GlowColor),
		TextAlign:     spec.TextAlign,
		TitleFont:     firstNonEmpty(o.TitleFontFamily, o.FontFamily, spec.TitleFont),
		BodyFont:      firstNonEmpty(o.BodyFontFamily, o.FontFamily, spec.BodyFont),
		Background:    resolveBackground(spec, o),
	}

	if o.TextAlign.Valid() {
		resolved.TextAlign = o.TextAlign
	}

	switch {
	case o.OverlayOpacity != nil:
		resolved.OverlayOpacity = clamp01(*o.OverlayOpacity)
	case resolved.Background.Type == entities.BackgroundImage:
		resolved.OverlayOpacity = spec.ImageOverlay
	default:
		resolved.OverlayOpacity = spec.FlatOverlay
	}

	return resolved
}

func titleSize(spec entities.ThemeSpec, slideNumber int, o entities.SlideStyle) int {
	if o.TitleFontSize != nil && *o.TitleFontSize > 0 {
		return *o.TitleFontSize
	}
	size := spec.TitleSizes.For(o.FontSize)
	if slideNumber == 1 {
		size += spec.CoverBoost
	}
	return size
}

// resolveBackground classifies the value by its shape rather than trusting
// the declared type, so a stale type never mislabels a value.
func resolveBackground(spec entities.ThemeSpec, o entities.SlideStyle) entities.Background {
	if value := strings.TrimSpace(o.BackgroundValue); value != "" {
		return entities.Background{
			Type:   entities.ClassifyBackground(value),
			Value:  value,
			Custom: true,
		}
	}
	return entities.Background{
		Type:  entities.ClassifyBackground(spec.Background),
		Value: spec.Background,
	}
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
