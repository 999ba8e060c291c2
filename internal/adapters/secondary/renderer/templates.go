package renderer

import (
	"github.com/fredcamaral/carouselkit/internal/domain/entities"
)

// darkModern centers the text on a grid textured charcoal card with the
// author handle in the footer
type darkModern struct{}

func (darkModern) Kind() entities.TemplateKind { return entities.TemplateDarkModern }

func (darkModern) Compose(in Input) *entities.VisualTree {
	return &entities.VisualTree{
		Layout:     entities.Layout{Padding: 32, Gap: 16, VerticalAlign: entities.VAlignCenter},
		Background: backgroundLayer(in, entities.TextureGrid),
		Overlay:    overlayLayer(in),
		Title:      titleSlot(in, false, 1.2),
		Highlight:  highlightSlot(in, 2),
		Body:       bodySlot(in, 1.5),
		Footer:     footer(in, entities.FooterHandle, in.Style.TextColor),
	}
}

// retroPaper is a top aligned editorial layout on paper grain with a page
// counter
type retroPaper struct{}

func (retroPaper) Kind() entities.TemplateKind { return entities.TemplateRetroPaper }

func (retroPaper) Compose(in Input) *entities.VisualTree {
	valign := entities.VAlignTop
	if in.Slide.IsCover() {
		valign = entities.VAlignCenter
	}
	return &entities.VisualTree{
		Layout:     entities.Layout{Padding: 36, Gap: 14, VerticalAlign: valign},
		Background: backgroundLayer(in, entities.TexturePaper),
		Overlay:    overlayLayer(in),
		Title:      titleSlot(in, false, 1.15),
		Highlight:  highlightSlot(in, 1),
		Body:       bodySlot(in, 1.6),
		Footer:     footer(in, entities.FooterCounter, in.Style.TextColor),
	}
}

// boldNeon shouts: uppercase glowing titles over scanlines and a progress bar
type boldNeon struct{}

func (boldNeon) Kind() entities.TemplateKind { return entities.TemplateBoldNeon }

func (boldNeon) Compose(in Input) *entities.VisualTree {
	title := titleSlot(in, true, 1.05)
	if title.Glow == nil {
		title.Glow = glow(in.Spec.GlowColor)
	}
	return &entities.VisualTree{
		Layout:     entities.Layout{Padding: 28, Gap: 18, VerticalAlign: entities.VAlignCenter},
		Background: backgroundLayer(in, entities.TextureScanlines),
		Overlay:    overlayLayer(in),
		Title:      title,
		Highlight:  highlightSlot(in, 4),
		Body:       bodySlot(in, 1.45),
		Footer:     footer(in, entities.FooterProgress, in.Style.TextColor),
	}
}

// minimal is shared by the light and dark minimal themes. Covers sit at
// the bottom of the card, the rest start at the top.
type minimal struct{}

func (minimal) Kind() entities.TemplateKind { return entities.TemplateMinimal }

func (minimal) Compose(in Input) *entities.VisualTree {
	valign := entities.VAlignTop
	if in.Slide.IsCover() {
		valign = entities.VAlignBottom
	}
	return &entities.VisualTree{
		Layout:     entities.Layout{Padding: 40, Gap: 12, VerticalAlign: valign},
		Background: backgroundLayer(in, entities.TextureNone),
		Overlay:    overlayLayer(in),
		Title:      titleSlot(in, false, 1.25),
		Highlight:  highlightSlot(in, 0),
		Body:       bodySlot(in, 1.6),
		Footer:     footer(in, entities.FooterDots, in.Style.TextColor),
	}
}

// aurora floats centered text over a soft glow on the green gradient
type aurora struct{}

func (aurora) Kind() entities.TemplateKind { return entities.TemplateAurora }

func (aurora) Compose(in Input) *entities.VisualTree {
	return &entities.VisualTree{
		Layout:     entities.Layout{Padding: 32, Gap: 16, VerticalAlign: entities.VAlignCenter},
		Background: backgroundLayer(in, entities.TextureGlow),
		Overlay:    overlayLayer(in),
		Title:      titleSlot(in, false, 1.2),
		Highlight:  highlightSlot(in, 2),
		Body:       bodySlot(in, 1.5),
		Footer:     footer(in, entities.FooterHandle, in.Spec.Accents.Success),
	}
}
