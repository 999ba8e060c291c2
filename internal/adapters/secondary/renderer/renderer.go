package renderer

import (
	"github.com/fredcamaral/carouselkit/internal/domain/entities"
	"github.com/fredcamaral/carouselkit/internal/domain/services"
)

// Title glow is drawn in two passes, a tight halo then a wide bloom
var glowRadii = []float64{8, 20}

const overlayColor = "#000000"

// Input is everything a variant needs to compose one slide
type Input struct {
	Slide *entities.Slide
	Style entities.ResolvedStyle
	Meta  entities.CarouselMeta
	Spec  entities.ThemeSpec
}

// Variant is one fixed slide layout
type Variant interface {
	Kind() entities.TemplateKind
	Compose(in Input) *entities.VisualTree
}

// Renderer composes visual trees by dispatching on the theme's template
type Renderer struct {
	variants map[entities.TemplateKind]Variant
	fallback Variant
}

// NewRenderer creates a renderer with the built-in template variants
func NewRenderer() *Renderer {
	r := &Renderer{variants: make(map[entities.TemplateKind]Variant)}
	for _, v := range []Variant{
		darkModern{},
		retroPaper{},
		boldNeon{},
		minimal{},
		aurora{},
	} {
		r.variants[v.Kind()] = v
	}
	r.fallback = r.variants[entities.TemplateDarkModern]
	return r
}

// Variants returns the registered template kinds
func (r *Renderer) Variants() []entities.TemplateKind {
	out := make([]entities.TemplateKind, 0, len(r.variants))
	for _, k := range []entities.TemplateKind{
		entities.TemplateDarkModern,
		entities.TemplateRetroPaper,
		entities.TemplateBoldNeon,
		entities.TemplateMinimal,
		entities.TemplateAurora,
	} {
		if _, ok := r.variants[k]; ok {
			out = append(out, k)
		}
	}
	return out
}

// Render composes the visual tree of one slide. A nil slide yields a
// neutral placeholder instead of an error, since live editing can briefly
// point at an index that no longer exists.
func (r *Renderer) Render(slide *entities.Slide, style entities.ResolvedStyle, meta entities.CarouselMeta) *entities.VisualTree {
	spec := entities.LookupTheme(style.Theme)
	if slide == nil {
		return placeholder(spec)
	}

	v, ok := r.variants[spec.Template]
	if !ok {
		v = r.fallback
	}

	tree := v.Compose(Input{Slide: slide, Style: style, Meta: meta, Spec: spec})
	tree.Template = v.Kind()
	tree.Number = slide.Number
	return tree
}

func placeholder(spec entities.ThemeSpec) *entities.VisualTree {
	return &entities.VisualTree{
		Template:    spec.Template,
		Placeholder: true,
		Layout:      entities.Layout{Padding: 32, Gap: 16, VerticalAlign: entities.VAlignCenter},
		Background: entities.BackgroundLayer{
			Background: entities.Background{
				Type:  entities.ClassifyBackground(spec.Background),
				Value: spec.Background,
			},
		},
		Overlay: entities.OverlayLayer{Color: overlayColor},
	}
}

// Slot builders shared by the variants

func titleSlot(in Input, uppercase bool, lineHeight float64) entities.TextSlot {
	slot := entities.TextSlot{
		Markup:     services.ApplyHighlights(in.Slide.Title, in.Style.Theme),
		FontSize:   in.Style.TitleFontSize,
		Color:      in.Style.TitleColor,
		Font:       in.Style.TitleFont,
		Bold:       true,
		Uppercase:  uppercase,
		Align:      in.Style.TextAlign,
		LineHeight: lineHeight,
	}
	if in.Style.TitleGlow {
		slot.Glow = glow(in.Style.GlowColor)
	}
	return slot
}

func bodySlot(in Input, lineHeight float64) entities.TextSlot {
	return entities.TextSlot{
		Markup:     services.ApplyHighlights(in.Slide.Content, in.Style.Theme),
		FontSize:   in.Style.BodyFontSize,
		Color:      in.Style.TextColor,
		Font:       in.Style.BodyFont,
		Align:      in.Style.TextAlign,
		LineHeight: lineHeight,
	}
}

func highlightSlot(in Input, sizeBoost int) entities.TextSlot {
	return entities.TextSlot{
		Markup:     services.ApplyHighlights(in.Slide.Highlight, in.Style.Theme),
		FontSize:   in.Style.BodyFontSize + sizeBoost,
		Color:      in.Spec.Accents.Primary,
		Font:       in.Style.BodyFont,
		Bold:       true,
		Align:      in.Style.TextAlign,
		LineHeight: 1.3,
	}
}

func glow(color string) *entities.Glow {
	radii := make([]float64, len(glowRadii))
	copy(radii, glowRadii)
	return &entities.Glow{Color: color, Radii: radii}
}

// backgroundLayer adds the template texture only when the slide keeps the
// theme default background
func backgroundLayer(in Input, texture entities.TextureKind) entities.BackgroundLayer {
	layer := entities.BackgroundLayer{Background: in.Style.Background}
	if !in.Style.Background.Custom {
		layer.Texture = texture
	}
	return layer
}

func overlayLayer(in Input) entities.OverlayLayer {
	return entities.OverlayLayer{Color: overlayColor, Opacity: in.Style.OverlayOpacity}
}

func footer(in Input, kind entities.FooterKind, color string) entities.FooterSlot {
	f := entities.FooterSlot{
		Kind:    kind,
		Handle:  in.Meta.Handle(),
		Current: in.Slide.Number,
		Total:   in.Meta.TotalSlides,
		Color:   color,
		Accent:  in.Spec.Accents.Primary,
	}
	if kind == entities.FooterHandle && f.Handle == "" {
		f.Kind = entities.FooterCounter
	}
	if in.Meta.IsLast(in.Slide) {
		f.CTA = in.Slide.CTA
	}
	return f
}
