package renderer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fredcamaral/carouselkit/internal/domain/entities"
	"github.com/fredcamaral/carouselkit/internal/domain/services"
	"github.com/fredcamaral/carouselkit/internal/test/builders"
)

func renderSlide(t *testing.T, theme entities.Theme, slide entities.Slide, override *entities.SlideStyle, meta entities.CarouselMeta) *entities.VisualTree {
	t.Helper()
	r := NewRenderer()
	tree := r.Render(&slide, services.ResolveStyle(theme, slide.Number, override), meta)
	require.NotNil(t, tree)
	return tree
}

func TestRenderer_DispatchesOnTemplate(t *testing.T) {
	tests := []struct {
		theme    entities.Theme
		expected entities.TemplateKind
		texture  entities.TextureKind
		footer   entities.FooterKind
	}{
		{entities.ThemeDarkModern, entities.TemplateDarkModern, entities.TextureGrid, entities.FooterHandle},
		{entities.ThemeRetroPaper, entities.TemplateRetroPaper, entities.TexturePaper, entities.FooterCounter},
		{entities.ThemeBoldNeon, entities.TemplateBoldNeon, entities.TextureScanlines, entities.FooterProgress},
		{entities.ThemeMinimalLight, entities.TemplateMinimal, entities.TextureNone, entities.FooterDots},
		{entities.ThemeMinimalDark, entities.TemplateMinimal, entities.TextureNone, entities.FooterDots},
		{entities.ThemeAuroraGreen, entities.TemplateAurora, entities.TextureGlow, entities.FooterHandle},
	}

	meta := entities.CarouselMeta{Topic: "t", Username: "tester", TotalSlides: 5}
	for _, tt := range tests {
		t.Run(string(tt.theme), func(t *testing.T) {
			slide := builders.NewSlideBuilder().WithNumber(2).Build()
			tree := renderSlide(t, tt.theme, slide, nil, meta)

			assert.Equal(t, tt.expected, tree.Template)
			assert.Equal(t, 2, tree.Number)
			assert.False(t, tree.Placeholder)
			assert.Equal(t, tt.texture, tree.Background.Texture)
			assert.Equal(t, tt.footer, tree.Footer.Kind)
			assert.Equal(t, "@tester", tree.Footer.Handle)
			assert.Equal(t, 2, tree.Footer.Current)
			assert.Equal(t, 5, tree.Footer.Total)
			assert.Equal(t, overlayColor, tree.Overlay.Color)
		})
	}
}

func TestRenderer_Placeholder(t *testing.T) {
	r := NewRenderer()

	tree := r.Render(nil, services.ResolveStyle(entities.ThemeRetroPaper, 1, nil), entities.CarouselMeta{TotalSlides: 3})

	require.NotNil(t, tree)
	assert.True(t, tree.Placeholder)
	assert.Equal(t, entities.TemplateRetroPaper, tree.Template)
	assert.True(t, tree.Title.Empty())
	assert.True(t, tree.Body.Empty())
	assert.Equal(t, entities.FooterNone, tree.Footer.Kind)
	assert.Equal(t, "#f4ecd8", tree.Background.Value)
}

func TestRenderer_Slots(t *testing.T) {
	meta := entities.CarouselMeta{Username: "tester", TotalSlides: 3}

	t.Run("title and body use resolved style", func(t *testing.T) {
		slide := builders.NewSlideBuilder().
			WithNumber(2).
			WithTitle("Sleep *better*").
			WithContent("Go to bed at {g}10pm{/g}").
			Build()
		override := builders.NewStyleBuilder().WithTitleColor("#ff0000").WithFontSize(entities.FontSizeLarge).Build()

		tree := renderSlide(t, entities.ThemeDarkModern, slide, &override, meta)

		assert.Contains(t, tree.Title.Markup, `class="hl-primary"`)
		assert.Contains(t, tree.Title.Markup, "better</span>")
		assert.Equal(t, "#ff0000", tree.Title.Color)
		assert.Equal(t, 30, tree.Title.FontSize)
		assert.True(t, tree.Title.Bold)
		assert.Nil(t, tree.Title.Glow)

		assert.Contains(t, tree.Body.Markup, `class="hl-success"`)
		assert.Equal(t, 17, tree.Body.FontSize)
		assert.Equal(t, "#d4d4d8", tree.Body.Color)
	})

	t.Run("title glow uses two radii", func(t *testing.T) {
		slide := builders.NewSlideBuilder().WithNumber(2).Build()
		override := builders.NewStyleBuilder().Build()
		override.TitleGlow = true

		tree := renderSlide(t, entities.ThemeDarkModern, slide, &override, meta)

		require.NotNil(t, tree.Title.Glow)
		assert.Equal(t, []float64{8, 20}, tree.Title.Glow.Radii)
		assert.Equal(t, "rgba(255,255,255,0.6)", tree.Title.Glow.Color)
	})

	t.Run("neon always glows and shouts", func(t *testing.T) {
		slide := builders.NewSlideBuilder().WithNumber(2).WithContent("Save 30% today").Build()

		tree := renderSlide(t, entities.ThemeBoldNeon, slide, nil, meta)

		require.NotNil(t, tree.Title.Glow)
		assert.Equal(t, "#22d3ee", tree.Title.Glow.Color)
		assert.True(t, tree.Title.Uppercase)
		assert.Contains(t, tree.Body.Markup, "30%</span>")
	})

	t.Run("highlight slot uses the primary accent", func(t *testing.T) {
		slide := builders.NewSlideBuilder().WithNumber(2).WithHighlight("Remember this").Build()

		tree := renderSlide(t, entities.ThemeMinimalLight, slide, nil, meta)

		assert.Equal(t, "Remember this", tree.Highlight.Markup)
		assert.Equal(t, "#2563eb", tree.Highlight.Color)
		assert.True(t, tree.Highlight.Bold)
	})

	t.Run("cover has empty body", func(t *testing.T) {
		slide := builders.NewSlideBuilder().WithNumber(1).WithContent("").Build()

		tree := renderSlide(t, entities.ThemeMinimalDark, slide, nil, meta)

		assert.True(t, tree.Body.Empty())
		assert.Equal(t, entities.VAlignBottom, tree.Layout.VerticalAlign)
		assert.Equal(t, 30, tree.Title.FontSize)
	})
}

func TestRenderer_Background(t *testing.T) {
	meta := entities.CarouselMeta{TotalSlides: 3}
	slide := builders.NewSlideBuilder().WithNumber(2).Build()

	t.Run("theme default keeps texture", func(t *testing.T) {
		tree := renderSlide(t, entities.ThemeAuroraGreen, slide, nil, meta)

		assert.Equal(t, entities.BackgroundGradient, tree.Background.Type)
		assert.Equal(t, entities.TextureGlow, tree.Background.Texture)
		assert.Equal(t, 0.0, tree.Overlay.Opacity)
	})

	t.Run("custom image drops texture and dims", func(t *testing.T) {
		override := builders.NewStyleBuilder().WithBackground("https://example.com/a.png").Build()

		tree := renderSlide(t, entities.ThemeDarkModern, slide, &override, meta)

		assert.Equal(t, entities.BackgroundImage, tree.Background.Type)
		assert.Equal(t, entities.TextureNone, tree.Background.Texture)
		assert.Equal(t, 0.4, tree.Overlay.Opacity)
	})

	t.Run("explicit overlay wins", func(t *testing.T) {
		override := builders.NewStyleBuilder().WithBackground("#123456").WithOverlay(0.7).Build()

		tree := renderSlide(t, entities.ThemeRetroPaper, slide, &override, meta)

		assert.Equal(t, entities.BackgroundSolid, tree.Background.Type)
		assert.Equal(t, 0.7, tree.Overlay.Opacity)
	})
}

func TestRenderer_Footer(t *testing.T) {
	last := builders.NewSlideBuilder().WithNumber(3).WithCTA("Follow for more").Build()

	t.Run("cta only on last slide", func(t *testing.T) {
		meta := entities.CarouselMeta{Username: "tester", TotalSlides: 3}
		tree := renderSlide(t, entities.ThemeDarkModern, last, nil, meta)
		assert.Equal(t, "Follow for more", tree.Footer.CTA)

		meta.TotalSlides = 4
		tree = renderSlide(t, entities.ThemeDarkModern, last, nil, meta)
		assert.Empty(t, tree.Footer.CTA)
	})

	t.Run("handle footer without username falls back to counter", func(t *testing.T) {
		meta := entities.CarouselMeta{TotalSlides: 3}
		tree := renderSlide(t, entities.ThemeAuroraGreen, last, nil, meta)
		assert.Equal(t, entities.FooterCounter, tree.Footer.Kind)
	})
}

func TestRenderer_Variants(t *testing.T) {
	r := NewRenderer()
	assert.Equal(t, []entities.TemplateKind{
		entities.TemplateDarkModern,
		entities.TemplateRetroPaper,
		entities.TemplateBoldNeon,
		entities.TemplateMinimal,
		entities.TemplateAurora,
	}, r.Variants())
}
