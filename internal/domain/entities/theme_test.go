package entities

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseTheme(t *testing.T) {
	theme, err := ParseTheme(" Retro_Paper ")
	require.NoError(t, err)
	assert.Equal(t, ThemeRetroPaper, theme)

	_, err = ParseTheme("vaporwave")
	assert.EqualError(t, err, "unknown theme: vaporwave")
}

func TestTheme_DisplayName(t *testing.T) {
	assert.Equal(t, "Dark Modern", ThemeDarkModern.DisplayName())
	assert.Equal(t, "Aurora Green", ThemeAuroraGreen.DisplayName())
}

func TestThemes_Catalog(t *testing.T) {
	themes := Themes()
	require.Len(t, themes, 6)
	assert.Equal(t, ThemeMinimalLight, themes[0].Name)

	seen := make(map[Theme]bool)
	for _, spec := range themes {
		t.Run(string(spec.Name), func(t *testing.T) {
			assert.False(t, seen[spec.Name], "duplicate theme")
			seen[spec.Name] = true

			assert.True(t, spec.Name.Valid())
			assert.NotEmpty(t, spec.Template)
			assert.NotEmpty(t, spec.Background)
			assert.NotEmpty(t, spec.TitleFont)
			assert.NotEmpty(t, spec.BodyFont)
			assert.True(t, spec.TextAlign.Valid())
			assert.True(t, spec.TitleSizes.Monotonic(), "title sizes")
			assert.True(t, spec.BodySizes.Monotonic(), "body sizes")
			assert.GreaterOrEqual(t, spec.ImageOverlay, 0.0)
			assert.LessOrEqual(t, spec.ImageOverlay, 1.0)
			assert.NoError(t, spec.DefaultStyle().Validate())
		})
	}
}

func TestLookupTheme_FallsBack(t *testing.T) {
	assert.Equal(t, ThemeBoldNeon, LookupTheme(ThemeBoldNeon).Name)
	assert.Equal(t, DefaultTheme, LookupTheme("vaporwave").Name)
}

func TestSizeScale_For(t *testing.T) {
	scale := SizeScale{Small: 10, Medium: 20, Large: 30, Extra: 40}
	assert.Equal(t, 10, scale.For(FontSizeSmall))
	assert.Equal(t, 20, scale.For(FontSizeMedium))
	assert.Equal(t, 30, scale.For(FontSizeLarge))
	assert.Equal(t, 40, scale.For(FontSizeExtra))
	assert.Equal(t, 20, scale.For("huge"))
	assert.False(t, SizeScale{Small: 10, Medium: 10, Large: 30, Extra: 40}.Monotonic())
}

func TestToneFromSlider(t *testing.T) {
	tests := []struct {
		value int
		want  Tone
	}{
		{0, ToneExpert},
		{10, ToneExpert},
		{20, ToneEmpathetic},
		{50, ToneViral},
		{70, ToneProvocative},
		{100, ToneFunny},
		{150, ToneFunny},
		{-20, ToneExpert},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, ToneFromSlider(tt.value), "slider %d", tt.value)
	}

	assert.True(t, ToneViral.Valid())
	assert.False(t, Tone("sarcastic").Valid())
}

func TestClassifyBackground(t *testing.T) {
	tests := []struct {
		value string
		want  BackgroundType
	}{
		{"#101010", BackgroundSolid},
		{"rebeccapurple", BackgroundSolid},
		{"linear-gradient(135deg, #667eea 0%, #764ba2 100%)", BackgroundGradient},
		{"https://example.com/bg.jpg", BackgroundImage},
		{"data:image/png;base64,AAAA", BackgroundImage},
		{"  HTTP://EXAMPLE.COM/BG.JPG", BackgroundImage},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, ClassifyBackground(tt.value), tt.value)
	}
}

func TestSlideStyle_Apply(t *testing.T) {
	size := 48
	opacity := 0.4
	base := SlideStyle{FontSize: FontSizeMedium, TextAlign: AlignLeft, TitleFontSize: &size}

	large := FontSizeLarge
	glow := true
	next := base.Apply(StylePatch{FontSize: &large, TitleGlow: &glow, OverlayOpacity: &opacity})

	assert.Equal(t, FontSizeLarge, next.FontSize)
	assert.True(t, next.TitleGlow)
	assert.Equal(t, AlignLeft, next.TextAlign)
	require.NotNil(t, next.OverlayOpacity)
	assert.Equal(t, 0.4, *next.OverlayOpacity)

	// the result shares no pointers with its input
	*next.TitleFontSize = 12
	assert.Equal(t, 48, *base.TitleFontSize)
	assert.Equal(t, FontSizeMedium, base.FontSize)
}

func TestSlideStyle_Validate(t *testing.T) {
	zero := 0
	tooOpaque := 1.5
	bad := FontSize("huge")

	assert.NoError(t, SlideStyle{}.Validate())
	assert.Error(t, SlideStyle{FontSize: "huge"}.Validate())
	assert.Error(t, SlideStyle{TextAlign: "justify"}.Validate())
	assert.Error(t, SlideStyle{TitleFontSize: &zero}.Validate())
	assert.Error(t, SlideStyle{OverlayOpacity: &tooOpaque}.Validate())
	assert.Error(t, SlideStyle{BackgroundType: "video"}.Validate())

	assert.Error(t, StylePatch{FontSize: &bad}.Validate())
	assert.True(t, StylePatch{}.IsEmpty())
	assert.False(t, StylePatch{FontSize: &bad}.IsEmpty())
}
