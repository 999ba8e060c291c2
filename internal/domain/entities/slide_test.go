package entities

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSlide_Validate(t *testing.T) {
	tests := []struct {
		name    string
		slide   Slide
		wantErr bool
	}{
		{"cover", Slide{Number: 1, Title: "Hook"}, false},
		{"empty text is fine", Slide{Number: 4}, false},
		{"zero number", Slide{Title: "Orphan"}, true},
		{"negative number", Slide{Number: -2}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.slide.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestParseSlideField(t *testing.T) {
	tests := []struct {
		input string
		want  SlideField
	}{
		{"title", FieldTitle},
		{" Content ", FieldContent},
		{"HIGHLIGHT", FieldHighlight},
		{"cta", FieldCTA},
	}
	for _, tt := range tests {
		field, err := ParseSlideField(tt.input)
		require.NoError(t, err)
		assert.Equal(t, tt.want, field)
	}

	_, err := ParseSlideField("number")
	assert.ErrorIs(t, err, ErrInvalidField)
}

func TestSlide_Fields(t *testing.T) {
	slide := Slide{Number: 3}

	for _, field := range []SlideField{FieldTitle, FieldContent, FieldHighlight, FieldCTA} {
		require.NoError(t, slide.SetField(field, "value of "+string(field)))
		assert.Equal(t, "value of "+string(field), slide.Field(field))
	}
	assert.Equal(t, 3, slide.Number)

	assert.ErrorIs(t, slide.SetField("number", "9"), ErrInvalidField)
	assert.Empty(t, slide.Field("number"))
	assert.Equal(t, 3, slide.Number)
}

func TestSlide_IsCover(t *testing.T) {
	assert.True(t, (&Slide{Number: 1}).IsCover())
	assert.False(t, (&Slide{Number: 2}).IsCover())
}

func TestRenumber(t *testing.T) {
	slides := []Slide{{Number: 7, Title: "a"}, {Number: 2, Title: "b"}, {Number: 2, Title: "c"}}
	Renumber(slides)

	for i, s := range slides {
		assert.Equal(t, i+1, s.Number)
	}
	assert.Equal(t, "c", slides[2].Title)
}

func TestCloneSlides(t *testing.T) {
	assert.Nil(t, CloneSlides(nil))

	original := []Slide{{Number: 1, Title: "Cover"}}
	clone := CloneSlides(original)
	clone[0].Title = "changed"
	assert.Equal(t, "Cover", original[0].Title)
}

func TestCarouselConfig_Validate(t *testing.T) {
	assert.NoError(t, DefaultCarouselConfig().Validate())

	tests := []struct {
		name   string
		mutate func(c *CarouselConfig)
		errMsg string
	}{
		{"too few slides", func(c *CarouselConfig) { c.SlideCount = MinSlideCount - 1 }, "slide count"},
		{"too many slides", func(c *CarouselConfig) { c.SlideCount = MaxSlideCount + 1 }, "slide count"},
		{"unknown theme", func(c *CarouselConfig) { c.Theme = "vaporwave" }, "unknown theme"},
		{"unknown tone", func(c *CarouselConfig) { c.Tone = "sarcastic" }, "unknown tone"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			config := DefaultCarouselConfig()
			tt.mutate(&config)
			err := config.Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.errMsg)
		})
	}

	t.Run("empty topic is allowed", func(t *testing.T) {
		config := DefaultCarouselConfig()
		config.Topic = ""
		assert.NoError(t, config.Validate())
	})
}

func TestCarouselMeta(t *testing.T) {
	meta := CarouselMeta{Topic: "Sleep", Username: "sleepcoach", TotalSlides: 5}

	assert.True(t, meta.IsLast(&Slide{Number: 5}))
	assert.False(t, meta.IsLast(&Slide{Number: 4}))
	assert.False(t, meta.IsLast(nil))

	assert.Equal(t, "@sleepcoach", meta.Handle())
	assert.Equal(t, "@sleepcoach", CarouselMeta{Username: "@sleepcoach"}.Handle())
	assert.Empty(t, CarouselMeta{Username: "  "}.Handle())
}

func TestSavedCarousel_Validate(t *testing.T) {
	valid := SavedCarousel{
		ID:        "abc",
		Timestamp: 1_700_000_000_000,
		Slides:    []Slide{{Number: 1}, {Number: 2}},
	}
	assert.NoError(t, valid.Validate())
	assert.Equal(t, time.UnixMilli(1_700_000_000_000), valid.SavedAt())

	noID := valid
	noID.ID = ""
	assert.EqualError(t, noID.Validate(), "saved carousel id is required")

	empty := valid
	empty.Slides = nil
	assert.EqualError(t, empty.Validate(), "saved carousel has no slides")

	gap := valid
	gap.Slides = []Slide{{Number: 1}, {Number: 3}}
	assert.EqualError(t, gap.Validate(), "slide at position 2 is numbered 3")
}
