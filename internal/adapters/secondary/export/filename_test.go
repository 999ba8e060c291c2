package export

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestArchiveName(t *testing.T) {
	tests := []struct {
		name     string
		topic    string
		ext      string
		expected string
	}{
		{"truncates to fifteen characters", "5 tips for sleep", "zip", "carousel-5-tips-for-slee.zip"},
		{"empty topic", "", "zip", "carousel-kit.zip"},
		{"only punctuation", "  !!! ", "zip", "carousel-kit.zip"},
		{"path separators", "../../etc/passwd", "zip", "carousel-etc-passw.zip"},
		{"non latin letters", "Как спать лучше ночью", "zip", "carousel-как-спать-лучше.zip"},
		{"pdf extension", "Deck", "pdf", "carousel-deck.pdf"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, ArchiveName(tt.topic, tt.ext))
		})
	}
}

func TestSlideFileName(t *testing.T) {
	assert.Equal(t, "slide-1.png", SlideFileName(1))
	assert.Equal(t, "slide-10.png", SlideFileName(10))
}
