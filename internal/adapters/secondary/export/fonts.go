package export

import (
	"fmt"
	"strings"

	"github.com/golang/freetype/truetype"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/gofont/gomedium"
	"golang.org/x/image/font/gofont/gomono"
	"golang.org/x/image/font/gofont/gomonobold"
	"golang.org/x/image/font/gofont/goregular"
)

// fontRole is the embedded face a web font family is drawn with
type fontRole int

const (
	roleRegular fontRole = iota
	roleMedium
	roleBold
	roleMono
	roleMonoBold
)

// FontBook holds the parsed embedded fonts. Parsed fonts are read-only and
// shared; faces carry a glyph cache and are created per capture.
type FontBook struct {
	fonts map[fontRole]*truetype.Font
}

// NewFontBook parses the embedded Go fonts
func NewFontBook() (*FontBook, error) {
	sources := map[fontRole][]byte{
		roleRegular:  goregular.TTF,
		roleMedium:   gomedium.TTF,
		roleBold:     gobold.TTF,
		roleMono:     gomono.TTF,
		roleMonoBold: gomonobold.TTF,
	}

	book := &FontBook{fonts: make(map[fontRole]*truetype.Font, len(sources))}
	for role, ttf := range sources {
		f, err := truetype.Parse(ttf)
		if err != nil {
			return nil, fmt.Errorf("parsing embedded font: %w", err)
		}
		book.fonts[role] = f
	}
	return book, nil
}

// displayFamilies are heavy display faces drawn bold at any weight
var displayFamilies = map[string]bool{
	"bebas neue": true,
	"anton":      true,
	"outfit":     true,
}

var monoFamilies = map[string]bool{
	"courier prime": true,
	"courier":       true,
	"monospace":     true,
}

var mediumFamilies = map[string]bool{
	"montserrat":   true,
	"roboto slab":  true,
	"merriweather": true,
}

// familyName returns the first family of a CSS font-family list, lowercased
func familyName(family string) string {
	first, _, _ := strings.Cut(family, ",")
	return strings.ToLower(strings.Trim(strings.TrimSpace(first), `'"`))
}

func roleFor(family string, bold bool) fontRole {
	name := familyName(family)
	switch {
	case monoFamilies[name]:
		if bold {
			return roleMonoBold
		}
		return roleMono
	case bold || displayFamilies[name]:
		return roleBold
	case mediumFamilies[name]:
		return roleMedium
	default:
		return roleRegular
	}
}

// faceCache hands out faces for a single capture
type faceCache struct {
	book  *FontBook
	faces map[faceKey]font.Face
}

type faceKey struct {
	role fontRole
	size float64
}

func (b *FontBook) newFaceCache() *faceCache {
	return &faceCache{book: b, faces: make(map[faceKey]font.Face)}
}

func (c *faceCache) face(family string, bold bool, size float64) font.Face {
	key := faceKey{role: roleFor(family, bold), size: size}
	if f, ok := c.faces[key]; ok {
		return f
	}
	f := truetype.NewFace(c.book.fonts[key.role], &truetype.Options{
		Size:    size,
		Hinting: font.HintingFull,
	})
	c.faces[key] = f
	return f
}

func (c *faceCache) close() {
	for _, f := range c.faces {
		_ = f.Close()
	}
}
