package entities

import (
	"fmt"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Theme identifies one of the built-in carousel themes
type Theme string

const (
	ThemeMinimalLight Theme = "minimal_light"
	ThemeMinimalDark  Theme = "minimal_dark"
	ThemeRetroPaper   Theme = "retro_paper"
	ThemeBoldNeon     Theme = "bold_neon"
	ThemeDarkModern   Theme = "dark_modern"
	ThemeAuroraGreen  Theme = "aurora_green"
)

// DefaultTheme is used when a carousel names no theme or an unknown one
const DefaultTheme = ThemeDarkModern

// ParseTheme converts a raw name into a known theme
func ParseTheme(name string) (Theme, error) {
	t := Theme(strings.ToLower(strings.TrimSpace(name)))
	if _, ok := themeCatalog[t]; !ok {
		return "", fmt.Errorf("unknown theme: %s", name)
	}
	return t, nil
}

// Valid reports whether the theme is part of the catalog
func (t Theme) Valid() bool {
	_, ok := themeCatalog[t]
	return ok
}

// DisplayName returns a human readable theme name
func (t Theme) DisplayName() string {
	c := cases.Title(language.Und)
	return c.String(strings.ReplaceAll(string(t), "_", " "))
}

// TemplateKind names a slide layout variant. Several themes may share one.
type TemplateKind string

const (
	TemplateDarkModern TemplateKind = "dark_modern"
	TemplateRetroPaper TemplateKind = "retro_paper"
	TemplateBoldNeon   TemplateKind = "bold_neon"
	TemplateMinimal    TemplateKind = "minimal"
	TemplateAurora     TemplateKind = "aurora"
)

// Accents holds the highlight colors of a theme
type Accents struct {
	Primary string `json:"primary"`
	Danger  string `json:"danger"`
	Success string `json:"success"`
}

// SizeScale maps the font size presets to pixel sizes
type SizeScale struct {
	Small  int `json:"small"`
	Medium int `json:"medium"`
	Large  int `json:"large"`
	Extra  int `json:"extra"`
}

// For returns the pixel size of a preset, falling back to medium
func (s SizeScale) For(size FontSize) int {
	switch size {
	case FontSizeSmall:
		return s.Small
	case FontSizeLarge:
		return s.Large
	case FontSizeExtra:
		return s.Extra
	default:
		return s.Medium
	}
}

// Monotonic reports whether small < medium < large < extra
func (s SizeScale) Monotonic() bool {
	return s.Small < s.Medium && s.Medium < s.Large && s.Large < s.Extra
}

// ThemeSpec carries the built-in defaults of a theme
type ThemeSpec struct {
	Name       Theme        `json:"name"`
	Template   TemplateKind `json:"template"`
	Dark       bool         `json:"dark"`
	Background string       `json:"background"`
	TextColor  string       `json:"textColor"`
	TitleColor string       `json:"titleColor"`
	GlowColor  string       `json:"glowColor"`
	Accents    Accents      `json:"accents"`
	TitleFont  string       `json:"titleFont"`
	BodyFont   string       `json:"bodyFont"`
	TextAlign  TextAlign    `json:"textAlign"`
	TitleSizes SizeScale    `json:"titleSizes"`
	BodySizes  SizeScale    `json:"bodySizes"`

	// CoverBoost is added to the title size of slide 1
	CoverBoost int `json:"coverBoost"`

	// ImageOverlay and FlatOverlay are the overlay defaults over photographic
	// and flat backgrounds respectively
	ImageOverlay float64 `json:"imageOverlay"`
	FlatOverlay  float64 `json:"flatOverlay"`

	// CurlyQuotes converts straight quotes to guillemets
	CurlyQuotes bool `json:"curlyQuotes"`

	// AutoAccentNumbers wraps bare numbers and percentages in an accent span
	AutoAccentNumbers bool `json:"autoAccentNumbers"`
}

// DefaultStyle returns the style backfilled for slides without an entry
func (s ThemeSpec) DefaultStyle() SlideStyle {
	return SlideStyle{
		FontSize:       FontSizeMedium,
		TextAlign:      s.TextAlign,
		BackgroundType: BackgroundSolid,
	}
}

var themeCatalog = map[Theme]ThemeSpec{
	ThemeDarkModern: {
		Name:         ThemeDarkModern,
		Template:     TemplateDarkModern,
		Dark:         true,
		Background:   "#18181b",
		TextColor:    "#d4d4d8",
		TitleColor:   "#ffffff",
		GlowColor:    "rgba(255,255,255,0.6)",
		Accents:      Accents{Primary: "#818cf8", Danger: "#f87171", Success: "#34d399"},
		TitleFont:    "Inter",
		BodyFont:     "Inter",
		TextAlign:    AlignCenter,
		TitleSizes:   SizeScale{Small: 20, Medium: 24, Large: 30, Extra: 36},
		BodySizes:    SizeScale{Small: 13, Medium: 15, Large: 17, Extra: 20},
		CoverBoost:   8,
		ImageOverlay: 0.4,
		CurlyQuotes:  true,
	},
	ThemeRetroPaper: {
		Name:         ThemeRetroPaper,
		Template:     TemplateRetroPaper,
		Background:   "#f4ecd8",
		TextColor:    "#3f3a33",
		TitleColor:   "#1f1b16",
		GlowColor:    "rgba(255,255,255,0.6)",
		Accents:      Accents{Primary: "#c2410c", Danger: "#b91c1c", Success: "#15803d"},
		TitleFont:    "Playfair Display",
		BodyFont:     "Merriweather",
		TextAlign:    AlignLeft,
		TitleSizes:   SizeScale{Small: 22, Medium: 26, Large: 32, Extra: 38},
		BodySizes:    SizeScale{Small: 13, Medium: 15, Large: 17, Extra: 19},
		CoverBoost:   6,
		ImageOverlay: 0.25,
	},
	ThemeBoldNeon: {
		Name:              ThemeBoldNeon,
		Template:          TemplateBoldNeon,
		Dark:              true,
		Background:        "#0a0a0a",
		TextColor:         "#e5e5e5",
		TitleColor:        "#ffffff",
		GlowColor:         "#22d3ee",
		Accents:           Accents{Primary: "#22d3ee", Danger: "#fb7185", Success: "#a3e635"},
		TitleFont:         "Bebas Neue",
		BodyFont:          "Montserrat",
		TextAlign:         AlignCenter,
		TitleSizes:        SizeScale{Small: 26, Medium: 32, Large: 40, Extra: 48},
		BodySizes:         SizeScale{Small: 14, Medium: 16, Large: 18, Extra: 21},
		CoverBoost:        10,
		ImageOverlay:      0.5,
		AutoAccentNumbers: true,
	},
	ThemeMinimalLight: {
		Name:         ThemeMinimalLight,
		Template:     TemplateMinimal,
		Background:   "#ffffff",
		TextColor:    "#3f3f46",
		TitleColor:   "#09090b",
		GlowColor:    "rgba(37,99,235,0.4)",
		Accents:      Accents{Primary: "#2563eb", Danger: "#dc2626", Success: "#16a34a"},
		TitleFont:    "Inter",
		BodyFont:     "Inter",
		TextAlign:    AlignLeft,
		TitleSizes:   SizeScale{Small: 20, Medium: 24, Large: 28, Extra: 34},
		BodySizes:    SizeScale{Small: 13, Medium: 15, Large: 17, Extra: 19},
		CoverBoost:   6,
		ImageOverlay: 0.25,
	},
	ThemeMinimalDark: {
		Name:         ThemeMinimalDark,
		Template:     TemplateMinimal,
		Dark:         true,
		Background:   "#09090b",
		TextColor:    "#a1a1aa",
		TitleColor:   "#fafafa",
		GlowColor:    "rgba(255,255,255,0.6)",
		Accents:      Accents{Primary: "#60a5fa", Danger: "#f87171", Success: "#4ade80"},
		TitleFont:    "Inter",
		BodyFont:     "Inter",
		TextAlign:    AlignLeft,
		TitleSizes:   SizeScale{Small: 20, Medium: 24, Large: 28, Extra: 34},
		BodySizes:    SizeScale{Small: 13, Medium: 15, Large: 17, Extra: 19},
		CoverBoost:   6,
		ImageOverlay: 0.4,
	},
	ThemeAuroraGreen: {
		Name:         ThemeAuroraGreen,
		Template:     TemplateAurora,
		Dark:         true,
		Background:   "linear-gradient(160deg, #052e16 0%, #064e3b 55%, #0f766e 100%)",
		TextColor:    "#d1fae5",
		TitleColor:   "#ecfdf5",
		GlowColor:    "rgba(52,211,153,0.6)",
		Accents:      Accents{Primary: "#34d399", Danger: "#fca5a5", Success: "#a7f3d0"},
		TitleFont:    "Montserrat",
		BodyFont:     "Inter",
		TextAlign:    AlignCenter,
		TitleSizes:   SizeScale{Small: 22, Medium: 26, Large: 32, Extra: 38},
		BodySizes:    SizeScale{Small: 13, Medium: 15, Large: 17, Extra: 19},
		CoverBoost:   8,
		ImageOverlay: 0.35,
	},
}

// themeOrder is the catalog listing order
var themeOrder = []Theme{
	ThemeMinimalLight,
	ThemeMinimalDark,
	ThemeRetroPaper,
	ThemeBoldNeon,
	ThemeDarkModern,
	ThemeAuroraGreen,
}

// LookupTheme returns the ThemeSpec of a theme, falling back to DefaultTheme
func LookupTheme(t Theme) ThemeSpec {
	if spec, ok := themeCatalog[t]; ok {
		return spec
	}
	return themeCatalog[DefaultTheme]
}

// Themes lists the catalog in display order
func Themes() []ThemeSpec {
	out := make([]ThemeSpec, 0, len(themeOrder))
	for _, t := range themeOrder {
		out = append(out, themeCatalog[t])
	}
	return out
}
