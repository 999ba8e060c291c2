package entities

// TextureKind is a decorative pattern drawn over a theme default background
type TextureKind string

const (
	TextureNone      TextureKind = ""
	TextureGrid      TextureKind = "grid"
	TexturePaper     TextureKind = "paper"
	TextureScanlines TextureKind = "scanlines"
	TextureGlow      TextureKind = "glow"
)

// VerticalAlign places the text block inside the content area
type VerticalAlign string

const (
	VAlignTop    VerticalAlign = "top"
	VAlignCenter VerticalAlign = "center"
	VAlignBottom VerticalAlign = "bottom"
)

// FooterKind selects what the footer slot shows
type FooterKind string

const (
	FooterNone     FooterKind = ""
	FooterHandle   FooterKind = "handle"
	FooterCounter  FooterKind = "counter"
	FooterProgress FooterKind = "progress"
	FooterDots     FooterKind = "dots"
)

// Glow is a two-pass text shadow around a title
type Glow struct {
	Color string    `json:"color"`
	Radii []float64 `json:"radii"`
}

// TextSlot is a styled block of highlighted markup
type TextSlot struct {
	Markup     string    `json:"markup"`
	FontSize   int       `json:"fontSize"`
	Color      string    `json:"color"`
	Font       string    `json:"font"`
	Bold       bool      `json:"bold"`
	Uppercase  bool      `json:"uppercase"`
	Align      TextAlign `json:"align"`
	LineHeight float64   `json:"lineHeight"`
	Glow       *Glow     `json:"glow,omitempty"`
}

// Empty reports whether the slot has nothing to draw
func (t TextSlot) Empty() bool {
	return t.Markup == ""
}

// BackgroundLayer is the bottom layer of a slide
type BackgroundLayer struct {
	Background
	Texture TextureKind `json:"texture,omitempty"`
}

// OverlayLayer dims the background under the text
type OverlayLayer struct {
	Color   string  `json:"color"`
	Opacity float64 `json:"opacity"`
}

// FooterSlot is the template specific bottom strip of a slide
type FooterSlot struct {
	Kind    FooterKind `json:"kind"`
	Handle  string     `json:"handle,omitempty"`
	Current int        `json:"current"`
	Total   int        `json:"total"`
	Color   string     `json:"color"`
	Accent  string     `json:"accent"`

	// CTA is only set on the last slide of call-to-action aware templates
	CTA string `json:"cta,omitempty"`
}

// Layout positions the slots on the slide
type Layout struct {
	Padding       int           `json:"padding"`
	Gap           int           `json:"gap"`
	VerticalAlign VerticalAlign `json:"verticalAlign"`
}

// VisualTree is the rendered composition of one slide: background, overlay,
// title, body and footer, in drawing order
type VisualTree struct {
	Template    TemplateKind    `json:"template"`
	Number      int             `json:"number"`
	Placeholder bool            `json:"placeholder"`
	Layout      Layout          `json:"layout"`
	Background  BackgroundLayer `json:"background"`
	Overlay     OverlayLayer    `json:"overlay"`
	Title       TextSlot        `json:"title"`
	Highlight   TextSlot        `json:"highlight"`
	Body        TextSlot        `json:"body"`
	Footer      FooterSlot      `json:"footer"`
}
