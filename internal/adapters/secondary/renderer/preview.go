package renderer

import (
	"bytes"
	"fmt"
	"html/template"
	"regexp"
	"strconv"
	"strings"

	"github.com/microcosm-cc/bluemonday"

	"github.com/fredcamaral/carouselkit/internal/domain/entities"
)

// createMarkupSanitizer only lets through the accent spans the highlighter emits
func createMarkupSanitizer() *bluemonday.Policy {
	p := bluemonday.NewPolicy()
	p.AllowElements("span", "br")
	p.AllowAttrs("class").Matching(regexp.MustCompile(`^hl-(primary|danger|success)$`)).OnElements("span")
	p.AllowStyles("color", "font-weight").OnElements("span")
	return p
}

var markupSanitizer = createMarkupSanitizer()

// unsafeCSS catches values that could break out of a declaration
var (
	unsafeCSS = regexp.MustCompile(`(?i)[;{}<>\\]|/\*|expression\(|javascript:`)
	unsafeURL = regexp.MustCompile(`(?i)[{}<>()\\"'\s]|javascript:`)
)

// PreviewRenderer turns a visual tree into a self-contained HTML fragment
type PreviewRenderer struct {
	tmpl *template.Template
}

// NewPreviewRenderer parses the preview template
func NewPreviewRenderer() (*PreviewRenderer, error) {
	tmpl, err := template.New("slide").Parse(slideTemplate)
	if err != nil {
		return nil, fmt.Errorf("parsing slide template: %w", err)
	}
	return &PreviewRenderer{tmpl: tmpl}, nil
}

type previewSlot struct {
	Markup template.HTML
	Style  template.CSS
}

type previewData struct {
	Template    string
	Number      int
	Placeholder bool
	Width       int
	Height      int
	Card        template.CSS
	Overlay     template.CSS
	Texture     string
	Title       *previewSlot
	Highlight   *previewSlot
	Body        *previewSlot
	Footer      entities.FooterSlot
	Counter     string
	Dots        []bool
	Progress    int
	FooterStyle template.CSS
	CTAStyle    template.CSS
}

// Render writes the HTML fragment of tree laid out at width×height px
func (p *PreviewRenderer) Render(tree *entities.VisualTree, width, height int) ([]byte, error) {
	if tree == nil {
		return nil, fmt.Errorf("visual tree cannot be nil")
	}

	data := previewData{
		Template:    string(tree.Template),
		Number:      tree.Number,
		Placeholder: tree.Placeholder,
		Width:       width,
		Height:      height,
		Card:        cardCSS(tree, width, height),
		Overlay:     template.CSS(fmt.Sprintf("background-color:%s;opacity:%s", safeCSSValue(tree.Overlay.Color, "#000000"), formatFloat(tree.Overlay.Opacity))),
		Texture:     string(tree.Background.Texture),
		Title:       slot(tree.Title),
		Highlight:   slot(tree.Highlight),
		Body:        slot(tree.Body),
		Footer:      tree.Footer,
		FooterStyle: template.CSS("color:" + safeCSSValue(tree.Footer.Color, "inherit")),
		CTAStyle:    template.CSS("background-color:" + safeCSSValue(tree.Footer.Accent, "#ffffff")),
	}

	if tree.Footer.Total > 0 {
		data.Counter = fmt.Sprintf("%d/%d", tree.Footer.Current, tree.Footer.Total)
		data.Progress = tree.Footer.Current * 100 / tree.Footer.Total
		data.Dots = make([]bool, tree.Footer.Total)
		if tree.Footer.Current >= 1 && tree.Footer.Current <= tree.Footer.Total {
			data.Dots[tree.Footer.Current-1] = true
		}
	}

	var buf bytes.Buffer
	if err := p.tmpl.Execute(&buf, data); err != nil {
		return nil, fmt.Errorf("executing slide template: %w", err)
	}
	return buf.Bytes(), nil
}

func slot(t entities.TextSlot) *previewSlot {
	if t.Empty() {
		return nil
	}

	var css strings.Builder
	fmt.Fprintf(&css, "font-size:%dpx;color:%s;text-align:%s;line-height:%s",
		t.FontSize, safeCSSValue(t.Color, "inherit"), safeCSSValue(string(t.Align), "left"), formatFloat(t.LineHeight))
	fmt.Fprintf(&css, ";font-family:'%s',sans-serif", strings.ReplaceAll(safeCSSValue(t.Font, "Inter"), "'", ""))
	if t.Bold {
		css.WriteString(";font-weight:700")
	}
	if t.Uppercase {
		css.WriteString(";text-transform:uppercase")
	}
	if t.Glow != nil && len(t.Glow.Radii) > 0 {
		color := safeCSSValue(t.Glow.Color, "#ffffff")
		shadows := make([]string, 0, len(t.Glow.Radii))
		for _, r := range t.Glow.Radii {
			shadows = append(shadows, fmt.Sprintf("0 0 %spx %s", formatFloat(r), color))
		}
		css.WriteString(";text-shadow:" + strings.Join(shadows, ","))
	}

	markup := markupSanitizer.Sanitize(strings.ReplaceAll(t.Markup, "\n", "<br>"))
	return &previewSlot{
		Markup: template.HTML(markup), // #nosec G203 - sanitized by markupSanitizer
		Style:  template.CSS(css.String()),
	}
}

func cardCSS(tree *entities.VisualTree, width, height int) template.CSS {
	bg := tree.Background
	var decl string
	switch bg.Type {
	case entities.BackgroundImage:
		decl = fmt.Sprintf("background-image:url('%s');background-size:cover;background-position:center", safeURL(bg.Value))
	case entities.BackgroundGradient:
		decl = "background-image:" + safeCSSValue(bg.Value, "none")
	default:
		decl = "background-color:" + safeCSSValue(bg.Value, "#000000")
	}

	return template.CSS(fmt.Sprintf("width:%dpx;height:%dpx;padding:%dpx;gap:%dpx;justify-content:%s;%s",
		width, height, tree.Layout.Padding, tree.Layout.Gap, justify(tree.Layout.VerticalAlign), decl))
}

func justify(v entities.VerticalAlign) string {
	switch v {
	case entities.VAlignTop:
		return "flex-start"
	case entities.VAlignBottom:
		return "flex-end"
	default:
		return "center"
	}
}

// safeCSSValue returns value when it cannot escape its declaration
func safeCSSValue(value, fallback string) string {
	v := strings.TrimSpace(value)
	if v == "" || unsafeCSS.MatchString(v) || strings.ContainsAny(v, "\"\n") {
		return fallback
	}
	return v
}

// safeURL admits image URIs, data URIs included, that cannot close url()
func safeURL(value string) string {
	v := strings.TrimSpace(value)
	if unsafeURL.MatchString(v) {
		return ""
	}
	return v
}

func formatFloat(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}

const slideTemplate = `<div class="ck-slide ck-{{.Template}}{{if .Placeholder}} ck-placeholder{{end}}" data-number="{{.Number}}" style="position:relative;display:flex;flex-direction:column;box-sizing:border-box;overflow:hidden;{{.Card}}">
  {{- if .Texture}}
  <div class="ck-texture ck-texture-{{.Texture}}" aria-hidden="true"></div>
  {{- end}}
  <div class="ck-overlay" style="position:absolute;inset:0;{{.Overlay}}"></div>
  {{- if .Title}}
  <h2 class="ck-title" style="position:relative;margin:0;{{.Title.Style}}">{{.Title.Markup}}</h2>
  {{- end}}
  {{- if .Highlight}}
  <p class="ck-highlight" style="position:relative;margin:0;{{.Highlight.Style}}">{{.Highlight.Markup}}</p>
  {{- end}}
  {{- if .Body}}
  <p class="ck-body" style="position:relative;margin:0;{{.Body.Style}}">{{.Body.Markup}}</p>
  {{- end}}
  {{- if .Footer.Kind}}
  <footer class="ck-footer ck-footer-{{.Footer.Kind}}" style="position:absolute;left:0;right:0;bottom:12px;text-align:center;font-size:11px;{{.FooterStyle}}">
    {{- if eq (print .Footer.Kind) "handle"}}<span>{{.Footer.Handle}}</span>
    {{- else if eq (print .Footer.Kind) "counter"}}<span>{{.Counter}}</span>
    {{- else if eq (print .Footer.Kind) "progress"}}<div class="ck-progress"><div style="width:{{.Progress}}%"></div></div>
    {{- else if eq (print .Footer.Kind) "dots"}}{{range .Dots}}<i class="ck-dot{{if .}} ck-dot-active{{end}}"></i>{{end}}
    {{- end}}
    {{- if .Footer.CTA}}
    <button class="ck-cta" type="button" style="{{.CTAStyle}}">{{.Footer.CTA}}</button>
    {{- end}}
  </footer>
  {{- end}}
</div>
`
