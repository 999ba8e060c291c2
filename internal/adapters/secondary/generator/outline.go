package generator

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/text"
	"gopkg.in/yaml.v3"

	"github.com/fredcamaral/carouselkit/internal/domain/entities"
	"github.com/fredcamaral/carouselkit/internal/domain/ports"
)

// ErrNoBackgrounds is returned when an outline lists no background images
var ErrNoBackgrounds = errors.New("outline has no backgrounds")

// Frontmatter is the YAML header of an outline document
type Frontmatter struct {
	Topic       string   `yaml:"topic"`
	Tone        string   `yaml:"tone"`
	Theme       string   `yaml:"theme"`
	CTA         string   `yaml:"cta"`
	Username    string   `yaml:"username"`
	Backgrounds []string `yaml:"backgrounds"`
}

// Outline is a parsed markdown carousel
type Outline struct {
	Frontmatter Frontmatter
	Slides      []entities.Slide
}

// OutlineGenerator implements ports.ContentGenerator from a markdown
// outline instead of a model. Slides are separated by "---" lines; the
// first heading of a slide is its title, a blockquote its highlight and
// the remaining paragraphs and list items its content.
type OutlineGenerator struct {
	mu      sync.RWMutex
	outline *Outline
}

// NewOutlineGenerator parses source once
func NewOutlineGenerator(source []byte) (*OutlineGenerator, error) {
	outline, err := ParseOutline(source)
	if err != nil {
		return nil, err
	}
	return &OutlineGenerator{outline: outline}, nil
}

// Outline returns the parsed document
func (o *OutlineGenerator) Outline() *Outline {
	o.mu.RLock()
	defer o.mu.RUnlock()
	return o.outline
}

// Reload swaps in a new outline. A source that fails to parse leaves the
// previous outline in place.
func (o *OutlineGenerator) Reload(source []byte) (*Outline, error) {
	outline, err := ParseOutline(source)
	if err != nil {
		return nil, err
	}
	o.mu.Lock()
	o.outline = outline
	o.mu.Unlock()
	return outline, nil
}

// Generate returns up to req.Count outline slides. The CTA instruction, or
// the front matter cta, lands on the last slide when it has none.
func (o *OutlineGenerator) Generate(ctx context.Context, req ports.GenerateRequest) ([]entities.Slide, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	outline := o.Outline()
	slides := entities.CloneSlides(outline.Slides)
	if req.Count > 0 && len(slides) > req.Count {
		slides = slides[:req.Count]
	}
	if len(slides) == 0 {
		return nil, errors.New("outline has no slides")
	}

	last := &slides[len(slides)-1]
	if last.CTA == "" && len(slides) > 1 {
		last.CTA = firstNonEmpty(req.CTAInstruction, outline.Frontmatter.CTA)
	}
	return slides, nil
}

// Regenerate returns the outline's version of the slide, which undoes
// local edits
func (o *OutlineGenerator) Regenerate(ctx context.Context, req ports.RegenerateRequest) (entities.Slide, error) {
	if err := ctx.Err(); err != nil {
		return entities.Slide{}, err
	}
	for _, s := range o.Outline().Slides {
		if s.Number == req.Slide.Number {
			return s, nil
		}
	}
	return entities.Slide{}, fmt.Errorf("outline has no slide %d", req.Slide.Number)
}

// GenerateBackgroundImage cycles through the front matter backgrounds
func (o *OutlineGenerator) GenerateBackgroundImage(ctx context.Context, topic string, slide entities.Slide) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	bgs := o.Outline().Frontmatter.Backgrounds
	if len(bgs) == 0 {
		return "", ErrNoBackgrounds
	}
	return bgs[(max(slide.Number, 1)-1)%len(bgs)], nil
}

var outlineMarkdown = goldmark.New(goldmark.WithExtensions(extension.GFM))

// ParseOutline reads front matter and slides from a markdown outline
func ParseOutline(source []byte) (*Outline, error) {
	source = bytes.ReplaceAll(source, []byte("\r\n"), []byte("\n"))
	header, body, err := splitFrontmatter(source)
	if err != nil {
		return nil, err
	}

	outline := &Outline{}
	if len(header) > 0 {
		if err := yaml.Unmarshal(header, &outline.Frontmatter); err != nil {
			return nil, fmt.Errorf("parsing front matter: %w", err)
		}
	}
	if t := outline.Frontmatter.Tone; t != "" && !entities.Tone(t).Valid() {
		return nil, fmt.Errorf("front matter: unknown tone %q", t)
	}
	if t := outline.Frontmatter.Theme; t != "" && !entities.Theme(t).Valid() {
		return nil, fmt.Errorf("front matter: unknown theme %q", t)
	}

	for _, chunk := range splitSlides(body) {
		slide := parseSlide(chunk)
		if slide.Title == "" && slide.Content == "" {
			continue
		}
		slide.Number = len(outline.Slides) + 1
		if slide.IsCover() {
			slide.Content = ""
		}
		outline.Slides = append(outline.Slides, slide)
	}
	return outline, nil
}

// splitFrontmatter separates a leading "---" delimited YAML block
func splitFrontmatter(content []byte) ([]byte, []byte, error) {
	if !bytes.HasPrefix(content, []byte("---\n")) {
		return nil, content, nil
	}

	lines := bytes.Split(content, []byte("\n"))
	for i := 1; i < len(lines); i++ {
		if bytes.Equal(bytes.TrimSpace(lines[i]), []byte("---")) {
			return bytes.Join(lines[1:i], []byte("\n")), bytes.Join(lines[i+1:], []byte("\n")), nil
		}
	}
	return nil, nil, errors.New("front matter is not closed")
}

// splitSlides splits on horizontal rule lines
func splitSlides(content []byte) [][]byte {
	var slides [][]byte
	var current [][]byte
	flush := func() {
		chunk := bytes.TrimSpace(bytes.Join(current, []byte("\n")))
		if len(chunk) > 0 {
			slides = append(slides, chunk)
		}
		current = nil
	}

	for _, line := range bytes.Split(content, []byte("\n")) {
		if bytes.Equal(bytes.TrimSpace(line), []byte("---")) {
			flush()
			continue
		}
		current = append(current, line)
	}
	flush()
	return slides
}

func parseSlide(source []byte) entities.Slide {
	doc := outlineMarkdown.Parser().Parse(text.NewReader(source))

	var slide entities.Slide
	var body []string
	for n := doc.FirstChild(); n != nil; n = n.NextSibling() {
		switch node := n.(type) {
		case *ast.Heading:
			if slide.Title == "" {
				slide.Title = inlineText(node, source)
			} else {
				body = append(body, inlineText(node, source))
			}
		case *ast.Blockquote:
			if slide.Highlight == "" {
				slide.Highlight = blockText(node, source)
			}
		case *ast.List:
			for item := node.FirstChild(); item != nil; item = item.NextSibling() {
				body = append(body, "• "+blockText(item, source))
			}
		case *ast.Paragraph:
			line := inlineText(node, source)
			if cta, ok := strings.CutPrefix(line, "CTA:"); ok {
				slide.CTA = strings.TrimSpace(cta)
				continue
			}
			body = append(body, line)
		}
	}
	slide.Content = strings.Join(body, "\n")
	return slide
}

// blockText joins the text of nested block children with newlines
func blockText(n ast.Node, source []byte) string {
	var lines []string
	for c := n.FirstChild(); c != nil; c = c.NextSibling() {
		if c.Type() == ast.TypeBlock && c.HasChildren() && c.FirstChild().Type() == ast.TypeBlock {
			lines = append(lines, blockText(c, source))
			continue
		}
		lines = append(lines, inlineText(c, source))
	}
	return strings.Join(lines, "\n")
}

// inlineText flattens inline children. Emphasis keeps its *markers* so the
// highlighter accents it.
func inlineText(n ast.Node, source []byte) string {
	var b strings.Builder
	for c := n.FirstChild(); c != nil; c = c.NextSibling() {
		switch node := c.(type) {
		case *ast.Text:
			b.Write(node.Segment.Value(source))
			if node.SoftLineBreak() || node.HardLineBreak() {
				b.WriteByte(' ')
			}
		case *ast.String:
			b.Write(node.Value)
		case *ast.Emphasis:
			b.WriteByte('*')
			b.WriteString(inlineText(node, source))
			b.WriteByte('*')
		case *ast.AutoLink:
			b.Write(node.URL(source))
		case *ast.RawHTML:
		default:
			b.WriteString(inlineText(node, source))
		}
	}
	return strings.TrimSpace(b.String())
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
