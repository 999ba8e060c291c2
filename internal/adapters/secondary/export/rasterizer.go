package export

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/color"
	"math"
	"math/rand"
	"strconv"

	"github.com/fogleman/gg"
	"golang.org/x/image/draw"

	"github.com/fredcamaral/carouselkit/internal/domain/entities"
	"github.com/fredcamaral/carouselkit/internal/domain/ports"
)

// glowScale is the resolution the glow layer is blurred at
const glowScale = 0.25

var (
	fallbackBackground = color.NRGBA{24, 24, 27, 255}
	fallbackText       = color.NRGBA{255, 255, 255, 255}
)

// GGRasterizer draws visual trees with fogleman/gg. All drawing happens in
// output pixels: logical sizes from the tree are multiplied by the frame's
// pixel ratio.
type GGRasterizer struct {
	fonts  *FontBook
	images ImageLoader
	logger ports.Logger
}

// NewGGRasterizer creates a rasterizer. images may be nil when slides never
// carry image backgrounds.
func NewGGRasterizer(fonts *FontBook, images ImageLoader, logger ports.Logger) *GGRasterizer {
	if logger == nil {
		logger = ports.NopLogger{}
	}
	return &GGRasterizer{fonts: fonts, images: images, logger: logger}
}

// canvas is the state of one capture
type canvas struct {
	dc    *gg.Context
	faces *faceCache
	scale float64
	w, h  float64
}

func (c *canvas) px(logical int) float64 {
	return float64(logical) * c.scale
}

// Rasterize implements ports.Rasterizer
func (r *GGRasterizer) Rasterize(ctx context.Context, tree *entities.VisualTree, frame ports.Frame) ([]byte, error) {
	if tree == nil {
		return nil, fmt.Errorf("visual tree cannot be nil")
	}
	pw, ph := frame.PixelSize()
	if pw <= 0 || ph <= 0 {
		return nil, fmt.Errorf("invalid frame %dx%d", pw, ph)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	c := &canvas{
		dc:    gg.NewContext(pw, ph),
		faces: r.fonts.newFaceCache(),
		scale: frame.PixelRatio,
		w:     float64(pw),
		h:     float64(ph),
	}
	defer c.faces.close()

	r.paintBackground(ctx, c, tree.Background)
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	paintTexture(c, tree)
	paintOverlay(c, tree.Overlay)

	if !tree.Placeholder {
		if err := r.paintText(c, tree); err != nil {
			return nil, err
		}
		r.paintFooter(c, tree.Footer)
	}

	var buf bytes.Buffer
	if err := c.dc.EncodePNG(&buf); err != nil {
		return nil, fmt.Errorf("encoding PNG: %w", err)
	}
	return buf.Bytes(), nil
}

func (r *GGRasterizer) paintBackground(ctx context.Context, c *canvas, bg entities.BackgroundLayer) {
	dc := c.dc
	switch bg.Type {
	case entities.BackgroundImage:
		if r.images != nil {
			img, err := r.images.Load(ctx, bg.Value)
			if err == nil {
				drawCover(dc, img)
				return
			}
			r.logger.Warn("background image unavailable, using solid fill", "error", err)
		}
		dc.SetColor(fallbackBackground)
	case entities.BackgroundGradient:
		g, err := ParseLinearGradient(bg.Value)
		if err != nil {
			r.logger.Warn("unsupported gradient, using solid fill", "value", bg.Value, "error", err)
			dc.SetColor(fallbackBackground)
			break
		}
		x0, y0, x1, y1 := g.Line(c.w, c.h)
		grad := gg.NewLinearGradient(x0, y0, x1, y1)
		for _, stop := range g.Stops {
			grad.AddColorStop(stop.Offset, stop.Color)
		}
		dc.SetFillStyle(grad)
	default:
		dc.SetColor(MustColor(bg.Value, fallbackBackground))
	}
	dc.DrawRectangle(0, 0, c.w, c.h)
	dc.Fill()
}

// drawCover scales img to cover the canvas, cropping the overflow
func drawCover(dc *gg.Context, img image.Image) {
	dst := dc.Image().(*image.RGBA)
	db, sb := dst.Bounds(), img.Bounds()

	scale := math.Max(float64(db.Dx())/float64(sb.Dx()), float64(db.Dy())/float64(sb.Dy()))
	cw := int(float64(db.Dx()) / scale)
	ch := int(float64(db.Dy()) / scale)
	ox := sb.Min.X + (sb.Dx()-cw)/2
	oy := sb.Min.Y + (sb.Dy()-ch)/2

	draw.CatmullRom.Scale(dst, db, img, image.Rect(ox, oy, ox+cw, oy+ch), draw.Src, nil)
}

func paintTexture(c *canvas, tree *entities.VisualTree) {
	dc := c.dc
	ink := inkFor(tree.Background)

	switch tree.Background.Texture {
	case entities.TextureGrid:
		step := c.px(24)
		dc.SetColor(withAlpha(ink, 0.05))
		dc.SetLineWidth(math.Max(1, c.scale/2))
		for x := step; x < c.w; x += step {
			dc.DrawLine(x, 0, x, c.h)
		}
		for y := step; y < c.h; y += step {
			dc.DrawLine(0, y, c.w, y)
		}
		dc.Stroke()
	case entities.TexturePaper:
		// fixed seed keeps the grain identical between exports
		rng := rand.New(rand.NewSource(int64(tree.Number) + 1))
		dots := int(c.w * c.h / (c.scale * c.scale * 40))
		for i := 0; i < dots; i++ {
			dc.SetColor(withAlpha(color.NRGBA{60, 40, 20, 255}, 0.04+rng.Float64()*0.06))
			dc.DrawRectangle(rng.Float64()*c.w, rng.Float64()*c.h, c.scale, c.scale)
			dc.Fill()
		}
	case entities.TextureScanlines:
		step := c.px(3)
		dc.SetColor(color.NRGBA{0, 0, 0, 40})
		for y := 0.0; y < c.h; y += step {
			dc.DrawRectangle(0, y, c.w, c.scale)
		}
		dc.Fill()
	case entities.TextureGlow:
		accent := MustColor(tree.Footer.Accent, color.NRGBA{52, 211, 153, 255})
		grad := gg.NewRadialGradient(c.w/2, 0, 0, c.w/2, 0, c.h*0.8)
		grad.AddColorStop(0, withAlpha(accent, 0.35))
		grad.AddColorStop(1, withAlpha(accent, 0))
		dc.SetFillStyle(grad)
		dc.DrawRectangle(0, 0, c.w, c.h)
		dc.Fill()
	}
}

// inkFor picks a texture color that stays visible on the background
func inkFor(bg entities.BackgroundLayer) color.NRGBA {
	c, err := ParseColor(bg.Value)
	if err != nil || luminance(c) < 0.5 {
		return color.NRGBA{255, 255, 255, 255}
	}
	return color.NRGBA{0, 0, 0, 255}
}

func luminance(c color.NRGBA) float64 {
	return (0.2126*float64(c.R) + 0.7152*float64(c.G) + 0.0722*float64(c.B)) / 255
}

func paintOverlay(c *canvas, o entities.OverlayLayer) {
	if o.Opacity <= 0 {
		return
	}
	c.dc.SetColor(withAlpha(MustColor(o.Color, color.NRGBA{0, 0, 0, 255}), o.Opacity))
	c.dc.DrawRectangle(0, 0, c.w, c.h)
	c.dc.Fill()
}

// block is a laid out text slot
type block struct {
	slot       entities.TextSlot
	style      textStyle
	lines      []textLine
	lineHeight float64
	ascent     float64
}

func (b block) height() float64 {
	return float64(len(b.lines)) * b.lineHeight
}

func (r *GGRasterizer) layout(c *canvas, slot entities.TextSlot, maxWidth float64) (block, error) {
	runs, err := parseMarkup(slot.Markup)
	if err != nil {
		return block{}, err
	}
	style := textStyle{
		family:    slot.Font,
		size:      c.px(slot.FontSize),
		color:     MustColor(slot.Color, fallbackText),
		bold:      slot.Bold,
		uppercase: slot.Uppercase,
	}
	lh := slot.LineHeight
	if lh <= 0 {
		lh = 1.4
	}
	face := c.faces.face(style.family, style.bold, style.size)
	return block{
		slot:       slot,
		style:      style,
		lines:      wrapPieces(splitPieces(runs, style), style, c.faces, maxWidth),
		lineHeight: style.size * lh,
		ascent:     float64(face.Metrics().Ascent) / 64,
	}, nil
}

func (r *GGRasterizer) paintText(c *canvas, tree *entities.VisualTree) error {
	pad := c.px(tree.Layout.Padding)
	gap := c.px(tree.Layout.Gap)
	contentWidth := c.w - 2*pad

	var blocks []block
	for _, slot := range []entities.TextSlot{tree.Title, tree.Highlight, tree.Body} {
		if slot.Empty() {
			continue
		}
		b, err := r.layout(c, slot, contentWidth)
		if err != nil {
			return err
		}
		blocks = append(blocks, b)
	}
	if len(blocks) == 0 {
		return nil
	}

	total := gap * float64(len(blocks)-1)
	for _, b := range blocks {
		total += b.height()
	}

	top, bottom := pad, c.h-pad-footerReserve(c, tree.Footer)
	y := top
	switch tree.Layout.VerticalAlign {
	case entities.VAlignCenter:
		y = top + (bottom-top-total)/2
	case entities.VAlignBottom:
		y = bottom - total
	}
	y = math.Max(y, top)

	for _, b := range blocks {
		if b.slot.Glow != nil {
			paintGlow(c, b, pad, contentWidth, y)
		}
		drawBlock(c.dc, b, pad, contentWidth, y, nil)
		y += b.height() + gap
	}
	return nil
}

// drawBlock draws every line of b starting at top. A non-nil tint replaces
// the run colors, which is how glow layers are drawn.
func drawBlock(dc *gg.Context, b block, left, width, top float64, tint *color.NRGBA) {
	for i, line := range b.lines {
		x := left
		switch b.slot.Align {
		case entities.AlignCenter:
			x = left + (width-line.width)/2
		case entities.AlignRight:
			x = left + width - line.width
		}
		baseline := top + float64(i)*b.lineHeight + (b.lineHeight-b.style.size)/2 + b.ascent
		for _, item := range line.items {
			if tint != nil {
				dc.SetColor(*tint)
			} else {
				dc.SetColor(item.color)
			}
			dc.SetFontFace(item.face)
			dc.DrawString(item.text, x+item.x, baseline)
		}
	}
}

// paintGlow draws one blurred pass per glow radius under the block
func paintGlow(c *canvas, b block, left, width, top float64) {
	tint := MustColor(b.slot.Glow.Color, fallbackText)
	gw := int(math.Ceil(c.w * glowScale))
	gh := int(math.Ceil(c.h * glowScale))
	dst := c.dc.Image().(*image.RGBA)

	for _, radius := range b.slot.Glow.Radii {
		layer := gg.NewContext(gw, gh)
		layer.Scale(glowScale, glowScale)
		drawBlock(layer, b, left, width, top, &tint)

		img := layer.Image().(*image.RGBA)
		blurAlpha(img, radius*c.scale*glowScale)
		draw.BiLinear.Scale(dst, dst.Bounds(), img, img.Bounds(), draw.Over, nil)
	}
}

// footerReserve is the strip kept free of body text at the bottom
func footerReserve(c *canvas, f entities.FooterSlot) float64 {
	reserve := 0.0
	if f.Kind != entities.FooterNone {
		reserve += c.px(24)
	}
	if f.CTA != "" {
		reserve += c.px(48)
	}
	return reserve
}

func (r *GGRasterizer) paintFooter(c *canvas, f entities.FooterSlot) {
	dc := c.dc
	ink := MustColor(f.Color, fallbackText)
	accent := MustColor(f.Accent, ink)
	baseline := c.h - c.px(16)
	pad := c.px(24)

	if f.CTA != "" {
		face := c.faces.face("", true, c.px(14))
		tw := measure(face, f.CTA)
		bw := math.Min(tw+c.px(40), c.w-2*pad)
		bh := c.px(36)
		bx := (c.w - bw) / 2
		by := c.h - c.px(24) - c.px(12) - bh
		if f.Kind == entities.FooterNone {
			by = c.h - c.px(20) - bh
		}
		dc.SetColor(accent)
		dc.DrawRoundedRectangle(bx, by, bw, bh, bh/2)
		dc.Fill()

		label := color.NRGBA{255, 255, 255, 255}
		if luminance(accent) > 0.6 {
			label = color.NRGBA{0, 0, 0, 255}
		}
		dc.SetColor(label)
		dc.SetFontFace(face)
		dc.DrawStringAnchored(f.CTA, c.w/2, by+bh/2, 0.5, 0.35)
	}

	face := c.faces.face("", false, c.px(11))
	dc.SetFontFace(face)

	switch f.Kind {
	case entities.FooterHandle:
		dc.SetColor(withAlpha(ink, 0.8))
		dc.DrawStringAnchored(f.Handle, c.w/2, baseline, 0.5, 0)
	case entities.FooterCounter:
		if f.Total > 0 {
			dc.SetColor(withAlpha(ink, 0.7))
			dc.DrawStringAnchored(strconv.Itoa(f.Current)+"/"+strconv.Itoa(f.Total), c.w-pad, baseline, 1, 0)
		}
	case entities.FooterProgress:
		if f.Total > 0 {
			track := c.w - 2*pad
			y := c.h - c.px(20)
			dc.SetColor(withAlpha(ink, 0.2))
			dc.DrawRectangle(pad, y, track, c.px(3))
			dc.Fill()
			dc.SetColor(accent)
			dc.DrawRectangle(pad, y, track*float64(f.Current)/float64(f.Total), c.px(3))
			dc.Fill()
		}
	case entities.FooterDots:
		if f.Total > 0 {
			spacing := c.px(10)
			radius := c.px(3)
			x := c.w/2 - spacing*float64(f.Total-1)/2
			y := c.h - c.px(18)
			for i := 1; i <= f.Total; i++ {
				if i == f.Current {
					dc.SetColor(accent)
				} else {
					dc.SetColor(withAlpha(ink, 0.3))
				}
				dc.DrawCircle(x, y, radius)
				dc.Fill()
				x += spacing
			}
		}
	}
}
