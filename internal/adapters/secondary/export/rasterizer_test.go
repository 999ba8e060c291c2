package export

import (
	"bytes"
	"context"
	"encoding/base64"
	"image"
	"image/color"
	"image/png"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fredcamaral/carouselkit/internal/domain/entities"
	"github.com/fredcamaral/carouselkit/internal/domain/ports"
)

func newTestRasterizer(t *testing.T) *GGRasterizer {
	t.Helper()
	fonts, err := NewFontBook()
	require.NoError(t, err)
	return NewGGRasterizer(fonts, NewHTTPImageLoader(nil), nil)
}

func solidTree(bg string) *entities.VisualTree {
	return &entities.VisualTree{
		Template: entities.TemplateMinimal,
		Number:   2,
		Layout:   entities.Layout{Padding: 12, Gap: 6, VerticalAlign: entities.VAlignCenter},
		Background: entities.BackgroundLayer{
			Background: entities.Background{Type: entities.ClassifyBackground(bg), Value: bg},
		},
		Overlay: entities.OverlayLayer{Color: "#000000"},
	}
}

func decode(t *testing.T, data []byte) image.Image {
	t.Helper()
	img, err := png.Decode(bytes.NewReader(data))
	require.NoError(t, err)
	return img
}

func pixel(img image.Image, x, y int) color.NRGBA {
	return color.NRGBAModel.Convert(img.At(x, y)).(color.NRGBA)
}

func assertPixel(t *testing.T, expected color.NRGBA, actual color.NRGBA) {
	t.Helper()
	assert.InDelta(t, expected.R, actual.R, 2)
	assert.InDelta(t, expected.G, actual.G, 2)
	assert.InDelta(t, expected.B, actual.B, 2)
	assert.InDelta(t, expected.A, actual.A, 2)
}

var smallFrame = ports.Frame{Width: 90, Height: 112, PixelRatio: 2}

func TestGGRasterizer_Size(t *testing.T) {
	r := newTestRasterizer(t)

	data, err := r.Rasterize(context.Background(), solidTree("#102030"), smallFrame)
	require.NoError(t, err)

	img := decode(t, data)
	assert.Equal(t, 180, img.Bounds().Dx())
	assert.Equal(t, 224, img.Bounds().Dy())
}

func TestGGRasterizer_Backgrounds(t *testing.T) {
	r := newTestRasterizer(t)

	t.Run("solid", func(t *testing.T) {
		data, err := r.Rasterize(context.Background(), solidTree("#102030"), smallFrame)
		require.NoError(t, err)
		assertPixel(t, color.NRGBA{16, 32, 48, 255}, pixel(decode(t, data), 1, 1))
	})

	t.Run("overlay dims", func(t *testing.T) {
		tree := solidTree("#ffffff")
		tree.Overlay.Opacity = 0.5

		data, err := r.Rasterize(context.Background(), tree, smallFrame)
		require.NoError(t, err)
		assertPixel(t, color.NRGBA{128, 128, 128, 255}, pixel(decode(t, data), 1, 1))
	})

	t.Run("gradient runs top to bottom", func(t *testing.T) {
		tree := solidTree("linear-gradient(180deg, #000000 0%, #ffffff 100%)")

		data, err := r.Rasterize(context.Background(), tree, smallFrame)
		require.NoError(t, err)

		img := decode(t, data)
		top, bottom := pixel(img, 90, 1), pixel(img, 90, 222)
		assert.Less(t, top.R, uint8(10))
		assert.Greater(t, bottom.R, uint8(245))
	})

	t.Run("data uri image covers the frame", func(t *testing.T) {
		src := image.NewNRGBA(image.Rect(0, 0, 4, 4))
		for x := 0; x < 4; x++ {
			for y := 0; y < 4; y++ {
				src.Set(x, y, color.NRGBA{200, 10, 10, 255})
			}
		}
		var buf bytes.Buffer
		require.NoError(t, png.Encode(&buf, src))
		uri := "data:image/png;base64," + base64.StdEncoding.EncodeToString(buf.Bytes())

		data, err := r.Rasterize(context.Background(), solidTree(uri), smallFrame)
		require.NoError(t, err)
		assertPixel(t, color.NRGBA{200, 10, 10, 255}, pixel(decode(t, data), 90, 112))
	})

	t.Run("broken image falls back to a solid fill", func(t *testing.T) {
		data, err := r.Rasterize(context.Background(), solidTree("data:image/png;base64,bm90IGFuIGltYWdl"), smallFrame)
		require.NoError(t, err)
		assertPixel(t, fallbackBackground, pixel(decode(t, data), 1, 1))
	})
}

func TestGGRasterizer_Text(t *testing.T) {
	r := newTestRasterizer(t)

	blank, err := r.Rasterize(context.Background(), solidTree("#000000"), smallFrame)
	require.NoError(t, err)

	tree := solidTree("#000000")
	tree.Title = entities.TextSlot{
		Markup:     `Save <span class="hl-primary" style="color:#ff0000;font-weight:700">30%</span>`,
		FontSize:   18,
		Color:      "#ffffff",
		Bold:       true,
		Align:      entities.AlignCenter,
		LineHeight: 1.2,
		Glow:       &entities.Glow{Color: "#00ffff", Radii: []float64{8, 20}},
	}
	tree.Body = entities.TextSlot{Markup: "Line one\nLine two", FontSize: 10, Color: "#cccccc", Align: entities.AlignLeft}
	tree.Footer = entities.FooterSlot{Kind: entities.FooterDots, Current: 2, Total: 3, Color: "#ffffff", Accent: "#ff0000", CTA: "Follow"}

	data, err := r.Rasterize(context.Background(), tree, smallFrame)
	require.NoError(t, err)

	assert.NotEqual(t, blank, data)

	img := decode(t, data)
	var red, cyan bool
	b := img.Bounds()
	for x := b.Min.X; x < b.Max.X; x++ {
		for y := b.Min.Y; y < b.Max.Y; y++ {
			p := pixel(img, x, y)
			if p.R > 200 && p.G < 60 && p.B < 60 {
				red = true
			}
			if p.R < 60 && p.G > 60 && p.B > 60 && p.G == p.B {
				cyan = true
			}
		}
	}
	assert.True(t, red, "accent span should be drawn in its own color")
	assert.True(t, cyan, "glow should tint the area around the title")
}

func TestGGRasterizer_Errors(t *testing.T) {
	r := newTestRasterizer(t)

	t.Run("nil tree", func(t *testing.T) {
		_, err := r.Rasterize(context.Background(), nil, smallFrame)
		assert.Error(t, err)
	})

	t.Run("empty frame", func(t *testing.T) {
		_, err := r.Rasterize(context.Background(), solidTree("#000"), ports.Frame{})
		assert.Error(t, err)
	})

	t.Run("cancelled", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		_, err := r.Rasterize(ctx, solidTree("#000"), smallFrame)
		assert.ErrorIs(t, err, context.Canceled)
	})
}

func TestGGRasterizer_Textures(t *testing.T) {
	r := newTestRasterizer(t)

	for _, texture := range []entities.TextureKind{
		entities.TextureGrid,
		entities.TexturePaper,
		entities.TextureScanlines,
		entities.TextureGlow,
	} {
		t.Run(string(texture), func(t *testing.T) {
			plain, err := r.Rasterize(context.Background(), solidTree("#808080"), smallFrame)
			require.NoError(t, err)

			tree := solidTree("#808080")
			tree.Background.Texture = texture
			tree.Footer.Accent = "#34d399"
			textured, err := r.Rasterize(context.Background(), tree, smallFrame)
			require.NoError(t, err)

			assert.NotEqual(t, plain, textured)
		})
	}
}
