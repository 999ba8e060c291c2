package ports

import (
	"context"

	"github.com/fredcamaral/carouselkit/internal/domain/entities"
)

// Frame is the measured box a visual tree is captured in
type Frame struct {
	Width      int
	Height     int
	PixelRatio float64
}

// PixelSize returns the output raster size
func (f Frame) PixelSize() (int, int) {
	return int(float64(f.Width)*f.PixelRatio + 0.5), int(float64(f.Height)*f.PixelRatio + 0.5)
}

// Rasterizer captures a visual tree into an encoded PNG
type Rasterizer interface {
	Rasterize(ctx context.Context, tree *entities.VisualTree, frame Frame) ([]byte, error)
}

// SlideRenderer composes the visual tree of one slide
type SlideRenderer interface {
	Render(slide *entities.Slide, style entities.ResolvedStyle, meta entities.CarouselMeta) *entities.VisualTree
}

// Archive is a finished export bundle
type Archive struct {
	Name        string
	ContentType string
	Data        []byte
	Slides      int
}

// ExportPipeline captures rendered slides and bundles them into one archive
type ExportPipeline interface {
	// ExportAll rasterizes trees in slide order and archives them in format
	ExportAll(ctx context.Context, trees []*entities.VisualTree, format, topic string) (*Archive, error)

	// ExportCaptures archives slides already captured as PNG data URIs
	ExportCaptures(ctx context.Context, captures []string, format, topic string) (*Archive, error)
}
