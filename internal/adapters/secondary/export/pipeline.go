package export

import (
	"context"
	"errors"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/fredcamaral/carouselkit/internal/domain/entities"
	"github.com/fredcamaral/carouselkit/internal/domain/ports"
)

// Metrics receives pipeline measurements
type Metrics interface {
	ObserveSlide(duration time.Duration, err error)
	ObserveExport(format string, slides int, duration time.Duration, err error)
}

type nopMetrics struct{}

func (nopMetrics) ObserveSlide(time.Duration, error)               {}
func (nopMetrics) ObserveExport(string, int, time.Duration, error) {}

// Pipeline captures every slide on the stage and bundles the rasters.
// Captures may run concurrently; results land in a slice indexed by slide
// position, so archive order never depends on completion order.
type Pipeline struct {
	stage       *Stage
	rasterizer  ports.Rasterizer
	archivers   map[string]Archiver
	concurrency int
	logger      ports.Logger
	metrics     Metrics
}

// Option configures a Pipeline
type Option func(*Pipeline)

// WithConcurrency bounds the number of parallel captures
func WithConcurrency(n int) Option {
	return func(p *Pipeline) {
		if n > 0 {
			p.concurrency = n
		}
	}
}

// WithLogger sets the pipeline logger
func WithLogger(logger ports.Logger) Option {
	return func(p *Pipeline) {
		if logger != nil {
			p.logger = logger
		}
	}
}

// WithMetrics sets the metrics recorder
func WithMetrics(m Metrics) Option {
	return func(p *Pipeline) {
		if m != nil {
			p.metrics = m
		}
	}
}

// WithArchiver registers an archiver under its extension
func WithArchiver(a Archiver) Option {
	return func(p *Pipeline) {
		p.archivers[a.Extension()] = a
	}
}

// NewPipeline creates a pipeline with zip and pdf archivers registered
func NewPipeline(stage *Stage, rasterizer ports.Rasterizer, opts ...Option) *Pipeline {
	p := &Pipeline{
		stage:       stage,
		rasterizer:  rasterizer,
		archivers:   make(map[string]Archiver),
		concurrency: 1,
		logger:      ports.NopLogger{},
		metrics:     nopMetrics{},
	}
	WithArchiver(NewZipArchiver())(p)
	WithArchiver(NewPDFArchiver())(p)
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Formats lists the registered archive formats
func (p *Pipeline) Formats() []string {
	out := make([]string, 0, len(p.archivers))
	for _, f := range []string{FormatZip, FormatPDF} {
		if _, ok := p.archivers[f]; ok {
			out = append(out, f)
		}
	}
	return out
}

// ExportAll implements ports.ExportPipeline. Any single failure aborts the
// export; the stage is released on every path.
func (p *Pipeline) ExportAll(ctx context.Context, trees []*entities.VisualTree, format, topic string) (archive *ports.Archive, err error) {
	start := time.Now()
	defer func() {
		p.metrics.ObserveExport(format, len(trees), time.Since(start), err)
	}()

	archiver, err := p.archiver(format)
	if err != nil {
		return nil, err
	}
	if len(trees) == 0 {
		return nil, &ExportError{
			Type:    ErrorTypeValidation,
			Message: "nothing to export",
			Code:    "NO_SLIDES",
		}
	}

	release := p.stage.Show()
	defer release()

	frame, err := p.stage.Frame()
	if err != nil {
		return nil, &ExportError{
			Type:    ErrorTypeStage,
			Message: "render stage cannot be measured",
			Code:    "STAGE_UNAVAILABLE",
			Cause:   err,
		}
	}

	pngs, err := p.captureAll(ctx, trees, frame)
	if err != nil {
		return nil, err
	}

	return p.bundle(archiver, pngs, frame, topic)
}

// Capture rasterizes a single tree on the stage
func (p *Pipeline) Capture(ctx context.Context, tree *entities.VisualTree) ([]byte, error) {
	if tree == nil {
		return nil, rasterError(0, errors.New("slide was not rendered"))
	}

	release := p.stage.Show()
	defer release()

	frame, err := p.stage.Frame()
	if err != nil {
		return nil, &ExportError{
			Type:    ErrorTypeStage,
			Message: "render stage cannot be measured",
			Code:    "STAGE_UNAVAILABLE",
			Cause:   err,
		}
	}

	started := time.Now()
	data, err := p.rasterizer.Rasterize(ctx, tree, frame)
	p.metrics.ObserveSlide(time.Since(started), err)
	if err != nil {
		return nil, rasterError(tree.Number, err)
	}
	return data, nil
}

func (p *Pipeline) captureAll(ctx context.Context, trees []*entities.VisualTree, frame ports.Frame) ([][]byte, error) {
	pngs := make([][]byte, len(trees))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(p.concurrency)

	for i, tree := range trees {
		g.Go(func() error {
			number := i + 1
			if tree == nil {
				return rasterError(number, errors.New("slide was not rendered"))
			}

			started := time.Now()
			data, err := p.rasterizer.Rasterize(gctx, tree, frame)
			p.metrics.ObserveSlide(time.Since(started), err)
			if err != nil {
				return rasterError(number, err)
			}
			pngs[i] = data
			p.logger.Debug("slide captured", "slide", number, "bytes", len(data))
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, &ExportError{
				Type:    ErrorTypeTimeout,
				Message: "export cancelled",
				Code:    "CANCELLED",
				Cause:   ctxErr,
			}
		}
		p.logger.Error("export aborted", "error", err)
		return nil, err
	}
	return pngs, nil
}

// ExportCaptures implements ports.ExportPipeline for PNG data URIs captured
// elsewhere. Captures are archived in the order given.
func (p *Pipeline) ExportCaptures(ctx context.Context, captures []string, format, topic string) (archive *ports.Archive, err error) {
	start := time.Now()
	defer func() {
		p.metrics.ObserveExport(format, len(captures), time.Since(start), err)
	}()

	archiver, err := p.archiver(format)
	if err != nil {
		return nil, err
	}
	if len(captures) == 0 {
		return nil, &ExportError{
			Type:    ErrorTypeValidation,
			Message: "nothing to export",
			Code:    "NO_SLIDES",
		}
	}

	pngs := make([][]byte, len(captures))
	for i, capture := range captures {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		data, err := DecodeDataURI(capture)
		if err != nil {
			return nil, &ExportError{
				Type:    ErrorTypeValidation,
				Message: "invalid capture",
				Details: fmt.Sprintf("slide %d", i+1),
				Code:    "INVALID_CAPTURE",
				Cause:   err,
			}
		}
		pngs[i] = data
	}

	w, h := p.stage.Size()
	return p.bundle(archiver, pngs, ports.Frame{Width: w, Height: h, PixelRatio: 1}, topic)
}

func (p *Pipeline) archiver(format string) (Archiver, error) {
	if format == "" {
		format = FormatZip
	}
	a, ok := p.archivers[format]
	if !ok {
		return nil, &ExportError{
			Type:    ErrorTypeConfiguration,
			Message: "unsupported export format",
			Details: format,
			Code:    "UNSUPPORTED_FORMAT",
		}
	}
	return a, nil
}

func (p *Pipeline) bundle(archiver Archiver, pngs [][]byte, frame ports.Frame, topic string) (*ports.Archive, error) {
	data, err := archiver.Archive(pngs, frame)
	if err != nil {
		return nil, &ExportError{
			Type:    ErrorTypeArchive,
			Message: "failed to build archive",
			Code:    "ARCHIVE_FAILED",
			Cause:   err,
		}
	}

	archive := &ports.Archive{
		Name:        ArchiveName(topic, archiver.Extension()),
		ContentType: archiver.ContentType(),
		Data:        data,
		Slides:      len(pngs),
	}
	p.logger.Info("export complete", "name", archive.Name, "slides", archive.Slides, "bytes", len(data))
	return archive, nil
}
