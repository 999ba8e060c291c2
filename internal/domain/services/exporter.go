package services

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/fredcamaral/carouselkit/internal/domain/entities"
	"github.com/fredcamaral/carouselkit/internal/domain/ports"
)

// ErrExportInProgress is returned when an export is already running
var ErrExportInProgress = errors.New("export already in progress")

// ExportResult is a finished export and where the sink put it
type ExportResult struct {
	Archive  *ports.Archive
	Location string
}

// Exporter renders the document's slides and hands them to the export
// pipeline. It is the read-only side of the editor: templates never enter
// editing while snapshotting.
type Exporter struct {
	doc      *Document
	renderer ports.SlideRenderer
	pipeline ports.ExportPipeline
	sink     ports.ArchiveSink
	logger   ports.Logger

	mu        sync.Mutex
	exporting bool
}

// NewExporter creates an exporter. A nil sink leaves saving to the caller.
func NewExporter(doc *Document, renderer ports.SlideRenderer, pipeline ports.ExportPipeline, sink ports.ArchiveSink, logger ports.Logger) *Exporter {
	if logger == nil {
		logger = ports.NopLogger{}
	}
	return &Exporter{
		doc:      doc,
		renderer: renderer,
		pipeline: pipeline,
		sink:     sink,
		logger:   logger,
	}
}

// RenderState composes the visual tree of every slide of state in order
func (e *Exporter) RenderState(state DocumentState) []*entities.VisualTree {
	meta := entities.CarouselMeta{
		Topic:       state.Config.Topic,
		Username:    state.Username,
		TotalSlides: len(state.Slides),
	}

	trees := make([]*entities.VisualTree, len(state.Slides))
	for i := range state.Slides {
		slide := state.Slides[i]
		var override *entities.SlideStyle
		if style, ok := state.Styles[slide.Number]; ok {
			override = &style
		}
		trees[i] = e.renderer.Render(&slide, ResolveStyle(state.Config.Theme, slide.Number, override), meta)
	}
	return trees
}

// RenderSlide composes the slide at index. An index past the end renders
// the theme placeholder.
func (e *Exporter) RenderSlide(index int) *entities.VisualTree {
	state := e.doc.State()
	meta := e.doc.Meta()
	if index < 0 || index >= len(state.Slides) {
		return e.renderer.Render(nil, ResolveStyle(state.Config.Theme, 0, nil), meta)
	}

	slide := state.Slides[index]
	var override *entities.SlideStyle
	if style, ok := state.Styles[slide.Number]; ok {
		override = &style
	}
	return e.renderer.Render(&slide, ResolveStyle(state.Config.Theme, slide.Number, override), meta)
}

// Export archives the current document in format and saves it to the sink
func (e *Exporter) Export(ctx context.Context, format string) (*ExportResult, error) {
	return e.ExportState(ctx, e.doc.State(), format)
}

// ExportState archives a detached document snapshot
func (e *Exporter) ExportState(ctx context.Context, state DocumentState, format string) (*ExportResult, error) {
	if len(state.Slides) == 0 {
		return nil, fmt.Errorf("export: %w", entities.ErrSlideNotFound)
	}

	return e.run(ctx, func() (*ports.Archive, error) {
		return e.pipeline.ExportAll(ctx, e.RenderState(state), format, state.Config.Topic)
	})
}

// ExportCaptures archives PNG data URIs captured by a client
func (e *Exporter) ExportCaptures(ctx context.Context, captures []string, format string) (*ExportResult, error) {
	topic := e.doc.Config().Topic
	return e.run(ctx, func() (*ports.Archive, error) {
		return e.pipeline.ExportCaptures(ctx, captures, format, topic)
	})
}

// IsExporting reports whether an export is running
func (e *Exporter) IsExporting() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.exporting
}

func (e *Exporter) run(ctx context.Context, build func() (*ports.Archive, error)) (*ExportResult, error) {
	e.mu.Lock()
	if e.exporting {
		e.mu.Unlock()
		return nil, ErrExportInProgress
	}
	e.exporting = true
	e.mu.Unlock()
	defer func() {
		e.mu.Lock()
		e.exporting = false
		e.mu.Unlock()
	}()

	archive, err := build()
	if err != nil {
		e.logger.Error("export failed", "error", err)
		return nil, err
	}

	result := &ExportResult{Archive: archive}
	if e.sink == nil {
		return result, nil
	}

	location, err := e.sink.Save(ctx, archive.Name, archive.ContentType, bytes.NewReader(archive.Data))
	if err != nil {
		e.logger.Error("saving export failed", "name", archive.Name, "error", err)
		return nil, fmt.Errorf("saving %s: %w", archive.Name, err)
	}
	result.Location = location
	e.logger.Info("export saved", "location", location, "slides", archive.Slides)
	return result, nil
}
