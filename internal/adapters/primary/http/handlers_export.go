package http

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/fredcamaral/carouselkit/internal/domain/services"
)

// CapturesRequest archives slides captured by the client as PNG data URIs
type CapturesRequest struct {
	Captures []string `json:"captures"`
	Format   string   `json:"format,omitempty"`
}

// handlePreview serves the HTML fragment of one slide
func (s *Server) handlePreview(w http.ResponseWriter, r *http.Request) {
	index, err := pathInt(r, "index")
	if err != nil {
		s.handleError(w, r, err)
		return
	}

	html, err := s.preview.Render(s.exporter.RenderSlide(index), s.stageWidth, s.stageHeight)
	if err != nil {
		s.handleError(w, r, err)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")
	_, _ = w.Write(html)
}

// handleSlideImage rasterizes one slide to PNG
func (s *Server) handleSlideImage(w http.ResponseWriter, r *http.Request) {
	index, err := pathInt(r, "index")
	if err != nil {
		s.handleError(w, r, err)
		return
	}
	if _, err := s.doc.Slide(index); err != nil {
		s.handleError(w, r, err)
		return
	}

	data, err := s.capturer.Capture(r.Context(), s.exporter.RenderSlide(index))
	if err != nil {
		s.handleError(w, r, err)
		return
	}

	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Content-Length", strconv.Itoa(len(data)))
	w.Header().Set("Cache-Control", "no-store")
	_, _ = w.Write(data)
}

// handleExport archives every slide and sends it as a download
func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	result, err := s.exporter.Export(r.Context(), r.URL.Query().Get("format"))
	if err != nil {
		s.handleError(w, r, err)
		return
	}
	s.writeArchive(w, result)
}

// handleExportCaptures archives client captured slides
func (s *Server) handleExportCaptures(w http.ResponseWriter, r *http.Request) {
	var req CapturesRequest
	if err := decodeJSON(r, &req); err != nil {
		s.handleError(w, r, err)
		return
	}

	format := req.Format
	if format == "" {
		format = r.URL.Query().Get("format")
	}
	result, err := s.exporter.ExportCaptures(r.Context(), req.Captures, format)
	if err != nil {
		s.handleError(w, r, err)
		return
	}
	s.writeArchive(w, result)
}

func (s *Server) writeArchive(w http.ResponseWriter, result *services.ExportResult) {
	archive := result.Archive
	w.Header().Set("Content-Type", archive.ContentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", archive.Name))
	w.Header().Set("Content-Length", strconv.Itoa(len(archive.Data)))
	w.Header().Set("X-Slide-Count", strconv.Itoa(archive.Slides))
	if result.Location != "" {
		w.Header().Set("X-Export-Location", result.Location)
	}
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(archive.Data)
}
