package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"

	"github.com/fredcamaral/carouselkit/internal/adapters/secondary/export"
	"github.com/fredcamaral/carouselkit/internal/domain/entities"
	"github.com/fredcamaral/carouselkit/internal/domain/services"
)

// ErrorResponse represents an error response
type ErrorResponse struct {
	Error   string    `json:"error"`
	Message string    `json:"message"`
	Code    string    `json:"code,omitempty"`
	Time    time.Time `json:"time"`
}

// CarouselResponse is the document snapshot served to editors
type CarouselResponse struct {
	Config    entities.CarouselConfig     `json:"config"`
	Username  string                      `json:"username"`
	Slides    []entities.Slide            `json:"slides"`
	Styles    map[int]entities.SlideStyle `json:"styles"`
	Busy      services.BusyState          `json:"busy"`
	Exporting bool                        `json:"exporting"`
}

// SlideCountRange is the accepted slide count window
type SlideCountRange struct {
	Min int `json:"min"`
	Max int `json:"max"`
}

// CatalogResponse lists everything a style or settings editor offers
type CatalogResponse struct {
	Themes     []entities.ThemeSpec `json:"themes"`
	Tones      []entities.ToneStop  `json:"tones"`
	Palette    entities.Palette     `json:"palette"`
	Formats    []string             `json:"formats"`
	SlideCount SlideCountRange      `json:"slideCount"`
}

// badRequest marks errors caused by a malformed request
type badRequest struct {
	err error
}

func (e badRequest) Error() string { return e.err.Error() }
func (e badRequest) Unwrap() error { return e.err }

// decodeJSON reads a JSON body into v. Unknown fields are rejected.
func decodeJSON(r *http.Request, v interface{}) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			return badRequest{fmt.Errorf("request body exceeds %d bytes", maxErr.Limit)}
		}
		return badRequest{fmt.Errorf("invalid JSON body: %w", err)}
	}
	return nil
}

// pathInt reads an integer route variable
func pathInt(r *http.Request, name string) (int, error) {
	raw := mux.Vars(r)[name]
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, badRequest{fmt.Errorf("%s must be an integer, got %q", name, raw)}
	}
	return v, nil
}

// statusFor maps domain and adapter errors to an HTTP status and error code
func statusFor(err error) (int, string) {
	var br badRequest
	var genErr *services.GenerationError
	var exportErr *export.ExportError

	switch {
	case errors.As(err, &br):
		return http.StatusBadRequest, "bad_request"
	case errors.Is(err, entities.ErrSlideIndexOutOfRange),
		errors.Is(err, entities.ErrSlideNotFound),
		errors.Is(err, entities.ErrCarouselNotFound):
		return http.StatusNotFound, "not_found"
	case errors.Is(err, entities.ErrMinimumSlides),
		errors.Is(err, services.ErrExportInProgress),
		errors.Is(err, services.ErrSuperseded):
		return http.StatusConflict, "conflict"
	case errors.Is(err, entities.ErrReadOnly):
		return http.StatusForbidden, "read_only"
	case errors.As(err, &genErr):
		switch genErr.Kind {
		case services.KindConfiguration:
			return http.StatusServiceUnavailable, "generator_unavailable"
		case services.KindValidation:
			return http.StatusUnprocessableEntity, "invalid_request"
		default:
			return http.StatusBadGateway, "generator_failed"
		}
	case errors.Is(err, entities.ErrMissingCredentials):
		return http.StatusServiceUnavailable, "generator_unavailable"
	case errors.Is(err, entities.ErrInvalidField),
		errors.Is(err, entities.ErrEmptyTopic):
		return http.StatusUnprocessableEntity, "invalid_request"
	case errors.As(err, &exportErr):
		switch exportErr.Type {
		case export.ErrorTypeValidation:
			return http.StatusUnprocessableEntity, "invalid_export"
		case export.ErrorTypeConfiguration:
			return http.StatusBadRequest, "unsupported_format"
		case export.ErrorTypeTimeout:
			return http.StatusServiceUnavailable, "export_cancelled"
		default:
			return http.StatusInternalServerError, "export_failed"
		}
	case errors.Is(err, errValidation):
		return http.StatusUnprocessableEntity, "invalid_request"
	}
	return http.StatusInternalServerError, "internal_error"
}

// errValidation tags request values the domain rejected
var errValidation = errors.New("validation failed")

func validationError(err error) error {
	return fmt.Errorf("%w: %w", errValidation, err)
}

// handleError writes err with a sanitized message. Server side failures
// never leak their cause.
func (s *Server) handleError(w http.ResponseWriter, r *http.Request, err error) {
	status, code := statusFor(err)

	message := err.Error()
	var genErr *services.GenerationError
	var exportErr *export.ExportError
	switch {
	case errors.As(err, &genErr):
		message = genErr.Message
	case errors.As(err, &exportErr) && status >= 500:
		message = exportErr.Message
	case status >= 500:
		message = "Internal server error"
	}

	if status >= 500 {
		s.logger.Error("request failed", "method", r.Method, "path", r.URL.Path, "status", status, "error", err)
	} else {
		s.logger.Debug("request rejected", "method", r.Method, "path", r.URL.Path, "status", status, "error", err)
	}
	writeError(w, status, code, message)
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, ErrorResponse{
		Error:   http.StatusText(status),
		Message: message,
		Code:    code,
		Time:    time.Now(),
	})
}

// writeJSON writes v as a JSON response
func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(status)
	if v == nil {
		return
	}
	_ = json.NewEncoder(w).Encode(v)
}

// snapshot builds the current document response
func (s *Server) snapshot() CarouselResponse {
	state := s.doc.State()
	return CarouselResponse{
		Config:    state.Config,
		Username:  state.Username,
		Slides:    state.Slides,
		Styles:    state.Styles,
		Busy:      s.orchestrator.Busy(),
		Exporting: s.exporter.IsExporting(),
	}
}

// handleCatalog serves themes, tones and the style presets
func (s *Server) handleCatalog(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, CatalogResponse{
		Themes:     entities.Themes(),
		Tones:      entities.ToneScale,
		Palette:    entities.DefaultPalette(),
		Formats:    []string{export.FormatZip, export.FormatPDF},
		SlideCount: SlideCountRange{Min: entities.MinSlideCount, Max: entities.MaxSlideCount},
	})
}

// handleHealth reports liveness and runtime health
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	status := map[string]interface{}{
		"status":      "ok",
		"connections": s.connMgr.Count(),
		"slides":      s.doc.Len(),
	}
	code := http.StatusOK
	if s.health != nil {
		for k, v := range s.health.HealthStatus() {
			status[k] = v
		}
		if !s.health.IsHealthy() {
			code = http.StatusServiceUnavailable
		}
	}
	writeJSON(w, code, status)
}
