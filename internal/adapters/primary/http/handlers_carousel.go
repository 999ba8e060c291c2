package http

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/fredcamaral/carouselkit/internal/domain/entities"
	"github.com/fredcamaral/carouselkit/internal/domain/ports"
	"github.com/fredcamaral/carouselkit/internal/domain/services"
)

// ConfigRequest is a partial carousel configuration. Nil fields keep the
// current value. ToneLevel selects the nearest tone on the slider scale.
type ConfigRequest struct {
	Topic      *string `json:"topic,omitempty"`
	SlideCount *int    `json:"slideCount,omitempty"`
	Theme      *string `json:"theme,omitempty"`
	Tone       *string `json:"tone,omitempty"`
	ToneLevel  *int    `json:"toneLevel,omitempty"`
	Username   *string `json:"username,omitempty"`
}

// GenerateRequest starts a generation with optional config changes
type GenerateRequest struct {
	ConfigRequest
	CTA string `json:"cta,omitempty"`
}

// SlidesRequest replaces every slide
type SlidesRequest struct {
	Slides []entities.Slide `json:"slides"`
}

// InsertRequest adds a blank slide after AfterIndex
type InsertRequest struct {
	AfterIndex int `json:"afterIndex"`
}

// FieldRequest edits one text field of a slide
type FieldRequest struct {
	Field string `json:"field"`
	Value string `json:"value"`
}

// BackgroundResponse carries a generated background
type BackgroundResponse struct {
	Number     int    `json:"number"`
	Background string `json:"background"`
}

// apply merges the request into config
func (c ConfigRequest) apply(config entities.CarouselConfig) (entities.CarouselConfig, error) {
	if c.Topic != nil {
		config.Topic = strings.TrimSpace(*c.Topic)
	}
	if c.SlideCount != nil {
		config.SlideCount = *c.SlideCount
	}
	if c.Theme != nil {
		theme, err := entities.ParseTheme(*c.Theme)
		if err != nil {
			return config, validationError(err)
		}
		config.Theme = theme
	}
	if c.ToneLevel != nil {
		config.Tone = entities.ToneFromSlider(*c.ToneLevel)
	}
	if c.Tone != nil {
		config.Tone = entities.Tone(*c.Tone)
	}
	if err := config.Validate(); err != nil {
		return config, validationError(err)
	}
	return config, nil
}

// handleGetCarousel serves the document snapshot
func (s *Server) handleGetCarousel(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.snapshot())
}

// handleSetConfig updates the carousel configuration
func (s *Server) handleSetConfig(w http.ResponseWriter, r *http.Request) {
	var req ConfigRequest
	if err := decodeJSON(r, &req); err != nil {
		s.handleError(w, r, err)
		return
	}

	config, err := req.apply(s.doc.Config())
	if err != nil {
		s.handleError(w, r, err)
		return
	}
	if err := s.doc.SetConfig(config); err != nil {
		s.handleError(w, r, validationError(err))
		return
	}
	if req.Username != nil {
		s.doc.SetUsername(*req.Username)
	}
	writeJSON(w, http.StatusOK, s.snapshot())
}

// handleGenerate runs a full carousel generation
func (s *Server) handleGenerate(w http.ResponseWriter, r *http.Request) {
	var req GenerateRequest
	if err := decodeJSON(r, &req); err != nil {
		s.handleError(w, r, err)
		return
	}

	config, err := req.apply(s.doc.Config())
	if err != nil {
		s.handleError(w, r, err)
		return
	}
	if req.Username != nil {
		s.doc.SetUsername(*req.Username)
	}

	s.publishBusy("generate", 0, true)
	err = s.orchestrator.Generate(r.Context(), config, req.CTA)
	s.publishBusy("generate", 0, false)
	if err != nil {
		s.publishFailure(0, err)
		s.handleError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, s.snapshot())
}

// handleSetSlides replaces the slide list
func (s *Server) handleSetSlides(w http.ResponseWriter, r *http.Request) {
	var req SlidesRequest
	if err := decodeJSON(r, &req); err != nil {
		s.handleError(w, r, err)
		return
	}
	s.doc.SetSlides(req.Slides)
	writeJSON(w, http.StatusOK, s.snapshot())
}

// handleInsertSlide adds a blank slide
func (s *Server) handleInsertSlide(w http.ResponseWriter, r *http.Request) {
	var req InsertRequest
	if err := decodeJSON(r, &req); err != nil {
		s.handleError(w, r, err)
		return
	}
	slide, err := s.doc.InsertSlide(req.AfterIndex)
	if err != nil {
		s.handleError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, slide)
}

// handleUpdateSlide edits one field through the editor
func (s *Server) handleUpdateSlide(w http.ResponseWriter, r *http.Request) {
	index, err := pathInt(r, "index")
	if err != nil {
		s.handleError(w, r, err)
		return
	}
	var req FieldRequest
	if err := decodeJSON(r, &req); err != nil {
		s.handleError(w, r, err)
		return
	}
	field, err := entities.ParseSlideField(req.Field)
	if err != nil {
		s.handleError(w, r, err)
		return
	}

	if err := s.editor.Edit(index+1, field, req.Value); err != nil {
		s.handleError(w, r, err)
		return
	}
	slide, err := s.doc.Slide(index)
	if err != nil {
		s.handleError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, slide)
}

// handleDeleteSlide removes a slide
func (s *Server) handleDeleteSlide(w http.ResponseWriter, r *http.Request) {
	index, err := pathInt(r, "index")
	if err != nil {
		s.handleError(w, r, err)
		return
	}
	if err := s.doc.DeleteSlide(index); err != nil {
		s.handleError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// handleDuplicateSlide copies a slide next to itself
func (s *Server) handleDuplicateSlide(w http.ResponseWriter, r *http.Request) {
	index, err := pathInt(r, "index")
	if err != nil {
		s.handleError(w, r, err)
		return
	}
	slide, err := s.doc.DuplicateSlide(index)
	if err != nil {
		s.handleError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, slide)
}

// handleRegenerateSlide rewrites a slide with the generator
func (s *Server) handleRegenerateSlide(w http.ResponseWriter, r *http.Request) {
	index, err := pathInt(r, "index")
	if err != nil {
		s.handleError(w, r, err)
		return
	}

	s.publishBusy("regenerate", index+1, true)
	slide, err := s.orchestrator.Regenerate(r.Context(), index)
	s.publishBusy("regenerate", index+1, false)
	if err != nil {
		if !errors.Is(err, services.ErrSuperseded) {
			s.publishFailure(index+1, err)
		}
		s.handleError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, slide)
}

// handleGenerateBackground creates a background image for a slide
func (s *Server) handleGenerateBackground(w http.ResponseWriter, r *http.Request) {
	index, err := pathInt(r, "index")
	if err != nil {
		s.handleError(w, r, err)
		return
	}

	s.publishBusy("background", index+1, true)
	uri, err := s.orchestrator.GenerateBackground(r.Context(), index)
	s.publishBusy("background", index+1, false)
	if err != nil {
		if !errors.Is(err, services.ErrSuperseded) {
			s.publishFailure(index+1, err)
		}
		s.handleError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, BackgroundResponse{Number: index + 1, Background: uri})
}

// handleUpdateStyle patches the style of one slide
func (s *Server) handleUpdateStyle(w http.ResponseWriter, r *http.Request) {
	number, err := pathInt(r, "number")
	if err != nil {
		s.handleError(w, r, err)
		return
	}
	var patch entities.StylePatch
	if err := decodeJSON(r, &patch); err != nil {
		s.handleError(w, r, err)
		return
	}
	if err := patch.Validate(); err != nil {
		s.handleError(w, r, validationError(err))
		return
	}

	style, err := s.doc.UpdateStyle(number, patch)
	if err != nil {
		s.handleError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, style)
}

// handleUpdateGlobalStyle patches every slide style
func (s *Server) handleUpdateGlobalStyle(w http.ResponseWriter, r *http.Request) {
	var patch entities.StylePatch
	if err := decodeJSON(r, &patch); err != nil {
		s.handleError(w, r, err)
		return
	}
	if err := patch.Validate(); err != nil {
		s.handleError(w, r, validationError(err))
		return
	}
	if err := s.doc.UpdateGlobalStyle(patch); err != nil {
		s.handleError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, s.doc.Styles())
}

// publishBusy tells clients a long running action started or ended
func (s *Server) publishBusy(action string, number int, running bool) {
	s.connMgr.Publish(ports.UpdateEvent{
		Type:        ports.EventTypeBusy,
		SlideNumber: number,
		Timestamp:   time.Now(),
		Data: map[string]interface{}{
			"action":  action,
			"running": running,
			"busy":    s.orchestrator.Busy(),
		},
	})
}

// publishFailure forwards the user facing message of a failed action
func (s *Server) publishFailure(number int, err error) {
	message := "Something went wrong"
	var genErr *services.GenerationError
	if errors.As(err, &genErr) {
		message = genErr.Message
	}
	if errors.Is(err, context.Canceled) {
		return
	}
	s.connMgr.Publish(ports.UpdateEvent{
		Type:        ports.EventTypeError,
		SlideNumber: number,
		Timestamp:   time.Now(),
		Data:        map[string]string{"message": message},
	})
}
