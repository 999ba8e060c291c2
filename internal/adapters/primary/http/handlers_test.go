package http

import (
	"archive/zip"
	"bytes"
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fredcamaral/carouselkit/internal/adapters/secondary/export"
	"github.com/fredcamaral/carouselkit/internal/adapters/secondary/generator"
	"github.com/fredcamaral/carouselkit/internal/domain/entities"
	"github.com/fredcamaral/carouselkit/internal/domain/ports"
	"github.com/fredcamaral/carouselkit/internal/domain/services"
)

func TestHandlers_Carousel(t *testing.T) {
	t.Run("snapshot of an empty document", func(t *testing.T) {
		env := newTestEnv(t)

		rec := env.do(t, http.MethodGet, "/api/carousel", nil)
		require.Equal(t, http.StatusOK, rec.Code)

		got := decode[CarouselResponse](t, rec)
		assert.Equal(t, entities.DefaultCarouselConfig(), got.Config)
		assert.Empty(t, got.Slides)
		assert.False(t, got.Busy.Generating)
		assert.False(t, got.Exporting)
	})

	t.Run("config update merges fields", func(t *testing.T) {
		env := newTestEnv(t)

		rec := env.do(t, http.MethodPut, "/api/carousel/config", map[string]interface{}{
			"topic":     "  Morning routines  ",
			"theme":     "retro_paper",
			"toneLevel": 3,
			"username":  "maker",
		})
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

		got := decode[CarouselResponse](t, rec)
		assert.Equal(t, "Morning routines", got.Config.Topic)
		assert.Equal(t, entities.Theme("retro_paper"), got.Config.Theme)
		assert.Equal(t, entities.ToneExpert, got.Config.Tone)
		assert.Equal(t, 5, got.Config.SlideCount)
		assert.Equal(t, "maker", got.Username)
	})

	tests := []struct {
		name   string
		body   interface{}
		status int
	}{
		{"unknown theme", map[string]interface{}{"theme": "vaporwave"}, http.StatusUnprocessableEntity},
		{"slide count too small", map[string]interface{}{"slideCount": 2}, http.StatusUnprocessableEntity},
		{"slide count too large", map[string]interface{}{"slideCount": 11}, http.StatusUnprocessableEntity},
		{"unknown tone", map[string]interface{}{"tone": "sarcastic"}, http.StatusUnprocessableEntity},
		{"unknown field", map[string]interface{}{"colour": "red"}, http.StatusBadRequest},
		{"malformed body", "{", http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newTestEnv(t)
			rec := env.do(t, http.MethodPut, "/api/carousel/config", tt.body)
			assert.Equal(t, tt.status, rec.Code, rec.Body.String())
			assert.Equal(t, entities.DefaultCarouselConfig(), env.doc.Config())
		})
	}

	t.Run("replace slides renumbers", func(t *testing.T) {
		env := newTestEnv(t)

		rec := env.do(t, http.MethodPut, "/api/carousel/slides", SlidesRequest{Slides: []entities.Slide{
			{Number: 7, Title: "A"},
			{Number: 9, Title: "B"},
		}})
		require.Equal(t, http.StatusOK, rec.Code)

		got := decode[CarouselResponse](t, rec)
		require.Len(t, got.Slides, 2)
		assert.Equal(t, 1, got.Slides[0].Number)
		assert.Equal(t, 2, got.Slides[1].Number)
		assert.Len(t, got.Styles, 2)
	})
}

func TestHandlers_Generate(t *testing.T) {
	t.Run("generates the requested slides", func(t *testing.T) {
		env := newTestEnv(t)

		rec := env.do(t, http.MethodPost, "/api/carousel/generate", map[string]interface{}{
			"topic":      "Sleep better",
			"slideCount": 4,
		})
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

		got := decode[CarouselResponse](t, rec)
		require.Len(t, got.Slides, 4)
		assert.Equal(t, "Point 1", got.Slides[0].Title)
		assert.Empty(t, got.Slides[0].Content, "cover has no body")
		assert.Equal(t, "About Sleep better", got.Slides[1].Content)
		assert.Equal(t, "Sleep better", got.Config.Topic)
	})

	t.Run("empty topic", func(t *testing.T) {
		env := newTestEnv(t)

		rec := env.do(t, http.MethodPost, "/api/carousel/generate", map[string]interface{}{"topic": "   "})
		assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
		assert.Equal(t, "Enter a topic first", decode[ErrorResponse](t, rec).Message)
		assert.Zero(t, env.generator.calls)
	})

	t.Run("generator failure keeps the previous slides", func(t *testing.T) {
		env := newTestEnv(t)
		env.seed(t, 3)
		env.generator.err = errors.New("upstream exploded")

		rec := env.do(t, http.MethodPost, "/api/carousel/generate", map[string]interface{}{"topic": "New topic"})
		assert.Equal(t, http.StatusBadGateway, rec.Code)

		resp := decode[ErrorResponse](t, rec)
		assert.Equal(t, "generator_failed", resp.Code)
		assert.NotContains(t, resp.Message, "exploded")
		assert.Equal(t, 3, env.doc.Len())
	})

	t.Run("rejected credentials", func(t *testing.T) {
		env := newTestEnv(t)
		env.generator.err = &generator.APIError{StatusCode: http.StatusUnauthorized}

		rec := env.do(t, http.MethodPost, "/api/carousel/generate", map[string]interface{}{"topic": "Sleep"})
		assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	})

	t.Run("no generator configured", func(t *testing.T) {
		env := newTestEnv(t, func(d *Dependencies) {
			d.Orchestrator = services.NewOrchestrator(d.Document, nil, nil)
		})

		rec := env.do(t, http.MethodPost, "/api/carousel/generate", map[string]interface{}{"topic": "Sleep"})
		assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
		assert.Equal(t, "generator_unavailable", decode[ErrorResponse](t, rec).Code)
	})
}

func TestHandlers_Slides(t *testing.T) {
	t.Run("insert after index", func(t *testing.T) {
		env := newTestEnv(t)
		env.seed(t, 3)

		rec := env.do(t, http.MethodPost, "/api/slides", InsertRequest{AfterIndex: 0})
		require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

		slide := decode[entities.Slide](t, rec)
		assert.Equal(t, 2, slide.Number)
		assert.Equal(t, 4, env.doc.Len())
	})

	t.Run("insert out of range", func(t *testing.T) {
		env := newTestEnv(t)
		env.seed(t, 3)

		rec := env.do(t, http.MethodPost, "/api/slides", InsertRequest{AfterIndex: 9})
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})

	t.Run("patch a field", func(t *testing.T) {
		env := newTestEnv(t)
		env.seed(t, 3)

		rec := env.do(t, http.MethodPatch, "/api/slides/1", FieldRequest{Field: "title", Value: "New *title*"})
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		assert.Equal(t, "New *title*", decode[entities.Slide](t, rec).Title)

		slide, err := env.doc.Slide(1)
		require.NoError(t, err)
		assert.Equal(t, "New *title*", slide.Title)
	})

	t.Run("patch an unknown field", func(t *testing.T) {
		env := newTestEnv(t)
		env.seed(t, 3)

		rec := env.do(t, http.MethodPatch, "/api/slides/1", FieldRequest{Field: "subtitle", Value: "x"})
		assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	})

	t.Run("read-only editor", func(t *testing.T) {
		env := newTestEnv(t, func(d *Dependencies) {
			d.Editor = services.NewEditor(d.Document, true)
		})
		env.seed(t, 3)

		rec := env.do(t, http.MethodPatch, "/api/slides/0", FieldRequest{Field: "title", Value: "x"})
		assert.Equal(t, http.StatusForbidden, rec.Code)
	})

	t.Run("delete and the last slide guard", func(t *testing.T) {
		env := newTestEnv(t)
		env.seed(t, 2)

		rec := env.do(t, http.MethodDelete, "/api/slides/0", nil)
		assert.Equal(t, http.StatusNoContent, rec.Code)
		assert.Equal(t, 1, env.doc.Len())

		rec = env.do(t, http.MethodDelete, "/api/slides/0", nil)
		assert.Equal(t, http.StatusConflict, rec.Code)
		assert.Equal(t, 1, env.doc.Len())
	})

	t.Run("duplicate", func(t *testing.T) {
		env := newTestEnv(t)
		env.seed(t, 3)

		rec := env.do(t, http.MethodPost, "/api/slides/2/duplicate", nil)
		require.Equal(t, http.StatusCreated, rec.Code)

		slide := decode[entities.Slide](t, rec)
		assert.Equal(t, 4, slide.Number)
		assert.Equal(t, "Slide 3", slide.Title)
	})

	t.Run("non numeric index does not match", func(t *testing.T) {
		env := newTestEnv(t)
		rec := env.do(t, http.MethodDelete, "/api/slides/first", nil)
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})
}

func TestHandlers_Generation(t *testing.T) {
	t.Run("regenerate keeps the slide number", func(t *testing.T) {
		env := newTestEnv(t)
		env.seed(t, 3)

		rec := env.do(t, http.MethodPost, "/api/slides/1/regenerate", nil)
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

		slide := decode[entities.Slide](t, rec)
		assert.Equal(t, 2, slide.Number)
		assert.Equal(t, "Rewritten Slide 2", slide.Title)
	})

	t.Run("regenerate out of range", func(t *testing.T) {
		env := newTestEnv(t)
		env.seed(t, 3)

		rec := env.do(t, http.MethodPost, "/api/slides/5/regenerate", nil)
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})

	t.Run("background becomes the slide style", func(t *testing.T) {
		env := newTestEnv(t)
		env.seed(t, 3)

		rec := env.do(t, http.MethodPost, "/api/slides/0/background", nil)
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

		got := decode[BackgroundResponse](t, rec)
		assert.Equal(t, 1, got.Number)
		assert.Equal(t, "data:image/png;base64,AAAA", got.Background)

		style, ok := env.doc.Style(1)
		require.True(t, ok)
		assert.Equal(t, entities.BackgroundImage, style.BackgroundType)
	})

	t.Run("background failure", func(t *testing.T) {
		env := newTestEnv(t)
		env.seed(t, 3)
		env.generator.err = errors.New("quota")

		rec := env.do(t, http.MethodPost, "/api/slides/0/background", nil)
		assert.Equal(t, http.StatusBadGateway, rec.Code)
	})
}

func TestHandlers_Styles(t *testing.T) {
	t.Run("patch one slide", func(t *testing.T) {
		env := newTestEnv(t)
		env.seed(t, 3)

		rec := env.do(t, http.MethodPatch, "/api/styles/2", map[string]interface{}{"textColor": "#ff0000", "fontSize": "large"})
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

		style := decode[entities.SlideStyle](t, rec)
		assert.Equal(t, "#ff0000", style.TextColor)
		assert.Equal(t, entities.FontSize("large"), style.FontSize)

		other, _ := env.doc.Style(1)
		assert.NotEqual(t, "#ff0000", other.TextColor)
	})

	t.Run("patch everything", func(t *testing.T) {
		env := newTestEnv(t)
		env.seed(t, 3)

		rec := env.do(t, http.MethodPatch, "/api/styles", map[string]interface{}{"textAlign": "center"})
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

		styles := decode[map[int]entities.SlideStyle](t, rec)
		require.Len(t, styles, 3)
		for n, style := range styles {
			assert.Equal(t, entities.TextAlign("center"), style.TextAlign, "slide %d", n)
		}
	})

	tests := []struct {
		name   string
		path   string
		body   interface{}
		status int
	}{
		{"invalid font size", "/api/styles/1", map[string]interface{}{"fontSize": "huge"}, http.StatusUnprocessableEntity},
		{"opacity out of range", "/api/styles", map[string]interface{}{"overlayOpacity": 1.5}, http.StatusUnprocessableEntity},
		{"unknown slide", "/api/styles/9", map[string]interface{}{"textColor": "#fff"}, http.StatusNotFound},
		{"unknown property", "/api/styles/1", map[string]interface{}{"border": "1px"}, http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newTestEnv(t)
			env.seed(t, 3)
			rec := env.do(t, http.MethodPatch, tt.path, tt.body)
			assert.Equal(t, tt.status, rec.Code, rec.Body.String())
		})
	}
}

func TestHandlers_PreviewAndImage(t *testing.T) {
	env := newTestEnv(t)
	env.seed(t, 3)

	rec := env.do(t, http.MethodGet, "/api/slides/1/preview", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "text/html; charset=utf-8", rec.Header().Get("Content-Type"))
	assert.Contains(t, rec.Body.String(), `data-number="2"`)

	rec = env.do(t, http.MethodGet, "/api/slides/7/preview", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "ck-placeholder")

	rec = env.do(t, http.MethodGet, "/api/slides/0/image", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "image/png", rec.Header().Get("Content-Type"))
	assert.True(t, bytes.HasPrefix(rec.Body.Bytes(), []byte("\x89PNG")))

	rec = env.do(t, http.MethodGet, "/api/slides/7/image", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestHandlers_Export(t *testing.T) {
	t.Run("zip download", func(t *testing.T) {
		env := newTestEnv(t)
		env.seed(t, 3)

		rec := env.do(t, http.MethodPost, "/api/export", nil)
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		assert.Equal(t, "application/zip", rec.Header().Get("Content-Type"))
		assert.Equal(t, "3", rec.Header().Get("X-Slide-Count"))
		assert.Contains(t, rec.Header().Get("Content-Disposition"), "attachment")

		zr, err := zip.NewReader(bytes.NewReader(rec.Body.Bytes()), int64(rec.Body.Len()))
		require.NoError(t, err)
		names := make([]string, len(zr.File))
		for i, f := range zr.File {
			names[i] = f.Name
		}
		assert.Equal(t, []string{"slide-1.png", "slide-2.png", "slide-3.png"}, names)
	})

	t.Run("pdf download", func(t *testing.T) {
		env := newTestEnv(t)
		env.seed(t, 3)

		rec := env.do(t, http.MethodPost, "/api/export?format=pdf", nil)
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		assert.Equal(t, "application/pdf", rec.Header().Get("Content-Type"))
		assert.True(t, strings.HasPrefix(rec.Body.String(), "%PDF"))
	})

	t.Run("unsupported format", func(t *testing.T) {
		env := newTestEnv(t)
		env.seed(t, 3)

		rec := env.do(t, http.MethodPost, "/api/export?format=gif", nil)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Equal(t, "unsupported_format", decode[ErrorResponse](t, rec).Code)
	})

	t.Run("nothing to export", func(t *testing.T) {
		env := newTestEnv(t)

		rec := env.do(t, http.MethodPost, "/api/export", nil)
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})

	t.Run("captures", func(t *testing.T) {
		env := newTestEnv(t)
		env.seed(t, 3)

		png, err := solidRasterizer{}.Rasterize(context.Background(), nil, ports.Frame{})
		require.NoError(t, err)
		uri := "data:image/png;base64," + base64.StdEncoding.EncodeToString(png)

		rec := env.do(t, http.MethodPost, "/api/export/captures", CapturesRequest{Captures: []string{uri, uri}})
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		assert.Equal(t, "2", rec.Header().Get("X-Slide-Count"))
	})

	t.Run("invalid capture", func(t *testing.T) {
		env := newTestEnv(t)

		rec := env.do(t, http.MethodPost, "/api/export/captures", CapturesRequest{Captures: []string{"not a data uri"}})
		assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	})
}

func TestHandlers_Library(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodPost, "/api/library", nil)
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code, "empty document")

	env.seed(t, 3)
	rec = env.do(t, http.MethodPost, "/api/library", nil)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	saved := decode[entities.SavedCarousel](t, rec)
	assert.Equal(t, "Sleep better", saved.Topic)
	assert.NotEmpty(t, saved.ID)

	rec = env.do(t, http.MethodGet, "/api/library", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decode[[]entities.SavedCarousel](t, rec), 1)

	rec = env.do(t, http.MethodGet, "/api/library/"+saved.ID, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, saved.ID, decode[entities.SavedCarousel](t, rec).ID)

	env.doc.SetSlides([]entities.Slide{{Number: 1, Title: "Scratch"}})
	rec = env.do(t, http.MethodPost, fmt.Sprintf("/api/library/%s/restore", saved.ID), nil)
	require.Equal(t, http.StatusOK, rec.Code)
	restored := decode[CarouselResponse](t, rec)
	assert.Len(t, restored.Slides, 3)
	assert.Equal(t, "Slide 1", restored.Slides[0].Title)

	rec = env.do(t, http.MethodDelete, "/api/library/"+saved.ID, nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)

	for _, method := range []string{http.MethodGet, http.MethodDelete} {
		rec = env.do(t, method, "/api/library/"+saved.ID, nil)
		assert.Equal(t, http.StatusNotFound, rec.Code, method)
	}
	rec = env.do(t, http.MethodPost, "/api/library/"+saved.ID+"/restore", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestHandlers_CatalogAndHealth(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodGet, "/api/catalog", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	catalog := decode[CatalogResponse](t, rec)
	assert.Len(t, catalog.Themes, len(entities.Themes()))
	assert.Len(t, catalog.Tones, len(entities.ToneScale))
	assert.Equal(t, []string{"zip", "pdf"}, catalog.Formats)
	assert.Equal(t, SlideCountRange{Min: 3, Max: 10}, catalog.SlideCount)
	assert.NotEmpty(t, catalog.Palette.Fonts)

	rec = env.do(t, http.MethodGet, "/health", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	health := decode[map[string]interface{}](t, rec)
	assert.Equal(t, "ok", health["status"])
	assert.EqualValues(t, 0, health["slides"])
}

func TestStatusFor(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
	}{
		{"bad request", badRequest{errors.New("x")}, http.StatusBadRequest},
		{"index", fmt.Errorf("wrap: %w", entities.ErrSlideIndexOutOfRange), http.StatusNotFound},
		{"carousel", entities.ErrCarouselNotFound, http.StatusNotFound},
		{"minimum", entities.ErrMinimumSlides, http.StatusConflict},
		{"export busy", services.ErrExportInProgress, http.StatusConflict},
		{"superseded", services.ErrSuperseded, http.StatusConflict},
		{"read only", entities.ErrReadOnly, http.StatusForbidden},
		{"configuration", &services.GenerationError{Kind: services.KindConfiguration}, http.StatusServiceUnavailable},
		{"collaborator", &services.GenerationError{Kind: services.KindCollaborator}, http.StatusBadGateway},
		{"credentials", entities.ErrMissingCredentials, http.StatusServiceUnavailable},
		{"invalid field", entities.ErrInvalidField, http.StatusUnprocessableEntity},
		{"export validation", &export.ExportError{Type: export.ErrorTypeValidation}, http.StatusUnprocessableEntity},
		{"export raster", &export.ExportError{Type: export.ErrorTypeRaster}, http.StatusInternalServerError},
		{"validation", validationError(errors.New("bad")), http.StatusUnprocessableEntity},
		{"unknown", errors.New("boom"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, _ := statusFor(tt.err)
			assert.Equal(t, tt.status, status)
		})
	}
}
