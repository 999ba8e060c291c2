package generator

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/fredcamaral/carouselkit/internal/domain/entities"
	"github.com/fredcamaral/carouselkit/internal/domain/ports"
)

// maxResponseBytes bounds a generateContent response; image parts are base64
const maxResponseBytes = 32 << 20

// APIError is a non-2xx answer from the Gemini API
type APIError struct {
	StatusCode int
	Status     string
	Message    string
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("gemini API returned %d", e.StatusCode)
	}
	return fmt.Sprintf("gemini API returned %d: %s", e.StatusCode, e.Message)
}

// Unwrap maps rejected credentials to ErrMissingCredentials
func (e *APIError) Unwrap() error {
	if e.StatusCode == http.StatusUnauthorized || e.StatusCode == http.StatusForbidden {
		return entities.ErrMissingCredentials
	}
	return nil
}

// GeminiGenerator implements ports.ContentGenerator on the Gemini REST API
type GeminiGenerator struct {
	client     ports.HTTPClient
	limiter    *rate.Limiter
	apiKey     string
	model      string
	imageModel string
	endpoint   string
	logger     ports.Logger
}

// NewGeminiGenerator creates a generator from configuration. The client
// carries the timeout and retry policy.
func NewGeminiGenerator(cfg entities.GeneratorConfig, client ports.HTTPClient, logger ports.Logger) *GeminiGenerator {
	if logger == nil {
		logger = ports.NopLogger{}
	}
	rpm := cfg.GetRequestsPerMinute()
	return &GeminiGenerator{
		client:     client,
		limiter:    rate.NewLimiter(rate.Every(time.Minute/time.Duration(rpm)), max(1, rpm/10)),
		apiKey:     cfg.GetAPIKey(),
		model:      cfg.GetModel(),
		imageModel: cfg.GetImageModel(),
		endpoint:   cfg.GetEndpoint(),
		logger:     logger,
	}
}

type part struct {
	Text       string      `json:"text,omitempty"`
	InlineData *inlineData `json:"inlineData,omitempty"`
}

type inlineData struct {
	MimeType string `json:"mimeType"`
	Data     string `json:"data"`
}

type content struct {
	Role  string `json:"role,omitempty"`
	Parts []part `json:"parts"`
}

type imageConfig struct {
	AspectRatio string `json:"aspectRatio"`
}

type generationConfig struct {
	Temperature        float64         `json:"temperature,omitempty"`
	ResponseMimeType   string          `json:"responseMimeType,omitempty"`
	ResponseSchema     json.RawMessage `json:"responseSchema,omitempty"`
	ResponseModalities []string        `json:"responseModalities,omitempty"`
	ImageConfig        *imageConfig    `json:"imageConfig,omitempty"`
}

type generateRequest struct {
	Contents         []content        `json:"contents"`
	GenerationConfig generationConfig `json:"generationConfig"`
}

type generateResponse struct {
	Candidates []struct {
		Content      content `json:"content"`
		FinishReason string  `json:"finishReason"`
	} `json:"candidates"`
	PromptFeedback *struct {
		BlockReason string `json:"blockReason"`
	} `json:"promptFeedback,omitempty"`
}

type apiErrorBody struct {
	Error struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
		Status  string `json:"status"`
	} `json:"error"`
}

// rawSlide is the JSON shape the model is asked to produce
type rawSlide struct {
	Title     string `json:"title"`
	Content   string `json:"content"`
	Highlight string `json:"highlight"`
}

var slideArraySchema = json.RawMessage(`{
  "type": "ARRAY",
  "items": {
    "type": "OBJECT",
    "properties": {
      "title": {"type": "STRING"},
      "content": {"type": "STRING"},
      "highlight": {"type": "STRING", "nullable": true}
    },
    "required": ["title", "content"]
  }
}`)

// Generate asks the model for req.Count slides
func (g *GeminiGenerator) Generate(ctx context.Context, req ports.GenerateRequest) ([]entities.Slide, error) {
	body := generateRequest{
		Contents: []content{{Role: "user", Parts: []part{{Text: carouselPrompt(req.Topic, req.Count, req.Tone, req.CTAInstruction)}}}},
		GenerationConfig: generationConfig{
			Temperature:      0.9,
			ResponseMimeType: "application/json",
			ResponseSchema:   slideArraySchema,
		},
	}

	resp, err := g.generateContent(ctx, g.model, body)
	if err != nil {
		return nil, err
	}

	var raw []rawSlide
	if err := json.Unmarshal([]byte(stripFences(resp.text())), &raw); err != nil {
		g.logger.Error("failed to parse slides", "error", err)
		return nil, fmt.Errorf("parsing generated slides: %w", err)
	}

	slides := make([]entities.Slide, len(raw))
	for i, r := range raw {
		slides[i] = entities.Slide{
			Number:    i + 1,
			Title:     strings.TrimSpace(r.Title),
			Content:   strings.TrimSpace(r.Content),
			Highlight: strings.TrimSpace(r.Highlight),
		}
		if i == 0 {
			slides[i].Content = ""
		}
	}
	return slides, nil
}

// Regenerate asks the model to rewrite one slide
func (g *GeminiGenerator) Regenerate(ctx context.Context, req ports.RegenerateRequest) (entities.Slide, error) {
	body := generateRequest{
		Contents: []content{{Role: "user", Parts: []part{{Text: regeneratePrompt(req.Topic, req.Slide, req.TotalSlides, req.Tone)}}}},
		GenerationConfig: generationConfig{
			Temperature:      1.0,
			ResponseMimeType: "application/json",
		},
	}

	resp, err := g.generateContent(ctx, g.model, body)
	if err != nil {
		return entities.Slide{}, err
	}

	var raw rawSlide
	if err := json.Unmarshal([]byte(stripFences(resp.text())), &raw); err != nil {
		return entities.Slide{}, fmt.Errorf("parsing regenerated slide: %w", err)
	}

	slide := req.Slide
	slide.Title = strings.TrimSpace(raw.Title)
	slide.Content = strings.TrimSpace(raw.Content)
	if h := strings.TrimSpace(raw.Highlight); h != "" {
		slide.Highlight = h
	}
	if slide.IsCover() {
		slide.Content = ""
	}
	return slide, nil
}

// GenerateBackgroundImage returns the first image part as a data URI
func (g *GeminiGenerator) GenerateBackgroundImage(ctx context.Context, topic string, slide entities.Slide) (string, error) {
	body := generateRequest{
		Contents: []content{{Role: "user", Parts: []part{{Text: imagePrompt(topic, slide)}}}},
		GenerationConfig: generationConfig{
			ResponseModalities: []string{"TEXT", "IMAGE"},
			ImageConfig:        &imageConfig{AspectRatio: "1:1"},
		},
	}

	resp, err := g.generateContent(ctx, g.imageModel, body)
	if err != nil {
		return "", err
	}

	for _, c := range resp.Candidates {
		for _, p := range c.Content.Parts {
			if p.InlineData != nil && p.InlineData.Data != "" {
				mime := p.InlineData.MimeType
				if mime == "" {
					mime = "image/png"
				}
				return "data:" + mime + ";base64," + p.InlineData.Data, nil
			}
		}
	}
	return "", errors.New("no image generated")
}

func (g *GeminiGenerator) generateContent(ctx context.Context, model string, body generateRequest) (*generateResponse, error) {
	if g.apiKey == "" {
		return nil, entities.ErrMissingCredentials
	}
	if err := g.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("waiting for rate limiter: %w", err)
	}

	payload, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("encoding request: %w", err)
	}

	url := fmt.Sprintf("%s/models/%s:generateContent", g.endpoint, model)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-goog-api-key", g.apiKey)

	start := time.Now()
	resp, err := g.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("gemini request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, fmt.Errorf("reading response: %w", err)
	}
	g.logger.Debug("gemini call finished", "model", model, "status", resp.StatusCode, "duration", time.Since(start))

	if resp.StatusCode != http.StatusOK {
		apiErr := &APIError{StatusCode: resp.StatusCode}
		var errBody apiErrorBody
		if json.Unmarshal(data, &errBody) == nil {
			apiErr.Status = errBody.Error.Status
			apiErr.Message = errBody.Error.Message
		}
		g.logger.Error("gemini API error", "model", model, "status", resp.StatusCode, "message", apiErr.Message)
		return nil, apiErr
	}

	var out generateResponse
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, fmt.Errorf("decoding response: %w", err)
	}
	if len(out.Candidates) == 0 {
		if out.PromptFeedback != nil && out.PromptFeedback.BlockReason != "" {
			return nil, fmt.Errorf("prompt blocked: %s", out.PromptFeedback.BlockReason)
		}
		return nil, errors.New("empty response from gemini")
	}
	return &out, nil
}

// text concatenates the text parts of the first candidate
func (r *generateResponse) text() string {
	var b strings.Builder
	for _, p := range r.Candidates[0].Content.Parts {
		b.WriteString(p.Text)
	}
	return b.String()
}

// stripFences removes a markdown code fence around a JSON answer
func stripFences(text string) string {
	text = strings.TrimSpace(text)
	text = strings.TrimPrefix(text, "```json")
	text = strings.TrimPrefix(text, "```")
	text = strings.TrimSuffix(text, "```")
	return strings.TrimSpace(text)
}
