package export

import (
	"bytes"
	"context"
	"encoding/base64"
	"fmt"
	"image"
	_ "image/jpeg" // decoders for background images
	_ "image/png"
	"io"
	"net/http"
	"strings"

	_ "golang.org/x/image/webp"

	"github.com/fredcamaral/carouselkit/internal/domain/ports"
)

// maxImageBytes caps remote background downloads
const maxImageBytes = 20 << 20

// ImageLoader fetches background images
type ImageLoader interface {
	Load(ctx context.Context, src string) (image.Image, error)
}

// HTTPImageLoader decodes data URIs inline and fetches remote images
type HTTPImageLoader struct {
	client ports.HTTPClient
}

// NewHTTPImageLoader creates a loader using client for remote images
func NewHTTPImageLoader(client ports.HTTPClient) *HTTPImageLoader {
	return &HTTPImageLoader{client: client}
}

// Load implements ImageLoader
func (l *HTTPImageLoader) Load(ctx context.Context, src string) (image.Image, error) {
	src = strings.TrimSpace(src)
	if strings.HasPrefix(src, "data:") {
		return decodeImageDataURI(src)
	}
	if l.client == nil {
		return nil, fmt.Errorf("no http client for remote image")
	}

	resp, err := l.client.Get(ctx, src)
	if err != nil {
		return nil, fmt.Errorf("fetching background image: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetching background image: status %d", resp.StatusCode)
	}

	img, _, err := image.Decode(io.LimitReader(resp.Body, maxImageBytes))
	if err != nil {
		return nil, fmt.Errorf("decoding background image: %w", err)
	}
	return img, nil
}

func decodeImageDataURI(uri string) (image.Image, error) {
	header, payload, ok := strings.Cut(uri, ",")
	if !ok || !strings.HasPrefix(header, "data:image/") {
		return nil, fmt.Errorf("invalid image data uri")
	}

	var data []byte
	if strings.HasSuffix(header, ";base64") {
		decoded, err := base64.StdEncoding.DecodeString(payload)
		if err != nil {
			return nil, fmt.Errorf("decoding image data uri: %w", err)
		}
		data = decoded
	} else {
		data = []byte(payload)
	}

	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("decoding background image: %w", err)
	}
	return img, nil
}
