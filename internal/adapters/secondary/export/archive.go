package export

import (
	"archive/zip"
	"bytes"
	"encoding/base64"
	"fmt"
	"strings"

	"github.com/jung-kurt/gofpdf/v2"

	"github.com/fredcamaral/carouselkit/internal/domain/ports"
)

// Archive formats
const (
	FormatZip = "zip"
	FormatPDF = "pdf"
)

// Archiver bundles ordered slide PNGs into one file
type Archiver interface {
	Archive(pngs [][]byte, frame ports.Frame) ([]byte, error)
	Extension() string
	ContentType() string
}

// SlideFileName is the archive entry name of the 1-based slide position
func SlideFileName(position int) string {
	return fmt.Sprintf("slide-%d.png", position)
}

// ZipArchiver writes slide-1.png … slide-N.png in slide order, nothing else
type ZipArchiver struct{}

// NewZipArchiver creates a zip archiver
func NewZipArchiver() *ZipArchiver {
	return &ZipArchiver{}
}

// Archive implements Archiver
func (a *ZipArchiver) Archive(pngs [][]byte, _ ports.Frame) ([]byte, error) {
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)

	for i, data := range pngs {
		if len(data) == 0 {
			return nil, fmt.Errorf("slide %d has no image data", i+1)
		}
		// PNG is already deflated
		w, err := zw.CreateHeader(&zip.FileHeader{Name: SlideFileName(i + 1), Method: zip.Store})
		if err != nil {
			return nil, fmt.Errorf("creating %s: %w", SlideFileName(i+1), err)
		}
		if _, err := w.Write(data); err != nil {
			return nil, fmt.Errorf("writing %s: %w", SlideFileName(i+1), err)
		}
	}

	if err := zw.Close(); err != nil {
		return nil, fmt.Errorf("closing zip: %w", err)
	}
	return buf.Bytes(), nil
}

// Extension implements Archiver
func (a *ZipArchiver) Extension() string { return FormatZip }

// ContentType implements Archiver
func (a *ZipArchiver) ContentType() string { return "application/zip" }

// PDFArchiver lays each slide out as a full-bleed page, for document carousels
type PDFArchiver struct{}

// NewPDFArchiver creates a PDF archiver
func NewPDFArchiver() *PDFArchiver {
	return &PDFArchiver{}
}

// Archive implements Archiver. Pages use the logical stage size in points.
func (a *PDFArchiver) Archive(pngs [][]byte, frame ports.Frame) ([]byte, error) {
	w, h := float64(frame.Width), float64(frame.Height)
	if w <= 0 || h <= 0 {
		return nil, fmt.Errorf("invalid page size %vx%v", w, h)
	}

	pdf := gofpdf.NewCustom(&gofpdf.InitType{
		OrientationStr: "P",
		UnitStr:        "pt",
		Size:           gofpdf.SizeType{Wd: w, Ht: h},
	})
	pdf.SetMargins(0, 0, 0)
	pdf.SetAutoPageBreak(false, 0)

	opts := gofpdf.ImageOptions{ImageType: "PNG"}
	for i, data := range pngs {
		if len(data) == 0 {
			return nil, fmt.Errorf("slide %d has no image data", i+1)
		}
		name := SlideFileName(i + 1)
		pdf.AddPage()
		pdf.RegisterImageOptionsReader(name, opts, bytes.NewReader(data))
		pdf.ImageOptions(name, 0, 0, w, h, false, opts, 0, "")
		if err := pdf.Error(); err != nil {
			return nil, fmt.Errorf("adding %s: %w", name, err)
		}
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("writing pdf: %w", err)
	}
	return buf.Bytes(), nil
}

// Extension implements Archiver
func (a *PDFArchiver) Extension() string { return FormatPDF }

// ContentType implements Archiver
func (a *PDFArchiver) ContentType() string { return "application/pdf" }

const pngDataURIPrefix = "data:image/png;base64,"

// DecodeDataURI strips the PNG data URI header and decodes the payload.
// A bare base64 payload is accepted as well.
func DecodeDataURI(uri string) ([]byte, error) {
	payload := strings.TrimSpace(uri)
	if strings.HasPrefix(payload, "data:") {
		if !strings.HasPrefix(payload, pngDataURIPrefix) {
			header, _, _ := strings.Cut(payload, ",")
			return nil, fmt.Errorf("unsupported capture type: %s", header)
		}
		payload = strings.TrimPrefix(payload, pngDataURIPrefix)
	}

	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return nil, fmt.Errorf("decoding capture: %w", err)
	}
	if !bytes.HasPrefix(data, pngSignature) {
		return nil, fmt.Errorf("capture is not a PNG image")
	}
	return data, nil
}

var pngSignature = []byte("\x89PNG\r\n\x1a\n")
