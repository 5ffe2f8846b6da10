package searchpdf

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/png"

	_ "image/jpeg"

	"github.com/skarde/ocrkit/pkg/imgprep"
)

// Source supplies the pages of the document being composed. Implementations
// wrap whatever the enclosing application has: scanned page images, a
// rasterizer, or an existing PDF with partial text.
type Source interface {
	// PageCount returns the number of pages.
	PageCount() int

	// Render returns the page raster, encoded (PNG or JPEG), at the
	// requested DPI.
	Render(ctx context.Context, page, dpi int) ([]byte, error)

	// ExtractText returns the page's existing extractable text, empty when
	// the page is a bare scan.
	ExtractText(page int) (string, error)

	// PageSize returns the page dimensions in points.
	PageSize(page int) (w, h float64, err error)
}

// ImageSource is a Source over pre-rendered page images scanned at a known
// DPI, with optional sidecar text per page.
type ImageSource struct {
	images  [][]byte
	texts   []string
	scanDPI int
}

// NewImageSource builds a source from encoded page images. texts may be nil
// or shorter than images; missing entries mean no extractable text. scanDPI
// is the resolution the images were produced at and determines their size in
// points.
func NewImageSource(images [][]byte, texts []string, scanDPI int) (*ImageSource, error) {
	if len(images) == 0 {
		return nil, fmt.Errorf("no page images provided")
	}
	if scanDPI <= 0 {
		return nil, fmt.Errorf("scan dpi must be positive, got %d", scanDPI)
	}
	for i, img := range images {
		if len(img) == 0 {
			return nil, fmt.Errorf("page image %d is empty", i+1)
		}
	}
	return &ImageSource{images: images, texts: texts, scanDPI: scanDPI}, nil
}

func (s *ImageSource) PageCount() int { return len(s.images) }

func (s *ImageSource) ExtractText(page int) (string, error) {
	if page < 0 || page >= len(s.images) {
		return "", fmt.Errorf("page %d out of range", page+1)
	}
	if page >= len(s.texts) {
		return "", nil
	}
	return s.texts[page], nil
}

func (s *ImageSource) PageSize(page int) (float64, float64, error) {
	if page < 0 || page >= len(s.images) {
		return 0, 0, fmt.Errorf("page %d out of range", page+1)
	}
	cfg, _, err := image.DecodeConfig(bytes.NewReader(s.images[page]))
	if err != nil {
		return 0, 0, fmt.Errorf("decode page %d: %w", page+1, err)
	}
	scale := 72.0 / float64(s.scanDPI)
	return float64(cfg.Width) * scale, float64(cfg.Height) * scale, nil
}

// Render returns the stored image unchanged when the requested DPI matches
// the scan resolution, and rescales otherwise.
func (s *ImageSource) Render(_ context.Context, page, dpi int) ([]byte, error) {
	if page < 0 || page >= len(s.images) {
		return nil, fmt.Errorf("page %d out of range", page+1)
	}
	if dpi <= 0 || dpi == s.scanDPI {
		return s.images[page], nil
	}

	img, _, err := image.Decode(bytes.NewReader(s.images[page]))
	if err != nil {
		return nil, fmt.Errorf("decode page %d: %w", page+1, err)
	}
	factor := float64(dpi) / float64(s.scanDPI)
	bounds := img.Bounds()
	scaled := imgprep.Downscale(img,
		int(float64(bounds.Dx())*factor+0.5),
		int(float64(bounds.Dy())*factor+0.5))

	var buf bytes.Buffer
	if err := png.Encode(&buf, scaled); err != nil {
		return nil, fmt.Errorf("encode page %d: %w", page+1, err)
	}
	return buf.Bytes(), nil
}
