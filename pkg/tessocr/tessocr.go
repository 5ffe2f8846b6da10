//go:build ocr

// Package tessocr provides an offline recognizer backed by a local Tesseract
// installation. It implements the same located-text contract as the remote
// client, so the retry strategy and composer work unchanged without network
// access or credentials. Build with -tags ocr; the default build compiles a
// stub that reports the capability as unavailable.
package tessocr

import (
	"context"
	"fmt"

	"github.com/otiai10/gosseract/v2"

	"github.com/skarde/ocrkit/pkg/aipocr"
	"github.com/skarde/ocrkit/pkg/coords"
)

// Engine wraps a Tesseract client. Not safe for concurrent use.
type Engine struct {
	client *gosseract.Client
}

// New creates an engine with the given recognition languages, defaulting to
// English plus simplified Chinese.
func New(languages ...string) (*Engine, error) {
	client := gosseract.NewClient()
	if len(languages) == 0 {
		languages = []string{"eng", "chi_sim"}
	}
	if err := client.SetLanguage(languages...); err != nil {
		client.Close()
		return nil, fmt.Errorf("set languages: %w", err)
	}
	return &Engine{client: client}, nil
}

// SetLanguage replaces the recognition languages.
func (e *Engine) SetLanguage(languages ...string) error {
	return e.client.SetLanguage(languages...)
}

// RecognizeTextWithLocation runs word-level recognition on an encoded image
// and maps the pixel boxes to document points at the given DPI.
func (e *Engine) RecognizeTextWithLocation(ctx context.Context, image []byte, dpi int) ([]aipocr.Word, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := e.client.SetImageFromBytes(image); err != nil {
		return nil, fmt.Errorf("set image: %w", err)
	}

	boxes, err := e.client.GetBoundingBoxes(gosseract.RIL_WORD)
	if err != nil {
		return nil, fmt.Errorf("bounding boxes: %w", err)
	}

	words := make([]aipocr.Word, 0, len(boxes))
	for _, b := range boxes {
		if b.Word == "" {
			continue
		}
		box := coords.MapBox(coords.Box{
			Left:   float64(b.Box.Min.X),
			Top:    float64(b.Box.Min.Y),
			Width:  float64(b.Box.Dx()),
			Height: float64(b.Box.Dy()),
		}, dpi)
		words = append(words, aipocr.Word{
			Text: b.Word,
			X:    box.Left,
			Y:    box.Top,
			W:    box.Width,
			H:    box.Height,
		})
	}
	return words, nil
}

// Close releases the underlying Tesseract client.
func (e *Engine) Close() error {
	return e.client.Close()
}
