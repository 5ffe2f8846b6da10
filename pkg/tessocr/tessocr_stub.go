//go:build !ocr

// Package tessocr provides an offline recognizer backed by a local Tesseract
// installation. This stub is compiled when the ocr build tag is absent, so
// the module builds without the Tesseract C libraries.
package tessocr

import (
	"context"
	"errors"

	"github.com/skarde/ocrkit/pkg/aipocr"
)

// ErrNotEnabled is returned by every operation when the engine was compiled
// without the ocr build tag.
var ErrNotEnabled = errors.New("tessocr: built without ocr tag, offline recognition unavailable")

// Engine is a placeholder for the Tesseract-backed engine.
type Engine struct{}

// New reports the offline engine as unavailable.
func New(languages ...string) (*Engine, error) {
	return nil, ErrNotEnabled
}

// SetLanguage reports the offline engine as unavailable.
func (e *Engine) SetLanguage(languages ...string) error {
	return ErrNotEnabled
}

// RecognizeTextWithLocation reports the offline engine as unavailable.
func (e *Engine) RecognizeTextWithLocation(ctx context.Context, image []byte, dpi int) ([]aipocr.Word, error) {
	return nil, ErrNotEnabled
}

// Close is a no-op on the stub.
func (e *Engine) Close() error { return nil }
