package searchpdf

import (
	"bytes"
	"fmt"
	"image"
	"strings"

	"codeberg.org/go-pdf/fpdf"
	"golang.org/x/text/encoding/charmap"

	"github.com/skarde/ocrkit/pkg/aipocr"
	"github.com/skarde/ocrkit/pkg/coords"
)

// addPageWithImage starts a new page sized to the source page and draws the
// raster over its full extent.
func addPageWithImage(pdf *fpdf.Fpdf, img []byte, wPt, hPt float64, pageNum int) error {
	imgType, err := detectImageType(img)
	if err != nil {
		return fmt.Errorf("detect image type: %w", err)
	}

	pdf.AddPageFormat("P", fpdf.SizeType{Wd: wPt, Ht: hPt})

	name := fmt.Sprintf("page-%d", pageNum)
	opts := fpdf.ImageOptions{ImageType: imgType, ReadDpi: false}
	pdf.RegisterImageOptionsReader(name, opts, bytes.NewReader(img))
	if pdf.Err() {
		return fmt.Errorf("register page image: %s", pdf.Error())
	}
	pdf.ImageOptions(name, 0, 0, wPt, hPt, false, opts, 0, "")
	if pdf.Err() {
		return fmt.Errorf("draw page image: %s", pdf.Error())
	}
	return nil
}

// detectImageType sniffs the encoded image format and returns it in the
// uppercase form fpdf expects.
func detectImageType(img []byte) (string, error) {
	_, format, err := image.DecodeConfig(bytes.NewReader(img))
	if err != nil {
		return "", err
	}
	return strings.ToUpper(format), nil
}

// drawOCRLayer adds the recognized words as a text layer on the current page.
// The layer is invisible (zero alpha) unless debug mode is on, in which case
// the text renders red with its bounding boxes. Either way the text remains
// selectable and searchable. Returns the number of trimmed runes inserted.
func drawOCRLayer(pdf *fpdf.Fpdf, words []aipocr.Word, cfg Config, pageNum int) int {
	if len(words) == 0 {
		return 0
	}

	layerName := fmt.Sprintf("%s (Page %d)", cfg.LayerName, pageNum)
	layer := pdf.AddLayer(layerName, true)
	pdf.BeginLayer(layer)

	pdf.SetFont(cfg.Font.Name, cfg.Font.Style, cfg.Font.Size)
	if cfg.Debug {
		pdf.SetTextColor(255, 0, 0)
		pdf.SetDrawColor(255, 0, 0)
	} else {
		pdf.SetAlpha(0, "Normal")
	}

	inserted := 0
	for _, w := range words {
		text := strings.TrimSpace(w.Text)
		if text == "" {
			continue
		}

		// fpdf's core fonts are single-byte; words that cannot be
		// encoded are skipped rather than written as mojibake.
		latin1, err := charmap.ISO8859_1.NewEncoder().String(text)
		if err != nil {
			log.WithField("page", pageNum).WithField("word", text).
				Debug("word not encodable in core font, skipped")
			continue
		}

		pdf.SetFontSize(coords.EstimateFontSize(w.H))
		pdf.Text(w.X, w.Y+cfg.Font.AscentRatio*w.H, latin1)
		if cfg.Debug {
			pdf.Rect(w.X, w.Y, w.W, w.H, "D")
		}
		inserted += len([]rune(text))
	}

	pdf.SetFontSize(cfg.Font.Size)
	pdf.EndLayer()
	if !cfg.Debug {
		pdf.SetAlpha(1, "Normal")
	}
	return inserted
}
