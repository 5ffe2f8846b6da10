// Package searchpdf composes searchable PDFs: each page carries its raster
// plus an invisible, selectable text layer built from recognition results.
// Pages that already have enough extractable text are passed through without
// a recognition call, so re-running composition on its own output is a no-op
// cost-wise.
package searchpdf

import (
	"bytes"
	"context"
	"fmt"
	"time"

	"codeberg.org/go-pdf/fpdf"
	"github.com/sirupsen/logrus"

	"github.com/skarde/ocrkit/pkg/aipocr"
	"github.com/skarde/ocrkit/pkg/recognize"
)

var log = logrus.WithField("component", "searchpdf")

// PageState records what composition did with one page.
type PageState int

const (
	// PageSkipped means the page already had enough text and was copied
	// with its raster only.
	PageSkipped PageState = iota
	// PageRecognized means a text layer was added from recognition.
	PageRecognized
	// PageFailed means recognition failed and the page carries its raster
	// without a text layer.
	PageFailed
)

// Result summarizes a composition run.
type Result struct {
	ProcessedPages int
	SkippedPages   int
	FailedPages    int
	CharCount      int

	// States holds the per-page outcome, indexed by page-1.
	States []PageState
	// Words holds the recognized words per page, nil for skipped and
	// failed pages. Usable for hOCR export.
	Words [][]aipocr.Word
	// Errors collects the per-page failures as *PageError values.
	Errors []error
}

// Authenticator is the optional credential-priming capability of a
// recognizer. When the strategy's recognizer implements it, composition
// validates credentials up front instead of failing on page one.
type Authenticator interface {
	Authenticate(ctx context.Context) error
}

// Composer turns a page source into a searchable PDF.
type Composer struct {
	Strategy *recognize.Strategy
	Config   Config
}

// NewComposer builds a composer around a recognition strategy. Zero-value
// config fields are filled from DefaultConfig.
func NewComposer(strategy *recognize.Strategy, cfg Config) *Composer {
	def := DefaultConfig()
	if cfg.MinTextChars <= 0 {
		cfg.MinTextChars = def.MinTextChars
	}
	if cfg.Pacing <= 0 {
		cfg.Pacing = def.Pacing
	}
	if cfg.LayerName == "" {
		cfg.LayerName = def.LayerName
	}
	if cfg.Font.Name == "" {
		cfg.Font = def.Font
	}
	return &Composer{Strategy: strategy, Config: cfg}
}

// Compose processes every page of src and returns the summary plus the
// finished PDF bytes. Recognition failures are per-page: they are recorded
// in the result and the page keeps its raster. Only document-level problems
// (no pages, bad credentials, context cancellation, PDF assembly) abort.
func (c *Composer) Compose(ctx context.Context, src Source) (*Result, []byte, error) {
	total := src.PageCount()
	if total == 0 {
		return nil, nil, fmt.Errorf("document has no pages")
	}

	if auth, ok := c.Strategy.Recognizer.(Authenticator); ok {
		if err := auth.Authenticate(ctx); err != nil {
			return nil, nil, fmt.Errorf("authenticate: %w", err)
		}
	}

	pdf := fpdf.New("P", "pt", "A4", "")
	pdf.SetAutoPageBreak(false, 0)
	pdf.SetMargins(0, 0, 0)

	res := &Result{
		States: make([]PageState, total),
		Words:  make([][]aipocr.Word, total),
	}

	calls := 0
	for i := 0; i < total; i++ {
		page := i + 1
		c.report(page*90/total, fmt.Sprintf("Page %d/%d", page, total), "")

		wPt, hPt, err := src.PageSize(i)
		if err != nil {
			return nil, nil, fmt.Errorf("page %d size: %w", page, err)
		}
		img, err := src.Render(ctx, i, c.Strategy.Profile.RenderDPI)
		if err != nil {
			return nil, nil, fmt.Errorf("render page %d: %w", page, err)
		}
		if err := addPageWithImage(pdf, img, wPt, hPt, page); err != nil {
			return nil, nil, fmt.Errorf("page %d: %w", page, err)
		}

		text, err := src.ExtractText(i)
		if err == nil && HasEnoughText(text, c.Config.MinTextChars) {
			res.States[i] = PageSkipped
			res.SkippedPages++
			log.WithField("page", page).Debug("existing text sufficient, skipping recognition")
			continue
		}

		if calls > 0 {
			if err := c.pace(ctx); err != nil {
				return nil, nil, err
			}
		}
		calls++

		words, err := c.Strategy.Run(ctx, func(dpi int) ([]byte, error) {
			return src.Render(ctx, i, dpi)
		})
		if err != nil {
			if ctx.Err() != nil {
				return nil, nil, ctx.Err()
			}
			perr := &PageError{Page: page, Err: err}
			res.States[i] = PageFailed
			res.FailedPages++
			res.Errors = append(res.Errors, perr)
			log.WithField("page", page).WithError(err).Warn("recognition failed, page kept without text layer")
			continue
		}

		res.States[i] = PageRecognized
		res.ProcessedPages++
		res.Words[i] = words
		res.CharCount += drawOCRLayer(pdf, words, c.Config, page)
	}

	c.report(92, "Writing PDF", "")
	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, nil, fmt.Errorf("write PDF: %w", err)
	}
	c.report(100, "Done", fmt.Sprintf("%d recognized, %d skipped, %d failed",
		res.ProcessedPages, res.SkippedPages, res.FailedPages))

	return res, buf.Bytes(), nil
}

// pace enforces the inter-call delay, abandoning the wait on cancellation.
func (c *Composer) pace(ctx context.Context) error {
	if c.Config.Pacing <= 0 {
		return nil
	}
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(c.Config.Pacing):
		return nil
	}
}

func (c *Composer) report(percent int, progressText, statusText string) {
	if c.Config.OnProgress != nil {
		c.Config.OnProgress(percent, progressText, statusText)
	}
}
