// Package hocr renders located recognition results as hOCR and reads them
// back. The model is flat, pages of word boxes, matching what the
// recognition service returns.
//
// hOCR bbox values are integers, so coordinates (PDF points) are stored as
// hundredths of a point and divided back out on parse. Round-trips are exact
// to 0.01 pt.
package hocr

import "github.com/skarde/ocrkit/pkg/aipocr"

// Page is one page of recognized words with its size in points.
type Page struct {
	Number int
	Width  float64
	Height float64
	Words  []aipocr.Word
}

// bboxScale is the fixed-point factor applied to coordinates in bbox
// attributes.
const bboxScale = 100
