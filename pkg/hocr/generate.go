package hocr

import (
	"bytes"
	"fmt"
	"html"
	"math"
)

// Generate renders pages as an hOCR document.
func Generate(pages []Page) ([]byte, error) {
	var buf bytes.Buffer

	buf.WriteString(`<?xml version="1.0" encoding="UTF-8"?>` + "\n")
	buf.WriteString("<!DOCTYPE html>\n")
	buf.WriteString(`<html xmlns="http://www.w3.org/1999/xhtml">` + "\n")
	buf.WriteString("<head>\n")
	buf.WriteString("<title></title>\n")
	buf.WriteString(`<meta http-equiv="Content-Type" content="text/html;charset=utf-8"/>` + "\n")
	buf.WriteString(`<meta name="ocr-system" content="ocrkit"/>` + "\n")
	buf.WriteString(`<meta name="ocr-capabilities" content="ocr_page ocrx_word"/>` + "\n")
	buf.WriteString("</head>\n<body>\n")

	for _, page := range pages {
		if page.Width <= 0 || page.Height <= 0 {
			return nil, fmt.Errorf("page %d has invalid dimensions %gx%g", page.Number, page.Width, page.Height)
		}
		fmt.Fprintf(&buf, `<div class="ocr_page" id="page_%d" title="bbox 0 0 %d %d; ppageno %d">`+"\n",
			page.Number, fixed(page.Width), fixed(page.Height), page.Number-1)
		for i, w := range page.Words {
			fmt.Fprintf(&buf, `<span class="ocrx_word" id="word_%d_%d" title="bbox %d %d %d %d">%s</span>`+"\n",
				page.Number, i+1,
				fixed(w.X), fixed(w.Y), fixed(w.X+w.W), fixed(w.Y+w.H),
				html.EscapeString(w.Text))
		}
		buf.WriteString("</div>\n")
	}

	buf.WriteString("</body>\n</html>\n")
	return buf.Bytes(), nil
}

func fixed(v float64) int {
	return int(math.Round(v * bboxScale))
}
