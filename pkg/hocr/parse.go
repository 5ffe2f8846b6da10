package hocr

import (
	"bytes"
	"fmt"
	"strconv"
	"strings"

	"golang.org/x/net/html"

	"github.com/skarde/ocrkit/pkg/aipocr"
)

// Parse reads an hOCR document produced by Generate (or any hOCR carrying
// ocr_page/ocrx_word elements) back into pages of words.
func Parse(data []byte) ([]Page, error) {
	root, err := html.Parse(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("parse hOCR: %w", err)
	}

	var pages []Page
	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode {
			switch attr(n, "class") {
			case "ocr_page":
				page, err2 := parsePage(n)
				if err2 != nil {
					err = err2
					return
				}
				pages = append(pages, page)
				return // parsePage walks its own subtree
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(root)
	if err != nil {
		return nil, err
	}
	return pages, nil
}

func parsePage(n *html.Node) (Page, error) {
	box, err := parseBBox(attr(n, "title"))
	if err != nil {
		return Page{}, fmt.Errorf("page %q: %w", attr(n, "id"), err)
	}

	page := Page{Width: box[2], Height: box[3]}
	if num, ok := trailingInt(attr(n, "id"), "page_"); ok {
		page.Number = num
	}

	var walk func(c *html.Node) error
	walk = func(c *html.Node) error {
		if c.Type == html.ElementNode && attr(c, "class") == "ocrx_word" {
			wb, err := parseBBox(attr(c, "title"))
			if err != nil {
				return fmt.Errorf("word %q: %w", attr(c, "id"), err)
			}
			page.Words = append(page.Words, aipocr.Word{
				Text: textContent(c),
				X:    wb[0],
				Y:    wb[1],
				W:    wb[2] - wb[0],
				H:    wb[3] - wb[1],
			})
			return nil
		}
		for gc := c.FirstChild; gc != nil; gc = gc.NextSibling {
			if err := walk(gc); err != nil {
				return err
			}
		}
		return nil
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if err := walk(c); err != nil {
			return Page{}, err
		}
	}
	return page, nil
}

// parseBBox extracts the four bbox values from an hOCR title attribute and
// scales them back to points.
func parseBBox(title string) ([4]float64, error) {
	var out [4]float64
	for _, prop := range strings.Split(title, ";") {
		fields := strings.Fields(strings.TrimSpace(prop))
		if len(fields) != 5 || fields[0] != "bbox" {
			continue
		}
		for i := 0; i < 4; i++ {
			v, err := strconv.Atoi(fields[i+1])
			if err != nil {
				return out, fmt.Errorf("bad bbox value %q", fields[i+1])
			}
			out[i] = float64(v) / bboxScale
		}
		return out, nil
	}
	return out, fmt.Errorf("no bbox in title %q", title)
}

func trailingInt(s, prefix string) (int, bool) {
	rest := strings.TrimPrefix(s, prefix)
	n, err := strconv.Atoi(rest)
	if err != nil {
		return 0, false
	}
	return n, true
}

func attr(n *html.Node, name string) string {
	for _, a := range n.Attr {
		if a.Key == name {
			return a.Val
		}
	}
	return ""
}

func textContent(n *html.Node) string {
	var sb strings.Builder
	var walk func(c *html.Node)
	walk = func(c *html.Node) {
		if c.Type == html.TextNode {
			sb.WriteString(c.Data)
		}
		for gc := c.FirstChild; gc != nil; gc = gc.NextSibling {
			walk(gc)
		}
	}
	walk(n)
	return strings.TrimSpace(sb.String())
}
