// Package mathsplice reconciles recognized formulas with a reconstructed
// document: it finds the paragraph a recognized equation came from by text
// similarity and splices native math markup (or a rendered image) in its
// place.
//
// Matching is first-match, greedy, in document order. That is a documented
// heuristic: near-duplicate paragraphs can mismatch, but the behavior is
// deterministic and reproducible.
package mathsplice

import (
	"strings"
	"unicode"

	"github.com/sirupsen/logrus"
)

var log = logrus.WithField("component", "mathsplice")

// Paragraph is one plain-text paragraph of a reconstructed document. A
// spliced paragraph has its Text cleared and carries MathML, or the rendered
// region image when markup generation failed.
type Paragraph struct {
	Text   string
	MathML string
	Image  []byte
}

// spliced reports whether the paragraph already received a formula.
func (p *Paragraph) spliced() bool {
	return p.MathML != "" || p.Image != nil
}

// Block is one detected equation region, in source-page order. SourceText is
// the text extracted from the region in the document, LaTeX the recognition
// output, and Image the rendered region for fallback.
type Block struct {
	LaTeX      string
	SourceText string
	Image      []byte
}

// Renderer generates native math markup from LaTeX. Nil renderers degrade to
// the image fallback.
type Renderer interface {
	RenderMathML(latex string) (string, error)
}

// Reconciler splices recognized formulas into document paragraphs.
type Reconciler struct {
	Renderer Renderer
}

// Splice processes blocks in order and replaces, for each, the first
// paragraph whose text is similar to the block's source text. Already
// spliced paragraphs and near-empty texts are skipped. Returns the number of
// splices made.
func (rc *Reconciler) Splice(paragraphs []Paragraph, blocks []Block) int {
	count := 0
	for _, block := range blocks {
		src := compact(NormalizeMathRunes(block.SourceText))
		if len(src) < 2 {
			continue
		}
		for i := range paragraphs {
			p := &paragraphs[i]
			if p.spliced() {
				continue
			}
			text := compact(NormalizeMathRunes(p.Text))
			if len(text) < 2 {
				continue
			}
			if !similarRunes(text, src) {
				continue
			}

			if rc.Renderer != nil {
				if mathml, err := rc.Renderer.RenderMathML(block.LaTeX); err == nil {
					p.Text = ""
					p.MathML = mathml
					count++
					break
				} else {
					log.WithError(err).Debug("markup generation failed, falling back to image")
				}
			}
			if block.Image != nil {
				p.Text = ""
				p.Image = block.Image
				count++
			}
			break
		}
	}
	return count
}

// Similar reports whether two texts plausibly describe the same content.
// Whitespace is stripped before comparison. Exact matches succeed; a large
// length imbalance or a very short text fails; otherwise either a shared
// prefix-substring or rune-set Jaccard similarity above 0.6 succeeds.
func Similar(a, b string) bool {
	return similarRunes(compact(a), compact(b))
}

func similarRunes(a, b []rune) bool {
	if len(a) == 0 || len(b) == 0 {
		return false
	}
	if string(a) == string(b) {
		return true
	}

	shorter, longer := len(a), len(b)
	if shorter > longer {
		shorter, longer = longer, shorter
	}
	if shorter < 3 || float64(shorter)/float64(longer) < 0.3 {
		return false
	}

	if shorter >= 4 {
		sa, sb := string(a), string(b)
		if strings.Contains(sb, string(a[:shorter])) || strings.Contains(sa, string(b[:shorter])) {
			return true
		}
	}

	return jaccard(a, b) > 0.6
}

// jaccard computes set similarity over the runes of both texts.
func jaccard(a, b []rune) float64 {
	setA := make(map[rune]struct{}, len(a))
	for _, r := range a {
		setA[r] = struct{}{}
	}
	setB := make(map[rune]struct{}, len(b))
	for _, r := range b {
		setB[r] = struct{}{}
	}

	common := 0
	for r := range setA {
		if _, ok := setB[r]; ok {
			common++
		}
	}
	union := len(setA) + len(setB) - common
	if union == 0 {
		return 0
	}
	return float64(common) / float64(union)
}

// compact strips all whitespace and returns the remaining runes.
func compact(s string) []rune {
	out := make([]rune, 0, len(s))
	for _, r := range s {
		if unicode.IsSpace(r) {
			continue
		}
		out = append(out, r)
	}
	return out
}
