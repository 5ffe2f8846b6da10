package mathsplice

import (
	"bytes"
	"fmt"
	"strings"

	treeblood "github.com/wyatt915/goldmark-treeblood"
	"github.com/yuin/goldmark"
)

// MathMLRenderer converts LaTeX to MathML markup via goldmark's treeblood
// extension.
type MathMLRenderer struct {
	md goldmark.Markdown
}

// NewMathMLRenderer builds a renderer with the MathML extension enabled.
func NewMathMLRenderer() *MathMLRenderer {
	return &MathMLRenderer{
		md: goldmark.New(
			goldmark.WithExtensions(
				treeblood.MathML(),
			),
		),
	}
}

// RenderMathML renders a LaTeX string to MathML-bearing markup. Common
// delimiters ($, $$, \[ \], \( \)) are stripped before conversion.
func (r *MathMLRenderer) RenderMathML(latex string) (string, error) {
	clean := StripDelimiters(latex)
	if clean == "" {
		return "", fmt.Errorf("empty formula")
	}

	source := "$$" + clean + "$$"
	var buf bytes.Buffer
	if err := r.md.Convert([]byte(source), &buf); err != nil {
		return "", fmt.Errorf("convert LaTeX: %w", err)
	}

	out := buf.String()
	if !strings.Contains(out, "<math") {
		return "", fmt.Errorf("no math markup produced for %q", clean)
	}
	return out, nil
}

// StripDelimiters removes surrounding LaTeX math delimiters.
func StripDelimiters(latex string) string {
	clean := strings.TrimSpace(latex)
	for _, prefix := range []string{"$$", "$", `\[`, `\(`} {
		clean = strings.TrimPrefix(clean, prefix)
	}
	for _, suffix := range []string{"$$", "$", `\]`, `\)`} {
		clean = strings.TrimSuffix(clean, suffix)
	}
	return strings.TrimSpace(clean)
}
