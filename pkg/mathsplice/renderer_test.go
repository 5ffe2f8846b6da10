package mathsplice

import "testing"

func TestRenderMathMLRejectsEmptyFormula(t *testing.T) {
	r := NewMathMLRenderer()
	if _, err := r.RenderMathML("  $$  $$ "); err == nil {
		t.Error("expected error for an empty formula")
	}
}
