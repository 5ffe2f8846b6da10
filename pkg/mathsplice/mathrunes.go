package mathsplice

import "strings"

// Mathematical Alphanumeric Symbols fold to plain letters so that text
// comparison and downstream word processors see ordinary characters
// (𝑓 → f, 𝑥 → x, 𝜋 → π).

var (
	greekLower = []rune("αβγδεζηθικλμνξοπρςστυφχψω")
	greekUpper = []rune("ΑΒΓΔΕΖΗΘΙΚΛΜΝΞΟΠΡϴΣΤΥΦΧΨΩ")
)

// mathOperators maps operator codepoints that word processors render badly
// to safe equivalents.
var mathOperators = map[rune]string{
	0x2212: "-",  // minus sign
	0x2032: "'",  // prime
	0x2033: "''", // double prime
	0x210E: "h",  // Planck constant
}

// HasMathRune reports whether s contains codepoints that NormalizeMathRunes
// would change.
func HasMathRune(s string) bool {
	for _, r := range s {
		if r >= 0x1D400 && r <= 0x1D7FF {
			return true
		}
		if r == 0x210E {
			return true
		}
	}
	return false
}

// NormalizeMathRunes folds Mathematical Alphanumeric Symbols and a small set
// of operators to plain runes. Unknown runes pass through unchanged.
func NormalizeMathRunes(s string) string {
	if !HasMathRune(s) && !strings.ContainsFunc(s, func(r rune) bool {
		_, ok := mathOperators[r]
		return ok
	}) {
		return s
	}
	var sb strings.Builder
	sb.Grow(len(s))
	for _, r := range s {
		sb.WriteString(mapMathRune(r))
	}
	return sb.String()
}

func mapMathRune(r rune) string {
	switch {
	case r >= 0x1D44E && r <= 0x1D467: // italic small
		return string('a' + r - 0x1D44E)
	case r >= 0x1D434 && r <= 0x1D44D: // italic capital
		return string('A' + r - 0x1D434)
	case r >= 0x1D41A && r <= 0x1D433: // bold small
		return string('a' + r - 0x1D41A)
	case r >= 0x1D400 && r <= 0x1D419: // bold capital
		return string('A' + r - 0x1D400)
	case r >= 0x1D482 && r <= 0x1D49B: // bold italic small
		return string('a' + r - 0x1D482)
	case r >= 0x1D468 && r <= 0x1D481: // bold italic capital
		return string('A' + r - 0x1D468)
	case r >= 0x1D5A0 && r <= 0x1D5B9: // sans-serif capital
		return string('A' + r - 0x1D5A0)
	case r >= 0x1D5BA && r <= 0x1D5D3: // sans-serif small
		return string('a' + r - 0x1D5BA)
	case r >= 0x1D6FC && r <= 0x1D714: // italic Greek small
		if idx := int(r - 0x1D6FC); idx < len(greekLower) {
			return string(greekLower[idx])
		}
	case r >= 0x1D6E2 && r <= 0x1D6FA: // italic Greek capital
		if idx := int(r - 0x1D6E2); idx < len(greekUpper) {
			return string(greekUpper[idx])
		}
	case r >= 0x1D736 && r <= 0x1D74E: // bold Greek small
		if idx := int(r - 0x1D736); idx < len(greekLower) {
			return string(greekLower[idx])
		}
	case r >= 0x1D71C && r <= 0x1D734: // bold Greek capital
		if idx := int(r - 0x1D71C); idx < len(greekUpper) {
			return string(greekUpper[idx])
		}
	}
	if mapped, ok := mathOperators[r]; ok {
		return mapped
	}
	return string(r)
}
