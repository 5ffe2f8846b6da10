package searchpdf

import "unicode"

// HasEnoughText reports whether a page's extractable text is substantial
// enough to skip recognition. The compacted text must reach min characters
// and at least max(12, min/2) of them must be alphanumeric or CJK, so that
// sparse artifacts (page numbers, stray marks) do not mask a scanned page.
// This test is what makes composition idempotent on already-digital pages.
func HasEnoughText(text string, min int) bool {
	compact := 0
	effective := 0
	for _, r := range text {
		if unicode.IsSpace(r) {
			continue
		}
		compact++
		if isEffective(r) {
			effective++
		}
	}
	if compact < min {
		return false
	}
	floor := min / 2
	if floor < 12 {
		floor = 12
	}
	return effective >= floor
}

func isEffective(r rune) bool {
	if r >= 0x4E00 && r <= 0x9FFF {
		return true
	}
	return unicode.IsLetter(r) || unicode.IsDigit(r)
}
