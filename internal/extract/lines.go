package extract

import "strings"

// NormalizeLines splits raw OCR text into lines, collapses whitespace inside
// each line and drops lines that end up empty.
func NormalizeLines(raw string) []string {
	return NormalizeLineSlice(strings.FieldsFunc(raw, isLineBreak))
}

// NormalizeLineSlice applies the same cleanup to OCR output that is already split into lines.
func NormalizeLineSlice(raw []string) []string {
	lines := make([]string, 0, len(raw))
	for _, l := range raw {
		if clean := collapseSpaces(l); clean != "" {
			lines = append(lines, clean)
		}
	}
	return lines
}

// JoinLines rebuilds the canonical raw text from normalized lines.
func JoinLines(lines []string) string {
	return strings.Join(lines, "\n")
}

func isLineBreak(r rune) bool {
	switch r {
	case '\n', '\r', '\v', '\f', 0x1c, 0x1d, 0x1e, 0x85, 0x2028, 0x2029:
		return true
	}
	return false
}
