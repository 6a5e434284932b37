package extract

import (
	"strings"
	"unicode"
)

// minTextDensity is the alphanumeric share below which a fallback total is not trusted.
const minTextDensity = 0.45

// isNoisy decides whether an extraction must be confirmed by the user.
func isNoisy(lines []string, total int64, found, usedFallback bool) bool {
	if len(lines) == 0 {
		return true
	}
	if !found || total < minTrustedTotal {
		return true
	}
	if !usedFallback {
		return false
	}
	return len(lines) <= 2 || textDensity(strings.Join(lines, " ")) < minTextDensity
}

// textDensity is the share of letters and digits among the non-whitespace runes of s.
func textDensity(s string) float64 {
	var alnum, printable int
	for _, r := range s {
		if unicode.IsSpace(r) {
			continue
		}
		printable++
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			alnum++
		}
	}
	if printable == 0 {
		return 0
	}
	return float64(alnum) / float64(printable)
}
