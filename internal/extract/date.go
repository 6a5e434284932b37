package extract

import "regexp"

// DateUnknown is reported when a receipt carries no recognizable date.
const DateUnknown = "-"

var (
	numericDateRe = regexp.MustCompile(`\b(\d{1,2}[/-]\d{1,2}[/-]\d{2,4})\b`)
	wordDateRe    = regexp.MustCompile(`(?i)\b(\d{1,2}\s+(?:jan|feb|mar|apr|mei|may|jun|jul|agu|aug|sep|okt|oct|nov|des|dec)[a-z]*\s+\d{2,4})\b`)
)

// ExtractDate returns the first date written as "13/02/2026" or "13 Feb 2026",
// or DateUnknown. The text is returned as printed; it is not parsed.
func ExtractDate(text string) string {
	if m := numericDateRe.FindStringSubmatch(text); m != nil {
		return m[1]
	}
	if m := wordDateRe.FindStringSubmatch(text); m != nil {
		return m[1]
	}
	return DateUnknown
}
