package extract

import (
	"math"
	"regexp"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

const (
	// minOCRAmount and maxOCRAmount bound the values accepted when scanning OCR text for money.
	minOCRAmount = 100
	maxOCRAmount = 2_000_000_000
)

var (
	// amountTokenRe matches the first amount written in a free-text note, e.g. "25rb" or "Rp 1.200.000".
	amountTokenRe = regexp.MustCompile(`(?i)(?:rp\.?\s*)?(\d+(?:[.,]\d+)?(?:[.,]\d{3})*)(?:\s*(rb|ribu|k|jt|juta)\b)?`)

	// moneyTokenRe matches money-looking tokens inside OCR lines.
	moneyTokenRe = regexp.MustCompile(`(?i)\b(?:rp\.?\s*|idr\s*)?\d[\d.,]*(?:\s*(?:rb|ribu|k|jt|juta)\b)?\b`)
)

// maxAmount is the largest rupiah value a token can normalize to.
var maxAmount = decimal.NewFromInt(math.MaxInt64)

// unitSuffix is a magnitude suffix and its multiplier.
type unitSuffix struct {
	suffix     string
	multiplier int64
}

// unitSuffixes is checked in order; the first match wins.
var unitSuffixes = []unitSuffix{
	{"ribu", 1_000},
	{"rb", 1_000},
	{"k", 1_000},
	{"juta", 1_000_000},
	{"jt", 1_000_000},
}

// plausibilitySuffixes are the suffixes that exempt a token from the digit-count rules.
var plausibilitySuffixes = []string{"rb", "ribu", "k", "jt", "juta"}

// NormalizeAmountToken converts a single amount token such as "25rb", "2.5jt" or
// "Rp 1.200.000" into whole rupiah. It reports false when the token has no usable number.
func NormalizeAmountToken(token string) (int64, bool) {
	t := strings.ToLower(strings.TrimSpace(token))
	t = strings.ReplaceAll(t, "rp", "")
	t = strings.ReplaceAll(t, "idr", "")
	t = strings.ReplaceAll(t, " ", "")

	var multiplier int64 = 1
	for _, u := range unitSuffixes {
		if strings.HasSuffix(t, u.suffix) {
			multiplier = u.multiplier
			t = strings.TrimSuffix(t, u.suffix)
			break
		}
	}
	if t == "" {
		return 0, false
	}

	if multiplier == 1 {
		digits := onlyDigits(t)
		if digits == "" {
			return 0, false
		}
		v, err := strconv.ParseInt(digits, 10, 64)
		if err != nil {
			return 0, false
		}
		return v, true
	}

	// With a suffix the number may carry a decimal comma: "2,5jt".
	d, err := decimal.NewFromString(strings.ReplaceAll(t, ",", "."))
	if err != nil || d.IsNegative() {
		return 0, false
	}
	amount := d.Mul(decimal.NewFromInt(multiplier)).RoundBank(0)
	if amount.GreaterThan(maxAmount) {
		return 0, false
	}
	return amount.IntPart(), true
}

// ParseAmountFromText normalizes the first amount token found anywhere in text.
// It reports false when there is none or it is not positive.
func ParseAmountFromText(text string) (int64, bool) {
	token := amountTokenRe.FindString(text)
	if token == "" {
		return 0, false
	}
	amount, ok := NormalizeAmountToken(token)
	if !ok || amount <= 0 {
		return 0, false
	}
	return amount, true
}

// isPlausibleMoneyToken rejects tokens that look like IDs, account or phone numbers
// rather than money.
func isPlausibleMoneyToken(token string) bool {
	low := strings.ToLower(strings.TrimSpace(token))
	hasCurrency := strings.Contains(low, "rp") || strings.Contains(low, "idr")

	clean := strings.ReplaceAll(low, " ", "")
	clean = strings.ReplaceAll(clean, "rp.", "")
	clean = strings.ReplaceAll(clean, "rp", "")
	clean = strings.ReplaceAll(clean, "idr", "")
	if clean == "" {
		return false
	}

	hasSuffix := false
	for _, s := range plausibilitySuffixes {
		if strings.HasSuffix(clean, s) {
			hasSuffix = true
			break
		}
	}

	digits := onlyDigits(clean)
	if digits == "" {
		return false
	}
	if hasSuffix {
		return true
	}
	if len(digits) > 12 {
		return false
	}

	grouped := strings.ContainsAny(clean, ".,")
	if !hasCurrency && !grouped && len(digits) >= 8 {
		return false
	}
	if grouped {
		groups := strings.Split(strings.ReplaceAll(clean, ",", "."), ".")
		if len(groups) > 5 {
			return false
		}
		for _, g := range groups[1:] {
			if len(g) != 3 {
				return false
			}
		}
	}
	return true
}

// extractAmounts returns every plausible money amount in text, in order of appearance.
func extractAmounts(text string) []int64 {
	var amounts []int64
	for _, token := range moneyTokenRe.FindAllString(text, -1) {
		if !isPlausibleMoneyToken(token) {
			continue
		}
		v, ok := NormalizeAmountToken(token)
		if !ok {
			continue
		}
		if v >= minOCRAmount && v <= maxOCRAmount {
			amounts = append(amounts, v)
		}
	}
	return amounts
}

// FormatIDR renders an amount the way Indonesian receipts do: "Rp1.250.000".
func FormatIDR(amount int64) string {
	sign := ""
	if amount < 0 {
		sign = "-"
		amount = -amount
	}
	s := strconv.FormatInt(amount, 10)
	var b strings.Builder
	for i, r := range s {
		if i > 0 && (len(s)-i)%3 == 0 {
			b.WriteByte('.')
		}
		b.WriteRune(r)
	}
	return sign + "Rp" + b.String()
}

func onlyDigits(s string) string {
	var b strings.Builder
	for _, r := range s {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}
