package extract

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

var (
	peopleRe         = regexp.MustCompile(`(?i)(?:bagi|untuk|dibagi)\s*(\d+)\s*(?:orang|org|pax|teman)?`)
	peopleFallbackRe = regexp.MustCompile(`(?i)(\d+)\s*(?:orang|org|pax|teman)`)
)

// splitKeywords are the labels an amount or percentage may follow in a split-bill message.
var splitKeywords = []string{"total", "tagihan", "bill", "service", "pajak", "ppn"}

var (
	keywordAmountRes  = make(map[string]*regexp.Regexp, len(splitKeywords))
	keywordPercentRes = make(map[string]*regexp.Regexp, len(splitKeywords))
)

func init() {
	for _, kw := range splitKeywords {
		q := regexp.QuoteMeta(kw)
		keywordAmountRes[kw] = regexp.MustCompile(`(?i)` + q + `\s*[:=]?\s*((?:rp\.?\s*)?\d[\d.,]*)(\s*(?:rb|ribu|k|jt|juta)\b)?`)
		keywordPercentRes[kw] = regexp.MustCompile(`(?i)` + q + `\s*[:=]?\s*([0-9]+(?:[.,][0-9]+)?)\s*%`)
	}
}

// SplitBill is a shared bill to be divided evenly.
type SplitBill struct {
	Subtotal      int64 `json:"subtotal"`
	People        int   `json:"people"`
	ServiceAmount int64 `json:"service_amount"`
	TaxAmount     int64 `json:"tax_amount"`
}

// GrandTotal is the subtotal plus service and tax.
func (s SplitBill) GrandTotal() int64 {
	return s.Subtotal + s.ServiceAmount + s.TaxAmount
}

// PerPerson is the grand total divided by the number of people, rounded up.
func (s SplitBill) PerPerson() int64 {
	if s.People <= 0 {
		return s.GrandTotal()
	}
	people := int64(s.People)
	return (s.GrandTotal() + people - 1) / people
}

// ParseSplitBill reads a split-bill request such as
// "split bill total 300000 untuk 3 orang service 10% pajak 10%".
// It returns ErrNotSplitBill when the text does not ask for a split at all and
// ErrUnparseable when it does but the people count or subtotal is missing.
func ParseSplitBill(text string) (*SplitBill, error) {
	low := strings.ToLower(text)
	if !strings.Contains(low, "split bill") && !strings.Contains(low, "patungan") {
		return nil, ErrNotSplitBill
	}

	m := peopleRe.FindStringSubmatch(low)
	if m == nil {
		m = peopleFallbackRe.FindStringSubmatch(low)
	}
	if m == nil {
		return nil, ErrUnparseable
	}
	people, err := strconv.Atoi(m[1])
	if err != nil || people <= 0 {
		return nil, ErrUnparseable
	}

	subtotal := firstPositive(
		func() int64 { return amountAfterKeyword(text, "total") },
		func() int64 { return amountAfterKeyword(text, "tagihan") },
		func() int64 { return amountAfterKeyword(text, "bill") },
		func() int64 { v, _ := ParseAmountFromText(text); return v },
	)
	if subtotal <= 0 {
		return nil, ErrUnparseable
	}

	service := amountAfterKeyword(text, "service")
	if service <= 0 {
		service = 0
		if pct, ok := percentAfterKeyword(text, "service"); ok {
			service = percentOf(subtotal, pct)
		}
	}

	tax := firstPositive(
		func() int64 { return amountAfterKeyword(text, "pajak") },
		func() int64 { return amountAfterKeyword(text, "ppn") },
	)
	if tax <= 0 {
		tax = 0
		pct, ok := percentAfterKeyword(text, "pajak")
		if !ok {
			pct, ok = percentAfterKeyword(text, "ppn")
		}
		if ok {
			tax = percentOf(subtotal+service, pct)
		}
	}

	return &SplitBill{
		Subtotal:      subtotal,
		People:        people,
		ServiceAmount: service,
		TaxAmount:     tax,
	}, nil
}

// amountAfterKeyword returns the amount written right after keyword, or 0.
// The amount must not run into another digit or a percent sign, so
// "service 10%" yields nothing here and is left to percentAfterKeyword.
func amountAfterKeyword(text, keyword string) int64 {
	re := keywordAmountRes[keyword]
	for _, m := range re.FindAllStringSubmatchIndex(text, -1) {
		start, bodyEnd := m[2], m[3]

		// Try the match with its unit suffix first, then without it, then
		// progressively shorter digit runs.
		if m[4] >= 0 && amountBoundary(text, m[5]) {
			v, _ := NormalizeAmountToken(text[start:m[5]])
			return v
		}
		firstDigit := start + strings.IndexFunc(text[start:bodyEnd], isASCIIDigit)
		for end := bodyEnd; end > firstDigit; end-- {
			if amountBoundary(text, end) {
				v, _ := NormalizeAmountToken(text[start:end])
				return v
			}
		}
	}
	return 0
}

// amountBoundary reports whether an amount may end at byte offset end of text.
func amountBoundary(text string, end int) bool {
	if end >= len(text) {
		return true
	}
	c := text[end]
	return !(c >= '0' && c <= '9') && c != '%'
}

// percentAfterKeyword returns the percentage written right after keyword.
func percentAfterKeyword(text, keyword string) (decimal.Decimal, bool) {
	m := keywordPercentRes[keyword].FindStringSubmatch(text)
	if m == nil {
		return decimal.Zero, false
	}
	pct, err := decimal.NewFromString(strings.ReplaceAll(m[1], ",", "."))
	if err != nil {
		return decimal.Zero, false
	}
	return pct, true
}

// percentOf returns pct percent of base, rounded half to even.
func percentOf(base int64, pct decimal.Decimal) int64 {
	return decimal.NewFromInt(base).Mul(pct).Div(decimal.NewFromInt(100)).RoundBank(0).IntPart()
}

func firstPositive(candidates ...func() int64) int64 {
	for _, c := range candidates {
		if v := c(); v > 0 {
			return v
		}
	}
	return 0
}

func isASCIIDigit(r rune) bool {
	return r >= '0' && r <= '9'
}
