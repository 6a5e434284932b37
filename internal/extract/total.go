package extract

import (
	"regexp"
	"slices"
	"strings"
)

// minTrustedTotal is the smallest total accepted without manual confirmation.
const minTrustedTotal = 1000

var (
	// receiptTotalKeywords label the payable total on a retail receipt.
	receiptTotalKeywords = []string{"grand total", "total bayar", "amount due", "netto", "jumlah", "total"}

	// bankTotalKeywords label the transferred amount on a bank slip.
	bankTotalKeywords = []string{"total amount", "jumlah transfer", "nominal transfer", "transfer amount", "debit amount", "nominal", "total debit"}

	// totalNoiseHints mark lines whose numbers are not the total.
	totalNoiseHints = []string{
		"ppn", "tax", "pajak", "service", "change", "kembalian", "payment", "paid", "debit", "credit",
		"cash", "tunai", "diskon", "discount", "admin", "subtotal", "sub total", "saldo", "balance",
		"available", "fee", "pan", "terminal id", "reference no", "reference", "ref",
	}

	// stopLabelRe cuts a keyword segment before labels that introduce unrelated numbers.
	stopLabelRe = regexp.MustCompile(`(?i)\b(source of fund|qris reference|reference|ref no|merchant pan|customer pan|terminal id|acquirer|saldo|balance|available|fee|admin)\b`)
)

// extractTotal finds the payable total in OCR lines. Amounts next to total
// keywords are preferred and their median is returned. Without any keyword
// hit the largest plausible amount is used and usedFallback is true.
func extractTotal(lines []string, bank bool) (total int64, found, usedFallback bool) {
	keywords := receiptTotalKeywords
	if bank {
		keywords = append(slices.Clone(bankTotalKeywords), receiptTotalKeywords...)
	}

	var candidates []int64
	for i, line := range lines {
		low := strings.ToLower(line)
		if strings.Contains(low, "subtotal") || strings.Contains(low, "sub total") {
			continue
		}
		if !containsAny(low, keywords) {
			continue
		}

		inline := false
		for _, kw := range keywords {
			idx := strings.Index(low, kw)
			if idx < 0 {
				continue
			}
			segment := low[idx+len(kw):]
			if loc := stopLabelRe.FindStringIndex(segment); loc != nil {
				segment = segment[:loc[0]]
			}
			if amounts := extractAmounts(segment); len(amounts) > 0 {
				candidates = append(candidates, amounts[0])
				inline = true
			}
		}

		// "TOTAL" on its own line with the amount printed underneath.
		if !inline && i+1 < len(lines) {
			next := lines[i+1]
			if !containsAny(strings.ToLower(next), totalNoiseHints) {
				if amounts := extractAmounts(next); len(amounts) > 0 {
					candidates = append(candidates, amounts[0])
				}
			}
		}
	}

	if len(candidates) > 0 {
		return medianAmount(candidates), true, false
	}

	var best int64
	for _, line := range lines {
		if containsAny(strings.ToLower(line), totalNoiseHints) {
			continue
		}
		for _, a := range extractAmounts(line) {
			if a >= minTrustedTotal && a > best {
				best = a
				found = true
			}
		}
	}
	if !found {
		return 0, false, false
	}
	return best, true, true
}

// medianAmount returns the element at index n/2 of the sorted values. For an
// even count that is the larger of the two middle values.
func medianAmount(values []int64) int64 {
	sorted := slices.Clone(values)
	slices.Sort(sorted)
	return sorted[len(sorted)/2]
}
