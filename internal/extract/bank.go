package extract

import "strings"

// bankNames are the Indonesian banks recognized on transfer slips, in lookup order.
var bankNames = []string{"bca", "bri", "bni", "mandiri", "permata", "cimb", "danamon", "ocbc", "dbs", "jago", "blu", "seabank", "maybank"}

// bankContext must appear next to a bank name for the text to count as a bank slip.
var bankContext = []string{"transfer", "penerima", "recipient", "beneficiary", "receiver", "rekening", "account", "nominal", "debit", "saldo", "ref", "trx", "qris"}

// bankHints are scored when no bank name is present; two hits are enough.
var bankHints = []string{"bank", "rekening", "no rek", "account", "transfer", "recipient", "va ", "virtual account", "m-banking", "mobile banking", "internet banking", "debit", "kredit", "qris", "trx", "ref"}

// IsBankTransaction reports whether the lines look like a bank transfer or
// payment slip rather than a retail receipt.
func IsBankTransaction(lines []string) bool {
	joined := strings.ToLower(strings.Join(lines, " "))
	if containsAny(joined, bankNames) && containsAny(joined, bankContext) {
		return true
	}

	score := 0
	for _, h := range bankHints {
		if strings.Contains(joined, h) {
			score++
		}
	}
	return score >= 2
}

func containsAny(s string, needles []string) bool {
	for _, n := range needles {
		if strings.Contains(s, n) {
			return true
		}
	}
	return false
}
