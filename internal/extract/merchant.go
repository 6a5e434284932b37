package extract

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"
)

const (
	// UnknownMerchant is used when no header line looks like a store name.
	UnknownMerchant = "Merchant tidak diketahui"
	// UnknownBankRecipient is used when a bank slip names neither a recipient nor a bank.
	UnknownBankRecipient = "Transaksi Bank"

	// ReceiptFallbackCategory is the category of a retail receipt nothing else matched.
	ReceiptFallbackCategory = "Belanja Lainnya"
	// BankCategory is the category of every bank transaction.
	BankCategory = "Transfer/Bank"
)

// merchantSkipHints mark header lines that are structure rather than a store name.
var merchantSkipHints = []string{"struk", "receipt", "invoice", "tanggal", "date", "table", "cashier", "no.", "telp", "phone"}

var (
	recipientLabels       = []string{"penerima", "recipient", "receiver", "beneficiary", "tujuan", "kepada", "nama penerima", "nama tujuan"}
	recipientInvalidHints = []string{"pan", "ref", "terminal", "id", "rekening", "account"}

	recipientInlineRe = regexp.MustCompile(`(?i)(?:penerima|recipient|receiver|beneficiary|tujuan|kepada)\s*[:=-]\s*(.+)$`)
)

// merchantOverride assigns a fixed category to a well-known merchant.
type merchantOverride struct {
	key      string
	category string
}

var merchantOverrides = []merchantOverride{
	{"alfamart", "Belanja Bulanan"},
	{"indomaret", "Belanja Bulanan"},
	{"superindo", "Belanja Bulanan"},
	{"hypermart", "Belanja Bulanan"},
	{"starbucks", "Kopi/Snack"},
	{"kopi kenangan", "Kopi/Snack"},
	{"janji jiwa", "Kopi/Snack"},
	{"fore", "Kopi/Snack"},
	{"mcd", "Makanan & Minuman"},
	{"kfc", "Makanan & Minuman"},
	{"burger king", "Makanan & Minuman"},
}

// pickMerchant scores the first three lines of a retail receipt and returns the
// best-looking store name.
func pickMerchant(lines []string) string {
	merchant := UnknownMerchant
	best := -999

	head := lines
	if len(head) > 3 {
		head = head[:3]
	}
	for _, line := range head {
		low := strings.ToLower(line)
		if containsAny(low, merchantSkipHints) {
			continue
		}

		letters, digits := 0, 0
		for _, r := range line {
			switch {
			case unicode.IsLetter(r):
				letters++
			case unicode.IsDigit(r):
				digits++
			}
		}
		score := letters - 2*digits
		if strings.Contains(low, "rp") {
			score -= 8
		}
		if score > best && letters >= 3 {
			best = score
			merchant = titleCase(line)
		}
	}
	return merchant
}

// pickBankRecipient finds the transfer recipient on a bank slip, falling back to
// the bank name and finally to UnknownBankRecipient.
func pickBankRecipient(lines []string) string {
	for i, line := range lines {
		if !containsAny(strings.ToLower(line), recipientLabels) {
			continue
		}

		var candidate string
		if m := recipientInlineRe.FindStringSubmatch(line); m != nil {
			candidate = strings.TrimSpace(m[1])
		} else if i+1 < len(lines) {
			candidate = strings.TrimSpace(lines[i+1])
		}
		if validRecipient(candidate) {
			return titleCase(candidate)
		}
	}

	head := lines
	if len(head) > 6 {
		head = head[:6]
	}
	for _, line := range head {
		low := strings.ToLower(line)
		for _, bank := range bankNames {
			if strings.Contains(low, bank) {
				return "Transfer " + strings.ToUpper(bank)
			}
		}
	}
	return UnknownBankRecipient
}

// validRecipient rejects candidates that are too short, are identifiers, or are mostly digits.
func validRecipient(candidate string) bool {
	n := utf8.RuneCountInString(candidate)
	if n < 3 {
		return false
	}
	if containsAny(strings.ToLower(candidate), recipientInvalidHints) {
		return false
	}
	digits := 0
	for _, r := range candidate {
		if unicode.IsDigit(r) {
			digits++
		}
	}
	return float64(digits)/float64(n) < 0.4
}

// pickReceiptCategory categorizes a retail receipt from its merchant and contents.
func pickReceiptCategory(merchant string, lines []string) string {
	low := strings.ToLower(merchant)
	for _, o := range merchantOverrides {
		if strings.Contains(low, o.key) {
			return o.category
		}
	}

	if c := InferCategory(merchant + " " + strings.Join(lines, " ")); c != DefaultCategory {
		return c
	}
	return ReceiptFallbackCategory
}
