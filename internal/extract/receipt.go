package extract

import "fmt"

// ManualConfirmationReply asks the user to type the total of a receipt that could not be read reliably.
const ManualConfirmationReply = "Sepertinya struknya agak buram, boleh konfirmasi total belanjanya berapa, Kak?"

// ReceiptExtraction is what was read from a retail receipt or a bank slip.
type ReceiptExtraction struct {
	Merchant          string `json:"merchant"`
	DateText          string `json:"date_text"`
	Total             int64  `json:"total"`
	Category          string `json:"category"`
	UsedFallbackTotal bool   `json:"used_fallback_total"`
	IsBankTransaction bool   `json:"is_bank_transaction"`
}

// OCRResult is the outcome of running the receipt pipeline on OCR text.
// Receipt is nil exactly when NeedsManualConfirmation is true.
type OCRResult struct {
	RawText                 string             `json:"raw_text"`
	Receipt                 *ReceiptExtraction `json:"receipt,omitempty"`
	NeedsManualConfirmation bool               `json:"needs_manual_confirmation"`
	ReplyText               string             `json:"reply_text"`
}

// ExtractReceiptText runs the receipt pipeline on raw OCR text.
func ExtractReceiptText(raw string) OCRResult {
	return extractReceipt(NormalizeLines(raw))
}

// ExtractReceiptData runs the receipt pipeline on OCR output that is already split into lines.
func ExtractReceiptData(lines []string) OCRResult {
	return extractReceipt(NormalizeLineSlice(lines))
}

func extractReceipt(lines []string) OCRResult {
	raw := JoinLines(lines)

	bank := IsBankTransaction(lines)
	total, found, usedFallback := extractTotal(lines, bank)
	if isNoisy(lines, total, found, usedFallback) {
		return OCRResult{
			RawText:                 raw,
			NeedsManualConfirmation: true,
			ReplyText:               ManualConfirmationReply,
		}
	}

	receipt := &ReceiptExtraction{
		DateText:          ExtractDate(raw),
		Total:             total,
		UsedFallbackTotal: usedFallback,
		IsBankTransaction: bank,
	}
	if bank {
		receipt.Merchant = pickBankRecipient(lines)
		receipt.Category = BankCategory
	} else {
		receipt.Merchant = pickMerchant(lines)
		receipt.Category = pickReceiptCategory(receipt.Merchant, lines)
	}

	return OCRResult{
		RawText:   raw,
		Receipt:   receipt,
		ReplyText: confirmationReply(receipt),
	}
}

func confirmationReply(r *ReceiptExtraction) string {
	source := "struk"
	if r.IsBankTransaction {
		source = "bukti transaksi bank"
	}
	return fmt.Sprintf("Wah, %s dari %s ya! Berhasil dicatat nih:\n\n"+
		"Total: %s\n\n"+
		"Kategori: %s\n\n"+
		"Tanggal: %s\n"+
		"Mau langsung simpan atau ada yang mau diubah?",
		source, r.Merchant, FormatIDR(r.Total), r.Category, r.DateText)
}
