package expense

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/zombor/cuanbot/internal/extract"
)

// Edit commands accepted while a scanned receipt waits for confirmation
const (
	editTotalPrefix    = "ubah total"
	editCategoryPrefix = "ubah kategori"
	editMerchantPrefix = "ubah merchant"
	editDatePrefix     = "ubah tanggal"
)

const pendingHintReply = "Balas `simpan` untuk simpan struk, `batal` untuk batal, " +
	"atau `ubah total/kategori/merchant/tanggal ...`."

var (
	confirmWords = map[string]bool{"simpan": true, "ya": true, "y": true, "oke": true, "ok": true}
	cancelWords  = map[string]bool{"batal": true, "tidak": true, "ga": true, "gak": true}
)

// pendingItem is the default description of a scanned receipt
func pendingItem(merchant string, bank bool) string {
	if bank {
		return "Transfer ke " + merchant
	}
	return "Belanja " + merchant
}

// startPending archives the photo and stores the scan for confirmation,
// replacing any receipt the user left unconfirmed
func (s *Service) startPending(userKey string, result extract.OCRResult, data []byte, contentType string) (string, error) {
	r := result.Receipt
	previous, err := s.db.GetPending(userKey)
	if err != nil {
		return "", fmt.Errorf("getting pending receipt: %w", err)
	}

	pending := &PendingReceipt{
		Item:              pendingItem(r.Merchant, r.IsBankTransaction),
		Amount:            r.Total,
		Category:          r.Category,
		DateText:          r.DateText,
		IsBankTransaction: r.IsBankTransaction,
		CreatedAt:         s.timeSource.Now().UTC(),
	}

	if s.images != nil {
		name := receiptFileName(s.idGenerator.Generate(), contentType)
		if err := s.images.Save(name, data); err != nil {
			slog.Warn("Failed to archive receipt image", "user", userKey, "error", err)
		} else {
			pending.ReceiptFile = name
			pending.ContentType = contentType
		}
	}

	if err := s.db.SavePending(userKey, pending); err != nil {
		s.removeImage(pending.ReceiptFile)
		return "", fmt.Errorf("saving pending receipt: %w", err)
	}
	if previous != nil {
		s.removeImage(previous.ReceiptFile)
	}

	return result.ReplyText, nil
}

// handlePending applies a reply to the receipt waiting for confirmation
func (s *Service) handlePending(userKey string, pending *PendingReceipt, text string) (string, error) {
	low := strings.ToLower(text)

	switch {
	case confirmWords[low]:
		return s.storeExpense(&Expense{
			UserKey:     userKey,
			Item:        pending.Item,
			Amount:      pending.Amount,
			Category:    pending.Category,
			ReceiptDate: pending.DateText,
			ReceiptFile: pending.ReceiptFile,
			ContentType: pending.ContentType,
		}, func(e *Expense) error {
			return s.db.ConfirmPending(userKey, e)
		})

	case cancelWords[low]:
		if err := s.db.DeletePending(userKey); err != nil {
			return "", fmt.Errorf("deleting pending receipt: %w", err)
		}
		s.removeImage(pending.ReceiptFile)
		return "Oke, struknya tidak jadi disimpan.", nil

	case strings.HasPrefix(low, editTotalPrefix):
		amount, ok := extract.ParseAmountFromText(text)
		if !ok {
			return "Format ubah total: `ubah total 125000`", nil
		}
		pending.Amount = amount
		return s.savePendingEdit(userKey, pending, "total diubah jadi "+extract.FormatIDR(amount))

	case strings.HasPrefix(low, editCategoryPrefix):
		value := strings.TrimSpace(text[len(editCategoryPrefix):])
		if value == "" {
			return "Format ubah kategori: `ubah kategori Makanan & Minuman`", nil
		}
		pending.Category = extract.NormalizeCategory(value)
		return s.savePendingEdit(userKey, pending, "kategori diubah jadi "+pending.Category)

	case strings.HasPrefix(low, editMerchantPrefix):
		value := strings.TrimSpace(text[len(editMerchantPrefix):])
		if value == "" {
			return "Format ubah merchant: `ubah merchant Nama Toko`", nil
		}
		pending.Item = pendingItem(value, pending.IsBankTransaction)
		return s.savePendingEdit(userKey, pending, "merchant diubah ke "+value)

	case strings.HasPrefix(low, editDatePrefix):
		value := strings.TrimSpace(text[len(editDatePrefix):])
		if value == "" {
			return "Format ubah tanggal: `ubah tanggal 13/02/2026`", nil
		}
		pending.DateText = value
		return s.savePendingEdit(userKey, pending, "tanggal diubah jadi "+value)
	}

	return pendingHintReply, nil
}

func (s *Service) savePendingEdit(userKey string, pending *PendingReceipt, change string) (string, error) {
	if err := s.db.SavePending(userKey, pending); err != nil {
		return "", fmt.Errorf("saving pending receipt: %w", err)
	}
	return fmt.Sprintf("Siap, %s. Balas `simpan` atau lanjut ubah.", change), nil
}
