package expense

import "time"

// Expense is a single recorded spending entry
type Expense struct {
	ID          uint64    `json:"id"`
	UserKey     string    `json:"user_key"`
	Item        string    `json:"item"`
	Amount      int64     `json:"amount"` // Whole rupiah
	Category    string    `json:"category"`
	ReceiptDate string    `json:"receipt_date,omitempty"` // Date as printed on the receipt, if scanned
	ReceiptFile string    `json:"receipt_file,omitempty"` // Archived receipt image, if scanned
	ContentType string    `json:"content_type,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

// CategoryTotal is the amount spent in one category over a period
type CategoryTotal struct {
	Category string `json:"category"`
	Total    int64  `json:"total"`
}

// CategoryBudget is a weekly spending limit for one category
type CategoryBudget struct {
	Category string `json:"category"`
	Limit    int64  `json:"limit"`
}

// PendingReceipt is a scanned receipt waiting for the user to save, edit or discard it
type PendingReceipt struct {
	Item              string    `json:"item"`
	Amount            int64     `json:"amount"`
	Category          string    `json:"category"`
	DateText          string    `json:"date_text"`
	IsBankTransaction bool      `json:"is_bank_transaction"`
	ReceiptFile       string    `json:"receipt_file,omitempty"`
	ContentType       string    `json:"content_type,omitempty"`
	CreatedAt         time.Time `json:"created_at"`
}
