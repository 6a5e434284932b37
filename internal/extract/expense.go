package extract

import (
	"errors"
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"
)

var (
	// ErrUnparseable is returned when a message does not contain a usable expense.
	ErrUnparseable = errors.New("unparseable input")

	// ErrNotSplitBill is returned when a message is not a split-bill request at all.
	ErrNotSplitBill = errors.New("not a split bill")
)

// categoryOverrideRe captures a trailing "kategori <name>" or "cat: <name>".
var categoryOverrideRe = regexp.MustCompile(`(?i)(?:kategori|cat)\s*[:=-]?\s*([a-zA-Z/& ]+)$`)

// fillerVerbs are leading verbs dropped from an item description.
var fillerVerbs = []string{"beli", "bayar", "belanja", "order", "pesan", "pesen", "isi", "topup", "top up"}

// ParsedExpense is a single expense read from a free-text note.
type ParsedExpense struct {
	Item     string `json:"item"`
	Amount   int64  `json:"amount"`
	Category string `json:"category"`
}

// ParseExpenseInput reads an item, an amount and a category from a note such as
// "beli kopi 25rb" or "bayar listrik 450000 kategori Tagihan".
func ParseExpenseInput(text string) (*ParsedExpense, error) {
	clean := collapseSpaces(text)
	if clean == "" {
		return nil, ErrUnparseable
	}

	var category string
	if loc := categoryOverrideRe.FindStringSubmatchIndex(clean); loc != nil {
		category = NormalizeCategory(clean[loc[2]:loc[3]])
		clean = strings.TrimSpace(clean[:loc[0]])
	}

	loc := amountTokenRe.FindStringIndex(clean)
	if loc == nil {
		return nil, ErrUnparseable
	}
	amount, ok := NormalizeAmountToken(clean[loc[0]:loc[1]])
	if !ok || amount <= 0 {
		return nil, ErrUnparseable
	}

	item := strings.Trim(clean[:loc[0]]+clean[loc[1]:], " ,.-:")
	item = stripFillerVerb(item)
	if item == "" {
		return nil, ErrUnparseable
	}
	item = capitalize(item)

	if category == "" {
		category = InferCategory(item)
	}

	return &ParsedExpense{
		Item:     item,
		Amount:   amount,
		Category: category,
	}, nil
}

func stripFillerVerb(item string) string {
	low := strings.ToLower(item)
	for _, verb := range fillerVerbs {
		if strings.HasPrefix(low, verb+" ") {
			return strings.TrimSpace(item[len(verb):])
		}
	}
	return item
}

// capitalize upper-cases the first rune and lower-cases the rest.
func capitalize(s string) string {
	r, size := utf8.DecodeRuneInString(s)
	if r == utf8.RuneError {
		return s
	}
	return string(unicode.ToUpper(r)) + strings.ToLower(s[size:])
}
