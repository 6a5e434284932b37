package extract

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// DefaultCategory is used when no keyword matches a free-text expense.
const DefaultCategory = "Lainnya"

// categoryRule maps a category name to the keywords that select it.
type categoryRule struct {
	Name     string
	Keywords []string
}

// categoryRules is evaluated top to bottom; the first category with a matching keyword wins.
var categoryRules = []categoryRule{
	{"Makanan & Minuman", []string{"kopi", "makan", "minum", "resto", "warung", "gofood", "grabfood", "snack", "jajan"}},
	{"Transportasi", []string{"bensin", "bbm", "parkir", "tol", "gojek", "gocar", "grab", "kereta", "bus", "ojek"}},
	{"Belanja", []string{"belanja", "indomaret", "alfamart", "supermarket", "shopee", "tokopedia", "lazada", "pakaian", "sepatu"}},
	{"Tagihan", []string{"listrik", "pln", "air", "internet", "wifi", "pulsa", "paket data", "token", "bpjs"}},
	{"Hiburan", []string{"nonton", "bioskop", "netflix", "spotify", "game", "steam", "rekreasi"}},
	{"Kesehatan", []string{"dokter", "obat", "klinik", "apotek", "vitamin", "rumah sakit"}},
	{"Pendidikan", []string{"kursus", "buku", "sekolah", "kuliah", "pelatihan"}},
}

// Categories returns the known category names in evaluation order.
func Categories() []string {
	names := make([]string, 0, len(categoryRules))
	for _, rule := range categoryRules {
		names = append(names, rule.Name)
	}
	return names
}

// InferCategory picks a category for text by case-insensitive keyword containment.
func InferCategory(text string) string {
	low := strings.ToLower(text)
	for _, rule := range categoryRules {
		for _, kw := range rule.Keywords {
			if strings.Contains(low, kw) {
				return rule.Name
			}
		}
	}
	return DefaultCategory
}

// NormalizeCategory canonicalizes a user-supplied category name. Known categories
// are returned with their canonical spelling; anything else is title-cased.
// Applying it twice gives the same result as applying it once.
func NormalizeCategory(name string) string {
	clean := strings.ToLower(collapseSpaces(name))
	if clean == "" {
		return DefaultCategory
	}
	for _, rule := range categoryRules {
		if strings.ToLower(rule.Name) == clean {
			return rule.Name
		}
	}
	return titleCase(clean)
}

// titleCase upper-cases the first letter of every word. A Caser holds state, so
// one is built per call to keep this safe for concurrent use.
func titleCase(s string) string {
	return cases.Title(language.Indonesian).String(s)
}

// collapseSpaces trims s and replaces every whitespace run with a single space.
func collapseSpaces(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
