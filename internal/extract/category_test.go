package extract

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("InferCategory", func() {
	DescribeTable("keyword matching",
		func(text, expected string) {
			Expect(InferCategory(text)).To(Equal(expected))
		},
		Entry("food", "Kopi", "Makanan & Minuman"),
		Entry("transport", "isi bensin", "Transportasi"),
		Entry("shopping", "beli sepatu", "Belanja"),
		Entry("bills", "tagihan PLN", "Tagihan"),
		Entry("entertainment", "langganan Netflix", "Hiburan"),
		Entry("health", "obat flu", "Kesehatan"),
		Entry("education", "kursus bahasa", "Pendidikan"),
		Entry("earlier category wins", "kopi di grab", "Makanan & Minuman"),
		Entry("no keyword", "sesuatu", "Lainnya"),
	)
})

var _ = Describe("NormalizeCategory", func() {
	DescribeTable("normalization",
		func(name, expected string) {
			Expect(NormalizeCategory(name)).To(Equal(expected))
		},
		Entry("known category with odd spacing", "  makanan   &  minuman ", "Makanan & Minuman"),
		Entry("known category in upper case", "TAGIHAN", "Tagihan"),
		Entry("empty", "", "Lainnya"),
		Entry("whitespace only", "   ", "Lainnya"),
		Entry("custom category", "dana  darurat", "Dana Darurat"),
	)

	It("should be idempotent", func() {
		for _, name := range []string{"makanan & minuman", "dana darurat", "", "LIBURAN keluarga", "Transportasi"} {
			once := NormalizeCategory(name)
			Expect(NormalizeCategory(once)).To(Equal(once), "input %q", name)
		}
	})
})

var _ = Describe("Categories", func() {
	It("should list categories in evaluation order", func() {
		Expect(Categories()).To(Equal([]string{
			"Makanan & Minuman", "Transportasi", "Belanja", "Tagihan", "Hiburan", "Kesehatan", "Pendidikan",
		}))
	})
})
