package extract

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("pickMerchant", func() {
	It("should skip structural lines and pick the most letter-heavy header", func() {
		Expect(pickMerchant([]string{"STRUK BELANJA", "TOKO SUMBER REJEKI", "Jl. Merdeka 10"})).To(Equal("Toko Sumber Rejeki"))
	})

	It("should only look at the first three lines", func() {
		Expect(pickMerchant([]string{"12345", "Rp 5.000", "No. 1", "WARUNG BAHAGIA"})).To(Equal(UnknownMerchant))
	})

	It("should keep the first of two equal scores", func() {
		Expect(pickMerchant([]string{"abcd", "wxyz"})).To(Equal("Abcd"))
	})

	It("should fall back when there are no lines", func() {
		Expect(pickMerchant(nil)).To(Equal(UnknownMerchant))
	})
})

var _ = Describe("pickBankRecipient", func() {
	It("should read an inline recipient", func() {
		Expect(pickBankRecipient([]string{"BCA mobile", "Transfer Berhasil", "Penerima: budi santoso", "Ref 123"})).To(Equal("Budi Santoso"))
	})

	It("should read the recipient from the next line", func() {
		Expect(pickBankRecipient([]string{"Bank BRI", "Nama Penerima", "SITI AMINAH", "Nominal 250.000"})).To(Equal("Siti Aminah"))
	})

	It("should fall back to the bank name when the recipient is a number", func() {
		Expect(pickBankRecipient([]string{"Transfer BNI", "Penerima: 1234567890"})).To(Equal("Transfer BNI"))
	})

	It("should fall back to a generic name", func() {
		Expect(pickBankRecipient([]string{"Pembayaran QRIS", "Nominal 10.000"})).To(Equal(UnknownBankRecipient))
	})
})

var _ = Describe("pickReceiptCategory", func() {
	It("should prefer a merchant override", func() {
		Expect(pickReceiptCategory("Indomaret Point", nil)).To(Equal("Belanja Bulanan"))
	})

	It("should infer from the merchant and contents", func() {
		Expect(pickReceiptCategory("Warung Bu Sri", []string{"Nasi 15.000"})).To(Equal("Makanan & Minuman"))
	})

	It("should fall back to the receipt category", func() {
		Expect(pickReceiptCategory("Toko Abc", []string{"Item X"})).To(Equal(ReceiptFallbackCategory))
	})
})
