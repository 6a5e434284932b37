package extract

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("NormalizeAmountToken", func() {
	DescribeTable("valid tokens",
		func(token string, expected int64) {
			amount, ok := NormalizeAmountToken(token)
			Expect(ok).To(BeTrue())
			Expect(amount).To(Equal(expected))
		},
		Entry("plain digits", "25000", int64(25000)),
		Entry("rb suffix", "25rb", int64(25000)),
		Entry("ribu suffix with a space", "15 ribu", int64(15000)),
		Entry("k suffix", "50k", int64(50000)),
		Entry("jt suffix with a decimal point", "2.5jt", int64(2500000)),
		Entry("juta suffix with a decimal comma", "1,5 juta", int64(1500000)),
		Entry("currency prefix and thousand separators", "Rp 1.200.000", int64(1200000)),
		Entry("idr prefix", "IDR 75.000", int64(75000)),
		Entry("rp with a dot", "Rp.12.500", int64(12500)),
	)

	DescribeTable("invalid tokens",
		func(token string) {
			_, ok := NormalizeAmountToken(token)
			Expect(ok).To(BeFalse())
		},
		Entry("empty", ""),
		Entry("currency only", "Rp"),
		Entry("suffix only", "rb"),
		Entry("unparseable decimal", "1.2.3jt"),
		Entry("suffixed value beyond int64", "99999999999999999999rb"),
		Entry("jt value beyond int64", "9999999999999999jt"),
		Entry("negative suffixed value", "-5rb"),
	)
})

var _ = Describe("ParseAmountFromText", func() {
	It("should return the first amount in the text", func() {
		amount, ok := ParseAmountFromText("ubah total 125rb ya")
		Expect(ok).To(BeTrue())
		Expect(amount).To(Equal(int64(125000)))
	})

	It("should reject a zero amount", func() {
		_, ok := ParseAmountFromText("budget 0")
		Expect(ok).To(BeFalse())
	})

	It("should reject text without numbers", func() {
		_, ok := ParseAmountFromText("ubah total")
		Expect(ok).To(BeFalse())
	})
})

var _ = Describe("isPlausibleMoneyToken", func() {
	DescribeTable("classification",
		func(token string, expected bool) {
			Expect(isPlausibleMoneyToken(token)).To(Equal(expected))
		},
		Entry("bare 10 digit reference number", "1234567890", false),
		Entry("phone number", "081234567890", false),
		Entry("more than 12 digits", "Rp 1234567890123", false),
		Entry("decimal cents group", "50.000,00", false),
		Entry("too many groups", "1.000.000.000.000.000", false),
		Entry("letters only", "rp.", false),
		Entry("grouped amount", "50.000", true),
		Entry("currency with long digits", "Rp 12345678", true),
		Entry("suffixed amount", "25rb", true),
		Entry("short plain number", "7500", true),
	)
})

var _ = Describe("extractAmounts", func() {
	It("should keep plausible amounts and drop references and tiny numbers", func() {
		Expect(extractAmounts("Total 50.000 Ref 1234567890 Qty 2")).To(Equal([]int64{50000}))
	})

	It("should return nothing for text without money", func() {
		Expect(extractAmounts("Terima kasih")).To(BeEmpty())
	})
})

var _ = Describe("FormatIDR", func() {
	DescribeTable("formatting",
		func(amount int64, expected string) {
			Expect(FormatIDR(amount)).To(Equal(expected))
		},
		Entry("zero", int64(0), "Rp0"),
		Entry("hundreds", int64(500), "Rp500"),
		Entry("thousands", int64(25000), "Rp25.000"),
		Entry("millions", int64(1250000), "Rp1.250.000"),
		Entry("negative", int64(-1500), "-Rp1.500"),
	)
})
