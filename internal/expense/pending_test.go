package expense

import (
	"context"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("Pending receipts", func() {
	var (
		db      *mockDB
		images  *mockImageStore
		service *Service
		user    string
		pending *PendingReceipt
		reply   string
		text    string
	)

	BeforeEach(func() {
		db = newMockDB()
		images = newMockImageStore()
		user = "web:alice"
		text = ""
		clock := &mockTimeSource{now: time.Date(2026, 2, 13, 10, 0, 0, 0, wib)}
		service = NewServiceWithDeps(db, &mockScanner{}, images, Config{Location: wib}, &mockIDGenerator{}, clock)

		pending = &PendingReceipt{
			Item:        "Belanja Indomaret",
			Amount:      50000,
			Category:    "Belanja Bulanan",
			DateText:    "13/02/2026",
			ReceiptFile: "img-1.jpg",
			ContentType: "image/jpeg",
		}
		images.files["img-1.jpg"] = []byte("jpeg")
	})

	JustBeforeEach(func() {
		Expect(db.SavePending(user, pending)).To(Succeed())
		reply = service.HandleText(context.Background(), user, text)
	})

	current := func() *PendingReceipt {
		p, err := db.GetPending(user)
		Expect(err).NotTo(HaveOccurred())
		return p
	}

	DescribeTable("confirming",
		func(word string) {
			Expect(service.HandleText(context.Background(), user, word)).To(Equal(
				"Siap! Belanja Indomaret senilai Rp50.000 sudah masuk catatan Belanja Bulanan. ✅\nID transaksi: #1"))
			Expect(current()).To(BeNil())
		},
		Entry("simpan", "simpan"),
		Entry("ya", "ya"),
		Entry("y", "y"),
		Entry("oke", "Oke"),
		Entry("ok", "OK"),
	)

	When("the user saves the receipt", func() {
		BeforeEach(func() {
			text = "simpan"
		})

		It("should record the expense with its receipt", func() {
			expenses, err := db.ListExpenses(user)
			Expect(err).NotTo(HaveOccurred())
			Expect(expenses).To(HaveLen(1))
			Expect(expenses[0].Item).To(Equal("Belanja Indomaret"))
			Expect(expenses[0].ReceiptDate).To(Equal("13/02/2026"))
			Expect(expenses[0].ReceiptFile).To(Equal("img-1.jpg"))
			Expect(expenses[0].ContentType).To(Equal("image/jpeg"))
		})

		It("should keep the archived image", func() {
			Expect(images.files).To(HaveKey("img-1.jpg"))
		})
	})

	When("saving the receipt fails", func() {
		BeforeEach(func() {
			text = "simpan"
			db.confirmErr = errBoom
		})

		It("should apologize", func() {
			Expect(reply).To(Equal(storageErrorReply))
		})

		It("should record nothing and keep the pending receipt", func() {
			Expect(db.ListExpenses(user)).To(BeEmpty())
			Expect(current()).NotTo(BeNil())
		})

		It("should record the receipt once when saved again", func() {
			db.confirmErr = nil
			Expect(service.HandleText(context.Background(), user, "simpan")).To(HavePrefix("Siap! Belanja Indomaret"))
			Expect(db.ListExpenses(user)).To(HaveLen(1))
			Expect(current()).To(BeNil())
		})
	})

	When("the user cancels", func() {
		BeforeEach(func() {
			text = "batal"
		})

		It("should confirm the cancellation", func() {
			Expect(reply).To(Equal("Oke, struknya tidak jadi disimpan."))
		})

		It("should drop the pending receipt and its image", func() {
			Expect(current()).To(BeNil())
			Expect(images.files).To(BeEmpty())
		})

		It("should not record anything", func() {
			Expect(db.ListExpenses(user)).To(BeEmpty())
		})
	})

	DescribeTable("other cancel words",
		func(word string) {
			Expect(service.HandleText(context.Background(), user, word)).To(Equal("Oke, struknya tidak jadi disimpan."))
		},
		Entry("tidak", "tidak"),
		Entry("ga", "ga"),
		Entry("gak", "gak"),
	)

	When("the user changes the total", func() {
		BeforeEach(func() {
			text = "ubah total 125rb"
		})

		It("should confirm the change", func() {
			Expect(reply).To(Equal("Siap, total diubah jadi Rp125.000. Balas `simpan` atau lanjut ubah."))
		})

		It("should update the pending receipt", func() {
			Expect(current().Amount).To(Equal(int64(125000)))
		})
	})

	When("the new total is missing", func() {
		BeforeEach(func() {
			text = "ubah total"
		})

		It("should show the format", func() {
			Expect(reply).To(Equal("Format ubah total: `ubah total 125000`"))
			Expect(current().Amount).To(Equal(int64(50000)))
		})
	})

	When("the user changes the category", func() {
		BeforeEach(func() {
			text = "Ubah kategori makanan & minuman"
		})

		It("should normalize the category", func() {
			Expect(reply).To(Equal("Siap, kategori diubah jadi Makanan & Minuman. Balas `simpan` atau lanjut ubah."))
			Expect(current().Category).To(Equal("Makanan & Minuman"))
		})
	})

	When("the new category is missing", func() {
		BeforeEach(func() {
			text = "ubah kategori"
		})

		It("should show the format", func() {
			Expect(reply).To(Equal("Format ubah kategori: `ubah kategori Makanan & Minuman`"))
		})
	})

	When("the user changes the merchant", func() {
		BeforeEach(func() {
			text = "ubah merchant Alfamart Sudirman"
		})

		It("should rename the item", func() {
			Expect(reply).To(Equal("Siap, merchant diubah ke Alfamart Sudirman. Balas `simpan` atau lanjut ubah."))
			Expect(current().Item).To(Equal("Belanja Alfamart Sudirman"))
		})
	})

	When("the pending receipt is a bank transfer", func() {
		BeforeEach(func() {
			pending.IsBankTransaction = true
			pending.Item = "Transfer ke Transaksi Bank"
			text = "ubah merchant Budi"
		})

		It("should keep describing a transfer", func() {
			Expect(current().Item).To(Equal("Transfer ke Budi"))
		})
	})

	When("the new merchant is missing", func() {
		BeforeEach(func() {
			text = "ubah merchant   "
		})

		It("should show the format", func() {
			Expect(reply).To(Equal("Format ubah merchant: `ubah merchant Nama Toko`"))
		})
	})

	When("the user changes the date", func() {
		BeforeEach(func() {
			text = "ubah tanggal 14/02/2026"
		})

		It("should update the date", func() {
			Expect(reply).To(Equal("Siap, tanggal diubah jadi 14/02/2026. Balas `simpan` atau lanjut ubah."))
			Expect(current().DateText).To(Equal("14/02/2026"))
		})
	})

	When("the new date is missing", func() {
		BeforeEach(func() {
			text = "ubah tanggal"
		})

		It("should show the format", func() {
			Expect(reply).To(Equal("Format ubah tanggal: `ubah tanggal 13/02/2026`"))
		})
	})

	When("the reply is not understood", func() {
		BeforeEach(func() {
			text = "beli kopi 25rb"
		})

		It("should show the hint", func() {
			Expect(reply).To(Equal(pendingHintReply))
		})

		It("should not record the message as an expense", func() {
			Expect(db.ListExpenses(user)).To(BeEmpty())
			Expect(current()).NotTo(BeNil())
		})
	})

	When("the user sends a slash command", func() {
		BeforeEach(func() {
			text = "/total"
		})

		It("should answer the command", func() {
			Expect(reply).To(Equal("Total pengeluaran hari ini: Rp0"))
		})

		It("should keep the receipt pending", func() {
			Expect(current()).NotTo(BeNil())
		})
	})

	When("saving the edit fails", func() {
		BeforeEach(func() {
			text = "ubah total 10rb"
		})

		JustBeforeEach(func() {
			db.savePendingErr = errBoom
			reply = service.HandleText(context.Background(), user, "ubah total 20rb")
		})

		It("should apologize", func() {
			Expect(reply).To(Equal(storageErrorReply))
			Expect(current().Amount).To(Equal(int64(10000)))
		})
	})
})
