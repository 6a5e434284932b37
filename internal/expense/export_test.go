package expense

import (
	"bytes"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/xuri/excelize/v2"
)

var _ = Describe("ExportExpenses", func() {
	var (
		db      *mockDB
		service *Service
		rows    [][]string
		err     error
	)

	BeforeEach(func() {
		db = newMockDB()
		clock := &mockTimeSource{now: time.Date(2026, 2, 13, 10, 0, 0, 0, wib)}
		service = NewServiceWithDeps(db, nil, newMockImageStore(), Config{Location: wib}, &mockIDGenerator{}, clock)
	})

	JustBeforeEach(func() {
		var data []byte
		data, err = service.ExportExpenses("web:alice")
		if err != nil {
			return
		}
		f, openErr := excelize.OpenReader(bytes.NewReader(data))
		Expect(openErr).NotTo(HaveOccurred())
		defer f.Close()
		rows, err = f.GetRows(exportSheet)
	})

	When("the user has expenses", func() {
		BeforeEach(func() {
			for _, e := range []*Expense{
				{UserKey: "web:alice", Item: "Bensin", Amount: 100000, Category: "Transportasi",
					CreatedAt: time.Date(2026, 2, 13, 1, 0, 0, 0, time.UTC)},
				{UserKey: "web:alice", Item: "Kopi", Amount: 25000, Category: "Makanan & Minuman",
					CreatedAt: time.Date(2026, 2, 12, 1, 30, 0, 0, time.UTC)},
				{UserKey: "web:bob", Item: "Laptop", Amount: 9000000, Category: "Belanja",
					CreatedAt: time.Date(2026, 2, 12, 1, 0, 0, 0, time.UTC)},
			} {
				Expect(db.AddExpense(e)).To(Succeed())
			}
		})

		It("should not return an error", func() {
			Expect(err).NotTo(HaveOccurred())
		})

		It("should write the header row", func() {
			Expect(rows[0]).To(Equal([]string{"ID", "Tanggal", "Item", "Kategori", "Nominal"}))
		})

		It("should write the user's expenses oldest first in local time", func() {
			Expect(rows[1]).To(Equal([]string{"2", "2026-02-12 08:30", "Kopi", "Makanan & Minuman", "25000"}))
			Expect(rows[2]).To(Equal([]string{"1", "2026-02-13 08:00", "Bensin", "Transportasi", "100000"}))
		})

		It("should end with a total row", func() {
			Expect(rows).To(HaveLen(4))
			Expect(rows[3]).To(Equal([]string{"", "", "", "Total", "125000"}))
		})
	})

	When("the user has no expenses", func() {
		It("should write only the header and a zero total", func() {
			Expect(err).NotTo(HaveOccurred())
			Expect(rows).To(HaveLen(2))
			Expect(rows[1]).To(Equal([]string{"", "", "", "Total", "0"}))
		})
	})

	When("listing fails", func() {
		BeforeEach(func() {
			Expect(db.Close()).To(Succeed())
		})

		It("should return the error", func() {
			Expect(err).To(MatchError(ContainSubstring("listing expenses for export")))
		})
	})
})
