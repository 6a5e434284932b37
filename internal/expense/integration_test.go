package expense_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"regexp"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/onsi/gomega/ghttp"
	"github.com/zombor/cuanbot/internal/expense"
)

// stubScanner returns fixed OCR text
type stubScanner struct {
	text string
}

func (s *stubScanner) ReadText(ctx context.Context, imageData []byte, contentType string) (string, error) {
	return s.text, nil
}

func (s *stubScanner) Close() error {
	return nil
}

var _ = Describe("Integration", func() {
	var (
		storagePath string
		db          expense.DB
		server      *expense.Server
		ghServer    *ghttp.Server
	)

	BeforeEach(func() {
		tempDir := GinkgoT().TempDir()
		storagePath = filepath.Join(tempDir, "receipts")

		var err error
		db, err = expense.NewBoltDB(filepath.Join(tempDir, "test.db"))
		Expect(err).NotTo(HaveOccurred())
		DeferCleanup(db.Close)

		images, err := expense.NewLocalImageStore(storagePath)
		Expect(err).NotTo(HaveOccurred())

		scanner := &stubScanner{text: "INDOMARET\nJl. Raya 12\nTgl 13/02/2026\nKopi 12.000\nRoti 38.000\nTOTAL 50.000"}
		service := expense.NewService(db, scanner, images, expense.Config{})
		server = expense.NewServer(service, expense.BasicAuth{})

		ghServer = ghttp.NewServer()
		allPaths := regexp.MustCompile(`^/`)
		for _, method := range []string{http.MethodGet, http.MethodPost, http.MethodDelete} {
			ghServer.RouteToHandler(method, allPaths, server.ServeHTTP)
		}
	})

	AfterEach(func() {
		ghServer.Close()
	})

	send := func(text string) string {
		body, err := json.Marshal(map[string]string{"user": "web:alice", "text": text})
		Expect(err).NotTo(HaveOccurred())
		resp, err := http.Post(ghServer.URL()+"/api/messages", "application/json", bytes.NewReader(body))
		Expect(err).NotTo(HaveOccurred())
		defer resp.Body.Close()
		Expect(resp.StatusCode).To(Equal(http.StatusOK))

		var reply map[string]string
		Expect(json.NewDecoder(resp.Body).Decode(&reply)).To(Succeed())
		return reply["reply"]
	}

	listExpenses := func() []*expense.Expense {
		resp, err := http.Get(ghServer.URL() + "/api/expenses?user=web:alice")
		Expect(err).NotTo(HaveOccurred())
		defer resp.Body.Close()
		Expect(resp.StatusCode).To(Equal(http.StatusOK))

		var expenses []*expense.Expense
		Expect(json.NewDecoder(resp.Body).Decode(&expenses)).To(Succeed())
		return expenses
	}

	storedFiles := func() []string {
		entries, err := os.ReadDir(storagePath)
		Expect(err).NotTo(HaveOccurred())
		var names []string
		for _, e := range entries {
			names = append(names, e.Name())
		}
		return names
	}

	It("should scan, correct, save and delete a receipt", func() {
		imageContent := []byte("fake-jpeg-content")

		By("Uploading a receipt photo")
		var b bytes.Buffer
		writer := multipart.NewWriter(&b)
		Expect(writer.WriteField("user", "web:alice")).To(Succeed())
		part, err := writer.CreateFormFile("file", "struk.jpg")
		Expect(err).NotTo(HaveOccurred())
		_, err = part.Write(imageContent)
		Expect(err).NotTo(HaveOccurred())
		Expect(writer.Close()).To(Succeed())

		resp, err := http.Post(ghServer.URL()+"/api/photos", writer.FormDataContentType(), &b)
		Expect(err).NotTo(HaveOccurred())
		var photoReply map[string]string
		Expect(json.NewDecoder(resp.Body).Decode(&photoReply)).To(Succeed())
		resp.Body.Close()
		Expect(photoReply["reply"]).To(HavePrefix("Wah, struk dari Indomaret ya!"))
		Expect(storedFiles()).To(HaveLen(1))

		By("Correcting the total")
		Expect(send("ubah total 55rb")).To(Equal("Siap, total diubah jadi Rp55.000. Balas `simpan` atau lanjut ubah."))

		By("Saving the receipt")
		Expect(send("simpan")).To(HavePrefix("Siap! Belanja Indomaret senilai Rp55.000 sudah masuk catatan Belanja Bulanan."))

		By("Listing the expense")
		expenses := listExpenses()
		Expect(expenses).To(HaveLen(1))
		Expect(expenses[0].Amount).To(Equal(int64(55000)))
		Expect(expenses[0].ReceiptDate).To(Equal("13/02/2026"))
		Expect(expenses[0].ReceiptFile).To(Equal(storedFiles()[0]))

		By("Downloading the receipt image")
		resp, err = http.Get(ghServer.URL() + "/api/expenses/1/receipt?user=web:alice")
		Expect(err).NotTo(HaveOccurred())
		data, err := io.ReadAll(resp.Body)
		resp.Body.Close()
		Expect(err).NotTo(HaveOccurred())
		Expect(data).To(Equal(imageContent))

		By("Checking the weekly total")
		Expect(send("/total minggu")).To(Equal("Total pengeluaran minggu ini: Rp55.000"))

		By("Deleting the expense")
		req, err := http.NewRequest(http.MethodDelete, ghServer.URL()+"/api/expenses/1?user=web:alice", nil)
		Expect(err).NotTo(HaveOccurred())
		resp, err = http.DefaultClient.Do(req)
		Expect(err).NotTo(HaveOccurred())
		resp.Body.Close()
		Expect(resp.StatusCode).To(Equal(http.StatusNoContent))

		Expect(listExpenses()).To(BeEmpty())
		Expect(storedFiles()).To(BeEmpty())
	})

	It("should keep users apart", func() {
		Expect(send("beli kopi 25rb")).To(HavePrefix("Siap! Kopi senilai Rp25.000"))

		resp, err := http.Get(ghServer.URL() + "/api/expenses?user=web:bob")
		Expect(err).NotTo(HaveOccurred())
		defer resp.Body.Close()
		var expenses []*expense.Expense
		Expect(json.NewDecoder(resp.Body).Decode(&expenses)).To(Succeed())
		Expect(expenses).To(BeEmpty())
	})
})
