package expense

import (
	"path/filepath"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("LocalImageStore", func() {
	var (
		tmpDir string
		store  ImageStore
	)

	BeforeEach(func() {
		tmpDir = GinkgoT().TempDir()
		var err error
		store, err = NewLocalImageStore(tmpDir)
		Expect(err).NotTo(HaveOccurred())
	})

	Describe("Save", func() {
		var err error

		JustBeforeEach(func() {
			err = store.Save("img-1.jpg", []byte("jpeg"))
		})

		It("should not return an error", func() {
			Expect(err).NotTo(HaveOccurred())
		})

		It("should write the file to disk", func() {
			Expect(filepath.Join(tmpDir, "img-1.jpg")).To(BeAnExistingFile())
		})
	})

	Describe("Get", func() {
		It("should return the stored data", func() {
			Expect(store.Save("img-1.jpg", []byte("jpeg"))).To(Succeed())
			data, err := store.Get("img-1.jpg")
			Expect(err).NotTo(HaveOccurred())
			Expect(string(data)).To(Equal("jpeg"))
		})

		It("should fail for a missing file", func() {
			_, err := store.Get("missing.jpg")
			Expect(err).To(MatchError(ContainSubstring("reading file")))
		})
	})

	Describe("Delete", func() {
		It("should remove the file", func() {
			Expect(store.Save("img-1.jpg", []byte("jpeg"))).To(Succeed())
			Expect(store.Delete("img-1.jpg")).To(Succeed())
			Expect(filepath.Join(tmpDir, "img-1.jpg")).NotTo(BeAnExistingFile())
		})

		It("should fail for a missing file", func() {
			Expect(store.Delete("missing.jpg")).To(MatchError(ContainSubstring("deleting file")))
		})
	})

	DescribeTable("rejecting names outside the directory",
		func(name string) {
			Expect(store.Save(name, []byte("x"))).To(MatchError(ContainSubstring("invalid file name")))
			_, err := store.Get(name)
			Expect(err).To(MatchError(ContainSubstring("invalid file name")))
			Expect(store.Delete(name)).To(MatchError(ContainSubstring("invalid file name")))
		},
		Entry("parent directory", "../escape.jpg"),
		Entry("nested path", "a/b.jpg"),
		Entry("dot dot", ".."),
		Entry("backslash", `a\b.jpg`),
	)

	Describe("NewLocalImageStore", func() {
		It("should create a missing directory", func() {
			path := filepath.Join(GinkgoT().TempDir(), "receipts")
			_, err := NewLocalImageStore(path)
			Expect(err).NotTo(HaveOccurred())
			Expect(path).To(BeADirectory())
		})
	})
})

var _ = DescribeTable("receiptFileName",
	func(contentType, expected string) {
		Expect(receiptFileName("abc", contentType)).To(Equal(expected))
	},
	Entry("jpeg", "image/jpeg", "abc.jpg"),
	Entry("png with parameters", "image/PNG; charset=binary", "abc.png"),
	Entry("heic", "image/heic", "abc.heic"),
	Entry("pdf", "application/pdf", "abc.pdf"),
	Entry("unknown", "application/octet-stream", "abc.bin"),
	Entry("empty", "", "abc.bin"),
)
