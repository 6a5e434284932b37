package scanning

import (
	"bytes"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

func testImage(w, h int) image.Image {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, color.RGBA{R: uint8(x), G: uint8(y), B: 128, A: 255})
		}
	}
	return img
}

func encodeTestPNG(img image.Image) []byte {
	var buf bytes.Buffer
	Expect(png.Encode(&buf, img)).To(Succeed())
	return buf.Bytes()
}

func encodeTestJPEG(img image.Image) []byte {
	var buf bytes.Buffer
	Expect(jpeg.Encode(&buf, img, nil)).To(Succeed())
	return buf.Bytes()
}

var _ = Describe("normalizeMimeType", func() {
	It("should lowercase and drop parameters", func() {
		Expect(normalizeMimeType(nil, " Image/JPEG; charset=binary")).To(Equal("image/jpeg"))
	})

	It("should sniff PNG data without a content type", func() {
		Expect(normalizeMimeType(encodeTestPNG(testImage(4, 4)), "")).To(Equal("image/png"))
	})

	It("should recognize HEIC data sent as octet-stream", func() {
		data := append([]byte{0, 0, 0, 24}, []byte("ftypheic0000")...)
		Expect(normalizeMimeType(data, "application/octet-stream")).To(Equal("image/heic"))
	})
})

var _ = Describe("isHEIC", func() {
	It("should accept the heic brand", func() {
		Expect(isHEIC(append([]byte{0, 0, 0, 24}, []byte("ftypheic")...))).To(BeTrue())
	})

	It("should reject short data", func() {
		Expect(isHEIC([]byte("ftyp"))).To(BeFalse())
	})

	It("should reject other brands", func() {
		Expect(isHEIC(append([]byte{0, 0, 0, 24}, []byte("ftypisom")...))).To(BeFalse())
	})
})

var _ = Describe("toPNG", func() {
	When("the input is already PNG", func() {
		It("should return it unchanged", func() {
			data := encodeTestPNG(testImage(8, 8))
			out, err := toPNG(data, "image/png")
			Expect(err).NotTo(HaveOccurred())
			Expect(out).To(Equal(data))
		})
	})

	When("the input is JPEG", func() {
		var (
			out []byte
			err error
		)

		BeforeEach(func() {
			out, err = toPNG(encodeTestJPEG(testImage(16, 10)), "image/jpeg")
		})

		It("should not return an error", func() {
			Expect(err).NotTo(HaveOccurred())
		})

		It("should return a PNG of the same size", func() {
			img, err := png.Decode(bytes.NewReader(out))
			Expect(err).NotTo(HaveOccurred())
			Expect(img.Bounds().Dx()).To(Equal(16))
			Expect(img.Bounds().Dy()).To(Equal(10))
		})
	})

	When("the input is not an image", func() {
		It("should return an error", func() {
			_, err := toPNG([]byte("definitely not an image"), "image/jpeg")
			Expect(err).To(MatchError(ContainSubstring("decoding image")))
		})
	})
})

var _ = Describe("PrepareForOCR", func() {
	It("should upscale small photos", func() {
		out := PrepareForOCR(testImage(60, 100))
		Expect(out.Bounds().Dy()).To(Equal(ocrTargetHeight))
	})

	It("should keep the size of large photos", func() {
		out := PrepareForOCR(testImage(20, 1000))
		Expect(out.Bounds().Dy()).To(Equal(1000))
	})

	It("should produce a grayscale image", func() {
		out := PrepareForOCR(testImage(30, 1000))
		c := out.NRGBAAt(10, 10)
		Expect(c.R).To(Equal(c.G))
		Expect(c.G).To(Equal(c.B))
	})
})
