package scanning

import (
	"image"

	"github.com/disintegration/imaging"
)

const (
	// minOCRHeight is the height below which receipt photos are upscaled before OCR
	minOCRHeight = 900
	// ocrTargetHeight is the height small receipt photos are upscaled to
	ocrTargetHeight = 1300
)

// PrepareForOCR turns a receipt photo into a high-contrast grayscale image that
// local OCR engines read more reliably
func PrepareForOCR(img image.Image) *image.NRGBA {
	out := imaging.Grayscale(img)
	if out.Bounds().Dy() < minOCRHeight {
		out = imaging.Resize(out, 0, ocrTargetHeight, imaging.Lanczos)
	}
	out = imaging.AdjustContrast(out, 20)
	return imaging.Sharpen(out, 0.8)
}
