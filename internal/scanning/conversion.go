package scanning

import (
	"bytes"
	"fmt"
	"image"
	_ "image/gif" // Register GIF decoder
	"net/http"
	"strings"

	"github.com/disintegration/imaging"
	"github.com/gen2brain/go-fitz"
	"github.com/gen2brain/heic"
)

// MIME types handled specially before OCR
const (
	mimePNG  = "image/png"
	mimeJPEG = "image/jpeg"
	mimePDF  = "application/pdf"
)

// normalizeMimeType lowercases the content type, drops parameters and sniffs
// the data when the caller did not send a type
func normalizeMimeType(data []byte, contentType string) string {
	mimeType := strings.ToLower(strings.TrimSpace(contentType))
	if i := strings.IndexByte(mimeType, ';'); i >= 0 {
		mimeType = strings.TrimSpace(mimeType[:i])
	}
	if mimeType == "" || mimeType == "application/octet-stream" {
		if isHEIC(data) {
			return "image/heic"
		}
		mimeType = http.DetectContentType(data)
	}
	return mimeType
}

// isHEIC checks the ftyp box brand used by iPhone photos
func isHEIC(data []byte) bool {
	if len(data) < 12 || string(data[4:8]) != "ftyp" {
		return false
	}
	switch string(data[8:12]) {
	case "heic", "heix", "heif", "mif1", "msf1":
		return true
	}
	return false
}

// DecodeImage decodes a receipt upload into an image. PDFs are rendered from
// their first page, HEIC photos are decoded with a pure Go decoder and JPEGs
// are rotated according to their EXIF orientation.
func DecodeImage(data []byte, contentType string) (image.Image, error) {
	mimeType := normalizeMimeType(data, contentType)

	switch {
	case mimeType == mimePDF:
		doc, err := fitz.NewFromMemory(data)
		if err != nil {
			return nil, fmt.Errorf("opening PDF: %w", err)
		}
		defer doc.Close()

		img, err := doc.Image(0)
		if err != nil {
			return nil, fmt.Errorf("rendering PDF page: %w", err)
		}
		return img, nil

	case strings.Contains(mimeType, "heic") || strings.Contains(mimeType, "heif") || isHEIC(data):
		img, err := heic.Decode(bytes.NewReader(data))
		if err != nil {
			return nil, fmt.Errorf("decoding HEIC/HEIF image: %w", err)
		}
		return img, nil
	}

	img, err := imaging.Decode(bytes.NewReader(data), imaging.AutoOrientation(true))
	if err != nil {
		return nil, fmt.Errorf("decoding image (supported formats: JPEG, PNG, GIF, HEIC, PDF): %w", err)
	}
	return img, nil
}

// encodePNG encodes img as PNG
func encodePNG(img image.Image) ([]byte, error) {
	var buf bytes.Buffer
	if err := imaging.Encode(&buf, img, imaging.PNG); err != nil {
		return nil, fmt.Errorf("encoding PNG: %w", err)
	}
	return buf.Bytes(), nil
}

// toPNG converts any supported upload to PNG, returning PNG input unchanged
func toPNG(data []byte, contentType string) ([]byte, error) {
	if normalizeMimeType(data, contentType) == mimePNG {
		return data, nil
	}
	img, err := DecodeImage(data, contentType)
	if err != nil {
		return nil, err
	}
	return encodePNG(img)
}
