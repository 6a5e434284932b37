// Package tesseract provides a local OCR provider backed by the Tesseract
// engine. It needs the tesseract and leptonica libraries at build time.
package tesseract

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"github.com/disintegration/imaging"
	"github.com/otiai10/gosseract/v2"

	"github.com/zombor/cuanbot/internal/scanning"
)

// Tesseract implements the scanning.Scanner interface using a local Tesseract install
type Tesseract struct {
	languages []string
}

// New creates a Tesseract scanner. Languages default to English; use "ind"
// alongside it when the Indonesian traineddata is installed.
func New(languages ...string) *Tesseract {
	if len(languages) == 0 {
		languages = []string{"eng"}
	}
	return &Tesseract{languages: languages}
}

// ReadText runs Tesseract on a preprocessed copy of the image
func (t *Tesseract) ReadText(ctx context.Context, imageData []byte, contentType string) (string, error) {
	img, err := scanning.DecodeImage(imageData, contentType)
	if err != nil {
		return "", err
	}

	var buf bytes.Buffer
	if err := imaging.Encode(&buf, scanning.PrepareForOCR(img), imaging.PNG); err != nil {
		return "", fmt.Errorf("encoding preprocessed image: %w", err)
	}

	// gosseract cannot be interrupted, so honour cancellation before starting
	if err := ctx.Err(); err != nil {
		return "", err
	}

	client := gosseract.NewClient()
	defer client.Close()

	if err := client.SetLanguage(t.languages...); err != nil {
		return "", fmt.Errorf("setting tesseract languages: %w", err)
	}
	if err := client.SetPageSegMode(gosseract.PSM_AUTO); err != nil {
		return "", fmt.Errorf("setting page segmentation mode: %w", err)
	}
	if err := client.SetImageFromBytes(buf.Bytes()); err != nil {
		return "", fmt.Errorf("loading image into tesseract: %w", err)
	}

	text, err := client.Text()
	if err != nil {
		return "", fmt.Errorf("running tesseract: %w", err)
	}
	text = strings.TrimSpace(text)
	if text == "" {
		return "", scanning.ErrNoText
	}
	return text, nil
}

// Close releases nothing; a client is created per call
func (t *Tesseract) Close() error {
	return nil
}
