package scanning

import (
	"context"
	"errors"
)

// ErrNoText is returned when a provider answers but finds no text on the image.
var ErrNoText = errors.New("no text recognized")

// Scanner defines the interface for OCR providers
type Scanner interface {
	// ReadText transcribes a receipt photo, screenshot or PDF into plain text,
	// one printed line per line
	ReadText(ctx context.Context, imageData []byte, contentType string) (string, error)
	// Close closes the scanner and releases resources
	Close() error
}

// transcribePrompt is the shared prompt used by the LLM providers
const transcribePrompt = `You are an OCR engine. Transcribe every piece of text printed on this receipt, invoice or bank transfer slip.

Rules:
- Keep the original reading order, top to bottom.
- Put each printed line on its own line and keep label and value on the same line (for example "TOTAL 50.000").
- Copy numbers exactly as printed, including dots, commas and the "Rp" prefix. Do not convert currencies.
- Do not translate, summarize, correct or explain anything.
- Output only the transcribed text, without markdown.`
