package scanning

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strings"
	"time"
)

// DefaultOCRSpaceURL is the public OCR.space parse endpoint
const DefaultOCRSpaceURL = "https://api.ocr.space/parse/image"

// OCRSpace implements the Scanner interface using the OCR.space HTTP API
type OCRSpace struct {
	apiKey   string
	endpoint string
	client   *http.Client
}

// NewOCRSpace creates a new OCR.space Scanner instance
func NewOCRSpace(apiKey string, endpoint string, timeout time.Duration) (*OCRSpace, error) {
	apiKey = strings.TrimSpace(apiKey)
	if apiKey == "" {
		return nil, fmt.Errorf("ocr.space api key is required")
	}
	if endpoint == "" {
		endpoint = DefaultOCRSpaceURL
	}
	if timeout <= 0 {
		timeout = 45 * time.Second
	}

	return &OCRSpace{
		apiKey:   apiKey,
		endpoint: endpoint,
		client:   &http.Client{Timeout: timeout},
	}, nil
}

// ocrSpaceResponse is the subset of the OCR.space response we read
type ocrSpaceResponse struct {
	ParsedResults []struct {
		ParsedText string `json:"ParsedText"`
	} `json:"ParsedResults"`
	IsErroredOnProcessing bool            `json:"IsErroredOnProcessing"`
	ErrorMessage          json.RawMessage `json:"ErrorMessage"`
}

// ReadText uploads the image and returns the text of the first parsed result
func (o *OCRSpace) ReadText(ctx context.Context, imageData []byte, contentType string) (string, error) {
	filename, data, err := ocrSpaceUpload(imageData, contentType)
	if err != nil {
		return "", err
	}

	var body bytes.Buffer
	w := multipart.NewWriter(&body)
	fields := [][2]string{
		{"apikey", o.apiKey},
		{"language", "eng"},
		{"isOverlayRequired", "false"},
		{"OCREngine", "2"},
		{"scale", "true"},
	}
	for _, f := range fields {
		if err := w.WriteField(f[0], f[1]); err != nil {
			return "", fmt.Errorf("writing form field %s: %w", f[0], err)
		}
	}
	part, err := w.CreateFormFile("file", filename)
	if err != nil {
		return "", fmt.Errorf("creating form file: %w", err)
	}
	if _, err := part.Write(data); err != nil {
		return "", fmt.Errorf("writing form file: %w", err)
	}
	if err := w.Close(); err != nil {
		return "", fmt.Errorf("closing multipart writer: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, o.endpoint, &body)
	if err != nil {
		return "", fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", w.FormDataContentType())

	resp, err := o.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("calling ocr.space API: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		b, _ := io.ReadAll(resp.Body)
		return "", fmt.Errorf("ocr.space API error (status %d): %s", resp.StatusCode, string(b))
	}

	var parsed ocrSpaceResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return "", fmt.Errorf("decoding response: %w", err)
	}
	if parsed.IsErroredOnProcessing {
		return "", fmt.Errorf("ocr.space processing error: %s", string(parsed.ErrorMessage))
	}
	if len(parsed.ParsedResults) == 0 {
		return "", ErrNoText
	}

	text := strings.TrimSpace(parsed.ParsedResults[0].ParsedText)
	if text == "" {
		return "", ErrNoText
	}
	return text, nil
}

// ocrSpaceUpload picks the file name OCR.space uses to detect the format.
// JPEG, PNG and PDF are sent as they are; everything else becomes PNG.
func ocrSpaceUpload(data []byte, contentType string) (string, []byte, error) {
	switch normalizeMimeType(data, contentType) {
	case mimeJPEG:
		return "receipt.jpg", data, nil
	case mimePNG:
		return "receipt.png", data, nil
	case mimePDF:
		return "receipt.pdf", data, nil
	}
	pngData, err := toPNG(data, contentType)
	if err != nil {
		return "", nil, err
	}
	return "receipt.png", pngData, nil
}

// Close closes the OCR.space client (no-op for HTTP client)
func (o *OCRSpace) Close() error {
	return nil
}
