package main

import (
	"context"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"mime"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/peterbourgon/ff/v4"
	"github.com/peterbourgon/ff/v4/ffhelp"
	"github.com/zombor/cuanbot/internal/extract"
	"github.com/zombor/cuanbot/internal/logging"
	"github.com/zombor/cuanbot/internal/scanning"
	"github.com/zombor/cuanbot/internal/scanning/tesseract"
)

//go:embed VERSION.txt
var versionFile string

var version = strings.TrimSpace(versionFile)

// splitResult is the printed form of a split bill
type splitResult struct {
	*extract.SplitBill
	GrandTotal int64 `json:"grand_total"`
	PerPerson  int64 `json:"per_person"`
}

func main() {
	for _, arg := range os.Args[1:] {
		if arg == "--version" || arg == "-version" || arg == "-v" {
			fmt.Println(version)
			os.Exit(0)
		}
	}

	fs := ff.NewFlagSet("cuan-scan")
	var (
		textPath      = fs.StringLong("text", "", "Run the receipt pipeline on an OCR text file")
		imagePath     = fs.StringLong("image", "", "OCR an image or PDF and run the receipt pipeline")
		expenseText   = fs.StringLong("expense", "", "Parse a single expense message")
		splitText     = fs.StringLong("split", "", "Parse a single split bill message")
		ocrProvider   = fs.StringLong("ocr", "tesseract", "OCR provider for --image: 'tesseract' or 'ocrspace'")
		ocrSpaceKey   = fs.StringLong("ocr-space-key", "", "OCR.space API key (or set OCR_SPACE_API_KEY env var)")
		ocrSpaceURL   = fs.StringLong("ocr-space-url", scanning.DefaultOCRSpaceURL, "OCR.space parse endpoint")
		tesseractLang = fs.StringLong("tesseract-lang", "eng", "Comma separated Tesseract languages (e.g., eng,ind)")
		ocrTimeout    = fs.DurationLong("ocr-timeout", 45*time.Second, "Maximum time to wait for OCR")
		logLevel      = fs.StringLong("log-level", "warn", "Log level: debug, info, warn or error")
		logFormat     = fs.StringLong("log-format", "text", "Log format: text or json")
		_             = fs.BoolLong("version", "Show version information")
	)

	if err := ff.Parse(fs, os.Args[1:],
		ff.WithEnvVarPrefix("CUANBOT"),
	); err != nil {
		fmt.Fprintf(os.Stderr, "%s\n", ffhelp.Flags(fs))
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}

	if err := logging.Setup(os.Stderr, *logLevel, *logFormat); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}

	var (
		result any
		err    error
	)
	switch {
	case *expenseText != "":
		result, err = extract.ParseExpenseInput(*expenseText)
	case *splitText != "":
		var bill *extract.SplitBill
		bill, err = extract.ParseSplitBill(*splitText)
		if err == nil {
			result = splitResult{SplitBill: bill, GrandTotal: bill.GrandTotal(), PerPerson: bill.PerPerson()}
		}
	case *textPath != "":
		var data []byte
		data, err = os.ReadFile(*textPath)
		if err == nil {
			result = extract.ExtractReceiptText(string(data))
		}
	case *imagePath != "":
		result, err = scanImage(*imagePath, *ocrProvider, *ocrSpaceKey, *ocrSpaceURL, *tesseractLang, *ocrTimeout)
	default:
		fmt.Fprintf(os.Stderr, "%s\n", ffhelp.Flags(fs))
		fmt.Fprintln(os.Stderr, "error: one of --text, --image, --expense or --split is required")
		os.Exit(1)
	}
	if err != nil {
		slog.Error("Failed to process input", "error", err)
		os.Exit(1)
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	if err := enc.Encode(result); err != nil {
		slog.Error("Failed to encode result", "error", err)
		os.Exit(1)
	}
}

// scanImage reads a receipt image with the chosen OCR provider
func scanImage(path, provider, apiKey, endpoint, languages string, timeout time.Duration) (extract.OCRResult, error) {
	var (
		scanner scanning.Scanner
		err     error
	)
	switch provider {
	case "tesseract":
		langs := strings.Split(languages, ",")
		for i := range langs {
			langs[i] = strings.TrimSpace(langs[i])
		}
		scanner = tesseract.New(langs...)
	case "ocrspace":
		if apiKey == "" {
			apiKey = os.Getenv("OCR_SPACE_API_KEY")
		}
		scanner, err = scanning.NewOCRSpace(apiKey, endpoint, timeout)
		if err != nil {
			return extract.OCRResult{}, err
		}
	default:
		return extract.OCRResult{}, errors.New("ocr must be 'tesseract' or 'ocrspace'")
	}
	defer scanner.Close()

	data, err := os.ReadFile(path)
	if err != nil {
		return extract.OCRResult{}, fmt.Errorf("reading image: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	contentType := mime.TypeByExtension(strings.ToLower(filepath.Ext(path)))
	slog.Debug("Scanning image", "path", path, "provider", provider, "content_type", contentType)
	text, err := scanner.ReadText(ctx, data, contentType)
	if err != nil {
		return extract.OCRResult{}, fmt.Errorf("reading text: %w", err)
	}
	return extract.ExtractReceiptData(strings.Split(text, "\n")), nil
}
