package main

import (
	"fmt"
	"time"

	"github.com/peterbourgon/ff/v4"
	"github.com/zombor/cuanbot/internal/expense"
	"github.com/zombor/cuanbot/internal/scanning"
)

// config holds the parsed command line and CUANBOT_* environment
type config struct {
	port          int
	dbPath        string
	storagePath   string
	timezone      string
	weeklyBudget  int
	ocrProvider   string
	ocrSpaceKey   string
	ocrSpaceURL   string
	tesseractLang string
	geminiKey     string
	geminiModel   string
	ollamaURL     string
	ollamaModel   string
	ocrTimeout    time.Duration
	ocrDebug      bool
	authUser      string
	authPass      string
	logLevel      string
	logFormat     string
	showVersion   bool
}

// parseConfig parses args and the environment. The returned flag set is
// used for usage output when parsing fails.
func parseConfig(args []string) (*config, *ff.FlagSet, error) {
	fs := ff.NewFlagSet("cuanbot")
	var (
		port          = fs.IntLong("port", 8080, "HTTP server port")
		dbPath        = fs.StringLong("db", "cuanbot.db", "Database file path")
		storagePath   = fs.StringLong("storage", "./receipts", "Receipt image directory")
		timezone      = fs.StringLong("timezone", "Asia/Jakarta", "Timezone used for daily, weekly and monthly reports")
		weeklyBudget  = fs.IntLong("weekly-budget", int(expense.DefaultWeeklyBudget), "Weekly budget for users who never set one")
		ocrProvider   = fs.StringLong("ocr", "ocrspace", "OCR provider: 'ocrspace', 'tesseract', 'gemini', 'ollama' or 'none'")
		ocrSpaceKey   = fs.StringLong("ocr-space-key", "", "OCR.space API key (or set OCR_SPACE_API_KEY env var)")
		ocrSpaceURL   = fs.StringLong("ocr-space-url", scanning.DefaultOCRSpaceURL, "OCR.space parse endpoint")
		tesseractLang = fs.StringLong("tesseract-lang", "eng", "Comma separated Tesseract languages (e.g., eng,ind)")
		geminiKey     = fs.StringLong("gemini-key", "", "Google Gemini API key (or set GEMINI_API_KEY env var)")
		geminiModel   = fs.StringLong("gemini-model", "gemini-2.5-flash", "Google Gemini model name")
		ollamaURL     = fs.StringLong("ollama-url", "http://localhost:11434", "Ollama API base URL")
		ollamaModel   = fs.StringLong("ollama-model", "llava", "Ollama model name (e.g., llava, qwen2-vl)")
		ocrTimeout    = fs.DurationLong("ocr-timeout", expense.DefaultOCRTimeout, "Maximum time to wait for OCR of one photo")
		ocrDebug      = fs.BoolLong("ocr-debug", "Log the raw OCR text of every scan")
		authUser      = fs.StringLong("auth-user", "", "Basic auth username (optional)")
		authPass      = fs.StringLong("auth-pass", "", "Basic auth password (optional)")
		logLevel      = fs.StringLong("log-level", "info", "Log level: debug, info, warn or error")
		logFormat     = fs.StringLong("log-format", "text", "Log format: text or json")
		showVersion   = fs.BoolLong("version", "Show version information")
	)

	if err := ff.Parse(fs, args,
		ff.WithEnvVarPrefix("CUANBOT"),
	); err != nil {
		return nil, fs, err
	}
	if *ocrTimeout <= 0 {
		return nil, fs, fmt.Errorf("ocr-timeout must be positive, got %s", *ocrTimeout)
	}

	return &config{
		port:          *port,
		dbPath:        *dbPath,
		storagePath:   *storagePath,
		timezone:      *timezone,
		weeklyBudget:  *weeklyBudget,
		ocrProvider:   *ocrProvider,
		ocrSpaceKey:   *ocrSpaceKey,
		ocrSpaceURL:   *ocrSpaceURL,
		tesseractLang: *tesseractLang,
		geminiKey:     *geminiKey,
		geminiModel:   *geminiModel,
		ollamaURL:     *ollamaURL,
		ollamaModel:   *ollamaModel,
		ocrTimeout:    *ocrTimeout,
		ocrDebug:      *ocrDebug,
		authUser:      *authUser,
		authPass:      *authPass,
		logLevel:      *logLevel,
		logFormat:     *logFormat,
		showVersion:   *showVersion,
	}, fs, nil
}
