package main

import (
	"context"
	_ "embed"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"
	_ "time/tzdata"

	"github.com/peterbourgon/ff/v4/ffhelp"
	"github.com/zombor/cuanbot/internal/expense"
	"github.com/zombor/cuanbot/internal/logging"
	"github.com/zombor/cuanbot/internal/scanning"
	"github.com/zombor/cuanbot/internal/scanning/tesseract"
)

//go:embed VERSION.txt
var versionFile string

var version = strings.TrimSpace(versionFile)

func main() {
	// Check for version flag before parsing other flags
	for _, arg := range os.Args[1:] {
		if arg == "--version" || arg == "-version" || arg == "-v" {
			fmt.Println(version)
			os.Exit(0)
		}
	}

	cfg, fs, err := parseConfig(os.Args[1:])
	if err != nil {
		fmt.Fprintf(os.Stderr, "%s\n", ffhelp.Flags(fs))
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}

	// Check version flag after parsing
	if cfg.showVersion {
		fmt.Println(version)
		os.Exit(0)
	}

	if err := logging.Setup(os.Stderr, cfg.logLevel, cfg.logFormat); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}

	location, err := time.LoadLocation(cfg.timezone)
	if err != nil {
		slog.Error("Invalid timezone", "timezone", cfg.timezone, "error", err)
		os.Exit(1)
	}

	// Initialize database
	slog.Info("Initializing database...")
	db, err := expense.NewBoltDB(cfg.dbPath)
	if err != nil {
		slog.Error("Failed to initialize database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	// Initialize OCR provider based on type
	var scanner scanning.Scanner
	switch cfg.ocrProvider {
	case "ocrspace":
		apiKey := cfg.ocrSpaceKey
		if apiKey == "" {
			apiKey = os.Getenv("OCR_SPACE_API_KEY")
		}
		if apiKey == "" {
			slog.Warn("OCR.space API key is not set, receipt scanning is disabled. Set --ocr-space-key or OCR_SPACE_API_KEY")
			break
		}
		slog.Info("Initializing OCR.space scanner...", "url", cfg.ocrSpaceURL)
		scanner, err = scanning.NewOCRSpace(apiKey, cfg.ocrSpaceURL, cfg.ocrTimeout)
		if err != nil {
			slog.Error("Failed to initialize OCR.space", "error", err)
			os.Exit(1)
		}
	case "tesseract":
		languages := strings.Split(cfg.tesseractLang, ",")
		for i := range languages {
			languages[i] = strings.TrimSpace(languages[i])
		}
		slog.Info("Initializing Tesseract scanner...", "languages", languages)
		scanner = tesseract.New(languages...)
	case "gemini":
		// Get Gemini API key from flag or environment
		apiKey := cfg.geminiKey
		if apiKey == "" {
			apiKey = os.Getenv("GEMINI_API_KEY")
		}
		if apiKey == "" {
			slog.Error("Gemini API key is required. Set --gemini-key flag or GEMINI_API_KEY environment variable")
			os.Exit(1)
		}
		slog.Info("Initializing Gemini scanner...", "model", cfg.geminiModel)
		scanner, err = scanning.NewGemini(context.Background(), apiKey, cfg.geminiModel)
		if err != nil {
			slog.Error("Failed to initialize Gemini", "error", err)
			os.Exit(1)
		}
	case "ollama":
		slog.Info("Initializing Ollama scanner...", "url", cfg.ollamaURL, "model", cfg.ollamaModel)
		scanner, err = scanning.NewOllama(cfg.ollamaURL, cfg.ollamaModel)
		if err != nil {
			slog.Error("Failed to initialize Ollama", "error", err)
			os.Exit(1)
		}
	case "none":
		slog.Info("Receipt scanning is disabled")
	default:
		slog.Error("Invalid OCR provider", "ocr", cfg.ocrProvider, "valid", "ocrspace, tesseract, gemini, ollama or none")
		os.Exit(1)
	}
	if scanner != nil {
		defer scanner.Close()
	}

	// Initialize image storage
	slog.Info("Initializing storage...")
	images, err := expense.NewLocalImageStore(cfg.storagePath)
	if err != nil {
		slog.Error("Failed to initialize storage", "error", err)
		os.Exit(1)
	}

	// Initialize service
	expenseService := expense.NewService(db, scanner, images, expense.Config{
		Location:     location,
		WeeklyBudget: int64(cfg.weeklyBudget),
		OCRTimeout:   cfg.ocrTimeout,
		OCRDebug:     cfg.ocrDebug,
	})

	// Initialize server
	basicAuth := expense.BasicAuth{
		Username: cfg.authUser,
		Password: cfg.authPass,
	}
	server := expense.NewServer(expenseService, basicAuth)

	// Start server in goroutine
	addr := fmt.Sprintf(":%d", cfg.port)
	go func() {
		if err := server.Start(addr); err != nil {
			slog.Error("Server error", "error", err)
			os.Exit(1)
		}
	}()

	slog.Info("Server started", "address", fmt.Sprintf("http://localhost%s", addr), "timezone", location.String())
	if cfg.authUser != "" || cfg.authPass != "" {
		slog.Info("Basic auth enabled", "user", cfg.authUser)
	}

	// Wait for interrupt signal
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	<-sigChan

	slog.Info("Shutting down...")
}
