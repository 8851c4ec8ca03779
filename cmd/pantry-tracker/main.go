package main

import (
	_ "embed"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/peterbourgon/ff/v4"
	"github.com/peterbourgon/ff/v4/ffhelp"
	"github.com/zombor/pantry-tracker/internal/receipt"
	"github.com/zombor/pantry-tracker/internal/scanning"
)

//go:embed VERSION.txt
var versionFile string

var version = strings.TrimSpace(versionFile)

type config struct {
	port        int
	dbPath      string
	storagePath string
	scannerType string
	geminiKey   string
	geminiModel string
	ollamaURL   string
	ollamaModel string
	ocrTimeout  time.Duration
	auth        receipt.BasicAuth
	logLevel    slog.Level
}

func main() {
	// --version short-circuits before required settings are checked
	for _, arg := range os.Args[1:] {
		if arg == "--version" || arg == "-version" || arg == "-v" {
			fmt.Println(version)
			return
		}
	}

	cfg, err := parseConfig(os.Args[1:])
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: cfg.logLevel})))

	if err := run(cfg); err != nil {
		slog.Error("Pantry tracker stopped", "error", err)
		os.Exit(1)
	}
}

func parseConfig(args []string) (config, error) {
	fs := ff.NewFlagSet("pantry-tracker")
	var (
		port        = fs.IntLong("port", 8080, "HTTP server port")
		dbPath      = fs.StringLong("db", "pantry-tracker.db", "Database file path")
		storagePath = fs.StringLong("storage", "./receipts", "Directory for original receipt uploads")
		scannerType = fs.StringLong("scanner", "gemini", "Text extraction backend: 'gemini' or 'ollama'")
		geminiKey   = fs.StringLong("gemini-key", "", "Google Gemini API key (or set GEMINI_API_KEY env var)")
		geminiModel = fs.StringLong("gemini-model", "gemini-2.5-flash", "Google Gemini model name")
		ollamaURL   = fs.StringLong("ollama-url", "http://localhost:11434", "Ollama API base URL")
		ollamaModel = fs.StringLong("ollama-model", "llava", "Ollama vision model name (e.g., llava, qwen2-vl)")
		ocrTimeout  = fs.IntLong("ocr-timeout", 120, "Seconds to wait for text extraction")
		authUser    = fs.StringLong("auth-user", "", "Basic auth username (optional)")
		authPass    = fs.StringLong("auth-pass", "", "Basic auth password (optional)")
		logLevel    = fs.StringLong("log-level", "info", "Log level: debug, info, warn or error")
		_           = fs.BoolLong("version", "Show version information")
	)

	if err := ff.Parse(fs, args, ff.WithEnvVarPrefix("PANTRY_TRACKER")); err != nil {
		fmt.Fprintf(os.Stderr, "%s\n", ffhelp.Flags(fs))
		return config{}, err
	}

	cfg := config{
		port:        *port,
		dbPath:      *dbPath,
		storagePath: *storagePath,
		scannerType: *scannerType,
		geminiKey:   *geminiKey,
		geminiModel: *geminiModel,
		ollamaURL:   *ollamaURL,
		ollamaModel: *ollamaModel,
		ocrTimeout:  time.Duration(*ocrTimeout) * time.Second,
		auth:        receipt.BasicAuth{Username: *authUser, Password: *authPass},
	}
	if cfg.geminiKey == "" {
		cfg.geminiKey = os.Getenv("GEMINI_API_KEY")
	}
	if *ocrTimeout <= 0 {
		return config{}, fmt.Errorf("ocr-timeout must be positive, got %d", *ocrTimeout)
	}
	if err := cfg.logLevel.UnmarshalText([]byte(*logLevel)); err != nil {
		return config{}, fmt.Errorf("invalid log level %q", *logLevel)
	}
	return cfg, nil
}

func newScanner(cfg config) (scanning.Scanner, error) {
	switch cfg.scannerType {
	case "gemini":
		if cfg.geminiKey == "" {
			return nil, errors.New("gemini API key is required: set --gemini-key or GEMINI_API_KEY")
		}
		slog.Info("Initializing Gemini scanner...", "model", cfg.geminiModel)
		return scanning.NewGemini(cfg.geminiKey, cfg.geminiModel, cfg.ocrTimeout)
	case "ollama":
		slog.Info("Initializing Ollama scanner...", "url", cfg.ollamaURL, "model", cfg.ollamaModel)
		return scanning.NewOllama(cfg.ollamaURL, cfg.ollamaModel, cfg.ocrTimeout)
	default:
		return nil, fmt.Errorf("invalid scanner type %q (valid: gemini or ollama)", cfg.scannerType)
	}
}

func run(cfg config) error {
	slog.Info("Opening inventory database...", "path", cfg.dbPath)
	db, err := receipt.NewBoltDB(cfg.dbPath)
	if err != nil {
		return fmt.Errorf("initializing database: %w", err)
	}
	defer db.Close()

	scanner, err := newScanner(cfg)
	if err != nil {
		return fmt.Errorf("initializing scanner: %w", err)
	}
	defer scanner.Close()

	store, err := receipt.NewLocalStorage(cfg.storagePath)
	if err != nil {
		return fmt.Errorf("initializing storage: %w", err)
	}

	server := receipt.NewServer(receipt.NewService(db, scanner, store), cfg.auth)

	addr := fmt.Sprintf(":%d", cfg.port)
	errCh := make(chan error, 1)
	go func() {
		errCh <- server.Start(addr)
	}()

	slog.Info("Server started", "address", fmt.Sprintf("http://localhost%s", addr), "version", version)
	if cfg.auth.Username != "" || cfg.auth.Password != "" {
		slog.Info("Basic auth enabled", "user", cfg.auth.Username)
	}

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	select {
	case sig := <-sigChan:
		slog.Info("Shutting down...", "signal", sig.String())
		return nil
	case err := <-errCh:
		return fmt.Errorf("serving http: %w", err)
	}
}
