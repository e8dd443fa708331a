package main

import (
	_ "embed"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/peterbourgon/ff/v4"
	"github.com/peterbourgon/ff/v4/ffhelp"

	"github.com/kodwo/billminder/internal/completion"
	"github.com/kodwo/billminder/internal/docscan"
	"github.com/kodwo/billminder/internal/extraction"
	"github.com/kodwo/billminder/internal/reminder"
	"github.com/kodwo/billminder/internal/server"
)

//go:embed VERSION.txt
var versionFile string

var version = strings.TrimSpace(versionFile)

func main() {
	fs := ff.NewFlagSet("billminder")
	var (
		port          = fs.IntLong("port", 8080, "HTTP server port")
		dbPath        = fs.StringLong("db", "billminder.db", "Reminder plan database file path")
		storagePath   = fs.StringLong("storage", "./documents", "Document storage directory path")
		completerType = fs.StringLong("completer", "gemini", "Completion backend: 'gemini' or 'ollama'")
		geminiKey     = fs.StringLong("gemini-key", "", "Google Gemini API key (or set GEMINI_API_KEY env var)")
		geminiModel   = fs.StringLong("gemini-model", "gemini-2.5-pro", "Google Gemini model name")
		ollamaURL     = fs.StringLong("ollama-url", "http://localhost:11434", "Ollama API base URL")
		ollamaModel   = fs.StringLong("ollama-model", "llama3.1", "Ollama model name")
		ocrWait       = fs.DurationLong("ocr-wait", 60*time.Second, "Maximum wait for asynchronous document text jobs")
		historySize   = fs.IntLong("history", 50, "How many past extractions to keep in memory")
		authUser      = fs.StringLong("auth-user", "", "Basic auth username (optional)")
		authPass      = fs.StringLong("auth-pass", "", "Basic auth password (optional)")
		showVersion   = fs.BoolLong("version", "Show version information")
	)

	if err := ff.Parse(fs, os.Args[1:],
		ff.WithEnvVarPrefix("BILLMINDER"),
	); err != nil {
		fmt.Fprintf(os.Stderr, "%s\n", ffhelp.Flags(fs))
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}

	if *showVersion {
		fmt.Println(version)
		os.Exit(0)
	}

	// Gemini key comes from flag or environment
	apiKey := *geminiKey
	if apiKey == "" {
		apiKey = os.Getenv("GEMINI_API_KEY")
	}

	slog.Info("Initializing document storage...")
	store, err := extraction.NewLocalStorage(*storagePath)
	if err != nil {
		slog.Error("Failed to initialize storage", "error", err)
		os.Exit(1)
	}

	// Document text service: Gemini vision when a key is available,
	// otherwise inline text only
	var textService docscan.TextService
	if apiKey != "" {
		slog.Info("Initializing document text service...", "model", *geminiModel)
		textService, err = docscan.NewGemini(apiKey, *geminiModel, store)
		if err != nil {
			slog.Error("Failed to initialize document text service", "error", err)
			os.Exit(1)
		}
	} else {
		slog.Warn("No Gemini API key; document extraction disabled, raw text only")
		textService = docscan.Unavailable{}
	}
	defer textService.Close()

	// Completion backend for the model-assisted extractor
	var completer completion.Completer
	switch *completerType {
	case "gemini":
		if apiKey == "" {
			slog.Error("Gemini API key is required. Set --gemini-key flag or GEMINI_API_KEY environment variable")
			os.Exit(1)
		}
		slog.Info("Initializing Gemini completer...", "model", *geminiModel)
		completer, err = completion.NewGemini(apiKey, *geminiModel)
		if err != nil {
			slog.Error("Failed to initialize Gemini", "error", err)
			os.Exit(1)
		}
	case "ollama":
		slog.Info("Initializing Ollama completer...", "url", *ollamaURL, "model", *ollamaModel)
		completer, err = completion.NewOllama(*ollamaURL, *ollamaModel)
		if err != nil {
			slog.Error("Failed to initialize Ollama", "error", err)
			os.Exit(1)
		}
	default:
		slog.Error("Invalid completer type", "type", *completerType, "valid", "gemini or ollama")
		os.Exit(1)
	}
	defer completer.Close()

	// Model-assisted extraction first, rule-based fallback second
	extractor := extraction.NewServiceWithDeps(textService,
		2*time.Second, *ocrWait, time.Sleep,
		extraction.NewModelExtractor(completer),
		extraction.NewRuleExtractor(),
	)

	slog.Info("Initializing plan database...")
	planStore, err := reminder.NewBoltStore(*dbPath)
	if err != nil {
		slog.Error("Failed to initialize plan database", "error", err)
		os.Exit(1)
	}
	defer planStore.Close()

	reminderService := reminder.NewService(planStore)
	history := extraction.NewHistory(*historySize)

	basicAuth := server.BasicAuth{
		Username: *authUser,
		Password: *authPass,
	}
	srv := server.NewServer(extractor, reminderService, store, history, basicAuth)

	addr := fmt.Sprintf(":%d", *port)
	go func() {
		if err := srv.Start(addr); err != nil {
			slog.Error("Server error", "error", err)
			os.Exit(1)
		}
	}()

	slog.Info("Server started", "address", fmt.Sprintf("http://localhost%s", addr), "version", version)
	if *authUser != "" || *authPass != "" {
		slog.Info("Basic auth enabled", "user", *authUser)
	}

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	<-sigChan

	slog.Info("Shutting down...")
}
