package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"time"

	"github.com/fredrikhr/restview/internal/config"
	"github.com/fredrikhr/restview/internal/httpclient"
	"github.com/fredrikhr/restview/internal/presenter"
	"github.com/fredrikhr/restview/internal/responses"
	"github.com/fredrikhr/restview/internal/restfile"
	"github.com/fredrikhr/restview/internal/storage"
	"github.com/fredrikhr/restview/internal/telemetry"
)

var (
	version = "dev"
	commit  = "unknown"
)

func main() {
	var (
		filePath    string
		requestName string
		requestLine int
		openWith    string
		noView      bool
		saveOnly    bool
		maxHistory  int
		backend     string
		storageDir  string
		showVersion bool
	)

	flag.StringVar(&filePath, "file", "-", "Raw HTTP response dump to ingest ('-' for stdin)")
	flag.StringVar(&requestName, "name", "", "Name of the originating request region")
	flag.IntVar(&requestLine, "line", 0, "Source line of the originating request region")
	flag.StringVar(&openWith, "open-with", "", "Open the response with an external viewer")
	flag.BoolVar(&noView, "no-view", false, "Record the response without presenting it")
	flag.BoolVar(&saveOnly, "save", false, "Persist the response without presenting it")
	flag.IntVar(&maxHistory, "max", 0, "History bound (overrides settings)")
	flag.StringVar(&backend, "storage", "", "Storage backend: file, sqlite or memory")
	flag.StringVar(&storageDir, "dir", "", "Storage directory (file/sqlite backends)")
	flag.BoolVar(&showVersion, "version", false, "Print version and exit")
	flag.Parse()

	if showVersion {
		fmt.Printf("restview %s (%s)\n", version, commit)
		return
	}

	settings, _, err := config.LoadSettings()
	if err != nil {
		log.Printf("settings: %v (using defaults)", err)
		settings = config.DefaultSettings()
	}
	if maxHistory > 0 {
		settings.MaxHistoryItems = maxHistory
	}
	if backend != "" {
		settings.StorageBackend = backend
	}
	if storageDir != "" {
		settings.StorageDir = storageDir
	}
	settings = config.NormaliseSettings(settings)

	ctx := context.Background()

	instr, err := telemetry.New(telemetry.ConfigFromEnv(os.Getenv))
	if err != nil {
		log.Fatalf("telemetry: %v", err)
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = instr.Shutdown(shutdownCtx)
	}()

	provider, closeProvider, err := buildProvider(settings)
	if err != nil {
		log.Fatalf("storage: %v", err)
	}
	defer closeProvider()

	store := responses.NewStore(responses.Options{
		MaxHistory:   settings.MaxHistoryItems,
		FormatOnShow: settings.FormatOnShow,
		ReusePreview: settings.ReusePreview,
		Storage:      provider,
		Surface:      presenter.NewTerminalSurface(os.Stdout),
		Instrumenter: instr,
	})

	resp, err := readResponseDump(filePath)
	if err != nil {
		log.Fatalf("read response: %v", err)
	}

	viewer := openWith
	if viewer == "default" {
		viewer = settings.DefaultViewer
	}
	region := &restfile.Request{
		Metadata: restfile.RequestMetadata{
			Name:         requestName,
			OpenWith:     viewer,
			NoView:       noView,
			SaveSilently: saveOnly,
		},
		LineRange: restfile.LineRange{Start: requestLine},
	}

	item, err := store.Add(ctx, resp, region)
	if err != nil {
		log.Fatalf("add response: %v", err)
	}

	fmt.Println()
	printHistory(store, item)
}

func buildProvider(settings config.Settings) (storage.Provider, func(), error) {
	switch settings.StorageBackend {
	case config.StorageBackendSQLite:
		if err := os.MkdirAll(settings.StorageDir, 0o755); err != nil {
			return nil, nil, err
		}
		provider, err := storage.NewSQLiteProvider(settings.StorageDir + "/responses.db")
		if err != nil {
			return nil, nil, err
		}
		return provider, func() { _ = provider.Close() }, nil
	case config.StorageBackendMemory:
		return storage.NewMemProvider(), func() {}, nil
	default:
		return storage.NewFileProvider(settings.StorageDir), func() {}, nil
	}
}

func readResponseDump(path string) (*httpclient.Response, error) {
	var reader io.Reader
	if path == "-" {
		reader = os.Stdin
	} else {
		file, err := os.Open(path)
		if err != nil {
			return nil, err
		}
		defer file.Close()
		reader = file
	}

	started := time.Now()
	parsed, err := http.ReadResponse(bufio.NewReader(reader), nil)
	if err != nil {
		return nil, err
	}
	return httpclient.FromHTTP(parsed, nil, time.Since(started))
}

func printHistory(store *responses.Store, added *responses.Item) {
	items := store.Snapshot()
	fmt.Printf("history (%d):\n", len(items))
	for _, item := range items {
		marker := " "
		if added != nil && item.ID == added.ID {
			marker = "*"
		}
		status := ""
		if item.Response != nil {
			status = item.Response.Status
		}
		location := item.ResponseURI
		if location == "" {
			location = "(in memory)"
		}
		name := item.Name
		if name == "" {
			name = item.ID
		}
		fmt.Printf(" %s %-30s %-16s %s\n", marker, name, status, location)
	}
}
