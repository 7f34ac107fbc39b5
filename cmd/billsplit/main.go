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

	"billsplit/internal/handoff"
	"billsplit/internal/parse"
	"billsplit/internal/web"
)

//go:embed VERSION.txt
var versionFile string

var version = strings.TrimSpace(versionFile)

func main() {
	fs := ff.NewFlagSet("billsplit")
	var (
		port         = fs.IntLong("port", 8080, "HTTP server port")
		dbPath       = fs.StringLong("db", "billsplit.db", "Database file path")
		storagePath  = fs.StringLong("storage", "./bills", "Bill image storage directory")
		parseURL     = fs.StringLong("parse-url", "http://localhost:9000/api/parse-bill", "Bill parsing service URL")
		parseTimeout = fs.IntLong("parse-timeout", 60, "Bill parsing request timeout in seconds")
		showVersion  = fs.BoolLong("version", "Show version information")
	)

	if err := ff.Parse(fs, os.Args[1:],
		ff.WithEnvVarPrefix("BILLSPLIT"),
	); err != nil {
		fmt.Fprintf(os.Stderr, "%s\n", ffhelp.Flags(fs))
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}

	if *showVersion {
		fmt.Println(version)
		os.Exit(0)
	}

	slog.Info("Initializing bill store...")
	store, err := handoff.NewBoltStore(*dbPath)
	if err != nil {
		slog.Error("Failed to initialize bill store", "error", err)
		os.Exit(1)
	}
	defer store.Close()

	slog.Info("Initializing image storage...")
	images, err := web.NewLocalImageStorage(*storagePath)
	if err != nil {
		slog.Error("Failed to initialize image storage", "error", err)
		os.Exit(1)
	}

	parser := parse.NewClient(*parseURL, time.Duration(*parseTimeout)*time.Second)

	server := web.NewServer(parser, store, images)

	addr := fmt.Sprintf(":%d", *port)
	go func() {
		if err := server.Start(addr); err != nil {
			slog.Error("Server error", "error", err)
			os.Exit(1)
		}
	}()

	slog.Info("Server started", "address", fmt.Sprintf("http://localhost%s", addr), "parse_service", *parseURL)

	// Wait for interrupt signal
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	<-sigChan

	slog.Info("Shutting down...")
}
