package main

import (
	"flag"
	"log/slog"
	"net/http"
	"os"

	"vaultferry/internal/relay"
)

func main() {
	addr := flag.String("addr", ":8438", "listen address")
	verbose := flag.Bool("verbose", false, "debug logging")
	flag.Parse()

	level := slog.LevelInfo
	if *verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))

	srv := relay.New(relay.Config{Logger: logger})
	logger.Info("relay listening", "addr", *addr)
	if err := http.ListenAndServe(*addr, srv); err != nil {
		logger.Error("relay stopped", "error", err)
		os.Exit(1)
	}
}
