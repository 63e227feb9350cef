package app

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"vaultferry/internal/domain"
	"vaultferry/internal/store"
	"vaultferry/internal/transport"
)

// Wire bundles the logger, store and transport for the CLI.
type Wire struct {
	Logger    *slog.Logger
	Store     *store.Store
	Transport domain.Transport
	Timeout   time.Duration
}

// NewWire constructs the dependency graph from cfg. The transport is
// the relay client when cfg.Relay is set, the shared-directory
// transport otherwise. The caller must Close the wire when done.
func NewWire(cfg Config) (*Wire, error) {
	logger := NewLogger(cfg.Verbose)

	if err := os.MkdirAll(filepath.Dir(cfg.DB), 0o700); err != nil {
		return nil, fmt.Errorf("creating database directory: %w", err)
	}
	st, err := store.Open(store.Config{Path: cfg.DB, Logger: logger})
	if err != nil {
		return nil, err
	}

	var tr domain.Transport
	if cfg.Relay != "" {
		tr, err = transport.NewRelay(transport.RelayConfig{BaseURL: cfg.Relay, Logger: logger})
	} else {
		tr, err = transport.NewDir(transport.DirConfig{Dir: cfg.HandoffDir, Logger: logger})
	}
	if err != nil {
		st.Close()
		return nil, err
	}

	return &Wire{
		Logger:    logger,
		Store:     st,
		Transport: tr,
		Timeout:   time.Duration(cfg.Timeout),
	}, nil
}

// Close releases the wire's resources.
func (w *Wire) Close() error {
	return w.Store.Close()
}

// NewLogger builds the CLI logger: warnings only by default so command
// output stays clean, everything at debug and up when verbose.
func NewLogger(verbose bool) *slog.Logger {
	level := slog.LevelWarn
	if verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}
