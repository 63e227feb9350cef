package transport

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"vaultferry/internal/domain"
)

// Dir is a transport backed by a shared directory.
type Dir struct {
	dir    string
	logger *slog.Logger
}

var _ domain.Transport = (*Dir)(nil)

// DirConfig holds the parameters for creating a directory transport.
type DirConfig struct {
	// Dir is the shared handoff directory. It is created if it does
	// not exist.
	Dir string

	// Logger receives operational messages. If nil, logging is
	// disabled.
	Logger *slog.Logger
}

// NewDir creates a directory transport rooted at cfg.Dir.
func NewDir(cfg DirConfig) (*Dir, error) {
	if cfg.Dir == "" {
		return nil, fmt.Errorf("transport: Dir is required")
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	if err := os.MkdirAll(cfg.Dir, 0o700); err != nil {
		return nil, fmt.Errorf("transport: creating %s: %w", cfg.Dir, err)
	}
	return &Dir{dir: cfg.Dir, logger: logger}, nil
}

// Publish writes the artifact as <name>.<kind> via a temporary file and
// rename, so readers never see a partial write.
func (d *Dir) Publish(ctx context.Context, a domain.Artifact) error {
	ext := a.Kind.Ext()
	if ext == "" {
		return fmt.Errorf("transport: artifact kind unknown")
	}
	name := a.Name
	if name == "" {
		name = uuid.NewString()
	}

	final := filepath.Join(d.dir, name+"."+ext)
	tmp := final + ".tmp"
	if err := os.WriteFile(tmp, a.Data, 0o600); err != nil {
		return fmt.Errorf("transport: writing %s: %w", tmp, err)
	}
	if err := os.Rename(tmp, final); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("transport: publishing %s: %w", final, err)
	}

	d.logger.Info("artifact published", "kind", a.Kind, "path", final, "bytes", len(a.Data))
	return nil
}

// AwaitNext blocks until an artifact of the kind is present in the
// directory or ctx ends. An artifact already on disk satisfies the wait
// immediately; otherwise arrival is detected with inotify.
func (d *Dir) AwaitNext(ctx context.Context, kind domain.Kind) (domain.Artifact, error) {
	ext := kind.Ext()
	if ext == "" {
		return domain.Artifact{}, fmt.Errorf("transport: artifact kind unknown")
	}
	suffix := "." + ext

	ready, cleanup, err := watchForSuffix(d.dir, suffix)
	if err != nil {
		return domain.Artifact{}, fmt.Errorf("transport: watching %s: %w", d.dir, err)
	}
	defer cleanup()

	// Scan only after the watch is installed; see watchForSuffix.
	existing, err := d.matching(suffix)
	if err != nil {
		return domain.Artifact{}, err
	}
	if len(existing) > 0 {
		return d.read(kind, existing[0].name)
	}

	select {
	case filename := <-ready:
		return d.read(kind, filename)
	case <-ctx.Done():
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return domain.Artifact{}, fmt.Errorf("%w: no %s in %s", domain.ErrAwaitTimeout, kind, d.dir)
		}
		return domain.Artifact{}, ctx.Err()
	}
}

// Latest returns the newest artifact of the kind already in the
// directory.
func (d *Dir) Latest(ctx context.Context, kind domain.Kind) (domain.Artifact, error) {
	ext := kind.Ext()
	if ext == "" {
		return domain.Artifact{}, fmt.Errorf("transport: artifact kind unknown")
	}

	existing, err := d.matching("." + ext)
	if err != nil {
		return domain.Artifact{}, err
	}
	if len(existing) == 0 {
		return domain.Artifact{}, fmt.Errorf("%w: no %s in %s", domain.ErrNoArtifact, kind, d.dir)
	}
	return d.read(kind, existing[len(existing)-1].name)
}

func (d *Dir) read(kind domain.Kind, filename string) (domain.Artifact, error) {
	data, err := os.ReadFile(filepath.Join(d.dir, filename))
	if err != nil {
		return domain.Artifact{}, fmt.Errorf("transport: reading %s: %w", filename, err)
	}
	return domain.Artifact{
		Kind: kind,
		Name: strings.TrimSuffix(filename, "."+kind.Ext()),
		Data: data,
	}, nil
}

type dirEntry struct {
	name string
	mod  time.Time
}

// matching lists artifact files with the given suffix, oldest first.
func (d *Dir) matching(suffix string) ([]dirEntry, error) {
	entries, err := os.ReadDir(d.dir)
	if err != nil {
		return nil, fmt.Errorf("transport: listing %s: %w", d.dir, err)
	}
	var found []dirEntry
	for _, de := range entries {
		if de.IsDir() || !strings.HasSuffix(de.Name(), suffix) {
			continue
		}
		info, err := de.Info()
		if err != nil {
			continue // vanished between ReadDir and Info
		}
		found = append(found, dirEntry{name: de.Name(), mod: info.ModTime()})
	}
	sort.Slice(found, func(i, j int) bool {
		if !found[i].mod.Equal(found[j].mod) {
			return found[i].mod.Before(found[j].mod)
		}
		return found[i].name < found[j].name
	})
	return found, nil
}
