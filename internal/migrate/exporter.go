package migrate

import (
	"context"
	"crypto/rand"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"sync"

	"github.com/google/uuid"

	"vaultferry/internal/domain"
	"vaultferry/internal/seal"
)

// Exporter runs the export role of one migration attempt: load the
// counterpart's announcement, seal the local vault to it and publish
// the envelope.
type Exporter struct {
	transport domain.Transport
	store     domain.CredentialStore
	csprng    io.Reader
	logger    *slog.Logger

	mu      sync.Mutex
	started bool
	state   State
}

// ExporterConfig holds the collaborators for an export attempt.
type ExporterConfig struct {
	// Transport carries artifacts to and from the counterpart.
	// Required.
	Transport domain.Transport

	// Store supplies the credentials to export. Required.
	Store domain.CredentialStore

	// Csprng is the randomness source for the ephemeral key pair and
	// the sealing operation. Defaults to crypto/rand.Reader.
	Csprng io.Reader

	// Logger receives state transitions. If nil, logging is disabled.
	Logger *slog.Logger
}

// ExportResult describes a completed export.
type ExportResult struct {
	// Credentials is how many credentials were sealed into the
	// envelope.
	Credentials int

	// PeerFingerprint identifies the announced key the vault was
	// sealed to, for out-of-band comparison with the importing side.
	PeerFingerprint string

	// Name is the published envelope's artifact name.
	Name string
}

// NewExporter builds a single-attempt exporter.
func NewExporter(cfg ExporterConfig) (*Exporter, error) {
	if cfg.Transport == nil {
		return nil, fmt.Errorf("migrate: Transport is required")
	}
	if cfg.Store == nil {
		return nil, fmt.Errorf("migrate: Store is required")
	}
	csprng := cfg.Csprng
	if csprng == nil {
		csprng = rand.Reader
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Exporter{
		transport: cfg.Transport,
		store:     cfg.Store,
		csprng:    csprng,
		logger:    logger,
		state:     StateIdle,
	}, nil
}

// State returns the attempt's current protocol state.
func (exp *Exporter) State() State {
	exp.mu.Lock()
	defer exp.mu.Unlock()
	return exp.state
}

// Run executes the export attempt. Each Exporter runs exactly once: a
// second call returns ErrAlreadyRun, and a failed attempt must be
// restarted with a fresh Exporter so its key pair is never reused.
//
// The announcement is whatever the counterpart most recently published;
// this role never announces. When none exists the attempt fails with
// domain.ErrNoArtifact and the import role must run first.
func (exp *Exporter) Run(ctx context.Context) (ExportResult, error) {
	if err := exp.begin(); err != nil {
		return ExportResult{}, err
	}

	artifact, err := exp.transport.Latest(ctx, domain.KindOpenBox)
	if err != nil {
		return ExportResult{}, exp.fail(fmt.Errorf("loading announcement: %w", err))
	}
	announcement, err := domain.DecodeOpenBox(artifact.Data)
	if err != nil {
		return ExportResult{}, exp.fail(err)
	}
	fingerprint := seal.Fingerprint(announcement.PublicKey)
	exp.setState(StateAnnouncementLoaded, "name", artifact.Name, "fingerprint", fingerprint)

	creds, err := exp.store.FetchCredentials(ctx)
	if err != nil {
		return ExportResult{}, exp.fail(fmt.Errorf("fetching credentials: %w", err))
	}
	if creds == nil {
		// An empty vault still serializes as a credential list.
		creds = []domain.Passkey{}
	}
	vault := domain.Vault{Credentials: creds}
	exp.logger.Debug("vault loaded", "vault", vault)

	keyPair, err := seal.Generate(exp.csprng)
	if err != nil {
		return ExportResult{}, exp.fail(err)
	}
	box, err := keyPair.Seal(announcement, vault, exp.csprng)
	if err != nil {
		return ExportResult{}, exp.fail(fmt.Errorf("sealing vault: %w", err))
	}
	exp.setState(StateSealed, "credentials", len(creds))

	data, err := json.Marshal(box)
	if err != nil {
		return ExportResult{}, exp.fail(fmt.Errorf("encoding sealed envelope: %w", err))
	}
	name := uuid.NewString()
	err = exp.transport.Publish(ctx, domain.Artifact{
		Kind: domain.KindSealedBox,
		Name: name,
		Data: data,
	})
	if err != nil {
		return ExportResult{}, exp.fail(fmt.Errorf("publishing sealed envelope: %w", err))
	}

	return ExportResult{
		Credentials:     len(creds),
		PeerFingerprint: fingerprint,
		Name:            name,
	}, nil
}

func (exp *Exporter) begin() error {
	exp.mu.Lock()
	defer exp.mu.Unlock()
	if exp.started {
		return ErrAlreadyRun
	}
	exp.started = true
	return nil
}

func (exp *Exporter) setState(next State, attrs ...any) {
	exp.mu.Lock()
	prev := exp.state
	exp.state = next
	exp.mu.Unlock()
	exp.logger.Info("export state",
		append([]any{"from", prev, "to", next}, attrs...)...)
}

func (exp *Exporter) fail(err error) error {
	exp.setState(StateFailed, "error", err)
	return err
}
