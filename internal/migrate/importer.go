package migrate

import (
	"context"
	"crypto/rand"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"vaultferry/internal/domain"
	"vaultferry/internal/seal"
)

// DefaultTimeout bounds the wait for the counterpart artifact when the
// caller does not choose one.
const DefaultTimeout = 5 * time.Minute

// Importer runs the import role of one migration attempt: announce a
// fresh key, await the sealed vault, open it and store the credentials.
type Importer struct {
	transport domain.Transport
	store     domain.CredentialStore
	csprng    io.Reader
	timeout   time.Duration
	logger    *slog.Logger

	mu      sync.Mutex
	started bool
	state   State
}

// ImporterConfig holds the collaborators for an import attempt.
type ImporterConfig struct {
	// Transport carries artifacts to and from the counterpart.
	// Required.
	Transport domain.Transport

	// Store receives the imported credentials. Required.
	Store domain.CredentialStore

	// Timeout bounds the wait for the counterpart's sealed envelope.
	// Defaults to DefaultTimeout.
	Timeout time.Duration

	// Csprng is the randomness source for the ephemeral key pair.
	// Defaults to crypto/rand.Reader.
	Csprng io.Reader

	// Logger receives state transitions. If nil, logging is disabled.
	Logger *slog.Logger
}

// ImportResult describes a completed import.
type ImportResult struct {
	// Credentials are the stored credentials, as recovered from the
	// counterpart's vault.
	Credentials []domain.Passkey

	// Fingerprint identifies the key this side announced, for
	// out-of-band comparison with the exporting side.
	Fingerprint string
}

// NewImporter builds a single-attempt importer.
func NewImporter(cfg ImporterConfig) (*Importer, error) {
	if cfg.Transport == nil {
		return nil, fmt.Errorf("migrate: Transport is required")
	}
	if cfg.Store == nil {
		return nil, fmt.Errorf("migrate: Store is required")
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	csprng := cfg.Csprng
	if csprng == nil {
		csprng = rand.Reader
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Importer{
		transport: cfg.Transport,
		store:     cfg.Store,
		csprng:    csprng,
		timeout:   timeout,
		logger:    logger,
		state:     StateIdle,
	}, nil
}

// State returns the attempt's current protocol state.
func (imp *Importer) State() State {
	imp.mu.Lock()
	defer imp.mu.Unlock()
	return imp.state
}

// Run executes the import attempt. Each Importer runs exactly once: a
// second call returns ErrAlreadyRun, and a failed attempt must be
// restarted with a fresh Importer so its key pair is never reused.
func (imp *Importer) Run(ctx context.Context) (ImportResult, error) {
	if err := imp.begin(); err != nil {
		return ImportResult{}, err
	}

	keyPair, err := seal.Generate(imp.csprng)
	if err != nil {
		return ImportResult{}, imp.fail(err)
	}
	announcement := keyPair.Announce()
	fingerprint := seal.Fingerprint(announcement.PublicKey)

	data, err := json.Marshal(announcement)
	if err != nil {
		return ImportResult{}, imp.fail(fmt.Errorf("encoding announcement: %w", err))
	}
	imp.setState(StateAnnounced, "fingerprint", fingerprint)
	err = imp.transport.Publish(ctx, domain.Artifact{
		Kind: domain.KindOpenBox,
		Name: uuid.NewString(),
		Data: data,
	})
	if err != nil {
		return ImportResult{}, imp.fail(fmt.Errorf("publishing announcement: %w", err))
	}

	imp.setState(StateAwaitingCounterpart, "timeout", imp.timeout)
	waitCtx, cancel := context.WithTimeout(ctx, imp.timeout)
	defer cancel()
	artifact, err := imp.transport.AwaitNext(waitCtx, domain.KindSealedBox)
	if err != nil {
		return ImportResult{}, imp.fail(fmt.Errorf("awaiting sealed envelope: %w", err))
	}
	imp.setState(StateReceived, "name", artifact.Name)

	box, err := domain.DecodeSealedBox(artifact.Data)
	if err != nil {
		return ImportResult{}, imp.fail(err)
	}
	vault, err := keyPair.Open(box)
	if err != nil {
		return ImportResult{}, imp.fail(fmt.Errorf("opening sealed envelope: %w", err))
	}
	imp.setState(StateOpened, "credentials", len(vault.Credentials))

	if err := imp.store.StoreCredentials(ctx, vault.Credentials); err != nil {
		return ImportResult{}, imp.fail(fmt.Errorf("storing credentials: %w", err))
	}

	return ImportResult{Credentials: vault.Credentials, Fingerprint: fingerprint}, nil
}

func (imp *Importer) begin() error {
	imp.mu.Lock()
	defer imp.mu.Unlock()
	if imp.started {
		return ErrAlreadyRun
	}
	imp.started = true
	return nil
}

func (imp *Importer) setState(next State, attrs ...any) {
	imp.mu.Lock()
	prev := imp.state
	imp.state = next
	imp.mu.Unlock()
	imp.logger.Info("import state",
		append([]any{"from", prev, "to", next}, attrs...)...)
}

func (imp *Importer) fail(err error) error {
	imp.setState(StateFailed, "error", err)
	return err
}
