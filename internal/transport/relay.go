package transport

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"vaultferry/internal/domain"
	"vaultferry/internal/relay"
)

const defaultPollWait = 30 * time.Second

// Relay is a transport backed by the vaultferry relay server. AwaitNext
// long-polls the relay and keeps a per-kind cursor, so an artifact this
// client has already collected is never handed out twice.
type Relay struct {
	base     string
	client   *http.Client
	pollWait time.Duration
	logger   *slog.Logger

	mu      sync.Mutex
	cursors map[domain.Kind]uint64
}

var _ domain.Transport = (*Relay)(nil)

// RelayConfig holds the parameters for creating a relay transport.
type RelayConfig struct {
	// BaseURL is the relay server root, e.g. "http://127.0.0.1:8438".
	BaseURL string

	// Client is the HTTP client to use. Defaults to
	// http.DefaultClient. Its timeout, if any, must exceed PollWait or
	// long polls will be cut short.
	Client *http.Client

	// PollWait is the server-side wait requested per long-poll round.
	// Defaults to 30s.
	PollWait time.Duration

	// Logger receives operational messages. If nil, logging is
	// disabled.
	Logger *slog.Logger
}

// NewRelay creates a transport that talks to the relay at cfg.BaseURL.
func NewRelay(cfg RelayConfig) (*Relay, error) {
	if cfg.BaseURL == "" {
		return nil, fmt.Errorf("transport: BaseURL is required")
	}
	client := cfg.Client
	if client == nil {
		client = http.DefaultClient
	}
	pollWait := cfg.PollWait
	if pollWait <= 0 {
		pollWait = defaultPollWait
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Relay{
		base:     strings.TrimRight(cfg.BaseURL, "/"),
		client:   client,
		pollWait: pollWait,
		logger:   logger,
		cursors:  make(map[domain.Kind]uint64),
	}, nil
}

// Publish posts the artifact to the relay.
func (t *Relay) Publish(ctx context.Context, a domain.Artifact) error {
	ext := a.Kind.Ext()
	if ext == "" {
		return fmt.Errorf("transport: artifact kind unknown")
	}
	name := a.Name
	if name == "" {
		name = uuid.NewString()
	}

	u := t.base + "/v1/box/" + ext + "?name=" + url.QueryEscape(name)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, u, bytes.NewReader(a.Data))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := t.client.Do(req)
	if err != nil {
		return fmt.Errorf("transport: post %s: %w", u, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusCreated {
		return fmt.Errorf("transport: post %s: %s", u, resp.Status)
	}

	t.logger.Info("artifact published", "kind", a.Kind, "name", name, "relay", t.base)
	return nil
}

// AwaitNext long-polls the relay until an artifact of the kind newer
// than this client's cursor appears or ctx ends.
func (t *Relay) AwaitNext(ctx context.Context, kind domain.Kind) (domain.Artifact, error) {
	if kind.Ext() == "" {
		return domain.Artifact{}, fmt.Errorf("transport: artifact kind unknown")
	}

	for {
		wait := t.pollWait
		if deadline, ok := ctx.Deadline(); ok {
			remaining := time.Until(deadline)
			if remaining <= 0 {
				return domain.Artifact{}, fmt.Errorf("%w: no %s from relay", domain.ErrAwaitTimeout, kind)
			}
			if remaining < wait {
				wait = remaining
			}
		}

		artifact, found, err := t.next(ctx, kind, wait)
		if err != nil {
			if ctx.Err() != nil {
				if errors.Is(ctx.Err(), context.DeadlineExceeded) {
					return domain.Artifact{}, fmt.Errorf("%w: no %s from relay", domain.ErrAwaitTimeout, kind)
				}
				return domain.Artifact{}, ctx.Err()
			}
			return domain.Artifact{}, err
		}
		if found {
			return artifact, nil
		}
	}
}

// next runs one long-poll round. A 204 reports that nothing arrived
// within the wait.
func (t *Relay) next(ctx context.Context, kind domain.Kind, wait time.Duration) (domain.Artifact, bool, error) {
	u := fmt.Sprintf("%s/v1/box/%s/next?after=%d&wait=%s",
		t.base, kind.Ext(), t.cursor(kind), url.QueryEscape(wait.String()))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return domain.Artifact{}, false, err
	}

	resp, err := t.client.Do(req)
	if err != nil {
		return domain.Artifact{}, false, fmt.Errorf("transport: get %s: %w", u, err)
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
	case http.StatusNoContent:
		return domain.Artifact{}, false, nil
	default:
		return domain.Artifact{}, false, fmt.Errorf("transport: get %s: %s", u, resp.Status)
	}

	artifact, seq, err := readArtifact(resp, kind)
	if err != nil {
		return domain.Artifact{}, false, fmt.Errorf("transport: get %s: %w", u, err)
	}
	t.setCursor(kind, seq)
	return artifact, true, nil
}

// Latest fetches the newest artifact of the kind from the relay.
func (t *Relay) Latest(ctx context.Context, kind domain.Kind) (domain.Artifact, error) {
	if kind.Ext() == "" {
		return domain.Artifact{}, fmt.Errorf("transport: artifact kind unknown")
	}

	u := t.base + "/v1/box/" + kind.Ext() + "/latest"
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return domain.Artifact{}, err
	}

	resp, err := t.client.Do(req)
	if err != nil {
		return domain.Artifact{}, fmt.Errorf("transport: get %s: %w", u, err)
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
	case http.StatusNotFound:
		return domain.Artifact{}, fmt.Errorf("%w: no %s on relay", domain.ErrNoArtifact, kind)
	default:
		return domain.Artifact{}, fmt.Errorf("transport: get %s: %s", u, resp.Status)
	}

	artifact, _, err := readArtifact(resp, kind)
	if err != nil {
		return domain.Artifact{}, fmt.Errorf("transport: get %s: %w", u, err)
	}
	return artifact, nil
}

func readArtifact(resp *http.Response, kind domain.Kind) (domain.Artifact, uint64, error) {
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return domain.Artifact{}, 0, err
	}
	seq, err := strconv.ParseUint(resp.Header.Get(relay.SeqHeader), 10, 64)
	if err != nil {
		return domain.Artifact{}, 0, fmt.Errorf("bad %s header: %w", relay.SeqHeader, err)
	}
	return domain.Artifact{
		Kind: kind,
		Name: resp.Header.Get(relay.NameHeader),
		Data: data,
	}, seq, nil
}

func (t *Relay) cursor(kind domain.Kind) uint64 {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.cursors[kind]
}

func (t *Relay) setCursor(kind domain.Kind, seq uint64) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if seq > t.cursors[kind] {
		t.cursors[kind] = seq
	}
}
