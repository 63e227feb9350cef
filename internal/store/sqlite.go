package store

import (
	"context"
	"fmt"
	"log/slog"

	"zombiezen.com/go/sqlite"
	"zombiezen.com/go/sqlite/sqlitex"

	"vaultferry/internal/codec"
	"vaultferry/internal/domain"
)

const schema = `
CREATE TABLE IF NOT EXISTS passkeys (
	credential_id     TEXT PRIMARY KEY,
	rp_id             TEXT NOT NULL,
	rp_name           TEXT NOT NULL,
	user_handle       TEXT NOT NULL,
	user_display_name TEXT NOT NULL,
	counter           INTEGER NOT NULL,
	key_algorithm     TEXT NOT NULL,
	private_key       TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_passkeys_rp ON passkeys(rp_id);
`

// Store is a SQLite-backed credential store.
type Store struct {
	pool   *sqlitex.Pool
	logger *slog.Logger
	path   string
}

var _ domain.CredentialStore = (*Store)(nil)

// Config holds the parameters for opening a credential store.
type Config struct {
	// Path is the filesystem path to the SQLite database file. The
	// file is created if it does not exist; the parent directory must
	// exist already.
	Path string

	// PoolSize is the number of connections in the pool. Defaults to
	// 4 if zero or negative.
	PoolSize int

	// Logger receives operational messages. If nil, logging is
	// disabled.
	Logger *slog.Logger
}

// Open opens the database at cfg.Path, creating it and its schema on
// first use. The caller must call Close when done.
func Open(cfg Config) (*Store, error) {
	if cfg.Path == "" {
		return nil, fmt.Errorf("store: Path is required")
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	poolSize := cfg.PoolSize
	if poolSize <= 0 {
		poolSize = 4
	}

	pool, err := sqlitex.NewPool(cfg.Path, sqlitex.PoolOptions{
		PoolSize:    poolSize,
		PrepareConn: prepareConn,
	})
	if err != nil {
		return nil, fmt.Errorf("store: opening %s: %w", cfg.Path, err)
	}
	return &Store{pool: pool, logger: logger, path: cfg.Path}, nil
}

func prepareConn(conn *sqlite.Conn) error {
	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA synchronous=NORMAL",
		"PRAGMA busy_timeout=5000",
	}
	for _, pragma := range pragmas {
		if err := sqlitex.ExecuteTransient(conn, pragma, nil); err != nil {
			return fmt.Errorf("store: %s: %w", pragma, err)
		}
	}
	if err := sqlitex.ExecuteScript(conn, schema, nil); err != nil {
		return fmt.Errorf("store: preparing schema: %w", err)
	}
	return nil
}

// Close closes the connection pool. Blocks until all borrowed
// connections are returned.
func (s *Store) Close() error {
	return s.pool.Close()
}

// StoreCredentials upserts the given credentials keyed by credential
// ID. The whole batch is applied in one IMMEDIATE transaction: on error
// nothing is written.
func (s *Store) StoreCredentials(ctx context.Context, creds []domain.Passkey) error {
	if len(creds) == 0 {
		return nil
	}

	conn, err := s.pool.Take(ctx)
	if err != nil {
		return fmt.Errorf("store: taking connection: %w", err)
	}
	defer s.pool.Put(conn)

	endTransaction, err := sqlitex.ImmediateTransaction(conn)
	if err != nil {
		return fmt.Errorf("store: beginning transaction: %w", err)
	}
	defer endTransaction(&err)

	for i := range creds {
		if err = upsertPasskey(conn, &creds[i]); err != nil {
			return err
		}
	}

	s.logger.Info("credentials stored", "count", len(creds), "path", s.path)
	return nil
}

func upsertPasskey(conn *sqlite.Conn, pk *domain.Passkey) error {
	err := sqlitex.Execute(conn, `INSERT OR REPLACE INTO passkeys (
		credential_id, rp_id, rp_name, user_handle, user_display_name,
		counter, key_algorithm, private_key
	) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`, &sqlitex.ExecOptions{
		Args: []any{
			pk.CredentialID,
			pk.RelyingPartyID,
			pk.RelyingPartyName,
			pk.UserHandle,
			pk.UserDisplayName,
			// Stored two's-complement; round-trips the full uint64 range.
			int64(pk.Counter),
			pk.KeyAlgorithm,
			codec.Encode(pk.PrivateKey),
		},
	})
	if err != nil {
		return fmt.Errorf("store: upserting %s: %w", pk.CredentialID, err)
	}
	return nil
}

// FetchCredentials returns every stored credential ordered by
// credential ID.
func (s *Store) FetchCredentials(ctx context.Context) ([]domain.Passkey, error) {
	conn, err := s.pool.Take(ctx)
	if err != nil {
		return nil, fmt.Errorf("store: taking connection: %w", err)
	}
	defer s.pool.Put(conn)

	var creds []domain.Passkey
	err = sqlitex.Execute(conn, `SELECT
		credential_id, rp_id, rp_name, user_handle, user_display_name,
		counter, key_algorithm, private_key
	FROM passkeys ORDER BY credential_id`, &sqlitex.ExecOptions{
		ResultFunc: func(stmt *sqlite.Stmt) error {
			key, err := codec.Decode(stmt.ColumnText(7))
			if err != nil {
				return fmt.Errorf("credential %s: private key: %w", stmt.ColumnText(0), err)
			}
			creds = append(creds, domain.Passkey{
				CredentialID:     stmt.ColumnText(0),
				RelyingPartyID:   stmt.ColumnText(1),
				RelyingPartyName: stmt.ColumnText(2),
				UserHandle:       stmt.ColumnText(3),
				UserDisplayName:  stmt.ColumnText(4),
				Counter:          domain.Counter(uint64(stmt.ColumnInt64(5))),
				KeyAlgorithm:     stmt.ColumnText(6),
				PrivateKey:       key,
			})
			return nil
		},
	})
	if err != nil {
		return nil, fmt.Errorf("store: fetching credentials: %w", err)
	}
	return creds, nil
}
