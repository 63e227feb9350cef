package store_test

import (
	"bytes"
	"context"
	"math"
	"path/filepath"
	"testing"

	"vaultferry/internal/domain"
	"vaultferry/internal/store"
)

func openStore(t *testing.T, path string) *store.Store {
	t.Helper()
	s, err := store.Open(store.Config{Path: path})
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func makePasskey(id string, counter domain.Counter) domain.Passkey {
	return domain.Passkey{
		CredentialID:     id,
		RelyingPartyID:   "example.com",
		RelyingPartyName: "Example",
		UserHandle:       "user-" + id,
		UserDisplayName:  "user@example.com",
		Counter:          counter,
		KeyAlgorithm:     "ES256",
		PrivateKey:       bytes.Repeat([]byte{0x42}, 32),
	}
}

func TestStoreFetch_RoundTrip(t *testing.T) {
	ctx := context.Background()
	s := openStore(t, filepath.Join(t.TempDir(), "vault.db"))

	want := makePasskey("cred-1", 7)
	if err := s.StoreCredentials(ctx, []domain.Passkey{want}); err != nil {
		t.Fatalf("StoreCredentials: %v", err)
	}

	got, err := s.FetchCredentials(ctx)
	if err != nil {
		t.Fatalf("FetchCredentials: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("got %d credentials, want 1", len(got))
	}
	in := got[0]
	if in.CredentialID != want.CredentialID ||
		in.RelyingPartyID != want.RelyingPartyID ||
		in.RelyingPartyName != want.RelyingPartyName ||
		in.UserHandle != want.UserHandle ||
		in.UserDisplayName != want.UserDisplayName ||
		in.Counter != want.Counter ||
		in.KeyAlgorithm != want.KeyAlgorithm ||
		!bytes.Equal(in.PrivateKey, want.PrivateKey) {
		t.Fatalf("credential mismatch: got %s, want %s", in, want)
	}
}

func TestStoreCredentials_UpsertByID(t *testing.T) {
	ctx := context.Background()
	s := openStore(t, filepath.Join(t.TempDir(), "vault.db"))

	first := makePasskey("cred-1", 1)
	if err := s.StoreCredentials(ctx, []domain.Passkey{first}); err != nil {
		t.Fatalf("StoreCredentials: %v", err)
	}

	// Re-importing the same credential replaces the row instead of
	// duplicating it.
	second := makePasskey("cred-1", 9)
	second.UserDisplayName = "renamed@example.com"
	if err := s.StoreCredentials(ctx, []domain.Passkey{second}); err != nil {
		t.Fatalf("StoreCredentials: %v", err)
	}

	got, err := s.FetchCredentials(ctx)
	if err != nil {
		t.Fatalf("FetchCredentials: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("got %d credentials, want 1", len(got))
	}
	if got[0].Counter != 9 || got[0].UserDisplayName != "renamed@example.com" {
		t.Fatalf("upsert did not replace the row: %s", got[0])
	}
}

func TestFetchCredentials_OrderedByID(t *testing.T) {
	ctx := context.Background()
	s := openStore(t, filepath.Join(t.TempDir(), "vault.db"))

	batch := []domain.Passkey{
		makePasskey("cred-b", 0),
		makePasskey("cred-a", 0),
		makePasskey("cred-c", 0),
	}
	if err := s.StoreCredentials(ctx, batch); err != nil {
		t.Fatalf("StoreCredentials: %v", err)
	}

	got, err := s.FetchCredentials(ctx)
	if err != nil {
		t.Fatalf("FetchCredentials: %v", err)
	}
	if len(got) != 3 {
		t.Fatalf("got %d credentials, want 3", len(got))
	}
	for i, want := range []string{"cred-a", "cred-b", "cred-c"} {
		if got[i].CredentialID != want {
			t.Fatalf("position %d: got %s, want %s", i, got[i].CredentialID, want)
		}
	}
}

func TestStoreCredentials_EmptyBatch(t *testing.T) {
	ctx := context.Background()
	s := openStore(t, filepath.Join(t.TempDir(), "vault.db"))

	if err := s.StoreCredentials(ctx, nil); err != nil {
		t.Fatalf("StoreCredentials: %v", err)
	}
	got, err := s.FetchCredentials(ctx)
	if err != nil {
		t.Fatalf("FetchCredentials: %v", err)
	}
	if len(got) != 0 {
		t.Fatalf("got %d credentials, want 0", len(got))
	}
}

func TestStore_PersistsAcrossReopen(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "vault.db")

	first, err := store.Open(store.Config{Path: path})
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if err := first.StoreCredentials(ctx, []domain.Passkey{makePasskey("cred-1", 3)}); err != nil {
		t.Fatalf("StoreCredentials: %v", err)
	}
	if err := first.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	second := openStore(t, path)
	got, err := second.FetchCredentials(ctx)
	if err != nil {
		t.Fatalf("FetchCredentials: %v", err)
	}
	if len(got) != 1 || got[0].CredentialID != "cred-1" || got[0].Counter != 3 {
		t.Fatalf("reopened store returned %v", got)
	}
}

func TestStoreFetch_MaxCounter(t *testing.T) {
	ctx := context.Background()
	s := openStore(t, filepath.Join(t.TempDir(), "vault.db"))

	want := makePasskey("cred-1", domain.Counter(math.MaxUint64))
	if err := s.StoreCredentials(ctx, []domain.Passkey{want}); err != nil {
		t.Fatalf("StoreCredentials: %v", err)
	}
	got, err := s.FetchCredentials(ctx)
	if err != nil {
		t.Fatalf("FetchCredentials: %v", err)
	}
	if got[0].Counter != want.Counter {
		t.Fatalf("counter = %s, want %s", got[0].Counter, want.Counter)
	}
}
