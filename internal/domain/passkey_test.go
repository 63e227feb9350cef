package domain_test

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"testing"

	"vaultferry/internal/codec"
	"vaultferry/internal/domain"
)

func samplePasskey(t *testing.T) domain.Passkey {
	t.Helper()
	return domain.Passkey{
		CredentialID:     "AFTS_7DYRxzc0MnH6novvg",
		RelyingPartyID:   "future.1password.com",
		RelyingPartyName: "1Password's future",
		UserHandle:       "qj2Mza8VpfeyGUQ7DsjrNA",
		UserDisplayName:  "wendy@1password.com",
		Counter:          0,
		KeyAlgorithm:     "ES256",
		PrivateKey: []byte{
			218, 32, 172, 102, 165, 240, 198, 99, 5, 244, 84, 124, 112, 8,
			78, 139, 17, 171, 147, 13, 27, 190, 226, 169, 8, 68, 234, 22,
			250, 62, 22, 67,
		},
	}
}

func TestPasskey_JSONRoundTrip(t *testing.T) {
	in := samplePasskey(t)
	raw, err := json.Marshal(in)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	// The counter is a decimal string on the wire.
	if !bytes.Contains(raw, []byte(`"counter":"0"`)) {
		t.Fatalf("wire document %s lacks string counter", raw)
	}
	var out domain.Passkey
	if err := json.Unmarshal(raw, &out); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if out.CredentialID != in.CredentialID ||
		out.RelyingPartyID != in.RelyingPartyID ||
		out.RelyingPartyName != in.RelyingPartyName ||
		out.UserHandle != in.UserHandle ||
		out.UserDisplayName != in.UserDisplayName ||
		out.Counter != in.Counter ||
		out.KeyAlgorithm != in.KeyAlgorithm ||
		!bytes.Equal(out.PrivateKey, in.PrivateKey) {
		t.Fatalf("round trip mismatch: got %s", out)
	}
}

func TestCounter_ValidatesAsUint64(t *testing.T) {
	var c domain.Counter
	if err := json.Unmarshal([]byte(`"18446744073709551615"`), &c); err != nil {
		t.Fatalf("max uint64: %v", err)
	}
	if c != 18446744073709551615 {
		t.Fatalf("c = %d", c)
	}
	for _, doc := range []string{
		`"-1"`, `"1.5"`, `"+1"`, `""`, `"many"`,
		`"18446744073709551616"`, // one past max uint64
		`7`,                      // wire form must be a string
	} {
		if err := json.Unmarshal([]byte(doc), &c); err == nil {
			t.Fatalf("counter %s unexpectedly accepted", doc)
		}
	}
}

func TestPasskey_MissingFieldRejected(t *testing.T) {
	raw, err := json.Marshal(samplePasskey(t))
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	var full map[string]any
	if err := json.Unmarshal(raw, &full); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	for name := range full {
		partial := make(map[string]any, len(full)-1)
		for k, v := range full {
			if k != name {
				partial[k] = v
			}
		}
		doc, err := json.Marshal(partial)
		if err != nil {
			t.Fatalf("Marshal partial: %v", err)
		}
		var p domain.Passkey
		if err := json.Unmarshal(doc, &p); err == nil {
			t.Fatalf("passkey without %q unexpectedly decoded", name)
		}
	}
}

func TestPasskey_RedactsPrivateKey(t *testing.T) {
	p := samplePasskey(t)
	leaks := []string{
		codec.Encode(p.PrivateKey),
		fmt.Sprintf("%v", []byte(p.PrivateKey)),
	}

	var logBuf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&logBuf, nil))
	logger.Info("imported", "passkey", p)

	for _, rendered := range []string{
		p.String(),
		fmt.Sprintf("%v", p),
		fmt.Sprintf("%s", p),
		fmt.Sprintf("%#v", p),
		fmt.Sprint(domain.Vault{Credentials: []domain.Passkey{p}}),
		logBuf.String(),
	} {
		for _, leak := range leaks {
			if strings.Contains(rendered, leak) {
				t.Fatalf("private key leaked into %q", rendered)
			}
		}
	}
	if !strings.Contains(p.String(), "<redacted>") {
		t.Fatalf("String() = %q, want redaction marker", p.String())
	}
	if !strings.Contains(p.String(), p.CredentialID) {
		t.Fatalf("String() = %q, want credential id", p.String())
	}
}

func TestDecodeVault(t *testing.T) {
	raw, err := json.Marshal(domain.Vault{Credentials: []domain.Passkey{samplePasskey(t)}})
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	v, err := domain.DecodeVault(raw)
	if err != nil {
		t.Fatalf("DecodeVault: %v", err)
	}
	if len(v.Credentials) != 1 || v.Credentials[0].CredentialID != "AFTS_7DYRxzc0MnH6novvg" {
		t.Fatalf("vault = %+v", v)
	}

	if _, err := domain.DecodeVault([]byte(`{}`)); !errors.Is(err, domain.ErrFormat) {
		t.Fatalf("missing credentials: err = %v, want ErrFormat", err)
	}
	if _, err := domain.DecodeVault([]byte(`{"credentials":[]}`)); err != nil {
		t.Fatalf("empty vault should decode: %v", err)
	}
}
