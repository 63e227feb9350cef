package domain

import (
	"bytes"
	"encoding/json"
	"fmt"
	"log/slog"
	"strconv"
)

// Counter is a passkey signature counter. It travels as a decimal string
// on the wire and is validated into an unsigned 64-bit integer on decode;
// the wire string is a transport convenience, not free-form text.
type Counter uint64

func (c Counter) String() string { return strconv.FormatUint(uint64(c), 10) }

func (c Counter) MarshalJSON() ([]byte, error) {
	return json.Marshal(c.String())
}

func (c *Counter) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	n, err := strconv.ParseUint(s, 10, 64)
	if err != nil {
		return fmt.Errorf("counter %q is not an unsigned integer", s)
	}
	*c = Counter(n)
	return nil
}

// Passkey is one migratable credential. The private key never appears in
// formatted output or log records: String, GoString and LogValue all
// redact it.
type Passkey struct {
	CredentialID     string  `json:"credentialId"`
	RelyingPartyID   string  `json:"relyingPartyId"`
	RelyingPartyName string  `json:"relyingPartyName"`
	UserHandle       string  `json:"userHandle"`
	UserDisplayName  string  `json:"userDisplayName"`
	Counter          Counter `json:"counter"`
	KeyAlgorithm     string  `json:"keyAlgorithm"`
	PrivateKey       Bytes   `json:"privateKey"`
}

// UnmarshalJSON rejects unknown fields and requires every field to be
// present, so a half-written credential never decodes into defaults.
func (p *Passkey) UnmarshalJSON(data []byte) error {
	type aux struct {
		CredentialID     *string  `json:"credentialId"`
		RelyingPartyID   *string  `json:"relyingPartyId"`
		RelyingPartyName *string  `json:"relyingPartyName"`
		UserHandle       *string  `json:"userHandle"`
		UserDisplayName  *string  `json:"userDisplayName"`
		Counter          *Counter `json:"counter"`
		KeyAlgorithm     *string  `json:"keyAlgorithm"`
		PrivateKey       *Bytes   `json:"privateKey"`
	}

	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	var a aux
	if err := dec.Decode(&a); err != nil {
		return err
	}

	for _, field := range []struct {
		name    string
		present bool
	}{
		{"credentialId", a.CredentialID != nil},
		{"relyingPartyId", a.RelyingPartyID != nil},
		{"relyingPartyName", a.RelyingPartyName != nil},
		{"userHandle", a.UserHandle != nil},
		{"userDisplayName", a.UserDisplayName != nil},
		{"counter", a.Counter != nil},
		{"keyAlgorithm", a.KeyAlgorithm != nil},
		{"privateKey", a.PrivateKey != nil},
	} {
		if !field.present {
			return fmt.Errorf("passkey missing field %q", field.name)
		}
	}
	if *a.CredentialID == "" {
		return fmt.Errorf("passkey has empty credentialId")
	}
	if len(*a.PrivateKey) == 0 {
		return fmt.Errorf("passkey %q has empty privateKey", *a.CredentialID)
	}

	*p = Passkey{
		CredentialID:     *a.CredentialID,
		RelyingPartyID:   *a.RelyingPartyID,
		RelyingPartyName: *a.RelyingPartyName,
		UserHandle:       *a.UserHandle,
		UserDisplayName:  *a.UserDisplayName,
		Counter:          *a.Counter,
		KeyAlgorithm:     *a.KeyAlgorithm,
		PrivateKey:       *a.PrivateKey,
	}
	return nil
}

// String renders the passkey with the private key redacted.
func (p Passkey) String() string {
	return fmt.Sprintf(
		"Passkey{credentialId:%q relyingPartyId:%q relyingPartyName:%q userHandle:%q userDisplayName:%q counter:%s keyAlgorithm:%q privateKey:<redacted>}",
		p.CredentialID, p.RelyingPartyID, p.RelyingPartyName,
		p.UserHandle, p.UserDisplayName, p.Counter, p.KeyAlgorithm,
	)
}

// GoString keeps %#v output redacted as well.
func (p Passkey) GoString() string { return p.String() }

// LogValue redacts the private key from structured log records.
func (p Passkey) LogValue() slog.Value {
	return slog.GroupValue(
		slog.String("credentialId", p.CredentialID),
		slog.String("relyingPartyId", p.RelyingPartyID),
		slog.String("userHandle", p.UserHandle),
		slog.String("counter", p.Counter.String()),
	)
}

// Vault is the plaintext payload of one migration: the ordered credential
// list. It is never persisted or transmitted unencrypted and lives only as
// long as the enclosing operation.
type Vault struct {
	Credentials []Passkey `json:"credentials"`
}
