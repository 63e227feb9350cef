package domain

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"

	"vaultferry/internal/codec"
)

// Bytes is binary envelope material carried as base64 text on the wire.
// Marshalling is canonical; unmarshalling tolerates both base64 dialects.
type Bytes []byte

func (b Bytes) MarshalJSON() ([]byte, error) {
	return json.Marshal(codec.Encode(b))
}

func (b *Bytes) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	raw, err := codec.Decode(s)
	if err != nil {
		return err
	}
	*b = raw
	return nil
}

// OpenBox is the announcement envelope: one party's ephemeral public key,
// safe to disclose to the transport.
type OpenBox struct {
	PublicKey Bytes `json:"publicKey"`
}

// SealedBox is the sealed envelope carrying the encrypted vault. Every
// field is transport-visible; confidentiality and integrity rest entirely
// on the AEAD construction.
type SealedBox struct {
	PublicKey         Bytes `json:"publicKey"`
	EncryptedVault    Bytes `json:"encryptedVault"`
	AuthenticationTag Bytes `json:"authenticationTag"`
	EncryptionNonce   Bytes `json:"encryptionNonce"`
	KeyDerivationSalt Bytes `json:"keyDerivationSalt"`
}

// DecodeOpenBox parses and validates an announcement document. Unknown
// and missing fields are errors, not defaults.
func DecodeOpenBox(data []byte) (OpenBox, error) {
	var ob OpenBox
	if err := decodeDocument(data, &ob); err != nil {
		return OpenBox{}, fmt.Errorf("%w: announcement: %v", ErrFormat, err)
	}
	if len(ob.PublicKey) == 0 {
		return OpenBox{}, fmt.Errorf("%w: announcement: missing publicKey", ErrFormat)
	}
	return ob, nil
}

// DecodeSealedBox parses and validates a sealed envelope document.
func DecodeSealedBox(data []byte) (SealedBox, error) {
	var sb SealedBox
	if err := decodeDocument(data, &sb); err != nil {
		return SealedBox{}, fmt.Errorf("%w: sealed envelope: %v", ErrFormat, err)
	}
	for _, field := range []struct {
		name  string
		value Bytes
	}{
		{"publicKey", sb.PublicKey},
		{"encryptedVault", sb.EncryptedVault},
		{"authenticationTag", sb.AuthenticationTag},
		{"encryptionNonce", sb.EncryptionNonce},
		{"keyDerivationSalt", sb.KeyDerivationSalt},
	} {
		if len(field.value) == 0 {
			return SealedBox{}, fmt.Errorf("%w: sealed envelope: missing %s", ErrFormat, field.name)
		}
	}
	return sb, nil
}

// DecodeVault parses and validates vault JSON recovered by the sealing
// engine.
func DecodeVault(data []byte) (Vault, error) {
	var v Vault
	if err := decodeDocument(data, &v); err != nil {
		return Vault{}, fmt.Errorf("%w: vault: %v", ErrFormat, err)
	}
	if v.Credentials == nil {
		return Vault{}, fmt.Errorf("%w: vault: missing credentials", ErrFormat)
	}
	return v, nil
}

// decodeDocument unmarshals one JSON document, rejecting unknown fields
// and trailing data.
func decodeDocument(data []byte, v any) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return err
	}
	if dec.More() {
		return errors.New("trailing data after document")
	}
	return nil
}
