package seal

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/sha256"
	"encoding/json"
	"fmt"
	"io"

	"golang.org/x/crypto/curve25519"
	"golang.org/x/crypto/hkdf"

	"vaultferry/internal/domain"
)

const (
	saltSize  = 32
	nonceSize = 12
	tagSize   = 16
	keySize   = 32
)

// Seal encrypts the vault for the peer that produced the announcement.
//
// Steps, in order: draw a fresh 32-byte salt, agree on a shared secret
// with the announced key, derive the AES-256-GCM key via HKDF-SHA256,
// draw a fresh 12-byte nonce, serialize the vault, seal it with empty
// associated data, and package the envelope. This call consumes the key
// pair whatever the outcome.
func (kp *KeyPair) Seal(peer domain.OpenBox, vault domain.Vault, csprng io.Reader) (domain.SealedBox, error) {
	if err := kp.consume(); err != nil {
		return domain.SealedBox{}, err
	}
	defer wipe(kp.priv[:])

	salt := make([]byte, saltSize)
	if _, err := io.ReadFull(csprng, salt); err != nil {
		return domain.SealedBox{}, fmt.Errorf("%w: drawing salt: %v", ErrCsprng, err)
	}

	aead, err := kp.deriveAEAD(peer.PublicKey, salt)
	if err != nil {
		return domain.SealedBox{}, err
	}

	nonce := make([]byte, nonceSize)
	if _, err := io.ReadFull(csprng, nonce); err != nil {
		return domain.SealedBox{}, fmt.Errorf("%w: drawing nonce: %v", ErrCsprng, err)
	}

	plaintext, err := json.Marshal(vault)
	if err != nil {
		return domain.SealedBox{}, fmt.Errorf("%w: encoding vault: %v", domain.ErrFormat, err)
	}

	out := aead.Seal(nil, nonce, plaintext, nil)
	wipe(plaintext)

	return domain.SealedBox{
		PublicKey:         append(domain.Bytes(nil), kp.pub[:]...),
		EncryptedVault:    out[:len(out)-tagSize],
		AuthenticationTag: out[len(out)-tagSize:],
		EncryptionNonce:   nonce,
		KeyDerivationSalt: salt,
	}, nil
}

// Open authenticates and decrypts an envelope sealed against this pair's
// announcement, mirroring Seal: agree with the envelope's embedded public
// key, re-derive the symmetric key with the envelope's salt, verify the
// tag, then deserialize the vault. Plaintext is only produced after the
// tag verifies. This call consumes the key pair whatever the outcome.
func (kp *KeyPair) Open(box domain.SealedBox) (domain.Vault, error) {
	if err := kp.consume(); err != nil {
		return domain.Vault{}, err
	}
	defer wipe(kp.priv[:])

	if n := len(box.EncryptionNonce); n != nonceSize {
		return domain.Vault{}, fmt.Errorf("%w: nonce is %d bytes, want %d", domain.ErrFormat, n, nonceSize)
	}
	if n := len(box.AuthenticationTag); n != tagSize {
		return domain.Vault{}, fmt.Errorf("%w: tag is %d bytes, want %d", domain.ErrFormat, n, tagSize)
	}
	if n := len(box.KeyDerivationSalt); n != saltSize {
		return domain.Vault{}, fmt.Errorf("%w: salt is %d bytes, want %d", domain.ErrFormat, n, saltSize)
	}

	aead, err := kp.deriveAEAD(box.PublicKey, box.KeyDerivationSalt)
	if err != nil {
		return domain.Vault{}, err
	}

	sealed := make([]byte, 0, len(box.EncryptedVault)+tagSize)
	sealed = append(sealed, box.EncryptedVault...)
	sealed = append(sealed, box.AuthenticationTag...)

	plaintext, err := aead.Open(nil, box.EncryptionNonce, sealed, nil)
	if err != nil {
		return domain.Vault{}, ErrAuthentication
	}
	defer wipe(plaintext)

	return domain.DecodeVault(plaintext)
}

// deriveAEAD runs the agreement and derivation steps shared by Seal and
// Open: X25519 against the peer key, HKDF-SHA256 over the shared secret
// with the salt and empty info, then AES-256-GCM over the derived key.
// The shared secret and the derived key are wiped before returning.
func (kp *KeyPair) deriveAEAD(peerPub []byte, salt []byte) (cipher.AEAD, error) {
	if len(peerPub) != curve25519.PointSize {
		return nil, fmt.Errorf("%w: got %d bytes, want %d", ErrPeerKeyInvalid, len(peerPub), curve25519.PointSize)
	}
	shared, err := curve25519.X25519(kp.priv[:], peerPub)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPeerKeyInvalid, err)
	}
	defer wipe(shared)

	key := make([]byte, keySize)
	if _, err := io.ReadFull(hkdf.New(sha256.New, shared, salt, nil), key); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrKeyDerivation, err)
	}
	defer wipe(key)

	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrKeyDerivation, err)
	}
	aead, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrKeyDerivation, err)
	}
	return aead, nil
}
