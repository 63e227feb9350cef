// Package seal implements the sealing engine: one ephemeral X25519
// agreement protecting one vault in transit.
//
// # Overview
//
// The importing party generates a KeyPair and announces its public half.
// The exporting party generates its own KeyPair and calls Seal, which
// derives an AES-256-GCM key from the X25519 shared secret via HKDF-SHA256
// (fresh random 32-byte salt, empty info) and encrypts the serialized
// vault under a fresh random 96-bit nonce with empty associated data. The
// sealed envelope carries the exporter's public key, the ciphertext, the
// 16-byte tag, the nonce and the salt. Open on the importing side mirrors
// those steps and verifies the tag before any plaintext is produced.
//
// # Single use
//
// A KeyPair is consumed by its first Seal or Open call, success or
// failure. The private half is wiped on completion and any later call
// fails with ErrKeyConsumed. Forward secrecy rests on this: no agreement
// key outlives its one attempt.
//
// # Errors
//
// Every failing step has its own kind: ErrCsprng, ErrPublicKeyDerivation,
// ErrPeerKeyInvalid, ErrKeyDerivation, ErrAuthentication, and
// domain.ErrFormat for vault (de)serialization. Authentication and format
// failures are deliberately distinct signals: the former is a potential
// tampering event, the latter a compatibility bug.
package seal
