package seal

import "errors"

var (
	// ErrCsprng reports that the randomness source failed. Fatal to the
	// attempt; never retried internally.
	ErrCsprng = errors.New("reading from csprng failed")

	// ErrPublicKeyDerivation reports that the public half could not be
	// derived from a fresh private key.
	ErrPublicKeyDerivation = errors.New("deriving public key failed")

	// ErrKeyConsumed reports reuse of a key pair that already performed
	// its one agreement.
	ErrKeyConsumed = errors.New("ephemeral key pair already consumed")

	// ErrPeerKeyInvalid reports a structurally invalid counterpart public
	// key. Surfaced to the caller; never retried automatically.
	ErrPeerKeyInvalid = errors.New("peer public key is not a valid X25519 key")

	// ErrKeyDerivation reports a failure expanding the shared secret into
	// the symmetric key.
	ErrKeyDerivation = errors.New("deriving symmetric key failed")

	// ErrAuthentication reports an AEAD tag mismatch on open: the
	// envelope was tampered with, corrupted, or sealed for a different
	// key pair. No plaintext accompanies it.
	ErrAuthentication = errors.New("vault authentication failed")
)
