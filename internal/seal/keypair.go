package seal

import (
	"fmt"
	"io"
	"sync"

	"golang.org/x/crypto/curve25519"

	"vaultferry/internal/domain"
)

// KeyPair is a single-use ephemeral X25519 key pair. One migration attempt
// owns exactly one KeyPair; its first Seal or Open call consumes it.
type KeyPair struct {
	mu   sync.Mutex
	used bool
	priv [32]byte
	pub  [32]byte
}

// Generate draws a fresh key pair from csprng. The private key is clamped
// per RFC 7748 and the public half is derived immediately, so announcement
// never touches the private key again.
func Generate(csprng io.Reader) (*KeyPair, error) {
	kp := new(KeyPair)
	if _, err := io.ReadFull(csprng, kp.priv[:]); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCsprng, err)
	}
	clamp(&kp.priv)

	pub, err := curve25519.X25519(kp.priv[:], curve25519.Basepoint)
	if err != nil {
		wipe(kp.priv[:])
		return nil, fmt.Errorf("%w: %v", ErrPublicKeyDerivation, err)
	}
	copy(kp.pub[:], pub)
	return kp, nil
}

// Announce exposes the public half as an announcement envelope. The public
// key outlives consumption, so Announce is valid at any point in the pair's
// life.
func (kp *KeyPair) Announce() domain.OpenBox {
	return domain.OpenBox{PublicKey: append(domain.Bytes(nil), kp.pub[:]...)}
}

// consume marks the pair used. Exactly one Seal or Open call gets past
// this, whatever its outcome.
func (kp *KeyPair) consume() error {
	kp.mu.Lock()
	defer kp.mu.Unlock()
	if kp.used {
		return ErrKeyConsumed
	}
	kp.used = true
	return nil
}

func clamp(k *[32]byte) {
	k[0] &= 248
	k[31] &= 127
	k[31] |= 64
}
