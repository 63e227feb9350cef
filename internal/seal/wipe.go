package seal

import "crypto/subtle"

// wipe overwrites b with zeros. Private halves, shared secrets and derived
// keys go through here the moment they stop being needed.
func wipe(b []byte) {
	if len(b) == 0 {
		return
	}
	subtle.ConstantTimeCopy(1, b, make([]byte, len(b)))
}
