package domain

import "errors"

var (
	// ErrFormat reports an envelope or vault that failed structural
	// (de)serialization. Deliberately distinct from the sealing engine's
	// authentication error: this one is a compatibility problem, not a
	// security event.
	ErrFormat = errors.New("malformed document")

	// ErrAwaitTimeout reports that no matching artifact appeared on the
	// transport within the wait bound.
	ErrAwaitTimeout = errors.New("timed out waiting for counterpart artifact")

	// ErrNoArtifact reports that the transport holds no artifact of the
	// requested kind.
	ErrNoArtifact = errors.New("no artifact of the requested kind")
)
