package domain

import "context"

// CredentialStore is the persistence collaborator: the local credential
// database on either side of a migration.
type CredentialStore interface {
	// FetchCredentials returns every stored credential, ordered by
	// credential ID.
	FetchCredentials(ctx context.Context) ([]Passkey, error)

	// StoreCredentials upserts the batch by credential ID. A batch
	// commits atomically; a partially stored vault is never visible.
	StoreCredentials(ctx context.Context, creds []Passkey) error
}

// Transport is the discovery collaborator: a store-and-forward channel
// moving tagged artifacts between the two parties.
type Transport interface {
	// Publish writes one artifact to the channel.
	Publish(ctx context.Context, a Artifact) error

	// AwaitNext blocks until an artifact of the kind appears or ctx ends.
	// Deadline expiry surfaces ErrAwaitTimeout; plain cancellation
	// surfaces ctx.Err(). Artifacts of other kinds never end the wait.
	AwaitNext(ctx context.Context, kind Kind) (Artifact, error)

	// Latest returns the newest artifact of the kind already on the
	// channel, or ErrNoArtifact when there is none.
	Latest(ctx context.Context, kind Kind) (Artifact, error)
}
