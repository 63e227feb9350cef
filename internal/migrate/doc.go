// Package migrate sequences one credential migration attempt between
// two vaults.
//
// # Overview
//
// A migration moves every credential from the exporting vault into the
// importing one through a single end-to-end sealed envelope. The
// importing side announces a fresh ephemeral public key; the exporting
// side seals its vault to that key and publishes the result; the
// importing side opens the envelope and stores the credentials. Only
// the two artifacts cross the transport, never key material beyond one
// ephemeral public key per side.
//
// # Flows
//
// Import (Importer.Run):
//  1. Generate an ephemeral key pair and publish its announcement.
//  2. Await the counterpart's sealed envelope, ignoring artifacts of
//     any other kind. The wait is always bounded by a timeout.
//  3. Open the envelope with the ephemeral key pair.
//  4. Hand the recovered credentials to the store, one atomic batch.
//
// Export (Exporter.Run):
//  1. Load the newest previously received announcement; this role never
//     generates one.
//  2. Fetch the local vault from the store.
//  3. Seal the vault to the announced key with a fresh ephemeral key
//     pair and publish the envelope.
//
// # Errors
//
// The first failure wins: the attempt transitions to StateFailed and
// the error is returned unwrapped enough for errors.Is to reach the
// underlying kind (seal.ErrAuthentication, domain.ErrFormat,
// domain.ErrAwaitTimeout, and so on). Nothing is retried internally;
// retry policy belongs to the caller.
//
// # Security notes
//
//   - Both roles are single-attempt. A second Run returns ErrAlreadyRun,
//     and a failed attempt must be restarted with a fresh Importer or
//     Exporter so that no ephemeral key pair is ever reused.
//   - Credentials appear in logs only as counts and identifiers; private
//     keys never leave the vault structures.
package migrate
