// Package domain defines the wire envelopes, the vault model and the
// collaborator contracts shared across the app. It contains plain types
// and interfaces only; the sealing engine and the collaborators implement
// the behavior.
package domain
