// Package store persists imported credentials in a local SQLite
// database.
//
// It contains the concrete implementation of domain.CredentialStore.
// Writes are upserts keyed by credential ID, applied one batch per
// transaction, so re-importing the same vault is idempotent and a
// failed batch leaves the database untouched. The database file is not
// encrypted; callers are expected to place it on protected storage.
package store
