// Package transport moves migration artifacts between the two parties.
//
// Two implementations of domain.Transport are provided:
//
//   - Dir exchanges artifacts as files in a shared directory, for two
//     processes on one machine or on a mounted medium. Arrival is
//     detected with inotify, so waiting does not poll the filesystem.
//   - Relay exchanges artifacts through the vaultferry relay server,
//     for parties that share a network but no filesystem.
//
// Artifacts are named <name>.<kind>, where the kind tag is "openbox"
// or "sealedbox". Writers publish via a temporary file and rename, so
// a watcher never observes a partially written artifact.
package transport
