// Package main runs the in-memory HTTP relay used by vaultferry when the
// two devices share no filesystem. It stores published migration artifacts
// (announcements and sealed vaults) and long-polls waiters until the
// counterpart publishes.
//
// The HTTP API is documented in vaultferry/internal/relay.
//
// Behaviour
//
//   - All state is held in memory and lost on process exit, so one relay
//     instance serves one migration session.
//   - The default listen address is :8438.
//
// The relay is an untrusted middleman: it never sees plaintext or private
// keys, only sealed envelopes and public announcement keys.
package main
