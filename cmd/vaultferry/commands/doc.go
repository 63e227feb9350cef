// Package commands defines the vaultferry CLI and wires dependencies for
// subcommands.
//
// Commands
//
//   - init         Write the starter config file
//   - import       Announce a key and import the sealed vault sent to it
//   - export       Seal the local vault to an announcement and publish it
//   - list         List credentials in the local vault
//   - fingerprint  Print the fingerprint of the latest announcement
//
// # Implementation
//
// The root command resolves configuration (flags over file over defaults)
// and builds the store and transport before any subcommand runs, so
// handlers share one wired app. Import and export are single-attempt:
// rerunning the command starts a fresh attempt with a fresh ephemeral key.
package commands
