// Package app wires application dependencies for the CLI.
//
// It resolves configuration from a YAML file (flags and the
// VAULTFERRY_CONFIG variable override the default location), then
// builds the logger, credential store and transport from Config,
// exposing them via the Wire struct for commands to use.
package app
