// Package cli implements uber's cobra command tree. The root command loads
// the tool config and the project config before any subcommand runs and maps
// command errors to process exit codes.
package cli
