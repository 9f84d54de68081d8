// Package cli defines the Cobra command tree for the bidsmeta CLI. Each file
// in this package registers one top-level command (generate, scan,
// descriptions, config, version) with the root command. Commands resolve
// settings through internal/config and delegate the work to internal
// packages, handling only flags and output.
package cli
