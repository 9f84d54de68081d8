// Package config manages bidsmeta settings. Values come from command flags,
// BIDSMETA_* environment variables and ~/.bidsmeta/config.yaml, in that order
// of precedence, with built-in defaults underneath.
package config
