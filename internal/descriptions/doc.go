// Package descriptions loads and validates the two lookup tables that drive
// sidecar generation: free-text task descriptions and per-task event column
// metadata. Tables are read from YAML, JSON or TOML files and checked against
// an embedded JSON Schema before they are decoded.
package descriptions
