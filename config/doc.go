// Package config loads engine configuration from YAML.
//
// A single omtsf.yaml (or omtsf.yml) tunes the resolve, update and redact
// engines, so pipelines can ship one file instead of wiring functional
// options in code. Load reads the file from a directory, Parse decodes raw
// bytes with strict field checking, and the Resolver/MergeOptions/
// UpdateOptions/RedactOptions accessors map the decoded values onto the
// engines' option types.
package config
