// Package config defines the YAML configuration for the atlas server and
// CLI. Loading applies defaults, then environment variable overrides
// (ATLAS_SECTION_FIELD), then validates the result.
package config
