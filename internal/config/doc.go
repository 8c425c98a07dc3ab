// Package config holds the runtime configuration for etymscan.
//
// Configuration flows from three layers, weakest first: built-in
// defaults, the optional .etymscan YAML file, and CLI flags. The
// resulting Config struct is validated once after parsing and passed
// through the application by dependency injection.
package config
