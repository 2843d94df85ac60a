// Package config loads game settings from a CUE file and the environment.
//
// A settings file is plain CUE checked against the embedded #Settings
// schema, so typos and out-of-range values fail with a file position.
// Environment variables (HYPERTOE_*) override the file; command-line flags
// override both and are applied by the caller.
package config
