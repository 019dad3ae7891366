// SPDX-License-Identifier: MPL-2.0

// Package config handles application configuration using Viper with CUE as the file format.
//
// Configuration is loaded from ~/.config/amalgam/config.cue (or XDG equivalent on Linux,
// ~/Library/Application Support/amalgam/config.cue on macOS, %APPDATA%\amalgam\config.cue
// on Windows), falling back to ./config.cue. Files are validated against the embedded
// CUE schema (config_schema.cue) before being merged over the defaults, and AMALGAM_*
// environment variables override both.
package config
