// SPDX-License-Identifier: MPL-2.0

// Package config handles modkit configuration using Viper with CUE as the file format.
//
// Configuration is loaded from config.cue in the modkit configuration
// directory ($XDG_CONFIG_HOME/modkit on Linux, ~/Library/Application
// Support/modkit on macOS, %APPDATA%\modkit on Windows), from modkit.cue in
// the working directory, or from an explicit --config file. Files are
// validated against the embedded #Config schema (config_schema.cue) and
// merged over the built-in defaults. Environment variables (MODKIT_* and
// COBRA_TOOLS_PATH) override both.
package config
