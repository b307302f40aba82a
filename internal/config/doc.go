// Package config provides configuration management for multialbum.
//
// This package handles:
//   - Loading and saving settings from TOML files
//   - Default configuration values
//   - Validation
//   - Conversion to the PathConfig used for playlists
//
// # Default Settings
//
// Use DefaultSettings() to get sensible defaults:
//
//	settings := config.DefaultSettings()
//	// Copies *.m4a files, one worker per CPU
//	// Creates the output directory when missing
//	// Track numbers padded to three digits
//
// # Loading from File
//
//	settings, err := config.Load("/path/to/config.toml")
//	if err != nil {
//	    // A missing file yields defaults; parse errors are returned
//	}
//
// # Saving Settings
//
//	settings.AudioExtension = "mp3"
//	err := settings.Save("/path/to/config.toml")
//
// The default location is ~/.config/multialbum/config.toml.
package config
