// Package config provides configuration management for sped-tables.
//
// This package handles:
//   - Loading and saving settings from JSON files
//   - Default configuration values
//   - Conversion to http.Options and variant lists for other packages
//
// # Default Settings
//
// Use DefaultSettings() to get the defaults:
//
//	settings := config.DefaultSettings()
//	// All four SPED variants
//	// Public table service endpoint, built-in request template
//	// Output to the working directory, 10 concurrent downloads
//
// # Loading from File
//
//	settings, err := config.Load("/path/to/config.json")
//	if err != nil {
//	    // Uses defaults if file doesn't exist
//	}
//
// # Saving Settings
//
//	settings.OutputURL = "/srv/sped/tables"
//	err := settings.Save("/path/to/config.json")
package config
