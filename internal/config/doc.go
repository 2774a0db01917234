// Package config manages the segmentform settings file.
//
// Settings are stored as YAML in a platform-appropriate location:
//   - Linux: $XDG_CONFIG_HOME/segmentform/config.yaml or $HOME/.config/segmentform/config.yaml
//   - macOS: $HOME/.config/segmentform/config.yaml
//   - Windows: %LOCALAPPDATA%\segmentform\config.yaml
//
// The file holds the submission endpoint, the request timeout, logging
// preferences and, optionally, the schema catalog offered by the editor:
//
//	version: 1
//	endpoint: http://localhost:8080/segments
//	timeout_seconds: 10
//	catalog:
//	  - key: first_name
//	    label: First Name
//	  - key: city
//	    label: City
//
// # Usage Example
//
//	settings, err := config.Load("")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	catalog, err := config.CatalogFromSettings(settings)
//
// Save writes to a temporary file and renames it into place.
package config
