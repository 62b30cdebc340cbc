// Package config provides configuration management for freshtracks.
//
// This package handles:
//   - Loading and saving settings from JSON files
//   - Default configuration values
//   - Environment variable overrides for secrets (FRESHTRACKS_*)
//   - Conversion to the typed configs the other packages consume
//
// # Default Settings
//
// Use DefaultSettings() to get sensible defaults:
//
//	settings := config.DefaultSettings()
//	// Collection under ~/Music/FreshTracks
//	// 100-track cap, 30-day rotation, archive enabled
//	// Three concurrent downloads, three attempts per track
//
// # Loading from File
//
//	settings, err := config.Load("/path/to/config.json")
//	if err != nil {
//	    // Uses defaults if file doesn't exist
//	}
//
// Secrets (the daemon API key, the Last.fm API key) are read from
// FRESHTRACKS_SLSKD_API_KEY and FRESHTRACKS_LASTFM_API_KEY after the
// file is parsed, so they never have to live in the JSON file. A .env
// file in the working directory is loaded if present.
//
// # Saving Settings
//
//	settings.MaxTracks = 150
//	err := settings.Save("/path/to/config.json")
//
// # Configuration Options
//
// Settings includes options for:
//   - Daemon connection and downloads directory
//   - Recommendation source and track limit
//   - Search polling and match thresholds
//   - Retry behavior and concurrency
//   - Collection paths, rotation policy, and archive cap
//   - Playlist generation
//   - ID3 tag modification
package config
