package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/joho/godotenv"

	"github.com/rlafferty/freshtracks/internal/acquire"
	"github.com/rlafferty/freshtracks/internal/audio"
	"github.com/rlafferty/freshtracks/internal/library"
	"github.com/rlafferty/freshtracks/internal/match"
)

// Settings holds all configuration options.
type Settings struct {
	// Soulseek daemon settings
	SlskdURL            string  `json:"slskd_url"`
	SlskdAPIKey         string  `json:"slskd_api_key"`
	SlskdTimeoutSeconds float64 `json:"slskd_timeout_seconds"`
	DownloadsPath       string  `json:"downloads_path"`

	// Recommendation source settings
	LastfmAPIKey string `json:"lastfm_api_key"`
	LastfmUser   string `json:"lastfm_user"`
	TrackLimit   int    `json:"track_limit"`

	// Search settings
	SearchPollSeconds float64 `json:"search_poll_seconds"`
	SearchMaxPolls    int     `json:"search_max_polls"`

	// Matching settings
	PrimaryThreshold  float64 `json:"primary_threshold"`
	FallbackThreshold float64 `json:"fallback_threshold"`
	MinBitRate        int     `json:"min_bit_rate"`
	MinFileSizeBytes  int64   `json:"min_file_size_bytes"`

	// Acquisition settings
	MaxConcurrentDownloads int     `json:"max_concurrent_downloads"`
	DownloadMaxRetries     int     `json:"download_max_retries"`
	RetryCooldownSeconds   float64 `json:"retry_cooldown_seconds"`
	DownloadTimeoutMinutes float64 `json:"download_timeout_minutes"`
	BatchPauseSeconds      float64 `json:"batch_pause_seconds"`
	StuckThresholdMinutes  float64 `json:"stuck_threshold_minutes"`
	TransferPollSeconds    float64 `json:"transfer_poll_seconds"`
	TransferGraceSeconds   float64 `json:"transfer_grace_seconds"`
	ProcessingStaleMinutes float64 `json:"processing_stale_minutes"`

	// Collection settings
	CurrentPath      string `json:"current_path"`
	ProcessingPath   string `json:"processing_path"`
	ArchivePath      string `json:"archive_path"`
	MaxTracks        int    `json:"max_tracks"`
	MaxAgeDays       int    `json:"max_age_days"`
	RotationStrategy string `json:"rotation_strategy"` // oldest_first, random, least_played
	ArchiveEnabled   bool   `json:"archive_enabled"`
	ArchiveMaxTracks int    `json:"archive_max_tracks"`

	// Playlist settings
	CreatePlaylist bool   `json:"create_playlist"`
	PlaylistName   string `json:"playlist_name"`
	PlaylistFormat string `json:"playlist_format"` // m3u, pls
	M3UExtended    bool   `json:"m3u_extended"`

	// Tag settings
	ModifyTags bool `json:"modify_tags"`
}

// DefaultSettings returns settings with default values.
func DefaultSettings() *Settings {
	homeDir, _ := os.UserHomeDir()
	musicDir := filepath.Join(homeDir, "Music", "FreshTracks")
	return &Settings{
		SlskdURL:            "http://localhost:5030",
		SlskdTimeoutSeconds: 15,
		DownloadsPath:       filepath.Join(homeDir, "Downloads", "slskd"),

		TrackLimit: 40,

		SearchPollSeconds: 3,
		SearchMaxPolls:    15,

		PrimaryThreshold:  0.5,
		FallbackThreshold: 0.3,
		MinBitRate:        match.MinBitRate,
		MinFileSizeBytes:  match.MinFileSize,

		MaxConcurrentDownloads: 3,
		DownloadMaxRetries:     3,
		RetryCooldownSeconds:   5,
		DownloadTimeoutMinutes: 10,
		BatchPauseSeconds:      15,
		StuckThresholdMinutes:  10,
		TransferPollSeconds:    10,
		TransferGraceSeconds:   30,
		ProcessingStaleMinutes: 60,

		CurrentPath:      filepath.Join(musicDir, "current"),
		ProcessingPath:   filepath.Join(musicDir, "processing"),
		ArchivePath:      filepath.Join(musicDir, "archive"),
		MaxTracks:        100,
		MaxAgeDays:       30,
		RotationStrategy: string(library.StrategyOldestFirst),
		ArchiveEnabled:   true,
		ArchiveMaxTracks: 500,

		CreatePlaylist: true,
		PlaylistName:   "freshtracks",
		PlaylistFormat: "m3u",
		M3UExtended:    true,

		ModifyTags: true,
	}
}

// Load reads settings from a JSON file, then applies environment
// overrides. A missing file yields defaults. Secrets are normally kept
// out of the JSON file and supplied via FRESHTRACKS_* variables (a
// .env file next to the working directory is honored).
func Load(path string) (*Settings, error) {
	settings := DefaultSettings()

	data, err := os.ReadFile(path)
	if err == nil {
		if err := json.Unmarshal(data, settings); err != nil {
			return nil, fmt.Errorf("parsing %s: %w", path, err)
		}
	} else if !os.IsNotExist(err) {
		return nil, err
	}

	settings.applyEnv()
	return settings, nil
}

func (s *Settings) applyEnv() {
	// Best effort; absent .env is fine.
	godotenv.Load()

	if v := os.Getenv("FRESHTRACKS_SLSKD_URL"); v != "" {
		s.SlskdURL = v
	}
	if v := os.Getenv("FRESHTRACKS_SLSKD_API_KEY"); v != "" {
		s.SlskdAPIKey = v
	}
	if v := os.Getenv("FRESHTRACKS_LASTFM_API_KEY"); v != "" {
		s.LastfmAPIKey = v
	}
	if v := os.Getenv("FRESHTRACKS_LASTFM_USER"); v != "" {
		s.LastfmUser = v
	}
}

// Save writes settings to a JSON file.
func (s *Settings) Save(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}

	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return err
	}

	return os.WriteFile(path, data, 0644)
}

// Validate checks that the settings required to reach the download
// daemon are present and that numeric knobs are sane.
func (s *Settings) Validate() error {
	if s.SlskdURL == "" {
		return fmt.Errorf("slskd_url is required")
	}
	if s.SlskdAPIKey == "" {
		return fmt.Errorf("slskd API key is required (set FRESHTRACKS_SLSKD_API_KEY)")
	}
	if s.MaxConcurrentDownloads < 1 {
		return fmt.Errorf("max_concurrent_downloads must be at least 1")
	}
	if s.DownloadMaxRetries < 1 {
		return fmt.Errorf("download_max_retries must be at least 1")
	}
	if s.FallbackThreshold > s.PrimaryThreshold {
		return fmt.Errorf("fallback_threshold must not exceed primary_threshold")
	}
	switch library.Strategy(s.RotationStrategy) {
	case library.StrategyOldestFirst, library.StrategyRandom, library.StrategyLeastPlayed:
	default:
		return fmt.Errorf("unknown rotation_strategy %q", s.RotationStrategy)
	}
	return nil
}

// SlskdTimeout returns the per-request timeout for daemon calls.
func (s *Settings) SlskdTimeout() time.Duration {
	return time.Duration(s.SlskdTimeoutSeconds * float64(time.Second))
}

// ProcessingStaleAge returns how old an orphaned processing file must
// be before cleanup removes it.
func (s *Settings) ProcessingStaleAge() time.Duration {
	return time.Duration(s.ProcessingStaleMinutes * float64(time.Minute))
}

// ToSearchConfig converts settings to a search configuration.
func (s *Settings) ToSearchConfig() acquire.SearchConfig {
	cfg := acquire.DefaultSearchConfig()
	cfg.PollInterval = time.Duration(s.SearchPollSeconds * float64(time.Second))
	cfg.MaxPolls = s.SearchMaxPolls
	cfg.RequestTimeout = s.SlskdTimeout()
	return cfg
}

// ToTransferConfig converts settings to a transfer monitor configuration.
func (s *Settings) ToTransferConfig() acquire.TransferConfig {
	cfg := acquire.DefaultTransferConfig()
	cfg.PollInterval = time.Duration(s.TransferPollSeconds * float64(time.Second))
	cfg.GracePeriod = time.Duration(s.TransferGraceSeconds * float64(time.Second))
	return cfg
}

// ToAcquireConfig converts settings to an orchestrator configuration.
func (s *Settings) ToAcquireConfig() acquire.Config {
	cfg := acquire.DefaultConfig()
	cfg.MaxAttempts = s.DownloadMaxRetries
	cfg.BaseRetryDelay = time.Duration(s.RetryCooldownSeconds * float64(time.Second))
	cfg.StuckThreshold = time.Duration(s.StuckThresholdMinutes * float64(time.Minute))
	cfg.DownloadTimeout = time.Duration(s.DownloadTimeoutMinutes * float64(time.Minute))
	cfg.BatchSize = s.MaxConcurrentDownloads
	cfg.BatchPause = time.Duration(s.BatchPauseSeconds * float64(time.Second))
	cfg.Thresholds = match.Thresholds{
		Primary:  s.PrimaryThreshold,
		Fallback: s.FallbackThreshold,
	}
	return cfg
}

// ToRotationConfig converts settings to a rotation engine configuration.
func (s *Settings) ToRotationConfig() library.RotationConfig {
	return library.RotationConfig{
		CurrentDir:       s.CurrentPath,
		ProcessingDir:    s.ProcessingPath,
		ArchiveDir:       s.ArchivePath,
		ArchiveEnabled:   s.ArchiveEnabled,
		ArchiveMaxTracks: s.ArchiveMaxTracks,
		Policy: library.Policy{
			MaxTracks: s.MaxTracks,
			MaxAge:    time.Duration(s.MaxAgeDays) * 24 * time.Hour,
			Strategy:  library.Strategy(s.RotationStrategy),
		},
	}
}

// PlaylistFormatValue maps the configured playlist format string to the
// audio package's format type.
func (s *Settings) PlaylistFormatValue() audio.PlaylistFormat {
	switch s.PlaylistFormat {
	case "pls":
		return audio.FormatPLS
	default:
		return audio.FormatM3U
	}
}
