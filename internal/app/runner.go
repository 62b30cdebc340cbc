package app

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"
	"sync/atomic"

	"github.com/rs/zerolog"

	"github.com/rlafferty/freshtracks/internal/acquire"
	"github.com/rlafferty/freshtracks/internal/audio"
	"github.com/rlafferty/freshtracks/internal/config"
	"github.com/rlafferty/freshtracks/internal/lastfm"
	"github.com/rlafferty/freshtracks/internal/library"
	"github.com/rlafferty/freshtracks/internal/match"
	"github.com/rlafferty/freshtracks/internal/model"
	"github.com/rlafferty/freshtracks/internal/slskd"
)

// Runner wires the full pipeline from settings and exposes the
// operations the CLI and TUI drive: fetch the wanted list, acquire it,
// rotate the collection, and regenerate the playlist.
type Runner struct {
	settings *config.Settings
	log      zerolog.Logger

	orchestrator *acquire.Orchestrator
	engine       *library.Engine
	recommender  *lastfm.Client

	doneTracks  atomic.Int32
	totalTracks atomic.Int32
}

// NewRunner validates settings and builds the pipeline. onProgress may
// be nil; when set it receives acquisition progress events.
func NewRunner(settings *config.Settings, log zerolog.Logger, onProgress func(acquire.ProgressEvent)) (*Runner, error) {
	if err := settings.Validate(); err != nil {
		return nil, err
	}

	client := slskd.NewClient(settings.SlskdURL, settings.SlskdAPIKey, settings.SlskdTimeout())
	clock := acquire.SystemClock()

	searcher := acquire.NewSearcher(client, settings.ToSearchConfig(), clock, log)
	monitor := acquire.NewMonitor(client, settings.ToTransferConfig(), clock, log)
	tracker := acquire.NewTracker(clock)
	filter := match.NewFilter(settings.MinBitRate, settings.MinFileSizeBytes)

	var tagger *audio.Tagger
	if settings.ModifyTags {
		tagger = audio.NewTagger()
	}
	importer := library.NewImporter(library.ImportConfig{
		ProcessingDir: settings.ProcessingPath,
		CurrentDir:    settings.CurrentPath,
		Source:        "freshtracks",
	}, tagger, log)

	orchestrator := acquire.NewOrchestrator(
		settings.ToAcquireConfig(),
		tracker,
		searcher,
		monitor,
		filter,
		importer,
		settings.DownloadsPath,
		clock,
		log,
		onProgress,
	)

	engine, err := library.NewEngine(settings.ToRotationConfig(), library.NewInventory(log), log)
	if err != nil {
		return nil, fmt.Errorf("initializing collection: %w", err)
	}

	r := &Runner{
		settings:     settings,
		log:          log,
		orchestrator: orchestrator,
		engine:       engine,
	}
	if settings.LastfmAPIKey != "" && settings.LastfmUser != "" {
		r.recommender = lastfm.NewClient("", settings.LastfmAPIKey, settings.SlskdTimeout())
	}

	orchestrator.OnTrackDone(func(model.WantedTrack, bool) {
		r.doneTracks.Add(1)
	})
	return r, nil
}

// FetchTracks pulls the wanted list from the recommendation source.
func (r *Runner) FetchTracks(ctx context.Context) ([]model.WantedTrack, error) {
	if r.recommender == nil {
		return nil, fmt.Errorf("no recommendation source configured (set FRESHTRACKS_LASTFM_API_KEY and FRESHTRACKS_LASTFM_USER, or pass --tracks-file)")
	}
	return r.recommender.TopTracks(ctx, r.settings.LastfmUser, r.settings.TrackLimit)
}

// LoadTracksFile reads a wanted list from a text file, one
// "Artist - Title" per line. Blank lines and lines starting with #
// are skipped.
func LoadTracksFile(path string) ([]model.WantedTrack, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var tracks []model.WantedTrack
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		artist, title, ok := strings.Cut(line, " - ")
		if !ok {
			return nil, fmt.Errorf("malformed line %q: want \"Artist - Title\"", line)
		}
		tracks = append(tracks, model.WantedTrack{
			Artist: strings.TrimSpace(artist),
			Title:  strings.TrimSpace(title),
		})
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return tracks, nil
}

// AcquireAll downloads the given tracks and returns the outcome.
func (r *Runner) AcquireAll(ctx context.Context, tracks []model.WantedTrack) acquire.Summary {
	r.doneTracks.Store(0)
	r.totalTracks.Store(int32(len(tracks)))
	return r.orchestrator.AcquireAll(ctx, tracks)
}

// Progress returns how many of the current run's tracks have settled.
func (r *Runner) Progress() (done, total int) {
	return int(r.doneTracks.Load()), int(r.totalTracks.Load())
}

// Rotate applies the collection policy: age-expired and over-cap files
// leave the current collection, and the archive cap is enforced.
func (r *Runner) Rotate() (library.Result, error) {
	return r.engine.Rotate()
}

// CleanupProcessing removes files stranded in the processing directory
// by interrupted runs.
func (r *Runner) CleanupProcessing() int {
	return r.engine.CleanupStaleProcessingFiles(r.settings.ProcessingStaleAge())
}

// WritePlaylist regenerates the collection playlist if enabled.
func (r *Runner) WritePlaylist() error {
	if !r.settings.CreatePlaylist {
		return nil
	}
	creator := audio.NewPlaylistCreator(r.settings.PlaylistFormatValue(), r.settings.M3UExtended)
	return r.engine.WritePlaylist(creator, r.settings.PlaylistName, r.settings.PlaylistFormatValue())
}
