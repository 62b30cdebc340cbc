package acquire

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/rlafferty/freshtracks/internal/match"
	"github.com/rlafferty/freshtracks/internal/model"
)

// ProgressLevel indicates the severity/type of a progress message.
type ProgressLevel int

const (
	LevelInfo ProgressLevel = iota
	LevelVerbose
	LevelWarning
	LevelError
	LevelSuccess
)

// ProgressEvent represents an acquisition progress update.
type ProgressEvent struct {
	Message string
	Level   ProgressLevel
}

// Importer hands a completed download to the tagging/import collaborator.
// Import failures never fail the acquisition: a track can be downloaded
// without yet being imported.
type Importer interface {
	// Import processes the downloaded file at srcPath into the current
	// collection and returns the final path.
	Import(ctx context.Context, track model.WantedTrack, srcPath string) (string, error)
}

// Config bounds the orchestrator's retry state machine and batching.
type Config struct {
	// MaxAttempts is the per-track attempt budget.
	MaxAttempts int

	// BaseRetryDelay is multiplied by the attempt number for the
	// between-attempt backoff.
	BaseRetryDelay time.Duration

	// StuckThreshold is how long an Active record may age before it is
	// reclaimed instead of attached to.
	StuckThreshold time.Duration

	// AttachPollInterval is the delay between tracker polls while
	// attached to another caller's in-flight acquisition.
	AttachPollInterval time.Duration

	// DownloadTimeout is the wall-clock budget for one transfer.
	DownloadTimeout time.Duration

	// BatchSize is how many tracks acquire concurrently; the batch must
	// finish before the next one starts.
	BatchSize int

	// BatchPause is the pacing delay between batches.
	BatchPause time.Duration

	// Thresholds is the two-tier candidate acceptance policy.
	Thresholds match.Thresholds
}

// DefaultConfig returns the standard orchestrator bounds.
func DefaultConfig() Config {
	return Config{
		MaxAttempts:        3,
		BaseRetryDelay:     5 * time.Second,
		StuckThreshold:     10 * time.Minute,
		AttachPollInterval: 5 * time.Second,
		DownloadTimeout:    10 * time.Minute,
		BatchSize:          3,
		BatchPause:         2 * time.Second,
		Thresholds:         match.DefaultThresholds(),
	}
}

// Orchestrator composes the tracker, searcher and monitor into the
// retry-with-backoff acquisition contract exposed to the rest of the
// system. It is the sole writer of tracker state.
type Orchestrator struct {
	cfg      Config
	tracker  *Tracker
	searcher *Searcher
	monitor  *Monitor
	filter   *match.Filter

	// importer may be nil, in which case completed downloads are left
	// where the backend wrote them.
	importer Importer

	// downloadsDir is where the backend writes completed files.
	downloadsDir string

	clock Clock
	log   zerolog.Logger

	onProgress  func(ProgressEvent)
	onTrackDone func(model.WantedTrack, bool)
	mu          sync.Mutex
}

// NewOrchestrator wires the acquisition pipeline together. onProgress may
// be nil.
func NewOrchestrator(
	cfg Config,
	tracker *Tracker,
	searcher *Searcher,
	monitor *Monitor,
	filter *match.Filter,
	importer Importer,
	downloadsDir string,
	clock Clock,
	log zerolog.Logger,
	onProgress func(ProgressEvent),
) *Orchestrator {
	if clock == nil {
		clock = SystemClock()
	}
	return &Orchestrator{
		cfg:          cfg,
		tracker:      tracker,
		searcher:     searcher,
		monitor:      monitor,
		filter:       filter,
		importer:     importer,
		downloadsDir: downloadsDir,
		clock:        clock,
		log:          log,
		onProgress:   onProgress,
	}
}

// Tracker exposes the orchestrator's state store for read-only callers.
func (o *Orchestrator) Tracker() *Tracker { return o.tracker }

// OnTrackDone registers a callback fired once per track when AcquireAll
// settles it. Set before starting a run; callbacks may arrive from
// multiple goroutines.
func (o *Orchestrator) OnTrackDone(fn func(track model.WantedTrack, acquired bool)) {
	o.onTrackDone = fn
}

// Acquire runs the full acquisition state machine for one track and
// reports whether the track ended up downloaded.
//
// Completed and Failed tracker states short-circuit immediately. An
// Active record that is not stale is attached to rather than duplicated;
// a stale one is reclaimed. Every sub-step failure counts against the
// attempt budget; only exhausting the budget is terminal, and terminal
// failure is cached so the track is never retried within this process.
func (o *Orchestrator) Acquire(ctx context.Context, track model.WantedTrack) bool {
	key := track.Key()

	switch o.tracker.Lookup(key) {
	case StateCompleted:
		o.log.Debug().Str("track", track.String()).Msg("already acquired")
		return true
	case StateFailed:
		o.log.Debug().Str("track", track.String()).Msg("previously failed, skipping")
		return false
	case StateActive:
		if age, ok := o.tracker.ActiveAge(key); ok && age < o.cfg.StuckThreshold {
			return o.attach(ctx, track)
		}
		o.progress(ProgressEvent{
			Message: fmt.Sprintf("Reclaiming stuck acquisition: %s", track),
			Level:   LevelWarning,
		})
		o.tracker.Release(key)
	}

	if err := o.tracker.MarkActive(key); err != nil {
		return o.attach(ctx, track)
	}

	for attempt := 1; attempt <= o.cfg.MaxAttempts; attempt++ {
		if attempt > 1 {
			backoff := time.Duration(attempt-1) * o.cfg.BaseRetryDelay
			if err := o.clock.Sleep(ctx, backoff); err != nil {
				o.tracker.Release(key)
				return false
			}
		}

		o.tracker.AddAttempt(key)
		if o.attempt(ctx, track, attempt) {
			o.tracker.MarkCompleted(key)
			o.progress(ProgressEvent{
				Message: fmt.Sprintf("Acquired: %s", track),
				Level:   LevelSuccess,
			})
			return true
		}

		if ctx.Err() != nil {
			o.tracker.Release(key)
			return false
		}
	}

	o.tracker.MarkFailed(key)
	o.progress(ProgressEvent{
		Message: fmt.Sprintf("Gave up after %d attempts: %s", o.cfg.MaxAttempts, track),
		Level:   LevelError,
	})
	return false
}

// attempt runs one pass of the search → select → transfer chain.
func (o *Orchestrator) attempt(ctx context.Context, track model.WantedTrack, n int) bool {
	o.progress(ProgressEvent{
		Message: fmt.Sprintf("Attempt %d/%d: %s", n, o.cfg.MaxAttempts, track),
		Level:   LevelVerbose,
	})

	candidates := o.searcher.Search(ctx, track)
	if len(candidates) == 0 {
		o.progress(ProgressEvent{
			Message: fmt.Sprintf("No search results: %s", track),
			Level:   LevelVerbose,
		})
		return false
	}

	best, ok := match.Best(candidates, track, o.filter, o.cfg.Thresholds)
	if !ok {
		o.progress(ProgressEvent{
			Message: fmt.Sprintf("No acceptable candidate among %d results: %s", len(candidates), track),
			Level:   LevelVerbose,
		})
		return false
	}

	o.progress(ProgressEvent{
		Message: fmt.Sprintf("Selected %s from %s (score %.2f)", best.Candidate.BaseName(), best.Candidate.Username, best.Score),
		Level:   LevelVerbose,
	})

	if !o.monitor.Initiate(ctx, best.Candidate) {
		return false
	}
	if !o.monitor.AwaitCompletion(ctx, best.Candidate, o.cfg.DownloadTimeout) {
		return false
	}

	o.handOff(ctx, track, best.Candidate)
	return true
}

// handOff passes the downloaded file to the import collaborator. Import
// failures are warnings: the download itself already succeeded.
func (o *Orchestrator) handOff(ctx context.Context, track model.WantedTrack, c model.CandidateFile) {
	if o.importer == nil {
		return
	}

	src := filepath.Join(o.downloadsDir, c.BaseName())
	dest, err := o.importer.Import(ctx, track, src)
	if err != nil {
		o.log.Warn().Err(err).Str("track", track.String()).Msg("import failed")
		o.progress(ProgressEvent{
			Message: fmt.Sprintf("Import failed for %s: %v", track, err),
			Level:   LevelWarning,
		})
		return
	}

	o.progress(ProgressEvent{
		Message: fmt.Sprintf("Imported %s", filepath.Base(dest)),
		Level:   LevelVerbose,
	})
}

// attach waits for another in-flight acquisition of the same track to
// reach a terminal state instead of starting a duplicate. If the record
// goes stale while waiting, it is reclaimed and acquisition restarts.
func (o *Orchestrator) attach(ctx context.Context, track model.WantedTrack) bool {
	key := track.Key()
	o.log.Debug().Str("track", track.String()).Msg("attaching to in-flight acquisition")

	for {
		if err := o.clock.Sleep(ctx, o.cfg.AttachPollInterval); err != nil {
			return false
		}

		switch o.tracker.Lookup(key) {
		case StateCompleted:
			return true
		case StateFailed:
			return false
		case StateUnknown:
			// The owner released the record without finishing; take over.
			return o.Acquire(ctx, track)
		case StateActive:
			if age, ok := o.tracker.ActiveAge(key); ok && age >= o.cfg.StuckThreshold {
				o.tracker.Release(key)
				return o.Acquire(ctx, track)
			}
		}
	}
}

// Summary is the outcome of a batch acquisition run.
type Summary struct {
	Acquired []model.WantedTrack
	Failed   []model.WantedTrack
}

// AcquireAll processes tracks in fixed-size batches. Within a batch all
// acquisitions progress concurrently; the batch must fully settle before
// the next one starts, bounding outstanding backend requests. A pacing
// delay separates batches.
func (o *Orchestrator) AcquireAll(ctx context.Context, tracks []model.WantedTrack) Summary {
	var (
		summary Summary
		mu      sync.Mutex
	)

	size := o.cfg.BatchSize
	if size <= 0 {
		size = 1
	}

	for start := 0; start < len(tracks); start += size {
		end := start + size
		if end > len(tracks) {
			end = len(tracks)
		}

		g, gctx := errgroup.WithContext(ctx)
		for _, track := range tracks[start:end] {
			track := track
			g.Go(func() error {
				ok := o.Acquire(gctx, track)
				mu.Lock()
				if ok {
					summary.Acquired = append(summary.Acquired, track)
				} else {
					summary.Failed = append(summary.Failed, track)
				}
				mu.Unlock()
				if o.onTrackDone != nil {
					o.onTrackDone(track, ok)
				}
				return nil
			})
		}
		g.Wait()

		if ctx.Err() != nil {
			break
		}
		if end < len(tracks) && o.cfg.BatchPause > 0 {
			if err := o.clock.Sleep(ctx, o.cfg.BatchPause); err != nil {
				break
			}
		}
	}

	return summary
}

func (o *Orchestrator) progress(event ProgressEvent) {
	if o.onProgress != nil {
		o.mu.Lock()
		o.onProgress(event)
		o.mu.Unlock()
	}
}
