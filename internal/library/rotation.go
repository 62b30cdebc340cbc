package library

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/rs/zerolog"

	"github.com/rlafferty/freshtracks/internal/audio"
	"github.com/rlafferty/freshtracks/internal/fsutil"
	"github.com/rlafferty/freshtracks/internal/model"
)

// RotationConfig describes the collection locations and bounds.
type RotationConfig struct {
	// CurrentDir holds the bounded current collection.
	CurrentDir string

	// ProcessingDir is the hand-off buffer for imports in flight.
	ProcessingDir string

	// ArchiveDir receives rotated files when archiving is enabled.
	ArchiveDir string

	// ArchiveEnabled switches between archiving and deleting rotated
	// files.
	ArchiveEnabled bool

	// ArchiveMaxTracks caps the archive's file count. Zero means
	// uncapped.
	ArchiveMaxTracks int

	// Policy bounds the current collection.
	Policy Policy
}

// Result summarizes one rotation pass.
type Result struct {
	// Rotated counts files moved to the archive.
	Rotated int

	// Deleted counts files deleted from the current collection (archive
	// disabled).
	Deleted int

	// Evicted counts files deleted from the archive to honor its cap.
	Evicted int
}

// Engine performs rotation of the current collection and quota eviction
// of the archive.
//
// Individual file operation failures are logged and skipped so one bad
// file never aborts a rotation pass; only listing failures surface as
// errors.
type Engine struct {
	cfg RotationConfig
	inv *Inventory
	now func() time.Time
	log zerolog.Logger
}

// NewEngine creates an Engine and its directories. Directory creation
// failure is fatal, unlike everything else in rotation.
func NewEngine(cfg RotationConfig, inv *Inventory, log zerolog.Logger) (*Engine, error) {
	dirs := []string{cfg.CurrentDir, cfg.ProcessingDir}
	if cfg.ArchiveEnabled {
		dirs = append(dirs, cfg.ArchiveDir)
	}
	for _, dir := range dirs {
		if err := fsutil.EnsureDir(dir); err != nil {
			return nil, fmt.Errorf("creating %s: %w", dir, err)
		}
	}

	return &Engine{cfg: cfg, inv: inv, now: time.Now, log: log}, nil
}

// Rotate brings the current collection within policy: selected files are
// moved to the archive (with their sidecars) or deleted outright when
// archiving is disabled, then the archive's own quota is enforced.
func (e *Engine) Rotate() (Result, error) {
	files, err := e.inv.List(e.cfg.CurrentDir)
	if err != nil {
		return Result{}, fmt.Errorf("listing current collection: %w", err)
	}

	selected := SelectForRotation(files, e.cfg.Policy, e.now())
	var result Result

	for _, f := range selected {
		if e.cfg.ArchiveEnabled {
			if err := e.archiveFile(f); err != nil {
				e.log.Warn().Err(err).Str("file", f.Name).Msg("archiving failed, skipping")
				continue
			}
			result.Rotated++
		} else {
			if err := removeWithSidecar(f.Path); err != nil {
				e.log.Warn().Err(err).Str("file", f.Name).Msg("deletion failed, skipping")
				continue
			}
			result.Deleted++
		}
	}

	if e.cfg.ArchiveEnabled && e.cfg.ArchiveMaxTracks > 0 {
		result.Evicted = e.evictArchiveOverflow()
	}

	e.log.Info().
		Int("rotated", result.Rotated).
		Int("deleted", result.Deleted).
		Int("evicted", result.Evicted).
		Msg("rotation pass complete")

	return result, nil
}

// archiveFile moves a collection file and its sidecar (if present) into
// the archive location.
func (e *Engine) archiveFile(f model.CollectionFile) error {
	dst := filepath.Join(e.cfg.ArchiveDir, f.Name)
	if err := fsutil.MoveFile(f.Path, dst); err != nil {
		return err
	}

	sidecar := model.SidecarPath(f.Path)
	if _, err := os.Stat(sidecar); err == nil {
		if err := fsutil.MoveFile(sidecar, model.SidecarPath(dst)); err != nil {
			e.log.Warn().Err(err).Str("file", f.Name).Msg("sidecar did not follow its file to archive")
		}
	}
	return nil
}

// evictArchiveOverflow deletes the oldest archive files beyond the cap.
func (e *Engine) evictArchiveOverflow() int {
	files, err := e.inv.List(e.cfg.ArchiveDir)
	if err != nil {
		e.log.Warn().Err(err).Msg("listing archive failed, skipping eviction")
		return 0
	}
	if len(files) <= e.cfg.ArchiveMaxTracks {
		return 0
	}

	sort.Slice(files, func(i, j int) bool {
		return files[i].ModifiedAt.Before(files[j].ModifiedAt)
	})

	evicted := 0
	for _, f := range files[:len(files)-e.cfg.ArchiveMaxTracks] {
		if err := removeWithSidecar(f.Path); err != nil {
			e.log.Warn().Err(err).Str("file", f.Name).Msg("archive eviction failed, skipping")
			continue
		}
		evicted++
	}
	return evicted
}

// CleanupStaleProcessingFiles deletes files that have sat in the
// processing location longer than maxAge, treating them as abandoned
// partial imports. Returns how many were removed.
func (e *Engine) CleanupStaleProcessingFiles(maxAge time.Duration) int {
	entries, err := os.ReadDir(e.cfg.ProcessingDir)
	if err != nil {
		e.log.Warn().Err(err).Msg("listing processing location failed")
		return 0
	}

	cutoff := e.now().Add(-maxAge)
	removed := 0
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		info, err := entry.Info()
		if err != nil || !info.ModTime().Before(cutoff) {
			continue
		}

		path := filepath.Join(e.cfg.ProcessingDir, entry.Name())
		if err := os.Remove(path); err != nil {
			e.log.Warn().Err(err).Str("file", entry.Name()).Msg("stale file removal failed")
			continue
		}
		e.log.Info().Str("file", entry.Name()).Msg("removed stale processing file")
		removed++
	}
	return removed
}

// WritePlaylist renders the current collection through the creator and
// writes it as name + the format's extension into the current location.
func (e *Engine) WritePlaylist(creator *audio.PlaylistCreator, name string, format audio.PlaylistFormat) error {
	files, err := e.inv.List(e.cfg.CurrentDir)
	if err != nil {
		return fmt.Errorf("listing current collection: %w", err)
	}

	sort.Slice(files, func(i, j int) bool { return files[i].Name < files[j].Name })

	content := creator.CreatePlaylist(files)
	path := filepath.Join(e.cfg.CurrentDir, name+format.Extension())
	return os.WriteFile(path, []byte(content), 0644)
}

// removeWithSidecar deletes an audio file and, when present, its sidecar.
// Sidecar deletion always accompanies file deletion so no orphaned
// metadata is left behind.
func removeWithSidecar(path string) error {
	if err := os.Remove(path); err != nil {
		return err
	}
	sidecar := model.SidecarPath(path)
	if err := os.Remove(sidecar); err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}
