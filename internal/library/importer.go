package library

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/rs/zerolog"

	"github.com/rlafferty/freshtracks/internal/audio"
	"github.com/rlafferty/freshtracks/internal/fsutil"
	"github.com/rlafferty/freshtracks/internal/model"
)

// ImportConfig describes where imports flow.
type ImportConfig struct {
	// ProcessingDir is the hand-off buffer between the download
	// location and the current collection, so the rotation engine and
	// the import pipeline never race on the same file.
	ProcessingDir string

	// CurrentDir is the bounded current collection.
	CurrentDir string

	// Source is recorded in sidecars and tag comments, e.g.
	// "freshtracks".
	Source string
}

// Importer moves a completed download through the processing buffer into
// the current collection: the file is renamed to "Artist - Title.ext",
// tagged (MP3 only), moved into place and given a sidecar.
type Importer struct {
	cfg    ImportConfig
	tagger *audio.Tagger
	now    func() time.Time
	log    zerolog.Logger
}

// NewImporter creates an Importer.
func NewImporter(cfg ImportConfig, tagger *audio.Tagger, log zerolog.Logger) *Importer {
	return &Importer{cfg: cfg, tagger: tagger, now: time.Now, log: log}
}

// Import processes the downloaded file at srcPath into the current
// collection and returns its final path. Tagging failures are logged and
// tolerated; move failures are returned so the caller can report the
// import as incomplete (the download itself already succeeded).
func (im *Importer) Import(ctx context.Context, track model.WantedTrack, srcPath string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	name := fsutil.SanitizeFileName(fmt.Sprintf("%s - %s%s", track.Artist, track.Title, filepath.Ext(srcPath)))
	staging := filepath.Join(im.cfg.ProcessingDir, name)

	if err := fsutil.MoveFile(srcPath, staging); err != nil {
		return "", fmt.Errorf("moving %s into processing: %w", filepath.Base(srcPath), err)
	}

	if im.tagger != nil {
		if err := im.tagger.SaveTags(staging, track, im.cfg.Source); err != nil {
			im.log.Warn().Err(err).Str("file", name).Msg("tagging failed")
		}
	}

	final := filepath.Join(im.cfg.CurrentDir, name)
	if err := fsutil.MoveFile(staging, final); err != nil {
		return "", fmt.Errorf("promoting %s to current: %w", name, err)
	}

	sc := model.Sidecar{
		Artist:  track.Artist,
		Title:   track.Title,
		Album:   track.Album,
		AddedAt: im.now(),
		Source:  im.cfg.Source,
	}
	if err := WriteSidecar(final, sc); err != nil {
		im.log.Warn().Err(err).Str("file", name).Msg("writing sidecar failed")
	}

	return final, nil
}
