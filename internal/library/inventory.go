package library

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog"

	"github.com/rlafferty/freshtracks/internal/model"
)

// Inventory lists the audio files in a collection location and reads
// their sidecar metadata.
type Inventory struct {
	log zerolog.Logger
}

// NewInventory creates an Inventory.
func NewInventory(log zerolog.Logger) *Inventory {
	return &Inventory{log: log}
}

// List returns the audio files directly under dir, each with its sidecar
// metadata when a readable one exists. Sidecar files themselves and
// non-audio files are skipped. A file that cannot be stat'ed is logged
// and skipped so one bad entry does not abort the listing.
func (inv *Inventory) List(dir string) ([]model.CollectionFile, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}

	var files []model.CollectionFile
	for _, entry := range entries {
		if entry.IsDir() || !model.IsAudioFile(entry.Name()) {
			continue
		}

		info, err := entry.Info()
		if err != nil {
			inv.log.Warn().Err(err).Str("file", entry.Name()).Msg("skipping unreadable entry")
			continue
		}

		path := filepath.Join(dir, entry.Name())
		ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(entry.Name()), "."))

		files = append(files, model.CollectionFile{
			Path:       path,
			Name:       entry.Name(),
			Size:       info.Size(),
			ModifiedAt: info.ModTime(),
			Format:     ext,
			Sidecar:    inv.readSidecar(path),
		})
	}

	return files, nil
}

// readSidecar loads the sidecar next to audioPath, returning nil when it
// is absent or unreadable. A corrupt sidecar is logged but does not
// invalidate the audio file.
func (inv *Inventory) readSidecar(audioPath string) *model.Sidecar {
	data, err := os.ReadFile(model.SidecarPath(audioPath))
	if err != nil {
		return nil
	}

	var sc model.Sidecar
	if err := json.Unmarshal(data, &sc); err != nil {
		inv.log.Warn().Err(err).Str("file", audioPath).Msg("corrupt sidecar metadata")
		return nil
	}
	return &sc
}

// WriteSidecar stores sc next to audioPath.
func WriteSidecar(audioPath string, sc model.Sidecar) error {
	data, err := json.MarshalIndent(sc, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(model.SidecarPath(audioPath), data, 0644)
}
