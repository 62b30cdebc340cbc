package model

import (
	"path/filepath"
	"strings"
	"time"
)

// SidecarSuffix is appended to an audio file's name (extension stripped)
// to form its sidecar metadata filename.
const SidecarSuffix = ".metadata.json"

// AudioExtensions is the set of filename extensions (without dot,
// lowercase) the system treats as audio files.
var AudioExtensions = map[string]bool{
	"mp3":  true,
	"flac": true,
	"ogg":  true,
	"opus": true,
	"m4a":  true,
	"aac":  true,
	"wav":  true,
	"ape":  true,
	"wma":  true,
	"aiff": true,
}

// IsAudioFile reports whether name has a recognized audio extension.
func IsAudioFile(name string) bool {
	ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(name), "."))
	return AudioExtensions[ext]
}

// Sidecar is the provenance record stored next to a collection file as
// <name-without-extension>.metadata.json.
type Sidecar struct {
	Artist  string    `json:"artist"`
	Title   string    `json:"title"`
	Album   string    `json:"album,omitempty"`
	URL     string    `json:"url,omitempty"`
	AddedAt time.Time `json:"added_at"`
	Source  string    `json:"source"`
}

// CollectionFile is a physical audio file in the current or archive
// location, plus its sidecar metadata when one exists.
type CollectionFile struct {
	// Path is the absolute path of the audio file.
	Path string

	// Name is the base filename.
	Name string

	// Size is the file size in bytes.
	Size int64

	// ModifiedAt is the file modification time, used as the file's age
	// for rotation decisions.
	ModifiedAt time.Time

	// Format is the lowercased extension without dot, e.g. "mp3".
	Format string

	// Sidecar is the adjacent metadata record, nil when absent.
	Sidecar *Sidecar
}

// SidecarPath returns the sidecar path for an audio file path: the
// extension is stripped and SidecarSuffix appended.
func SidecarPath(audioPath string) string {
	ext := filepath.Ext(audioPath)
	return strings.TrimSuffix(audioPath, ext) + SidecarSuffix
}
