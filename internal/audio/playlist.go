package audio

import (
	"fmt"
	"strings"

	"github.com/rlafferty/freshtracks/internal/model"
)

// PlaylistFormat represents supported playlist file formats.
type PlaylistFormat int

const (
	// FormatM3U creates .m3u files (most compatible). Can be extended
	// with EXTINF lines carrying artist/title info from sidecars.
	FormatM3U PlaylistFormat = iota

	// FormatPLS creates .pls files (Winamp/SHOUTcast format).
	FormatPLS
)

// Extension returns the filename extension for the format.
func (f PlaylistFormat) Extension() string {
	if f == FormatPLS {
		return ".pls"
	}
	return ".m3u"
}

// PlaylistCreator generates a playlist of the current collection so media
// players can pick up the rotating set as one entry.
//
// File paths in the output are relative (just the filename), assuming the
// playlist sits in the collection directory itself.
type PlaylistCreator struct {
	format   PlaylistFormat
	extended bool // for M3U: include #EXTINF lines
}

// NewPlaylistCreator creates a PlaylistCreator.
func NewPlaylistCreator(format PlaylistFormat, extended bool) *PlaylistCreator {
	return &PlaylistCreator{format: format, extended: extended}
}

// CreatePlaylist renders the playlist content for the given collection
// files, ready to be written to a file.
func (p *PlaylistCreator) CreatePlaylist(files []model.CollectionFile) string {
	if p.format == FormatPLS {
		return p.createPLS(files)
	}
	return p.createM3U(files)
}

func (p *PlaylistCreator) createM3U(files []model.CollectionFile) string {
	var sb strings.Builder

	if p.extended {
		sb.WriteString("#EXTM3U\n")
	}

	for _, f := range files {
		if p.extended {
			sb.WriteString(fmt.Sprintf("#EXTINF:-1,%s\n", displayTitle(f)))
		}
		sb.WriteString(f.Name)
		sb.WriteString("\n")
	}

	return sb.String()
}

func (p *PlaylistCreator) createPLS(files []model.CollectionFile) string {
	var sb strings.Builder

	sb.WriteString("[playlist]\n")
	for i, f := range files {
		n := i + 1
		sb.WriteString(fmt.Sprintf("File%d=%s\n", n, f.Name))
		sb.WriteString(fmt.Sprintf("Title%d=%s\n", n, displayTitle(f)))
		sb.WriteString(fmt.Sprintf("Length%d=-1\n", n))
	}
	sb.WriteString(fmt.Sprintf("NumberOfEntries=%d\n", len(files)))
	sb.WriteString("Version=2\n")

	return sb.String()
}

// displayTitle prefers the sidecar's artist/title over the raw filename.
func displayTitle(f model.CollectionFile) string {
	if f.Sidecar != nil && f.Sidecar.Artist != "" && f.Sidecar.Title != "" {
		return f.Sidecar.Artist + " - " + f.Sidecar.Title
	}
	name := f.Name
	if i := strings.LastIndex(name, "."); i > 0 {
		name = name[:i]
	}
	return name
}
