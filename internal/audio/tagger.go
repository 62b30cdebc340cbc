package audio

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/bogem/id3v2"

	"github.com/rlafferty/freshtracks/internal/model"
)

// Tagger writes ID3 tags to acquired MP3 files.
//
// Peer-shared files routinely carry junk or missing tags, so the tagger
// stamps the artist, title and (when known) album from the wanted track
// the file was acquired for, plus a comment naming the source.
//
// Only MP3 files are tagged; SaveTags is a no-op for other formats, whose
// provenance lives solely in the sidecar metadata.
type Tagger struct {
	// ClearComments drops any existing comment frames before writing
	// the source comment.
	ClearComments bool
}

// NewTagger creates a Tagger with default behavior.
func NewTagger() *Tagger {
	return &Tagger{ClearComments: true}
}

// SaveTags stamps track metadata onto the MP3 file at path. Files without
// an existing tag get a fresh one.
func (t *Tagger) SaveTags(path string, track model.WantedTrack, source string) error {
	if !strings.EqualFold(strings.TrimPrefix(filepath.Ext(path), "."), "mp3") {
		return nil
	}

	tag, err := id3v2.Open(path, id3v2.Options{Parse: true})
	if err != nil {
		if os.IsNotExist(err) {
			tag = id3v2.NewEmptyTag()
		} else {
			return err
		}
	}
	defer tag.Close()

	tag.SetArtist(track.Artist)
	tag.SetTitle(track.Title)
	if track.Album != "" {
		tag.SetAlbum(track.Album)
	}

	if t.ClearComments {
		tag.DeleteFrames(tag.CommonID("Comments"))
	}
	if source != "" {
		tag.AddCommentFrame(id3v2.CommentFrame{
			Encoding:    id3v2.EncodingUTF8,
			Language:    "eng",
			Description: "source",
			Text:        source,
		})
	}

	return tag.Save()
}
