package model

import (
	"regexp"
	"strings"
	"time"
)

// WantedTrack identifies a piece of music the system should acquire.
//
// It is an immutable input to the acquisition pipeline. Two wanted tracks
// are considered the same track when their Key() values match, regardless
// of album or duration.
//
// Example:
//
//	track := model.WantedTrack{Artist: "Boards of Canada", Title: "Roygbiv"}
//	key := track.Key() // "boards of canada|roygbiv"
type WantedTrack struct {
	// Artist is the performing artist. Required.
	Artist string

	// Title is the track title. Required.
	Title string

	// Album is the album the track appears on, when known.
	Album string

	// Duration is the track length, when known. Zero means unknown.
	Duration time.Duration
}

// Key returns the normalized identity used for deduplication.
//
// The key is "artist|title" with both parts lowercased, punctuation
// stripped and whitespace collapsed, so trivially different spellings of
// the same track collapse to one identity.
func (t WantedTrack) Key() string {
	return Normalize(t.Artist) + "|" + Normalize(t.Title)
}

// Query returns the search text submitted to the download backend.
func (t WantedTrack) Query() string {
	return strings.TrimSpace(t.Artist + " " + t.Title)
}

func (t WantedTrack) String() string {
	return t.Artist + " - " + t.Title
}

var (
	nonWordChars = regexp.MustCompile(`[^\p{L}\p{N}]+`)
	multiSpace   = regexp.MustCompile(`\s+`)
)

// Normalize lowercases s, replaces punctuation with spaces and collapses
// runs of whitespace into single spaces. It is the shared normalization
// for track keys and for filename matching.
func Normalize(s string) string {
	s = strings.ToLower(s)
	s = nonWordChars.ReplaceAllString(s, " ")
	s = multiSpace.ReplaceAllString(s, " ")
	return strings.TrimSpace(s)
}
