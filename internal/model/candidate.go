package model

import (
	"path"
	"strings"
)

// CandidateFile is a file offered by a peer on the download backend in
// response to a search. Candidates are transient: they live for one
// acquisition attempt and are never persisted.
type CandidateFile struct {
	// Filename is the file path as reported by the owning peer. Soulseek
	// peers report Windows-style paths, so this usually contains
	// backslashes.
	Filename string

	// Username is the peer offering the file.
	Username string

	// Size is the file size in bytes. Zero means the peer did not report
	// a size.
	Size int64

	// BitRate is the audio bitrate in kbps. Zero means unknown.
	BitRate int
}

// BaseName returns the last path element of Filename, handling both
// forward slashes and the backslashes peers typically report.
func (c CandidateFile) BaseName() string {
	name := strings.ReplaceAll(c.Filename, `\`, "/")
	return path.Base(name)
}

// Ext returns the lowercased filename extension without the leading dot,
// e.g. "flac". Empty when the filename has no extension.
func (c CandidateFile) Ext() string {
	ext := path.Ext(c.BaseName())
	return strings.ToLower(strings.TrimPrefix(ext, "."))
}
