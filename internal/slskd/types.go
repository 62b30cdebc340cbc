package slskd

import "strings"

// Search is the backend's view of a submitted search.
type Search struct {
	ID            string `json:"id"`
	State         string `json:"state"`
	IsComplete    bool   `json:"isComplete"`
	FileCount     int    `json:"fileCount"`
	ResponseCount int    `json:"responseCount"`
}

// SearchRequest is the body for submitting a new search.
type SearchRequest struct {
	SearchText string `json:"searchText"`
	// SearchTimeout is a hint to the backend, in milliseconds.
	SearchTimeout int `json:"searchTimeout,omitempty"`
}

// SearchResponse is one peer's answer to a search.
type SearchResponse struct {
	Username          string `json:"username"`
	HasFreeUploadSlot bool   `json:"hasFreeUploadSlot"`
	QueueLength       int    `json:"queueLength"`
	Files             []File `json:"files"`
}

// File is a single file offered by a peer.
type File struct {
	Filename string `json:"filename"`
	Size     int64  `json:"size"`
	BitRate  int    `json:"bitRate"`
	// Length is the track duration in seconds, when reported.
	Length int `json:"length"`
}

// QueueRequest names one file to enqueue for download from a peer.
type QueueRequest struct {
	Filename string `json:"filename"`
	Size     int64  `json:"size"`
}

// UserDownloads groups the download queue entries for one peer.
type UserDownloads struct {
	Username    string      `json:"username"`
	Directories []Directory `json:"directories"`
}

// Directory is a group of queued files under one remote directory.
type Directory struct {
	Directory string     `json:"directory"`
	Files     []Transfer `json:"files"`
}

// Transfer is one queued or running download.
//
// State is a compound string following slskd conventions, e.g.
// "Queued, Remotely", "InProgress", "Completed, Succeeded",
// "Completed, Errored".
type Transfer struct {
	Filename         string  `json:"filename"`
	State            string  `json:"state"`
	Size             int64   `json:"size"`
	BytesTransferred int64   `json:"bytesTransferred"`
	PercentComplete  float64 `json:"percentComplete"`
}

// Terminal reports whether the transfer has reached a final state.
func (t Transfer) Terminal() bool {
	return strings.HasPrefix(t.State, "Completed")
}

// Succeeded reports whether the transfer finished successfully.
func (t Transfer) Succeeded() bool {
	return t.State == "Completed, Succeeded"
}
