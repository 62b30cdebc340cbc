// Package model defines the core data structures shared across the
// freshtracks acquisition and rotation pipelines.
//
// # WantedTrack
//
// WantedTrack identifies a track to acquire. Its Key() is the normalized
// deduplication identity used by the download tracker:
//
//	track := model.WantedTrack{Artist: "Foo", Title: "Bar"}
//	track.Key() // "foo|bar"
//
// # CandidateFile
//
// CandidateFile is a file offered by a peer in response to a search. It
// lives only for the duration of one acquisition attempt.
//
// # CollectionFile and Sidecar
//
// CollectionFile represents an audio file in the current or archive
// location. Provenance is stored in an adjacent sidecar file:
//
//	model.SidecarPath("/music/current/foo - bar.mp3")
//	// "/music/current/foo - bar.metadata.json"
package model
