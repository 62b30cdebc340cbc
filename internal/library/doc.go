// Package library manages the filesystem-backed collection of acquired
// tracks: the bounded current location, the processing hand-off buffer,
// and the optional archive.
//
// Inventory lists a location's audio files with their sidecar metadata.
// SelectForRotation is the pure policy deciding which files must leave
// the current collection. Engine applies that selection (move-to-archive
// or delete, plus archive quota eviction and stale-processing cleanup).
// Importer brings completed downloads into the collection.
package library
