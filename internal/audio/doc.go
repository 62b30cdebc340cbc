// Package audio handles metadata and playlist output for acquired files.
//
// # Tagger
//
// Tagger stamps ID3 tags (artist, title, album, source comment) onto
// acquired MP3s, since peer-shared files rarely carry trustworthy tags:
//
//	tagger := audio.NewTagger()
//	err := tagger.SaveTags(path, track, "freshtracks")
//
// # PlaylistCreator
//
// PlaylistCreator renders the current collection as an M3U or PLS
// playlist so players can follow the rotating set:
//
//	creator := audio.NewPlaylistCreator(audio.FormatM3U, true)
//	content := creator.CreatePlaylist(files)
package audio
