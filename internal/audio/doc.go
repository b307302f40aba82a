// Package audio provides audio file services: track-number tag writing,
// tag reading for verification, and playlist generation.
//
// # Track Numbers
//
// Use the Tagger to rewrite the track-number tag of a copied file:
//
//	tagger := audio.NewTagger()
//	err := tagger.WriteTrackNumber("/out/1-01 Song.m4a", "001")
//
// The container is chosen by extension:
//   - .m4a, .m4b, .mp4: the iTunes "trkn" atom
//   - .mp3: the ID3v2 TRCK frame
//
// Other extensions return ErrUnsupportedFormat.
//
// # Verification
//
// Reader reads the track number back from any container the tag library
// understands:
//
//	n, err := audio.NewReader().TrackNumber("/out/1-01 Song.m4a")
//
// # Playlist Generation
//
// Generate playlists in various formats:
//
//	creator := audio.NewPlaylistCreator(model.PlaylistFormatM3U, true) // extended M3U
//	content := creator.CreatePlaylist(collection)
//
// Supported formats:
//   - M3U (with optional extended info)
//   - PLS
//   - WPL (Windows Media Player)
//   - ZPL (Zune Media Player)
package audio
