// Package model defines the core data structures used throughout
// multialbum.
//
// # DiskTrack
//
// DiskTrack is one audio file together with the ordering key parsed from
// its name. File names carry a disk number and a track number separated by
// a hyphen and followed by a space:
//
//	dt, err := model.ParseDiskTrack("/music/out/2-07 Song.m4a", 0)
//	// dt.Disk == 2, dt.Track == 7
//
// Leading zeros are ignored, so "03-000010 x.m4a" is disk 3, track 10.
//
// # Ordering
//
// DiskTracks are ordered by disk, then track, numerically. Equal keys keep
// their selection order (the Index field):
//
//	model.SortDiskTracks(tracks)
//
// # Collection
//
// Collection is the renumbered output directory: its tracks in final order
// and the computed playlist path.
//
//	cfg := &model.PathConfig{
//	    PlaylistFileNameFormat: "{album}",
//	    PlaylistFormat:         model.PlaylistFormatM3U,
//	}
//	c := model.NewCollection("/music/Album", tracks, cfg)
//	fmt.Println(c.PlaylistPath) // /music/Album/Album.m3u
//
// Available playlist placeholders: {album}
package model
