package model

import (
	"path/filepath"
	"regexp"
	"strings"
)

// Collection is the consolidated output directory after renumbering.
//
// Tracks are held in final order: Tracks[i] carries track number i+1.
type Collection struct {
	// Title is the collection name, taken from the output directory's base name.
	Title string

	// Path is the output directory.
	Path string

	// Tracks contains the renumbered files in order.
	Tracks []*DiskTrack

	// PlaylistPath is the computed playlist file path inside Path.
	PlaylistPath string
}

// NewCollection creates a Collection rooted at dir with a computed playlist path.
func NewCollection(dir string, tracks []*DiskTrack, cfg *PathConfig) *Collection {
	c := &Collection{
		Title:  filepath.Base(filepath.Clean(dir)),
		Path:   dir,
		Tracks: tracks,
	}
	c.PlaylistPath = c.parsePlaylistPath(cfg)
	return c
}

// PathConfig holds playlist naming settings.
//
// PlaylistFileNameFormat supports the {album} placeholder, replaced with
// the collection title.
type PathConfig struct {
	// PlaylistFileNameFormat is the filename template for playlists (without extension).
	// Example: "{album}" or "playlist"
	PlaylistFileNameFormat string

	// PlaylistFormat determines the playlist file type and extension.
	PlaylistFormat PlaylistFormat
}

// PlaylistFormat represents supported playlist file formats.
type PlaylistFormat int

const (
	// PlaylistFormatM3U creates .m3u playlist files (most widely supported).
	PlaylistFormatM3U PlaylistFormat = iota

	// PlaylistFormatPLS creates .pls playlist files (used by Winamp).
	PlaylistFormatPLS

	// PlaylistFormatWPL creates .wpl playlist files (Windows Media Player).
	PlaylistFormatWPL

	// PlaylistFormatZPL creates .zpl playlist files (Zune Media Player).
	PlaylistFormatZPL
)

// ParsePlaylistFormat maps a settings value to a PlaylistFormat.
func ParsePlaylistFormat(s string) (PlaylistFormat, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "m3u", "":
		return PlaylistFormatM3U, true
	case "pls":
		return PlaylistFormatPLS, true
	case "wpl":
		return PlaylistFormatWPL, true
	case "zpl":
		return PlaylistFormatZPL, true
	}
	return PlaylistFormatM3U, false
}

// Extension returns the file extension for the playlist format, including the dot.
func (pf PlaylistFormat) Extension() string {
	switch pf {
	case PlaylistFormatPLS:
		return ".pls"
	case PlaylistFormatWPL:
		return ".wpl"
	case PlaylistFormatZPL:
		return ".zpl"
	default:
		return ".m3u"
	}
}

func (c *Collection) parsePlaylistPath(cfg *PathConfig) string {
	fileName := strings.ReplaceAll(cfg.PlaylistFileNameFormat, "{album}", c.Title)
	fileName = sanitizeFileName(fileName)
	if fileName == "" {
		fileName = "playlist"
	}
	return filepath.Join(c.Path, fileName+cfg.PlaylistFormat.Extension())
}

var (
	invalidFileNameChars = regexp.MustCompile(`[<>:"/\\|?*\x00-\x1f]`)
	trailingDots         = regexp.MustCompile(`\.+$`)
	repeatedSpace        = regexp.MustCompile(`\s+`)
)

// sanitizeFileName removes or replaces characters that are invalid in file names.
//
//	sanitizeFileName("Song: Part 1/2") // Returns "Song_ Part 1_2"
func sanitizeFileName(name string) string {
	name = invalidFileNameChars.ReplaceAllString(name, "_")
	name = trailingDots.ReplaceAllString(name, "")
	name = repeatedSpace.ReplaceAllString(name, " ")
	return strings.TrimRight(name, " ")
}
