package audio

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/handiism/multialbum/internal/model"
)

// PlaylistCreator generates playlist files for a renumbered collection.
//
// Entries follow the collection's track order and use paths relative to
// the collection directory, so the playlist is written next to the tracks.
//
// Example:
//
//	creator := NewPlaylistCreator(model.PlaylistFormatM3U, true)
//	content := creator.CreatePlaylist(collection)
//
//	// Result:
//	// #EXTM3U
//	// #EXTINF:-1,001 Intro
//	// 1-01 Intro.m4a
type PlaylistCreator struct {
	format   model.PlaylistFormat
	extended bool // For M3U: include EXTINF lines
}

// NewPlaylistCreator creates a new PlaylistCreator.
//
// extended only applies to M3U output.
func NewPlaylistCreator(format model.PlaylistFormat, extended bool) *PlaylistCreator {
	return &PlaylistCreator{
		format:   format,
		extended: extended,
	}
}

// CreatePlaylist generates playlist content for a collection.
func (p *PlaylistCreator) CreatePlaylist(c *model.Collection) string {
	switch p.format {
	case model.PlaylistFormatPLS:
		return p.createPLS(c)
	case model.PlaylistFormatWPL:
		return p.createWPL(c)
	case model.PlaylistFormatZPL:
		return p.createZPL(c)
	default:
		return p.createM3U(c)
	}
}

// entryTitle is the display title of the i-th (0-based) track.
func entryTitle(i int, track *model.DiskTrack) string {
	return model.FormatTrackNumber(i+1, 3) + " " + track.Title()
}

// createM3U generates an M3U playlist. Durations are unknown and written
// as -1, which players treat as "not given".
func (p *PlaylistCreator) createM3U(c *model.Collection) string {
	var sb strings.Builder

	if p.extended {
		sb.WriteString("#EXTM3U\n")
	}

	for i, track := range c.Tracks {
		if p.extended {
			fmt.Fprintf(&sb, "#EXTINF:-1,%s\n", entryTitle(i, track))
		}
		sb.WriteString(filepath.Base(track.Path) + "\n")
	}

	return sb.String()
}

// createPLS generates a PLS playlist:
//
//	[playlist]
//	File1=1-01 Intro.m4a
//	Title1=001 Intro
//	Length1=-1
//	NumberOfEntries=1
//	Version=2
func (p *PlaylistCreator) createPLS(c *model.Collection) string {
	var sb strings.Builder

	sb.WriteString("[playlist]\n")

	for i, track := range c.Tracks {
		idx := i + 1
		fmt.Fprintf(&sb, "File%d=%s\n", idx, filepath.Base(track.Path))
		fmt.Fprintf(&sb, "Title%d=%s\n", idx, entryTitle(i, track))
		fmt.Fprintf(&sb, "Length%d=-1\n", idx)
	}

	fmt.Fprintf(&sb, "NumberOfEntries=%d\n", len(c.Tracks))
	sb.WriteString("Version=2\n")

	return sb.String()
}

// createWPL generates a Windows Media Player playlist.
func (p *PlaylistCreator) createWPL(c *model.Collection) string {
	var sb strings.Builder

	sb.WriteString("<?wpl version=\"1.0\"?>\n")
	sb.WriteString("<smil>\n")
	sb.WriteString("  <head>\n")
	fmt.Fprintf(&sb, "    <title>%s</title>\n", escapeXML(c.Title))
	sb.WriteString("  </head>\n")
	sb.WriteString("  <body>\n")
	sb.WriteString("    <seq>\n")

	for _, track := range c.Tracks {
		fmt.Fprintf(&sb, "      <media src=\"%s\"/>\n", escapeXML(filepath.Base(track.Path)))
	}

	sb.WriteString("    </seq>\n")
	sb.WriteString("  </body>\n")
	sb.WriteString("</smil>\n")

	return sb.String()
}

// createZPL generates a Zune/Groove Music playlist. It is WPL with album
// and track title attributes on each entry.
func (p *PlaylistCreator) createZPL(c *model.Collection) string {
	var sb strings.Builder

	sb.WriteString("<?zpl version=\"2.0\"?>\n")
	sb.WriteString("<smil>\n")
	sb.WriteString("  <head>\n")
	fmt.Fprintf(&sb, "    <title>%s</title>\n", escapeXML(c.Title))
	sb.WriteString("    <meta name=\"Generator\" content=\"multialbum\"/>\n")
	fmt.Fprintf(&sb, "    <meta name=\"ItemCount\" content=\"%d\"/>\n", len(c.Tracks))
	sb.WriteString("  </head>\n")
	sb.WriteString("  <body>\n")
	sb.WriteString("    <seq>\n")

	for i, track := range c.Tracks {
		fmt.Fprintf(&sb, "      <media src=\"%s\" albumTitle=\"%s\" trackTitle=\"%s\"/>\n",
			escapeXML(filepath.Base(track.Path)),
			escapeXML(c.Title),
			escapeXML(entryTitle(i, track)))
	}

	sb.WriteString("    </seq>\n")
	sb.WriteString("  </body>\n")
	sb.WriteString("</smil>\n")

	return sb.String()
}

// escapeXML escapes & < > " ' for attribute and text content.
func escapeXML(s string) string {
	s = strings.ReplaceAll(s, "&", "&amp;")
	s = strings.ReplaceAll(s, "<", "&lt;")
	s = strings.ReplaceAll(s, ">", "&gt;")
	s = strings.ReplaceAll(s, "\"", "&quot;")
	s = strings.ReplaceAll(s, "'", "&apos;")
	return s
}
