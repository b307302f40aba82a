package audio

import (
	"errors"
	"fmt"
	"path/filepath"
	"strconv"
	"strings"

	mp4tag "github.com/Sorrow446/go-mp4tag"
	"github.com/bogem/id3v2"
)

// ErrUnsupportedFormat is returned for files whose extension has no tag writer.
var ErrUnsupportedFormat = errors.New("unsupported audio format")

// TrackNumberWriter rewrites the track-number tag of a single file in place.
type TrackNumberWriter interface {
	WriteTrackNumber(path, trackNumber string) error
}

// Tagger writes track numbers into MP4 (iTunes) and MP3 (ID3v2) files.
//
// Only the track number is touched; every other tag is carried over by
// the underlying library when it re-serializes the tag container.
//
// Example:
//
//	tagger := NewTagger()
//	if err := tagger.WriteTrackNumber(path, "007"); err != nil {
//	    log.Printf("Failed to tag %s: %v", path, err)
//	}
type Tagger struct{}

// NewTagger creates a new Tagger.
func NewTagger() *Tagger {
	return &Tagger{}
}

// WriteTrackNumber sets the track number of the file at path.
//
// trackNumber is the zero-padded decimal string produced by the
// renumbering step. ID3 stores it verbatim; MP4 stores it as an integer.
func (t *Tagger) WriteTrackNumber(path, trackNumber string) error {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".m4a", ".m4b", ".mp4":
		return t.writeMP4(path, trackNumber)
	case ".mp3":
		return t.writeID3(path, trackNumber)
	default:
		return fmt.Errorf("%w: %s", ErrUnsupportedFormat, filepath.Ext(path))
	}
}

// Supports reports whether WriteTrackNumber can handle files with ext
// (with or without the leading dot).
func Supports(ext string) bool {
	switch strings.ToLower(strings.TrimPrefix(ext, ".")) {
	case "m4a", "m4b", "mp4", "mp3":
		return true
	}
	return false
}

func (t *Tagger) writeMP4(path, trackNumber string) error {
	n, err := strconv.ParseInt(trackNumber, 10, 16)
	if err != nil {
		return fmt.Errorf("track number %q does not fit an MP4 trkn atom: %w", trackNumber, err)
	}

	mp4, err := mp4tag.Open(path)
	if err != nil {
		return fmt.Errorf("open mp4 tags: %w", err)
	}
	defer mp4.Close()

	tags := &mp4tag.MP4Tags{
		TrackNumber: int16(n),
	}

	// Empty slice: no existing tag is deleted.
	if err := mp4.Write(tags, []string{}); err != nil {
		return fmt.Errorf("write mp4 tags: %w", err)
	}
	return nil
}

func (t *Tagger) writeID3(path, trackNumber string) error {
	tag, err := id3v2.Open(path, id3v2.Options{Parse: true})
	if err != nil {
		return fmt.Errorf("open id3 tags: %w", err)
	}
	defer tag.Close()

	// Track Number (TRCK)
	tag.AddTextFrame(tag.CommonID("Track number/Position in set"), tag.DefaultEncoding(), trackNumber)

	if err := tag.Save(); err != nil {
		return fmt.Errorf("save id3 tags: %w", err)
	}
	return nil
}
