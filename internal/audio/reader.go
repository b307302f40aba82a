package audio

import (
	"fmt"
	"os"

	"github.com/dhowden/tag"
)

// TrackNumberReader reads the track-number tag of a single file.
type TrackNumberReader interface {
	TrackNumber(path string) (int, error)
}

// Reader reads tags with github.com/dhowden/tag, which understands MP4,
// ID3v1/v2, FLAC and OGG containers.
type Reader struct{}

// NewReader creates a new Reader.
func NewReader() *Reader {
	return &Reader{}
}

// TrackNumber returns the track number stored in the file at path, or 0
// when the file has a tag without one.
func (r *Reader) TrackNumber(path string) (int, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, err
	}
	defer f.Close()

	m, err := tag.ReadFrom(f)
	if err != nil {
		return 0, fmt.Errorf("read tags: %w", err)
	}

	track, _ := m.Track()
	return track, nil
}
