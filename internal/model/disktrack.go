package model

import (
	"cmp"
	"errors"
	"fmt"
	"path/filepath"
	"slices"
	"strconv"
	"strings"
)

// ErrMalformedFileName is matched by every MalformedFileNameError.
var ErrMalformedFileName = errors.New("malformed disk-track file name")

// MalformedFileNameError reports a file name without a "<disk>-<track> "
// prefix. Names that passed eligibility never produce it.
type MalformedFileNameError struct {
	Name string
}

func (e *MalformedFileNameError) Error() string {
	return fmt.Sprintf("%v: %q", ErrMalformedFileName, e.Name)
}

func (e *MalformedFileNameError) Is(target error) bool {
	return target == ErrMalformedFileName
}

// DiskTrack represents one audio file and its (disk, track) ordering key.
//
// Disk and Track are parsed once from the file name and never change.
// Two DiskTracks are the same file when their Paths are equal.
//
// Example:
//
//	dt, _ := ParseDiskTrack("/out/1-02 Intro.m4a", 0)
//	// dt.Disk = 1, dt.Track = 2, dt.Title() = "Intro"
type DiskTrack struct {
	// Path is the location of the file.
	Path string

	// Disk is the number before the first hyphen.
	Disk int

	// Track is the number between the first hyphen and the following space.
	Track int

	// Index is the position of the file in the selection order. It breaks
	// ties between equal (Disk, Track) keys.
	Index int
}

// ParseDiskTrack builds a DiskTrack from path, parsing the key from its base name.
func ParseDiskTrack(path string, index int) (*DiskTrack, error) {
	disk, track, err := ParseFileName(filepath.Base(path))
	if err != nil {
		return nil, err
	}
	return &DiskTrack{Path: path, Disk: disk, Track: track, Index: index}, nil
}

// ParseFileName extracts the disk and track numbers from a file name such
// as "050-011 Song.m4a" (disk 50, track 11).
func ParseFileName(name string) (disk, track int, err error) {
	head, rest, ok := strings.Cut(name, "-")
	if !ok {
		return 0, 0, &MalformedFileNameError{Name: name}
	}
	body, _, ok := strings.Cut(rest, " ")
	if !ok {
		return 0, 0, &MalformedFileNameError{Name: name}
	}

	disk, ok = parseDigits(head)
	if !ok {
		return 0, 0, &MalformedFileNameError{Name: name}
	}
	track, ok = parseDigits(body)
	if !ok {
		return 0, 0, &MalformedFileNameError{Name: name}
	}
	return disk, track, nil
}

// parseDigits accepts only a non-empty run of ASCII digits. strconv.Atoi
// alone would also take a sign.
func parseDigits(s string) (int, bool) {
	if s == "" {
		return 0, false
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return 0, false
		}
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, false
	}
	return n, true
}

// Name returns the base name of the file.
func (d *DiskTrack) Name() string {
	return filepath.Base(d.Path)
}

// Title returns the part of the name after the disk-track prefix, without
// the extension. "1-02 Intro.m4a" has title "Intro".
func (d *DiskTrack) Title() string {
	name := d.Name()
	_, rest, _ := strings.Cut(name, " ")
	return strings.TrimSuffix(rest, filepath.Ext(rest))
}

// Compare orders by disk, then track, then selection index.
func (d *DiskTrack) Compare(o *DiskTrack) int {
	if c := cmp.Compare(d.Disk, o.Disk); c != 0 {
		return c
	}
	if c := cmp.Compare(d.Track, o.Track); c != 0 {
		return c
	}
	return cmp.Compare(d.Index, o.Index)
}

func (d *DiskTrack) String() string {
	return fmt.Sprintf("DiskTrack{file=%s, disk=%d, track=%d}", d.Path, d.Disk, d.Track)
}

// SortDiskTracks sorts tracks in place into renumbering order.
func SortDiskTracks(tracks []*DiskTrack) {
	slices.SortStableFunc(tracks, func(a, b *DiskTrack) int {
		return a.Compare(b)
	})
}

// FormatTrackNumber left-pads n with zeros to width digits. Wider numbers
// are never truncated: FormatTrackNumber(1234, 3) is "1234".
func FormatTrackNumber(n, width int) string {
	return fmt.Sprintf("%0*d", width, n)
}
