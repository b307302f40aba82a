package renumber

import (
	"errors"
	"fmt"
)

// ErrDirectoryMissing is matched by every DirectoryMissingError.
var ErrDirectoryMissing = errors.New("directory does not exist")

// DirectoryMissingError reports a required directory that is absent.
// Path is absolute.
type DirectoryMissingError struct {
	Path string
	Err  error
}

func (e *DirectoryMissingError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%v: %s (%v)", ErrDirectoryMissing, e.Path, e.Err)
	}
	return fmt.Sprintf("%v: %s", ErrDirectoryMissing, e.Path)
}

func (e *DirectoryMissingError) Is(target error) bool {
	return target == ErrDirectoryMissing
}

func (e *DirectoryMissingError) Unwrap() error {
	return e.Err
}

// CopyError reports a failed copy of one file. It aborts the run.
type CopyError struct {
	Source      string
	Destination string
	Err         error
}

func (e *CopyError) Error() string {
	return fmt.Sprintf("failed to write file: %s: %v", e.Destination, e.Err)
}

func (e *CopyError) Unwrap() error {
	return e.Err
}

// RenumberError reports a failed track-number write. Files renumbered
// before it keep their new numbers.
type RenumberError struct {
	Path        string
	TrackNumber string
	Err         error
}

func (e *RenumberError) Error() string {
	return fmt.Sprintf("failed updating track number (%s) for: %s: %v", e.TrackNumber, e.Path, e.Err)
}

func (e *RenumberError) Unwrap() error {
	return e.Err
}

// VerifyError reports a file whose track number does not read back as
// written.
type VerifyError struct {
	Path string
	Want int
	Got  int
	Err  error
}

func (e *VerifyError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("verify %s: %v", e.Path, e.Err)
	}
	return fmt.Sprintf("verify %s: track number is %d, want %d", e.Path, e.Got, e.Want)
}

func (e *VerifyError) Unwrap() error {
	return e.Err
}
