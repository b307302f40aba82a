package scan

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
)

// CollisionError reports two input files that would be copied to the same
// output name.
type CollisionError struct {
	Name   string
	First  string
	Second string
}

func (e *CollisionError) Error() string {
	return fmt.Sprintf("output name collision for %q: %s and %s", e.Name, e.First, e.Second)
}

// Selection is the ordered result of a scan.
type Selection struct {
	// Files holds the eligible source paths in selection order: input
	// directories in the order given, entries by name within each.
	Files []string

	// Duplicates holds source paths dropped because an earlier input
	// already supplied the same file name.
	Duplicates []string
}

// Scanner lists input directories and applies a Filter.
type Scanner struct {
	filter          *Filter
	failOnCollision bool
	onWarning       func(string)
}

// NewScanner creates a Scanner. With failOnCollision set, a file name
// seen in two input directories fails the scan; otherwise the first one
// wins and the later one is reported through onWarning.
func NewScanner(filter *Filter, failOnCollision bool, onWarning func(string)) *Scanner {
	return &Scanner{
		filter:          filter,
		failOnCollision: failOnCollision,
		onWarning:       onWarning,
	}
}

// Scan lists each directory and returns the eligible files.
func (s *Scanner) Scan(ctx context.Context, dirs ...string) (*Selection, error) {
	sel := &Selection{}
	seen := make(map[string]string)

	for _, dir := range dirs {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		entries, err := os.ReadDir(dir)
		if err != nil {
			return nil, fmt.Errorf("unable to list files in %s: %w", dir, err)
		}

		for _, entry := range entries {
			entry = resolveSymlink(dir, entry)
			if !s.filter.Eligible(entry) {
				continue
			}

			path := filepath.Join(dir, entry.Name())
			if first, ok := seen[entry.Name()]; ok {
				if s.failOnCollision {
					return nil, &CollisionError{Name: entry.Name(), First: first, Second: path}
				}
				s.warn(fmt.Sprintf("Ignoring file (%s), since %s has the same name", path, first))
				sel.Duplicates = append(sel.Duplicates, path)
				continue
			}
			seen[entry.Name()] = path
			sel.Files = append(sel.Files, path)
		}
	}

	return sel, nil
}

// resolveSymlink replaces a symlink entry with one describing its target,
// so a link to a directory counts as a directory. Broken links are kept
// as they are and fail later at copy time.
func resolveSymlink(dir string, entry fs.DirEntry) fs.DirEntry {
	if entry.Type()&fs.ModeSymlink == 0 {
		return entry
	}
	info, err := os.Stat(filepath.Join(dir, entry.Name()))
	if err != nil {
		return entry
	}
	return fs.FileInfoToDirEntry(info)
}

func (s *Scanner) warn(msg string) {
	if s.onWarning != nil {
		s.onWarning(msg)
	}
}
