package ioutils

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
)

// ErrNotDirectory is returned by DirExists when the path exists but is a file.
var ErrNotDirectory = errors.New("not a directory")

// CopyFile copies a file from source to destination.
//
// The destination is created or truncated, receives the exact bytes of the
// source, and then takes the source's permission bits and modification
// time. Cancelling ctx aborts the copy between chunks; the partially
// written destination is left in place.
//
// Example:
//
//	err := CopyFile(ctx, "/in/1-01 Song.m4a", "/out/1-01 Song.m4a")
func CopyFile(ctx context.Context, src, dst string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	sourceFile, err := os.Open(src)
	if err != nil {
		return err
	}
	defer sourceFile.Close()

	info, err := sourceFile.Stat()
	if err != nil {
		return err
	}

	destFile, err := os.OpenFile(dst, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, info.Mode().Perm())
	if err != nil {
		return err
	}

	if _, err := io.Copy(destFile, &contextReader{ctx: ctx, r: sourceFile}); err != nil {
		destFile.Close()
		return err
	}
	if err := destFile.Close(); err != nil {
		return err
	}

	return preserveAttributes(dst, info)
}

// preserveAttributes applies the source mode and timestamps to path.
// Ownership is not carried over.
func preserveAttributes(path string, info fs.FileInfo) error {
	if err := os.Chmod(path, info.Mode().Perm()); err != nil {
		return fmt.Errorf("preserve mode: %w", err)
	}
	mtime := info.ModTime()
	if err := os.Chtimes(path, mtime, mtime); err != nil {
		return fmt.Errorf("preserve times: %w", err)
	}
	return nil
}

// contextReader stops a copy once its context is done.
type contextReader struct {
	ctx context.Context
	r   io.Reader
}

func (c *contextReader) Read(p []byte) (int, error) {
	if err := c.ctx.Err(); err != nil {
		return 0, err
	}
	return c.r.Read(p)
}

// WriteFile writes data to a file, creating it if necessary.
//
// The file is created with mode 0644. If the file already exists,
// it is truncated before writing.
func WriteFile(ctx context.Context, path string, data []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// DirExists reports whether path exists and is a directory. A path that
// exists as a regular file returns ErrNotDirectory.
func DirExists(path string) (bool, error) {
	info, err := os.Stat(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return false, nil
		}
		return false, err
	}
	if !info.IsDir() {
		return false, fmt.Errorf("%s: %w", path, ErrNotDirectory)
	}
	return true, nil
}

// EnsureDir creates a directory and all parent directories if they don't
// exist, reporting whether anything was created.
//
// Directories are created with mode 0755 (rwxr-xr-x).
//
// Example:
//
//	created, err := EnsureDir("/music/Artist/Album")
//	// Creates /music, /music/Artist, and /music/Artist/Album if needed
func EnsureDir(path string) (bool, error) {
	exists, err := DirExists(path)
	if err != nil {
		return false, err
	}
	if exists {
		return false, nil
	}
	if err := os.MkdirAll(path, 0755); err != nil {
		return false, err
	}
	return true, nil
}
